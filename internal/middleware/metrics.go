package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-admin-console/internal/service"
)

// ResourceKey is the gin context key under which resource routes record the
// resource they serve.
const ResourceKey = "console_resource"

const unmatchedRoute = "unmatched"

// Metrics returns middleware that captures request metrics using the provided service.
// Unrouted paths share one label; resource routes are also counted per resource.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, status, duration)
		if resource := c.GetString(ResourceKey); resource != "" {
			metricsSvc.ObserveViewRequest(resource, c.Request.Method, status)
		}
	}
}
