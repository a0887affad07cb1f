package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/school-admin-console/internal/models"
	"github.com/noah-isme/school-admin-console/internal/service"
	appErrors "github.com/noah-isme/school-admin-console/pkg/errors"
)

type fakeDashboardSrv struct {
	view *models.DashboardView
	err  error
}

func (f *fakeDashboardSrv) Load(context.Context) (*models.DashboardView, error) {
	return f.view, f.err
}

func TestDashboardHandlerSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{view: &models.DashboardView{
		State:   models.ViewLoaded,
		Summary: []models.SummaryCard{{Key: "total_students", Title: "Total Students", Value: "12"}},
	}})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard", nil)

	handler.Show(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "loaded", envelope.Data["state"])
	assert.Len(t, envelope.Data["summary"], 1)
}

func TestDashboardHandlerFailureShowsSingleError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{
		view: &models.DashboardView{State: models.ViewFailed, Error: service.DashboardFailureMessage, Summary: []models.SummaryCard{}},
		err:  appErrors.Clone(appErrors.ErrBackendStatus, "backend returned 500"),
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard", nil)

	handler.Show(c)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, service.DashboardFailureMessage, noticeMessage(envelope))
	assert.Equal(t, "failed", envelope.Data["state"])
	assert.Empty(t, envelope.Data["summary"])
}
