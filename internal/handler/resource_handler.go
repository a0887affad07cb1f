package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-admin-console/internal/middleware"
	"github.com/noah-isme/school-admin-console/internal/models"
	"github.com/noah-isme/school-admin-console/internal/service"
	appErrors "github.com/noah-isme/school-admin-console/pkg/errors"
	"github.com/noah-isme/school-admin-console/pkg/export"
	"github.com/noah-isme/school-admin-console/pkg/response"
)

const (
	filterPrefix = "filter."
	formatCSV    = "csv"
)

type resourceRegistry interface {
	Get(name string) (service.ResourceService, bool)
	Specs() []service.ResourceSpec
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ResourceHandler serves the list and form views of every managed resource.
type ResourceHandler struct {
	resources resourceRegistry
	csv       datasetRenderer
}

// NewResourceHandler constructs ResourceHandler.
func NewResourceHandler(resources resourceRegistry, csv datasetRenderer) *ResourceHandler {
	return &ResourceHandler{resources: resources, csv: csv}
}

// RegisterRoutes mounts one route group per resource.
func (h *ResourceHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/resources", h.Catalogue)
	for _, spec := range h.resources.Specs() {
		name := spec.Name
		rg := group.Group("/"+name, func(c *gin.Context) { c.Set(middleware.ResourceKey, name) })
		rg.GET("", h.List)
		rg.GET("/form", h.Form)
		rg.POST("", h.Create)
		rg.PUT("/:id", h.Update)
		rg.DELETE("/:id", h.Delete)
	}
}

// Catalogue godoc
// @Summary List managed resources with their form schemas
// @Tags Resources
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /resources [get]
func (h *ResourceHandler) Catalogue(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.resources.Specs(), nil)
}

// List godoc
// @Summary List one page of a resource
// @Tags Resources
// @Produce json
// @Produce text/csv
// @Param resource path string true "Resource name"
// @Param page query int false "Page to load"
// @Param nav query string false "next or previous, relative to page and total_pages"
// @Param total_pages query int false "Total pages of the page being navigated from"
// @Param search query string false "Free-text search"
// @Param format query string false "csv to download the visible rows"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /{resource} [get]
func (h *ResourceHandler) List(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	req, err := parseListRequest(c)
	if err != nil {
		response.ErrorWithNotice(c, err, service.ValidationNotice().Message)
		return
	}

	view, err := svc.List(c.Request.Context(), req)
	if err != nil {
		if view == nil {
			response.ErrorWithNotice(c, err, service.ValidationNotice().Message)
			return
		}
		response.ErrorWithData(c, err, view, view.Error)
		return
	}

	if strings.EqualFold(c.Query("format"), formatCSV) {
		content, err := h.csv.Render(view.Dataset())
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to export list"))
			return
		}
		response.Attachment(c, "text/csv", view.Resource+".csv", content)
		return
	}
	response.JSON(c, http.StatusOK, view, &view.Cursor)
}

// Form godoc
// @Summary Describe the form of a resource
// @Tags Resources
// @Produce json
// @Param resource path string true "Resource name"
// @Success 200 {object} response.Envelope
// @Router /{resource}/form [get]
func (h *ResourceHandler) Form(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, svc.Form(c.Request.Context()), nil)
}

// Create godoc
// @Summary Create a record and reload the current page
// @Tags Resources
// @Accept json
// @Produce json
// @Param resource path string true "Resource name"
// @Param page query int false "Page to reload after saving"
// @Param payload body object true "Draft fields"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /{resource} [post]
func (h *ResourceHandler) Create(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	draft, ok := bindDraft(c, svc.Spec())
	if !ok {
		return
	}
	result, err := svc.Create(c.Request.Context(), draft, cursorFromQuery(c))
	h.respondMutation(c, http.StatusCreated, result, err)
}

// Update godoc
// @Summary Update a record and reload the current page
// @Tags Resources
// @Accept json
// @Produce json
// @Param resource path string true "Resource name"
// @Param id path string true "Record ID"
// @Param page query int false "Page to reload after saving"
// @Param payload body object true "Draft fields"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 405 {object} response.Envelope
// @Router /{resource}/{id} [put]
func (h *ResourceHandler) Update(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	draft, ok := bindDraft(c, svc.Spec())
	if !ok {
		return
	}
	result, err := svc.Update(c.Request.Context(), models.ID(c.Param("id")), draft, cursorFromQuery(c))
	h.respondMutation(c, http.StatusOK, result, err)
}

// Delete godoc
// @Summary Delete a record and reload the current page
// @Tags Resources
// @Produce json
// @Param resource path string true "Resource name"
// @Param id path string true "Record ID"
// @Param page query int false "Page to reload after deleting"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /{resource}/{id} [delete]
func (h *ResourceHandler) Delete(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	result, err := svc.Delete(c.Request.Context(), models.ID(c.Param("id")), cursorFromQuery(c))
	h.respondMutation(c, http.StatusOK, result, err)
}

func (h *ResourceHandler) respondMutation(c *gin.Context, status int, result *service.MutationResult, err error) {
	if err != nil {
		notice := ""
		if result != nil {
			notice = result.Notice.Message
		}
		response.ErrorWithNotice(c, err, notice)
		return
	}
	var pagination *models.PageCursor
	if result.List != nil {
		pagination = &result.List.Cursor
	}
	response.WithNotice(c, status, result, pagination, result.Notice)
}

func (h *ResourceHandler) service(c *gin.Context) (service.ResourceService, bool) {
	name := c.GetString(middleware.ResourceKey)
	if name == "" {
		name = c.Param("resource")
	}
	svc, ok := h.resources.Get(name)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "unknown resource "+name))
		return nil, false
	}
	return svc, true
}

func parseListRequest(c *gin.Context) (service.ListRequest, error) {
	req := service.ListRequest{
		Search:  strings.TrimSpace(c.Query("search")),
		Filters: map[string]string{},
	}
	invalid := map[string]string{}

	page, err := optionalInt(c, "page")
	if err != nil {
		invalid["page"] = "page must be a number"
	}
	req.Page = page

	switch nav := strings.ToLower(c.Query("nav")); nav {
	case "":
	case service.NavNext, service.NavPrevious:
		req.Nav = nav
		total, err := optionalInt(c, "total_pages")
		if err != nil {
			invalid["total_pages"] = "total_pages must be a number"
		}
		req.Cursor = models.PageCursor{CurrentPage: page, TotalPages: total}
	default:
		invalid["nav"] = "nav must be next or previous"
	}

	for key, values := range c.Request.URL.Query() {
		if !strings.HasPrefix(key, filterPrefix) || len(values) == 0 {
			continue
		}
		req.Filters[strings.TrimPrefix(key, filterPrefix)] = values[0]
	}

	if len(invalid) > 0 {
		return req, appErrors.WithFields(appErrors.ErrValidation, "invalid list query", invalid)
	}
	return req, nil
}

func cursorFromQuery(c *gin.Context) models.PageCursor {
	page, _ := optionalInt(c, "page")
	total, _ := optionalInt(c, "total_pages")
	if total < page {
		total = page
	}
	return models.PageCursor{CurrentPage: page, TotalPages: total}
}

func optionalInt(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func bindDraft(c *gin.Context, spec service.ResourceSpec) (map[string]interface{}, bool) {
	var draft map[string]interface{}
	if err := c.ShouldBindJSON(&draft); err != nil {
		response.ErrorWithNotice(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"), spec.SaveFailedNotice().Message)
		return nil, false
	}
	return draft, true
}
