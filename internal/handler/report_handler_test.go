package handler

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-admin-console/internal/repository"
	"github.com/noah-isme/school-admin-console/internal/service"
	"github.com/noah-isme/school-admin-console/pkg/backend"
	"github.com/noah-isme/school-admin-console/pkg/export"
)

func newReportRouter(t *testing.T, handler http.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := backend.New(backend.Options{BaseURL: srv.URL})
	reports := service.NewReportService(repository.NewReportRepository(client), export.NewPDFExporter(), nil)

	r := gin.New()
	NewReportHandler(reports).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestReportDisplayWithEmptySubjects(t *testing.T) {
	var gotPath string
	r := newReportRouter(t, func(w http.ResponseWriter, req *http.Request) {
		gotPath = req.URL.Path
		_, _ = io.WriteString(w, `{"student_id":42,"term":"Term 1","year":2024,"average_percentage":87.456,"average_grade":"B","subjects":[]}`)
	})

	rec := perform(r, http.MethodGet, "/api/v1/reports/42/Term%201/2024", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "/report/42/Term 1/2024", gotPath)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "87.46%", envelope.Data["average_percentage"])
	assert.Equal(t, "B", envelope.Data["average_grade"])
	assert.Empty(t, envelope.Data["subjects"])
	assert.Equal(t, "42-report.pdf", envelope.Data["file_name"])
}

func TestReportQueryRequiresAllParameters(t *testing.T) {
	called := false
	r := newReportRouter(t, func(w http.ResponseWriter, _ *http.Request) {
		called = true
		_, _ = io.WriteString(w, `{}`)
	})

	rec := perform(r, http.MethodGet, "/api/v1/reports?student_id=42&term=Term%201", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please provide all required fields", noticeMessage(decodeEnvelope(t, rec)))
	assert.False(t, called)
}

func TestReportPDFAttachment(t *testing.T) {
	r := newReportRouter(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"average_percentage":null,"subjects":[{"subject_name":"Math","score":null,"grade":"B"}]}`)
	})

	rec := perform(r, http.MethodGet, "/api/v1/reports/42/Term%202/2024/pdf", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="42-report.pdf"`)
	assert.True(t, len(rec.Body.Bytes()) > 4)
	assert.Equal(t, "%PDF", string(rec.Body.Bytes()[:4]))
}

func TestReportBackendFailure(t *testing.T) {
	r := newReportRouter(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	rec := perform(r, http.MethodGet, "/api/v1/reports/42/Term%201/2024", nil)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Failed to load report!", noticeMessage(decodeEnvelope(t, rec)))
}
