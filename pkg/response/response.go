package response

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-admin-console/internal/models"
	appErrors "github.com/noah-isme/school-admin-console/pkg/errors"
)

const noticeKey = "notice"

// Envelope represents the common response contract.
type Envelope struct {
	Data       interface{}            `json:"data,omitempty"`
	Error      *appErrors.Error       `json:"error,omitempty"`
	Pagination *models.PageCursor     `json:"pagination,omitempty"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
}

// JSON sends a success response with optional pagination metadata.
func JSON(c *gin.Context, status int, data interface{}, pagination *models.PageCursor, meta ...map[string]interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	envelope := Envelope{Data: data, Pagination: pagination}
	if len(meta) > 0 && meta[0] != nil {
		envelope.Meta = meta[0]
	}
	c.JSON(status, envelope)
}

// WithNotice sends a success response carrying a user-facing notice in meta.
func WithNotice(c *gin.Context, status int, data interface{}, pagination *models.PageCursor, notice models.Notice) {
	JSON(c, status, data, pagination, map[string]interface{}{noticeKey: notice})
}

// Error sends an error response converting the error to the common structure.
// The message doubles as the error notice shown to the user.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	ErrorWithNotice(c, appErr, appErr.Message)
}

// ErrorWithNotice sends an error response whose notice text differs from the error message.
func ErrorWithNotice(c *gin.Context, err error, notice string) {
	ErrorWithData(c, err, nil, notice)
}

// ErrorWithData sends an error response that still carries the view the
// failure left behind, so the client can keep rendering it.
func ErrorWithData(c *gin.Context, err error, data interface{}, notice string) {
	appErr := appErrors.FromError(err)
	if notice == "" {
		notice = appErr.Message
	}
	_ = c.Error(appErr)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, Envelope{
		Data:  data,
		Error: appErr,
		Meta: map[string]interface{}{
			noticeKey: models.Notice{Level: models.NoticeError, Message: notice},
		},
	})
}

// Attachment sends a downloadable file.
func Attachment(c *gin.Context, contentType, filename string, content []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, content)
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
