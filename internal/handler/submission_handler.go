package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kalagasite/internal/service"
	"github.com/kalagasite/internal/store"
	"go.uber.org/zap"
)

type bulkDeleteRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// ShowSubmissions 渲染联系表单提交列表，按时间倒序
func (a *API) ShowSubmissions(c *gin.Context) {
	submissions, err := a.contacts.List(c.Request.Context())
	data := gin.H{"submissions": submissions}
	if err != nil {
		a.log.Warn("list submissions failed", zap.Error(err))
		data["listError"] = "Error fetching contact submissions"
	}
	a.renderHTML(c, http.StatusOK, "submissions.html", a.adminPage(c, "submissions", "Contact Submissions", data))
}

// ListSubmissions returns the submissions newest first.
func (a *API) ListSubmissions(c *gin.Context) {
	submissions, err := a.contacts.List(c.Request.Context())
	if err != nil {
		a.log.Warn("list submissions failed", zap.Error(err))
		respondError(c, http.StatusBadGateway, "Error fetching contact submissions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": submissions})
}

// DeleteSubmission 删除单条提交，删除前确认记录仍然存在
func (a *API) DeleteSubmission(c *gin.Context) {
	id := c.Param("id")
	if err := a.contacts.Delete(c.Request.Context(), id); err != nil {
		a.log.Warn("delete submission failed", zap.String("id", id), zap.Error(err))
		respondError(c, submissionErrorStatus(err), service.DeleteFailureMessage(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Submission deleted successfully", "id": id})
}

// BulkDeleteSubmissions deletes every id independently and reports per-id failures.
func (a *API) BulkDeleteSubmissions(c *gin.Context) {
	var payload bulkDeleteRequest
	if !bindJSON(c, &payload, "Select at least one submission") {
		return
	}
	if len(payload.IDs) == 0 {
		respondError(c, http.StatusBadRequest, "Select at least one submission")
		return
	}
	result := a.contacts.BulkDelete(c.Request.Context(), payload.IDs)
	status := http.StatusOK
	if len(result.Failed) > 0 {
		status = http.StatusMultiStatus
	}
	c.JSON(status, result)
}

func submissionErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSubmissionIDEmpty):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrPermission):
		return http.StatusForbidden
	}
	return http.StatusBadGateway
}
