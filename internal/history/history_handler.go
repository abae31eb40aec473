package history

import (
	"net/http"
	"strconv"

	"vn-payroll/internal/shared/apperror"
	"vn-payroll/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func parseLimit(c *gin.Context) int {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return limit
}

func (h *Handler) GetRecentCalculations(c *gin.Context) {
	resp, err := h.service.RecentCalculations(c.Request.Context(), parseLimit(c))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	meta := response.ListMeta{Total: len(resp), Limit: parseLimit(c)}
	response.Success(c, http.StatusOK, resp, &meta)
}

func (h *Handler) GetRecentBatchRuns(c *gin.Context) {
	resp, err := h.service.RecentBatchRuns(c.Request.Context(), parseLimit(c))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	meta := response.ListMeta{Total: len(resp), Limit: parseLimit(c)}
	response.Success(c, http.StatusOK, resp, &meta)
}
