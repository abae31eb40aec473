package grossnet

import (
	"net/http"

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

// Calculate handles POST /gross-to-net.
func (h *Handler) Calculate(c *gin.Context) {
	var req CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		mapped := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, mapped.Status, mapped.Code, mapped.Message, nil)
		return
	}

	resp, err := h.service.Calculate(c.Request.Context(), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

// Example handles GET /gross-to-net: the canonical worked example.
func (h *Handler) Example(c *gin.Context) {
	resp, err := h.service.Example(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

// Head handles HEAD /gross-to-net as an availability probe.
func (h *Handler) Head(c *gin.Context) {
	c.Status(http.StatusOK)
}

// Rules handles GET /gross-to-net/rules.
func (h *Handler) Rules(c *gin.Context) {
	response.Success(c, http.StatusOK, h.service.Rules(c.Request.Context()), nil)
}

// Stats handles GET /gross-to-net/stats.
func (h *Handler) Stats(c *gin.Context) {
	resp, err := h.service.Stats(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
