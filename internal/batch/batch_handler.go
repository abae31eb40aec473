package batch

import (
	"encoding/json"
	"net/http"
	"time"

	"vn-payroll/internal/shared/apperror"
	"vn-payroll/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	csvAttachment  = `attachment; filename="gross_net_results.csv"`
	xlsxAttachment = `attachment; filename="gross_net_results.xlsx"`
	xlsxMIME       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	idempotencyTTL = 24 * time.Hour
)

type Handler struct {
	service Service
	rdb     *redis.Client
}

func NewHandler(service Service, rdb *redis.Client) *Handler {
	return &Handler{service: service, rdb: rdb}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// Upload handles POST /gross-to-net/batch. The sheet arrives as multipart
// field "file"; ?format=json|csv|xlsx selects the response shape, default
// json.
func (h *Handler) Upload(c *gin.Context) {
	defer h.releaseIdempotencyLock(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput,
			"Multipart field \"file\" is required", nil)
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput,
			"Could not open uploaded file", nil)
		return
	}
	defer src.Close()

	rows, err := ParseUpload(fileHeader.Filename, src)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	report, err := h.service.Process(c.Request.Context(), fileHeader.Filename, rows)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	switch c.DefaultQuery("format", "json") {
	case "csv":
		c.Header("Content-Disposition", csvAttachment)
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Status(http.StatusOK)
		if err := WriteCSV(c.Writer, report); err != nil {
			c.Error(err)
		}

	case "xlsx":
		f, err := BuildXLSX(report)
		if err != nil {
			h.writeServiceError(c, err)
			return
		}
		defer f.Close()

		c.Header("Content-Disposition", xlsxAttachment)
		c.Header("Content-Type", xlsxMIME)
		c.Status(http.StatusOK)
		if err := f.Write(c.Writer); err != nil {
			c.Error(err)
		}

	case "json":
		h.cacheIdempotentResponse(c, report)
		response.Success(c, http.StatusOK, report, nil)

	default:
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput,
			"Unsupported format. Use json, csv or xlsx.", nil)
	}
}

// cacheIdempotentResponse stores the finished report under the cache key
// set by the idempotency middleware, so a replayed Idempotency-Key gets
// the original result without reprocessing the sheet.
func (h *Handler) cacheIdempotentResponse(c *gin.Context, report BatchReport) {
	if h.rdb == nil {
		return
	}
	cacheKey, ok := c.Get("idempotency_cache_key")
	if !ok {
		return
	}

	if payload, err := json.Marshal(report); err == nil {
		h.rdb.Set(c.Request.Context(), cacheKey.(string), payload, idempotencyTTL)
	}
}

func (h *Handler) releaseIdempotencyLock(c *gin.Context) {
	if h.rdb == nil {
		return
	}
	if lockKey, ok := c.Get("idempotency_lock_key"); ok {
		h.rdb.Del(c.Request.Context(), lockKey.(string))
	}
}
