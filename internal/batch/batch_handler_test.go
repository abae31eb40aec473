package batch_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"vn-payroll/internal/batch"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeBatchService struct {
	processFn func(ctx context.Context, fileName string, rows []batch.InputRow) (batch.BatchReport, error)
}

func (f *fakeBatchService) Process(ctx context.Context, fileName string, rows []batch.InputRow) (batch.BatchReport, error) {
	return f.processFn(ctx, fileName, rows)
}

func multipartUpload(t *testing.T, fileName, content string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile("file", fileName)
	assert.NoError(t, err)
	_, err = fw.Write([]byte(content))
	assert.NoError(t, err)
	assert.NoError(t, mw.Close())

	return body, mw.FormDataContentType()
}

func performUpload(handler *batch.Handler, target string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", contentType)
	c.Request = req

	handler.Upload(c)
	return w
}

func TestUploadMissingFile(t *testing.T) {
	handler := batch.NewHandler(&fakeBatchService{}, nil)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/gross-to-net/batch", strings.NewReader(""))

	handler.Upload(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "file")
}

func TestUploadMissingColumnsRejectsWholeBatch(t *testing.T) {
	called := false
	handler := batch.NewHandler(&fakeBatchService{
		processFn: func(ctx context.Context, fileName string, rows []batch.InputRow) (batch.BatchReport, error) {
			called = true
			return batch.BatchReport{}, nil
		},
	}, nil)

	body, contentType := multipartUpload(t, "salaries.csv", "GrossIncome,Deps\n30000000,1\n")
	w := performUpload(handler, "/api/v1/gross-to-net/batch", body, contentType)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Missing required columns")
	assert.False(t, called)
}

func TestUploadJSONResponse(t *testing.T) {
	handler := batch.NewHandler(&fakeBatchService{
		processFn: func(ctx context.Context, fileName string, rows []batch.InputRow) (batch.BatchReport, error) {
			assert.Equal(t, "salaries.csv", fileName)
			assert.Len(t, rows, 1)
			return batch.BatchReport{
				BatchID:     "b-1",
				FileName:    fileName,
				RuleVersion: "2025-04",
				TotalRows:   1,
				SuccessRows: 1,
				Rows: []batch.RowResult{{
					GrossIncome:       "30000000",
					Dependents:        "1",
					Region:            "1",
					CalculationStatus: batch.StatusSuccess,
				}},
			}, nil
		},
	}, nil)

	body, contentType := multipartUpload(t, "salaries.csv", "GrossIncome,Dependents,Region\n30000000,1,1\n")
	w := performUpload(handler, "/api/v1/gross-to-net/batch", body, contentType)

	assert.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Ok   bool              `json:"ok"`
		Data batch.BatchReport `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Ok)
	assert.Equal(t, "b-1", envelope.Data.BatchID)
	assert.Equal(t, 1, envelope.Data.SuccessRows)
}

func TestUploadCSVResponse(t *testing.T) {
	net := int64(25_882_500)
	handler := batch.NewHandler(&fakeBatchService{
		processFn: func(ctx context.Context, fileName string, rows []batch.InputRow) (batch.BatchReport, error) {
			return batch.BatchReport{
				Rows: []batch.RowResult{{
					GrossIncome:       "30000000",
					Dependents:        "1",
					Region:            "1",
					NetIncome:         &net,
					CalculationStatus: batch.StatusSuccess,
				}},
			}, nil
		},
	}, nil)

	body, contentType := multipartUpload(t, "salaries.csv", "GrossIncome,Dependents,Region\n30000000,1,1\n")
	w := performUpload(handler, "/api/v1/gross-to-net/batch?format=csv", body, contentType)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "gross_net_results.csv")

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "GrossIncome,Dependents,Region,NetIncome"))
	assert.Contains(t, lines[1], "25882500")
	assert.Contains(t, lines[1], batch.StatusSuccess)
}

func TestUploadXLSXResponse(t *testing.T) {
	handler := batch.NewHandler(&fakeBatchService{
		processFn: func(ctx context.Context, fileName string, rows []batch.InputRow) (batch.BatchReport, error) {
			return batch.BatchReport{Rows: []batch.RowResult{{
				GrossIncome:       "20000000",
				Dependents:        "0",
				Region:            "1",
				CalculationStatus: batch.StatusSuccess,
			}}}, nil
		},
	}, nil)

	body, contentType := multipartUpload(t, "salaries.csv", "GrossIncome,Dependents,Region\n20000000,0,1\n")
	w := performUpload(handler, "/api/v1/gross-to-net/batch?format=xlsx", body, contentType)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	assert.NotZero(t, w.Body.Len())
}

func TestUploadUnknownFormat(t *testing.T) {
	handler := batch.NewHandler(&fakeBatchService{
		processFn: func(ctx context.Context, fileName string, rows []batch.InputRow) (batch.BatchReport, error) {
			return batch.BatchReport{}, nil
		},
	}, nil)

	body, contentType := multipartUpload(t, "salaries.csv", "GrossIncome,Dependents,Region\n20000000,0,1\n")
	w := performUpload(handler, "/api/v1/gross-to-net/batch?format=pdf", body, contentType)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Unsupported format")
}
