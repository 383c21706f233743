package handler

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lexterminus/terminus-api/internal/models"
	appErrors "github.com/lexterminus/terminus-api/pkg/errors"
	"github.com/lexterminus/terminus-api/pkg/response"
)

type transferService interface {
	Export(ctx context.Context) ([]byte, error)
	ExportPDF(ctx context.Context) ([]byte, error)
	Import(ctx context.Context, r io.Reader) (*models.ImportResult, error)
	Archive(payload []byte, extension string) (string, string)
	OpenArchive(name, token string) (*os.File, error)
}

// TransferHandler exposes CSV import/export and the PDF report.
type TransferHandler struct {
	service        transferService
	importMaxBytes int64
}

// NewTransferHandler builds a new handler.
func NewTransferHandler(service transferService, importMaxBytes int64) *TransferHandler {
	if importMaxBytes <= 0 {
		importMaxBytes = 5 << 20
	}
	return &TransferHandler{service: service, importMaxBytes: importMaxBytes}
}

// ExportCSV godoc
// @Summary Export all terms as CSV
// @Tags Transfer
// @Produce text/csv
// @Success 200 {string} string "CSV payload"
// @Router /terms/export [get]
func (h *TransferHandler) ExportCSV(c *gin.Context) {
	payload, err := h.service.Export(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := "terms-" + time.Now().UTC().Format("2006-01-02") + ".csv"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	archiveName, archiveToken := h.service.Archive(payload, "csv")
	setArchiveHeaders(c, archiveName, archiveToken)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", payload)
}

// ExportPDF godoc
// @Summary Export the due-soon report as PDF
// @Tags Transfer
// @Produce application/pdf
// @Success 200 {string} string "PDF payload"
// @Router /terms/export/pdf [get]
func (h *TransferHandler) ExportPDF(c *gin.Context) {
	payload, err := h.service.ExportPDF(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := "deadlines-" + time.Now().UTC().Format("2006-01-02") + ".pdf"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	archiveName, archiveToken := h.service.Archive(payload, "pdf")
	setArchiveHeaders(c, archiveName, archiveToken)
	c.Data(http.StatusOK, "application/pdf", payload)
}

// Import godoc
// @Summary Import terms from a CSV file
// @Tags Transfer
// @Accept text/csv
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /terms/import [post]
func (h *TransferHandler) Import(c *gin.Context) {
	reader := io.Reader(c.Request.Body)
	if file, _, err := c.Request.FormFile("file"); err == nil {
		defer file.Close()
		reader = file
	}
	result, err := h.service.Import(c.Request.Context(), io.LimitReader(reader, h.importMaxBytes))
	if err != nil {
		response.Error(c, err)
		return
	}
	if result.Imported == 0 && result.Skipped > 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "no importable rows in file"))
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Download godoc
// @Summary Download an archived export snapshot
// @Tags Transfer
// @Param name path string true "Archive file name"
// @Param token query string true "Signed download token"
// @Success 200 {string} string "File payload"
// @Router /exports/{name} [get]
func (h *TransferHandler) Download(c *gin.Context) {
	name := c.Param("name")
	file, err := h.service.OpenArchive(name, c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	contentType := "application/octet-stream"
	switch {
	case strings.HasSuffix(name, ".csv"):
		contentType = "text/csv; charset=utf-8"
	case strings.HasSuffix(name, ".pdf"):
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file)
}

func setArchiveHeaders(c *gin.Context, name, token string) {
	if name == "" {
		return
	}
	c.Header("X-Archive-Name", name)
	if token != "" {
		c.Header("X-Archive-Token", token)
	}
}
