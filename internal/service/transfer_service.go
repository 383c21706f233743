package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lexterminus/terminus-api/internal/models"
	appErrors "github.com/lexterminus/terminus-api/pkg/errors"
	"github.com/lexterminus/terminus-api/pkg/export"
	"github.com/lexterminus/terminus-api/pkg/storage"
)

// termCSVHeaders is the interchange schema, in order. Files whose header row
// deviates in any way are rejected outright.
var termCSVHeaders = []string{
	"id", "caseNumber", "court", "termTypeCode", "termTypeLabel",
	"startDate", "businessDays", "dueDate", "dueTime", "notes", "lastModified",
}

type transferTermRepository interface {
	List(ctx context.Context) ([]models.Term, error)
	BulkUpsert(ctx context.Context, terms []models.Term) error
}

type dueSoonReader interface {
	DueSoon(ctx context.Context) ([]models.QueryItem, error)
}

// TransferService moves the term collection across the CSV interchange
// format and renders the due-soon report as PDF. Import merges by id: known
// ids are replaced, new ids inserted, and malformed rows skipped with a
// count rather than failing the batch.
type TransferService struct {
	terms   transferTermRepository
	queries dueSoonReader
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	cache   *CacheService
	archive *storage.LocalStorage
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
}

// NewTransferService constructs a TransferService.
func NewTransferService(terms transferTermRepository, queries dueSoonReader, cache *CacheService, logger *zap.Logger) *TransferService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransferService{
		terms:   terms,
		queries: queries,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		cache:   cache,
		logger:  logger,
	}
}

// AttachArchive enables retained on-disk copies of generated exports.
func (s *TransferService) AttachArchive(archive *storage.LocalStorage, signer *storage.SignedURLSigner) {
	s.archive = archive
	s.signer = signer
}

// Archive stores a copy of a generated export and hands back its archive
// name plus a signed download token. Archiving is best-effort; empty values
// mean the archive is disabled or the write failed.
func (s *TransferService) Archive(payload []byte, extension string) (string, string) {
	if s.archive == nil || s.signer == nil {
		return "", ""
	}
	name := fmt.Sprintf("terms-%s.%s", time.Now().UTC().Format("20060102-150405"), extension)
	if _, err := s.archive.Save(name, payload); err != nil {
		s.logger.Warn("export archive write failed", zap.String("name", name), zap.Error(err))
		return "", ""
	}
	token, _, err := s.signer.Generate(newTermID(), name)
	if err != nil {
		s.logger.Warn("export token generation failed", zap.String("name", name), zap.Error(err))
		return name, ""
	}
	return name, token
}

// OpenArchive validates the download token and opens the archived export.
func (s *TransferService) OpenArchive(name, token string) (*os.File, error) {
	if s.archive == nil || s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export archive is disabled")
	}
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil || relPath != name {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid or expired download token")
	}
	file, err := s.archive.Open(name)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "archived export not found")
	}
	return file, nil
}

// Export renders the whole collection as CSV.
func (s *TransferService) Export(ctx context.Context) ([]byte, error) {
	terms, err := s.terms.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load terms for export")
	}
	return s.RenderCSV(terms)
}

// RenderCSV encodes terms into the interchange schema.
func (s *TransferService) RenderCSV(terms []models.Term) ([]byte, error) {
	rows := make([]map[string]string, 0, len(terms))
	for _, term := range terms {
		dueTime := ""
		if term.DueTime != nil {
			dueTime = *term.DueTime
		}
		rows = append(rows, map[string]string{
			"id":            term.ID,
			"caseNumber":    term.CaseNumber,
			"court":         term.Court,
			"termTypeCode":  term.TermTypeCode,
			"termTypeLabel": term.TermTypeLabel,
			"startDate":     term.StartDate,
			"businessDays":  strconv.Itoa(term.BusinessDays),
			"dueDate":       term.DueDate,
			"dueTime":       dueTime,
			"notes":         term.Notes,
			"lastModified":  term.LastModified.UTC().Format(time.RFC3339Nano),
		})
	}
	return s.csv.Render(export.Dataset{Headers: termCSVHeaders, Rows: rows})
}

// ParseCSV decodes an interchange file. The header row must match the
// schema exactly; row-level defects skip that row and continue. The second
// return value is the skipped-row count.
func (s *TransferService) ParseCSV(r io.Reader) ([]models.Term, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, 0, appErrors.Clone(appErrors.ErrSchemaMismatch, "file has no header row")
	}
	if !headerMatches(header) {
		return nil, 0, appErrors.Clone(appErrors.ErrSchemaMismatch,
			fmt.Sprintf("header must be exactly %q", strings.Join(termCSVHeaders, ",")))
	}

	terms := make([]models.Term, 0)
	skipped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		term, ok := parseTermRecord(record)
		if !ok {
			skipped++
			continue
		}
		terms = append(terms, term)
	}
	return terms, skipped, nil
}

// Import merges a CSV file into the collection in one transaction.
func (s *TransferService) Import(ctx context.Context, r io.Reader) (*models.ImportResult, error) {
	terms, skipped, err := s.ParseCSV(r)
	if err != nil {
		return nil, err
	}
	if err := s.terms.BulkUpsert(ctx, terms); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to import terms")
	}
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, termQueryCachePattern)
	}
	s.logger.Info("term import finished", zap.Int("imported", len(terms)), zap.Int("skipped", skipped))
	return &models.ImportResult{Imported: len(terms), Skipped: skipped}, nil
}

// ExportPDF renders the due-soon view as a tabular PDF report.
func (s *TransferService) ExportPDF(ctx context.Context) ([]byte, error) {
	items, err := s.queries.DueSoon(ctx)
	if err != nil {
		return nil, err
	}
	headers := []string{"Case", "Court", "Term type", "Due date", "Days", "Status"}
	rows := make([]map[string]string, 0, len(items))
	for _, item := range items {
		days := ""
		if item.Remaining != nil {
			days = strconv.Itoa(item.Remaining.Days)
		}
		rows = append(rows, map[string]string{
			"Case":      item.Term.CaseNumber,
			"Court":     item.Term.Court,
			"Term type": item.Term.TermTypeLabel,
			"Due date":  item.Term.DueDate,
			"Days":      days,
			"Status":    item.Status,
		})
	}
	return s.pdf.Render(export.Dataset{Headers: headers, Rows: rows}, "Upcoming deadlines")
}

func headerMatches(header []string) bool {
	if len(header) != len(termCSVHeaders) {
		return false
	}
	for i, h := range header {
		if strings.TrimSpace(h) != termCSVHeaders[i] {
			return false
		}
	}
	return true
}

// parseTermRecord validates one data row. Required fields are id, a valid
// start date and a non-negative business-day count; a present but malformed
// due date also fails the row. Failed rows are dropped by the caller.
func parseTermRecord(record []string) (models.Term, bool) {
	if len(record) != len(termCSVHeaders) {
		return models.Term{}, false
	}
	id := strings.TrimSpace(record[0])
	startDate := strings.TrimSpace(record[5])
	if id == "" {
		return models.Term{}, false
	}
	if _, err := ParseDate(startDate); err != nil {
		return models.Term{}, false
	}
	businessDays, err := strconv.Atoi(strings.TrimSpace(record[6]))
	if err != nil || businessDays < 0 {
		return models.Term{}, false
	}

	term := models.Term{
		ID:            id,
		CaseNumber:    strings.TrimSpace(record[1]),
		Court:         strings.TrimSpace(record[2]),
		TermTypeCode:  strings.TrimSpace(record[3]),
		TermTypeLabel: strings.TrimSpace(record[4]),
		StartDate:     startDate,
		BusinessDays:  businessDays,
		Notes:         record[9],
	}
	dueDate := strings.TrimSpace(record[7])
	if dueDate != "" {
		if _, err := ParseDate(dueDate); err != nil {
			return models.Term{}, false
		}
		term.DueDate = dueDate
	}
	if dueTime := strings.TrimSpace(record[8]); dueTime != "" {
		term.DueTime = &dueTime
	}
	if lastModified, err := time.Parse(time.RFC3339, strings.TrimSpace(record[10])); err == nil {
		term.LastModified = lastModified.UTC()
	} else {
		term.LastModified = time.Now().UTC()
	}
	return term, true
}
