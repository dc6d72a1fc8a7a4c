package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/smartspend/backend/internal/domain"
	"github.com/smartspend/backend/internal/ingest"
)

// ErrUnsupportedFile rejects statement uploads that are neither CSV nor Excel.
var ErrUnsupportedFile = errors.New("only CSV and Excel files are supported")

// dbUnavailableWarning is surfaced when parsed transactions could not be
// persisted; they are still reported back to the caller.
const dbUnavailableWarning = "Database unavailable; transactions saved in session only"

// ImportService runs the statement import flow: parse, enrich, dedup, persist.
type ImportService struct {
	parser   *ingest.Parser
	repo     TransactionRepository
	enricher Enricher
	log      zerolog.Logger
}

// NewImportService wires an ImportService.
func NewImportService(parser *ingest.Parser, repo TransactionRepository, enricher Enricher, log zerolog.Logger) *ImportService {
	return &ImportService{parser: parser, repo: repo, enricher: enricher, log: log}
}

// Import parses an uploaded statement for the given owner and persists the
// resulting transactions. Enrichment is best effort, duplicate checks fail
// open, and a persistence failure downgrades to a warning: the prepared
// transactions are still reported and counted.
func (s *ImportService) Import(ctx context.Context, ownerID, filename string, content []byte, skipDuplicates bool) (domain.ImportResult, error) {
	var (
		transactions []domain.Transaction
		parseErrs    []ingest.ParseError
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		transactions, parseErrs = s.parser.Parse(content, ownerID)
	case ".xlsx", ".xls":
		transactions, parseErrs = s.parser.ParseWorkbook(content, ownerID)
	default:
		return domain.ImportResult{}, ErrUnsupportedFile
	}

	errs := ingest.Messages(parseErrs)

	ptrs := make([]*domain.Transaction, len(transactions))
	for i := range transactions {
		ptrs[i] = &transactions[i]
	}
	s.enricher.Enrich(ctx, ptrs, true)

	duplicates := 0
	unique := transactions
	if skipDuplicates {
		unique = nil
		for _, tx := range transactions {
			exists, err := s.repo.Exists(ctx, ownerID, tx.Amount, tx.Date, tx.Description)
			if err != nil {
				s.log.Warn().Err(err).Msg("Duplicate check failed during import; keeping candidate")
				exists = false
			}
			if exists {
				duplicates++
				continue
			}
			unique = append(unique, tx)
		}
	}

	successful := 0
	insertWarning := 0
	if len(unique) > 0 {
		if err := s.repo.InsertMany(ctx, unique); err != nil {
			s.log.Error().Err(err).Msg("Database failure while importing transactions")
			errs = append(errs, dbUnavailableWarning)
			insertWarning = 1
		}
		successful = len(unique)
	}

	failed := len(errs) - insertWarning
	if failed < 0 {
		failed = 0
	}

	preview := append([]domain.Transaction{}, unique...)
	if len(preview) > previewLimit {
		preview = preview[:previewLimit]
	}

	return domain.ImportResult{
		TotalRows:            len(transactions),
		SuccessfulImports:    successful,
		FailedImports:        failed,
		DuplicateCount:       duplicates,
		Errors:               errs,
		ImportedTransactions: preview,
	}, nil
}
