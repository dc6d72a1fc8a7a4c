package ingest

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/smartspend/backend/internal/domain"
)

// ParseWorkbook reads the first sheet of an xlsx workbook and runs it through
// the same row pipeline as CSV content. Spreadsheet statements therefore get
// identical column resolution, amount precedence, and error semantics.
func (p *Parser) ParseWorkbook(raw []byte, ownerID string) ([]domain.Transaction, []ParseError) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, []ParseError{{Reason: fmt.Sprintf("Failed to parse spreadsheet: %v", err)}}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, []ParseError{{Reason: "Failed to parse spreadsheet: no sheets"}}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, []ParseError{{Reason: fmt.Sprintf("Failed to parse spreadsheet: %v", err)}}
	}
	if len(rows) == 0 {
		return nil, nil
	}

	headers := normalizeHeaders(rows[0])

	var (
		transactions []domain.Transaction
		errs         []ParseError
	)

	for i, record := range rows[1:] {
		rowNum := i + 2
		tx, perr := p.parseRow(headers, record, rowNum, ownerID)
		if perr != nil {
			errs = append(errs, *perr)
			continue
		}
		if tx != nil {
			transactions = append(transactions, *tx)
		}
	}

	return transactions, errs
}
