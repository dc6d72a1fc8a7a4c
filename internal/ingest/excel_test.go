package ingest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/smartspend/backend/internal/domain"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			t.Fatalf("writing row %d: %v", i+1, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("writing workbook: %v", err)
	}
	return buf.Bytes()
}

func TestParseWorkbook(t *testing.T) {
	raw := buildWorkbook(t, [][]interface{}{
		{"Date", "Description", "Amount"},
		{"2024-01-15", "Zomato order", "-450"},
		{"2024-01-16", "Salary credit", "75000"},
		{"2024-01-17", "Mystery charge", "N/A"},
	})

	p := newTestParser()
	txs, errs := p.ParseWorkbook(raw, "user-1")

	if len(txs) != 2 {
		t.Fatalf("transactions = %d, want 2 (errors: %v)", len(txs), Messages(errs))
	}
	if txs[0].Amount != 450 || txs[0].Type != domain.TypeExpense || txs[0].Category != "Food & Dining" {
		t.Errorf("first transaction = %+v", txs[0])
	}
	if txs[1].Amount != 75000 || txs[1].Type != domain.TypeIncome || txs[1].Category != "Income" {
		t.Errorf("second transaction = %+v", txs[1])
	}
	if len(errs) != 1 || Messages(errs)[0] != "Row 4: Invalid amount" {
		t.Errorf("errors = %v, want [Row 4: Invalid amount]", Messages(errs))
	}
}

func TestParseWorkbookRejectsCorruptContent(t *testing.T) {
	p := newTestParser()

	txs, errs := p.ParseWorkbook([]byte("not a spreadsheet"), "user-1")

	if len(txs) != 0 {
		t.Errorf("transactions = %d, want 0", len(txs))
	}
	if len(errs) != 1 || !strings.HasPrefix(errs[0].Reason, "Failed to parse spreadsheet") {
		t.Errorf("errors = %v, want a single parse failure", errs)
	}
}
