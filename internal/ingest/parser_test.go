package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartspend/backend/internal/domain"
)

func newTestParser() *Parser {
	p := NewParser(zerolog.Nop())
	p.now = func() time.Time {
		return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	}
	return p
}

func TestParseAmountNotations(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
		ok    bool
	}{
		{"plain", "450.00", 450, true},
		{"thousands separator", "1,25,000.50", 125000.50, true},
		{"rupee symbol", "₹999", 999, true},
		{"inr prefix", "INR 2500", 2500, true},
		{"dr suffix", "450.00 Dr", 450, true},
		{"cr suffix", "75000 Cr", 75000, true},
		{"negative sign", "-450", -450, true},
		{"parenthetical negative", "(1200.00)", -1200, true},
		{"empty", "", 0, false},
		{"dash placeholder", "-", 0, false},
		{"double dash", "--", 0, false},
		{"non numeric residual", "N/A", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseAmount(tt.input)
			if got != tt.want || ok != tt.ok {
				t.Errorf("parseAmount(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParseDirectionality(t *testing.T) {
	csv := "date,description,debit,credit,amount\n" +
		"2024-01-05,Zomato order,450.00,,\n" +
		"2024-01-10,Salary credit,,75000.00,\n" +
		"2024-01-12,Refund,,,1200.00\n" +
		"2024-01-13,Card payment,,,-300.00\n" +
		"2024-01-14,Reversal,,,(250.00)\n" +
		"2024-01-15,Charge,150.00 Dr,,\n"

	p := newTestParser()
	txs, errs := p.Parse([]byte(csv), "user-1")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", Messages(errs))
	}
	if len(txs) != 6 {
		t.Fatalf("expected 6 transactions, got %d", len(txs))
	}

	want := []struct {
		txType string
		amount float64
	}{
		{domain.TypeExpense, 450},
		{domain.TypeIncome, 75000},
		{domain.TypeIncome, 1200},
		{domain.TypeExpense, 300},
		{domain.TypeExpense, 250},
		{domain.TypeExpense, 150},
	}
	for i, w := range want {
		if txs[i].Type != w.txType || txs[i].Amount != w.amount {
			t.Errorf("tx %d = (%s, %v), want (%s, %v)", i, txs[i].Type, txs[i].Amount, w.txType, w.amount)
		}
	}
}

func TestParseDateFormats(t *testing.T) {
	inputs := []string{
		"2024-03-15",
		"15/03/2024",
		"03/15/2024",
		"15-03-2024",
		"2024/03/15",
		"15 Mar 2024",
		"15 March 2024",
		"15-Mar-2024",
		"15-March-2024",
	}

	p := newTestParser()
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			got := p.parseDate(input)
			if !got.Equal(want) {
				t.Errorf("parseDate(%q) = %v, want %v", input, got, want)
			}
		})
	}
}

func TestParseUnparseableDateKeepsRow(t *testing.T) {
	csv := "date,description,debit\nnot-a-date,Coffee,120.00\n"

	p := newTestParser()
	txs, errs := p.Parse([]byte(csv), "user-1")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", Messages(errs))
	}
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}
	if !txs[0].Date.Equal(p.now()) {
		t.Errorf("expected fallback to processing instant, got %v", txs[0].Date)
	}
}

func TestParseRowErrors(t *testing.T) {
	csv := "date,description,debit\n" +
		",Blank separator,\n" + // blank row, silently skipped
		"2024-01-05,Zero amount,0\n" + // amount content but zero
		",Missing date,500.00\n" + // amount but no date
		"2024-01-06,Bad amount,abc\n" + // unparsable amount content
		"2024-01-07,Good,75.00\n"

	p := newTestParser()
	txs, errs := p.Parse([]byte(csv), "user-1")

	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}
	if len(errs) != 3 {
		t.Fatalf("expected 3 errors, got %d: %v", len(errs), Messages(errs))
	}

	wantMessages := []string{
		"Row 3: Invalid amount",
		"Row 4: Missing date",
		"Row 5: Invalid amount",
	}
	for i, want := range wantMessages {
		if errs[i].Message() != want {
			t.Errorf("error %d = %q, want %q", i, errs[i].Message(), want)
		}
	}
}

func TestParseHeaderSynonyms(t *testing.T) {
	csv := "Tran Date,Narration,Withdrawal,Payee\n" +
		"05/01/2024,Uber ride home,240.00,Uber\n"

	p := newTestParser()
	txs, errs := p.Parse([]byte(csv), "user-1")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", Messages(errs))
	}
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}

	tx := txs[0]
	if tx.Description != "Uber ride home" {
		t.Errorf("description = %q", tx.Description)
	}
	if tx.Merchant != "Uber" {
		t.Errorf("merchant = %q", tx.Merchant)
	}
	if tx.Category != "Transportation" {
		t.Errorf("category = %q", tx.Category)
	}
	if want := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC); !tx.Date.Equal(want) {
		t.Errorf("date = %v, want %v", tx.Date, want)
	}
}

func TestParseChequeSuffixAndCaps(t *testing.T) {
	longDesc := strings.Repeat("x", 250)
	csv := "date,description,debit,chq no\n" +
		"2024-01-05," + longDesc + ",100.00,1234\n"

	p := newTestParser()
	txs, errs := p.Parse([]byte(csv), "user-1")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", Messages(errs))
	}
	tx := txs[0]
	if len(tx.Description) != 200 {
		t.Errorf("description length = %d, want 200", len(tx.Description))
	}
	if len(tx.Merchant) > 100 {
		t.Errorf("merchant length = %d, want <= 100", len(tx.Merchant))
	}

	short := "date,description,debit,cheque no\n2024-01-05,Rent payment,100.00,987\n"
	txs, _ = p.Parse([]byte(short), "user-1")
	if txs[0].Description != "Rent payment (Chq: 987)" {
		t.Errorf("description = %q, want cheque suffix", txs[0].Description)
	}
}

func TestParseExplicitCategoryWins(t *testing.T) {
	csv := "date,description,debit,category\n" +
		"2024-01-05,Zomato order,450.00,Travel\n"

	p := newTestParser()
	txs, _ := p.Parse([]byte(csv), "user-1")
	if txs[0].Category != "Travel" {
		t.Errorf("category = %q, want explicit column value", txs[0].Category)
	}
}

func TestParseBOMAndCatastrophicFailure(t *testing.T) {
	p := newTestParser()

	withBOM := "\ufeffdate,description,debit\n2024-01-05,Coffee,120.00\n"
	txs, errs := p.Parse([]byte(withBOM), "user-1")
	if len(txs) != 1 || len(errs) != 0 {
		t.Fatalf("BOM content: got %d txs, %d errs", len(txs), len(errs))
	}

	broken := "\"unterminated\ndate,description"
	txs, errs = p.Parse([]byte(broken), "user-1")
	if len(txs) != 0 {
		t.Errorf("expected no transactions for broken content, got %d", len(txs))
	}
	if len(errs) != 1 || errs[0].Row != 0 {
		t.Fatalf("expected one file-level error, got %v", errs)
	}
}

func TestParseConcreteScenario(t *testing.T) {
	csv := "date,description,merchant,debit,credit\n" +
		"2024-01-05,Zomato order,Zomato,450.00,,\n" +
		"2024-01-10,Salary credit,Employer,,75000.00\n"

	p := newTestParser()
	txs, errs := p.Parse([]byte(csv), "user-1")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", Messages(errs))
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}

	if txs[0].Type != domain.TypeExpense || txs[0].Amount != 450.0 || txs[0].Category != "Food & Dining" {
		t.Errorf("expense tx = %+v", txs[0])
	}
	if txs[1].Type != domain.TypeIncome || txs[1].Amount != 75000.0 || txs[1].Category != "Income" {
		t.Errorf("income tx = %+v", txs[1])
	}
}
