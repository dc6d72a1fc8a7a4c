// Package ingest turns raw bank-statement files into canonical transactions.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartspend/backend/internal/domain"
	"github.com/smartspend/backend/internal/taxonomy"
)

// ParseError records a row-local parse problem. Errors are collected, never
// raised; a Row of 0 marks a file-level failure.
type ParseError struct {
	Row    int
	Reason string
}

// Message renders the error in the import-result surface form.
func (e ParseError) Message() string {
	if e.Row == 0 {
		return e.Reason
	}
	return fmt.Sprintf("Row %d: %s", e.Row, e.Reason)
}

// Messages flattens parse errors into the strings the import result carries.
func Messages(errs []ParseError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Message())
	}
	return out
}

// Column synonym tables. Header names are matched case-insensitively; the
// first non-empty value per field wins.
var (
	debitColumns       = []string{"debit", "withdrawal", "debit amount"}
	creditColumns      = []string{"credit", "deposit", "credit amount"}
	amountColumns      = []string{"amount", "transaction_amount", "txn amount"}
	dateColumns        = []string{"date", "transaction_date", "value_date", "tran date", "txn date", "transaction dt"}
	descriptionColumns = []string{"description", "narration", "particulars", "details", "remarks"}
	merchantColumns    = []string{"merchant", "payee", "counterparty"}
	categoryColumns    = []string{"category", "category name", "category_name"}
)

// dateLayouts are tried in order; numeric elements accept one or two digits.
var dateLayouts = []string{
	"2006-1-2",
	"2/1/2006",
	"1/2/2006",
	"2-1-2006",
	"2006/1/2",
	"2 Jan 2006",
	"2 January 2006",
	"2-Jan-2006",
	"2-January-2006",
}

const (
	maxDescriptionLen = 200
	maxMerchantLen    = 100
)

// Parser normalizes delimited statement content into canonical transactions.
type Parser struct {
	log zerolog.Logger
	now func() time.Time
}

// NewParser creates a statement parser.
func NewParser(log zerolog.Logger) *Parser {
	return &Parser{
		log: log,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Parse reads CSV statement content and returns canonical transactions plus
// row-level errors. Row problems never abort the pass; a failure to read the
// tabular structure at all yields zero transactions and one file-level error.
func (p *Parser) Parse(raw []byte, ownerID string) ([]domain.Transaction, []ParseError) {
	content := strings.TrimPrefix(string(raw), "\ufeff")

	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, []ParseError{{Reason: fmt.Sprintf("Failed to parse CSV: %v", err)}}
	}
	headers := normalizeHeaders(header)

	var (
		transactions []domain.Transaction
		errs         []ParseError
	)

	for rowNum := 2; ; rowNum++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			errs = append(errs, ParseError{Row: rowNum, Reason: err.Error()})
			continue
		}

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

// parseRow converts one record into a transaction. Both return values nil
// means the row was blank/separator content and is silently skipped.
func (p *Parser) parseRow(headers []string, record []string, rowNum int, ownerID string) (*domain.Transaction, *ParseError) {
	row := make(map[string]string, len(headers))
	for i, name := range headers {
		if name == "" || i >= len(record) {
			continue
		}
		row[name] = strings.TrimSpace(record[i])
	}

	debitRaw := firstNonEmpty(row, debitColumns)
	creditRaw := firstNonEmpty(row, creditColumns)
	amountRaw := firstNonEmpty(row, amountColumns)
	dateStr := firstNonEmpty(row, dateColumns)

	description := firstNonEmpty(row, descriptionColumns)
	if description == "" {
		description = "Import"
	}
	merchant := firstNonEmpty(row, merchantColumns)
	if merchant == "" {
		if fields := strings.Fields(description); len(fields) > 0 {
			merchant = fields[0]
		} else {
			merchant = "Unknown"
		}
	}
	chequeNo := firstNonEmpty(row, []string{"chq no", "cheque no", "chq no."})

	debitAmount, debitOK := parseAmount(debitRaw)
	creditAmount, creditOK := parseAmount(creditRaw)
	genericAmount, genericOK := parseAmount(amountRaw)

	// Amount precedence: debit, then credit, then the generic signed column.
	txType := domain.TypeExpense
	var amount float64
	var haveAmount bool

	switch {
	case debitOK && debitAmount != 0:
		amount = abs(debitAmount)
		txType = domain.TypeExpense
		haveAmount = true
	case creditOK && creditAmount != 0:
		amount = abs(creditAmount)
		txType = domain.TypeIncome
		haveAmount = true
	case genericOK && genericAmount != 0:
		amount = abs(genericAmount)
		if genericAmount > 0 {
			txType = domain.TypeIncome
		} else {
			txType = domain.TypeExpense
		}
		haveAmount = true
	}

	hasAmountContent := debitRaw != "" || creditRaw != "" || amountRaw != ""

	// A row carrying neither date nor amount content is a blank/separator row.
	if dateStr == "" && !hasAmountContent {
		return nil, nil
	}

	if !haveAmount {
		if !hasAmountContent {
			return nil, nil
		}
		return nil, &ParseError{Row: rowNum, Reason: "Invalid amount"}
	}

	if dateStr == "" {
		return nil, &ParseError{Row: rowNum, Reason: "Missing date"}
	}

	date := p.parseDate(dateStr)

	category := firstNonEmpty(row, categoryColumns)
	if category == "" {
		category = taxonomy.KeywordCategory(description, merchant)
		if category == "Others" && txType == domain.TypeIncome {
			category = "Income"
		}
	}

	if chequeNo != "" {
		description = fmt.Sprintf("%s (Chq: %s)", description, chequeNo)
	}

	paymentMethod := row["payment_method"]
	if paymentMethod == "" {
		paymentMethod = "Bank Transfer"
	}

	tx := domain.Transaction{
		ID:            domain.NewID(),
		UserID:        ownerID,
		Amount:        amount,
		Category:      category,
		Description:   truncate(description, maxDescriptionLen),
		Merchant:      truncate(merchant, maxMerchantLen),
		Date:          date,
		Type:          txType,
		PaymentMethod: paymentMethod,
		Location:      row["location"],
	}
	return &tx, nil
}

// parseDate tries the supported layouts in order. An unparseable date does
// not reject the row: the current processing instant is substituted and a
// warning logged.
func (p *Parser) parseDate(value string) time.Time {
	trimmed := strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.UTC()
		}
	}
	p.log.Warn().Str("date", value).Msg("Falling back to current time for unparsable date")
	return p.now()
}

// parseAmount cleans bank-notation noise and parses a signed amount. The
// second return is false when the source held no parseable value, letting the
// caller fall through to the next amount source.
func parseAmount(value string) (float64, bool) {
	if value == "" {
		return 0, false
	}

	cleaned := amountCleaner.Replace(value)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" || cleaned == "-" || cleaned == "--" {
		return 0, false
	}

	negative := false
	if strings.Contains(cleaned, "(") && strings.Contains(cleaned, ")") {
		negative = true
		cleaned = strings.ReplaceAll(cleaned, "(", "")
		cleaned = strings.ReplaceAll(cleaned, ")", "")
	}
	if strings.HasPrefix(cleaned, "-") {
		negative = true
	}

	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}

	if negative {
		amount = -abs(amount)
	}
	return amount, true
}

var amountCleaner = strings.NewReplacer(
	",", "",
	"₹", "",
	"rs", "",
	"RS", "",
	"INR", "",
	"Dr", "",
	"dr", "",
	"CR", "",
	"Cr", "",
)

func normalizeHeaders(header []string) []string {
	normalized := make([]string, len(header))
	for i, name := range header {
		name = strings.ReplaceAll(name, "\ufeff", "")
		normalized[i] = strings.ToLower(strings.TrimSpace(name))
	}
	return normalized
}

func firstNonEmpty(row map[string]string, keys []string) string {
	for _, key := range keys {
		if value := row[key]; value != "" {
			return value
		}
	}
	return ""
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
