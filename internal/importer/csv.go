package importer

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/concilia-dev/concilia/internal/model"
	"github.com/concilia-dev/concilia/internal/textnorm"
)

// CSVParser reads bank statements exported as CSV. Brazilian banks disagree
// on almost everything: separators, date formats, decimal commas, column
// names. The parser detects all of those from the file itself.
type CSVParser struct {
	// AccountID stamps every parsed transaction; CSV exports rarely carry
	// the account inline.
	AccountID string
}

// NewCSVParser creates a CSV statement parser for one account.
func NewCSVParser(accountID string) *CSVParser {
	return &CSVParser{AccountID: accountID}
}

// Recognized header names after normalization.
var (
	dateHeaders   = []string{"data", "date", "dt", "data lancamento", "data do lancamento"}
	amountHeaders = []string{"valor", "amount", "vlr", "valor r", "montante"}
	memoHeaders   = []string{"descricao", "description", "memo", "historico", "lancamento", "detalhe"}
	fitIDHeaders  = []string{"fitid", "id", "identificador", "documento", "num doc"}
)

var dateLayouts = []string{
	"02/01/2006",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"2006-01-02 15:04:05",
	"02-01-2006",
}

type columnMap struct {
	date   int
	amount int
	memo   int
	fitID  int
}

// ParseFile reads a CSV statement and returns bank transactions. The first
// row must be a header naming at least date, amount and description columns.
func (p *CSVParser) ParseFile(ctx context.Context, reader io.Reader) ([]model.BankTransaction, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}

	buffered := bufio.NewReader(reader)
	sep, err := detectSeparator(buffered)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(buffered)
	r.Comma = sep
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var txns []model.BankTransaction
	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}

		txn, err := p.parseRecord(record, cols, line)
		if err != nil {
			slog.Warn("Skipping unparseable CSV line", "line", line, "error", err)
			continue
		}
		txns = append(txns, txn)
	}

	slog.Info("Parsed CSV statement", "total_transactions", len(txns), "account", p.AccountID)
	return txns, nil
}

func (p *CSVParser) parseRecord(record []string, cols columnMap, line int) (model.BankTransaction, error) {
	if len(record) <= cols.date || len(record) <= cols.amount || len(record) <= cols.memo {
		return model.BankTransaction{}, fmt.Errorf("line %d has %d fields", line, len(record))
	}

	postedAt, err := parseDate(record[cols.date])
	if err != nil {
		return model.BankTransaction{}, err
	}

	amount, err := parseAmount(record[cols.amount])
	if err != nil {
		return model.BankTransaction{}, err
	}

	txn := model.BankTransaction{
		PostedAt:  postedAt,
		Memo:      strings.TrimSpace(record[cols.memo]),
		AccountID: p.AccountID,
		Amount:    amount,
		State:     model.StateUnreconciled,
	}

	if cols.fitID >= 0 && cols.fitID < len(record) {
		txn.FitID = strings.TrimSpace(record[cols.fitID])
	}

	txn.Hash = txn.GenerateHash()
	if txn.FitID != "" {
		txn.ID = txn.FitID
	} else {
		txn.ID = txn.Hash[:16]
	}
	return txn, nil
}

// detectSeparator peeks at the header line and picks semicolon when it
// outnumbers commas. Semicolon CSVs are the norm in pt-BR locales.
func detectSeparator(r *bufio.Reader) (rune, error) {
	peek, err := r.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return 0, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(peek) == 0 {
		return 0, fmt.Errorf("empty CSV file")
	}

	firstLine := string(peek)
	if idx := strings.IndexByte(firstLine, '\n'); idx >= 0 {
		firstLine = firstLine[:idx]
	}

	if strings.Count(firstLine, ";") > strings.Count(firstLine, ",") {
		return ';', nil
	}
	return ',', nil
}

func mapColumns(header []string) (columnMap, error) {
	cols := columnMap{date: -1, amount: -1, memo: -1, fitID: -1}

	for i, raw := range header {
		name := textnorm.Normalize(raw)
		switch {
		case cols.date < 0 && matchesHeader(name, dateHeaders):
			cols.date = i
		case cols.amount < 0 && matchesHeader(name, amountHeaders):
			cols.amount = i
		case cols.memo < 0 && matchesHeader(name, memoHeaders):
			cols.memo = i
		case cols.fitID < 0 && matchesHeader(name, fitIDHeaders):
			cols.fitID = i
		}
	}

	if cols.date < 0 || cols.amount < 0 || cols.memo < 0 {
		return cols, fmt.Errorf("CSV header missing required columns (date, amount, description): %v", header)
	}
	return cols, nil
}

func matchesHeader(name string, candidates []string) bool {
	for _, c := range candidates {
		if name == c {
			return true
		}
	}
	return false
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

// parseAmount accepts both 1234.56 and the pt-BR form 1.234,56, with an
// optional R$ prefix.
func parseAmount(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)

	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}

	amount, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unrecognized amount %q", raw)
	}
	return amount, nil
}
