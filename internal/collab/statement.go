package collab

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"finsight/internal/models"
	"finsight/pkg/config"
)

// column synonyms found across bank statement exports.
var (
	dateHeaders        = []string{"date", "txn date", "transaction date", "value date"}
	descriptionHeaders = []string{"description", "narration", "particulars", "details", "transaction details", "remarks"}
	amountHeaders      = []string{"amount", "transaction amount", "amount (inr)"}
	debitHeaders       = []string{"debit", "debit amount", "withdrawal", "withdrawal amt", "withdrawals"}
	creditHeaders      = []string{"credit", "credit amount", "deposit", "deposit amt", "deposits"}
	typeHeaders        = []string{"type", "transaction type", "dr/cr"}
	balanceHeaders     = []string{"balance", "closing balance", "available balance", "running balance"}
	referenceHeaders   = []string{"reference", "ref no", "cheque no", "ref number"}
)

// StatementParser is the production Uploader: it reads CSV and XLSX bank
// statements with header-based column detection. It validates the payload
// before any parsing work and rejects entries that do not survive
// models.Transaction validation.
type StatementParser struct {
	maxFileSize  int64
	allowedTypes map[string]bool
	logger       *zap.Logger
}

func NewStatementParser(cfg *config.UploadConfig, logger *zap.Logger) *StatementParser {
	allowed := make(map[string]bool, len(cfg.AllowedFileTypes))
	for _, t := range cfg.AllowedFileTypes {
		allowed[t] = true
	}
	return &StatementParser{
		maxFileSize:  int64(cfg.MaxFileSizeMB) * 1024 * 1024,
		allowedTypes: allowed,
		logger:       logger,
	}
}

func (p *StatementParser) Parse(ctx context.Context, content []byte, filename string) ([]models.Transaction, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if !p.allowedTypes[ext] {
		return nil, &ValidationError{Reason: fmt.Sprintf("unsupported file type %q", ext)}
	}
	if int64(len(content)) > p.maxFileSize {
		return nil, &ValidationError{Reason: fmt.Sprintf("file too large: %d bytes exceeds limit of %d", len(content), p.maxFileSize)}
	}
	if len(content) == 0 {
		return nil, &ValidationError{Reason: "empty file"}
	}

	var rows [][]string
	var err error
	switch ext {
	case "csv":
		rows, err = readCSV(content)
	case "xlsx":
		rows, err = readXLSX(content)
	default:
		return nil, &ValidationError{Reason: fmt.Sprintf("unsupported file type %q", ext)}
	}
	if err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("unreadable statement: %v", err)}
	}

	txns, skipped := p.extractTransactions(rows)
	if skipped > 0 {
		p.logger.Warn("Skipped malformed statement rows",
			zap.String("filename", filename),
			zap.Int("skipped", skipped),
		)
	}
	if len(txns) == 0 {
		return nil, &ValidationError{Reason: "no transactions found in the file, please check the file format"}
	}

	p.logger.Info("Statement parsed",
		zap.String("filename", filename),
		zap.Int("transactions", len(txns)),
	)
	return txns, nil
}

func readCSV(content []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader.ReadAll()
}

func readXLSX(content []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

type columnMap struct {
	date, description, amount, debit, credit, txType, balance, reference int
}

func (p *StatementParser) extractTransactions(rows [][]string) ([]models.Transaction, int) {
	headerIdx, cols := findHeader(rows)
	if headerIdx < 0 {
		return nil, len(rows)
	}

	var txns []models.Transaction
	skipped := 0
	for _, row := range rows[headerIdx+1:] {
		txn, err := buildTransaction(row, cols)
		if err != nil {
			skipped++
			p.logger.Debug("Dropped statement row", zap.Error(err))
			continue
		}
		txns = append(txns, txn)
	}
	return txns, skipped
}

// findHeader locates the first row that maps at least a date and a
// description column.
func findHeader(rows [][]string) (int, columnMap) {
	for i, row := range rows {
		cols := mapColumns(row)
		if cols.date >= 0 && cols.description >= 0 &&
			(cols.amount >= 0 || cols.debit >= 0 || cols.credit >= 0) {
			return i, cols
		}
	}
	return -1, columnMap{}
}

func mapColumns(header []string) columnMap {
	cols := columnMap{date: -1, description: -1, amount: -1, debit: -1, credit: -1, txType: -1, balance: -1, reference: -1}
	for i, cell := range header {
		name := strings.ToLower(strings.TrimSpace(cell))
		switch {
		case cols.date < 0 && matchesHeader(name, dateHeaders):
			cols.date = i
		case cols.description < 0 && matchesHeader(name, descriptionHeaders):
			cols.description = i
		case cols.debit < 0 && matchesHeader(name, debitHeaders):
			cols.debit = i
		case cols.credit < 0 && matchesHeader(name, creditHeaders):
			cols.credit = i
		case cols.amount < 0 && matchesHeader(name, amountHeaders):
			cols.amount = i
		case cols.txType < 0 && matchesHeader(name, typeHeaders):
			cols.txType = i
		case cols.balance < 0 && matchesHeader(name, balanceHeaders):
			cols.balance = i
		case cols.reference < 0 && matchesHeader(name, referenceHeaders):
			cols.reference = i
		}
	}
	return cols
}

func matchesHeader(name string, candidates []string) bool {
	for _, c := range candidates {
		if name == c {
			return true
		}
	}
	return false
}

func buildTransaction(row []string, cols columnMap) (models.Transaction, error) {
	date, err := models.ParseDate(cell(row, cols.date))
	if err != nil {
		return models.Transaction{}, err
	}

	description := sanitizeUTF8(strings.TrimSpace(cell(row, cols.description)))
	if description == "" {
		return models.Transaction{}, fmt.Errorf("row has no description")
	}

	amount, txType, err := resolveAmount(row, cols)
	if err != nil {
		return models.Transaction{}, err
	}

	txn := models.Transaction{
		Date:        date,
		Description: description,
		Amount:      amount,
		Type:        txType,
		Reference:   strings.TrimSpace(cell(row, cols.reference)),
	}
	if raw := cell(row, cols.balance); strings.TrimSpace(raw) != "" {
		if balance, err := parseMoney(raw); err == nil {
			txn.Balance = &balance
		}
	}

	if err := txn.Validate(); err != nil {
		return models.Transaction{}, err
	}
	return txn, nil
}

// resolveAmount handles both statement layouts: separate debit/credit
// columns, or a single amount column with a type column (or a signed
// amount).
func resolveAmount(row []string, cols columnMap) (float64, models.TransactionType, error) {
	debitRaw := strings.TrimSpace(cell(row, cols.debit))
	creditRaw := strings.TrimSpace(cell(row, cols.credit))

	if debitRaw != "" || creditRaw != "" {
		if debitRaw != "" && debitRaw != "0" {
			amount, err := parseMoney(debitRaw)
			if err != nil {
				return 0, "", err
			}
			if amount > 0 {
				return amount, models.TypeDebit, nil
			}
		}
		if creditRaw != "" {
			amount, err := parseMoney(creditRaw)
			if err != nil {
				return 0, "", err
			}
			return amount, models.TypeCredit, nil
		}
	}

	amountRaw := strings.TrimSpace(cell(row, cols.amount))
	if amountRaw == "" {
		return 0, "", fmt.Errorf("row has no amount")
	}
	amount, err := parseMoney(amountRaw)
	if err != nil {
		return 0, "", err
	}

	switch strings.ToLower(strings.TrimSpace(cell(row, cols.txType))) {
	case "debit", "dr", "withdrawal":
		return abs(amount), models.TypeDebit, nil
	case "credit", "cr", "deposit":
		return abs(amount), models.TypeCredit, nil
	case "":
		// No type column: fall back to the amount's sign.
		if amount < 0 {
			return -amount, models.TypeDebit, nil
		}
		return amount, models.TypeCredit, nil
	default:
		return 0, "", fmt.Errorf("unrecognized transaction type %q", cell(row, cols.txType))
	}
}

func parseMoney(raw string) (float64, error) {
	cleaned := strings.NewReplacer(",", "", "₹", "", "INR", "", " ", "").Replace(raw)
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable amount %q", raw)
	}
	return value, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
