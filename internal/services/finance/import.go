package finance

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/hyuoka/workpal/internal/interfaces"
	"github.com/hyuoka/workpal/internal/models"
)

// Column headers recognized in the workbook. The first row is treated
// as a header when its amount cell does not parse as a number.
var (
	incomeMarkers = []string{"income", "収入"}
	dateLayouts   = []string{"2006-01-02", "2006/01/02", "2006/1/2", "2006年1月2日"}
)

// SyncFromDrive locates the ledger workbook in Drive by its configured
// name, downloads it and replaces the stored ledger with its rows.
func (s *Service) SyncFromDrive(ctx context.Context) (*models.LedgerSync, error) {
	fileName := s.config.LedgerFileName

	files, err := s.google.SearchFiles(ctx, interfaces.DriveQuery{Name: fileName, PageSize: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to search Drive: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("workbook '%s' not found in Drive", fileName)
	}
	file := files[0]

	// remember where the workbook lives so the UI can link to it
	if file.WebViewLink != "" {
		if err := s.storage.InternalStore().SetSystemKV(ctx, models.SystemKeyFinanceSheetURL, file.WebViewLink); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to persist sheet URL")
		}
	}

	data, err := s.google.DownloadFile(ctx, file.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to download '%s': %w", fileName, err)
	}

	ledger, err := parseWorkbook(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse '%s': %w", fileName, err)
	}

	// import always replaces, never merges
	if err := s.storage.UserDataStore().PutCollection(ctx, models.CollectionLedger, ledger); err != nil {
		return nil, fmt.Errorf("failed to save ledger: %w", err)
	}

	syncedAt := s.now().Format(time.RFC3339)
	if err := s.storage.InternalStore().SetSystemKV(ctx, models.SystemKeyFinanceLastSync, syncedAt); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to persist sync timestamp")
	}

	s.logger.Info().Int("imported", len(ledger)).Str("file", fileName).Msg("Ledger imported from Drive")
	return &models.LedgerSync{
		Imported: len(ledger),
		SheetURL: file.WebViewLink,
		SyncedAt: syncedAt,
	}, nil
}

// parseWorkbook reads the first sheet into transactions. Expected
// columns in order: date, item, amount, kind. Rows with an unparseable
// date or amount are skipped.
func parseWorkbook(data []byte) ([]models.Transaction, error) {
	workbook, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}

	ledger := make([]models.Transaction, 0, len(rows))
	for _, row := range rows {
		entry, ok := parseRow(row)
		if !ok {
			continue
		}
		ledger = append(ledger, entry)
	}
	return ledger, nil
}

// parseRow converts one sheet row. Header rows fail the date parse and
// fall out naturally.
func parseRow(row []string) (models.Transaction, bool) {
	if len(row) < 3 {
		return models.Transaction{}, false
	}

	date, ok := parseDate(row[0])
	if !ok {
		return models.Transaction{}, false
	}

	item := strings.TrimSpace(row[1])
	if item == "" {
		return models.Transaction{}, false
	}

	amount, ok := parseAmount(row[2])
	if !ok {
		return models.Transaction{}, false
	}

	kind := models.TransactionExpense
	if len(row) > 3 && isIncome(row[3]) {
		kind = models.TransactionIncome
	}

	return models.Transaction{
		ID:     uuid.NewString(),
		Date:   date,
		Item:   item,
		Amount: amount,
		Kind:   kind,
	}, true
}

func parseDate(cell string) (string, bool) {
	cell = strings.TrimSpace(cell)
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, cell); err == nil {
			return parsed.Format(dateLayout), true
		}
	}
	return "", false
}

func parseAmount(cell string) (int64, bool) {
	cleaned := strings.NewReplacer(",", "", "¥", "", "円", "", " ", "").Replace(strings.TrimSpace(cell))
	if cleaned == "" {
		return 0, false
	}
	// some exports carry decimals even for yen amounts
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || value < 0 {
		return 0, false
	}
	return int64(value), true
}

func isIncome(cell string) bool {
	cell = strings.ToLower(strings.TrimSpace(cell))
	for _, marker := range incomeMarkers {
		if strings.Contains(cell, marker) {
			return true
		}
	}
	return false
}
