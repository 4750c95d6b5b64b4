package finance

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/hyuoka/workpal/internal/common"
	"github.com/hyuoka/workpal/internal/interfaces"
	"github.com/hyuoka/workpal/internal/models"
)

// memUserStore is an in-memory UserDataStore for service tests.
type memUserStore struct {
	collections map[string][]byte
}

func newMemUserStore() *memUserStore {
	return &memUserStore{collections: make(map[string][]byte)}
}

func (m *memUserStore) GetCollection(_ context.Context, name string, out any) error {
	data, ok := m.collections[name]
	if !ok {
		data = []byte(`[]`)
	}
	return json.Unmarshal(data, out)
}

func (m *memUserStore) PutCollection(_ context.Context, name string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.collections[name] = data
	return nil
}

func (m *memUserStore) DeleteCollection(_ context.Context, name string) error {
	delete(m.collections, name)
	return nil
}

func (m *memUserStore) Close() error { return nil }

var _ interfaces.UserDataStore = (*memUserStore)(nil)

// memInternalStore is an in-memory InternalStore for service tests.
type memInternalStore struct {
	kv map[string]string
}

func newMemInternalStore() *memInternalStore {
	return &memInternalStore{kv: make(map[string]string)}
}

func (m *memInternalStore) GetSystemKV(_ context.Context, key string) (string, error) {
	return m.kv[key], nil
}

func (m *memInternalStore) SetSystemKV(_ context.Context, key, value string) error {
	m.kv[key] = value
	return nil
}

func (m *memInternalStore) DeleteSystemKV(_ context.Context, key string) error {
	delete(m.kv, key)
	return nil
}

func (m *memInternalStore) Close() error { return nil }

var _ interfaces.InternalStore = (*memInternalStore)(nil)

// memStorage bundles the in-memory stores as a StorageManager.
type memStorage struct {
	internal *memInternalStore
	user     *memUserStore
}

func newMemStorage() *memStorage {
	return &memStorage{internal: newMemInternalStore(), user: newMemUserStore()}
}

func (m *memStorage) InternalStore() interfaces.InternalStore { return m.internal }
func (m *memStorage) UserDataStore() interfaces.UserDataStore { return m.user }
func (m *memStorage) Subscribe() (<-chan models.ChangeEvent, func()) {
	ch := make(chan models.ChangeEvent)
	return ch, func() {}
}
func (m *memStorage) Close() error { return nil }

var _ interfaces.StorageManager = (*memStorage)(nil)

// stubDrive serves a single named file for import tests.
type stubDrive struct {
	interfaces.GoogleClient

	fileName string
	fileData []byte
	link     string
}

func (s *stubDrive) SearchFiles(_ context.Context, query interfaces.DriveQuery) ([]models.DriveFile, error) {
	if query.Name != s.fileName || s.fileData == nil {
		return nil, nil
	}
	return []models.DriveFile{{ID: "file-1", Name: s.fileName, WebViewLink: s.link}}, nil
}

func (s *stubDrive) DownloadFile(_ context.Context, fileID string) ([]byte, error) {
	if fileID != "file-1" {
		return nil, fmt.Errorf("file '%s' not found", fileID)
	}
	return s.fileData, nil
}

var testNow = time.Date(2026, 8, 29, 12, 0, 0, 0, time.Local)

func newTestService(storage interfaces.StorageManager, google interfaces.GoogleClient) *Service {
	config := &common.FinanceConfig{LedgerFileName: "家計簿.xlsx"}
	svc := NewService(storage, google, config, common.NewSilentLogger())
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestAddAndList_SortedMostRecentFirst(t *testing.T) {
	svc := newTestService(newMemStorage(), nil)
	ctx := context.Background()

	_, err := svc.Add(ctx, "2026-08-01", "Salary", 250000, models.TransactionIncome)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "2026-08-15", "Groceries", 4200, models.TransactionExpense)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "2026-08-03", "Lunch", 900, models.TransactionExpense)
	require.NoError(t, err)

	ledger, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, ledger, 3)
	assert.Equal(t, "2026-08-15", ledger[0].Date)
	assert.Equal(t, "2026-08-03", ledger[1].Date)
	assert.Equal(t, "2026-08-01", ledger[2].Date)
	assert.NotEmpty(t, ledger[0].ID)
}

func TestAdd_Validation(t *testing.T) {
	svc := newTestService(newMemStorage(), nil)
	ctx := context.Background()

	_, err := svc.Add(ctx, "15/08/2026", "Groceries", 100, models.TransactionExpense)
	assert.Error(t, err)

	_, err = svc.Add(ctx, "2026-08-15", "  ", 100, models.TransactionExpense)
	assert.Error(t, err)

	_, err = svc.Add(ctx, "2026-08-15", "Refund", -100, models.TransactionIncome)
	assert.Error(t, err)

	_, err = svc.Add(ctx, "2026-08-15", "Groceries", 100, "transfer")
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	svc := newTestService(newMemStorage(), nil)
	ctx := context.Background()

	entry, err := svc.Add(ctx, "2026-08-15", "Groceries", 4200, models.TransactionExpense)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, entry.ID))

	ledger, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ledger)

	assert.Error(t, svc.Delete(ctx, entry.ID))
}

func TestSummary_MonthToDateTotals(t *testing.T) {
	svc := newTestService(newMemStorage(), nil)
	ctx := context.Background()

	_, err := svc.Add(ctx, "2026-08-01", "Salary", 1000, models.TransactionIncome)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "2026-08-10", "Rent", 400, models.TransactionExpense)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "2026-08-20", "Utilities", 100, models.TransactionExpense)
	require.NoError(t, err)
	// previous month, must not count
	_, err = svc.Add(ctx, "2026-07-31", "Old bill", 9999, models.TransactionExpense)
	require.NoError(t, err)

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), summary.Income)
	assert.Equal(t, int64(500), summary.Expense)
	assert.Equal(t, int64(500), summary.Balance)
}

func buildWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	workbook := excelize.NewFile()
	defer workbook.Close()
	sheet := workbook.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, workbook.SetSheetRow(sheet, cell, &row))
	}
	buffer, err := workbook.WriteToBuffer()
	require.NoError(t, err)
	return buffer.Bytes()
}

func TestSyncFromDrive_ReplacesLedger(t *testing.T) {
	storage := newMemStorage()
	data := buildWorkbook(t, [][]interface{}{
		{"日付", "項目", "金額", "種類"},
		{"2026-08-01", "給料", "250,000", "収入"},
		{"2026/08/15", "スーパー", "4200円", "支出"},
	})
	drive := &stubDrive{fileName: "家計簿.xlsx", fileData: data, link: "https://docs.google.com/spreadsheets/d/file-1"}
	svc := newTestService(storage, drive)
	ctx := context.Background()

	// pre-existing manual entry must be replaced, not merged
	_, err := svc.Add(ctx, "2026-08-02", "Manual", 100, models.TransactionExpense)
	require.NoError(t, err)

	sync, err := svc.SyncFromDrive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sync.Imported)
	assert.Equal(t, drive.link, sync.SheetURL)

	ledger, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, ledger, 2)
	assert.Equal(t, "スーパー", ledger[0].Item)
	assert.Equal(t, int64(4200), ledger[0].Amount)
	assert.Equal(t, models.TransactionExpense, ledger[0].Kind)
	assert.Equal(t, "給料", ledger[1].Item)
	assert.Equal(t, int64(250000), ledger[1].Amount)
	assert.Equal(t, models.TransactionIncome, ledger[1].Kind)

	assert.Equal(t, drive.link, storage.internal.kv[models.SystemKeyFinanceSheetURL])
	assert.NotEmpty(t, storage.internal.kv[models.SystemKeyFinanceLastSync])
}

func TestSyncFromDrive_RepeatedImportIsIdempotent(t *testing.T) {
	storage := newMemStorage()
	data := buildWorkbook(t, [][]interface{}{
		{"2026-08-01", "給料", "1000", "収入"},
	})
	drive := &stubDrive{fileName: "家計簿.xlsx", fileData: data}
	svc := newTestService(storage, drive)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.SyncFromDrive(ctx)
		require.NoError(t, err)
	}

	ledger, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, ledger, 1)
}

func TestSyncFromDrive_MissingWorkbook(t *testing.T) {
	svc := newTestService(newMemStorage(), &stubDrive{fileName: "家計簿.xlsx"})
	_, err := svc.SyncFromDrive(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in Drive")
}

func TestParseRow(t *testing.T) {
	tests := []struct {
		name string
		row  []string
		want models.Transaction
		ok   bool
	}{
		{
			name: "expense with yen suffix",
			row:  []string{"2026/8/3", "ランチ", "900円", "支出"},
			want: models.Transaction{Date: "2026-08-03", Item: "ランチ", Amount: 900, Kind: models.TransactionExpense},
			ok:   true,
		},
		{
			name: "income marker in english",
			row:  []string{"2026-08-01", "Salary", "250000", "income"},
			want: models.Transaction{Date: "2026-08-01", Item: "Salary", Amount: 250000, Kind: models.TransactionIncome},
			ok:   true,
		},
		{
			name: "missing kind defaults to expense",
			row:  []string{"2026-08-05", "Coffee", "500"},
			want: models.Transaction{Date: "2026-08-05", Item: "Coffee", Amount: 500, Kind: models.TransactionExpense},
			ok:   true,
		},
		{
			name: "header row",
			row:  []string{"日付", "項目", "金額", "種類"},
			ok:   false,
		},
		{
			name: "blank item",
			row:  []string{"2026-08-05", " ", "500", "支出"},
			ok:   false,
		},
		{
			name: "unparseable amount",
			row:  []string{"2026-08-05", "Coffee", "five hundred", "支出"},
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseRow(tt.row)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.NotEmpty(t, got.ID)
			got.ID = ""
			assert.Equal(t, tt.want, got)
		})
	}
}
