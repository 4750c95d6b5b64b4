// Package finance manages the household ledger and its Drive import
package finance

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hyuoka/workpal/internal/common"
	"github.com/hyuoka/workpal/internal/interfaces"
	"github.com/hyuoka/workpal/internal/models"
)

// Compile-time interface check
var _ interfaces.FinanceService = (*Service)(nil)

const dateLayout = "2006-01-02"

// Service implements FinanceService
type Service struct {
	storage interfaces.StorageManager
	google  interfaces.GoogleClient
	config  *common.FinanceConfig
	logger  *common.Logger
	now     func() time.Time
}

// NewService creates a new finance service
func NewService(storage interfaces.StorageManager, google interfaces.GoogleClient, config *common.FinanceConfig, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		google:  google,
		config:  config,
		logger:  logger,
		now:     time.Now,
	}
}

// List returns transactions ordered most recent first
func (s *Service) List(ctx context.Context) ([]models.Transaction, error) {
	var ledger []models.Transaction
	if err := s.storage.UserDataStore().GetCollection(ctx, models.CollectionLedger, &ledger); err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	sort.SliceStable(ledger, func(i, j int) bool {
		return ledger[i].Date > ledger[j].Date
	})
	return ledger, nil
}

// Add appends a manually entered transaction
func (s *Service) Add(ctx context.Context, date, item string, amount int64, kind string) (*models.Transaction, error) {
	date = strings.TrimSpace(date)
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, fmt.Errorf("invalid date '%s': expected YYYY-MM-DD", date)
	}
	item = strings.TrimSpace(item)
	if item == "" {
		return nil, fmt.Errorf("item is required")
	}
	if amount < 0 {
		return nil, fmt.Errorf("amount must be non-negative")
	}
	if kind != models.TransactionIncome && kind != models.TransactionExpense {
		return nil, fmt.Errorf("invalid transaction kind '%s'", kind)
	}

	var ledger []models.Transaction
	if err := s.storage.UserDataStore().GetCollection(ctx, models.CollectionLedger, &ledger); err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}

	entry := models.Transaction{
		ID:     uuid.NewString(),
		Date:   date,
		Item:   item,
		Amount: amount,
		Kind:   kind,
	}
	ledger = append(ledger, entry)

	if err := s.storage.UserDataStore().PutCollection(ctx, models.CollectionLedger, ledger); err != nil {
		return nil, fmt.Errorf("failed to save ledger: %w", err)
	}

	s.logger.Info().Str("item", item).Int64("amount", amount).Str("kind", kind).Msg("Transaction added")
	return &entry, nil
}

// Delete removes a transaction by ID
func (s *Service) Delete(ctx context.Context, id string) error {
	var ledger []models.Transaction
	if err := s.storage.UserDataStore().GetCollection(ctx, models.CollectionLedger, &ledger); err != nil {
		return fmt.Errorf("failed to load ledger: %w", err)
	}

	kept := ledger[:0]
	found := false
	for _, entry := range ledger {
		if entry.ID == id {
			found = true
			continue
		}
		kept = append(kept, entry)
	}
	if !found {
		return fmt.Errorf("transaction '%s' not found", id)
	}

	if err := s.storage.UserDataStore().PutCollection(ctx, models.CollectionLedger, kept); err != nil {
		return fmt.Errorf("failed to save ledger: %w", err)
	}

	s.logger.Info().Str("id", id).Msg("Transaction deleted")
	return nil
}

// Summary totals the current calendar month. Income and expense are
// accumulated separately; balance is their difference.
func (s *Service) Summary(ctx context.Context) (*models.LedgerSummary, error) {
	var ledger []models.Transaction
	if err := s.storage.UserDataStore().GetCollection(ctx, models.CollectionLedger, &ledger); err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}

	monthPrefix := s.now().Format("2006-01")

	summary := &models.LedgerSummary{}
	for _, entry := range ledger {
		if !strings.HasPrefix(entry.Date, monthPrefix) {
			continue
		}
		if entry.Kind == models.TransactionIncome {
			summary.Income += entry.Amount
		} else {
			summary.Expense += entry.Amount
		}
	}
	summary.Balance = summary.Income - summary.Expense
	return summary, nil
}
