// Package agenda assembles the unified calendar and tasks feed
package agenda

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hyuoka/workpal/internal/common"
	"github.com/hyuoka/workpal/internal/interfaces"
	"github.com/hyuoka/workpal/internal/models"
)

// Compile-time interface check
var _ interfaces.AgendaService = (*Service)(nil)

const (
	feedLimit      = 30
	feedWindowDays = 30
	primaryTasks   = "@default"
)

// Service implements AgendaService
type Service struct {
	google interfaces.GoogleClient
	digest interfaces.DigestClient // nil disables the digest
	logger *common.Logger
	now    func() time.Time

	mu     sync.Mutex
	cached *models.AgendaFeed
}

// NewService creates a new agenda service
func NewService(google interfaces.GoogleClient, digest interfaces.DigestClient, logger *common.Logger) *Service {
	return &Service{
		google: google,
		digest: digest,
		logger: logger,
		now:    time.Now,
	}
}

// Feed rebuilds and returns the agenda feed: every calendar's upcoming
// events plus due-dated incomplete tasks, fetched in parallel, nothing
// before the start of the current local day, ascending by start, at
// most 30 items.
func (s *Service) Feed(ctx context.Context) (*models.AgendaFeed, error) {
	startOfDay := s.startOfDay()
	windowEnd := startOfDay.AddDate(0, 0, feedWindowDays)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		items    []models.AgendaItem
		fetchErr error
	)

	record := func(batch []models.AgendaItem, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil && fetchErr == nil {
			fetchErr = err
		}
		items = append(items, batch...)
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		batch, err := s.fetchEvents(ctx, startOfDay, windowEnd)
		record(batch, err)
	}()
	go func() {
		defer wg.Done()
		batch, err := s.fetchTasks(ctx)
		record(batch, err)
	}()
	wg.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}

	// drop anything before the start of today, then order and truncate
	kept := items[:0]
	for _, item := range items {
		if item.Start.Before(startOfDay) {
			continue
		}
		kept = append(kept, item)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Start.Before(kept[j].Start)
	})
	if len(kept) > feedLimit {
		kept = kept[:feedLimit]
	}

	feed := &models.AgendaFeed{Items: kept, BuiltAt: s.now()}

	s.mu.Lock()
	s.cached = feed
	s.mu.Unlock()

	s.logger.Debug().Int("items", len(kept)).Msg("Agenda feed rebuilt")
	return feed, nil
}

// fetchEvents collects events from every calendar, in parallel per
// calendar.
func (s *Service) fetchEvents(ctx context.Context, from, to time.Time) ([]models.AgendaItem, error) {
	calendars, err := s.google.ListCalendars(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		items []models.AgendaItem
	)

	for _, calendar := range calendars {
		wg.Add(1)
		go func(calendar interfaces.Calendar) {
			defer wg.Done()
			events, err := s.google.ListEvents(ctx, calendar.ID, from, to)
			if err != nil {
				// one calendar failing should not empty the whole feed
				s.logger.Warn().Str("calendar", calendar.Summary).Err(err).Msg("Event fetch failed")
				return
			}
			mu.Lock()
			defer mu.Unlock()
			for _, event := range events {
				items = append(items, models.AgendaItem{
					ID:       event.ID,
					Summary:  event.Summary,
					Start:    event.Start,
					AllDay:   event.AllDay,
					Location: event.Location,
					Source:   calendar.Summary,
					Color:    calendar.Color,
					ListID:   calendar.ID,
				})
			}
		}(calendar)
	}
	wg.Wait()

	return items, nil
}

// fetchTasks collects due-dated incomplete tasks from every task list.
func (s *Service) fetchTasks(ctx context.Context) ([]models.AgendaItem, error) {
	lists, err := s.google.ListTaskLists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list task lists: %w", err)
	}

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		items []models.AgendaItem
	)

	for _, list := range lists {
		wg.Add(1)
		go func(list interfaces.TaskList) {
			defer wg.Done()
			tasks, err := s.google.ListTasks(ctx, list.ID, false)
			if err != nil {
				s.logger.Warn().Str("list", list.Title).Err(err).Msg("Task fetch failed")
				return
			}
			mu.Lock()
			defer mu.Unlock()
			for _, task := range tasks {
				if task.Due.IsZero() || task.Status == "completed" {
					continue
				}
				items = append(items, models.AgendaItem{
					ID:      task.ID,
					Summary: task.Title,
					Start:   task.Due,
					AllDay:  true,
					Source:  list.Title,
					IsTask:  true,
					ListID:  list.ID,
				})
			}
		}(list)
	}
	wg.Wait()

	return items, nil
}

// DueToday returns tasks due within [today 00:00, tomorrow 00:00).
func (s *Service) DueToday(ctx context.Context) (*models.DueToday, error) {
	tasks, err := s.fetchTasks(ctx)
	if err != nil {
		return nil, err
	}

	startOfDay := s.startOfDay()
	tomorrow := startOfDay.AddDate(0, 0, 1)

	due := make([]models.AgendaItem, 0, len(tasks))
	for _, task := range tasks {
		if task.Start.Before(startOfDay) || !task.Start.Before(tomorrow) {
			continue
		}
		due = append(due, task)
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].Start.Before(due[j].Start)
	})

	result := &models.DueToday{Count: len(due), Items: due}
	if len(due) > 0 {
		result.Message = fmt.Sprintf("今日が期限のタスクが%d件あります", len(due))
	}
	return result, nil
}

// Digest produces a short natural-language summary of the feed. Empty
// when no digest client is configured.
func (s *Service) Digest(ctx context.Context) (string, error) {
	if s.digest == nil {
		return "", nil
	}

	feed, err := s.Feed(ctx)
	if err != nil {
		return "", err
	}
	if len(feed.Items) == 0 {
		return "", nil
	}

	prompt := buildDigestPrompt(feed)
	summary, err := s.digest.Summarize(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("digest generation failed: %w", err)
	}
	return summary, nil
}

// buildDigestPrompt lays the feed out as one line per item.
func buildDigestPrompt(feed *models.AgendaFeed) string {
	prompt := "Summarize the following schedule in one short paragraph, highlighting anything urgent:\n\n"
	for _, item := range feed.Items {
		kind := "event"
		if item.IsTask {
			kind = "task"
		}
		prompt += fmt.Sprintf("- [%s] %s (%s)", kind, item.Summary, item.Start.Format("Mon Jan 2 15:04"))
		if item.Location != "" {
			prompt += " @ " + item.Location
		}
		prompt += "\n"
	}
	return prompt
}

func (s *Service) startOfDay() time.Time {
	now := s.now()
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}
