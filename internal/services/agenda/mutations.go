package agenda

import (
	"context"
	"fmt"
	"time"

	"github.com/hyuoka/workpal/internal/interfaces"
	"github.com/hyuoka/workpal/internal/models"
)

const primaryCalendar = "primary"

// CreateEvent inserts a one-hour event on the primary calendar. start
// is RFC 3339, or a bare date for an all-day event.
func (s *Service) CreateEvent(ctx context.Context, summary, location string, start string) (*models.AgendaItem, error) {
	if summary == "" {
		return nil, fmt.Errorf("summary is required")
	}

	startAt, allDay, err := parseStart(start)
	if err != nil {
		return nil, err
	}

	event := &interfaces.Event{
		Summary:  summary,
		Location: location,
		Start:    startAt,
		End:      startAt.Add(time.Hour),
		AllDay:   allDay,
	}
	if allDay {
		event.End = startAt.AddDate(0, 0, 1)
	}

	// no optimistic edit yet, so a failed insert leaves the cache alone
	created, err := s.google.InsertEvent(ctx, primaryCalendar, event)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	item := models.AgendaItem{
		ID:      created.ID,
		Summary: created.Summary,
		Start:   created.Start,
		AllDay:  created.AllDay,
		// the API echoes no location for some calendars; keep the input
		Location: location,
		Source:   primaryCalendar,
		ListID:   primaryCalendar,
	}
	s.applyOptimistic(func(feed *models.AgendaFeed) {
		feed.Items = insertSorted(feed.Items, item)
	})
	return &item, nil
}

// DeleteEvent removes an event and drops it from the cached feed.
func (s *Service) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	if calendarID == "" {
		calendarID = primaryCalendar
	}

	s.applyOptimistic(func(feed *models.AgendaFeed) {
		feed.Items = dropItem(feed.Items, eventID)
	})

	if err := s.google.DeleteEvent(ctx, calendarID, eventID); err != nil {
		s.rollback(ctx)
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// AddTask inserts a task on the default list. due is an ISO date.
func (s *Service) AddTask(ctx context.Context, title, due string) (*models.AgendaItem, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	task := &interfaces.Task{Title: title, Status: "needsAction"}
	if due != "" {
		dueAt, err := time.ParseInLocation("2006-01-02", due, time.Local)
		if err != nil {
			return nil, fmt.Errorf("invalid due date '%s': %w", due, err)
		}
		task.Due = dueAt
	}

	created, err := s.google.InsertTask(ctx, primaryTasks, task)
	if err != nil {
		return nil, fmt.Errorf("failed to add task: %w", err)
	}

	item := models.AgendaItem{
		ID:      created.ID,
		Summary: created.Title,
		Start:   created.Due,
		AllDay:  true,
		Source:  primaryTasks,
		IsTask:  true,
		ListID:  primaryTasks,
	}
	if !item.Start.IsZero() {
		s.applyOptimistic(func(feed *models.AgendaFeed) {
			feed.Items = insertSorted(feed.Items, item)
		})
	}
	return &item, nil
}

// CompleteTask marks a task completed and drops it from the cached feed.
func (s *Service) CompleteTask(ctx context.Context, tasklistID, taskID string) error {
	if tasklistID == "" {
		tasklistID = primaryTasks
	}

	s.applyOptimistic(func(feed *models.AgendaFeed) {
		feed.Items = dropItem(feed.Items, taskID)
	})

	patch := &interfaces.Task{Status: "completed"}
	if _, err := s.google.PatchTask(ctx, tasklistID, taskID, patch); err != nil {
		s.rollback(ctx)
		return fmt.Errorf("failed to complete task: %w", err)
	}
	return nil
}

// DeleteTask removes a task and drops it from the cached feed.
func (s *Service) DeleteTask(ctx context.Context, tasklistID, taskID string) error {
	if tasklistID == "" {
		tasklistID = primaryTasks
	}

	s.applyOptimistic(func(feed *models.AgendaFeed) {
		feed.Items = dropItem(feed.Items, taskID)
	})

	if err := s.google.DeleteTask(ctx, tasklistID, taskID); err != nil {
		s.rollback(ctx)
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// applyOptimistic mutates the cached feed in place, when one exists.
func (s *Service) applyOptimistic(mutate func(*models.AgendaFeed)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached == nil {
		return
	}
	mutate(s.cached)
}

// rollback re-fetches the authoritative feed after a failed remote
// mutation, discarding any optimistic edit. Best-effort.
func (s *Service) rollback(ctx context.Context) {
	if _, err := s.Feed(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Feed rollback refetch failed")
		s.mu.Lock()
		s.cached = nil
		s.mu.Unlock()
	}
}

// parseStart accepts RFC 3339 or a bare ISO date.
func parseStart(start string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, start); err == nil {
		return t, false, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", start, time.Local); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, fmt.Errorf("invalid start '%s': want RFC 3339 or YYYY-MM-DD", start)
}

// insertSorted keeps the feed ordered by start while respecting the
// feed size cap.
func insertSorted(items []models.AgendaItem, item models.AgendaItem) []models.AgendaItem {
	pos := len(items)
	for i := range items {
		if item.Start.Before(items[i].Start) {
			pos = i
			break
		}
	}
	items = append(items, models.AgendaItem{})
	copy(items[pos+1:], items[pos:])
	items[pos] = item
	if len(items) > feedLimit {
		items = items[:feedLimit]
	}
	return items
}

func dropItem(items []models.AgendaItem, id string) []models.AgendaItem {
	kept := items[:0]
	for _, item := range items {
		if item.ID == id {
			continue
		}
		kept = append(kept, item)
	}
	return kept
}
