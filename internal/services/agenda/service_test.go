package agenda

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyuoka/workpal/internal/common"
	"github.com/hyuoka/workpal/internal/interfaces"
	"github.com/hyuoka/workpal/internal/models"
)

// fakeGoogle is a scriptable GoogleClient for agenda tests.
type fakeGoogle struct {
	mu        sync.Mutex
	calendars []interfaces.Calendar
	events    map[string][]interfaces.Event // calendarID -> events
	lists     []interfaces.TaskList
	tasks     map[string][]interfaces.Task // tasklistID -> tasks

	insertEventErr error
	deleteEventErr error
	patchTaskErr   error
	deleteTaskErr  error

	deletedEvents []string
	patchedTasks  []string
}

func newFakeGoogle() *fakeGoogle {
	return &fakeGoogle{
		events: make(map[string][]interfaces.Event),
		tasks:  make(map[string][]interfaces.Task),
	}
}

func (f *fakeGoogle) GetProfile(_ context.Context) (*models.Profile, error) {
	return &models.Profile{Name: "Test", Email: "test@example.com"}, nil
}

func (f *fakeGoogle) ListCalendars(_ context.Context) ([]interfaces.Calendar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]interfaces.Calendar(nil), f.calendars...), nil
}

func (f *fakeGoogle) ListEvents(_ context.Context, calendarID string, _, _ time.Time) ([]interfaces.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]interfaces.Event(nil), f.events[calendarID]...), nil
}

func (f *fakeGoogle) InsertEvent(_ context.Context, calendarID string, event *interfaces.Event) (*interfaces.Event, error) {
	if f.insertEventErr != nil {
		return nil, f.insertEventErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	created := *event
	created.ID = fmt.Sprintf("ev-%d", len(f.events[calendarID])+1)
	f.events[calendarID] = append(f.events[calendarID], created)
	return &created, nil
}

func (f *fakeGoogle) DeleteEvent(_ context.Context, calendarID, eventID string) error {
	if f.deleteEventErr != nil {
		return f.deleteEventErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedEvents = append(f.deletedEvents, eventID)
	kept := f.events[calendarID][:0]
	for _, event := range f.events[calendarID] {
		if event.ID != eventID {
			kept = append(kept, event)
		}
	}
	f.events[calendarID] = kept
	return nil
}

func (f *fakeGoogle) ListTaskLists(_ context.Context) ([]interfaces.TaskList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]interfaces.TaskList(nil), f.lists...), nil
}

func (f *fakeGoogle) ListTasks(_ context.Context, tasklistID string, _ bool) ([]interfaces.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]interfaces.Task(nil), f.tasks[tasklistID]...), nil
}

func (f *fakeGoogle) InsertTask(_ context.Context, tasklistID string, task *interfaces.Task) (*interfaces.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	created := *task
	created.ID = fmt.Sprintf("task-%d", len(f.tasks[tasklistID])+1)
	f.tasks[tasklistID] = append(f.tasks[tasklistID], created)
	return &created, nil
}

func (f *fakeGoogle) PatchTask(_ context.Context, tasklistID, taskID string, patch *interfaces.Task) (*interfaces.Task, error) {
	if f.patchTaskErr != nil {
		return nil, f.patchTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patchedTasks = append(f.patchedTasks, taskID)
	for i := range f.tasks[tasklistID] {
		if f.tasks[tasklistID][i].ID == taskID {
			if patch.Status != "" {
				f.tasks[tasklistID][i].Status = patch.Status
			}
			task := f.tasks[tasklistID][i]
			return &task, nil
		}
	}
	return nil, fmt.Errorf("task '%s' not found", taskID)
}

func (f *fakeGoogle) DeleteTask(_ context.Context, tasklistID, taskID string) error {
	if f.deleteTaskErr != nil {
		return f.deleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.tasks[tasklistID][:0]
	for _, task := range f.tasks[tasklistID] {
		if task.ID != taskID {
			kept = append(kept, task)
		}
	}
	f.tasks[tasklistID] = kept
	return nil
}

func (f *fakeGoogle) SearchFiles(_ context.Context, _ interfaces.DriveQuery) ([]models.DriveFile, error) {
	return nil, nil
}
func (f *fakeGoogle) DownloadFile(_ context.Context, _ string) ([]byte, error) { return nil, nil }
func (f *fakeGoogle) ExportFile(_ context.Context, _, _ string) ([]byte, error) {
	return nil, nil
}
func (f *fakeGoogle) CopyFile(_ context.Context, _, _, _ string) (*models.DriveFile, error) {
	return nil, nil
}
func (f *fakeGoogle) DeleteFile(_ context.Context, _ string) error       { return nil }
func (f *fakeGoogle) CreateDraft(_ context.Context, _ string) (string, error) {
	return "", nil
}
func (f *fakeGoogle) RevokeToken(_ context.Context) error { return nil }

var _ interfaces.GoogleClient = (*fakeGoogle)(nil)

// stubDigest returns a canned summary.
type stubDigest struct{ out string }

func (s *stubDigest) Summarize(_ context.Context, _ string) (string, error) {
	return s.out, nil
}

var testNow = time.Date(2026, 8, 29, 8, 0, 0, 0, time.Local)

func newTestService(google *fakeGoogle, digest interfaces.DigestClient) *Service {
	svc := NewService(google, digest, common.NewSilentLogger())
	svc.now = func() time.Time { return testNow }
	return svc
}

func at(hour, minute int) time.Time {
	return time.Date(2026, 8, 29, hour, minute, 0, 0, time.Local)
}

func TestFeed_MergesSortsAndTags(t *testing.T) {
	google := newFakeGoogle()
	google.calendars = []interfaces.Calendar{
		{ID: "work", Summary: "Work", Color: "#1a73e8"},
	}
	google.events["work"] = []interfaces.Event{
		{ID: "E1", Summary: "Planning", Start: at(10, 0)},
		{ID: "E2", Summary: "Standup", Start: at(9, 0)},
	}
	google.lists = []interfaces.TaskList{{ID: "l1", Title: "Inbox"}}
	google.tasks["l1"] = []interfaces.Task{
		{ID: "T1", Title: "Send report", Due: at(9, 30), Status: "needsAction"},
	}

	svc := newTestService(google, nil)
	feed, err := svc.Feed(context.Background())
	require.NoError(t, err)

	require.Len(t, feed.Items, 3)
	got := []string{feed.Items[0].ID, feed.Items[1].ID, feed.Items[2].ID}
	assert.Equal(t, []string{"E2", "T1", "E1"}, got)

	assert.Equal(t, "Work", feed.Items[0].Source)
	assert.Equal(t, "#1a73e8", feed.Items[0].Color)
	assert.True(t, feed.Items[1].IsTask)
	assert.Equal(t, "Inbox", feed.Items[1].Source)
}

func TestFeed_DropsItemsBeforeToday(t *testing.T) {
	google := newFakeGoogle()
	google.calendars = []interfaces.Calendar{{ID: "c", Summary: "Cal"}}
	google.events["c"] = []interfaces.Event{
		{ID: "old", Summary: "Yesterday", Start: at(9, 0).AddDate(0, 0, -1)},
		{ID: "today", Summary: "Today", Start: at(9, 0)},
	}

	svc := newTestService(google, nil)
	feed, err := svc.Feed(context.Background())
	require.NoError(t, err)

	require.Len(t, feed.Items, 1)
	assert.Equal(t, "today", feed.Items[0].ID)
}

func TestFeed_TruncatesToLimit(t *testing.T) {
	google := newFakeGoogle()
	google.calendars = []interfaces.Calendar{{ID: "c", Summary: "Cal"}}
	for i := 0; i < 40; i++ {
		google.events["c"] = append(google.events["c"], interfaces.Event{
			ID:      fmt.Sprintf("e%02d", i),
			Summary: "Busy",
			Start:   at(9, 0).Add(time.Duration(i) * time.Hour),
		})
	}

	svc := newTestService(google, nil)
	feed, err := svc.Feed(context.Background())
	require.NoError(t, err)

	assert.Len(t, feed.Items, feedLimit)
	// the earliest 30 survive
	assert.Equal(t, "e00", feed.Items[0].ID)
	assert.Equal(t, "e29", feed.Items[len(feed.Items)-1].ID)
}

func TestFeed_SkipsCompletedAndUndatedTasks(t *testing.T) {
	google := newFakeGoogle()
	google.lists = []interfaces.TaskList{{ID: "l1", Title: "Inbox"}}
	google.tasks["l1"] = []interfaces.Task{
		{ID: "done", Title: "Done", Due: at(9, 0), Status: "completed"},
		{ID: "undated", Title: "Someday", Status: "needsAction"},
		{ID: "real", Title: "Today", Due: at(9, 0), Status: "needsAction"},
	}

	svc := newTestService(google, nil)
	feed, err := svc.Feed(context.Background())
	require.NoError(t, err)

	require.Len(t, feed.Items, 1)
	assert.Equal(t, "real", feed.Items[0].ID)
}

func TestDueToday_WindowIsCurrentLocalDay(t *testing.T) {
	google := newFakeGoogle()
	google.lists = []interfaces.TaskList{{ID: "l1", Title: "Inbox"}}
	google.tasks["l1"] = []interfaces.Task{
		{ID: "today1", Title: "Morning", Due: at(0, 0), Status: "needsAction"},
		{ID: "today2", Title: "Evening", Due: at(23, 0), Status: "needsAction"},
		{ID: "tomorrow", Title: "Later", Due: at(0, 0).AddDate(0, 0, 1), Status: "needsAction"},
	}

	svc := newTestService(google, nil)
	due, err := svc.DueToday(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, due.Count)
	assert.Contains(t, due.Message, "2件")
}

func TestDueToday_EmptyHasNoMessage(t *testing.T) {
	svc := newTestService(newFakeGoogle(), nil)
	due, err := svc.DueToday(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, due.Count)
	assert.Empty(t, due.Message)
}

func TestCreateEvent_AppearsInCachedFeed(t *testing.T) {
	google := newFakeGoogle()
	google.calendars = []interfaces.Calendar{{ID: "primary", Summary: "primary"}}

	svc := newTestService(google, nil)
	ctx := context.Background()
	_, err := svc.Feed(ctx)
	require.NoError(t, err)

	item, err := svc.CreateEvent(ctx, "Dentist", "Shibuya", at(15, 0).Format(time.RFC3339))
	require.NoError(t, err)
	assert.Equal(t, "Dentist", item.Summary)
	assert.Equal(t, "Shibuya", item.Location)

	svc.mu.Lock()
	cached := svc.cached
	svc.mu.Unlock()
	require.Len(t, cached.Items, 1)
	assert.Equal(t, item.ID, cached.Items[0].ID)
}

func TestCreateEvent_FailureLeavesCacheUntouched(t *testing.T) {
	google := newFakeGoogle()
	google.calendars = []interfaces.Calendar{{ID: "primary", Summary: "primary"}}
	google.events["primary"] = []interfaces.Event{
		{ID: "E1", Summary: "Standup", Start: at(10, 0)},
	}

	svc := newTestService(google, nil)
	ctx := context.Background()
	_, err := svc.Feed(ctx)
	require.NoError(t, err)

	// an upstream change only a refetch would reveal
	google.events["primary"] = append(google.events["primary"],
		interfaces.Event{ID: "E9", Summary: "Added elsewhere", Start: at(11, 0)})
	google.insertEventErr = fmt.Errorf("remote says no")

	_, err = svc.CreateEvent(ctx, "Dentist", "", at(15, 0).Format(time.RFC3339))
	require.Error(t, err)

	// nothing was applied optimistically, so no refetch should run
	svc.mu.Lock()
	cached := svc.cached
	svc.mu.Unlock()
	require.Len(t, cached.Items, 1)
	assert.Equal(t, "E1", cached.Items[0].ID)
}

func TestCompleteTask_PatchesStatusAndDropsFromFeed(t *testing.T) {
	google := newFakeGoogle()
	google.lists = []interfaces.TaskList{{ID: "l1", Title: "Inbox"}}
	google.tasks["l1"] = []interfaces.Task{
		{ID: "T1", Title: "Send report", Due: at(9, 30), Status: "needsAction"},
	}

	svc := newTestService(google, nil)
	ctx := context.Background()
	_, err := svc.Feed(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.CompleteTask(ctx, "l1", "T1"))

	assert.Equal(t, []string{"T1"}, google.patchedTasks)
	svc.mu.Lock()
	cached := svc.cached
	svc.mu.Unlock()
	assert.Empty(t, cached.Items)
}

func TestDeleteEvent_FailureRollsBackByRefetch(t *testing.T) {
	google := newFakeGoogle()
	google.calendars = []interfaces.Calendar{{ID: "primary", Summary: "primary"}}
	google.events["primary"] = []interfaces.Event{
		{ID: "E1", Summary: "Keep me", Start: at(10, 0)},
	}

	svc := newTestService(google, nil)
	ctx := context.Background()
	_, err := svc.Feed(ctx)
	require.NoError(t, err)

	google.deleteEventErr = fmt.Errorf("remote says no")
	err = svc.DeleteEvent(ctx, "primary", "E1")
	require.Error(t, err)

	// the optimistic removal must have been undone by the refetch
	svc.mu.Lock()
	cached := svc.cached
	svc.mu.Unlock()
	require.Len(t, cached.Items, 1)
	assert.Equal(t, "E1", cached.Items[0].ID)
}

func TestDigest_NilClientReturnsEmpty(t *testing.T) {
	svc := newTestService(newFakeGoogle(), nil)
	out, err := svc.Digest(context.Background())
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDigest_SummarizesFeed(t *testing.T) {
	google := newFakeGoogle()
	google.calendars = []interfaces.Calendar{{ID: "c", Summary: "Cal"}}
	google.events["c"] = []interfaces.Event{
		{ID: "E1", Summary: "Planning", Start: at(10, 0)},
	}

	svc := newTestService(google, &stubDigest{out: "One planning meeting at 10."})
	out, err := svc.Digest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "One planning meeting at 10.", out)
}
