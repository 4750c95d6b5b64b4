package google

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hyuoka/workpal/internal/interfaces"
)

// calendarListResponse represents the calendarList payload
type calendarListResponse struct {
	Items []struct {
		ID              string `json:"id"`
		Summary         string `json:"summary"`
		BackgroundColor string `json:"backgroundColor"`
		Primary         bool   `json:"primary"`
	} `json:"items"`
}

// ListCalendars returns the account's calendar list.
func (c *Client) ListCalendars(ctx context.Context) ([]interfaces.Calendar, error) {
	var resp calendarListResponse
	if err := c.do(ctx, http.MethodGet, c.calendarBase+"/users/me/calendarList", nil, &resp); err != nil {
		return nil, err
	}

	calendars := make([]interfaces.Calendar, 0, len(resp.Items))
	for _, item := range resp.Items {
		calendars = append(calendars, interfaces.Calendar{
			ID:      item.ID,
			Summary: item.Summary,
			Color:   item.BackgroundColor,
			Primary: item.Primary,
		})
	}
	return calendars, nil
}

// eventTime carries either a timed or an all-day boundary.
type eventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

// parse resolves the boundary to a time plus an all-day flag.
func (t eventTime) parse() (time.Time, bool) {
	if t.DateTime != "" {
		parsed, err := time.Parse(time.RFC3339, t.DateTime)
		if err == nil {
			return parsed, false
		}
	}
	if t.Date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", t.Date, time.Local)
		if err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// eventResource represents a calendar event payload
type eventResource struct {
	ID       string    `json:"id,omitempty"`
	Summary  string    `json:"summary,omitempty"`
	Location string    `json:"location,omitempty"`
	Status   string    `json:"status,omitempty"`
	Start    eventTime `json:"start,omitempty"`
	End      eventTime `json:"end,omitempty"`
}

func (r *eventResource) toEvent() interfaces.Event {
	start, allDay := r.Start.parse()
	end, _ := r.End.parse()
	return interfaces.Event{
		ID:       r.ID,
		Summary:  r.Summary,
		Location: r.Location,
		Start:    start,
		End:      end,
		AllDay:   allDay,
	}
}

// ListEvents returns the calendar's events within [from, to), expanded
// to single occurrences and ordered by start time.
func (c *Client) ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]interfaces.Event, error) {
	params := url.Values{}
	params.Set("timeMin", from.Format(time.RFC3339))
	params.Set("timeMax", to.Format(time.RFC3339))
	params.Set("singleEvents", "true")
	params.Set("orderBy", "startTime")
	params.Set("maxResults", "50")

	endpoint := fmt.Sprintf("%s/calendars/%s/events?%s", c.calendarBase, url.PathEscape(calendarID), params.Encode())

	var resp struct {
		Items []eventResource `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}

	events := make([]interfaces.Event, 0, len(resp.Items))
	for i := range resp.Items {
		if resp.Items[i].Status == "cancelled" {
			continue
		}
		events = append(events, resp.Items[i].toEvent())
	}
	return events, nil
}

// InsertEvent creates an event on the calendar.
func (c *Client) InsertEvent(ctx context.Context, calendarID string, event *interfaces.Event) (*interfaces.Event, error) {
	body := eventResource{
		Summary:  event.Summary,
		Location: event.Location,
	}
	if event.AllDay {
		body.Start = eventTime{Date: event.Start.Format("2006-01-02")}
		body.End = eventTime{Date: event.End.Format("2006-01-02")}
	} else {
		body.Start = eventTime{DateTime: event.Start.Format(time.RFC3339)}
		body.End = eventTime{DateTime: event.End.Format(time.RFC3339)}
	}

	endpoint := fmt.Sprintf("%s/calendars/%s/events", c.calendarBase, url.PathEscape(calendarID))

	var resp eventResource
	if err := c.do(ctx, http.MethodPost, endpoint, &body, &resp); err != nil {
		return nil, err
	}
	created := resp.toEvent()
	return &created, nil
}

// DeleteEvent removes an event from the calendar.
func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	endpoint := fmt.Sprintf("%s/calendars/%s/events/%s", c.calendarBase, url.PathEscape(calendarID), url.PathEscape(eventID))
	return c.do(ctx, http.MethodDelete, endpoint, nil, nil)
}
