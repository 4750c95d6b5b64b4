package models

import "time"

// DriveFile is the subset of Drive file metadata the dashboard shows.
type DriveFile struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	MimeType     string    `json:"mime_type"`
	WebViewLink  string    `json:"web_view_link,omitempty"`
	ModifiedTime time.Time `json:"modified_time,omitempty"`
}

// PointsSummary reports training-points progress against the yearly
// requirement, with the certificate files backing the count.
type PointsSummary struct {
	Current      int         `json:"current"`
	Required     int         `json:"required"`
	Certificates []DriveFile `json:"certificates"`
}

// AttendanceSheet is the newest roster PDF with validation results.
type AttendanceSheet struct {
	File      DriveFile `json:"file"`
	PageCount int       `json:"page_count"`
	SizeBytes int64     `json:"size_bytes"`
}
