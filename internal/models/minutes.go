package models

// Template describes a recurring meeting whose minutes get drafted
// and distributed the same way every time.
type Template struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Recipients []string `json:"recipients"`
	Subject    string   `json:"subject"` // YYYYMMDD placeholder replaced with the meeting date
	Body       string   `json:"body"`
	Subtasks   []string `json:"subtasks,omitempty"` // follow-up tasks enqueued after distribution
	FolderPath []string `json:"folder_path,omitempty"`
	FileName   string   `json:"file_name,omitempty"`
}

// MinutesDraft is the result of a draft-creation run.
type MinutesDraft struct {
	DraftID     string `json:"draft_id"`
	Subject     string `json:"subject"`
	MeetingDate string `json:"meeting_date"` // YYYYMMDD extracted from the document
	Attachment  string `json:"attachment"`
}
