// Package minutes drafts and distributes meeting minutes from Drive
// templates
package minutes

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/hyuoka/workpal/internal/clients/google"
	"github.com/hyuoka/workpal/internal/common"
	"github.com/hyuoka/workpal/internal/interfaces"
	"github.com/hyuoka/workpal/internal/models"
)

// Compile-time interface check
var _ interfaces.MinutesService = (*Service)(nil)

const (
	primaryTasks   = "@default"
	composeBaseURL = "https://mail.google.com/mail/"
)

// Service implements MinutesService
type Service struct {
	google interfaces.GoogleClient
	logger *common.Logger
	now    func() time.Time
}

// NewService creates a new minutes service
func NewService(googleClient interfaces.GoogleClient, logger *common.Logger) *Service {
	return &Service{
		google: googleClient,
		logger: logger,
		now:    time.Now,
	}
}

// Templates returns the built-in meeting templates
func (s *Service) Templates(_ context.Context) ([]models.Template, error) {
	return append([]models.Template(nil), builtinTemplates...), nil
}

// ComposeURL builds a prefilled Gmail compose URL for the template,
// with today's date substituted into the subject.
func (s *Service) ComposeURL(_ context.Context, templateID string) (string, error) {
	template, err := findTemplate(templateID)
	if err != nil {
		return "", err
	}

	today := s.now().Format("20060102")
	subject := strings.ReplaceAll(template.Subject, "YYYYMMDD", today)
	body := strings.ReplaceAll(template.Body, "YYYYMMDD", today)

	params := url.Values{}
	params.Set("view", "cm")
	params.Set("fs", "1")
	params.Set("to", strings.Join(template.Recipients, ","))
	params.Set("su", subject)
	params.Set("body", body)
	return composeBaseURL + "?" + params.Encode(), nil
}

// CreateDraft exports the minutes document as PDF, extracts the
// meeting date from its text and creates a Gmail draft with the PDF
// attached. Word documents are converted through a temporary Google
// Doc copy which is always deleted afterwards.
func (s *Service) CreateDraft(ctx context.Context, templateID string) (*models.MinutesDraft, error) {
	template, err := findTemplate(templateID)
	if err != nil {
		return nil, err
	}

	file, err := s.findTemplateFile(ctx, template)
	if err != nil {
		return nil, err
	}

	today := s.now()
	todayStr := today.Format("20060102")

	var (
		text        string
		attachment  []byte
		contentType string
		fileName    string
	)

	switch file.MimeType {
	case google.MimeDoc:
		text, attachment, err = s.exportDocument(ctx, file.ID)
		if err != nil {
			return nil, err
		}
		fileName = fmt.Sprintf("%s(議事録)_%s.pdf", template.Title, todayStr)
		contentType = google.MimePDF

	case google.MimeDocx:
		// converting through a temporary Google Doc is the only way
		// Drive will render a docx as PDF
		temp, copyErr := s.google.CopyFile(ctx, file.ID, "TEMP_CONVERT_"+todayStr, google.MimeDoc)
		if copyErr != nil {
			return nil, fmt.Errorf("failed to convert '%s': %w", file.Name, copyErr)
		}
		text, attachment, err = s.exportDocument(ctx, temp.ID)
		if deleteErr := s.google.DeleteFile(ctx, temp.ID); deleteErr != nil {
			s.logger.Warn().Str("id", temp.ID).Err(deleteErr).Msg("Failed to delete temporary conversion doc")
		}
		if err != nil {
			return nil, err
		}
		fileName = fmt.Sprintf("%s(議事録)_%s.pdf", template.Title, todayStr)
		contentType = google.MimePDF

	default:
		attachment, err = s.google.DownloadFile(ctx, file.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to download '%s': %w", file.Name, err)
		}
		fileName = fmt.Sprintf("%s(議事録)_%s.docx", template.Title, todayStr)
		contentType = google.MimeDocx
	}

	meetingDate := extractMeetingDate(text, today)
	subject := strings.ReplaceAll(template.Subject, "YYYYMMDD", meetingDate)
	body := strings.ReplaceAll(template.Body, "YYYYMMDD", meetingDate)

	raw := buildRawMessage(template.Recipients, subject, body, fileName, contentType, attachment)
	draftID, err := s.google.CreateDraft(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to create draft: %w", err)
	}

	s.logger.Info().Str("template", template.ID).Str("meeting_date", meetingDate).Msg("Minutes draft created")
	return &models.MinutesDraft{
		DraftID:     draftID,
		Subject:     subject,
		MeetingDate: meetingDate,
		Attachment:  fileName,
	}, nil
}

// EnqueueSubtasks inserts the template's follow-up tasks into the
// primary task list. Returns how many were inserted before any error.
func (s *Service) EnqueueSubtasks(ctx context.Context, templateID string) (int, error) {
	template, err := findTemplate(templateID)
	if err != nil {
		return 0, err
	}

	for i, title := range template.Subtasks {
		if _, err := s.google.InsertTask(ctx, primaryTasks, &interfaces.Task{Title: title}); err != nil {
			return i, fmt.Errorf("failed to insert task '%s': %w", title, err)
		}
	}
	return len(template.Subtasks), nil
}

// exportDocument pulls a Google Doc as plain text (for date
// extraction) and as the PDF attachment.
func (s *Service) exportDocument(ctx context.Context, fileID string) (string, []byte, error) {
	text, err := s.google.ExportFile(ctx, fileID, google.MimePlainText)
	if err != nil {
		return "", nil, fmt.Errorf("failed to export document text: %w", err)
	}
	pdfData, err := s.google.ExportFile(ctx, fileID, google.MimePDF)
	if err != nil {
		return "", nil, fmt.Errorf("failed to export document PDF: %w", err)
	}
	return string(text), pdfData, nil
}

func findTemplate(id string) (*models.Template, error) {
	for i := range builtinTemplates {
		if builtinTemplates[i].ID == id {
			return &builtinTemplates[i], nil
		}
	}
	return nil, fmt.Errorf("template '%s' not found", id)
}

// findTemplateFile walks the template's folder chain from the Drive
// root; when any link is missing it falls back to a global name search.
func (s *Service) findTemplateFile(ctx context.Context, template *models.Template) (*models.DriveFile, error) {
	if parentID := s.walkFolderPath(ctx, template.FolderPath); parentID != "" {
		files, err := s.google.SearchFiles(ctx, interfaces.DriveQuery{
			Name:     template.FileName,
			ParentID: parentID,
			PageSize: 1,
		})
		if err == nil && len(files) > 0 {
			return &files[0], nil
		}
	}

	files, err := s.google.SearchFiles(ctx, interfaces.DriveQuery{Name: template.FileName, PageSize: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to search Drive: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("template file '%s' not found in Drive", template.FileName)
	}
	return &files[0], nil
}

// walkFolderPath resolves the folder chain one segment at a time,
// returning the final folder ID or "" when the chain breaks.
func (s *Service) walkFolderPath(ctx context.Context, path []string) string {
	parentID := ""
	for _, segment := range path {
		folders, err := s.google.SearchFiles(ctx, interfaces.DriveQuery{
			Name:     segment,
			ParentID: parentID,
			MimeType: google.MimeFolder,
			PageSize: 1,
		})
		if err != nil || len(folders) == 0 {
			s.logger.Debug().Str("folder", segment).Msg("Folder chain broken, using global search")
			return ""
		}
		parentID = folders[0].ID
	}
	return parentID
}
