package minutes

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyuoka/workpal/internal/clients/google"
	"github.com/hyuoka/workpal/internal/common"
	"github.com/hyuoka/workpal/internal/interfaces"
	"github.com/hyuoka/workpal/internal/models"
)

// stubGoogle scripts the Drive and Gmail calls the minutes flow makes.
type stubGoogle struct {
	interfaces.GoogleClient

	files     map[string]models.DriveFile // name -> file
	exports   map[string][]byte           // fileID+mime -> data
	exportErr error

	copied   []string
	deleted  []string
	rawDraft string
	tasks    []interfaces.Task
	taskList string
}

func (s *stubGoogle) SearchFiles(_ context.Context, query interfaces.DriveQuery) ([]models.DriveFile, error) {
	file, ok := s.files[query.Name]
	if !ok {
		return nil, nil
	}
	if query.MimeType != "" && query.MimeType != file.MimeType {
		return nil, nil
	}
	return []models.DriveFile{file}, nil
}

func (s *stubGoogle) CopyFile(_ context.Context, fileID, name, mimeType string) (*models.DriveFile, error) {
	s.copied = append(s.copied, fileID)
	return &models.DriveFile{ID: "temp-1", Name: name, MimeType: mimeType}, nil
}

func (s *stubGoogle) DeleteFile(_ context.Context, fileID string) error {
	s.deleted = append(s.deleted, fileID)
	return nil
}

func (s *stubGoogle) ExportFile(_ context.Context, fileID, mimeType string) ([]byte, error) {
	if s.exportErr != nil {
		return nil, s.exportErr
	}
	return s.exports[fileID+"|"+mimeType], nil
}

func (s *stubGoogle) DownloadFile(_ context.Context, fileID string) ([]byte, error) {
	return s.exports[fileID+"|media"], nil
}

func (s *stubGoogle) CreateDraft(_ context.Context, raw string) (string, error) {
	s.rawDraft = raw
	return "draft-1", nil
}

func (s *stubGoogle) InsertTask(_ context.Context, tasklistID string, task *interfaces.Task) (*interfaces.Task, error) {
	s.taskList = tasklistID
	s.tasks = append(s.tasks, *task)
	return task, nil
}

var testNow = time.Date(2026, 8, 29, 10, 0, 0, 0, time.Local)

func newTestService(stub *stubGoogle) *Service {
	svc := NewService(stub, common.NewSilentLogger())
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestTemplates(t *testing.T) {
	svc := newTestService(&stubGoogle{})
	templates, err := svc.Templates(context.Background())
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, "improvement", templates[0].ID)
	assert.Equal(t, "support", templates[1].ID)
}

func TestComposeURL(t *testing.T) {
	svc := newTestService(&stubGoogle{})
	composeURL, err := svc.ComposeURL(context.Background(), "improvement")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(composeURL, "https://mail.google.com/mail/?"))
	assert.Contains(t, composeURL, "view=cm")
	assert.Contains(t, composeURL, "daisuke_miyamoto%40saimiya.com")
	// the placeholder must be resolved to today's date
	assert.NotContains(t, composeURL, "YYYYMMDD")
}

func TestComposeURL_UnknownTemplate(t *testing.T) {
	svc := newTestService(&stubGoogle{})
	_, err := svc.ComposeURL(context.Background(), "standup")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestExtractMeetingDate(t *testing.T) {
	fallback := time.Date(2026, 8, 29, 0, 0, 0, 0, time.Local)

	tests := []struct {
		name string
		text string
		want string
	}{
		{"japanese notation", "開催日: 2026年8月5日 10:00より", "20260805"},
		{"slash notation", "date 2026/12/01 agenda", "20261201"},
		{"spaced japanese", "2026年 8月 5日", "20260805"},
		{"no date falls back to today", "undated minutes", "20260829"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractMeetingDate(tt.text, fallback))
		})
	}
}

func TestCreateDraft_DocxConvertsThroughTempDoc(t *testing.T) {
	stub := &stubGoogle{
		files: map[string]models.DriveFile{
			"改善活動推進委員会(テンプレート).docx": {ID: "docx-1", Name: "改善活動推進委員会(テンプレート).docx", MimeType: google.MimeDocx},
		},
		exports: map[string][]byte{
			"temp-1|" + google.MimePlainText: []byte("議事録 2026年8月5日 開催"),
			"temp-1|" + google.MimePDF:       []byte("%PDF-fake"),
		},
	}
	svc := newTestService(stub)

	draft, err := svc.CreateDraft(context.Background(), "improvement")
	require.NoError(t, err)

	assert.Equal(t, "draft-1", draft.DraftID)
	assert.Equal(t, "20260805", draft.MeetingDate)
	assert.Equal(t, "20260805改善活動推進委員会", draft.Subject)
	assert.Equal(t, "改善活動推進委員会(議事録)_20260829.pdf", draft.Attachment)

	// conversion copy made and always cleaned up
	assert.Equal(t, []string{"docx-1"}, stub.copied)
	assert.Equal(t, []string{"temp-1"}, stub.deleted)

	decoded, err := base64.RawURLEncoding.DecodeString(stub.rawDraft)
	require.NoError(t, err)
	message := string(decoded)
	assert.Contains(t, message, "To: daisuke_miyamoto@saimiya.com")
	assert.Contains(t, message, "Subject: =?utf-8?B?")
	assert.Contains(t, message, "multipart/mixed")
	assert.Contains(t, message, `filename="改善活動推進委員会(議事録)_20260829.pdf"`)
	assert.Contains(t, message, base64.StdEncoding.EncodeToString([]byte("%PDF-fake")))
}

func TestCreateDraft_GoogleDocExportsDirectly(t *testing.T) {
	stub := &stubGoogle{
		files: map[string]models.DriveFile{
			"改善活動推進委員会(テンプレート).docx": {ID: "doc-1", Name: "議事録", MimeType: google.MimeDoc},
		},
		exports: map[string][]byte{
			"doc-1|" + google.MimePlainText: []byte("2026/08/10"),
			"doc-1|" + google.MimePDF:       []byte("%PDF-doc"),
		},
	}
	svc := newTestService(stub)

	draft, err := svc.CreateDraft(context.Background(), "improvement")
	require.NoError(t, err)

	assert.Equal(t, "20260810", draft.MeetingDate)
	assert.Empty(t, stub.copied)
	assert.Empty(t, stub.deleted)
}

func TestCreateDraft_TempDocDeletedOnExportFailure(t *testing.T) {
	stub := &stubGoogle{
		files: map[string]models.DriveFile{
			"改善活動推進委員会(テンプレート).docx": {ID: "docx-1", Name: "x.docx", MimeType: google.MimeDocx},
		},
		exportErr: fmt.Errorf("export quota exceeded"),
	}
	svc := newTestService(stub)

	_, err := svc.CreateDraft(context.Background(), "improvement")
	require.Error(t, err)
	assert.Equal(t, []string{"temp-1"}, stub.deleted)
}

func TestCreateDraft_FileMissing(t *testing.T) {
	svc := newTestService(&stubGoogle{})
	_, err := svc.CreateDraft(context.Background(), "improvement")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in Drive")
}

func TestEnqueueSubtasks(t *testing.T) {
	stub := &stubGoogle{}
	svc := newTestService(stub)

	count, err := svc.EnqueueSubtasks(context.Background(), "support")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.Equal(t, primaryTasks, stub.taskList)
	require.Len(t, stub.tasks, 4)
	assert.Equal(t, "患者サポート部門会議 準備", stub.tasks[0].Title)
}
