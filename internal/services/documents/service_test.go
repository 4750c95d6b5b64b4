package documents

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/hyuoka/workpal/internal/clients/google"
	"github.com/hyuoka/workpal/internal/common"
	"github.com/hyuoka/workpal/internal/interfaces"
	"github.com/hyuoka/workpal/internal/models"
)

// stubDrive answers SearchFiles by folder name or parent and serves
// file contents by ID.
type stubDrive struct {
	interfaces.GoogleClient

	folders  map[string]string              // name -> folder ID
	children map[string][]models.DriveFile  // parent ID -> files
	contents map[string][]byte              // file ID -> bytes
	queries  []interfaces.DriveQuery
}

func (s *stubDrive) SearchFiles(_ context.Context, query interfaces.DriveQuery) ([]models.DriveFile, error) {
	s.queries = append(s.queries, query)

	if query.MimeType == google.MimeFolder && query.Name != "" {
		id, ok := s.folders[query.Name]
		if !ok {
			return nil, nil
		}
		return []models.DriveFile{{ID: id, Name: query.Name, MimeType: google.MimeFolder}}, nil
	}
	if query.ParentID != "" {
		files := s.children[query.ParentID]
		if query.MimeType != "" {
			filtered := make([]models.DriveFile, 0, len(files))
			for _, file := range files {
				if file.MimeType == query.MimeType {
					filtered = append(filtered, file)
				}
			}
			files = filtered
		}
		if query.PageSize > 0 && len(files) > query.PageSize {
			files = files[:query.PageSize]
		}
		return files, nil
	}
	return nil, nil
}

func (s *stubDrive) DownloadFile(_ context.Context, fileID string) ([]byte, error) {
	data, ok := s.contents[fileID]
	if !ok {
		return nil, fmt.Errorf("file '%s' not found", fileID)
	}
	return data, nil
}

func testConfig() *common.DocumentsConfig {
	return &common.DocumentsConfig{
		PointsFolder:     "勉強会参加証明書",
		PointsFileName:   "ポイント管理エクセル.xlsx",
		PointsCell:       "C17",
		RequiredPoints:   60,
		AttendanceFolder: "勤務表",
	}
}

func newTestService(drive *stubDrive) *Service {
	return NewService(drive, testConfig(), common.NewSilentLogger())
}

func pointsWorkbook(t *testing.T, cell, value string) []byte {
	t.Helper()
	workbook := excelize.NewFile()
	defer workbook.Close()
	require.NoError(t, workbook.SetCellValue(workbook.GetSheetName(0), cell, value))
	buffer, err := workbook.WriteToBuffer()
	require.NoError(t, err)
	return buffer.Bytes()
}

// minimalPDF assembles a valid single-generation PDF with the given
// page count, computing xref offsets as it goes.
func minimalPDF(pages int) []byte {
	var body strings.Builder
	var offsets []int

	write := func(obj string) {
		offsets = append(offsets, body.Len())
		body.WriteString(obj)
	}

	body.WriteString("%PDF-1.4\n")

	kids := make([]string, pages)
	for i := 0; i < pages; i++ {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
	}
	write("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	write(fmt.Sprintf("2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n", strings.Join(kids, " "), pages))
	for i := 0; i < pages; i++ {
		write(fmt.Sprintf("%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>\nendobj\n", i+3))
	}

	xrefPos := body.Len()
	body.WriteString(fmt.Sprintf("xref\n0 %d\n", len(offsets)+1))
	body.WriteString("0000000000 65535 f \n")
	for _, offset := range offsets {
		body.WriteString(fmt.Sprintf("%010d 00000 n \n", offset))
	}
	body.WriteString(fmt.Sprintf("trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xrefPos))
	return []byte(body.String())
}

func TestPoints(t *testing.T) {
	drive := &stubDrive{
		folders: map[string]string{"勉強会参加証明書": "folder-1"},
		children: map[string][]models.DriveFile{
			"folder-1": {
				{ID: "cert-2", Name: "証明書2.pdf", MimeType: google.MimePDF},
				{ID: "wb-1", Name: "ポイント管理エクセル.xlsx", MimeType: google.MimeXlsx},
				{ID: "cert-1", Name: "証明書1.pdf", MimeType: google.MimePDF},
			},
		},
		contents: map[string][]byte{
			"wb-1": pointsWorkbook(t, "C17", "45"),
		},
	}

	summary, err := newTestService(drive).Points(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 45, summary.Current)
	assert.Equal(t, 60, summary.Required)
	require.Len(t, summary.Certificates, 2)
	for _, cert := range summary.Certificates {
		assert.NotEqual(t, "ポイント管理エクセル.xlsx", cert.Name)
	}
}

func TestPoints_FolderMissing(t *testing.T) {
	drive := &stubDrive{folders: map[string]string{}}
	_, err := newTestService(drive).Points(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "folder '勉強会参加証明書' not found")
}

func TestPoints_WorkbookMissing(t *testing.T) {
	drive := &stubDrive{
		folders: map[string]string{"勉強会参加証明書": "folder-1"},
		children: map[string][]models.DriveFile{
			"folder-1": {{ID: "cert-1", Name: "証明書1.pdf", MimeType: google.MimePDF}},
		},
	}
	_, err := newTestService(drive).Points(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workbook 'ポイント管理エクセル.xlsx' not found")
}

func TestPoints_CellNotNumeric(t *testing.T) {
	drive := &stubDrive{
		folders: map[string]string{"勉強会参加証明書": "folder-1"},
		children: map[string][]models.DriveFile{
			"folder-1": {{ID: "wb-1", Name: "ポイント管理エクセル.xlsx", MimeType: google.MimeXlsx}},
		},
		contents: map[string][]byte{
			"wb-1": pointsWorkbook(t, "C17", "未定"),
		},
	}
	_, err := newTestService(drive).Points(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "C17")
}

func TestAttendance(t *testing.T) {
	modified := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)
	drive := &stubDrive{
		folders: map[string]string{"勤務表": "folder-2"},
		children: map[string][]models.DriveFile{
			"folder-2": {
				{ID: "pdf-new", Name: "勤務表_8月.pdf", MimeType: google.MimePDF, ModifiedTime: modified},
				{ID: "pdf-old", Name: "勤務表_7月.pdf", MimeType: google.MimePDF},
			},
		},
		contents: map[string][]byte{
			"pdf-new": minimalPDF(2),
		},
	}

	sheet, err := newTestService(drive).Attendance(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "勤務表_8月.pdf", sheet.File.Name)
	assert.Equal(t, 2, sheet.PageCount)
	assert.Equal(t, int64(len(minimalPDF(2))), sheet.SizeBytes)
}

func TestAttendance_NoPDF(t *testing.T) {
	drive := &stubDrive{
		folders: map[string]string{"勤務表": "folder-2"},
		children: map[string][]models.DriveFile{
			"folder-2": {{ID: "doc-1", Name: "memo.docx", MimeType: google.MimeDocx}},
		},
	}
	_, err := newTestService(drive).Attendance(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no roster PDF")
}

func TestAttendance_CorruptPDF(t *testing.T) {
	drive := &stubDrive{
		folders: map[string]string{"勤務表": "folder-2"},
		children: map[string][]models.DriveFile{
			"folder-2": {{ID: "pdf-bad", Name: "broken.pdf", MimeType: google.MimePDF}},
		},
		contents: map[string][]byte{
			"pdf-bad": []byte("this is not a pdf"),
		},
	}
	_, err := newTestService(drive).Attendance(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid PDF")
}

func TestRecent_DefaultLimit(t *testing.T) {
	drive := &stubDrive{}
	_, err := newTestService(drive).Recent(context.Background(), 0)
	require.NoError(t, err)

	require.Len(t, drive.queries, 1)
	assert.Equal(t, defaultRecentLimit, drive.queries[0].PageSize)
	assert.Equal(t, "viewedByMeTime desc", drive.queries[0].OrderBy)
}
