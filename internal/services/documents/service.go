// Package documents surfaces tracked Drive files: training point
// progress, the attendance roster and recently viewed documents
package documents

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"github.com/hyuoka/workpal/internal/clients/google"
	"github.com/hyuoka/workpal/internal/common"
	"github.com/hyuoka/workpal/internal/interfaces"
	"github.com/hyuoka/workpal/internal/models"
)

// Compile-time interface check
var _ interfaces.DocumentsService = (*Service)(nil)

const defaultRecentLimit = 10

// Service implements DocumentsService
type Service struct {
	google interfaces.GoogleClient
	config *common.DocumentsConfig
	logger *common.Logger
}

// NewService creates a new documents service
func NewService(googleClient interfaces.GoogleClient, config *common.DocumentsConfig, logger *common.Logger) *Service {
	return &Service{
		google: googleClient,
		config: config,
		logger: logger,
	}
}

// Points locates the certificate folder, reads the current point total
// from the management workbook and lists the certificates backing it.
func (s *Service) Points(ctx context.Context) (*models.PointsSummary, error) {
	folder, err := s.findFolder(ctx, s.config.PointsFolder)
	if err != nil {
		return nil, err
	}

	files, err := s.google.SearchFiles(ctx, interfaces.DriveQuery{
		ParentID: folder.ID,
		OrderBy:  "modifiedTime desc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list '%s': %w", s.config.PointsFolder, err)
	}

	var workbook *models.DriveFile
	certificates := make([]models.DriveFile, 0, len(files))
	for i, file := range files {
		if file.Name == s.config.PointsFileName {
			workbook = &files[i]
			continue
		}
		certificates = append(certificates, file)
	}
	if workbook == nil {
		return nil, fmt.Errorf("workbook '%s' not found in folder '%s'", s.config.PointsFileName, s.config.PointsFolder)
	}

	current, err := s.readPointsCell(ctx, workbook.ID)
	if err != nil {
		return nil, err
	}

	return &models.PointsSummary{
		Current:      current,
		Required:     s.config.RequiredPoints,
		Certificates: certificates,
	}, nil
}

// Attendance returns the newest roster PDF with its page count.
func (s *Service) Attendance(ctx context.Context) (*models.AttendanceSheet, error) {
	folder, err := s.findFolder(ctx, s.config.AttendanceFolder)
	if err != nil {
		return nil, err
	}

	files, err := s.google.SearchFiles(ctx, interfaces.DriveQuery{
		ParentID: folder.ID,
		MimeType: google.MimePDF,
		OrderBy:  "modifiedTime desc",
		PageSize: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list '%s': %w", s.config.AttendanceFolder, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no roster PDF found in folder '%s'", s.config.AttendanceFolder)
	}
	file := files[0]

	data, err := s.google.DownloadFile(ctx, file.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to download '%s': %w", file.Name, err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("'%s' is not a valid PDF: %w", file.Name, err)
	}

	return &models.AttendanceSheet{
		File:      file,
		PageCount: reader.NumPage(),
		SizeBytes: int64(len(data)),
	}, nil
}

// Recent lists the most recently viewed Drive files.
func (s *Service) Recent(ctx context.Context, limit int) ([]models.DriveFile, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	files, err := s.google.SearchFiles(ctx, interfaces.DriveQuery{
		OrderBy:  "viewedByMeTime desc",
		PageSize: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list recent files: %w", err)
	}
	return files, nil
}

// findFolder resolves a Drive folder by exact name.
func (s *Service) findFolder(ctx context.Context, name string) (*models.DriveFile, error) {
	folders, err := s.google.SearchFiles(ctx, interfaces.DriveQuery{
		Name:     name,
		MimeType: google.MimeFolder,
		PageSize: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search Drive: %w", err)
	}
	if len(folders) == 0 {
		return nil, fmt.Errorf("folder '%s' not found in Drive", name)
	}
	return &folders[0], nil
}

// readPointsCell downloads the workbook and reads the configured cell.
func (s *Service) readPointsCell(ctx context.Context, fileID string) (int, error) {
	data, err := s.google.DownloadFile(ctx, fileID)
	if err != nil {
		return 0, fmt.Errorf("failed to download '%s': %w", s.config.PointsFileName, err)
	}

	workbook, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("failed to open '%s': %w", s.config.PointsFileName, err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return 0, fmt.Errorf("workbook '%s' has no sheets", s.config.PointsFileName)
	}

	value, err := workbook.GetCellValue(sheets[0], s.config.PointsCell)
	if err != nil {
		return 0, fmt.Errorf("failed to read cell %s: %w", s.config.PointsCell, err)
	}

	current, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("cell %s does not hold a point total: '%s'", s.config.PointsCell, value)
	}
	return current, nil
}
