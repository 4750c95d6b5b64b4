package google

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hyuoka/workpal/internal/interfaces"
	"github.com/hyuoka/workpal/internal/models"
)

// MIME types used across Drive operations.
const (
	MimeFolder    = "application/vnd.google-apps.folder"
	MimeDoc       = "application/vnd.google-apps.document"
	MimeDocx      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeXlsx      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimePDF       = "application/pdf"
	MimePlainText = "text/plain"
)

// driveFileResource represents a Drive file payload
type driveFileResource struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType"`
	WebViewLink  string `json:"webViewLink"`
	ModifiedTime string `json:"modifiedTime"`
}

func (r *driveFileResource) toFile() models.DriveFile {
	file := models.DriveFile{
		ID:          r.ID,
		Name:        r.Name,
		MimeType:    r.MimeType,
		WebViewLink: r.WebViewLink,
	}
	if r.ModifiedTime != "" {
		if t, err := time.Parse(time.RFC3339, r.ModifiedTime); err == nil {
			file.ModifiedTime = t
		}
	}
	return file
}

// buildDriveQuery assembles the files.list q expression.
func buildDriveQuery(query interfaces.DriveQuery) string {
	terms := []string{"trashed = false"}
	if query.Name != "" {
		terms = append(terms, fmt.Sprintf("name = '%s'", escapeDriveTerm(query.Name)))
	}
	if query.NamePattern != "" {
		terms = append(terms, fmt.Sprintf("name contains '%s'", escapeDriveTerm(query.NamePattern)))
	}
	if query.ParentID != "" {
		terms = append(terms, fmt.Sprintf("'%s' in parents", escapeDriveTerm(query.ParentID)))
	}
	if query.MimeType != "" {
		terms = append(terms, fmt.Sprintf("mimeType = '%s'", escapeDriveTerm(query.MimeType)))
	}
	return strings.Join(terms, " and ")
}

// escapeDriveTerm escapes quotes and backslashes for the q grammar.
func escapeDriveTerm(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

// SearchFiles runs a files.list query.
func (c *Client) SearchFiles(ctx context.Context, query interfaces.DriveQuery) ([]models.DriveFile, error) {
	params := url.Values{}
	params.Set("q", buildDriveQuery(query))
	params.Set("fields", "files(id,name,mimeType,webViewLink,modifiedTime)")
	if query.OrderBy != "" {
		params.Set("orderBy", query.OrderBy)
	}
	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = 30
	}
	params.Set("pageSize", strconv.Itoa(pageSize))

	var resp struct {
		Files []driveFileResource `json:"files"`
	}
	if err := c.do(ctx, http.MethodGet, c.driveBase+"/files?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	files := make([]models.DriveFile, 0, len(resp.Files))
	for i := range resp.Files {
		files = append(files, resp.Files[i].toFile())
	}
	return files, nil
}

// DownloadFile fetches the file's binary content.
func (c *Client) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/files/%s?alt=media", c.driveBase, url.PathEscape(fileID))
	return c.doRaw(ctx, http.MethodGet, endpoint, nil)
}

// ExportFile converts a Google-native file to the given MIME type.
func (c *Client) ExportFile(ctx context.Context, fileID, mimeType string) ([]byte, error) {
	params := url.Values{}
	params.Set("mimeType", mimeType)
	endpoint := fmt.Sprintf("%s/files/%s/export?%s", c.driveBase, url.PathEscape(fileID), params.Encode())
	return c.doRaw(ctx, http.MethodGet, endpoint, nil)
}

// CopyFile duplicates a file, optionally converting it to the target
// MIME type. Used to turn an uploaded docx into a temp Google Doc.
func (c *Client) CopyFile(ctx context.Context, fileID, name, mimeType string) (*models.DriveFile, error) {
	body := map[string]string{}
	if name != "" {
		body["name"] = name
	}
	if mimeType != "" {
		body["mimeType"] = mimeType
	}

	endpoint := fmt.Sprintf("%s/files/%s/copy", c.driveBase, url.PathEscape(fileID))

	var resp driveFileResource
	if err := c.do(ctx, http.MethodPost, endpoint, body, &resp); err != nil {
		return nil, err
	}
	copied := resp.toFile()
	return &copied, nil
}

// DeleteFile permanently removes a file.
func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	endpoint := fmt.Sprintf("%s/files/%s", c.driveBase, url.PathEscape(fileID))
	return c.do(ctx, http.MethodDelete, endpoint, nil, nil)
}
