package google

import (
	"context"
	"net/http"
)

// CreateDraft creates a Gmail draft from a base64url-encoded RFC 822
// message and returns the draft ID.
func (c *Client) CreateDraft(ctx context.Context, rawMessage string) (string, error) {
	body := map[string]interface{}{
		"message": map[string]string{
			"raw": rawMessage,
		},
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, c.gmailBase+"/users/me/drafts", body, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}
