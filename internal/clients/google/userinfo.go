package google

import (
	"context"
	"net/http"

	"github.com/hyuoka/workpal/internal/models"
)

// GetProfile fetches the signed-in account's identity.
func (c *Client) GetProfile(ctx context.Context) (*models.Profile, error) {
	var resp struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Picture string `json:"picture"`
	}
	if err := c.do(ctx, http.MethodGet, c.userinfoBase+"/oauth2/v2/userinfo", nil, &resp); err != nil {
		return nil, err
	}
	return &models.Profile{
		Name:    resp.Name,
		Email:   resp.Email,
		Picture: resp.Picture,
	}, nil
}
