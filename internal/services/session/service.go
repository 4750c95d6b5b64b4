// Package session owns sign-in state and the monitor lifecycle
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hyuoka/workpal/internal/common"
	"github.com/hyuoka/workpal/internal/interfaces"
	"github.com/hyuoka/workpal/internal/models"
)

// Compile-time interface checks
var (
	_ interfaces.SessionService = (*Service)(nil)
	_ interfaces.TokenSource    = (*Service)(nil)
)

// Service implements SessionService. It also serves as the TokenSource
// for the Google client, so workspace calls always use the stored
// credential.
type Service struct {
	storage interfaces.StorageManager
	google  interfaces.GoogleClient
	monitor interfaces.MonitorService
	config  *common.AuthConfig
	logger  *common.Logger
	now     func() time.Time
}

// NewService creates a new session service
func NewService(storage interfaces.StorageManager, googleClient interfaces.GoogleClient, monitor interfaces.MonitorService, config *common.AuthConfig, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		google:  googleClient,
		monitor: monitor,
		config:  config,
		logger:  logger,
		now:     time.Now,
	}
}

// Token returns the stored Google bearer token
func (s *Service) Token(ctx context.Context) (string, error) {
	token, err := s.storage.InternalStore().GetSystemKV(ctx, models.SystemKeyAccessToken)
	if err != nil {
		return "", fmt.Errorf("failed to load access token: %w", err)
	}
	if token == "" {
		return "", fmt.Errorf("not signed in")
	}
	return token, nil
}

// SignIn validates the Google access token, persists the session and
// starts the monitor loop. The token is verified by fetching the
// account profile with it; a rejected token never replaces an existing
// session.
func (s *Service) SignIn(ctx context.Context, accessToken string) (string, *models.Profile, error) {
	if accessToken == "" {
		return "", nil, fmt.Errorf("access token is required")
	}

	previous, _ := s.storage.InternalStore().GetSystemKV(ctx, models.SystemKeyAccessToken)
	if err := s.storage.InternalStore().SetSystemKV(ctx, models.SystemKeyAccessToken, accessToken); err != nil {
		return "", nil, fmt.Errorf("failed to persist access token: %w", err)
	}

	profile, err := s.google.GetProfile(ctx)
	if err != nil {
		// restore whatever was there before the failed attempt
		if previous != "" {
			_ = s.storage.InternalStore().SetSystemKV(ctx, models.SystemKeyAccessToken, previous)
		} else {
			_ = s.storage.InternalStore().DeleteSystemKV(ctx, models.SystemKeyAccessToken)
		}
		return "", nil, fmt.Errorf("token validation failed: %w", err)
	}

	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := s.storage.InternalStore().SetSystemKV(ctx, models.SystemKeyProfile, string(profileJSON)); err != nil {
		return "", nil, fmt.Errorf("failed to persist profile: %w", err)
	}

	serverToken, err := s.mintToken(profile)
	if err != nil {
		return "", nil, err
	}

	if s.monitor != nil {
		s.monitor.Start()
	}

	s.logger.Info().Str("email", profile.Email).Msg("Signed in")
	return serverToken, profile, nil
}

// SignOut revokes the Google token best-effort, clears the stored
// session and stops the monitor loop.
func (s *Service) SignOut(ctx context.Context) error {
	if err := s.google.RevokeToken(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Token revocation failed")
	}

	if err := s.storage.InternalStore().DeleteSystemKV(ctx, models.SystemKeyAccessToken); err != nil {
		return fmt.Errorf("failed to clear access token: %w", err)
	}
	if err := s.storage.InternalStore().DeleteSystemKV(ctx, models.SystemKeyProfile); err != nil {
		return fmt.Errorf("failed to clear profile: %w", err)
	}

	if s.monitor != nil {
		s.monitor.Stop()
	}

	s.logger.Info().Msg("Signed out")
	return nil
}

// Status reports current sign-in state without exposing the token
func (s *Service) Status(ctx context.Context) (*models.SessionStatus, error) {
	token, err := s.storage.InternalStore().GetSystemKV(ctx, models.SystemKeyAccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if token == "" {
		return &models.SessionStatus{}, nil
	}

	status := &models.SessionStatus{SignedIn: true}
	profileJSON, err := s.storage.InternalStore().GetSystemKV(ctx, models.SystemKeyProfile)
	if err == nil && profileJSON != "" {
		var profile models.Profile
		if err := json.Unmarshal([]byte(profileJSON), &profile); err == nil {
			status.Profile = &profile
		}
	}
	return status, nil
}

// ValidateToken parses and verifies a server JWT, returning the
// subject email.
func (s *Service) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return subject, nil
}

// mintToken issues a signed HS256 JWT for the profile.
func (s *Service) mintToken(profile *models.Profile) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  profile.Email,
		"name": profile.Name,
		"iat":  now.Unix(),
		"exp":  now.Add(s.config.GetTokenExpiry()).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
