package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"advisorbot/internal/backend"
	"advisorbot/internal/model"
)

const minPasswordLength = 6

// AccountService covers sign-up, login and the profile page.
type AccountService struct {
	client       *backend.Client
	credentials  *Credentials
	synchronizer *Synchronizer
	logger       *zap.Logger
}

type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

func NewAccountService(client *backend.Client, credentials *Credentials, synchronizer *Synchronizer, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		client:       client,
		credentials:  credentials,
		synchronizer: synchronizer,
		logger:       logger,
	}
}

func (s *AccountService) Register(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return ErrInvalidInput
	}
	return s.client.Register(ctx, email, password)
}

// Login stores the issued token and pulls the server history for it.
func (s *AccountService) Login(ctx context.Context, email, password string) (model.Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return model.Identity{}, ErrInvalidInput
	}

	token, err := s.client.Login(ctx, email, password)
	if err != nil {
		return model.Identity{}, err
	}
	if err := s.credentials.Save(ctx, token); err != nil {
		return model.Identity{}, err
	}
	if s.synchronizer != nil {
		s.synchronizer.SyncIfNeeded(ctx, token)
	}
	return s.credentials.Identity(ctx)
}

// Resume syncs history for a token stored by an earlier run.
func (s *AccountService) Resume(ctx context.Context) bool {
	token, err := s.credentials.Token(ctx)
	if err != nil || token == "" || s.synchronizer == nil {
		return false
	}
	return s.synchronizer.SyncIfNeeded(ctx, token)
}

// Sync rebuilds local sessions from the server history now.
func (s *AccountService) Sync(ctx context.Context) error {
	token, err := s.requireToken(ctx)
	if err != nil {
		return err
	}
	if s.synchronizer == nil {
		return nil
	}
	return s.synchronizer.Sync(ctx, token)
}

// Logout forgets the token. Local sessions are kept.
func (s *AccountService) Logout(ctx context.Context) error {
	return s.credentials.Clear(ctx)
}

func (s *AccountService) Identity(ctx context.Context) (model.Identity, error) {
	return s.credentials.Identity(ctx)
}

// Profile fetches the profile. Any failure degrades to a placeholder profile
// built from the token identity.
func (s *AccountService) Profile(ctx context.Context) model.Profile {
	fallback := model.Profile{ProfilePicture: model.DefaultProfilePicture}
	if id, err := s.credentials.Identity(ctx); err == nil {
		fallback.Email = id.Email
	}

	token, err := s.credentials.Token(ctx)
	if err != nil || token == "" {
		return fallback
	}
	profile, err := s.client.Profile(ctx, token)
	if err != nil {
		s.logger.Debug("profile fetch failed, using placeholder", zap.Error(err))
		return fallback
	}

	switch {
	case profile.ProfilePicture == "":
		profile.ProfilePicture = model.DefaultProfilePicture
	case profile.ProfilePicture != model.DefaultProfilePicture:
		profile.ProfilePicture = s.client.ResolveURL(profile.ProfilePicture)
	}
	if profile.Email == "" {
		profile.Email = fallback.Email
	}
	return *profile
}

func (s *AccountService) UpdateProfile(ctx context.Context, update backend.ProfileUpdate) error {
	token, err := s.requireToken(ctx)
	if err != nil {
		return err
	}
	return s.client.UpdateProfile(ctx, token, update)
}

func (s *AccountService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	if input.NewPassword != input.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if len(input.NewPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}
	token, err := s.requireToken(ctx)
	if err != nil {
		return err
	}
	return s.client.ChangePassword(ctx, token, input.CurrentPassword, input.NewPassword)
}

// UploadProfilePicture returns the absolute URL of the stored picture.
func (s *AccountService) UploadProfilePicture(ctx context.Context, filename string, file io.Reader) (string, error) {
	token, err := s.requireToken(ctx)
	if err != nil {
		return "", err
	}
	result, err := s.client.UploadProfilePicture(ctx, token, filename, file)
	if err != nil {
		return "", fmt.Errorf("upload profile picture failed: %w", err)
	}
	return result.URL, nil
}

// ResetHistory clears the caller's server-side history. Local sessions are
// not touched.
func (s *AccountService) ResetHistory(ctx context.Context) error {
	token, err := s.requireToken(ctx)
	if err != nil {
		return err
	}
	return s.client.ResetHistory(ctx, token)
}

func (s *AccountService) requireToken(ctx context.Context) (string, error) {
	token, err := s.credentials.Token(ctx)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrNotAuthenticated
	}
	return token, nil
}
