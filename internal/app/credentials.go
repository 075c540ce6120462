package app

import (
	"context"
	"fmt"

	"advisorbot/internal/identity"
	"advisorbot/internal/model"
	"advisorbot/internal/storage"
)

// Credentials keeps the bearer token in durable storage.
type Credentials struct {
	kv storage.Store
}

func NewCredentials(kv storage.Store) *Credentials {
	return &Credentials{kv: kv}
}

// Token returns the stored token, or "" when logged out.
func (c *Credentials) Token(ctx context.Context) (string, error) {
	token, _, err := c.kv.Get(ctx, storage.KeyToken)
	if err != nil {
		return "", fmt.Errorf("read token failed: %w", err)
	}
	return token, nil
}

func (c *Credentials) Save(ctx context.Context, token string) error {
	if err := c.kv.Set(ctx, storage.KeyToken, token); err != nil {
		return fmt.Errorf("save token failed: %w", err)
	}
	return nil
}

func (c *Credentials) Clear(ctx context.Context) error {
	if err := c.kv.Remove(ctx, storage.KeyToken); err != nil {
		return fmt.Errorf("remove token failed: %w", err)
	}
	return nil
}

func (c *Credentials) Identity(ctx context.Context) (model.Identity, error) {
	token, err := c.Token(ctx)
	if err != nil {
		return model.Identity{}, err
	}
	return identity.Read(token), nil
}
