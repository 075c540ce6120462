package app

import (
	"context"
	"fmt"
	"strconv"

	"advisorbot/internal/storage"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Preferences holds the view flags kept next to the sessions.
type Preferences struct {
	kv storage.Store
}

func NewPreferences(kv storage.Store) *Preferences {
	return &Preferences{kv: kv}
}

func (p *Preferences) Theme(ctx context.Context) (string, error) {
	v, _, err := p.kv.Get(ctx, storage.KeyTheme)
	if err != nil {
		return "", fmt.Errorf("read theme failed: %w", err)
	}
	if v == ThemeDark {
		return ThemeDark, nil
	}
	return ThemeLight, nil
}

func (p *Preferences) ToggleTheme(ctx context.Context) (string, error) {
	current, err := p.Theme(ctx)
	if err != nil {
		return "", err
	}
	next := ThemeDark
	if current == ThemeDark {
		next = ThemeLight
	}
	if err := p.kv.Set(ctx, storage.KeyTheme, next); err != nil {
		return "", fmt.Errorf("save theme failed: %w", err)
	}
	return next, nil
}

func (p *Preferences) SidebarCollapsed(ctx context.Context) (bool, error) {
	v, ok, err := p.kv.Get(ctx, storage.KeySidebarCollapsed)
	if err != nil {
		return false, fmt.Errorf("read sidebar state failed: %w", err)
	}
	if !ok {
		return false, nil
	}
	collapsed, _ := strconv.ParseBool(v)
	return collapsed, nil
}

func (p *Preferences) ToggleSidebar(ctx context.Context) (bool, error) {
	collapsed, err := p.SidebarCollapsed(ctx)
	if err != nil {
		return false, err
	}
	if err := p.kv.Set(ctx, storage.KeySidebarCollapsed, strconv.FormatBool(!collapsed)); err != nil {
		return false, fmt.Errorf("save sidebar state failed: %w", err)
	}
	return !collapsed, nil
}
