package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidCity  = errors.New("city must not be empty")
	ErrInvalidTheme = errors.New("theme must be either light or dark")
)

const (
	keyDefaultCity = "default_city"
	keyTheme       = "theme"

	ThemeLight = "light"
	ThemeDark  = "dark"
)

type Settings struct {
	DefaultCity string `json:"default_city"`
	Theme       string `json:"theme"`
}

// Update carries a partial change; nil fields are left as they are.
type Update struct {
	DefaultCity *string `json:"default_city"`
	Theme       *string `json:"theme"`
}

type Store struct {
	DB       *sql.DB
	Defaults Settings
}

func NewStore(db *sql.DB, defaultCity string) *Store {
	return &Store{
		DB:       db,
		Defaults: Settings{DefaultCity: defaultCity, Theme: ThemeLight},
	}
}

func (s *Store) Get(ctx context.Context) (Settings, error) {
	result := s.Defaults

	rows, err := s.DB.QueryContext(ctx, `SELECT name, value FROM user_setting`)
	if err != nil {
		return Settings{}, fmt.Errorf("querying settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return Settings{}, fmt.Errorf("scanning setting: %w", err)
		}

		switch name {
		case keyDefaultCity:
			result.DefaultCity = value
		case keyTheme:
			result.Theme = value
		}
	}

	return result, rows.Err()
}

func (s *Store) Apply(ctx context.Context, u Update) (Settings, error) {
	values := make(map[string]string, 2)

	if u.DefaultCity != nil {
		city := strings.TrimSpace(*u.DefaultCity)
		if city == "" {
			return Settings{}, ErrInvalidCity
		}
		values[keyDefaultCity] = city
	}

	if u.Theme != nil {
		theme := strings.ToLower(strings.TrimSpace(*u.Theme))
		if theme != ThemeLight && theme != ThemeDark {
			return Settings{}, ErrInvalidTheme
		}
		values[keyTheme] = theme
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return Settings{}, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt := `
		INSERT INTO user_setting (name, value) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET value = excluded.value
	`
	for name, value := range values {
		if _, err := tx.ExecContext(ctx, stmt, name, value); err != nil {
			return Settings{}, fmt.Errorf("saving setting %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Settings{}, fmt.Errorf("committing settings: %w", err)
	}

	return s.Get(ctx)
}
