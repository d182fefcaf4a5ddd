package reminders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bnuredini/homehub/internal/calendar"
)

var (
	ErrNotFound     = errors.New("reminder not found")
	ErrInvalidTitle = errors.New("reminder title must not be empty")
)

type Store struct {
	DB *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) List(ctx context.Context) ([]calendar.Reminder, error) {
	result := []calendar.Reminder{}

	stmt := `
		SELECT id, title, rule, start_date
		FROM reminder
		ORDER BY start_date, id
	`
	rows, err := s.DB.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("querying reminders: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r calendar.Reminder
		var start int64

		if err := rows.Scan(&r.ID, &r.Title, &r.Rule, &start); err != nil {
			return nil, fmt.Errorf("scanning reminder: %w", err)
		}
		r.Start = time.Unix(start, 0).UTC()

		result = append(result, r)
	}

	return result, rows.Err()
}

// Create validates the reminder's rule before storing it and returns the stored reminder.
func (s *Store) Create(ctx context.Context, r calendar.Reminder) (calendar.Reminder, error) {
	r.Title = strings.TrimSpace(r.Title)
	r.Rule = strings.TrimSpace(r.Rule)

	if r.Title == "" {
		return calendar.Reminder{}, ErrInvalidTitle
	}
	if r.Rule != "" {
		if _, err := calendar.ParseRule(r.Rule, r.Start); err != nil {
			return calendar.Reminder{}, err
		}
	}

	r.Start = time.Date(r.Start.Year(), r.Start.Month(), r.Start.Day(), 0, 0, 0, 0, time.UTC)

	stmt := `
		INSERT INTO reminder (title, rule, start_date)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := s.DB.QueryRowContext(ctx, stmt, r.Title, r.Rule, r.Start.Unix()).Scan(&r.ID)
	if err != nil {
		return calendar.Reminder{}, fmt.Errorf("inserting reminder: %w", err)
	}

	return r, nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM reminder WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting reminder: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

// ByDay returns the titles of the reminders occurring in m, keyed by day of month.
func (s *Store) ByDay(ctx context.Context, m calendar.Month) (map[int][]string, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	return calendar.RemindersByDay(all, m), nil
}
