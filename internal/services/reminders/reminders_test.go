package reminders

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnuredini/homehub/internal/calendar"
	"github.com/bnuredini/homehub/internal/database"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db, database.DriverSQLite))

	return db
}

func TestCreateListDelete(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newTestDB(t))

	created, err := store.Create(ctx, calendar.Reminder{
		Title: " trash ",
		Rule:  "every monday",
		Start: time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "trash", created.Title)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), created.Start)

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, created, all[0])

	require.NoError(t, store.Delete(ctx, created.ID))
	assert.ErrorIs(t, store.Delete(ctx, created.ID), ErrNotFound)

	all, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newTestDB(t))

	_, err := store.Create(ctx, calendar.Reminder{Title: "  ", Start: time.Now()})
	assert.ErrorIs(t, err, ErrInvalidTitle)

	_, err = store.Create(ctx, calendar.Reminder{Title: "x", Rule: "now and then", Start: time.Now()})
	assert.ErrorContains(t, err, "unrecognized recurrence")
}

func TestByDay(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newTestDB(t))

	_, err := store.Create(ctx, calendar.Reminder{
		Title: "rent",
		Rule:  "FREQ=MONTHLY;BYMONTHDAY=10",
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	byDay, err := store.ByDay(ctx, calendar.Month{Year: 2024, Month: 1})
	require.NoError(t, err)
	assert.Equal(t, map[int][]string{10: {"rent"}}, byDay)
}
