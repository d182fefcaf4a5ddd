package files

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateShareLink(t *testing.T) {
	hex16 := regexp.MustCompile(`^[0-9a-f]{16}$`)

	seen := make(map[string]bool)
	for range 100 {
		link := GenerateShareLink()
		assert.Regexp(t, hex16, link)
		assert.False(t, seen[link], "duplicate link %s", link)
		seen[link] = true
	}
}

func TestShareAndResolve(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	require.NoError(t, os.WriteFile(filepath.Join(svc.Root, "film.mp4"), []byte("frames"), 0o644))

	link, err := svc.Share(ctx, "/film.mp4")
	require.NoError(t, err)
	assert.Len(t, link.Link, 16)
	assert.Equal(t, now.Add(7*24*time.Hour), link.Expiration)

	got, err := svc.Resolve(ctx, link.Link)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(svc.Root, "film.mp4"), got)

	_, err = svc.Resolve(ctx, link.Link)
	require.NoError(t, err)

	var accessCount int
	var lastAccessed int64
	err = svc.DB.QueryRow(
		`SELECT access_count, last_accessed FROM shared_file WHERE shared_link = $1`, link.Link,
	).Scan(&accessCount, &lastAccessed)
	require.NoError(t, err)
	assert.Equal(t, 2, accessCount)
	assert.Equal(t, now.Unix(), lastAccessed)

	t.Run("expired", func(t *testing.T) {
		svc.now = func() time.Time { return now.Add(7 * 24 * time.Hour) }
		_, err := svc.Resolve(ctx, link.Link)
		assert.ErrorIs(t, err, ErrLinkExpired)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := svc.Resolve(ctx, "0000000000000000")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestShareErrors(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.Share(ctx, "/missing.txt")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Share(ctx, "/")
	assert.ErrorIs(t, err, ErrIsDirectory)

	_, err = svc.Share(ctx, "../../etc/passwd")
	assert.ErrorIs(t, err, ErrOutsideShareDir)
}

func TestResolveDeletedFile(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	require.NoError(t, os.WriteFile(filepath.Join(svc.Root, "gone.txt"), []byte("x"), 0o644))

	link, err := svc.Share(ctx, "/gone.txt")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "/gone.txt"))

	_, err = svc.Resolve(ctx, link.Link)
	assert.ErrorIs(t, err, ErrNotFound)
}
