package files

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnuredini/homehub/internal/database"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := database.Open(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db, database.DriverSQLite))

	svc, err := NewService(filepath.Join(t.TempDir(), "HomeHubShared"), db, 7*24*time.Hour)
	require.NoError(t, err)

	return svc
}

func countRows(t *testing.T, db *sql.DB) int {
	t.Helper()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM shared_file`).Scan(&n))
	return n
}

func TestSecureFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"My cool movie.mov", "My_cool_movie.mov"},
		{"../../../etc/passwd", "etc_passwd"},
		{`C:\Windows\system32.dll`, "C_Windows_system32.dll"},
		{"zdjęcie z wakacji.jpg", "zdjecie_z_wakacji.jpg"},
		{".bashrc", "bashrc"},
		{"ą&ę", "ae"},
		{"...", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SecureFilename(tt.input), "input=%q", tt.input)
	}
}

func TestResolve(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		input   string
		want    string
		wantErr error
	}{
		{input: "", want: svc.Root},
		{input: "/", want: svc.Root},
		{input: "/photos/cat.jpg", want: filepath.Join(svc.Root, "photos", "cat.jpg")},
		{input: "photos", want: filepath.Join(svc.Root, "photos")},
		{input: filepath.Join(svc.Root, "docs"), want: filepath.Join(svc.Root, "docs")},
		{input: "/photos/../docs", want: filepath.Join(svc.Root, "docs")},
		{input: "../outside", wantErr: ErrOutsideShareDir},
		{input: "/photos/../../outside", wantErr: ErrOutsideShareDir},
	}

	for _, tt := range tests {
		got, err := svc.resolve(tt.input)
		if tt.wantErr != nil {
			assert.ErrorIs(t, err, tt.wantErr, "input=%q", tt.input)
			continue
		}
		require.NoError(t, err, "input=%q", tt.input)
		assert.Equal(t, tt.want, got, "input=%q", tt.input)
	}
}

func TestResolveSymlinkEscape(t *testing.T) {
	svc := newTestService(t)
	outside := t.TempDir()

	require.NoError(t, os.Symlink(outside, filepath.Join(svc.Root, "escape")))

	_, err := svc.resolve("/escape")
	assert.ErrorIs(t, err, ErrOutsideShareDir)
}

func TestList(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, os.WriteFile(filepath.Join(svc.Root, "b.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(svc.Root, "a.txt"), []byte("hi"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(svc.Root, "zeta"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(svc.Root, "alpha"), 0o755))

	entries, err := svc.List("/")
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"alpha", "zeta", "a.txt", "b.txt"}, names)

	assert.True(t, entries[0].IsDir)
	assert.Zero(t, entries[0].Size)
	assert.Equal(t, "/alpha", entries[0].Path)
	assert.Equal(t, int64(5), entries[3].Size)
	assert.Equal(t, "/b.txt", entries[3].Path)

	_, err = svc.List("/missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.List("../")
	assert.ErrorIs(t, err, ErrOutsideShareDir)
}

func TestUpload(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	name, err := svc.Upload(ctx, "/", "raport roczny.pdf", strings.NewReader("v1"))
	require.NoError(t, err)
	assert.Equal(t, "raport_roczny.pdf", name)

	name, err = svc.Upload(ctx, "", "raport roczny.pdf", strings.NewReader("v2"))
	require.NoError(t, err)
	assert.Equal(t, "raport_roczny_1.pdf", name)

	name, err = svc.Upload(ctx, "/", "raport roczny.pdf", strings.NewReader("v3"))
	require.NoError(t, err)
	assert.Equal(t, "raport_roczny_2.pdf", name)

	content, err := os.ReadFile(filepath.Join(svc.Root, "raport_roczny.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "v1", string(content))

	assert.Equal(t, 3, countRows(t, svc.DB))

	_, err = svc.Upload(ctx, "/", "...", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = svc.Upload(ctx, "/nope", "a.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateFolder(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	name, err := svc.CreateFolder(ctx, "/", "Zdjęcia 2024")
	require.NoError(t, err)
	assert.Equal(t, "Zdjecia_2024", name)

	name, err = svc.CreateFolder(ctx, "/", "Zdjęcia 2024")
	require.NoError(t, err)
	assert.Equal(t, "Zdjecia_2024_1", name)

	name, err = svc.CreateFolder(ctx, "/Zdjecia_2024", "lato")
	require.NoError(t, err)
	assert.Equal(t, "lato", name)
	assert.DirExists(t, filepath.Join(svc.Root, "Zdjecia_2024", "lato"))

	_, err = svc.CreateFolder(ctx, "/", "")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.CreateFolder(ctx, "/", "docs")
	require.NoError(t, err)
	_, err = svc.Upload(ctx, "/docs", "a.txt", strings.NewReader("a"))
	require.NoError(t, err)
	_, err = svc.Upload(ctx, "/", "keep.txt", strings.NewReader("k"))
	require.NoError(t, err)
	require.Equal(t, 3, countRows(t, svc.DB))

	require.NoError(t, svc.Delete(ctx, "/docs"))
	assert.NoDirExists(t, filepath.Join(svc.Root, "docs"))
	assert.Equal(t, 1, countRows(t, svc.DB))

	assert.ErrorIs(t, svc.Delete(ctx, "/docs"), ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "/"), ErrRootProtected)
	assert.ErrorIs(t, svc.Delete(ctx, "../x"), ErrOutsideShareDir)
	assert.FileExists(t, filepath.Join(svc.Root, "keep.txt"))
}

func TestOpen(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, os.WriteFile(filepath.Join(svc.Root, "a.txt"), []byte("a"), 0o644))

	got, err := svc.Open("/a.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(svc.Root, "a.txt"), got)

	_, err = svc.Open("/")
	assert.ErrorIs(t, err, ErrIsDirectory)

	_, err = svc.Open("/b.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParent(t *testing.T) {
	assert.Equal(t, "/", Parent("/"))
	assert.Equal(t, "/", Parent("/photos"))
	assert.Equal(t, "/photos", Parent("/photos/2024"))
	assert.Equal(t, "/photos", Parent("photos/2024/"))
}
