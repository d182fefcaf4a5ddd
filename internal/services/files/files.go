// Package files manages the shared directory: browsing, uploads, folders, deletion and
// time-limited share links.
package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

var (
	ErrOutsideShareDir = errors.New("path is outside of the shared directory")
	ErrNotFound        = errors.New("file not found")
	ErrIsDirectory     = errors.New("path is a directory")
	ErrInvalidName     = errors.New("invalid file name")
	ErrRootProtected   = errors.New("the shared directory itself can't be deleted")
	ErrLinkExpired     = errors.New("share link has expired")
)

type Entry struct {
	Name     string    `json:"name"`
	IsDir    bool      `json:"is_dir"`
	Size     int64     `json:"size"`
	Path     string    `json:"path"`
	Modified time.Time `json:"modified"`
}

type Service struct {
	Root    string
	DB      *sql.DB
	LinkTTL time.Duration

	now func() time.Time
}

// NewService makes sure root exists. Paths handed to and returned by the service are relative
// to root and slash-separated, with "/" being root itself.
func NewService(root string, db *sql.DB, linkTTL time.Duration) (*Service, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving shared directory: %w", err)
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("creating shared directory: %w", err)
	}

	// Compare against the real location so that a symlinked root still works.
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		abs = real
	}

	return &Service{
		Root:    abs,
		DB:      db,
		LinkTTL: linkTTL,
		now:     time.Now,
	}, nil
}

// resolve maps a shared path to an absolute one. Absolute paths that already point inside the
// root are accepted as well.
func (s *Service) resolve(p string) (string, error) {
	if p == "" || p == "/" {
		return s.Root, nil
	}

	native := filepath.FromSlash(p)
	if filepath.IsAbs(native) && within(s.Root, filepath.Clean(native)) {
		native, _ = filepath.Rel(s.Root, filepath.Clean(native))
	}

	abs := filepath.Join(s.Root, native)
	if !within(s.Root, abs) {
		return "", ErrOutsideShareDir
	}

	if real, err := filepath.EvalSymlinks(abs); err == nil && !within(s.Root, real) {
		return "", ErrOutsideShareDir
	}

	return abs, nil
}

func (s *Service) sharedPath(abs string) string {
	rel, err := filepath.Rel(s.Root, abs)
	if err != nil || rel == "." {
		return "/"
	}

	return "/" + filepath.ToSlash(rel)
}

func within(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}

	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Parent returns the shared path of p's parent directory.
func Parent(p string) string {
	return path.Dir(path.Clean("/" + p))
}

// List returns the entries of a directory, directories first, then by name. Entries that can't
// be stat'ed are skipped.
func (s *Service) List(p string) ([]Entry, error) {
	dir, err := s.resolve(p)
	if err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", p, err)
	}

	result := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		info, err := de.Info()
		if err != nil {
			continue
		}

		entry := Entry{
			Name:     de.Name(),
			IsDir:    de.IsDir(),
			Path:     s.sharedPath(filepath.Join(dir, de.Name())),
			Modified: info.ModTime(),
		}
		if !entry.IsDir {
			entry.Size = info.Size()
		}

		result = append(result, entry)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].IsDir != result[j].IsDir {
			return result[i].IsDir
		}
		return result[i].Name < result[j].Name
	})

	return result, nil
}

// Upload stores r under a sanitized version of filename inside dir. Existing files are never
// overwritten; a "_N" suffix is added instead. It returns the stored file name.
func (s *Service) Upload(ctx context.Context, dir, filename string, r io.Reader) (string, error) {
	name := SecureFilename(filename)
	if name == "" {
		return "", ErrInvalidName
	}

	parent, err := s.existingDir(dir)
	if err != nil {
		return "", err
	}

	f, dest, err := createUnique(parent, name)
	if err != nil {
		return "", err
	}

	size, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("writing %s: %w", filepath.Base(dest), err)
	}

	stmt := `
		INSERT INTO shared_file (file_path, filename, file_size, is_directory, created_at)
		VALUES ($1, $2, $3, 0, $4)
	`
	_, err = s.DB.ExecContext(ctx, stmt, dest, filepath.Base(dest), size, s.now().Unix())
	if err != nil {
		return "", fmt.Errorf("recording upload: %w", err)
	}

	return filepath.Base(dest), nil
}

// CreateFolder creates a sanitized folder inside parent, adding a "_N" suffix on collision.
func (s *Service) CreateFolder(ctx context.Context, parent, name string) (string, error) {
	safe := SecureFilename(name)
	if safe == "" {
		return "", ErrInvalidName
	}

	parentDir, err := s.existingDir(parent)
	if err != nil {
		return "", err
	}

	dest := filepath.Join(parentDir, safe)
	for counter := 1; ; counter++ {
		err = os.Mkdir(dest, 0o755)
		if !errors.Is(err, fs.ErrExist) {
			break
		}
		dest = fmt.Sprintf("%s_%d", filepath.Join(parentDir, safe), counter)
	}
	if err != nil {
		return "", fmt.Errorf("creating folder: %w", err)
	}

	stmt := `
		INSERT INTO shared_file (file_path, filename, is_directory, created_at)
		VALUES ($1, $2, 1, $3)
	`
	_, err = s.DB.ExecContext(ctx, stmt, dest, filepath.Base(dest), s.now().Unix())
	if err != nil {
		return "", fmt.Errorf("recording folder: %w", err)
	}

	return filepath.Base(dest), nil
}

// Delete removes a file or a whole directory tree along with its records.
func (s *Service) Delete(ctx context.Context, p string) error {
	abs, err := s.resolve(p)
	if err != nil {
		return err
	}
	if abs == s.Root {
		return ErrRootProtected
	}

	if _, err := os.Lstat(abs); errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}

	if err := os.RemoveAll(abs); err != nil {
		return fmt.Errorf("deleting %s: %w", p, err)
	}

	stmt := `DELETE FROM shared_file WHERE file_path = $1 OR file_path LIKE $2 ESCAPE '\'`
	prefix := escapeLike(abs+string(filepath.Separator)) + "%"
	if _, err := s.DB.ExecContext(ctx, stmt, abs, prefix); err != nil {
		return fmt.Errorf("removing records of %s: %w", p, err)
	}

	return nil
}

// Open returns the absolute path of a regular file for downloading.
func (s *Service) Open(p string) (string, error) {
	abs, err := s.resolve(p)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", ErrIsDirectory
	}

	return abs, nil
}

func (s *Service) existingDir(p string) (string, error) {
	dir, err := s.resolve(p)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", ErrNotFound
	}

	return dir, nil
}

func createUnique(dir, name string) (*os.File, string, error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	dest := filepath.Join(dir, name)
	for counter := 1; ; counter++ {
		f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, dest, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("creating %s: %w", name, err)
		}

		dest = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, counter, ext))
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
