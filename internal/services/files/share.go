package files

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const linkLength = 16

type ShareLink struct {
	Link       string    `json:"share_link"`
	Expiration time.Time `json:"expiration"`
}

// GenerateShareLink returns a random 16 character hex token.
func GenerateShareLink() string {
	sum := sha256.Sum256([]byte(uuid.NewString()))

	return hex.EncodeToString(sum[:])[:linkLength]
}

// Share creates a link to p that stays valid for the service's LinkTTL.
func (s *Service) Share(ctx context.Context, p string) (ShareLink, error) {
	abs, err := s.Open(p)
	if err != nil {
		return ShareLink{}, err
	}

	now := s.now()
	link := ShareLink{
		Link:       GenerateShareLink(),
		Expiration: now.Add(s.LinkTTL),
	}

	stmt := `
		INSERT INTO shared_file (file_path, filename, shared_link, link_expiration, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = s.DB.ExecContext(ctx, stmt, abs, filepath.Base(abs), link.Link, link.Expiration.Unix(), now.Unix())
	if err != nil {
		return ShareLink{}, fmt.Errorf("saving share link: %w", err)
	}

	return link, nil
}

// Resolve looks a share link up and returns the absolute path of the shared file, counting the
// access.
func (s *Service) Resolve(ctx context.Context, link string) (string, error) {
	var abs string
	var expiration int64

	stmt := `
		SELECT file_path, link_expiration
		FROM shared_file
		WHERE shared_link = $1
	`
	err := s.DB.QueryRowContext(ctx, stmt, link).Scan(&abs, &expiration)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("looking up share link: %w", err)
	}

	now := s.now()
	if !now.Before(time.Unix(expiration, 0)) {
		return "", ErrLinkExpired
	}

	// The file may have been removed or moved out of reach since it was shared.
	if _, err := s.Open(abs); err != nil {
		return "", err
	}

	stmt = `
		UPDATE shared_file
		SET access_count = access_count + 1, last_accessed = $1
		WHERE shared_link = $2
	`
	if _, err := s.DB.ExecContext(ctx, stmt, now.Unix(), link); err != nil {
		return "", fmt.Errorf("recording share link access: %w", err)
	}

	return abs, nil
}
