package network

import (
	"context"
	"log/slog"
	"time"
)

// Scanner periodically reads the ARP table and records which devices were seen.
type Scanner struct {
	ARP      ARPScanner
	Store    *DeviceStore
	Interval time.Duration
}

// Run scans once right away and then on every tick until ctx is done.
func (s *Scanner) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.scan(ctx)

	for {
		select {
		case <-ticker.C:
			s.scan(ctx)
		case <-ctx.Done():
			slog.Info("device scanner stopped")
			return
		}
	}
}

func (s *Scanner) scan(ctx context.Context) {
	entries, err := s.ARP.Scan(ctx)
	if err != nil {
		slog.Error("failed to scan the ARP table", "err", err)
		return
	}

	if err := s.Store.Touch(ctx, entries, time.Now()); err != nil {
		slog.Error("failed to save seen devices", "err", err)
		return
	}

	slog.Debug("devices scanned", "count", len(entries))
}
