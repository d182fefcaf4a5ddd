// Package network gathers the home network's status: link counters, connectivity, the ARP
// table and connection quality.
package network

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const Unknown = "unknown"

const (
	StatusOnline  = "ONLINE"
	StatusOffline = "OFFLINE"
)

type Status struct {
	DownloadSpeed    float64 `json:"download_speed"`
	UploadSpeed      float64 `json:"upload_speed"`
	ConnectedDevices int     `json:"connected_devices"`
	Status           string  `json:"status"`
	Uptime           string  `json:"uptime"`
	ExternalIP       string  `json:"external_ip"`
	DNSServer        string  `json:"dns_server"`
}

type Options struct {
	ProcDir          string
	ResolvConf       string
	ExternalIPURL    string
	ConnectivityAddr string
	ProbeTimeout     time.Duration
	QualitySamples   int
}

type Service struct {
	opts  Options
	arp   ARPScanner
	store *DeviceStore
	http  *http.Client
	dial  DialFunc
}

func NewService(opts Options, arp ARPScanner, store *DeviceStore) *Service {
	if opts.ProcDir == "" {
		opts.ProcDir = "/proc"
	}
	if opts.ResolvConf == "" {
		opts.ResolvConf = "/etc/resolv.conf"
	}
	if opts.ProbeTimeout == 0 {
		opts.ProbeTimeout = 3 * time.Second
	}
	if opts.QualitySamples == 0 {
		opts.QualitySamples = 5
	}

	dialer := &net.Dialer{}

	return &Service{
		opts:  opts,
		arp:   arp,
		store: store,
		http:  &http.Client{Timeout: opts.ProbeTimeout},
		dial:  dialer.DialContext,
	}
}

// Status never fails as a whole: a probe that doesn't work leaves its field zero or Unknown.
func (s *Service) Status(ctx context.Context) Status {
	result := Status{
		Status:     StatusOffline,
		Uptime:     Unknown,
		ExternalIP: Unknown,
		DNSServer:  Unknown,
	}

	if counters, err := readFile(filepath.Join(s.opts.ProcDir, "net/dev"), parseNetDev); err != nil {
		slog.Debug("failed to read interface counters", "err", err)
	} else {
		result.DownloadSpeed = megabits(counters.BytesRecv)
		result.UploadSpeed = megabits(counters.BytesSent)
	}

	if s.isConnected(ctx) {
		result.Status = StatusOnline
	}

	if uptime, err := readFile(filepath.Join(s.opts.ProcDir, "uptime"), parseUptime); err != nil {
		slog.Debug("failed to read uptime", "err", err)
	} else {
		result.Uptime = uptime
	}

	if ip, err := s.externalIP(ctx); err != nil {
		slog.Debug("failed to get the external IP", "err", err)
	} else {
		result.ExternalIP = ip
	}

	if dns, err := readFile(s.opts.ResolvConf, parseResolvConf); err != nil {
		slog.Debug("failed to read the DNS server", "err", err)
	} else {
		result.DNSServer = dns
	}

	if entries, err := s.arp.Scan(ctx); err != nil {
		slog.Debug("failed to count connected devices", "err", err)
	} else {
		result.ConnectedDevices = len(entries)
	}

	return result
}

// Devices lists what is currently in the ARP table, named after the stored devices.
func (s *Service) Devices(ctx context.Context) ([]Device, error) {
	known, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("found stored devices", "count", len(known))

	entries, err := s.arp.Scan(ctx)
	if err != nil {
		return nil, err
	}

	devices := MergeDevices(entries, known)
	slog.Info("devices discovered", "count", len(devices))

	return devices, nil
}

func (s *Service) RenameDevice(ctx context.Context, mac, name, deviceType string) error {
	return s.store.Rename(ctx, mac, name, deviceType)
}

func (s *Service) Quality(ctx context.Context) Quality {
	return MeasureQuality(ctx, s.dial, s.opts.ConnectivityAddr, s.opts.QualitySamples, s.opts.ProbeTimeout)
}

func (s *Service) isConnected(ctx context.Context) bool {
	if s.opts.ConnectivityAddr == "" {
		return false
	}

	dialCtx, cancel := context.WithTimeout(ctx, s.opts.ProbeTimeout)
	defer cancel()

	conn, err := s.dial(dialCtx, "tcp", s.opts.ConnectivityAddr)
	if err != nil {
		return false
	}
	conn.Close()

	return true
}

func (s *Service) externalIP(ctx context.Context) (string, error) {
	if s.opts.ExternalIPURL == "" {
		return Unknown, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.opts.ExternalIPURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return "", err
	}

	ip := strings.TrimSpace(string(body))
	if net.ParseIP(ip) == nil {
		return "", &net.ParseError{Type: "IP address", Text: ip}
	}

	return ip, nil
}

func readFile[T any](path string, parse func(io.Reader) (T, error)) (T, error) {
	f, err := os.Open(path)
	if err != nil {
		var zero T
		return zero, err
	}
	defer f.Close()

	return parse(f)
}
