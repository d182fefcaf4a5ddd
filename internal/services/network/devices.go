package network

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrDeviceNotFound = errors.New("device not found")

const (
	StatusActive   = "active"
	StatusInactive = "inactive"

	unknownDeviceType = "unknown"
)

type Device struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	MACAddress string    `json:"mac_address"`
	IPAddress  string    `json:"ip_address"`
	DeviceType string    `json:"device_type"`
	Status     string    `json:"status"`
	LastSeen   time.Time `json:"last_seen"`
}

type DeviceStore struct {
	DB *sql.DB
}

func NewDeviceStore(db *sql.DB) *DeviceStore {
	return &DeviceStore{DB: db}
}

func (s *DeviceStore) List(ctx context.Context) ([]Device, error) {
	result := []Device{}

	stmt := `
		SELECT id, name, mac_address, ip_address, device_type, last_seen
		FROM device
		ORDER BY id
	`
	rows, err := s.DB.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d Device
		var lastSeen int64

		err := rows.Scan(&d.ID, &d.Name, &d.MACAddress, &d.IPAddress, &d.DeviceType, &lastSeen)
		if err != nil {
			return nil, fmt.Errorf("scanning device: %w", err)
		}
		d.LastSeen = time.Unix(lastSeen, 0)
		d.Status = StatusInactive

		result = append(result, d)
	}

	return result, rows.Err()
}

// Touch records that the given entries were seen at seenAt. Devices the store doesn't know yet
// are added without a name.
func (s *DeviceStore) Touch(ctx context.Context, entries []ARPEntry, seenAt time.Time) error {
	entries = uniqueByMAC(entries)
	if len(entries) == 0 {
		return nil
	}

	values := make([]string, 0, len(entries))
	args := make([]any, 0, len(entries)*3)

	for i, e := range entries {
		values = append(
			values,
			fmt.Sprintf("('', $%d, $%d, $%d)", i*3+1, i*3+2, i*3+3),
		)

		args = append(args, e.MAC, e.IP, seenAt.Unix())
	}

	stmt := fmt.Sprintf(`
		INSERT INTO device (name, mac_address, ip_address, last_seen) VALUES %v
		ON CONFLICT (mac_address) DO UPDATE SET
			ip_address = excluded.ip_address,
			last_seen = excluded.last_seen
	`, strings.Join(values, ","))

	if _, err := s.DB.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("saving seen devices: %w", err)
	}

	return nil
}

// uniqueByMAC keeps the last entry per MAC. Postgres refuses to upsert the same row twice in
// one statement.
func uniqueByMAC(entries []ARPEntry) []ARPEntry {
	index := make(map[string]int, len(entries))
	result := make([]ARPEntry, 0, len(entries))

	for _, e := range entries {
		if i, ok := index[e.MAC]; ok {
			result[i] = e
			continue
		}
		index[e.MAC] = len(result)
		result = append(result, e)
	}

	return result
}

// Rename sets the display name and type of a device. An empty deviceType leaves it unchanged.
func (s *DeviceStore) Rename(ctx context.Context, mac, name, deviceType string) error {
	stmt := `
		UPDATE device
		SET name = $1, device_type = COALESCE(NULLIF($2, ''), device_type)
		WHERE mac_address = $3
	`
	res, err := s.DB.ExecContext(ctx, stmt, strings.TrimSpace(name), deviceType, strings.ToUpper(mac))
	if err != nil {
		return fmt.Errorf("renaming device: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDeviceNotFound
	}

	return nil
}

// MergeDevices lists the devices currently present in the ARP table, named after the matching
// stored device when there is one.
func MergeDevices(entries []ARPEntry, known []Device) []Device {
	byMAC := make(map[string]Device, len(known))
	for _, d := range known {
		byMAC[d.MACAddress] = d
	}

	result := make([]Device, 0, len(entries))
	for _, e := range entries {
		fallbackName := fmt.Sprintf("Device-%d", len(result)+1)

		device := Device{
			ID:         int64(len(result) + 1),
			Name:       fallbackName,
			MACAddress: e.MAC,
			IPAddress:  e.IP,
			DeviceType: unknownDeviceType,
			Status:     StatusActive,
		}

		if stored, ok := byMAC[e.MAC]; ok {
			device.ID = stored.ID
			device.LastSeen = stored.LastSeen
			if stored.Name != "" {
				device.Name = stored.Name
			}
			if stored.DeviceType != "" {
				device.DeviceType = stored.DeviceType
			}
		}

		result = append(result, device)
	}

	return result
}
