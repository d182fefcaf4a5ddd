package network

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

type ioCounters struct {
	BytesRecv uint64
	BytesSent uint64
}

// parseNetDev sums the byte counters of every non-loopback interface in /proc/net/dev.
func parseNetDev(r io.Reader) (ioCounters, error) {
	var result ioCounters

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		iface, stats, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			// Header lines.
			continue
		}
		if strings.TrimSpace(iface) == "lo" {
			continue
		}

		fields := strings.Fields(stats)
		if len(fields) < 9 {
			return ioCounters{}, fmt.Errorf("unexpected /proc/net/dev line for %s", strings.TrimSpace(iface))
		}

		recv, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			return ioCounters{}, fmt.Errorf("parsing received bytes: %w", err)
		}
		sent, err := strconv.ParseUint(fields[8], 10, 64)
		if err != nil {
			return ioCounters{}, fmt.Errorf("parsing sent bytes: %w", err)
		}

		result.BytesRecv += recv
		result.BytesSent += sent
	}

	return result, scanner.Err()
}

// megabits turns a byte counter into the Mbit figure shown on the dashboard.
func megabits(bytes uint64) float64 {
	return math.Round(float64(bytes)/1024/1024*8*10) / 10
}

// parseUptime reads /proc/uptime and formats it as "N days, M hours".
func parseUptime(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", fmt.Errorf("empty uptime")
	}

	secs, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return "", fmt.Errorf("parsing uptime: %w", err)
	}

	days := int(secs) / 86400
	hours := (int(secs) % 86400) / 3600

	return fmt.Sprintf("%d days, %d hours", days, hours), nil
}

// parseResolvConf returns the first nameserver of a resolv.conf.
func parseResolvConf(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) >= 2 && fields[0] == "nameserver" {
			return fields[1], nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}

	return "", fmt.Errorf("no nameserver found")
}
