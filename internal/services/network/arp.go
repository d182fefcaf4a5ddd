package network

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

type ARPEntry struct {
	IP  string
	MAC string
}

type ARPScanner interface {
	Scan(ctx context.Context) ([]ARPEntry, error)
}

var (
	arpIPRegex  = regexp.MustCompile(`\(([0-9.]+)\)`)
	arpMACRegex = regexp.MustCompile(`([0-9a-fA-F]{2}[:-]){5}[0-9a-fA-F]{2}`)
)

// ParseARP extracts IP/MAC pairs from `arp -a` output. Lines without both (incomplete
// entries, headers) are skipped.
func ParseARP(output string) []ARPEntry {
	result := []ARPEntry{}

	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		ipMatch := arpIPRegex.FindStringSubmatch(line)
		mac := arpMACRegex.FindString(line)
		if ipMatch == nil || mac == "" {
			continue
		}

		result = append(result, ARPEntry{
			IP:  ipMatch[1],
			MAC: strings.ToUpper(strings.ReplaceAll(mac, "-", ":")),
		})
	}

	return result
}

// CommandScanner runs `arp -a`.
type CommandScanner struct {
	Command string
}

func (s CommandScanner) Scan(ctx context.Context) ([]ARPEntry, error) {
	command := s.Command
	if command == "" {
		command = "arp"
	}

	out, err := exec.CommandContext(ctx, command, "-a").Output()
	if err != nil {
		return nil, fmt.Errorf("running %s -a: %w", command, err)
	}

	return ParseARP(string(out)), nil
}
