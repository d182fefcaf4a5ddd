package templates

import (
	"fmt"
	"html/template"
	"math"
	"strconv"
	"strings"
	"time"
)

var tmplFuncs = template.FuncMap{
	"now":         time.Now,
	"formatBytes": formatBytes,
	"simpleTime": func(t time.Time) string {
		if t.IsZero() {
			return "Not set"
		}

		return t.Format("2006-01-02 15:04")
	},
	"join":         strings.Join,
	"qualityClass": qualityClass,
}

var byteUnits = []string{"B", "KB", "MB", "GB", "TB"}

// formatBytes renders a size with 1024-based units and at most two decimals, e.g. "1.5 MB".
func formatBytes(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}

	value := float64(bytes)
	i := 0
	for value >= 1024 && i < len(byteUnits)-1 {
		value /= 1024
		i++
	}

	return fmt.Sprintf("%s %s", strconv.FormatFloat(math.Round(value*100)/100, 'f', -1, 64), byteUnits[i])
}

// qualityClass grades a connection quality value against its warning and error thresholds.
func qualityClass(value any, warn, bad float64) string {
	var v float64
	switch n := value.(type) {
	case int:
		v = float64(n)
	case int64:
		v = float64(n)
	case float64:
		v = n
	}

	switch {
	case v < warn:
		return "quality-good"
	case v < bad:
		return "quality-warn"
	default:
		return "quality-bad"
	}
}
