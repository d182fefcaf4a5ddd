package httphandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/bnuredini/homehub/internal/calendar"
	"github.com/bnuredini/homehub/internal/services/files"
	"github.com/bnuredini/homehub/internal/services/network"
	"github.com/bnuredini/homehub/internal/services/reminders"
	"github.com/bnuredini/homehub/internal/services/settings"
	"github.com/bnuredini/homehub/internal/services/weather"
	"github.com/bnuredini/homehub/internal/templates"
)

var errBadRequest = errors.New("bad request")

// parseView reads a 0-based month and a year. Anything missing or out of range falls back to
// the month of fallback.
func parseView(rawMonth, rawYear string, fallback time.Time) calendar.View {
	month, err := strconv.Atoi(rawMonth)
	if err != nil || month < 0 || month > 11 {
		slog.Debug("failed to parse month", "rawMonth", rawMonth, "err", err)
		return calendar.NewView(fallback)
	}

	year, err := strconv.Atoi(rawYear)
	if err != nil {
		slog.Debug("failed to parse year", "rawYear", rawYear, "err", err)
		return calendar.NewView(fallback)
	}

	return calendar.View{Month: month, Year: year}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, files.ErrInvalidName),
		errors.Is(err, files.ErrIsDirectory),
		errors.Is(err, settings.ErrInvalidCity),
		errors.Is(err, settings.ErrInvalidTheme),
		errors.Is(err, weather.ErrCityRequired),
		errors.Is(err, weather.ErrQueryTooShort),
		errors.Is(err, reminders.ErrInvalidTitle),
		errors.Is(err, calendar.ErrInvalidRule):
		return http.StatusBadRequest
	case errors.Is(err, files.ErrOutsideShareDir),
		errors.Is(err, files.ErrRootProtected):
		return http.StatusForbidden
	case errors.Is(err, files.ErrNotFound),
		errors.Is(err, reminders.ErrNotFound),
		errors.Is(err, network.ErrDeviceNotFound),
		errors.Is(err, weather.ErrCityNotFound):
		return http.StatusNotFound
	case errors.Is(err, files.ErrLinkExpired):
		return http.StatusGone
	case errors.Is(err, weather.ErrNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "err", err)
	}
}

// writeError answers with {"error": "..."}. Internal errors are reported instead of being
// shown to the client.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()

	if status == http.StatusInternalServerError {
		reportError(r, err)
		msg = http.StatusText(status)
	}

	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}

	return nil
}

func reportError(r *http.Request, err error) {
	log.Printf("%s\n%s\n", err.Error(), debug.Stack())

	if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
		hub.CaptureException(err)
		return
	}
	sentry.CaptureException(err)
}

func (h *Handler) renderInternalServerError(w http.ResponseWriter, r *http.Request, err error) {
	reportError(r, err)

	w.WriteHeader(http.StatusInternalServerError)

	tmplData := templates.NewData()
	tmplData.Locale = h.Locale.String()

	err = templates.RenderPage(h.TemplateManager, w, templates.Page500, tmplData)
	if err != nil {
		slog.Error("rendering failed", "err", err)
	}
}
