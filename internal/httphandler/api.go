package httphandler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/bnuredini/homehub/internal/calendar"
	"github.com/bnuredini/homehub/internal/services/settings"
)

// WeatherGet answers with the weather in ?city=, or in the saved default city.
func (h *Handler) WeatherGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" {
		s, err := h.Settings.Get(ctx)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		city = s.DefaultCity
	}

	report, err := h.Weather.Current(ctx, city)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) CitiesSearchGet(w http.ResponseWriter, r *http.Request) {
	cities, err := h.Weather.SearchCities(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, cities)
}

func (h *Handler) SettingsGet(w http.ResponseWriter, r *http.Request) {
	s, err := h.Settings.Get(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) SettingsPost(w http.ResponseWriter, r *http.Request) {
	var update settings.Update
	if err := decodeJSON(r, &update); err != nil {
		h.writeError(w, r, err)
		return
	}

	s, err := h.Settings.Apply(r.Context(), update)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) NetworkStatusGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Network.Status(r.Context()))
}

func (h *Handler) DevicesGet(w http.ResponseWriter, r *http.Request) {
	devices, err := h.Network.Devices(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, devices)
}

func (h *Handler) DevicePut(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name       string `json:"name"`
		DeviceType string `json:"device_type"`
	}
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		h.writeError(w, r, fmt.Errorf("%w: device name is required", errBadRequest))
		return
	}

	mac := mux.Vars(r)["mac"]
	if err := h.Network.RenameDevice(r.Context(), mac, body.Name, body.DeviceType); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Device updated successfully"})
}

func (h *Handler) NetworkQualityGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Network.Quality(r.Context()))
}

func (h *Handler) RemindersGet(w http.ResponseWriter, r *http.Request) {
	all, err := h.Reminders.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, all)
}

// RemindersPost accepts {title, rule, start} where start is either a plain date (2006-01-02)
// or an RFC 3339 timestamp. A missing start means today.
func (h *Handler) RemindersPost(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title string `json:"title"`
		Rule  string `json:"rule"`
		Start string `json:"start"`
	}
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}

	start, err := parseStart(body.Start, h.now())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	created, err := h.Reminders.Create(r.Context(), calendar.Reminder{
		Title: body.Title,
		Rule:  body.Rule,
		Start: start,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) ReminderDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("%w: invalid reminder id", errBadRequest))
		return
	}

	if err := h.Reminders.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseStart(raw string, fallback time.Time) (time.Time, error) {
	if raw == "" {
		return fallback, nil
	}

	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: start must be a date (YYYY-MM-DD)", errBadRequest)
	}

	return t, nil
}
