package httphandler

import (
	"context"
	"log/slog"
	"net/http"
	"path"
	"time"

	"github.com/bnuredini/homehub/internal/calendar"
	"github.com/bnuredini/homehub/internal/services/files"
	"github.com/bnuredini/homehub/internal/services/network"
	"github.com/bnuredini/homehub/internal/services/reminders"
	"github.com/bnuredini/homehub/internal/services/settings"
	"github.com/bnuredini/homehub/internal/services/weather"
	"github.com/bnuredini/homehub/internal/templates"
)

type WeatherService interface {
	Current(ctx context.Context, city string) (*weather.Report, error)
	SearchCities(ctx context.Context, q string) ([]weather.City, error)
}

type NetworkService interface {
	Status(ctx context.Context) network.Status
	Devices(ctx context.Context) ([]network.Device, error)
	RenameDevice(ctx context.Context, mac, name, deviceType string) error
	Quality(ctx context.Context) network.Quality
}

type Handler struct {
	TemplateManager *templates.Manager
	Locale          calendar.Locale
	Settings        *settings.Store
	Reminders       *reminders.Store
	Files           *files.Service
	Weather         WeatherService
	Network         NetworkService

	now func() time.Time
}

type Services struct {
	Settings  *settings.Store
	Reminders *reminders.Store
	Files     *files.Service
	Weather   WeatherService
	Network   NetworkService
}

func New(templateManager *templates.Manager, loc calendar.Locale, services Services) *Handler {
	return &Handler{
		TemplateManager: templateManager,
		Locale:          loc,
		Settings:        services.Settings,
		Reminders:       services.Reminders,
		Files:           services.Files,
		Weather:         services.Weather,
		Network:         services.Network,
		now:             time.Now,
	}
}

func (h *Handler) HomeGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := h.now()

	tmplData, err := h.newData(ctx)
	if err != nil {
		h.renderInternalServerError(w, r, err)
		return
	}

	tmplData.DateLabel = h.Locale.LongDate(now)
	tmplData.CalendarData = h.calendarData(ctx, calendar.NewView(now), now)
	h.loadWeather(ctx, tmplData)

	err = templates.RenderPage(h.TemplateManager, w, templates.PageHome, tmplData)
	if err != nil {
		h.renderInternalServerError(w, r, err)
	}
}

// CalendarGet renders the calendar partial for the month in the query, moved one month
// back or forth when nav is given. Without a valid month and year it starts from today.
func (h *Handler) CalendarGet(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	query := r.URL.Query()

	view := parseView(query.Get("month"), query.Get("year"), now)
	if direction, ok := calendar.ParseDirection(query.Get("nav")); ok {
		view = view.Navigate(direction)
	}

	tmplData := h.calendarData(r.Context(), view, now)
	err := templates.RenderPartial(h.TemplateManager, w, templates.PartialCalendar, tmplData)
	if err != nil {
		h.renderInternalServerError(w, r, err)
	}
}

func (h *Handler) WeatherPartialGet(w http.ResponseWriter, r *http.Request) {
	tmplData, err := h.newData(r.Context())
	if err != nil {
		h.renderInternalServerError(w, r, err)
		return
	}
	h.loadWeather(r.Context(), tmplData)

	err = templates.RenderPartial(h.TemplateManager, w, templates.PartialWeather, tmplData)
	if err != nil {
		h.renderInternalServerError(w, r, err)
	}
}

func (h *Handler) NetworkPartialGet(w http.ResponseWriter, r *http.Request) {
	status := h.Network.Status(r.Context())

	tmplData := templates.NewData()
	tmplData.Network = &status

	err := templates.RenderPartial(h.TemplateManager, w, templates.PartialNetwork, tmplData)
	if err != nil {
		h.renderInternalServerError(w, r, err)
	}
}

func (h *Handler) NetworkGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tmplData, err := h.newData(ctx)
	if err != nil {
		h.renderInternalServerError(w, r, err)
		return
	}

	status := h.Network.Status(ctx)
	quality := h.Network.Quality(ctx)
	tmplData.Network = &status
	tmplData.Quality = &quality

	tmplData.Devices, err = h.Network.Devices(ctx)
	if err != nil {
		slog.Warn("serving network page: failed to list devices", "err", err)
		tmplData.DevicesError = "Couldn't scan the network for devices"
	}

	err = templates.RenderPage(h.TemplateManager, w, templates.PageNetwork, tmplData)
	if err != nil {
		h.renderInternalServerError(w, r, err)
	}
}

func (h *Handler) FilesGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := r.URL.Query().Get("path")

	entries, err := h.Files.List(p)
	if err != nil {
		if statusFor(err) >= http.StatusInternalServerError {
			h.renderInternalServerError(w, r, err)
		} else {
			slog.Debug("serving files page", "path", p, "err", err)
			h.NotFound(w, r)
		}
		return
	}

	tmplData, err := h.newData(ctx)
	if err != nil {
		h.renderInternalServerError(w, r, err)
		return
	}
	tmplData.Files = entries
	tmplData.CurrentPath = path.Clean("/" + p)
	tmplData.ParentPath = files.Parent(p)

	err = templates.RenderPage(h.TemplateManager, w, templates.PageFiles, tmplData)
	if err != nil {
		h.renderInternalServerError(w, r, err)
	}
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)

	tmplData := templates.NewData()
	tmplData.Locale = h.Locale.String()

	err := templates.RenderPage(h.TemplateManager, w, templates.Page404, tmplData)
	if err != nil {
		slog.Error("rendering failed", "err", err)
	}
}

func (h *Handler) newData(ctx context.Context) (*templates.Data, error) {
	s, err := h.Settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	tmplData := templates.NewData()
	tmplData.Locale = h.Locale.String()
	tmplData.Settings = s

	return tmplData, nil
}

func (h *Handler) loadWeather(ctx context.Context, tmplData *templates.Data) {
	report, err := h.Weather.Current(ctx, tmplData.Settings.DefaultCity)
	if err != nil {
		slog.Warn("failed to load weather", "city", tmplData.Settings.DefaultCity, "err", err)
		tmplData.WeatherError = err.Error()
		return
	}

	tmplData.Weather = report
}

// calendarData builds the calendar for view. Reminders are optional decoration, so a failure
// to load them only gets logged.
func (h *Handler) calendarData(ctx context.Context, view calendar.View, now time.Time) *templates.CalendarData {
	byDay, err := h.Reminders.ByDay(ctx, calendar.Month{Year: view.Year, Month: view.Month})
	if err != nil {
		slog.Error("failed to load reminders", "err", err)
	}

	return templates.NewCalendarData(view, now, h.Locale, byDay)
}
