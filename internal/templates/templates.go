package templates

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bnuredini/homehub/internal/services/files"
	"github.com/bnuredini/homehub/internal/services/network"
	"github.com/bnuredini/homehub/internal/services/settings"
	"github.com/bnuredini/homehub/internal/services/weather"
	"github.com/bnuredini/homehub/ui"
)

type PageName string

const (
	baseTemplatePath     = "gohtml/base.gohtml"
	partialsTemplateGlob = "gohtml/partials/*.gohtml"
)

const (
	Page404     PageName = "404"
	Page500     PageName = "500"
	PageHome    PageName = "home"
	PageNetwork PageName = "network"
	PageFiles   PageName = "files"
)

const (
	PartialCalendar = "calendar"
	PartialWeather  = "weather"
	PartialNetwork  = "network-summary"
)

const AppName = "Home Hub"

type Data struct {
	AppName      string
	ActivePage   PageName
	Locale       string
	DateLabel    string
	Settings     settings.Settings
	CalendarData *CalendarData
	Weather      *weather.Report
	WeatherError string
	Network      *network.Status
	Devices      []network.Device
	DevicesError string
	Quality      *network.Quality
	Files        []files.Entry
	CurrentPath  string
	ParentPath   string
}

type Manager struct {
	PageCache        map[string]*template.Template
	PartialsTemplate *template.Template
}

func NewManager() (*Manager, error) {
	return NewManagerFS(ui.Files)
}

// NewManagerFS parses the templates found in fsys, which must follow the layout of ui.Files.
func NewManagerFS(fsys fs.FS) (*Manager, error) {
	pageCache, err := generateCacheFromGlob(
		fsys,
		"gohtml/pages/*.gohtml",
		func(filePath string) []string {
			return []string{baseTemplatePath, partialsTemplateGlob, filePath}
		},
	)
	if err != nil {
		return nil, err
	}

	partialTemplate, err := template.New("base").Funcs(tmplFuncs).ParseFS(fsys, partialsTemplateGlob)
	if err != nil {
		return nil, err
	}

	return &Manager{
		PageCache:        pageCache,
		PartialsTemplate: partialTemplate,
	}, nil
}

func NewData() *Data {
	return &Data{AppName: AppName}
}

// generateCacheFromGlob builds a cache of templates. Every key is derived from
// a template found in globPattern and every associated value is a template set
// that contains that template plus the files returned by buildTemplateBits.
func generateCacheFromGlob(
	fsys fs.FS,
	globPattern string,
	buildTemplateBits func(filePath string) []string,
) (map[string]*template.Template, error) {
	filePaths, err := fs.Glob(fsys, globPattern)
	if err != nil {
		return nil, err
	}

	result := make(map[string]*template.Template, len(filePaths))
	for _, filePath := range filePaths {
		bits := buildTemplateBits(filePath)
		tmpl, err := template.New("base").Funcs(tmplFuncs).ParseFS(fsys, bits...)
		if err != nil {
			return nil, err
		}

		result[cacheKeyFromPath(filePath)] = tmpl
	}

	return result, nil
}

func cacheKeyFromPath(filePath string) string {
	return strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
}

func RenderPage(
	manager *Manager,
	w io.Writer,
	pageName PageName,
	tmplData *Data,
) error {
	tmpl := manager.PageCache[string(pageName)]
	if tmpl == nil {
		tmpl = manager.PageCache[string(Page404)]
	}
	if tmpl == nil {
		return fmt.Errorf("page template %q was not found in cache", pageName)
	}

	tmplData.ActivePage = pageName

	return writeTemplate(w, tmpl, "base", tmplData)
}

func RenderPartial(
	manager *Manager,
	w io.Writer,
	partialName string,
	tmplData any,
) error {
	if manager.PartialsTemplate == nil {
		return fmt.Errorf("partial templates were not initialized")
	}

	if manager.PartialsTemplate.Lookup(partialName) == nil {
		return fmt.Errorf("partial template %q was not found in cache", partialName)
	}

	return writeTemplate(w, manager.PartialsTemplate, partialName, tmplData)
}

// writeTemplate renders into a buffer first so that a failing template doesn't leave a
// half-written response behind.
func writeTemplate(
	w io.Writer,
	tmpl *template.Template,
	templateName string,
	tmplData any,
) error {
	buf := new(bytes.Buffer)
	err := tmpl.ExecuteTemplate(buf, templateName, tmplData)
	if err != nil {
		return err
	}

	_, err = buf.WriteTo(w)

	return err
}
