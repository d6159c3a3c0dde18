package handlers

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"sync"
	"time"

	"tokodash/internal/models"
	logx "tokodash/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "layout.html"

// PlaceholderImage is shown for products without an image.
const PlaceholderImage = "https://via.placeholder.com/50"

// TemplateCache holds the parsed pages and serves them as Fiber's view engine.
// Every page is parsed together with the shared layout.
type TemplateCache struct {
	files fs.FS
	cache map[string]*template.Template
	mu    sync.RWMutex
	funcs template.FuncMap
}

// NewTemplateCache creates a cache over the embedded templates.
func NewTemplateCache() *TemplateCache {
	return NewTemplateCacheFS(templateFS)
}

// NewTemplateCacheFS creates a cache reading templates/*.html from files.
func NewTemplateCacheFS(files fs.FS) *TemplateCache {
	return &TemplateCache{
		files: files,
		cache: make(map[string]*template.Template),
		funcs: template.FuncMap{
			"money":       formatMoney,
			"date":        formatDate,
			"statusClass": statusClass,
			"imageOr":     imageOr,
		},
	}
}

// Load parses all pages. It implements fiber.Views.
func (tc *TemplateCache) Load() error {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	files, err := fs.Glob(tc.files, "templates/*.html")
	if err != nil {
		return err
	}
	layout := path.Join("templates", layoutFile)
	for _, file := range files {
		name := path.Base(file)
		if name == layoutFile {
			continue
		}
		tmpl, err := template.New(name).Funcs(tc.funcs).ParseFS(tc.files, layout, file)
		if err != nil {
			logx.Error().Err(err).Str("file", file).Msg("failed to parse template")
			return err
		}
		tc.cache[strings.TrimSuffix(name, ".html")] = tmpl
		logx.Debug().Str("name", name).Msg("cached template")
	}
	return nil
}

func (tc *TemplateCache) Get(name string) *template.Template {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.cache[strings.TrimSuffix(name, ".html")]
}

// Render executes the layout of page name with binding. It implements fiber.Views.
func (tc *TemplateCache) Render(w io.Writer, name string, binding interface{}, _ ...string) error {
	tmpl := tc.Get(name)
	if tmpl == nil {
		return fmt.Errorf("template %q not found", name)
	}
	return tmpl.ExecuteTemplate(w, "layout", binding)
}

func formatMoney(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

// statusClass picks the badge style of an order status. Anything other than
// pending or approved renders like a rejection.
func statusClass(s models.OrderStatus) string {
	switch s {
	case models.OrderApproved:
		return "badge-approved"
	case models.OrderPending:
		return "badge-pending"
	default:
		return "badge-rejected"
	}
}

func imageOr(image string) string {
	if image == "" {
		return PlaceholderImage
	}
	return image
}
