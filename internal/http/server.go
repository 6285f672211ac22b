package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"gastos/internal/core"
	applog "gastos/internal/log"
	"gastos/internal/middleware/security"
	"gastos/internal/middleware/trace"
	"gastos/internal/services"
	"gastos/internal/sheets"
	appweb "gastos/web"

	"github.com/go-chi/chi/v5"
)

// Page template names, one file each under web/templates next to base.html.
const (
	pageRegister = "register.html"
	pageView     = "view.html"
	pageSummary  = "summary.html"
	pageBudgets  = "budgets.html"
)

var pageNames = []string{pageRegister, pageView, pageSummary, pageBudgets}

// Server serves the four panels of the UI over one row store.
type Server struct {
	http.Server

	pages     map[string]*template.Template
	expenses  *services.ExpenseService
	recurring *services.RecurringProcessor
	summaries *services.SummaryService
	budgets   *services.BudgetService

	ready   func(context.Context) error
	logger  *applog.Logger
	now     func() time.Time
	started time.Time
}

// Option customises a Server.
type Option func(*Server)

// WithReadiness sets the dependency check behind /readyz.
func WithReadiness(check func(context.Context) error) Option {
	return func(s *Server) { s.ready = check }
}

func WithLogger(logger *applog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithClock overrides the source of "today" for entries and generation.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer builds the server and its routes.
func NewServer(addr string, store sheets.Store, opts ...Option) *Server {
	s := &Server{
		expenses:  services.NewExpenseService(store),
		recurring: services.NewRecurringProcessor(store),
		summaries: services.NewSummaryService(store),
		budgets:   services.NewBudgetService(store),
		now:       time.Now,
		started:   time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = applog.New(applog.Config{Level: slog.LevelInfo, Component: applog.ComponentHTTP})
	}

	pages, err := parsePages(appweb.TemplatesFS)
	if err != nil {
		s.logger.Warn("Failed parsing templates", applog.FieldError, err)
	}
	s.pages = pages

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	tracer := trace.NewMiddleware(extractClientIP, s.logger)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	r.Use(applog.Middleware(s.logger))
	r.Use(trace.RequestID)
	r.Use(applog.RequestIDMiddleware(trace.FromRequest))
	r.Use(tracer.Middleware)
	r.Use(headers.Middleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Get("/", s.handleIndex)
	r.Post("/expenses", s.handleCreateExpense)

	r.Get("/view", s.handleView)
	r.Post("/view", s.handleRewrite)

	r.Get("/summary", s.handleSummary)

	r.Get("/budgets", s.handleBudgets)
	r.Post("/budgets", s.handleSaveBudgets)

	r.Post("/recurring/generate", s.handleGenerate)

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.With(security.StaticAssetMiddleware(3600)).Handle("/static/*", static)
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	return r
}

// parsePages parses each page together with the shared layout, so every
// page can define its own "content" block.
func parsePages(fsys fs.FS) (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(templateFuncs).ParseFS(fsys, "templates/base.html", "templates/"+name)
		if err != nil {
			return nil, err
		}
		pages[name] = t
	}
	return pages, nil
}

// today is the current date on the server clock.
func (s *Server) today() core.Date {
	return core.DateOf(s.now())
}
