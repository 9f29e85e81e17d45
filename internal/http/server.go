// Package http is the view/form controller: it binds the embedded browser
// UI to the document store, the aggregation engine and the export/import
// adapters.
package http

import (
	"context"
	"html/template"
	"io/fs"
	stdhttp "net/http"
	"sync"
	"time"

	"timesheet/internal/cache"
	"timesheet/internal/core"
	"timesheet/internal/importer"
	applog "timesheet/internal/log"
	"timesheet/internal/store"
	appweb "timesheet/web"
)

// Server wires routes, caches and the reload hub around the document store.
type Server struct {
	stdhttp.Server

	store     *store.Store
	importer  *importer.Importer
	currency  string
	log       *applog.Logger
	templates *template.Template

	// Month-scoped aggregates are cheap but recomputed on every paint of
	// the summary tab; cache them until the next document change.
	summaryCache   *cache.LRUCache[core.Summary]
	breakdownCache *cache.LRUCache[[]core.ActivityBreakdown]
	cacheManager   *cache.Manager

	hub *eventHub

	stopWatch    chan struct{}
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run
// server bound to addr.
func NewServer(addr string, st *store.Store, im *importer.Importer, currency string, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	mux := stdhttp.NewServeMux()

	s := &Server{
		Server: stdhttp.Server{
			Addr:           addr,
			Handler:        mux,
			ReadTimeout:    10 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: 1 << 16,
		},
		store:          st,
		importer:       im,
		currency:       currency,
		log:            logger.WithComponent(applog.ComponentHTTP),
		summaryCache:   cache.NewLRUCache[core.Summary](100, 5*time.Minute),
		breakdownCache: cache.NewLRUCache[[]core.ActivityBreakdown](100, 5*time.Minute),
		cacheManager:   cache.NewManager(),
		hub:            newEventHub(logger),
		stopWatch:      make(chan struct{}),
	}
	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.Register(s.breakdownCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	// Any document change invalidates every cached aggregate and tells
	// every open window to reload.
	go s.watchStore()

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.log.Warn("failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := stdhttp.StripPrefix("/static/", stdhttp.FileServer(stdhttp.FS(sub)))
		mux.Handle("/static/", stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600")
			static.ServeHTTP(w, r)
		}))
	} else {
		s.log.Warn("failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.withCommon(s.handleIndex))
	mux.HandleFunc("GET /quickadd", s.withCommon(s.handleQuickAdd))
	mux.HandleFunc("GET /healthz", handleHealth)

	mux.HandleFunc("GET /api/clients", s.withCommon(s.handleListClients))
	mux.HandleFunc("POST /api/clients", s.withCommon(s.handleCreateClient))
	mux.HandleFunc("PUT /api/clients/{id}", s.withCommon(s.handleUpdateClient))
	mux.HandleFunc("DELETE /api/clients/{id}", s.withCommon(s.handleDeleteClient))
	mux.HandleFunc("PUT /api/clients/{id}/invoice-text", s.withCommon(s.handleInvoiceText))

	mux.HandleFunc("GET /api/entries", s.withCommon(s.handleListEntries))
	mux.HandleFunc("POST /api/entries", s.withCommon(s.handleCreateEntry))
	mux.HandleFunc("PUT /api/entries/{id}", s.withCommon(s.handleUpdateEntry))
	mux.HandleFunc("DELETE /api/entries/{id}", s.withCommon(s.handleDeleteEntry))

	mux.HandleFunc("GET /api/summary", s.withCommon(s.handleSummary))
	mux.HandleFunc("GET /api/breakdown", s.withCommon(s.handleBreakdown))
	mux.HandleFunc("GET /api/calendar", s.withCommon(s.handleCalendar))

	mux.HandleFunc("GET /api/settings", s.withCommon(s.handleGetSettings))
	mux.HandleFunc("PUT /api/settings", s.withCommon(s.handleUpdateSettings))

	mux.HandleFunc("POST /api/export/csv", s.withCommon(s.handleExportCSV))
	mux.HandleFunc("POST /api/export/pdf", s.withCommon(s.handleExportPDF))

	mux.HandleFunc("GET /api/import/files", s.withCommon(s.handleImportFiles))
	mux.HandleFunc("POST /api/import", s.withCommon(s.handleImport))

	mux.HandleFunc("GET /api/events", s.handleEvents)

	return s
}

// watchStore flushes the aggregate caches and pings open windows on every
// successful save.
func (s *Server) watchStore() {
	ch, cancel := s.store.Subscribe()
	defer cancel()
	for {
		select {
		case <-ch:
			s.summaryCache.Flush()
			s.breakdownCache.Flush()
			s.hub.broadcast()
		case <-s.stopWatch:
			return
		}
	}
}

// Shutdown stops the cache janitor, the store watcher and the event hub
// before shutting the listener down.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		close(s.stopWatch)
		s.cacheManager.Stop()
		s.hub.close()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// withCommon adds security headers and request logging. The app listens on
// loopback for a single user, so there is no auth and no rate limiting; the
// headers still keep the embedded UI on a tight leash.
func (s *Server) withCommon(next stdhttp.HandlerFunc) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		start := time.Now()

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: stdhttp.StatusOK}
		next(rw, r)

		s.log.Debug("request completed",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, time.Since(start).Milliseconds())
	}
}

// responseWriter captures the status code for request logging.
type responseWriter struct {
	stdhttp.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
	w.WriteHeader(stdhttp.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleIndex(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	s.renderPage(w, r, "index.html")
}

func (s *Server) handleQuickAdd(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	s.renderPage(w, r, "quickadd.html")
}

func (s *Server) renderPage(w stdhttp.ResponseWriter, r *stdhttp.Request, name string) {
	if s.templates == nil {
		stdhttp.Error(w, "templates unavailable", stdhttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := map[string]any{"Currency": s.currency}
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.log.ErrorContext(r.Context(), "template render failed", applog.FieldError, err, "template", name)
	}
}
