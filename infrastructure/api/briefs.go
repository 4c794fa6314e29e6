package api

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/helixml/newsbrief/application/service"
	"github.com/helixml/newsbrief/domain/brief"
	"github.com/helixml/newsbrief/infrastructure/api/dto"
	"github.com/helixml/newsbrief/infrastructure/api/middleware"
)

// pageSize bounds the briefs rendered into the home page.
const pageSize = 50

// BriefReader serves read-only views of annotated briefs.
type BriefReader interface {
	Articles(ctx context.Context, date, confidence string) ([]brief.Brief, error)
	Summary(ctx context.Context, date, confidence string) (brief.Summary, error)
	Latest(ctx context.Context, limit int) ([]brief.Brief, error)
}

// BatchRunner annotates one bounded batch of briefs.
type BatchRunner interface {
	RunBatch(ctx context.Context, limit int) (service.BatchResult, error)
}

// BriefsRouter handles the JSON brief endpoints.
type BriefsRouter struct {
	reader BriefReader
	logger *slog.Logger
}

// NewBriefsRouter creates a new BriefsRouter.
func NewBriefsRouter(reader BriefReader, logger *slog.Logger) *BriefsRouter {
	return &BriefsRouter{reader: reader, logger: logger}
}

// Routes returns the chi router for brief endpoints.
func (r *BriefsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/articles", r.Articles)
	router.Get("/summary", r.Summary)

	return router
}

// Articles handles GET /api/articles?date=YYYY-MM-DD&confidence=.
func (r *BriefsRouter) Articles(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	briefs, err := r.reader.Articles(req.Context(), q.Get("date"), q.Get("confidence"))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dto.NewArticlesResponse(briefs))
}

// Summary handles GET /api/summary?date=YYYY-MM-DD&confidence=.
func (r *BriefsRouter) Summary(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	summary, err := r.reader.Summary(req.Context(), q.Get("date"), q.Get("confidence"))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dto.NewSummaryResponse(summary))
}

// TriggerHandler runs one annotation batch on demand.
type TriggerHandler struct {
	runner BatchRunner
	logger *slog.Logger
}

// NewTriggerHandler creates a new TriggerHandler.
func NewTriggerHandler(runner BatchRunner, logger *slog.Logger) *TriggerHandler {
	return &TriggerHandler{runner: runner, logger: logger}
}

// ServeHTTP handles POST /run-analysis and replies "processed N".
func (h *TriggerHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	result, err := h.runner.RunBatch(req.Context(), 0)
	if err != nil {
		middleware.WriteError(w, req, err, h.logger)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "processed %d", result.Processed)
}

// PageHandler renders the home page with the latest annotated briefs.
type PageHandler struct {
	reader BriefReader
	tmpl   *template.Template
	logger *slog.Logger
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(reader BriefReader, logger *slog.Logger) *PageHandler {
	return &PageHandler{reader: reader, tmpl: indexTemplate, logger: logger}
}

type pageData struct {
	Articles []dto.ArticleResponse
}

// ServeHTTP handles GET /.
func (h *PageHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	briefs, err := h.reader.Latest(req.Context(), pageSize)
	if err != nil {
		// The page still renders; the script fetches articles itself.
		h.logger.WarnContext(req.Context(), "failed to load latest briefs", slog.String("error", err.Error()))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.Execute(w, pageData{Articles: dto.NewArticlesResponse(briefs)}); err != nil {
		h.logger.ErrorContext(req.Context(), "failed to render page", slog.String("error", err.Error()))
	}
}

// Health handles GET /healthz.
func Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
