package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appanalysis "github.com/bryanwahyu/legalsense/internal/application/analysis"
	appchat "github.com/bryanwahyu/legalsense/internal/application/chat"
	apphistory "github.com/bryanwahyu/legalsense/internal/application/history"
	domanalysis "github.com/bryanwahyu/legalsense/internal/domain/analysis"
	"github.com/bryanwahyu/legalsense/internal/domain/category"
	domain "github.com/bryanwahyu/legalsense/internal/domain/history"
	"github.com/bryanwahyu/legalsense/internal/middleware"
)

type Router struct {
	analyzeSvc *appanalysis.Service
	historySvc *apphistory.Service
	chatSvc    *appchat.Service
}

// Options bundles the router's cross-cutting pieces.
type Options struct {
	JWTSecret []byte
	Health    http.HandlerFunc
}

func NewRouter(analyzeSvc *appanalysis.Service, historySvc *apphistory.Service, chatSvc *appchat.Service, opts Options) http.Handler {
	r := &Router{analyzeSvc: analyzeSvc, historySvc: historySvc, chatSvc: chatSvc}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))
	mux.Use(middleware.IdentityResolver(opts.JWTSecret))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.RateLimitMiddleware(30, 5))

	if opts.Health != nil {
		mux.Get("/health", opts.Health)
	} else {
		mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("ok"))
		})
	}
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/analyses", r.wrap(r.handleAnalyze))
		rt.Get("/analyses", r.wrap(r.handleList))
		rt.Get("/analyses/grouped", r.wrap(r.handleGrouped))
		rt.Get("/analyses/{id}", r.wrap(r.handleGet))
		rt.Delete("/analyses/{id}", r.wrap(r.handleDelete))
		rt.Delete("/analyses", r.wrap(r.handleClear))
		rt.Post("/analyses/{id}/chat", r.wrap(r.handleChat))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequest marks caller errors so wrap can pick the status code.
type badRequest struct{ err error }

func (b badRequest) Error() string { return b.err.Error() }

// notFound marks missing-resource errors.
var errNotFound = errors.New("not found")

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			var br badRequest
			switch {
			case errors.As(err, &br):
				http.Error(w, br.Error(), http.StatusBadRequest)
			case errors.Is(err, errNotFound):
				http.Error(w, "not found", http.StatusNotFound)
			case errors.Is(err, domanalysis.ErrQuotaExceeded):
				http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
			case errors.Is(err, domanalysis.ErrInvalidResult):
				http.Error(w, "analyzer returned an unusable result", http.StatusBadGateway)
			default:
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		}
	}
}

// recordView is a record plus its read-time derived presentation fields. The
// category label is recomputed here on every response, never stored.
type recordView struct {
	domain.Record
	Category string `json:"refined_category"`
	Icon     string `json:"icon"`
}

func viewOf(rec domain.Record) recordView {
	label := category.Refine(rec)
	return recordView{Record: rec, Category: label, Icon: category.Icon(label)}
}

func views(recs []domain.Record) []recordView {
	out := make([]recordView, 0, len(recs))
	for _, rec := range recs {
		out = append(out, viewOf(rec))
	}
	return out
}

func identityOf(req *http.Request) (domain.Identity, error) {
	id := middleware.IdentityFromContext(req.Context())
	if err := middleware.ValidateIdentity(id); err != nil {
		return "", badRequest{err}
	}
	return domain.Identity(id), nil
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

// POST /v1/analyses
// multipart body with a "file" part; analyzes it and, for authenticated
// callers, appends the outcome to their history.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	identity, err := identityOf(req)
	if err != nil {
		return err
	}

	if err := req.ParseMultipartForm(middleware.MaxUploadBytes); err != nil {
		return badRequest{fmt.Errorf("parsing upload: %w", err)}
	}
	file, header, err := req.FormFile("file")
	if err != nil {
		return badRequest{fmt.Errorf("missing file part: %w", err)}
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if err := middleware.ValidateContentType(contentType); err != nil {
		return badRequest{err}
	}
	if err := middleware.ValidateUploadSize(header.Size); err != nil {
		return badRequest{err}
	}

	res, err := r.analyzeSvc.AnalyzeDocument(req.Context(), appanalysis.AnalyzeCommand{
		Identity:     identity,
		DocumentName: header.Filename,
		ContentType:  contentType,
		Body:         file,
		Size:         header.Size,
	})
	if err != nil {
		middleware.IncrementAnalysesFailed()
		return err
	}
	middleware.IncrementAnalyses()

	return writeJSON(w, map[string]any{
		"result":       res.Result,
		"document_url": res.DocumentURL,
		"history":      views(res.History),
	})
}

// GET /v1/analyses?q=
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	identity, err := identityOf(req)
	if err != nil {
		return err
	}
	query := req.URL.Query().Get("q")
	if err := middleware.ValidateQuery(query); err != nil {
		return badRequest{err}
	}

	recs := apphistory.Search(r.historySvc.List(req.Context(), identity), query)
	return writeJSON(w, map[string]any{"records": views(recs)})
}

// GET /v1/analyses/grouped?q=
// Returns category buckets ordered by the newest record in each bucket.
func (r *Router) handleGrouped(w http.ResponseWriter, req *http.Request) error {
	identity, err := identityOf(req)
	if err != nil {
		return err
	}
	query := req.URL.Query().Get("q")
	if err := middleware.ValidateQuery(query); err != nil {
		return badRequest{err}
	}

	recs := apphistory.Search(r.historySvc.List(req.Context(), identity), query)
	groups := apphistory.Group(recs)

	type groupView struct {
		Name    string          `json:"name"`
		Icon    string          `json:"icon"`
		Records []domain.Record `json:"records"`
	}
	ordered := make([]groupView, 0, len(groups))
	for _, name := range apphistory.OrderCategories(groups) {
		ordered = append(ordered, groupView{
			Name:    name,
			Icon:    category.Icon(name),
			Records: groups[name],
		})
	}
	return writeJSON(w, map[string]any{"categories": ordered})
}

// GET /v1/analyses/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	identity, err := identityOf(req)
	if err != nil {
		return err
	}
	id := domain.RecordID(chi.URLParam(req, "id"))

	rec := r.historySvc.Get(req.Context(), identity, id)
	if rec == nil {
		return errNotFound
	}
	return writeJSON(w, viewOf(*rec))
}

// DELETE /v1/analyses/{id}
// Idempotent: deleting an unknown id still returns the current collection.
func (r *Router) handleDelete(w http.ResponseWriter, req *http.Request) error {
	identity, err := identityOf(req)
	if err != nil {
		return err
	}
	id := domain.RecordID(chi.URLParam(req, "id"))

	recs := r.historySvc.Delete(req.Context(), identity, id)
	r.chatSvc.Forget(identity, id)
	return writeJSON(w, map[string]any{"records": views(recs)})
}

// DELETE /v1/analyses
func (r *Router) handleClear(w http.ResponseWriter, req *http.Request) error {
	identity, err := identityOf(req)
	if err != nil {
		return err
	}
	recs := r.historySvc.Clear(req.Context(), identity)
	return writeJSON(w, map[string]any{"records": views(recs)})
}

// POST /v1/analyses/{id}/chat
// Body: {"message": "<text>"}
func (r *Router) handleChat(w http.ResponseWriter, req *http.Request) error {
	identity, err := identityOf(req)
	if err != nil {
		return err
	}
	id := domain.RecordID(chi.URLParam(req, "id"))

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest{fmt.Errorf("decoding body: %w", err)}
	}
	if body.Message == "" {
		return badRequest{fmt.Errorf("message is required")}
	}

	rec := r.historySvc.Get(req.Context(), identity, id)
	if rec == nil {
		return errNotFound
	}
	if rec.DocumentURL == "" {
		return badRequest{fmt.Errorf("record has no stored document to chat about")}
	}

	text, sources, err := r.chatSvc.Ask(req.Context(), identity, id, rec.DocumentURL, body.Message)
	if err != nil {
		return err
	}
	middleware.IncrementChatTurns()

	return writeJSON(w, map[string]any{
		"text":    text,
		"sources": sources,
	})
}
