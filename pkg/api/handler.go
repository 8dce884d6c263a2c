// CLAUDE:SUMMARY HTTP routes for catalogue listing, document and occurrence search, health and reload, plus the /mcp mount.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/hazyhaar/pacm-search/pkg/fulltext"
	"github.com/hazyhaar/pacm-search/pkg/kit"
	"github.com/hazyhaar/pacm-search/pkg/library"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/time/rate"
)

// RequestIDHeader carries the request ID in and out.
const RequestIDHeader = "X-Request-ID"

// Config wires the router.
type Config struct {
	Library *library.Library
	Search  fulltext.Options
	Logger  *slog.Logger
	// RateLimit is the sustained requests per second across all clients.
	// Zero disables limiting.
	RateLimit float64
	Burst     int
	// MCP, when set, is mounted as a streamable HTTP endpoint at /mcp.
	MCP *server.MCPServer
	// ReloadToken is the bearer token POST /v1/reload requires. Empty
	// disables the route.
	ReloadToken string
}

func (c *Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// NewRouter returns an http.Handler with all API routes.
func NewRouter(cfg Config) http.Handler {
	mux := http.NewServeMux()
	h := &handler{
		searchDocuments:   instrument(&cfg, "search_documents", searchDocumentsEndpoint(cfg.Library, cfg.Search)),
		searchOccurrences: instrument(&cfg, "search_occurrences", searchOccurrencesEndpoint(cfg.Library, cfg.Search)),
		listCatalogue:     instrument(&cfg, "list_catalogue", listCatalogueEndpoint(cfg.Library, cfg.Search)),
		document:          instrument(&cfg, "document", documentEndpoint(cfg.Library)),
		health:            healthEndpoint(cfg.Library),
		reload:            instrument(&cfg, "reload", reloadEndpoint(cfg.Library)),
		reloadToken:       cfg.ReloadToken,
	}

	mux.HandleFunc("GET /v1/catalogue", h.handleCatalogue)
	mux.HandleFunc("GET /v1/search", h.handleSearch)
	mux.HandleFunc("GET /v1/document", h.handleDocument)
	mux.HandleFunc("GET /v1/health", h.handleHealth)
	mux.HandleFunc("POST /v1/reload", h.handleReload)
	if cfg.MCP != nil {
		mux.Handle("/mcp", server.NewStreamableHTTPServer(cfg.MCP,
			server.WithHTTPContextFunc(func(ctx context.Context, _ *http.Request) context.Context {
				return kit.WithTransport(ctx, "mcp_http")
			})))
	}

	var next http.Handler = mux
	if cfg.RateLimit > 0 {
		next = limit(rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.Burst, 1)), next)
	}
	return cors(requestID(next))
}

type handler struct {
	searchDocuments   kit.Endpoint
	searchOccurrences kit.Endpoint
	listCatalogue     kit.Endpoint
	document          kit.Endpoint
	health            kit.Endpoint
	reload            kit.Endpoint
	reloadToken       string
}

// --- catalogue ---

func (h *handler) handleCatalogue(w http.ResponseWriter, r *http.Request) {
	grouped, err := boolParam(r, "grouped")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.listCatalogue(r.Context(), &catalogueReq{
		Query:   r.URL.Query().Get("q"),
		Grouped: grouped,
	})
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- search ---

func (h *handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	fullText, err := boolParam(r, "fulltext")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req := &searchReq{Query: r.URL.Query().Get("q"), FullText: fullText}

	var ep kit.Endpoint
	switch view := r.URL.Query().Get("view"); view {
	case "", ViewDocuments:
		ep = h.searchDocuments
	case ViewOccurrences:
		ep = h.searchOccurrences
	default:
		writeError(w, http.StatusBadRequest, "view must be documents or occurrences")
		return
	}

	resp, err := ep(r.Context(), req)
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- document ---

func (h *handler) handleDocument(w http.ResponseWriter, r *http.Request) {
	resp, err := h.document(r.Context(), &documentReq{URL: r.URL.Query().Get("url")})
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- health ---

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp, err := h.health(r.Context(), nil)
	if errors.Is(err, library.ErrNotLoaded) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
		return
	}
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- reload ---

func (h *handler) handleReload(w http.ResponseWriter, r *http.Request) {
	if h.reloadToken == "" {
		writeError(w, http.StatusForbidden, "reload disabled")
		return
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(h.reloadToken)) != 1 {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, http.StatusUnauthorized, "invalid reload token")
		return
	}
	resp, err := h.reload(r.Context(), nil)
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- helpers ---

func boolParam(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.New(name + " must be a boolean")
	}
	return b, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, library.ErrNotLoaded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeEndpointError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// requestID propagates or assigns X-Request-ID and tags the context as HTTP.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = kit.NewRequestID()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := kit.WithRequestID(kit.WithTransport(r.Context(), "http"), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// limit rejects requests beyond the limiter's rate with 429.
func limit(l *rate.Limiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow() {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// cors is a simple CORS middleware for browser-based clients. Authorization
// is not an allowed header, so pages on other origins cannot reload.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
		w.Header().Set("Access-Control-Expose-Headers", RequestIDHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
