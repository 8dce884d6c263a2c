package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hazyhaar/pacm-search/pkg/catalog"
	"github.com/hazyhaar/pacm-search/pkg/fulltext"
	"github.com/hazyhaar/pacm-search/pkg/kit"
	"github.com/hazyhaar/pacm-search/pkg/library"
)

// Shared request/response types used by the HTTP and MCP transports.

// MaxQueryLength bounds the raw query accepted by every endpoint.
const MaxQueryLength = 1024

// ErrBadRequest marks errors caused by invalid caller input.
var ErrBadRequest = errors.New("bad request")

// ErrNotFound is returned when a looked-up document does not exist.
var ErrNotFound = errors.New("not found")

const (
	ViewDocuments   = "documents"
	ViewOccurrences = "occurrences"
)

type searchReq struct {
	Query    string
	FullText bool
}

type catalogueReq struct {
	Query   string
	Grouped bool
}

type catalogueResponse struct {
	Query    string           `json:"query"`
	Total    int              `json:"total"`
	Records  []catalog.Record `json:"records,omitempty"`
	Sections []catalog.Group  `json:"sections,omitempty"`
}

type documentReq struct {
	URL string
}

type documentResponse struct {
	catalog.Record
	Catalogued bool   `json:"catalogued"`
	Text       string `json:"text,omitempty"`
}

type healthResponse struct {
	Status    string             `json:"status"`
	Documents int                `json:"documents"`
	Texts     int                `json:"texts"`
	Version   string             `json:"version"`
	LoadedAt  time.Time          `json:"loaded_at"`
	Feeds     []library.FeedInfo `json:"feeds"`
}

// OtherSection heads catalogue records that carry no section.
const OtherSection = "Other"

func checkQuery(q string) error {
	if len(q) > MaxQueryLength {
		return fmt.Errorf("%w: query longer than %d bytes", ErrBadRequest, MaxQueryLength)
	}
	return nil
}

func searchDocumentsEndpoint(lib *library.Library, opts fulltext.Options) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*searchReq)
		if err := checkQuery(req.Query); err != nil {
			return nil, err
		}
		corpus, err := lib.Corpus()
		if err != nil {
			return nil, err
		}
		return corpus.SearchDocuments(req.Query, req.FullText, opts), nil
	}
}

func searchOccurrencesEndpoint(lib *library.Library, opts fulltext.Options) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*searchReq)
		if err := checkQuery(req.Query); err != nil {
			return nil, err
		}
		corpus, err := lib.Corpus()
		if err != nil {
			return nil, err
		}
		return corpus.SearchOccurrences(req.Query, opts), nil
	}
}

func listCatalogueEndpoint(lib *library.Library, opts fulltext.Options) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*catalogueReq)
		if err := checkQuery(req.Query); err != nil {
			return nil, err
		}
		corpus, err := lib.Corpus()
		if err != nil {
			return nil, err
		}
		records := corpus.FilterCatalogue(req.Query, opts)
		resp := catalogueResponse{Query: req.Query, Total: len(records)}
		if req.Grouped {
			resp.Sections = catalog.GroupBySection(records, OtherSection)
		} else {
			resp.Records = records
		}
		return resp, nil
	}
}

func documentEndpoint(lib *library.Library) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*documentReq)
		if req.URL == "" {
			return nil, fmt.Errorf("%w: url is required", ErrBadRequest)
		}
		corpus, err := lib.Corpus()
		if err != nil {
			return nil, err
		}
		d, ok := corpus.Document(req.URL)
		if !ok {
			return nil, fmt.Errorf("%w: document %s", ErrNotFound, req.URL)
		}
		return documentResponse{Record: d.Record, Catalogued: d.Catalogued(), Text: d.Text}, nil
	}
}

func healthEndpoint(lib *library.Library) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		snap, err := lib.Snapshot()
		if err != nil {
			return nil, err
		}
		return healthResponse{
			Status:    "ok",
			Documents: snap.Corpus.Len(),
			Texts:     snap.Corpus.TextCount(),
			Version:   fmt.Sprintf("%016x", snap.Corpus.Version()),
			LoadedAt:  snap.LoadedAt,
			Feeds:     snap.Feeds,
		}, nil
	}
}

func reloadEndpoint(lib *library.Library) kit.Endpoint {
	health := healthEndpoint(lib)
	return func(ctx context.Context, request any) (any, error) {
		if err := lib.Reload(ctx); err != nil {
			return nil, fmt.Errorf("reload: %w", err)
		}
		return health(ctx, request)
	}
}

// instrument applies the middlewares every endpoint runs behind.
func instrument(cfg *Config, name string, ep kit.Endpoint) kit.Endpoint {
	return kit.Chain(kit.RequestID(), kit.Logging(cfg.logger(), name))(ep)
}
