package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const DefaultLimit = 10000

type HTTPConfig struct {
	BaseURL string // e.g. https://pokeapi.co/api/v2
	Limit   int
	Timeout time.Duration
	Client  *http.Client // optional
}

// HTTPProvider reads the catalog from a PokeAPI-style list endpoint:
//
//	GET {BaseURL}/pokemon?limit=N  ->  {"results":[{"name":"...","url":".../25/"}]}
type HTTPProvider struct {
	base  string
	limit int
	http  *http.Client
}

func NewHTTPProvider(cfg HTTPConfig) *HTTPProvider {
	h := &http.Client{}
	if cfg.Client != nil {
		c := *cfg.Client
		h = &c
	}
	if cfg.Timeout > 0 {
		h.Timeout = cfg.Timeout
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &HTTPProvider{base: strings.TrimSuffix(cfg.BaseURL, "/"), limit: limit, http: h}
}

type listResponse struct {
	Results []struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"results"`
}

func (p *HTTPProvider) Fetch(ctx context.Context) ([]Entry, error) {
	u, err := url.Parse(p.base + "/pokemon")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogLoad, err)
	}
	q := u.Query()
	q.Set("limit", strconv.Itoa(p.limit))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogLoad, err)
	}
	req.Header.Set("Accept", "application/json")
	res, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogLoad, err)
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		return nil, fmt.Errorf("%w: list catalog: %s", ErrCatalogLoad, res.Status)
	}

	var body listResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrCatalogLoad, err)
	}
	out := make([]Entry, 0, len(body.Results))
	for _, r := range body.Results {
		id, err := IDFromURL(r.URL)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %q: %v", ErrCatalogLoad, r.Name, err)
		}
		out = append(out, Entry{ID: id, Name: r.Name})
	}
	return out, nil
}

// IDFromURL parses the numeric id from the last non-empty path segment of a
// resource URL ("https://pokeapi.co/api/v2/pokemon/25/" -> 25).
func IDFromURL(raw string) (int, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return 0, err
	}
	segs := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
	if len(segs) == 0 {
		return 0, fmt.Errorf("no path segments in %q", raw)
	}
	id, err := strconv.Atoi(segs[len(segs)-1])
	if err != nil {
		return 0, fmt.Errorf("bad id in %q: %w", raw, err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("non-positive id in %q", raw)
	}
	return id, nil
}
