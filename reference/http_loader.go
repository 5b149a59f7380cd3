package reference

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/urbanarchive/submiteval/archive"
)

// ruleColumns is the fixed column order rule-table rows are decoded into.
var ruleColumns = []string{
	"numar_regula", "tip_regula_id", "categorie_regula_id", "tip_validare_id",
	"tip_alerta_id", "formula_regula", "valoare_regula", "descriere",
	"pass_alerta", "fail_alerta", "error_alerta", "mesaj_modificare", "eroare_modificare",
}

// dictColumns is the fixed column order for ZF/ZRS and HILUCS dictionaries.
var dictColumns = []string{"definitie", "definite_lung"}

// HTTPLoader fetches rule tables, dictionaries, and administrative
// polygons from a remote reference service. Responses are cached for the
// lifetime of the Loader, matching the "strong consistency within a run"
// requirement without needing any locking - calls are never concurrent.
type HTTPLoader struct {
	baseURL    string
	httpClient *http.Client
	cache      *diskCache

	rulesCache map[string]*archive.Table
	dictCache  map[DictKind]*archive.Table
	uatCache   map[string]uatCacheEntry
}

type uatCacheEntry struct {
	geom orb.Geometry
	ok   bool
}

// NewHTTPLoader returns a Loader backed by the reference service at
// baseURL.
func NewHTTPLoader(baseURL string, timeout time.Duration) *HTTPLoader {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPLoader{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		rulesCache: map[string]*archive.Table{},
		dictCache:  map[DictKind]*archive.Table{},
		uatCache:   map[string]uatCacheEntry{},
	}
}

// WithCacheDir enables an on-disk cache for rule tables and dictionaries,
// persisting them across process runs for ttl before a fetch is retried.
// LatestVersion is not cached and always asks the service. Safe to call once right after
// NewHTTPLoader; a never-called loader simply has no disk cache.
func (l *HTTPLoader) WithCacheDir(dir string, ttl time.Duration) error {
	c, err := newDiskCache(dir, ttl)
	if err != nil {
		return err
	}
	l.cache = c
	return nil
}

// LoadRules fetches the rule table for (version, category).
func (l *HTTPLoader) LoadRules(ctx context.Context, version, category string) (*archive.Table, error) {
	key := version + "/" + category
	if t, ok := l.rulesCache[key]; ok {
		return t, nil
	}

	var rows []map[string]any
	cacheKey := "rules/" + key
	if !l.cache.get(cacheKey, &rows) {
		url := fmt.Sprintf("%s/rules?version=%s&category=%s", l.baseURL, version, category)
		if err := l.getJSON(ctx, url, &rows); err != nil {
			return nil, fmt.Errorf("load rules: %w", err)
		}
		if err := l.cache.set(cacheKey, rows); err != nil {
			return nil, fmt.Errorf("cache rules: %w", err)
		}
	}

	table := rowsToTable(rows, ruleColumns)
	l.rulesCache[key] = table
	return table, nil
}

// LoadDict fetches a ZF/ZRS or HILUCS dictionary.
func (l *HTTPLoader) LoadDict(ctx context.Context, kind DictKind) (*archive.Table, error) {
	if t, ok := l.dictCache[kind]; ok {
		return t, nil
	}

	var rows []map[string]any
	cacheKey := "dict/" + kind.String()
	if !l.cache.get(cacheKey, &rows) {
		url := fmt.Sprintf("%s/dictionaries/%s", l.baseURL, kind)
		if err := l.getJSON(ctx, url, &rows); err != nil {
			return nil, fmt.Errorf("load dictionary %s: %w", kind, err)
		}
		if err := l.cache.set(cacheKey, rows); err != nil {
			return nil, fmt.Errorf("cache dictionary %s: %w", kind, err)
		}
	}

	table := rowsToTable(rows, dictColumns)
	l.dictCache[kind] = table
	return table, nil
}

// LoadUAT resolves a SIRUTA identifier to its administrative polygon via a
// GeoJSON feature response. A 404 means the service has no polygon for
// that identifier; that is reported via ok=false, not an error.
func (l *HTTPLoader) LoadUAT(ctx context.Context, siruta string) (orb.Geometry, bool, error) {
	if e, ok := l.uatCache[siruta]; ok {
		return e.geom, e.ok, nil
	}

	url := fmt.Sprintf("%s/uat/%s", l.baseURL, siruta)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("build uat request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("fetch uat: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		l.uatCache[siruta] = uatCacheEntry{ok: false}
		return nil, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("uat fetch failed: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("read uat response: %w", err)
	}

	feature, err := geojson.UnmarshalFeature(body)
	if err != nil {
		return nil, false, fmt.Errorf("parse uat geojson: %w", err)
	}

	l.uatCache[siruta] = uatCacheEntry{geom: feature.Geometry, ok: true}
	return feature.Geometry, true, nil
}

// LatestVersion returns the newest rule-table version the service knows
// about.
func (l *HTTPLoader) LatestVersion(ctx context.Context) (string, error) {
	url := fmt.Sprintf("%s/rules/latest", l.baseURL)
	var payload struct {
		Version string `json:"version"`
	}
	if err := l.getJSON(ctx, url, &payload); err != nil {
		return "", fmt.Errorf("load latest version: %w", err)
	}
	return payload.Version, nil
}

func (l *HTTPLoader) getJSON(ctx context.Context, url string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// rowsToTable converts a slice of JSON objects into a Table with a fixed
// column order, so downstream code can rely on positional access.
func rowsToTable(rows []map[string]any, columns []string) *archive.Table {
	t := &archive.Table{Columns: columns, GeometryColumn: -1}
	for _, r := range rows {
		row := make([]any, len(columns))
		for i, c := range columns {
			row[i] = r[c]
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
