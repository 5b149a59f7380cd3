package reference

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/urbanarchive/submiteval/archive"
)

// StubLoader is an in-memory Loader for tests: every lookup is served from
// fields set directly by the test, with no network I/O.
type StubLoader struct {
	Rules   map[string]*archive.Table // keyed by "version/category"
	Dicts   map[DictKind]*archive.Table
	UATs    map[string]orb.Geometry // absence means "not found", not an error
	Version string
	Err     error // if set, every call returns this error
}

// NewStubLoader returns an empty StubLoader ready for a test to populate.
func NewStubLoader() *StubLoader {
	return &StubLoader{
		Rules: map[string]*archive.Table{},
		Dicts: map[DictKind]*archive.Table{},
		UATs:  map[string]orb.Geometry{},
	}
}

func (s *StubLoader) LoadRules(ctx context.Context, version, category string) (*archive.Table, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	key := version + "/" + category
	t, ok := s.Rules[key]
	if !ok {
		return nil, fmt.Errorf("stub: no rule table for %s", key)
	}
	return t, nil
}

func (s *StubLoader) LoadDict(ctx context.Context, kind DictKind) (*archive.Table, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	t, ok := s.Dicts[kind]
	if !ok {
		return nil, fmt.Errorf("stub: no dictionary for %s", kind)
	}
	return t, nil
}

func (s *StubLoader) LoadUAT(ctx context.Context, siruta string) (orb.Geometry, bool, error) {
	if s.Err != nil {
		return nil, false, s.Err
	}
	g, ok := s.UATs[siruta]
	return g, ok, nil
}

func (s *StubLoader) LatestVersion(ctx context.Context) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	return s.Version, nil
}
