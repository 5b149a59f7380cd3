// Package reference abstracts fetching the rule table, code dictionaries,
// and administrative-unit polygons the validators consult. The production
// implementation is a thin HTTP client; tests substitute an in-memory stub.
package reference

import (
	"context"

	"github.com/paulmach/orb"
	"github.com/urbanarchive/submiteval/archive"
)

// DictKind identifies one of the four reference dictionaries.
type DictKind int

const (
	ZFZRS DictKind = iota
	H1
	H2
	H3
)

// String renders a DictKind the way the reference service path segment
// expects it.
func (d DictKind) String() string {
	switch d {
	case ZFZRS:
		return "zfzrs"
	case H1:
		return "h1"
	case H2:
		return "h2"
	case H3:
		return "h3"
	default:
		return "unknown"
	}
}

// Loader is the abstraction the dispatcher's RunContext depends on. Callers
// within a single run may rely on strong consistency - repeated calls with
// the same arguments observe the same data - but no other guarantee.
type Loader interface {
	// LoadRules fetches the rule table for a (version, category) pair.
	LoadRules(ctx context.Context, version, category string) (*archive.Table, error)
	// LoadDict fetches one of the four code dictionaries.
	LoadDict(ctx context.Context, kind DictKind) (*archive.Table, error)
	// LoadUAT resolves a SIRUTA identifier to its administrative polygon.
	// ok is false if the service has no polygon for that identifier.
	LoadUAT(ctx context.Context, siruta string) (geom orb.Geometry, ok bool, err error)
	// LatestVersion returns the newest rule-table version string the
	// service knows about.
	LatestVersion(ctx context.Context) (string, error)
}
