package validate

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/urbanarchive/submiteval/archive"
	"github.com/urbanarchive/submiteval/dispatch"
	"github.com/urbanarchive/submiteval/geo"
	"github.com/urbanarchive/submiteval/reference"
	"github.com/urbanarchive/submiteval/rules"
)

func square(x0, y0, side float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{x0, y0}, {x0 + side, y0}, {x0 + side, y0 + side}, {x0, y0 + side}, {x0, y0},
	}}
}

func layerOf(crs string, geometryCol int, geoms ...orb.Geometry) *archive.Table {
	t := &archive.Table{Columns: []string{"siruta", "geom"}, GeometryColumn: geometryCol, CRS: crs}
	for _, g := range geoms {
		t.Rows = append(t.Rows, []any{"12345", g})
		t.GeometryHasZ = append(t.GeometryHasZ, false)
	}
	return t
}

func viewWith(layers map[string]*archive.Table) *dispatch.RunContext {
	return &dispatch.RunContext{
		View:     &archive.View{Layers: layers},
		Loader:   reference.NewStubLoader(),
		Category: rules.CategoryPUZ,
	}
}

func TestR27CRSMismatch(t *testing.T) {
	ctx := viewWith(map[string]*archive.Table{"zone": layerOf(geo.EPSGWGS84, 1, square(0, 0, 1))})
	outcome, _, err := R27(ctx, &rules.Rule{Formula: "zone", Value: geo.EPSGStereo70})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != dispatch.Fail {
		t.Errorf("expected Fail, got %v", outcome)
	}
}

func TestR27CRSMatch(t *testing.T) {
	ctx := viewWith(map[string]*archive.Table{"zone": layerOf(geo.EPSGWGS84, 1, square(0, 0, 1))})
	outcome, _, err := R27(ctx, &rules.Rule{Formula: "zone", Value: geo.EPSGWGS84})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != dispatch.Pass {
		t.Errorf("expected Pass, got %v", outcome)
	}
}

func TestR28NoGeometryColumn(t *testing.T) {
	ctx := viewWith(map[string]*archive.Table{"zone": layerOf(geo.EPSGWGS84, -1, square(0, 0, 1))})
	outcome, _, err := R28(ctx, &rules.Rule{Formula: "zone"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != dispatch.Fail {
		t.Errorf("expected Fail, got %v", outcome)
	}
}

func TestR30TypeMismatchOnFirstRowOnly(t *testing.T) {
	line := orb.LineString{{0, 0}, {1, 1}}
	ctx := viewWith(map[string]*archive.Table{"zone": layerOf(geo.EPSGWGS84, 1, line, square(0, 0, 1))})
	outcome, _, err := R30(ctx, &rules.Rule{Formula: "zone", Value: "Polygon"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != dispatch.Fail {
		t.Errorf("expected Fail on row 0 mismatch, got %v", outcome)
	}
}

func TestR30EmptyLayerIsError(t *testing.T) {
	ctx := viewWith(map[string]*archive.Table{"zone": layerOf(geo.EPSGWGS84, 1)})
	outcome, _, err := R30(ctx, &rules.Rule{Formula: "zone", Value: "Polygon"})
	if err == nil {
		t.Fatal("expected error for zero-row layer")
	}
	if outcome != dispatch.Error {
		t.Errorf("expected Error, got %v", outcome)
	}
}

func TestR31InvalidGeometry(t *testing.T) {
	selfIntersecting := orb.Polygon{orb.Ring{
		{0, 0}, {1, 1}, {1, 0}, {0, 1}, {0, 0},
	}}
	ctx := viewWith(map[string]*archive.Table{"zone": layerOf(geo.EPSGWGS84, 1, selfIntersecting)})
	outcome, verify, err := R31(ctx, &rules.Rule{Formula: "zone"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != dispatch.Fail {
		t.Errorf("expected Fail, got %v", outcome)
	}
	if verify == nil {
		t.Error("expected offending row indices")
	}
}

func TestR32NotFoundUAT(t *testing.T) {
	ctx := viewWith(map[string]*archive.Table{"zone": layerOf(geo.EPSGWGS84, 1, square(0, 0, 1))})
	outcome, _, err := R32(ctx, &rules.Rule{Formula: "zone", Value: "siruta"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != dispatch.Fail {
		t.Errorf("expected Fail when UAT not found, got %v", outcome)
	}
}

func TestR32FoundUATContainment(t *testing.T) {
	stub := reference.NewStubLoader()
	stub.UATs["12345"] = square(-10, -10, 100)
	ctx := &dispatch.RunContext{
		View:     &archive.View{Layers: map[string]*archive.Table{"zone": layerOf(geo.EPSGWGS84, 1, square(0, 0, 1))}},
		Loader:   stub,
		Category: rules.CategoryPUD,
	}
	outcome, _, err := R32(ctx, &rules.Rule{Formula: "zone", Value: "siruta"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != dispatch.Pass {
		t.Errorf("expected Pass, got %v", outcome)
	}
}

func TestR33ContainmentWithBuffer(t *testing.T) {
	containees := layerOf(geo.EPSGWGS84, 1, square(1, 1, 1))
	container := layerOf(geo.EPSGWGS84, 1, square(0, 0, 10))
	ctx := viewWith(map[string]*archive.Table{"parcels": containees, "zone": container})
	outcome, _, err := R33(ctx, &rules.Rule{Formula: "parcels", Value: "zone"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != dispatch.Pass {
		t.Errorf("expected Pass, got %v", outcome)
	}
}

func TestR33OutsideContainer(t *testing.T) {
	containees := layerOf(geo.EPSGWGS84, 1, square(100, 100, 1))
	container := layerOf(geo.EPSGWGS84, 1, square(0, 0, 10))
	ctx := viewWith(map[string]*archive.Table{"parcels": containees, "zone": container})
	outcome, _, err := R33(ctx, &rules.Rule{Formula: "parcels", Value: "zone"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != dispatch.Fail {
		t.Errorf("expected Fail, got %v", outcome)
	}
}

func TestR34FullCoverage(t *testing.T) {
	covers := layerOf(geo.EPSGWGS84, 1, square(0, 0, 10))
	covered := layerOf(geo.EPSGWGS84, 1, square(1, 1, 1))
	ctx := viewWith(map[string]*archive.Table{"covers": covers, "covered": covered})
	outcome, _, err := R34(ctx, &rules.Rule{Formula: "covers", Value: "covered"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != dispatch.Pass {
		t.Errorf("expected Pass, got %v", outcome)
	}
}

func TestR35OverlapPairsReported(t *testing.T) {
	a := square(0, 0, 2)
	b := square(1, 1, 2)
	c := square(10, 10, 1)
	ctx := viewWith(map[string]*archive.Table{"zone": layerOf(geo.EPSGWGS84, 1, a, b, c)})
	outcome, verify, err := R35(ctx, &rules.Rule{Formula: "zone"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != dispatch.Fail {
		t.Errorf("expected Fail, got %v", outcome)
	}
	pairs, ok := verify.([][2]int)
	if !ok || len(pairs) != 1 || pairs[0] != [2]int{0, 1} {
		t.Errorf("expected a single (0,1) pair, got %v", verify)
	}
}

func TestR36SliverDetection(t *testing.T) {
	sliver := orb.Polygon{orb.Ring{
		{0, 0}, {0.001, 0.0000001}, {0.001, -0.0000001}, {0, 0},
	}}
	ctx := viewWith(map[string]*archive.Table{"zone": layerOf(geo.EPSGWGS84, 1, sliver)})
	outcome, _, err := R36(ctx, &rules.Rule{Formula: "zone"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != dispatch.Fail {
		t.Errorf("expected Fail for sliver polygon, got %v", outcome)
	}
}

func TestR41RejectsZOrdinate(t *testing.T) {
	layer := layerOf(geo.EPSGWGS84, 1, square(0, 0, 1))
	layer.GeometryHasZ[0] = true
	ctx := viewWith(map[string]*archive.Table{"zone": layer})
	outcome, _, err := R41(ctx, &rules.Rule{Formula: "zone"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != dispatch.Fail {
		t.Errorf("expected Fail, got %v", outcome)
	}
}
