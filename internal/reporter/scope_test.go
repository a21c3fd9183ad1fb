package reporter

import (
	"context"
	"fmt"
	"testing"

	"github.com/prajanews/newsdesk/internal/geography"
	"github.com/prajanews/newsdesk/internal/models"
)

// fakeGeo answers parent lookups from in-memory maps.
type fakeGeo struct {
	districtState  map[string]string
	mandalDistrict map[string]string
	acDistrict     map[string]string
}

func (g *fakeGeo) DistrictStateID(_ context.Context, id string) (string, error) {
	if v, ok := g.districtState[id]; ok {
		return v, nil
	}
	return "", fmt.Errorf("district %s: %w", id, geography.ErrLocationNotFound)
}

func (g *fakeGeo) MandalDistrictID(_ context.Context, id string) (string, error) {
	if v, ok := g.mandalDistrict[id]; ok {
		return v, nil
	}
	return "", fmt.Errorf("mandal %s: %w", id, geography.ErrLocationNotFound)
}

func (g *fakeGeo) AssemblyDistrictID(_ context.Context, id string) (string, error) {
	if v, ok := g.acDistrict[id]; ok {
		return v, nil
	}
	return "", fmt.Errorf("assembly %s: %w", id, geography.ErrLocationNotFound)
}

// testGeo builds the tree S1 -> D1 -> {M1, A1} and S2 -> D2 -> {M2, A2}.
func testGeo() *fakeGeo {
	return &fakeGeo{
		districtState:  map[string]string{"D1": "S1", "D2": "S2"},
		mandalDistrict: map[string]string{"M1": "D1", "M2": "D2"},
		acDistrict:     map[string]string{"A1": "D1", "A2": "D2"},
	}
}

func TestCanCreate_AllowedPairs(t *testing.T) {
	geo := testGeo()
	cases := []struct {
		creatorLevel, creatorLoc, level, loc string
	}{
		{models.LevelState, "S1", models.LevelDistrict, "D1"},
		{models.LevelState, "S1", models.LevelMandal, "M1"},
		{models.LevelState, "S1", models.LevelAssembly, "A1"},
		{models.LevelDistrict, "D1", models.LevelMandal, "M1"},
		{models.LevelDistrict, "D1", models.LevelAssembly, "A1"},
		{models.LevelAssembly, "A1", models.LevelMandal, "M1"},
	}
	for _, tc := range cases {
		decision, err := CanCreate(context.Background(), geo, tc.creatorLevel, tc.creatorLoc, tc.level, tc.loc)
		if err != nil {
			t.Fatalf("CanCreate(%s->%s): %v", tc.creatorLevel, tc.level, err)
		}
		if !decision.Allowed {
			t.Fatalf("expected allow for %s@%s creating %s@%s, got deny: %s", tc.creatorLevel, tc.creatorLoc, tc.level, tc.loc, decision.Reason)
		}
	}
}

func TestCanCreate_DisallowedLevelPairs(t *testing.T) {
	geo := testGeo()
	cases := []struct {
		creatorLevel, creatorLoc, level, loc string
	}{
		{models.LevelState, "S1", models.LevelState, "S1"},
		{models.LevelDistrict, "D1", models.LevelDistrict, "D1"},
		{models.LevelDistrict, "D1", models.LevelState, "S1"},
		{models.LevelAssembly, "A1", models.LevelAssembly, "A1"},
		{models.LevelAssembly, "A1", models.LevelDistrict, "D1"},
		{models.LevelMandal, "M1", models.LevelMandal, "M1"},
		{models.LevelMandal, "M1", models.LevelState, "S1"},
	}
	for _, tc := range cases {
		decision, err := CanCreate(context.Background(), geo, tc.creatorLevel, tc.creatorLoc, tc.level, tc.loc)
		if err != nil {
			t.Fatalf("CanCreate(%s->%s): %v", tc.creatorLevel, tc.level, err)
		}
		if decision.Allowed {
			t.Fatalf("expected deny for %s creating %s", tc.creatorLevel, tc.level)
		}
		if decision.Reason != ReasonDisallowedLevel {
			t.Fatalf("expected disallowed-level reason, got %q", decision.Reason)
		}
	}
}

func TestCanCreate_AncestorMismatch(t *testing.T) {
	geo := testGeo()

	// State-level creator in S1 cannot reach locations under S2.
	decision, err := CanCreate(context.Background(), geo, models.LevelState, "S1", models.LevelDistrict, "D2")
	if err != nil {
		t.Fatalf("CanCreate: %v", err)
	}
	if decision.Allowed || decision.Reason != ReasonScopeMismatch {
		t.Fatalf("expected scope mismatch, got %+v", decision)
	}

	decision, err = CanCreate(context.Background(), geo, models.LevelDistrict, "D1", models.LevelMandal, "M2")
	if err != nil {
		t.Fatalf("CanCreate: %v", err)
	}
	if decision.Allowed || decision.Reason != ReasonScopeMismatch {
		t.Fatalf("expected scope mismatch, got %+v", decision)
	}

	// Assembly creator may only create mandal reporters in its own district.
	decision, err = CanCreate(context.Background(), geo, models.LevelAssembly, "A1", models.LevelMandal, "M2")
	if err != nil {
		t.Fatalf("CanCreate: %v", err)
	}
	if decision.Allowed || decision.Reason != ReasonScopeMismatch {
		t.Fatalf("expected scope mismatch, got %+v", decision)
	}
}

func TestCanCreate_MissingAncestorDenies(t *testing.T) {
	geo := testGeo()

	// Unknown mandal: the ancestor chain cannot resolve, so deny.
	decision, err := CanCreate(context.Background(), geo, models.LevelState, "S1", models.LevelMandal, "M404")
	if err != nil {
		t.Fatalf("CanCreate: %v", err)
	}
	if decision.Allowed {
		t.Fatalf("expected deny for unresolvable mandal")
	}
	if decision.Reason != ReasonScopeMismatch {
		t.Fatalf("expected scope mismatch reason, got %q", decision.Reason)
	}
}

func TestCanCreate_MissingCreatorLocation(t *testing.T) {
	decision, err := CanCreate(context.Background(), testGeo(), models.LevelState, "", models.LevelDistrict, "D1")
	if err != nil {
		t.Fatalf("CanCreate: %v", err)
	}
	if decision.Allowed || decision.Reason != ReasonMissingCreatorLocation {
		t.Fatalf("expected missing-location deny, got %+v", decision)
	}
}
