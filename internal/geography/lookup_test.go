package geography

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/prajanews/newsdesk/internal/db"
	"github.com/prajanews/newsdesk/internal/models"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "newsdesk-test.db")
	conn, err := db.Open(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return NewStore(conn), conn
}

func TestParentLookups(t *testing.T) {
	store, conn := newTestStore(t)
	ctx := context.Background()

	state := models.State{ID: uuid.NewString(), Name: "Andhra Pradesh", Code: "AP"}
	district := models.District{ID: uuid.NewString(), StateID: state.ID, Name: "Krishna"}
	mandal := models.Mandal{ID: uuid.NewString(), DistrictID: district.ID, Name: "Gudivada"}
	assembly := models.AssemblyConstituency{ID: uuid.NewString(), DistrictID: district.ID, Name: "Gudivada AC"}
	for _, row := range []any{&state, &district, &mandal, &assembly} {
		if errCreate := conn.Create(row).Error; errCreate != nil {
			t.Fatalf("seed row: %v", errCreate)
		}
	}

	gotState, err := store.DistrictStateID(ctx, district.ID)
	if err != nil {
		t.Fatalf("DistrictStateID: %v", err)
	}
	if gotState != state.ID {
		t.Fatalf("expected state %s, got %s", state.ID, gotState)
	}

	gotDistrict, err := store.MandalDistrictID(ctx, mandal.ID)
	if err != nil {
		t.Fatalf("MandalDistrictID: %v", err)
	}
	if gotDistrict != district.ID {
		t.Fatalf("expected district %s, got %s", district.ID, gotDistrict)
	}

	gotDistrict, err = store.AssemblyDistrictID(ctx, assembly.ID)
	if err != nil {
		t.Fatalf("AssemblyDistrictID: %v", err)
	}
	if gotDistrict != district.ID {
		t.Fatalf("expected district %s, got %s", district.ID, gotDistrict)
	}

	gotID, err := store.StateID(ctx, state.ID)
	if err != nil {
		t.Fatalf("StateID: %v", err)
	}
	if gotID != state.ID {
		t.Fatalf("expected state %s, got %s", state.ID, gotID)
	}
}

func TestMissingRowsAreErrors(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := store.DistrictStateID(ctx, uuid.NewString()); !errors.Is(err, ErrLocationNotFound) {
		t.Fatalf("expected ErrLocationNotFound for unknown district, got %v", err)
	}
	if _, err := store.MandalDistrictID(ctx, uuid.NewString()); !errors.Is(err, ErrLocationNotFound) {
		t.Fatalf("expected ErrLocationNotFound for unknown mandal, got %v", err)
	}
	if _, err := store.AssemblyDistrictID(ctx, uuid.NewString()); !errors.Is(err, ErrLocationNotFound) {
		t.Fatalf("expected ErrLocationNotFound for unknown assembly, got %v", err)
	}
	if _, err := store.StateID(ctx, uuid.NewString()); !errors.Is(err, ErrLocationNotFound) {
		t.Fatalf("expected ErrLocationNotFound for unknown state, got %v", err)
	}
}
