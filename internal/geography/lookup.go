// Package geography resolves parent relationships in the administrative
// location tree (state -> district -> mandal, district -> assembly).
package geography

import (
	"context"
	"errors"
	"fmt"

	"github.com/prajanews/newsdesk/internal/models"
	"gorm.io/gorm"
)

// ErrLocationNotFound indicates a location id that does not resolve to a row.
// Scope checks must treat it as a denial, never as a silent pass.
var ErrLocationNotFound = errors.New("geography: location not found")

// Store answers parent lookups against the relational location tables.
type Store struct {
	conn *gorm.DB
}

// NewStore constructs a Store over the given connection or transaction.
func NewStore(conn *gorm.DB) *Store {
	return &Store{conn: conn}
}

// DistrictStateID returns the state owning a district.
func (s *Store) DistrictStateID(ctx context.Context, districtID string) (string, error) {
	var row models.District
	if errFind := s.conn.WithContext(ctx).
		Select("state_id").
		Where("id = ?", districtID).
		Take(&row).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("district %s: %w", districtID, ErrLocationNotFound)
		}
		return "", fmt.Errorf("geography: load district %s: %w", districtID, errFind)
	}
	return row.StateID, nil
}

// MandalDistrictID returns the district owning a mandal.
func (s *Store) MandalDistrictID(ctx context.Context, mandalID string) (string, error) {
	var row models.Mandal
	if errFind := s.conn.WithContext(ctx).
		Select("district_id").
		Where("id = ?", mandalID).
		Take(&row).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("mandal %s: %w", mandalID, ErrLocationNotFound)
		}
		return "", fmt.Errorf("geography: load mandal %s: %w", mandalID, errFind)
	}
	return row.DistrictID, nil
}

// AssemblyDistrictID returns the district owning an assembly constituency.
func (s *Store) AssemblyDistrictID(ctx context.Context, assemblyID string) (string, error) {
	var row models.AssemblyConstituency
	if errFind := s.conn.WithContext(ctx).
		Select("district_id").
		Where("id = ?", assemblyID).
		Take(&row).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("assembly constituency %s: %w", assemblyID, ErrLocationNotFound)
		}
		return "", fmt.Errorf("geography: load assembly constituency %s: %w", assemblyID, errFind)
	}
	return row.DistrictID, nil
}

// StateID verifies a state row exists and returns its id.
func (s *Store) StateID(ctx context.Context, stateID string) (string, error) {
	var row models.State
	if errFind := s.conn.WithContext(ctx).
		Select("id").
		Where("id = ?", stateID).
		Take(&row).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("state %s: %w", stateID, ErrLocationNotFound)
		}
		return "", fmt.Errorf("geography: load state %s: %w", stateID, errFind)
	}
	return row.ID, nil
}
