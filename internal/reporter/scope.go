// Package reporter implements tenant-scoped reporter onboarding: scope
// authorization over the location hierarchy, quota resolution from tenant
// configuration, and the atomic creation transaction.
package reporter

import (
	"context"
	"errors"
	"fmt"

	"github.com/prajanews/newsdesk/internal/geography"
	"github.com/prajanews/newsdesk/internal/models"
)

// Denial reasons returned by CanCreate.
const (
	// ReasonMissingCreatorLocation means the creator row has no location for its level.
	ReasonMissingCreatorLocation = "creator has no location for its level"
	// ReasonDisallowedLevel means the creator level may not create the requested level.
	ReasonDisallowedLevel = "creator level may not create reporters at the requested level"
	// ReasonScopeMismatch means the requested location is outside the creator's jurisdiction.
	ReasonScopeMismatch = "requested location is outside the creator's jurisdiction"
)

// Geography answers the parent lookups the authorizer needs.
type Geography interface {
	DistrictStateID(ctx context.Context, districtID string) (string, error)
	MandalDistrictID(ctx context.Context, mandalID string) (string, error)
	AssemblyDistrictID(ctx context.Context, assemblyID string) (string, error)
}

// ScopeDecision is the outcome of a scope authorization check.
type ScopeDecision struct {
	Allowed bool   // Whether the creation may proceed.
	Reason  string // Denial reason, empty when allowed.
}

func deny(reason string) ScopeDecision { return ScopeDecision{Reason: reason} }

// allowedChildLevels maps a creator level to the levels it may create.
var allowedChildLevels = map[string]map[string]bool{
	models.LevelState:    {models.LevelDistrict: true, models.LevelAssembly: true, models.LevelMandal: true},
	models.LevelDistrict: {models.LevelAssembly: true, models.LevelMandal: true},
	models.LevelAssembly: {models.LevelMandal: true},
	models.LevelMandal:   {},
}

// CanCreate decides whether a creator at creatorLevel/creatorLocationID may
// create a reporter at requestedLevel/requestedLocationID. The decision is
// pure over the geography lookups; an unresolvable ancestor is a denial.
func CanCreate(ctx context.Context, geo Geography, creatorLevel, creatorLocationID, requestedLevel, requestedLocationID string) (ScopeDecision, error) {
	if creatorLocationID == "" {
		return deny(ReasonMissingCreatorLocation), nil
	}
	children, ok := allowedChildLevels[creatorLevel]
	if !ok || !children[requestedLevel] {
		return deny(ReasonDisallowedLevel), nil
	}

	switch creatorLevel {
	case models.LevelState:
		stateID, err := ancestorStateID(ctx, geo, requestedLevel, requestedLocationID)
		if err != nil {
			return scopeLookupDecision(err)
		}
		if stateID != creatorLocationID {
			return deny(ReasonScopeMismatch), nil
		}
	case models.LevelDistrict:
		districtID, err := ancestorDistrictID(ctx, geo, requestedLevel, requestedLocationID)
		if err != nil {
			return scopeLookupDecision(err)
		}
		if districtID != creatorLocationID {
			return deny(ReasonScopeMismatch), nil
		}
	case models.LevelAssembly:
		// Sibling-scope rule: the mandal must share the assembly's district.
		creatorDistrictID, errCreator := geo.AssemblyDistrictID(ctx, creatorLocationID)
		if errCreator != nil {
			return scopeLookupDecision(errCreator)
		}
		mandalDistrictID, errMandal := geo.MandalDistrictID(ctx, requestedLocationID)
		if errMandal != nil {
			return scopeLookupDecision(errMandal)
		}
		if mandalDistrictID != creatorDistrictID {
			return deny(ReasonScopeMismatch), nil
		}
	default:
		return deny(ReasonDisallowedLevel), nil
	}

	return ScopeDecision{Allowed: true}, nil
}

// ancestorStateID resolves the state at the top of the requested location's
// ancestor chain.
func ancestorStateID(ctx context.Context, geo Geography, level, locationID string) (string, error) {
	districtID, err := ancestorDistrictID(ctx, geo, level, locationID)
	if err != nil {
		return "", err
	}
	return geo.DistrictStateID(ctx, districtID)
}

// ancestorDistrictID resolves the district owning the requested location.
func ancestorDistrictID(ctx context.Context, geo Geography, level, locationID string) (string, error) {
	switch level {
	case models.LevelDistrict:
		return locationID, nil
	case models.LevelMandal:
		return geo.MandalDistrictID(ctx, locationID)
	case models.LevelAssembly:
		return geo.AssemblyDistrictID(ctx, locationID)
	default:
		return "", fmt.Errorf("reporter: no district ancestor for level %s", level)
	}
}

// scopeLookupDecision converts a lookup failure into a decision or error. A
// missing location denies; any other store failure propagates.
func scopeLookupDecision(err error) (ScopeDecision, error) {
	if errors.Is(err, geography.ErrLocationNotFound) {
		return deny(ReasonScopeMismatch), nil
	}
	return ScopeDecision{}, err
}
