package matching

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/daleelcare/daleelcare-backend/internal/providers"
	"github.com/daleelcare/daleelcare-backend/pkg/db/models"
	apperrors "github.com/daleelcare/daleelcare-backend/pkg/errors"
)

// DefaultListLimit caps the nearest-by-distance list when the caller does not
// ask for a specific size. The city fallback lists are never capped.
const DefaultListLimit = 10

// Service ranks assignable providers for a booking location.
type Service interface {
	Candidates(ctx context.Context, query Query) (*Lists, error)
}

// Query describes the booking location the candidates are ranked against.
type Query struct {
	City  string
	Lat   *float64
	Lng   *float64
	Limit int
}

// Candidate is one provider with the distance to the client, when both sides
// shared coordinates.
type Candidate struct {
	Provider   models.ProviderProfile
	DistanceKM *float64
}

// Lists holds the three disjoint ranked candidate lists. A provider appears
// in at most one of them; approved profiles that are still incomplete only
// qualify for the distance list.
type Lists struct {
	Nearest  []Candidate
	SameCity []Candidate
	Other    []Candidate
}

type service struct {
	providers providers.Repository
}

// NewService wires a matching service over the provider directory.
func NewService(providersRepo providers.Repository) (Service, error) {
	if providersRepo == nil {
		return nil, fmt.Errorf("providers repository required")
	}
	return &service{providers: providersRepo}, nil
}

func (s *service) Candidates(ctx context.Context, query Query) (*Lists, error) {
	if strings.TrimSpace(query.City) == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "city is required")
	}
	limit := query.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	profiles, err := s.providers.ListApproved(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "listing approved providers")
	}

	lists := &Lists{}
	hasClientLocation := query.Lat != nil && query.Lng != nil

	var remainder []models.ProviderProfile
	if hasClientLocation {
		for _, profile := range profiles {
			if !profile.HasCoordinates() {
				remainder = append(remainder, profile)
				continue
			}
			distance := haversineKM(*query.Lat, *query.Lng, *profile.Lat, *profile.Lng)
			lists.Nearest = append(lists.Nearest, Candidate{Provider: profile, DistanceKM: &distance})
		}
		sort.SliceStable(lists.Nearest, func(i, j int) bool {
			return *lists.Nearest[i].DistanceKM < *lists.Nearest[j].DistanceKM
		})
		if len(lists.Nearest) > limit {
			// Providers cut from the nearest list still compete by city.
			for _, candidate := range lists.Nearest[limit:] {
				remainder = append(remainder, candidate.Provider)
			}
			lists.Nearest = lists.Nearest[:limit]
		}
	} else {
		remainder = profiles
	}

	// The city fallbacks hold the rest of the pool uncapped, so that every
	// approved completed profile outside the nearest list stays reachable.
	for _, profile := range remainder {
		if !profile.ProfileCompleted {
			continue
		}
		if sameCity(profile.City, query.City) {
			lists.SameCity = append(lists.SameCity, Candidate{Provider: profile})
		} else {
			lists.Other = append(lists.Other, Candidate{Provider: profile})
		}
	}

	return lists, nil
}
