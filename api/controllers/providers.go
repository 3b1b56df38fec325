package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/daleelcare/daleelcare-backend/api/responses"
	"github.com/daleelcare/daleelcare-backend/api/validators"
	"github.com/daleelcare/daleelcare-backend/internal/matching"
	"github.com/daleelcare/daleelcare-backend/internal/providers"
	"github.com/daleelcare/daleelcare-backend/pkg/db/models"
	"github.com/daleelcare/daleelcare-backend/pkg/enums"
	"github.com/daleelcare/daleelcare-backend/pkg/logger"
)

// ProviderGet returns one provider profile from the directory.
func ProviderGet(svc providers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.URLParamUUID(r, "providerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, providerResponseFromModel(profile))
	}
}

// ProviderListAssignable returns approved, completed profiles eligible for
// assignment.
func ProviderListAssignable(svc providers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profiles, err := svc.ListAssignable(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]providerResponse, 0, len(profiles))
		for i := range profiles {
			out = append(out, providerResponseFromModel(&profiles[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

type providerResponse struct {
	UserID           uuid.UUID              `json:"user_id"`
	FullName         string                 `json:"full_name"`
	Phone            string                 `json:"phone"`
	City             string                 `json:"city"`
	RoleType         enums.ProviderRoleType `json:"role_type"`
	Status           enums.ProviderStatus   `json:"status"`
	ProfileCompleted bool                   `json:"profile_completed"`
	AvailableNow     bool                   `json:"available_now"`
	Lat              *float64               `json:"lat,omitempty"`
	Lng              *float64               `json:"lng,omitempty"`
	RadiusKM         float64                `json:"radius_km"`
	ExperienceYears  int                    `json:"experience_years"`
	Specialties      []string               `json:"specialties,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
}

func providerResponseFromModel(m *models.ProviderProfile) providerResponse {
	return providerResponse{
		UserID:           m.UserID,
		FullName:         m.FullName,
		Phone:            m.Phone,
		City:             m.City,
		RoleType:         m.RoleType,
		Status:           m.Status,
		ProfileCompleted: m.ProfileCompleted,
		AvailableNow:     m.AvailableNow,
		Lat:              m.Lat,
		Lng:              m.Lng,
		RadiusKM:         m.RadiusKM,
		ExperienceYears:  m.ExperienceYears,
		Specialties:      m.Specialties,
		CreatedAt:        m.CreatedAt,
	}
}

type candidateResponse struct {
	Provider   providerResponse `json:"provider"`
	DistanceKM *float64         `json:"distance_km,omitempty"`
}

type candidateListsResponse struct {
	Nearest  []candidateResponse `json:"nearest"`
	SameCity []candidateResponse `json:"same_city"`
	Other    []candidateResponse `json:"other"`
}

func candidateListsResponseFromModel(lists *matching.Lists) candidateListsResponse {
	return candidateListsResponse{
		Nearest:  candidateResponses(lists.Nearest),
		SameCity: candidateResponses(lists.SameCity),
		Other:    candidateResponses(lists.Other),
	}
}

func candidateResponses(candidates []matching.Candidate) []candidateResponse {
	out := make([]candidateResponse, 0, len(candidates))
	for i := range candidates {
		out = append(out, candidateResponse{
			Provider:   providerResponseFromModel(&candidates[i].Provider),
			DistanceKM: candidates[i].DistanceKM,
		})
	}
	return out
}
