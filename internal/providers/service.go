package providers

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/daleelcare/daleelcare-backend/pkg/db/models"
	apperrors "github.com/daleelcare/daleelcare-backend/pkg/errors"
)

// Service exposes read access to the provider directory.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.ProviderProfile, error)
	ListAssignable(ctx context.Context) ([]models.ProviderProfile, error)
}

type service struct {
	repo Repository
}

// NewService wires a provider directory service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("providers repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*models.ProviderProfile, error) {
	if userID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "provider id is required")
	}
	profile, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading provider profile")
	}
	if profile == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "provider not found")
	}
	return profile, nil
}

func (s *service) ListAssignable(ctx context.Context) ([]models.ProviderProfile, error) {
	profiles, err := s.repo.ListAssignable(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "listing assignable providers")
	}
	return profiles, nil
}
