package matching

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/daleelcare/daleelcare-backend/internal/providers"
	"github.com/daleelcare/daleelcare-backend/pkg/db/models"
	"github.com/daleelcare/daleelcare-backend/pkg/enums"
)

type fakeProvidersRepo struct {
	profiles []models.ProviderProfile
	listErr  error
}

func (f *fakeProvidersRepo) WithTx(tx *gorm.DB) providers.Repository {
	return f
}

func (f *fakeProvidersRepo) FindByID(ctx context.Context, userID uuid.UUID) (*models.ProviderProfile, error) {
	for i := range f.profiles {
		if f.profiles[i].UserID == userID {
			return &f.profiles[i], nil
		}
	}
	return nil, nil
}

func (f *fakeProvidersRepo) ListApproved(ctx context.Context) ([]models.ProviderProfile, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.profiles, nil
}

func (f *fakeProvidersRepo) ListAssignable(ctx context.Context) ([]models.ProviderProfile, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.ProviderProfile, 0, len(f.profiles))
	for _, profile := range f.profiles {
		if profile.ProfileCompleted {
			out = append(out, profile)
		}
	}
	return out, nil
}

func floatPtr(v float64) *float64 {
	return &v
}

func assignableProfile(name, city string, lat, lng *float64) models.ProviderProfile {
	return models.ProviderProfile{
		UserID:           uuid.New(),
		FullName:         name,
		Phone:            "0790000000",
		City:             city,
		RoleType:         enums.ProviderRoleNurse,
		Status:           enums.ProviderStatusApproved,
		ProfileCompleted: true,
		Lat:              lat,
		Lng:              lng,
	}
}

func TestCandidates_DisjointRankedLists(t *testing.T) {
	// Client in central Amman.
	clientLat, clientLng := 31.9539, 35.9106

	near := assignableProfile("Near Nurse", "Amman", floatPtr(31.96), floatPtr(35.92))
	far := assignableProfile("Far Nurse", "Irbid", floatPtr(32.55), floatPtr(35.85))
	sameCityNoGeo := assignableProfile("Amman No Geo", "Amman", nil, nil)
	otherCityNoGeo := assignableProfile("Aqaba No Geo", "Aqaba", nil, nil)

	repo := &fakeProvidersRepo{profiles: []models.ProviderProfile{far, otherCityNoGeo, near, sameCityNoGeo}}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	lists, err := svc.Candidates(context.Background(), Query{
		City: "Amman",
		Lat:  &clientLat,
		Lng:  &clientLng,
	})
	if err != nil {
		t.Fatalf("Candidates error: %v", err)
	}

	if len(lists.Nearest) != 2 {
		t.Fatalf("expected 2 nearest candidates, got %d", len(lists.Nearest))
	}
	if lists.Nearest[0].Provider.UserID != near.UserID {
		t.Fatalf("expected %s first by distance, got %s", near.FullName, lists.Nearest[0].Provider.FullName)
	}
	if lists.Nearest[0].DistanceKM == nil || *lists.Nearest[0].DistanceKM >= *lists.Nearest[1].DistanceKM {
		t.Fatal("nearest list must be sorted by ascending distance")
	}

	if len(lists.SameCity) != 1 || lists.SameCity[0].Provider.UserID != sameCityNoGeo.UserID {
		t.Fatalf("expected only the geo-less Amman provider in same-city list: %+v", lists.SameCity)
	}
	if len(lists.Other) != 1 || lists.Other[0].Provider.UserID != otherCityNoGeo.UserID {
		t.Fatalf("expected only the Aqaba provider in other list: %+v", lists.Other)
	}

	seen := map[uuid.UUID]int{}
	for _, c := range lists.Nearest {
		seen[c.Provider.UserID]++
	}
	for _, c := range lists.SameCity {
		seen[c.Provider.UserID]++
	}
	for _, c := range lists.Other {
		seen[c.Provider.UserID]++
	}
	for id, count := range seen {
		if count != 1 {
			t.Fatalf("provider %s appears in %d lists, lists must be disjoint", id, count)
		}
	}
}

func TestCandidates_NoClientLocation(t *testing.T) {
	near := assignableProfile("Geo Nurse", "Amman", floatPtr(31.96), floatPtr(35.92))
	sameCity := assignableProfile("City Nurse", "Amman", nil, nil)

	repo := &fakeProvidersRepo{profiles: []models.ProviderProfile{near, sameCity}}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	lists, err := svc.Candidates(context.Background(), Query{City: "Amman"})
	if err != nil {
		t.Fatalf("Candidates error: %v", err)
	}
	if len(lists.Nearest) != 0 {
		t.Fatalf("nearest list must be empty without a client location, got %d", len(lists.Nearest))
	}
	if len(lists.SameCity) != 2 {
		t.Fatalf("expected both providers in same-city list, got %d", len(lists.SameCity))
	}
}

func TestCandidates_LimitSpillsToCityLists(t *testing.T) {
	clientLat, clientLng := 31.9539, 35.9106

	closest := assignableProfile("Closest", "Amman", floatPtr(31.954), floatPtr(35.911))
	second := assignableProfile("Second", "Amman", floatPtr(31.99), floatPtr(35.95))
	third := assignableProfile("Third Irbid", "Irbid", floatPtr(32.55), floatPtr(35.85))

	repo := &fakeProvidersRepo{profiles: []models.ProviderProfile{third, closest, second}}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	lists, err := svc.Candidates(context.Background(), Query{
		City:  "Amman",
		Lat:   &clientLat,
		Lng:   &clientLng,
		Limit: 2,
	})
	if err != nil {
		t.Fatalf("Candidates error: %v", err)
	}

	if len(lists.Nearest) != 2 {
		t.Fatalf("expected nearest list capped at 2, got %d", len(lists.Nearest))
	}
	if lists.Nearest[0].Provider.UserID != closest.UserID || lists.Nearest[1].Provider.UserID != second.UserID {
		t.Fatal("nearest list order wrong after cap")
	}
	if len(lists.Other) != 1 || lists.Other[0].Provider.UserID != third.UserID {
		t.Fatalf("provider cut from nearest must land in a city list: %+v", lists)
	}
}

func TestCandidates_FallbackListsHoldWholePool(t *testing.T) {
	profiles := make([]models.ProviderProfile, 0, 15)
	for i := 0; i < 12; i++ {
		profiles = append(profiles, assignableProfile("Amman Nurse", "Amman", nil, nil))
	}
	for i := 0; i < 3; i++ {
		profiles = append(profiles, assignableProfile("Zarqa Nurse", "Zarqa", nil, nil))
	}

	repo := &fakeProvidersRepo{profiles: profiles}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	// No client location and no explicit limit: the default cap applies to
	// the nearest list only, never to the city fallbacks.
	lists, err := svc.Candidates(context.Background(), Query{City: "Amman"})
	if err != nil {
		t.Fatalf("Candidates error: %v", err)
	}

	if len(lists.Nearest) != 0 {
		t.Fatalf("nearest list must be empty without a client location, got %d", len(lists.Nearest))
	}
	if len(lists.SameCity) != 12 {
		t.Fatalf("expected all 12 same-city providers, got %d", len(lists.SameCity))
	}
	if len(lists.Other) != 3 {
		t.Fatalf("expected all 3 other-city providers, got %d", len(lists.Other))
	}

	seen := map[uuid.UUID]int{}
	for _, c := range lists.SameCity {
		seen[c.Provider.UserID]++
	}
	for _, c := range lists.Other {
		seen[c.Provider.UserID]++
	}
	if len(seen) != len(profiles) {
		t.Fatalf("union of lists covers %d providers, pool has %d", len(seen), len(profiles))
	}
	for id, count := range seen {
		if count != 1 {
			t.Fatalf("provider %s appears in %d lists, lists must be disjoint", id, count)
		}
	}
}

func TestCandidates_IncompleteProfileRanksByDistanceOnly(t *testing.T) {
	clientLat, clientLng := 31.9539, 35.9106

	incompleteGeo := assignableProfile("Incomplete Geo", "Amman", floatPtr(31.96), floatPtr(35.92))
	incompleteGeo.ProfileCompleted = false
	incompleteNoGeo := assignableProfile("Incomplete No Geo", "Amman", nil, nil)
	incompleteNoGeo.ProfileCompleted = false
	completed := assignableProfile("Completed", "Amman", nil, nil)

	repo := &fakeProvidersRepo{profiles: []models.ProviderProfile{incompleteGeo, incompleteNoGeo, completed}}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	lists, err := svc.Candidates(context.Background(), Query{
		City: "Amman",
		Lat:  &clientLat,
		Lng:  &clientLng,
	})
	if err != nil {
		t.Fatalf("Candidates error: %v", err)
	}

	if len(lists.Nearest) != 1 || lists.Nearest[0].Provider.UserID != incompleteGeo.UserID {
		t.Fatalf("incomplete profile with coordinates must still rank by distance: %+v", lists.Nearest)
	}
	if len(lists.SameCity) != 1 || lists.SameCity[0].Provider.UserID != completed.UserID {
		t.Fatalf("city fallback must hold only completed profiles: %+v", lists.SameCity)
	}
	if len(lists.Other) != 0 {
		t.Fatalf("expected empty other list, got %d", len(lists.Other))
	}
}

func TestCandidates_RequiresCity(t *testing.T) {
	svc, err := NewService(&fakeProvidersRepo{})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	if _, err := svc.Candidates(context.Background(), Query{City: "  "}); err == nil {
		t.Fatal("expected validation error for blank city")
	}
}
