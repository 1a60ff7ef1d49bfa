package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/phip-project/phip/internal/domain"
	"github.com/phip-project/phip/internal/pkg/constants"
	"github.com/phip-project/phip/internal/pkg/store"
	"github.com/phip-project/phip/internal/pkg/utils"
)

type Service struct {
	store store.Store
}

func NewAuthService(store store.Store) *Service {
	return &Service{store: store}
}

// Register creates the facility, its user, and the region row when this is
// the first facility reporting from that (state, district).
func (s *Service) Register(ctx context.Context, req *domain.RegisterFacilityRequest) (*domain.LoginResponse, error) {
	if _, err := s.store.GetFacilityUserByUsername(ctx, req.Username); !errors.Is(err, constants.ErrDBNotFound) {
		if err == nil {
			return nil, constants.ErrUsernameTaken
		}
		return nil, err
	}

	region, err := s.store.UpsertRegion(ctx, req.State, req.District, req.Latitude, req.Longitude)
	if err != nil {
		return nil, fmt.Errorf("store.UpsertRegion: %w", err)
	}

	facility := &domain.Facility{
		ID:        uuid.NewString(),
		RegionID:  region.ID,
		Name:      req.Name,
		Type:      req.Type,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	if err := s.store.InsertFacility(ctx, facility); err != nil {
		return nil, fmt.Errorf("store.InsertFacility: %w", err)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.FacilityUser{
		ID:           uuid.NewString(),
		FacilityID:   facility.ID,
		Username:     req.Username,
		PasswordHash: hash,
		Role:         "facility_user",
	}
	if err := s.store.InsertFacilityUser(ctx, user); err != nil {
		return nil, fmt.Errorf("store.InsertFacilityUser: %w", err)
	}

	token, err := utils.GenerateAuthToken(&utils.AuthTokenWrapper{UserID: user.ID, FacilityID: facility.ID})
	if err != nil {
		return nil, err
	}

	return &domain.LoginResponse{Token: token, Facility: facility}, nil
}

func (s *Service) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	user, err := s.store.GetFacilityUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, constants.ErrDBNotFound) {
			return nil, constants.ErrUnauthorized
		}
		return nil, err
	}

	if err := utils.CheckPassword(user.PasswordHash, req.Password); err != nil {
		return nil, err
	}

	facility, err := s.store.GetFacilityByID(ctx, user.FacilityID)
	if err != nil {
		return nil, fmt.Errorf("store.GetFacilityByID: %w", err)
	}

	token, err := utils.GenerateAuthToken(&utils.AuthTokenWrapper{UserID: user.ID, FacilityID: facility.ID})
	if err != nil {
		return nil, err
	}

	return &domain.LoginResponse{Token: token, Facility: facility}, nil
}
