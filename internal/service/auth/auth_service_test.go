package auth

import (
	"context"
	"testing"

	"github.com/phip-project/phip/internal/domain"
	"github.com/phip-project/phip/internal/pkg/constants"
	"github.com/phip-project/phip/internal/pkg/store/storetest"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func init() {
	viper.Set(constants.ViperSecretKey, "test-secret")
}

func registerRequest() *domain.RegisterFacilityRequest {
	return &domain.RegisterFacilityRequest{
		Name:     "Central PHC",
		Type:     domain.FacilityTypePHC,
		State:    "Borno",
		District: "Maiduguri",
		Username: "phc-central",
		Password: "s3cret-pass",
	}
}

func TestRegisterCreatesRegionFacilityAndUser(t *testing.T) {
	fake := storetest.New()
	svc := NewAuthService(fake)

	resp, err := svc.Register(context.Background(), registerRequest())
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	require.NotNil(t, resp.Facility)

	require.Len(t, fake.Regions, 1)
	require.Len(t, fake.Facilities, 1)
	require.Len(t, fake.Users, 1)
	require.Equal(t, fake.Regions[0].ID, resp.Facility.RegionID)
	require.Equal(t, "facility_user", fake.Users[0].Role)
	require.NotEqual(t, "s3cret-pass", fake.Users[0].PasswordHash)
}

func TestRegisterReusesExistingRegion(t *testing.T) {
	fake := storetest.New()
	svc := NewAuthService(fake)

	_, err := svc.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	second := registerRequest()
	second.Username = "phc-other"
	second.Name = "Other PHC"
	_, err = svc.Register(context.Background(), second)
	require.NoError(t, err)

	require.Len(t, fake.Regions, 1)
	require.Len(t, fake.Facilities, 2)
}

func TestRegisterUsernameTaken(t *testing.T) {
	fake := storetest.New()
	svc := NewAuthService(fake)

	_, err := svc.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), registerRequest())
	require.ErrorIs(t, err, constants.ErrUsernameTaken)
}

func TestLogin(t *testing.T) {
	fake := storetest.New()
	svc := NewAuthService(fake)

	_, err := svc.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), &domain.LoginRequest{
		Username: "phc-central",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	require.Equal(t, "Central PHC", resp.Facility.Name)
}

func TestLoginWrongPassword(t *testing.T) {
	fake := storetest.New()
	svc := NewAuthService(fake)

	_, err := svc.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &domain.LoginRequest{
		Username: "phc-central",
		Password: "wrong",
	})
	require.Error(t, err)
}

func TestLoginUnknownUser(t *testing.T) {
	fake := storetest.New()
	svc := NewAuthService(fake)

	_, err := svc.Login(context.Background(), &domain.LoginRequest{
		Username: "ghost",
		Password: "whatever",
	})
	require.ErrorIs(t, err, constants.ErrUnauthorized)
}
