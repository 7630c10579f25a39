package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/matchsquad/models"
	"github.com/Dosada05/matchsquad/realtime"
	"github.com/Dosada05/matchsquad/storage"
)

func newOrganizationService(f *fixture, uploader storage.FileUploader) OrganizationService {
	return NewOrganizationService(f.orgs, f.guard, uploader, f.events, nil)
}

func TestCreateOrganization(t *testing.T) {
	f := newFixture()
	svc := newOrganizationService(f, nil)
	ctx := context.Background()

	org, err := svc.CreateOrganization(ctx, superadminID, OrganizationInput{
		Name:  " Club Z ",
		Slug:  "Club-Z",
		Email: "Z@Club.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Club Z", org.Name)
	assert.Equal(t, "club-z", org.Slug)
	assert.Equal(t, "z@club.com", org.Email)
	assert.True(t, org.Active)

	_, err = svc.CreateOrganization(ctx, superadminID, OrganizationInput{Name: "Otra", Slug: "club-z", Email: "o@club.com"})
	assert.ErrorIs(t, err, ErrDuplicateSlug)

	// повторный контактный email допускается
	_, err = svc.CreateOrganization(ctx, superadminID, OrganizationInput{Name: "Otra", Slug: "otra", Email: "z@club.com"})
	assert.NoError(t, err)

	_, err = svc.CreateOrganization(ctx, organizadorID, OrganizationInput{Name: "Mia", Slug: "mia", Email: "m@club.com"})
	assert.ErrorIs(t, err, ErrInsufficientPermission)

	_, err = svc.CreateOrganization(ctx, superadminID, OrganizationInput{Name: "Mala", Slug: "mala", Email: "no-email"})
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestUpdateOrganization(t *testing.T) {
	f := newFixture()
	svc := newOrganizationService(f, nil)
	ctx := context.Background()

	_, err := svc.UpdateOrganization(ctx, superadminID, orgX, UpdateOrganizationInput{Slug: strPtr("club-y")})
	assert.ErrorIs(t, err, ErrDuplicateSlug)

	org, err := svc.UpdateOrganization(ctx, superadminID, orgX, UpdateOrganizationInput{
		Name:  strPtr("Club X Renovado"),
		Phone: strPtr("  "),
	})
	require.NoError(t, err)
	assert.Equal(t, "Club X Renovado", org.Name)
	assert.Nil(t, org.Phone)
	assert.Equal(t, []string{realtime.EventOrganizationUpdated}, f.events.types())

	_, err = svc.UpdateOrganization(ctx, superadminID, 404, UpdateOrganizationInput{})
	assert.ErrorIs(t, err, ErrOrganizationNotFound)
}

func TestSetOrganizationActiveAndSearch(t *testing.T) {
	f := newFixture()
	svc := newOrganizationService(f, nil)
	ctx := context.Background()

	require.NoError(t, svc.SetOrganizationActive(ctx, superadminID, orgY, false))

	count, err := svc.CountActiveOrganizations(ctx, superadminID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	found, err := svc.SearchOrganizations(ctx, superadminID, "club")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "club-x", found[0].Slug)

	inactive := false
	list, err := svc.ListOrganizations(ctx, superadminID, models.OrganizationFilter{Active: &inactive})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "club-y", list[0].Slug)
}

func TestDeleteOrganizationChecksDependencies(t *testing.T) {
	f := newFixture()
	svc := newOrganizationService(f, nil)
	ctx := context.Background()

	f.orgs.deps[orgX] = [2]int{2, 0}
	assert.ErrorIs(t, svc.DeleteOrganization(ctx, superadminID, orgX), ErrOrganizationHasCategory)

	f.orgs.deps[orgX] = [2]int{0, 1}
	assert.ErrorIs(t, svc.DeleteOrganization(ctx, superadminID, orgX), ErrOrganizationHasInvites)

	require.NoError(t, svc.DeleteOrganization(ctx, superadminID, orgY))
	_, err := f.orgs.GetByID(ctx, orgY)
	assert.Error(t, err)
}

func TestGetOrganizationIsGuarded(t *testing.T) {
	f := newFixture()
	svc := newOrganizationService(f, nil)
	ctx := context.Background()

	org, err := svc.GetOrganizationBySlug(ctx, organizadorID, "club-x")
	require.NoError(t, err)
	assert.Equal(t, orgX, org.ID)

	_, err = svc.GetOrganizationBySlug(ctx, organizadorID, "club-y")
	assert.ErrorIs(t, err, ErrInsufficientPermission)

	_, err = svc.GetOrganization(ctx, jugadorID, orgX)
	assert.ErrorIs(t, err, ErrInsufficientPermission)

	_, err = svc.GetOrganizationBySlug(ctx, superadminID, "missing")
	assert.ErrorIs(t, err, ErrOrganizationNotFound)
}

func TestCheckOrganizationSlugAvailability(t *testing.T) {
	f := newFixture()
	svc := newOrganizationService(f, nil)
	ctx := context.Background()

	res, err := svc.CheckSlugAvailability(ctx, superadminID, "club-x", 0)
	require.NoError(t, err)
	assert.False(t, res.Available)

	res, err = svc.CheckSlugAvailability(ctx, superadminID, "club-x", orgX)
	require.NoError(t, err)
	assert.True(t, res.Available)

	_, err = svc.CheckSlugAvailability(ctx, superadminID, "bad slug", 0)
	assert.ErrorIs(t, err, ErrInvalidSlug)
}

func TestUploadLogo(t *testing.T) {
	f := newFixture()
	uploader := newFakeUploader()
	svc := newOrganizationService(f, uploader)
	ctx := context.Background()

	org, err := svc.UploadLogo(ctx, organizadorID, orgX, "Logo.PNG", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	require.NotNil(t, org.LogoKey)
	firstKey := *org.LogoKey
	assert.True(t, strings.HasPrefix(firstKey, "organizations/1/logo-"))
	assert.True(t, strings.HasSuffix(firstKey, ".png"))
	require.NotNil(t, org.LogoURL)
	assert.Equal(t, "https://cdn.test/"+firstKey, *org.LogoURL)
	assert.Equal(t, "png-bytes", uploader.uploaded[firstKey])

	org, err = svc.UploadLogo(ctx, organizadorID, orgX, "nuevo.jpg", "image/jpeg", strings.NewReader("jpg"))
	require.NoError(t, err)
	assert.NotEqual(t, firstKey, *org.LogoKey)
	assert.Equal(t, []string{firstKey}, uploader.deleted)

	_, err = svc.UploadLogo(ctx, organizadorID, orgX, "doc.pdf", "application/pdf", strings.NewReader("pdf"))
	assert.ErrorIs(t, err, ErrInvalidImageType)

	_, err = svc.UploadLogo(ctx, outsiderID, orgX, "x.png", "image/png", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInsufficientPermission)
}

func TestUploadLogoWithoutStorage(t *testing.T) {
	f := newFixture()
	svc := newOrganizationService(f, nil)

	_, err := svc.UploadLogo(context.Background(), superadminID, orgX, "x.png", "image/png", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrStorageNotConfigured)
}
