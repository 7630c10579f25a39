package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/matchsquad/models"
)

func newUserService(f *fixture) UserService {
	return NewUserService(f.users, f.memberships, f.guard, nil)
}

func TestMeLandingPath(t *testing.T) {
	f := newFixture()
	svc := newUserService(f)
	ctx := context.Background()

	tests := []struct {
		name   string
		userID int
		want   string
	}{
		{name: "superadmin", userID: superadminID, want: "/superadmin"},
		{name: "organizador with organization", userID: organizadorID, want: "/org/club-x/admin"},
		{name: "organizador without organization", userID: outsiderID, want: "/jugador"},
		{name: "jugador", userID: jugadorID, want: "/jugador"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			me, err := svc.Me(ctx, tt.userID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, me.LandingPath)
			assert.Equal(t, tt.userID, me.ID)
		})
	}

	_, err := svc.Me(ctx, 0)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestEnsureRolePersistsJugador(t *testing.T) {
	f := newFixture()
	fresh := models.User{Email: "fresh@b.com"}
	require.NoError(t, f.users.Create(context.Background(), &fresh))
	svc := newUserService(f)

	user, err := svc.EnsureRole(context.Background(), fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleJugador, user.Role)
	assert.Equal(t, models.RoleJugador, f.users.get(fresh.ID).Role)

	// существующая роль не меняется
	user, err = svc.EnsureRole(context.Background(), organizadorID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleOrganizador, user.Role)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture()
	svc := newUserService(f)

	user, err := svc.UpdateProfile(context.Background(), jugadorID, UpdateProfileInput{Name: strPtr(" Lucía ")})
	require.NoError(t, err)
	require.NotNil(t, user.Name)
	assert.Equal(t, "Lucía", *user.Name)
	assert.Equal(t, "Lucía", *f.users.get(jugadorID).Name)
}

func TestAdminUserOperations(t *testing.T) {
	f := newFixture()
	svc := newUserService(f)
	ctx := context.Background()

	_, err := svc.ListUsers(ctx, organizadorID, models.UserFilter{})
	assert.ErrorIs(t, err, ErrInsufficientPermission)

	role := models.RoleOrganizador
	users, err := svc.ListUsers(ctx, superadminID, models.UserFilter{Role: &role})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	stats, err := svc.UserStats(ctx, superadminID)
	require.NoError(t, err)
	assert.Equal(t, models.UserStats{Total: 4, Superadmins: 1, Organizadores: 2, Jugadores: 1}, *stats)
	raw, err := json.Marshal(stats)
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":4,"superadmins":1,"organizadores":2,"jugadores":1}`, string(raw))

	updated, err := svc.SetRole(ctx, superadminID, jugadorID, models.RoleOrganizador)
	require.NoError(t, err)
	assert.Equal(t, models.RoleOrganizador, updated.Role)

	_, err = svc.SetRole(ctx, superadminID, jugadorID, "rey")
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = svc.SetRole(ctx, superadminID, 404, models.RoleJugador)
	assert.ErrorIs(t, err, ErrUserNotFound)

	updated, err = svc.SetRoleByEmail(ctx, superadminID, " OTHER@club.com ", models.RoleJugador)
	require.NoError(t, err)
	assert.Equal(t, outsiderID, updated.ID)
	assert.Equal(t, models.RoleJugador, f.users.get(outsiderID).Role)

	_, err = svc.SetRoleByEmail(ctx, superadminID, "nobody@b.com", models.RoleJugador)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
