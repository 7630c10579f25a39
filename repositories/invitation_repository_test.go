package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/matchsquad/models"
)

var invitationRowColumns = []string{"id", "email", "name", "organization_id", "token", "expires_at", "invited_by", "status", "accepted_at", "user_id", "created_at"}

func newTestInvitation() *models.Invitation {
	name := "Bea"
	return &models.Invitation{
		Email:          "bea@b.com",
		Name:           &name,
		OrganizationID: 3,
		Token:          "tok",
		ExpiresAt:      time.Date(2027, 1, 8, 0, 0, 0, 0, time.UTC),
		InvitedBy:      2,
		Status:         models.InvitationPending,
	}
}

func TestInvitationCreate(t *testing.T) {
	db, mock := newMockDB(t)
	inv := newTestInvitation()
	created := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO invitations (email, name, organization_id, token, expires_at, invited_by, status) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at`)).
		WithArgs(inv.Email, inv.Name, inv.OrganizationID, inv.Token, inv.ExpiresAt, inv.InvitedBy, inv.Status).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(11, created))

	require.NoError(t, NewPostgresInvitationRepository(db).Create(context.Background(), inv))
	assert.Equal(t, 11, inv.ID)
	assert.Equal(t, created, inv.CreatedAt)
}

func TestInvitationCreateConstraintErrors(t *testing.T) {
	tests := []struct {
		name string
		err  *pq.Error
		want error
	}{
		{"pending duplicate", &pq.Error{Code: pqUniqueViolation, Constraint: "invitations_pending_email_org_key"}, ErrInvitationPendingDuplicate},
		{"token collision", &pq.Error{Code: pqUniqueViolation, Constraint: "invitations_token_key"}, ErrInvitationTokenConflict},
		{"unknown organization", &pq.Error{Code: pqForeignKeyViolation, Constraint: "invitations_organization_id_fkey"}, ErrOrganizationNotFound},
		{"unknown inviter", &pq.Error{Code: pqForeignKeyViolation, Constraint: "invitations_invited_by_fkey"}, ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			mock.ExpectQuery(`INSERT INTO invitations`).WillReturnError(tt.err)

			err := NewPostgresInvitationRepository(db).Create(context.Background(), newTestInvitation())
			assert.ErrorIs(t, err, tt.want)
		})
	}

	db, mock := newMockDB(t)
	other := &pq.Error{Code: pqUniqueViolation, Constraint: "something_else"}
	mock.ExpectQuery(`INSERT INTO invitations`).WillReturnError(other)
	err := NewPostgresInvitationRepository(db).Create(context.Background(), newTestInvitation())
	assert.ErrorIs(t, err, other)
}

func TestInvitationGetByTokenForUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	expires := time.Date(2027, 1, 8, 0, 0, 0, 0, time.UTC)
	created := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM invitations WHERE token = \$1 FOR UPDATE$`).
		WithArgs("tok").
		WillReturnRows(sqlmock.NewRows(invitationRowColumns).
			AddRow(5, "bea@b.com", nil, 3, "tok", expires, 2, "pending", nil, nil, created))
	mock.ExpectCommit()

	var got *models.Invitation
	err := NewPostgresTransactor(db).WithinTx(context.Background(), func(exec SQLExecutor) error {
		var err error
		got, err = NewPostgresInvitationRepository(db).GetByTokenForUpdate(context.Background(), exec, "tok")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 5, got.ID)
	assert.Nil(t, got.Name)
	assert.Nil(t, got.UserID)
	assert.Nil(t, got.AcceptedAt)
	assert.Equal(t, models.InvitationPending, got.Status)
	assert.Equal(t, expires, got.ExpiresAt)
}

func TestInvitationGetByTokenNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`FROM invitations WHERE token = \$1$`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(invitationRowColumns))

	_, err := NewPostgresInvitationRepository(db).GetByToken(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrInvitationNotFound)
}

func TestInvitationMarkAccepted(t *testing.T) {
	at := time.Date(2027, 1, 2, 0, 0, 0, 0, time.UTC)
	query := regexp.QuoteMeta(`UPDATE invitations SET status = 'accepted', accepted_at = $2, user_id = $3 WHERE id = $1 AND status = 'pending'`)

	db, mock := newMockDB(t)
	mock.ExpectExec(query).WithArgs(5, at, 9).WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, NewPostgresInvitationRepository(db).MarkAccepted(context.Background(), nil, 5, 9, at))

	// строка уже не pending
	db, mock = newMockDB(t)
	mock.ExpectExec(query).WithArgs(5, at, 9).WillReturnResult(sqlmock.NewResult(0, 0))
	err := NewPostgresInvitationRepository(db).MarkAccepted(context.Background(), nil, 5, 9, at)
	assert.ErrorIs(t, err, ErrInvitationStatusConflict)
}

func TestInvitationTransitions(t *testing.T) {
	query := regexp.QuoteMeta(`UPDATE invitations SET status = $2 WHERE id = $1 AND status = 'pending'`)

	db, mock := newMockDB(t)
	mock.ExpectExec(query).WithArgs(5, models.InvitationExpired).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).WithArgs(6, models.InvitationCancelled).WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewPostgresInvitationRepository(db)
	assert.NoError(t, repo.MarkExpired(context.Background(), nil, 5))
	assert.ErrorIs(t, repo.MarkCancelled(context.Background(), nil, 6), ErrInvitationStatusConflict)
}

func TestInvitationListPendingByOrganization(t *testing.T) {
	db, mock := newMockDB(t)
	expires := time.Date(2027, 1, 8, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE organization_id = $1 AND status = 'pending' ORDER BY created_at DESC`)).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(invitationRowColumns).
			AddRow(1, "a@b.com", "Ana", 3, "t1", expires, 2, "pending", nil, nil, expires).
			AddRow(2, "c@d.com", nil, 3, "t2", expires, 2, "pending", nil, nil, expires))

	list, err := NewPostgresInvitationRepository(db).ListPendingByOrganization(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.NotNil(t, list[0].Name)
	assert.Equal(t, "Ana", *list[0].Name)
	assert.Equal(t, "c@d.com", list[1].Email)
}

func TestInvitationCountPending(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM invitations WHERE organization_id = $1 AND status = 'pending'`)).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	n, err := NewPostgresInvitationRepository(db).CountPendingByOrganization(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}
