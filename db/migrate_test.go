package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationNamesAreOrdered(t *testing.T) {
	names, err := MigrationNames()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "001_schema.sql", names[0])
	assert.IsIncreasing(t, names)
}

func TestSchemaDeclaresInvitationConstraints(t *testing.T) {
	script, err := migrationsFS.ReadFile("migrations/001_schema.sql")
	require.NoError(t, err)

	// имена ограничений используются репозиториями для разбора ошибок pq
	for _, constraint := range []string{
		"invitations_token_key",
		"invitations_pending_email_org_key",
		"user_organizations_user_org_key",
		"organizations_slug_key",
		"categories_organization_id_slug_key",
		"users_email_key",
	} {
		assert.Contains(t, string(script), constraint)
	}
	assert.Contains(t, string(script), "WHERE status = 'pending'")
}
