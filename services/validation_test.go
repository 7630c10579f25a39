package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Dosada05/matchsquad/models"
)

func TestValidateInput(t *testing.T) {
	bad := models.SkillLevel("leyenda")
	tests := []struct {
		name  string
		input interface{}
		want  error
	}{
		{name: "organization ok", input: OrganizationInput{Name: "Club", Slug: "club", Email: "a@club.com"}},
		{name: "organization without name", input: OrganizationInput{Slug: "club", Email: "a@club.com"}, want: ErrValidationFailed},
		{name: "organization bad slug", input: OrganizationInput{Name: "Club", Slug: "Club X", Email: "a@club.com"}, want: ErrInvalidSlug},
		{name: "organization bad email", input: OrganizationInput{Name: "Club", Slug: "club", Email: "club.com"}, want: ErrInvalidEmail},
		{name: "invitation empty email", input: CreateInvitationInput{OrganizationID: 1}, want: ErrInvalidEmail},
		{name: "invitation without organization", input: CreateInvitationInput{Email: "a@b.com"}, want: ErrValidationFailed},
		{name: "category bad level", input: CategoryInput{Name: "X", Slug: "x", Modality: models.ModalitySingles, Level: &bad}, want: ErrInvalidLevel},
		{name: "category equal ages", input: CategoryInput{Name: "X", Slug: "x", Modality: models.ModalitySingles, MinAge: intPtr(18), MaxAge: intPtr(18)}},
		{name: "category inverted ages", input: CategoryInput{Name: "X", Slug: "x", Modality: models.ModalitySingles, MinAge: intPtr(19), MaxAge: intPtr(18)}, want: ErrInvalidAgeRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateInput(tt.input)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidateInputNamesField(t *testing.T) {
	err := validateInput(CategoryInput{Slug: "x", Modality: models.ModalitySingles})
	assert.EqualError(t, err, "validation failed: name is required")
}
