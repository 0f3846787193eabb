package validator

import (
	"testing"

	"recipebook_backend/internal/services/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_RecipeCategoryRule(t *testing.T) {
	t.Parallel()
	v := New()

	valid := &dto.CreateRecipeRequest{
		Title:       "Tarte aux pommes",
		Ingredients: []string{"pommes"},
		Steps:       []string{"cuire"},
		Category:    "dessert",
	}
	assert.NoError(t, v.Validate(valid))

	invalid := &dto.CreateRecipeRequest{
		Title:       "Tarte aux pommes",
		Ingredients: []string{"pommes"},
		Steps:       []string{"cuire"},
		Category:    "barbecue",
	}
	err := v.Validate(invalid)
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Errors, "category")
	assert.Equal(t, "Must be a valid recipe category", vErr.Errors["category"])
}

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	t.Parallel()
	v := New()

	err := v.Validate(&dto.RegisterRequest{Email: "not-an-email", Password: "motdepasse123", DisplayName: "Marie"})
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Errors, "email")
	assert.NotContains(t, vErr.Errors, "Email")
}

func TestValidate_RequiredAndMin(t *testing.T) {
	t.Parallel()
	v := New()

	err := v.Validate(&dto.RegisterRequest{Email: "marie@example.com", Password: "court", DisplayName: "Marie"})
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Errors, "password")

	err = v.Validate(&dto.CreateCommentRequest{})
	require.Error(t, err)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "This field is required", vErr.Errors["content"])
}
