package validator

import (
	"log"

	"recipebook_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules wires the platform-specific validation tags into the
// given validator instance.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// A rule that fails to register is a startup error.
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	// 'is-recipe-category': soup, starter, main, dessert, other
	mustRegister("is-recipe-category", validateRecipeCategory)

	// 'is-conversation-type': direct, support
	mustRegister("is-conversation-type", validateConversationType)

	// 'is-support-topic': bug, improvement, other
	mustRegister("is-support-topic", validateSupportTopic)
}

// --- Validation functions ---

func validateRecipeCategory(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // empty values are handled by 'required'
	}
	switch models.RecipeCategory(value) {
	case models.RecipeCategorySoup, models.RecipeCategoryStarter, models.RecipeCategoryMain,
		models.RecipeCategoryDessert, models.RecipeCategoryOther:
		return true
	default:
		return false
	}
}

func validateConversationType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.ConversationType(value) {
	case models.ConversationTypeDirect, models.ConversationTypeSupport:
		return true
	default:
		return false
	}
}

func validateSupportTopic(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.SupportTopic(value) {
	case models.SupportTopicBug, models.SupportTopicImprovement, models.SupportTopicOther:
		return true
	default:
		return false
	}
}
