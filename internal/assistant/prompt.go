package assistant

import (
	"fmt"
	"strings"

	"github.com/katrohit/nutrifolio/internal/foodlog"
)

const systemPromptTemplate = `You are a nutrition tracking assistant. Decide whether the user's message describes food or drink they consumed, or is general conversation.

Reply with a single JSON object and nothing else, in one of two shapes.

When the message describes food or drink:
{
  "type": "food_entry",
  "food_data": {
    "food_name": "name of the food",
    "brand": "brand name or null",
    "serving_qty": 1,
    "serving_size": "e.g. medium (118g), 1 cup, 100g",
    "calories": 0,
    "protein": 0,
    "carbs": 0,
    "fat": 0,
    "meal_type": "one of %s",
    "response_text": "short confirmation for the user mentioning the food and its calories"
  }
}

Otherwise:
{
  "type": "conversation",
  "response": "your reply"
}

Rules:
- Nutrition values are realistic estimates for the whole serving, in kcal and grams, never negative.
- If the user does not say which meal it was, use "%s".
- If several foods are mentioned, combine them into one entry.
- Keep conversational replies short and related to nutrition where possible.
%s`

func buildSystemPrompt(mealType foodlog.MealType, recentFoods []string) string {
	names := make([]string, 0, len(foodlog.MealOrder))
	for _, mt := range foodlog.MealOrder {
		names = append(names, `"`+string(mt)+`"`)
	}

	var recent string
	if len(recentFoods) > 0 {
		recent = "- The user recently logged: " + strings.Join(recentFoods, ", ") + ". Use this only to resolve references like \"the same again\".\n"
	}

	return fmt.Sprintf(systemPromptTemplate, strings.Join(names, ", "), mealType, recent)
}
