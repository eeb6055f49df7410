package assistant

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/katrohit/nutrifolio/internal/foodlog"
)

const (
	replyFoodEntry    = "food_entry"
	replyConversation = "conversation"
	replyPassthrough  = "passthrough"

	defaultServingQty  = 1.0
	defaultServingSize = "serving"
)

// number accepts JSON numbers and numeric strings such as "105". Infinities
// and NaN are rejected.
type number float64

func (n *number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return fmt.Errorf("not a number: %q", s)
		}
		*n = number(f)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = number(f)
	return nil
}

type modelReply struct {
	Type     string       `json:"type"`
	FoodData *rawFoodData `json:"food_data"`
	Response string       `json:"response"`
}

type rawFoodData struct {
	FoodName     string  `json:"food_name" validate:"required"`
	Brand        *string `json:"brand"`
	ServingQty   *number `json:"serving_qty" validate:"omitempty,gt=0"`
	ServingSize  string  `json:"serving_size"`
	Calories     *number `json:"calories" validate:"required,gte=0"`
	Protein      *number `json:"protein" validate:"required,gte=0"`
	Carbs        *number `json:"carbs" validate:"required,gte=0"`
	Fat          *number `json:"fat" validate:"required,gte=0"`
	MealType     string  `json:"meal_type"`
	ResponseText string  `json:"response_text"`
}

// FoodData is the nutrition breakdown returned to the client for a logged
// food entry.
type FoodData struct {
	ID           string  `json:"id,omitempty"`
	FoodName     string  `json:"food_name"`
	Brand        *string `json:"brand"`
	Calories     float64 `json:"calories"`
	Protein      float64 `json:"protein"`
	Carbs        float64 `json:"carbs"`
	Fat          float64 `json:"fat"`
	MealType     string  `json:"meal_type"`
	ServingQty   float64 `json:"serving_qty"`
	ServingSize  string  `json:"serving_size"`
	LogDate      string  `json:"log_date"`
	ResponseText string  `json:"response_text,omitempty"`
}

type classification struct {
	outcome  string
	response string
	food     *FoodData
}

// classify validates the model's raw reply. Anything that is not a valid
// food entry or conversation comes back as passthrough with the raw text.
func classify(v *validator.Validate, raw string, inferred foodlog.MealType) classification {
	passthrough := classification{outcome: replyPassthrough, response: raw}

	body, ok := extractJSONObject(raw)
	if !ok {
		return passthrough
	}

	var reply modelReply
	if err := json.Unmarshal([]byte(body), &reply); err != nil {
		return passthrough
	}

	switch reply.Type {
	case replyConversation:
		text := strings.TrimSpace(reply.Response)
		if text == "" {
			return passthrough
		}
		return classification{outcome: replyConversation, response: text}

	case replyFoodEntry:
		if reply.FoodData == nil {
			return passthrough
		}
		fd := reply.FoodData
		fd.FoodName = strings.TrimSpace(fd.FoodName)
		if err := v.Struct(fd); err != nil {
			return passthrough
		}

		food := normalize(fd, inferred)
		response := strings.TrimSpace(fd.ResponseText)
		if response == "" {
			response = strings.TrimSpace(reply.Response)
		}
		if response == "" {
			response = confirmation(food)
		}
		return classification{outcome: replyFoodEntry, response: response, food: food}
	}

	return passthrough
}

func normalize(fd *rawFoodData, inferred foodlog.MealType) *FoodData {
	food := &FoodData{
		FoodName:     fd.FoodName,
		Calories:     float64(*fd.Calories),
		Protein:      float64(*fd.Protein),
		Carbs:        float64(*fd.Carbs),
		Fat:          float64(*fd.Fat),
		ServingQty:   defaultServingQty,
		ServingSize:  strings.TrimSpace(fd.ServingSize),
		MealType:     string(inferred),
		ResponseText: strings.TrimSpace(fd.ResponseText),
	}
	if fd.Brand != nil {
		if b := strings.TrimSpace(*fd.Brand); b != "" && !strings.EqualFold(b, "null") {
			food.Brand = &b
		}
	}
	if fd.ServingQty != nil {
		food.ServingQty = float64(*fd.ServingQty)
	}
	if food.ServingSize == "" {
		food.ServingSize = defaultServingSize
	}
	if mt, ok := foodlog.ParseMealType(fd.MealType); ok {
		food.MealType = string(mt)
	}
	return food
}

func confirmation(food *FoodData) string {
	return fmt.Sprintf("Logged %s (%s %s) for %s: %.0f calories, %.1fg protein, %.1fg carbs, %.1fg fat.",
		food.FoodName, strconv.FormatFloat(food.ServingQty, 'f', -1, 64), food.ServingSize,
		food.MealType, food.Calories, food.Protein, food.Carbs, food.Fat)
}

// extractJSONObject returns the text between the first "{" and the last "}",
// which drops markdown fences and chatter around the object.
func extractJSONObject(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}
