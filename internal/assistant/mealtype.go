package assistant

import (
	"strings"
	"time"

	"github.com/katrohit/nutrifolio/internal/foodlog"
)

var timestampLayouts = []string{time.RFC3339Nano, time.RFC3339}

// localTimestampLayout carries no offset; it is read as server local time.
const localTimestampLayout = "2006-01-02T15:04:05"

// InferMealType maps an hour of the day (0-23) to a default meal type.
func InferMealType(hour int) foodlog.MealType {
	switch {
	case hour >= 5 && hour < 10:
		return foodlog.Breakfast
	case hour >= 10 && hour < 15:
		return foodlog.Lunch
	case hour >= 15 && hour < 19:
		return foodlog.Snack
	case hour >= 19 && hour < 23:
		return foodlog.Dinner
	default:
		return foodlog.Snack
	}
}

// DefaultMealType infers the meal type from the user's local submission
// time. Missing or unparsable timestamps fall back to Snack.
func DefaultMealType(timestamp string) foodlog.MealType {
	t, ok := parseTimestamp(timestamp)
	if !ok {
		return foodlog.Snack
	}
	return InferMealType(t.Hour())
}

// parseTimestamp keeps the timestamp's own offset so Hour and date
// arithmetic happen in the user's local time.
func parseTimestamp(timestamp string) (time.Time, bool) {
	timestamp = strings.TrimSpace(timestamp)
	if timestamp == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, timestamp); err == nil {
			return t, true
		}
	}
	if t, err := time.ParseInLocation(localTimestampLayout, timestamp, time.Local); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// logDate is today's date in the location of the user's timestamp, or in
// server local time when no usable timestamp was sent.
func logDate(now time.Time, timestamp string) string {
	if t, ok := parseTimestamp(timestamp); ok {
		now = now.In(t.Location())
	}
	return now.Format(foodlog.DateLayout)
}
