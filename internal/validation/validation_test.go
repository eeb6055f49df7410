package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name   string  `json:"name" validate:"required"`
	Amount float64 `json:"amount" validate:"gte=0"`
	Kind   string  `json:"kind" validate:"oneof=a b"`
}

func TestMessageUsesJSONNames(t *testing.T) {
	v := New()

	err := v.Struct(sample{Amount: -1, Kind: "c"})
	require.Error(t, err)

	msg := Message(err)
	assert.Contains(t, msg, "name: is required")
	assert.Contains(t, msg, "amount: must be at least 0")
	assert.Contains(t, msg, "kind: must be one of a, b")
}

func TestMessagePassesThroughOtherErrors(t *testing.T) {
	assert.Equal(t, "boom", Message(errors.New("boom")))
}

func TestValidStructPasses(t *testing.T) {
	assert.NoError(t, New().Struct(sample{Name: "x", Amount: 1, Kind: "a"}))
}
