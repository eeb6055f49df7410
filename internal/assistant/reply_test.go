package assistant

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberUnmarshal(t *testing.T) {
	var n number
	require.NoError(t, json.Unmarshal([]byte(`"105"`), &n))
	assert.Equal(t, number(105), n)

	require.NoError(t, json.Unmarshal([]byte(`12.5`), &n))
	assert.Equal(t, number(12.5), n)

	for _, raw := range []string{`"Infinity"`, `"-inf"`, `"+Inf"`, `"NaN"`, `"lots"`, `true`} {
		assert.Error(t, json.Unmarshal([]byte(raw), &n), raw)
	}
}
