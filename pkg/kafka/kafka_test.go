package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	type built struct {
		Variant string `json:"variant"`
		Terms   int    `json:"terms"`
	}
	got, err := DecodeJSON[built]([]byte(`{"variant":"spimi","terms":7}`))
	require.NoError(t, err)
	assert.Equal(t, built{Variant: "spimi", Terms: 7}, got)

	_, err = DecodeJSON[built]([]byte(`{`))
	assert.Error(t, err)
}
