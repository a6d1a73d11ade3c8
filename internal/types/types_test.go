package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantity_MarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		value Quantity
		want  string
	}{
		{name: "zero", value: 0, want: `"0"`},
		{name: "block number", value: 58760240, want: `"58760240"`},
		{name: "beyond float53", value: 9007199254740993, want: `"9007199254740993"`},
		{name: "max uint64", value: Quantity(^uint64(0)), want: `"18446744073709551615"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestQuantity_UnmarshalJSON(t *testing.T) {
	var q Quantity

	require.NoError(t, json.Unmarshal([]byte(`"123456"`), &q))
	assert.Equal(t, Quantity(123456), q)

	// Bare numbers are accepted for compatibility with chain RPC payloads.
	require.NoError(t, json.Unmarshal([]byte(`789`), &q))
	assert.Equal(t, Quantity(789), q)

	assert.Error(t, json.Unmarshal([]byte(`"not-a-number"`), &q))
}

func TestQuantity_RoundTripInStruct(t *testing.T) {
	type row struct {
		BlockNumber Quantity `json:"blockNumber"`
		Timestamp   Quantity `json:"timestamp"`
	}

	in := row{BlockNumber: 58760240, Timestamp: 1721827200}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"blockNumber":"58760240","timestamp":"1721827200"}`, string(data))

	var out row
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}
