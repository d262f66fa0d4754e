package domain

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBigInt_MarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{
			name:     "zero",
			value:    "0",
			expected: `"0"`,
		},
		{
			name:     "small value",
			value:    "500",
			expected: `"500"`,
		},
		{
			name:     "value exceeding 2^63",
			value:    "1607510288065843368000000000",
			expected: `"1607510288065843368000000000"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i, ok := new(big.Int).SetString(tt.value, 10)
			require.True(t, ok)

			data, err := json.Marshal(NewBigInt(i))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(data))
		})
	}
}

func TestBigInt_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{
			name:     "quoted decimal string",
			input:    `"1607510288065843368"`,
			expected: "1607510288065843368",
		},
		{
			name:     "bare integer token",
			input:    `12345`,
			expected: "12345",
		},
		{
			name:     "null",
			input:    `null`,
			expected: "0",
		},
		{
			name:    "garbage",
			input:   `"not-a-number"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b BigInt
			err := json.Unmarshal([]byte(tt.input), &b)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, b.String())
		})
	}
}

func TestBigInt_RoundTripThroughStruct(t *testing.T) {
	// Serialization of a full eligibility record must keep big values exact
	flowRate, ok := new(big.Int).SetString("1607510288065843368", 10)
	require.True(t, ok)

	record := PointSystemEligibility{
		PointSystemID:     7370,
		PointSystemName:   "Community Activations",
		Eligible:          true,
		Points:            500,
		ClaimedAmount:     NewBigIntFromInt64(0),
		NeedToClaim:       true,
		PoolAddress:       "0x6161dDd8F3A7Ae22Bb9112902A2DB1ee161FB84C",
		EstimatedFlowRate: NewBigInt(flowRate),
	}

	data, err := json.Marshal(record)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"estimatedFlowRate":"1607510288065843368"`)

	var decoded PointSystemEligibility
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 0, decoded.EstimatedFlowRate.Cmp(flowRate))
}

func TestNormalizeAddress(t *testing.T) {
	assert.Equal(t, "0xabcdef", NormalizeAddress("0xABCDEF"))
	assert.Equal(t, "0xabcdef", NormalizeAddress("  0xAbCdEf "))
	assert.Equal(t, []string{"0xaaa", "0xbbb"}, NormalizeAddresses([]string{"0xAAA", "0xBBB"}))
}

func TestIsZeroAddress(t *testing.T) {
	assert.True(t, IsZeroAddress(ETHEREUM_ZERO_ADDRESS))
	assert.True(t, IsZeroAddress("0x0000000000000000000000000000000000000000"))
	assert.True(t, IsZeroAddress(""))
	assert.False(t, IsZeroAddress("0x742d35Cc6634C0532925a3b844Bc9e7595f0bEb1"))
}

func TestValidAddress(t *testing.T) {
	assert.True(t, ValidAddress("0x742d35Cc6634C0532925a3b844Bc9e7595f0bEb1"))
	assert.False(t, ValidAddress("742d35Cc6634C0532925a3b844"))
	assert.False(t, ValidAddress(""))
}
