package domain

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// BigInt is an arbitrary-precision integer that serializes as a decimal
// string. Flow rates and pool unit counts routinely exceed 2^63, so they must
// never pass through a native number at the JSON boundary.
type BigInt struct {
	big.Int
}

// NewBigInt creates a BigInt from a *big.Int (nil becomes zero)
func NewBigInt(i *big.Int) BigInt {
	var b BigInt
	if i != nil {
		b.Set(i)
	}
	return b
}

// NewBigIntFromInt64 creates a BigInt from an int64
func NewBigIntFromInt64(i int64) BigInt {
	var b BigInt
	b.SetInt64(i)
	return b
}

// MarshalJSON implements json.Marshaler, emitting a quoted decimal string
func (b BigInt) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(b.String())), nil
}

// UnmarshalJSON implements json.Unmarshaler, accepting either a quoted
// decimal string or a bare integer token
func (b *BigInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		b.SetInt64(0)
		return nil
	}
	if _, ok := b.SetString(s, 10); !ok {
		return fmt.Errorf("invalid integer value: %s", s)
	}
	return nil
}

// PointSystem is a configured reward program with its own on-chain
// distribution pool. FlowRate is static configuration; TotalUnits is
// refreshed from chain state once per reconciliation batch.
type PointSystem struct {
	ID          int      `json:"id" mapstructure:"id"`
	Name        string   `json:"name" mapstructure:"name"`
	PoolAddress string   `json:"poolAddress" mapstructure:"pool_address"`
	FlowRate    BigInt   `json:"flowRate" mapstructure:"-"`
	TotalUnits  *big.Int `json:"-" mapstructure:"-"`
}

// Allocation is an off-chain-recorded point entitlement for an address
// within a point system
type Allocation struct {
	PointSystemID  int       `json:"pointSystemId"`
	AccountAddress string    `json:"accountAddress"`
	Points         int64     `json:"points"`
	MaxCreatedAt   time.Time `json:"maxCreatedAt"`
}

// PointSystemEligibility is the reconciled standing of one address within one
// point system: the off-chain entitlement merged with on-chain claim state
// and the derived flow-rate estimate.
type PointSystemEligibility struct {
	PointSystemID     int    `json:"pointSystemId"`
	PointSystemName   string `json:"pointSystemName"`
	Eligible          bool   `json:"eligible"`
	Points            int64  `json:"points"`
	ClaimedAmount     BigInt `json:"claimedAmount"`
	NeedToClaim       bool   `json:"needToClaim"`
	PoolAddress       string `json:"poolAddress"`
	EstimatedFlowRate BigInt `json:"estimatedFlowRate"`
}

// AddressEligibility is the consolidated record for one address across all
// configured point systems, in configuration order
type AddressEligibility struct {
	Address        string                   `json:"address"`
	HasAllocations bool                     `json:"hasAllocations"`
	ClaimNeeded    bool                     `json:"claimNeeded"`
	TotalFlowRate  BigInt                   `json:"totalFlowRate"`
	Eligibility    []PointSystemEligibility `json:"eligibility"`
}

// NormalizeAddress lowercases an address for case-insensitive keying
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// NormalizeAddresses lowercases a list of addresses
func NormalizeAddresses(addresses []string) []string {
	normalized := make([]string, len(addresses))
	for i, addr := range addresses {
		normalized[i] = NormalizeAddress(addr)
	}
	return normalized
}

// ValidAddress reports whether the given string is a well-formed Ethereum address
func ValidAddress(address string) bool {
	return common.IsHexAddress(address)
}

// IsZeroAddress reports whether the given address is the zero-address
// sentinel used for "no locker"
func IsZeroAddress(address string) bool {
	return address == "" || NormalizeAddress(address) == ETHEREUM_ZERO_ADDRESS
}
