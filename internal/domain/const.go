package domain

const (
	// Blockchain constants
	ETHEREUM_ZERO_ADDRESS = "0x0000000000000000000000000000000000000000"

	// FLOW_RATE_SCALE is the fixed scale factor applied to intermediate
	// flow-rate arithmetic to preserve precision (10^9)
	FLOW_RATE_SCALE = 1_000_000_000

	// ACTIVITY_FLOOR_NONCE is the minimum on-chain transaction count an
	// address must exceed (strictly) before it qualifies for an automatic
	// point grant. Brand-new addresses with no history are not rewarded.
	ACTIVITY_FLOOR_NONCE = 5
)
