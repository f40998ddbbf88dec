package lib

import (
	"fmt"
	"math/rand/v2"
)

// GenerateOrderNumber generates a human-readable order number in the format
// HY-XXXXXX where XXXXXX is a random alphanumeric string. The shared
// math/rand/v2 source is safe for concurrent placements; uniqueness is
// enforced by the unique constraint on orders.order_number, with collisions
// retried by the caller.
func GenerateOrderNumber() string {
	const chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 6

	randomPart := make([]byte, length)
	for i := range randomPart {
		randomPart[i] = chars[rand.IntN(len(chars))]
	}

	return fmt.Sprintf("HY-%s", randomPart)
}
