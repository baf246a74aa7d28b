package utils

import (
	crand "crypto/rand"
	"fmt"
	"math/big"
)

// SecureInt returns a uniform random integer in [0, bound) using crypto/rand.
// Case roll values must come from here, never from math/rand.
func SecureInt(bound int) (int, error) {
	if bound <= 0 {
		return 0, fmt.Errorf("bound must be positive, got %d", bound)
	}
	n, err := crand.Int(crand.Reader, big.NewInt(int64(bound)))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()), nil
}
