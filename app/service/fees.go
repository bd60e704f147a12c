package service

import "fmt"

// SplitFee divides a gross amount between platform and photographer. The
// platform fee is grossCents*feeBps/10000 rounded half-up; the seller amount
// is always the remainder, so platform + seller == gross for every input.
// Ties round half-up: 1.5 cents of fee becomes 2 cents for the platform.
func SplitFee(grossCents int64, feeBps int32) (int64, int64, error) {
	if grossCents < 0 {
		return 0, 0, fmt.Errorf("%w: gross amount must be >= 0, got %d", ErrInvalidRequest, grossCents)
	}
	if feeBps < 0 || feeBps > 10000 {
		return 0, 0, fmt.Errorf("%w: fee bps must be between 0 and 10000, got %d", ErrInvalidRequest, feeBps)
	}

	platform := (grossCents*int64(feeBps) + 5000) / 10000
	seller := grossCents - platform

	return platform, seller, nil
}
