// Package solana wraps the settlement-network client and transaction
// utilities used by the payment flow.
package solana

import (
	"math"

	"github.com/solpayhq/solpay/internal/domain/errors"
)

// ScaleToBaseUnits converts a whole-token amount into the mint's smallest
// denomination: amount * 10^decimals. Scaling is integer-only; an amount
// that would overflow uint64 is rejected rather than silently truncated.
func ScaleToBaseUnits(amount uint64, decimals uint8) (uint64, error) {
	if amount == 0 {
		return 0, errors.NewValidationError("tokenAmount", "must be greater than 0")
	}
	factor := uint64(1)
	for i := uint8(0); i < decimals; i++ {
		if factor > math.MaxUint64/10 {
			return 0, errors.ErrAmountOverflow
		}
		factor *= 10
	}
	if amount > math.MaxUint64/factor {
		return 0, errors.ErrAmountOverflow
	}
	return amount * factor, nil
}
