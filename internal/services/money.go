package services

import "math"

// basisPointsScale is the divisor for basis-point percentages (10000 = 100%).
const basisPointsScale = 10000

// roundHalfUpDiv divides num by den rounding halves away from zero. All money
// arithmetic stays in int64 minor units end to end; this is the single place
// percentage rounding happens.
func roundHalfUpDiv(num, den int64) int64 {
	if den == 0 {
		return 0
	}
	if den < 0 {
		num, den = -num, -den
	}
	quotient := num / den
	remainder := num % den
	if remainder < 0 {
		remainder = -remainder
	}
	if 2*remainder >= den {
		if num < 0 {
			return quotient - 1
		}
		return quotient + 1
	}
	return quotient
}

// percentageOf applies a basis-point rate to an amount with half-up rounding.
func percentageOf(amount, basisPoints int64) int64 {
	return roundHalfUpDiv(amount*basisPoints, basisPointsScale)
}

// roundHalfUpFloat converts a formula result expressed in minor units to int64.
func roundHalfUpFloat(value float64) int64 {
	if value >= 0 {
		return int64(math.Floor(value + 0.5))
	}
	return int64(math.Ceil(value - 0.5))
}
