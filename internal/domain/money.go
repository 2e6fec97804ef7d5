package domain

import "math"

// ToCents converts a two-decimal amount into integer cents.
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func FromCents(cents int64) float64 {
	return float64(cents) / 100
}

// LineTotal is price × quantity in cents.
func LineTotal(price float64, quantity int) int64 {
	return ToCents(price) * int64(quantity)
}

func SumCents(lines ...int64) int64 {
	var total int64
	for _, l := range lines {
		total += l
	}
	return total
}
