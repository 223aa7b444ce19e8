package domain

import "github.com/shopspring/decimal"

// SplitsTotal sums split amounts.
func SplitsTotal(splits []SplitInput) decimal.Decimal {
	total := decimal.Zero
	for _, split := range splits {
		total = total.Add(split.SplitAmount)
	}
	return total
}

// SplitsMatch reports whether |sum(splits) - amount| < tolerance. A difference of
// exactly one tolerance unit is a mismatch, so with cent amounts and the default
// 0.01 the splits must add up to the cent.
func SplitsMatch(amount decimal.Decimal, splits []SplitInput, tolerance decimal.Decimal) bool {
	return SplitsTotal(splits).Sub(amount).Abs().LessThan(tolerance)
}

func StoredSplitInputs(splits []LedgerEntrySplit) []SplitInput {
	inputs := make([]SplitInput, 0, len(splits))
	for _, split := range splits {
		inputs = append(inputs, SplitInput{
			ChartAccountID: split.ChartAccountID,
			CostCenterID:   split.CostCenterID,
			SplitAmount:    split.SplitAmount,
		})
	}
	return inputs
}
