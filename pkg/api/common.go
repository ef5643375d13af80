package api

// Money is an amount in minor units with its display form.
type Money struct {
	AmountMinor int64  `json:"amountMinor"`
	Currency    string `json:"currency,omitempty"`
	Display     string `json:"display,omitempty"`
}

// GetAmountMinor returns the amount, or zero for a nil Money.
func (m *Money) GetAmountMinor() int64 {
	if m == nil {
		return 0
	}
	return m.AmountMinor
}
