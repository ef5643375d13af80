package models

import "time"

// Category groups expenses for display.
type Category string

const (
	CategoryAccommodation Category = "accommodation"
	CategoryTransport     Category = "transport"
	CategoryFood          Category = "food"
	CategoryActivity      Category = "activity"
	CategoryShopping      Category = "shopping"
	CategoryOther         Category = "other"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryAccommodation, CategoryTransport, CategoryFood, CategoryActivity, CategoryShopping, CategoryOther:
		return true
	}
	return false
}

// PaymentMethod records how the payer settled the bill with the merchant.
type PaymentMethod string

const (
	PaymentNone   PaymentMethod = ""
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentAlipay PaymentMethod = "alipay"
	PaymentWechat PaymentMethod = "wechat"
)

// Valid reports whether m is empty or a known method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentNone, PaymentCash, PaymentCard, PaymentAlipay, PaymentWechat:
		return true
	}
	return false
}

// Expense is one shared cost within a trip.
//
// Changing AmountTotalMinor or PaidByUserID does not touch existing splits;
// callers re-run the split allocator and replace the split set.
type Expense struct {
	ID       string
	TripID   string
	Title    string
	Category Category

	// AmountTotalMinor is the full amount in minor units of CurrencyCode.
	AmountTotalMinor int64
	CurrencyCode     string

	// PaidByUserID is empty for unattributed expenses.
	PaidByUserID  string
	PaymentMethod PaymentMethod

	ExpenseDateTime time.Time
	CreatedAt       int64

	// Splits are the per-participant shares, at most one per user.
	Splits []ExpenseSplit
}

// HasPayer reports whether the expense has a recorded payer.
func (e *Expense) HasPayer() bool {
	return e.PaidByUserID != ""
}

// Split returns the split owned by userID, if any.
func (e *Expense) Split(userID string) (ExpenseSplit, bool) {
	for _, s := range e.Splits {
		if s.UserID == userID {
			return s, true
		}
	}
	return ExpenseSplit{}, false
}

// ExpenseSplit is one participant's owed share of an expense.
// (ExpenseID, UserID) is unique.
type ExpenseSplit struct {
	ID              string
	ExpenseID       string
	UserID          string
	AmountOwedMinor int64
	IsSettled       bool

	// SettledAt is nil while the split is unsettled.
	SettledAt *time.Time
}

// SplitKey identifies a split by its natural key.
type SplitKey struct {
	ExpenseID string
	UserID    string
}
