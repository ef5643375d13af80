package api

import "google.golang.org/protobuf/types/known/timestamppb"

type Expense struct {
	Id               string                 `json:"id"`
	TripId           string                 `json:"tripId"`
	Title            string                 `json:"title"`
	Category         string                 `json:"category"`
	AmountTotalMinor int64                  `json:"amountTotalMinor"`
	CurrencyCode     string                 `json:"currencyCode"`
	AmountDisplay    string                 `json:"amountDisplay,omitempty"`
	PaidByUserId     string                 `json:"paidByUserId,omitempty"`
	PaymentMethod    string                 `json:"paymentMethod,omitempty"`
	ExpenseDateTime  *timestamppb.Timestamp `json:"expenseDateTime,omitempty"`
	CreatedAt        *timestamppb.Timestamp `json:"createdAt,omitempty"`
	Splits           []*ExpenseSplit        `json:"splits,omitempty"`
}

type ExpenseSplit struct {
	ExpenseId       string                 `json:"expenseId"`
	UserId          string                 `json:"userId"`
	AmountOwedMinor int64                  `json:"amountOwedMinor"`
	IsSettled       bool                   `json:"isSettled"`
	SettledAt       *timestamppb.Timestamp `json:"settledAt,omitempty"`
}

type SplitInput struct {
	UserId          string `json:"userId"`
	AmountOwedMinor int64  `json:"amountOwedMinor"`
}

// ExpenseInput carries the writable fields of an expense. Either Splits or
// SplitEvenlyAmong may be set, not both. Both empty means not shared yet.
// ExpenseInput carries the amount either as AmountTotalMinor or as a
// major-unit decimal string in AmountTotal ("12.50"), not both.
type ExpenseInput struct {
	Title            string                 `json:"title,omitempty"`
	Category         string                 `json:"category"`
	AmountTotalMinor int64                  `json:"amountTotalMinor"`
	AmountTotal      string                 `json:"amountTotal,omitempty"`
	CurrencyCode     string                 `json:"currencyCode,omitempty"`
	PaidByUserId     string                 `json:"paidByUserId,omitempty"`
	PaymentMethod    string                 `json:"paymentMethod,omitempty"`
	ExpenseDateTime  *timestamppb.Timestamp `json:"expenseDateTime,omitempty"`
	Splits           []*SplitInput          `json:"splits,omitempty"`
	SplitEvenlyAmong []string               `json:"splitEvenlyAmong,omitempty"`
}

type CreateExpenseRequest struct {
	TripId  string        `json:"tripId"`
	Expense *ExpenseInput `json:"expense"`
}

type CreateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type UpdateExpenseRequest struct {
	ExpenseId string        `json:"expenseId"`
	Expense   *ExpenseInput `json:"expense"`
}

type UpdateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseId string `json:"expenseId"`
}

type DeleteExpenseResponse struct{}

type GetExpenseRequest struct {
	ExpenseId string `json:"expenseId"`
}

type GetExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type ListExpensesRequest struct {
	TripId string `json:"tripId"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

// SplitShare is one participant row of an in-progress split edit.
type SplitShare struct {
	UserId      string  `json:"userId"`
	AmountMinor int64   `json:"amountMinor"`
	Percentage  float64 `json:"percentage"`
	Locked      bool    `json:"locked,omitempty"`
}

// SplitSession is the client-held state of a split edit.
type SplitSession struct {
	TotalMinor int64         `json:"totalMinor"`
	Mode       string        `json:"mode"`
	Shares     []*SplitShare `json:"shares"`
}

// SplitEditEvent is one edit: set-even, set-amount, set-percentage,
// toggle-lock, add, remove or redistribute.
type SplitEditEvent struct {
	Kind        string  `json:"kind"`
	UserId      string  `json:"userId,omitempty"`
	AmountMinor int64   `json:"amountMinor,omitempty"`
	Percentage  float64 `json:"percentage,omitempty"`
}

type EditSplitRequest struct {
	Session *SplitSession   `json:"session"`
	Event   *SplitEditEvent `json:"event"`
}

type EditSplitResponse struct {
	Session         *SplitSession `json:"session"`
	UnassignedMinor int64         `json:"unassignedMinor"`
	// Problem explains why the session cannot be saved yet; empty when it can.
	Problem string `json:"problem,omitempty"`
}
