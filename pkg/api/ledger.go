package api

type CounterpartyAmount struct {
	UserId string `json:"userId"`
	Amount *Money `json:"amount"`
}

type BalanceSummary struct {
	UserId     string                `json:"userId"`
	TotalPaid  *Money                `json:"totalPaid"`
	TotalOwed  *Money                `json:"totalOwed"`
	NetBalance *Money                `json:"netBalance"`
	OwesTo     []*CounterpartyAmount `json:"owesTo,omitempty"`
	OwedBy     []*CounterpartyAmount `json:"owedBy,omitempty"`
}

// GetBalanceSummaryRequest defaults UserId to the caller.
type GetBalanceSummaryRequest struct {
	TripId string `json:"tripId"`
	UserId string `json:"userId,omitempty"`
}

type GetBalanceSummaryResponse struct {
	Summary *BalanceSummary `json:"summary"`
}

type MatrixEntry struct {
	DebtorId   string `json:"debtorId"`
	CreditorId string `json:"creditorId"`
	Amount     *Money `json:"amount"`
}

type GetBalanceMatrixRequest struct {
	TripId string `json:"tripId"`
}

type GetBalanceMatrixResponse struct {
	Members []string       `json:"members"`
	Entries []*MatrixEntry `json:"entries"`
}

type SettlementInstruction struct {
	CounterpartyId string `json:"counterpartyId"`
	Direction      string `json:"direction"`
	Amount         *Money `json:"amount"`
}

// GetSettlementsRequest defaults MemberId to the caller.
type GetSettlementsRequest struct {
	TripId   string `json:"tripId"`
	MemberId string `json:"memberId,omitempty"`
}

type GetSettlementsResponse struct {
	MemberId     string                   `json:"memberId"`
	Instructions []*SettlementInstruction `json:"instructions"`
}

type SettleSplitRequest struct {
	ExpenseId string `json:"expenseId"`
	UserId    string `json:"userId"`
}

type SettleSplitResponse struct {
	Split *ExpenseSplit `json:"split"`
}

type UnsettleSplitRequest struct {
	ExpenseId string `json:"expenseId"`
	UserId    string `json:"userId"`
}

type UnsettleSplitResponse struct {
	Split *ExpenseSplit `json:"split"`
}

type SettlePairRequest struct {
	TripId string `json:"tripId"`
	UserA  string `json:"userA"`
	UserB  string `json:"userB"`
}

type SettlePairResponse struct {
	Splits []*ExpenseSplit `json:"splits"`
}
