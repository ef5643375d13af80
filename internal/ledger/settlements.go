package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/koyostar/ItinaviCN-sub000/internal/models"
)

// Direction says which way money moves in a settlement instruction.
type Direction string

const (
	DirectionPay     Direction = "pay"
	DirectionReceive Direction = "receive"
)

// SettlementInstruction is one netted debt between a member and a counterparty.
type SettlementInstruction struct {
	CounterpartyID string
	Direction      Direction
	Amount         int64
}

// ComputeSettlements nets memberID's outstanding debts per counterparty.
// A positive net becomes a Pay instruction, a negative one a Receive
// instruction; fully offset pairs produce nothing. Output is sorted by
// counterparty ID.
func ComputeSettlements(memberID string, expenses []models.Expense) ([]SettlementInstruction, error) {
	matrix, err := BuildMatrix(expenses)
	if err != nil {
		return nil, err
	}
	return settlementsFrom(memberID, matrix), nil
}

// ComputeAllSettlements returns the netted instructions for every member who
// has an outstanding balance.
func ComputeAllSettlements(expenses []models.Expense) (map[string][]SettlementInstruction, error) {
	matrix, err := BuildMatrix(expenses)
	if err != nil {
		return nil, err
	}
	result := make(map[string][]SettlementInstruction)
	for _, member := range matrix.Members() {
		if instructions := settlementsFrom(member, matrix); len(instructions) > 0 {
			result[member] = instructions
		}
	}
	return result, nil
}

func settlementsFrom(memberID string, matrix Matrix) []SettlementInstruction {
	owesTo := matrix[memberID]
	owedBy := make(map[string]int64)
	for debtor, row := range matrix {
		if debtor == memberID {
			continue
		}
		if amount, ok := row[memberID]; ok {
			owedBy[debtor] = amount
		}
	}

	counterparties := make(map[string]bool, len(owesTo)+len(owedBy))
	for c := range owesTo {
		counterparties[c] = true
	}
	for c := range owedBy {
		counterparties[c] = true
	}
	ids := make([]string, 0, len(counterparties))
	for c := range counterparties {
		if c != memberID {
			ids = append(ids, c)
		}
	}
	sort.Strings(ids)

	instructions := []SettlementInstruction{}
	for _, c := range ids {
		net := owesTo[c] - owedBy[c]
		switch {
		case net > 0:
			instructions = append(instructions, SettlementInstruction{CounterpartyID: c, Direction: DirectionPay, Amount: net})
		case net < 0:
			instructions = append(instructions, SettlementInstruction{CounterpartyID: c, Direction: DirectionReceive, Amount: -net})
		}
	}
	return instructions
}

// CanToggleSplit is the permission predicate for settle/unsettle: only the
// expense's payer or the split's own user may flip a split.
func CanToggleSplit(actorID string, split models.ExpenseSplit, expense *models.Expense) bool {
	if actorID == "" {
		return false
	}
	return actorID == split.UserID || (expense.HasPayer() && actorID == expense.PaidByUserID)
}

// SplitRepository is the persistence the Settler drives.
type SplitRepository interface {
	// GetExpense returns the expense with its splits, or an error wrapping ErrNotFound.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListTripExpenses returns every expense of the trip with its splits.
	ListTripExpenses(ctx context.Context, tripID string) ([]models.Expense, error)

	// TransitionSplit sets is_settled to settled only if it currently holds the
	// opposite value, stamping settledAt (or clearing it when unsettling).
	// It returns the row as stored after the attempt, whether or not it changed.
	TransitionSplit(ctx context.Context, key models.SplitKey, settled bool, at time.Time) (models.ExpenseSplit, error)

	// SettleSplits settles every key in one transaction. If any row is no
	// longer unsettled it rolls back and returns an error wrapping ErrConflict.
	SettleSplits(ctx context.Context, keys []models.SplitKey, at time.Time) ([]models.ExpenseSplit, error)
}

// TransitionObserver is notified after each settle/unsettle attempt.
type TransitionObserver func(op string, err error)

// Settler executes settle, unsettle and batch-settle transitions.
type Settler struct {
	repo     SplitRepository
	now      func() time.Time
	observer TransitionObserver
}

// SettlerOption configures a Settler.
type SettlerOption func(*Settler)

// WithClock overrides the timestamp source (tests).
func WithClock(now func() time.Time) SettlerOption {
	return func(s *Settler) { s.now = now }
}

// WithObserver registers a callback for every transition outcome.
func WithObserver(o TransitionObserver) SettlerOption {
	return func(s *Settler) { s.observer = o }
}

// NewSettler creates a Settler over repo.
func NewSettler(repo SplitRepository, opts ...SettlerOption) *Settler {
	s := &Settler{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Settle marks the split of userID on expenseID as settled on behalf of actorID.
// Settling a settled split returns it unchanged.
func (s *Settler) Settle(ctx context.Context, actorID, expenseID, userID string) (models.ExpenseSplit, error) {
	split, err := s.transition(ctx, actorID, expenseID, userID, true)
	s.observe("settle", err)
	return split, err
}

// Unsettle reopens a settled split. Unsettling an unsettled split returns it unchanged.
func (s *Settler) Unsettle(ctx context.Context, actorID, expenseID, userID string) (models.ExpenseSplit, error) {
	split, err := s.transition(ctx, actorID, expenseID, userID, false)
	s.observe("unsettle", err)
	return split, err
}

func (s *Settler) transition(ctx context.Context, actorID, expenseID, userID string, settled bool) (models.ExpenseSplit, error) {
	expense, err := s.repo.GetExpense(ctx, expenseID)
	if err != nil {
		return models.ExpenseSplit{}, err
	}
	split, ok := expense.Split(userID)
	if !ok {
		return models.ExpenseSplit{}, fmt.Errorf("%w: no split for user %s on expense %s", ErrNotFound, userID, expenseID)
	}
	if expense.HasPayer() && split.UserID == expense.PaidByUserID {
		return models.ExpenseSplit{}, fmt.Errorf("%w: the payer's own split cannot be toggled", ErrValidation)
	}
	if !CanToggleSplit(actorID, split, expense) {
		return models.ExpenseSplit{}, fmt.Errorf("%w: only the payer or the split's user may change it", ErrPermission)
	}
	if split.IsSettled == settled {
		return split, nil
	}

	current, err := s.repo.TransitionSplit(ctx, models.SplitKey{ExpenseID: expenseID, UserID: userID}, settled, s.now())
	if err != nil {
		return models.ExpenseSplit{}, err
	}
	slog.Debug("Split transitioned",
		"expense_id", expenseID,
		"user_id", userID,
		"settled", current.IsSettled,
		"actor_id", actorID,
	)
	return current, nil
}

// BatchSettlePair settles every outstanding split between userA and userB in
// the trip, in either direction, as one all-or-nothing operation. Splits
// involving anyone else are untouched. actorID must be one of the pair.
func (s *Settler) BatchSettlePair(ctx context.Context, actorID, tripID, userA, userB string) ([]models.ExpenseSplit, error) {
	settled, err := s.batchSettlePair(ctx, actorID, tripID, userA, userB)
	s.observe("settle_pair", err)
	return settled, err
}

func (s *Settler) batchSettlePair(ctx context.Context, actorID, tripID, userA, userB string) ([]models.ExpenseSplit, error) {
	if userA == "" || userB == "" || userA == userB {
		return nil, fmt.Errorf("%w: settle pair needs two distinct users", ErrValidation)
	}
	if actorID != userA && actorID != userB {
		return nil, fmt.Errorf("%w: only %s or %s may settle between them", ErrPermission, userA, userB)
	}

	expenses, err := s.repo.ListTripExpenses(ctx, tripID)
	if err != nil {
		return nil, err
	}
	keys := PairSplitKeys(expenses, userA, userB)
	if len(keys) == 0 {
		return []models.ExpenseSplit{}, nil
	}

	settled, err := s.repo.SettleSplits(ctx, keys, s.now())
	if err != nil {
		return nil, err
	}
	slog.Info("Settled pair", "trip_id", tripID, "user_a", userA, "user_b", userB, "splits", len(settled))
	return settled, nil
}

// PairSplitKeys lists the outstanding splits where one of the pair owes the other.
func PairSplitKeys(expenses []models.Expense, userA, userB string) []models.SplitKey {
	var keys []models.SplitKey
	for i := range expenses {
		expense := &expenses[i]
		if !expense.HasPayer() {
			continue
		}
		for _, split := range expense.Splits {
			if IsEffectivelySettled(split, expense) {
				continue
			}
			between := (split.UserID == userA && expense.PaidByUserID == userB) ||
				(split.UserID == userB && expense.PaidByUserID == userA)
			if between {
				keys = append(keys, models.SplitKey{ExpenseID: expense.ID, UserID: split.UserID})
			}
		}
	}
	return keys
}

func (s *Settler) observe(op string, err error) {
	if s.observer != nil {
		s.observer(op, err)
	}
}
