package ledger

import (
	"errors"
	"math"
	"testing"

	"github.com/koyostar/ItinaviCN-sub000/internal/models"
)

func expense(id, payer string, total int64, splits ...models.ExpenseSplit) models.Expense {
	for i := range splits {
		splits[i].ExpenseID = id
	}
	return models.Expense{ID: id, TripID: "trip", AmountTotalMinor: total, CurrencyCode: "CNY", PaidByUserID: payer, Splits: splits}
}

func owed(user string, amount int64) models.ExpenseSplit {
	return models.ExpenseSplit{UserID: user, AmountOwedMinor: amount}
}

func settled(user string, amount int64) models.ExpenseSplit {
	return models.ExpenseSplit{UserID: user, AmountOwedMinor: amount, IsSettled: true}
}

func summarize(t *testing.T, userID string, expenses []models.Expense) BalanceSummary {
	t.Helper()
	s, err := Summarize(userID, expenses)
	if err != nil {
		t.Fatalf("Summarize(%s): %v", userID, err)
	}
	return s
}

func buildMatrix(t *testing.T, expenses []models.Expense) Matrix {
	t.Helper()
	m, err := BuildMatrix(expenses)
	if err != nil {
		t.Fatalf("BuildMatrix: %v", err)
	}
	return m
}

func TestIsEffectivelySettled(t *testing.T) {
	e := expense("e1", "alice", 900, owed("alice", 300), owed("bob", 300), settled("carol", 300))
	tests := []struct {
		split models.ExpenseSplit
		want  bool
	}{
		{e.Splits[0], true}, // payer's own split
		{e.Splits[1], false},
		{e.Splits[2], true},
	}
	for _, tt := range tests {
		if got := IsEffectivelySettled(tt.split, &e); got != tt.want {
			t.Errorf("IsEffectivelySettled(%s) = %v, want %v", tt.split.UserID, got, tt.want)
		}
	}

	unattributed := expense("e2", "", 100, owed("bob", 100))
	if IsEffectivelySettled(unattributed.Splits[0], &unattributed) {
		t.Error("split on an expense without payer is not implicitly settled")
	}
}

func TestSummarize(t *testing.T) {
	expenses := []models.Expense{
		expense("dinner", "alice", 900, owed("alice", 300), owed("bob", 300), owed("carol", 300)),
		expense("taxi", "bob", 600, owed("alice", 200), owed("bob", 200), settled("carol", 200)),
		expense("museum", "alice", 400, owed("bob", 200), owed("carol", 200)),
		expense("snacks", "", 100, owed("alice", 50), owed("bob", 50)),
	}

	alice := summarize(t, "alice", expenses)
	if alice.TotalPaid != 1300 {
		t.Errorf("alice TotalPaid = %d, want 1300", alice.TotalPaid)
	}
	if alice.TotalOwed != 550 {
		t.Errorf("alice TotalOwed = %d, want 550", alice.TotalOwed)
	}
	if alice.NetBalance != 750 {
		t.Errorf("alice NetBalance = %d, want 750", alice.NetBalance)
	}
	if alice.OwedBy["bob"] != 500 || alice.OwedBy["carol"] != 500 {
		t.Errorf("alice OwedBy = %v, want bob 500, carol 500", alice.OwedBy)
	}
	if alice.OwesTo["bob"] != 200 || len(alice.OwesTo) != 1 {
		t.Errorf("alice OwesTo = %v, want bob 200", alice.OwesTo)
	}
	if _, ok := alice.OwedBy["alice"]; ok {
		t.Error("alice must not owe herself")
	}

	carol := summarize(t, "carol", expenses)
	// Settled taxi split still counts toward TotalOwed, but not OwesTo.
	if carol.TotalOwed != 700 {
		t.Errorf("carol TotalOwed = %d, want 700", carol.TotalOwed)
	}
	if _, ok := carol.OwesTo["bob"]; ok {
		t.Errorf("carol OwesTo = %v, settled taxi split should be excluded", carol.OwesTo)
	}
	if carol.OwesTo["alice"] != 500 {
		t.Errorf("carol owes alice %d, want 500", carol.OwesTo["alice"])
	}
}

func TestSummarize_SettledAsymmetry(t *testing.T) {
	expenses := []models.Expense{
		expense("hotel", "bob", 800, settled("dana", 400), owed("bob", 400)),
		expense("train", "carol", 1200, owed("dana", 600), owed("carol", 600)),
	}
	dana := summarize(t, "dana", expenses)
	if dana.TotalOwed != 1000 {
		t.Errorf("TotalOwed = %d, want 1000", dana.TotalOwed)
	}
	var outstanding int64
	for _, amount := range dana.OwesTo {
		outstanding += amount
	}
	if outstanding != 600 || dana.OwesTo["carol"] != 600 {
		t.Errorf("OwesTo = %v, want only carol 600", dana.OwesTo)
	}
}

func TestSummarize_UnattributedExpense(t *testing.T) {
	expenses := []models.Expense{
		expense("tips", "", 300, owed("alice", 150), owed("bob", 150)),
	}
	s := summarize(t, "alice", expenses)
	if s.TotalPaid != 0 || s.TotalOwed != 150 {
		t.Errorf("paid/owed = %d/%d, want 0/150", s.TotalPaid, s.TotalOwed)
	}
	if len(s.OwesTo) != 0 || len(s.OwedBy) != 0 {
		t.Errorf("unattributed expense should not create debts: %+v", s)
	}
}

func TestBuildMatrix(t *testing.T) {
	expenses := []models.Expense{
		expense("e1", "alice", 900, owed("alice", 300), owed("bob", 300), owed("carol", 300)),
		expense("e2", "alice", 200, owed("bob", 200)),
		expense("e3", "bob", 500, owed("alice", 250), settled("carol", 250)),
		expense("e4", "", 100, owed("carol", 100)),
	}
	m := buildMatrix(t, expenses)

	tests := []struct {
		debtor, creditor string
		want             int64
	}{
		{"bob", "alice", 500},
		{"carol", "alice", 300},
		{"alice", "bob", 250},
		{"carol", "bob", 0},
		{"alice", "alice", 0},
	}
	for _, tt := range tests {
		if got := m.Get(tt.debtor, tt.creditor); got != tt.want {
			t.Errorf("matrix[%s][%s] = %d, want %d", tt.debtor, tt.creditor, got, tt.want)
		}
	}
	if _, ok := m["alice"]["alice"]; ok {
		t.Error("payer's own split must not appear in the matrix")
	}

	members := m.Members()
	if len(members) != 3 || members[0] != "alice" || members[2] != "carol" {
		t.Errorf("Members() = %v", members)
	}
}

func TestAggregatesRejectOverflow(t *testing.T) {
	half := int64(math.MaxInt64/2 + 1)
	tests := []struct {
		name     string
		expenses []models.Expense
	}{
		{
			name: "payer totals",
			expenses: []models.Expense{
				expense("e1", "alice", half, owed("alice", half)),
				expense("e2", "alice", half, owed("alice", half)),
			},
		},
		{
			name: "pair totals",
			expenses: []models.Expense{
				expense("e1", "alice", half, owed("bob", half)),
				expense("e2", "alice", half, owed("bob", half)),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Summarize("alice", tt.expenses); !errors.Is(err, ErrValidation) {
				t.Errorf("Summarize error = %v, want ErrValidation", err)
			}
		})
	}

	pair := tests[1].expenses
	if _, err := BuildMatrix(pair); !errors.Is(err, ErrValidation) {
		t.Errorf("BuildMatrix error = %v, want ErrValidation", err)
	}
	if _, err := ComputeSettlements("bob", pair); !errors.Is(err, ErrValidation) {
		t.Errorf("ComputeSettlements error = %v, want ErrValidation", err)
	}
	if _, err := ComputeAllSettlements(pair); !errors.Is(err, ErrValidation) {
		t.Errorf("ComputeAllSettlements error = %v, want ErrValidation", err)
	}
}
