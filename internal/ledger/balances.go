package ledger

import (
	"fmt"
	"sort"

	"github.com/koyostar/ItinaviCN-sub000/internal/models"
	"github.com/koyostar/ItinaviCN-sub000/internal/money"
)

// IsEffectivelySettled is the single settled-ness rule used by every
// aggregate: a split counts as settled when it is stored as settled or when
// it belongs to the expense's payer, who cannot owe themselves.
func IsEffectivelySettled(split models.ExpenseSplit, expense *models.Expense) bool {
	if split.IsSettled {
		return true
	}
	return expense.HasPayer() && split.UserID == expense.PaidByUserID
}

// BalanceSummary is one user's position within a trip.
//
// TotalOwed counts every split of the user, settled or not, while OwesTo only
// holds unsettled debts. NetBalance = TotalPaid - TotalOwed.
type BalanceSummary struct {
	UserID     string
	TotalPaid  int64
	TotalOwed  int64
	NetBalance int64

	// OwesTo maps creditor ID -> amount this user still owes them.
	OwesTo map[string]int64

	// OwedBy maps debtor ID -> amount they still owe this user.
	OwedBy map[string]int64
}

// Summarize computes userID's BalanceSummary over a trip's expenses.
//
// Amounts in different currencies are summed without conversion. A sum
// that does not fit in an int64 is an ErrValidation.
func Summarize(userID string, expenses []models.Expense) (BalanceSummary, error) {
	summary := BalanceSummary{
		UserID: userID,
		OwesTo: make(map[string]int64),
		OwedBy: make(map[string]int64),
	}

	for i := range expenses {
		expense := &expenses[i]
		paidByUser := expense.HasPayer() && expense.PaidByUserID == userID
		if paidByUser {
			if err := accumulate(&summary.TotalPaid, expense.AmountTotalMinor); err != nil {
				return BalanceSummary{}, err
			}
		}

		for _, split := range expense.Splits {
			if split.UserID == userID {
				if err := accumulate(&summary.TotalOwed, split.AmountOwedMinor); err != nil {
					return BalanceSummary{}, err
				}
			}
			if IsEffectivelySettled(split, expense) || !expense.HasPayer() {
				continue
			}
			var err error
			switch {
			case paidByUser && split.UserID != userID:
				err = accumulateKey(summary.OwedBy, split.UserID, split.AmountOwedMinor)
			case !paidByUser && split.UserID == userID:
				err = accumulateKey(summary.OwesTo, expense.PaidByUserID, split.AmountOwedMinor)
			}
			if err != nil {
				return BalanceSummary{}, err
			}
		}
	}

	// Both totals are non-negative, so the difference cannot overflow.
	summary.NetBalance = summary.TotalPaid - summary.TotalOwed
	return summary, nil
}

func accumulate(total *int64, amount int64) error {
	sum, err := money.Add(*total, amount)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	*total = sum
	return nil
}

func accumulateKey(totals map[string]int64, key string, amount int64) error {
	v := totals[key]
	if err := accumulate(&v, amount); err != nil {
		return err
	}
	totals[key] = v
	return nil
}

// Matrix holds outstanding debts: Matrix[debtor][creditor] = amount.
type Matrix map[string]map[string]int64

// Get returns what debtor owes creditor (0 if nothing).
func (m Matrix) Get(debtor, creditor string) int64 {
	return m[debtor][creditor]
}

func (m Matrix) add(debtor, creditor string, amount int64) error {
	row, ok := m[debtor]
	if !ok {
		row = make(map[string]int64)
		m[debtor] = row
	}
	return accumulateKey(row, creditor, amount)
}

// Members returns every user appearing in the matrix, sorted.
func (m Matrix) Members() []string {
	seen := make(map[string]bool)
	for debtor, row := range m {
		seen[debtor] = true
		for creditor := range row {
			seen[creditor] = true
		}
	}
	members := make([]string, 0, len(seen))
	for id := range seen {
		members = append(members, id)
	}
	sort.Strings(members)
	return members
}

// BuildMatrix computes the trip-wide outstanding balance matrix. Only
// expenses with a payer contribute; effectively settled splits are skipped.
// A pair total that does not fit in an int64 is an ErrValidation.
func BuildMatrix(expenses []models.Expense) (Matrix, error) {
	matrix := make(Matrix)
	for i := range expenses {
		expense := &expenses[i]
		if !expense.HasPayer() {
			continue
		}
		for _, split := range expense.Splits {
			if IsEffectivelySettled(split, expense) {
				continue
			}
			if err := matrix.add(split.UserID, expense.PaidByUserID, split.AmountOwedMinor); err != nil {
				return nil, err
			}
		}
	}
	return matrix, nil
}
