package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/koyostar/ItinaviCN-sub000/internal/models"
	"github.com/koyostar/ItinaviCN-sub000/internal/storage"
)

type expenseRow struct {
	ID               string         `db:"id"`
	TripID           string         `db:"trip_id"`
	Title            string         `db:"title"`
	Category         string         `db:"category"`
	AmountTotalMinor int64          `db:"amount_total_minor"`
	CurrencyCode     string         `db:"currency_code"`
	PaidByUserID     sql.NullString `db:"paid_by_user_id"`
	PaymentMethod    sql.NullString `db:"payment_method"`
	ExpenseDateTime  int64          `db:"expense_date_time"`
	CreatedAt        int64          `db:"created_at"`
}

func (r expenseRow) model() models.Expense {
	return models.Expense{
		ID:               r.ID,
		TripID:           r.TripID,
		Title:            r.Title,
		Category:         models.Category(r.Category),
		AmountTotalMinor: r.AmountTotalMinor,
		CurrencyCode:     r.CurrencyCode,
		PaidByUserID:     r.PaidByUserID.String,
		PaymentMethod:    models.PaymentMethod(r.PaymentMethod.String),
		ExpenseDateTime:  time.Unix(r.ExpenseDateTime, 0).UTC(),
		CreatedAt:        r.CreatedAt,
	}
}

const expenseColumns = `id, trip_id, title, category, amount_total_minor, currency_code,
	paid_by_user_id, payment_method, expense_date_time, created_at`

type splitRow struct {
	ID              string        `db:"id"`
	ExpenseID       string        `db:"expense_id"`
	UserID          string        `db:"user_id"`
	AmountOwedMinor int64         `db:"amount_owed_minor"`
	IsSettled       bool          `db:"is_settled"`
	SettledAt       sql.NullInt64 `db:"settled_at"`
}

func (r splitRow) model() models.ExpenseSplit {
	split := models.ExpenseSplit{
		ID:              r.ID,
		ExpenseID:       r.ExpenseID,
		UserID:          r.UserID,
		AmountOwedMinor: r.AmountOwedMinor,
		IsSettled:       r.IsSettled,
	}
	if r.SettledAt.Valid {
		at := time.Unix(r.SettledAt.Int64, 0).UTC()
		split.SettledAt = &at
	}
	return split
}

const splitColumns = `id, expense_id, user_id, amount_owed_minor, is_settled, settled_at`

func settledAtValue(at *time.Time) sql.NullInt64 {
	if at == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: at.Unix(), Valid: true}
}

// CreateExpense inserts an expense and its split set in a transaction.
func (s *Store) CreateExpense(ctx context.Context, expense *models.Expense) error {
	// Generate ID if not set
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.ExpenseDateTime.IsZero() {
		expense.ExpenseDateTime = time.Unix(expense.CreatedAt, 0).UTC()
	}
	// Auto-generate title if empty
	if expense.Title == "" {
		expense.Title = generateTitle(expense.Category, expense.ExpenseDateTime)
	}
	expense.CurrencyCode = strings.ToUpper(expense.CurrencyCode)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		s.rebind(`INSERT INTO expenses (`+expenseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		expense.ID, expense.TripID, expense.Title, string(expense.Category),
		expense.AmountTotalMinor, expense.CurrencyCode,
		nullString(expense.PaidByUserID), nullString(string(expense.PaymentMethod)),
		expense.ExpenseDateTime.Unix(), expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	if err := s.insertSplits(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) insertSplits(ctx context.Context, tx *sqlx.Tx, expense *models.Expense) error {
	query := s.rebind(`INSERT INTO expense_splits (id, expense_id, user_id, position, amount_owed_minor, is_settled, settled_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	for i := range expense.Splits {
		split := &expense.Splits[i]
		if split.ID == "" {
			split.ID = uuid.New().String()
		}
		split.ExpenseID = expense.ID
		if !split.IsSettled {
			split.SettledAt = nil
		}
		_, err := tx.ExecContext(ctx, query,
			split.ID, split.ExpenseID, split.UserID, i, split.AmountOwedMinor,
			split.IsSettled, settledAtValue(split.SettledAt),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: duplicate split for user %s", storage.ErrConflict, split.UserID)
			}
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}
	return nil
}

// UpdateExpense rewrites the expense row and replaces its split set.
// A split keeps its id and settled state when the same user stays with the
// same amount; any other change reopens it.
func (s *Store) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	expense.CurrencyCode = strings.ToUpper(expense.CurrencyCode)
	if expense.Title == "" {
		expense.Title = generateTitle(expense.Category, expense.ExpenseDateTime)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		s.rebind(`UPDATE expenses SET title = ?, category = ?, amount_total_minor = ?, currency_code = ?,
			paid_by_user_id = ?, payment_method = ?, expense_date_time = ?
			WHERE id = ?`),
		expense.Title, string(expense.Category), expense.AmountTotalMinor, expense.CurrencyCode,
		nullString(expense.PaidByUserID), nullString(string(expense.PaymentMethod)),
		expense.ExpenseDateTime.Unix(), expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	} else if n == 0 {
		return notFound("expense", expense.ID)
	}

	var previous []splitRow
	err = tx.SelectContext(ctx, &previous,
		s.rebind(`SELECT `+splitColumns+` FROM expense_splits WHERE expense_id = ?`),
		expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to load splits: %w", err)
	}
	kept := make(map[string]splitRow, len(previous))
	for _, r := range previous {
		kept[r.UserID] = r
	}
	for i := range expense.Splits {
		split := &expense.Splits[i]
		old, ok := kept[split.UserID]
		if ok && old.AmountOwedMinor == split.AmountOwedMinor {
			prior := old.model()
			split.ID = prior.ID
			split.IsSettled = prior.IsSettled
			split.SettledAt = prior.SettledAt
			continue
		}
		split.ID = ""
		split.IsSettled = false
		split.SettledAt = nil
	}

	if _, err := tx.ExecContext(ctx, s.rebind("DELETE FROM expense_splits WHERE expense_id = ?"), expense.ID); err != nil {
		return fmt.Errorf("failed to clear splits: %w", err)
	}
	if err := s.insertSplits(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteExpense removes an expense and its splits.
func (s *Store) DeleteExpense(ctx context.Context, expenseID string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.rebind("DELETE FROM expense_splits WHERE expense_id = ?"), expenseID); err != nil {
		return fmt.Errorf("failed to delete splits: %w", err)
	}

	result, err := tx.ExecContext(ctx, s.rebind("DELETE FROM expenses WHERE id = ?"), expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	} else if n == 0 {
		return notFound("expense", expenseID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense with its splits in creation order.
func (s *Store) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	var row expenseRow
	err := s.db.GetContext(ctx, &row,
		s.rebind(`SELECT `+expenseColumns+` FROM expenses WHERE id = ?`),
		expenseID,
	)
	if isNoRows(err) {
		return nil, notFound("expense", expenseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	expenses := []models.Expense{row.model()}
	if err := s.attachSplits(ctx, expenses); err != nil {
		return nil, err
	}
	return &expenses[0], nil
}

// ListTripExpenses retrieves every expense of a trip, oldest first.
func (s *Store) ListTripExpenses(ctx context.Context, tripID string) ([]models.Expense, error) {
	var rows []expenseRow
	err := s.db.SelectContext(ctx, &rows,
		s.rebind(`SELECT `+expenseColumns+` FROM expenses WHERE trip_id = ?
			ORDER BY expense_date_time, created_at, id`),
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	expenses := make([]models.Expense, len(rows))
	for i, r := range rows {
		expenses[i] = r.model()
	}
	if err := s.attachSplits(ctx, expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

// attachSplits loads the splits of every expense with a single query.
func (s *Store) attachSplits(ctx context.Context, expenses []models.Expense) error {
	if len(expenses) == 0 {
		return nil
	}
	ids := make([]string, len(expenses))
	index := make(map[string]int, len(expenses))
	for i, e := range expenses {
		ids[i] = e.ID
		index[e.ID] = i
	}

	query, args, err := s.in(`SELECT `+splitColumns+` FROM expense_splits
		WHERE expense_id IN (?) ORDER BY expense_id, position`, ids)
	if err != nil {
		return fmt.Errorf("failed to build split query: %w", err)
	}
	var rows []splitRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return fmt.Errorf("failed to get splits: %w", err)
	}
	for _, r := range rows {
		i := index[r.ExpenseID]
		expenses[i].Splits = append(expenses[i].Splits, r.model())
	}
	return nil
}

// TransitionSplit flips is_settled only if it currently holds the opposite
// value and returns the row as stored afterwards.
func (s *Store) TransitionSplit(ctx context.Context, key models.SplitKey, settled bool, at time.Time) (models.ExpenseSplit, error) {
	stamp := sql.NullInt64{}
	if settled {
		stamp = sql.NullInt64{Int64: at.Unix(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		s.rebind(`UPDATE expense_splits SET is_settled = ?, settled_at = ?
			WHERE expense_id = ? AND user_id = ? AND is_settled = ?`),
		settled, stamp, key.ExpenseID, key.UserID, !settled,
	)
	if err != nil {
		return models.ExpenseSplit{}, fmt.Errorf("failed to update split: %w", err)
	}
	return s.getSplit(ctx, s.db, key)
}

// SettleSplits settles every key in one transaction. A key whose split is
// missing or already settled aborts the whole batch with ErrConflict.
func (s *Store) SettleSplits(ctx context.Context, keys []models.SplitKey, at time.Time) ([]models.ExpenseSplit, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	update := s.rebind(`UPDATE expense_splits SET is_settled = ?, settled_at = ?
		WHERE expense_id = ? AND user_id = ? AND is_settled = ?`)
	for _, key := range keys {
		result, err := tx.ExecContext(ctx, update, true, at.Unix(), key.ExpenseID, key.UserID, false)
		if err != nil {
			return nil, fmt.Errorf("failed to settle split: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to check rows affected: %w", err)
		}
		if n != 1 {
			return nil, fmt.Errorf("%w: split %s/%s changed concurrently", storage.ErrConflict, key.ExpenseID, key.UserID)
		}
	}

	settled := make([]models.ExpenseSplit, 0, len(keys))
	for _, key := range keys {
		split, err := s.getSplit(ctx, tx, key)
		if err != nil {
			return nil, err
		}
		settled = append(settled, split)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return settled, nil
}

func (s *Store) getSplit(ctx context.Context, q sqlx.QueryerContext, key models.SplitKey) (models.ExpenseSplit, error) {
	var row splitRow
	err := sqlx.GetContext(ctx, q, &row,
		s.rebind(`SELECT `+splitColumns+` FROM expense_splits WHERE expense_id = ? AND user_id = ?`),
		key.ExpenseID, key.UserID,
	)
	if isNoRows(err) {
		return models.ExpenseSplit{}, notFound("split", key.ExpenseID+"/"+key.UserID)
	}
	if err != nil {
		return models.ExpenseSplit{}, fmt.Errorf("failed to get split: %w", err)
	}
	return row.model(), nil
}

// generateTitle creates a default title from the category and date.
func generateTitle(category models.Category, at time.Time) string {
	if category == "" {
		category = models.CategoryOther
	}
	name := string(category)
	name = strings.ToUpper(name[:1]) + name[1:]
	if at.IsZero() {
		at = time.Now()
	}
	return fmt.Sprintf("%s - %s", name, at.Format("Jan 2, 2006"))
}
