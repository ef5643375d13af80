package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/koyostar/ItinaviCN-sub000/internal/ledger"
	"github.com/koyostar/ItinaviCN-sub000/internal/models"
	"github.com/koyostar/ItinaviCN-sub000/internal/money"
	"github.com/koyostar/ItinaviCN-sub000/internal/storage"
	api "github.com/koyostar/ItinaviCN-sub000/pkg/api"
	"github.com/koyostar/ItinaviCN-sub000/pkg/api/apiconnect"
)

// ExpenseService implements the Connect ExpenseService
type ExpenseService struct {
	apiconnect.UnimplementedExpenseServiceHandler
	store storage.Store
	now   func() time.Time
}

// NewExpenseService creates a new ExpenseService with the given storage backend.
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store, now: time.Now}
}

// buildExpense validates input against the trip and fills an Expense.
// Payer and participants must be trip members.
func (s *ExpenseService) buildExpense(trip *models.Trip, in *api.ExpenseInput) (*models.Expense, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: expense is required", ledger.ErrValidation)
	}

	category := models.Category(in.Category)
	if category == "" {
		category = models.CategoryOther
	}
	if !category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ledger.ErrValidation, in.Category)
	}

	currency := strings.ToUpper(strings.TrimSpace(in.CurrencyCode))
	if currency == "" {
		currency = trip.DestinationCurrency
	}
	if !money.ValidCurrency(currency) {
		return nil, fmt.Errorf("%w: currency_code %q is not an ISO 4217 code", ledger.ErrValidation, in.CurrencyCode)
	}

	amount, err := amountFor(in, currency)
	if err != nil {
		return nil, err
	}

	method := models.PaymentMethod(in.PaymentMethod)
	if !method.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", ledger.ErrValidation, in.PaymentMethod)
	}

	if in.PaidByUserId != "" {
		if _, ok := trip.Member(in.PaidByUserId); !ok {
			return nil, fmt.Errorf("%w: payer %s is not a trip member", ledger.ErrValidation, in.PaidByUserId)
		}
	}

	when := s.now().UTC()
	if in.ExpenseDateTime != nil {
		if err := in.ExpenseDateTime.CheckValid(); err != nil {
			return nil, fmt.Errorf("%w: expense_date_time: %v", ledger.ErrValidation, err)
		}
		when = in.ExpenseDateTime.AsTime()
	}
	// Stored with second precision
	when = when.Truncate(time.Second)

	allocs, err := allocationsFor(in, amount)
	if err != nil {
		return nil, err
	}
	if len(allocs) > 0 {
		if err := ledger.ValidateAllocations(amount, allocs); err != nil {
			return nil, err
		}
	}

	expense := &models.Expense{
		TripID:           trip.ID,
		Title:            strings.TrimSpace(in.Title),
		Category:         category,
		AmountTotalMinor: amount,
		CurrencyCode:     currency,
		PaidByUserID:     in.PaidByUserId,
		PaymentMethod:    method,
		ExpenseDateTime:  when,
	}
	for _, a := range allocs {
		if _, ok := trip.Member(a.UserID); !ok {
			return nil, fmt.Errorf("%w: participant %s is not a trip member", ledger.ErrValidation, a.UserID)
		}
		expense.Splits = append(expense.Splits, models.ExpenseSplit{UserID: a.UserID, AmountOwedMinor: a.AmountMinor})
	}
	return expense, nil
}

// amountFor resolves the expense total in minor units of currency.
func amountFor(in *api.ExpenseInput, currency string) (int64, error) {
	amount := in.AmountTotalMinor
	if in.AmountTotal != "" {
		if amount != 0 {
			return 0, fmt.Errorf("%w: give either amount_total or amount_total_minor, not both", ledger.ErrValidation)
		}
		parsed, err := money.ParseMajor(in.AmountTotal, currency)
		if err != nil {
			return 0, fmt.Errorf("%w: amount_total %q: %v", ledger.ErrValidation, in.AmountTotal, err)
		}
		amount = parsed
	}
	if amount < 0 {
		return 0, fmt.Errorf("%w: amount_total_minor must not be negative", ledger.ErrValidation)
	}
	return amount, nil
}

// allocationsFor turns either an explicit split list or an even-split request
// into allocations. Neither means the expense is not shared yet.
func allocationsFor(in *api.ExpenseInput, total int64) ([]ledger.Allocation, error) {
	switch {
	case len(in.Splits) > 0 && len(in.SplitEvenlyAmong) > 0:
		return nil, fmt.Errorf("%w: give either splits or split_evenly_among, not both", ledger.ErrValidation)
	case len(in.SplitEvenlyAmong) > 0:
		return ledger.SplitEvenly(total, in.SplitEvenlyAmong)
	}
	allocs := make([]ledger.Allocation, 0, len(in.Splits))
	for _, sp := range in.Splits {
		if sp == nil {
			continue
		}
		allocs = append(allocs, ledger.Allocation{UserID: sp.UserId, AmountMinor: sp.AmountOwedMinor})
	}
	return allocs, nil
}

// CreateExpense records an expense and its split set.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	trip, err := editorTrip(ctx, s.store, req.Msg.TripId, userID)
	if err != nil {
		return nil, connectError(err)
	}

	expense, err := s.buildExpense(trip, req.Msg.Expense)
	if err != nil {
		slog.Warn("CreateExpense rejected", "trip_id", trip.ID, "error", err)
		return nil, connectError(err)
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("Failed to save expense", "trip_id", trip.ID, "error", err)
		return nil, connectError(err)
	}

	slog.Info("Expense created",
		"expense_id", expense.ID,
		"trip_id", trip.ID,
		"amount", money.Format(expense.AmountTotalMinor, expense.CurrencyCode),
		"splits", len(expense.Splits),
	)
	return connect.NewResponse(&api.CreateExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// UpdateExpense replaces an expense's fields and split set.
func (s *ExpenseService) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := s.store.GetExpense(ctx, req.Msg.ExpenseId)
	if err != nil {
		return nil, connectError(err)
	}
	trip, err := editorTrip(ctx, s.store, existing.TripID, userID)
	if err != nil {
		return nil, connectError(err)
	}

	expense, err := s.buildExpense(trip, req.Msg.Expense)
	if err != nil {
		slog.Warn("UpdateExpense rejected", "expense_id", existing.ID, "error", err)
		return nil, connectError(err)
	}
	expense.ID = existing.ID
	expense.CreatedAt = existing.CreatedAt
	if req.Msg.Expense.ExpenseDateTime == nil {
		expense.ExpenseDateTime = existing.ExpenseDateTime
	}

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		slog.Error("Failed to update expense", "expense_id", existing.ID, "error", err)
		return nil, connectError(err)
	}

	updated, err := s.store.GetExpense(ctx, expense.ID)
	if err != nil {
		return nil, connectError(err)
	}
	slog.Info("Expense updated", "expense_id", expense.ID, "trip_id", trip.ID)
	return connect.NewResponse(&api.UpdateExpenseResponse{Expense: toAPIExpense(updated)}), nil
}

// DeleteExpense removes an expense and its splits.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := s.store.GetExpense(ctx, req.Msg.ExpenseId)
	if err != nil {
		return nil, connectError(err)
	}
	if _, err := editorTrip(ctx, s.store, existing.TripID, userID); err != nil {
		return nil, connectError(err)
	}

	if err := s.store.DeleteExpense(ctx, existing.ID); err != nil {
		slog.Error("Failed to delete expense", "expense_id", existing.ID, "error", err)
		return nil, connectError(err)
	}

	slog.Info("Expense deleted", "expense_id", existing.ID, "trip_id", existing.TripID)
	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// GetExpense returns one expense with its splits.
func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	expense, err := s.store.GetExpense(ctx, req.Msg.ExpenseId)
	if err != nil {
		return nil, connectError(err)
	}
	if _, _, err := memberTrip(ctx, s.store, expense.TripID, userID); err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.GetExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// ListExpenses returns the trip's expenses in expense_date_time order.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if _, _, err := memberTrip(ctx, s.store, req.Msg.TripId, userID); err != nil {
		return nil, connectError(err)
	}

	expenses, err := s.store.ListTripExpenses(ctx, req.Msg.TripId)
	if err != nil {
		slog.Error("Failed to list expenses", "trip_id", req.Msg.TripId, "error", err)
		return nil, connectError(err)
	}

	out := make([]*api.Expense, len(expenses))
	for i := range expenses {
		out[i] = toAPIExpense(&expenses[i])
	}
	return connect.NewResponse(&api.ListExpensesResponse{Expenses: out}), nil
}

// EditSplit applies one edit event to a caller-held split session. Nothing is
// stored; the client sends the returned session back with its next edit.
func (s *ExpenseService) EditSplit(ctx context.Context, req *connect.Request[api.EditSplitRequest]) (*connect.Response[api.EditSplitResponse], error) {
	if _, err := callerID(ctx); err != nil {
		return nil, err
	}
	if req.Msg.Session == nil {
		return nil, invalidArgument("session is required")
	}
	if req.Msg.Event == nil {
		return nil, invalidArgument("event is required")
	}

	session := fromAPISession(req.Msg.Session)
	if err := session.WellFormed(); err != nil {
		return nil, connectError(err)
	}

	ev := ledger.EditEvent{
		Kind:        ledger.EditKind(req.Msg.Event.Kind),
		UserID:      req.Msg.Event.UserId,
		AmountMinor: req.Msg.Event.AmountMinor,
		Percentage:  req.Msg.Event.Percentage,
	}
	next, err := session.Apply(ev)
	if err != nil {
		slog.Debug("Split edit rejected", "kind", ev.Kind, "user_id", ev.UserID, "error", err)
		return nil, connectError(err)
	}

	unassigned, err := next.Unassigned()
	if err != nil {
		return nil, connectError(err)
	}
	resp := &api.EditSplitResponse{
		Session:         toAPISession(next),
		UnassignedMinor: unassigned,
	}
	if err := next.Validate(); err != nil {
		resp.Problem = err.Error()
	}
	return connect.NewResponse(resp), nil
}
