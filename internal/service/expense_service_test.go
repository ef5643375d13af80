package service

import (
	"context"
	"math"
	"testing"
	"time"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/timestamppb"

	api "github.com/koyostar/ItinaviCN-sub000/pkg/api"
)

func TestCreateExpense(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	tripID := env.newTrip(t, "alice", "bob", "carol")

	when := time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)
	expense := env.newExpense(t, "alice", tripID, &api.ExpenseInput{
		Category:         "food",
		AmountTotalMinor: 1000,
		PaidByUserId:     "alice",
		PaymentMethod:    "wechat",
		ExpenseDateTime:  timestamppb.New(when),
		SplitEvenlyAmong: []string{"alice", "bob", "carol"},
	})

	if expense.Id == "" {
		t.Error("expected non-empty expense ID")
	}
	if expense.CurrencyCode != "CNY" {
		t.Errorf("currency should default to the trip's, got %q", expense.CurrencyCode)
	}
	if expense.Title != "Food - Apr 2, 2026" {
		t.Errorf("title: got %q", expense.Title)
	}
	if expense.AmountDisplay != "10.00 CNY" {
		t.Errorf("display: got %q", expense.AmountDisplay)
	}
	want := []int64{334, 333, 333}
	if len(expense.Splits) != len(want) {
		t.Fatalf("splits: expected %d, got %d", len(want), len(expense.Splits))
	}
	for i, s := range expense.Splits {
		if s.AmountOwedMinor != want[i] {
			t.Errorf("split %s: expected %d, got %d", s.UserId, want[i], s.AmountOwedMinor)
		}
	}

	got, err := env.expenses.GetExpense(ctx, as("bob", &api.GetExpenseRequest{ExpenseId: expense.Id}))
	if err != nil {
		t.Fatalf("GetExpense failed: %v", err)
	}
	if !got.Msg.Expense.ExpenseDateTime.AsTime().Equal(when) {
		t.Errorf("expense time: got %v", got.Msg.Expense.ExpenseDateTime.AsTime())
	}
}

func TestCreateExpenseValidation(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	tripID := env.newTrip(t, "alice", "bob")
	_, err := env.trips.AddTripMember(ctx, as("alice", &api.AddTripMemberRequest{TripId: tripID, UserId: "victor", Role: "viewer"}))
	if err != nil {
		t.Fatalf("AddTripMember failed: %v", err)
	}

	tests := []struct {
		name  string
		actor string
		in    *api.ExpenseInput
		code  connect.Code
	}{
		{"splits do not sum", "alice", &api.ExpenseInput{AmountTotalMinor: 100, Splits: []*api.SplitInput{{UserId: "alice", AmountOwedMinor: 60}, {UserId: "bob", AmountOwedMinor: 30}}}, connect.CodeInvalidArgument},
		{"duplicate split", "alice", &api.ExpenseInput{AmountTotalMinor: 100, Splits: []*api.SplitInput{{UserId: "bob", AmountOwedMinor: 50}, {UserId: "bob", AmountOwedMinor: 50}}}, connect.CodeInvalidArgument},
		{"negative split", "alice", &api.ExpenseInput{AmountTotalMinor: 0, Splits: []*api.SplitInput{{UserId: "alice", AmountOwedMinor: 10}, {UserId: "bob", AmountOwedMinor: -10}}}, connect.CodeInvalidArgument},
		{"negative total", "alice", &api.ExpenseInput{AmountTotalMinor: -5}, connect.CodeInvalidArgument},
		{"negative major amount", "alice", &api.ExpenseInput{AmountTotal: "-1.00"}, connect.CodeInvalidArgument},
		{"too many decimals", "alice", &api.ExpenseInput{AmountTotal: "1.005"}, connect.CodeInvalidArgument},
		{"unparsable amount", "alice", &api.ExpenseInput{AmountTotal: "ten"}, connect.CodeInvalidArgument},
		{"both amount forms", "alice", &api.ExpenseInput{AmountTotal: "1.00", AmountTotalMinor: 100}, connect.CodeInvalidArgument},
		{"both split forms", "alice", &api.ExpenseInput{AmountTotalMinor: 100, Splits: []*api.SplitInput{{UserId: "alice", AmountOwedMinor: 100}}, SplitEvenlyAmong: []string{"alice"}}, connect.CodeInvalidArgument},
		{"unknown category", "alice", &api.ExpenseInput{Category: "gambling", AmountTotalMinor: 100}, connect.CodeInvalidArgument},
		{"payer outside trip", "alice", &api.ExpenseInput{AmountTotalMinor: 100, PaidByUserId: "zed"}, connect.CodeInvalidArgument},
		{"participant outside trip", "alice", &api.ExpenseInput{AmountTotalMinor: 100, SplitEvenlyAmong: []string{"alice", "zed"}}, connect.CodeInvalidArgument},
		{"bad payment method", "alice", &api.ExpenseInput{AmountTotalMinor: 100, PaymentMethod: "barter"}, connect.CodeInvalidArgument},
		{"viewer cannot write", "victor", &api.ExpenseInput{AmountTotalMinor: 100}, connect.CodePermissionDenied},
		{"outsider cannot write", "mallory", &api.ExpenseInput{AmountTotalMinor: 100}, connect.CodePermissionDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.expenses.CreateExpense(ctx, as(tt.actor, &api.CreateExpenseRequest{TripId: tripID, Expense: tt.in}))
			wantCode(t, err, tt.code)
		})
	}

	t.Run("major-unit amount", func(t *testing.T) {
		e := env.newExpense(t, "alice", tripID, &api.ExpenseInput{
			Title: "Taxi", AmountTotal: "10.51", PaidByUserId: "alice", SplitEvenlyAmong: []string{"alice", "bob"},
		})
		if e.AmountTotalMinor != 1051 || e.AmountDisplay != "10.51 CNY" {
			t.Errorf("amount: got %d (%s)", e.AmountTotalMinor, e.AmountDisplay)
		}
		if e.Splits[0].AmountOwedMinor != 526 || e.Splits[1].AmountOwedMinor != 525 {
			t.Errorf("splits: %+v, %+v", e.Splits[0], e.Splits[1])
		}
	})

	t.Run("unshared expense is allowed", func(t *testing.T) {
		e := env.newExpense(t, "bob", tripID, &api.ExpenseInput{Title: "Deposit", AmountTotalMinor: 5000})
		if len(e.Splits) != 0 || e.PaidByUserId != "" {
			t.Errorf("expected bare expense, got %+v", e)
		}
	})
}

func TestUpdateAndDeleteExpense(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	tripID := env.newTrip(t, "alice", "bob", "carol")

	expense := env.newExpense(t, "alice", tripID, &api.ExpenseInput{
		Title:            "Hotel",
		Category:         "accommodation",
		AmountTotalMinor: 900,
		PaidByUserId:     "alice",
		SplitEvenlyAmong: []string{"alice", "bob", "carol"},
	})
	if _, err := env.ledger.SettleSplit(ctx, as("bob", &api.SettleSplitRequest{ExpenseId: expense.Id, UserId: "bob"})); err != nil {
		t.Fatalf("SettleSplit failed: %v", err)
	}

	// bob keeps his share; carol's share changes
	resp, err := env.expenses.UpdateExpense(ctx, as("bob", &api.UpdateExpenseRequest{
		ExpenseId: expense.Id,
		Expense: &api.ExpenseInput{
			Title:            "Hotel, two nights",
			Category:         "accommodation",
			AmountTotalMinor: 1000,
			PaidByUserId:     "alice",
			Splits: []*api.SplitInput{
				{UserId: "alice", AmountOwedMinor: 300},
				{UserId: "bob", AmountOwedMinor: 300},
				{UserId: "carol", AmountOwedMinor: 400},
			},
		},
	}))
	if err != nil {
		t.Fatalf("UpdateExpense failed: %v", err)
	}
	updated := resp.Msg.Expense
	if updated.Title != "Hotel, two nights" || updated.AmountTotalMinor != 1000 {
		t.Errorf("updated expense = %+v", updated)
	}
	for _, s := range updated.Splits {
		if want := s.UserId == "bob"; s.IsSettled != want {
			t.Errorf("%s settled = %v, want %v", s.UserId, s.IsSettled, want)
		}
	}
	if !updated.ExpenseDateTime.AsTime().Equal(expense.ExpenseDateTime.AsTime()) {
		t.Error("expense time should be kept when not given")
	}

	_, err = env.expenses.UpdateExpense(ctx, as("alice", &api.UpdateExpenseRequest{ExpenseId: "missing", Expense: &api.ExpenseInput{}}))
	wantCode(t, err, connect.CodeNotFound)

	if _, err := env.expenses.DeleteExpense(ctx, as("carol", &api.DeleteExpenseRequest{ExpenseId: expense.Id})); err != nil {
		t.Fatalf("DeleteExpense failed: %v", err)
	}
	list, err := env.expenses.ListExpenses(ctx, as("alice", &api.ListExpensesRequest{TripId: tripID}))
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(list.Msg.Expenses) != 0 {
		t.Errorf("expected no expenses after delete, got %d", len(list.Msg.Expenses))
	}
}

func TestListExpensesOrder(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	tripID := env.newTrip(t, "alice")

	day := func(d int) *timestamppb.Timestamp {
		return timestamppb.New(time.Date(2026, 4, d, 9, 0, 0, 0, time.UTC))
	}
	env.newExpense(t, "alice", tripID, &api.ExpenseInput{Title: "third", AmountTotalMinor: 1, ExpenseDateTime: day(3)})
	env.newExpense(t, "alice", tripID, &api.ExpenseInput{Title: "first", AmountTotalMinor: 1, ExpenseDateTime: day(1)})
	env.newExpense(t, "alice", tripID, &api.ExpenseInput{Title: "second", AmountTotalMinor: 1, ExpenseDateTime: day(2)})

	resp, err := env.expenses.ListExpenses(ctx, as("alice", &api.ListExpensesRequest{TripId: tripID}))
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	for i, want := range []string{"first", "second", "third"} {
		if got := resp.Msg.Expenses[i].Title; got != want {
			t.Errorf("expense %d: expected %q, got %q", i, want, got)
		}
	}
}

func TestEditSplit(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	session := &api.SplitSession{
		TotalMinor: 1000,
		Mode:       "even",
		Shares: []*api.SplitShare{
			{UserId: "alice", AmountMinor: 334},
			{UserId: "bob", AmountMinor: 333},
			{UserId: "carol", AmountMinor: 333},
		},
	}
	edit := func(s *api.SplitSession, ev *api.SplitEditEvent) *api.EditSplitResponse {
		t.Helper()
		resp, err := env.expenses.EditSplit(ctx, as("alice", &api.EditSplitRequest{Session: s, Event: ev}))
		if err != nil {
			t.Fatalf("EditSplit(%s) failed: %v", ev.Kind, err)
		}
		return resp.Msg
	}

	step := edit(session, &api.SplitEditEvent{Kind: "set-amount", UserId: "alice", AmountMinor: 400})
	if step.Problem == "" {
		t.Error("expected a problem while shares do not add up")
	}
	if step.Session.Mode != "fixed" || !step.Session.Shares[0].Locked {
		t.Errorf("after set-amount: %+v", step.Session)
	}

	step = edit(step.Session, &api.SplitEditEvent{Kind: "redistribute", UserId: "alice"})
	if step.Problem != "" || step.UnassignedMinor != 0 {
		t.Errorf("after redistribute: problem %q, unassigned %d", step.Problem, step.UnassignedMinor)
	}
	for i, want := range []int64{400, 300, 300} {
		if got := step.Session.Shares[i].AmountMinor; got != want {
			t.Errorf("share %d: expected %d, got %d", i, want, got)
		}
	}

	// Locking everyone and removing a share leaves money unassigned
	step = edit(step.Session, &api.SplitEditEvent{Kind: "toggle-lock", UserId: "bob"})
	step = edit(step.Session, &api.SplitEditEvent{Kind: "toggle-lock", UserId: "carol"})
	step = edit(step.Session, &api.SplitEditEvent{Kind: "remove", UserId: "carol"})
	step = edit(step.Session, &api.SplitEditEvent{Kind: "redistribute"})
	if step.UnassignedMinor != 300 {
		t.Errorf("unassigned: expected 300, got %d", step.UnassignedMinor)
	}

	tests := []struct {
		name    string
		session *api.SplitSession
		event   *api.SplitEditEvent
	}{
		{"unknown kind", session, &api.SplitEditEvent{Kind: "shuffle"}},
		{"missing event", session, nil},
		{"missing session", nil, &api.SplitEditEvent{Kind: "set-even"}},
		{"amount over total", session, &api.SplitEditEvent{Kind: "set-amount", UserId: "bob", AmountMinor: 5000}},
		{"unknown participant", session, &api.SplitEditEvent{Kind: "toggle-lock", UserId: "zed"}},
		{"bad mode", &api.SplitSession{TotalMinor: 10, Mode: "random"}, &api.SplitEditEvent{Kind: "set-even"}},
		{"shares beyond total", &api.SplitSession{TotalMinor: 100, Mode: "percentage", Shares: []*api.SplitShare{
			{UserId: "alice", AmountMinor: math.MaxInt64, Locked: true},
			{UserId: "bob", AmountMinor: math.MaxInt64 / 2, Locked: true},
			{UserId: "carol"},
		}}, &api.SplitEditEvent{Kind: "redistribute"}},
		{"percentage above 100", &api.SplitSession{TotalMinor: 100, Mode: "percentage", Shares: []*api.SplitShare{
			{UserId: "alice", Percentage: 250, Locked: true},
			{UserId: "bob"},
		}}, &api.SplitEditEvent{Kind: "redistribute"}},
		{"locked percentages round above total", &api.SplitSession{TotalMinor: 3, Mode: "percentage", Shares: []*api.SplitShare{
			{UserId: "alice", AmountMinor: 2, Percentage: 50, Locked: true},
			{UserId: "bob", AmountMinor: 2, Percentage: 50, Locked: true},
			{UserId: "carol"},
		}}, &api.SplitEditEvent{Kind: "redistribute"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.expenses.EditSplit(ctx, as("alice", &api.EditSplitRequest{Session: tt.session, Event: tt.event}))
			wantCode(t, err, connect.CodeInvalidArgument)
		})
	}
}
