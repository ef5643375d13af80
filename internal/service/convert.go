package service

import (
	"sort"
	"time"

	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/koyostar/ItinaviCN-sub000/internal/ledger"
	"github.com/koyostar/ItinaviCN-sub000/internal/models"
	"github.com/koyostar/ItinaviCN-sub000/internal/money"
	api "github.com/koyostar/ItinaviCN-sub000/pkg/api"
)

func unixTimestamp(sec int64) *timestamppb.Timestamp {
	if sec == 0 {
		return nil
	}
	return timestamppb.New(time.Unix(sec, 0))
}

func optionalTimestamp(t *time.Time) *timestamppb.Timestamp {
	if t == nil {
		return nil
	}
	return timestamppb.New(*t)
}

func toAPIUser(u *models.User) *api.User {
	return &api.User{Id: u.ID, Email: u.Email, DisplayName: u.DisplayName}
}

func toAPITrip(t *models.Trip, users map[string]*models.User) *api.Trip {
	trip := &api.Trip{
		Id:                  t.ID,
		Name:                t.Name,
		DestinationCurrency: t.DestinationCurrency,
		CreatedBy:           t.CreatedBy,
		CreatedAt:           unixTimestamp(t.CreatedAt),
	}
	for _, m := range t.Members {
		member := &api.TripMember{UserId: m.UserID, Role: string(m.Role)}
		if u, ok := users[m.UserID]; ok {
			member.DisplayName = u.DisplayName
		}
		trip.Members = append(trip.Members, member)
	}
	return trip
}

func toAPISplit(s models.ExpenseSplit) *api.ExpenseSplit {
	return &api.ExpenseSplit{
		ExpenseId:       s.ExpenseID,
		UserId:          s.UserID,
		AmountOwedMinor: s.AmountOwedMinor,
		IsSettled:       s.IsSettled,
		SettledAt:       optionalTimestamp(s.SettledAt),
	}
}

func toAPIExpense(e *models.Expense) *api.Expense {
	expense := &api.Expense{
		Id:               e.ID,
		TripId:           e.TripID,
		Title:            e.Title,
		Category:         string(e.Category),
		AmountTotalMinor: e.AmountTotalMinor,
		CurrencyCode:     e.CurrencyCode,
		AmountDisplay:    money.Format(e.AmountTotalMinor, e.CurrencyCode),
		PaidByUserId:     e.PaidByUserID,
		PaymentMethod:    string(e.PaymentMethod),
		ExpenseDateTime:  timestamppb.New(e.ExpenseDateTime),
		CreatedAt:        unixTimestamp(e.CreatedAt),
	}
	for _, s := range e.Splits {
		expense.Splits = append(expense.Splits, toAPISplit(s))
	}
	return expense
}

func toAPIMoney(minor int64, currency string) *api.Money {
	return &api.Money{AmountMinor: minor, Currency: currency, Display: money.Format(minor, currency)}
}

// toAPICounterparties flattens an amount map into a list sorted by user ID.
func toAPICounterparties(amounts map[string]int64, currency string) []*api.CounterpartyAmount {
	ids := make([]string, 0, len(amounts))
	for id := range amounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]*api.CounterpartyAmount, 0, len(ids))
	for _, id := range ids {
		out = append(out, &api.CounterpartyAmount{UserId: id, Amount: toAPIMoney(amounts[id], currency)})
	}
	return out
}

func toAPISummary(s ledger.BalanceSummary, currency string) *api.BalanceSummary {
	return &api.BalanceSummary{
		UserId:     s.UserID,
		TotalPaid:  toAPIMoney(s.TotalPaid, currency),
		TotalOwed:  toAPIMoney(s.TotalOwed, currency),
		NetBalance: toAPIMoney(s.NetBalance, currency),
		OwesTo:     toAPICounterparties(s.OwesTo, currency),
		OwedBy:     toAPICounterparties(s.OwedBy, currency),
	}
}

func toAPIInstructions(in []ledger.SettlementInstruction, currency string) []*api.SettlementInstruction {
	out := make([]*api.SettlementInstruction, len(in))
	for i, ins := range in {
		out[i] = &api.SettlementInstruction{
			CounterpartyId: ins.CounterpartyID,
			Direction:      string(ins.Direction),
			Amount:         toAPIMoney(ins.Amount, currency),
		}
	}
	return out
}

func toAPISession(s ledger.SplitSession) *api.SplitSession {
	session := &api.SplitSession{TotalMinor: s.TotalMinor, Mode: string(s.Mode), Shares: []*api.SplitShare{}}
	for _, sh := range s.Shares {
		session.Shares = append(session.Shares, &api.SplitShare{
			UserId:      sh.UserID,
			AmountMinor: sh.AmountMinor,
			Percentage:  sh.Percentage,
			Locked:      sh.Locked,
		})
	}
	return session
}

func fromAPISession(s *api.SplitSession) ledger.SplitSession {
	session := ledger.SplitSession{TotalMinor: s.TotalMinor, Mode: ledger.SplitMode(s.Mode)}
	if session.Mode == "" {
		session.Mode = ledger.ModeEven
	}
	for _, sh := range s.Shares {
		if sh == nil {
			continue
		}
		session.Shares = append(session.Shares, ledger.Share{
			UserID:      sh.UserId,
			AmountMinor: sh.AmountMinor,
			Percentage:  sh.Percentage,
			Locked:      sh.Locked,
		})
	}
	return session
}
