package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/koyostar/ItinaviCN-sub000/internal/ledger"
	"github.com/koyostar/ItinaviCN-sub000/internal/models"
	"github.com/koyostar/ItinaviCN-sub000/internal/storage"
	api "github.com/koyostar/ItinaviCN-sub000/pkg/api"
	"github.com/koyostar/ItinaviCN-sub000/pkg/api/apiconnect"
)

// LedgerService implements the Connect LedgerService: read-side balances and
// netted settlements plus the settle/unsettle transitions.
type LedgerService struct {
	apiconnect.UnimplementedLedgerServiceHandler
	store   storage.Store
	settler *ledger.Settler
}

// NewLedgerService creates a LedgerService. settler must drive the same store.
func NewLedgerService(store storage.Store, settler *ledger.Settler) *LedgerService {
	return &LedgerService{store: store, settler: settler}
}

// tripLedger loads the trip (checking the caller's membership) and its expenses.
func (s *LedgerService) tripLedger(ctx context.Context, tripID string) (*models.Trip, []models.Expense, string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, nil, "", err
	}
	trip, _, err := memberTrip(ctx, s.store, tripID, userID)
	if err != nil {
		return nil, nil, "", connectError(err)
	}
	expenses, err := s.store.ListTripExpenses(ctx, tripID)
	if err != nil {
		slog.Error("Failed to load trip expenses", "trip_id", tripID, "error", err)
		return nil, nil, "", connectError(err)
	}
	return trip, expenses, userID, nil
}

// GetBalanceSummary returns one user's position in the trip, the caller by default.
func (s *LedgerService) GetBalanceSummary(ctx context.Context, req *connect.Request[api.GetBalanceSummaryRequest]) (*connect.Response[api.GetBalanceSummaryResponse], error) {
	trip, expenses, me, err := s.tripLedger(ctx, req.Msg.TripId)
	if err != nil {
		return nil, err
	}
	userID := req.Msg.UserId
	if userID == "" {
		userID = me
	}

	summary, err := ledger.Summarize(userID, expenses)
	if err != nil {
		return nil, connectError(err)
	}
	slog.Debug("Balance summary computed",
		"trip_id", trip.ID,
		"user_id", userID,
		"net", summary.NetBalance,
	)
	return connect.NewResponse(&api.GetBalanceSummaryResponse{
		Summary: toAPISummary(summary, trip.DestinationCurrency),
	}), nil
}

// GetBalanceMatrix returns every outstanding debtor -> creditor amount.
func (s *LedgerService) GetBalanceMatrix(ctx context.Context, req *connect.Request[api.GetBalanceMatrixRequest]) (*connect.Response[api.GetBalanceMatrixResponse], error) {
	trip, expenses, _, err := s.tripLedger(ctx, req.Msg.TripId)
	if err != nil {
		return nil, err
	}

	matrix, err := ledger.BuildMatrix(expenses)
	if err != nil {
		return nil, connectError(err)
	}
	members := matrix.Members()
	resp := &api.GetBalanceMatrixResponse{Members: members, Entries: []*api.MatrixEntry{}}
	for _, debtor := range members {
		for _, creditor := range members {
			if amount := matrix.Get(debtor, creditor); amount > 0 {
				resp.Entries = append(resp.Entries, &api.MatrixEntry{
					DebtorId:   debtor,
					CreditorId: creditor,
					Amount:     toAPIMoney(amount, trip.DestinationCurrency),
				})
			}
		}
	}
	return connect.NewResponse(resp), nil
}

// GetSettlements returns the netted pay/receive instructions for one member,
// the caller by default.
func (s *LedgerService) GetSettlements(ctx context.Context, req *connect.Request[api.GetSettlementsRequest]) (*connect.Response[api.GetSettlementsResponse], error) {
	trip, expenses, me, err := s.tripLedger(ctx, req.Msg.TripId)
	if err != nil {
		return nil, err
	}
	memberID := req.Msg.MemberId
	if memberID == "" {
		memberID = me
	}

	instructions, err := ledger.ComputeSettlements(memberID, expenses)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.GetSettlementsResponse{
		MemberId:     memberID,
		Instructions: toAPIInstructions(instructions, trip.DestinationCurrency),
	}), nil
}

// SettleSplit marks one split as settled.
func (s *LedgerService) SettleSplit(ctx context.Context, req *connect.Request[api.SettleSplitRequest]) (*connect.Response[api.SettleSplitResponse], error) {
	actorID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	split, err := s.settler.Settle(ctx, actorID, req.Msg.ExpenseId, req.Msg.UserId)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.SettleSplitResponse{Split: toAPISplit(split)}), nil
}

// UnsettleSplit reopens a settled split.
func (s *LedgerService) UnsettleSplit(ctx context.Context, req *connect.Request[api.UnsettleSplitRequest]) (*connect.Response[api.UnsettleSplitResponse], error) {
	actorID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	split, err := s.settler.Unsettle(ctx, actorID, req.Msg.ExpenseId, req.Msg.UserId)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.UnsettleSplitResponse{Split: toAPISplit(split)}), nil
}

// SettlePair settles everything outstanding between two members at once.
func (s *LedgerService) SettlePair(ctx context.Context, req *connect.Request[api.SettlePairRequest]) (*connect.Response[api.SettlePairResponse], error) {
	actorID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if _, _, err := memberTrip(ctx, s.store, req.Msg.TripId, actorID); err != nil {
		return nil, connectError(err)
	}

	splits, err := s.settler.BatchSettlePair(ctx, actorID, req.Msg.TripId, req.Msg.UserA, req.Msg.UserB)
	if err != nil {
		return nil, connectError(err)
	}

	out := make([]*api.ExpenseSplit, len(splits))
	for i, sp := range splits {
		out[i] = toAPISplit(sp)
	}
	return connect.NewResponse(&api.SettlePairResponse{Splits: out}), nil
}
