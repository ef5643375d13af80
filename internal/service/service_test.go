package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"connectrpc.com/connect"

	"github.com/koyostar/ItinaviCN-sub000/internal/ledger"
	"github.com/koyostar/ItinaviCN-sub000/internal/middleware"
	"github.com/koyostar/ItinaviCN-sub000/internal/storage/sqlstore"
	api "github.com/koyostar/ItinaviCN-sub000/pkg/api"
	"github.com/koyostar/ItinaviCN-sub000/pkg/api/apiconnect"
)

// testUserHeader carries the acting user in tests in place of a JWT.
const testUserHeader = "X-Test-User"

// testAuthInterceptor returns a Connect interceptor that sets the user from testUserHeader.
func testAuthInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if user := req.Header().Get(testUserHeader); user != "" {
				ctx = middleware.WithUser(ctx, user, user+"@example.com")
			}
			return next(ctx, req)
		}
	}
}

type testEnv struct {
	store    *sqlstore.Store
	trips    apiconnect.TripServiceClient
	expenses apiconnect.ExpenseServiceClient
	ledger   apiconnect.LedgerServiceClient
}

// setupTestServer creates a test server backed by a temp-file SQLite database.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlstore.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	interceptors := connect.WithInterceptors(testAuthInterceptor())
	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewTripServiceHandler(NewTripService(store), interceptors))
	mux.Handle(apiconnect.NewExpenseServiceHandler(NewExpenseService(store), interceptors))
	mux.Handle(apiconnect.NewLedgerServiceHandler(NewLedgerService(store, ledger.NewSettler(store)), interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testEnv{
		store:    store,
		trips:    apiconnect.NewTripServiceClient(http.DefaultClient, server.URL),
		expenses: apiconnect.NewExpenseServiceClient(http.DefaultClient, server.URL),
		ledger:   apiconnect.NewLedgerServiceClient(http.DefaultClient, server.URL),
	}
}

// as builds a request acting as user.
func as[T any](user string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set(testUserHeader, user)
	return req
}

func wantCode(t *testing.T, err error, code connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v, got nil error", code)
	}
	if got := connect.CodeOf(err); got != code {
		t.Fatalf("expected %v, got %v (%v)", code, got, err)
	}
}

// newTrip creates a CNY trip owned by owner with the given editors.
func (e *testEnv) newTrip(t *testing.T, owner string, editors ...string) string {
	t.Helper()
	ctx := context.Background()
	resp, err := e.trips.CreateTrip(ctx, as(owner, &api.CreateTripRequest{Name: "Shanghai", DestinationCurrency: "CNY"}))
	if err != nil {
		t.Fatalf("CreateTrip failed: %v", err)
	}
	tripID := resp.Msg.Trip.Id
	for _, user := range editors {
		_, err := e.trips.AddTripMember(ctx, as(owner, &api.AddTripMemberRequest{TripId: tripID, UserId: user, Role: "editor"}))
		if err != nil {
			t.Fatalf("AddTripMember(%s) failed: %v", user, err)
		}
	}
	return tripID
}

func (e *testEnv) newExpense(t *testing.T, actor, tripID string, in *api.ExpenseInput) *api.Expense {
	t.Helper()
	resp, err := e.expenses.CreateExpense(context.Background(), as(actor, &api.CreateExpenseRequest{TripId: tripID, Expense: in}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	return resp.Msg.Expense
}

