package apiconnect

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"

	api "github.com/koyostar/ItinaviCN-sub000/pkg/api"
)

// LedgerServiceName is the fully-qualified name of the LedgerService service.
const LedgerServiceName = "itinavi.v1.LedgerService"

// Procedure paths, used for routing and for per-procedure interceptor decisions.
const (
	LedgerServiceGetBalanceSummaryProcedure = "/itinavi.v1.LedgerService/GetBalanceSummary"
	LedgerServiceGetBalanceMatrixProcedure  = "/itinavi.v1.LedgerService/GetBalanceMatrix"
	LedgerServiceGetSettlementsProcedure    = "/itinavi.v1.LedgerService/GetSettlements"
	LedgerServiceSettleSplitProcedure       = "/itinavi.v1.LedgerService/SettleSplit"
	LedgerServiceUnsettleSplitProcedure     = "/itinavi.v1.LedgerService/UnsettleSplit"
	LedgerServiceSettlePairProcedure        = "/itinavi.v1.LedgerService/SettlePair"
)

// LedgerServiceClient is a client for the itinavi.v1.LedgerService service.
type LedgerServiceClient interface {
	GetBalanceSummary(context.Context, *connect.Request[api.GetBalanceSummaryRequest]) (*connect.Response[api.GetBalanceSummaryResponse], error)
	GetBalanceMatrix(context.Context, *connect.Request[api.GetBalanceMatrixRequest]) (*connect.Response[api.GetBalanceMatrixResponse], error)
	GetSettlements(context.Context, *connect.Request[api.GetSettlementsRequest]) (*connect.Response[api.GetSettlementsResponse], error)
	SettleSplit(context.Context, *connect.Request[api.SettleSplitRequest]) (*connect.Response[api.SettleSplitResponse], error)
	UnsettleSplit(context.Context, *connect.Request[api.UnsettleSplitRequest]) (*connect.Response[api.UnsettleSplitResponse], error)
	SettlePair(context.Context, *connect.Request[api.SettlePairRequest]) (*connect.Response[api.SettlePairResponse], error)
}

// NewLedgerServiceClient constructs a client for the itinavi.v1.LedgerService service.
// baseURL is the server root, e.g. http://localhost:8080.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) LedgerServiceClient {
	opts = clientOptions(opts)
	return &ledgerServiceClient{
		getBalanceSummary: connect.NewClient[api.GetBalanceSummaryRequest, api.GetBalanceSummaryResponse](httpClient, baseURL+LedgerServiceGetBalanceSummaryProcedure, opts...),
		getBalanceMatrix:  connect.NewClient[api.GetBalanceMatrixRequest, api.GetBalanceMatrixResponse](httpClient, baseURL+LedgerServiceGetBalanceMatrixProcedure, opts...),
		getSettlements:    connect.NewClient[api.GetSettlementsRequest, api.GetSettlementsResponse](httpClient, baseURL+LedgerServiceGetSettlementsProcedure, opts...),
		settleSplit:       connect.NewClient[api.SettleSplitRequest, api.SettleSplitResponse](httpClient, baseURL+LedgerServiceSettleSplitProcedure, opts...),
		unsettleSplit:     connect.NewClient[api.UnsettleSplitRequest, api.UnsettleSplitResponse](httpClient, baseURL+LedgerServiceUnsettleSplitProcedure, opts...),
		settlePair:        connect.NewClient[api.SettlePairRequest, api.SettlePairResponse](httpClient, baseURL+LedgerServiceSettlePairProcedure, opts...),
	}
}

type ledgerServiceClient struct {
	getBalanceSummary *connect.Client[api.GetBalanceSummaryRequest, api.GetBalanceSummaryResponse]
	getBalanceMatrix  *connect.Client[api.GetBalanceMatrixRequest, api.GetBalanceMatrixResponse]
	getSettlements    *connect.Client[api.GetSettlementsRequest, api.GetSettlementsResponse]
	settleSplit       *connect.Client[api.SettleSplitRequest, api.SettleSplitResponse]
	unsettleSplit     *connect.Client[api.UnsettleSplitRequest, api.UnsettleSplitResponse]
	settlePair        *connect.Client[api.SettlePairRequest, api.SettlePairResponse]
}

func (c *ledgerServiceClient) GetBalanceSummary(ctx context.Context, req *connect.Request[api.GetBalanceSummaryRequest]) (*connect.Response[api.GetBalanceSummaryResponse], error) {
	return c.getBalanceSummary.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetBalanceMatrix(ctx context.Context, req *connect.Request[api.GetBalanceMatrixRequest]) (*connect.Response[api.GetBalanceMatrixResponse], error) {
	return c.getBalanceMatrix.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetSettlements(ctx context.Context, req *connect.Request[api.GetSettlementsRequest]) (*connect.Response[api.GetSettlementsResponse], error) {
	return c.getSettlements.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) SettleSplit(ctx context.Context, req *connect.Request[api.SettleSplitRequest]) (*connect.Response[api.SettleSplitResponse], error) {
	return c.settleSplit.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) UnsettleSplit(ctx context.Context, req *connect.Request[api.UnsettleSplitRequest]) (*connect.Response[api.UnsettleSplitResponse], error) {
	return c.unsettleSplit.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) SettlePair(ctx context.Context, req *connect.Request[api.SettlePairRequest]) (*connect.Response[api.SettlePairResponse], error) {
	return c.settlePair.CallUnary(ctx, req)
}

// LedgerServiceHandler is implemented by the server.
// Serves balances and settlement instructions and records settlements.
type LedgerServiceHandler interface {
	GetBalanceSummary(context.Context, *connect.Request[api.GetBalanceSummaryRequest]) (*connect.Response[api.GetBalanceSummaryResponse], error)
	GetBalanceMatrix(context.Context, *connect.Request[api.GetBalanceMatrixRequest]) (*connect.Response[api.GetBalanceMatrixResponse], error)
	GetSettlements(context.Context, *connect.Request[api.GetSettlementsRequest]) (*connect.Response[api.GetSettlementsResponse], error)
	SettleSplit(context.Context, *connect.Request[api.SettleSplitRequest]) (*connect.Response[api.SettleSplitResponse], error)
	UnsettleSplit(context.Context, *connect.Request[api.UnsettleSplitRequest]) (*connect.Response[api.UnsettleSplitResponse], error)
	SettlePair(context.Context, *connect.Request[api.SettlePairRequest]) (*connect.Response[api.SettlePairResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	getBalanceSummaryHandler := connect.NewUnaryHandler(LedgerServiceGetBalanceSummaryProcedure, svc.GetBalanceSummary, opts...)
	getBalanceMatrixHandler := connect.NewUnaryHandler(LedgerServiceGetBalanceMatrixProcedure, svc.GetBalanceMatrix, opts...)
	getSettlementsHandler := connect.NewUnaryHandler(LedgerServiceGetSettlementsProcedure, svc.GetSettlements, opts...)
	settleSplitHandler := connect.NewUnaryHandler(LedgerServiceSettleSplitProcedure, svc.SettleSplit, opts...)
	unsettleSplitHandler := connect.NewUnaryHandler(LedgerServiceUnsettleSplitProcedure, svc.UnsettleSplit, opts...)
	settlePairHandler := connect.NewUnaryHandler(LedgerServiceSettlePairProcedure, svc.SettlePair, opts...)
	return "/itinavi.v1.LedgerService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case LedgerServiceGetBalanceSummaryProcedure:
			getBalanceSummaryHandler.ServeHTTP(w, r)
		case LedgerServiceGetBalanceMatrixProcedure:
			getBalanceMatrixHandler.ServeHTTP(w, r)
		case LedgerServiceGetSettlementsProcedure:
			getSettlementsHandler.ServeHTTP(w, r)
		case LedgerServiceSettleSplitProcedure:
			settleSplitHandler.ServeHTTP(w, r)
		case LedgerServiceUnsettleSplitProcedure:
			unsettleSplitHandler.ServeHTTP(w, r)
		case LedgerServiceSettlePairProcedure:
			settlePairHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedLedgerServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedLedgerServiceHandler struct{}

func (UnimplementedLedgerServiceHandler) GetBalanceSummary(context.Context, *connect.Request[api.GetBalanceSummaryRequest]) (*connect.Response[api.GetBalanceSummaryResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("itinavi.v1.LedgerService.GetBalanceSummary is not implemented"))
}

func (UnimplementedLedgerServiceHandler) GetBalanceMatrix(context.Context, *connect.Request[api.GetBalanceMatrixRequest]) (*connect.Response[api.GetBalanceMatrixResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("itinavi.v1.LedgerService.GetBalanceMatrix is not implemented"))
}

func (UnimplementedLedgerServiceHandler) GetSettlements(context.Context, *connect.Request[api.GetSettlementsRequest]) (*connect.Response[api.GetSettlementsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("itinavi.v1.LedgerService.GetSettlements is not implemented"))
}

func (UnimplementedLedgerServiceHandler) SettleSplit(context.Context, *connect.Request[api.SettleSplitRequest]) (*connect.Response[api.SettleSplitResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("itinavi.v1.LedgerService.SettleSplit is not implemented"))
}

func (UnimplementedLedgerServiceHandler) UnsettleSplit(context.Context, *connect.Request[api.UnsettleSplitRequest]) (*connect.Response[api.UnsettleSplitResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("itinavi.v1.LedgerService.UnsettleSplit is not implemented"))
}

func (UnimplementedLedgerServiceHandler) SettlePair(context.Context, *connect.Request[api.SettlePairRequest]) (*connect.Response[api.SettlePairResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("itinavi.v1.LedgerService.SettlePair is not implemented"))
}
