package apiconnect

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"

	api "github.com/koyostar/ItinaviCN-sub000/pkg/api"
)

// TripServiceName is the fully-qualified name of the TripService service.
const TripServiceName = "itinavi.v1.TripService"

// Procedure paths, used for routing and for per-procedure interceptor decisions.
const (
	TripServiceCreateTripProcedure    = "/itinavi.v1.TripService/CreateTrip"
	TripServiceGetTripProcedure       = "/itinavi.v1.TripService/GetTrip"
	TripServiceListTripsProcedure     = "/itinavi.v1.TripService/ListTrips"
	TripServiceAddTripMemberProcedure = "/itinavi.v1.TripService/AddTripMember"
)

// TripServiceClient is a client for the itinavi.v1.TripService service.
type TripServiceClient interface {
	CreateTrip(context.Context, *connect.Request[api.CreateTripRequest]) (*connect.Response[api.CreateTripResponse], error)
	GetTrip(context.Context, *connect.Request[api.GetTripRequest]) (*connect.Response[api.GetTripResponse], error)
	ListTrips(context.Context, *connect.Request[api.ListTripsRequest]) (*connect.Response[api.ListTripsResponse], error)
	AddTripMember(context.Context, *connect.Request[api.AddTripMemberRequest]) (*connect.Response[api.AddTripMemberResponse], error)
}

// NewTripServiceClient constructs a client for the itinavi.v1.TripService service.
// baseURL is the server root, e.g. http://localhost:8080.
func NewTripServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) TripServiceClient {
	opts = clientOptions(opts)
	return &tripServiceClient{
		createTrip:    connect.NewClient[api.CreateTripRequest, api.CreateTripResponse](httpClient, baseURL+TripServiceCreateTripProcedure, opts...),
		getTrip:       connect.NewClient[api.GetTripRequest, api.GetTripResponse](httpClient, baseURL+TripServiceGetTripProcedure, opts...),
		listTrips:     connect.NewClient[api.ListTripsRequest, api.ListTripsResponse](httpClient, baseURL+TripServiceListTripsProcedure, opts...),
		addTripMember: connect.NewClient[api.AddTripMemberRequest, api.AddTripMemberResponse](httpClient, baseURL+TripServiceAddTripMemberProcedure, opts...),
	}
}

type tripServiceClient struct {
	createTrip    *connect.Client[api.CreateTripRequest, api.CreateTripResponse]
	getTrip       *connect.Client[api.GetTripRequest, api.GetTripResponse]
	listTrips     *connect.Client[api.ListTripsRequest, api.ListTripsResponse]
	addTripMember *connect.Client[api.AddTripMemberRequest, api.AddTripMemberResponse]
}

func (c *tripServiceClient) CreateTrip(ctx context.Context, req *connect.Request[api.CreateTripRequest]) (*connect.Response[api.CreateTripResponse], error) {
	return c.createTrip.CallUnary(ctx, req)
}

func (c *tripServiceClient) GetTrip(ctx context.Context, req *connect.Request[api.GetTripRequest]) (*connect.Response[api.GetTripResponse], error) {
	return c.getTrip.CallUnary(ctx, req)
}

func (c *tripServiceClient) ListTrips(ctx context.Context, req *connect.Request[api.ListTripsRequest]) (*connect.Response[api.ListTripsResponse], error) {
	return c.listTrips.CallUnary(ctx, req)
}

func (c *tripServiceClient) AddTripMember(ctx context.Context, req *connect.Request[api.AddTripMemberRequest]) (*connect.Response[api.AddTripMemberResponse], error) {
	return c.addTripMember.CallUnary(ctx, req)
}

// TripServiceHandler is implemented by the server.
// Manages trips and their members.
type TripServiceHandler interface {
	CreateTrip(context.Context, *connect.Request[api.CreateTripRequest]) (*connect.Response[api.CreateTripResponse], error)
	GetTrip(context.Context, *connect.Request[api.GetTripRequest]) (*connect.Response[api.GetTripResponse], error)
	ListTrips(context.Context, *connect.Request[api.ListTripsRequest]) (*connect.Response[api.ListTripsResponse], error)
	AddTripMember(context.Context, *connect.Request[api.AddTripMemberRequest]) (*connect.Response[api.AddTripMemberResponse], error)
}

// NewTripServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewTripServiceHandler(svc TripServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	createTripHandler := connect.NewUnaryHandler(TripServiceCreateTripProcedure, svc.CreateTrip, opts...)
	getTripHandler := connect.NewUnaryHandler(TripServiceGetTripProcedure, svc.GetTrip, opts...)
	listTripsHandler := connect.NewUnaryHandler(TripServiceListTripsProcedure, svc.ListTrips, opts...)
	addTripMemberHandler := connect.NewUnaryHandler(TripServiceAddTripMemberProcedure, svc.AddTripMember, opts...)
	return "/itinavi.v1.TripService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case TripServiceCreateTripProcedure:
			createTripHandler.ServeHTTP(w, r)
		case TripServiceGetTripProcedure:
			getTripHandler.ServeHTTP(w, r)
		case TripServiceListTripsProcedure:
			listTripsHandler.ServeHTTP(w, r)
		case TripServiceAddTripMemberProcedure:
			addTripMemberHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedTripServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedTripServiceHandler struct{}

func (UnimplementedTripServiceHandler) CreateTrip(context.Context, *connect.Request[api.CreateTripRequest]) (*connect.Response[api.CreateTripResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("itinavi.v1.TripService.CreateTrip is not implemented"))
}

func (UnimplementedTripServiceHandler) GetTrip(context.Context, *connect.Request[api.GetTripRequest]) (*connect.Response[api.GetTripResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("itinavi.v1.TripService.GetTrip is not implemented"))
}

func (UnimplementedTripServiceHandler) ListTrips(context.Context, *connect.Request[api.ListTripsRequest]) (*connect.Response[api.ListTripsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("itinavi.v1.TripService.ListTrips is not implemented"))
}

func (UnimplementedTripServiceHandler) AddTripMember(context.Context, *connect.Request[api.AddTripMemberRequest]) (*connect.Response[api.AddTripMemberResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("itinavi.v1.TripService.AddTripMember is not implemented"))
}
