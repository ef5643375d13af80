package apiconnect

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"

	api "github.com/koyostar/ItinaviCN-sub000/pkg/api"
)

// AuthServiceName is the fully-qualified name of the AuthService service.
const AuthServiceName = "itinavi.v1.AuthService"

// Procedure paths, used for routing and for per-procedure interceptor decisions.
const (
	AuthServiceRegisterProcedure = "/itinavi.v1.AuthService/Register"
	AuthServiceLoginProcedure    = "/itinavi.v1.AuthService/Login"
	AuthServiceGetMeProcedure    = "/itinavi.v1.AuthService/GetMe"
)

// AuthServiceClient is a client for the itinavi.v1.AuthService service.
type AuthServiceClient interface {
	Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error)
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error)
	GetMe(context.Context, *connect.Request[api.GetMeRequest]) (*connect.Response[api.GetMeResponse], error)
}

// NewAuthServiceClient constructs a client for the itinavi.v1.AuthService service.
// baseURL is the server root, e.g. http://localhost:8080.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AuthServiceClient {
	opts = clientOptions(opts)
	return &authServiceClient{
		register: connect.NewClient[api.RegisterRequest, api.RegisterResponse](httpClient, baseURL+AuthServiceRegisterProcedure, opts...),
		login:    connect.NewClient[api.LoginRequest, api.LoginResponse](httpClient, baseURL+AuthServiceLoginProcedure, opts...),
		getMe:    connect.NewClient[api.GetMeRequest, api.GetMeResponse](httpClient, baseURL+AuthServiceGetMeProcedure, opts...),
	}
}

type authServiceClient struct {
	register *connect.Client[api.RegisterRequest, api.RegisterResponse]
	login    *connect.Client[api.LoginRequest, api.LoginResponse]
	getMe    *connect.Client[api.GetMeRequest, api.GetMeResponse]
}

func (c *authServiceClient) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	return c.register.CallUnary(ctx, req)
}

func (c *authServiceClient) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *authServiceClient) GetMe(ctx context.Context, req *connect.Request[api.GetMeRequest]) (*connect.Response[api.GetMeResponse], error) {
	return c.getMe.CallUnary(ctx, req)
}

// AuthServiceHandler is implemented by the server.
// Handles registration and login. Register and Login are public; GetMe requires a token.
type AuthServiceHandler interface {
	Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error)
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error)
	GetMe(context.Context, *connect.Request[api.GetMeRequest]) (*connect.Response[api.GetMeResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	registerHandler := connect.NewUnaryHandler(AuthServiceRegisterProcedure, svc.Register, opts...)
	loginHandler := connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, opts...)
	getMeHandler := connect.NewUnaryHandler(AuthServiceGetMeProcedure, svc.GetMe, opts...)
	return "/itinavi.v1.AuthService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case AuthServiceRegisterProcedure:
			registerHandler.ServeHTTP(w, r)
		case AuthServiceLoginProcedure:
			loginHandler.ServeHTTP(w, r)
		case AuthServiceGetMeProcedure:
			getMeHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedAuthServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedAuthServiceHandler struct{}

func (UnimplementedAuthServiceHandler) Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("itinavi.v1.AuthService.Register is not implemented"))
}

func (UnimplementedAuthServiceHandler) Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("itinavi.v1.AuthService.Login is not implemented"))
}

func (UnimplementedAuthServiceHandler) GetMe(context.Context, *connect.Request[api.GetMeRequest]) (*connect.Response[api.GetMeResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("itinavi.v1.AuthService.GetMe is not implemented"))
}
