package middleware

import (
	"context"
	"time"

	"connectrpc.com/connect"

	"github.com/koyostar/ItinaviCN-sub000/internal/metrics"
)

// MetricsInterceptor counts and times every unary RPC.
func MetricsInterceptor(m *metrics.Metrics) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure

			resp, err := next(ctx, req)

			m.RPCDuration.WithLabelValues(procedure).Observe(time.Since(start).Seconds())
			m.RPCRequests.WithLabelValues(procedure, metrics.Code(err)).Inc()
			return resp, err
		}
	}
}
