// Package httpapi отдаёт MatchingService по протоколу Connect (HTTP/1.1 и h2c)
// рядом с gRPC сервером. Обработчики вызывают сервис в процессе, без
// второго сетевого прыжка.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"reflect"

	"connectrpc.com/connect"
	"google.golang.org/grpc/status"

	"bloodlink/pkg/api/bloodlinkv1"
	"bloodlink/pkg/metrics"
	"bloodlink/pkg/ratelimit"
	"bloodlink/pkg/swagger"
)

// Options настройки HTTP API
type Options struct {
	Metrics *metrics.Metrics
	// Ready сообщает готовность для /ready; nil значит всегда готов
	Ready func(ctx context.Context) error
	// MetricsHandler монтируется на /metrics, если задан
	MetricsHandler http.Handler
	// Limiter ограничивает вызовы процедур на клиента; nil без ограничений
	Limiter ratelimit.Limiter
	// TrustForwarded берёт адрес клиента из X-Forwarded-For
	TrustForwarded bool
	// Docs монтирует Swagger UI и OpenAPI документ на /docs
	Docs    bool
	Version string
}

// NewHandler собирает mux с процедурами сервиса, /health, /ready и /docs
func NewHandler(svc bloodlinkv1.MatchingServiceServer, opts Options) http.Handler {
	if opts.Metrics == nil {
		opts.Metrics = metrics.Get()
	}

	chain := []connect.Interceptor{
		NewRequestIDInterceptor(),
		NewMetricsInterceptor(opts.Metrics),
		NewLoggingInterceptor(),
	}
	if opts.Limiter != nil {
		chain = append(chain, NewRateLimitInterceptor(opts.Limiter, opts.TrustForwarded))
	}
	chain = append(chain, NewValidationInterceptor())

	handlerOpts := []connect.HandlerOption{
		connect.WithCodec(bloodlinkv1.Codec{}),
		connect.WithRecover(recoverHandler),
		connect.WithInterceptors(chain...),
	}

	endpoints := []endpoint{
		unary(bloodlinkv1.MethodCreateRequest, svc.CreateRequest),
		unary(bloodlinkv1.MethodProcessRequest, svc.ProcessRequest),
		unary(bloodlinkv1.MethodConfirmMatch, svc.ConfirmMatch),
		unary(bloodlinkv1.MethodCancelRequest, svc.CancelRequest),
		unary(bloodlinkv1.MethodCompleteRequest, svc.CompleteRequest),
		unary(bloodlinkv1.MethodGetRequest, svc.GetRequest),
		unary(bloodlinkv1.MethodListRequests, svc.ListRequests),
		unary(bloodlinkv1.MethodRankDonors, svc.RankDonors),
		unary(bloodlinkv1.MethodCompatibleDonors, svc.CompatibleDonors),
		unary(bloodlinkv1.MethodRoute, svc.Route),
		unary(bloodlinkv1.MethodAdjustInventory, svc.AdjustInventory),
		unary(bloodlinkv1.MethodGetInventory, svc.GetInventory),
		unary(bloodlinkv1.MethodRegisterDonor, svc.RegisterDonor),
		unary(bloodlinkv1.MethodRemoveDonor, svc.RemoveDonor),
		unary(bloodlinkv1.MethodSetDonorAvailability, svc.SetDonorAvailability),
		unary(bloodlinkv1.MethodListDonors, svc.ListDonors),
		unary(bloodlinkv1.MethodListDonations, svc.ListDonations),
		unary(bloodlinkv1.MethodListTransitions, svc.ListTransitions),
		unary(bloodlinkv1.MethodExportWorkbook, svc.ExportWorkbook),
	}

	mux := http.NewServeMux()
	for _, ep := range endpoints {
		procedure := bloodlinkv1.FullMethod(ep.method)
		mux.Handle(procedure, ep.handler(procedure, handlerOpts...))
	}

	if opts.Docs {
		spec, err := openAPIDocument(endpoints, opts.Version)
		if err != nil {
			// типы сообщений фиксированы, сюда попасть нельзя
			panic("httpapi: build openapi document: " + err.Error())
		}
		swagger.RegisterRoutes(mux, nil, spec)
	}

	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/ready", handleReady(opts.Ready))
	if opts.MetricsHandler != nil {
		mux.Handle("/metrics", opts.MetricsHandler)
	}
	return mux
}

// endpoint процедура сервиса: фабрика Connect обработчика и типы сообщений
type endpoint struct {
	method  string
	handler func(procedure string, opts ...connect.HandlerOption) *connect.Handler
	req     reflect.Type
	resp    reflect.Type
}

// unary превращает метод сервиса в endpoint
func unary[Req, Resp any](method string, call func(context.Context, *Req) (*Resp, error)) endpoint {
	ep := endpoint{
		method: method,
		req:    reflect.TypeOf((*Req)(nil)).Elem(),
		resp:   reflect.TypeOf((*Resp)(nil)).Elem(),
	}
	ep.handler = func(procedure string, opts ...connect.HandlerOption) *connect.Handler {
		return connect.NewUnaryHandler(procedure,
			func(ctx context.Context, req *connect.Request[Req]) (*connect.Response[Resp], error) {
				resp, err := call(ctx, req.Msg)
				if err != nil {
					return nil, toConnectError(err)
				}
				return connect.NewResponse(resp), nil
			},
			opts...,
		)
	}
	return ep
}

// toConnectError переводит статус gRPC в ошибку Connect; коды совпадают
func toConnectError(err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}
	st, ok := status.FromError(err)
	if !ok {
		return connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewError(connect.Code(st.Code()), errors.New(st.Message()))
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func handleReady(ready func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if ready != nil {
			if err := ready(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"ready":false}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ready":true}`))
	}
}
