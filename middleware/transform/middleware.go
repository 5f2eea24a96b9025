package transform

import (
	"context"
	"net/http"
	"time"

	"transform-gateway/middleware/transform/application"
	"transform-gateway/middleware/transform/domain"
	"transform-gateway/middleware/transform/infra"
)

// RouteFunc define a chave de agregação das estatísticas para uma requisição.
type RouteFunc func(r *http.Request) string

type Options struct {
	Converter domain.Converter
	Stats     domain.StatsStore
	RouteFn   RouteFunc
}

// DefaultRouteFunc usa "METHOD path".
func DefaultRouteFunc(r *http.Request) string {
	return r.Method + " " + r.URL.Path
}

// Middleware é o hook de resposta: chama next uma única vez e converte o valor
// emitido para estrutura plana. Erros do handler e do conversor seguem intactos
// para o ErrorHandler do Endpoint.
func Middleware(opts Options) Interceptor {
	if opts.Converter == nil {
		opts.Converter = infra.NewPlainConverter()
	}
	if opts.RouteFn == nil {
		opts.RouteFn = DefaultRouteFunc
	}

	svc := application.Service{Converter: opts.Converter}

	return func(next HandlerFunc) HandlerFunc {
		return func(r *http.Request) (any, error) {
			start := time.Now()

			res := svc.Intercept(r.Context(), func(ctx context.Context) (any, error) {
				if next == nil {
					return nil, domain.ErrNilContinuation
				}
				return next(r.WithContext(ctx))
			})

			if opts.Stats != nil {
				_ = opts.Stats.Record(r.Context(), domain.StatsEvent{
					Route:    opts.RouteFn(r),
					Method:   r.Method,
					Path:     r.URL.Path,
					Stage:    res.Stage,
					Duration: time.Since(start),
					At:       start,
				})
			}
			return res.Value, res.Err
		}
	}
}
