package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"transform-gateway/middleware/transform"
	"transform-gateway/middleware/transform/domain"
	"transform-gateway/middleware/transform/infra"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const requestIDHeader = "X-Request-ID"

type routerDeps struct {
	log       zerolog.Logger
	converter domain.Converter
	stats     domain.StatsStore
	memStats  *infra.MemoryStatsStore
	catalog   *catalog
	timeout   time.Duration
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(requestID(d.log))
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	if d.timeout > 0 {
		r.Use(middleware.Timeout(d.timeout))
	}

	hook := transform.Middleware(transform.Options{
		Converter: d.converter,
		Stats:     d.stats,
		RouteFn:   routePattern,
	})
	endpoint := func(h transform.HandlerFunc) http.Handler {
		return transform.Endpoint(transform.Chain(h, hook), transform.EndpointOptions{
			ErrorHandler: logErrors,
		})
	}

	r.Method(http.MethodGet, "/health", endpoint(func(*http.Request) (any, error) {
		return "ok", nil
	}))
	r.Method(http.MethodGet, "/stats", endpoint(func(*http.Request) (any, error) {
		if d.memStats == nil {
			return nil, transform.NewHTTPError(http.StatusNotFound, "stats disabled")
		}
		return map[string]any{
			"total":  d.memStats.Total(),
			"routes": d.memStats.ByRoute(),
		}, nil
	}))

	r.Route("/products", func(r chi.Router) {
		r.Method(http.MethodGet, "/", endpoint(func(*http.Request) (any, error) {
			return d.catalog.list(), nil
		}))
		r.Method(http.MethodPost, "/", endpoint(func(req *http.Request) (any, error) {
			var in newProduct
			dec := json.NewDecoder(io.LimitReader(req.Body, 1<<20))
			dec.DisallowUnknownFields()
			if err := dec.Decode(&in); err != nil {
				return nil, transform.NewHTTPError(http.StatusBadRequest, "invalid JSON body")
			}
			if strings.TrimSpace(in.Name) == "" {
				return nil, transform.NewHTTPError(http.StatusBadRequest, "name is required")
			}
			if in.PriceCents < 0 || in.CostCents < 0 {
				return nil, transform.NewHTTPError(http.StatusBadRequest, "amounts must be >= 0")
			}
			return d.catalog.add(in), nil
		}))
		r.Method(http.MethodGet, "/{id}", endpoint(func(req *http.Request) (any, error) {
			p, ok := d.catalog.get(chi.URLParam(req, "id"))
			if !ok {
				return nil, transform.NewHTTPError(http.StatusNotFound, "product not found")
			}
			return p, nil
		}))
		r.Method(http.MethodDelete, "/{id}", endpoint(func(req *http.Request) (any, error) {
			if !d.catalog.remove(chi.URLParam(req, "id")) {
				return nil, transform.NewHTTPError(http.StatusNotFound, "product not found")
			}
			return nil, nil
		}))
	})

	return r
}

// routePattern agrega stats pelo padrão da rota do chi (ex: "GET /products/{id}").
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return r.Method + " " + p
		}
	}
	return transform.DefaultRouteFunc(r)
}

// requestID propaga (ou gera) o X-Request-ID e anexa um logger com o id ao contexto.
func requestID(base zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(requestIDHeader))
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, id)

			l := base.With().Str("request_id", id).Logger()
			next.ServeHTTP(w, r.WithContext(l.WithContext(r.Context())))
		})
	}
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		zerolog.Ctx(r.Context()).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("request completed")
	})
}

// logErrors registra o erro original e delega a resposta ao handler padrão.
func logErrors(w http.ResponseWriter, r *http.Request, err error) {
	var sc transform.StatusCoder
	ev := zerolog.Ctx(r.Context()).Error()
	if errors.As(err, &sc) && sc.HTTPStatus() < http.StatusInternalServerError {
		ev = zerolog.Ctx(r.Context()).Debug()
	}
	ev.Err(err).Str("path", r.URL.Path).Msg("request failed")
	transform.DefaultErrorHandler(w, r, err)
}
