package infra

import (
	"context"
	"sync"
	"time"

	"transform-gateway/middleware/transform/domain"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// LogStatsStore registra em log os desfechos que não foram "converted".
//
// Um token bucket (x/time/rate) limita o volume: quando um handler passa a
// falhar em todas as requisições, o log não cresce na mesma proporção.
// Eventos descartados são contados e aparecem no próximo log emitido.
type LogStatsStore struct {
	log zerolog.Logger
	lim *rate.Limiter

	logConverted bool

	mu         sync.Mutex
	suppressed int64
}

type LogStatsOption func(*LogStatsStore)

// WithLogRate define quantos logs por segundo (e rajada) são permitidos.
// rps <= 0 desativa o limite.
func WithLogRate(rps float64, burst int) LogStatsOption {
	return func(s *LogStatsStore) {
		if rps <= 0 {
			s.lim = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst <= 0 {
			burst = 1
		}
		s.lim = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogConverted também registra (em debug) as conversões bem sucedidas.
func WithLogConverted(on bool) LogStatsOption {
	return func(s *LogStatsStore) { s.logConverted = on }
}

func NewLogStatsStore(log zerolog.Logger, opts ...LogStatsOption) *LogStatsStore {
	s := &LogStatsStore{
		log: log,
		lim: rate.NewLimiter(rate.Every(time.Second), 5),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LogStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	if ev.Stage == domain.StageConverted {
		if s.logConverted {
			s.event(s.log.Debug(), ev).Msg("response converted")
		}
		return nil
	}

	s.mu.Lock()
	if !s.lim.Allow() {
		s.suppressed++
		s.mu.Unlock()
		return nil
	}
	n := s.suppressed
	s.suppressed = 0
	s.mu.Unlock()

	e := s.event(s.log.Warn(), ev)
	if n > 0 {
		e = e.Int64("suppressed", n)
	}
	e.Msg("response transform failed")
	return nil
}

func (s *LogStatsStore) event(e *zerolog.Event, ev domain.StatsEvent) *zerolog.Event {
	return e.
		Str("stage", ev.Stage.String()).
		Str("route", ev.Route).
		Str("method", ev.Method).
		Str("path", ev.Path).
		Dur("duration", ev.Duration)
}
