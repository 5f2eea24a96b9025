package domain

import (
	"context"
	"time"
)

// StatsEvent representa o desfecho de uma interceptação.
//
// Ele é propositalmente "agnóstico de HTTP": Method/Path são strings genéricas.
// Route é a chave de agregação (ex.: "GET /products/{id}"); prefira o padrão
// da rota ao path bruto para não explodir a cardinalidade no Redis.
type StatsEvent struct {
	Route  string
	Method string
	Path   string

	Stage    Stage
	Duration time.Duration

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas da transformação.
//
// O middleware trata erro como best-effort (não derruba request).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
