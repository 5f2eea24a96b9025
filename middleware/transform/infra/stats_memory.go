package infra

import (
	"context"
	"sync"

	"transform-gateway/middleware/transform/domain"
)

type Counters struct {
	Converted     int64 `json:"converted"`
	HandlerErrors int64 `json:"handlerErrors"`
	ConvertErrors int64 `json:"convertErrors"`
}

func (c *Counters) add(st domain.Stage) {
	switch st {
	case domain.StageConverted:
		c.Converted++
	case domain.StageHandlerError:
		c.HandlerErrors++
	case domain.StageConvertError:
		c.ConvertErrors++
	}
}

// MemoryStatsStore é uma implementação simples em memória.
// Útil para testes, desenvolvimento e para o endpoint /stats do servidor.
//
// Não faz expiração; a cardinalidade é a das rotas registradas.
type MemoryStatsStore struct {
	mu      sync.Mutex
	total   Counters
	byRoute map[string]Counters
}

func NewMemoryStatsStore() *MemoryStatsStore {
	return &MemoryStatsStore{byRoute: make(map[string]Counters)}
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total.add(ev.Stage)
	if ev.Route != "" {
		c := s.byRoute[ev.Route]
		c.add(ev.Stage)
		s.byRoute[ev.Route] = c
	}
	return nil
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) ByRoute() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.byRoute))
	for k, v := range s.byRoute {
		out[k] = v
	}
	return out
}
