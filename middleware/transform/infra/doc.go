// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - PlainConverter: conversão via reflection para map[string]any / []any
//   - MemoryStatsStore / RedisStatsStore: contadores por estágio e rota
//   - LogStatsStore: log de falhas com zerolog, limitado por golang.org/x/time/rate
package infra
