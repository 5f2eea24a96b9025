// Package transform fornece o hook de resposta (net/http) que converte o valor
// retornado por um handler em uma estrutura plana antes da serialização.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: caso de uso (chamar a continuação uma vez e converter) sem net/http
//   - infra: implementações concretas (conversor via reflection, stats em memória/Redis/log)
//   - transform (este pacote): HandlerFunc, interceptors, Endpoint + tradução para status/JSON
//
// Fluxo por requisição:
//
//   1) Endpoint chama a cadeia de interceptors
//   2) Middleware chama o próximo handler (continuação) exatamente uma vez
//   3) O valor retornado passa pelo Converter; erros voltam sem alteração
//   4) Endpoint escreve o JSON (ou delega o erro ao ErrorHandler)
package transform
