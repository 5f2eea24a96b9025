package transform

import "net/http"

// HandlerFunc é um handler que devolve um valor em vez de escrever na resposta.
// O valor é serializado pelo Endpoint.
type HandlerFunc func(r *http.Request) (any, error)

// Interceptor envolve um HandlerFunc (o próximo estágio do pipeline).
type Interceptor func(next HandlerFunc) HandlerFunc

// Chain aplica os interceptors em ordem: o primeiro é o mais externo.
func Chain(h HandlerFunc, interceptors ...Interceptor) HandlerFunc {
	for i := len(interceptors) - 1; i >= 0; i-- {
		if interceptors[i] != nil {
			h = interceptors[i](h)
		}
	}
	return h
}
