// Package application contém o caso de uso da transformação de respostas.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Service.Intercept(ctx, next) chama a continuação uma única vez e
// devolve um Result (valor plano ou erro original).
package application
