// Package domain define contratos e tipos de domínio para a transformação de respostas.
//
// Este pacote não depende de net/http nem de implementações concretas.
// A intenção é permitir testes de unidade puros e desacoplar a regra
// (chamar a continuação uma vez e converter o valor) dos detalhes de
// infraestrutura (reflection, Redis, logs).
package domain
