package application

import (
	"context"

	"transform-gateway/middleware/transform/domain"
)

// Service concentra a regra do hook de resposta.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas chama a continuação
// e aplica o Converter ao único valor emitido.
type Service struct {
	Converter domain.Converter
}

// Intercept invoca next exatamente uma vez.
//   - Se next falhar, o erro volta intacto (StageHandlerError).
//   - Se a conversão falhar, o erro do Converter volta intacto (StageConvertError).
//   - Sem Converter, o valor passa sem alteração.
func (s Service) Intercept(ctx context.Context, next domain.Continuation) domain.Result {
	if next == nil {
		return domain.Result{Stage: domain.StageHandlerError, Err: domain.ErrNilContinuation}
	}

	v, err := next(ctx)
	if err != nil {
		return domain.Result{Stage: domain.StageHandlerError, Err: err}
	}

	if s.Converter == nil {
		return domain.Result{Value: v, Stage: domain.StageConverted}
	}

	out, err := s.Converter.ToPlain(v)
	if err != nil {
		return domain.Result{Stage: domain.StageConvertError, Err: err}
	}
	return domain.Result{Value: out, Stage: domain.StageConverted}
}
