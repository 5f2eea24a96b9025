package domain

// Camada de domínio da transformação de respostas.
//
// Contratos (interfaces/tipos) sem dependência de net/http.

import "context"

// Continuation representa "o resto do pipeline": quando chamada, produz
// exatamente um valor (o retorno do handler) ou um erro.
type Continuation func(ctx context.Context) (any, error)

// Converter transforma um valor arbitrário em uma estrutura "plana",
// segura para serialização (apenas dados, sem comportamento).
type Converter interface {
	ToPlain(v any) (any, error)
}

// ConverterFunc adapta uma função comum para Converter.
type ConverterFunc func(v any) (any, error)

func (f ConverterFunc) ToPlain(v any) (any, error) { return f(v) }

// Plainer permite que um tipo forneça a própria representação plana.
// O resultado ainda passa pelo Converter (pode conter structs aninhadas).
type Plainer interface {
	PlainValue() (any, error)
}

// Stage indica em que ponto a interceptação terminou.
type Stage int

const (
	StageConverted Stage = iota
	StageHandlerError
	StageConvertError
)

func (s Stage) String() string {
	switch s {
	case StageConverted:
		return "converted"
	case StageHandlerError:
		return "handler_error"
	case StageConvertError:
		return "convert_error"
	default:
		return "unknown"
	}
}

// Result é o resultado de uma interceptação.
//
// Err, quando presente, é exatamente o erro produzido pela continuação ou
// pelo Converter (sem wrap).
type Result struct {
	Value any
	Stage Stage
	Err   error
}
