package domain

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrNilContinuation é retornado quando não há continuação para chamar.
	ErrNilContinuation = errors.New("transform: nil continuation")
	// ErrCircularReference indica um ciclo de ponteiros no valor convertido.
	ErrCircularReference = errors.New("transform: circular reference")
	// ErrMaxDepth indica aninhamento acima do limite configurado.
	ErrMaxDepth = errors.New("transform: max depth exceeded")
)

// UnsupportedTypeError é retornado para valores sem representação plana
// (funções, channels, números complexos, unsafe.Pointer).
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return "transform: unsupported type " + e.Type.String()
}

// ConversionError localiza uma falha dentro de um valor aninhado.
// Path usa notação estilo JSONPath ($.items[1].owner).
type ConversionError struct {
	Path string
	Err  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("%v at %s", e.Err, e.Path)
}

func (e *ConversionError) Unwrap() error { return e.Err }
