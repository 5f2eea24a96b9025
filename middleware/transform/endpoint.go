package transform

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
)

// StatusCoder é implementado por erros que carregam o próprio status HTTP.
type StatusCoder interface {
	HTTPStatus() int
}

// HTTPError é um erro simples com status HTTP.
type HTTPError struct {
	Status  int
	Message string
}

func NewHTTPError(status int, message string) *HTTPError {
	if message == "" {
		message = http.StatusText(status)
	}
	return &HTTPError{Status: status, Message: message}
}

func (e *HTTPError) Error() string   { return e.Message }
func (e *HTTPError) HTTPStatus() int { return e.Status }

// ErrorHandler traduz um erro vindo do pipeline para a resposta HTTP.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// errorBody segue o formato {"statusCode":N,"message":"..."}.
type errorBody struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// DefaultErrorHandler usa o status de StatusCoder; qualquer outro erro vira 500
// sem expor a mensagem interna.
func DefaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := http.StatusText(status)

	var sc StatusCoder
	if errors.As(err, &sc) {
		if s := sc.HTTPStatus(); s >= 400 && s <= 599 {
			status = s
			msg = err.Error()
		}
	}
	writeJSON(w, status, errorBody{StatusCode: status, Message: msg})
}

type EndpointOptions struct {
	// Status fixo para sucesso. Se 0, usa 201 para POST e 200 para o resto.
	Status       int
	ErrorHandler ErrorHandler
}

// Endpoint é o estágio de escrita da resposta: executa h e serializa o valor em JSON.
// Valor nil responde 204 sem corpo.
func Endpoint(h HandlerFunc, opts EndpointOptions) http.Handler {
	if opts.ErrorHandler == nil {
		opts.ErrorHandler = DefaultErrorHandler
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, err := h(r)
		if err != nil {
			opts.ErrorHandler(w, r, err)
			return
		}
		if v == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(v); err != nil {
			opts.ErrorHandler(w, r, err)
			return
		}

		status := opts.Status
		if status == 0 {
			status = http.StatusOK
			if r.Method == http.MethodPost {
				status = http.StatusCreated
			}
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.WriteHeader(status)
		_, _ = w.Write(buf.Bytes())
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
