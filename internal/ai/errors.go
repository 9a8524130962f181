package ai

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMissingCredential — ключ API не введён; запрос в сеть не выполняется.
	ErrMissingCredential = errors.New("API key is missing")
	// ErrMalformedResponse — ответ не удалось разобрать в choices[0].message.content.
	ErrMalformedResponse = errors.New("malformed response from model")
)

// TransportError — сбой сети, таймаут или ответ с кодом не 2xx.
// StatusCode равен 0, если до HTTP-ответа дело не дошло.
type TransportError struct {
	StatusCode int
	Message    string // сообщение провайдера из тела ответа, если есть
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("transport error: %v", e.Err)
	}
	msg := fmt.Sprintf("HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *TransportError) Unwrap() error { return e.Err }
