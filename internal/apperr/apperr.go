// Package apperr описывает виды ошибок ядра координации инцидентов.
package apperr

import (
	"errors"
	"fmt"
)

// Kind - машиночитаемый вид ошибки
type Kind string

const (
	KindUnknown      Kind = "unknown"
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindStore        Kind = "store"
	KindSubscription Kind = "subscription"
)

// Error - ошибка операции ядра с указанием вида
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation - некорректный или отсутствующий обязательный ввод
func Validation(op, format string, args ...any) error {
	return &Error{Kind: KindValidation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// ValidationWrap оборачивает ошибку валидатора
func ValidationWrap(op string, err error) error {
	return &Error{Kind: KindValidation, Op: op, Msg: "invalid input", Err: err}
}

// NotFound - ссылка на неизвестный идентификатор
func NotFound(op, entity, id string) error {
	return &Error{Kind: KindNotFound, Op: op, Msg: fmt.Sprintf("%s %q not found", entity, id)}
}

// Store - сбой обращения к хранилищу
func Store(op string, err error) error {
	return &Error{Kind: KindStore, Op: op, Msg: "store round-trip failed", Err: err}
}

// Subscription - канал push-событий не установлен или оборвался
func Subscription(key string, err error) error {
	return &Error{Kind: KindSubscription, Op: "subscribe " + key, Msg: "live updates paused", Err: err}
}

// KindOf возвращает вид ошибки или KindUnknown
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsValidation(err error) bool   { return KindOf(err) == KindValidation }
func IsNotFound(err error) bool     { return KindOf(err) == KindNotFound }
func IsStore(err error) bool        { return KindOf(err) == KindStore }
func IsSubscription(err error) bool { return KindOf(err) == KindSubscription }
