// Package notify описывает локальную поверхность уведомлений оператора.
// Доставка всегда best-effort: вызывающий код не должен зависеть от успеха.
package notify

import (
	"context"
	"errors"
)

// Notification - уведомление, показываемое оператору
type Notification struct {
	Title       string `json:"title"`
	Body        string `json:"body"`
	DedupeKey   string `json:"dedupe_key"`
	RecipientID string `json:"recipient_id"`
	Priority    string `json:"priority,omitempty"`
}

// Surface показывает уведомление; может молча ничего не делать
type Surface interface {
	Notify(ctx context.Context, n Notification) error
}

// Noop - поверхность, которая ничего не показывает
type Noop struct{}

func (Noop) Notify(context.Context, Notification) error { return nil }

// Multi рассылает уведомление во все поверхности и объединяет ошибки
type Multi []Surface

func (m Multi) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, s := range m {
		if err := s.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
