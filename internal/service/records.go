package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/shenikar/civic_response_system/internal/apperr"
	"github.com/shenikar/civic_response_system/internal/store"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateInput проверяет теги validate и возвращает ValidationError
func validateInput(op string, input any) error {
	if err := validate.Struct(input); err != nil {
		return apperr.ValidationWrap(op, err)
	}
	return nil
}

func encode(v any) (json.RawMessage, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return raw, nil
}

func decode[T any](raw json.RawMessage) (*T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &v, nil
}

// decodeAll разбирает выборку; битые документы пропускаются и возвращаются как ошибка
func decodeAll[T any](rows []json.RawMessage) ([]*T, error) {
	out := make([]*T, 0, len(rows))
	var errs []error
	for _, raw := range rows {
		v, err := decode[T](raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("record %q: %w", store.RecordID(raw), err))
			continue
		}
		out = append(out, v)
	}
	return out, errors.Join(errs...)
}

// storeError переводит ошибку хранилища в вид ядра
func storeError(op, entity, id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(op, entity, id)
	}
	return apperr.Store(op, err)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func utcNow() time.Time {
	return time.Now().UTC()
}
