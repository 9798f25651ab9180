// Package store описывает контракт внешнего хранилища с push-уведомлениями об изменениях.
// Записи передаются как JSON-документы с обязательным полем "id".
package store

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	// ErrNotFound - запись с указанным id отсутствует
	ErrNotFound = errors.New("record not found")
	// ErrConflict - запись с таким id уже существует
	ErrConflict = errors.New("record already exists")
	// ErrUnknownTable - таблица не входит в известный набор
	ErrUnknownTable = errors.New("unknown table")
)

//go:generate mockgen -source=store.go -destination=mocks/backend.go -package=mocks

// Table - имя коллекции в хранилище
type Table string

const (
	TableIncidents       Table = "incidents"
	TableIncidentUpdates Table = "incident_updates"
	TableResponders      Table = "responders"
	TableAlerts          Table = "alerts"
	TableMessages        Table = "secure_messages"
	TableCoordinations   Table = "response_coordinations"
)

// Tables - все известные таблицы
var Tables = []Table{
	TableIncidents,
	TableIncidentUpdates,
	TableResponders,
	TableAlerts,
	TableMessages,
	TableCoordinations,
}

// Valid сообщает, входит ли таблица в известный набор
func (t Table) Valid() bool {
	for _, known := range Tables {
		if t == known {
			return true
		}
	}
	return false
}

// Filter - равенство строковых значений полей верхнего уровня документа
type Filter map[string]string

// EventType - вид изменения
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// ChangeEvent - push-событие об изменении записи
type ChangeEvent struct {
	Table Table           `json:"table"`
	Type  EventType       `json:"type"`
	New   json.RawMessage `json:"new,omitempty"`
	Old   json.RawMessage `json:"old,omitempty"`
}

// Subscription - активная подписка на изменения таблицы
type Subscription interface {
	// Events закрывается, когда подписка завершена
	Events() <-chan ChangeEvent
	// Err возвращает причину обрыва; nil после штатного Close
	Err() error
	Close() error
}

// Backend - хранилище с CRUD-операциями и каналом изменений
type Backend interface {
	Insert(ctx context.Context, table Table, record json.RawMessage) (json.RawMessage, error)
	Update(ctx context.Context, table Table, id string, fields map[string]any) (json.RawMessage, error)
	Select(ctx context.Context, table Table, filter Filter) ([]json.RawMessage, error)
	Subscribe(ctx context.Context, table Table, filter Filter) (Subscription, error)
}
