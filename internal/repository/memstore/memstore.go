// Package memstore - реализация store.Backend в памяти с доставкой изменений
// внутри процесса. Для разработки и тестов.
package memstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/shenikar/civic_response_system/internal/store"
)

// subscriptionBuffer - подписчик, отставший больше чем на столько событий, отключается
const subscriptionBuffer = 1024

// ErrSlowConsumer - подписка закрыта из-за переполнения буфера
var ErrSlowConsumer = errors.New("memstore: subscriber too slow, events dropped")

type table struct {
	rows  map[string]json.RawMessage
	order []string
}

// Store хранит документы в памяти и рассылает события изменений подписчикам
type Store struct {
	mu     sync.RWMutex
	tables map[store.Table]*table
	subs   map[int]*subscription
	nextID int
}

// New - конструктор для Store
func New() *Store {
	s := &Store{
		tables: make(map[store.Table]*table),
		subs:   make(map[int]*subscription),
	}
	for _, t := range store.Tables {
		s.tables[t] = &table{rows: make(map[string]json.RawMessage)}
	}
	return s
}

func (s *Store) table(t store.Table) (*table, error) {
	tbl, ok := s.tables[t]
	if !ok {
		return nil, fmt.Errorf("memstore: %w: %s", store.ErrUnknownTable, t)
	}
	return tbl, nil
}

// Insert сохраняет копию записи; у записи должен быть непустой "id"
func (s *Store) Insert(_ context.Context, t store.Table, record json.RawMessage) (json.RawMessage, error) {
	id := store.RecordID(record)
	if id == "" {
		return nil, fmt.Errorf("memstore: insert into %s: record has no id", t)
	}

	s.mu.Lock()
	tbl, err := s.table(t)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if _, exists := tbl.rows[id]; exists {
		s.mu.Unlock()
		return nil, fmt.Errorf("memstore: insert %s/%s: %w", t, id, store.ErrConflict)
	}
	cp := slices.Clone(record)
	tbl.rows[id] = cp
	tbl.order = append(tbl.order, id)
	subs := s.snapshotSubs(t)
	s.mu.Unlock()

	s.publish(subs, store.ChangeEvent{Table: t, Type: store.EventInsert, New: cp})
	return slices.Clone(cp), nil
}

// Update сливает поля с сохраненным документом и возвращает новую версию
func (s *Store) Update(_ context.Context, t store.Table, id string, fields map[string]any) (json.RawMessage, error) {
	s.mu.Lock()
	tbl, err := s.table(t)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	old, ok := tbl.rows[id]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("memstore: update %s/%s: %w", t, id, store.ErrNotFound)
	}
	merged, err := store.Merge(old, fields)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("memstore: merge %s/%s: %w", t, id, err)
	}
	tbl.rows[id] = merged
	subs := s.snapshotSubs(t)
	s.mu.Unlock()

	s.publish(subs, store.ChangeEvent{Table: t, Type: store.EventUpdate, New: merged, Old: old})
	return slices.Clone(merged), nil
}

// Delete удаляет запись. Не входит в store.Backend: тесты имитируют им удаление
// другим клиентом.
func (s *Store) Delete(_ context.Context, t store.Table, id string) error {
	s.mu.Lock()
	tbl, err := s.table(t)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	old, ok := tbl.rows[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("memstore: delete %s/%s: %w", t, id, store.ErrNotFound)
	}
	delete(tbl.rows, id)
	tbl.order = slices.DeleteFunc(tbl.order, func(v string) bool { return v == id })
	subs := s.snapshotSubs(t)
	s.mu.Unlock()

	s.publish(subs, store.ChangeEvent{Table: t, Type: store.EventDelete, Old: old})
	return nil
}

// Select возвращает копии подходящих записей в порядке вставки
func (s *Store) Select(_ context.Context, t store.Table, filter store.Filter) ([]json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tbl, err := s.table(t)
	if err != nil {
		return nil, err
	}
	out := make([]json.RawMessage, 0)
	for _, id := range tbl.order {
		rec := tbl.rows[id]
		if filter.Matches(rec) {
			out = append(out, slices.Clone(rec))
		}
	}
	return out, nil
}

// Subscribe подписывает на изменения таблицы, подходящие под filter
func (s *Store) Subscribe(ctx context.Context, t store.Table, filter store.Filter) (store.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.table(t); err != nil {
		return nil, err
	}
	s.nextID++
	sub := &subscription{
		id:     s.nextID,
		owner:  s,
		table:  t,
		filter: filter,
		events: make(chan store.ChangeEvent, subscriptionBuffer),
		done:   make(chan struct{}),
	}
	s.subs[sub.id] = sub

	go func() {
		select {
		case <-ctx.Done():
			_ = sub.Close()
		case <-sub.done:
		}
	}()
	return sub, nil
}

// DropSubscriptions закрывает все подписки с ошибкой err, как при обрыве канала
func (s *Store) DropSubscriptions(err error) {
	s.mu.Lock()
	subs := make([]*subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()
	for _, sub := range subs {
		sub.fail(err)
	}
}

// SubscriberCount - число активных подписок
func (s *Store) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

func (s *Store) snapshotSubs(t store.Table) []*subscription {
	out := make([]*subscription, 0)
	for _, sub := range s.subs {
		if sub.table == t {
			out = append(out, sub)
		}
	}
	return out
}

func (s *Store) publish(subs []*subscription, ev store.ChangeEvent) {
	for _, sub := range subs {
		if ev.Matches(sub.filter) {
			sub.deliver(ev)
		}
	}
}

func (s *Store) remove(id int) {
	s.mu.Lock()
	delete(s.subs, id)
	s.mu.Unlock()
}

type subscription struct {
	id     int
	owner  *Store
	table  store.Table
	filter store.Filter

	mu     sync.Mutex
	events chan store.ChangeEvent
	done   chan struct{}
	closed bool
	err    error
}

func (s *subscription) Events() <-chan store.ChangeEvent { return s.events }

func (s *subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *subscription) Close() error {
	s.finish(nil)
	return nil
}

func (s *subscription) fail(err error) {
	s.finish(err)
}

func (s *subscription) finish(err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.err = err
	close(s.events)
	close(s.done)
	s.mu.Unlock()
	s.owner.remove(s.id)
}

func (s *subscription) deliver(ev store.ChangeEvent) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	select {
	case s.events <- ev:
		s.mu.Unlock()
	default:
		s.mu.Unlock()
		s.fail(ErrSlowConsumer)
	}
}
