package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shenikar/civic_response_system/internal/store"
)

var tracer = otel.Tracer("github.com/shenikar/civic_response_system/internal/repository")

const uniqueViolation = "23505"

// Backend - реализация store.Backend: документы JSONB в PostgreSQL,
// события изменений через Redis Pub/Sub
type Backend struct {
	db     *pgxpool.Pool
	feed   *ChangeFeed
	logger *logrus.Logger
}

// NewBackend создает Backend
func NewBackend(db *pgxpool.Pool, feed *ChangeFeed, logger *logrus.Logger) *Backend {
	return &Backend{
		db:     db,
		feed:   feed,
		logger: logger,
	}
}

func (b *Backend) startSpan(ctx context.Context, op string, table store.Table) (context.Context, trace.Span) {
	return tracer.Start(ctx, "repository."+op, trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", op),
		attribute.String("db.collection.name", string(table)),
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// publish отправляет событие после успешной записи. Запись уже зафиксирована,
// поэтому сбой публикации только логируется.
func (b *Backend) publish(ctx context.Context, ev store.ChangeEvent) {
	if err := b.feed.Publish(ctx, ev); err != nil {
		b.logger.WithError(err).WithFields(logrus.Fields{
			"table": ev.Table,
			"type":  ev.Type,
		}).Warn("Failed to publish change event")
	}
}

// Insert создает новую запись
func (b *Backend) Insert(ctx context.Context, table store.Table, record json.RawMessage) (_ json.RawMessage, err error) {
	ctx, span := b.startSpan(ctx, "INSERT", table)
	defer func() { endSpan(span, err) }()

	if !table.Valid() {
		return nil, fmt.Errorf("%w: %s", store.ErrUnknownTable, table)
	}
	id := store.RecordID(record)
	if id == "" {
		return nil, fmt.Errorf("insert into %s: record has no id", table)
	}

	query := `INSERT INTO ` + string(table) + ` (id, doc) VALUES ($1, $2) RETURNING doc;`
	var doc []byte
	if err := b.db.QueryRow(ctx, query, id, []byte(record)).Scan(&doc); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("insert %s/%s: %w", table, id, store.ErrConflict)
		}
		return nil, fmt.Errorf("failed to insert into %s: %w", table, err)
	}

	b.publish(ctx, store.ChangeEvent{Table: table, Type: store.EventInsert, New: doc})
	return doc, nil
}

// Update накладывает поля на документ и возвращает новую версию
func (b *Backend) Update(ctx context.Context, table store.Table, id string, fields map[string]any) (_ json.RawMessage, err error) {
	ctx, span := b.startSpan(ctx, "UPDATE", table)
	defer func() { endSpan(span, err) }()

	if !table.Valid() {
		return nil, fmt.Errorf("%w: %s", store.ErrUnknownTable, table)
	}
	patch, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal update fields: %w", err)
	}

	var oldDoc, newDoc []byte
	err = pgx.BeginFunc(ctx, b.db, func(tx pgx.Tx) error {
		selectQuery := `SELECT doc FROM ` + string(table) + ` WHERE id = $1 FOR UPDATE;`
		if err := tx.QueryRow(ctx, selectQuery, id).Scan(&oldDoc); err != nil {
			return err
		}
		updateQuery := `
			UPDATE ` + string(table) + ` SET
				doc = doc || $2::jsonb,
				updated_at = NOW()
			WHERE id = $1
			RETURNING doc;
		`
		return tx.QueryRow(ctx, updateQuery, id, patch).Scan(&newDoc)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("update %s/%s: %w", table, id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update %s: %w", table, err)
	}

	b.publish(ctx, store.ChangeEvent{Table: table, Type: store.EventUpdate, New: newDoc, Old: oldDoc})
	return newDoc, nil
}

// Select возвращает документы, подходящие под фильтр, в порядке создания
func (b *Backend) Select(ctx context.Context, table store.Table, filter store.Filter) (_ []json.RawMessage, err error) {
	ctx, span := b.startSpan(ctx, "SELECT", table)
	defer func() { endSpan(span, err) }()

	if !table.Valid() {
		return nil, fmt.Errorf("%w: %s", store.ErrUnknownTable, table)
	}
	query, args := buildSelect(table, filter)

	rows, err := b.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select from %s: %w", table, err)
	}
	defer rows.Close()

	out := make([]json.RawMessage, 0)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration in %s: %w", table, err)
	}
	return out, nil
}

// Subscribe делегирует подписку каналу изменений
func (b *Backend) Subscribe(ctx context.Context, table store.Table, filter store.Filter) (store.Subscription, error) {
	return b.feed.Subscribe(ctx, table, filter)
}

// buildSelect строит запрос с параметризованными ключами и значениями фильтра
func buildSelect(table store.Table, filter store.Filter) (string, []any) {
	query := `SELECT doc FROM ` + string(table)
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	args := make([]any, 0, len(keys)*2)
	for i, k := range keys {
		if i == 0 {
			query += ` WHERE `
		} else {
			query += ` AND `
		}
		query += fmt.Sprintf("doc->>$%d = $%d", len(args)+1, len(args)+2)
		args = append(args, k, filter[k])
	}
	query += ` ORDER BY created_at, id;`
	return query, args
}
