package store

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// RecordID извлекает поле "id" из документа
func RecordID(record json.RawMessage) string {
	return gjson.GetBytes(record, "id").String()
}

// Matches проверяет документ на соответствие фильтру
func (f Filter) Matches(record json.RawMessage) bool {
	for key, want := range f {
		if gjson.GetBytes(record, key).String() != want {
			return false
		}
	}
	return true
}

// Matches проверяет событие: для DELETE смотрим на старую версию записи
func (e ChangeEvent) Matches(f Filter) bool {
	if len(f) == 0 {
		return true
	}
	if e.New != nil && f.Matches(e.New) {
		return true
	}
	return e.Old != nil && f.Matches(e.Old)
}

// Merge накладывает поля на документ верхнего уровня
func Merge(record json.RawMessage, fields map[string]any) (json.RawMessage, error) {
	doc := make(map[string]json.RawMessage)
	if err := json.Unmarshal(record, &doc); err != nil {
		return nil, err
	}
	for key, value := range fields {
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		doc[key] = raw
	}
	return json.Marshal(doc)
}
