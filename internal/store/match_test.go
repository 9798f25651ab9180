package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordID(t *testing.T) {
	assert.Equal(t, "abc", RecordID(json.RawMessage(`{"id":"abc","x":1}`)))
	assert.Empty(t, RecordID(json.RawMessage(`{"x":1}`)))
}

func TestFilter_Matches(t *testing.T) {
	rec := json.RawMessage(`{"id":"a1","recipient_id":"u2","priority":"high"}`)

	assert.True(t, Filter{}.Matches(rec))
	assert.True(t, Filter{"recipient_id": "u2"}.Matches(rec))
	assert.False(t, Filter{"recipient_id": "u3"}.Matches(rec))
	assert.False(t, Filter{"recipient_id": "u2", "priority": "low"}.Matches(rec))
}

func TestChangeEvent_MatchesOldOnDelete(t *testing.T) {
	ev := ChangeEvent{Type: EventDelete, Old: json.RawMessage(`{"id":"i1"}`)}

	assert.True(t, ev.Matches(Filter{"id": "i1"}))
	assert.False(t, ev.Matches(Filter{"id": "i2"}))
}

func TestMerge_OverridesTopLevelFields(t *testing.T) {
	merged, err := Merge(json.RawMessage(`{"id":"i1","title":"old","tags":["a"]}`), map[string]any{
		"title": "new",
		"tags":  []string{"b", "c"},
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{"id":"i1","title":"new","tags":["b","c"]}`, string(merged))
}

func TestTable_Valid(t *testing.T) {
	assert.True(t, TableAlerts.Valid())
	assert.False(t, Table("users; DROP TABLE x").Valid())
}
