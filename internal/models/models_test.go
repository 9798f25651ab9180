package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIncidentStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to IncidentStatus
		want     bool
	}{
		{StatusReported, StatusAcknowledged, true},
		{StatusReported, StatusResolved, true},
		{StatusAcknowledged, StatusAcknowledged, true},
		{StatusResponding, StatusAcknowledged, false},
		{StatusResolved, StatusReported, false},
		{StatusReported, IncidentStatus("archived"), false},
	}
	for _, tc := range cases {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func TestNormalizeSet(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, NormalizeSet([]string{" b", "a", "", "b"}))
	assert.Empty(t, NormalizeSet(nil))
}

func TestSetAdd_DoesNotAliasInput(t *testing.T) {
	base := []string{"a", "c"}

	got, changed := SetAdd(base, "b")

	assert.True(t, changed)
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, []string{"a", "c"}, base)

	same, changed := SetAdd(got, "b")
	assert.False(t, changed)
	assert.Equal(t, got, same)
}

func TestSetRemove(t *testing.T) {
	got, changed := SetRemove([]string{"a", "b"}, "a")
	assert.True(t, changed)
	assert.Equal(t, []string{"b"}, got)

	_, changed = SetRemove(got, "zz")
	assert.False(t, changed)
}

func TestIntersects(t *testing.T) {
	assert.True(t, Intersects([]string{"first-aid", "driving"}, []string{"first-aid"}))
	assert.False(t, Intersects([]string{"logistics"}, []string{"first-aid"}))
	assert.False(t, Intersects(nil, []string{"first-aid"}))
}

func TestSecureMessage_VisibleTo(t *testing.T) {
	msg := &SecureMessage{SenderID: "u1", RecipientIDs: []string{"u2", "u3"}}

	for _, u := range []string{"u1", "u2", "u3"} {
		assert.True(t, msg.VisibleTo(u), u)
	}
	assert.False(t, msg.VisibleTo("u4"))
}

func TestResponder_AtCapacity(t *testing.T) {
	r := &Responder{Availability: Availability{MaxConcurrentIncidents: 1}}
	assert.False(t, r.AtCapacity())

	r.CurrentIncidents = []string{"inc-1"}
	assert.True(t, r.AtCapacity())

	r.Availability.MaxConcurrentIncidents = 0
	assert.False(t, r.AtCapacity())
}

func TestIncident_CloneIsDeep(t *testing.T) {
	inc := &Incident{
		RespondersAssigned: []string{"r1"},
		Location:           &Location{Region: "north"},
	}

	cp := inc.Clone()
	cp.RespondersAssigned[0] = "r2"
	cp.Location.Region = "south"

	assert.Equal(t, "r1", inc.RespondersAssigned[0])
	assert.Equal(t, "north", inc.Location.Region)
}
