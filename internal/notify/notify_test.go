package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeToken struct {
	done chan struct{}
	err  error
}

func newFakeToken(err error) *fakeToken {
	t := &fakeToken{done: make(chan struct{}), err: err}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

// fakeClient перехватывает Publish; остальные методы mqtt.Client не используются
type fakeClient struct {
	mqtt.Client
	open       bool
	publishErr error
	topics     []string
	payloads   [][]byte
}

func (c *fakeClient) IsConnectionOpen() bool { return c.open }

func (c *fakeClient) Publish(topic string, _ byte, _ bool, payload interface{}) mqtt.Token {
	c.topics = append(c.topics, topic)
	c.payloads = append(c.payloads, payload.([]byte))
	return newFakeToken(c.publishErr)
}

type recordingSurface struct {
	got []Notification
	err error
}

func (r *recordingSurface) Notify(_ context.Context, n Notification) error {
	r.got = append(r.got, n)
	return r.err
}

func TestMQTTSurface_PublishesToRecipientTopic(t *testing.T) {
	client := &fakeClient{open: true}
	surface := NewMQTTSurface(client, "civic/test")

	err := surface.Notify(context.Background(), Notification{
		Title:       "Urgent alert",
		Body:        "New critical incident: Fire",
		DedupeKey:   "alert-1",
		RecipientID: "r-1",
	})

	require.NoError(t, err)
	require.Len(t, client.topics, 1)
	assert.Equal(t, "civic/test/r-1", client.topics[0])

	var n Notification
	require.NoError(t, json.Unmarshal(client.payloads[0], &n))
	assert.Equal(t, "alert-1", n.DedupeKey)
}

func TestMQTTSurface_DefaultPrefix(t *testing.T) {
	assert.Equal(t, "civic/alerts/u1", NewMQTTSurface(&fakeClient{}, "").Topic("u1"))
}

func TestMQTTSurface_ConnectionClosed(t *testing.T) {
	client := &fakeClient{open: false}

	err := NewMQTTSurface(client, "").Notify(context.Background(), Notification{RecipientID: "r-1"})

	assert.Error(t, err)
	assert.Empty(t, client.topics)
}

func TestMQTTSurface_PublishError(t *testing.T) {
	client := &fakeClient{open: true, publishErr: errors.New("not authorized")}

	err := NewMQTTSurface(client, "").Notify(context.Background(), Notification{RecipientID: "r-1"})

	assert.ErrorContains(t, err, "not authorized")
}

func TestMulti_DeliversToAllAndJoinsErrors(t *testing.T) {
	ok := &recordingSurface{}
	failing := &recordingSurface{err: errors.New("permission denied")}

	err := Multi{failing, ok}.Notify(context.Background(), Notification{DedupeKey: "k"})

	assert.ErrorContains(t, err, "permission denied")
	assert.Len(t, ok.got, 1)
	assert.Len(t, failing.got, 1)
}

func TestNoop(t *testing.T) {
	assert.NoError(t, Noop{}.Notify(context.Background(), Notification{}))
}
