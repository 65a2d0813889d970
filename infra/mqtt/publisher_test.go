package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkervran/fleetsim/core/events"
	"github.com/mkervran/fleetsim/core/model"
)

type fakeToken struct{ err error }

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type published struct {
	topic   string
	payload []byte
}

type fakeClient struct {
	connectErr error
	publishErr error
	messages   []published
	disconnect bool
}

func (c *fakeClient) Connect() paho.Token { return &fakeToken{err: c.connectErr} }
func (c *fakeClient) Disconnect(uint)     { c.disconnect = true }
func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.messages = append(c.messages, published{topic: topic, payload: payload.([]byte)})
	return &fakeToken{err: c.publishErr}
}

func newTestPublisher(t *testing.T, cli *fakeClient) *PahoPublisher {
	t.Helper()
	orig := newMQTTClient
	newMQTTClient = func(*paho.ClientOptions) pahoClient { return cli }
	t.Cleanup(func() { newMQTTClient = orig })

	pub, err := NewPahoPublisher(Config{Enabled: true, Broker: "tcp://localhost:1883"})
	require.NoError(t, err)
	return pub
}

func TestPublishVehicleEventTopic(t *testing.T) {
	cli := &fakeClient{}
	pub := newTestPublisher(t, cli)

	ev := events.Dropoff{
		Time:      time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		RequestID: "req-1",
		VehicleID: "veh-3",
		Location:  model.Location{Lat: 40.7, Lon: -74.0},
		Revenue:   9.2,
	}
	require.NoError(t, pub.PublishEvent(ev))
	require.Len(t, cli.messages, 1)
	assert.Equal(t, "fleet/veh-3/events", cli.messages[0].topic)

	var got map[string]any
	require.NoError(t, json.Unmarshal(cli.messages[0].payload, &got))
	assert.Equal(t, "dropoff", got["kind"])
	assert.Equal(t, "req-1", got["request_id"])
}

func TestPublishErrorEventTopic(t *testing.T) {
	cli := &fakeClient{}
	pub := newTestPublisher(t, cli)

	ev := events.Error{
		Time:      time.Now().UTC(),
		RequestID: "req-9",
		Kind:      events.KindParseError,
		Message:   "unreadable request",
	}
	require.NoError(t, pub.PublishEvent(ev))
	require.Len(t, cli.messages, 1)
	assert.Equal(t, "fleet/engine/errors", cli.messages[0].topic)
}

func TestPublishIgnoresUnknownEvent(t *testing.T) {
	cli := &fakeClient{}
	pub := newTestPublisher(t, cli)

	require.NoError(t, pub.PublishEvent(struct{ X int }{X: 1}))
	assert.Empty(t, cli.messages)
}

func TestPublishReturnsBrokerError(t *testing.T) {
	cli := &fakeClient{publishErr: errors.New("broker down")}
	pub := newTestPublisher(t, cli)

	err := pub.PublishEvent(events.Pickup{
		Time:      time.Now().UTC(),
		RequestID: "req-1",
		VehicleID: "veh-1",
	})
	assert.ErrorContains(t, err, "broker down")
}

func TestConnectFailure(t *testing.T) {
	orig := newMQTTClient
	newMQTTClient = func(*paho.ClientOptions) pahoClient {
		return &fakeClient{connectErr: errors.New("refused")}
	}
	t.Cleanup(func() { newMQTTClient = orig })

	_, err := NewPahoPublisher(Config{Enabled: true, Broker: "tcp://localhost:1883"})
	assert.ErrorContains(t, err, "refused")
}

func TestValidateRequiresBroker(t *testing.T) {
	cfg := Config{Enabled: true}
	cfg.SetDefaults()
	assert.Error(t, cfg.Validate())

	cfg.Enabled = false
	assert.NoError(t, cfg.Validate())
}

func TestCloseDisconnects(t *testing.T) {
	cli := &fakeClient{}
	pub := newTestPublisher(t, cli)
	require.NoError(t, pub.Close())
	assert.True(t, cli.disconnect)
}
