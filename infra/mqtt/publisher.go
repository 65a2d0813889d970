// Package mqtt streams the simulation trace to an MQTT broker so dashboards
// can follow vehicle activity live while a run replays.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/mkervran/fleetsim/infra/logger"
	"github.com/mkervran/fleetsim/infra/trace"
)

// Config defines the connection parameters for the trace publisher.
type Config struct {
	Enabled          bool   `json:"enabled"`
	Broker           string `json:"broker"`
	ClientID         string `json:"client_id"`
	Username         string `json:"username"`
	Password         string `json:"password"`
	TopicPrefix      string `json:"topic_prefix"`
	QoS              byte   `json:"qos"`
	ConnectTimeoutMS int    `json:"connect_timeout_ms"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.TopicPrefix == "" {
		c.TopicPrefix = "fleet"
	}
	if c.ConnectTimeoutMS <= 0 {
		c.ConnectTimeoutMS = 5000
	}
}

// Validate checks mandatory fields when the publisher is enabled.
func (c Config) Validate() error {
	if c.Enabled && c.Broker == "" {
		return fmt.Errorf("mqtt broker is required when the trace publisher is enabled")
	}
	return nil
}

// Publisher publishes trace events.
type Publisher interface {
	PublishEvent(e any) error
	Close() error
}

type pahoClient interface {
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// PahoPublisher implements Publisher using Eclipse Paho.
type PahoPublisher struct {
	cli    pahoClient
	prefix string
	qos    byte
	log    logger.Logger
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewPahoPublisher connects to the broker.
func NewPahoPublisher(cfg Config) (*PahoPublisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "fleetsim-" + uuid.NewString()[:8]
	}
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(clientID).
		SetConnectTimeout(time.Duration(cfg.ConnectTimeoutMS) * time.Millisecond)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	log := logger.New("mqtt-trace")
	cli := newMQTTClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	log.Infof("trace publisher connected to %s", cfg.Broker)
	return &PahoPublisher{cli: cli, prefix: cfg.TopicPrefix, qos: cfg.QoS, log: log}, nil
}

// PublishEvent sends the event's trace record as JSON. Vehicle events go to
// <prefix>/<vehicle_id>/events; engine errors go to <prefix>/engine/errors.
func (p *PahoPublisher) PublishEvent(e any) error {
	rec, ok := trace.FromEvent(e)
	if !ok {
		return nil
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	topic := fmt.Sprintf("%s/engine/errors", p.prefix)
	if rec.VehicleID != "" {
		topic = fmt.Sprintf("%s/%s/events", p.prefix, rec.VehicleID)
	}
	if token := p.cli.Publish(topic, p.qos, false, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt publish %s: %w", topic, token.Error())
	}
	return nil
}

// Close disconnects from the broker.
func (p *PahoPublisher) Close() error {
	p.cli.Disconnect(250)
	return nil
}
