// Package telemetry publishes live fleet telemetry over MQTT. Dashboards and
// driver terminals subscribe to the per-truck topics; publishing is
// fire-and-forget and never blocks the simulation.
package telemetry

import (
	"encoding/json"
	"fmt"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/shriram-s7/fleetdispatch/core/model"
	"github.com/shriram-s7/fleetdispatch/infra/logger"
)

// Config defines the connection parameters for the MQTT publisher.
type Config struct {
	Enabled     bool   `json:"enabled" koanf:"enabled"`
	Broker      string `json:"broker" koanf:"broker"`
	ClientID    string `json:"client_id" koanf:"client_id"`
	Username    string `json:"username" koanf:"username"`
	Password    string `json:"password" koanf:"password"`
	TopicPrefix string `json:"topic_prefix" koanf:"topic_prefix"`
	QoS         byte   `json:"qos" koanf:"qos"`
}

// SetDefaults fills zero fields.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "fleetdispatch"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "fleet"
	}
}

// Publisher sends truck telemetry to subscribers.
type Publisher interface {
	PublishPosition(truckID string, pos model.LatLng, status string, clock float64) error
	PublishInstruction(truckID string, ins model.Instruction) error
	Close()
}

// NopPublisher discards telemetry. Used when MQTT is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishPosition(string, model.LatLng, string, float64) error { return nil }
func (NopPublisher) PublishInstruction(string, model.Instruction) error          { return nil }
func (NopPublisher) Close()                                                      {}

// PahoPublisher implements Publisher with the Eclipse Paho client.
type PahoPublisher struct {
	cli    paho.Client
	prefix string
	qos    byte
	log    logger.Logger
}

// NewPahoPublisher connects to the broker. Connection failure is an error;
// use NopPublisher when telemetry is optional and the broker may be absent.
func NewPahoPublisher(cfg Config) (*PahoPublisher, error) {
	cfg.SetDefaults()
	log := logger.New("telemetry")

	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.OnConnect = func(paho.Client) { log.Infof("MQTT connected") }
	opts.OnConnectionLost = func(_ paho.Client, err error) { log.Errorf("connection lost: %v", err) }

	cli := paho.NewClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &PahoPublisher{cli: cli, prefix: cfg.TopicPrefix, qos: cfg.QoS, log: log}, nil
}

type positionPayload struct {
	TruckID   string  `json:"truck_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Status    string  `json:"status"`
	SimClock  float64 `json:"simulation_time"`
}

// PublishPosition publishes the truck's current position.
func (p *PahoPublisher) PublishPosition(truckID string, pos model.LatLng, status string, clock float64) error {
	payload, err := json.Marshal(positionPayload{
		TruckID: truckID, Latitude: pos.Lat, Longitude: pos.Lng, Status: status, SimClock: clock,
	})
	if err != nil {
		return err
	}
	topic := fmt.Sprintf("%s/trucks/%s/position", p.prefix, truckID)
	token := p.cli.Publish(topic, p.qos, false, payload)
	if token.Error() != nil {
		return token.Error()
	}
	return nil
}

// PublishInstruction publishes an operator instruction to the driver topic.
func (p *PahoPublisher) PublishInstruction(truckID string, ins model.Instruction) error {
	payload, err := json.Marshal(ins)
	if err != nil {
		return err
	}
	topic := fmt.Sprintf("%s/trucks/%s/instruction", p.prefix, truckID)
	token := p.cli.Publish(topic, p.qos, false, payload)
	if token.Error() != nil {
		return token.Error()
	}
	return nil
}

// Close disconnects from the broker.
func (p *PahoPublisher) Close() { p.cli.Disconnect(250) }

// MockPublisher records telemetry for tests.
type MockPublisher struct {
	mu           sync.Mutex
	Positions    map[string][]model.LatLng
	Instructions map[string][]model.Instruction
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		Positions:    make(map[string][]model.LatLng),
		Instructions: make(map[string][]model.Instruction),
	}
}

func (m *MockPublisher) PublishPosition(truckID string, pos model.LatLng, _ string, _ float64) error {
	m.mu.Lock()
	m.Positions[truckID] = append(m.Positions[truckID], pos)
	m.mu.Unlock()
	return nil
}

func (m *MockPublisher) PublishInstruction(truckID string, ins model.Instruction) error {
	m.mu.Lock()
	m.Instructions[truckID] = append(m.Instructions[truckID], ins)
	m.mu.Unlock()
	return nil
}

func (m *MockPublisher) Close() {}
