package telemetry

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shriram-s7/fleetdispatch/core/logger"
	infralog "github.com/shriram-s7/fleetdispatch/infra/logger"
)

// Acker receives instruction acknowledgments from drivers.
type Acker interface {
	AckInstruction(truckID string) error
}

// AckListener subscribes to the per-truck ack topic so drivers can confirm
// instructions over the broker instead of the HTTP API.
type AckListener struct {
	cfg   Config
	cli   paho.Client
	acker Acker
	log   logger.Logger

	acksReceived prometheus.Counter
	ackFailures  prometheus.Counter
	lastAck      prometheus.Gauge
}

type ackMessage struct {
	InstructionID string `json:"instruction_id"`
}

// NewAckListener connects to the broker and prepares the subscription.
func NewAckListener(cfg Config, acker Acker) (*AckListener, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker)
	id := cfg.ClientID
	if id != "" {
		id += "-ack"
	} else {
		id = "dispatch-ack-" + uuid.NewString()
	}
	opts.SetClientID(id)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	cli := paho.NewClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	l := &AckListener{
		cfg:          cfg,
		cli:          cli,
		acker:        acker,
		log:          infralog.New("telemetry-ack"),
		acksReceived: prometheus.NewCounter(prometheus.CounterOpts{Name: "dispatch_instruction_acks_total", Help: "Number of instruction acks received over MQTT"}),
		ackFailures:  prometheus.NewCounter(prometheus.CounterOpts{Name: "dispatch_instruction_ack_failures_total", Help: "Number of acks that could not be applied"}),
		lastAck:      prometheus.NewGauge(prometheus.GaugeOpts{Name: "dispatch_instruction_last_ack_timestamp_seconds", Help: "Unix timestamp of the last instruction ack"}),
	}
	prometheus.MustRegister(l.acksReceived, l.ackFailures, l.lastAck)
	return l, nil
}

// Start subscribes and blocks until the context is done.
func (l *AckListener) Start(ctx context.Context) {
	topic := strings.TrimSuffix(l.cfg.TopicPrefix, "/") + "/trucks/+/ack"
	if token := l.cli.Subscribe(topic, l.cfg.QoS, l.onAck); token.Wait() && token.Error() != nil {
		l.log.Errorf("subscribe %s: %v", topic, token.Error())
	}
	<-ctx.Done()
	if l.cli.IsConnected() {
		l.cli.Disconnect(250)
	}
}

func (l *AckListener) onAck(_ paho.Client, msg paho.Message) {
	if err := l.process(msg.Topic(), msg.Payload()); err != nil {
		l.log.Errorf("ack %s: %v", msg.Topic(), err)
	}
}

func (l *AckListener) process(topic string, payload []byte) error {
	truckID := truckIDFromTopic(topic)
	if len(payload) > 0 {
		var m ackMessage
		if err := json.Unmarshal(payload, &m); err != nil {
			l.count(l.ackFailures)
			return err
		}
	}
	if err := l.acker.AckInstruction(truckID); err != nil {
		l.count(l.ackFailures)
		return err
	}
	l.count(l.acksReceived)
	if l.lastAck != nil {
		l.lastAck.Set(float64(time.Now().Unix()))
	}
	return nil
}

func (l *AckListener) count(c prometheus.Counter) {
	if c != nil {
		c.Inc()
	}
}

// truckIDFromTopic extracts the truck id from "<prefix>/trucks/<id>/ack".
func truckIDFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-2]
}
