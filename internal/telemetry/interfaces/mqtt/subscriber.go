package mqtt

import (
	"errors"
	"log"

	paho "github.com/eclipse/paho.mqtt.golang"

	"smartwaste-cloud/internal/observability/metrics"
	telemetry "smartwaste-cloud/internal/telemetry/domain"
)

// Applier consumes decoded telemetry updates.
type Applier interface {
	Apply(update telemetry.Update)
}

// Subscriber maintains the connection to the telemetry bus and feeds decoded
// payloads to the state updater. Reconnect and backoff belong to the bus
// client; this type only reacts to connect, message, and connection-lost
// events.
type Subscriber struct {
	client  paho.Client
	topic   string
	binIDs  []string
	applier Applier
	logger  *log.Logger
}

// NewSubscriber constructs a subscriber for one fixed topic. The client is
// not connected until Start.
func NewSubscriber(brokerURL, topic string, binIDs []string, applier Applier, logger *log.Logger) (*Subscriber, error) {
	if brokerURL == "" {
		return nil, errors.New("bus subscriber: empty broker url")
	}
	if topic == "" {
		return nil, errors.New("bus subscriber: empty topic")
	}
	if len(binIDs) == 0 {
		return nil, errors.New("bus subscriber: no bin ids")
	}
	if applier == nil {
		return nil, errors.New("bus subscriber: nil applier")
	}
	if logger == nil {
		logger = log.Default()
	}

	s := &Subscriber{
		topic:   topic,
		binIDs:  append([]string(nil), binIDs...),
		applier: applier,
		logger:  logger,
	}
	opts := paho.NewClientOptions().
		AddBroker(brokerURL).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetOnConnectHandler(s.onConnect).
		SetConnectionLostHandler(s.onConnectionLost)
	s.client = paho.NewClient(opts)
	return s, nil
}

// Start begins connecting to the broker. With connect retry enabled the
// client keeps trying in the background, so Start does not block on an
// unreachable broker; a terminal connect error is logged.
func (s *Subscriber) Start() {
	token := s.client.Connect()
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			s.logger.Printf("bus subscriber: connect: %v", err)
		}
	}()
}

// Stop disconnects from the broker.
func (s *Subscriber) Stop() {
	s.client.Disconnect(250)
}

func (s *Subscriber) onConnect(client paho.Client) {
	s.logger.Printf("bus subscriber: connected, subscribing to %s", s.topic)
	token := client.Subscribe(s.topic, 0, s.onMessage)
	token.Wait()
	if err := token.Error(); err != nil {
		// Not fatal: the next connect event gets another chance.
		s.logger.Printf("bus subscriber: subscribe %s: %v", s.topic, err)
		return
	}
	s.logger.Printf("bus subscriber: subscribed to %s", s.topic)
}

func (s *Subscriber) onConnectionLost(_ paho.Client, err error) {
	s.logger.Printf("bus subscriber: connection lost: %v", err)
}

func (s *Subscriber) onMessage(_ paho.Client, msg paho.Message) {
	s.handleMessage(msg.Topic(), msg.Payload())
}

// handleMessage filters by topic, decodes, and hands the update to the state
// updater. A decode failure drops the payload and leaves all state untouched.
func (s *Subscriber) handleMessage(topic string, payload []byte) {
	if topic != s.topic {
		return
	}
	update, err := telemetry.Decode(payload, s.binIDs)
	if err != nil {
		s.logger.Printf("bus subscriber: drop payload: %v", err)
		metrics.IncDecodeError()
		metrics.IncBusMessage(metrics.ResultError)
		return
	}
	s.applier.Apply(update)
	metrics.IncBusMessage(metrics.ResultSuccess)
}
