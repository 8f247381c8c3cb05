package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/nthing-link/farmsync/core/logger"
	"github.com/nthing-link/farmsync/farm"
)

// Default connection parameters, matching the deployed dashboard client.
const (
	DefaultConnectTimeout = 30 * time.Second
	DefaultRetryInterval  = 5 * time.Second
)

// Handler receives a decoded event for the (class, action) pair it was
// registered for. Handlers run synchronously on the transport's delivery
// goroutine, in per-connection arrival order.
type Handler func(gatewayID string, ev Event)

type handlerKey struct {
	class  farm.GatewayClass
	action string
}

// Builder is a builder helper for the connection Manager.
type Builder struct {
	// BrokerURL is the broker endpoint, e.g. "wss://broker.example:8084/mqtt".
	// Mandatory unless Disabled is set.
	BrokerURL string
	// Disabled turns the manager into a no-op that reports itself
	// permanently disconnected.
	Disabled bool
	// ConnectTimeout bounds a single connection attempt. Optional, defaults
	// to DefaultConnectTimeout.
	ConnectTimeout time.Duration
	// RetryInterval is the fixed delay between reconnect attempts. Optional,
	// defaults to DefaultRetryInterval.
	RetryInterval time.Duration
}

// Manager owns the broker connection of one monitoring session. It connects,
// subscribes to the farm's topic set, dispatches decoded events and
// reconnects forever after transport loss, until Stop is called.
type Manager struct {
	brokerURL      string
	disabled       bool
	connectTimeout time.Duration
	retryInterval  time.Duration

	mu       sync.Mutex
	farmID   string
	client   paho.Client
	handlers map[handlerKey]Handler
	closed   bool
}

// NewManager returns a manager that will not connect until Start is called.
func NewManager(b *Builder) *Manager {
	if b.BrokerURL == "" && !b.Disabled {
		panic("broker URL is missing")
	}

	connectTimeout := b.ConnectTimeout
	if connectTimeout == 0 {
		connectTimeout = DefaultConnectTimeout
	}
	retryInterval := b.RetryInterval
	if retryInterval == 0 {
		retryInterval = DefaultRetryInterval
	}

	return &Manager{
		brokerURL:      b.BrokerURL,
		disabled:       b.Disabled,
		connectTimeout: connectTimeout,
		retryInterval:  retryInterval,
		handlers:       map[handlerKey]Handler{},
	}
}

// OnEvent registers the handler for one (class, action) pair, replacing any
// previous registration. Register handlers before calling Start.
func (m *Manager) OnEvent(class farm.GatewayClass, action string, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[handlerKey{class: class, action: action}] = handler
}

// Start connects to the broker and subscribes to the topic set of farmID.
// It blocks at most for the connect timeout; if the broker is not reachable
// by then, the manager keeps connecting in the background.
//
// Start is idempotent while connected to the same farm. Calling it with a
// different farm tears the connection down and rebuilds it, since
// subscriptions are scoped per farm.
func (m *Manager) Start(farmID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("manager is closed")
	}
	if m.disabled {
		logger.Default().Infoln("mqtt disabled, live updates off")
		return nil
	}
	if m.client != nil {
		if m.farmID == farmID {
			return nil
		}
		m.client.Disconnect(250)
		m.client = nil
	}
	m.farmID = farmID

	rlog := logger.ForFarm(farmID)

	opts := paho.NewClientOptions()
	opts.AddBroker(m.brokerURL)
	opts.SetClientID(sessionClientID())
	opts.SetCleanSession(true)
	opts.SetProtocolVersion(4) // MQTT 3.1.1
	opts.SetConnectTimeout(m.connectTimeout)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(m.retryInterval)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(m.retryInterval)
	opts.SetOrderMatters(true)
	opts.SetOnConnectHandler(func(client paho.Client) {
		rlog.Infoln("connected to broker", m.brokerURL)
		m.subscribe(client, farmID)
	})
	opts.SetConnectionLostHandler(func(client paho.Client, err error) {
		rlog.Warnln("connection lost:", err)
	})
	opts.SetReconnectingHandler(func(client paho.Client, opts *paho.ClientOptions) {
		rlog.Debugln("reconnecting...")
	})

	m.client = paho.NewClient(opts)

	token := m.client.Connect()
	if token.WaitTimeout(m.connectTimeout) && token.Error() != nil {
		// Not fatal: connect retry is on, the client keeps trying in the
		// background at the fixed interval.
		rlog.Warnln("initial connect failed:", token.Error())
	}
	return nil
}

// subscribe issues the per-farm QoS 0 subscriptions. A subscription failure
// is logged; the connection stays up with a degraded topic set.
func (m *Manager) subscribe(client paho.Client, farmID string) {
	rlog := logger.ForFarm(farmID)
	filters := map[string]byte{}
	for _, topic := range TopicsFor(farmID) {
		filters[topic] = 0
	}
	token := client.SubscribeMultiple(filters, m.dispatch)
	if token.Wait() && token.Error() != nil {
		rlog.Errorln("subscribe failed:", token.Error())
		return
	}
	rlog.Infoln("subscribed to", len(filters), "topics")
}

// dispatch decodes one inbound frame and invokes the registered handler.
// Decode failures are dropped here so they never reach the transport's
// event loop.
func (m *Manager) dispatch(client paho.Client, msg paho.Message) {
	ev, err := Route(msg.Topic(), msg.Payload())
	if err != nil {
		logger.Default().Warnln("dropping message:", err)
		return
	}

	m.mu.Lock()
	handler := m.handlers[handlerKey{class: ev.Class, action: ev.Action}]
	m.mu.Unlock()

	if handler != nil {
		handler(ev.GatewayID, ev)
	}
}

// IsConnected reports whether the broker connection is currently up. A
// disabled or stopped manager is permanently disconnected.
func (m *Manager) IsConnected() bool {
	m.mu.Lock()
	client := m.client
	m.mu.Unlock()
	return client != nil && client.IsConnectionOpen()
}

// Stop tears the connection down and releases the transport. It is safe to
// call from any state; once stopped, no further reconnect attempts occur
// and Start returns an error.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	if m.client != nil {
		m.client.Disconnect(250)
		m.client = nil
	}
}

// sessionClientID returns a process-unique client identifier. A fresh one
// is generated per session, there is no session resumption.
func sessionClientID() string {
	return fmt.Sprintf("farmsync-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
