package mqtt

import (
	"context"
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/gray-logic-interaction/internal/infrastructure/config"
)

// Logger is the logging surface the client needs. *logging.Logger
// satisfies it.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Handler receives one message. A returned error is logged and otherwise
// ignored; the message is acknowledged either way.
type Handler func(topic string, payload []byte) error

// Client is the door service's link to the broker.
//
// Routes added with Route survive reconnects, and the retained service
// status on graylogic/system/{client_id}/status follows the link state.
// All methods are safe for concurrent use.
type Client struct {
	paho pahomqtt.Client
	cfg  config.MQTTConfig

	mu     sync.RWMutex
	up     bool
	routes map[string]route
	onUp   func()
	onDown func(error)
	log    Logger
}

type route struct {
	qos     byte
	handler Handler
}

// Connect dials the broker described by cfg and waits for the first
// CONNACK. The broker is told to publish an "offline" status if the
// service disappears without closing.
func Connect(cfg config.MQTTConfig) (*Client, error) {
	c := &Client{cfg: cfg, routes: make(map[string]route)}

	opts := buildClientOptions(cfg)
	configureLWT(opts, cfg.Broker.ClientID)
	opts.SetOnConnectHandler(func(pahomqtt.Client) { c.linkUp() })
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) { c.linkDown(err) })
	opts.SetReconnectingHandler(func(_ pahomqtt.Client, o *pahomqtt.ClientOptions) {
		c.logger().Info("mqtt reconnecting", "client_id", o.ClientID)
	})

	c.paho = pahomqtt.NewClient(opts)
	if err := await(c.paho.Connect(), connectTimeout, ErrConnect); err != nil {
		return nil, err
	}

	// The connect handler runs asynchronously; mark the link up now so
	// callers can publish straight away.
	c.mu.Lock()
	c.up = true
	c.mu.Unlock()
	return c, nil
}

func (c *Client) linkUp() {
	c.mu.Lock()
	c.up = true
	routes := make(map[string]route, len(c.routes))
	for filter, r := range c.routes {
		routes[filter] = r
	}
	hook := c.onUp
	c.mu.Unlock()

	for filter, r := range routes {
		c.paho.Subscribe(filter, r.qos, c.dispatch(r.handler))
	}
	c.announce("online", "")

	if hook != nil {
		hook()
	}
}

func (c *Client) linkDown(err error) {
	c.mu.Lock()
	c.up = false
	hook := c.onDown
	c.mu.Unlock()

	c.logger().Warn("mqtt connection lost", "error", err)
	if hook != nil {
		hook(err)
	}
}

// announce publishes the retained service status without waiting.
func (c *Client) announce(status, reason string) pahomqtt.Token {
	id := c.cfg.Broker.ClientID
	return c.paho.Publish(Topics{}.SystemStatus(id), byte(c.cfg.QoS), true, statusPayload(id, status, reason))
}

// Close publishes a clean "offline" status and disconnects.
func (c *Client) Close() error {
	if c.paho == nil {
		return nil
	}
	if c.IsConnected() {
		c.announce("offline", "graceful_shutdown").WaitTimeout(opTimeout)
	}
	c.paho.Disconnect(disconnectQuiesceMS)

	c.mu.Lock()
	c.up = false
	c.mu.Unlock()
	return nil
}

// HealthCheck reports ErrNotConnected while the link is down.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mqtt health check: %w", err)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// IsConnected reports the last known link state.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.up && c.paho != nil && c.paho.IsConnected()
}

// SetOnConnect registers fn to run after every (re)connect.
func (c *Client) SetOnConnect(fn func()) {
	c.mu.Lock()
	c.onUp = fn
	c.mu.Unlock()
}

// SetOnDisconnect registers fn to run when the link drops.
func (c *Client) SetOnDisconnect(fn func(err error)) {
	c.mu.Lock()
	c.onDown = fn
	c.mu.Unlock()
}

// SetLogger sets the logger for connection and handler events.
func (c *Client) SetLogger(l Logger) {
	c.mu.Lock()
	c.log = l
	c.mu.Unlock()
}

func (c *Client) logger() Logger {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.log == nil {
		return noopLogger{}
	}
	return c.log
}

// dispatch adapts h to paho, logging handler errors and recovering panics
// so one bad command cannot take the client's router down.
func (c *Client) dispatch(h Handler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				c.logger().Error("mqtt handler panic", "topic", msg.Topic(), "panic", r)
			}
		}()
		if err := h(msg.Topic(), msg.Payload()); err != nil {
			c.logger().Warn("mqtt handler error", "topic", msg.Topic(), "error", err)
		}
	}
}

// await waits for tok and wraps any failure in kind.
func await(tok pahomqtt.Token, timeout time.Duration, kind error) error {
	if !tok.WaitTimeout(timeout) {
		return fmt.Errorf("%w: no response within %v", kind, timeout)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("%w: %w", kind, err)
	}
	return nil
}

func checkTopic(topic string, qos byte) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	return nil
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
