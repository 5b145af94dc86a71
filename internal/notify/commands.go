package notify

import (
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-interaction/internal/animation"
	"github.com/nerrad567/gray-logic-interaction/internal/control"
	"github.com/nerrad567/gray-logic-interaction/internal/infrastructure/mqtt"
)

// Subscriber is the subset of mqtt.Client the command listener uses.
type Subscriber interface {
	Publisher
	Route(filter string, qos byte, handler mqtt.Handler) error
	Unroute(filter string) error
}

// Executor runs door commands.
type Executor interface {
	Execute(key string, req control.Request) (animation.Session, error)
}

// Ack is published on graylogic/ack/door/{slug} for every command received.
type Ack struct {
	Door      string             `json:"door"`
	Command   control.Action     `json:"command,omitempty"`
	Success   bool               `json:"success"`
	Error     string             `json:"error,omitempty"`
	Session   *animation.Session `json:"session,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

// CommandListener executes door commands received over MQTT.
type CommandListener struct {
	client Subscriber
	exec   Executor
	qos    byte
	topics mqtt.Topics
	logger Logger
	now    func() time.Time
}

// NewCommandListener creates a listener subscribing at qos.
func NewCommandListener(client Subscriber, exec Executor, qos byte) *CommandListener {
	return &CommandListener{
		client: client,
		exec:   exec,
		qos:    qos,
		logger: noopLogger{},
		now:    time.Now,
	}
}

// SetLogger sets the logger for the listener.
func (l *CommandListener) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	l.logger = logger
}

// Start subscribes to graylogic/command/door/+.
func (l *CommandListener) Start() error {
	topic := l.topics.AllDoorCommands()
	if err := l.client.Route(topic, l.qos, l.handle); err != nil {
		return fmt.Errorf("subscribing to door commands: %w", err)
	}
	l.logger.Info("listening for door commands", "topic", topic)
	return nil
}

// Stop unsubscribes from the command topics.
func (l *CommandListener) Stop() error {
	return l.client.Unroute(l.topics.AllDoorCommands())
}

// handle executes one command and acknowledges it. Rejected commands are
// acknowledged with the error; only a publish failure is returned.
func (l *CommandListener) handle(topic string, payload []byte) error {
	slug := mqtt.SlugFromTopic(topic)
	if slug == "" {
		l.logger.Warn("door command ignored", "topic", topic, "error", ErrNoSlug)
		return nil
	}

	ack := Ack{Door: slug, Timestamp: l.now().UTC()}

	req, err := control.DecodeRequest(payload)
	if err == nil {
		ack.Command = req.Action
		var snap animation.Session
		if snap, err = l.exec.Execute(slug, req); err == nil {
			ack.Session = &snap
		}
	}

	if err != nil {
		ack.Error = err.Error()
		l.logger.Warn("door command rejected", "door", slug, "command", string(ack.Command), "error", err)
	} else {
		ack.Success = true
		l.logger.Debug("door command accepted", "door", slug, "command", string(ack.Command))
	}

	if err := l.client.PublishJSON(l.topics.DoorAck(slug), ack, false); err != nil {
		return fmt.Errorf("publishing door ack: %w", err)
	}
	return nil
}
