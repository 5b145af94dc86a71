package mqtt

import (
	"encoding/json"
	"fmt"
)

// maxPayload caps outgoing payloads. Door state documents are a few
// hundred bytes; anything near this is a bug upstream.
const maxPayload = 256 << 10

// Publish sends payload to topic and waits for the broker to accept it.
// Door state is published retained so late subscribers see the current
// position; events and acks are not.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if err := checkTopic(topic, qos); err != nil {
		return err
	}
	if len(payload) > maxPayload {
		return fmt.Errorf("%w: %d byte payload exceeds %d", ErrPublish, len(payload), maxPayload)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return await(c.paho.Publish(topic, qos, retained, payload), opTimeout, ErrPublish)
}

// PublishJSON encodes v and publishes it at the configured QoS.
func (c *Client) PublishJSON(topic string, v any, retained bool) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %w", ErrPublish, topic, err)
	}
	return c.Publish(topic, payload, byte(c.cfg.QoS), retained)
}

// ClearRetained removes the retained message on topic, used when a door
// disappears from the stage.
func (c *Client) ClearRetained(topic string) error {
	return c.Publish(topic, nil, byte(c.cfg.QoS), true)
}
