package mqtt

import "fmt"

// Route subscribes handler to filter and remembers it so the route is
// restored after a reconnect. Filters may use the + and # wildcards:
//
//	client.Route(mqtt.Topics{}.AllDoorCommands(), 1, listener.handle)
//
// Routing the same filter again replaces its handler.
func (c *Client) Route(filter string, qos byte, handler Handler) error {
	if err := checkTopic(filter, qos); err != nil {
		return err
	}
	if handler == nil {
		return fmt.Errorf("%w: nil handler for %s", ErrRoute, filter)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	if err := await(c.paho.Subscribe(filter, qos, c.dispatch(handler)), opTimeout, ErrRoute); err != nil {
		return err
	}

	c.mu.Lock()
	c.routes[filter] = route{qos: qos, handler: handler}
	c.mu.Unlock()
	return nil
}

// Unroute drops a route added with Route. Messages already in flight may
// still reach the old handler.
func (c *Client) Unroute(filter string) error {
	if filter == "" {
		return ErrInvalidTopic
	}

	c.mu.Lock()
	delete(c.routes, filter)
	c.mu.Unlock()

	if !c.IsConnected() {
		return nil
	}
	return await(c.paho.Unsubscribe(filter), opTimeout, ErrRoute)
}

// Routes lists the filters currently routed.
func (c *Client) Routes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.routes))
	for filter := range c.routes {
		out = append(out, filter)
	}
	return out
}
