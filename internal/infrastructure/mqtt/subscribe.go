package mqtt

import "fmt"

// Subscribe records a subscription and, if connected, issues it now.
//
// Recorded subscriptions are reissued by SubscribeAll on every connect, so
// calling Subscribe before the first connection is the normal case.
// Subscribing to an already recorded filter updates its QoS.
//
// Topics can include MQTT wildcards:
//   - + (single-level): "+/gt.telemetry.110" matches any sender
//   - # (multi-level): "a.m/#" matches everything from one sender
func (c *Client) Subscribe(topic string, qos byte) error {
	if !validFilter(topic) {
		return fmt.Errorf("%w: %q", ErrInvalidTopic, topic)
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}

	c.subMu.Lock()
	c.subscriptions[topic] = qos
	c.subMu.Unlock()

	if c.Connected() {
		c.issue(topic, qos)
	}
	return nil
}

// SubscribeAll reissues every recorded subscription, one broker
// subscribe per topic filter.
func (c *Client) SubscribeAll() error {
	if !c.Connected() {
		return fmt.Errorf("%w: %s", ErrNotConnected, c.name)
	}

	c.subMu.RLock()
	subs := make(map[string]byte, len(c.subscriptions))
	for topic, qos := range c.subscriptions {
		subs[topic] = qos
	}
	c.subMu.RUnlock()

	for topic, qos := range subs {
		c.issue(topic, qos)
	}
	c.getLogger().Debug("mqtt subscriptions reissued", "client", c.name, "count", len(subs))
	return nil
}

func (c *Client) issue(topic string, qos byte) {
	token := c.conn.Subscribe(topic, qos, c.handleMessage)
	c.watch(token, ErrSubscribeFailed, "subscribe", topic)
}

// Unsubscribe forgets a subscription and, if connected, removes it on the broker.
func (c *Client) Unsubscribe(topic string) error {
	if !validFilter(topic) {
		return fmt.Errorf("%w: %q", ErrInvalidTopic, topic)
	}

	c.subMu.Lock()
	delete(c.subscriptions, topic)
	c.subMu.Unlock()

	if c.Connected() {
		c.watch(c.conn.Unsubscribe(topic), ErrUnsubscribeFailed, "unsubscribe", topic)
	}
	return nil
}

// Subscriptions returns a copy of the recorded subscriptions.
func (c *Client) Subscriptions() map[string]byte {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	out := make(map[string]byte, len(c.subscriptions))
	for topic, qos := range c.subscriptions {
		out[topic] = qos
	}
	return out
}

// SubscriptionCount returns the number of recorded subscriptions.
func (c *Client) SubscriptionCount() int {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	return len(c.subscriptions)
}

// HasSubscription checks if a subscription is recorded for the exact filter.
func (c *Client) HasSubscription(topic string) bool {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	_, exists := c.subscriptions[topic]
	return exists
}
