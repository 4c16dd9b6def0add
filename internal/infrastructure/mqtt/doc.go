// Package mqtt provides the Scada's MQTT transport clients.
//
// A Client owns one broker connection (via paho.mqtt.golang) and converts
// everything that happens on it into envelopes on a shared Sink, normally
// the runtime's inbound queue:
//
//   - message received: message.TransportMessage
//   - connected or reconnected: message.TransportConnected
//   - connection lost: message.TransportDisconnected
//   - connect attempt failed: message.TransportConnectFailed
//
// Envelopes from one client are numbered 1, 2, 3, ... in arrival order.
//
// # Subscriptions
//
// Subscriptions are recorded locally and reissued in full by SubscribeAll.
// The runtime calls SubscribeAll once for every TransportConnected envelope,
// so subscriptions survive reconnects.
//
// # Registry
//
// Clients holds the named set used by the runtime:
//
//	clients := mqtt.NewClients(queue, nil)
//	gw, err := clients.Add("gridworks", cfg.GridworksMQTT)
//	if err != nil {
//	    return err
//	}
//	_ = gw.Subscribe("dwtest.isone.ct.newhaven.orange1/gt.dispatch.boolean.100", 1)
//	_ = clients.StartAll()
//
// # Reconnection
//
// Start retries the first connection with exponential backoff between
// reconnect.initial_delay and reconnect.max_delay. After the first success,
// paho's auto-reconnect takes over.
//
// # Testing
//
// Conn is the seam to paho. Package mqtttest provides a fake connection that
// records calls and lets tests drive connect, disconnect and delivery.
package mqtt
