// Package mqtt provides MQTT client connectivity for Gray Logic Assist.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// Assist uses MQTT for the autonomic trigger: the platform streams entity
// state changes onto the broker, Assist subscribes and reacts, and publishes
// its own decision/execution events back for other services to observe.
//
//	Platform statestream → MQTT Broker → Assist → graylogic/assist/event/*
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Performance Characteristics
//
//   - Connection: <1 second to local broker
//   - Publish latency: <10ms for QoS 1 to local broker
//   - Reconnect: Exponential backoff 1s-60s with jitter
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to platform state updates
//	err = client.Subscribe("homeassistant/statestream/#", 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Publish execution summary
//	client.Publish(mqtt.Topics{}.AssistExecution(), summaryJSON, 1, false)
package mqtt
