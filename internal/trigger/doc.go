// Package trigger drives autonomic mode: it watches platform state-change
// topics on MQTT, debounces bursts of changes, and feeds the quiet-period
// summary to the decision engine.
//
// # Architecture
//
//	Platform statestream topics
//	         |
//	         v
//	  +-------------+   debounce   +---------+   actions   +----------+
//	  |   Watcher   | -----------> | Decider | ----------> | Executor |
//	  +-------------+              +---------+             +----------+
//	         |                                                   |
//	         +---- decision / execution events on MQTT <---------+
//
// A burst of state changes (motion sensor flapping, a scene flipping ten
// lights) produces one decision, not ten. The watcher collects changes
// until the configured quiet period passes with no new activity, then runs
// the pipeline once over the whole batch.
//
// # Key Types
//
//   - Watcher: subscribes, debounces, and runs the autonomic pipeline
//   - Config: topics, QoS, debounce window, pending cap
//
// # Thread Safety
//
// Start and Stop are safe for concurrent use. The pipeline runs on a single
// goroutine owned by the watcher, so decisions never overlap.
//
// # Usage
//
//	w := trigger.NewWatcher(trigger.Config{
//	    Topics:   cfg.MQTT.StateTopics,
//	    Debounce: 30 * time.Second,
//	}, broker, engine, executor, repo, logger)
//	if err := w.Start(ctx); err != nil {
//	    return err
//	}
//	defer w.Stop()
package trigger
