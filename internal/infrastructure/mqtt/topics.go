package mqtt

import "fmt"

// Topic prefixes for Gray Logic Assist.
//
// Assist publishes its own events under graylogic/assist and shares the
// graylogic/system hierarchy with the rest of the Gray Logic stack for
// online/offline status.
const (
	// TopicPrefixAssist is the base for all assist topics.
	TopicPrefixAssist = "graylogic/assist"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "graylogic/system"
)

// Topics provides builders for Gray Logic Assist MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	topic := topics.AssistEvent("execution")
//	// Returns: "graylogic/assist/event/execution"
type Topics struct{}

// AssistEvent returns the topic for assist pipeline events.
//
// Example: graylogic/assist/event/decision
func (Topics) AssistEvent(eventType string) string {
	return fmt.Sprintf("%s/event/%s", TopicPrefixAssist, eventType)
}

// AssistDecision returns the topic for published decisions.
//
// Example: graylogic/assist/event/decision
func (t Topics) AssistDecision() string {
	return t.AssistEvent("decision")
}

// AssistExecution returns the topic for execution summaries.
//
// Example: graylogic/assist/event/execution
func (t Topics) AssistExecution() string {
	return t.AssistEvent("execution")
}

// SystemStatus returns the system status topic used for online/offline
// announcements and the Last Will message.
//
// Example: graylogic/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllAssistEvents returns a pattern matching all assist events.
//
// Pattern: graylogic/assist/event/+
func (Topics) AllAssistEvents() string {
	return fmt.Sprintf("%s/event/+", TopicPrefixAssist)
}
