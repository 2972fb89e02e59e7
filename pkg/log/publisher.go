package log

import "github.com/ThreeDotsLabs/watermill/message"

const correlationIDMetadataKey = "correlation_id"

// CorrelationPublisherDecorator copies the correlation ID from the message
// context into its metadata before publishing.
type CorrelationPublisherDecorator struct {
	message.Publisher
}

func (d CorrelationPublisherDecorator) Publish(topic string, messages ...*message.Message) error {
	for i := range messages {
		if messages[i].Metadata.Get(correlationIDMetadataKey) != "" {
			continue
		}
		if id := CorrelationIDFromContext(messages[i].Context()); id != "" {
			messages[i].Metadata.Set(correlationIDMetadataKey, id)
		}
	}
	return d.Publisher.Publish(topic, messages...)
}

func CorrelationIDFromMessage(msg *message.Message) string {
	return msg.Metadata.Get(correlationIDMetadataKey)
}
