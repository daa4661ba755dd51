package pubsub

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-amqp/v3/pkg/amqp"
	"github.com/ThreeDotsLabs/watermill/message"
)

// NewPublisher opens a topic-exchange AMQP publisher against amqpURI,
// grounded on the teacher's infra/pubsub factory's ExchangeConfig{Type:
// "topic", Durable: true} shape — reconstructed directly against
// watermill-amqp since that factory layer itself was filtered from the
// retrieval pack (see DESIGN.md).
func NewPublisher(amqpURI string, logger watermill.LoggerAdapter) (message.Publisher, error) {
	cfg := amqp.NewDurablePubSubConfig(amqpURI, nil)
	cfg.Exchange = amqp.ExchangeConfig{
		GenerateName: func(topic string) string { return "odin.events" },
		Type:         "topic",
		Durable:      true,
	}
	return amqp.NewPublisher(cfg, logger)
}

// NewSubscriber opens the matching subscriber side, used by sibling ODIN
// nodes to re-ingest events published by internal/adapter/pubsub.Dispatcher.
func NewSubscriber(amqpURI, queueName string, logger watermill.LoggerAdapter) (message.Subscriber, error) {
	cfg := amqp.NewDurablePubSubConfig(amqpURI, amqp.GenerateQueueNameTopicNameWithSuffix(queueName))
	cfg.Exchange = amqp.ExchangeConfig{
		GenerateName: func(topic string) string { return "odin.events" },
		Type:         "topic",
		Durable:      true,
	}
	return amqp.NewSubscriber(cfg, logger)
}
