package pubsub

import (
	"context"
	"encoding/json"
)

// Event[T] pairs a topic name with a payload type so publishers and
// subscribers agree on the wire shape at compile time.
type Event[T any] struct {
	topic string
}

// NewEvent declares a typed event on the given topic. Events are usually
// defined at package level next to the component that owns them.
func NewEvent[T any](topic string) Event[T] {
	return Event[T]{topic: topic}
}

// Topic returns the topic name.
func (e Event[T]) Topic() string { return e.topic }

// Publish sends a typed event. The compiler ensures payload matches T.
func Publish[T any](ctx context.Context, p Publisher, event Event[T], payload T) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.Publish(ctx, Message{
		Topic:   event.Topic(),
		Payload: data,
	})
}

// Subscribe registers a typed handler for the event's topic, decoding each
// message payload into T before invoking fn.
func Subscribe[T any](ctx context.Context, s Subscriber, event Event[T], fn func(ctx context.Context, payload T) error) error {
	return s.Subscribe(ctx, event.Topic(), func(ctx context.Context, msg Message) error {
		var payload T
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return err
		}
		return fn(ctx, payload)
	})
}
