package events

import "context"

// NoopPublisher drops every event. zd delete announces deletions through
// it when ZAYAFKA_NATS_URL is unset or the server is unreachable.
type NoopPublisher struct{}

// Publish discards event.
func (*NoopPublisher) Publish(context.Context, string, any) error { return nil }

func (*NoopPublisher) Close() error { return nil }
