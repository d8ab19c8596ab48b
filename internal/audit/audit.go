// Package audit reports significant mutations to an external activity sink.
// Reporting is best effort: it runs with a bounded timeout and a failed
// report is logged, never propagated — the mutation it describes already
// succeeded.
package audit

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	stream        = "activity:events"
	reportTimeout = 2 * time.Second
)

// Sink writes activity records to a Redis stream consumed by the external
// activity/reporting service.
type Sink struct {
	Redis *redis.Client
}

func NewSink(rdb *redis.Client) *Sink {
	return &Sink{Redis: rdb}
}

// Report appends one activity record. Non-blocking with respect to the
// caller's primary operation: errors and timeouts are swallowed after
// logging.
func (s *Sink) Report(kind string, fields map[string]any) {
	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	values := map[string]any{"kind": kind, "at": time.Now().UTC().Format(time.RFC3339)}
	for k, v := range fields {
		values[k] = v
	}

	if err := s.Redis.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: values,
	}).Err(); err != nil {
		log.Printf("WARNING: failed to report %s activity: %v", kind, err)
	}
}
