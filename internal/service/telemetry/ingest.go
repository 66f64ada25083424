package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/alpadrive/fleet-server/internal/domain/model"
	"github.com/alpadrive/fleet-server/internal/metrics"
)

const sampleTopic = "telemetry.sample"

// sampleEnvelope is the wire shape Ingest publishes and consumes
// internally; it is never exposed to a websocket client.
type sampleEnvelope struct {
	VehicleID string       `json:"vehicle_id"`
	Sample    model.Sample `json:"sample"`
}

// Ingest decouples a vehicle endpoint's inbound telemetry frame from the
// Mongo round trip the fold performs, mirroring the teacher's own
// amqp.Bind → hub.Broadcast fan-out shape (internal/handler/amqp/bind.go),
// but over an in-process gochannel broker since this system has no
// second node to fan samples out to.
type Ingest struct {
	logger     *slog.Logger
	aggregator *Aggregator
	pubsub     *gochannel.GoChannel
}

func NewIngest(logger *slog.Logger, aggregator *Aggregator) *Ingest {
	pubsub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, watermill.NopLogger{})
	return &Ingest{logger: logger, aggregator: aggregator, pubsub: pubsub}
}

// Publish hands a sample off to the broker and returns immediately; the
// fold itself runs on Run's consumer goroutine.
func (i *Ingest) Publish(vehicleID string, sample model.Sample) error {
	payload, err := json.Marshal(sampleEnvelope{VehicleID: vehicleID, Sample: sample})
	if err != nil {
		return fmt.Errorf("telemetry ingest: marshal sample: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	return i.pubsub.Publish(sampleTopic, msg)
}

// Run consumes published samples and folds each into its vehicle's
// daily aggregate until ctx is cancelled. Callers start it from an
// fx.Lifecycle OnStart hook in its own goroutine.
func (i *Ingest) Run(ctx context.Context) error {
	messages, err := i.pubsub.Subscribe(ctx, sampleTopic)
	if err != nil {
		return fmt.Errorf("telemetry ingest: subscribe: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			i.handle(msg)
		}
	}
}

func (i *Ingest) handle(msg *message.Message) {
	defer msg.Ack()

	var env sampleEnvelope
	if err := json.Unmarshal(msg.Payload, &env); err != nil {
		i.logger.Error("telemetry ingest: decode sample", "error", err, "msg_id", msg.UUID)
		metrics.SamplesFolded.WithLabelValues("decode_error").Inc()
		return
	}
	if err := i.aggregator.Fold(msg.Context(), env.VehicleID, env.Sample); err != nil {
		i.logger.Error("telemetry fold failed", "error", err, "vehicle_id", env.VehicleID)
		metrics.SamplesFolded.WithLabelValues("fold_error").Inc()
		return
	}
	metrics.SamplesFolded.WithLabelValues("ok").Inc()
}

func (i *Ingest) Close() error {
	return i.pubsub.Close()
}
