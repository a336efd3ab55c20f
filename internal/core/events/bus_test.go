package events_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/school-platform/internal/core/events"
)

var _ = Describe("EventBus", func() {
	var bus *events.EventBus

	BeforeEach(func() {
		bus = events.NewEventBus(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
	})

	event := func() events.Event {
		return events.NewTransactionCompletedEvent(1, 2, 3, "50", "webhook")
	}

	It("runs every subscriber asynchronously and Wait drains them", func() {
		var calls atomic.Int32
		for range 3 {
			bus.Subscribe(events.EventTypeTransactionCompleted, func(context.Context, events.Event) error {
				calls.Add(1)
				return nil
			})
		}

		bus.Publish(context.Background(), event())
		bus.Wait()

		Expect(calls.Load()).To(Equal(int32(3)))
	})

	It("hands async subscribers a context that survives cancellation", func() {
		var alive atomic.Value
		bus.Subscribe(events.EventTypeTransactionCompleted, func(ctx context.Context, _ events.Event) error {
			alive.Store(ctx.Err() == nil)
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		bus.Publish(ctx, event())
		bus.Wait()

		Expect(alive.Load()).To(BeTrue())
	})

	It("stops at the first failing subscriber when publishing synchronously", func() {
		boom := errors.New("boom")
		var second bool
		bus.Subscribe(events.EventTypeTransactionCompleted, func(context.Context, events.Event) error { return boom })
		bus.Subscribe(events.EventTypeTransactionCompleted, func(context.Context, events.Event) error {
			second = true
			return nil
		})

		err := bus.PublishSync(context.Background(), event())

		Expect(err).To(MatchError(boom))
		Expect(second).To(BeFalse())
	})

	It("ignores events nobody listens to", func() {
		Expect(bus.PublishSync(context.Background(), event())).To(Succeed())
		bus.Publish(context.Background(), event())
		bus.Wait()
	})
})
