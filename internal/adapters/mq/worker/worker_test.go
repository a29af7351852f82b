package worker_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	worker "github.com/okian/kickoff/internal/adapters/mq/worker"
	logging "github.com/okian/kickoff/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logging.Init(); err != nil {
		panic(err)
	}
}

func TestTickerWorker(t *testing.T) {
	convey.Convey("Given a ticker worker with a short interval", t, func() {
		var ticks atomic.Int64
		w := worker.NewTickerWorker(func(context.Context, time.Time) { ticks.Add(1) },
			worker.WithName("playback"),
			worker.WithInterval(5*time.Millisecond),
		)

		convey.Convey("Then options are applied", func() {
			convey.So(w.Name(), convey.ShouldEqual, "playback")
			convey.So(w.Interval(), convey.ShouldEqual, 5*time.Millisecond)
		})

		convey.Convey("When it runs for a while and is shut down", func() {
			ctx := context.Background()
			go w.Run(ctx)
			time.Sleep(60 * time.Millisecond)
			err := w.Shutdown(ctx)
			after := ticks.Load()
			time.Sleep(20 * time.Millisecond)

			convey.Convey("Then it ticked and then stopped ticking", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(after, convey.ShouldBeGreaterThan, 0)
				convey.So(ticks.Load(), convey.ShouldEqual, after)
			})

			convey.Convey("Then a second shutdown is harmless", func() {
				convey.So(w.Shutdown(ctx), convey.ShouldBeNil)
			})
		})

		convey.Convey("When its context is canceled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			go w.Run(ctx)
			cancel()

			convey.Convey("Then shutdown returns promptly", func() {
				convey.So(w.Shutdown(context.Background()), convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given a worker that was never started", t, func() {
		w := worker.NewTickerWorker(func(context.Context, time.Time) {})

		convey.Convey("When shutdown is bounded by a deadline", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
			defer cancel()

			convey.Convey("Then it times out with an error", func() {
				convey.So(w.Shutdown(ctx), convey.ShouldNotBeNil)
			})
		})
	})

	convey.Convey("Given a zero interval", t, func() {
		w := worker.NewTickerWorker(func(context.Context, time.Time) {}, worker.WithInterval(0))

		convey.Convey("Then the interval is raised to the minimum", func() {
			convey.So(w.Interval(), convey.ShouldEqual, time.Millisecond)
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool of two workers", t, func() {
		var a, b atomic.Int64
		pool := worker.NewPool(
			worker.NewTickerWorker(func(context.Context, time.Time) { a.Add(1) }, worker.WithName("animation"), worker.WithInterval(2*time.Millisecond)),
			worker.NewTickerWorker(func(context.Context, time.Time) { b.Add(1) }, worker.WithName("playback"), worker.WithInterval(4*time.Millisecond)),
		)

		convey.Convey("When started and shut down", func() {
			ctx := context.Background()
			pool.Start(ctx)
			time.Sleep(50 * time.Millisecond)
			err := pool.Shutdown(ctx)

			convey.Convey("Then both workers ran", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(a.Load(), convey.ShouldBeGreaterThan, 0)
				convey.So(b.Load(), convey.ShouldBeGreaterThan, 0)
			})
		})
	})
}
