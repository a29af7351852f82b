package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/kickoff/internal/adapters/narrative"
	service "github.com/okian/kickoff/internal/app"
	"github.com/okian/kickoff/internal/domain/commentary"
	"github.com/okian/kickoff/internal/domain/match"
	"github.com/okian/kickoff/internal/domain/model"
	"github.com/okian/kickoff/internal/domain/producer"
	"github.com/okian/kickoff/internal/domain/roster"
	"github.com/okian/kickoff/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	_ = logger.SetLevelString("error")
}

// fakeNarrator answers every batch with one frame per minute unless an
// error is scripted for the call.
type fakeNarrator struct {
	mu         sync.Mutex
	credential bool
	calls      []narrative.BatchRequest
	errs       map[int]error // by call index
	goalAt     int
}

func (f *fakeNarrator) HasCredential() bool { return f.credential }

func (f *fakeNarrator) SimulateBatch(_ context.Context, req narrative.BatchRequest) ([]model.Frame, error) {
	f.mu.Lock()
	idx := len(f.calls)
	f.calls = append(f.calls, req)
	err := f.errs[idx]
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}

	frames := make([]model.Frame, 0, req.Duration)
	for m := req.Start; m <= req.End(); m++ {
		fr := model.Frame{Minute: model.Int(m), Commentary: fmt.Sprintf("Minute %d.", m)}
		if m == f.goalAt {
			fr.Events = []model.FrameEvent{{Type: model.EventGoal, TeamID: "rb_leipzig", PlayerID: "h10"}}
			fr.NewScore = &model.Score{Home: model.Int(1), Away: model.Int(0)}
		}
		frames = append(frames, fr)
	}
	return frames, nil
}

func (f *fakeNarrator) requests() []narrative.BatchRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]narrative.BatchRequest(nil), f.calls...)
}

func newService(n *fakeNarrator, opts ...service.Option) *service.Service {
	base := []service.Option{
		service.WithPlaybackInterval(5 * time.Millisecond),
		service.WithAnimationInterval(2 * time.Millisecond),
		service.WithMatchID("test-match"),
	}
	return service.New(roster.Default(), n, append(base, opts...)...)
}

// eventually polls cond until it holds or the deadline passes.
func eventually(cond func() bool) bool {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return cond()
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := newService(&fakeNarrator{credential: true})
		ctx := context.Background()

		Convey("Then the initial snapshot is at kick-off", func() {
			snap := svc.Snapshot()
			So(snap.ID, ShouldEqual, "test-match")
			So(snap.Minute, ShouldEqual, 0)
			So(snap.Playing, ShouldBeFalse)
			So(snap.Speed, ShouldEqual, 1.0)
			So(snap.HasCredential, ShouldBeTrue)
		})

		Convey("Then intents fail before start", func() {
			_, err := svc.TogglePlay(ctx)
			So(err, ShouldEqual, service.ErrNotStarted)
		})

		Convey("When started twice and stopped twice", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.GetStats()["started"], ShouldEqual, true)
			So(svc.GetStats()["memory"], ShouldNotBeEmpty)
			svc.Stop()
			svc.Stop()

			Convey("Then it is stopped", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_Intents(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service without a credential", t, func() {
		n := &fakeNarrator{}
		svc := newService(n)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When play is requested", func() {
			snap, err := svc.TogglePlay(ctx)

			Convey("Then it is refused and nothing is fetched", func() {
				So(err, ShouldEqual, service.ErrNoCredential)
				So(snap.Playing, ShouldBeFalse)
				So(n.requests(), ShouldBeEmpty)
			})
		})

		Convey("When view and speed are changed", func() {
			v, errV := svc.ToggleView(ctx)
			sp, errS := svc.CycleSpeed(ctx)

			Convey("Then they work regardless", func() {
				So(errV, ShouldBeNil)
				So(v.Is3D, ShouldBeTrue)
				So(errS, ShouldBeNil)
				So(sp.Speed, ShouldEqual, 1.5)
			})
		})

		Convey("When an unknown intent is sent", func() {
			_, err := svc.Do(ctx, service.Intent("dance"))

			Convey("Then it is rejected", func() {
				So(err, ShouldEqual, service.ErrUnknownIntent)
			})
		})
	})

	Convey("Given a service at the top speed", t, func() {
		svc := newService(&fakeNarrator{credential: true}, service.WithInitialSpeed(5.0))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Then cycling wraps to the slowest speed", func() {
			snap, err := svc.CycleSpeed(ctx)
			So(err, ShouldBeNil)
			So(snap.Speed, ShouldEqual, match.Speeds[0])
		})
	})
}

func TestService_Playback(t *testing.T) {
	ctx := context.Background()

	Convey("Given a playing match with a healthy narrator", t, func() {
		n := &fakeNarrator{credential: true, goalAt: 12}
		svc := newService(n)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		snap, err := svc.TogglePlay(ctx)
		So(err, ShouldBeNil)
		So(snap.Playing, ShouldBeTrue)

		Convey("When the clock passes the goal minute", func() {
			So(eventually(func() bool { return svc.Snapshot().Minute >= 13 }), ShouldBeTrue)

			Convey("Then batches follow the 3-then-12 plan and the goal is applied", func() {
				reqs := n.requests()
				So(len(reqs), ShouldBeGreaterThanOrEqualTo, 2)
				So(reqs[0].Start, ShouldEqual, 1)
				So(reqs[0].Duration, ShouldEqual, 3)
				So(reqs[1].Start, ShouldEqual, 4)
				So(reqs[1].Duration, ShouldEqual, 12)

				s := svc.Snapshot()
				So(s.Home.Score, ShouldEqual, 1)
				h10 := s.Home.Players[9]
				So(h10.Events, ShouldResemble, []model.MatchEvent{{Type: model.EventGoal, Minute: 12}})
				So(h10.Rating, ShouldAlmostEqual, 9.3, 1e-9)
			})

			Convey("Then the ball never has both a target and an owner", func() {
				s := svc.Snapshot()
				So(s.Ball.TargetID != "" && s.Ball.OwnerID != "", ShouldBeFalse)
			})
		})

		Convey("When the match is paused", func() {
			So(eventually(func() bool { return svc.Snapshot().Minute >= 2 }), ShouldBeTrue)
			paused, err := svc.TogglePlay(ctx)
			So(err, ShouldBeNil)
			time.Sleep(30 * time.Millisecond)
			frozen := svc.Snapshot().Minute
			time.Sleep(50 * time.Millisecond)

			Convey("Then the clock stops", func() {
				So(paused.Playing, ShouldBeFalse)
				So(svc.Snapshot().Minute, ShouldEqual, frozen)
			})
		})
	})

	Convey("Given a match played to the end", t, func() {
		n := &fakeNarrator{credential: true}
		svc := newService(n, service.WithPlaybackInterval(time.Millisecond))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		_, err := svc.TogglePlay(ctx)
		So(err, ShouldBeNil)
		So(eventually(func() bool { return svc.Snapshot().Finished }), ShouldBeTrue)
		time.Sleep(20 * time.Millisecond)

		Convey("Then the final whistle is recorded once and playback stops", func() {
			s := svc.Snapshot()
			So(s.Minute, ShouldEqual, 90)
			So(s.Playing, ShouldBeFalse)
			So(s.FetchedUpTo, ShouldEqual, 90)

			whistles := 0
			for _, c := range s.Commentary {
				if c.Text == match.FinalWhistleText {
					whistles++
				}
			}
			So(whistles, ShouldEqual, 1)
		})

		Convey("Then minutes 1 to 90 were each requested once", func() {
			next := 1
			for _, r := range n.requests() {
				So(r.Start, ShouldEqual, next)
				next = r.End() + 1
			}
			So(next, ShouldEqual, 91)
		})

		Convey("Then play is a no-op after the whistle", func() {
			s, err := svc.TogglePlay(ctx)
			So(err, ShouldBeNil)
			So(s.Playing, ShouldBeFalse)
		})
	})
}

func TestService_Degradation(t *testing.T) {
	ctx := context.Background()

	Convey("Given a narrator that is rate limited on its second call", t, func() {
		now := time.Now()
		n := &fakeNarrator{
			credential: true,
			errs:       map[int]error{1: fmt.Errorf("%w: status 429", narrative.ErrRateLimited)},
		}
		svc := newService(n,
			service.WithPlaybackInterval(20*time.Millisecond),
			service.WithClock(func() time.Time { return now }),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		_, err := svc.TogglePlay(ctx)
		So(err, ShouldBeNil)
		So(eventually(func() bool { return svc.Snapshot().Minute >= 15 }), ShouldBeTrue)

		Convey("Then fillers stand in for minutes 4 to 15 and fetching pauses", func() {
			s := svc.Snapshot()
			fillers := 0
			for _, c := range s.Commentary {
				if c.Text == commentary.RateLimited {
					fillers++
					So(c.Minute, ShouldBeBetweenOrEqual, 4, 15)
				}
			}
			So(fillers, ShouldEqual, 12)
			So(s.FetchedUpTo, ShouldEqual, 15)

			time.Sleep(50 * time.Millisecond)
			So(n.requests(), ShouldHaveLength, 2)
			So(svc.GetStats()["backoffUntil"], ShouldEqual, now.Add(producer.DefaultBackoff))
		})
	})

	Convey("Given a narrator that fails transiently on its first call", t, func() {
		n := &fakeNarrator{
			credential: true,
			errs:       map[int]error{0: fmt.Errorf("%w: boom", narrative.ErrRequestFailed)},
		}
		svc := newService(n)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		_, err := svc.TogglePlay(ctx)
		So(err, ShouldBeNil)
		So(eventually(func() bool { return svc.Snapshot().Minute >= 5 }), ShouldBeTrue)

		Convey("Then stock commentary fills in and fetching continues at once", func() {
			s := svc.Snapshot()
			So(s.Commentary[0].Text, ShouldEqual, commentary.Default(0))
			So(s.Commentary[0].Minute, ShouldEqual, 1)
			So(len(n.requests()), ShouldBeGreaterThanOrEqualTo, 2)
			So(svc.GetStats()["backoffUntil"], ShouldBeNil)
		})
	})
}

func TestService_Subscribe(t *testing.T) {
	Convey("Given a subscriber", t, func() {
		ctx := context.Background()
		svc := newService(&fakeNarrator{credential: true})
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		ch, cancel := svc.Subscribe()
		defer cancel()

		Convey("When an intent changes the state", func() {
			_, err := svc.ToggleView(ctx)
			So(err, ShouldBeNil)

			Convey("Then the new snapshot is delivered", func() {
				select {
				case snap := <-ch:
					So(snap.Is3D, ShouldBeTrue)
				case <-time.After(time.Second):
					So("timeout", ShouldBeEmpty)
				}
			})
		})
	})
}

func TestService_Autoplay(t *testing.T) {
	Convey("Given autoplay with a credential", t, func() {
		ctx := context.Background()
		svc := newService(&fakeNarrator{credential: true}, service.WithAutoplay(true))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Then the match plays without an intent", func() {
			So(eventually(func() bool { return svc.Snapshot().Minute >= 1 }), ShouldBeTrue)
		})
	})
}
