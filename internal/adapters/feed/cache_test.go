package feed_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/escala/internal/adapters/feed"
	"github.com/okian/escala/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleSnapshot() feed.Snapshot {
	return feed.Snapshot{
		Players: []model.Player{{
			ID: 9, Nickname: "Nove", Position: model.Forward, Price: 11.2,
			AverageScore: 6.4, GamesPlayed: 8, Status: model.Probable, Venue: model.Away,
			Club: "SAN", Opponent: "GRE",
		}},
		MarketOpen: true,
		FetchedAt:  time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

type countingSource struct {
	calls atomic.Int32
	snap  feed.Snapshot
	err   error
}

func (c *countingSource) Fetch(context.Context) (feed.Snapshot, error) {
	c.calls.Add(1)
	return c.snap, c.err
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) (feed.Snapshot, bool, error) {
	return feed.Snapshot{}, false, errors.New("cache down")
}

func (brokenCache) Set(context.Context, string, feed.Snapshot, time.Duration) error {
	return errors.New("cache down")
}

func TestMemoryCache(t *testing.T) {
	Convey("Given a memory cache", t, func() {
		ctx := context.Background()
		c := feed.NewMemoryCache()

		Convey("When nothing was stored", func() {
			_, ok, err := c.Get(ctx, "k")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})

		Convey("When a snapshot is stored", func() {
			So(c.Set(ctx, "k", sampleSnapshot(), time.Minute), ShouldBeNil)
			got, ok, err := c.Get(ctx, "k")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(got, ShouldResemble, sampleSnapshot())
		})

		Convey("When a snapshot is stored with a zero ttl", func() {
			So(c.Set(ctx, "k", sampleSnapshot(), time.Minute), ShouldBeNil)
			So(c.Set(ctx, "k", sampleSnapshot(), 0), ShouldBeNil)
			_, ok, _ := c.Get(ctx, "k")
			So(ok, ShouldBeFalse)
		})

		Convey("When the entry has expired", func() {
			So(c.Set(ctx, "k", sampleSnapshot(), time.Nanosecond), ShouldBeNil)
			time.Sleep(time.Millisecond)
			_, ok, _ := c.Get(ctx, "k")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestCachedSource(t *testing.T) {
	Convey("Given a cached source over a counting source", t, func() {
		ctx := context.Background()
		src := &countingSource{snap: sampleSnapshot()}
		cs := feed.NewCachedSource(src, feed.NewMemoryCache(), feed.WithTTL(time.Minute), feed.WithKey("test"))

		Convey("When fetched repeatedly", func() {
			for i := 0; i < 5; i++ {
				s, err := cs.Fetch(ctx)
				So(err, ShouldBeNil)
				So(s.Players, ShouldHaveLength, 1)
			}

			Convey("Then the upstream is hit once", func() {
				So(src.calls.Load(), ShouldEqual, 1)
			})
		})

		Convey("When many goroutines miss at once", func() {
			var wg sync.WaitGroup
			for i := 0; i < 16; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, _ = cs.Fetch(ctx)
				}()
			}
			wg.Wait()

			Convey("Then they share one upstream call", func() {
				So(src.calls.Load(), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a failing source", t, func() {
		src := &countingSource{err: feed.ErrUpstream}
		cs := feed.NewCachedSource(src, feed.NewMemoryCache())

		Convey("Then the error is returned and nothing is cached", func() {
			_, err := cs.Fetch(context.Background())
			So(errors.Is(err, feed.ErrUpstream), ShouldBeTrue)
			_, err = cs.Fetch(context.Background())
			So(err, ShouldNotBeNil)
			So(src.calls.Load(), ShouldEqual, 2)
		})
	})

	Convey("Given a cache that always fails", t, func() {
		src := &countingSource{snap: sampleSnapshot()}
		cs := feed.NewCachedSource(src, brokenCache{})

		Convey("Then every fetch falls through to the source", func() {
			s, err := cs.Fetch(context.Background())
			So(err, ShouldBeNil)
			So(s.MarketOpen, ShouldBeTrue)
			_, _ = cs.Fetch(context.Background())
			So(src.calls.Load(), ShouldEqual, 2)
		})
	})

	Convey("Given a static source", t, func() {
		s, err := feed.Static(sampleSnapshot()).Fetch(context.Background())
		So(err, ShouldBeNil)
		So(s, ShouldResemble, sampleSnapshot())
	})
}
