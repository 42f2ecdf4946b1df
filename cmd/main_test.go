package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/okian/escala/internal/adapters/feed"
	app "github.com/okian/escala/internal/app"
	"github.com/okian/escala/internal/config"
	"github.com/okian/escala/internal/domain/model"
	"github.com/okian/escala/pkg/logger"
	"github.com/okian/escala/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("ESCALA_ADDR", ":8080")
			_ = os.Setenv("ESCALA_BATCH_WORKERS", "4")
			defer func() {
				_ = os.Unsetenv("ESCALA_ADDR")
				_ = os.Unsetenv("ESCALA_BATCH_WORKERS")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.BatchWorkers, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When testing invalid configuration", func() {
			_ = os.Setenv("ESCALA_ADDR", "")
			defer func() { _ = os.Unsetenv("ESCALA_ADDR") }()

			convey.Convey("Then configuration loading should fail", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the server is started with a broken configuration", func() {
			_ = os.Setenv("ESCALA_ADDR", "")
			defer func() { _ = os.Unsetenv("ESCALA_ADDR") }()

			var stderr bytes.Buffer
			code := serve(&stderr)

			convey.Convey("Then it reports the failure through the exit code", func() {
				convey.So(code, convey.ShouldEqual, 1)
				convey.So(stderr.String(), convey.ShouldStartWith, "failed to load config: ")
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then a manager on a private registry should be creatable", func() {
				manager := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
				convey.So(manager, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestNewMux(t *testing.T) {
	convey.Convey("Given the server mux over a static market", t, func() {
		ctx := context.Background()
		players := make([]model.Player, 0, 36)
		for i, pos := range model.Positions() {
			for j := 0; j < 6; j++ {
				players = append(players, model.Player{
					ID: i*10 + j + 1, Position: pos, Price: 4, AverageScore: float64(j + 1),
					Status: model.Probable, Venue: model.Away,
				})
			}
		}
		svc := app.New(app.WithSource(feed.Static(feed.Snapshot{Players: players})), app.WithWorkerCount(2))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop(ctx)

		mux := newMux(ctx, svc, logger.Nop())

		convey.Convey("Then docs and API routes are both served", func() {
			for _, path := range []string{"/api-docs", "/openapi.yaml", "/healthz", "/stats", "/formations", "/players"} {
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("Then a roster can be requested", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/squads", http.NoBody))
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a valid config on an ephemeral port", t, func() {
		cfg := config.New()
		cfg.Addr = "127.0.0.1:0"
		cfg.BatchWorkers = 1

		convey.Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.Convey("Then run shuts down cleanly", func() {
				convey.So(run(ctx, cfg, logger.Nop()), convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given a config whose default formation is missing", t, func() {
		cfg := config.New()
		cfg.Formation = "1-1-1"

		convey.Convey("Then run fails before listening", func() {
			convey.So(run(context.Background(), cfg, logger.Nop()), convey.ShouldNotBeNil)
		})
	})
}

func TestSystemMetrics(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.Convey("Then a single update should not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})

		convey.Convey("Then the loop returns when its context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			done := make(chan struct{})
			go func() {
				startSystemMetricsUpdater(ctx)
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("metrics updater did not stop")
			}
		})
	})
}
