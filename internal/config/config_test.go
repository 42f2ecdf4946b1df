package config_test

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/okian/escala/internal/config"
	"github.com/okian/escala/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.Budget, convey.ShouldEqual, 100.0)
			convey.So(cfg.Formation, convey.ShouldEqual, "4-3-3")
			convey.So(cfg.ReservePerSlot, convey.ShouldEqual, 1.5)
			convey.So(cfg.BatchWorkers, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.MaxBatchSize, convey.ShouldEqual, 64)
			convey.So(cfg.HistorySize, convey.ShouldEqual, 1000)
			convey.So(cfg.CacheBackend, convey.ShouldEqual, config.CacheMemory)
			convey.So(cfg.FeedTimeout(), convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.FeedCacheTTL(), convey.ShouldEqual, 10*time.Minute)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs that break one rule each", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"empty addr", func(c *config.Config) { c.Addr = "" }},
			{"zero budget", func(c *config.Config) { c.Budget = 0 }},
			{"negative reserve", func(c *config.Config) { c.ReservePerSlot = -1 }},
			{"no workers", func(c *config.Config) { c.BatchWorkers = 0 }},
			{"no batch size", func(c *config.Config) { c.MaxBatchSize = 0 }},
			{"empty feed url", func(c *config.Config) { c.FeedBaseURL = "" }},
			{"zero timeout", func(c *config.Config) { c.FeedTimeoutMS = 0 }},
			{"negative ttl", func(c *config.Config) { c.FeedCacheTTLSeconds = -1 }},
			{"no history", func(c *config.Config) { c.HistorySize = 0 }},
			{"unknown backend", func(c *config.Config) { c.CacheBackend = "memcached" }},
			{"redis without addr", func(c *config.Config) { c.CacheBackend = config.CacheRedis }},
		}

		for _, tc := range cases {
			convey.Convey("When validating with "+tc.name, func() {
				cfg := config.New()
				tc.mutate(cfg)

				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})

	convey.Convey("Given a zero reserve and a redis backend with an address", t, func() {
		cfg := config.New()
		cfg.ReservePerSlot = 0
		cfg.CacheBackend = config.CacheRedis
		cfg.RedisAddr = "localhost:6379"

		convey.So(cfg.Validate(), convey.ShouldBeNil)
	})
}

func TestConfig_Catalog(t *testing.T) {
	convey.Convey("Given the default config", t, func() {
		cat, err := config.New().Catalog()

		convey.So(err, convey.ShouldBeNil)
		convey.So(cat.Names(), convey.ShouldResemble, []string{"4-3-3", "4-4-2"})
	})

	convey.Convey("Given an extra formation", t, func() {
		cfg := config.New()
		cfg.Formation = "3-5-2"
		cfg.Formations = []config.FormationSpec{{
			Name: "3-5-2",
			Slots: []config.SlotSpec{
				{Position: "gol", Count: 1},
				{Position: "ZAG", Count: 3},
				{Position: "MEI", Count: 5},
				{Position: "ATA", Count: 2},
				{Position: "TEC", Count: 1},
			},
		}}

		cat, err := cfg.Catalog()

		convey.Convey("Then it is merged with the presets", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cat.Names(), convey.ShouldResemble, []string{"3-5-2", "4-3-3", "4-4-2"})
			f, err := cat.Lookup("3-5-2")
			convey.So(err, convey.ShouldBeNil)
			convey.So(f.Count(model.Midfielder), convey.ShouldEqual, 5)
			convey.So(f.Slots[0].Position, convey.ShouldEqual, model.Goalkeeper)
		})
	})

	convey.Convey("Given an extra formation with a bad position code", t, func() {
		cfg := config.New()
		cfg.Formations = []config.FormationSpec{{
			Name:  "odd",
			Slots: []config.SlotSpec{{Position: "XYZ", Count: 12}},
		}}

		_, err := cfg.Catalog()
		convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		convey.So(errors.Is(err, model.ErrUnknownPosition), convey.ShouldBeTrue)
	})

	convey.Convey("Given an extra formation that does not total twelve", t, func() {
		cfg := config.New()
		cfg.Formations = []config.FormationSpec{{
			Name:  "short",
			Slots: []config.SlotSpec{{Position: "ATA", Count: 11}},
		}}

		_, err := cfg.Catalog()
		convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
	})

	convey.Convey("Given a default formation that is not defined", t, func() {
		cfg := config.New()
		cfg.Formation = "5-4-1"

		_, err := cfg.Catalog()
		convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		convey.So(err.Error(), convey.ShouldContainSubstring, "5-4-1")
	})
}
