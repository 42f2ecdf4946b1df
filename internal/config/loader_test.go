package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/escala/internal/config"
	"github.com/okian/escala/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.Budget, convey.ShouldEqual, 100.0)
				convey.So(cfg.Formation, convey.ShouldEqual, "4-3-3")
				convey.So(cfg.FeedBaseURL, convey.ShouldEqual, "https://api.cartola.globo.com")
				convey.So(cfg.Formations, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("ESCALA_ADDR", ":8080")
			_ = os.Setenv("ESCALA_BUDGET", "137.5")
			_ = os.Setenv("ESCALA_FORMATION", "4-4-2")
			_ = os.Setenv("ESCALA_RESERVE_PER_SLOT", "2")
			_ = os.Setenv("ESCALA_BATCH_WORKERS", "3")
			_ = os.Setenv("ESCALA_FEED_BASE_URL", "http://localhost:1234")
			_ = os.Setenv("ESCALA_CACHE_BACKEND", "redis")
			_ = os.Setenv("ESCALA_REDIS_ADDR", "localhost:6379")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Budget, convey.ShouldEqual, 137.5)
				convey.So(cfg.Formation, convey.ShouldEqual, "4-4-2")
				convey.So(cfg.ReservePerSlot, convey.ShouldEqual, 2.0)
				convey.So(cfg.BatchWorkers, convey.ShouldEqual, 3)
				convey.So(cfg.FeedBaseURL, convey.ShouldEqual, "http://localhost:1234")
				convey.So(cfg.CacheBackend, convey.ShouldEqual, config.CacheRedis)
				convey.So(cfg.RedisAddr, convey.ShouldEqual, "localhost:6379")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
budget: 80
formation: "3-5-2"
max_batch_size: 8
feed_cache_ttl_seconds: 30
history_size: 250
formations:
  - name: "3-5-2"
    slots:
      - {position: GOL, count: 1}
      - {position: ZAG, count: 3}
      - {position: MEI, count: 5}
      - {position: ATA, count: 2}
      - {position: TEC, count: 1}
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("ESCALA_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.Budget, convey.ShouldEqual, 80.0)
				convey.So(cfg.MaxBatchSize, convey.ShouldEqual, 8)
				convey.So(cfg.FeedCacheTTLSeconds, convey.ShouldEqual, 30)
				convey.So(cfg.HistorySize, convey.ShouldEqual, 250)
				convey.So(cfg.Formations, convey.ShouldHaveLength, 1)
				convey.So(cfg.Formations[0].Slots, convey.ShouldHaveLength, 5)
			})

			convey.Convey("Then the extra formation resolves into the catalog", func() {
				cat, err := cfg.Catalog()
				convey.So(err, convey.ShouldBeNil)
				f, err := cat.Lookup("3-5-2")
				convey.So(err, convey.ShouldBeNil)
				convey.So(f.Count(model.CenterBack), convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
budget: 80
batch_workers: 4
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("ESCALA_CONFIG", tmpFile)
			_ = os.Setenv("ESCALA_ADDR", ":8080")
			_ = os.Setenv("ESCALA_BATCH_WORKERS", "16")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Budget, convey.ShouldEqual, 80.0)
				convey.So(cfg.BatchWorkers, convey.ShouldEqual, 16)
				convey.So(cfg.MaxBatchSize, convey.ShouldEqual, 64)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("ESCALA_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("ESCALA_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("ESCALA_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a negative budget", func() {
			_ = os.Setenv("ESCALA_BUDGET", "-10")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("ESCALA_BATCH_WORKERS", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"ESCALA_CONFIG",
		"ESCALA_ADDR",
		"ESCALA_BUDGET",
		"ESCALA_FORMATION",
		"ESCALA_RESERVE_PER_SLOT",
		"ESCALA_BATCH_WORKERS",
		"ESCALA_FEED_BASE_URL",
		"ESCALA_CACHE_BACKEND",
		"ESCALA_REDIS_ADDR",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "escala-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
