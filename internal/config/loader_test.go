package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/kickoff/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.BufferThreshold, convey.ShouldEqual, 8)
				convey.So(cfg.Model, convey.ShouldEqual, "glm-4.6")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("KICKOFF_ADDR", ":8080")
			_ = os.Setenv("KICKOFF_API_KEY", "secret")
			_ = os.Setenv("KICKOFF_BATCH_MINUTES", "6")
			_ = os.Setenv("KICKOFF_INITIAL_SPEED", "2")
			_ = os.Setenv("KICKOFF_AUTOPLAY", "true")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.APIKey, convey.ShouldEqual, "secret")
				convey.So(cfg.BatchMinutes, convey.ShouldEqual, 6)
				convey.So(cfg.InitialSpeed, convey.ShouldEqual, 2.0)
				convey.So(cfg.Autoplay, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When only the bare API_KEY variable is set", func() {
			_ = os.Setenv("API_KEY", "fallback-key")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it is used as the credential", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.APIKey, convey.ShouldEqual, "fallback-key")
			})
		})

		convey.Convey("When a dotenv file carries the credential", func() {
			dotenv := createTempConfigFile("API_KEY=dotenv-key\nKICKOFF_BUFFER_THRESHOLD=5\n")
			defer func() { _ = os.Remove(dotenv) }()
			_ = os.Setenv("KICKOFF_ENV_FILE", dotenv)
			_ = os.Setenv("KICKOFF_BUFFER_THRESHOLD", "6")

			cfg, err := config.Load(ctx)

			convey.Convey("Then unset variables are filled and set ones win", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.APIKey, convey.ShouldEqual, "dotenv-key")
				convey.So(cfg.BufferThreshold, convey.ShouldEqual, 6)
			})
		})

		convey.Convey("When an explicit dotenv file is missing", func() {
			_ = os.Setenv("KICKOFF_ENV_FILE", "/non/existent/.env")

			cfg, err := config.Load(ctx)

			convey.Convey("Then loading fails", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with a YAML file and env overrides", func() {
			tmpFile := createTempConfigFile(`
# pacing
addr: ":9090"
buffer_threshold: 4
playback_interval_ms: 2000
roster_file: "teams.yaml"
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("KICKOFF_CONFIG", tmpFile)
			_ = os.Setenv("KICKOFF_ADDR", ":7070")

			cfg, err := config.Load(ctx)

			convey.Convey("Then env wins over file and file wins over defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.BufferThreshold, convey.ShouldEqual, 4)
				convey.So(cfg.PlaybackIntervalMS, convey.ShouldEqual, 2000)
				convey.So(cfg.RosterFile, convey.ShouldEqual, "teams.yaml")
				convey.So(cfg.BatchMinutes, convey.ShouldEqual, 12)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("KICKOFF_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("KICKOFF_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("KICKOFF_BUFFER_THRESHOLD", "not_a_number")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("KICKOFF_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"KICKOFF_CONFIG",
		"KICKOFF_ENV_FILE",
		"KICKOFF_ADDR",
		"KICKOFF_API_KEY",
		"KICKOFF_BATCH_MINUTES",
		"KICKOFF_BUFFER_THRESHOLD",
		"KICKOFF_INITIAL_SPEED",
		"KICKOFF_AUTOPLAY",
		"API_KEY",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "kickoff-config-*.yaml")
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
