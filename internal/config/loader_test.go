package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/LumineonRL/LLSIFTeamBuilder/internal/config"
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
				convey.So(cfg.Trials, convey.ShouldEqual, 1000)
				convey.So(cfg.Accuracy, convey.ShouldEqual, 0.9)
				convey.So(cfg.ApproachRate, convey.ShouldEqual, 9)
				convey.So(cfg.SplitStreams, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SIFSIM_TRIALS", "250")
			_ = os.Setenv("SIFSIM_ACCURACY", "0.95")
			_ = os.Setenv("SIFSIM_APPROACH_RATE", "7")
			_ = os.Setenv("SIFSIM_SEED", "1234")
			_ = os.Setenv("SIFSIM_SPLIT_STREAMS", "true")
			_ = os.Setenv("SIFSIM_TEAM_PATH", "my-team.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Trials, convey.ShouldEqual, 250)
				convey.So(cfg.Accuracy, convey.ShouldEqual, 0.95)
				convey.So(cfg.ApproachRate, convey.ShouldEqual, 7)
				convey.So(cfg.Seed, convey.ShouldEqual, int64(1234))
				convey.So(cfg.Seeded(), convey.ShouldBeTrue)
				convey.So(cfg.SplitStreams, convey.ShouldBeTrue)
				convey.So(cfg.TeamPath, convey.ShouldEqual, "my-team.yaml")
				convey.So(cfg.SongPath, convey.ShouldEqual, "song.yaml")
			})
		})

		convey.Convey("When loading config from a YAML file", func() {
			clearConfigEnvVars()
			path := createTempConfigFile(t, `
trials: 50
accuracy: 0.8
detailed_log: true
top_n: 3
`)
			_ = os.Setenv("SIFSIM_CONFIG", path)
			_ = os.Setenv("SIFSIM_TOP_N", "10")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values apply and env vars win", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Trials, convey.ShouldEqual, 50)
				convey.So(cfg.Accuracy, convey.ShouldEqual, 0.8)
				convey.So(cfg.DetailedLog, convey.ShouldBeTrue)
				convey.So(cfg.TopN, convey.ShouldEqual, 10)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			clearConfigEnvVars()
			_ = os.Setenv("SIFSIM_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should fail with ErrLoadConfig", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When an env var holds an invalid value", func() {
			_ = os.Setenv("SIFSIM_ACCURACY", "2")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then validation should reject it", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, name := range []string{
		"SIFSIM_CONFIG",
		"SIFSIM_TRIALS",
		"SIFSIM_ACCURACY",
		"SIFSIM_APPROACH_RATE",
		"SIFSIM_SEED",
		"SIFSIM_SPLIT_STREAMS",
		"SIFSIM_TEAM_PATH",
		"SIFSIM_TOP_N",
	} {
		_ = os.Unsetenv(name)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
