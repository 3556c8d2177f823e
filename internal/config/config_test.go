package config_test

import (
	"runtime"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/verdello/traintrack/internal/config"
	"github.com/verdello/traintrack/internal/domain/compliance"
)

func TestConfigDefaults(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		convey.Convey("Then process defaults should be set", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.EventQueueSize, convey.ShouldEqual, 100_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*4)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
			convey.So(cfg.ShardCount, convey.ShouldEqual, 8)
		})

		convey.Convey("Then the policy should match the three-day rule", func() {
			policy := cfg.Policy()
			convey.So(policy.WindowYears, convey.ShouldEqual, 6)
			convey.So(policy.RequiredHours, convey.ShouldEqual, 21)
			convey.So(policy.MinLiveRatio, convey.ShouldAlmostEqual, 1.0/3.0)
			convey.So(policy.AtRiskHorizonYears, convey.ShouldEqual, 1)
			convey.So(policy.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then the event mode should default to skip", func() {
			mode, err := cfg.EventMode()
			convey.So(err, convey.ShouldBeNil)
			convey.So(mode, convey.ShouldEqual, compliance.SkipInvalid)
		})
	})
}

func TestConfigEventMode(t *testing.T) {
	convey.Convey("Given configs with explicit invalid_event_mode values", t, func() {
		convey.Convey("When the mode is abort", func() {
			cfg := config.New()
			cfg.InvalidEventMode = "abort"
			mode, err := cfg.EventMode()
			convey.So(err, convey.ShouldBeNil)
			convey.So(mode, convey.ShouldEqual, compliance.AbortOnInvalid)
		})

		convey.Convey("When the mode is uppercase", func() {
			cfg := config.New()
			cfg.InvalidEventMode = "SKIP"
			mode, err := cfg.EventMode()
			convey.So(err, convey.ShouldBeNil)
			convey.So(mode, convey.ShouldEqual, compliance.SkipInvalid)
		})

		convey.Convey("When the mode is unknown", func() {
			cfg := config.New()
			cfg.InvalidEventMode = "ignore"
			_, err := cfg.EventMode()
			convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
		})
	})
}
