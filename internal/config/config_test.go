package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/cricscore/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.PredictorURL, convey.ShouldEqual, "http://127.0.0.1:5000")
			convey.So(cfg.CatalogPath, convey.ShouldBeEmpty)
			convey.So(cfg.GatewayTimeout(), convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.PayloadRoundRunRate, convey.ShouldBeTrue)
			convey.So(cfg.MaxSessions, convey.ShouldEqual, 1000)
			convey.So(cfg.ResetOnSuccess, convey.ShouldBeFalse)
			convey.So(cfg.MetricsEnabled, convey.ShouldBeTrue)
			convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "cricscore")
			convey.So(cfg.MetricsSubsystem, convey.ShouldEqual, "predictor")
			convey.So(cfg.MetricsRefreshInterval(), convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with invalid values", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"empty addr", func(c *config.Config) { c.Addr = " " }},
			{"no predictor", func(c *config.Config) { c.PredictorURL = "" }},
			{"negative timeout", func(c *config.Config) { c.GatewayTimeoutMS = -1 }},
			{"zero max sessions", func(c *config.Config) { c.MaxSessions = 0 }},
			{"zero metrics refresh", func(c *config.Config) { c.MetricsRefreshIntervalMS = 0 }},
			{"empty metrics namespace", func(c *config.Config) { c.MetricsNamespace = "" }},
		}
		for _, tc := range cases {
			convey.Convey("Then "+tc.name+" is rejected", func() {
				cfg := config.New()
				tc.mutate(cfg)
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}

		convey.Convey("A local catalog path stands in for a missing predictor URL", func() {
			cfg := config.New()
			cfg.PredictorURL = ""
			cfg.CatalogPath = "venues.json"
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
