package qshadow

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/viper"

	. "github.com/smartystreets/goconvey/convey"
)

func TestConfig(t *testing.T) {
	Convey("Given a viper instance with the defaults", t, func() {
		v := viper.New()
		SetDefaults(v)

		Convey("Loading it should give NewConfig", func() {
			cfg, err := LoadConfig(v)
			So(err, ShouldBeNil)
			So(cfg, ShouldResemble, NewConfig())
		})

		Convey("Overrides should be picked up", func() {
			v.Set("measurements", 10)
			v.Set("round_limit", 50)
			v.Set("seed", 7)

			cfg, err := LoadConfig(v)
			So(err, ShouldBeNil)
			So(cfg.MeasurementsPerObservable, ShouldEqual, 10)
			So(cfg.RoundLimit, ShouldEqual, 50)
			So(cfg.Seed, ShouldEqual, uint64(7))
		})

		Convey("The environment should be consulted", func() {
			t.Setenv("QSHADOW_WORKERS", "9")

			cfg, err := LoadConfig(v)
			So(err, ShouldBeNil)
			So(cfg.Workers, ShouldEqual, 9)
		})

		Convey("Invalid values should be configuration errors", func() {
			v.Set("measurements", 0)
			_, err := LoadConfig(v)
			So(errors.Is(err, ErrConfiguration), ShouldBeTrue)

			v.Set("measurements", 1)
			v.Set("log_level", "chatty")
			_, err = LoadConfig(v)
			So(errors.Is(err, ErrConfiguration), ShouldBeTrue)
		})
	})

	Convey("Given a debug level config", t, func() {
		cfg := NewConfig()
		cfg.LogLevel = "debug"

		Convey("Its logger should emit debug records", func() {
			var buf bytes.Buffer
			logger, err := cfg.Logger(&buf)
			So(err, ShouldBeNil)

			logger.Debug("ready", "k", 1)
			So(buf.String(), ShouldContainSubstring, "ready")
		})
	})
}
