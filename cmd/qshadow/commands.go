package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/davecgh/go-spew/spew"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/theapemachine/qshadow"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	out    io.Writer
	errOut io.Writer
	v      *viper.Viper
	cfg    *qshadow.Config
	logger *log.Logger
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut, v: viper.New()}
	qshadow.SetDefaults(a.v)

	var configFile string

	root := &cobra.Command{
		Use:           "qshadow",
		Short:         "Plan and evaluate classical shadow measurements",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, configFile)
		},
	}

	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (yaml, toml or json)")
	root.PersistentFlags().String("log-level", "info", "debug, info, warn or error")

	root.AddCommand(
		a.randomizedCmd(),
		a.derandomizedCmd(),
		a.predictCmd(),
		a.generateCmd(),
	)

	return root
}

func (a *app) setup(cmd *cobra.Command, configFile string) error {
	bindFlags(a.v, cmd.Flags())

	if configFile != "" {
		a.v.SetConfigFile(configFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", configFile, err)
		}
	}

	cfg, err := qshadow.LoadConfig(a.v)
	if err != nil {
		return err
	}

	logger, err := cfg.Logger(a.errOut)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.logger.Debug("configuration loaded", "config", spew.Sdump(cfg))

	return nil
}

// bindFlags exposes every flag to viper under its snake_case key.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" {
			return
		}
		_ = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})
}

func (a *app) randomizedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "randomized <num_total_measurements> <system_size>",
		Short: "Emit uniformly random Pauli measurement rounds",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			numRounds, err := positiveArg("num_total_measurements", args[0])
			if err != nil {
				return err
			}

			systemSize, err := positiveArg("system_size", args[1])
			if err != nil {
				return err
			}

			rounds := qshadow.RandomizedShadow(qshadow.NewSource(a.cfg.Seed), numRounds, systemSize)
			a.logger.Info("randomized shadow", "rounds", numRounds, "system_size", systemSize, "seed", a.cfg.Seed)

			return qshadow.WriteRounds(a.out, rounds)
		},
	}

	cmd.Flags().Uint64("seed", 0, "seed for the random generator")

	return cmd
}

func (a *app) derandomizedCmd() *cobra.Command {
	var weightsFile string

	cmd := &cobra.Command{
		Use:   "derandomized <measurements_per_observable> <observable_file>",
		Short: "Emit derandomized rounds measuring every observable enough times",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := positiveArg("measurements_per_observable", args[0])
			if err != nil {
				return err
			}
			a.cfg.MeasurementsPerObservable = m

			systemSize, observables, err := readObservableFile(args[1])
			if err != nil {
				return err
			}

			var weights []float64
			if weightsFile != "" {
				if weights, err = readWeightsFile(weightsFile); err != nil {
					return err
				}
			}

			if a.cfg.CPUProfile != "" {
				stop, err := startProfile(a.cfg.CPUProfile)
				if err != nil {
					return err
				}
				defer stop()
			}

			var (
				registry   *prometheus.Registry
				registerer prometheus.Registerer
			)
			if a.cfg.MetricsFile != "" {
				registry = prometheus.NewRegistry()
				registerer = registry
			}
			metrics := qshadow.NewMetrics(registerer)

			scheduler, err := qshadow.Derandomize(
				systemSize, observables, a.cfg.MeasurementsPerObservable, weights,
				qshadow.WithRoundLimit(a.cfg.RoundLimit),
				qshadow.WithLogger(a.logger),
				qshadow.WithMetrics(metrics),
			)
			if err != nil {
				return err
			}

			w := bufio.NewWriter(a.out)
			for scheduler.Next() {
				if err := qshadow.WriteRound(w, scheduler.Round()); err != nil {
					return err
				}
				if err := cmd.Context().Err(); err != nil {
					w.Flush()
					return err
				}
			}
			if err := w.Flush(); err != nil {
				return err
			}

			a.logger.Info("derandomized shadow", "metrics", metrics.ExportMetrics())

			if registry != nil {
				if err := prometheus.WriteToTextfile(a.cfg.MetricsFile, registry); err != nil {
					return fmt.Errorf("writing metrics: %w", err)
				}
			}

			return scheduler.Err()
		},
	}

	cmd.Flags().StringVar(&weightsFile, "weights", "", "file with one weight per observable")
	cmd.Flags().Int("round-limit", 0, "cap on the number of rounds (0 derives it from the targets)")
	cmd.Flags().String("metrics-file", "", "write prometheus metrics to this file")
	cmd.Flags().String("cpu-profile", "", "write a CPU profile to this file")

	return cmd
}

func (a *app) predictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict <measurement_file> <observable_file>",
		Short: "Predict observable expectation values from measurement outcomes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			_, measurements, err := qshadow.ReadMeasurements(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			_, observables, err := readObservableFile(args[1])
			if err != nil {
				return err
			}

			predictions, err := qshadow.PredictAll(cmd.Context(), measurements, observables, a.cfg.Workers)
			if err != nil {
				return err
			}

			w := bufio.NewWriter(a.out)
			for i, p := range predictions {
				if !p.Defined {
					a.logger.Warn("no matching measurement", "observable", i)
				}
				fmt.Fprintln(w, strconv.FormatFloat(p.Value, 'g', -1, 64))
			}

			return w.Flush()
		},
	}

	cmd.Flags().Int("workers", 4, "observables estimated concurrently")

	return cmd
}

func (a *app) generateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate <system_size>",
		Short: "Write the local benchmark observables for a qubit chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			systemSize, err := positiveArg("system_size", args[0])
			if err != nil {
				return err
			}

			return qshadow.WriteObservables(a.out, systemSize, qshadow.LocalObservables(systemSize))
		},
	}
}

func positiveArg(name, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", qshadow.ErrConfiguration, name, value)
	}
	return n, nil
}

func readObservableFile(path string) (int, []qshadow.Observable, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, nil, err
	}
	defer f.Close()

	systemSize, observables, err := qshadow.ReadObservables(f)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: %w", path, err)
	}

	return systemSize, observables, nil
}

func readWeightsFile(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	weights, err := qshadow.ReadWeights(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return weights, nil
}

func startProfile(path string) (func(), error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, err
	}

	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}, nil
}
