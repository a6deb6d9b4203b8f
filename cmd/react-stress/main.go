package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/plus3/cobweb/ecs"
	"github.com/plus3/cobweb/react"
)

func main() {
	configPath := flag.String("config", "", "Path to a toml config file.")
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 10000, "The number of entities carrying a reactive component.")
	reactorCount := flag.Int("reactors", 64, "The number of listener reactors to register.")
	depth := flag.Int("depth", 4, "Cascade length of mutations and relayed broadcasts.")
	output := flag.String("output", "", "Write the report to this file instead of stdout.")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	// Flags given on the command line win over the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "duration":
			cfg.Stress.Duration = *duration
		case "entities":
			cfg.Stress.Entities = *entityCount
		case "reactors":
			cfg.Stress.Reactors = *reactorCount
		case "depth":
			cfg.Stress.Depth = *depth
		}
	})
	if err := cfg.validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	report, err := run(cfg, logger)
	if err != nil {
		logger.Fatal("stress test failed", zap.Error(err))
	}

	var out io.Writer = os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			logger.Fatal("failed to create report file", zap.String("path", *output), zap.Error(err))
		}
		defer f.Close()
		out = f
	}

	fmt.Fprintln(out, "--- Stress Test Report ---")
	if err := report.Generate(out); err != nil {
		logger.Fatal("failed to generate report", zap.Error(err))
	}
	fmt.Fprintln(out, "--- End of Report ---")

	logger.Info("stress test complete")
}

// run builds the world, populates the workload and drives the scheduler
// for the configured duration
func run(cfg Config, logger *zap.Logger) (*Report, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	w := ecs.NewWorld(ecs.NewComponentRegistry())
	scheduler := ecs.NewScheduler(w)
	kernel := react.InstallScheduler(scheduler,
		react.WithConfig(cfg.React),
		react.WithLogger(logger))

	wl := newWorkload(cfg.Stress, logger)
	logger.Info("populating world", zap.Int("entities", cfg.Stress.Entities))
	wl.populate(w)
	scheduler.Register(&driverSystem{wl: wl})
	scheduler.Register(&monitorSystem{wl: wl})

	report := &Report{
		Duration: cfg.Stress.Duration,
		Entities: cfg.Stress.Entities,
		Reactors: cfg.Stress.Reactors,
		Depth:    cfg.Stress.Depth,
		Batch:    cfg.Stress.Batch,
		Churn:    cfg.Stress.Churn,
		UpdateTime: Stats{
			Samples: make([]time.Duration, 0),
		},
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	logger.Info("running simulation", zap.Duration("duration", cfg.Stress.Duration))
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Stress.Duration)
	defer cancel()

	startTime := time.Now()
	var totalUpdates int64
	lastFrameTime := time.Now()

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			deltaTime := time.Since(lastFrameTime)
			lastFrameTime = time.Now()

			updateStart := time.Now()
			scheduler.Once(deltaTime.Seconds())
			if cfg.React.TickPhase == react.TickManual {
				kernel.Tick(w)
			}
			updateDuration := time.Since(updateStart)

			report.UpdateTime.Samples = append(report.UpdateTime.Samples, updateDuration)
			totalUpdates++
		}
	}

	report.TotalTime = time.Since(startTime)
	report.TotalUpdates = totalUpdates
	report.UpdateTime.Finalize()
	report.Scheduler = scheduler.GetStats()
	report.Kernel = kernel.Stats()
	report.Counters = wl.counters
	if peak := ecs.Resource[Peak](w); peak != nil {
		report.Peak = *peak
	}
	runtime.ReadMemStats(&report.MemStatsEnd)

	logger.Info("simulation finished",
		zap.Int64("updates", totalUpdates),
		zap.Uint64("reactions", report.Kernel.Reactions))
	return report, nil
}
