// main.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

// This file contains the implementation of the main() function, which
// initializes the kinematics engine and runs its tick loop until it
// exits.

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/blacks1k-sc/atc-kinematics-core/pkg/airspace"
	"github.com/blacks1k-sc/atc-kinematics-core/pkg/config"
	"github.com/blacks1k-sc/atc-kinematics-core/pkg/engine"
	"github.com/blacks1k-sc/atc-kinematics-core/pkg/eventbus"
	"github.com/blacks1k-sc/atc-kinematics-core/pkg/log"
	"github.com/blacks1k-sc/atc-kinematics-core/pkg/spawn"
	"github.com/blacks1k-sc/atc-kinematics-core/pkg/store"
	"github.com/blacks1k-sc/atc-kinematics-core/pkg/telemetry"
	"github.com/blacks1k-sc/atc-kinematics-core/pkg/tick"
)

var (
	duration = flag.Float64("duration", 0, "seconds to run before exiting; 0 runs until signaled")
	testMode = flag.Bool("test", false, "alias for -duration 60, for smoke-testing a deployment")
)

func main() {
	flag.Parse()

	cfg, warnings := config.FromEnv()
	lg := log.New(cfg.LogLevel, cfg.LogDir)
	for _, w := range warnings {
		lg.Warnf("config: %s: %v, using default", w.Key, w.Err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runDuration := *duration
	if *testMode {
		runDuration = 60
	}

	exitCode := run(ctx, cfg, lg, runDuration)
	os.Exit(exitCode)
}

func run(ctx context.Context, cfg config.Config, lg *log.Logger, durationSeconds float64) int {
	st, err := store.NewPostgres(ctx, store.PostgresConfig{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		Database: cfg.DBName,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		PoolSize: cfg.DBPoolSize,
	}, lg)
	if err != nil {
		lg.Errorf("connect to store: %v", err)
		return 1
	}
	defer st.Close()

	bus, err := eventbus.NewAMQP(eventbus.AMQPConfig{
		Host:     cfg.BusHost,
		Port:     cfg.BusPort,
		Password: cfg.BusPassword,
		Exchange: cfg.BusExchange,
	}, lg)
	if err != nil {
		lg.Errorf("connect to event bus: %v", err)
		return 1
	}
	defer bus.Close()

	ref, loadErrs := airspace.Load(cfg.AirspaceConfigPath, cfg.AirportDataPath)
	for _, e := range loadErrs {
		lg.Warnf("airspace: %v", e)
	}

	tlm, err := telemetry.New(cfg.TelemetryDir, lg)
	if err != nil {
		lg.Errorf("telemetry: %v", err)
		return 1
	}

	ingestor := spawn.New(st, bus, lg)
	if err := ingestor.Start(ctx); err != nil {
		lg.Errorf("spawn ingestor: %v", err)
		return 1
	}

	eng := engine.New(st, bus, ref, lg, tlm, cfg.RandomSeed)
	loop := tick.New(eng, lg)

	bus.Publish(ctx, eventbus.NewMessage("atc_brain:started", map[string]any{"pid": os.Getpid()}))
	lg.Infof("kinematics engine started, airport=%s", ref.ICAO)

	runErr := loop.Run(ctx, durationSeconds)

	bus.Publish(context.Background(), eventbus.NewMessage("atc_brain:stopped", map[string]any{"pid": os.Getpid()}))
	if err := tlm.Flush(); err != nil {
		lg.Errorf("final telemetry flush: %v", err)
	}
	printStatistics(lg, eng.Stats())

	if runErr != nil {
		lg.Errorf("tick loop exited with error: %v", runErr)
		return 1
	}
	return 0
}

func printStatistics(lg *log.Logger, s engine.Stats) {
	lg.Infof("engine statistics: total_ticks=%d aircraft_processed=%d events_fired=%d avg_tick_duration=%s",
		s.TotalTicks, s.AircraftProcessed, s.EventsFired, s.AvgTickDuration())
	fmt.Printf("total ticks:        %d\n", s.TotalTicks)
	fmt.Printf("aircraft processed: %d\n", s.AircraftProcessed)
	fmt.Printf("events fired:       %d\n", s.EventsFired)
	fmt.Printf("avg tick duration:  %s\n", s.AvgTickDuration())
}
