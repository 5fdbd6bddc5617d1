// cmd/airsep/main.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

// airsep runs the aircraft store, its scheduler, and the conflict alert
// monitor, and serves them over RPC, HTTP, and websockets.

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mmp/airsep/conflict"
	"github.com/mmp/airsep/log"
	"github.com/mmp/airsep/nav"
	"github.com/mmp/airsep/rand"
	"github.com/mmp/airsep/server"
	"github.com/mmp/airsep/sim"
	"github.com/mmp/airsep/util"

	"github.com/goforj/godump"
	"golang.org/x/sync/errgroup"
)

var (
	configFile       = flag.String("config", "", "JSON configuration file")
	logLevel         = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir           = flag.String("logdir", "", "log file directory")
	console          = flag.Bool("console", true, "also log to stderr")
	rpcPort          = flag.Int("port", server.DefaultRPCPort, "RPC port to listen on (0 picks one)")
	httpPort         = flag.Int("httpport", server.DefaultHTTPPort, "first port to try for the HTTP status server")
	refreshRate      = flag.Float64("hz", 1, "simulation updates per second")
	paused           = flag.Bool("paused", false, "start with the simulation paused")
	spawn            = flag.Int("spawn", 0, "number of random aircraft to create at startup")
	seed             = flag.Int64("seed", 0, "random seed for spawned traffic (0: random)")
	kafkaBrokers     = flag.String("kafka-brokers", "", "comma-separated Kafka brokers to publish alerts to")
	kafkaTopic       = flag.String("kafka-topic", "airsep-alerts", "Kafka topic for alerts")
	dump             = flag.Bool("dump", false, "print the initial traffic and exit")
	navLog           = flag.Bool("navlog", false, "enable navigation logging (navlog builds only)")
	navLogCategories = flag.String("navlog-categories", "all", "navigation log categories (comma-separated: state,altitude,speed,heading,direct,command)")
	navLogCallsign   = flag.String("navlog-callsign", "", "filter navigation logs to only show this callsign (empty = show all)")
)

// applyFlags overrides the configuration with the flags that were given
// explicitly on the command line.
func applyFlags(cfg *Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.RPCPort = *rpcPort
		case "httpport":
			cfg.HTTPPort = *httpPort
		case "hz":
			cfg.Sim.RefreshRateHz = *refreshRate
		case "paused":
			cfg.Sim.StartPaused = *paused
		case "spawn":
			cfg.Traffic.Count = *spawn
		case "seed":
			cfg.Traffic.Seed = *seed
		case "kafka-brokers":
			cfg.Kafka.Brokers = strings.Split(*kafkaBrokers, ",")
		case "kafka-topic":
			cfg.Kafka.Topic = *kafkaTopic
		}
	})
	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = *kafkaTopic
	}
}

func main() {
	flag.Parse()

	lg := log.New(*logLevel, *logDir, *console)
	defer lg.CatchAndReportCrash()

	nav.InitNavLog(*navLog, *navLogCategories, *navLogCallsign)

	cfg, err := LoadConfig(*configFile)
	if err != nil {
		lg.Errorf("%v", err)
		os.Exit(1)
	}
	applyFlags(&cfg)

	var e util.ErrorLogger
	cfg.Check(&e)
	if e.HaveErrors() {
		e.PrintErrors(lg)
		os.Exit(1)
	}

	if err := run(cfg, lg); err != nil {
		lg.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(cfg Config, lg *log.Logger) error {
	es := sim.NewEventStream(lg)
	defer es.Destroy()

	store, err := sim.NewStore(cfg.Sim, es, lg)
	if err != nil {
		return err
	}

	if cfg.Traffic.Count > 0 {
		r := rand.Make()
		if cfg.Traffic.Seed != 0 {
			r = rand.MakeSeeded(cfg.Traffic.Seed)
		}
		if _, err := sim.SpawnRandomTraffic(store, cfg.TrafficCenter(), cfg.Traffic.RadiusNM, cfg.Traffic.Count,
			r); err != nil {
			return err
		}
	}

	if *dump {
		godump.Dump(store.FindAll())
		return nil
	}

	detector, err := conflict.NewDetector(cfg.Conflict, lg)
	if err != nil {
		return err
	}
	sched := sim.NewScheduler(store, es, lg)

	monitor := server.NewAlertMonitor(store, detector, cfg.AlertInterval(), lg)
	defer monitor.Close()
	monitor.AddSink(server.NewLogAlertSink(lg))

	hub := server.NewAlertHub(monitor.Active, lg)
	monitor.AddSink(hub)

	if len(cfg.Kafka.Brokers) > 0 {
		ks, err := server.NewKafkaAlertSink(cfg.Kafka, lg)
		if err != nil {
			return err
		}
		monitor.AddSink(ks)
	}

	airspace := server.NewAirspace(store, sched, detector, monitor, lg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv, err := server.NewServer(cfg.RPCPort, airspace, lg)
	if err != nil {
		return err
	}
	port, err := server.LaunchHTTPServer(ctx, cfg.HTTPPort, airspace.Handler(hub), airspace)
	if err != nil {
		lg.Warnf("no HTTP server: %v", err)
	} else {
		fmt.Printf("Status at http://localhost:%d/sup, alerts at ws://localhost:%d/ws/alerts\n", port, port)
	}
	fmt.Printf("Listening for RPC on port %d\n", srv.Port())

	lg.Info("starting", slog.Any("store", store), slog.Duration("alert_interval", cfg.AlertInterval()))

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return sched.Run(ctx) })
	eg.Go(func() error { return monitor.Run(ctx) })
	eg.Go(func() error { return srv.Serve(ctx) })
	eg.Go(func() error {
		hub.PumpEvents(ctx, es, 250*time.Millisecond)
		return nil
	})

	err = eg.Wait()
	lg.Info("shutting down", slog.Any("store", store))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
