// cmd/airsep/config.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/mmp/airsep/conflict"
	"github.com/mmp/airsep/math"
	"github.com/mmp/airsep/server"
	"github.com/mmp/airsep/sim"
	"github.com/mmp/airsep/util"
)

// Config is the optional JSON configuration file; anything it leaves
// out keeps its default, and command-line flags override it.
type Config struct {
	Sim      sim.Config         `json:"sim"`
	Conflict conflict.Config    `json:"conflict"`
	Kafka    server.KafkaConfig `json:"kafka"`
	Traffic  TrafficConfig      `json:"traffic"`

	// AlertIntervalSec is how often the alert monitor runs a detection
	// pass.
	AlertIntervalSec float64 `json:"alert_interval_sec"`

	RPCPort  int `json:"rpc_port"`
	HTTPPort int `json:"http_port"`
}

// TrafficConfig describes random traffic to spawn at startup.
type TrafficConfig struct {
	Count     int     `json:"count"`
	CenterLat float64 `json:"center_lat"`
	CenterLon float64 `json:"center_lon"`
	RadiusNM  float64 `json:"radius_nm"`
	Seed      int64   `json:"seed"` // 0: random
}

func DefaultConfig() Config {
	return Config{
		Sim:      sim.DefaultConfig(),
		Conflict: conflict.DefaultConfig(),
		Traffic: TrafficConfig{
			// Tokyo Haneda
			CenterLat: 35.5494,
			CenterLon: 139.7798,
			RadiusNM:  60,
		},
		AlertIntervalSec: 1,
		RPCPort:          server.DefaultRPCPort,
		HTTPPort:         server.DefaultHTTPPort,
	}
}

func LoadConfig(filename string) (Config, error) {
	cfg := DefaultConfig()
	if filename == "" {
		return cfg, nil
	}

	f, err := os.Open(filename)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	if err := util.UnmarshalJSON(f, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", filename, err)
	}
	return cfg, nil
}

func (c Config) Check(e *util.ErrorLogger) {
	c.Sim.Check(e)
	c.Conflict.Check(e)

	if !(c.AlertIntervalSec > 0) {
		e.ErrorString("alert_interval_sec %v must be positive", c.AlertIntervalSec)
	}
	if c.Traffic.Count < 0 {
		e.ErrorString("traffic count %d must not be negative", c.Traffic.Count)
	}
	if c.Traffic.Count > 0 && !(c.Traffic.RadiusNM > 0) {
		e.ErrorString("traffic radius_nm %v must be positive", c.Traffic.RadiusNM)
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		e.ErrorString("kafka topic must be specified along with brokers")
	}
}

func (c Config) AlertInterval() time.Duration {
	return time.Duration(c.AlertIntervalSec * float64(time.Second))
}

func (c Config) TrafficCenter() math.Point2LL {
	return math.Point2LL{c.Traffic.CenterLon, c.Traffic.CenterLat}
}
