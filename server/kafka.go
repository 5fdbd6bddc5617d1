// server/kafka.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	av "github.com/mmp/airsep/aviation"
	"github.com/mmp/airsep/conflict"
	"github.com/mmp/airsep/log"

	"github.com/segmentio/kafka-go"
)

// alertMessage is the JSON form of an AlertEvent used by the websocket
// stream and the Kafka sink. JSON has no infinity, so a pair with no
// relative motion is sent without a time to closest approach.
type alertMessage struct {
	Kind                AlertEventKind      `json:"kind"`
	Pair                conflict.PairID     `json:"pair"`
	Callsigns           [2]av.Callsign      `json:"callsigns"`
	Level               conflict.AlertLevel `json:"level"`
	Previous            conflict.AlertLevel `json:"previous"`
	Risk                float64             `json:"risk"`
	TimeToClosest       *float64            `json:"time_to_closest_sec,omitempty"`
	ClosestHorizontalNM float64             `json:"closest_horizontal_nm"`
	ClosestVerticalFt   float64             `json:"closest_vertical_ft"`
	CurrentHorizontalNM float64             `json:"current_horizontal_nm"`
	CurrentVerticalFt   float64             `json:"current_vertical_ft"`
	ConflictPredicted   bool                `json:"conflict_predicted"`
	Tick                int64               `json:"tick"`
	Time                time.Time           `json:"time"`
}

func makeAlertMessage(e AlertEvent) alertMessage {
	ra := e.Assessment
	m := alertMessage{
		Kind:                e.Kind,
		Pair:                ra.PairID,
		Callsigns:           ra.Callsigns,
		Level:               e.Level(),
		Previous:            e.Previous,
		Risk:                float64(ra.RiskLevel),
		ClosestHorizontalNM: ra.ClosestHorizontalNM,
		ClosestVerticalFt:   ra.ClosestVerticalFt,
		CurrentHorizontalNM: ra.CurrentHorizontalNM,
		CurrentVerticalFt:   ra.CurrentVerticalFt,
		ConflictPredicted:   ra.ConflictPredicted,
		Tick:                e.Tick,
		Time:                e.Time,
	}
	if ra.HasFiniteCPA() {
		t := ra.TimeToClosest
		m.TimeToClosest = &t
	}
	return m
}

type KafkaConfig struct {
	Brokers []string `json:"brokers"`
	Topic   string   `json:"topic"`
}

// kafkaWriter is the subset of *kafka.Writer used by KafkaAlertSink.
type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaAlertSink publishes each alert transition as a JSON message keyed
// by pair id, so that all of the updates for a pair land in the same
// partition in order.
type KafkaAlertSink struct {
	w       kafkaWriter
	topic   string
	timeout time.Duration
	lg      *log.Logger
}

func NewKafkaAlertSink(cfg KafkaConfig, lg *log.Logger) (*KafkaAlertSink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers specified")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka: no topic specified")
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	lg.Info("kafka alert sink", slog.Any("brokers", cfg.Brokers), slog.String("topic", cfg.Topic))

	return newKafkaAlertSink(w, cfg.Topic, lg), nil
}

func newKafkaAlertSink(w kafkaWriter, topic string, lg *log.Logger) *KafkaAlertSink {
	return &KafkaAlertSink{w: w, topic: topic, timeout: 5 * time.Second, lg: lg}
}

func (s *KafkaAlertSink) Publish(ctx context.Context, events []AlertEvent) error {
	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		b, err := json.Marshal(makeAlertMessage(e))
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(e.Assessment.PairID),
			Value: b,
			Time:  e.Time,
		})
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.w.WriteMessages(ctx, msgs...); err != nil {
		s.lg.Warn("kafka publish failed", slog.String("topic", s.topic), slog.Int("messages", len(msgs)),
			slog.Any("error", err))
		return fmt.Errorf("kafka %s: %w", s.topic, err)
	}
	s.lg.Debug("kafka published", slog.String("topic", s.topic), slog.Int("messages", len(msgs)))
	return nil
}

func (s *KafkaAlertSink) Close() error {
	return s.w.Close()
}
