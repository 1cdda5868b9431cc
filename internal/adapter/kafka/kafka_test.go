package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/neo-risk-service/internal/config"
	"github.com/couchcryptid/neo-risk-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2026, 10, 18, 13, 45, 0, 0, time.UTC)
	rec := domain.NeoRecord{
		ID:                     "3542519",
		Name:                   "(2010 PK9)",
		IsPotentiallyHazardous: true,
		EstimatedDiameter:      domain.EstimatedDiameter{MinKm: 0.1, MaxKm: 1.0},
		CloseApproaches: []domain.CloseApproach{{
			Date:              "2026-10-17",
			VelocityKmPerHour: 75000,
			MissDistance:      domain.MissDistance{Kilometers: domain.LunarDistanceKm},
		}},
	}
	assessed := domain.AssessedNeo{Neo: rec, Risk: rec.Assess(), AssessedAt: now}

	msg, err := serializeToMessage(assessed)
	require.NoError(t, err)

	assert.Equal(t, []byte("3542519"), msg.Key)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "risk_level", msg.Headers[0].Key)
	assert.Equal(t, []byte("critical"), msg.Headers[0].Value)
	assert.Equal(t, "assessed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)

	var decoded domain.AssessedNeo
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "(2010 PK9)", decoded.Neo.Name)
	require.NotNil(t, decoded.Risk)
	assert.Equal(t, 89, decoded.Risk.Score)
	assert.True(t, now.Equal(decoded.AssessedAt))
}

func TestSerializeToMessage_Unscored(t *testing.T) {
	assessed := domain.AssessedNeo{
		Neo:        domain.NeoRecord{ID: "54016433", Name: "(2020 FB7)"},
		AssessedAt: time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC),
	}

	msg, err := serializeToMessage(assessed)
	require.NoError(t, err)

	assert.Equal(t, []byte("unscored"), msg.Headers[0].Value)
	assert.NotContains(t, string(msg.Value), `"risk"`)
}

func TestNewWriter(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"broker1:9092", "broker2:9092"}, KafkaTopic: "neo-risk-assessments"}
	w := NewWriter(cfg, slog.Default())
	defer w.Close()

	assert.Equal(t, "neo-risk-assessments", w.writer.Topic)
	assert.IsType(t, &kafkago.Hash{}, w.writer.Balancer)
	assert.Equal(t, kafkago.RequireAll, w.writer.RequiredAcks)
}

func TestPublish_EmptyBatchIsNoop(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"127.0.0.1:1"}, KafkaTopic: "unused"}
	w := NewWriter(cfg, slog.Default())
	defer w.Close()

	require.NoError(t, w.Publish(context.Background(), nil))
}
