//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/neo-risk-service/internal/adapter/kafka"
	"github.com/couchcryptid/neo-risk-service/internal/adapter/neows"
	"github.com/couchcryptid/neo-risk-service/internal/config"
	"github.com/couchcryptid/neo-risk-service/internal/domain"
	"github.com/couchcryptid/neo-risk-service/internal/observability"
	"github.com/couchcryptid/neo-risk-service/internal/pipeline"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testTopic = "test-assessments"

// publishedMessage holds a deserialized message read from the assessment topic.
type publishedMessage struct {
	Assessed domain.AssessedNeo
	Key      string
	Headers  map[string]string
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// startKafka runs a single-node Kafka container and returns its broker address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("neo-risk-test"))
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "start kafka container")

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// readPublished reads a single message from the consumer and deserializes it.
func readPublished(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from assessment topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var assessed domain.AssessedNeo
	require.NoError(t, json.Unmarshal(msg.Value, &assessed), "unmarshal assessment message")

	return publishedMessage{Assessed: assessed, Key: string(msg.Key), Headers: headers}
}

// TestRefreshPublishesAssessments runs one refresh cycle against a stub NeoWs
// server serving the recorded feed and verifies the messages on Kafka.
func TestRefreshPublishesAssessments(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2026, time.October, 17, 9, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })

	fixture, err := os.ReadFile(filepath.Join("..", "adapter", "neows", "testdata", "feed.json"))
	require.NoError(t, err)
	neowsSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/feed" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(fixture)
	}))
	t.Cleanup(neowsSrv.Close)

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{
		NeoWsBaseURL:   neowsSrv.URL,
		NeoWsAPIKey:    "DEMO_KEY",
		NeoWsTimeout:   5 * time.Second,
		NeoWsRateLimit: 10,
		NeoWsRateBurst: 10,
		KafkaBrokers:   []string{broker},
		KafkaTopic:     testTopic,
	}
	metrics := observability.NewMetricsForTesting()

	client := neows.NewClient(cfg, metrics, discardLogger())
	repo := neows.NewCachedRepository(client, 16, metrics)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	r := pipeline.New(repo, writer, discardLogger(), metrics, 1, time.Hour)
	require.NoError(t, r.Refresh(ctx))
	require.NoError(t, r.CheckReadiness(ctx))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	received := map[string]publishedMessage{}
	for range 2 {
		pm := readPublished(ctx, t, consumer)
		received[pm.Key] = pm
	}

	pk9, ok := received["3542519"]
	require.True(t, ok, "expected (2010 PK9) on the topic")
	assert.Equal(t, "critical", pk9.Headers["risk_level"])
	assert.Equal(t, "2026-10-17T09:00:00Z", pk9.Headers["assessed_at"])
	require.NotNil(t, pk9.Assessed.Risk)
	assert.Equal(t, 80, pk9.Assessed.Risk.Score)
	assert.Equal(t, "(2010 PK9)", pk9.Assessed.Neo.Name)

	jr5, ok := received["2465633"]
	require.True(t, ok, "expected 465633 (2009 JR5) on the topic")
	assert.Equal(t, "medium", jr5.Headers["risk_level"])

	// Rejected fixture records are never published.
	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err = consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no third message")
}

// TestWriterRoundTrip verifies the publisher against a real broker without the refresher.
func TestWriterRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	writer := kafka.NewWriter(&config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	assessedAt := time.Date(2026, time.October, 18, 0, 0, 0, 0, time.UTC)
	require.NoError(t, writer.Publish(ctx, []domain.AssessedNeo{{
		Neo:        domain.NeoRecord{ID: "54016433", Name: "(2020 FB7)"},
		AssessedAt: assessedAt,
	}}))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-roundtrip-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	pm := readPublished(ctx, t, consumer)
	assert.Equal(t, "54016433", pm.Key)
	assert.Equal(t, "unscored", pm.Headers["risk_level"])
	assert.Nil(t, pm.Assessed.Risk)
	assert.True(t, assessedAt.Equal(pm.Assessed.AssessedAt))
}
