package telemetry

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"libranet/internal/config"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())

	logger.Info("hidden")
	logger.WithField("item_id", 1).Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"item_id":1`)
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}

func TestNewLoggerBadLevel(t *testing.T) {
	_, err := NewLogger(config.LogConfig{Level: "loud", Format: "text"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestSetupWithoutEndpoint(t *testing.T) {
	logger, _ := test.NewNullLogger()
	before := otel.GetTracerProvider()

	shutdown, err := Setup(context.Background(), config.TelemetryConfig{ServiceName: "libranet"}, logger)
	require.NoError(t, err)
	assert.Equal(t, before, otel.GetTracerProvider())
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupWithEndpoint(t *testing.T) {
	var posts atomic.Int32
	collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posts.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer collector.Close()

	logger, hook := test.NewNullLogger()
	tracerBefore := otel.GetTracerProvider()
	meterBefore := otel.GetMeterProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(tracerBefore)
		otel.SetMeterProvider(meterBefore)
	})

	shutdown, err := Setup(context.Background(), config.TelemetryConfig{
		ServiceName:  "libranet",
		OTLPEndpoint: strings.TrimPrefix(collector.URL, "http://"),
		Insecure:     true,
	}, logger)
	require.NoError(t, err)
	assert.NotEqual(t, tracerBefore, otel.GetTracerProvider())
	assert.NotEqual(t, meterBefore, otel.GetMeterProvider())
	assert.Equal(t, "telemetry enabled", hook.LastEntry().Message)

	counter, err := otel.Meter("libranet/test").Int64Counter("libranet.test.count")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, shutdown(ctx))
	assert.Positive(t, posts.Load(), "metrics are flushed to the collector on shutdown")
}
