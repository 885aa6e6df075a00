package tracing

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/lineage/internal/config"
)

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(config.Defaults().Tracing)

	require.False(t, cfg.Enabled, "tracing should be disabled by default")
	require.Equal(t, "file", cfg.Exporter)
	require.Equal(t, config.DefaultTracesFilePath(), cfg.FilePath, "file path falls back to the config dir")
	require.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	require.Equal(t, 1.0, cfg.SampleRate)
	require.Equal(t, DefaultServiceName, cfg.ServiceName)

	custom := config.TracingConfig{Enabled: true, Exporter: "stdout", FilePath: "/tmp/t.jsonl"}
	require.Equal(t, "/tmp/t.jsonl", FromConfig(custom).FilePath)
}

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(Config{Enabled: false})
	require.NoError(t, err, "should not error when disabled")
	require.False(t, provider.Enabled())

	ctx, span := provider.Tracer().Start(context.Background(), "test-span")
	require.NotNil(t, ctx)
	require.False(t, span.SpanContext().IsValid(), "no-op spans carry no context")
	span.End()

	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_FileExporterWritesSpans(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "traces.jsonl")

	provider, err := NewProvider(Config{Enabled: true, Exporter: "file", FilePath: tracePath, SampleRate: 1.0})
	require.NoError(t, err)
	require.True(t, provider.Enabled())

	_, span := provider.Tracer().Start(context.Background(), "git.ListCommits")
	require.True(t, span.SpanContext().IsValid())
	span.End()

	require.NoError(t, provider.Shutdown(context.Background()), "shutdown flushes the batcher")

	f, err := os.Open(tracePath)
	require.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	require.True(t, scanner.Scan(), "expected one span line")
	var rec SpanRecord
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
	require.Equal(t, "git.ListCommits", rec.Name)
	require.Len(t, rec.TraceID, 32)
}

func TestNewProvider_Exporters(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"none", Config{Enabled: true, Exporter: "none"}, ""},
		{"empty exporter", Config{Enabled: true}, ""},
		{"stdout", Config{Enabled: true, Exporter: "stdout"}, ""},
		{"otlp", Config{Enabled: true, Exporter: "otlp", OTLPEndpoint: "localhost:4317"}, ""},
		{"file without path", Config{Enabled: true, Exporter: "file"}, "file_path required"},
		{"unknown", Config{Enabled: true, Exporter: "zipkin"}, "unsupported exporter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProvider(tt.cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.True(t, provider.Enabled())
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_ = provider.Shutdown(ctx)
		})
	}
}
