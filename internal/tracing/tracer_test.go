package tracing

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_DisabledIsNoOp(t *testing.T) {
	p, err := NewProvider(Config{Enabled: false})
	require.NoError(t, err)

	assert.False(t, p.Enabled())
	require.NotNil(t, p.Tracer())

	// Spans from a disabled provider record nothing and never error.
	_, span := p.Tracer().Start(context.Background(), "noop")
	span.End()

	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProvider_FileExporterRequiresPath(t *testing.T) {
	_, err := NewProvider(Config{Enabled: true, Exporter: "file"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file_path")
}

func TestNewProvider_UnknownExporter(t *testing.T) {
	_, err := NewProvider(Config{Enabled: true, Exporter: "carrier-pigeon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported exporter")
}

func TestNewProvider_NoneExporter(t *testing.T) {
	p, err := NewProvider(Config{Enabled: true, Exporter: "none", SampleRate: 1.0})
	require.NoError(t, err)
	assert.True(t, p.Enabled())

	_, span := p.Tracer().Start(context.Background(), "internal-only")
	span.End()

	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProvider_FileExporterWritesSpans(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces", "traces.jsonl")

	p, err := NewProvider(Config{
		Enabled:    true,
		Exporter:   "file",
		FilePath:   path,
		SampleRate: 1.0,
	})
	require.NoError(t, err)

	_, span := p.Tracer().Start(context.Background(), "test.operation")
	span.End()

	// Shutdown flushes the batch processor.
	require.NoError(t, p.Shutdown(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.NotEmpty(t, lines)

	var record SpanRecord
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &record))
	assert.Equal(t, "test.operation", record.Name)
	assert.NotEmpty(t, record.TraceID)
	assert.NotEmpty(t, record.SpanID)
}

func TestFileExporter_CreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "out.jsonl")

	e, err := NewFileExporter(path)
	require.NoError(t, err)
	require.NoError(t, e.Shutdown(context.Background()))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestFileExporter_ShutdownIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	e, err := NewFileExporter(path)
	require.NoError(t, err)

	require.NoError(t, e.Shutdown(context.Background()))
	assert.NoError(t, e.Shutdown(context.Background()))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(DefaultConfig()))

	err := Validate(Config{SampleRate: -0.1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sample_rate")

	err = Validate(Config{Exporter: "otlp"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exporter")

	err = Validate(Config{Enabled: true, Exporter: "file"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file_path")

	assert.NoError(t, Validate(Config{Enabled: true, Exporter: "stdout", SampleRate: 0.5}))
}
