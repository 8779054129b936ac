package telemetry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingExporter struct {
	mu      sync.Mutex
	records []sdklog.Record
}

func (e *recordingExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range records {
		e.records = append(e.records, r.Clone())
	}
	return nil
}

func (e *recordingExporter) Shutdown(context.Context) error   { return nil }
func (e *recordingExporter) ForceFlush(context.Context) error { return nil }

func (e *recordingExporter) all() []sdklog.Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]sdklog.Record(nil), e.records...)
}

func attribute(r sdklog.Record, key string) string {
	var value string
	r.WalkAttributes(func(kv otellog.KeyValue) bool {
		if kv.Key == key {
			value = kv.Value.AsString()
			return false
		}
		return true
	})
	return value
}

func TestBridgeLogs(t *testing.T) {
	exporter := &recordingExporter{}
	p := &Providers{
		logger: zap.NewNop(),
		logs:   sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exporter))),
	}
	core, local := observer.New(zapcore.DebugLevel)

	log := p.BridgeLogs(zap.New(core), "stockflow-test", zapcore.InfoLevel)
	log.Debug("inventory lock acquired")
	log.With(zap.String("report_id", "r-1")).Info("Report settled")

	assert.Equal(t, 2, local.Len())
	records := exporter.all()
	require.Len(t, records, 1)
	assert.Equal(t, "Report settled", records[0].Body().AsString())
	assert.Equal(t, otellog.SeverityInfo, records[0].Severity())
	assert.Equal(t, "r-1", attribute(records[0], "report_id"))

	require.NoError(t, p.Shutdown(context.Background()))
}

func TestBridgeLogs_WithoutProvider(t *testing.T) {
	p, err := Setup(context.Background(), Config{ServiceName: "stockflow-test"}, zap.NewNop())
	require.NoError(t, err)

	log := zap.NewExample()
	assert.Same(t, log, p.BridgeLogs(log, "stockflow-test", zapcore.InfoLevel))
}

func TestSetup_ProfilingNeedsServer(t *testing.T) {
	_, err := Setup(context.Background(), Config{
		ServiceName: "stockflow-test",
		Profiling:   ProfilingConfig{Enabled: true},
	}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server address")
}

func TestPyroscopeLogger(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	l := pyroscopeLogger{zap.New(core).Named("pyroscope").Sugar()}

	l.Debugf("upload %d profiles", 3)
	l.Errorf("upload failed: %s", "timeout")

	entries := recorded.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "upload 3 profiles", entries[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "pyroscope", entries[1].LoggerName)
}
