package xpool

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/omeyang/xtpool/pkg/observability/xmetrics"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					out[m.Name] += dp.Value
				}
			case metricdata.Gauge[int64]:
				for _, dp := range data.DataPoints {
					out[m.Name] = dp.Value
				}
			}
		}
	}
	return out
}

func TestPool_MeterProvider(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	conns := newConns(t, 1)
	held, err := conns.Acquire(context.Background())
	require.NoError(t, err)

	p := newTestPool(t, ModeProactor, conns, WithWorkers(1), WithMaxRequests(2), WithMeterProvider(mp))

	require.NoError(t, p.Submit(&fakeTask{}))
	require.Eventually(t, func() bool { return p.Stats().Dispatched == 1 }, time.Second, time.Millisecond)
	require.NoError(t, p.Submit(&fakeTask{}))
	require.NoError(t, p.Submit(&fakeTask{}))
	assert.ErrorIs(t, p.Submit(&fakeTask{}), ErrQueueFull)

	got := collect(t, reader)
	assert.Equal(t, int64(3), got[metricSubmitted])
	assert.Equal(t, int64(1), got[metricRejected])
	assert.Equal(t, int64(2), got[metricQueueDepth])

	conns.Release(held)
}

func TestPool_ObserverSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	obs, err := xmetrics.NewOTelObserver(xmetrics.WithTracerProvider(tp))
	require.NoError(t, err)

	p := newTestPool(t, ModeReactor, newConns(t, 1), WithWorkers(1), WithObserver(obs))

	ok := &fakeTask{readOK: true}
	require.NoError(t, p.Submit(ok))
	require.Eventually(t, func() bool { return ok.processed.Load() == 1 }, time.Second, time.Millisecond)

	failed := &fakeTask{writeOK: false}
	require.NoError(t, p.SubmitState(failed, PhaseWrite))
	<-failed.Improvements()

	require.Eventually(t, func() bool { return len(exporter.GetSpans()) == 2 }, time.Second, time.Millisecond)
	spans := exporter.GetSpans()
	assert.Equal(t, opReactorRead, spans[0].Name)
	assert.Equal(t, opReactorWrite, spans[1].Name)
	assert.Equal(t, errIOFailed.Error(), spans[1].Status.Description)
}
