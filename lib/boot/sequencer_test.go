package boot

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/microkern/bootpack/lib/payload"
	"github.com/microkern/bootpack/lib/registry"
)

type fakeLoader struct {
	requests []Request
	failOn   string
}

func (f *fakeLoader) CreateProcess(ctx context.Context, req Request) error {
	f.requests = append(f.requests, req)
	if f.failOn != "" && req.Name == f.failOn {
		return errors.New("spawn rejected")
	}
	return nil
}

type app struct {
	name string
	size int
}

func newTestRegistry(t *testing.T, apps []app) *registry.Registry {
	t.Helper()
	w := payload.NewWriter()
	for i, a := range apps {
		img := make([]byte, a.size)
		for j := range img {
			img[j] = byte(i + j%97)
		}
		require.NoError(t, w.Add(a.name, img))
	}
	r, err := registry.FromBytes(w.Bytes())
	require.NoError(t, err)
	return r
}

func TestSequencerRunsInOrder(t *testing.T) {
	reg := newTestRegistry(t, []app{
		{"init", 4096},
		{"shell", 8192},
		{"daemon", 128},
	})
	loader := &fakeLoader{}
	seq := NewSequencer(reg, loader)

	require.Equal(t, PhasePending, seq.Phase())
	require.NoError(t, seq.Run(context.Background()))
	require.Equal(t, PhaseComplete, seq.Phase())
	require.Equal(t, 3, seq.Submitted())

	require.Len(t, loader.requests, 3)
	seen := map[string]struct{}{}
	for i, want := range []string{"init", "shell", "daemon"} {
		req := loader.requests[i]
		require.Equal(t, i, req.Index)
		require.Equal(t, want, req.Name)
		require.NotEmpty(t, req.ID)
		seen[req.ID] = struct{}{}

		img, err := reg.ImageAt(i)
		require.NoError(t, err)
		require.True(t, bytes.Equal(img.Bytes, req.Image.Bytes))
	}
	require.Len(t, seen, 3, "request ids must be unique")
}

func TestSequencerStopsOnFirstFailure(t *testing.T) {
	reg := newTestRegistry(t, []app{
		{"init", 64},
		{"shell", 64},
		{"daemon", 64},
	})
	loader := &fakeLoader{failOn: "shell"}
	seq := NewSequencer(reg, loader)

	err := seq.Run(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), `create process "shell"`)

	// init was submitted, shell failed, daemon was never attempted.
	require.Len(t, loader.requests, 2)
	require.Equal(t, 1, seq.Submitted())
	require.Equal(t, PhaseFailed, seq.Phase())
}

func TestSequencerSingleShot(t *testing.T) {
	t.Run("after success", func(t *testing.T) {
		reg := newTestRegistry(t, []app{{"init", 64}})
		seq := NewSequencer(reg, &fakeLoader{})

		require.NoError(t, seq.Run(context.Background()))
		err := seq.Run(context.Background())
		require.ErrorIs(t, err, ErrAlreadyRun)
	})

	t.Run("after failure", func(t *testing.T) {
		reg := newTestRegistry(t, []app{{"init", 64}})
		seq := NewSequencer(reg, &fakeLoader{failOn: "init"})

		require.Error(t, seq.Run(context.Background()))
		err := seq.Run(context.Background())
		require.ErrorIs(t, err, ErrAlreadyRun)
	})
}

func TestSequencerEmptyRegistry(t *testing.T) {
	reg := newTestRegistry(t, nil)
	loader := &fakeLoader{}
	seq := NewSequencer(reg, loader)

	require.NoError(t, seq.Run(context.Background()))
	require.Equal(t, PhaseComplete, seq.Phase())
	require.Equal(t, 0, seq.Submitted())
	require.Empty(t, loader.requests)
}

func TestSequencerContextCanceled(t *testing.T) {
	reg := newTestRegistry(t, []app{{"init", 64}})
	loader := &fakeLoader{}
	seq := NewSequencer(reg, loader)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := seq.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, PhaseFailed, seq.Phase())
	require.Empty(t, loader.requests)
}

func TestSequencerMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(provider.Meter("test"))
	require.NoError(t, err)
	SetMetrics(m)
	t.Cleanup(func() { SetMetrics(nil) })

	reg := newTestRegistry(t, []app{
		{"init", 64},
		{"shell", 64},
	})
	seq := NewSequencer(reg, &fakeLoader{})
	require.NoError(t, seq.Run(context.Background()))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, metricRecord := range sm.Metrics {
			if metricRecord.Name != "bootpack_bootstrap_processes_total" {
				continue
			}
			sum, ok := metricRecord.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	require.Equal(t, int64(2), total)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.RecordProcess(context.Background(), "init", nil)
	m.RecordSequence(context.Background(), time.Now(), 0, nil)

	built, err := NewMetrics(nil)
	require.NoError(t, err)
	require.Nil(t, built)
}
