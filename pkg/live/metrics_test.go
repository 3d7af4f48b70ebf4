package live

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/loomui-dev/loom/pkg/loom"
)

func TestMetricsRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.SessionsActive.Inc()
	m.EventsTotal.Inc()
	m.TurnsTotal.Inc()
	m.PatchesTotal.Add(3)
	m.PatchBytesTotal.Add(128)
	m.FlushDuration.Observe(0.002)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	want := map[string]bool{
		"loom_sessions_active":        false,
		"loom_events_total":           false,
		"loom_turns_total":            false,
		"loom_patches_total":          false,
		"loom_patch_bytes_total":      false,
		"loom_flush_duration_seconds": false,
		"loom_cells_observed":         false,
	}
	for _, mf := range families {
		if _, ok := want[mf.GetName()]; ok {
			want[mf.GetName()] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("metric %s not registered", name)
		}
	}
}

func TestCellsObservedGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	c := loom.New(0)
	release := loom.Observe(c, "cell", "test counter")
	defer release()

	ch := make(chan prometheus.Metric, 1)
	m.CellsObserved.Collect(ch)
	var pb dto.Metric
	metric := <-ch
	if err := metric.Write(&pb); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if pb.GetGauge().GetValue() < 1 {
		t.Errorf("cells observed = %v, want >= 1", pb.GetGauge().GetValue())
	}
}
