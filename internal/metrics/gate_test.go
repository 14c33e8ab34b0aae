package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/terraincognita07/vitaminpack/internal/gate"
)

func counterValue(t *testing.T, registry *prometheus.Registry, name string, label string, value string) float64 {
	t.Helper()

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, pair := range metric.GetLabel() {
				if pair.GetName() == label && pair.GetValue() == value {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestGateRecorderCountsDecisions(t *testing.T) {
	registry := prometheus.NewRegistry()
	recorder, err := NewGateRecorder(registry)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	recorder.ObserveDecision(gate.PassThrough)
	recorder.ObserveDecision(gate.PassThrough)
	recorder.ObserveDecision(gate.RedirectToOnboarding)

	if got := counterValue(t, registry, "vitaminpack_gate_decisions_total", "action", "pass_through"); got != 2 {
		t.Fatalf("expected 2 pass-through decisions, got %v", got)
	}
	if got := counterValue(t, registry, "vitaminpack_gate_decisions_total", "action", gate.RedirectToOnboarding.String()); got != 1 {
		t.Fatalf("expected 1 onboarding redirect, got %v", got)
	}
}

func TestGateRecorderCountsOnlyFailedDependencies(t *testing.T) {
	registry := prometheus.NewRegistry()
	recorder, err := NewGateRecorder(registry)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	recorder.ObserveDependency(gate.DependencyProfile, 20*time.Millisecond, false)
	recorder.ObserveDependency(gate.DependencyProfile, 300*time.Millisecond, true)
	recorder.ObserveDependency(gate.DependencySession, time.Millisecond, false)

	if got := counterValue(t, registry, "vitaminpack_gate_dependency_failures_total", "dependency", "profile"); got != 1 {
		t.Fatalf("expected 1 profile failure, got %v", got)
	}
	if got := counterValue(t, registry, "vitaminpack_gate_dependency_failures_total", "dependency", "session"); got != 0 {
		t.Fatalf("expected no session failures, got %v", got)
	}
}

func TestNewGateRecorderRejectsDuplicateRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	if _, err := NewGateRecorder(registry); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewGateRecorder(registry); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}
