package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/pixil98/go-testutil"
)

func TestRecorder_ObserveSave(t *testing.T) {
	r := NewRecorder(prom.NewRegistry())

	r.ObserveSave("removable", nil)
	r.ObserveSave("removable", nil)
	r.ObserveSave("unremovable", errors.New("disk full"))

	testutil.AssertEqual(t, "removable success", promtest.ToFloat64(r.saves.WithLabelValues("removable", "success")), 2.0)
	testutil.AssertEqual(t, "unremovable failed", promtest.ToFloat64(r.saves.WithLabelValues("unremovable", "failed")), 1.0)
}

func TestRecorder_ObserveCheck(t *testing.T) {
	r := NewRecorder(nil)

	r.ObserveCheck("newer_remote")
	r.ObserveDisplay("show", nil)

	testutil.AssertEqual(t, "checks", promtest.ToFloat64(r.checks.WithLabelValues("newer_remote")), 1.0)
	testutil.AssertEqual(t, "display", promtest.ToFloat64(r.display.WithLabelValues("show", "success")), 1.0)
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	r.ObserveSave("removable", nil)
	r.ObserveCheck("equal")
	r.ObserveDisplay("hide", nil)
}

func TestHandler(t *testing.T) {
	reg := prom.NewRegistry()
	r := NewRecorder(reg)
	r.ObserveSave("removable", nil)

	shown := 4
	err := RegisterGauge(reg, "shown_texts", "Texts currently shown", func() float64 { return float64(shown) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "status", resp.StatusCode, http.StatusOK)
	testutil.AssertEqual(t, "has saves", strings.Contains(string(body), "texter_registry_saves_total"), true)
	testutil.AssertEqual(t, "has gauge", strings.Contains(string(body), "texter_shown_texts 4"), true)
}
