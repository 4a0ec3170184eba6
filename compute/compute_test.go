package compute

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCreateVM(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/vms" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}

		var req CreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.OSTemplateID != "tpl-1" {
			t.Errorf("expected os template tpl-1, but got %s", req.OSTemplateID)
		}

		json.NewEncoder(w).Encode(VM{ID: "vm-1", Name: req.Name, Status: "PROVISIONING"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "token", time.Second)

	vm, err := c.CreateVM(context.Background(), CreateRequest{Name: "VPS Basic-1", OSTemplateID: "tpl-1"})
	if err != nil {
		t.Fatal(err)
	}
	if vm.ID != "vm-1" {
		t.Errorf("expected id vm-1, but got %s", vm.ID)
	}
	if vm.Status != "PROVISIONING" {
		t.Errorf("expected status PROVISIONING, but got %s", vm.Status)
	}
}

func TestAction(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "token", time.Second)

	if err := c.Action(context.Background(), "vm-1", "restart"); err != nil {
		t.Fatal(err)
	}
	if path != "/v1/vms/vm-1/restart" {
		t.Errorf("unexpected path: %s", path)
	}
}

func TestMetricsRange(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(time.Hour)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("from") != "2024-01-01T00:00:00Z" {
			t.Errorf("unexpected from: %s", q.Get("from"))
		}
		if q.Get("to") != "2024-01-01T01:00:00Z" {
			t.Errorf("unexpected to: %s", q.Get("to"))
		}
		if q.Get("step") != "30" {
			t.Errorf("unexpected step: %s", q.Get("step"))
		}

		json.NewEncoder(w).Encode([]MetricPoint{{Timestamp: from, CPUPercent: 12.5}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "token", time.Second)

	pts, err := c.Metrics(context.Background(), "vm-1", from, to, 30*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if len(pts) != 1 || pts[0].CPUPercent != 12.5 {
		t.Errorf("unexpected points: %+v", pts)
	}
}

func TestComputeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"message": "vm is busy"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "token", time.Second)

	err := c.Action(context.Background(), "vm-1", "stop")
	var ce *Error
	if !errors.As(err, &ce) {
		t.Fatalf("expected *Error, but got %v", err)
	}
	if ce.StatusCode != http.StatusConflict {
		t.Errorf("expected status 409, but got %d", ce.StatusCode)
	}
	if ce.Message != "vm is busy" {
		t.Errorf("expected the hypervisor message, but got %q", ce.Message)
	}
}
