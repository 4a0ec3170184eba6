// Package compute is the client for the hypervisor management layer.
// Provisioning, lifecycle and console sessions all happen on the other
// side of this HTTP contract; the storefront only orchestrates.
package compute

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// VM is the hypervisor's record of an instance.
type VM struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	VNCPort   int       `json:"vnc_port"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateRequest describes the instance to provision.
type CreateRequest struct {
	Name         string `json:"name"`
	OSTemplateID string `json:"os_template_id"`
	CPU          int    `json:"cpu,omitempty"`
	MemoryMB     int    `json:"memory_mb,omitempty"`
	DiskGB       int    `json:"disk_gb,omitempty"`
}

// Hardware is the instance's allocated resources.
type Hardware struct {
	CPU       int    `json:"cpu"`
	MemoryMB  int    `json:"memory_mb"`
	DiskGB    int    `json:"disk_gb"`
	IPAddress string `json:"ip_address"`
	MAC       string `json:"mac"`
}

// LiveStats is one sample of cumulative counters. Rates are derived
// from two consecutive samples, not reported by the hypervisor.
type LiveStats struct {
	Timestamp      time.Time `json:"timestamp"`
	CPUTimeNS      int64     `json:"cpu_time_ns"`
	MemoryUsedKB   int64     `json:"memory_used_kb"`
	MemoryTotalKB  int64     `json:"memory_total_kb"`
	NetRxBytes     int64     `json:"net_rx_bytes"`
	NetTxBytes     int64     `json:"net_tx_bytes"`
	DiskReadBytes  int64     `json:"disk_read_bytes"`
	DiskWriteBytes int64     `json:"disk_write_bytes"`
}

// MetricPoint is one point of the historical series.
type MetricPoint struct {
	Timestamp  time.Time `json:"timestamp"`
	CPUPercent float64   `json:"cpu_percent"`
	MemoryPct  float64   `json:"memory_percent"`
	NetRxRate  float64   `json:"net_rx_rate"`
	NetTxRate  float64   `json:"net_tx_rate"`
}

// ConsoleSession carries the one-shot WebSocket URL for the remote
// framebuffer.
type ConsoleSession struct {
	WSURL     string    `json:"ws_url"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Error wraps a non-2xx hypervisor response, keeping its message for
// the user when it has one.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("compute: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("compute: unexpected status %d", e.StatusCode)
}

type Client struct {
	baseURL string
	token   string
	hc      *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		hc:      &http.Client{Timeout: timeout},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("calling compute: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		var e struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(res.Body).Decode(&e)
		return &Error{StatusCode: res.StatusCode, Message: e.Message}
	}

	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding compute response: %w", err)
		}
	}

	return nil
}

func (c *Client) CreateVM(ctx context.Context, req CreateRequest) (VM, error) {
	var vm VM
	if err := c.do(ctx, http.MethodPost, "/v1/vms", req, &vm); err != nil {
		return VM{}, err
	}
	return vm, nil
}

func (c *Client) VM(ctx context.Context, id string) (VM, error) {
	var vm VM
	if err := c.do(ctx, http.MethodGet, "/v1/vms/"+id, nil, &vm); err != nil {
		return VM{}, err
	}
	return vm, nil
}

// Action triggers a lifecycle transition: start, stop, restart or
// suspend.
func (c *Client) Action(ctx context.Context, id, action string) error {
	return c.do(ctx, http.MethodPost, "/v1/vms/"+id+"/"+action, nil, nil)
}

func (c *Client) Hardware(ctx context.Context, id string) (Hardware, error) {
	var hw Hardware
	if err := c.do(ctx, http.MethodGet, "/v1/vms/"+id+"/hardware", nil, &hw); err != nil {
		return Hardware{}, err
	}
	return hw, nil
}

func (c *Client) LiveStats(ctx context.Context, id string) (LiveStats, error) {
	var st LiveStats
	if err := c.do(ctx, http.MethodGet, "/v1/vms/"+id+"/live-stats", nil, &st); err != nil {
		return LiveStats{}, err
	}
	return st, nil
}

func (c *Client) Metrics(ctx context.Context, id string, from, to time.Time, step time.Duration) ([]MetricPoint, error) {
	q := url.Values{}
	q.Set("from", from.UTC().Format(time.RFC3339))
	q.Set("to", to.UTC().Format(time.RFC3339))
	q.Set("step", strconv.Itoa(int(step.Seconds())))

	var pts []MetricPoint
	if err := c.do(ctx, http.MethodGet, "/v1/vms/"+id+"/metrics?"+q.Encode(), nil, &pts); err != nil {
		return nil, err
	}
	return pts, nil
}

func (c *Client) ConsoleSession(ctx context.Context, id string) (ConsoleSession, error) {
	var cs ConsoleSession
	if err := c.do(ctx, http.MethodPost, "/v1/vms/"+id+"/console", nil, &cs); err != nil {
		return ConsoleSession{}, err
	}
	return cs, nil
}

func (c *Client) ConfigureSSH(ctx context.Context, id, publicKey string) error {
	body := struct {
		PublicKey string `json:"public_key"`
	}{PublicKey: publicKey}

	return c.do(ctx, http.MethodPost, "/v1/vms/"+id+"/configure-ssh", body, nil)
}
