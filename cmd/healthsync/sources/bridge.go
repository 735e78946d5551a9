package sources

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/lifepulse-app/lifepulse/pkg/datamodel"
	"go.uber.org/zap"
)

// DeviceBridge implements the three capability interfaces over the REST API
// of the on-device agent. The agent answers 403 for permission denials and
// 501 for capabilities the device does not have; both map onto the sentinel
// errors so adapters degrade instead of failing.
type DeviceBridge struct {
	baseURL string
	client  *http.Client
}

// NewDeviceBridge returns a bridge for the agent at baseURL.
func NewDeviceBridge(baseURL string) *DeviceBridge {
	return &DeviceBridge{
		baseURL: baseURL,
		client: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   30 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:    100,
				IdleConnTimeout: 10 * time.Second,
			},
		},
	}
}

func (b *DeviceBridge) IsAvailable(ctx context.Context) bool {
	var status struct {
		Available bool `json:"available"`
	}
	if err := b.getJSON(ctx, "/v1/health/availability", nil, &status); err != nil {
		zap.S().Debugf("Health availability check failed: %s", err)
		return false
	}
	return status.Available
}

func (b *DeviceBridge) RequestAuthorization(ctx context.Context, kinds []datamodel.MetricKind) error {
	body, err := json.Marshal(map[string][]datamodel.MetricKind{"kinds": kinds})
	if err != nil {
		return err
	}
	return b.post(ctx, "/v1/health/authorize", body)
}

func (b *DeviceBridge) FetchSamples(ctx context.Context, kind datamodel.MetricKind, r datamodel.TimeRange) ([]HealthSample, error) {
	q := url.Values{}
	q.Set("kind", string(kind))
	q.Set("start", r.Start.Format(time.RFC3339))
	q.Set("end", r.End.Format(time.RFC3339))

	var rows []HealthSample
	if err := b.getJSON(ctx, "/v1/health/samples", q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (b *DeviceBridge) RequestPermission(ctx context.Context) (bool, error) {
	err := b.post(ctx, "/v1/calendar/authorize", nil)
	if errors.Is(err, ErrPermissionDenied) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (b *DeviceBridge) ListEvents(ctx context.Context, calendarIDs []string, r datamodel.TimeRange) ([]CalendarEventRow, error) {
	q := url.Values{}
	q.Set("start", r.Start.Format(time.RFC3339))
	q.Set("end", r.End.Format(time.RFC3339))
	for _, id := range calendarIDs {
		q.Add("calendarId", id)
	}

	var rows []CalendarEventRow
	if err := b.getJSON(ctx, "/v1/calendar/events", q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// MotionAvailable reports whether the agent exposes a gyroscope.
func (b *DeviceBridge) MotionAvailable(ctx context.Context) bool {
	var status struct {
		Available bool `json:"available"`
	}
	if err := b.getJSON(ctx, "/v1/motion/availability", nil, &status); err != nil {
		return false
	}
	return status.Available
}

// LatestGyroReading fetches the most recent gyroscope reading from the agent.
func (b *DeviceBridge) LatestGyroReading(ctx context.Context) (GyroReading, error) {
	var reading GyroReading
	if err := b.getJSON(ctx, "/v1/motion/gyroscope/latest", nil, &reading); err != nil {
		return GyroReading{}, err
	}
	return reading, nil
}

func (b *DeviceBridge) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	u := b.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, out)
}

func (b *DeviceBridge) post(ctx context.Context, path string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return checkStatus(resp)
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusForbidden:
		return ErrPermissionDenied
	case resp.StatusCode == http.StatusNotImplemented, resp.StatusCode == http.StatusNotFound:
		return ErrUnavailable
	case resp.StatusCode >= 300:
		return fmt.Errorf("device agent returned %s", resp.Status)
	}
	return nil
}

// BridgeMotionStore adapts the bridge's pull-style gyroscope endpoint onto
// the subscription contract by polling in a background goroutine.
type BridgeMotionStore struct {
	bridge *DeviceBridge
}

// NewBridgeMotionStore returns a MotionStore backed by the device agent.
func NewBridgeMotionStore(bridge *DeviceBridge) *BridgeMotionStore {
	return &BridgeMotionStore{bridge: bridge}
}

func (s *BridgeMotionStore) IsAvailable(ctx context.Context) bool {
	return s.bridge.MotionAvailable(ctx)
}

func (s *BridgeMotionStore) Subscribe(ctx context.Context, interval time.Duration, fn func(GyroReading)) (func(), error) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				reading, err := s.bridge.LatestGyroReading(ctx)
				if err != nil {
					zap.S().Debugf("Gyroscope poll failed: %s", err)
					continue
				}
				fn(reading)
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }, nil
}
