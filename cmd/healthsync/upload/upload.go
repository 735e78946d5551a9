package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/lifepulse-app/lifepulse/pkg/datamodel"
	"go.uber.org/zap"
)

// savePath is the backend endpoint accepting one batch of hourly records.
const savePath = "/health-data/save"

// payload is the request body the backend expects.
type payload struct {
	UID  string                   `json:"uid"`
	Data []datamodel.HourlyRecord `json:"data"`
}

// Client ships finished record batches to the backend. A batch is sent in
// one request; there is no retry, the next scheduled run covers the same
// window again.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient returns a Client for the backend at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
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

// Save posts the records for the given user. An empty batch is still sent;
// the backend treats it as a heartbeat.
func (c *Client) Save(ctx context.Context, uid string, records []datamodel.HourlyRecord) error {
	if records == nil {
		records = []datamodel.HourlyRecord{}
	}
	body, err := json.Marshal(payload{UID: uid, Data: records})
	if err != nil {
		return fmt.Errorf("encoding record batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+savePath, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting record batch: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("backend rejected record batch: %s", resp.Status)
	}
	zap.S().Debugf("Uploaded %d records for %s", len(records), uid)
	return nil
}
