package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lumina-devices/luminad/pkg/api"
)

// Client wraps the luminad HTTP API for easy CLI usage
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a new luminad client
func NewClient(addr string) *Client {
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	return &Client{
		baseURL: strings.TrimRight(addr, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// SyncRoutines bulk-replaces the routine set and returns the accepted count
func (c *Client) SyncRoutines(routines []api.SyncRoutine) (int, error) {
	resp, err := c.post("/api/routines/sync", api.SyncRequest{Routines: routines})
	if err != nil {
		return 0, err
	}

	var data api.SyncData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return 0, fmt.Errorf("failed to decode sync response: %w", err)
	}
	return data.RoutineCount, nil
}

// ListRoutines lists the stored routines
func (c *Client) ListRoutines() ([]api.ListRoutine, error) {
	resp, err := c.get("/api/routines")
	if err != nil {
		return nil, err
	}

	var data api.ListData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to decode routine list: %w", err)
	}
	return data.Routines, nil
}

// SetTime sets the device wall clock from a unix-seconds timestamp
func (c *Client) SetTime(timestamp int64) error {
	_, err := c.post("/api/time", api.TimeRequest{Timestamp: timestamp})
	return err
}

// GetDevice returns the device status snapshot
func (c *Client) GetDevice() (*api.DeviceData, error) {
	resp, err := c.get("/api/device")
	if err != nil {
		return nil, err
	}

	var data api.DeviceData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to decode device status: %w", err)
	}
	return &data, nil
}

// SetPower sets the device power state
func (c *Client) SetPower(on bool) error {
	_, err := c.post("/api/device/power", api.PowerRequest{On: on})
	return err
}

// SetChannels sets the channel intensities
func (c *Client) SetChannels(channels []int) error {
	_, err := c.post("/api/device/channels", api.ChannelsRequest{Channels: channels})
	return err
}

// envelope mirrors the server's response envelope with the payload left
// raw so each method can decode its own shape.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) get(path string) (*envelope, error) {
	resp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("failed to reach device: %w", err)
	}
	return decodeEnvelope(resp)
}

func (c *Client) post(path string, body interface{}) (*envelope, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Post(c.baseURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to reach device: %w", err)
	}
	return decodeEnvelope(resp)
}

func decodeEnvelope(resp *http.Response) (*envelope, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("unexpected response (status %d): %s", resp.StatusCode, body)
	}
	if !env.Success {
		return nil, fmt.Errorf("device rejected request: %s", env.Message)
	}
	return &env, nil
}
