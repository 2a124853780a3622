package controllerengine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/mnedge/emulator/internal/model"
)

// httpEmulatorClient implements EmulatorClient against a running Emulator's
// control-plane API, reusing the shared internal/httpclient transport.
type httpEmulatorClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPEmulatorClient builds an EmulatorClient that talks to the Emulator
// at baseURL (e.g. "http://localhost:8080") over client.
func NewHTTPEmulatorClient(baseURL string, client *http.Client) EmulatorClient {
	return &httpEmulatorClient{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (c *httpEmulatorClient) EdgeDataCenters(ctx context.Context) ([]model.EDC, error) {
	var out []model.EDC
	if err := c.getJSON(ctx, "/network/edge_data_centers", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *httpEmulatorClient) Applications(ctx context.Context, edcID uint32) ([]model.Application, error) {
	var out []model.Application
	path := fmt.Sprintf("/network/edge_data_centers/%d/applications", edcID)
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *httpEmulatorClient) Events(ctx context.Context) ([]model.Event, error) {
	var out []model.Event
	if err := c.getJSON(ctx, "/mobile_network_exposure/events", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *httpEmulatorClient) AddApplication(ctx context.Context, edcID, appID uint32) error {
	path := fmt.Sprintf("/network/edge_data_centers/%d/applications/%d", edcID, appID)
	return c.do(ctx, http.MethodPost, path)
}

func (c *httpEmulatorClient) RemoveApplication(ctx context.Context, edcID, appID uint32) error {
	path := fmt.Sprintf("/network/edge_data_centers/%d/applications/%d", edcID, appID)
	return c.do(ctx, http.MethodDelete, path)
}

func (c *httpEmulatorClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("controllerengine: build request %s: %w", path, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("controllerengine: GET %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("controllerengine: GET %s: status %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("controllerengine: decode %s: %w", path, err)
	}
	return nil
}

func (c *httpEmulatorClient) do(ctx context.Context, method, path string) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("controllerengine: build request %s %s: %w", method, path, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("controllerengine: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("controllerengine: %s %s: status %s", method, path, resp.Status)
	}
	return nil
}
