package mqadmin

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// APIError is a non-2xx response from the admin REST API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mqadmin: API returned %d: %s", e.StatusCode, e.Body)
}

// Unauthorized reports whether the response indicates a credential problem.
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// restClient implements Client against the IBM MQ REST API v2.
type restClient struct {
	cfg  Config
	http *http.Client
}

func newRESTClient(cfg Config) *restClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	transport := &http.Transport{}
	if cfg.Insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &restClient{
		cfg: cfg,
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (c *restClient) Close() {
	c.http.CloseIdleConnections()
}

// ManagerState fetches the queue manager's state attribute.
func (c *restClient) ManagerState(ctx context.Context) (string, error) {
	var out struct {
		Qmgr []struct {
			Name  string `json:"name"`
			State string `json:"state"`
		} `json:"qmgr"`
	}
	path := fmt.Sprintf("/qmgr/%s?attributes=state", c.cfg.QueueManager)
	if err := c.getJSON(ctx, path, &out); err != nil {
		return "", err
	}
	if len(out.Qmgr) == 0 {
		return "", fmt.Errorf("mqadmin: queue manager %q not found", c.cfg.QueueManager)
	}
	return out.Qmgr[0].State, nil
}

// wireQueue is the admin API's queue representation. Transmission queues are
// reported as local queues with usage "transmission".
type wireQueue struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Usage   string `json:"usage"`
	General struct {
		Description string `json:"description"`
		InhibitPut  bool   `json:"inhibitPut"`
		InhibitGet  bool   `json:"inhibitGet"`
	} `json:"general"`
	Storage struct {
		MaximumDepth         int `json:"maximumDepth"`
		MaximumMessageLength int `json:"maximumMessageLength"`
	} `json:"storage"`
	Timestamps struct {
		Created string `json:"created"`
		Altered string `json:"altered"`
	} `json:"timestamps"`
	Status struct {
		CurrentDepth int `json:"currentDepth"`
	} `json:"status"`
}

// ListQueues fetches all queues with their definition and live status.
func (c *restClient) ListQueues(ctx context.Context) ([]QueueSnapshot, error) {
	var out struct {
		Queue []wireQueue `json:"queue"`
	}
	path := fmt.Sprintf(
		"/qmgr/%s/queue?type=all&attributes=general,storage,timestamps&status=status.currentDepth",
		c.cfg.QueueManager)
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}

	snapshots := make([]QueueSnapshot, 0, len(out.Queue))
	for _, q := range out.Queue {
		snapshots = append(snapshots, toQueueSnapshot(q))
	}
	return snapshots, nil
}

// toQueueSnapshot maps a wire queue to a snapshot, deriving the occupancy
// fraction since the admin API does not compute it.
func toQueueSnapshot(q wireQueue) QueueSnapshot {
	s := QueueSnapshot{
		Name:             q.Name,
		Type:             queueType(q.Type, q.Usage),
		Description:      q.General.Description,
		CurrentDepth:     q.Status.CurrentDepth,
		MaxDepth:         q.Storage.MaximumDepth,
		MaxMessageLength: q.Storage.MaximumMessageLength,
		InhibitPut:       q.General.InhibitPut,
		InhibitGet:       q.General.InhibitGet,
		TimeCreated:      q.Timestamps.Created,
		TimeAltered:      q.Timestamps.Altered,
	}
	if s.MaxDepth > 0 {
		s.Threshold = float64(s.CurrentDepth) / float64(s.MaxDepth)
	}
	return s
}

func queueType(wireType, usage string) QueueType {
	switch strings.ToLower(wireType) {
	case "local":
		if strings.EqualFold(usage, "transmission") {
			return QueueTransmission
		}
		return QueueLocal
	case "remote":
		return QueueRemote
	case "alias":
		return QueueAlias
	default:
		return QueueType(wireType)
	}
}

// ListChannels fetches all channel definitions.
func (c *restClient) ListChannels(ctx context.Context) ([]ChannelSnapshot, error) {
	var out struct {
		Channel []struct {
			Name   string `json:"name"`
			Type   string `json:"type"`
			Sender struct {
				ConnectionName        string `json:"connectionName"`
				TransmissionQueueName string `json:"transmissionQueueName"`
			} `json:"sender"`
		} `json:"channel"`
	}
	path := fmt.Sprintf("/qmgr/%s/channel", c.cfg.QueueManager)
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}

	snapshots := make([]ChannelSnapshot, 0, len(out.Channel))
	for _, ch := range out.Channel {
		snapshots = append(snapshots, ChannelSnapshot{
			Name:              ch.Name,
			Type:              ch.Type,
			ConnectionName:    ch.Sender.ConnectionName,
			TransmissionQueue: ch.Sender.TransmissionQueueName,
		})
	}
	return snapshots, nil
}

// ListApplications lists connected applications via the MQSC DISPLAY CONN
// command, which is the only admin API surface that exposes them.
func (c *restClient) ListApplications(ctx context.Context) ([]ApplicationSnapshot, error) {
	cmd := map[string]any{
		"type":               "runCommandJSON",
		"command":            "DISPLAY",
		"qualifier":          "CONN",
		"name":               "*",
		"responseParameters": []string{"APPLTAG", "CONNAME", "CHANNEL"},
	}
	var out struct {
		CommandResponse []struct {
			Parameters struct {
				Conn    string `json:"conn"`
				Appltag string `json:"appltag"`
				Conname string `json:"conname"`
				Channel string `json:"channel"`
			} `json:"parameters"`
		} `json:"commandResponse"`
	}
	path := fmt.Sprintf("/action/qmgr/%s/mqsc", c.cfg.QueueManager)
	if err := c.postJSON(ctx, path, cmd, &out); err != nil {
		return nil, err
	}

	snapshots := make([]ApplicationSnapshot, 0, len(out.CommandResponse))
	for _, r := range out.CommandResponse {
		if r.Parameters.Appltag == "" {
			continue
		}
		snapshots = append(snapshots, ApplicationSnapshot{
			Name:           r.Parameters.Appltag,
			ConnectionID:   r.Parameters.Conn,
			ConnectionName: r.Parameters.Conname,
			Channel:        r.Parameters.Channel,
		})
	}
	return snapshots, nil
}

func (c *restClient) getJSON(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

func (c *restClient) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("mqadmin: encode request: %w", err)
	}
	return c.doJSON(ctx, http.MethodPost, path, bytes.NewReader(payload), out)
}

func (c *restClient) doJSON(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("mqadmin: build request: %w", err)
	}
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	// The admin API rejects state-changing requests without this header.
	req.Header.Set("ibm-mq-rest-csrf-token", "sentinel")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("mqadmin: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("mqadmin: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("mqadmin: decode response: %w", err)
	}
	return nil
}
