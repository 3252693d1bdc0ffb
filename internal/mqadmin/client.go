// Package mqadmin provides a client for the IBM MQ administrative REST API.
package mqadmin

import (
	"context"
	"fmt"
	"time"
)

// DefaultRequestTimeout bounds individual admin API requests.
const DefaultRequestTimeout = 10 * time.Second

// StateRunning is the qmgr state reported by the admin API when the queue
// manager is available for work.
const StateRunning = "running"

// Config holds everything needed to reach one queue manager's admin endpoint.
type Config struct {
	BaseURL      string // e.g. "https://host:9443/ibmmq/rest/v2/admin"
	QueueManager string
	Username     string
	Password     string
	Insecure     bool          // skip TLS verification (dev appliances use self-signed certs)
	Timeout      time.Duration // per-request; defaults to DefaultRequestTimeout
}

// Client is the administrative view of a single queue manager.
type Client interface {
	// ManagerState returns the queue manager's reported state, e.g. "running".
	ManagerState(ctx context.Context) (string, error)

	// ListQueues returns snapshots of all queues on the manager.
	ListQueues(ctx context.Context) ([]QueueSnapshot, error)

	// ListChannels returns snapshots of all channels on the manager.
	ListChannels(ctx context.Context) ([]ChannelSnapshot, error)

	// ListApplications returns snapshots of applications currently connected.
	ListApplications(ctx context.Context) ([]ApplicationSnapshot, error)

	// Close releases the client's connections.
	Close()
}

// Connector opens a Client for the given config, verifying reachability and
// credentials with a single probe request. Injected so tests and the session
// orchestrator can substitute fakes.
type Connector func(ctx context.Context, cfg Config) (Client, error)

// Connect is the default Connector backed by the REST client.
func Connect(ctx context.Context, cfg Config) (Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("mqadmin: base URL is required")
	}
	if cfg.QueueManager == "" {
		return nil, fmt.Errorf("mqadmin: queue manager name is required")
	}

	c := newRESTClient(cfg)

	// Probe: a state fetch exercises network, TLS and credentials in one round trip.
	if _, err := c.ManagerState(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}
