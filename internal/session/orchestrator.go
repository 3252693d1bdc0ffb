package session

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/zulandar/mqsentinel/internal/issues"
	"github.com/zulandar/mqsentinel/internal/listener"
	"github.com/zulandar/mqsentinel/internal/monitor"
	"github.com/zulandar/mqsentinel/internal/mqadmin"
	"github.com/zulandar/mqsentinel/internal/store"
)

// DefaultHandshakeTimeout bounds how long a login waits for the listener's
// startup confirmation.
const DefaultHandshakeTimeout = 30 * time.Second

// defaultObjectCacheTTL bounds how stale a served queue/channel/application
// snapshot may be.
const defaultObjectCacheTTL = 10 * time.Second

// Opts holds parameters for creating an Orchestrator.
type Opts struct {
	Connector        mqadmin.Connector    // defaults to mqadmin.Connect
	Supervisor       *listener.Supervisor // required
	DefaultThreshold float64              // occupancy default for unmanaged queues
	HandshakeTimeout time.Duration        // defaults to DefaultHandshakeTimeout
	ObjectCacheTTL   time.Duration        // defaults to defaultObjectCacheTTL
	ResolutionTTL    time.Duration        // defaults to issues.DefaultResolutionTTL
	Insecure         bool                 // skip TLS verification against the admin API
	DB               *gorm.DB             // optional: audit trail of issues and session events
	Alert            func([]issues.Issue) // optional: forward detected issues to alert adapters
	Out              io.Writer            // defaults to log.Writer()
}

// Orchestrator owns the single monitoring session. All operations are safe
// for concurrent use; login and logout serialize against each other while
// data-path reads only contend on the short state lock.
type Orchestrator struct {
	connector        mqadmin.Connector
	supervisor       *listener.Supervisor
	handshakeTimeout time.Duration
	insecure         bool
	db               *gorm.DB
	alert            func([]issues.Issue)
	out              io.Writer

	thresholds  *monitor.ThresholdStore
	ledger      *issues.Ledger
	resolutions *issues.ResolutionCache
	handshake   *handshake

	queueCache   *cached[[]mqadmin.QueueSnapshot]
	channelCache *cached[[]mqadmin.ChannelSnapshot]
	appCache     *cached[[]mqadmin.ApplicationSnapshot]

	// loginMu serializes login and logout so a superseding login tears the
	// old session down completely before building the new one.
	loginMu sync.Mutex

	mu     sync.Mutex
	state  State
	cfg    Config
	client mqadmin.Client
}

// NewOrchestrator creates an Orchestrator in the LoggedOut state.
func NewOrchestrator(opts Opts) (*Orchestrator, error) {
	if opts.Supervisor == nil {
		return nil, fmt.Errorf("session: supervisor is required")
	}
	if opts.Connector == nil {
		opts.Connector = mqadmin.Connect
	}
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if opts.ObjectCacheTTL <= 0 {
		opts.ObjectCacheTTL = defaultObjectCacheTTL
	}
	if opts.ResolutionTTL <= 0 {
		opts.ResolutionTTL = issues.DefaultResolutionTTL
	}
	if opts.Out == nil {
		opts.Out = log.Writer()
	}

	return &Orchestrator{
		connector:        opts.Connector,
		supervisor:       opts.Supervisor,
		handshakeTimeout: opts.HandshakeTimeout,
		insecure:         opts.Insecure,
		db:               opts.DB,
		alert:            opts.Alert,
		out:              opts.Out,
		thresholds:       monitor.NewThresholdStore(opts.DefaultThreshold),
		ledger:           issues.NewLedger(),
		resolutions:      issues.NewResolutionCache(opts.ResolutionTTL),
		handshake:        newHandshake(),
		queueCache:       newCached[[]mqadmin.QueueSnapshot](opts.ObjectCacheTTL),
		channelCache:     newCached[[]mqadmin.ChannelSnapshot](opts.ObjectCacheTTL),
		appCache:         newCached[[]mqadmin.ApplicationSnapshot](opts.ObjectCacheTTL),
		state:            StateLoggedOut,
	}, nil
}

// State returns the current session state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Thresholds exposes the per-queue threshold store. Thresholds survive
// login and logout; they are configuration, not session state.
func (o *Orchestrator) Thresholds() *monitor.ThresholdStore {
	return o.thresholds
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

func (o *Orchestrator) logf(format string, args ...interface{}) {
	fmt.Fprintf(o.out, format+"\n", args...)
}

// Login establishes a session against the given queue manager. A login while
// another session is active supersedes it: the old listener is terminated
// and the old client closed before the new connection is attempted. On any
// failure after validation the orchestrator lands in StateFailed with no
// listener running and no client held.
func (o *Orchestrator) Login(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	o.loginMu.Lock()
	defer o.loginMu.Unlock()

	o.teardown("superseded by new login")
	o.setState(StateConnecting)
	o.logf("session: connecting to queue manager %s at %s", cfg.QueueManager, cfg.AdminBaseURL())

	client, err := o.connector(ctx, mqadmin.Config{
		BaseURL:      cfg.AdminBaseURL(),
		QueueManager: cfg.QueueManager,
		Username:     cfg.Username,
		Password:     cfg.Password,
		Insecure:     o.insecure,
	})
	if err != nil {
		o.setState(StateFailed)
		return &ConnectError{Err: err}
	}

	state, err := client.ManagerState(ctx)
	if err != nil {
		client.Close()
		o.setState(StateFailed)
		return &ConnectError{Err: err}
	}
	if state != mqadmin.StateRunning {
		client.Close()
		o.setState(StateFailed)
		return &ManagerNotRunningError{State: state}
	}

	o.setState(StateAwaitingHandshake)
	ch := o.handshake.Begin()

	if err := o.supervisor.Spawn(ctx, cfg.ListenerEnv(true)); err != nil {
		o.handshake.End()
		client.Close()
		o.setState(StateFailed)
		return err
	}
	o.logf("session: listener spawned (pid %d, session %s), awaiting confirmation", o.supervisor.Pid(), o.supervisor.SessionID())

	res, ok := awaitHandshake(ch, o.handshakeTimeout)
	o.handshake.End()
	if !ok {
		o.supervisor.Terminate()
		client.Close()
		o.setState(StateFailed)
		o.recordEvent(cfg.QueueManager, StateFailed, "handshake timeout")
		return &HandshakeTimeoutError{Timeout: o.handshakeTimeout}
	}
	if !res.OK {
		o.supervisor.Terminate()
		client.Close()
		o.setState(StateFailed)
		o.recordEvent(cfg.QueueManager, StateFailed, res.Message)
		return &HandshakeFailure{Message: res.Message}
	}

	o.resolutions.Clear()
	o.clearObjectCaches()

	o.mu.Lock()
	o.state = StateActive
	o.cfg = cfg
	o.client = client
	o.mu.Unlock()

	o.recordEvent(cfg.QueueManager, StateActive, "login complete")
	o.logf("session: active against queue manager %s", cfg.QueueManager)
	return nil
}

// ConfirmHandshake delivers the listener's startup callback to the pending
// login. It reports false when no login is waiting.
func (o *Orchestrator) ConfirmHandshake(res HandshakeResult) bool {
	return o.handshake.Signal(res)
}

// Logout tears the session down and returns to LoggedOut. Safe to call in
// any state.
func (o *Orchestrator) Logout() {
	o.loginMu.Lock()
	defer o.loginMu.Unlock()
	o.teardown("logout")
	o.setState(StateLoggedOut)
}

// Shutdown is the process-exit path: same teardown as Logout, invoked from
// the daemon's signal handler.
func (o *Orchestrator) Shutdown() {
	o.Logout()
}

// teardown stops the listener, closes the admin client and clears all
// session-scoped state. Thresholds survive; they are configuration.
func (o *Orchestrator) teardown(reason string) {
	o.mu.Lock()
	client := o.client
	qmgr := o.cfg.QueueManager
	hadSession := o.state == StateActive || o.state == StateAwaitingHandshake
	o.client = nil
	o.cfg = Config{}
	o.mu.Unlock()

	o.supervisor.Terminate()
	if client != nil {
		client.Close()
	}
	o.ledger.DrainAll()
	o.resolutions.Clear()
	o.clearObjectCaches()

	if hadSession {
		o.recordEvent(qmgr, StateLoggedOut, reason)
		o.logf("session: torn down (%s)", reason)
	}
}

func (o *Orchestrator) clearObjectCaches() {
	o.queueCache.clear()
	o.channelCache.clear()
	o.appCache.clear()
}

func (o *Orchestrator) activeClient() (mqadmin.Client, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateActive || o.client == nil {
		return nil, ErrNoSession
	}
	return o.client, nil
}

// Queues returns the current queue snapshots and runs threshold evaluation
// over them. Detected issues are appended to the ledger, persisted and
// forwarded to the alert adapters.
func (o *Orchestrator) Queues(ctx context.Context) ([]mqadmin.QueueSnapshot, error) {
	client, err := o.activeClient()
	if err != nil {
		return nil, err
	}
	queues, err := o.queueCache.get(func() ([]mqadmin.QueueSnapshot, error) {
		return client.ListQueues(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("session: list queues: %w", err)
	}

	detected := monitor.EvaluateQueues(queues, o.thresholds, o.ledger)
	if len(detected) > 0 {
		if o.db != nil {
			if err := store.RecordIssues(o.db, detected); err != nil {
				o.logf("session: record issues: %v", err)
			}
		}
		if o.alert != nil {
			o.alert(o.resolutions.FilterUnresolved(detected))
		}
	}
	return queues, nil
}

// Channels returns the current channel snapshots.
func (o *Orchestrator) Channels(ctx context.Context) ([]mqadmin.ChannelSnapshot, error) {
	client, err := o.activeClient()
	if err != nil {
		return nil, err
	}
	channels, err := o.channelCache.get(func() ([]mqadmin.ChannelSnapshot, error) {
		return client.ListChannels(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("session: list channels: %w", err)
	}
	return channels, nil
}

// Applications returns the applications currently connected to the manager.
func (o *Orchestrator) Applications(ctx context.Context) ([]mqadmin.ApplicationSnapshot, error) {
	client, err := o.activeClient()
	if err != nil {
		return nil, err
	}
	apps, err := o.appCache.get(func() ([]mqadmin.ApplicationSnapshot, error) {
		return client.ListApplications(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("session: list applications: %w", err)
	}
	return apps, nil
}

// Issues drains everything accumulated since the previous call and filters
// out issues suppressed by a recent resolution. Each issue is delivered at
// most once.
func (o *Orchestrator) Issues() []issues.Issue {
	return o.resolutions.FilterUnresolved(o.ledger.DrainAll())
}

// ReportIssues appends externally observed issues (the listener's own event
// reports) to the ledger.
func (o *Orchestrator) ReportIssues(batch []issues.Issue) {
	o.ledger.AddAll(batch)
	if o.db != nil {
		if err := store.RecordIssues(o.db, batch); err != nil {
			o.logf("session: record issues: %v", err)
		}
	}
}

// Resolve suppresses re-reporting of the named issue for the resolution TTL.
func (o *Orchestrator) Resolve(objectName string, code issues.Code) {
	o.resolutions.Resolve(objectName, code)
}

// PollQueues is the background poll tick: it refreshes queue snapshots and
// evaluates thresholds, and is a no-op unless a session is active.
func (o *Orchestrator) PollQueues(ctx context.Context) error {
	if o.State() != StateActive {
		return nil
	}
	_, err := o.Queues(ctx)
	return err
}

// Info is the daemon status surface.
type Info struct {
	State        State  `json:"state"`
	QueueManager string `json:"qmgr,omitempty"`
	ListenerPid  int    `json:"listener_pid,omitempty"`
	SessionID    string `json:"session_id,omitempty"`
	PendingCount int    `json:"pending_issues"`
}

// Status reports the orchestrator's current shape without touching the
// admin API.
func (o *Orchestrator) Status() Info {
	o.mu.Lock()
	state := o.state
	qmgr := o.cfg.QueueManager
	o.mu.Unlock()

	return Info{
		State:        state,
		QueueManager: qmgr,
		ListenerPid:  o.supervisor.Pid(),
		SessionID:    o.supervisor.SessionID(),
		PendingCount: o.ledger.Len(),
	}
}

func (o *Orchestrator) recordEvent(qmgr string, state State, detail string) {
	if o.db == nil {
		return
	}
	if err := store.RecordSessionEvent(o.db, qmgr, string(state), detail); err != nil {
		o.logf("session: record session event: %v", err)
	}
}
