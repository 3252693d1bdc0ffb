package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zulandar/mqsentinel/internal/alerting"
	discordadapter "github.com/zulandar/mqsentinel/internal/alerting/discord"
	slackadapter "github.com/zulandar/mqsentinel/internal/alerting/slack"
	"github.com/zulandar/mqsentinel/internal/chat"
	"github.com/zulandar/mqsentinel/internal/config"
	"github.com/zulandar/mqsentinel/internal/issues"
	"github.com/zulandar/mqsentinel/internal/listener"
	"github.com/zulandar/mqsentinel/internal/monitor"
	"github.com/zulandar/mqsentinel/internal/server"
	"github.com/zulandar/mqsentinel/internal/session"
	"github.com/zulandar/mqsentinel/internal/store"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MQ Sentinel daemon",
		Long:  "Starts the HTTP API, the monitoring poll loop and the alert dispatcher, and supervises the companion event listener.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "mqsentinel.yaml", "path to the MQ Sentinel config file")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	out := cmd.OutOrStdout()

	db, err := store.Open(cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	supervisor, err := listener.NewSupervisor(listener.SupervisorOpts{
		Command: cfg.Listener.Command,
		WorkDir: cfg.Listener.WorkDir,
		DB:      db,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher := alerting.NewDispatcher(out)
	defer dispatcher.Close()
	if err := registerAlertAdapters(ctx, dispatcher, cfg.Alerts); err != nil {
		return err
	}

	orch, err := session.NewOrchestrator(session.Opts{
		Supervisor:       supervisor,
		DefaultThreshold: cfg.DefaultThreshold,
		HandshakeTimeout: cfg.HandshakeTimeout,
		ObjectCacheTTL:   cfg.ObjectCacheTTL,
		ResolutionTTL:    cfg.ResolutionTTL,
		Insecure:         cfg.InsecureTLS,
		DB:               db,
		Alert: func(batch []issues.Issue) {
			dispatcher.NotifyIssues(ctx, batch)
		},
		Out: out,
	})
	if err != nil {
		return err
	}
	// The listener must never outlive the daemon.
	defer orch.Shutdown()

	var slot *chat.Slot
	if cfg.Chat.APIKey != "" {
		assistant, err := chat.NewOpenAI(cfg.Chat.APIKey, cfg.Chat.Model, cfg.Chat.BaseURL)
		if err != nil {
			return err
		}
		slot = chat.NewSlot(assistant, 0)
	} else {
		fmt.Fprintln(out, "chat: no API key configured, assistant disabled")
	}

	// Handle OS signals for graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	go func() {
		if err := monitor.RunPoller(ctx, orch.PollQueues, monitor.PollerOpts{
			Interval: cfg.Poll.Interval,
			Cron:     cfg.Poll.Cron,
			Out:      out,
		}); err != nil {
			fmt.Fprintf(out, "poller stopped: %v\n", err)
			cancel()
		}
	}()

	return server.Start(ctx, server.StartOpts{
		Orchestrator: orch,
		Slot:         slot,
		Port:         cfg.Port,
		Out:          out,
	})
}

// registerAlertAdapters connects every adapter with a configured token.
func registerAlertAdapters(ctx context.Context, d *alerting.Dispatcher, cfg config.AlertsConfig) error {
	if cfg.Slack.BotToken != "" {
		adapter, err := slackadapter.New(slackadapter.AdapterOpts{
			BotToken:  cfg.Slack.BotToken,
			ChannelID: cfg.Slack.ChannelID,
		})
		if err != nil {
			return err
		}
		if err := d.Register(ctx, adapter); err != nil {
			return err
		}
	}
	if cfg.Discord.BotToken != "" {
		adapter, err := discordadapter.New(discordadapter.AdapterOpts{
			BotToken:  cfg.Discord.BotToken,
			ChannelID: cfg.Discord.ChannelID,
		})
		if err != nil {
			return err
		}
		if err := d.Register(ctx, adapter); err != nil {
			return err
		}
	}
	return nil
}
