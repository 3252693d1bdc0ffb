package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zulandar/mqsentinel/internal/session"
)

const defaultDaemonURL = "http://localhost:5000"

// loginTimeout bounds the whole login round trip. The daemon itself waits up
// to its handshake timeout, so this must comfortably exceed it.
const loginTimeout = 2 * time.Minute

func newLoginCmd() *cobra.Command {
	var (
		daemonURL string
		cfg       session.Config
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to a queue manager",
		Long:  "Sends login configuration to a running MQ Sentinel daemon, which connects to the queue manager and starts the event listener.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, daemonURL, cfg)
		},
	}

	cmd.Flags().StringVar(&daemonURL, "daemon", defaultDaemonURL, "base URL of the MQ Sentinel daemon")
	cmd.Flags().StringVar(&cfg.QueueManager, "qmgr", "", "queue manager name")
	cmd.Flags().StringVar(&cfg.Address, "address", "", "queue manager host")
	cmd.Flags().StringVar(&cfg.AdminPort, "admin-port", "9443", "admin REST API port")
	cmd.Flags().StringVar(&cfg.AppPort, "app-port", "1414", "application listener port")
	cmd.Flags().StringVar(&cfg.AdminChannel, "channel", "", "server-connection channel")
	cmd.Flags().StringVar(&cfg.Username, "user", "", "admin username")
	return cmd
}

func runLogin(cmd *cobra.Command, daemonURL string, cfg session.Config) error {
	out := cmd.OutOrStdout()

	// Password comes from the environment or an interactive prompt, never a flag.
	cfg.Password = os.Getenv("MQS_PASSWORD")
	if cfg.Password == "" {
		fmt.Fprintf(out, "Password for %s@%s: ", cfg.Username, cfg.QueueManager)
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(out)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		cfg.Password = string(raw)
	}

	body, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode login config: %w", err)
	}

	client := &http.Client{Timeout: loginTimeout}
	resp, err := client.Post(daemonURL+"/clientconfig", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("reach daemon at %s: %w", daemonURL, err)
	}
	defer resp.Body.Close()

	msg, err := decodeMessage(resp)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed: %s", msg)
	}
	fmt.Fprintln(out, msg)
	return nil
}

func newLogoutCmd() *cobra.Command {
	var daemonURL string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "End the active session",
		Long:  "Tells the daemon to terminate the event listener and drop the queue manager connection.",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := http.Post(daemonURL+"/logout", "application/json", nil)
			if err != nil {
				return fmt.Errorf("reach daemon at %s: %w", daemonURL, err)
			}
			defer resp.Body.Close()

			msg, err := decodeMessage(resp)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	cmd.Flags().StringVar(&daemonURL, "daemon", defaultDaemonURL, "base URL of the MQ Sentinel daemon")
	return cmd
}

// decodeMessage extracts the "message" field every daemon response carries.
func decodeMessage(resp *http.Response) (string, error) {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode daemon response: %w", err)
	}
	return body.Message, nil
}
