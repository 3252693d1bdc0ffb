package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zulandar/mqsentinel/internal/issues"
	"github.com/zulandar/mqsentinel/internal/session"
)

func newIssuesCmd() *cobra.Command {
	var daemonURL string

	cmd := &cobra.Command{
		Use:   "issues",
		Short: "Fetch pending issues",
		Long:  "Drains the daemon's pending issues. Each issue is delivered once; resolved issues are suppressed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIssues(cmd, daemonURL)
		},
	}

	cmd.Flags().StringVar(&daemonURL, "daemon", defaultDaemonURL, "base URL of the MQ Sentinel daemon")
	return cmd
}

func runIssues(cmd *cobra.Command, daemonURL string) error {
	resp, err := http.Get(daemonURL + "/issues")
	if err != nil {
		return fmt.Errorf("reach daemon at %s: %w", daemonURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("daemon returned %s", resp.Status)
	}

	var pending []issues.Issue
	if err := json.NewDecoder(resp.Body).Decode(&pending); err != nil {
		return fmt.Errorf("decode issues: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(pending) == 0 {
		fmt.Fprintln(out, "No pending issues.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tOBJECT\tCODE\tMESSAGE")
	for _, issue := range pending {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			issue.Timestamp.Format("15:04:05"), issue.ObjectName, issue.Code, issue.Message)
	}
	return w.Flush()
}

func newStatusCmd() *cobra.Command {
	var daemonURL string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon session status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, daemonURL)
		},
	}

	cmd.Flags().StringVar(&daemonURL, "daemon", defaultDaemonURL, "base URL of the MQ Sentinel daemon")
	return cmd
}

func runStatus(cmd *cobra.Command, daemonURL string) error {
	resp, err := http.Get(daemonURL + "/status")
	if err != nil {
		return fmt.Errorf("reach daemon at %s: %w", daemonURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("daemon returned %s", resp.Status)
	}

	var info session.Info
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return fmt.Errorf("decode status: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "State:          %s\n", info.State)
	if info.QueueManager != "" {
		fmt.Fprintf(out, "Queue manager:  %s\n", info.QueueManager)
	}
	if info.ListenerPid != 0 {
		fmt.Fprintf(out, "Listener:       pid %d (session %s)\n", info.ListenerPid, info.SessionID)
	}
	fmt.Fprintf(out, "Pending issues: %d\n", info.PendingCount)
	return nil
}
