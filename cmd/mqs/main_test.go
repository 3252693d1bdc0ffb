package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestVersionCmd(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "mqs dev") {
		t.Errorf("expected output to contain 'mqs dev', got: %s", out)
	}
	if !strings.Contains(out, "commit: none") {
		t.Errorf("expected output to contain 'commit: none', got: %s", out)
	}
}

func TestRootCmdHelp(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("help failed: %v", err)
	}

	out := buf.String()
	for _, sub := range []string{"serve", "login", "logout", "issues", "status", "version"} {
		if !strings.Contains(out, sub) {
			t.Errorf("help output missing %q subcommand: %s", sub, out)
		}
	}
}

func TestIssuesCmdAgainstDaemon(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/issues" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{
				"mqobjectType": "queue",
				"mqobjectName": "DEV.Q1",
				"issueCode":    "QUEUE_FULL",
				"message":      "The queue is full.",
			},
		})
	}))
	defer srv.Close()

	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"issues", "--daemon", srv.URL})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("issues command failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "DEV.Q1") || !strings.Contains(out, "QUEUE_FULL") {
		t.Errorf("issues output missing fields: %s", out)
	}
}

func TestIssuesCmdEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}))
	defer srv.Close()

	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"issues", "--daemon", srv.URL})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("issues command failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No pending issues") {
		t.Errorf("output = %s", buf.String())
	}
}

func TestStatusCmdAgainstDaemon(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"state":          "Active",
			"qmgr":           "QM1",
			"listener_pid":   4242,
			"session_id":     "lsn-1a2b3c4d",
			"pending_issues": 2,
		})
	}))
	defer srv.Close()

	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"status", "--daemon", srv.URL})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("status command failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Active", "QM1", "4242", "Pending issues: 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q: %s", want, out)
		}
	}
}

func TestLogoutCmdAgainstDaemon(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/logout" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"message": "Logged out."}`))
	}))
	defer srv.Close()

	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"logout", "--daemon", srv.URL})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("logout command failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Logged out.") {
		t.Errorf("output = %s", buf.String())
	}
}
