package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const fullYAML = `
port: 5443
default_threshold: 0.75
handshake_timeout: 45s
resolution_ttl: 90s
object_cache_ttl: 5s

listener:
  command: ["java", "-jar", "mq-listener.jar"]
  work_dir: /opt/mq-listener
  port: 8085

poll:
  cron: "*/2 * * * *"

store:
  driver: mysql
  host: 10.0.0.5
  port: 3307
  database: mqsentinel_prod
  user: sentinel
  password: hunter2

alerts:
  slack:
    bot_token: xoxb-test
    channel_id: C012345
  discord:
    bot_token: discord-test
    channel_id: "987654"

chat:
  api_key: sk-test
  model: gpt-4o
`

const minimalYAML = `
listener:
  work_dir: /opt/mq-listener
`

func TestParse_FullConfig(t *testing.T) {
	cfg, err := Parse([]byte(fullYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 5443 {
		t.Errorf("Port = %d, want 5443", cfg.Port)
	}
	if cfg.DefaultThreshold != 0.75 {
		t.Errorf("DefaultThreshold = %v, want 0.75", cfg.DefaultThreshold)
	}
	if cfg.HandshakeTimeout != 45*time.Second {
		t.Errorf("HandshakeTimeout = %v, want 45s", cfg.HandshakeTimeout)
	}
	if cfg.ResolutionTTL != 90*time.Second {
		t.Errorf("ResolutionTTL = %v, want 90s", cfg.ResolutionTTL)
	}
	if len(cfg.Listener.Command) != 3 || cfg.Listener.Command[0] != "java" {
		t.Errorf("Listener.Command = %v, want java -jar mq-listener.jar", cfg.Listener.Command)
	}
	if cfg.Listener.WorkDir != "/opt/mq-listener" {
		t.Errorf("Listener.WorkDir = %q, want /opt/mq-listener", cfg.Listener.WorkDir)
	}
	if cfg.Poll.Cron != "*/2 * * * *" {
		t.Errorf("Poll.Cron = %q, want */2 * * * *", cfg.Poll.Cron)
	}
	if cfg.Store.Driver != "mysql" {
		t.Errorf("Store.Driver = %q, want mysql", cfg.Store.Driver)
	}
	if cfg.Store.Host != "10.0.0.5" || cfg.Store.Port != 3307 {
		t.Errorf("Store host:port = %s:%d, want 10.0.0.5:3307", cfg.Store.Host, cfg.Store.Port)
	}
	if cfg.Alerts.Slack.ChannelID != "C012345" {
		t.Errorf("Alerts.Slack.ChannelID = %q, want C012345", cfg.Alerts.Slack.ChannelID)
	}
	if cfg.Chat.Model != "gpt-4o" {
		t.Errorf("Chat.Model = %q, want gpt-4o", cfg.Chat.Model)
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 5000 {
		t.Errorf("Port = %d, want 5000", cfg.Port)
	}
	if cfg.DefaultThreshold != 0.8 {
		t.Errorf("DefaultThreshold = %v, want 0.8", cfg.DefaultThreshold)
	}
	if cfg.HandshakeTimeout != 30*time.Second {
		t.Errorf("HandshakeTimeout = %v, want 30s", cfg.HandshakeTimeout)
	}
	if cfg.ResolutionTTL != 60*time.Second {
		t.Errorf("ResolutionTTL = %v, want 60s", cfg.ResolutionTTL)
	}
	if cfg.ObjectCacheTTL != 10*time.Second {
		t.Errorf("ObjectCacheTTL = %v, want 10s", cfg.ObjectCacheTTL)
	}
	if len(cfg.Listener.Command) != 2 || cfg.Listener.Command[0] != "mvn" {
		t.Errorf("Listener.Command = %v, want mvn spring-boot:run", cfg.Listener.Command)
	}
	if cfg.Poll.Interval != 30*time.Second {
		t.Errorf("Poll.Interval = %v, want 30s", cfg.Poll.Interval)
	}
	if cfg.Store.Driver != "sqlite" {
		t.Errorf("Store.Driver = %q, want sqlite", cfg.Store.Driver)
	}
	if cfg.Store.Path != "mqsentinel.db" {
		t.Errorf("Store.Path = %q, want mqsentinel.db", cfg.Store.Path)
	}
}

func TestParse_MissingWorkDir(t *testing.T) {
	_, err := Parse([]byte("port: 5000\n"))
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "listener.work_dir") {
		t.Errorf("error %q does not mention listener.work_dir", err)
	}
}

func TestParse_BadThreshold(t *testing.T) {
	yaml := `
default_threshold: 1.5
listener:
  work_dir: /opt/mq-listener
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "default_threshold") {
		t.Errorf("error %q does not mention default_threshold", err)
	}
}

func TestParse_BadStoreDriver(t *testing.T) {
	yaml := `
listener:
  work_dir: /opt/mq-listener
store:
  driver: postgres
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "store.driver") {
		t.Errorf("error %q does not mention store.driver", err)
	}
}

func TestParse_SlackTokenWithoutChannel(t *testing.T) {
	yaml := `
listener:
  work_dir: /opt/mq-listener
alerts:
  slack:
    bot_token: xoxb-test
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "alerts.slack.channel_id") {
		t.Errorf("error %q does not mention alerts.slack.channel_id", err)
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mqsentinel.yaml")
	if err := os.WriteFile(path, []byte(minimalYAML), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listener.WorkDir != "/opt/mq-listener" {
		t.Errorf("Listener.WorkDir = %q, want /opt/mq-listener", cfg.Listener.WorkDir)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}
