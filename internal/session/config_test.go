package session

import (
	"errors"
	"testing"
)

func validLoginConfig() Config {
	return Config{
		QueueManager: "QM1",
		Address:      "mq.example.com",
		AdminPort:    "9443",
		AppPort:      "1414",
		AdminChannel: "DEV.ADMIN.SVRCONN",
		Username:     "admin",
		Password:     "passw0rd",
	}
}

func TestConfigValidate(t *testing.T) {
	if err := validLoginConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestConfigValidateMissingFields(t *testing.T) {
	cfg := validLoginConfig()
	cfg.QueueManager = ""
	cfg.Password = "  "

	err := cfg.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if len(verr.Missing) != 2 {
		t.Fatalf("got missing fields %v, want qmgr and password", verr.Missing)
	}
	if verr.Missing[0] != "qmgr" || verr.Missing[1] != "password" {
		t.Fatalf("got missing fields %v", verr.Missing)
	}
}

func TestConfigAdminBaseURL(t *testing.T) {
	got := validLoginConfig().AdminBaseURL()
	want := "https://mq.example.com:9443/ibmmq/rest/v2/admin"
	if got != want {
		t.Fatalf("AdminBaseURL() = %q, want %q", got, want)
	}
}

func TestConfigConnName(t *testing.T) {
	if got := validLoginConfig().ConnName(); got != "mq.example.com(1414)" {
		t.Fatalf("ConnName() = %q", got)
	}
}

func TestConfigListenerEnv(t *testing.T) {
	env := validLoginConfig().ListenerEnv(true)

	want := map[string]string{
		"ibm_mq_queueManager":              "QM1",
		"ibm_mq_channel":                   "DEV.ADMIN.SVRCONN",
		"ibm_mq_connName":                  "mq.example.com(1414)",
		"ibm_mq_user":                      "admin",
		"ibm_mq_password":                  "passw0rd",
		"spring_jms_listener_auto_startup": "true",
	}
	for k, v := range want {
		if env[k] != v {
			t.Errorf("env[%q] = %q, want %q", k, env[k], v)
		}
	}
	if len(env) != len(want) {
		t.Errorf("env has %d keys, want %d: %v", len(env), len(want), env)
	}
}
