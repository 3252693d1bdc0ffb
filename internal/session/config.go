package session

import (
	"fmt"
	"strings"
)

// Config is the immutable per-login configuration. A re-login supersedes the
// previous Config; it is never edited in place.
type Config struct {
	QueueManager string `json:"qmgr"`
	Address      string `json:"address"`
	AdminPort    string `json:"admin_port"`
	AppPort      string `json:"app_port"`
	AdminChannel string `json:"admin_channel"`
	Username     string `json:"username"`
	Password     string `json:"password"`
}

// Validate checks that every required field is present. Returns a
// *ValidationError naming the missing fields.
func (c Config) Validate() error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"qmgr", c.QueueManager},
		{"address", c.Address},
		{"admin_port", c.AdminPort},
		{"app_port", c.AppPort},
		{"admin_channel", c.AdminChannel},
		{"username", c.Username},
		{"password", c.Password},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// AdminBaseURL is the root of the manager's administrative REST API.
func (c Config) AdminBaseURL() string {
	return fmt.Sprintf("https://%s:%s/ibmmq/rest/v2/admin", c.Address, c.AdminPort)
}

// ConnName is the MQ connection name the listener uses, in address(port) form.
func (c Config) ConnName() string {
	return fmt.Sprintf("%s(%s)", c.Address, c.AppPort)
}

// ListenerEnv derives the environment for the companion listener process.
// The keys follow the listener's Spring relaxed-binding contract.
func (c Config) ListenerEnv(autoStartup bool) map[string]string {
	return map[string]string{
		"ibm_mq_queueManager":              c.QueueManager,
		"ibm_mq_channel":                   c.AdminChannel,
		"ibm_mq_connName":                  c.ConnName(),
		"ibm_mq_user":                      c.Username,
		"ibm_mq_password":                  c.Password,
		"spring_jms_listener_auto_startup": fmt.Sprintf("%t", autoStartup),
	}
}
