package mqadmin

// QueueType classifies a queue by how it participates in message flow.
type QueueType string

const (
	QueueLocal        QueueType = "Local"
	QueueRemote       QueueType = "Remote"
	QueueAlias        QueueType = "Alias"
	QueueTransmission QueueType = "Transmission"
)

// QueueSnapshot is a point-in-time view of one queue.
type QueueSnapshot struct {
	Name             string    `json:"queue_name"`
	Type             QueueType `json:"type_name"`
	Description      string    `json:"description"`
	CurrentDepth     int       `json:"current_depth"`
	MaxDepth         int       `json:"max_number_of_messages"`
	MaxMessageLength int       `json:"max_message_length"`
	InhibitPut       bool      `json:"inhibit_put"`
	InhibitGet       bool      `json:"inhibit_get"`
	TimeCreated      string    `json:"time_created"`
	TimeAltered      string    `json:"time_altered"`
	Threshold        float64   `json:"threshold"` // occupancy fraction, CurrentDepth/MaxDepth
}

// HoldsMessages reports whether this queue kind physically stores messages.
// Remote and alias queues are pure references and always report zero depth.
func (q QueueSnapshot) HoldsMessages() bool {
	return q.Type == QueueLocal || q.Type == QueueTransmission
}

// ChannelSnapshot is a point-in-time view of one channel.
type ChannelSnapshot struct {
	Name              string `json:"channel_name"`
	Type              string `json:"channel_type"`
	ConnectionName    string `json:"connection_name,omitempty"`
	TransmissionQueue string `json:"transmission_queue_name,omitempty"`
}

// ApplicationSnapshot describes one application connection to the manager.
type ApplicationSnapshot struct {
	Name           string `json:"application_name"`
	ConnectionID   string `json:"connection_id"`
	ConnectionName string `json:"connection_name"`
	Channel        string `json:"channel"`
}
