package monitor

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/zulandar/mqsentinel/internal/issues"
	"github.com/zulandar/mqsentinel/internal/mqadmin"
)

// Evaluate decides whether a queue snapshot warrants an issue against the
// given threshold limit. A full queue always fires QUEUE_FULL, regardless of
// the configured limit; otherwise THRESHOLD_EXCEEDED fires when the
// snapshot's occupancy fraction meets the limit. Returns nil when neither
// condition holds.
func Evaluate(q mqadmin.QueueSnapshot, limit float64) *issues.Issue {
	switch {
	case q.CurrentDepth == q.MaxDepth:
		return newQueueIssue(q, issues.CodeQueueFull,
			"The queue is 100% full. Immediate action required!")
	case q.Threshold >= limit:
		return newQueueIssue(q, issues.CodeThresholdExceeded,
			fmt.Sprintf("The queue has exceeded the %g%% threshold limit. Please take necessary actions to avoid potential issues.", limit*100))
	default:
		return nil
	}
}

func newQueueIssue(q mqadmin.QueueSnapshot, code issues.Code, message string) *issues.Issue {
	details, err := json.Marshal(q)
	if err != nil {
		details = nil
	}
	return &issues.Issue{
		ObjectType:    issues.ObjectQueue,
		ObjectName:    q.Name,
		Code:          code,
		Message:       message,
		Timestamp:     time.Now(),
		ObjectDetails: string(details),
	}
}

// EvaluateQueues runs Evaluate over a full listing, feeding detections into
// the ledger and returning them. Only Local and Transmission queues are
// considered; other kinds never hold messages. Queues with no configured
// threshold are evaluated against the store default, and that default is
// persisted into the store so a later read of all thresholds reflects every
// queue ever seen.
func EvaluateQueues(queues []mqadmin.QueueSnapshot, store *ThresholdStore, ledger *issues.Ledger) []issues.Issue {
	var detected []issues.Issue
	for _, q := range queues {
		if !q.HoldsMessages() {
			continue
		}
		if !store.Contains(q.Name) {
			store.Update(map[string]float64{q.Name: store.Default()})
		}
		limit := store.Get(q.Name, store.Default())
		if issue := Evaluate(q, limit); issue != nil {
			ledger.Add(*issue)
			detected = append(detected, *issue)
		}
	}
	return detected
}
