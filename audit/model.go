// audit/model.go
package audit

import "time"

// DecisionRecord is one authorization check outcome as persisted in the
// audit trail. Outcome is "granted", "denied" or "abstained".
type DecisionRecord struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Subject    string    `json:"subject"`
	TargetType string    `json:"target_type"`
	Signature  string    `json:"signature"`
	Expression string    `json:"expression,omitempty"`
	Outcome    string    `json:"outcome"`
}
