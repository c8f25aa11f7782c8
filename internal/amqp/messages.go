package amqp

import (
	"encoding/json"
	"time"

	"spendsight/internal/core"
)

// Expense event actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ExpenseEventMessage notifies the digest worker that an owner's expense
// data changed. It carries only identifiers; the worker reads current
// state from the store, so stale or reordered deliveries are harmless.
type ExpenseEventMessage struct {
	ExpenseID string     `json:"expenseId"`
	Owner     string     `json:"owner"`
	Action    string     `json:"action"`
	Month     core.Month `json:"month"`
	Timestamp time.Time  `json:"timestamp"`
}

func NewExpenseEventMessage(expenseID, owner, action string, month core.Month) *ExpenseEventMessage {
	return &ExpenseEventMessage{
		ExpenseID: expenseID,
		Owner:     owner,
		Action:    action,
		Month:     month,
		Timestamp: time.Now(),
	}
}

func (m *ExpenseEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseEventMessageFromJSON(data []byte) (*ExpenseEventMessage, error) {
	var msg ExpenseEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
