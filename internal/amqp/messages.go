package amqp

import (
	"encoding/json"
	"time"
)

// TransactionRecordedMessage announces one committed ledger row. It carries
// only the id; the export worker fetches the full row from the database.
type TransactionRecordedMessage struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionRecordedMessage(id int64) *TransactionRecordedMessage {
	return &TransactionRecordedMessage{
		ID:        id,
		Timestamp: time.Now(),
	}
}

func (m *TransactionRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionRecordedMessageFromJSON(data []byte) (*TransactionRecordedMessage, error) {
	var msg TransactionRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// BudgetAlertMessage carries one month's budget overrun. At most one is
// published per calendar month; the monitor's watermark guarantees it.
type BudgetAlertMessage struct {
	Month       string    `json:"month"`
	BudgetCents int64     `json:"budget_cents"`
	SpendCents  int64     `json:"spend_cents"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewBudgetAlertMessage(month string, budgetCents, spendCents int64) *BudgetAlertMessage {
	return &BudgetAlertMessage{
		Month:       month,
		BudgetCents: budgetCents,
		SpendCents:  spendCents,
		Timestamp:   time.Now(),
	}
}

func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
