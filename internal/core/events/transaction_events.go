package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeTransactionCompleted = "transaction.completed"
)

type TransactionCompletedEvent struct {
	BaseEvent
	TransactionID int64  `json:"transaction_id"`
	StudentID     int64  `json:"student_id"`
	CourseID      int64  `json:"course_id"`
	Amount        string `json:"amount"`
	Source        string `json:"source"`
}

func NewTransactionCompletedEvent(transactionID, studentID, courseID int64, amount, source string) *TransactionCompletedEvent {
	return &TransactionCompletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      EventTypeTransactionCompleted,
			Timestamp: time.Now().UTC(),
		},
		TransactionID: transactionID,
		StudentID:     studentID,
		CourseID:      courseID,
		Amount:        amount,
		Source:        source,
	}
}
