package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationOverdueBook NotificationType = "OVERDUE_BOOK"
)

type Notification struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	UserID    uuid.UUID        `json:"userId" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Message   string           `json:"message" db:"message"`
	Metadata  json.RawMessage  `json:"metadata" db:"metadata"`
	IsRead    bool             `json:"isRead" db:"is_read"`
	CreatedAt time.Time        `json:"createdAt" db:"created_at"`
}

type NotificationFilter struct {
	IsRead *bool
	Type   *NotificationType
}

// OverdueStudent is one late loan inside a teacher summary.
type OverdueStudent struct {
	LoanID      uuid.UUID `json:"loanId"`
	StudentID   uuid.UUID `json:"studentId"`
	StudentName string    `json:"studentName"`
	BookTitle   string    `json:"bookTitle"`
	ReturnDue   time.Time `json:"returnDue"`
	DaysOverdue int       `json:"daysOverdue"`
}

type TeacherSummary struct {
	TeacherID       uuid.UUID        `json:"teacherId"`
	TeacherName     string           `json:"teacherName"`
	TeacherEmail    string           `json:"teacherEmail"`
	OverdueStudents []OverdueStudent `json:"overdueStudents"`
}

type OverdueMetadata struct {
	OverdueStudents []OverdueStudent `json:"overdueStudents"`
	TeacherEmail    string           `json:"teacherEmail"`
}

// DeliveryJob is the unit of work on the delivery queue.
type DeliveryJob struct {
	ID             string         `json:"id"`
	NotificationID uuid.UUID      `json:"notificationId"`
	Summary        TeacherSummary `json:"summary"`
	EnqueuedAt     time.Time      `json:"enqueuedAt"`
}

type DeliveryStatus string

const (
	DeliveryDelivered DeliveryStatus = "DELIVERED"
	DeliveryFailed    DeliveryStatus = "FAILED"
)

type DeliveryEvent struct {
	JobID          string         `json:"jobId"`
	NotificationID uuid.UUID      `json:"notificationId"`
	TeacherID      uuid.UUID      `json:"teacherId"`
	Status         DeliveryStatus `json:"status"`
	Attempts       int            `json:"attempts"`
	Error          string         `json:"error,omitempty"`
	At             time.Time      `json:"at"`
}

type ScanReport struct {
	Overdue       int `json:"overdue"`
	Summaries     int `json:"summaries"`
	Recorded      int `json:"recorded"`
	Enqueued      int `json:"enqueued"`
	RecordFailed  int `json:"recordFailed"`
	EnqueueFailed int `json:"enqueueFailed"`
}
