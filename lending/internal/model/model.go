package model

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Book struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	Title          string     `json:"title" db:"title"`
	TotalCount     int        `json:"totalCount" db:"total_count"`
	AvailableCount int        `json:"availableCount" db:"available_count"`
	AuthorID       *uuid.UUID `json:"authorId,omitempty" db:"author_id"`
	CategoryID     *uuid.UUID `json:"categoryId,omitempty" db:"category_id"`
	PublisherID    *uuid.UUID `json:"publisherId,omitempty" db:"publisher_id"`
	AddedBy        *uuid.UUID `json:"addedBy,omitempty" db:"added_by"`
}

type Student struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Name string    `json:"name" db:"name"`
}

type Staff struct {
	ID    uuid.UUID `json:"id" db:"id"`
	Name  string    `json:"name" db:"name"`
	Email string    `json:"email" db:"email"`
}

type LoanState string

const (
	LoanActive   LoanState = "ACTIVE"
	LoanReturned LoanState = "RETURNED"
)

// Loan is a book assignment: one copy of a book held by a student until ReturnDue.
type Loan struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	StudentID  uuid.UUID  `json:"studentId" db:"student_id"`
	BookID     uuid.UUID  `json:"bookId" db:"book_id"`
	IssuedBy   uuid.UUID  `json:"issuedBy" db:"issued_by"`
	AssignedAt time.Time  `json:"assignedAt" db:"assigned_at"`
	ReturnDue  time.Time  `json:"returnDue" db:"return_due"`
	Returned   bool       `json:"returned" db:"returned"`
	ReturnedAt *time.Time `json:"returnedAt" db:"returned_at"`
}

func (l Loan) State() LoanState {
	if l.Returned {
		return LoanReturned
	}
	return LoanActive
}

func (l Loan) IsOverdue(now time.Time) bool {
	return !l.Returned && l.ReturnDue.Before(now)
}

type StudentSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type BookSummary struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	AvailableCount int       `json:"availableCount"`
	TotalCount     int       `json:"totalCount"`
}

type StaffSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type LoanDetails struct {
	Loan    `json:",inline"`
	State   LoanState      `json:"state"`
	Student StudentSummary `json:"student"`
	Book    BookSummary    `json:"book"`
	Issuer  StaffSummary   `json:"issuer"`
}

type CheckoutRequest struct {
	StudentID uuid.UUID `json:"studentId" validate:"required"`
	BookID    uuid.UUID `json:"bookId" validate:"required"`
	IssuerID  uuid.UUID `json:"-" validate:"required"`
	ReturnDue Date      `json:"returnDue"`
}

type UpdateLoanRequest struct {
	ReturnDue *Date `json:"returnDue"`
}

// Date accepts both RFC 3339 timestamps and plain YYYY-MM-DD dates.
type Date struct {
	time.Time `json:",inline"`
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), "\"")
	if s == "" || s == "null" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Time)
}
