package service

import (
	"time"

	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/google/uuid"
)

// AggregateByTeacher groups overdue loans by the staff member who issued them.
// Teachers appear in order of their first loan and each teacher's students keep
// the input order.
func AggregateByTeacher(now time.Time, loans []model.LoanDetails) []model.TeacherSummary {
	idx := make(map[uuid.UUID]int)
	out := make([]model.TeacherSummary, 0)
	for _, l := range loans {
		i, ok := idx[l.IssuedBy]
		if !ok {
			i = len(out)
			idx[l.IssuedBy] = i
			out = append(out, model.TeacherSummary{
				TeacherID:    l.IssuedBy,
				TeacherName:  l.Issuer.Name,
				TeacherEmail: l.Issuer.Email,
			})
		}
		out[i].OverdueStudents = append(out[i].OverdueStudents, model.OverdueStudent{
			LoanID:      l.ID,
			StudentID:   l.StudentID,
			StudentName: l.Student.Name,
			BookTitle:   l.Book.Title,
			ReturnDue:   l.ReturnDue,
			DaysOverdue: DaysOverdue(now, l.ReturnDue),
		})
	}
	return out
}

func DaysOverdue(now, due time.Time) int {
	d := now.Sub(due)
	if d <= 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}
