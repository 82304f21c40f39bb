package service

import (
	"context"

	"github.com/Keksclan/gradebook/model"
)

// Lookups by key return (entity, found, err). A missing row is not an error.

// StudentRepository persists students.
type StudentRepository interface {
	FindAll(ctx context.Context) ([]model.Student, error)
	FindByID(ctx context.Context, id int64) (model.Student, bool, error)
	FindAllByID(ctx context.Context, ids []int64) ([]model.Student, error)
	FindByAge(ctx context.Context, age int) ([]model.Student, error)
	FindByAgeSortedByName(ctx context.Context, age int, sort string) ([]model.Student, error)
	SortedByName(ctx context.Context, sort string) ([]model.Student, error)
	FindByGroupID(ctx context.Context, groupID int64) ([]model.Student, error)
	Create(ctx context.Context, s model.Student) (model.Student, error)
	Update(ctx context.Context, s model.Student) error
	Delete(ctx context.Context, id int64) error
}

// GroupRepository persists groups. Returned groups carry their students.
type GroupRepository interface {
	FindAll(ctx context.Context) ([]model.Group, error)
	FindAllSortedByName(ctx context.Context) ([]model.Group, error)
	FindByNameContaining(ctx context.Context, pattern string) ([]model.Group, error)
	FindByID(ctx context.Context, id int64) (model.Group, bool, error)
	FindByName(ctx context.Context, name string) (model.Group, bool, error)
	// Create inserts the group and assigns the given students to it.
	Create(ctx context.Context, name string, studentIDs []int64) (model.Group, error)
	// Delete removes the group and detaches its students.
	Delete(ctx context.Context, id int64) error
}

// SubjectRepository persists subjects.
type SubjectRepository interface {
	FindAll(ctx context.Context) ([]model.Subject, error)
	FindAllSortedByName(ctx context.Context) ([]model.Subject, error)
	FindByNameContaining(ctx context.Context, pattern string) ([]model.Subject, error)
	FindByID(ctx context.Context, id int64) (model.Subject, bool, error)
	FindByName(ctx context.Context, name string) (model.Subject, bool, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, name string) (model.Subject, error)
	Delete(ctx context.Context, id int64) error
}

// MarkRepository persists marks.
type MarkRepository interface {
	FindAll(ctx context.Context) ([]model.Mark, error)
	FindByID(ctx context.Context, id int64) (model.Mark, bool, error)
	FindByStudentID(ctx context.Context, studentID int64) ([]model.Mark, error)
	FindBySubjectID(ctx context.Context, subjectID int64) ([]model.Mark, error)
	FindByStudentAndSubject(ctx context.Context, studentID, subjectID int64) ([]model.Mark, error)
	FindByValue(ctx context.Context, value int) ([]model.Mark, error)
	// AverageByStudentID returns nil when the student has no marks.
	AverageByStudentID(ctx context.Context, studentID int64) (*float64, error)
	// AverageBySubjectID returns nil when the subject has no marks.
	AverageBySubjectID(ctx context.Context, subjectID int64) (*float64, error)
	Create(ctx context.Context, m model.Mark) (model.Mark, error)
	Delete(ctx context.Context, id int64) error
	// DeleteSpecific deletes the marks of a student in a subject with the
	// given value, restricted to one mark when id is non-nil, and returns the
	// number of deleted rows.
	DeleteSpecific(ctx context.Context, studentID, subjectID int64, value int, id *int64) (int64, error)
}

// EnrollmentRepository persists the student to subject relation.
type EnrollmentRepository interface {
	Enroll(ctx context.Context, studentID, subjectID int64) error
	Unenroll(ctx context.Context, studentID, subjectID int64) error
	SubjectsByStudentID(ctx context.Context, studentID int64) ([]model.Subject, error)
	StudentsBySubjectID(ctx context.Context, subjectID int64) ([]model.Student, error)
}
