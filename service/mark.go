package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Keksclan/gradebook/cache"
	"github.com/Keksclan/gradebook/model"
	"go.uber.org/zap"
)

// SubjectLister lists the subjects assigned to a student.
type SubjectLister interface {
	SubjectsByStudent(ctx context.Context, studentID int64) ([]model.Subject, error)
}

// MarkService manages marks and their averages.
type MarkService struct {
	repo        MarkRepository
	students    StudentRepository
	subjects    SubjectRepository
	assignments SubjectLister
	memo        memo
}

// NewMarkService returns a MarkService caching into c. assignments decides
// whether a subject is assigned to a student.
func NewMarkService(
	repo MarkRepository,
	students StudentRepository,
	subjects SubjectRepository,
	assignments SubjectLister,
	c *cache.Cache[string, any],
	log *zap.Logger,
) *MarkService {
	return &MarkService{
		repo:        repo,
		students:    students,
		subjects:    subjects,
		assignments: assignments,
		memo:        newMemo("marks", c, log),
	}
}

// ReadMarks lists marks filtered by student and/or subject. When both are
// given the subject must be assigned to the student.
func (s *MarkService) ReadMarks(ctx context.Context, studentID, subjectID *int64) ([]model.Mark, error) {
	if studentID != nil && subjectID != nil {
		if err := s.ensureAssigned(ctx, *studentID, *subjectID); err != nil {
			return nil, err
		}
	}
	key := cache.Key("marks", studentID, subjectID)
	return cached(ctx, s.memo, key, func(ctx context.Context) ([]model.Mark, error) {
		if studentID != nil {
			if err := s.ensureStudent(ctx, *studentID); err != nil {
				return nil, err
			}
		}
		if subjectID != nil {
			if err := s.ensureSubject(ctx, *subjectID); err != nil {
				return nil, err
			}
		}
		switch {
		case studentID != nil && subjectID != nil:
			return s.repo.FindByStudentAndSubject(ctx, *studentID, *subjectID)
		case studentID != nil:
			return s.repo.FindByStudentID(ctx, *studentID)
		case subjectID != nil:
			return s.repo.FindBySubjectID(ctx, *subjectID)
		default:
			return s.repo.FindAll(ctx)
		}
	})
}

// FindByValue lists marks with the given value.
func (s *MarkService) FindByValue(ctx context.Context, value int) ([]model.Mark, error) {
	return cached(ctx, s.memo, cache.Key("value", value), func(ctx context.Context) ([]model.Mark, error) {
		return s.repo.FindByValue(ctx, value)
	})
}

// AverageByStudent returns the student's average mark, or nil when the
// student has no marks. A nil average is cached like any other.
func (s *MarkService) AverageByStudent(ctx context.Context, studentID int64) (*float64, error) {
	return cached(ctx, s.memo, cache.Key("avg", "student", studentID), func(ctx context.Context) (*float64, error) {
		return s.repo.AverageByStudentID(ctx, studentID)
	})
}

// AverageBySubject returns the subject's average mark, or nil when the
// subject has no marks.
func (s *MarkService) AverageBySubject(ctx context.Context, subjectID int64) (*float64, error) {
	return cached(ctx, s.memo, cache.Key("avg", "subject", subjectID), func(ctx context.Context) (*float64, error) {
		return s.repo.AverageBySubjectID(ctx, subjectID)
	})
}

// AddMark records a mark of a student in a subject assigned to them.
func (s *MarkService) AddMark(ctx context.Context, m model.Mark) (model.Mark, error) {
	if m.Value <= 0 {
		return model.Mark{}, invalidArgument("mark value must be positive, got %d", m.Value)
	}
	if err := s.ensureStudent(ctx, m.StudentID); err != nil {
		return model.Mark{}, err
	}
	if err := s.ensureSubject(ctx, m.SubjectID); err != nil {
		return model.Mark{}, err
	}
	if err := s.ensureAssigned(ctx, m.StudentID, m.SubjectID); err != nil {
		return model.Mark{}, err
	}
	created, err := s.repo.Create(ctx, m)
	if err != nil {
		return model.Mark{}, err
	}
	s.memo.remove(markKeys(created)...)
	return created, nil
}

// DeleteMark deletes a mark by id.
func (s *MarkService) DeleteMark(ctx context.Context, id int64) error {
	m, ok, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return notFound("Mark", id)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.memo.remove(markKeys(m)...)
	return nil
}

// DeleteMarkSpecific deletes the student's marks with the given value in the
// named subject, or only the mark with the given id when id is set.
func (s *MarkService) DeleteMarkSpecific(ctx context.Context, studentID int64, subjectName string, value int, id *int64) error {
	sub, ok, err := s.subjects.FindByName(ctx, subjectName)
	if err != nil {
		return err
	}
	if !ok {
		return notFound("Subject", subjectName)
	}

	marks, err := s.repo.FindByStudentAndSubject(ctx, studentID, sub.ID)
	if err != nil {
		return err
	}
	n, err := s.repo.DeleteSpecific(ctx, studentID, sub.ID, value, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("Mark", fmt.Sprintf("student=%d subject=%q value=%d", studentID, subjectName, value))
	}
	for _, m := range marks {
		if m.Value == value && (id == nil || m.ID == *id) {
			s.memo.remove(markKeys(m)...)
		}
	}
	return nil
}

// ClearCacheForStudent drops every cached mark list and average that involves
// the student.
func (s *MarkService) ClearCacheForStudent(ctx context.Context, studentID int64) error {
	marks, err := s.repo.FindByStudentID(ctx, studentID)
	if err != nil {
		return fmt.Errorf("clear mark cache for student %d: %w", studentID, err)
	}
	for _, m := range marks {
		s.memo.remove(markKeys(m)...)
	}
	s.memo.remove(cache.Key("marks", studentID, nil), cache.Key("avg", "student", studentID))
	s.memo.removePrefix("marks-" + strconv.FormatInt(studentID, 10) + "-")
	return nil
}

// ClearCacheForSubject drops every cached mark list and average that involves
// the subject.
func (s *MarkService) ClearCacheForSubject(ctx context.Context, subjectID int64) error {
	marks, err := s.repo.FindBySubjectID(ctx, subjectID)
	if err != nil {
		return fmt.Errorf("clear mark cache for subject %d: %w", subjectID, err)
	}
	for _, m := range marks {
		s.memo.remove(markKeys(m)...)
	}
	s.memo.remove(cache.Key("marks", nil, subjectID), cache.Key("avg", "subject", subjectID))
	return nil
}

// markKeys lists every key whose value depends on m.
func markKeys(m model.Mark) []string {
	return []string{
		cache.Key("mark", m.ID),
		cache.Key("value", m.Value),
		cache.Key("marks", m.StudentID, m.SubjectID),
		cache.Key("marks", m.StudentID, nil),
		cache.Key("marks", nil, m.SubjectID),
		cache.Key("marks", nil, nil),
		cache.Key("avg", "student", m.StudentID),
		cache.Key("avg", "subject", m.SubjectID),
	}
}

func (s *MarkService) ensureStudent(ctx context.Context, id int64) error {
	if _, ok, err := s.students.FindByID(ctx, id); err != nil {
		return err
	} else if !ok {
		return notFound("Student", id)
	}
	return nil
}

func (s *MarkService) ensureSubject(ctx context.Context, id int64) error {
	if _, ok, err := s.subjects.FindByID(ctx, id); err != nil {
		return err
	} else if !ok {
		return notFound("Subject", id)
	}
	return nil
}

func (s *MarkService) ensureAssigned(ctx context.Context, studentID, subjectID int64) error {
	subjects, err := s.assignments.SubjectsByStudent(ctx, studentID)
	if err != nil {
		return err
	}
	for _, sub := range subjects {
		if sub.ID == subjectID {
			return nil
		}
	}
	return fmt.Errorf("%w: subject %d, student %d", ErrSubjectNotAssigned, subjectID, studentID)
}
