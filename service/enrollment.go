package service

import (
	"context"
	"fmt"

	"github.com/Keksclan/gradebook/cache"
	"github.com/Keksclan/gradebook/model"
	"go.uber.org/zap"
)

// EnrollmentService manages which subjects are assigned to which students.
type EnrollmentService struct {
	repo     EnrollmentRepository
	students StudentRepository
	subjects SubjectRepository
	memo     memo
}

// NewEnrollmentService returns an EnrollmentService caching into c.
func NewEnrollmentService(
	repo EnrollmentRepository,
	students StudentRepository,
	subjects SubjectRepository,
	c *cache.Cache[string, any],
	log *zap.Logger,
) *EnrollmentService {
	return &EnrollmentService{
		repo:     repo,
		students: students,
		subjects: subjects,
		memo:     newMemo("enrollment", c, log),
	}
}

// AddSubjectToStudent assigns a subject to a student. Assigning twice is a
// no-op.
func (s *EnrollmentService) AddSubjectToStudent(ctx context.Context, studentID, subjectID int64) error {
	if _, err := s.student(ctx, studentID); err != nil {
		return err
	}
	if _, err := s.subject(ctx, subjectID); err != nil {
		return err
	}
	if err := s.repo.Enroll(ctx, studentID, subjectID); err != nil {
		return err
	}
	s.memo.remove(enrollmentKeys(studentID, subjectID)...)
	return nil
}

// RemoveSubjectFromStudent removes a subject assignment.
func (s *EnrollmentService) RemoveSubjectFromStudent(ctx context.Context, studentID, subjectID int64) error {
	if _, err := s.student(ctx, studentID); err != nil {
		return err
	}
	if _, err := s.subject(ctx, subjectID); err != nil {
		return err
	}
	if err := s.repo.Unenroll(ctx, studentID, subjectID); err != nil {
		return err
	}
	s.memo.remove(enrollmentKeys(studentID, subjectID)...)
	return nil
}

// SubjectsByStudent lists the subjects assigned to a student.
func (s *EnrollmentService) SubjectsByStudent(ctx context.Context, studentID int64) ([]model.Subject, error) {
	return cached(ctx, s.memo, cache.Key("subjects", studentID), func(ctx context.Context) ([]model.Subject, error) {
		if _, err := s.student(ctx, studentID); err != nil {
			return nil, err
		}
		return s.repo.SubjectsByStudentID(ctx, studentID)
	})
}

// StudentsBySubject lists the students enrolled in a subject.
func (s *EnrollmentService) StudentsBySubject(ctx context.Context, subjectID int64) ([]model.Student, error) {
	return cached(ctx, s.memo, cache.Key("students", subjectID), func(ctx context.Context) ([]model.Student, error) {
		if _, err := s.subject(ctx, subjectID); err != nil {
			return nil, err
		}
		return s.repo.StudentsBySubjectID(ctx, subjectID)
	})
}

// StudentWithSubjects returns a student together with their subjects.
func (s *EnrollmentService) StudentWithSubjects(ctx context.Context, studentID int64) (model.StudentWithSubjects, error) {
	key := cache.Key("student-with-subjects", studentID)
	return cached(ctx, s.memo, key, func(ctx context.Context) (model.StudentWithSubjects, error) {
		st, err := s.student(ctx, studentID)
		if err != nil {
			return model.StudentWithSubjects{}, err
		}
		subjects, err := s.repo.SubjectsByStudentID(ctx, studentID)
		if err != nil {
			return model.StudentWithSubjects{}, err
		}
		return model.StudentWithSubjects{Student: st, Subjects: subjects}, nil
	})
}

// SubjectWithStudents returns a subject together with its students.
func (s *EnrollmentService) SubjectWithStudents(ctx context.Context, subjectID int64) (model.SubjectWithStudents, error) {
	key := cache.Key("subject-with-students", subjectID)
	return cached(ctx, s.memo, key, func(ctx context.Context) (model.SubjectWithStudents, error) {
		sub, err := s.subject(ctx, subjectID)
		if err != nil {
			return model.SubjectWithStudents{}, err
		}
		students, err := s.repo.StudentsBySubjectID(ctx, subjectID)
		if err != nil {
			return model.SubjectWithStudents{}, err
		}
		return model.SubjectWithStudents{Subject: sub, Students: students}, nil
	})
}

// ClearCacheForStudent drops the assignments cached for a student and the
// student lists of their subjects.
func (s *EnrollmentService) ClearCacheForStudent(ctx context.Context, studentID int64) error {
	subjects, err := s.repo.SubjectsByStudentID(ctx, studentID)
	if err != nil {
		return fmt.Errorf("clear enrollment cache for student %d: %w", studentID, err)
	}
	keys := []string{
		cache.Key("subjects", studentID),
		cache.Key("student-with-subjects", studentID),
	}
	for _, sub := range subjects {
		keys = append(keys, cache.Key("students", sub.ID), cache.Key("subject-with-students", sub.ID))
	}
	s.memo.remove(keys...)
	return nil
}

// ClearCacheForSubject drops the students cached for a subject and the
// subject lists of those students.
func (s *EnrollmentService) ClearCacheForSubject(ctx context.Context, subjectID int64) error {
	students, err := s.repo.StudentsBySubjectID(ctx, subjectID)
	if err != nil {
		return fmt.Errorf("clear enrollment cache for subject %d: %w", subjectID, err)
	}
	keys := []string{
		cache.Key("students", subjectID),
		cache.Key("subject-with-students", subjectID),
	}
	for _, st := range students {
		keys = append(keys, cache.Key("subjects", st.ID), cache.Key("student-with-subjects", st.ID))
	}
	s.memo.remove(keys...)
	return nil
}

func enrollmentKeys(studentID, subjectID int64) []string {
	return []string{
		cache.Key("subjects", studentID),
		cache.Key("students", subjectID),
		cache.Key("student-with-subjects", studentID),
		cache.Key("subject-with-students", subjectID),
	}
}

func (s *EnrollmentService) student(ctx context.Context, id int64) (model.Student, error) {
	st, ok, err := s.students.FindByID(ctx, id)
	if err != nil {
		return model.Student{}, err
	}
	if !ok {
		return model.Student{}, notFound("Student", nil)
	}
	return st, nil
}

func (s *EnrollmentService) subject(ctx context.Context, id int64) (model.Subject, error) {
	sub, ok, err := s.subjects.FindByID(ctx, id)
	if err != nil {
		return model.Subject{}, err
	}
	if !ok {
		return model.Subject{}, notFound("Subject", nil)
	}
	return sub, nil
}
