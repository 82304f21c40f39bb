package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Keksclan/gradebook/cache"
	"github.com/Keksclan/gradebook/model"
	"go.uber.org/zap"
)

// StudentService manages students.
type StudentService struct {
	repo         StudentRepository
	memo         memo
	invalidators []StudentCacheInvalidator
}

// NewStudentService returns a StudentService caching into c.
func NewStudentService(repo StudentRepository, c *cache.Cache[string, any], log *zap.Logger) *StudentService {
	return &StudentService{repo: repo, memo: newMemo("students", c, log)}
}

// OnStudentChange registers caches that must be cleared whenever a student is
// created, updated or deleted. It must be called before the service is used.
func (s *StudentService) OnStudentChange(inv ...StudentCacheInvalidator) {
	s.invalidators = append(s.invalidators, inv...)
}

// ReadStudents returns the student with the given id when id is set.
// Otherwise it filters by age and orders by name when sort is set.
func (s *StudentService) ReadStudents(ctx context.Context, age *int, sort *string, id *int64) ([]model.Student, error) {
	key := cache.Key("students", age, sort, id)
	return cached(ctx, s.memo, key, func(ctx context.Context) ([]model.Student, error) {
		switch {
		case id != nil:
			st, ok, err := s.repo.FindByID(ctx, *id)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, notFound("Student", *id)
			}
			return []model.Student{st}, nil
		case age != nil && sort != nil:
			return s.repo.FindByAgeSortedByName(ctx, *age, *sort)
		case age != nil:
			return s.repo.FindByAge(ctx, *age)
		case sort != nil:
			return s.repo.SortedByName(ctx, *sort)
		default:
			return s.repo.FindAll(ctx)
		}
	})
}

// FindByID returns a single student.
func (s *StudentService) FindByID(ctx context.Context, id int64) (model.Student, error) {
	return cached(ctx, s.memo, cache.Key("student", id), func(ctx context.Context) (model.Student, error) {
		st, ok, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return model.Student{}, err
		}
		if !ok {
			return model.Student{}, notFound("Student", id)
		}
		return st, nil
	})
}

// FindByGroupID returns the members of a group.
func (s *StudentService) FindByGroupID(ctx context.Context, groupID int64) ([]model.Student, error) {
	return cached(ctx, s.memo, cache.Key("group", groupID), func(ctx context.Context) ([]model.Student, error) {
		return s.repo.FindByGroupID(ctx, groupID)
	})
}

// AddStudent creates a student.
func (s *StudentService) AddStudent(ctx context.Context, st model.Student) (model.Student, error) {
	if err := validateStudent(st.Name, st.Age); err != nil {
		return model.Student{}, err
	}
	st.Name = strings.TrimSpace(st.Name)
	created, err := s.repo.Create(ctx, st)
	if err != nil {
		return model.Student{}, err
	}
	s.invalidate(created)
	s.notifyCommitted(ctx, created.ID)
	return created, nil
}

// UpdateStudent changes the name and age of an existing student.
func (s *StudentService) UpdateStudent(ctx context.Context, id int64, name string, age int) (model.Student, error) {
	if err := validateStudent(name, age); err != nil {
		return model.Student{}, err
	}
	st, ok, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return model.Student{}, err
	}
	if !ok {
		return model.Student{}, notFound("Student", id)
	}
	st.Name = strings.TrimSpace(name)
	st.Age = age
	if err := s.repo.Update(ctx, st); err != nil {
		return model.Student{}, err
	}
	s.invalidate(st)
	s.notifyCommitted(ctx, id)
	return st, nil
}

// DeleteStudent deletes a student together with the caches derived from it.
func (s *StudentService) DeleteStudent(ctx context.Context, id int64) error {
	st, ok, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return notFound("Student", id)
	}
	// Dependent caches enumerate the student's rows, so clear them while the
	// rows still exist.
	if err := s.notify(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(st)
	return nil
}

// ClearCacheForGroup drops the cached lists affected by a change in the
// membership of groupID.
func (s *StudentService) ClearCacheForGroup(_ context.Context, groupID int64, studentIDs []int64) error {
	keys := make([]string, 0, len(studentIDs)+1)
	keys = append(keys, cache.Key("group", groupID))
	for _, id := range studentIDs {
		keys = append(keys, cache.Key("student", id))
	}
	s.memo.remove(keys...)
	s.memo.removePrefix("students-")
	return nil
}

func (s *StudentService) invalidate(st model.Student) {
	keys := []string{cache.Key("student", st.ID)}
	if st.GroupID != nil {
		keys = append(keys, cache.Key("group", *st.GroupID))
	}
	s.memo.remove(keys...)
	s.memo.removePrefix("students-")
}

func (s *StudentService) notify(ctx context.Context, id int64) error {
	var errs []error
	for _, inv := range s.invalidators {
		if err := inv.ClearCacheForStudent(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// notifyCommitted runs the invalidators after a committed write. The write
// stands either way, so failures are logged rather than returned.
func (s *StudentService) notifyCommitted(ctx context.Context, id int64) {
	if err := s.notify(ctx, id); err != nil {
		s.memo.log.Error("dependent cache invalidation failed",
			zap.Int64("student_id", id),
			zap.Error(err),
		)
	}
}

func validateStudent(name string, age int) error {
	if strings.TrimSpace(name) == "" {
		return invalidArgument("student name must not be empty")
	}
	if age <= 0 {
		return invalidArgument("student age must be positive, got %d", age)
	}
	return nil
}
