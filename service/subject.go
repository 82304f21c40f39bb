package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Keksclan/gradebook/cache"
	"github.com/Keksclan/gradebook/model"
	"go.uber.org/zap"
)

const defaultSort = "default"

// SubjectService manages subjects.
type SubjectService struct {
	repo         SubjectRepository
	memo         memo
	invalidators []SubjectCacheInvalidator
}

// NewSubjectService returns a SubjectService caching into c.
func NewSubjectService(repo SubjectRepository, c *cache.Cache[string, any], log *zap.Logger) *SubjectService {
	return &SubjectService{repo: repo, memo: newMemo("subjects", c, log)}
}

// OnSubjectChange registers caches that must be cleared whenever a subject is
// deleted. It must be called before the service is used.
func (s *SubjectService) OnSubjectChange(inv ...SubjectCacheInvalidator) {
	s.invalidators = append(s.invalidators, inv...)
}

func subjectIDKey(id int64) string { return cache.Key("subject", id) }

// Names live in their own namespace so a subject called "7" cannot shadow the
// subject with id 7.
func subjectNameKey(name string) string { return cache.Key("subject", "name", name) }

// ReadSubjects searches subjects by name when pattern is non-nil (even if
// empty) and orders the result by name when sort is "asc". A nil sort means
// "default", the store's natural order.
func (s *SubjectService) ReadSubjects(ctx context.Context, pattern, sort *string) ([]model.Subject, error) {
	order := defaultSort
	if sort != nil {
		order = *sort
	}
	key := cache.Key("subjects", pattern, order)
	return cached(ctx, s.memo, key, func(ctx context.Context) ([]model.Subject, error) {
		asc := strings.EqualFold(order, "asc")
		if pattern != nil {
			subjects, err := s.repo.FindByNameContaining(ctx, *pattern)
			if err != nil {
				return nil, err
			}
			if asc {
				subjects = sortSubjectsByName(subjects)
			}
			return subjects, nil
		}
		if asc {
			return s.repo.FindAllSortedByName(ctx)
		}
		return s.repo.FindAll(ctx)
	})
}

// FindByID returns a single subject.
func (s *SubjectService) FindByID(ctx context.Context, id int64) (model.Subject, error) {
	return cached(ctx, s.memo, subjectIDKey(id), func(ctx context.Context) (model.Subject, error) {
		sub, ok, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return model.Subject{}, err
		}
		if !ok {
			return model.Subject{}, notFound("Subject", id)
		}
		return sub, nil
	})
}

// FindByName returns a single subject.
func (s *SubjectService) FindByName(ctx context.Context, name string) (model.Subject, error) {
	return cached(ctx, s.memo, subjectNameKey(name), func(ctx context.Context) (model.Subject, error) {
		sub, ok, err := s.repo.FindByName(ctx, name)
		if err != nil {
			return model.Subject{}, err
		}
		if !ok {
			return model.Subject{}, notFound("Subject", name)
		}
		return sub, nil
	})
}

// ExistsByName reports whether a subject with the given name exists. It always
// asks the store.
func (s *SubjectService) ExistsByName(ctx context.Context, name string) (bool, error) {
	return s.repo.ExistsByName(ctx, name)
}

// AddSubject creates a subject with a unique name.
func (s *SubjectService) AddSubject(ctx context.Context, name string) (model.Subject, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Subject{}, invalidArgument("subject name must not be empty")
	}
	exists, err := s.repo.ExistsByName(ctx, name)
	if err != nil {
		return model.Subject{}, err
	}
	if exists {
		return model.Subject{}, fmt.Errorf("%w: subject %q already exists", ErrConflict, name)
	}
	sub, err := s.repo.Create(ctx, name)
	if err != nil {
		return model.Subject{}, err
	}
	s.memo.removePrefix("subjects-")
	s.memo.remove(subjectNameKey(name))
	return sub, nil
}

// DeleteSubject deletes a subject together with the caches derived from it.
func (s *SubjectService) DeleteSubject(ctx context.Context, id int64) error {
	sub, ok, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return notFound("Subject", id)
	}
	return s.delete(ctx, sub)
}

// DeleteSubjectByName deletes a subject identified by name.
func (s *SubjectService) DeleteSubjectByName(ctx context.Context, name string) error {
	sub, ok, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		return notFound("Subject", name)
	}
	return s.delete(ctx, sub)
}

func (s *SubjectService) delete(ctx context.Context, sub model.Subject) error {
	var errs []error
	for _, inv := range s.invalidators {
		if err := inv.ClearCacheForSubject(ctx, sub.ID); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, sub.ID); err != nil {
		return err
	}
	s.memo.remove(subjectIDKey(sub.ID), subjectNameKey(sub.Name))
	s.memo.removePrefix("subjects-")
	return nil
}
