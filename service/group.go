package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/Keksclan/gradebook/cache"
	"github.com/Keksclan/gradebook/model"
	"go.uber.org/zap"
)

const groupListPrefix = "allGroups"

// GroupService manages groups of students.
type GroupService struct {
	repo         GroupRepository
	students     StudentRepository
	memo         memo
	invalidators []GroupCacheInvalidator
}

// NewGroupService returns a GroupService caching into c.
func NewGroupService(repo GroupRepository, students StudentRepository, c *cache.Cache[string, any], log *zap.Logger) *GroupService {
	return &GroupService{repo: repo, students: students, memo: newMemo("groups", c, log)}
}

// OnGroupChange registers caches that must be cleared whenever the membership
// of a group changes. It must be called before the service is used.
func (s *GroupService) OnGroupChange(inv ...GroupCacheInvalidator) {
	s.invalidators = append(s.invalidators, inv...)
}

func groupIDKey(id int64) string     { return "group_" + strconv.FormatInt(id, 10) }
func groupNameKey(name string) string { return "name_" + name }

// ReadGroups lists groups whose name contains pattern (all groups when pattern
// is nil or empty), ordered by name when sort is "asc".
func (s *GroupService) ReadGroups(ctx context.Context, pattern, sort *string) ([]model.Group, error) {
	key := cache.Key(groupListPrefix, pattern, sort)
	return cached(ctx, s.memo, key, func(ctx context.Context) ([]model.Group, error) {
		if pattern != nil && *pattern != "" {
			groups, err := s.repo.FindByNameContaining(ctx, *pattern)
			if err != nil {
				return nil, err
			}
			if isAsc(sort) {
				groups = sortGroupsByName(groups)
			}
			return groups, nil
		}
		if isAsc(sort) {
			return s.repo.FindAllSortedByName(ctx)
		}
		return s.repo.FindAll(ctx)
	})
}

// FindByID returns a group with its students.
func (s *GroupService) FindByID(ctx context.Context, id int64) (model.Group, error) {
	return cached(ctx, s.memo, groupIDKey(id), func(ctx context.Context) (model.Group, error) {
		g, ok, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return model.Group{}, err
		}
		if !ok {
			return model.Group{}, notFound("Group", id)
		}
		return g, nil
	})
}

// FindByName returns a group with its students.
func (s *GroupService) FindByName(ctx context.Context, name string) (model.Group, error) {
	return cached(ctx, s.memo, groupNameKey(name), func(ctx context.Context) (model.Group, error) {
		g, ok, err := s.repo.FindByName(ctx, name)
		if err != nil {
			return model.Group{}, err
		}
		if !ok {
			return model.Group{}, notFound("Group", name)
		}
		return g, nil
	})
}

// AddGroup creates a group and moves the given students into it. Every
// student must exist and must not belong to another group yet.
func (s *GroupService) AddGroup(ctx context.Context, name string, studentIDs []int64) (model.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Group{}, invalidArgument("group name must not be empty")
	}
	if _, ok, err := s.repo.FindByName(ctx, name); err != nil {
		return model.Group{}, err
	} else if ok {
		return model.Group{}, fmt.Errorf("%w: group %q already exists", ErrConflict, name)
	}

	ids := slices.Clone(studentIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	students, err := s.students.FindAllByID(ctx, ids)
	if err != nil {
		return model.Group{}, err
	}
	if len(students) != len(ids) {
		found := make(map[int64]bool, len(students))
		for _, st := range students {
			found[st.ID] = true
		}
		var missing []int64
		for _, id := range ids {
			if !found[id] {
				missing = append(missing, id)
			}
		}
		return model.Group{}, notFound("Students", missing)
	}
	var taken []int64
	for _, st := range students {
		if st.GroupID != nil {
			taken = append(taken, st.ID)
		}
	}
	if len(taken) > 0 {
		return model.Group{}, fmt.Errorf("%w: students already in a group: %v", ErrConflict, taken)
	}

	g, err := s.repo.Create(ctx, name, ids)
	if err != nil {
		return model.Group{}, err
	}
	s.memo.removePrefix(groupListPrefix)
	s.memo.cache().Put(groupIDKey(g.ID), g)
	s.memo.cache().Put(groupNameKey(g.Name), g)
	s.notifyCommitted(ctx, g.ID, ids)
	return g, nil
}

// DeleteGroup deletes a group and detaches its students.
func (s *GroupService) DeleteGroup(ctx context.Context, id int64) error {
	g, ok, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return notFound("Group", id)
	}
	return s.delete(ctx, g)
}

// DeleteGroupByName deletes a group identified by name.
func (s *GroupService) DeleteGroupByName(ctx context.Context, name string) error {
	g, ok, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		return notFound("Group", name)
	}
	return s.delete(ctx, g)
}

func (s *GroupService) delete(ctx context.Context, g model.Group) error {
	if err := s.repo.Delete(ctx, g.ID); err != nil {
		return err
	}
	s.memo.remove(groupIDKey(g.ID), groupNameKey(g.Name))
	s.memo.removePrefix(groupListPrefix)

	ids := make([]int64, 0, len(g.Students))
	for _, st := range g.Students {
		ids = append(ids, st.ID)
	}
	s.notifyCommitted(ctx, g.ID, ids)
	return nil
}

// ClearCacheForStudent drops every cached group, since any of them may embed
// the student.
func (s *GroupService) ClearCacheForStudent(context.Context, int64) error {
	s.memo.clear()
	return nil
}

// notifyCommitted runs the invalidators after a committed write and logs
// their failures.
func (s *GroupService) notifyCommitted(ctx context.Context, groupID int64, studentIDs []int64) {
	if err := s.notify(ctx, groupID, studentIDs); err != nil {
		s.memo.log.Error("dependent cache invalidation failed",
			zap.Int64("group_id", groupID),
			zap.Error(err),
		)
	}
}

func (s *GroupService) notify(ctx context.Context, groupID int64, studentIDs []int64) error {
	var errs []error
	for _, inv := range s.invalidators {
		if err := inv.ClearCacheForGroup(ctx, groupID, studentIDs); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
