// Package service implements the gradebook use cases. Every service keeps
// one cache in front of its repositories: reads go through the cache and
// writes remove the keys they make stale.
package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/Keksclan/gradebook/cache"
	"github.com/Keksclan/gradebook/model"
	"go.uber.org/zap"
)

// StudentCacheInvalidator drops cached data derived from a student.
type StudentCacheInvalidator interface {
	ClearCacheForStudent(ctx context.Context, studentID int64) error
}

// SubjectCacheInvalidator drops cached data derived from a subject.
type SubjectCacheInvalidator interface {
	ClearCacheForSubject(ctx context.Context, subjectID int64) error
}

// GroupCacheInvalidator drops cached data derived from a group's membership.
type GroupCacheInvalidator interface {
	ClearCacheForGroup(ctx context.Context, groupID int64, studentIDs []int64) error
}

// memo is the read-through cache of a single service.
type memo struct {
	loader *cache.Loader[any]
	log    *zap.Logger
}

func newMemo(service string, c *cache.Cache[string, any], log *zap.Logger) memo {
	if log == nil {
		log = zap.NewNop()
	}
	return memo{
		loader: cache.NewLoader(c),
		log:    log.With(zap.String("service", service), zap.String("cache", c.Name())),
	}
}

func (m memo) cache() *cache.Cache[string, any] { return m.loader.Cache() }

func (m memo) remove(keys ...string) {
	m.loader.Forget(keys...)
	m.log.Debug("cache invalidated", zap.Strings("keys", keys))
}

func (m memo) removePrefix(prefix string) {
	n := m.loader.ForgetIf(func(k string) bool { return strings.HasPrefix(k, prefix) })
	m.log.Debug("cache invalidated by prefix", zap.String("prefix", prefix), zap.Int("removed", n))
}

func (m memo) clear() {
	n := m.loader.ForgetIf(func(string) bool { return true })
	m.log.Debug("cache cleared", zap.Int("removed", n))
}

// cached returns the value stored under key or loads, caches and returns it.
// Values handed out are shared with the cache and must not be modified.
func cached[T any](ctx context.Context, m memo, key string, load func(context.Context) (T, error)) (T, error) {
	v, hit, err := m.loader.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return load(ctx)
	})
	var zero T
	if err != nil {
		return zero, err
	}
	if hit {
		m.log.Debug("cache hit", zap.String("key", key))
	} else {
		m.log.Debug("cache miss", zap.String("key", key))
	}
	t, ok := v.(T)
	if !ok {
		m.loader.Forget(key)
		return zero, fmt.Errorf("cache entry %q holds %T", key, v)
	}
	return t, nil
}

func isAsc(sort *string) bool {
	return sort != nil && strings.EqualFold(*sort, "asc")
}

func sortGroupsByName(groups []model.Group) []model.Group {
	out := slices.Clone(groups)
	slices.SortStableFunc(out, func(a, b model.Group) int { return strings.Compare(a.Name, b.Name) })
	return out
}

func sortSubjectsByName(subjects []model.Subject) []model.Subject {
	out := slices.Clone(subjects)
	slices.SortStableFunc(out, func(a, b model.Subject) int { return strings.Compare(a.Name, b.Name) })
	return out
}
