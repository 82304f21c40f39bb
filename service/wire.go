package service

import (
	"github.com/Keksclan/gradebook/cache"
	"go.uber.org/zap"
)

// Repositories groups the stores the services read from.
type Repositories struct {
	Students   StudentRepository
	Groups     GroupRepository
	Subjects   SubjectRepository
	Marks      MarkRepository
	Enrollment EnrollmentRepository
}

// Caches holds one cache per service. Caches are never shared between
// services.
type Caches struct {
	Students   *cache.Cache[string, any]
	Groups     *cache.Cache[string, any]
	Subjects   *cache.Cache[string, any]
	Marks      *cache.Cache[string, any]
	Enrollment *cache.Cache[string, any]
}

// All returns every cache in c.
func (c Caches) All() []*cache.Cache[string, any] {
	return []*cache.Cache[string, any]{c.Students, c.Groups, c.Subjects, c.Marks, c.Enrollment}
}

// Set is the fully wired collection of services.
type Set struct {
	Students   *StudentService
	Groups     *GroupService
	Subjects   *SubjectService
	Marks      *MarkService
	Enrollment *EnrollmentService
}

// NewSet builds every service and registers the cross-service
// invalidation hooks: student changes clear mark, enrollment and group
// caches, group changes clear student caches and subject changes clear mark
// and enrollment caches.
func NewSet(r Repositories, c Caches, log *zap.Logger) *Set {
	s := &Set{
		Students:   NewStudentService(r.Students, c.Students, log),
		Groups:     NewGroupService(r.Groups, r.Students, c.Groups, log),
		Subjects:   NewSubjectService(r.Subjects, c.Subjects, log),
		Enrollment: NewEnrollmentService(r.Enrollment, r.Students, r.Subjects, c.Enrollment, log),
	}
	s.Marks = NewMarkService(r.Marks, r.Students, r.Subjects, s.Enrollment, c.Marks, log)

	s.Students.OnStudentChange(s.Marks, s.Enrollment, s.Groups)
	s.Groups.OnGroupChange(s.Students)
	s.Subjects.OnSubjectChange(s.Marks, s.Enrollment)
	return s
}
