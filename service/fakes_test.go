package service

import (
	"context"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Keksclan/gradebook/cache"
	"github.com/Keksclan/gradebook/model"
)

// fakeDB is an in-memory store shared by the fake repositories. It counts
// calls per method so tests can tell cache hits from store reads.
type fakeDB struct {
	mu       sync.Mutex
	nextID   int64
	students map[int64]model.Student
	groups   map[int64]string
	subjects map[int64]model.Subject
	marks    map[int64]model.Mark
	enrolled map[[2]int64]bool
	calls    map[string]int
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		students: map[int64]model.Student{},
		groups:   map[int64]string{},
		subjects: map[int64]model.Subject{},
		marks:    map[int64]model.Mark{},
		enrolled: map[[2]int64]bool{},
		calls:    map[string]int{},
	}
}

func (db *fakeDB) call(name string) {
	db.calls[name]++
}

func (db *fakeDB) count(name string) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.calls[name]
}

func (db *fakeDB) id() int64 {
	db.nextID++
	return db.nextID
}

func sortedStudents(m map[int64]model.Student, keep func(model.Student) bool) []model.Student {
	var out []model.Student
	for _, s := range m {
		if keep == nil || keep(s) {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b model.Student) int { return int(a.ID - b.ID) })
	return out
}

func byName(sort string, in []model.Student) []model.Student {
	out := slices.Clone(in)
	slices.SortStableFunc(out, func(a, b model.Student) int { return strings.Compare(a.Name, b.Name) })
	if strings.EqualFold(sort, "desc") {
		slices.Reverse(out)
	}
	return out
}

// students

type fakeStudents struct{ db *fakeDB }

func (r fakeStudents) FindAll(context.Context) ([]model.Student, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("students.FindAll")
	return sortedStudents(r.db.students, nil), nil
}

func (r fakeStudents) FindByID(_ context.Context, id int64) (model.Student, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("students.FindByID")
	s, ok := r.db.students[id]
	return s, ok, nil
}

func (r fakeStudents) FindAllByID(_ context.Context, ids []int64) ([]model.Student, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("students.FindAllByID")
	return sortedStudents(r.db.students, func(s model.Student) bool { return slices.Contains(ids, s.ID) }), nil
}

func (r fakeStudents) FindByAge(_ context.Context, age int) ([]model.Student, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("students.FindByAge")
	return sortedStudents(r.db.students, func(s model.Student) bool { return s.Age == age }), nil
}

func (r fakeStudents) FindByAgeSortedByName(_ context.Context, age int, sort string) ([]model.Student, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("students.FindByAgeSortedByName")
	return byName(sort, sortedStudents(r.db.students, func(s model.Student) bool { return s.Age == age })), nil
}

func (r fakeStudents) SortedByName(_ context.Context, sort string) ([]model.Student, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("students.SortedByName")
	return byName(sort, sortedStudents(r.db.students, nil)), nil
}

func (r fakeStudents) FindByGroupID(_ context.Context, groupID int64) ([]model.Student, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("students.FindByGroupID")
	return sortedStudents(r.db.students, func(s model.Student) bool {
		return s.GroupID != nil && *s.GroupID == groupID
	}), nil
}

func (r fakeStudents) Create(_ context.Context, s model.Student) (model.Student, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("students.Create")
	s.ID = r.db.id()
	r.db.students[s.ID] = s
	return s, nil
}

func (r fakeStudents) Update(_ context.Context, s model.Student) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("students.Update")
	r.db.students[s.ID] = s
	return nil
}

func (r fakeStudents) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("students.Delete")
	delete(r.db.students, id)
	for k, m := range r.db.marks {
		if m.StudentID == id {
			delete(r.db.marks, k)
		}
	}
	for k := range r.db.enrolled {
		if k[0] == id {
			delete(r.db.enrolled, k)
		}
	}
	return nil
}

// groups

type fakeGroups struct{ db *fakeDB }

func (r fakeGroups) groupLocked(id int64) model.Group {
	return model.Group{
		ID:   id,
		Name: r.db.groups[id],
		Students: sortedStudents(r.db.students, func(s model.Student) bool {
			return s.GroupID != nil && *s.GroupID == id
		}),
	}
}

func (r fakeGroups) list(keep func(string) bool) []model.Group {
	var out []model.Group
	for id, name := range r.db.groups {
		if keep == nil || keep(name) {
			out = append(out, r.groupLocked(id))
		}
	}
	slices.SortFunc(out, func(a, b model.Group) int { return int(a.ID - b.ID) })
	return out
}

func (r fakeGroups) FindAll(context.Context) ([]model.Group, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("groups.FindAll")
	return r.list(nil), nil
}

func (r fakeGroups) FindAllSortedByName(context.Context) ([]model.Group, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("groups.FindAllSortedByName")
	return sortGroupsByName(r.list(nil)), nil
}

func (r fakeGroups) FindByNameContaining(_ context.Context, pattern string) ([]model.Group, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("groups.FindByNameContaining")
	return r.list(func(n string) bool { return strings.Contains(n, pattern) }), nil
}

func (r fakeGroups) FindByID(_ context.Context, id int64) (model.Group, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("groups.FindByID")
	if _, ok := r.db.groups[id]; !ok {
		return model.Group{}, false, nil
	}
	return r.groupLocked(id), true, nil
}

func (r fakeGroups) FindByName(_ context.Context, name string) (model.Group, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("groups.FindByName")
	for id, n := range r.db.groups {
		if n == name {
			return r.groupLocked(id), true, nil
		}
	}
	return model.Group{}, false, nil
}

func (r fakeGroups) Create(_ context.Context, name string, studentIDs []int64) (model.Group, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("groups.Create")
	id := r.db.id()
	r.db.groups[id] = name
	for _, sid := range studentIDs {
		s := r.db.students[sid]
		s.GroupID = &id
		r.db.students[sid] = s
	}
	return r.groupLocked(id), nil
}

func (r fakeGroups) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("groups.Delete")
	delete(r.db.groups, id)
	for sid, s := range r.db.students {
		if s.GroupID != nil && *s.GroupID == id {
			s.GroupID = nil
			r.db.students[sid] = s
		}
	}
	return nil
}

// subjects

type fakeSubjects struct{ db *fakeDB }

func (r fakeSubjects) list(keep func(model.Subject) bool) []model.Subject {
	var out []model.Subject
	for _, s := range r.db.subjects {
		if keep == nil || keep(s) {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b model.Subject) int { return int(a.ID - b.ID) })
	return out
}

func (r fakeSubjects) FindAll(context.Context) ([]model.Subject, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("subjects.FindAll")
	return r.list(nil), nil
}

func (r fakeSubjects) FindAllSortedByName(context.Context) ([]model.Subject, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("subjects.FindAllSortedByName")
	return sortSubjectsByName(r.list(nil)), nil
}

func (r fakeSubjects) FindByNameContaining(_ context.Context, pattern string) ([]model.Subject, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("subjects.FindByNameContaining")
	return r.list(func(s model.Subject) bool { return strings.Contains(s.Name, pattern) }), nil
}

func (r fakeSubjects) FindByID(_ context.Context, id int64) (model.Subject, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("subjects.FindByID")
	s, ok := r.db.subjects[id]
	return s, ok, nil
}

func (r fakeSubjects) FindByName(_ context.Context, name string) (model.Subject, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("subjects.FindByName")
	for _, s := range r.db.subjects {
		if s.Name == name {
			return s, true, nil
		}
	}
	return model.Subject{}, false, nil
}

func (r fakeSubjects) ExistsByName(ctx context.Context, name string) (bool, error) {
	_, ok, err := r.FindByName(ctx, name)
	return ok, err
}

func (r fakeSubjects) Create(_ context.Context, name string) (model.Subject, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("subjects.Create")
	s := model.Subject{ID: r.db.id(), Name: name}
	r.db.subjects[s.ID] = s
	return s, nil
}

func (r fakeSubjects) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("subjects.Delete")
	delete(r.db.subjects, id)
	for k, m := range r.db.marks {
		if m.SubjectID == id {
			delete(r.db.marks, k)
		}
	}
	for k := range r.db.enrolled {
		if k[1] == id {
			delete(r.db.enrolled, k)
		}
	}
	return nil
}

// marks

type fakeMarks struct{ db *fakeDB }

func (r fakeMarks) list(keep func(model.Mark) bool) []model.Mark {
	var out []model.Mark
	for _, m := range r.db.marks {
		if keep == nil || keep(m) {
			out = append(out, m)
		}
	}
	slices.SortFunc(out, func(a, b model.Mark) int { return int(a.ID - b.ID) })
	return out
}

func (r fakeMarks) avg(keep func(model.Mark) bool) *float64 {
	marks := r.list(keep)
	if len(marks) == 0 {
		return nil
	}
	var sum float64
	for _, m := range marks {
		sum += float64(m.Value)
	}
	avg := sum / float64(len(marks))
	return &avg
}

func (r fakeMarks) FindAll(context.Context) ([]model.Mark, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("marks.FindAll")
	return r.list(nil), nil
}

func (r fakeMarks) FindByID(_ context.Context, id int64) (model.Mark, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("marks.FindByID")
	m, ok := r.db.marks[id]
	return m, ok, nil
}

func (r fakeMarks) FindByStudentID(_ context.Context, id int64) ([]model.Mark, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("marks.FindByStudentID")
	return r.list(func(m model.Mark) bool { return m.StudentID == id }), nil
}

func (r fakeMarks) FindBySubjectID(_ context.Context, id int64) ([]model.Mark, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("marks.FindBySubjectID")
	return r.list(func(m model.Mark) bool { return m.SubjectID == id }), nil
}

func (r fakeMarks) FindByStudentAndSubject(_ context.Context, studentID, subjectID int64) ([]model.Mark, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("marks.FindByStudentAndSubject")
	return r.list(func(m model.Mark) bool { return m.StudentID == studentID && m.SubjectID == subjectID }), nil
}

func (r fakeMarks) FindByValue(_ context.Context, v int) ([]model.Mark, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("marks.FindByValue")
	return r.list(func(m model.Mark) bool { return m.Value == v }), nil
}

func (r fakeMarks) AverageByStudentID(_ context.Context, id int64) (*float64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("marks.AverageByStudentID")
	return r.avg(func(m model.Mark) bool { return m.StudentID == id }), nil
}

func (r fakeMarks) AverageBySubjectID(_ context.Context, id int64) (*float64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("marks.AverageBySubjectID")
	return r.avg(func(m model.Mark) bool { return m.SubjectID == id }), nil
}

func (r fakeMarks) Create(_ context.Context, m model.Mark) (model.Mark, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("marks.Create")
	m.ID = r.db.id()
	r.db.marks[m.ID] = m
	return m, nil
}

func (r fakeMarks) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("marks.Delete")
	delete(r.db.marks, id)
	return nil
}

func (r fakeMarks) DeleteSpecific(_ context.Context, studentID, subjectID int64, value int, id *int64) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("marks.DeleteSpecific")
	var n int64
	for k, m := range r.db.marks {
		if m.StudentID == studentID && m.SubjectID == subjectID && m.Value == value && (id == nil || m.ID == *id) {
			delete(r.db.marks, k)
			n++
		}
	}
	return n, nil
}

// enrollment

type fakeEnrollment struct{ db *fakeDB }

func (r fakeEnrollment) Enroll(_ context.Context, studentID, subjectID int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("enrollment.Enroll")
	r.db.enrolled[[2]int64{studentID, subjectID}] = true
	return nil
}

func (r fakeEnrollment) Unenroll(_ context.Context, studentID, subjectID int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("enrollment.Unenroll")
	delete(r.db.enrolled, [2]int64{studentID, subjectID})
	return nil
}

func (r fakeEnrollment) SubjectsByStudentID(_ context.Context, studentID int64) ([]model.Subject, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("enrollment.SubjectsByStudentID")
	return fakeSubjects(r).list(func(s model.Subject) bool {
		return r.db.enrolled[[2]int64{studentID, s.ID}]
	}), nil
}

func (r fakeEnrollment) StudentsBySubjectID(_ context.Context, subjectID int64) ([]model.Student, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.call("enrollment.StudentsBySubjectID")
	return sortedStudents(r.db.students, func(s model.Student) bool {
		return r.db.enrolled[[2]int64{s.ID, subjectID}]
	}), nil
}

// fixture wires every service the way the binary does.
type fixture struct {
	db         *fakeDB
	students   *StudentService
	groups     *GroupService
	subjects   *SubjectService
	marks      *MarkService
	enrollment *EnrollmentService
}

func newTestCache(t *testing.T, name string) *cache.Cache[string, any] {
	t.Helper()
	c := cache.New[string, any](cache.Config{Name: t.Name() + "/" + name, TTL: time.Minute, MaxSize: 100})
	t.Cleanup(c.Shutdown)
	return c
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newFakeDB()
	students, subjects := fakeStudents{db}, fakeSubjects{db}

	set := NewSet(Repositories{
		Students:   students,
		Groups:     fakeGroups{db},
		Subjects:   subjects,
		Marks:      fakeMarks{db},
		Enrollment: fakeEnrollment{db},
	}, Caches{
		Students:   newTestCache(t, "students"),
		Groups:     newTestCache(t, "groups"),
		Subjects:   newTestCache(t, "subjects"),
		Marks:      newTestCache(t, "marks"),
		Enrollment: newTestCache(t, "enrollment"),
	}, nil)

	return &fixture{
		db:         db,
		students:   set.Students,
		groups:     set.Groups,
		subjects:   set.Subjects,
		marks:      set.Marks,
		enrollment: set.Enrollment,
	}
}

func (f *fixture) addStudent(t *testing.T, name string, age int) model.Student {
	t.Helper()
	s, err := f.students.AddStudent(t.Context(), model.Student{Name: name, Age: age})
	if err != nil {
		t.Fatalf("AddStudent(%q): %v", name, err)
	}
	return s
}

func (f *fixture) addSubject(t *testing.T, name string) model.Subject {
	t.Helper()
	s, err := f.subjects.AddSubject(t.Context(), name)
	if err != nil {
		t.Fatalf("AddSubject(%q): %v", name, err)
	}
	return s
}

func ptr[T any](v T) *T { return &v }
