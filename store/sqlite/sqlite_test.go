package sqlite

import (
	"testing"

	"github.com/Keksclan/gradebook/model"
	"github.com/Keksclan/gradebook/service"
)

var (
	_ service.StudentRepository    = (*StudentRepo)(nil)
	_ service.GroupRepository      = (*GroupRepo)(nil)
	_ service.SubjectRepository    = (*SubjectRepo)(nil)
	_ service.MarkRepository       = (*MarkRepo)(nil)
	_ service.EnrollmentRepository = (*EnrollmentRepo)(nil)
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.Context(), ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func mustStudent(t *testing.T, db *DB, name string, age int) model.Student {
	t.Helper()
	s, err := db.Students().Create(t.Context(), model.Student{Name: name, Age: age})
	if err != nil {
		t.Fatalf("Create student: %v", err)
	}
	return s
}

func mustSubject(t *testing.T, db *DB, name string) model.Subject {
	t.Helper()
	s, err := db.Subjects().Create(t.Context(), name)
	if err != nil {
		t.Fatalf("Create subject: %v", err)
	}
	return s
}

func TestOpen_SchemaIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.sql.ExecContext(t.Context(), schema); err != nil {
		t.Fatalf("re-applying schema: %v", err)
	}
	if err := db.Ping(t.Context()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestStudents_QueriesAndSorting(t *testing.T) {
	db := openTestDB(t)
	ctx := t.Context()
	repo := db.Students()
	bob := mustStudent(t, db, "Bob", 20)
	mustStudent(t, db, "alice", 20)
	mustStudent(t, db, "Carl", 22)

	got, ok, err := repo.FindByID(ctx, bob.ID)
	if err != nil || !ok || got.Name != "Bob" || got.GroupID != nil {
		t.Fatalf("FindByID = %+v, %v, %v", got, ok, err)
	}
	if _, ok, err := repo.FindByID(ctx, 999); err != nil || ok {
		t.Fatalf("FindByID(999) = %v, %v; want not found", ok, err)
	}

	byAge, err := repo.FindByAge(ctx, 20)
	if err != nil || len(byAge) != 2 {
		t.Fatalf("FindByAge = %d, %v", len(byAge), err)
	}

	desc, err := repo.FindByAgeSortedByName(ctx, 20, "DESC")
	if err != nil {
		t.Fatalf("FindByAgeSortedByName: %v", err)
	}
	// SQLite compares bytes, so "Bob" < "alice".
	if desc[0].Name != "alice" || desc[1].Name != "Bob" {
		t.Fatalf("desc order: %+v", desc)
	}

	asc, err := repo.SortedByName(ctx, "whatever")
	if err != nil {
		t.Fatalf("SortedByName: %v", err)
	}
	if asc[0].Name != "Bob" || asc[2].Name != "alice" {
		t.Fatalf("asc order: %+v", asc)
	}

	some, err := repo.FindAllByID(ctx, []int64{bob.ID, 999})
	if err != nil || len(some) != 1 {
		t.Fatalf("FindAllByID = %+v, %v", some, err)
	}
	none, err := repo.FindAllByID(ctx, nil)
	if err != nil || len(none) != 0 {
		t.Fatalf("FindAllByID(nil) = %+v, %v", none, err)
	}

	bob.Name, bob.Age = "Robert", 21
	if err := repo.Update(ctx, bob); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _, _ = repo.FindByID(ctx, bob.ID)
	if got.Name != "Robert" || got.Age != 21 {
		t.Fatalf("after update: %+v", got)
	}
}

func TestGroups_CreateAttachesAndDeleteDetaches(t *testing.T) {
	db := openTestDB(t)
	ctx := t.Context()
	a := mustStudent(t, db, "A", 20)
	b := mustStudent(t, db, "B", 20)
	mustStudent(t, db, "C", 20)

	g, err := db.Groups().Create(ctx, "Beta", []int64{a.ID, b.ID})
	if err != nil {
		t.Fatalf("Create group: %v", err)
	}
	if len(g.Students) != 2 {
		t.Fatalf("group has %d students, want 2", len(g.Students))
	}
	if _, err := db.Groups().Create(ctx, "Alpha", nil); err != nil {
		t.Fatalf("Create group: %v", err)
	}

	members, err := db.Students().FindByGroupID(ctx, g.ID)
	if err != nil || len(members) != 2 {
		t.Fatalf("FindByGroupID = %d, %v", len(members), err)
	}

	sorted, err := db.Groups().FindAllSortedByName(ctx)
	if err != nil || len(sorted) != 2 || sorted[0].Name != "Alpha" {
		t.Fatalf("FindAllSortedByName = %+v, %v", sorted, err)
	}
	found, err := db.Groups().FindByNameContaining(ctx, "et")
	if err != nil || len(found) != 1 || len(found[0].Students) != 2 {
		t.Fatalf("FindByNameContaining = %+v, %v", found, err)
	}
	byName, ok, err := db.Groups().FindByName(ctx, "Beta")
	if err != nil || !ok || byName.ID != g.ID {
		t.Fatalf("FindByName = %+v, %v, %v", byName, ok, err)
	}

	if _, err := db.Groups().Create(ctx, "Beta", nil); err == nil {
		t.Fatal("expected unique constraint violation for duplicate group name")
	}

	if err := db.Groups().Delete(ctx, g.ID); err != nil {
		t.Fatalf("Delete group: %v", err)
	}
	st, _, _ := db.Students().FindByID(ctx, a.ID)
	if st.GroupID != nil {
		t.Fatalf("student still in deleted group %d", *st.GroupID)
	}
}

func TestSubjects(t *testing.T) {
	db := openTestDB(t)
	ctx := t.Context()
	repo := db.Subjects()
	mustSubject(t, db, "Physics")
	algebra := mustSubject(t, db, "Algebra")

	exists, err := repo.ExistsByName(ctx, "Physics")
	if err != nil || !exists {
		t.Fatalf("ExistsByName(Physics) = %v, %v", exists, err)
	}
	exists, err = repo.ExistsByName(ctx, "Chemistry")
	if err != nil || exists {
		t.Fatalf("ExistsByName(Chemistry) = %v, %v", exists, err)
	}

	sorted, err := repo.FindAllSortedByName(ctx)
	if err != nil || sorted[0].ID != algebra.ID {
		t.Fatalf("FindAllSortedByName = %+v, %v", sorted, err)
	}
	all, err := repo.FindByNameContaining(ctx, "")
	if err != nil || len(all) != 2 {
		t.Fatalf("FindByNameContaining(\"\") = %+v, %v", all, err)
	}
	got, ok, err := repo.FindByName(ctx, "Algebra")
	if err != nil || !ok || got.ID != algebra.ID {
		t.Fatalf("FindByName = %+v, %v, %v", got, ok, err)
	}
}

func TestMarks_AveragesAndDeleteSpecific(t *testing.T) {
	db := openTestDB(t)
	ctx := t.Context()
	repo := db.Marks()
	st := mustStudent(t, db, "Bob", 20)
	sub := mustSubject(t, db, "Math")

	avg, err := repo.AverageBySubjectID(ctx, sub.ID)
	if err != nil || avg != nil {
		t.Fatalf("AverageBySubjectID with no marks = %v, %v; want nil", avg, err)
	}

	var ids []int64
	for _, v := range []int{3, 3, 9} {
		m, err := repo.Create(ctx, model.Mark{Value: v, StudentID: st.ID, SubjectID: sub.ID})
		if err != nil {
			t.Fatalf("Create mark: %v", err)
		}
		ids = append(ids, m.ID)
	}

	avg, err = repo.AverageByStudentID(ctx, st.ID)
	if err != nil || avg == nil || *avg != 5 {
		t.Fatalf("AverageByStudentID = %v, %v; want 5", avg, err)
	}

	n, err := repo.DeleteSpecific(ctx, st.ID, sub.ID, 3, &ids[1])
	if err != nil || n != 1 {
		t.Fatalf("DeleteSpecific(id) = %d, %v; want 1", n, err)
	}
	n, err = repo.DeleteSpecific(ctx, st.ID, sub.ID, 3, nil)
	if err != nil || n != 1 {
		t.Fatalf("DeleteSpecific = %d, %v; want 1", n, err)
	}
	n, err = repo.DeleteSpecific(ctx, st.ID, sub.ID, 3, nil)
	if err != nil || n != 0 {
		t.Fatalf("DeleteSpecific on nothing = %d, %v; want 0", n, err)
	}

	byValue, err := repo.FindByValue(ctx, 9)
	if err != nil || len(byValue) != 1 || byValue[0].ID != ids[2] {
		t.Fatalf("FindByValue = %+v, %v", byValue, err)
	}

	if _, err := repo.Create(ctx, model.Mark{Value: 1, StudentID: 999, SubjectID: sub.ID}); err == nil {
		t.Fatal("expected a foreign key violation for an unknown student")
	}
}

func TestEnrollment_CascadesOnDelete(t *testing.T) {
	db := openTestDB(t)
	ctx := t.Context()
	repo := db.Enrollment()
	st := mustStudent(t, db, "Bob", 20)
	math := mustSubject(t, db, "Math")
	art := mustSubject(t, db, "Art")

	for _, sub := range []model.Subject{math, art, math} {
		if err := repo.Enroll(ctx, st.ID, sub.ID); err != nil {
			t.Fatalf("Enroll: %v", err)
		}
	}
	subjects, err := repo.SubjectsByStudentID(ctx, st.ID)
	if err != nil || len(subjects) != 2 {
		t.Fatalf("SubjectsByStudentID = %+v, %v", subjects, err)
	}
	students, err := repo.StudentsBySubjectID(ctx, math.ID)
	if err != nil || len(students) != 1 || students[0].ID != st.ID {
		t.Fatalf("StudentsBySubjectID = %+v, %v", students, err)
	}

	if err := repo.Unenroll(ctx, st.ID, art.ID); err != nil {
		t.Fatalf("Unenroll: %v", err)
	}
	if _, err := db.Marks().Create(ctx, model.Mark{Value: 5, StudentID: st.ID, SubjectID: math.ID}); err != nil {
		t.Fatalf("Create mark: %v", err)
	}

	if err := db.Subjects().Delete(ctx, math.ID); err != nil {
		t.Fatalf("Delete subject: %v", err)
	}
	subjects, _ = repo.SubjectsByStudentID(ctx, st.ID)
	if len(subjects) != 0 {
		t.Fatalf("assignments survived subject delete: %+v", subjects)
	}
	marks, _ := db.Marks().FindByStudentID(ctx, st.ID)
	if len(marks) != 0 {
		t.Fatalf("marks survived subject delete: %+v", marks)
	}
}
