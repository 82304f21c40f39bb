package service

import (
	"errors"
	"testing"

	"github.com/Keksclan/gradebook/model"
)

func TestReadStudents_ServedFromCacheOnSecondCall(t *testing.T) {
	f := newFixture(t)
	f.addStudent(t, "Bob", 20)
	f.addStudent(t, "Alice", 21)

	for range 2 {
		got, err := f.students.ReadStudents(t.Context(), nil, nil, nil)
		if err != nil {
			t.Fatalf("ReadStudents: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("got %d students, want 2", len(got))
		}
	}
	if n := f.db.count("students.FindAll"); n != 1 {
		t.Fatalf("FindAll called %d times, want 1", n)
	}
}

func TestReadStudents_Dispatch(t *testing.T) {
	f := newFixture(t)
	f.addStudent(t, "Zed", 20)
	f.addStudent(t, "Amy", 20)
	carl := f.addStudent(t, "Carl", 30)

	got, err := f.students.ReadStudents(t.Context(), ptr(20), ptr("asc"), nil)
	if err != nil {
		t.Fatalf("ReadStudents(age, sort): %v", err)
	}
	if len(got) != 2 || got[0].Name != "Amy" || got[1].Name != "Zed" {
		t.Fatalf("unexpected age+sort result: %+v", got)
	}

	got, err = f.students.ReadStudents(t.Context(), ptr(30), nil, nil)
	if err != nil {
		t.Fatalf("ReadStudents(age): %v", err)
	}
	if len(got) != 1 || got[0].ID != carl.ID {
		t.Fatalf("unexpected age result: %+v", got)
	}

	got, err = f.students.ReadStudents(t.Context(), nil, ptr("desc"), nil)
	if err != nil {
		t.Fatalf("ReadStudents(sort): %v", err)
	}
	if len(got) != 3 || got[0].Name != "Zed" {
		t.Fatalf("unexpected sort result: %+v", got)
	}

	got, err = f.students.ReadStudents(t.Context(), ptr(99), ptr("asc"), &carl.ID)
	if err != nil {
		t.Fatalf("ReadStudents(id): %v", err)
	}
	if len(got) != 1 || got[0].ID != carl.ID {
		t.Fatalf("id must win over the other filters, got %+v", got)
	}

	for _, name := range []string{"students.FindByAgeSortedByName", "students.FindByAge", "students.SortedByName"} {
		if n := f.db.count(name); n != 1 {
			t.Fatalf("%s called %d times, want 1", name, n)
		}
	}
}

func TestReadStudents_UnknownIDIsNotFoundAndNotCached(t *testing.T) {
	f := newFixture(t)

	for range 2 {
		_, err := f.students.ReadStudents(t.Context(), nil, nil, ptr(int64(42)))
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	}
	if n := f.db.count("students.FindByID"); n != 2 {
		t.Fatalf("FindByID called %d times, want 2 (errors are not cached)", n)
	}
}

func TestAddStudent_InvalidatesLists(t *testing.T) {
	f := newFixture(t)
	f.addStudent(t, "Bob", 20)

	got, _ := f.students.ReadStudents(t.Context(), nil, nil, nil)
	if len(got) != 1 {
		t.Fatalf("got %d students, want 1", len(got))
	}

	f.addStudent(t, "Alice", 21)
	got, err := f.students.ReadStudents(t.Context(), nil, nil, nil)
	if err != nil {
		t.Fatalf("ReadStudents: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d students after add, want 2", len(got))
	}
}

func TestAddStudent_Validation(t *testing.T) {
	f := newFixture(t)

	cases := []model.Student{
		{Name: "  ", Age: 20},
		{Name: "Bob", Age: 0},
	}
	for _, st := range cases {
		if _, err := f.students.AddStudent(t.Context(), st); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("AddStudent(%+v): expected ErrInvalidArgument, got %v", st, err)
		}
	}
	if n := f.db.count("students.Create"); n != 0 {
		t.Fatalf("Create called %d times, want 0", n)
	}
}

func TestUpdateStudent_RefreshesCachedStudent(t *testing.T) {
	f := newFixture(t)
	st := f.addStudent(t, "Bob", 20)

	if got, _ := f.students.FindByID(t.Context(), st.ID); got.Name != "Bob" {
		t.Fatalf("FindByID name = %q, want Bob", got.Name)
	}
	if _, err := f.students.UpdateStudent(t.Context(), st.ID, "Robert", 21); err != nil {
		t.Fatalf("UpdateStudent: %v", err)
	}
	got, err := f.students.FindByID(t.Context(), st.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Name != "Robert" || got.Age != 21 {
		t.Fatalf("stale student after update: %+v", got)
	}

	if _, err := f.students.UpdateStudent(t.Context(), 999, "X", 20); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown student, got %v", err)
	}
}

func TestDeleteStudent_ClearsMarkCaches(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	st := f.addStudent(t, "Bob", 20)
	sub := f.addSubject(t, "Math")
	if err := f.enrollment.AddSubjectToStudent(ctx, st.ID, sub.ID); err != nil {
		t.Fatalf("AddSubjectToStudent: %v", err)
	}
	if _, err := f.marks.AddMark(ctx, model.Mark{Value: 5, StudentID: st.ID, SubjectID: sub.ID}); err != nil {
		t.Fatalf("AddMark: %v", err)
	}

	avg, err := f.marks.AverageBySubject(ctx, sub.ID)
	if err != nil || avg == nil || *avg != 5 {
		t.Fatalf("AverageBySubject = %v, %v; want 5", avg, err)
	}

	if err := f.students.DeleteStudent(ctx, st.ID); err != nil {
		t.Fatalf("DeleteStudent: %v", err)
	}

	avg, err = f.marks.AverageBySubject(ctx, sub.ID)
	if err != nil {
		t.Fatalf("AverageBySubject: %v", err)
	}
	if avg != nil {
		t.Fatalf("stale average %v after deleting the only student", *avg)
	}
	if _, err := f.students.FindByID(ctx, st.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := f.students.DeleteStudent(ctx, st.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestFindByGroupID_Cached(t *testing.T) {
	f := newFixture(t)
	a := f.addStudent(t, "A", 20)
	g, err := f.groups.AddGroup(t.Context(), "G1", []int64{a.ID})
	if err != nil {
		t.Fatalf("AddGroup: %v", err)
	}

	for range 2 {
		got, err := f.students.FindByGroupID(t.Context(), g.ID)
		if err != nil {
			t.Fatalf("FindByGroupID: %v", err)
		}
		if len(got) != 1 || got[0].ID != a.ID {
			t.Fatalf("unexpected members: %+v", got)
		}
	}
	if n := f.db.count("students.FindByGroupID"); n != 1 {
		t.Fatalf("FindByGroupID called %d times, want 1", n)
	}
}
