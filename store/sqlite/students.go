package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Keksclan/gradebook/model"
)

const studentColumns = "id, name, age, group_id"

// StudentRepo stores students.
type StudentRepo struct {
	db *sql.DB
}

func scanStudent(row interface{ Scan(...any) error }) (model.Student, error) {
	var (
		s       model.Student
		groupID sql.NullInt64
	)
	if err := row.Scan(&s.ID, &s.Name, &s.Age, &groupID); err != nil {
		return model.Student{}, err
	}
	if groupID.Valid {
		s.GroupID = &groupID.Int64
	}
	return s, nil
}

func queryStudents(ctx context.Context, q querier, query string, args ...any) ([]model.Student, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Student{}
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *StudentRepo) FindAll(ctx context.Context) ([]model.Student, error) {
	out, err := queryStudents(ctx, r.db, "SELECT "+studentColumns+" FROM students ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("students: find all: %w", err)
	}
	return out, nil
}

func (r *StudentRepo) FindByID(ctx context.Context, id int64) (model.Student, bool, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+studentColumns+" FROM students WHERE id = ?", id)
	s, err := scanStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Student{}, false, nil
	}
	if err != nil {
		return model.Student{}, false, fmt.Errorf("students: find %d: %w", id, err)
	}
	return s, true, nil
}

func (r *StudentRepo) FindAllByID(ctx context.Context, ids []int64) ([]model.Student, error) {
	if len(ids) == 0 {
		return []model.Student{}, nil
	}
	q := "SELECT " + studentColumns + " FROM students WHERE id IN (" + placeholders(len(ids)) + ") ORDER BY id"
	out, err := queryStudents(ctx, r.db, q, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("students: find by ids: %w", err)
	}
	return out, nil
}

func (r *StudentRepo) FindByAge(ctx context.Context, age int) ([]model.Student, error) {
	out, err := queryStudents(ctx, r.db, "SELECT "+studentColumns+" FROM students WHERE age = ? ORDER BY id", age)
	if err != nil {
		return nil, fmt.Errorf("students: find by age: %w", err)
	}
	return out, nil
}

func (r *StudentRepo) FindByAgeSortedByName(ctx context.Context, age int, sort string) ([]model.Student, error) {
	q := "SELECT " + studentColumns + " FROM students WHERE age = ? ORDER BY name " + direction(sort) + ", id"
	out, err := queryStudents(ctx, r.db, q, age)
	if err != nil {
		return nil, fmt.Errorf("students: find by age sorted: %w", err)
	}
	return out, nil
}

func (r *StudentRepo) SortedByName(ctx context.Context, sort string) ([]model.Student, error) {
	q := "SELECT " + studentColumns + " FROM students ORDER BY name " + direction(sort) + ", id"
	out, err := queryStudents(ctx, r.db, q)
	if err != nil {
		return nil, fmt.Errorf("students: sorted by name: %w", err)
	}
	return out, nil
}

func (r *StudentRepo) FindByGroupID(ctx context.Context, groupID int64) ([]model.Student, error) {
	out, err := queryStudents(ctx, r.db, "SELECT "+studentColumns+" FROM students WHERE group_id = ? ORDER BY id", groupID)
	if err != nil {
		return nil, fmt.Errorf("students: find by group %d: %w", groupID, err)
	}
	return out, nil
}

func (r *StudentRepo) Create(ctx context.Context, s model.Student) (model.Student, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO students (name, age, group_id) VALUES (?, ?, ?)",
		s.Name, s.Age, nullInt64(s.GroupID))
	if err != nil {
		return model.Student{}, fmt.Errorf("students: create: %w", err)
	}
	s.ID, err = res.LastInsertId()
	if err != nil {
		return model.Student{}, fmt.Errorf("students: create: %w", err)
	}
	return s, nil
}

func (r *StudentRepo) Update(ctx context.Context, s model.Student) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE students SET name = ?, age = ?, group_id = ? WHERE id = ?",
		s.Name, s.Age, nullInt64(s.GroupID), s.ID)
	if err != nil {
		return fmt.Errorf("students: update %d: %w", s.ID, err)
	}
	return nil
}

func (r *StudentRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM students WHERE id = ?", id); err != nil {
		return fmt.Errorf("students: delete %d: %w", id, err)
	}
	return nil
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}
