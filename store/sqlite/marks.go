package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Keksclan/gradebook/model"
)

const markColumns = "id, value, student_id, subject_id"

// MarkRepo stores marks.
type MarkRepo struct {
	db *sql.DB
}

func (r *MarkRepo) query(ctx context.Context, where string, args ...any) ([]model.Mark, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+markColumns+" FROM marks "+where+" ORDER BY id", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Mark{}
	for rows.Next() {
		var m model.Mark
		if err := rows.Scan(&m.ID, &m.Value, &m.StudentID, &m.SubjectID); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MarkRepo) FindAll(ctx context.Context) ([]model.Mark, error) {
	out, err := r.query(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("marks: find all: %w", err)
	}
	return out, nil
}

func (r *MarkRepo) FindByID(ctx context.Context, id int64) (model.Mark, bool, error) {
	var m model.Mark
	err := r.db.QueryRowContext(ctx, "SELECT "+markColumns+" FROM marks WHERE id = ?", id).
		Scan(&m.ID, &m.Value, &m.StudentID, &m.SubjectID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Mark{}, false, nil
	}
	if err != nil {
		return model.Mark{}, false, fmt.Errorf("marks: find %d: %w", id, err)
	}
	return m, true, nil
}

func (r *MarkRepo) FindByStudentID(ctx context.Context, studentID int64) ([]model.Mark, error) {
	out, err := r.query(ctx, "WHERE student_id = ?", studentID)
	if err != nil {
		return nil, fmt.Errorf("marks: find by student %d: %w", studentID, err)
	}
	return out, nil
}

func (r *MarkRepo) FindBySubjectID(ctx context.Context, subjectID int64) ([]model.Mark, error) {
	out, err := r.query(ctx, "WHERE subject_id = ?", subjectID)
	if err != nil {
		return nil, fmt.Errorf("marks: find by subject %d: %w", subjectID, err)
	}
	return out, nil
}

func (r *MarkRepo) FindByStudentAndSubject(ctx context.Context, studentID, subjectID int64) ([]model.Mark, error) {
	out, err := r.query(ctx, "WHERE student_id = ? AND subject_id = ?", studentID, subjectID)
	if err != nil {
		return nil, fmt.Errorf("marks: find by student %d and subject %d: %w", studentID, subjectID, err)
	}
	return out, nil
}

func (r *MarkRepo) FindByValue(ctx context.Context, value int) ([]model.Mark, error) {
	out, err := r.query(ctx, "WHERE value = ?", value)
	if err != nil {
		return nil, fmt.Errorf("marks: find by value %d: %w", value, err)
	}
	return out, nil
}

func (r *MarkRepo) average(ctx context.Context, column string, id int64) (*float64, error) {
	var avg sql.NullFloat64
	if err := r.db.QueryRowContext(ctx, "SELECT AVG(value) FROM marks WHERE "+column+" = ?", id).Scan(&avg); err != nil {
		return nil, err
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

func (r *MarkRepo) AverageByStudentID(ctx context.Context, studentID int64) (*float64, error) {
	avg, err := r.average(ctx, "student_id", studentID)
	if err != nil {
		return nil, fmt.Errorf("marks: average for student %d: %w", studentID, err)
	}
	return avg, nil
}

func (r *MarkRepo) AverageBySubjectID(ctx context.Context, subjectID int64) (*float64, error) {
	avg, err := r.average(ctx, "subject_id", subjectID)
	if err != nil {
		return nil, fmt.Errorf("marks: average for subject %d: %w", subjectID, err)
	}
	return avg, nil
}

func (r *MarkRepo) Create(ctx context.Context, m model.Mark) (model.Mark, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO marks (value, student_id, subject_id) VALUES (?, ?, ?)",
		m.Value, m.StudentID, m.SubjectID)
	if err != nil {
		return model.Mark{}, fmt.Errorf("marks: create: %w", err)
	}
	if m.ID, err = res.LastInsertId(); err != nil {
		return model.Mark{}, fmt.Errorf("marks: create: %w", err)
	}
	return m, nil
}

func (r *MarkRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM marks WHERE id = ?", id); err != nil {
		return fmt.Errorf("marks: delete %d: %w", id, err)
	}
	return nil
}

func (r *MarkRepo) DeleteSpecific(ctx context.Context, studentID, subjectID int64, value int, id *int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM marks WHERE student_id = ? AND subject_id = ? AND value = ? AND (? IS NULL OR id = ?)",
		studentID, subjectID, value, nullInt64(id), nullInt64(id))
	if err != nil {
		return 0, fmt.Errorf("marks: delete specific: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("marks: delete specific: %w", err)
	}
	return n, nil
}
