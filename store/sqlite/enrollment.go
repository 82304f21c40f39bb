package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Keksclan/gradebook/model"
)

// EnrollmentRepo stores which subjects are assigned to which students.
type EnrollmentRepo struct {
	db *sql.DB
}

// Enroll assigns the subject to the student. Existing assignments are kept.
func (r *EnrollmentRepo) Enroll(ctx context.Context, studentID, subjectID int64) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO student_subjects (student_id, subject_id) VALUES (?, ?)",
		studentID, subjectID)
	if err != nil {
		return fmt.Errorf("enrollment: enroll student %d in subject %d: %w", studentID, subjectID, err)
	}
	return nil
}

func (r *EnrollmentRepo) Unenroll(ctx context.Context, studentID, subjectID int64) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM student_subjects WHERE student_id = ? AND subject_id = ?",
		studentID, subjectID)
	if err != nil {
		return fmt.Errorf("enrollment: unenroll student %d from subject %d: %w", studentID, subjectID, err)
	}
	return nil
}

func (r *EnrollmentRepo) SubjectsByStudentID(ctx context.Context, studentID int64) ([]model.Subject, error) {
	out, err := querySubjects(ctx, r.db, `
		SELECT s.id, s.name
		FROM subjects s JOIN student_subjects ss ON ss.subject_id = s.id
		WHERE ss.student_id = ?
		ORDER BY s.id`, studentID)
	if err != nil {
		return nil, fmt.Errorf("enrollment: subjects of student %d: %w", studentID, err)
	}
	return out, nil
}

func (r *EnrollmentRepo) StudentsBySubjectID(ctx context.Context, subjectID int64) ([]model.Student, error) {
	out, err := queryStudents(ctx, r.db, `
		SELECT st.id, st.name, st.age, st.group_id
		FROM students st JOIN student_subjects ss ON ss.student_id = st.id
		WHERE ss.subject_id = ?
		ORDER BY st.id`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("enrollment: students of subject %d: %w", subjectID, err)
	}
	return out, nil
}
