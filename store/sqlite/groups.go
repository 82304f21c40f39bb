package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Keksclan/gradebook/model"
)

// GroupRepo stores groups. Groups are returned with their students.
type GroupRepo struct {
	db *sql.DB
}

func (r *GroupRepo) list(ctx context.Context, where, order string, args ...any) ([]model.Group, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM student_groups "+where+" ORDER BY "+order, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := []model.Group{}
	for rows.Next() {
		var g model.Group
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return groups, r.attachStudents(ctx, groups)
}

// attachStudents fills Students of every group with a single query.
func (r *GroupRepo) attachStudents(ctx context.Context, groups []model.Group) error {
	if len(groups) == 0 {
		return nil
	}
	ids := make([]int64, len(groups))
	index := make(map[int64]int, len(groups))
	for i, g := range groups {
		ids[i] = g.ID
		index[g.ID] = i
	}
	q := "SELECT " + studentColumns + " FROM students WHERE group_id IN (" + placeholders(len(ids)) + ") ORDER BY id"
	students, err := queryStudents(ctx, r.db, q, int64Args(ids)...)
	if err != nil {
		return err
	}
	for _, s := range students {
		i := index[*s.GroupID]
		groups[i].Students = append(groups[i].Students, s)
	}
	return nil
}

func (r *GroupRepo) FindAll(ctx context.Context) ([]model.Group, error) {
	out, err := r.list(ctx, "", "id")
	if err != nil {
		return nil, fmt.Errorf("groups: find all: %w", err)
	}
	return out, nil
}

func (r *GroupRepo) FindAllSortedByName(ctx context.Context) ([]model.Group, error) {
	out, err := r.list(ctx, "", "name, id")
	if err != nil {
		return nil, fmt.Errorf("groups: sorted by name: %w", err)
	}
	return out, nil
}

func (r *GroupRepo) FindByNameContaining(ctx context.Context, pattern string) ([]model.Group, error) {
	out, err := r.list(ctx, "WHERE instr(name, ?) > 0", "id", pattern)
	if err != nil {
		return nil, fmt.Errorf("groups: search %q: %w", pattern, err)
	}
	return out, nil
}

func (r *GroupRepo) find(ctx context.Context, where string, arg any) (model.Group, bool, error) {
	groups, err := r.list(ctx, where, "id", arg)
	if err != nil {
		return model.Group{}, false, err
	}
	if len(groups) == 0 {
		return model.Group{}, false, nil
	}
	return groups[0], true, nil
}

func (r *GroupRepo) FindByID(ctx context.Context, id int64) (model.Group, bool, error) {
	g, ok, err := r.find(ctx, "WHERE id = ?", id)
	if err != nil {
		return model.Group{}, false, fmt.Errorf("groups: find %d: %w", id, err)
	}
	return g, ok, nil
}

func (r *GroupRepo) FindByName(ctx context.Context, name string) (model.Group, bool, error) {
	g, ok, err := r.find(ctx, "WHERE name = ?", name)
	if err != nil {
		return model.Group{}, false, fmt.Errorf("groups: find %q: %w", name, err)
	}
	return g, ok, nil
}

// Create inserts the group and moves the students into it in one transaction.
func (r *GroupRepo) Create(ctx context.Context, name string, studentIDs []int64) (model.Group, error) {
	id, err := r.insert(ctx, name, studentIDs)
	if err != nil {
		return model.Group{}, fmt.Errorf("groups: create %q: %w", name, err)
	}
	g, ok, err := r.FindByID(ctx, id)
	if err != nil {
		return model.Group{}, err
	}
	if !ok {
		return model.Group{}, fmt.Errorf("groups: created group %d vanished", id)
	}
	return g, nil
}

func (r *GroupRepo) insert(ctx context.Context, name string, studentIDs []int64) (id int64, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	res, err := tx.ExecContext(ctx, "INSERT INTO student_groups (name) VALUES (?)", name)
	if err != nil {
		return 0, err
	}
	if id, err = res.LastInsertId(); err != nil {
		return 0, err
	}
	if len(studentIDs) > 0 {
		args := append([]any{id}, int64Args(studentIDs)...)
		q := "UPDATE students SET group_id = ? WHERE id IN (" + placeholders(len(studentIDs)) + ")"
		if _, err = tx.ExecContext(ctx, q, args...); err != nil {
			return 0, err
		}
	}
	return id, tx.Commit()
}

// Delete removes the group. Its students are detached by the foreign key.
func (r *GroupRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM student_groups WHERE id = ?", id); err != nil {
		return fmt.Errorf("groups: delete %d: %w", id, err)
	}
	return nil
}
