package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/edustack/coursegate/internal/course/store"
)

type coursesRepo struct {
	db *sql.DB
}

const courseColumns = `id, code, title, description, created_by, created_at, updated_at`

func (r *coursesRepo) CreateCourse(ctx context.Context, c store.Course) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO courses (`+courseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Code, c.Title, c.Description, c.CreatedBy, now, now,
	)
	return mapConstraint(err)
}

func (r *coursesRepo) GetCourse(ctx context.Context, id string) (store.Course, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+courseColumns+` FROM courses WHERE id = ?`, id)
	return scanCourse(row)
}

func (r *coursesRepo) ListCourses(ctx context.Context) ([]store.Course, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+courseColumns+` FROM courses ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []store.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (r *coursesRepo) DeleteCourse(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCourse(row scanner) (store.Course, error) {
	var c store.Course
	err := row.Scan(
		&c.ID, &c.Code, &c.Title, &c.Description, &c.CreatedBy,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return store.Course{}, mapNotFound(err)
	}
	return c, nil
}
