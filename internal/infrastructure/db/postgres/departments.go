package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/baechuer/org-calendar/internal/domain"
)

type DepartmentRepo struct {
	pool *pgxpool.Pool
}

func NewDepartmentRepo(pool *pgxpool.Pool) *DepartmentRepo { return &DepartmentRepo{pool: pool} }

func (r *DepartmentRepo) ListAll(ctx context.Context) ([]domain.Department, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, color FROM departments ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Department
	for rows.Next() {
		var d domain.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Color); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ResolveIDs returns the departments for the given ids in the order asked
// for; unknown ids are silently dropped.
func (r *DepartmentRepo) ResolveIDs(ctx context.Context, ids []int64) ([]domain.Department, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT id, name, color FROM departments WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[int64]domain.Department, len(ids))
	for rows.Next() {
		var d domain.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Color); err != nil {
			return nil, err
		}
		byID[d.ID] = d
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.Department, 0, len(ids))
	for _, id := range ids {
		if d, ok := byID[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

// Seed inserts the given departments once; reruns are no-ops thanks to the
// name uniqueness constraint.
func (r *DepartmentRepo) Seed(ctx context.Context, depts []domain.Department) error {
	for _, d := range depts {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO departments (name, color)
			VALUES ($1, $2)
			ON CONFLICT (name) DO NOTHING
		`, d.Name, d.Color)
		if err != nil {
			return err
		}
	}
	return nil
}
