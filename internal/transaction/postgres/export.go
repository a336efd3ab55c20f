package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/frahmantamala/school-platform/internal/transaction"
)

const exportQuery = `
SELECT t.id, u.email AS student_email, c.title AS course_title,
       t.amount, t.payment_method, t.status, t.created_at
FROM transactions t
JOIN users u ON u.id = t.student_id
JOIN courses c ON c.id = t.course_id
ORDER BY t.created_at DESC, t.id DESC`

// ExportRepository reads the reporting join over the raw connection pool.
type ExportRepository struct {
	db *sqlx.DB
}

func NewExportRepository(db *sqlx.DB) *ExportRepository {
	return &ExportRepository{db: db}
}

func (r *ExportRepository) ExportRows(ctx context.Context) ([]transaction.ExportRow, error) {
	rows := []transaction.ExportRow{}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(exportQuery)); err != nil {
		return nil, err
	}
	return rows, nil
}
