package repositories

import (
	"context"
	"fmt"

	"elafcatalog/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CategoryRecordRepository stores each tenant's flat category export in
// input order.
type CategoryRecordRepository interface {
	ReplaceAll(ctx context.Context, tenantID uuid.UUID, records []models.FlatRecord) error
	List(ctx context.Context, tenantID uuid.UUID) ([]models.FlatRecord, error)
	ListTenants(ctx context.Context) ([]uuid.UUID, error)
	Count(ctx context.Context, tenantID uuid.UUID) (int, error)
}

type categoryRecordRepo struct {
	db DBTX
}

func NewCategoryRecordRepo(db DBTX) CategoryRecordRepository {
	return &categoryRecordRepo{db: db}
}

// ReplaceAll swaps the tenant's records in a single transaction.
func (r *categoryRecordRepo) ReplaceAll(ctx context.Context, tenantID uuid.UUID, records []models.FlatRecord) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM category_records WHERE tenant_id = $1`, tenantID); err != nil {
		return fmt.Errorf("delete category records: %w", err)
	}

	query := `
		INSERT INTO category_records (tenant_id, position, id, name_ar, name_en, parent_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	for i, rec := range records {
		var nameAr, nameEn *string
		if rec.Name != nil {
			nameAr, nameEn = rec.Name.Ar, rec.Name.En
		}
		if _, err = tx.Exec(ctx, query, tenantID, i, rec.ID, nameAr, nameEn, rec.ParentID); err != nil {
			return fmt.Errorf("insert category record %q: %w", rec.ID, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit category records: %w", err)
	}
	return nil
}

func (r *categoryRecordRepo) List(ctx context.Context, tenantID uuid.UUID) ([]models.FlatRecord, error) {
	query := `
		SELECT id, name_ar, name_en, parent_id
		FROM category_records
		WHERE tenant_id = $1
		ORDER BY position ASC
	`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.FlatRecord
	for rows.Next() {
		var (
			rec            models.FlatRecord
			nameAr, nameEn *string
		)
		if err := rows.Scan(&rec.ID, &nameAr, &nameEn, &rec.ParentID); err != nil {
			return nil, err
		}
		rec.Name = &models.LocalizedName{Ar: nameAr, En: nameEn}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *categoryRecordRepo) ListTenants(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT tenant_id FROM category_records ORDER BY tenant_id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
}

func (r *categoryRecordRepo) Count(ctx context.Context, tenantID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM category_records WHERE tenant_id = $1`, tenantID).Scan(&count)
	return count, err
}
