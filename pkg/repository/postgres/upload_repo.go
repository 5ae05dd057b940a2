package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/resumebot/pkg/ingest"
)

var _ ingest.UploadLog = (*UploadRepository)(nil)

// UploadRepository stores the upload journal in PostgreSQL.
type UploadRepository struct {
	pool *pgxpool.Pool
}

func NewUploadRepository(pool *pgxpool.Pool) (*UploadRepository, error) {
	repo := &UploadRepository{pool: pool}
	if err := repo.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *UploadRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS uploads (
			id UUID PRIMARY KEY,
			telegram_id TEXT NOT NULL,
			member_id BIGINT REFERENCES members(id) ON DELETE SET NULL,
			file_name TEXT NOT NULL,
			mime_type TEXT NOT NULL,
			size_bytes BIGINT NOT NULL,
			stage TEXT NOT NULL,
			status TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			archive_uri TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_uploads_telegram ON uploads(telegram_id, created_at DESC);
	`)
	return err
}

func (r *UploadRepository) Record(ctx context.Context, rec ingest.UploadRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO uploads (id, telegram_id, member_id, file_name, mime_type, size_bytes, stage, status, error, archive_uri, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, rec.ID, rec.TelegramID, rec.MemberID, rec.FileName, rec.MimeType, rec.SizeBytes,
		string(rec.Stage), string(rec.Status), rec.Error, rec.ArchiveURI, rec.CreatedAt.UTC())
	return err
}

func (r *UploadRepository) ListByTelegramID(ctx context.Context, telegramID string, limit int) ([]ingest.UploadRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, telegram_id, member_id, file_name, mime_type, size_bytes, stage, status, error, archive_uri, created_at
		FROM uploads WHERE telegram_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, telegramID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []ingest.UploadRecord
	for rows.Next() {
		var rec ingest.UploadRecord
		var stage, status string
		if err := rows.Scan(&rec.ID, &rec.TelegramID, &rec.MemberID, &rec.FileName, &rec.MimeType, &rec.SizeBytes,
			&stage, &status, &rec.Error, &rec.ArchiveURI, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Stage = ingest.Stage(stage)
		rec.Status = ingest.UploadStatus(status)
		rec.CreatedAt = rec.CreatedAt.UTC()
		res = append(res, rec)
	}
	return res, rows.Err()
}
