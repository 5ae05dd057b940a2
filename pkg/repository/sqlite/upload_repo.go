package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/artem13815/resumebot/pkg/ingest"
)

var _ ingest.UploadLog = (*UploadRepository)(nil)

// UploadRepository keeps the upload journal in sqlite.
type UploadRepository struct {
	db *sql.DB
}

func NewUploadRepository(ctx context.Context, db *sql.DB) (*UploadRepository, error) {
	if err := ensureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("creating sqlite schema: %w", err)
	}
	return &UploadRepository{db: db}, nil
}

func (r *UploadRepository) Record(ctx context.Context, rec ingest.UploadRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	var memberID sql.NullInt64
	if rec.MemberID != nil {
		memberID = sql.NullInt64{Int64: *rec.MemberID, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO uploads (id, telegram_id, member_id, file_name, mime_type, size_bytes, stage, status, error, archive_uri, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, rec.ID.String(), rec.TelegramID, memberID, rec.FileName, rec.MimeType, rec.SizeBytes,
		string(rec.Stage), string(rec.Status), rec.Error, rec.ArchiveURI, formatTime(rec.CreatedAt))
	return err
}

func (r *UploadRepository) ListByTelegramID(ctx context.Context, telegramID string, limit int) ([]ingest.UploadRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, telegram_id, member_id, file_name, mime_type, size_bytes, stage, status, error, archive_uri, created_at
FROM uploads WHERE telegram_id = ?
ORDER BY created_at DESC, rowid DESC
LIMIT ?
`, telegramID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []ingest.UploadRecord
	for rows.Next() {
		var (
			rec           ingest.UploadRecord
			id, created   string
			memberID      sql.NullInt64
			stage, status string
		)
		if err := rows.Scan(&id, &rec.TelegramID, &memberID, &rec.FileName, &rec.MimeType, &rec.SizeBytes,
			&stage, &status, &rec.Error, &rec.ArchiveURI, &created); err != nil {
			return nil, err
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		if rec.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		if memberID.Valid {
			v := memberID.Int64
			rec.MemberID = &v
		}
		rec.Stage = ingest.Stage(stage)
		rec.Status = ingest.UploadStatus(status)
		res = append(res, rec)
	}
	return res, rows.Err()
}
