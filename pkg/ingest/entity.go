package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Stage is a step of the upload state machine.
type Stage string

const (
	StageReceived  Stage = "received"
	StageFetched   Stage = "fetched"
	StageExtracted Stage = "extracted"
	StageParsed    Stage = "parsed"
	StagePersisted Stage = "persisted"
	StageReplied   Stage = "replied"
	StageFailed    Stage = "failed"
)

type UploadStatus string

const (
	UploadStatusOK     UploadStatus = "ok"
	UploadStatusFailed UploadStatus = "failed"
)

// UploadRecord — журнал обработки одного загруженного документа.
type UploadRecord struct {
	ID         uuid.UUID    `json:"id"`
	TelegramID string       `json:"telegramId"`
	MemberID   *int64       `json:"memberId,omitempty"`
	FileName   string       `json:"fileName"`
	MimeType   string       `json:"mimeType"`
	SizeBytes  int64        `json:"sizeBytes"`
	Stage      Stage        `json:"stage"`
	Status     UploadStatus `json:"status"`
	Error      string       `json:"error,omitempty"`
	ArchiveURI string       `json:"archiveUri,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
}

// UploadLog stores upload outcomes.
type UploadLog interface {
	Record(ctx context.Context, rec UploadRecord) error
	ListByTelegramID(ctx context.Context, telegramID string, limit int) ([]UploadRecord, error)
}

// Replier delivers text back to whoever sent the event.
type Replier interface {
	Reply(ctx context.Context, text string) error
}
