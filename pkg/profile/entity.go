package profile

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound — участник с таким идентификатором не найден.
var ErrNotFound = errors.New("member not found")

// Member — владелец профиля, идентифицируется chat-идентификатором.
type Member struct {
	ID         int64     `json:"id"`
	TelegramID string    `json:"telegramId"`
	Name       string    `json:"name"`
	Username   string    `json:"username"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Identity is what the chat channel knows about a sender.
type Identity struct {
	ExternalID string
	Name       string
	Handle     string
}

// Experience — одна запись об опыте работы.
type Experience struct {
	ID          int64      `json:"id"`
	MemberID    int64      `json:"memberId"`
	Title       string     `json:"title"`
	CompanyName string     `json:"companyName"`
	Location    *string    `json:"location"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	IsCurrent   bool       `json:"isCurrent"`
	Description string     `json:"description"`
	Skills      []Skill    `json:"skills"`
}

// Skill — навык участника, имя уникально в рамках участника (с учётом регистра).
type Skill struct {
	ID       int64  `json:"id"`
	MemberID int64  `json:"memberId"`
	Name     string `json:"name"`
}

// Profile is the read view served to the front end.
type Profile struct {
	Member
	Experiences []Experience `json:"experiences"`
	Skills      []Skill      `json:"skills"`
}

// ExperienceRecord is one experience as extracted from a resume, dates still
// in their textual form.
type ExperienceRecord struct {
	Title       string
	CompanyName string
	Location    string
	StartDate   string
	EndDate     string
	Description string
}

// Store is the set of storage operations available inside and outside a
// transaction.
type Store interface {
	UpsertMember(ctx context.Context, externalID, name, handle string) (Member, error)
	AddExperience(ctx context.Context, memberID int64, rec ExperienceRecord) (Experience, error)
	UpsertSkill(ctx context.Context, memberID int64, name string, experienceID *int64) (Skill, error)
	// ClearResume removes all experiences and skills of a member.
	ClearResume(ctx context.Context, memberID int64) error
	GetProfile(ctx context.Context, memberID int64) (Profile, error)
	GetMemberByExternalID(ctx context.Context, externalID string) (Member, error)
}

// Repository — порт хранилища профилей.
type Repository interface {
	Store
	// InTx runs fn inside one transaction; any error rolls everything back.
	InTx(ctx context.Context, fn func(Store) error) error
}

// PersistenceError wraps a storage failure with the operation that hit it.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
