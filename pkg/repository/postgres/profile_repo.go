package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/resumebot/pkg/profile"
)

var _ profile.Repository = (*ProfileRepository)(nil)

// querier is the part of pgx shared by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ProfileRepository implements profile.Repository backed by PostgreSQL (pgx).
type ProfileRepository struct {
	pool *pgxpool.Pool
	store
}

func NewProfileRepository(pool *pgxpool.Pool) (*ProfileRepository, error) {
	repo := &ProfileRepository{pool: pool, store: store{q: pool}}
	if err := repo.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *ProfileRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS members (
			id BIGSERIAL PRIMARY KEY,
			telegram_id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			username TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS experiences (
			id BIGSERIAL PRIMARY KEY,
			member_id BIGINT NOT NULL REFERENCES members(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			company_name TEXT NOT NULL,
			location TEXT,
			start_date DATE,
			end_date DATE,
			is_current BOOLEAN NOT NULL DEFAULT FALSE,
			description TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_experiences_member ON experiences(member_id);
		CREATE TABLE IF NOT EXISTS skills (
			id BIGSERIAL PRIMARY KEY,
			member_id BIGINT NOT NULL REFERENCES members(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			UNIQUE (member_id, name)
		);
		CREATE TABLE IF NOT EXISTS experience_skills (
			experience_id BIGINT NOT NULL REFERENCES experiences(id) ON DELETE CASCADE,
			skill_id BIGINT NOT NULL REFERENCES skills(id) ON DELETE CASCADE,
			PRIMARY KEY (experience_id, skill_id)
		);
	`)
	return err
}

func (r *ProfileRepository) InTx(ctx context.Context, fn func(profile.Store) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(store{q: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type store struct {
	q querier
}

func (s store) UpsertMember(ctx context.Context, externalID, name, handle string) (profile.Member, error) {
	row := s.q.QueryRow(ctx, `
		INSERT INTO members (telegram_id, name, username)
		VALUES ($1, $2, $3)
		ON CONFLICT (telegram_id) DO UPDATE SET
			name = EXCLUDED.name,
			username = EXCLUDED.username,
			updated_at = now()
		RETURNING id, telegram_id, name, username, created_at, updated_at
	`, externalID, name, handle)
	return scanMember(row)
}

func (s store) GetMemberByExternalID(ctx context.Context, externalID string) (profile.Member, error) {
	m, err := scanMember(s.q.QueryRow(ctx, `
		SELECT id, telegram_id, name, username, created_at, updated_at
		FROM members WHERE telegram_id = $1
	`, externalID))
	if errors.Is(err, pgx.ErrNoRows) {
		return profile.Member{}, profile.ErrNotFound
	}
	return m, err
}

func (s store) AddExperience(ctx context.Context, memberID int64, rec profile.ExperienceRecord) (profile.Experience, error) {
	start, end, current := rec.Dates()
	var location *string
	if loc := strings.TrimSpace(rec.Location); loc != "" {
		location = &loc
	}
	exp := profile.Experience{
		MemberID:    memberID,
		Title:       rec.Title,
		CompanyName: rec.CompanyName,
		Location:    location,
		StartDate:   start,
		EndDate:     end,
		IsCurrent:   current,
		Description: rec.Description,
		Skills:      []profile.Skill{},
	}
	err := s.q.QueryRow(ctx, `
		INSERT INTO experiences (member_id, title, company_name, location, start_date, end_date, is_current, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, memberID, rec.Title, rec.CompanyName, location, start, end, current, rec.Description).Scan(&exp.ID)
	if err != nil {
		return profile.Experience{}, err
	}
	return exp, nil
}

func (s store) UpsertSkill(ctx context.Context, memberID int64, name string, experienceID *int64) (profile.Skill, error) {
	// DO UPDATE so that RETURNING yields the row on conflict as well.
	sk := profile.Skill{MemberID: memberID}
	err := s.q.QueryRow(ctx, `
		INSERT INTO skills (member_id, name) VALUES ($1, $2)
		ON CONFLICT (member_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name
	`, memberID, name).Scan(&sk.ID, &sk.Name)
	if err != nil {
		return profile.Skill{}, err
	}
	if experienceID == nil {
		return sk, nil
	}

	tag, err := s.q.Exec(ctx, `
		INSERT INTO experience_skills (experience_id, skill_id)
		SELECT e.id, $2 FROM experiences e
		WHERE e.id = $1 AND e.member_id = $3
		ON CONFLICT (experience_id, skill_id) DO NOTHING
	`, *experienceID, sk.ID, memberID)
	if err != nil {
		return profile.Skill{}, err
	}
	if tag.RowsAffected() == 0 {
		var owner int64
		err := s.q.QueryRow(ctx, `SELECT member_id FROM experiences WHERE id = $1`, *experienceID).Scan(&owner)
		if errors.Is(err, pgx.ErrNoRows) || (err == nil && owner != memberID) {
			return profile.Skill{}, fmt.Errorf("experience %d does not belong to member %d", *experienceID, memberID)
		}
		if err != nil {
			return profile.Skill{}, err
		}
	}
	return sk, nil
}

func (s store) ClearResume(ctx context.Context, memberID int64) error {
	if _, err := s.q.Exec(ctx, `DELETE FROM experiences WHERE member_id = $1`, memberID); err != nil {
		return err
	}
	_, err := s.q.Exec(ctx, `DELETE FROM skills WHERE member_id = $1`, memberID)
	return err
}

func (s store) GetProfile(ctx context.Context, memberID int64) (profile.Profile, error) {
	m, err := scanMember(s.q.QueryRow(ctx, `
		SELECT id, telegram_id, name, username, created_at, updated_at
		FROM members WHERE id = $1
	`, memberID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile.Profile{}, profile.ErrNotFound
		}
		return profile.Profile{}, err
	}
	p := profile.Profile{Member: m, Experiences: []profile.Experience{}, Skills: []profile.Skill{}}

	rows, err := s.q.Query(ctx, `
		SELECT id, member_id, title, company_name, location, start_date, end_date, is_current, description
		FROM experiences WHERE member_id = $1
		ORDER BY id
	`, memberID)
	if err != nil {
		return profile.Profile{}, err
	}
	index := map[int64]int{}
	for rows.Next() {
		var e profile.Experience
		if err := rows.Scan(&e.ID, &e.MemberID, &e.Title, &e.CompanyName, &e.Location, &e.StartDate, &e.EndDate, &e.IsCurrent, &e.Description); err != nil {
			rows.Close()
			return profile.Profile{}, err
		}
		e.StartDate = utc(e.StartDate)
		e.EndDate = utc(e.EndDate)
		e.Skills = []profile.Skill{}
		index[e.ID] = len(p.Experiences)
		p.Experiences = append(p.Experiences, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return profile.Profile{}, err
	}

	rows, err = s.q.Query(ctx, `
		SELECT es.experience_id, s.id, s.member_id, s.name
		FROM experience_skills es
		JOIN skills s ON s.id = es.skill_id
		WHERE s.member_id = $1
		ORDER BY es.experience_id, s.id
	`, memberID)
	if err != nil {
		return profile.Profile{}, err
	}
	for rows.Next() {
		var expID int64
		var sk profile.Skill
		if err := rows.Scan(&expID, &sk.ID, &sk.MemberID, &sk.Name); err != nil {
			rows.Close()
			return profile.Profile{}, err
		}
		if i, ok := index[expID]; ok {
			p.Experiences[i].Skills = append(p.Experiences[i].Skills, sk)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return profile.Profile{}, err
	}

	rows, err = s.q.Query(ctx, `
		SELECT id, member_id, name FROM skills WHERE member_id = $1 ORDER BY id
	`, memberID)
	if err != nil {
		return profile.Profile{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var sk profile.Skill
		if err := rows.Scan(&sk.ID, &sk.MemberID, &sk.Name); err != nil {
			return profile.Profile{}, err
		}
		p.Skills = append(p.Skills, sk)
	}
	return p, rows.Err()
}

func scanMember(row pgx.Row) (profile.Member, error) {
	var m profile.Member
	if err := row.Scan(&m.ID, &m.TelegramID, &m.Name, &m.Username, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return profile.Member{}, err
	}
	m.CreatedAt = m.CreatedAt.UTC()
	m.UpdatedAt = m.UpdatedAt.UTC()
	return m, nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
