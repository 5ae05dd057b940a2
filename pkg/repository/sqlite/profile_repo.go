package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/artem13815/resumebot/pkg/profile"
)

var _ profile.Repository = (*ProfileRepository)(nil)

// ProfileRepository implements profile.Repository on top of sqlite.
type ProfileRepository struct {
	db *sql.DB
	store
}

// NewProfileRepository ensures the schema exists and returns the repository.
func NewProfileRepository(ctx context.Context, db *sql.DB) (*ProfileRepository, error) {
	if err := ensureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("creating sqlite schema: %w", err)
	}
	return &ProfileRepository{db: db, store: store{q: db}}, nil
}

func (r *ProfileRepository) InTx(ctx context.Context, fn func(profile.Store) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(store{q: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

// store carries the profile.Store operations for either the db or a tx.
type store struct {
	q querier
}

func (s store) UpsertMember(ctx context.Context, externalID, name, handle string) (profile.Member, error) {
	now := formatTime(time.Now())
	row := s.q.QueryRowContext(ctx, `
INSERT INTO members (telegram_id, name, username, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (telegram_id) DO UPDATE SET
	name = excluded.name,
	username = excluded.username,
	updated_at = excluded.updated_at
RETURNING id, telegram_id, name, username, created_at, updated_at
`, externalID, name, handle, now, now)
	return scanMember(row)
}

func (s store) GetMemberByExternalID(ctx context.Context, externalID string) (profile.Member, error) {
	row := s.q.QueryRowContext(ctx, `
SELECT id, telegram_id, name, username, created_at, updated_at
FROM members WHERE telegram_id = ?
`, externalID)
	m, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return profile.Member{}, profile.ErrNotFound
	}
	return m, err
}

func (s store) AddExperience(ctx context.Context, memberID int64, rec profile.ExperienceRecord) (profile.Experience, error) {
	start, end, current := rec.Dates()
	var location sql.NullString
	if loc := strings.TrimSpace(rec.Location); loc != "" {
		location = sql.NullString{String: loc, Valid: true}
	}
	res, err := s.q.ExecContext(ctx, `
INSERT INTO experiences (member_id, title, company_name, location, start_date, end_date, is_current, description)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, memberID, rec.Title, rec.CompanyName, location, formatNullTime(start), formatNullTime(end), current, rec.Description)
	if err != nil {
		return profile.Experience{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return profile.Experience{}, err
	}
	exp := profile.Experience{
		ID:          id,
		MemberID:    memberID,
		Title:       rec.Title,
		CompanyName: rec.CompanyName,
		StartDate:   start,
		EndDate:     end,
		IsCurrent:   current,
		Description: rec.Description,
		Skills:      []profile.Skill{},
	}
	if location.Valid {
		exp.Location = &location.String
	}
	return exp, nil
}

func (s store) UpsertSkill(ctx context.Context, memberID int64, name string, experienceID *int64) (profile.Skill, error) {
	if _, err := s.q.ExecContext(ctx, `
INSERT INTO skills (member_id, name) VALUES (?, ?)
ON CONFLICT (member_id, name) DO NOTHING
`, memberID, name); err != nil {
		return profile.Skill{}, err
	}
	var sk profile.Skill
	if err := s.q.QueryRowContext(ctx, `
SELECT id, member_id, name FROM skills WHERE member_id = ? AND name = ?
`, memberID, name).Scan(&sk.ID, &sk.MemberID, &sk.Name); err != nil {
		return profile.Skill{}, err
	}
	if experienceID == nil {
		return sk, nil
	}

	var owner int64
	err := s.q.QueryRowContext(ctx, `SELECT member_id FROM experiences WHERE id = ?`, *experienceID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && owner != memberID) {
		return profile.Skill{}, fmt.Errorf("experience %d does not belong to member %d", *experienceID, memberID)
	}
	if err != nil {
		return profile.Skill{}, err
	}
	if _, err := s.q.ExecContext(ctx, `
INSERT INTO experience_skills (experience_id, skill_id) VALUES (?, ?)
ON CONFLICT (experience_id, skill_id) DO NOTHING
`, *experienceID, sk.ID); err != nil {
		return profile.Skill{}, err
	}
	return sk, nil
}

func (s store) ClearResume(ctx context.Context, memberID int64) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM experiences WHERE member_id = ?`, memberID); err != nil {
		return err
	}
	_, err := s.q.ExecContext(ctx, `DELETE FROM skills WHERE member_id = ?`, memberID)
	return err
}

func (s store) GetProfile(ctx context.Context, memberID int64) (profile.Profile, error) {
	row := s.q.QueryRowContext(ctx, `
SELECT id, telegram_id, name, username, created_at, updated_at
FROM members WHERE id = ?
`, memberID)
	m, err := scanMember(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return profile.Profile{}, profile.ErrNotFound
		}
		return profile.Profile{}, err
	}
	p := profile.Profile{Member: m, Experiences: []profile.Experience{}, Skills: []profile.Skill{}}

	rows, err := s.q.QueryContext(ctx, `
SELECT id, member_id, title, company_name, location, start_date, end_date, is_current, description
FROM experiences WHERE member_id = ?
ORDER BY id
`, memberID)
	if err != nil {
		return profile.Profile{}, err
	}
	index := map[int64]int{}
	for rows.Next() {
		var (
			e          profile.Experience
			location   sql.NullString
			start, end sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.MemberID, &e.Title, &e.CompanyName, &location, &start, &end, &e.IsCurrent, &e.Description); err != nil {
			rows.Close()
			return profile.Profile{}, err
		}
		if location.Valid {
			e.Location = &location.String
		}
		if e.StartDate, err = parseNullTime(start); err != nil {
			rows.Close()
			return profile.Profile{}, err
		}
		if e.EndDate, err = parseNullTime(end); err != nil {
			rows.Close()
			return profile.Profile{}, err
		}
		e.Skills = []profile.Skill{}
		index[e.ID] = len(p.Experiences)
		p.Experiences = append(p.Experiences, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return profile.Profile{}, err
	}
	rows.Close()

	rows, err = s.q.QueryContext(ctx, `
SELECT es.experience_id, s.id, s.member_id, s.name
FROM experience_skills es
JOIN skills s ON s.id = es.skill_id
JOIN experiences e ON e.id = es.experience_id
WHERE e.member_id = ?
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
	if err := rows.Err(); err != nil {
		rows.Close()
		return profile.Profile{}, err
	}
	rows.Close()

	rows, err = s.q.QueryContext(ctx, `
SELECT id, member_id, name FROM skills WHERE member_id = ? ORDER BY id
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

func scanMember(row *sql.Row) (profile.Member, error) {
	var (
		m                profile.Member
		created, updated string
	)
	if err := row.Scan(&m.ID, &m.TelegramID, &m.Name, &m.Username, &created, &updated); err != nil {
		return profile.Member{}, err
	}
	var err error
	if m.CreatedAt, err = parseTime(created); err != nil {
		return profile.Member{}, err
	}
	if m.UpdatedAt, err = parseTime(updated); err != nil {
		return profile.Member{}, err
	}
	return m, nil
}
