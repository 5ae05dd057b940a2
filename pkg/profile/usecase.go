package profile

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/artem13815/resumebot/pkg/nlp"
)

// Policy decides what happens to earlier experiences when a member uploads
// another resume.
type Policy string

const (
	// PolicyAppend keeps every upload's experiences.
	PolicyAppend Policy = "append"
	// PolicyReplaceAll drops the member's experiences and skills before saving.
	PolicyReplaceAll Policy = "replace-all"
)

// ResumeData is what gets persisted for one upload.
type ResumeData struct {
	Experiences []ExperienceRecord
	Skills      []string
}

// SaveResult summarizes one committed upload.
type SaveResult struct {
	Member      Member
	Experiences int
	Skills      int
	Links       int
}

// UseCase — сценарии работы с профилем участника.
type UseCase interface {
	Register(ctx context.Context, id Identity) (Member, error)
	SaveResume(ctx context.Context, id Identity, data ResumeData) (SaveResult, error)
	GetProfile(ctx context.Context, rawID string) (Profile, error)
	FindMember(ctx context.Context, externalID string) (Member, error)
}

type service struct {
	repo       Repository
	policy     Policy
	linkSkills bool
}

// NewService creates the default implementation.
func NewService(repo Repository, policy Policy, linkSkills bool) UseCase {
	if policy != PolicyReplaceAll {
		policy = PolicyAppend
	}
	return &service{repo: repo, policy: policy, linkSkills: linkSkills}
}

func (s *service) Register(ctx context.Context, id Identity) (Member, error) {
	m, err := s.repo.UpsertMember(ctx, id.ExternalID, id.Name, id.Handle)
	if err != nil {
		return Member{}, &PersistenceError{Op: "upsert member", Err: err}
	}
	return m, nil
}

// SaveResume persists one upload atomically: either the member, all
// experiences and all skills are committed, or nothing is.
func (s *service) SaveResume(ctx context.Context, id Identity, data ResumeData) (SaveResult, error) {
	var res SaveResult
	err := s.repo.InTx(ctx, func(st Store) error {
		res = SaveResult{}
		m, err := st.UpsertMember(ctx, id.ExternalID, id.Name, id.Handle)
		if err != nil {
			return &PersistenceError{Op: "upsert member", Err: err}
		}
		res.Member = m

		if s.policy == PolicyReplaceAll {
			if err := st.ClearResume(ctx, m.ID); err != nil {
				return &PersistenceError{Op: "clear resume", Err: err}
			}
		}

		saved := make([]Experience, 0, len(data.Experiences))
		for _, rec := range data.Experiences {
			exp, err := st.AddExperience(ctx, m.ID, rec)
			if err != nil {
				return &PersistenceError{Op: "add experience", Err: err}
			}
			saved = append(saved, exp)
			res.Experiences++
		}

		seen := make(map[string]struct{}, len(data.Skills))
		for _, name := range data.Skills {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			if _, err := st.UpsertSkill(ctx, m.ID, name, nil); err != nil {
				return &PersistenceError{Op: "upsert skill", Err: err}
			}
			res.Skills++
			if !s.linkSkills {
				continue
			}
			for _, exp := range saved {
				if !nlp.NewMatcher(exp.Title, exp.Description).Mentions(name) {
					continue
				}
				expID := exp.ID
				if _, err := st.UpsertSkill(ctx, m.ID, name, &expID); err != nil {
					return &PersistenceError{Op: "link skill", Err: err}
				}
				res.Links++
			}
		}
		return nil
	})
	if err != nil {
		var pe *PersistenceError
		if errors.As(err, &pe) {
			return SaveResult{}, err
		}
		return SaveResult{}, &PersistenceError{Op: "transaction", Err: err}
	}
	return res, nil
}

// GetProfile coerces the raw identifier to the storage key; anything that
// does not parse as a positive integer can not match a member.
func (s *service) GetProfile(ctx context.Context, rawID string) (Profile, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
	if err != nil || id <= 0 {
		return Profile{}, ErrNotFound
	}
	p, err := s.repo.GetProfile(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, &PersistenceError{Op: "get profile", Err: err}
	}
	return p, nil
}

func (s *service) FindMember(ctx context.Context, externalID string) (Member, error) {
	m, err := s.repo.GetMemberByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Member{}, ErrNotFound
		}
		return Member{}, &PersistenceError{Op: "find member", Err: err}
	}
	return m, nil
}
