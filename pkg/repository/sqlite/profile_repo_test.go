package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/resumebot/pkg/ingest"
	"github.com/artem13815/resumebot/pkg/profile"
	storage "github.com/artem13815/resumebot/pkg/storage/sqlite"
)

func newTestRepo(t *testing.T) *ProfileRepository {
	t.Helper()
	ctx := context.Background()
	db, err := storage.Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "profiles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := NewProfileRepository(ctx, db)
	require.NoError(t, err)
	return repo
}

func TestUpsertMember_IsIdempotentPerExternalID(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	first, err := repo.UpsertMember(ctx, "42", "Ada", "ada")
	require.NoError(t, err)
	second, err := repo.UpsertMember(ctx, "42", "Ada Lovelace", "ada_l")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Ada Lovelace", second.Name)
	assert.Equal(t, "ada_l", second.Username)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)

	other, err := repo.UpsertMember(ctx, "43", "Grace", "")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestUpsertSkill_UniquePerMemberCaseSensitive(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	m, err := repo.UpsertMember(ctx, "1", "A", "")
	require.NoError(t, err)

	a, err := repo.UpsertSkill(ctx, m.ID, "Go", nil)
	require.NoError(t, err)
	b, err := repo.UpsertSkill(ctx, m.ID, "Go", nil)
	require.NoError(t, err)
	c, err := repo.UpsertSkill(ctx, m.ID, "go", nil)
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
	assert.NotEqual(t, a.ID, c.ID)

	p, err := repo.GetProfile(ctx, m.ID)
	require.NoError(t, err)
	assert.Len(t, p.Skills, 2)
}

func TestUpsertSkill_LinksOnce(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	m, err := repo.UpsertMember(ctx, "1", "A", "")
	require.NoError(t, err)
	exp, err := repo.AddExperience(ctx, m.ID, profile.ExperienceRecord{Title: "Backend Engineer", CompanyName: "Acme", StartDate: "2020-01"})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := repo.UpsertSkill(ctx, m.ID, "Go", &exp.ID)
		require.NoError(t, err)
	}

	p, err := repo.GetProfile(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, p.Experiences, 1)
	require.Len(t, p.Experiences[0].Skills, 1)
	assert.Equal(t, "Go", p.Experiences[0].Skills[0].Name)
}

func TestUpsertSkill_RejectsForeignExperience(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	a, err := repo.UpsertMember(ctx, "1", "A", "")
	require.NoError(t, err)
	b, err := repo.UpsertMember(ctx, "2", "B", "")
	require.NoError(t, err)
	exp, err := repo.AddExperience(ctx, a.ID, profile.ExperienceRecord{Title: "Dev", CompanyName: "Acme"})
	require.NoError(t, err)

	_, err = repo.UpsertSkill(ctx, b.ID, "Go", &exp.ID)
	assert.Error(t, err)
}

func TestAddExperience_Dates(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	m, err := repo.UpsertMember(ctx, "1", "A", "")
	require.NoError(t, err)

	_, err = repo.AddExperience(ctx, m.ID, profile.ExperienceRecord{
		Title: "Engineer", CompanyName: "Acme", Location: "Berlin",
		StartDate: "2019-03", EndDate: "Present", Description: "APIs",
	})
	require.NoError(t, err)
	_, err = repo.AddExperience(ctx, m.ID, profile.ExperienceRecord{
		Title: "Intern", CompanyName: "Initech", StartDate: "2017-06-01", EndDate: "2018-01-15",
	})
	require.NoError(t, err)

	p, err := repo.GetProfile(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, p.Experiences, 2)

	cur := p.Experiences[0]
	assert.True(t, cur.IsCurrent)
	assert.Nil(t, cur.EndDate)
	require.NotNil(t, cur.StartDate)
	assert.Equal(t, time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC), cur.StartDate.UTC())
	require.NotNil(t, cur.Location)
	assert.Equal(t, "Berlin", *cur.Location)

	past := p.Experiences[1]
	assert.False(t, past.IsCurrent)
	require.NotNil(t, past.EndDate)
	assert.Equal(t, time.Date(2018, 1, 15, 0, 0, 0, 0, time.UTC), past.EndDate.UTC())
	assert.Nil(t, past.Location)
}

func TestGetProfile_NotFound(t *testing.T) {
	_, err := newTestRepo(t).GetProfile(context.Background(), 999)
	assert.ErrorIs(t, err, profile.ErrNotFound)
}

func TestGetMemberByExternalID(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	_, err := repo.GetMemberByExternalID(ctx, "7")
	assert.ErrorIs(t, err, profile.ErrNotFound)

	m, err := repo.UpsertMember(ctx, "7", "Linus", "")
	require.NoError(t, err)
	got, err := repo.GetMemberByExternalID(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)
}

func TestInTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	boom := errors.New("boom")
	err := repo.InTx(ctx, func(st profile.Store) error {
		m, err := st.UpsertMember(ctx, "9", "Temp", "")
		if err != nil {
			return err
		}
		if _, err := st.AddExperience(ctx, m.ID, profile.ExperienceRecord{Title: "X", CompanyName: "Y"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = repo.GetMemberByExternalID(ctx, "9")
	assert.ErrorIs(t, err, profile.ErrNotFound)
}

func TestClearResume_RemovesExperiencesSkillsAndLinks(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	m, err := repo.UpsertMember(ctx, "1", "A", "")
	require.NoError(t, err)
	exp, err := repo.AddExperience(ctx, m.ID, profile.ExperienceRecord{Title: "Go dev", CompanyName: "Acme"})
	require.NoError(t, err)
	_, err = repo.UpsertSkill(ctx, m.ID, "Go", &exp.ID)
	require.NoError(t, err)

	require.NoError(t, repo.ClearResume(ctx, m.ID))

	p, err := repo.GetProfile(ctx, m.ID)
	require.NoError(t, err)
	assert.Empty(t, p.Experiences)
	assert.Empty(t, p.Skills)

	var links int
	require.NoError(t, repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM experience_skills`).Scan(&links))
	assert.Zero(t, links)
}

func TestDeleteMember_Cascades(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	m, err := repo.UpsertMember(ctx, "1", "A", "")
	require.NoError(t, err)
	_, err = repo.AddExperience(ctx, m.ID, profile.ExperienceRecord{Title: "Dev", CompanyName: "Acme"})
	require.NoError(t, err)
	_, err = repo.UpsertSkill(ctx, m.ID, "SQL", nil)
	require.NoError(t, err)

	_, err = repo.db.ExecContext(ctx, `DELETE FROM members WHERE id = ?`, m.ID)
	require.NoError(t, err)

	for _, table := range []string{"experiences", "skills"} {
		var n int
		require.NoError(t, repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n))
		assert.Zero(t, n, table)
	}
}

func TestService_SaveResume(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	svc := profile.NewService(repo, profile.PolicyAppend, true)
	id := profile.Identity{ExternalID: "100", Name: "Jane", Handle: "jane"}

	res, err := svc.SaveResume(ctx, id, profile.ResumeData{
		Experiences: []profile.ExperienceRecord{
			{Title: "Go Developer", CompanyName: "Acme", StartDate: "2021-01", EndDate: "present", Description: "Built services with Postgres"},
			{Title: "Analyst", CompanyName: "Initech", StartDate: "2018", EndDate: "2020"},
		},
		Skills: []string{"Go", "PostgreSQL", " ", "Excel"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Experiences)
	assert.Equal(t, 3, res.Skills)
	assert.Equal(t, 2, res.Links)

	p, err := svc.GetProfile(ctx, "  "+itoa(res.Member.ID))
	require.NoError(t, err)
	assert.Equal(t, "Jane", p.Name)
	require.Len(t, p.Experiences, 2)
	assert.Len(t, p.Experiences[0].Skills, 2)
	assert.Empty(t, p.Experiences[1].Skills)

	// A second upload under append keeps the first one's experiences.
	_, err = svc.SaveResume(ctx, id, profile.ResumeData{
		Experiences: []profile.ExperienceRecord{{Title: "Lead", CompanyName: "Globex"}},
		Skills:      []string{"Go"},
	})
	require.NoError(t, err)
	p, err = svc.GetProfile(ctx, itoa(res.Member.ID))
	require.NoError(t, err)
	assert.Len(t, p.Experiences, 3)
	assert.Len(t, p.Skills, 3)
}

func TestService_SaveResumeCountsDistinctSkills(t *testing.T) {
	ctx := context.Background()
	svc := profile.NewService(newTestRepo(t), profile.PolicyAppend, false)

	res, err := svc.SaveResume(ctx, profile.Identity{ExternalID: "101"}, profile.ResumeData{
		Skills: []string{"Go", " Go ", "go", "Go"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Skills)

	p, err := svc.GetProfile(ctx, itoa(res.Member.ID))
	require.NoError(t, err)
	assert.Len(t, p.Skills, 2)
}

func TestService_SaveResumeDoesNotLinkCommonWords(t *testing.T) {
	ctx := context.Background()
	svc := profile.NewService(newTestRepo(t), profile.PolicyAppend, true)

	res, err := svc.SaveResume(ctx, profile.Identity{ExternalID: "102"}, profile.ResumeData{
		Experiences: []profile.ExperienceRecord{{
			Title: "Project Manager", CompanyName: "Acme",
			Description: "Helped the team go live with the Java billing system",
		}},
		Skills: []string{"Go", "Java"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Links)

	p, err := svc.GetProfile(ctx, itoa(res.Member.ID))
	require.NoError(t, err)
	require.Len(t, p.Experiences, 1)
	require.Len(t, p.Experiences[0].Skills, 1)
	assert.Equal(t, "Java", p.Experiences[0].Skills[0].Name)
}

func TestService_SaveResumeReplaceAll(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	svc := profile.NewService(repo, profile.PolicyReplaceAll, false)
	id := profile.Identity{ExternalID: "100", Name: "Jane"}

	_, err := svc.SaveResume(ctx, id, profile.ResumeData{
		Experiences: []profile.ExperienceRecord{{Title: "Dev", CompanyName: "Acme"}},
		Skills:      []string{"Go", "SQL"},
	})
	require.NoError(t, err)
	res, err := svc.SaveResume(ctx, id, profile.ResumeData{
		Experiences: []profile.ExperienceRecord{{Title: "Lead", CompanyName: "Globex"}},
		Skills:      []string{"Rust"},
	})
	require.NoError(t, err)

	p, err := svc.GetProfile(ctx, itoa(res.Member.ID))
	require.NoError(t, err)
	require.Len(t, p.Experiences, 1)
	assert.Equal(t, "Lead", p.Experiences[0].Title)
	require.Len(t, p.Skills, 1)
	assert.Equal(t, "Rust", p.Skills[0].Name)
}

func TestService_GetProfileBadID(t *testing.T) {
	svc := profile.NewService(newTestRepo(t), profile.PolicyAppend, true)
	for _, raw := range []string{"", "abc", "-1", "0", "1.5"} {
		_, err := svc.GetProfile(context.Background(), raw)
		assert.ErrorIs(t, err, profile.ErrNotFound, raw)
	}
}

func TestUploadRepository(t *testing.T) {
	ctx := context.Background()
	profiles := newTestRepo(t)
	uploads, err := NewUploadRepository(ctx, profiles.db)
	require.NoError(t, err)

	m, err := profiles.UpsertMember(ctx, "5", "A", "")
	require.NoError(t, err)

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, uploads.Record(ctx, ingest.UploadRecord{
		TelegramID: "5", FileName: "cv.pdf", MimeType: "application/pdf", SizeBytes: 10,
		Stage: ingest.StageExtracted, Status: ingest.UploadStatusFailed, Error: "no text", CreatedAt: base,
	}))
	okID := uuid.New()
	require.NoError(t, uploads.Record(ctx, ingest.UploadRecord{
		ID: okID, TelegramID: "5", MemberID: &m.ID, FileName: "cv2.pdf", MimeType: "application/pdf",
		SizeBytes: 20, Stage: ingest.StageReplied, Status: ingest.UploadStatusOK, CreatedAt: base.Add(time.Minute),
	}))

	recs, err := uploads.ListByTelegramID(ctx, "5", 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, okID, recs[0].ID)
	require.NotNil(t, recs[0].MemberID)
	assert.Equal(t, m.ID, *recs[0].MemberID)
	assert.Equal(t, ingest.StageExtracted, recs[1].Stage)
	assert.Equal(t, "no text", recs[1].Error)
	assert.Nil(t, recs[1].MemberID)

	none, err := uploads.ListByTelegramID(ctx, "6", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUploadRepository_OrdersSubSecondTimes(t *testing.T) {
	ctx := context.Background()
	profiles := newTestRepo(t)
	uploads, err := NewUploadRepository(ctx, profiles.db)
	require.NoError(t, err)

	base := time.Date(2025, 3, 1, 10, 0, 5, 100*int(time.Millisecond), time.UTC)
	require.NoError(t, uploads.Record(ctx, ingest.UploadRecord{
		TelegramID: "7", FileName: "older.pdf", Stage: ingest.StageReplied,
		Status: ingest.UploadStatusOK, CreatedAt: base,
	}))
	require.NoError(t, uploads.Record(ctx, ingest.UploadRecord{
		TelegramID: "7", FileName: "newer.pdf", Stage: ingest.StageReplied,
		Status: ingest.UploadStatusOK, CreatedAt: base.Add(20 * time.Millisecond),
	}))

	recs, err := uploads.ListByTelegramID(ctx, "7", 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "newer.pdf", recs[0].FileName)
	assert.Equal(t, "older.pdf", recs[1].FileName)
	assert.True(t, recs[1].CreatedAt.Equal(base))
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
