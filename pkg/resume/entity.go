package resume

import (
	"strings"

	"github.com/artem13815/resumebot/pkg/profile"
)

// Resume — структурированный результат разбора резюме моделью.
type Resume struct {
	WorkExperiences []WorkExperience `json:"work_experiences" validate:"dive"`
	Skills          []string         `json:"skills"`
}

// WorkExperience — одна позиция. Даты остаются строками: модель
// возвращает их в произвольном виде ("2019-03", "March 2019", "Present").
type WorkExperience struct {
	JobTitle    string  `json:"job_title" validate:"required"`
	CompanyName string  `json:"company_name" validate:"required"`
	Location    *string `json:"location,omitempty"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	Description *string `json:"description"`
}

// ProfileData converts the parsed resume into what the profile service stores.
func (r Resume) ProfileData() profile.ResumeData {
	data := profile.ResumeData{
		Experiences: make([]profile.ExperienceRecord, 0, len(r.WorkExperiences)),
		Skills:      make([]string, 0, len(r.Skills)),
	}
	for _, w := range r.WorkExperiences {
		data.Experiences = append(data.Experiences, profile.ExperienceRecord{
			Title:       w.JobTitle,
			CompanyName: w.CompanyName,
			Location:    deref(w.Location),
			StartDate:   deref(w.StartDate),
			EndDate:     deref(w.EndDate),
			Description: deref(w.Description),
		})
	}
	data.Skills = append(data.Skills, r.Skills...)
	return data
}

func (r *Resume) normalize() {
	if r.WorkExperiences == nil {
		r.WorkExperiences = []WorkExperience{}
	}
	for i := range r.WorkExperiences {
		w := &r.WorkExperiences[i]
		w.JobTitle = strings.TrimSpace(w.JobTitle)
		w.CompanyName = strings.TrimSpace(w.CompanyName)
		w.Location = trimPtr(w.Location)
		w.StartDate = trimPtr(w.StartDate)
		w.EndDate = trimPtr(w.EndDate)
		w.Description = trimPtr(w.Description)
	}
	skills := make([]string, 0, len(r.Skills))
	for _, s := range r.Skills {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	r.Skills = skills
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
