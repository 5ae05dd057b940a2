package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "built rest api in go", NormalizeText("Built REST-API in Go!"))
	assert.Equal(t, "c++ and c# developer", NormalizeText("  C++ and C#   developer "))
	assert.Equal(t, "разработка на go", NormalizeText("Разработка на Go"))
}

func TestContainsPhrase(t *testing.T) {
	assert.True(t, ContainsPhrase("built rest api in go", "rest api"))
	assert.False(t, ContainsPhrase("built rest apis", "rest api"))
	assert.False(t, ContainsPhrase("anything", ""))
}

func TestSkillVariants(t *testing.T) {
	assert.Equal(t, []string{"go", "golang"}, SkillVariants("Go"))
	assert.Equal(t, []string{"golang"}, SkillVariants("Golang"))
	assert.Equal(t, []string{"docker"}, SkillVariants("Docker"))
	assert.Nil(t, SkillVariants("  "))
}

func TestMatcher_Mentions(t *testing.T) {
	m := NewMatcher("Backend Engineer", "Services in Golang on Kubernetes, PostgreSQL storage")

	assert.True(t, m.Mentions("Go"))
	assert.True(t, m.Mentions("k8s"))
	assert.True(t, m.Mentions("Postgres"))
	assert.False(t, m.Mentions("Rust"))
	assert.False(t, m.Mentions("Java"))
}

func TestMatcher_IgnoresCommonWords(t *testing.T) {
	m := NewMatcher("Project Manager", "Helped the team go live with the Java billing system, rest of the time on TS reports")

	assert.False(t, m.Mentions("Go"))
	assert.False(t, m.Mentions("REST API"))
	assert.False(t, m.Mentions("TypeScript"))
	assert.True(t, m.Mentions("Java"))
	assert.False(t, m.Mentions("java script"))
}

func TestMatcher_SkillAsWritten(t *testing.T) {
	m := NewMatcher("Go Developer", "Deployed with Docker and k8s")

	assert.True(t, m.Mentions("Go"))
	assert.True(t, m.Mentions("Docker"))
	assert.True(t, m.Mentions("Kubernetes"))
	assert.False(t, m.Mentions("docker"))
}
