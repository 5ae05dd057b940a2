package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "PUBLIC_BASE_URL", "MINI_APP_URL", "DATABASE_URL", "TELEGRAM_BOT_TOKEN",
		"TELEGRAM_BOT_API", "LLM_PROVIDER", "OPENAI_API_KEY", "OPENAI_KEY", "OPENAI_MODEL",
		"GEMINI_API_KEY", "EXPERIENCE_POLICY", "LINK_SKILLS", "MAX_DOCUMENT_BYTES",
		"ARCHIVE_DRIVER", "S3_BUCKET",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load("does-not-exist.env")

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "openai", cfg.LLMProvider)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.Equal(t, PolicyAppend, cfg.ExperiencePolicy)
	assert.False(t, cfg.LinkSkills)
	assert.Equal(t, int64(15<<20), cfg.MaxDocumentBytes)
	assert.Equal(t, "none", cfg.ArchiveDriver)
}

func TestLoad_LinkSkillsOptIn(t *testing.T) {
	clearEnv(t)
	t.Setenv("LINK_SKILLS", "true")

	assert.True(t, Load("does-not-exist.env").LinkSkills)
}

func TestLoad_LegacyNames(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_API", "tg-token")
	t.Setenv("OPENAI_KEY", "sk-test")
	t.Setenv("MINI_APP_URL", "https://app.example.com/")

	cfg := Load("does-not-exist.env")

	assert.Equal(t, "tg-token", cfg.TelegramToken)
	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.Equal(t, "https://app.example.com", cfg.PublicBaseURL)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "sqlite://test.db")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg := Load("does-not-exist.env")
	require.NoError(t, cfg.Validate(false))

	err := cfg.Validate(true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")
	assert.Contains(t, err.Error(), "PUBLIC_BASE_URL")

	cfg.ExperiencePolicy = "merge"
	assert.ErrorContains(t, cfg.Validate(false), "EXPERIENCE_POLICY")
}

func TestValidate_MissingSecrets(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "gemini")

	err := Load("does-not-exist.env").Validate(false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}
