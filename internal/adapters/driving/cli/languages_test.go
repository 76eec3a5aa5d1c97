package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/babelkb/babelkb/internal/core/domain"
)

func TestLanguagesCmd_Use(t *testing.T) {
	assert.Equal(t, "languages", languagesCmd.Use)
}

func TestLanguagesCmd_ListsCatalogue(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"languages"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "English")
	assert.Contains(t, buf.String(), "source")
	assert.Contains(t, buf.String(), "Spanish")
	assert.Contains(t, buf.String(), "translated")
}

func TestSupportedLanguages_IncludesSource(t *testing.T) {
	var found bool
	for _, p := range supportedLanguages() {
		if p.Code == domain.SourceLanguage {
			found = true
			assert.False(t, p.Translatable, "source language is never a translation target")
		}
	}
	assert.True(t, found)
}

func TestSupportedLanguages_TargetsHaveBackendCodes(t *testing.T) {
	for _, p := range supportedLanguages() {
		assert.NotEmpty(t, p.BackendCode, "profile %s needs a provider code", p.Code)
	}
}
