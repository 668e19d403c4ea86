package i18n

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbedded(t *testing.T) {
	r, err := LoadEmbedded()
	require.NoError(t, err)

	assert.Equal(t, []string{"en", "vi"}, r.Locales())
}

func TestMatch(t *testing.T) {
	r, err := LoadEmbedded()
	require.NoError(t, err)

	tests := []struct {
		raw  string
		want string
	}{
		{"", "en"},
		{"   ", "en"},
		{"vi", "vi"},
		{"vi-VN,vi;q=0.9,en;q=0.8", "vi"},
		{"en-US", "en"},
		{"fr-FR", "en"},
		{"not a locale;;", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Match(tt.raw).String())
		})
	}
}

func TestResolve(t *testing.T) {
	r, err := LoadEmbedded()
	require.NoError(t, err)

	assert.Equal(t, "No data found", r.Resolve("en", "app.common.exception.no-data", nil))
	assert.Equal(t, "Không có dữ liệu", r.Resolve("vi-VN", "app.common.exception.no-data", nil))
	assert.Equal(t,
		"User bob or email bob@example.com is already registered",
		r.Resolve("en", "app.auth.exception.user-exists", map[string]any{"username": "bob", "email": "bob@example.com"}),
	)
	assert.Equal(t, "app.unknown.key", r.Resolve("vi", "app.unknown.key", nil))
}

func TestMessages_FallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "locales/en.yaml"), `locale: "en"
messages:
  "a": "A"
  "b": "B"
`)
	writeFile(t, filepath.Join(dir, "locales/de.yaml"), `locale: "de"
messages:
  "a": "Ä"
`)

	r, err := LoadFromFS(os.DirFS(dir))
	require.NoError(t, err)

	locale, messages := r.Messages("de-AT")
	assert.Equal(t, "de", locale)
	assert.Equal(t, map[string]string{"a": "Ä", "b": "B"}, messages)
	assert.Equal(t, "B", r.Resolve("de", "b", nil))
}

func TestResolve_LiteralPercent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "locales/en.yaml"), `locale: "en"
messages:
  "quota": "{name} used 100% of the quota (%d %s)"
`)

	r, err := LoadFromFS(os.DirFS(dir))
	require.NoError(t, err)

	assert.Equal(t, "bob used 100% of the quota (%d %s)",
		r.Resolve("en", "quota", map[string]any{"name": "bob"}))

	_, messages := r.Messages("en")
	assert.Equal(t, "{name} used 100% of the quota (%d %s)", messages["quota"])
}

func TestLoadFromFS_RequiresDefaultLocale(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "locales/de.yaml"), `locale: "de"
messages:
  "a": "Ä"
`)

	_, err := LoadFromFS(os.DirFS(dir))
	assert.Error(t, err)
}

func TestLoadFromFS_RejectsDuplicateLocale(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "locales/en.yaml"), `locale: "en"
messages:
  "a": "A"
`)
	writeFile(t, filepath.Join(dir, "locales/en2.yaml"), `locale: "en"
messages:
  "b": "B"
`)

	_, err := LoadFromFS(os.DirFS(dir))
	assert.Error(t, err)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
