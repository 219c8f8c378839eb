package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSeverityConfig(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		content  string
		wantErr  bool
		wantCats []string
	}{
		{
			name:     "missing file falls back to defaults",
			wantCats: []string{"crisis", "emergency", "stress", "distress"},
		},
		{
			name: "custom categories",
			content: `categories:
  - name: crisis
    keywords: ["suicidal"]
  - name: grief
    keywords: ["funeral", "passed away"]
`,
			wantCats: []string{"crisis", "grief"},
		},
		{name: "empty categories", content: "categories: []\n", wantErr: true},
		{name: "category without keywords", content: "categories:\n  - name: x\n", wantErr: true},
		{name: "malformed yaml", content: "categories: [", wantErr: true},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "missing.yaml")
			if tt.content != "" {
				path = filepath.Join(dir, "severity"+string(rune('a'+i))+".yaml")
				require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			}

			cfg, err := LoadSeverityConfig(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			names := make([]string, 0, len(cfg.Categories))
			for _, c := range cfg.Categories {
				names = append(names, c.Name)
			}
			assert.Equal(t, tt.wantCats, names)
		})
	}
}

func TestDefaultSeverityConfig_CoversKeywordList(t *testing.T) {
	want := []string{
		"emergency", "accident", "hospital", "stressful", "family issue", "depressed", "sad",
		"hopeless", "worthless", "suicidal", "empty", "alone", "miserable", "end it all",
	}

	var got []string
	for _, c := range DefaultSeverityConfig().Categories {
		got = append(got, c.Keywords...)
	}
	assert.ElementsMatch(t, want, got)
}

func TestDefaults(t *testing.T) {
	t.Setenv("HISTORY_LIMIT", "42")

	app, llm, emb, cache, httpCfg, err := Defaults()
	require.NoError(t, err)

	assert.Equal(t, 5, app.HistoryLimit, "process env must be ignored")
	assert.Equal(t, 72*time.Hour, app.FlagTTL)
	assert.Equal(t, float32(0.65), app.GreetingThreshold)
	assert.Equal(t, "gemini", llm.Provider)
	assert.Equal(t, 384, emb.Dim)
	assert.Equal(t, time.Hour, cache.TTL)
	assert.Equal(t, 1000, cache.Capacity)
	assert.Equal(t, ":5001", httpCfg.Addr)
}

func TestTelegramConfig_IsAllowed(t *testing.T) {
	open := TelegramConfig{}
	assert.True(t, open.IsAllowed(7))

	restricted := TelegramConfig{AllowedIDs: []int64{1, 2}}
	assert.True(t, restricted.IsAllowed(2))
	assert.False(t, restricted.IsAllowed(3))
}

func TestResolveRuntimePath(t *testing.T) {
	assert.Equal(t, "/srv/care", resolveRuntimePath("/srv/care"))

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".carebot"), resolveRuntimePath(""))
}

func TestIsDebug(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", false},
		{"1", true},
		{"true", true},
		{"TRUE", true},
		{"0", false},
		{"yes", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("CARE_DEBUG", tt.value)
			assert.Equal(t, tt.want, IsDebug())
		})
	}
}
