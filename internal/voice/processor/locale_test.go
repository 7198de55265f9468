package processor

import (
	"testing"

	"tradeline-server/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestResolve_BuiltinTable(t *testing.T) {
	t.Parallel()
	resolver := NewLocaleResolver(config.VoiceConfig{})

	tests := []struct {
		locale string
		want   VoiceProfile
	}{
		{"en-CA", VoiceProfile{Language: "en-US", Voice: "alice"}},
		{"fr-CA", VoiceProfile{Language: "fr-CA", Voice: "alice"}},
		{"fil-PH", VoiceProfile{Language: "en-US", Voice: "alice"}},
		{"hi-IN", VoiceProfile{Language: "en-IN", Voice: "alice"}},
		{"uk-UA", VoiceProfile{Language: "uk-UA", Voice: "alice"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, resolver.Resolve(tt.locale), "locale %s", tt.locale)
	}
}

func TestResolve_UnknownLocaleFallsBackToDefault(t *testing.T) {
	t.Parallel()
	resolver := NewLocaleResolver(config.VoiceConfig{})

	assert.Equal(t, VoiceProfile{Language: "en-US", Voice: "alice"}, resolver.Resolve("xx-YY"))
	assert.Equal(t, VoiceProfile{Language: "en-US", Voice: "alice"}, resolver.Resolve(""))
}

func TestResolve_JSONOverrideWinsOverEnvPair(t *testing.T) {
	t.Parallel()
	resolver := NewLocaleResolver(config.VoiceConfig{
		LocaleOverrides: map[string]config.LocaleVoice{
			"fr-CA": {Language: "fr-FR", Voice: "Polly.Celine"},
		},
		EnvPairOverrides: map[string]config.LocaleVoice{
			"fr-CA": {Language: "fr-CA", Voice: "woman"},
		},
	})

	assert.Equal(t, VoiceProfile{Language: "fr-FR", Voice: "Polly.Celine"}, resolver.Resolve("fr-CA"))
}

func TestResolve_EnvPairWinsOverBuiltin(t *testing.T) {
	t.Parallel()
	resolver := NewLocaleResolver(config.VoiceConfig{
		EnvPairOverrides: map[string]config.LocaleVoice{
			"zh-CN": {Language: "zh-CN", Voice: "Polly.Zhiyu"},
		},
	})

	assert.Equal(t, VoiceProfile{Language: "zh-CN", Voice: "Polly.Zhiyu"}, resolver.Resolve("zh-CN"))
	// Other locales are untouched by the override.
	assert.Equal(t, VoiceProfile{Language: "vi-VN", Voice: "alice"}, resolver.Resolve("vi-VN"))
}

func TestResolve_PartialOverrideFillsMissingHalf(t *testing.T) {
	t.Parallel()
	resolver := NewLocaleResolver(config.VoiceConfig{
		LocaleOverrides: map[string]config.LocaleVoice{
			"en-CA": {Voice: "man"},
			"hi-IN": {Language: "hi-IN"},
		},
	})

	assert.Equal(t, VoiceProfile{Language: "en-US", Voice: "man"}, resolver.Resolve("en-CA"))
	assert.Equal(t, VoiceProfile{Language: "hi-IN", Voice: "alice"}, resolver.Resolve("hi-IN"))
}

func TestResolve_IsDeterministic(t *testing.T) {
	t.Parallel()
	resolver := NewLocaleResolver(config.VoiceConfig{
		EnvPairOverrides: map[string]config.LocaleVoice{
			"uk-UA": {Language: "uk-UA", Voice: "Polly.Olena"},
		},
	})

	first := resolver.Resolve("uk-UA")
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, resolver.Resolve("uk-UA"))
	}
}
