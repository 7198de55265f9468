package processor

import (
	"tradeline-server/internal/config"
)

// VoiceProfile is the effective (language tag, synthesized voice) pair used
// for <Say> verbs.
type VoiceProfile struct {
	Language string
	Voice    string
}

var defaultProfile = VoiceProfile{Language: "en-US", Voice: "alice"}

// localeFallbackVoice is the in-repo fallback table. Locales Twilio cannot
// speak natively (fil-PH) map to the closest supported pair.
var localeFallbackVoice = map[string]VoiceProfile{
	"en-CA":  {Language: "en-US", Voice: "alice"},
	"en-US":  {Language: "en-US", Voice: "alice"},
	"fr-CA":  {Language: "fr-CA", Voice: "alice"},
	"zh-CN":  {Language: "zh-CN", Voice: "alice"},
	"fil-PH": {Language: "en-US", Voice: "alice"},
	"hi-IN":  {Language: "en-IN", Voice: "alice"},
	"vi-VN":  {Language: "vi-VN", Voice: "alice"},
	"uk-UA":  {Language: "uk-UA", Voice: "alice"},
}

// countryLocale maps a caller country code to a supported locale.
var countryLocale = map[string]string{
	"CA": "en-CA",
	"US": "en-US",
	"CN": "zh-CN",
	"PH": "fil-PH",
	"IN": "hi-IN",
	"VN": "vi-VN",
	"UA": "uk-UA",
}

// LocaleResolver resolves the effective voice for a locale. All override
// sources are frozen at construction, so Resolve is a pure function.
type LocaleResolver struct {
	jsonOverrides map[string]config.LocaleVoice
	envPairs      map[string]config.LocaleVoice
}

// NewLocaleResolver builds a resolver from the configured override layers.
func NewLocaleResolver(cfg config.VoiceConfig) LocaleResolver {
	return LocaleResolver{
		jsonOverrides: cfg.LocaleOverrides,
		envPairs:      cfg.EnvPairOverrides,
	}
}

// Resolve returns the effective voice for a locale. Resolution order:
// JSON override map, per-locale env pair, built-in table, en-US default.
// Partial overrides fall back to the default for the missing half.
func (r LocaleResolver) Resolve(locale string) VoiceProfile {
	if v, ok := r.jsonOverrides[locale]; ok {
		return fillProfile(v)
	}
	if v, ok := r.envPairs[locale]; ok {
		return fillProfile(v)
	}
	if p, ok := localeFallbackVoice[locale]; ok {
		return p
	}
	return defaultProfile
}

func fillProfile(v config.LocaleVoice) VoiceProfile {
	p := VoiceProfile{Language: v.Language, Voice: v.Voice}
	if p.Language == "" {
		p.Language = defaultProfile.Language
	}
	if p.Voice == "" {
		p.Voice = defaultProfile.Voice
	}
	return p
}
