package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected Tag
	}{
		{"Hindi script question", "मेरी फसल में कीट लग गए हैं", Hindi},
		{"English question", "My crop has pests", English},
		{"Hindi domain words", "पानी और फसल की खेती", Hindi},
		{"no keywords ties to English", "xyz 123", English},
		{"empty ties to English", "", English},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Detect(tc.input))
		})
	}
}

func TestProfileFor(t *testing.T) {
	hindi := ProfileFor(Hindi)
	assert.Equal(t, "hi-IN", hindi.STTLocale)
	assert.Equal(t, "hi-IN-MadhurNeural", hindi.EdgeVoice)
	assert.Equal(t, "hi", hindi.GTTSCode)

	english := ProfileFor(English)
	assert.Equal(t, "en-IN", english.STTLocale)

	// Unknown tags fall back to the default profile.
	assert.Equal(t, hindi, ProfileFor(Tag("klingon")))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "हिंदी", DisplayName(Hindi))
	assert.Equal(t, "English", DisplayName(English))
	assert.Equal(t, "हिंदी", DisplayName(Tag("klingon")))
}

func TestAllTagsHaveProfiles(t *testing.T) {
	tags := []Tag{Hindi, English, Punjabi, Gujarati, Marathi, Telugu, Tamil, Kannada, Bengali, Odia, Assamese, Malayalam}
	assert.Len(t, profiles, len(tags))
	for _, tag := range tags {
		p, ok := profiles[tag]
		assert.True(t, ok, "missing profile for %s", tag)
		assert.NotEmpty(t, p.STTLocale)
		assert.NotEmpty(t, p.EdgeVoice)
		assert.NotEmpty(t, p.GTTSCode)
	}
}
