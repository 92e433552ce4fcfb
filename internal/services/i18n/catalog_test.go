package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_Languages(t *testing.T) {
	catalog, err := NewCatalog()
	require.NoError(t, err)

	names := make([]string, 0)
	for _, lang := range catalog.Languages() {
		names = append(names, lang.Name)
	}
	assert.Equal(t, []string{
		"English",
		"Hindi - हिन्दी",
		"Telugu - తెలుగు",
		"Tamil - தமிழ்",
		"Kannada - ಕನ್ನಡ",
		"Malayalam - മലയാളം",
	}, names)
}

func TestCatalog_EveryLanguageHasEveryKey(t *testing.T) {
	catalog := MustCatalog()
	english := catalog.Languages()[0].Strings

	for _, lang := range catalog.Languages() {
		for key := range english {
			assert.NotEmpty(t, lang.Strings[key], "%s missing %s", lang.Name, key)
		}
	}
}

func TestCatalog_Text(t *testing.T) {
	catalog := MustCatalog()

	assert.Equal(t, "Welcome", catalog.Text("English", KeyWelcome))
	assert.Equal(t, "स्वागत है", catalog.Text("Hindi - हिन्दी", KeyWelcome))
	assert.Equal(t, "Welcome", catalog.Text("Klingon", KeyWelcome), "unknown language falls back to English")
	assert.Equal(t, "missing_key", catalog.Text("English", "missing_key"))
}

func TestCatalog_NoResponse(t *testing.T) {
	catalog := MustCatalog()

	assert.Equal(t, "Sorry, I couldn't find a matching response for your query.", catalog.NoResponse("English"))
	assert.Equal(t, "உங்கள் கேள்விக்கான பதிலை காணவில்லை.", catalog.NoResponse("Tamil - தமிழ்"))
	assert.Equal(t, catalog.NoResponse("English"), catalog.NoResponse(""))

	empty, err := Parse([]byte(""))
	require.NoError(t, err)
	assert.NotEmpty(t, empty.NoResponse("English"))
}

func TestCatalog_Detect(t *testing.T) {
	catalog := MustCatalog()

	lang, ok := catalog.Detect("நான் ஒரு வழக்கறிஞரை சந்திக்க வேண்டும், தயவுசெய்து எனக்கு உதவுங்கள் மற்றும் வழிகாட்டுங்கள்")
	require.True(t, ok)
	assert.Equal(t, "Tamil - தமிழ்", lang)

	lang, ok = catalog.Detect("నాకు న్యాయవాది సహాయం కావాలి, దయచేసి నాకు మార్గదర్శనం చేయండి")
	require.True(t, ok)
	assert.Equal(t, "Telugu - తెలుగు", lang)
}
