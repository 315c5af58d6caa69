package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	catalog, err := NewCatalog()
	require.NoError(t, err)
	return catalog
}

func TestNewCatalog_LoadsEmbeddedBundles(t *testing.T) {
	catalog := newTestCatalog(t)

	assert.Len(t, catalog.badWeather, 3)
	for _, lang := range []string{"en", "ru", "uk"} {
		assert.NotEmpty(t, catalog.badWeather[lang], "lexicon for %s", lang)
	}
}

func TestTranslator_T(t *testing.T) {
	catalog := newTestCatalog(t)

	tests := []struct {
		name     string
		lang     string
		key      string
		params   []string
		expected string
	}{
		{"Russian", "ru", "label.humidity", nil, "Влажность"},
		{"RegionSuffix", "ru-RU", "label.humidity", nil, "Влажность"},
		{"Ukrainian", "uk", "label.pressure", nil, "Тиск"},
		{"UpperCaseCode", "UK", "label.pressure", nil, "Тиск"},
		{"UnknownLanguageFallsBack", "de", "label.humidity", nil, "Humidity"},
		{"EmptyLanguageFallsBack", "", "label.humidity", nil, "Humidity"},
		{"Params", "en", "title.change", []string{"Oslo"}, "Weather in Oslo has changed"},
		{"MissingKey", "ru", "label.unknown", nil, "label.unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, catalog.For(tt.lang).T(tt.key, tt.params...))
		})
	}
}

func TestTranslator_IsBadWeather(t *testing.T) {
	catalog := newTestCatalog(t)

	assert.True(t, catalog.For("ru").IsBadWeather("Гроза с дождём"))
	assert.True(t, catalog.For("en").IsBadWeather("Light snow"))
	assert.True(t, catalog.For("uk").IsBadWeather("сильний дощ"))
	assert.False(t, catalog.For("ru").IsBadWeather("ясно"))
	assert.False(t, catalog.For("en").IsBadWeather("гроза"))
	assert.True(t, catalog.For("de").IsBadWeather("thunderstorm"), "unknown languages use the English lexicon")
}
