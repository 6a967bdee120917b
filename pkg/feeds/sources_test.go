package feeds

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRegistryYAMLKeepsOrder(t *testing.T) {
	path := writeFile(t, "sources.yaml", `
sources:
  - id: moodie
    name: Moodie Davitt
    url: https://www.themoodieblog.com/feed/
    config:
      user_agent: CustomAgent/1.0
  - url: " https://www.tumi.com/blog/feed/ "
`)

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	require.Equal(t, 2, reg.Len())

	all := reg.All()
	assert.Equal(t, "moodie", all[0].ID)
	assert.Equal(t, "https://www.tumi.com/blog/feed/", all[1].URL)
	assert.Equal(t, all[1].URL, all[1].ID, "id defaults to url")
	assert.Equal(t, all[1].ID, all[1].Name, "name defaults to id")

	src, ok := reg.ByID("moodie")
	require.True(t, ok)
	assert.Equal(t, "CustomAgent/1.0", ConfigString(src, ConfigUserAgentKey, ""))
}

func TestLoadRegistryJSON(t *testing.T) {
	path := writeFile(t, "sources.json", `{"sources":[{"id":"a","url":"https://a.example/feed"}]}`)

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())
}

func TestLoadRegistryOPML(t *testing.T) {
	path := writeFile(t, "sources.opml", `<?xml version="1.0"?>
<opml version="2.0">
  <body>
    <outline text="Brands">
      <outline text="Rimowa" xmlUrl="https://www.rimowa.com/blog/feed/"/>
      <outline title="Tumi" text="ignored" xmlUrl="https://www.tumi.com/blog/feed/"/>
    </outline>
    <outline text="Luggage Magazine" xmlUrl="https://www.luggagemagazine.com/feed/"/>
  </body>
</opml>`)

	reg, err := LoadRegistry(path)
	require.NoError(t, err)

	all := reg.All()
	require.Len(t, all, 3)
	assert.Equal(t, "Rimowa", all[0].Name)
	assert.Equal(t, "Tumi", all[1].Name)
	assert.Equal(t, "https://www.luggagemagazine.com/feed/", all[2].URL)
}

func TestLoadRegistryDuplicateID(t *testing.T) {
	path := writeFile(t, "sources.yaml", `
sources:
  - id: dup
    url: https://one.example/feed
  - id: dup
    url: https://two.example/feed
`)

	_, err := LoadRegistry(path)
	assert.Error(t, err)
}

func TestLoadRegistryRejectsMissingURL(t *testing.T) {
	path := writeFile(t, "sources.yaml", `
sources:
  - id: nourl
`)

	_, err := LoadRegistry(path)
	assert.Error(t, err)
}

func TestLoadRegistryEmptyPathUsesDefaults(t *testing.T) {
	reg, err := LoadRegistry("")
	require.NoError(t, err)
	assert.Equal(t, len(defaultSources), reg.Len())

	first := reg.All()[0]
	assert.Equal(t, "google-news-luggage", first.ID)
}

func TestHeadersFallbackAndOverride(t *testing.T) {
	h := Headers(Source{ID: "x"}, "Default/1.0")
	assert.Equal(t, "Default/1.0", h["User-Agent"])
	assert.NotEmpty(t, h["Accept"])
	assert.NotContains(t, h, "Cache-Control")

	h = Headers(Source{ID: "x", Config: map[string]any{
		ConfigUserAgentKey:      "Custom",
		ConfigAcceptLanguageKey: "zh-CN",
		ConfigCacheControlKey:   "no-cache",
	}}, "Default/1.0")
	assert.Equal(t, "Custom", h["User-Agent"])
	assert.Equal(t, "zh-CN", h["Accept-Language"])
	assert.Equal(t, "no-cache", h["Cache-Control"])
}
