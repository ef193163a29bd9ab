package reply

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artconnect/internal/interaction"
)

func TestClassify(t *testing.T) {
	cases := map[string]Category{
		"I'd love to COMMISSION a piece":              CategoryCommission,
		"Do you sell prints of this artwork?":         CategoryCommission,
		"What is the price?":                          CategoryCommission,
		"We run an online art Gallery":                CategoryGallery,
		"I'm a collector and really interested":       CategoryGallery,
		"Can we feature your work?":                   CategoryGallery,
		"Gallery owner here, what is the price?":      CategoryCommission,
		"Stunning!":                                   CategoryGeneric,
		"Love this!":                                  CategoryGeneric,
	}
	for text, want := range cases {
		assert.Equal(t, want, Classify(text), text)
	}
}

func TestSuggest(t *testing.T) {
	s := NewSelector()
	in := interaction.Interaction{Author: "CuratorMike3", Text: "I'm a gallery curator, would love to talk."}
	out := s.Suggest(in)
	assert.Contains(t, out, "Hi @CuratorMike3,")
	assert.Contains(t, out, "gallery/collection")

	assert.Equal(t, out, s.Suggest(in))
}

func TestSuggest_DefaultHandle(t *testing.T) {
	out := NewSelector().Suggest(interaction.Interaction{Text: "Nice!"})
	assert.Contains(t, out, "Thank you so much, @collector!")
}

func TestSuggest_OnlyHandleVaries(t *testing.T) {
	s := NewSelector()
	a := s.Suggest(interaction.Interaction{Author: "@a", Text: "buy?"})
	b := s.Suggest(interaction.Interaction{Author: "@b", Text: "I want to buy"})
	assert.Equal(t, a, s.Render(CategoryCommission, "@a"))
	assert.Equal(t, b, s.Render(CategoryCommission, "b"))
}

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "commission", CategoryCommission.String())
	assert.Equal(t, "gallery", CategoryGallery.String())
	assert.Equal(t, "generic", CategoryGeneric.String())
}

func TestLoadVoice(t *testing.T) {
	p := filepath.Join(t.TempDir(), "voice.yaml")
	data := "generic: \"Thanks {{.Handle}}, that means a lot!\"\n"
	require.NoError(t, os.WriteFile(p, []byte(data), 0o644))

	s, err := LoadVoice(p)
	require.NoError(t, err)
	assert.Equal(t, "Thanks @jo, that means a lot!", s.Render(CategoryGeneric, "jo"))
	assert.Contains(t, s.Render(CategoryCommission, "jo"), "commission or print options")
}

func TestLoadVoice_BadTemplate(t *testing.T) {
	p := filepath.Join(t.TempDir(), "voice.yaml")
	require.NoError(t, os.WriteFile(p, []byte("gallery: \"Hi {{.Name}}\"\n"), 0o644))
	_, err := LoadVoice(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gallery template")
}

func TestLoadVoice_MissingFile(t *testing.T) {
	_, err := LoadVoice(filepath.Join(t.TempDir(), "none.yaml"))
	assert.Error(t, err)
}
