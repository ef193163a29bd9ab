package reply

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"artconnect/internal/interaction"
)

// Category selects which reply template answers an interaction.
type Category int

const (
	CategoryGeneric Category = iota
	CategoryCommission
	CategoryGallery
)

func (c Category) String() string {
	switch c {
	case CategoryCommission:
		return "commission"
	case CategoryGallery:
		return "gallery"
	default:
		return "generic"
	}
}

// DefaultHandle is used when an interaction has no author handle.
const DefaultHandle = "@collector"

// Categories in priority order; the first one whose keywords match wins.
var priority = []Category{CategoryCommission, CategoryGallery}

var keywords = map[Category][]string{
	CategoryCommission: {"commission", "buy", "purchase", "price", "prints", "print"},
	CategoryGallery:    {"gallery", "curator", "collector", "represent", "feature"},
}

var defaultTemplates = map[Category]string{
	CategoryCommission: "Thank you so much for your interest, {{.Handle}}! " +
		"I'd be happy to talk more about a commission or print options. " +
		"Could you please send me a message or email with a bit more detail about what you have in mind?",
	CategoryGallery: "Hi {{.Handle}}, I really appreciate you reaching out. " +
		"I'd love to learn more about your gallery/collection and see if my work could be a good fit. " +
		"Feel free to contact me so we can talk more about it.",
	CategoryGeneric: "Thank you so much, {{.Handle}}! " +
		"I really appreciate your kind words and support. " +
		"This piece was inspired by my love for color and texture, " +
		"so it means a lot that it resonated with you.",
}

// Classify returns the reply category for text.
func Classify(text string) Category {
	t := strings.ToLower(text)
	for _, c := range priority {
		for _, kw := range keywords[c] {
			if strings.Contains(t, kw) {
				return c
			}
		}
	}
	return CategoryGeneric
}

type templateData struct {
	Handle string
}

// Selector renders the reply template of an interaction's category.
type Selector struct {
	templates map[Category]*template.Template
}

// NewSelector returns a selector with the built-in brand voice.
func NewSelector() *Selector {
	s := &Selector{templates: make(map[Category]*template.Template, len(defaultTemplates))}
	for c, text := range defaultTemplates {
		s.templates[c] = template.Must(template.New(c.String()).Parse(text))
	}
	return s
}

// Voice is the YAML shape of a brand-voice override file.
type Voice struct {
	Commission string `yaml:"commission"`
	Gallery    string `yaml:"gallery"`
	Generic    string `yaml:"generic"`
}

// LoadVoice builds a selector from a YAML file. Empty entries keep the defaults.
func LoadVoice(path string) (*Selector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read voice file: %w", err)
	}
	var v Voice
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode voice file: %w", err)
	}
	return NewSelectorWithVoice(v)
}

func NewSelectorWithVoice(v Voice) (*Selector, error) {
	s := NewSelector()
	overrides := map[Category]string{
		CategoryCommission: v.Commission,
		CategoryGallery:    v.Gallery,
		CategoryGeneric:    v.Generic,
	}
	for c, text := range overrides {
		if strings.TrimSpace(text) == "" {
			continue
		}
		tpl, err := template.New(c.String()).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", c, err)
		}
		if err := tpl.Execute(&bytes.Buffer{}, templateData{Handle: DefaultHandle}); err != nil {
			return nil, fmt.Errorf("render %s template: %w", c, err)
		}
		s.templates[c] = tpl
	}
	return s, nil
}

// Suggest returns the reply for in. Output depends only on the category and the handle.
func (s *Selector) Suggest(in interaction.Interaction) string {
	return s.Render(Classify(in.Text), in.Author)
}

// Render fills the category template with handle.
func (s *Selector) Render(c Category, handle string) string {
	handle = interaction.NormalizeHandle(handle)
	if handle == "" {
		handle = DefaultHandle
	}
	var buf bytes.Buffer
	if err := s.templates[c].Execute(&buf, templateData{Handle: handle}); err != nil {
		// validated at load; fall back to the built-in wording
		buf.Reset()
		_ = template.Must(template.New("").Parse(defaultTemplates[c])).Execute(&buf, templateData{Handle: handle})
	}
	return buf.String()
}
