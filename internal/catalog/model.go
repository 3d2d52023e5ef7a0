// Package catalog holds the immutable mental-model dataset and the accessors
// every other package uses to read it.
package catalog

import "strings"

// Properties is the nested display payload of a model.
type Properties struct {
	Title   string   `json:"title" yaml:"title"`
	Content string   `json:"content" yaml:"content"`
	TLDR    string   `json:"tldr" yaml:"tldr"`
	Tags    []string `json:"tags" yaml:"tags"`
}

// Model is one mental-model record. The display payload may live under
// Properties or directly on the record; use the accessor methods to read it.
type Model struct {
	Name                string      `json:"model_name" yaml:"model_name"`
	OriginalDescription string      `json:"original_description,omitempty" yaml:"original_description,omitempty"`
	Properties          *Properties `json:"properties,omitempty" yaml:"properties,omitempty"`
	Title               string      `json:"title,omitempty" yaml:"title,omitempty"`
	Content             string      `json:"content,omitempty" yaml:"content,omitempty"`
	TLDR                string      `json:"tldr,omitempty" yaml:"tldr,omitempty"`
	Tags                []string    `json:"tags,omitempty" yaml:"tags,omitempty"`
	Required            []string    `json:"required,omitempty" yaml:"required,omitempty"`

	// Category and Position are the source positions assigned by NewDataset.
	Category int `json:"-" yaml:"-"`
	Position int `json:"-" yaml:"-"`
}

// Category is a named, ordered group of models.
type Category struct {
	Name   string  `json:"category" yaml:"category"`
	Models []Model `json:"data" yaml:"data"`

	Position int `json:"-" yaml:"-"`
}

// Payload is the resolved display payload of a model.
type Payload struct {
	Title   string
	Content string
	TLDR    string
	Tags    []string
}

// Resolve applies the field precedence nested, then flattened, then empty.
func (m Model) Resolve() Payload {
	p := Payload{
		Title:   m.Title,
		Content: m.Content,
		TLDR:    m.TLDR,
		Tags:    m.Tags,
	}
	if nested := m.Properties; nested != nil {
		p.Title = firstNonEmpty(nested.Title, m.Title)
		p.Content = firstNonEmpty(nested.Content, m.Content)
		p.TLDR = firstNonEmpty(nested.TLDR, m.TLDR)
		if nested.Tags != nil {
			p.Tags = nested.Tags
		}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p
}

// ResolvedTitle returns the display title.
func (m Model) ResolvedTitle() string { return m.Resolve().Title }

// ResolvedContent returns the card body.
func (m Model) ResolvedContent() string { return m.Resolve().Content }

// ResolvedTLDR returns the one-line summary.
func (m Model) ResolvedTLDR() string { return m.Resolve().TLDR }

// ResolvedTags returns the tag list, never nil.
func (m Model) ResolvedTags() []string { return m.Resolve().Tags }

// CardID returns the identity of the card rendering this model.
func (m Model) CardID() string {
	return CardID(m.Category, m.Position, m.Name)
}

// CopyText is the clipboard payload for a card.
func (p Payload) CopyText() string {
	return p.Title + "\n\n" + p.Content + "\n\n" + p.TLDR
}

// SearchFields returns the lowercase fields matched by search, in order:
// title, model name, tldr, content, joined tags.
func (m Model) SearchFields() [5]string {
	p := m.Resolve()
	return [5]string{
		strings.ToLower(p.Title),
		strings.ToLower(m.Name),
		strings.ToLower(p.TLDR),
		strings.ToLower(p.Content),
		strings.ToLower(strings.Join(p.Tags, " ")),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
