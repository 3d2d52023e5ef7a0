package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/wordwrap"
	"go.uber.org/zap"
)

type markdownKey struct {
	id    string
	width int
}

// markdownRenderer renders card bodies and caches results per card and width.
type markdownRenderer struct {
	logger   *zap.Logger
	width    int
	renderer *glamour.TermRenderer
	cache    map[markdownKey]string
}

func newMarkdownRenderer(logger *zap.Logger) *markdownRenderer {
	return &markdownRenderer{logger: logger, cache: map[markdownKey]string{}}
}

func (r *markdownRenderer) Render(id, body string, width int) string {
	key := markdownKey{id: id, width: width}
	if out, ok := r.cache[key]; ok {
		return out
	}
	out := r.render(body, width)
	r.cache[key] = out
	return out
}

func (r *markdownRenderer) render(body string, width int) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	if r.renderer == nil || r.width != width {
		tr, err := glamour.NewTermRenderer(
			glamour.WithStylePath("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			r.logger.Warn("markdown renderer unavailable", zap.Error(err))
			return wordwrap.String(body, width)
		}
		r.renderer = tr
		r.width = width
	}
	rendered, err := r.renderer.Render(body)
	if err != nil {
		r.logger.Warn("markdown render failed", zap.Error(err))
		return wordwrap.String(body, width)
	}
	return strings.Trim(rendered, "\n")
}
