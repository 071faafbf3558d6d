package content

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	markdownhtml "github.com/yuin/goldmark/renderer/html"
)

// ComponentRenderer turns one embedded component occurrence into HTML.
type ComponentRenderer func(attrs map[string]string, children string) (string, error)

// componentTag matches an embedded component: an uppercase-led tag either
// self-closing or with a body. MDX nests components rarely enough here that
// non-greedy matching on the same tag name is sufficient.
var (
	componentTag = regexp.MustCompile(`<([A-Z][A-Za-z0-9]*)((?:\s+[a-zA-Z]+="[^"]*")*)\s*(?:/>|>([\s\S]*?)</([A-Z][A-Za-z0-9]*)>)`)
	attrPair     = regexp.MustCompile(`([a-zA-Z]+)="([^"]*)"`)
)

// Compiler converts post bodies to render-ready HTML. Embedded components
// dispatch through a fixed registry of renderers keyed by element kind;
// an unregistered component is a compile failure, not silent passthrough.
type Compiler struct {
	md         goldmark.Markdown
	components map[string]ComponentRenderer
}

// NewCompiler creates a Compiler with the standard component registry.
func NewCompiler() *Compiler {
	return &Compiler{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(markdownhtml.WithUnsafe()),
		),
		components: map[string]ComponentRenderer{
			"Callout":  renderCallout,
			"StatLine": renderStatLine,
			"YouTube":  renderYouTube,
		},
	}
}

// Compile renders a post body to HTML. Malformed component usage fails the
// caller's request.
func (c *Compiler) Compile(body string) (string, error) {
	expanded, err := c.expandComponents(body)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(expanded), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}

func (c *Compiler) expandComponents(body string) (string, error) {
	var compileErr error
	out := componentTag.ReplaceAllStringFunc(body, func(match string) string {
		groups := componentTag.FindStringSubmatch(match)
		name, rawAttrs, children, closing := groups[1], groups[2], groups[3], groups[4]
		if closing != "" && closing != name {
			compileErr = fmt.Errorf("component <%s> closed by </%s>", name, closing)
			return match
		}
		render, ok := c.components[name]
		if !ok {
			compileErr = fmt.Errorf("unknown component <%s>", name)
			return match
		}
		attrs := make(map[string]string)
		for _, pair := range attrPair.FindAllStringSubmatch(rawAttrs, -1) {
			attrs[pair[1]] = pair[2]
		}
		rendered, err := render(attrs, strings.TrimSpace(children))
		if err != nil {
			compileErr = err
			return match
		}
		return rendered
	})
	if compileErr != nil {
		return "", compileErr
	}
	return out, nil
}

func renderCallout(attrs map[string]string, children string) (string, error) {
	kind := attrs["type"]
	if kind == "" {
		kind = "info"
	}
	return fmt.Sprintf(`<aside class="callout callout-%s">%s</aside>`,
		html.EscapeString(kind), html.EscapeString(children)), nil
}

func renderStatLine(attrs map[string]string, _ string) (string, error) {
	player := attrs["player"]
	line := attrs["line"]
	if player == "" || line == "" {
		return "", fmt.Errorf("StatLine requires player and line attributes")
	}
	return fmt.Sprintf(`<dl class="stat-line"><dt>%s</dt><dd>%s</dd></dl>`,
		html.EscapeString(player), html.EscapeString(line)), nil
}

func renderYouTube(attrs map[string]string, _ string) (string, error) {
	id := attrs["id"]
	if id == "" {
		return "", fmt.Errorf("YouTube requires an id attribute")
	}
	return fmt.Sprintf(`<iframe class="video-embed" src="https://www.youtube.com/embed/%s" allowfullscreen></iframe>`,
		html.EscapeString(id)), nil
}
