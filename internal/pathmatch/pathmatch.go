// Package pathmatch compiles endpoint path templates such as
// /v1/apps/{app_id}/reviews and extracts named parameters from
// concrete request paths.
package pathmatch

import (
	"regexp"
	"strings"
	"sync"
)

var placeholder = regexp.MustCompile(`\{([^{}/]+)\}`)

type Pattern struct {
	template string
	re       *regexp.Regexp
	names    []string
}

// Compile escapes the literal parts of template and turns every {name}
// placeholder into a capture of one non-empty path segment.
func Compile(template string) *Pattern {
	var (
		expr  strings.Builder
		names []string
		last  int
	)

	expr.WriteString("^")
	for _, loc := range placeholder.FindAllStringSubmatchIndex(template, -1) {
		expr.WriteString(regexp.QuoteMeta(template[last:loc[0]]))
		expr.WriteString("([^/]+)")
		names = append(names, template[loc[2]:loc[3]])
		last = loc[1]
	}
	expr.WriteString(regexp.QuoteMeta(template[last:]))
	expr.WriteString("$")

	return &Pattern{
		template: template,
		re:       regexp.MustCompile(expr.String()),
		names:    names,
	}
}

func (p *Pattern) Template() string {
	return p.template
}

// Params reports the placeholder names in template order.
func (p *Pattern) Params() []string {
	return p.names
}

// Match returns the extracted parameters, or false when path does not
// match the whole template.
func (p *Pattern) Match(path string) (map[string]string, bool) {
	groups := p.re.FindStringSubmatch(path)
	if groups == nil {
		return nil, false
	}

	params := make(map[string]string, len(p.names))
	for i, name := range p.names {
		params[name] = groups[i+1]
	}
	return params, true
}

// Matcher memoizes compiled patterns by template. Entries are never
// mutated after insertion, so concurrent first compilations of the same
// template are harmless.
type Matcher struct {
	cache sync.Map
}

func NewMatcher() *Matcher {
	return &Matcher{}
}

func (m *Matcher) Pattern(template string) *Pattern {
	if p, ok := m.cache.Load(template); ok {
		return p.(*Pattern)
	}

	p, _ := m.cache.LoadOrStore(template, Compile(template))
	return p.(*Pattern)
}

func (m *Matcher) Match(template, path string) (map[string]string, bool) {
	return m.Pattern(template).Match(path)
}
