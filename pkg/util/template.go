package util

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"unicode"

	"github.com/Masterminds/sprig/v3"
)

// TemplateFuncs returns sprig's text functions plus shell quoting helpers:
// shq quotes one word, shjoin quotes and space-joins a list.
func TemplateFuncs() template.FuncMap {
	funcs := sprig.TxtFuncMap()
	funcs["shq"] = ShellQuote
	funcs["shjoin"] = ShellJoin
	return funcs
}

// ParseTemplate parses text with TemplateFuncs. Missing keys are errors.
func ParseTemplate(name, text string) (*template.Template, error) {
	tmpl, err := template.New(name).
		Funcs(TemplateFuncs()).
		Option("missingkey=error").
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	return tmpl, nil
}

// MustParseTemplate is ParseTemplate for package-level templates.
func MustParseTemplate(name, text string) *template.Template {
	tmpl, err := ParseTemplate(name, text)
	if err != nil {
		panic(err)
	}
	return tmpl
}

// ExecuteTemplate renders tmpl and collapses runs of whitespace, so optional
// template segments do not leave gaps in command lines. Whitespace inside
// single quotes or after a backslash is kept as rendered.
func ExecuteTemplate(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", tmpl.Name(), err)
	}
	return collapseSpace(buf.String()), nil
}

// collapseSpace squeezes unquoted whitespace to single spaces and trims the
// ends. It follows POSIX shell quoting: nothing is special inside '...'.
func collapseSpace(s string) string {
	var (
		b       strings.Builder
		quoted  bool
		escaped bool
		pending bool
	)
	for _, r := range s {
		switch {
		case escaped:
			escaped = false
		case quoted:
			if r == '\'' {
				quoted = false
			}
		case unicode.IsSpace(r):
			pending = true
			continue
		case r == '\'':
			quoted = true
		case r == '\\':
			escaped = true
		}
		if pending && b.Len() > 0 {
			b.WriteByte(' ')
		}
		pending = false
		b.WriteRune(r)
	}
	return b.String()
}
