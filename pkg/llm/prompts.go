package llm

import (
	"fmt"
	"strings"
	"text/template"
)

// DefaultPromptTemplate asks for a plain-language walkthrough of one chunk.
const DefaultPromptTemplate = `Explain what the following SQL does in plain language.
{{- if gt .Total 1}} This is part {{.Part}} of {{.Total}} of a longer script; explain only this part.{{end}}
Describe the tables involved, the filters and joins, and what the result contains.
Be concise and do not rewrite the query.

SQL:
{{.SQL}}
`

// PromptData is the data a prompt template is executed with.
type PromptData struct {
	SQL   string
	Part  int // 1-based
	Total int
}

// PromptBuilder renders explanation prompts from a text/template.
type PromptBuilder struct {
	tmpl *template.Template
}

// NewPromptBuilder parses text. An empty text selects DefaultPromptTemplate.
func NewPromptBuilder(text string) (*PromptBuilder, error) {
	if strings.TrimSpace(text) == "" {
		text = DefaultPromptTemplate
	}
	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("invalid prompt template: %w", err)
	}
	// catch references to unknown fields before the first request
	if err := tmpl.Execute(&strings.Builder{}, PromptData{Part: 1, Total: 1}); err != nil {
		return nil, fmt.Errorf("invalid prompt template: %w", err)
	}
	return &PromptBuilder{tmpl: tmpl}, nil
}

// Build renders the prompt for chunk part of total.
func (b *PromptBuilder) Build(sql string, part, total int) (string, error) {
	var sb strings.Builder
	if err := b.tmpl.Execute(&sb, PromptData{SQL: sql, Part: part, Total: total}); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return sb.String(), nil
}
