package cli

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/iudanet/draftkeeper/internal/client/iocli"
)

const previewLimit = 50

// preview схлопывает переводы строк и обрезает контент для списков
func preview(content string) string {
	flat := strings.Join(strings.Fields(content), " ")
	if flat == "" {
		return "(empty)"
	}
	if runes := []rune(flat); len(runes) > previewLimit {
		return string(runes[:previewLimit]) + "..."
	}
	return flat
}

// renderTemplate выполняет шаблон списка и пишет результат в терминал
func renderTemplate(out iocli.IO, text string, data any) error {
	tmpl, err := template.New("list").Funcs(template.FuncMap{"preview": preview}).Parse(text)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	if err := tmpl.Execute(out, data); err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}

	return nil
}
