package render

import (
	"bytes"
	"fmt"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"resume-builder/resume/model"
)

// Markdown renders the plain-text surface by converting the section fragment.
func Markdown(doc model.ResumeDocument, sel Selection, lang Language) ([]byte, error) {
	view := NewView(BuildLayout(doc, sel), lang)
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, "fragment", pageData{View: view}); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	md, err := htmltomarkdown.ConvertString(buf.String())
	if err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}
	return []byte(md + "\n"), nil
}
