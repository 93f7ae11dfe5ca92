package render

import (
	"encoding/json"

	"resume-builder/resume/model"
)

// Preview renders the interactive-preview surface: the label-resolved tree as JSON.
func Preview(doc model.ResumeDocument, sel Selection, lang Language) ([]byte, error) {
	return json.Marshal(NewView(BuildLayout(doc, sel), lang))
}
