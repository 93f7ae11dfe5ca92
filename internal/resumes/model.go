package resumes

import (
	"time"

	"resume-builder/resume/model"
	"resume-builder/resume/render"
)

// StoredResume is a saved résumé with its template choice.
type StoredResume struct {
	ID           string
	UserID       string
	TemplateName string
	ThemeColor   string
	Data         model.ResumeDocument
	IsPublic     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Input carries the editable fields of a résumé. A nil IsPublic keeps the current
// visibility on update and means private on create.
type Input struct {
	TemplateName string
	ThemeColor   string
	Data         model.ResumeDocument
	IsPublic     *bool
}

// Selection returns the render selection stored with the résumé.
func (r StoredResume) Selection() render.Selection {
	tmpl, ok := render.ParseTemplate(r.TemplateName)
	if !ok {
		tmpl = render.Professional
	}
	return render.Selection{Template: tmpl, ThemeColor: r.ThemeColor}
}
