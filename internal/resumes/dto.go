package resumes

import (
	"encoding/json"
	"time"

	"resume-builder/resume/model"
)

type resumeRequest struct {
	TemplateName string          `json:"templateName" validate:"required"`
	ThemeColor   string          `json:"themeColor"`
	ResumeData   json.RawMessage `json:"resumeData" validate:"required"`
	IsPublic     *bool           `json:"isPublic"`
}

type visibilityRequest struct {
	IsPublic *bool `json:"isPublic" validate:"required"`
}

type renderRequest struct {
	TemplateName string          `json:"templateName"`
	ThemeColor   string          `json:"themeColor"`
	ResumeData   json.RawMessage `json:"resumeData" validate:"required"`
	Language     string          `json:"language"`
}

// ResumeResponse is the outward-facing representation of a stored résumé.
type ResumeResponse struct {
	ID           string               `json:"id"`
	TemplateName string               `json:"templateName"`
	ThemeColor   string               `json:"themeColor"`
	ResumeData   model.ResumeDocument `json:"resumeData"`
	IsPublic     bool                 `json:"isPublic"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

func toResponse(r StoredResume) ResumeResponse {
	return ResumeResponse{
		ID:           r.ID,
		TemplateName: r.TemplateName,
		ThemeColor:   r.ThemeColor,
		ResumeData:   r.Data,
		IsPublic:     r.IsPublic,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
