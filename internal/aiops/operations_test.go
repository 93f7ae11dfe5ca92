package aiops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-builder/resume/model"
)

func TestParseMatchScore(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *int
	}{
		{name: "plain", text: "Strong fit.\nMATCH_SCORE: 85%", want: intPtr(85)},
		{name: "case insensitive", text: "match_score:72%", want: intPtr(72)},
		{name: "clamped", text: "MATCH_SCORE: 140%", want: intPtr(100)},
		{name: "first wins", text: "MATCH_SCORE: 10% then MATCH_SCORE: 90%", want: intPtr(10)},
		{name: "absent", text: "No score here", want: nil},
		{name: "missing percent", text: "MATCH_SCORE: 80", want: nil},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseMatchScore(tt.text))
		})
	}
}

func intPtr(v int) *int { return &v }

func TestJobMatchRequest(t *testing.T) {
	req := JobMatch{
		Resume:         model.ResumeDocument{PersonalInfo: model.PersonalInfo{FullName: "Jane"}},
		JobDescription: "Senior Go engineer",
	}.Request()
	assert.Equal(t, 800, req.MaxTokens)
	assert.InDelta(t, 0.3, req.Temperature, 1e-6)
	assert.Contains(t, req.Prompt, `"fullName":"Jane"`)
	assert.Contains(t, req.Prompt, "Job Description: Senior Go engineer")
}

func sourceResume() model.ResumeDocument {
	return model.ResumeDocument{
		PersonalInfo: model.PersonalInfo{FullName: "Jane Doe", Email: "jane@example.com"},
		Summary:      "Engineer",
		WorkExperience: []model.WorkExperience{
			{ID: "w-1", Position: "Developer", Description: []string{"Built APIs"}},
		},
	}
}

func TestTranslateParseStripsFencesAndRestoresIDs(t *testing.T) {
	raw := "Here you go:\n```json\n" + `{
		"personalInfo": {"fullName": "เจน โด", "email": "เจน@example.com"},
		"summary": "วิศวกร",
		"workExperience": [{"id": "ว-1", "position": "นักพัฒนา", "description": ["สร้าง API"]}]
	}` + "\n```"

	out, err := Translate{Resume: sourceResume(), TargetLanguage: "th"}.Parse(raw)
	require.NoError(t, err)
	doc := out.(model.ResumeDocument)
	assert.Equal(t, "เจน โด", doc.PersonalInfo.FullName)
	assert.Equal(t, "jane@example.com", doc.PersonalInfo.Email)
	assert.Equal(t, "w-1", doc.WorkExperience[0].ID)
	assert.Equal(t, []string{"สร้าง API"}, doc.WorkExperience[0].Description)
}

func TestTranslateParseRejectsBadOutput(t *testing.T) {
	for name, raw := range map[string]string{
		"no object":     "I can't do that",
		"broken json":   `{"personalInfo": {"fullName": "x"`,
		"wrong shape":   `{"summary": "no personal info"}`,
		"list as value": `{"personalInfo": {}, "skills": "Go, SQL"}`,
	} {
		raw := raw
		t.Run(name, func(t *testing.T) {
			_, err := Translate{Resume: sourceResume()}.Parse(raw)
			assert.ErrorIs(t, err, ErrResponseParse)
		})
	}
}

func TestTranslateRequestNamesLanguage(t *testing.T) {
	req := Translate{Resume: sourceResume(), TargetLanguage: "th"}.Request()
	assert.Contains(t, req.Prompt, "into Thai.")
	assert.Equal(t, 2000, req.MaxTokens)
	assert.Equal(t, "Japanese", LanguageName(" Japanese "))
}
