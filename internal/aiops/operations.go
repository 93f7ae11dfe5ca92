package aiops

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"resume-builder/internal/llm"
	"resume-builder/resume/model"
)

const (
	CostEnhance   = 1
	CostJobMatch  = 1
	CostTranslate = 5
)

// Enhance rewrites one résumé section.
type Enhance struct {
	Section string
	Text    string
}

func (Enhance) Name() string { return "enhance" }
func (Enhance) Cost() int    { return CostEnhance }

func (e Enhance) Request() llm.Request {
	return llm.Request{
		Prompt: fmt.Sprintf("As an expert career coach, rewrite the following resume's '%s' section to be more impactful and ATS-friendly. "+
			"Keep it concise and professional. Here is the text: '%s'", e.Section, e.Text),
		MaxTokens:   500,
		Temperature: 0.7,
	}
}

func (Enhance) Parse(raw string) (any, error) {
	return strings.TrimSpace(raw), nil
}

// JobMatch scores a résumé against a job description.
type JobMatch struct {
	Resume         model.ResumeDocument
	JobDescription string
}

// MatchResult is the job-match output. Score is nil when the model gave none.
type MatchResult struct {
	Analysis string `json:"analysis"`
	Score    *int   `json:"matchingScore"`
}

var matchScorePattern = regexp.MustCompile(`(?i)MATCH_SCORE:\s*(\d+)%`)

func (JobMatch) Name() string { return "job-match" }
func (JobMatch) Cost() int    { return CostJobMatch }

func (j JobMatch) Request() llm.Request {
	resumeJSON, _ := json.Marshal(j.Resume)
	return llm.Request{
		Prompt: "Analyze the following resume and job description. Identify key skills and qualifications from the job description. " +
			"Then, evaluate how well the resume matches these requirements. " +
			`Provide a matching score as a percentage (e.g., "MATCH_SCORE: 85%") and a brief analysis of strengths and areas for improvement. ` +
			"Resume: " + string(resumeJSON) + ". Job Description: " + j.JobDescription,
		MaxTokens:   800,
		Temperature: 0.3,
	}
}

func (JobMatch) Parse(raw string) (any, error) {
	analysis := strings.TrimSpace(raw)
	return MatchResult{Analysis: analysis, Score: ParseMatchScore(analysis)}, nil
}

// ParseMatchScore extracts the first MATCH_SCORE percentage, clamped to 0..100.
func ParseMatchScore(text string) *int {
	m := matchScorePattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	score, err := strconv.Atoi(m[1])
	if err != nil {
		// too many digits to fit an int
		score = 100
	}
	score = max(0, min(score, 100))
	return &score
}

// Translate translates every string value of a résumé.
type Translate struct {
	Resume         model.ResumeDocument
	TargetLanguage string
}

func (Translate) Name() string { return "translate" }
func (Translate) Cost() int    { return CostTranslate }

func (t Translate) Request() llm.Request {
	resumeJSON, _ := json.Marshal(t.Resume)
	return llm.Request{
		Prompt: "Translate every field in the following JSON object into " + LanguageName(t.TargetLanguage) + ". " +
			"Maintain the original JSON structure and keys. Do not translate the keys, only translate the values. " +
			"Ensure all text content is accurately translated while preserving professional resume terminology. " +
			"Return only the translated JSON object without any additional text or explanation. Here is the JSON: " + string(resumeJSON),
		MaxTokens:   2000,
		Temperature: 0.2,
	}
}

// Parse extracts the JSON object, validates it, and restores fields that must not change.
func (t Translate) Parse(raw string) (any, error) {
	obj, ok := extractJSONObject(cleanJSON(raw))
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in translation", ErrResponseParse)
	}
	doc, err := model.DecodeDocument([]byte(obj))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseParse, err)
	}
	return restoreInvariantFields(t.Resume, doc), nil
}

// LanguageName expands the language codes the editor sends.
func LanguageName(code string) string {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "en", "english":
		return "English"
	case "th", "thai":
		return "Thai"
	default:
		return strings.TrimSpace(code)
	}
}

// cleanJSON strips a surrounding markdown code fence.
func cleanJSON(input string) string {
	clean := strings.TrimSpace(input)
	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimLeft(clean, "\r\n")
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(clean)
}

// extractJSONObject returns the text from the first '{' to the last '}'.
func extractJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// restoreInvariantFields copies identifiers and contact data from the source, which the
// model may otherwise "translate".
func restoreInvariantFields(src, out model.ResumeDocument) model.ResumeDocument {
	p := &out.PersonalInfo
	p.Email = src.PersonalInfo.Email
	p.Phone = src.PersonalInfo.Phone
	p.LinkedIn = src.PersonalInfo.LinkedIn
	p.Portfolio = src.PersonalInfo.Portfolio
	p.Website = src.PersonalInfo.Website
	p.ProfileImageRef = src.PersonalInfo.ProfileImageRef
	p.BirthDate = src.PersonalInfo.BirthDate
	p.Age = src.PersonalInfo.Age
	if len(out.WorkExperience) == len(src.WorkExperience) {
		for i := range out.WorkExperience {
			out.WorkExperience[i].ID = src.WorkExperience[i].ID
		}
	}
	if len(out.Education) == len(src.Education) {
		for i := range out.Education {
			out.Education[i].ID = src.Education[i].ID
		}
	}
	return out
}
