package render

import (
	"strconv"
	"strings"
)

// Language selects the label set used by every encoder.
type Language string

const (
	English Language = "en"
	Thai    Language = "th"
)

// ParseLanguage maps free input to a supported language, defaulting to English.
func ParseLanguage(raw string) Language {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "th", "thai", "ไทย":
		return Thai
	default:
		return English
	}
}

// LabelSet holds every user-visible string an encoder may emit besides résumé content.
type LabelSet struct {
	Sections  map[SectionID]string
	Present   string
	GPA       string
	Projects  string
	agePrefix string
	ageSuffix string
}

// SectionTitle returns the heading for a section, or "" for the header.
func (l LabelSet) SectionTitle(id SectionID) string {
	return l.Sections[id]
}

// Age renders the age label, e.g. "age 34 years" or "อายุ 34 ปี".
func (l LabelSet) Age(years int) string {
	return l.agePrefix + strconv.Itoa(years) + l.ageSuffix
}

var labelTable = map[Language]LabelSet{
	English: {
		Sections: map[SectionID]string{
			SectionSummary:        "Professional Summary",
			SectionSkills:         "Skills",
			SectionWork:           "Work Experience",
			SectionEducation:      "Education",
			SectionCertifications: "Certifications",
			SectionAwards:         "Awards",
		},
		Present:   "Present",
		GPA:       "GPA",
		Projects:  "Projects",
		agePrefix: "age ",
		ageSuffix: " years",
	},
	Thai: {
		Sections: map[SectionID]string{
			SectionSummary:        "สรุปประวัติ",
			SectionSkills:         "ทักษะ",
			SectionWork:           "ประสบการณ์ทำงาน",
			SectionEducation:      "การศึกษา",
			SectionCertifications: "ใบรับรอง",
			SectionAwards:         "รางวัล",
		},
		Present:   "ปัจจุบัน",
		GPA:       "เกรดเฉลี่ย",
		Projects:  "โครงงาน",
		agePrefix: "อายุ ",
		ageSuffix: " ปี",
	},
}

// Labels returns the label set for lang.
func Labels(lang Language) LabelSet {
	if set, ok := labelTable[lang]; ok {
		return set
	}
	return labelTable[English]
}
