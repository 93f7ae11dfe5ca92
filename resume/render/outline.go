package render

import "strings"

// OutlineSection is the surface-independent text content of one section. Every encoder
// emits exactly these lines, in this order, for the section.
type OutlineSection struct {
	ID    SectionID
	Title string
	Lines []string
}

// Outline flattens a layout into the text each surface must reproduce.
func Outline(layout Layout, lang Language) []OutlineSection {
	labels := Labels(lang)
	out := make([]OutlineSection, 0, len(layout.Sections))
	for _, s := range layout.Sections {
		out = append(out, OutlineSection{
			ID:    s.ID,
			Title: labels.SectionTitle(s.ID),
			Lines: sectionLines(s, labels),
		})
	}
	return out
}

func sectionLines(s Section, labels LabelSet) []string {
	var lines []string
	switch {
	case s.Header != nil:
		lines = append(lines, s.Header.Name)
		if age := ageLabel(s.Header, labels); age != "" {
			lines = append(lines, age)
		}
		if s.Header.ContactLine != "" {
			lines = append(lines, s.Header.ContactLine)
		}
	case s.Text != "":
		lines = append(lines, s.Text)
	case len(s.Items) > 0:
		lines = append(lines, s.Items...)
	default:
		for _, e := range s.Entries {
			lines = append(lines, entryLines(e, labels)...)
		}
	}
	return lines
}

// entryLines lists an entry's headline fields followed by its bullets.
func entryLines(e Entry, labels LabelSet) []string {
	var lines []string
	for _, v := range []string{e.Title, e.Organization, e.Location, dateRange(e, labels), gpaLabel(e, labels)} {
		if v != "" {
			lines = append(lines, v)
		}
	}
	return append(lines, e.Bullets...)
}

func ageLabel(h *Header, labels LabelSet) string {
	if h == nil || h.Age == nil {
		return ""
	}
	return labels.Age(*h.Age)
}

func dateRange(e Entry, labels LabelSet) string {
	end := e.End
	if e.Current {
		end = labels.Present
	}
	switch {
	case e.Start != "" && end != "":
		return e.Start + " – " + end
	case e.Start != "":
		return e.Start
	default:
		return end
	}
}

func gpaLabel(e Entry, labels LabelSet) string {
	if strings.TrimSpace(e.GPA) == "" {
		return ""
	}
	return labels.GPA + ": " + e.GPA
}
