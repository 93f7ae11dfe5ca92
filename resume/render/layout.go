package render

import (
	"strings"

	"resume-builder/resume/model"
)

// SectionID is the closed set of section identifiers shared by all encoders.
type SectionID string

const (
	SectionHeader         SectionID = "header"
	SectionSummary        SectionID = "summary"
	SectionSkills         SectionID = "skills"
	SectionWork           SectionID = "workExperience"
	SectionEducation      SectionID = "education"
	SectionCertifications SectionID = "certifications"
	SectionAwards         SectionID = "awards"
)

// SectionOrder is the fixed display order.
var SectionOrder = []SectionID{
	SectionHeader,
	SectionSummary,
	SectionSkills,
	SectionWork,
	SectionEducation,
	SectionCertifications,
	SectionAwards,
}

// Column places a section in the page grid.
type Column string

const (
	ColumnFull  Column = "full"
	ColumnMain  Column = "main"
	ColumnLeft  Column = "left"
	ColumnRight Column = "right"
)

const (
	PlaceholderName  = "Your Name"
	ContactSeparator = " • "
)

var creativeColumns = map[SectionID]Column{
	SectionSummary:        ColumnLeft,
	SectionWork:           ColumnLeft,
	SectionCertifications: ColumnLeft,
	SectionSkills:         ColumnRight,
	SectionEducation:      ColumnRight,
	SectionAwards:         ColumnRight,
}

// Selection is the template choice applied to a document.
type Selection struct {
	Template   TemplateName
	ThemeColor string
}

// Layout is the presentational tree every surface encodes.
type Layout struct {
	Template    TemplateName `json:"template"`
	Columns     int          `json:"columns"`
	AccentColor string       `json:"accentColor"`
	HeaderColor string       `json:"headerColor"`
	Sections    []Section    `json:"sections"`
}

type Section struct {
	ID      SectionID `json:"id"`
	Column  Column    `json:"column"`
	Header  *Header   `json:"header,omitempty"`
	Text    string    `json:"text,omitempty"`
	Items   []string  `json:"items,omitempty"`
	Entries []Entry   `json:"entries,omitempty"`
}

type Header struct {
	Name        string   `json:"name"`
	Age         *int     `json:"age,omitempty"`
	Contacts    []string `json:"contacts,omitempty"`
	ContactLine string   `json:"contactLine,omitempty"`
	ImageRef    string   `json:"imageRef,omitempty"`
}

// Entry is one work-experience or education item.
type Entry struct {
	Title        string   `json:"title,omitempty"`
	Organization string   `json:"organization,omitempty"`
	Location     string   `json:"location,omitempty"`
	Start        string   `json:"start,omitempty"`
	End          string   `json:"end,omitempty"`
	Current      bool     `json:"current,omitempty"`
	GPA          string   `json:"gpa,omitempty"`
	Bullets      []string `json:"bullets,omitempty"`
}

// Section returns the section with id and whether it is present.
func (l Layout) Section(id SectionID) (Section, bool) {
	for _, s := range l.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// InColumn returns the sections placed in col, in display order.
func (l Layout) InColumn(col Column) []Section {
	var out []Section
	for _, s := range l.Sections {
		if s.Column == col {
			out = append(out, s)
		}
	}
	return out
}

// BuildLayout maps a document and template selection to the ordered section tree.
// It never fails: absent data omits sections and an empty name falls back to a placeholder.
func BuildLayout(doc model.ResumeDocument, sel Selection) Layout {
	template := sel.Template
	if _, ok := ParseTemplate(string(template)); !ok {
		template = Professional
	}
	color := ResolveColor(template, sel.ThemeColor)
	layout := Layout{
		Template:    template,
		Columns:     1,
		AccentColor: color,
		HeaderColor: color,
	}
	if template == Creative {
		layout.Columns = 2
	}

	place := func(id SectionID) Column {
		if id == SectionHeader {
			return ColumnFull
		}
		if template == Creative {
			return creativeColumns[id]
		}
		return ColumnMain
	}

	for _, id := range SectionOrder {
		section := Section{ID: id, Column: place(id)}
		switch id {
		case SectionHeader:
			h := buildHeader(doc.PersonalInfo)
			section.Header = &h
		case SectionSummary:
			section.Text = strings.TrimSpace(doc.Summary)
			if section.Text == "" {
				continue
			}
		case SectionSkills:
			section.Items = CleanList(doc.Skills)
			if len(section.Items) == 0 {
				continue
			}
		case SectionWork:
			section.Entries = workEntries(doc.WorkExperience)
			if len(section.Entries) == 0 {
				continue
			}
		case SectionEducation:
			section.Entries = educationEntries(doc.Education)
			if len(section.Entries) == 0 {
				continue
			}
		case SectionCertifications:
			section.Items = CleanList(doc.Certifications)
			if len(section.Items) == 0 {
				continue
			}
		case SectionAwards:
			section.Items = CleanList(doc.Awards)
			if len(section.Items) == 0 {
				continue
			}
		}
		layout.Sections = append(layout.Sections, section)
	}
	return layout
}

// CleanList trims every entry and drops the ones left empty.
func CleanList(items []string) []string {
	var out []string
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func buildHeader(info model.PersonalInfo) Header {
	name := strings.TrimSpace(info.FullName)
	switch prefix := strings.TrimSpace(info.Prefix); {
	case name == "":
		name = PlaceholderName
	case prefix != "":
		name = prefix + " " + name
	}
	h := Header{
		Name:     name,
		ImageRef: strings.TrimSpace(info.ProfileImageRef),
	}
	if info.Age != nil && *info.Age >= 0 {
		age := *info.Age
		h.Age = &age
	}
	h.Contacts = CleanList([]string{
		info.Phone,
		info.Email,
		info.LinkedIn,
		info.Portfolio,
		info.Website,
		info.Address,
	})
	h.ContactLine = strings.Join(h.Contacts, ContactSeparator)
	return h
}

func workEntries(items []model.WorkExperience) []Entry {
	var out []Entry
	for _, w := range items {
		e := Entry{
			Title:        strings.TrimSpace(w.Position),
			Organization: strings.TrimSpace(w.Company),
			Location:     strings.TrimSpace(w.Location),
			Start:        strings.TrimSpace(w.StartDate),
			End:          strings.TrimSpace(w.EndDate),
			Bullets:      CleanList(w.Description),
		}
		if e.Title == "" && e.Organization == "" && len(e.Bullets) == 0 {
			continue
		}
		e.Current = e.Start != "" && e.End == ""
		out = append(out, e)
	}
	return out
}

func educationEntries(items []model.Education) []Entry {
	var out []Entry
	for _, ed := range items {
		e := Entry{
			Title:        strings.TrimSpace(ed.Degree),
			Organization: strings.TrimSpace(ed.Institution),
			Location:     strings.TrimSpace(ed.Location),
			End:          strings.TrimSpace(ed.GraduationYear),
			GPA:          strings.TrimSpace(ed.GPA),
			Bullets:      CleanList(strings.Split(ed.Projects, "\n")),
		}
		if e.Title == "" && e.Organization == "" && e.End == "" && e.GPA == "" && len(e.Bullets) == 0 {
			continue
		}
		out = append(out, e)
	}
	return out
}
