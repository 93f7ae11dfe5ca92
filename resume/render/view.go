package render

// View is the label-resolved form of a Layout. The preview surface serializes it as
// JSON; the HTML surfaces feed it to their templates.
type View struct {
	Template    TemplateName  `json:"template"`
	Language    Language      `json:"language"`
	Columns     int           `json:"columns"`
	AccentColor string        `json:"accentColor"`
	HeaderColor string        `json:"headerColor"`
	Sections    []ViewSection `json:"sections"`
}

type ViewSection struct {
	ID      SectionID   `json:"id"`
	Column  Column      `json:"column"`
	Title   string      `json:"title,omitempty"`
	Header  *ViewHeader `json:"header,omitempty"`
	Text    string      `json:"text,omitempty"`
	Items   []string    `json:"items,omitempty"`
	Entries []ViewEntry `json:"entries,omitempty"`
}

type ViewHeader struct {
	Name        string   `json:"name"`
	Age         string   `json:"age,omitempty"`
	Contacts    []string `json:"contacts,omitempty"`
	ContactLine string   `json:"contactLine,omitempty"`
	ImageRef    string   `json:"imageRef,omitempty"`
}

type ViewEntry struct {
	Title        string   `json:"title,omitempty"`
	Organization string   `json:"organization,omitempty"`
	Location     string   `json:"location,omitempty"`
	Dates        string   `json:"dates,omitempty"`
	GPA          string   `json:"gpa,omitempty"`
	Bullets      []string `json:"bullets,omitempty"`
}

// NewView resolves labels for lang.
func NewView(layout Layout, lang Language) View {
	labels := Labels(lang)
	v := View{
		Template:    layout.Template,
		Language:    lang,
		Columns:     layout.Columns,
		AccentColor: layout.AccentColor,
		HeaderColor: layout.HeaderColor,
		Sections:    make([]ViewSection, 0, len(layout.Sections)),
	}
	for _, s := range layout.Sections {
		vs := ViewSection{
			ID:     s.ID,
			Column: s.Column,
			Title:  labels.SectionTitle(s.ID),
			Text:   s.Text,
			Items:  s.Items,
		}
		if s.Header != nil {
			vs.Header = &ViewHeader{
				Name:        s.Header.Name,
				Age:         ageLabel(s.Header, labels),
				Contacts:    s.Header.Contacts,
				ContactLine: s.Header.ContactLine,
				ImageRef:    s.Header.ImageRef,
			}
		}
		for _, e := range s.Entries {
			vs.Entries = append(vs.Entries, ViewEntry{
				Title:        e.Title,
				Organization: e.Organization,
				Location:     e.Location,
				Dates:        dateRange(e, labels),
				GPA:          gpaLabel(e, labels),
				Bullets:      e.Bullets,
			})
		}
		v.Sections = append(v.Sections, vs)
	}
	return v
}

// InColumn returns the sections placed in col.
func (v View) InColumn(col Column) []ViewSection {
	var out []ViewSection
	for _, s := range v.Sections {
		if s.Column == col {
			out = append(out, s)
		}
	}
	return out
}

// HeaderSection returns the header, which every layout carries.
func (v View) HeaderSection() ViewSection {
	for _, s := range v.Sections {
		if s.ID == SectionHeader {
			return s
		}
	}
	return ViewSection{ID: SectionHeader, Column: ColumnFull, Header: &ViewHeader{Name: PlaceholderName}}
}

// Creative reports whether the view uses the two-column grid.
func (v View) Creative() bool {
	return v.Columns == 2
}
