package render

import (
	"reflect"
	"testing"

	"resume-builder/resume/model"
)

func sampleDocument() model.ResumeDocument {
	age := 34
	return model.ResumeDocument{
		PersonalInfo: model.PersonalInfo{
			Prefix:   "Ms.",
			FullName: "Jane Doe",
			Phone:    "+66 81 234 5678",
			Email:    "jane@example.com",
			LinkedIn: "linkedin.com/in/jane",
			Address:  "Bangkok",
			Age:      &age,
		},
		Summary: "Backend engineer focused on payments.",
		Skills:  []string{"Go", " ", "PostgreSQL"},
		WorkExperience: []model.WorkExperience{
			{ID: "w1", Position: "Senior Engineer", Company: "Acme", Location: "Remote", StartDate: "2020", Description: []string{"Built billing", ""}},
			{ID: "w2", Position: "Engineer", Company: "Initech", StartDate: "2017", EndDate: "2020"},
		},
		Education: []model.Education{
			{ID: "e1", Degree: "BSc Computer Science", Institution: "Chulalongkorn University", GraduationYear: "2017", GPA: "3.6", Projects: "Compiler\n\nScheduler"},
		},
		Certifications: []string{"AWS SAA"},
		Awards:         []string{"", "  "},
	}
}

func sectionIDs(l Layout) []SectionID {
	ids := make([]SectionID, 0, len(l.Sections))
	for _, s := range l.Sections {
		ids = append(ids, s.ID)
	}
	return ids
}

func TestBuildLayoutOrderAndOmission(t *testing.T) {
	l := BuildLayout(sampleDocument(), Selection{Template: Professional})
	want := []SectionID{SectionHeader, SectionSummary, SectionSkills, SectionWork, SectionEducation, SectionCertifications}
	if got := sectionIDs(l); !reflect.DeepEqual(got, want) {
		t.Fatalf("sections = %v, want %v", got, want)
	}
	for _, s := range l.Sections {
		wantCol := ColumnMain
		if s.ID == SectionHeader {
			wantCol = ColumnFull
		}
		if s.Column != wantCol {
			t.Fatalf("%s column = %s, want %s", s.ID, s.Column, wantCol)
		}
	}
}

func TestBuildLayoutBlankListsOmitSections(t *testing.T) {
	doc := model.ResumeDocument{
		Skills:         []string{"", "   "},
		Certifications: nil,
		Awards:         []string{"\t"},
		WorkExperience: []model.WorkExperience{{ID: "w1", Description: []string{" "}}},
		Education:      []model.Education{{ID: "e1"}},
	}
	l := BuildLayout(doc, Selection{Template: Creative})
	if got := sectionIDs(l); !reflect.DeepEqual(got, []SectionID{SectionHeader}) {
		t.Fatalf("sections = %v, want header only", got)
	}
	if l.Sections[0].Header.Name != PlaceholderName {
		t.Fatalf("name = %q, want placeholder", l.Sections[0].Header.Name)
	}
}

func TestBuildLayoutDropsBlankBullets(t *testing.T) {
	doc := model.ResumeDocument{
		WorkExperience: []model.WorkExperience{{ID: "w1", Position: "Lead", Company: "X", Description: []string{"", "  ", "Led X"}}},
	}
	s, ok := BuildLayout(doc, Selection{}).Section(SectionWork)
	if !ok {
		t.Fatalf("work section missing")
	}
	if got := s.Entries[0].Bullets; !reflect.DeepEqual(got, []string{"Led X"}) {
		t.Fatalf("bullets = %q, want [Led X]", got)
	}
}

func TestBuildLayoutCorporateIgnoresThemeColor(t *testing.T) {
	for _, color := range []string{"", "#ff0000", "rose", "not-a-color"} {
		l := BuildLayout(sampleDocument(), Selection{Template: Corporate, ThemeColor: color})
		if l.AccentColor != CorporateColor || l.HeaderColor != CorporateColor {
			t.Fatalf("theme %q: colors = %s/%s, want %s", color, l.AccentColor, l.HeaderColor, CorporateColor)
		}
	}
}

func TestBuildLayoutThemeColor(t *testing.T) {
	cases := map[string]string{
		"":        DefaultThemeColor,
		"emerald": "#059669",
		"#ABCDEF": "#abcdef",
		"bogus":   DefaultThemeColor,
	}
	for in, want := range cases {
		if got := BuildLayout(model.ResumeDocument{}, Selection{Template: Professional, ThemeColor: in}).AccentColor; got != want {
			t.Fatalf("theme %q: accent = %s, want %s", in, got, want)
		}
	}
}

func TestBuildLayoutCreativeColumns(t *testing.T) {
	l := BuildLayout(sampleDocument(), Selection{Template: Creative})
	if l.Columns != 2 {
		t.Fatalf("columns = %d, want 2", l.Columns)
	}
	left := sectionIDs(Layout{Sections: l.InColumn(ColumnLeft)})
	right := sectionIDs(Layout{Sections: l.InColumn(ColumnRight)})
	if !reflect.DeepEqual(left, []SectionID{SectionSummary, SectionWork, SectionCertifications}) {
		t.Fatalf("left = %v", left)
	}
	if !reflect.DeepEqual(right, []SectionID{SectionSkills, SectionEducation}) {
		t.Fatalf("right = %v", right)
	}
}

func TestBuildLayoutUnknownTemplateFallsBack(t *testing.T) {
	if got := BuildLayout(model.ResumeDocument{}, Selection{Template: "fancy"}).Template; got != Professional {
		t.Fatalf("template = %s, want professional", got)
	}
}

func TestBuildLayoutHeader(t *testing.T) {
	s, _ := BuildLayout(sampleDocument(), Selection{}).Section(SectionHeader)
	h := s.Header
	if h.Name != "Ms. Jane Doe" {
		t.Fatalf("name = %q", h.Name)
	}
	wantLine := "+66 81 234 5678 • jane@example.com • linkedin.com/in/jane • Bangkok"
	if h.ContactLine != wantLine {
		t.Fatalf("contact line = %q, want %q", h.ContactLine, wantLine)
	}
}

func TestBuildLayoutPlaceholderIgnoresPrefix(t *testing.T) {
	doc := sampleDocument()
	doc.PersonalInfo.FullName = "  "
	s, _ := BuildLayout(doc, Selection{}).Section(SectionHeader)
	if s.Header.Name != PlaceholderName {
		t.Fatalf("name = %q, want %q", s.Header.Name, PlaceholderName)
	}
}

func TestOutlineEntries(t *testing.T) {
	out := Outline(BuildLayout(sampleDocument(), Selection{}), English)
	var work, edu OutlineSection
	for _, s := range out {
		switch s.ID {
		case SectionWork:
			work = s
		case SectionEducation:
			edu = s
		}
	}
	wantWork := []string{"Senior Engineer", "Acme", "Remote", "2020 – Present", "Built billing", "Engineer", "Initech", "2017 – 2020"}
	if !reflect.DeepEqual(work.Lines, wantWork) {
		t.Fatalf("work lines = %q", work.Lines)
	}
	wantEdu := []string{"BSc Computer Science", "Chulalongkorn University", "2017", "GPA: 3.6", "Compiler", "Scheduler"}
	if !reflect.DeepEqual(edu.Lines, wantEdu) {
		t.Fatalf("education lines = %q", edu.Lines)
	}
}

func TestOutlineThaiLabels(t *testing.T) {
	out := Outline(BuildLayout(sampleDocument(), Selection{}), Thai)
	if out[0].Lines[1] != "อายุ 34 ปี" {
		t.Fatalf("age line = %q", out[0].Lines[1])
	}
	if out[1].Title != "สรุปประวัติ" {
		t.Fatalf("summary title = %q", out[1].Title)
	}
}
