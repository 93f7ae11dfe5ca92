package model

// ResumeDocument is the canonical structured résumé as stored and rendered.
// List entries may be blank; blank entries are kept here and dropped at render time.
type ResumeDocument struct {
	PersonalInfo   PersonalInfo     `json:"personalInfo"`
	Summary        string           `json:"summary"`
	Skills         []string         `json:"skills"`
	WorkExperience []WorkExperience `json:"workExperience"`
	Education      []Education      `json:"education"`
	Certifications []string         `json:"certifications"`
	Awards         []string         `json:"awards"`
}

type PersonalInfo struct {
	Prefix          string `json:"prefix,omitempty"`
	FullName        string `json:"fullName"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	LinkedIn        string `json:"linkedin"`
	Portfolio       string `json:"portfolio,omitempty"`
	Website         string `json:"website,omitempty"`
	Address         string `json:"address,omitempty"`
	ProfileImageRef string `json:"profileImageRef,omitempty"`
	BirthDate       string `json:"birthDate,omitempty"`
	// Age is derived from BirthDate by WithDerivedAge; client-supplied values are ignored.
	Age *int `json:"age,omitempty"`
}

type WorkExperience struct {
	ID          string   `json:"id"`
	Position    string   `json:"position"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	Description []string `json:"description"`
}

type Education struct {
	ID             string `json:"id"`
	Degree         string `json:"degree"`
	Institution    string `json:"institution"`
	Location       string `json:"location"`
	GraduationYear string `json:"graduationYear"`
	GPA            string `json:"gpa,omitempty"`
	// Projects is free text, one project per line.
	Projects string `json:"projects,omitempty"`
}
