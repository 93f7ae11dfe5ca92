package model

import (
	"errors"
	"strings"
	"testing"
)

func TestDecodeDocumentAcceptsEditorPayload(t *testing.T) {
	raw := []byte(`{
		"personalInfo": {"fullName": "Jane Doe", "email": "jane@example.com", "phone": "", "linkedin": ""},
		"summary": "Engineer",
		"skills": ["Go", ""],
		"workExperience": [{"id": "1700000000000", "position": "Dev", "company": "Acme", "location": "BKK",
			"startDate": "2020", "endDate": "", "description": ["Led X", "  "]}],
		"education": [],
		"certifications": null,
		"awards": []
	}`)
	doc, err := DecodeDocument(raw)
	if err != nil {
		t.Fatalf("DecodeDocument: %v", err)
	}
	if doc.PersonalInfo.FullName != "Jane Doe" {
		t.Fatalf("unexpected name %q", doc.PersonalInfo.FullName)
	}
	if len(doc.Skills) != 2 {
		t.Fatalf("blank entries must be preserved in storage, got %v", doc.Skills)
	}
	if len(doc.WorkExperience[0].Description) != 2 {
		t.Fatalf("blank bullets must be preserved, got %v", doc.WorkExperience[0].Description)
	}
}

func TestDecodeDocumentRejectsWrongShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "missing personal info", raw: `{"summary": "x"}`},
		{name: "skills not strings", raw: `{"personalInfo": {}, "skills": [1, 2]}`},
		{name: "experience without id", raw: `{"personalInfo": {}, "workExperience": [{"position": "Dev"}]}`},
		{name: "not an object", raw: `["a"]`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDocument([]byte(tt.raw))
			var schemaErr *SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("expected SchemaError, got %v", err)
			}
			if !strings.Contains(err.Error(), "resume document invalid") {
				t.Fatalf("unexpected message %q", err.Error())
			}
		})
	}
}
