package candidates

import (
	"reflect"
	"strings"
	"testing"

	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/uploads"
)

func strPtr(s string) *string { return &s }

func validSubmission() Submission {
	return Submission{
		FirstName: "Ana",
		LastName:  "García-López",
		Email:     "Ana.Garcia@Example.com",
		Phone:     "+34 600 123 456",
		Address:   "Calle Mayor 1, Madrid",
		LinkedIn:  "https://www.linkedin.com/in/ana",
		Educations: []EducationEntry{{
			Institution:  "Universidad Complutense",
			Degree:       "BSc",
			FieldOfStudy: "Computer Science",
			StartDate:    "2015-09-01",
			EndDate:      strPtr("2019-06-30"),
		}},
		Experiences: []ExperienceEntry{{
			Company:   "Acme",
			Position:  "Engineer",
			StartDate: "2019-09-01",
			Current:   true,
		}},
	}
}

func fields(errs []ValidationError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

func TestValidateAcceptsValidSubmission(t *testing.T) {
	files := []FileInfo{{Name: "cv.pdf", MimeType: uploads.MimePDF, Size: 1024}}
	if errs := Validate(validSubmission(), files); len(errs) != 0 {
		t.Fatalf("expected no errors, got %+v", errs)
	}
}

func TestValidateReportsAllErrorsInDeclarationOrder(t *testing.T) {
	sub := validSubmission()
	sub.FirstName = "A"
	sub.Email = "not-an-email"
	sub.Portfolio = "notaurl"
	sub.Educations[0].Institution = ""
	sub.Educations[0].EndDate = strPtr("2014-01-01")
	sub.Educations[0].Description = strings.Repeat("x", 1001)
	sub.Experiences = append(sub.Experiences, ExperienceEntry{Company: "Beta", Position: "Dev", StartDate: "bad"})
	files := []FileInfo{{Name: "cv.exe", MimeType: "application/octet-stream", Size: 10}}

	got := fields(Validate(sub, files))
	want := []string{
		"firstName",
		"email",
		"portfolio",
		"educations[0].institution",
		"educations[0].endDate",
		"educations[0].description",
		"experiences[1].startDate",
		"experiences[1].endDate",
		"files[0]",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected fields\n got: %v\nwant: %v", got, want)
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	sub := validSubmission()
	sub.Phone = "12"
	sub.Educations[0].EndDate = nil
	first := Validate(sub, nil)
	second := Validate(sub, nil)
	if len(first) == 0 || !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical non-empty results, got %+v and %+v", first, second)
	}
}

func TestValidatePhoneFitsColumn(t *testing.T) {
	sub := validSubmission()
	sub.Phone = "+1 " + strings.Repeat(" ", 40) + "234567890"
	got := fields(Validate(sub, nil))
	if !reflect.DeepEqual(got, []string{"phone"}) {
		t.Fatalf("expected a phone error for a 52 character number, got %v", got)
	}
}

func TestValidateEndDateRules(t *testing.T) {
	cases := []struct {
		name    string
		end     *string
		current bool
		wantMsg string
	}{
		{name: "missing end date", end: nil, wantMsg: "endDate is required when current is false"},
		{name: "empty end date", end: strPtr(""), wantMsg: "endDate is required when current is false"},
		{name: "unparseable end date", end: strPtr("31/12/2020"), wantMsg: "endDate must be a valid date"},
		{name: "end equals start", end: strPtr("2015-09-01"), wantMsg: "endDate must be after startDate"},
		{name: "current ignores end date", end: strPtr("2000-01-01"), current: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sub := validSubmission()
			sub.Educations[0].EndDate = tc.end
			sub.Educations[0].Current = tc.current
			errs := Validate(sub, nil)
			if tc.wantMsg == "" {
				if len(errs) != 0 {
					t.Fatalf("expected no errors, got %+v", errs)
				}
				return
			}
			if len(errs) != 1 || errs[0].Field != "educations[0].endDate" || errs[0].Message != tc.wantMsg {
				t.Fatalf("unexpected errors: %+v", errs)
			}
		})
	}
}

func TestValidateOptionalFieldsMayBeEmpty(t *testing.T) {
	sub := validSubmission()
	sub.Address = ""
	sub.LinkedIn = ""
	sub.Portfolio = ""
	sub.Educations = nil
	sub.Experiences = nil
	if errs := Validate(sub, nil); len(errs) != 0 {
		t.Fatalf("expected no errors, got %+v", errs)
	}
}

func TestValidateFiles(t *testing.T) {
	pdf := FileInfo{Name: "cv.pdf", MimeType: uploads.MimePDF, Size: 100}
	cases := []struct {
		name  string
		files []FileInfo
		want  []string
	}{
		{name: "three files", files: []FileInfo{pdf, pdf, pdf}},
		{name: "four files", files: []FileInfo{pdf, pdf, pdf, pdf}, want: []string{"files"}},
		{name: "too large", files: []FileInfo{{Name: "cv.pdf", MimeType: uploads.MimePDF, Size: 6 << 20}}, want: []string{"files[0]"}},
		{name: "exactly 5MB", files: []FileInfo{{Name: "cv.pdf", MimeType: uploads.MimePDF, Size: 5 << 20}}},
		{name: "docx with generic mime", files: []FileInfo{{Name: "cv.docx", MimeType: "application/octet-stream", Size: 10}}},
		{name: "pdf extension with image mime", files: []FileInfo{pdf, {Name: "cv.pdf", MimeType: "image/png", Size: 10}}, want: []string{"files[1]"}},
		{name: "empty file", files: []FileInfo{{Name: "cv.doc", MimeType: uploads.MimeDOC, Size: 0}}, want: []string{"files[0]"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := fields(ValidateFiles(tc.files))
			if len(got) == 0 && len(tc.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestParseSubmissionReportsMalformedInput(t *testing.T) {
	cases := []struct {
		name      string
		body      string
		wantField string
	}{
		{name: "empty", body: "  ", wantField: "candidate"},
		{name: "syntax", body: `{"firstName":`, wantField: "candidate"},
		{name: "unknown field", body: `{"firstName":"Ana","nickname":"A"}`, wantField: "nickname"},
		{name: "wrong type", body: `{"firstName":42}`, wantField: "firstName"},
		{name: "trailing data", body: `{"firstName":"Ana"} {}`, wantField: "candidate"},
		{name: "top-level array", body: `[]`, wantField: "candidate"},
		{name: "entries not a list", body: `{"educations":"UPM"}`, wantField: "educations"},
		{name: "unknown nested field", body: `{"educations":[{"institution":"UPM","foo":1}]}`, wantField: "educations[0].foo"},
		{name: "wrong nested type", body: `{"experiences":[{},{"current":"yes"}]}`, wantField: "experiences[1].current"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, errs := ParseSubmission([]byte(tc.body))
			if len(errs) != 1 || errs[0].Field != tc.wantField {
				t.Fatalf("unexpected errors: %+v", errs)
			}
		})
	}
}

func TestParseSubmissionDecodesNestedEntries(t *testing.T) {
	body := `{
		"firstName": "Ana", "lastName": "Ruiz", "email": "ana@example.com", "phone": "600123456",
		"educations": [{"institution": "UPM", "degree": "MSc", "fieldOfStudy": "AI", "startDate": "2020-01-01", "endDate": null, "current": true}],
		"experiences": []
	}`
	sub, errs := ParseSubmission([]byte(body))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %+v", errs)
	}
	if len(sub.Educations) != 1 || !sub.Educations[0].Current || sub.Educations[0].EndDate != nil {
		t.Fatalf("unexpected educations: %+v", sub.Educations)
	}
}

func TestParseSubmissionReportsEveryMalformedEntry(t *testing.T) {
	body := `{
		"firstName": "Ana",
		"educations": [{"institution": "UPM", "grade": "A"}, {"institution": "UC3M"}],
		"experiences": [{"company": 7}]
	}`
	_, errs := ParseSubmission([]byte(body))
	got := fields(errs)
	want := []string{"educations[0].grade", "experiences[0].company"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected fields\n got: %v\nwant: %v", got, want)
	}
	if errs[0].Message != "educations[0].grade is not a recognized field" {
		t.Fatalf("unexpected message %q", errs[0].Message)
	}
}

func TestToCandidateNormalizes(t *testing.T) {
	sub := validSubmission()
	sub.FirstName = "  Ana "
	sub.Experiences[0].EndDate = strPtr("2023-01-01")
	n := 0
	c := sub.toCandidate("cand-1", fixedNow, func() string { n++; return "id-" + string(rune('0'+n)) })

	if c.FirstName != "Ana" || c.Email != "ana.garcia@example.com" {
		t.Fatalf("unexpected normalization: %+v", c)
	}
	if c.Educations[0].EndDate == nil || c.Educations[0].EndDate.Format(dateLayout) != "2019-06-30" {
		t.Fatalf("expected education end date to be kept, got %v", c.Educations[0].EndDate)
	}
	if c.Experiences[0].EndDate != nil {
		t.Fatalf("current experience must not keep an end date")
	}
	if c.Educations[0].CandidateID != "cand-1" || c.Educations[0].ID != "id-1" || c.Experiences[0].ID != "id-2" {
		t.Fatalf("unexpected ids: %+v %+v", c.Educations[0], c.Experiences[0])
	}
}
