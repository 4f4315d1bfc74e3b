package candidates

import (
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/shared/validators"
	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/uploads"
)

// Validate applies every field and cross-field rule to a submission and its
// files. It never stops at the first problem: errors come back in field
// declaration order with personal data first, then educations, experiences
// and files. An empty result means the submission is acceptable.
func Validate(sub Submission, files []FileInfo) []ValidationError {
	var errs []ValidationError
	errs = append(errs, structErrors("", sub)...)

	for i, e := range sub.Educations {
		prefix := fmt.Sprintf("educations[%d].", i)
		entry := structErrors(prefix, e)
		entry = append(entry, dateRangeErrors(prefix, e.StartDate, e.EndDate, e.Current)...)
		errs = append(errs, ordered[EducationEntry](prefix, entry)...)
	}
	for i, e := range sub.Experiences {
		prefix := fmt.Sprintf("experiences[%d].", i)
		entry := structErrors(prefix, e)
		entry = append(entry, dateRangeErrors(prefix, e.StartDate, e.EndDate, e.Current)...)
		errs = append(errs, ordered[ExperienceEntry](prefix, entry)...)
	}

	errs = append(errs, ValidateFiles(files)...)
	return errs
}

// ValidateFiles checks the document count, type and size rules.
func ValidateFiles(files []FileInfo) []ValidationError {
	var errs []ValidationError
	if len(files) > uploads.MaxFiles {
		errs = append(errs, ValidationError{
			Field:   "files",
			Message: fmt.Sprintf("a maximum of %d files is allowed", uploads.MaxFiles),
		})
	}
	for i, f := range files {
		field := fmt.Sprintf("files[%d]", i)
		if !uploads.IsAllowedType(f.Name, f.MimeType) {
			errs = append(errs, ValidationError{Field: field, Message: field + " must be a PDF, DOC or DOCX file"})
		}
		if f.Size > uploads.MaxFileBytes {
			errs = append(errs, ValidationError{Field: field, Message: field + " exceeds the 5MB size limit"})
		}
		if f.Size == 0 {
			errs = append(errs, ValidationError{Field: field, Message: field + " is empty"})
		}
	}
	return errs
}

func structErrors(prefix string, s any) []ValidationError {
	err := validators.Get().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationError{{Field: prefix + "payload", Message: err.Error()}}
	}
	out := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   prefix + fe.Field(),
			Message: validators.Message(fe),
		})
	}
	return out
}

// dateRangeErrors covers the rules between startDate, endDate and current.
// An ongoing entry ignores whatever end date was sent.
func dateRangeErrors(prefix, start string, end *string, current bool) []ValidationError {
	if current {
		return nil
	}
	field := prefix + "endDate"
	if end == nil || *end == "" {
		return []ValidationError{{Field: field, Message: "endDate is required when current is false"}}
	}
	endAt, ok := validators.ParseDate(*end)
	if !ok {
		return []ValidationError{{Field: field, Message: "endDate must be a valid date"}}
	}
	startAt, ok := validators.ParseDate(start)
	if !ok {
		return nil
	}
	if !endAt.After(startAt) {
		return []ValidationError{{Field: field, Message: "endDate must be after startDate"}}
	}
	return nil
}

// ordered sorts one entry's errors by the declaration order of T's fields.
func ordered[T any](prefix string, errs []ValidationError) []ValidationError {
	rank := fieldRanks(reflect.TypeOf((*T)(nil)).Elem())
	sort.SliceStable(errs, func(i, j int) bool {
		return rank[errs[i].Field[len(prefix):]] < rank[errs[j].Field[len(prefix):]]
	})
	return errs
}

func fieldRanks(t reflect.Type) map[string]int {
	ranks := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name := t.Field(i).Tag.Get("json")
		if name == "" {
			name = t.Field(i).Name
		}
		ranks[name] = i
	}
	return ranks
}
