package service

import (
	"fmt"
	"strconv"

	"github.com/fellowship-hq/fellowship-api/internal/models"
)

// UnknownFieldError reports an edit request naming a field outside the
// editable set.
type UnknownFieldError struct {
	Field string
}

func (e UnknownFieldError) Error() string {
	return fmt.Sprintf("field %q is not editable", e.Field)
}

// InvalidFieldValueError reports a proposed value that does not parse as the
// field's type.
type InvalidFieldValueError struct {
	Field string
	Value string
}

func (e InvalidFieldValueError) Error() string {
	return fmt.Sprintf("invalid value %q for field %q", e.Value, e.Field)
}

// fieldDescriptor maps a logical editable field to its typed getter, its
// database column, and a parser for proposed values. Comparison happens on
// the parsed typed value, never on strings, so "01" and "1" propose the
// same academic year.
type fieldDescriptor struct {
	name    string
	column  string // empty: informational only, no mutation on apply
	current func(member *models.Member) interface{}
	parse   func(raw string) (interface{}, error)
}

// renderCurrent renders the stored value for the audit trail.
func (d fieldDescriptor) renderCurrent(member *models.Member) string {
	return fmt.Sprintf("%v", d.current(member))
}

// diff parses the proposed value and reports whether it differs from the
// stored one.
func (d fieldDescriptor) diff(member *models.Member, raw string) (changed bool, parsed interface{}, err error) {
	parsed, err = d.parse(raw)
	if err != nil {
		return false, nil, InvalidFieldValueError{Field: d.name, Value: raw}
	}
	return parsed != d.current(member), parsed, nil
}

func stringField(name, column string, get func(member *models.Member) string) fieldDescriptor {
	return fieldDescriptor{
		name:    name,
		column:  column,
		current: func(member *models.Member) interface{} { return get(member) },
		parse:   func(raw string) (interface{}, error) { return raw, nil },
	}
}

func uintField(name, column string, get func(member *models.Member) uint) fieldDescriptor {
	return fieldDescriptor{
		name:    name,
		column:  column,
		current: func(member *models.Member) interface{} { return get(member) },
		parse: func(raw string) (interface{}, error) {
			parsed, err := strconv.ParseUint(raw, 10, 32)
			if err != nil {
				return nil, err
			}
			return uint(parsed), nil
		},
	}
}

func intField(name, column string, get func(member *models.Member) int) fieldDescriptor {
	return fieldDescriptor{
		name:    name,
		column:  column,
		current: func(member *models.Member) interface{} { return get(member) },
		parse: func(raw string) (interface{}, error) {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				return nil, err
			}
			return parsed, nil
		},
	}
}

// editableFields is the closed set of member fields the edit workflow may
// touch. collegeId is captured for the audit trail but applies no mutation:
// the course already encodes the college.
var editableFields = []fieldDescriptor{
	stringField("phoneNumber", "phone_number", func(m *models.Member) string { return m.PhoneNumber }),
	stringField("fullName", "full_name", func(m *models.Member) string { return m.FullName }),
	stringField("email", "email", func(m *models.Member) string { return m.Email }),
	uintField("courseId", "course_id", func(m *models.Member) uint { return m.CourseID }),
	uintField("collegeId", "", func(m *models.Member) uint { return m.CollegeID }),
	intField("initialYearOfStudy", "initial_year_of_study", func(m *models.Member) int { return m.InitialYearOfStudy }),
	intField("initialSemester", "initial_semester", func(m *models.Member) int { return m.InitialSemester }),
	uintField("residenceId", "residence_id", func(m *models.Member) uint { return m.ResidenceID }),
	stringField("hostelName", "hostel_name", func(m *models.Member) string { return m.HostelName }),
}

var editableFieldIndex = buildFieldIndex()

func buildFieldIndex() map[string]fieldDescriptor {
	index := make(map[string]fieldDescriptor, len(editableFields))
	for _, descriptor := range editableFields {
		index[descriptor.name] = descriptor
	}
	return index
}

func lookupEditableField(name string) (fieldDescriptor, bool) {
	descriptor, ok := editableFieldIndex[name]
	return descriptor, ok
}
