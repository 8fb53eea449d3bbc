package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fellowship-hq/fellowship-api/internal/models"
)

func TestFieldDescriptorsCompareTyped(t *testing.T) {
	member := &models.Member{InitialYearOfStudy: 1, CourseID: 3, PhoneNumber: "0700000000"}

	year, ok := lookupEditableField("initialYearOfStudy")
	require.True(t, ok)

	// "01" and "1" propose the same academic year
	changed, _, err := year.diff(member, "01")
	require.NoError(t, err)
	require.False(t, changed)

	changed, parsed, err := year.diff(member, "2")
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, 2, parsed)

	_, _, err = year.diff(member, "second")
	var invalid InvalidFieldValueError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, "initialYearOfStudy", invalid.Field)
	require.Equal(t, "second", invalid.Value)
}

func TestFieldDescriptorRendersCurrentValue(t *testing.T) {
	member := &models.Member{CourseID: 3}

	course, ok := lookupEditableField("courseId")
	require.True(t, ok)
	require.Equal(t, "3", course.renderCurrent(member))
	require.Equal(t, "course_id", course.column)
}

func TestCollegeFieldIsInformationalOnly(t *testing.T) {
	college, ok := lookupEditableField("collegeId")
	require.True(t, ok)
	require.Empty(t, college.column)
}

func TestUnknownFieldsAreRejected(t *testing.T) {
	_, ok := lookupEditableField("fellowshipNumber")
	require.False(t, ok)
	_, ok = lookupEditableField("qrToken")
	require.False(t, ok)
}
