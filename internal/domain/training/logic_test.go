package training

import (
	"testing"

	"clubhouse/internal/domain/person"
)

func TestCourseTierVeteranGetsHalfCourse(t *testing.T) {
	if got := CourseTier(person.StatusActive, 2, false); got != CourseHalf {
		t.Fatalf("expected half course, got %s", got)
	}
	if got := CourseTier(person.StatusActive, 10, false); got != CourseHalf {
		t.Fatalf("expected half course, got %s", got)
	}
}

func TestCourseTierNewcomersGetFullCourse(t *testing.T) {
	if got := CourseTier(person.StatusActive, 1, false); got != CourseFull {
		t.Fatalf("expected full course for one worked year, got %s", got)
	}
	if got := CourseTier(person.StatusProspective, 5, false); got != CourseFull {
		t.Fatalf("expected full course for non-active status, got %s", got)
	}
	if got := CourseTier(person.StatusAuditor, 0, false); got != CourseFull {
		t.Fatalf("expected full course for auditor, got %s", got)
	}
}

func TestCourseTierVetsOverride(t *testing.T) {
	if got := CourseTier(person.StatusActive, 5, true); got != CourseFull {
		t.Fatalf("expected override to force full course, got %s", got)
	}
}
