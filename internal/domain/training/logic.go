package training

import "clubhouse/internal/domain/person"

// CourseTier decides which online course a person is enrolled in. Active
// people with two or more worked years take the abbreviated half course.
// Everyone else takes the full course. The fullCourseForVets override
// forces the full course for everyone.
func CourseTier(status string, yearsWorked int, fullCourseForVets bool) string {
	if status == person.StatusActive && !fullCourseForVets && yearsWorked >= 2 {
		return CourseHalf
	}
	return CourseFull
}
