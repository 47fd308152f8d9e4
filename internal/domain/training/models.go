package training

import "time"

const (
	CourseFull = "full"
	CourseHalf = "half"
)

type Completion struct {
	ID          int64     `json:"id"`
	PersonID    int64     `json:"person_id"`
	Callsign    string    `json:"callsign"`
	CourseType  string    `json:"course_type"`
	CompletedAt time.Time `json:"completed_at"`
}
