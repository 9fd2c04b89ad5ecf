package queue

import "expeditor/internal/models"

// ShouldStartCourse reports whether a course may begin given which
// courses have completed and which are still outstanding. A course is
// allowed once its predecessor is complete, or when no predecessor
// course is outstanding at all (an order with no appetizer should not
// hold its mains). Beverages and sides are never gated.
//
// This is advisory guidance for the display; the engine does not
// enforce it against status transitions.
func ShouldStartCourse(course models.Course, completed, active []models.Course) bool {
	switch course {
	case models.CourseMain:
		return containsCourse(completed, models.CourseAppetizer) || !containsCourse(active, models.CourseAppetizer)
	case models.CourseDessert:
		return containsCourse(completed, models.CourseMain) || !containsCourse(active, models.CourseMain)
	default:
		return true
	}
}

func containsCourse(courses []models.Course, c models.Course) bool {
	for _, course := range courses {
		if course == c {
			return true
		}
	}
	return false
}
