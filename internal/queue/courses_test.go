package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"expeditor/internal/models"
)

func TestShouldStartCourse(t *testing.T) {
	tests := []struct {
		name      string
		course    models.Course
		completed []models.Course
		active    []models.Course
		want      bool
	}{
		{
			name:   "appetizers always start",
			course: models.CourseAppetizer,
			active: []models.Course{models.CourseAppetizer},
			want:   true,
		},
		{
			name:   "main waits for outstanding appetizer",
			course: models.CourseMain,
			active: []models.Course{models.CourseAppetizer, models.CourseMain},
			want:   false,
		},
		{
			name:      "main starts once appetizer completes",
			course:    models.CourseMain,
			completed: []models.Course{models.CourseAppetizer},
			active:    []models.Course{models.CourseAppetizer, models.CourseMain},
			want:      true,
		},
		{
			name:   "main starts when order has no appetizer",
			course: models.CourseMain,
			active: []models.Course{models.CourseMain, models.CourseDessert},
			want:   true,
		},
		{
			name:   "dessert waits for outstanding main",
			course: models.CourseDessert,
			active: []models.Course{models.CourseMain, models.CourseDessert},
			want:   false,
		},
		{
			name:      "dessert starts once main completes",
			course:    models.CourseDessert,
			completed: []models.Course{models.CourseMain},
			active:    []models.Course{models.CourseMain, models.CourseDessert},
			want:      true,
		},
		{
			name:   "beverages are never gated",
			course: models.CourseBeverage,
			active: []models.Course{models.CourseAppetizer, models.CourseMain},
			want:   true,
		},
		{
			name:   "sides are never gated",
			course: models.CourseSide,
			active: []models.Course{models.CourseMain},
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShouldStartCourse(tt.course, tt.completed, tt.active)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEngine_ShouldStartCourseRespectsToggle(t *testing.T) {
	cfg := testConfig()
	cfg.CourseRouting = false
	e := NewEngine(cfg)
	defer e.Dispose()

	// With routing off everything may start, even a gated main
	assert.True(t, e.ShouldStartCourse(models.CourseMain, nil, []models.Course{models.CourseAppetizer}))
}
