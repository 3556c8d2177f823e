package recycling_test

import (
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
	"github.com/verdello/traintrack/internal/domain/recycling"
)

func TestCompetencyDates(t *testing.T) {
	convey.Convey("Given a competency with a 12-month validity", t, func() {
		evaluated := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
		c := recycling.Competency{
			UserID:         "u1",
			SkillID:        "sampling",
			Level:          "Expert",
			EvaluationDate: evaluated,
			ValidityMonths: 12,
		}

		convey.Convey("Then the due date should be about a year after evaluation", func() {
			due := c.DueDate()
			convey.So(due.After(evaluated.AddDate(1, 0, -5)), convey.ShouldBeTrue)
			convey.So(due.Before(evaluated.AddDate(1, 0, 5)), convey.ShouldBeTrue)
		})

		convey.Convey("Then the warning date should precede the due date by a quarter of the validity", func() {
			gap := c.DueDate().Sub(c.WarningDate())
			convey.So(gap, convey.ShouldAlmostEqual, time.Duration(float64(c.DueDate().Sub(evaluated))*0.25), float64(time.Hour))
		})

		convey.Convey("When a practice happened after evaluation", func() {
			practiced := evaluated.AddDate(0, 6, 0)
			c.LatestPracticeDate = practiced

			convey.Convey("Then the validity should count from the practice", func() {
				convey.So(c.ReferenceDate(), convey.ShouldEqual, practiced)
				convey.So(c.DueDate().After(practiced), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a practice predates the evaluation", func() {
			c.LatestPracticeDate = evaluated.AddDate(0, -3, 0)

			convey.Convey("Then the evaluation remains the reference", func() {
				convey.So(c.ReferenceDate(), convey.ShouldEqual, evaluated)
			})
		})
	})

	convey.Convey("Given a competency without a validity period", t, func() {
		c := recycling.Competency{
			UserID:         "u1",
			SkillID:        "theory",
			EvaluationDate: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
		}

		convey.Convey("Then it should never expire", func() {
			convey.So(c.DueDate().IsZero(), convey.ShouldBeTrue)
			convey.So(c.WarningDate().IsZero(), convey.ShouldBeTrue)
			convey.So(c.Status(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)), convey.ShouldEqual, recycling.StatusCurrent)
		})
	})
}

func TestCompetencyStatus(t *testing.T) {
	convey.Convey("Given a competency evaluated two years ago with a 24-month validity", t, func() {
		evaluated := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		c := recycling.Competency{
			UserID:         "u1",
			SkillID:        "handling",
			EvaluationDate: evaluated,
			ValidityMonths: 24,
		}

		convey.Convey("Then right after evaluation it should be current", func() {
			convey.So(c.Status(evaluated.AddDate(0, 1, 0)), convey.ShouldEqual, recycling.StatusCurrent)
		})

		convey.Convey("Then inside the last quarter of validity it should warn", func() {
			convey.So(c.Status(c.DueDate().AddDate(0, -2, 0)), convey.ShouldEqual, recycling.StatusWarning)
		})

		convey.Convey("Then past the due date it should be expired", func() {
			convey.So(c.Status(c.DueDate().AddDate(0, 1, 0)), convey.ShouldEqual, recycling.StatusExpired)
		})
	})
}
