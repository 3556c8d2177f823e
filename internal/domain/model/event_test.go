package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
	"github.com/verdello/traintrack/internal/domain/model"
)

func TestNewTrainingEvent(t *testing.T) {
	convey.Convey("Given training event construction", t, func() {
		date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

		convey.Convey("When all fields are valid", func() {
			e, err := model.NewTrainingEvent("evt-1", "user-1", date, 7, model.ModalityLive)

			convey.Convey("Then it should build the event", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(e.EventID, convey.ShouldEqual, "evt-1")
				convey.So(e.UserID, convey.ShouldEqual, "user-1")
				convey.So(e.Date, convey.ShouldEqual, date)
				convey.So(e.Hours, convey.ShouldEqual, 7.0)
				convey.So(e.Modality, convey.ShouldEqual, model.ModalityLive)
			})
		})

		convey.Convey("When hours are negative", func() {
			_, err := model.NewTrainingEvent("evt-2", "user-1", date, -5, model.ModalityLive)

			convey.Convey("Then it should return a ValidationError naming the field", func() {
				var verr *model.ValidationError
				convey.So(errors.As(err, &verr), convey.ShouldBeTrue)
				convey.So(verr.Field, convey.ShouldEqual, "hours")
				convey.So(verr.EventID, convey.ShouldEqual, "evt-2")
			})
		})

		convey.Convey("When the user id is missing", func() {
			_, err := model.NewTrainingEvent("evt-3", "  ", date, 2, model.ModalityRemote)

			convey.Convey("Then it should reject the event", func() {
				var verr *model.ValidationError
				convey.So(errors.As(err, &verr), convey.ShouldBeTrue)
				convey.So(verr.Field, convey.ShouldEqual, "user_id")
			})
		})

		convey.Convey("When the modality is unknown", func() {
			_, err := model.NewTrainingEvent("evt-4", "user-1", date, 2, model.Modality("HYBRID"))

			convey.Convey("Then it should reject the event", func() {
				var verr *model.ValidationError
				convey.So(errors.As(err, &verr), convey.ShouldBeTrue)
				convey.So(verr.Field, convey.ShouldEqual, "modality")
			})
		})

		convey.Convey("When the date is the zero value", func() {
			_, err := model.NewTrainingEvent("evt-5", "user-1", time.Time{}, 2, model.ModalityLive)

			convey.Convey("Then it should reject the event", func() {
				var verr *model.ValidationError
				convey.So(errors.As(err, &verr), convey.ShouldBeTrue)
				convey.So(verr.Field, convey.ShouldEqual, "date")
			})
		})
	})
}

func TestParseModality(t *testing.T) {
	convey.Convey("Given modality parsing", t, func() {
		convey.Convey("When parsing known values", func() {
			for raw, want := range map[string]model.Modality{
				"live":    model.ModalityLive,
				"LIVE":    model.ModalityLive,
				" Remote": model.ModalityRemote,
				"REMOTE":  model.ModalityRemote,
			} {
				m, err := model.ParseModality(raw)
				convey.So(err, convey.ShouldBeNil)
				convey.So(m, convey.ShouldEqual, want)
			}
		})

		convey.Convey("When parsing an unknown value", func() {
			_, err := model.ParseModality("in-person")
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
