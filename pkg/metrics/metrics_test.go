package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "traintrack")
				So(manager.subsystem, ShouldEqual, "compliance")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(10*time.Second),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "test-namespace")
				So(manager.subsystem, ShouldEqual, "test-subsystem")
			})
		})

		Convey("When options carry zero values", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithRefreshInterval(0),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults should be preserved", func() {
				So(manager.namespace, ShouldEqual, "traintrack")
				So(manager.subsystem, ShouldEqual, "compliance")
				So(manager.refreshInterval, ShouldEqual, defaultRefreshInterval)
			})
		})
	})
}

func TestPackageHelpers(t *testing.T) {
	Convey("Given the global metrics helpers", t, func() {
		Convey("Then recording business metrics should not panic", func() {
			So(func() {
				RecordEventIngested()
				RecordEventDuplicate()
				RecordEventInvalid()
				RecordEventDeleted()
				RecordEvaluation()
				RecordEvaluationLatency(1.2)
				RecordEvaluationError()
				RecordStoreError()
			}, ShouldNotPanic)
		})

		Convey("Then updating operational gauges should not panic", func() {
			So(func() {
				UpdateQueueSize(10)
				UpdateQueueCapacity(100)
				UpdateQueueUtilization(0.1)
				UpdateWorkerCount(4)
				UpdateUsersTracked(3)
				UpdateEventsStored(42)
				UpdateRepositoryShardCount(8)
				UpdateRepositoryEventsPerShard("0", 5)
			}, ShouldNotPanic)
		})

		Convey("Then HTTP and error helpers should not panic", func() {
			So(func() {
				RecordHTTPRequest("events", "POST", "202")
				RecordHTTPRequestDuration("events", "POST", "202", 3.4)
				RecordErrorByComponent("queue", "capacity_exceeded")
				RecordErrorByType("client_error", "medium")
				RecordErrorByEndpoint("events", "POST", "client_error")
				RecordErrorLatency("http", "client_error", 2.0)
			}, ShouldNotPanic)
		})

		Convey("Then the exposition registry should be available", func() {
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
