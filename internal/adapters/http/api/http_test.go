package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/verdello/traintrack/internal/adapters/http/api"
	"github.com/verdello/traintrack/internal/adapters/repository"
	"github.com/verdello/traintrack/internal/domain/compliance"
	"github.com/verdello/traintrack/internal/domain/model"
	"github.com/verdello/traintrack/internal/domain/recycling"
)

// Mock implementations for testing
type mockDeps struct {
	seen           map[string]bool
	enqueueSuccess bool
	enqueued       []model.TrainingEvent

	summary    compliance.Summary
	summaryErr error
	yearly     []compliance.YearHours

	events    []model.TrainingEvent
	eventsErr error
	deleteErr error

	competencies    []recycling.Competency
	competenciesErr error
	putErr          error
	put             []recycling.Competency
}

func (m *mockDeps) SeenAndRecord(ctx context.Context, id string) bool {
	if m.seen == nil {
		m.seen = make(map[string]bool)
	}
	if m.seen[id] {
		return true
	}
	m.seen[id] = true
	return false
}

func (m *mockDeps) Unrecord(ctx context.Context, id string) {
	delete(m.seen, id)
}

func (m *mockDeps) Size() int64 {
	return int64(len(m.seen))
}

func (m *mockDeps) Enqueue(ctx context.Context, e model.TrainingEvent) bool {
	if !m.enqueueSuccess {
		return false
	}
	m.enqueued = append(m.enqueued, e)
	return true
}

func (m *mockDeps) Summary(ctx context.Context, userID string, asOf time.Time) (compliance.Summary, error) {
	return m.summary, m.summaryErr
}

func (m *mockDeps) YearlySummary(ctx context.Context, userID string, asOf time.Time) ([]compliance.YearHours, error) {
	return m.yearly, nil
}

func (m *mockDeps) ListEvents(ctx context.Context, userID string) ([]model.TrainingEvent, error) {
	return m.events, m.eventsErr
}

func (m *mockDeps) DeleteEvent(ctx context.Context, userID, eventID string) error {
	return m.deleteErr
}

func (m *mockDeps) PutCompetency(ctx context.Context, c recycling.Competency) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.put = append(m.put, c)
	return nil
}

func (m *mockDeps) ListCompetencies(ctx context.Context, userID string) ([]recycling.Competency, error) {
	return m.competencies, m.competenciesErr
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newTestMux(deps *mockDeps) *http.ServeMux {
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"users": 1}})
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newTestMux(&mockDeps{enqueueSuccess: true})

		Convey("Then the health endpoint should be accessible", func() {
			req := httptest.NewRequest("GET", "/healthz", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("And the stats endpoint should return JSON", func() {
			req := httptest.NewRequest("GET", "/stats", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")
		})
	})
}

func TestEventsHandler(t *testing.T) {
	Convey("Given the events endpoint", t, func() {
		deps := &mockDeps{enqueueSuccess: true}
		mux := newTestMux(deps)

		post := func(body string) *httptest.ResponseRecorder {
			req := httptest.NewRequest("POST", "/events", strings.NewReader(body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			return w
		}

		Convey("When posting a valid event", func() {
			w := post(`{"event_id":"evt-1","user_id":"u1","date":"2026-03-01","hours":7,"modality":"LIVE"}`)

			Convey("Then it should be accepted and enqueued", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(deps.enqueued, ShouldHaveLength, 1)
				So(deps.enqueued[0].UserID, ShouldEqual, "u1")
				So(deps.enqueued[0].Modality, ShouldEqual, model.ModalityLive)
			})
		})

		Convey("When posting the same event twice", func() {
			post(`{"event_id":"evt-2","user_id":"u1","date":"2026-03-01","hours":7,"modality":"LIVE"}`)
			w := post(`{"event_id":"evt-2","user_id":"u1","date":"2026-03-01","hours":7,"modality":"LIVE"}`)

			Convey("Then the second post should report a duplicate", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var ack map[string]interface{}
				So(json.Unmarshal(w.Body.Bytes(), &ack), ShouldBeNil)
				So(ack["duplicate"], ShouldEqual, true)
				So(deps.enqueued, ShouldHaveLength, 1)
			})
		})

		Convey("When posting without an event_id", func() {
			w := post(`{"user_id":"u1","date":"2026-03-01","hours":7,"modality":"REMOTE"}`)

			Convey("Then an id should be assigned", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				var ack map[string]interface{}
				So(json.Unmarshal(w.Body.Bytes(), &ack), ShouldBeNil)
				So(ack["event_id"], ShouldNotBeEmpty)
			})
		})

		Convey("When posting malformed JSON", func() {
			w := post(`{"event_id":`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When posting with a missing user_id", func() {
			w := post(`{"event_id":"evt-3","date":"2026-03-01","hours":7,"modality":"LIVE"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When posting with an unparseable date", func() {
			w := post(`{"event_id":"evt-4","user_id":"u1","date":"March 1st","hours":7,"modality":"LIVE"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When posting with an unknown modality", func() {
			w := post(`{"event_id":"evt-5","user_id":"u1","date":"2026-03-01","hours":7,"modality":"HYBRID"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When posting with negative hours", func() {
			w := post(`{"event_id":"evt-6","user_id":"u1","date":"2026-03-01","hours":-2,"modality":"LIVE"}`)

			Convey("Then construction should fail with a field-level reason", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "hours")
				So(deps.enqueued, ShouldBeEmpty)
			})
		})

		Convey("When the queue is full", func() {
			deps.enqueueSuccess = false
			w := post(`{"event_id":"evt-7","user_id":"u1","date":"2026-03-01","hours":7,"modality":"LIVE"}`)

			Convey("Then the request should be rejected with 429", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
			})

			Convey("And the id should be unrecorded so a retry can succeed", func() {
				deps.enqueueSuccess = true
				retry := post(`{"event_id":"evt-7","user_id":"u1","date":"2026-03-01","hours":7,"modality":"LIVE"}`)
				So(retry.Code, ShouldEqual, http.StatusAccepted)
			})
		})
	})
}

func TestComplianceHandler(t *testing.T) {
	Convey("Given the compliance endpoint", t, func() {
		deps := &mockDeps{
			summary: compliance.Summary{
				TotalHoursInWindow: 25,
				LiveHoursInWindow:  10,
				RequiredHours:      21,
				IsCompliant:        true,
			},
			yearly: []compliance.YearHours{
				{Year: 2025, Hours: 14, LiveHours: 7},
				{Year: 2026, Hours: 11, LiveHours: 3},
			},
		}
		mux := newTestMux(deps)

		get := func(path string) *httptest.ResponseRecorder {
			req := httptest.NewRequest("GET", path, nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			return w
		}

		Convey("When fetching a user summary", func() {
			w := get("/compliance/u1")

			Convey("Then it should return the evaluation result", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp map[string]interface{}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["user_id"], ShouldEqual, "u1")
				So(resp["total_hours_in_window"], ShouldEqual, 25.0)
				So(resp["is_compliant"], ShouldEqual, true)
			})
		})

		Convey("When fetching a summary with a valid as_of", func() {
			w := get("/compliance/u1?as_of=2026-06-01")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("When fetching a summary with a bad as_of", func() {
			w := get("/compliance/u1?as_of=yesterday")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When fetching the yearly breakdown", func() {
			w := get("/compliance/u1/yearly")

			Convey("Then it should return one entry per year", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp struct {
					UserID string                 `json:"user_id"`
					Years  []compliance.YearHours `json:"years"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Years, ShouldHaveLength, 2)
				So(resp.Years[0].Year, ShouldEqual, 2025)
			})
		})

		Convey("When the path has an unknown suffix", func() {
			w := get("/compliance/u1/monthly")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the user segment is empty", func() {
			w := get("/compliance/")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestUserEventsHandler(t *testing.T) {
	Convey("Given the user events endpoint", t, func() {
		deps := &mockDeps{
			events: []model.TrainingEvent{
				{EventID: "evt-1", UserID: "u1", Date: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), Hours: 7, Modality: model.ModalityLive},
			},
		}
		mux := newTestMux(deps)

		Convey("When listing a user's events", func() {
			req := httptest.NewRequest("GET", "/users/u1/events", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the log should be returned in the wire schema", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp struct {
					UserID string `json:"user_id"`
					Events []struct {
						EventID  string  `json:"event_id"`
						UserID   string  `json:"user_id"`
						Date     string  `json:"date"`
						Hours    float64 `json:"hours"`
						Modality string  `json:"modality"`
					} `json:"events"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Events, ShouldHaveLength, 1)
				So(resp.Events[0].EventID, ShouldEqual, "evt-1")
				So(resp.Events[0].Hours, ShouldEqual, 7)
				So(resp.Events[0].Modality, ShouldEqual, "LIVE")
				So(w.Body.String(), ShouldContainSubstring, `"event_id"`)
				So(w.Body.String(), ShouldNotContainSubstring, `"EventID"`)
			})
		})

		Convey("When listing an unknown user", func() {
			deps.eventsErr = repository.ErrNotFound
			req := httptest.NewRequest("GET", "/users/nobody/events", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When deleting an event", func() {
			req := httptest.NewRequest("DELETE", "/users/u1/events/evt-1", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("When deleting a missing event", func() {
			deps.deleteErr = repository.ErrNotFound
			req := httptest.NewRequest("DELETE", "/users/u1/events/evt-404", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the path does not name the events collection", func() {
			req := httptest.NewRequest("GET", "/users/u1/history", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestRecyclingHandler(t *testing.T) {
	Convey("Given the recycling endpoints", t, func() {
		deps := &mockDeps{enqueueSuccess: true}
		mux := newTestMux(deps)

		Convey("When posting a valid competency", func() {
			body := `{"user_id":"u1","skill_id":"first-aid","level":"instructor","evaluation_date":"2025-06-01","validity_months":12}`
			req := httptest.NewRequest("POST", "/competencies", strings.NewReader(body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should be stored", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				So(deps.put, ShouldHaveLength, 1)
				So(deps.put[0].SkillID, ShouldEqual, "first-aid")
				So(deps.put[0].ValidityMonths, ShouldEqual, 12)
			})
		})

		Convey("When posting a competency without a skill_id", func() {
			body := `{"user_id":"u1","evaluation_date":"2025-06-01","validity_months":12}`
			req := httptest.NewRequest("POST", "/competencies", strings.NewReader(body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When fetching recycling status", func() {
			deps.competencies = []recycling.Competency{
				{
					UserID:         "u1",
					SkillID:        "first-aid",
					EvaluationDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
					ValidityMonths: 12,
				},
			}
			req := httptest.NewRequest("GET", "/recycling/u1?as_of=2025-07-01", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then each competency should carry a status and due date", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp struct {
					UserID       string `json:"user_id"`
					Competencies []struct {
						SkillID string `json:"skill_id"`
						Status  string `json:"status"`
						DueDate string `json:"due_date"`
					} `json:"competencies"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Competencies, ShouldHaveLength, 1)
				So(resp.Competencies[0].Status, ShouldEqual, string(recycling.StatusCurrent))
				So(resp.Competencies[0].DueDate, ShouldNotBeEmpty)
			})
		})

		Convey("When fetching recycling status for an unknown user", func() {
			deps.competenciesErr = repository.ErrNotFound
			req := httptest.NewRequest("GET", "/recycling/nobody", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}
