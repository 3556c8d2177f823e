// Command seed-events generates synthetic training events and posts them to
// a running service. Useful for smoke tests and load checks.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Default configuration constants.
const (
	defaultNumEvents = 1000
	defaultNumUsers  = 50
	defaultWorkers   = 8
	defaultTimeout   = 30 * time.Second
	defaultRunLimit  = 10 * time.Minute
	maxHoursPerEvent = 8
	historyYears     = 7
)

type eventPayload struct {
	EventID  string  `json:"event_id"`
	UserID   string  `json:"user_id"`
	Date     string  `json:"date"`
	Hours    float64 `json:"hours"`
	Modality string  `json:"modality"`
}

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numEvents = flag.Int("events", defaultNumEvents, "Number of events to generate and submit")
		numUsers  = flag.Int("users", defaultNumUsers, "Number of distinct users to spread events over")
		workers   = flag.Int("workers", defaultWorkers, "Number of concurrent submitters")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		seed      = flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunLimit)
	defer cancel()

	rng := rand.New(rand.NewSource(*seed))
	events := generate(rng, *numEvents, *numUsers)

	client := &http.Client{Timeout: *timeout}
	var accepted, duplicates, failed atomic.Int64

	jobs := make(chan eventPayload)
	var wg sync.WaitGroup
	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for e := range jobs {
				switch code, err := post(ctx, client, *baseURL+"/events", e); {
				case err != nil:
					failed.Add(1)
				case code == http.StatusAccepted:
					accepted.Add(1)
				case code == http.StatusOK:
					duplicates.Add(1)
				default:
					failed.Add(1)
				}
			}
		}()
	}

	start := time.Now()
	for _, e := range events {
		select {
		case jobs <- e:
		case <-ctx.Done():
		}
	}
	close(jobs)
	wg.Wait()

	fmt.Fprintf(os.Stdout, "submitted %d events in %s: %d accepted, %d duplicates, %d failed\n",
		len(events), time.Since(start).Round(time.Millisecond),
		accepted.Load(), duplicates.Load(), failed.Load())
}

// generate builds events spread over the past few years so that summaries
// have both in-window and out-of-window data to chew on.
func generate(rng *rand.Rand, n, users int) []eventPayload {
	now := time.Now().UTC()
	events := make([]eventPayload, 0, n)
	for i := 0; i < n; i++ {
		daysBack := rng.Intn(historyYears * 365)
		modality := "REMOTE"
		if rng.Intn(3) == 0 {
			modality = "LIVE"
		}
		events = append(events, eventPayload{
			EventID:  uuid.NewString(),
			UserID:   fmt.Sprintf("user-%03d", rng.Intn(users)),
			Date:     now.AddDate(0, 0, -daysBack).Format("2006-01-02"),
			Hours:    float64(1 + rng.Intn(maxHoursPerEvent)),
			Modality: modality,
		})
	}
	return events
}

func post(ctx context.Context, client *http.Client, url string, e eventPayload) (int, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
