package main

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	flag "github.com/spf13/pflag"
)

const numExercises = 12

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

var names = []string{"Ana", "Bruno", "Carmen", "Diego", "Elena", "Fernando", "Gloria", "Hugo"}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

type loadTest struct {
	baseURL string
	workers int
	ids     idPool
}

// idPool remembers note ids the server handed back so deletes hit
// real records.
type idPool struct {
	mu  sync.Mutex
	ids []int64
}

func (p *idPool) add(id int64) {
	p.mu.Lock()
	p.ids = append(p.ids, id)
	p.mu.Unlock()
}

func (p *idPool) take(rng *rand.Rand) (int64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.ids) == 0 {
		return 0, false
	}
	i := rng.Intn(len(p.ids))
	id := p.ids[i]
	p.ids[i] = p.ids[len(p.ids)-1]
	p.ids = p.ids[:len(p.ids)-1]
	return id, true
}

func main() {
	baseURL := flag.String("url", "http://127.0.0.1:8095", "Server base URL")
	workers := flag.Int("workers", 20, "Concurrent workers")
	duration := flag.Duration("duration", 10*time.Second, "Duration of each phase")
	flag.Parse()

	lt := &loadTest{baseURL: strings.TrimRight(*baseURL, "/"), workers: *workers}

	fmt.Println("=== SoulHealing Load Test ===")
	fmt.Printf("Target: %s | Workers: %d | Phase: %s\n\n", lt.baseURL, lt.workers, *duration)

	fmt.Print("Waiting for server... ")
	if !lt.waitForServer() {
		fmt.Println("FAILED: server not responding")
		os.Exit(1)
	}
	fmt.Println("OK")

	fmt.Println("\n--- Phase 1: Seeding (POST notes, people, calendar) ---")
	lt.runPhase(*duration, func(rng *rand.Rand) result {
		switch rng.Intn(3) {
		case 0:
			return lt.doAddNote(rng)
		case 1:
			return lt.doAddPerson(rng)
		default:
			return lt.doMark(rng)
		}
	})

	fmt.Println("\n--- Phase 2: Mixed load (40% writes, 60% reads) ---")
	lt.runPhase(*duration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.15:
			return lt.doAddNote(rng)
		case r < 0.25:
			return lt.doForgive(rng)
		case r < 0.35:
			return lt.doMark(rng)
		case r < 0.40:
			return lt.doDeleteNote(rng)
		case r < 0.60:
			return lt.doList("/api/notes", rng)
		case r < 0.80:
			return lt.doList("/api/people", rng)
		default:
			return lt.doList("/api/calendar", rng)
		}
	})

	fmt.Println("\n--- Phase 3: Backup export under read load ---")
	lt.runPhase(*duration, func(rng *rand.Rand) result {
		if rng.Float64() < 0.05 {
			return lt.do(http.MethodGet, "/api/backup", "GET /api/backup", nil, http.StatusOK)
		}
		return lt.doList("/api/calendar", rng)
	})
}

func (lt *loadTest) waitForServer() bool {
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(lt.baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return true
		}
		time.Sleep(200 * time.Millisecond)
	}
	return false
}

func (lt *loadTest) runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
	stop := make(chan struct{})

	for i := 0; i < lt.workers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					results <- workFn(rng)
					totalOps.Add(1)
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func (lt *loadTest) do(method, path, endpoint string, body any, want int) result {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, lt.baseURL+path, reader)
	if err != nil {
		return result{endpoint, 0, 0, true}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := httpClient.Do(req)
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{endpoint, resp.StatusCode, lat, resp.StatusCode != want}
}

// create posts a record and keeps the returned id for later deletes.
func (lt *loadTest) create(path, endpoint string, body any) result {
	data, _ := json.Marshal(body)
	start := time.Now()
	resp, err := httpClient.Post(lt.baseURL+path, "application/json", bytes.NewReader(data))
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	defer resp.Body.Close()

	var created struct {
		ID int64 `json:"id"`
	}
	if resp.StatusCode == http.StatusCreated && json.NewDecoder(resp.Body).Decode(&created) == nil {
		lt.ids.add(created.ID)
	}
	io.Copy(io.Discard, resp.Body)
	return result{endpoint, resp.StatusCode, lat, resp.StatusCode != http.StatusCreated}
}

func (lt *loadTest) doAddNote(rng *rand.Rand) result {
	return lt.create("/api/notes", "POST /api/notes", map[string]any{
		"exercise_id": rng.Intn(numExercises) + 1,
		"content":     fmt.Sprintf("note %d", rng.Int63()),
	})
}

func (lt *loadTest) doAddPerson(rng *rand.Rand) result {
	return lt.do(http.MethodPost, "/api/people", "POST /api/people", map[string]any{
		"exercise_id": rng.Intn(numExercises) + 1,
		"name":        names[rng.Intn(len(names))],
		"notes":       "",
	}, http.StatusCreated)
}

func (lt *loadTest) doMark(rng *rand.Rand) result {
	day := time.Now().AddDate(0, 0, -rng.Intn(365)).Format("2006-01-02")
	r := lt.do(http.MethodPost, "/api/calendar/mark", "POST /api/calendar/mark", map[string]any{
		"date":        day,
		"exercise_id": rng.Intn(numExercises) + 1,
	}, http.StatusCreated)
	// an existing entry for the day is a success too
	if r.status == http.StatusOK {
		r.err = false
	}
	return r
}

func (lt *loadTest) doForgive(rng *rand.Rand) result {
	id := rng.Intn(200) + 1
	return lt.do(http.MethodPatch, fmt.Sprintf("/api/people/%d", id), "PATCH /api/people/{id}",
		map[string]any{"forgiven": rng.Intn(2) == 1}, http.StatusNoContent)
}

func (lt *loadTest) doDeleteNote(rng *rand.Rand) result {
	id, ok := lt.ids.take(rng)
	if !ok {
		return lt.doList("/api/notes", rng)
	}
	return lt.do(http.MethodDelete, fmt.Sprintf("/api/notes/%d", id), "DELETE /api/notes/{id}", nil, http.StatusNoContent)
}

func (lt *loadTest) doList(path string, rng *rand.Rand) result {
	url := path
	if rng.Intn(2) == 0 {
		url = fmt.Sprintf("%s?exercise=%d", path, rng.Intn(numExercises)+1)
	}
	return lt.do(http.MethodGet, url, "GET "+path, nil, http.StatusOK)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-26s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 92))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		fmt.Printf("  %-26s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors,
			fmtDur(avgDuration(s.latencies)),
			fmtDur(percentile(s.latencies, 0.50)),
			fmtDur(percentile(s.latencies, 0.95)),
			fmtDur(percentile(s.latencies, 0.99)))
	}

	if totalOps == 0 {
		fmt.Println("  no requests completed")
		return
	}
	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + strings.Repeat("-", 92))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
