package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"
)

type LoadTestConfig struct {
	TargetURL       string
	Rooms           int
	ConcurrentUsers int
	Duration        time.Duration
}

type SensorPayload struct {
	RoomID       string  `json:"roomId"`
	BuildingID   string  `json:"buildingId"`
	Floor        int     `json:"floor"`
	Temperature  float64 `json:"temperature"`
	Humidity     float64 `json:"humidity"`
	WifiDevices  int     `json:"wifiDevices"`
	Occupancy    int     `json:"occupancy"`
	SensorStatus string  `json:"sensorStatus"`
}

type TestResults struct {
	TotalRequests   int64
	SuccessRequests int64
	FailedRequests  int64
	TotalLatency    time.Duration
	MinLatency      time.Duration
	MaxLatency      time.Duration
	mu              sync.Mutex
}

func (tr *TestResults) AddResult(success bool, latency time.Duration) {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	tr.TotalRequests++
	tr.TotalLatency += latency

	if tr.MinLatency == 0 || latency < tr.MinLatency {
		tr.MinLatency = latency
	}
	if latency > tr.MaxLatency {
		tr.MaxLatency = latency
	}

	if success {
		tr.SuccessRequests++
	} else {
		tr.FailedRequests++
	}
}

func randomPayload(cfg LoadTestConfig) SensorPayload {
	room := rand.Intn(cfg.Rooms) + 1
	return SensorPayload{
		RoomID:       fmt.Sprintf("R%d", room),
		BuildingID:   "B1",
		Floor:        room/10 + 1,
		Temperature:  18 + rand.Float64()*10,
		Humidity:     30 + rand.Float64()*40,
		WifiDevices:  rand.Intn(40),
		Occupancy:    rand.Intn(12),
		SensorStatus: "ok",
	}
}

func sendReading(client *http.Client, cfg LoadTestConfig, results *TestResults) {
	payload := randomPayload(cfg)
	body, err := json.Marshal(payload)
	if err != nil {
		results.AddResult(false, 0)
		return
	}

	start := time.Now()
	resp, err := client.Post(cfg.TargetURL+"/api/sensor-data", "application/json", bytes.NewReader(body))
	latency := time.Since(start)

	if err != nil {
		results.AddResult(false, latency)
		return
	}
	resp.Body.Close()
	results.AddResult(resp.StatusCode == http.StatusOK, latency)
}

func main() {
	cfg := LoadTestConfig{
		TargetURL:       envString("TARGET_URL", "http://localhost:3001"),
		Rooms:           envInt("ROOMS", 50),
		ConcurrentUsers: envInt("CONCURRENT_USERS", 10),
		Duration:        time.Duration(envInt("DURATION_SEC", 30)) * time.Second,
	}

	log.Printf("Load test: %d senders, %d rooms, %s against %s",
		cfg.ConcurrentUsers, cfg.Rooms, cfg.Duration, cfg.TargetURL)

	results := &TestResults{}
	client := &http.Client{Timeout: 10 * time.Second}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < cfg.ConcurrentUsers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ticker := time.NewTicker(100 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					sendReading(client, cfg, results)
				}
			}
		}()
	}
	wg.Wait()

	avg := time.Duration(0)
	if results.TotalRequests > 0 {
		avg = results.TotalLatency / time.Duration(results.TotalRequests)
	}

	log.Printf("Requests: %d  ok: %d  failed: %d", results.TotalRequests, results.SuccessRequests, results.FailedRequests)
	log.Printf("Latency min/avg/max: %s / %s / %s", results.MinLatency, avg, results.MaxLatency)
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
