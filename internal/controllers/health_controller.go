package controllers

import (
	"fmt"
	"net/http"
	"soulhealing/internal/backup"
	"soulhealing/internal/providers"
	"soulhealing/internal/storage"
	"soulhealing/internal/structures"
	"time"
)

type HealthController struct {
	store     storage.Store
	scheduler backup.SchedulerInterface
	runtime   string
	startTime time.Time
}

type backupHealth struct {
	Interval   string  `json:"interval"`
	LastBackup *string `json:"last_backup"`
	LastPath   string  `json:"last_path,omitempty"`
	LastError  string  `json:"last_error,omitempty"`
}

type healthResponse struct {
	Status        string       `json:"status"`
	Uptime        string       `json:"uptime"`
	UptimeSeconds float64      `json:"uptime_seconds"`
	Driver        string       `json:"driver"`
	Runtime       string       `json:"runtime"`
	Backup        backupHealth `json:"backup"`
}

// Health reports "degraded" while the last automatic backup is failing; the
// store itself keeps serving.
func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	status := hc.scheduler.Status()

	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		Driver:        hc.store.Driver(),
		Runtime:       hc.runtime,
		Backup: backupHealth{
			Interval:  "disabled",
			LastPath:  status.LastPath,
			LastError: status.LastError,
		},
	}
	if status.Interval > 0 {
		resp.Backup.Interval = status.Interval.String()
	}
	if !status.LastRun.IsZero() {
		last := status.LastRun.UTC().Format(time.RFC3339)
		resp.Backup.LastBackup = &last
	}
	if status.LastError != "" {
		resp.Status = "degraded"
	}

	writeJSON(w, http.StatusOK, resp)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(store storage.Store, scheduler backup.SchedulerInterface, conf *structures.Config) *HealthController {
	return &HealthController{
		store:     store,
		scheduler: scheduler,
		runtime:   providers.DetectRuntime(conf.Storage.Runtime),
		startTime: time.Now(),
	}
}
