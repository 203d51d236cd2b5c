package api

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	healthy := true
	database := "connected"
	if err := s.deps.Database.Ping(ctx); err != nil {
		healthy = false
		database = "disconnected"
		s.deps.Logger.Warn("база данных недоступна", "error", err)
	}

	cache := "disabled"
	if s.deps.Cache != nil {
		cache = "connected"
		if err := s.deps.Cache.Ping(ctx); err != nil {
			healthy = false
			cache = "disconnected"
			s.deps.Logger.Warn("redis недоступен", "error", err)
		}
	}

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"database":  database,
		"cache":     cache,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	system := map[string]interface{}{
		"goroutines":      runtime.NumGoroutine(),
		"memory_alloc_mb": float64(m.Alloc) / 1024 / 1024,
		"memory_sys_mb":   float64(m.Sys) / 1024 / 1024,
		"gc_runs":         m.NumGC,
	}
	if usage, err := cpuUsage(); err == nil {
		system["cpu_percent"] = usage
	}
	if usage, err := memoryUsage(); err == nil {
		system["memory_percent"] = usage
	}

	status := map[string]interface{}{
		"service":        "interview-voice-service",
		"status":         "operational",
		"version":        s.deps.Version,
		"uptime":         time.Since(s.startedAt).Round(time.Second).String(),
		"timestamp":      time.Now().Format(time.RFC3339),
		"activeSessions": s.deps.Voice.ActiveSessions(),
		"metrics":        s.deps.Metrics.GetSnapshot(),
		"system":         system,
	}
	if s.deps.Results != nil {
		if ids, err := s.deps.Results.ListResults(); err == nil {
			status["archivedSessions"] = len(ids)
		}
	}
	if s.deps.ModelInfo != nil {
		status["model"] = s.deps.ModelInfo
	}
	writeJSON(w, http.StatusOK, status)
}

func cpuUsage() (float64, error) {
	percentages, err := cpu.Percent(0, false)
	if err != nil {
		return 0, err
	}
	if len(percentages) == 0 {
		return 0, fmt.Errorf("не удалось получить загрузку CPU")
	}
	return percentages[0], nil
}

func memoryUsage() (float64, error) {
	virtualMem, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return virtualMem.UsedPercent, nil
}
