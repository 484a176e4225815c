package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

var started = time.Now()

type healthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

// Health: liveness; зависимостей не проверяет.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(healthResponse{
		Status: "ok",
		Uptime: time.Since(started).Truncate(time.Second).String(),
	})
}
