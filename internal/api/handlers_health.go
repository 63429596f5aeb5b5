// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package api

import (
	"context"
	"net/http"
	"time"
)

// HealthStatus is the /api/health payload.
type HealthStatus struct {
	Status            string  `json:"status"`
	DatabaseConnected bool    `json:"database_connected"`
	GatePolicy        string  `json:"gate_policy"`
	PageCacheEntries  int     `json:"page_cache_entries"`
	WebSocketClients  int     `json:"websocket_clients"`
	Uptime            float64 `json:"uptime_seconds"`
}

// Health handles GET /api/health. It answers 503 when the database is
// unreachable so load balancers drain the instance.
//
// @Summary Liveness and database status
// @Tags Core
// @Produce json
// @Success 200 {object} APIResponse{data=HealthStatus}
// @Failure 503 {object} APIResponse{data=HealthStatus} "Database unreachable"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbConnected := h.DB.Ping(ctx) == nil
	status := HealthStatus{
		Status:            "healthy",
		DatabaseConnected: dbConnected,
		GatePolicy:        h.Gate.Policy().Name(),
		PageCacheEntries:  h.Pages.Len(),
		Uptime:            time.Since(h.startTime).Seconds(),
	}
	if h.Hub != nil {
		status.WebSocketClients = h.Hub.GetClientCount()
	}

	if !dbConnected {
		status.Status = "degraded"
		writeJSON(w, r, http.StatusServiceUnavailable, APIResponse{Success: false, Data: status})
		return
	}
	WriteSuccess(w, r, status)
}
