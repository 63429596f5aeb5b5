// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/tomtom215/storefront/internal/audit"
	"github.com/tomtom215/storefront/internal/auth"
	"github.com/tomtom215/storefront/internal/models"
)

// AuditLog handles GET /api/admin/audit. Optional query parameters: type
// (comma separated), actor, outcome and limit (1..500, default 100).
//
// @Summary List audit events, newest first
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param type query string false "Comma separated event types"
// @Param actor query string false "Actor ID"
// @Param outcome query string false "success or failure"
// @Param limit query int false "1..500, default 100"
// @Success 200 {object} APIResponse{data=[]audit.Event}
// @Failure 400 {object} APIResponse "Invalid limit"
// @Failure 503 {object} APIResponse "Audit logging disabled"
// @Router /admin/audit [get]
func (h *Handler) AuditLog(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.Audit == nil {
		rw.Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Audit logging is disabled")
		return
	}

	q := r.URL.Query()
	filter := audit.QueryFilter{
		ActorID: q.Get("actor"),
		Outcome: audit.Outcome(q.Get("outcome")),
		Limit:   100,
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			rw.BadRequest("limit must be between 1 and 500")
			return
		}
		filter.Limit = n
	}
	if raw := q.Get("type"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			filter.Types = append(filter.Types, audit.EventType(strings.TrimSpace(t)))
		}
	}

	events, err := h.Audit.Query(r.Context(), filter)
	if err != nil {
		rw.InternalError("Failed to query audit log")
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	rw.Success(events)
}

func actorFromUser(u *models.User) audit.Actor {
	return audit.Actor{ID: u.ID, Email: u.Email, Role: u.Role}
}

func actorFromRequest(r *http.Request) audit.Actor {
	if s := auth.GetSubject(r.Context()); s != nil {
		return audit.Actor{ID: s.ID, Email: s.Email, Role: s.Role}
	}
	return audit.Actor{}
}

func (h *Handler) auditSignIn(r *http.Request, user *models.User, email string, ok bool) {
	if h.Audit == nil {
		return
	}
	actor := audit.Actor{Email: email}
	if user != nil {
		actor = actorFromUser(user)
	}
	h.Audit.LogSignIn(r.Context(), actor, audit.SourceFromRequest(r), ok)
}

func (h *Handler) auditSignUp(r *http.Request, user *models.User, email, reason string) {
	if h.Audit == nil {
		return
	}
	actor := audit.Actor{Email: email}
	if user != nil {
		actor = actorFromUser(user)
	}
	h.Audit.LogSignUp(r.Context(), actor, audit.SourceFromRequest(r), user != nil, reason)
}

func (h *Handler) auditSignOut(r *http.Request, actor audit.Actor) {
	if h.Audit == nil || actor.ID == "" {
		return
	}
	h.Audit.LogSignOut(r.Context(), actor, audit.SourceFromRequest(r))
}

func (h *Handler) auditCartClaimed(r *http.Request, user *models.User, cartID string) {
	if h.Audit == nil {
		return
	}
	h.Audit.LogCartClaimed(r.Context(), actorFromUser(user), audit.SourceFromRequest(r), cartID)
}

func (h *Handler) auditAdmin(r *http.Request, eventType audit.EventType, target *audit.Target, description string, metadata any) {
	if h.Audit == nil {
		return
	}
	h.Audit.LogAdminAction(r.Context(), eventType, actorFromRequest(r), audit.SourceFromRequest(r), target, description, metadata)
}
