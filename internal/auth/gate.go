// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package auth

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tomtom215/storefront/internal/config"
	"github.com/tomtom215/storefront/internal/logging"
	"github.com/tomtom215/storefront/internal/metrics"
)

// DecisionKind is the outcome of a gate policy.
type DecisionKind int

const (
	Allow DecisionKind = iota
	Redirect
	Deny
)

func (k DecisionKind) String() string {
	switch k {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	case Deny:
		return "deny"
	default:
		return fmt.Sprintf("DecisionKind(%d)", int(k))
	}
}

// Decision is a gate verdict. Location is set only for Redirect.
type Decision struct {
	Kind     DecisionKind
	Location string
}

// Policy decides whether a page request may proceed. Decide is total: it
// never fails and is evaluated once per request.
type Policy interface {
	Name() string
	Decide(sessionPresent bool, path string) Decision
}

// FullAppPolicy bounces signed-in visitors off the auth pages and lets
// everything else through.
type FullAppPolicy struct {
	// AuthPaths are matched as raw prefixes, so "/sign-in" also covers
	// "/sign-in/callback".
	AuthPaths []string
	HomePath  string
}

// Name implements Policy.
func (p FullAppPolicy) Name() string { return config.GatePolicyFullApp }

// Decide implements Policy.
func (p FullAppPolicy) Decide(sessionPresent bool, path string) Decision {
	if sessionPresent && hasAnyPrefix(path, p.AuthPaths) {
		return Decision{Kind: Redirect, Location: p.HomePath}
	}
	return Decision{Kind: Allow}
}

// MiddlewareOnlyPolicy admits only signed-in visitors, on every path.
type MiddlewareOnlyPolicy struct{}

// Name implements Policy.
func (MiddlewareOnlyPolicy) Name() string { return config.GatePolicyMiddlewareOnly }

// Decide implements Policy.
func (MiddlewareOnlyPolicy) Decide(sessionPresent bool, _ string) Decision {
	if sessionPresent {
		return Decision{Kind: Allow}
	}
	return Decision{Kind: Deny}
}

// NewPolicy returns the policy named by cfg.GatePolicy.
func NewPolicy(cfg *config.SecurityConfig) (Policy, error) {
	switch cfg.GatePolicy {
	case config.GatePolicyFullApp, "":
		home := cfg.HomePath
		if home == "" {
			home = "/"
		}
		return FullAppPolicy{AuthPaths: cfg.AuthPaths, HomePath: home}, nil
	case config.GatePolicyMiddlewareOnly:
		return MiddlewareOnlyPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown gate policy %q", cfg.GatePolicy)
	}
}

// Matcher selects the paths the gate runs on: everything except the
// excluded prefixes and suffixes.
type Matcher struct {
	excludedPrefixes []string
	excludedSuffixes []string
}

// NewMatcher creates a matcher from the configured exclusions.
func NewMatcher(excludedPrefixes, excludedSuffixes []string) *Matcher {
	return &Matcher{
		excludedPrefixes: excludedPrefixes,
		excludedSuffixes: excludedSuffixes,
	}
}

// Matches reports whether path is subject to the gate.
func (m *Matcher) Matches(path string) bool {
	if hasAnyPrefix(path, m.excludedPrefixes) {
		return false
	}
	for _, s := range m.excludedSuffixes {
		if strings.HasSuffix(path, s) {
			return false
		}
	}
	return true
}

// Gate applies a Policy to matched requests. It must run after
// Authenticator.Authenticate so session presence is known.
type Gate struct {
	policy     Policy
	matcher    *Matcher
	signInPath string
	authPaths  []string
}

// NewGate builds the gate from config.
func NewGate(cfg *config.SecurityConfig) (*Gate, error) {
	policy, err := NewPolicy(cfg)
	if err != nil {
		return nil, err
	}
	signIn := cfg.SignInPath
	if signIn == "" {
		signIn = "/sign-in"
	}
	return &Gate{
		policy:     policy,
		matcher:    NewMatcher(cfg.GateExcludedPrefixes, cfg.GateExcludedSuffixes),
		signInPath: signIn,
		authPaths:  cfg.AuthPaths,
	}, nil
}

// Policy returns the active policy.
func (g *Gate) Policy() Policy {
	return g.policy
}

// Matcher returns the path matcher.
func (g *Gate) Matcher() *Matcher {
	return g.matcher
}

// Evaluate returns the host-level decision for a request: the policy
// verdict with Deny translated into a redirect to the sign-in page.
// Auth pages are never redirected to sign-in.
func (g *Gate) Evaluate(sessionPresent bool, path, rawQuery string) Decision {
	d := g.policy.Decide(sessionPresent, path)
	if d.Kind != Deny {
		return d
	}
	if strings.HasPrefix(path, g.signInPath) || hasAnyPrefix(path, g.authPaths) {
		return Decision{Kind: Allow}
	}

	callback := path
	if rawQuery != "" {
		callback += "?" + rawQuery
	}
	return Decision{
		Kind:     Deny,
		Location: g.signInPath + "?callbackUrl=" + url.QueryEscape(callback),
	}
}

// Middleware enforces the gate on matched paths.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.matcher.Matches(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		d := g.Evaluate(GetSubject(r.Context()) != nil, r.URL.Path, r.URL.RawQuery)
		metrics.RecordGateDecision(g.policy.Name(), d.Kind.String())

		if d.Kind == Allow {
			next.ServeHTTP(w, r)
			return
		}

		logging.Ctx(r.Context()).Debug().
			Str("policy", g.policy.Name()).
			Str("decision", d.Kind.String()).
			Str("path", r.URL.Path).
			Str("location", d.Location).
			Msg("Gate redirect")
		http.Redirect(w, r, d.Location, http.StatusFound)
	})
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
