package jwtmw

import (
	"net/http"
	"strings"
)

// Rule permits anonymous access to requests whose path matches Pattern.
// An empty Method matches every method, and a GET rule also matches HEAD.
//
// Pattern segments: a literal, "{name}" for exactly one segment, or a trailing
// "**" for any (possibly empty) suffix.
type Rule struct {
	Method  string
	Pattern string
}

// AllowList is an ordered set of anonymous-access rules.
type AllowList struct {
	rules []compiledRule
}

type compiledRule struct {
	method   string
	segments []string
	suffix   bool
}

// NewAllowList compiles rules.
func NewAllowList(rules ...Rule) *AllowList {
	al := &AllowList{}
	for _, r := range rules {
		segs := splitPath(r.Pattern)
		suffix := false
		if n := len(segs); n > 0 && segs[n-1] == "**" {
			segs = segs[:n-1]
			suffix = true
		}
		al.rules = append(al.rules, compiledRule{
			method:   strings.ToUpper(r.Method),
			segments: segs,
			suffix:   suffix,
		})
	}
	return al
}

// DefaultAllowList returns the routes reachable without a token.
func DefaultAllowList() *AllowList {
	return NewAllowList(
		Rule{Pattern: "/api/auth/**"},
		Rule{Pattern: "/oauth2/**"},
		Rule{Pattern: "/login/oauth2/**"},
		Rule{Pattern: "/uploads/**"},
		Rule{Pattern: "/healthz"},
		Rule{Pattern: "/metrics"},
		Rule{Method: "GET", Pattern: "/api/boards"},
		Rule{Method: "GET", Pattern: "/api/boards/search"},
		Rule{Method: "GET", Pattern: "/api/boards/{id}"},
		Rule{Method: "GET", Pattern: "/api/boards/user/**"},
		Rule{Method: "GET", Pattern: "/api/boards/{boardId}/comments"},
	)
}

// Allows reports whether method+path may proceed unauthenticated.
func (a *AllowList) Allows(method, path string) bool {
	segs := splitPath(path)
	for _, r := range a.rules {
		if !r.matchMethod(method) {
			continue
		}
		if r.match(segs) {
			return true
		}
	}
	return false
}

func (r compiledRule) matchMethod(method string) bool {
	switch r.method {
	case "", method:
		return true
	case http.MethodGet:
		return method == http.MethodHead
	}
	return false
}

func (r compiledRule) match(segs []string) bool {
	if r.suffix {
		if len(segs) < len(r.segments) {
			return false
		}
	} else if len(segs) != len(r.segments) {
		return false
	}
	for i, want := range r.segments {
		if strings.HasPrefix(want, "{") && strings.HasSuffix(want, "}") {
			continue
		}
		if segs[i] != want {
			return false
		}
	}
	return true
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
