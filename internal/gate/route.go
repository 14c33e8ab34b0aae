package gate

import (
	"regexp"
	"strings"
)

type RouteClass int

const (
	RoutePublic RouteClass = iota
	RouteAPI
	RouteProtected
)

func (class RouteClass) String() string {
	switch class {
	case RoutePublic:
		return "public"
	case RouteAPI:
		return "api"
	default:
		return "protected"
	}
}

const (
	HomePath         = "/"
	LoginPath        = "/login"
	SignupPath       = "/signup"
	AuthCallbackPath = "/auth/callback"
	OnboardingPath   = "/onboarding"
	DashboardPath    = "/dashboard"
	APIPrefix        = "/api"
)

// excludedPathPattern matches requests that never enter the gate: static
// assets, optimised images, the favicon and the operational endpoints.
var excludedPathPattern = regexp.MustCompile(`(?i)^/(?:static/|images/|(?:favicon\.ico|healthz|metrics)/*$)`)

// RouteTable is the data-driven description of the site's route classes.
// Every new top-level public page has to be listed in Public or it will
// require a session.
type RouteTable struct {
	Public     map[string]struct{}
	APIPrefix  string
	Login      string
	Dashboard  string
	Onboarding string
}

func DefaultRouteTable() RouteTable {
	return RouteTable{
		Public: map[string]struct{}{
			HomePath:         {},
			LoginPath:        {},
			SignupPath:       {},
			AuthCallbackPath: {},
			OnboardingPath:   {},
		},
		APIPrefix:  APIPrefix,
		Login:      LoginPath,
		Dashboard:  DashboardPath,
		Onboarding: OnboardingPath,
	}
}

// CanonicalPath folds a request path the way the router matches it: without
// regard to case and with trailing slashes dropped.
func CanonicalPath(path string) string {
	path = strings.ToLower(path)
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	if path == "" {
		return "/"
	}
	return path
}

// Classify is total over all strings and has no side effects.
func (table RouteTable) Classify(path string) RouteClass {
	path = CanonicalPath(path)
	if table.isAPI(path) {
		return RouteAPI
	}
	if _, ok := table.Public[path]; ok {
		return RoutePublic
	}
	return RouteProtected
}

func (table RouteTable) isAPI(path string) bool {
	prefix := strings.TrimSuffix(table.APIPrefix, "/")
	if prefix == "" {
		return false
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// Excluded reports whether the path matcher keeps the request out of the gate.
func Excluded(path string) bool {
	return excludedPathPattern.MatchString(path)
}
