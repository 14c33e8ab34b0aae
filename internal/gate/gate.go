package gate

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Options struct {
	Routes        RouteTable
	Timeout       time.Duration
	RefererMode   RefererMode
	SecureCookies bool
	Logger        *zap.Logger
	Recorder      Recorder
}

type Request struct {
	Path    string
	Host    string
	Referer string
	Cookies CookieJar
}

type Result struct {
	Decision  Decision
	Session   Session
	CookieOps []CookieOp
}

// Gate is the imperative shell around Decide: it performs the session and
// profile calls under the fail-open policy and collects the cookie ops.
type Gate struct {
	routes        RouteTable
	sessions      SessionResolver
	profiles      ProfileChecker
	policy        FailOpenPolicy
	refererMode   RefererMode
	secureCookies bool
	logger        *zap.Logger
}

func New(sessions SessionResolver, profiles ProfileChecker, options Options) *Gate {
	routes := options.Routes
	if routes.Public == nil {
		routes = DefaultRouteTable()
	}
	refererMode := options.RefererMode
	if refererMode == "" {
		refererMode = RefererStrict
	}
	policy := FailOpenPolicy{
		Timeout:  options.Timeout,
		Logger:   options.Logger,
		Recorder: options.Recorder,
	}.withDefaults()

	return &Gate{
		routes:        routes,
		sessions:      sessions,
		profiles:      profiles,
		policy:        policy,
		refererMode:   refererMode,
		secureCookies: options.SecureCookies,
		logger:        policy.Logger,
	}
}

func (gate *Gate) Routes() RouteTable {
	return gate.routes
}

// Evaluate never returns an error. A panic anywhere in evaluation degrades to
// PassThrough while keeping whatever session and cookie ops were resolved.
func (gate *Gate) Evaluate(ctx context.Context, request Request) (result Result) {
	defer func() {
		if recovered := recover(); recovered != nil {
			gate.logger.Warn("gate evaluation panicked, passing request through",
				zap.String("path", request.Path),
				zap.Any("panic", recovered),
			)
			result.Decision = Decision{Action: PassThrough}
		}
		gate.policy.Recorder.ObserveDecision(result.Decision.Action)
	}()

	path := CanonicalPath(request.Path)
	input := Input{
		Class: gate.routes.Classify(path),
		Path:  path,
	}
	if input.Class == RouteAPI {
		result.Decision = gate.routes.Decide(input)
		return result
	}

	session, ops := gate.policy.ResolveSession(ctx, gate.sessions, request.Cookies)
	result.Session = session
	result.CookieOps = ops

	input.Session = session
	input.Signal = BuildOnboardingSignal(request.Cookies, request.Referer, request.Host, gate.routes.Onboarding, gate.refererMode)
	if gate.routes.RequiresProfileLookup(input) {
		input.Profile = gate.policy.CheckProfile(ctx, gate.profiles, session.UserID)
	}

	result.Decision = gate.routes.Decide(input)
	if result.Decision.ConsumeMarker {
		result.CookieOps = append(result.CookieOps, MarkerDeletion(gate.secureCookies))
	}
	return result
}
