package gate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultTimeout = 300 * time.Millisecond

	DependencySession = "session"
	DependencyProfile = "profile"
)

var errCollaboratorPanic = errors.New("collaborator panicked")

// Recorder receives gate outcomes. Implementations must be safe for
// concurrent use.
type Recorder interface {
	ObserveDecision(action Action)
	ObserveDependency(dependency string, elapsed time.Duration, failed bool)
}

type nopRecorder struct{}

func (nopRecorder) ObserveDecision(Action)                        {}
func (nopRecorder) ObserveDependency(string, time.Duration, bool) {}

// FailOpenPolicy is applied at every external call the gate makes: each call
// is bounded by Timeout, and any error, timeout or panic resolves to the least
// restrictive safe state (anonymous session, or an allowed dashboard).
type FailOpenPolicy struct {
	Timeout  time.Duration
	Logger   *zap.Logger
	Recorder Recorder
}

func (policy FailOpenPolicy) withDefaults() FailOpenPolicy {
	if policy.Timeout <= 0 {
		policy.Timeout = DefaultTimeout
	}
	if policy.Logger == nil {
		policy.Logger = zap.NewNop()
	}
	if policy.Recorder == nil {
		policy.Recorder = nopRecorder{}
	}
	return policy
}

type resolvedSession struct {
	session Session
	ops     []CookieOp
}

// ResolveSession never fails. On resolver failure the session is anonymous
// and no cookie ops are replayed, so an outage does not clear user cookies.
func (policy FailOpenPolicy) ResolveSession(ctx context.Context, resolver SessionResolver, cookies CookieJar) (Session, []CookieOp) {
	policy = policy.withDefaults()
	if resolver == nil {
		return Anonymous, nil
	}

	started := time.Now()
	resolved, err := callWithTimeout(ctx, policy.Timeout, func(callCtx context.Context) (resolvedSession, error) {
		session, ops, err := resolver.Resolve(callCtx, cookies)
		return resolvedSession{session: session, ops: ops}, err
	})
	policy.Recorder.ObserveDependency(DependencySession, time.Since(started), err != nil)
	if err != nil {
		policy.Logger.Warn("session resolution failed, treating request as anonymous", zap.Error(err))
		return Anonymous, nil
	}
	return resolved.session, resolved.ops
}

// CheckProfile maps the store answer onto a ProfileLookup. Only (false, nil)
// means not found; everything else that is not a hit is a failed lookup.
func (policy FailOpenPolicy) CheckProfile(ctx context.Context, checker ProfileChecker, userID string) ProfileLookup {
	policy = policy.withDefaults()
	if checker == nil {
		return ProfileLookupFailed
	}

	started := time.Now()
	exists, err := callWithTimeout(ctx, policy.Timeout, func(callCtx context.Context) (bool, error) {
		return checker.ProfileExists(callCtx, userID)
	})
	policy.Recorder.ObserveDependency(DependencyProfile, time.Since(started), err != nil)
	if err != nil {
		policy.Logger.Warn("profile lookup failed, allowing dashboard access",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return ProfileLookupFailed
	}
	if !exists {
		return ProfileNotFound
	}
	return ProfileFound
}

type callResult[T any] struct {
	value T
	err   error
}

func callWithTimeout[T any](ctx context.Context, timeout time.Duration, call func(context.Context) (T, error)) (T, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan callResult[T], 1)
	go func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				done <- callResult[T]{err: fmt.Errorf("%w: %v", errCollaboratorPanic, recovered)}
			}
		}()
		value, err := call(callCtx)
		done <- callResult[T]{value: value, err: err}
	}()

	select {
	case result := <-done:
		return result.value, result.err
	case <-callCtx.Done():
		var zero T
		return zero, callCtx.Err()
	}
}
