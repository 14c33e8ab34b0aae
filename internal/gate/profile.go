package gate

import "context"

type ProfileLookup int

const (
	ProfileNotQueried ProfileLookup = iota
	ProfileFound
	ProfileNotFound
	ProfileLookupFailed
)

func (lookup ProfileLookup) String() string {
	switch lookup {
	case ProfileFound:
		return "found"
	case ProfileNotFound:
		return "not_found"
	case ProfileLookupFailed:
		return "failed"
	default:
		return "not_queried"
	}
}

// ProfileChecker answers whether a profile row exists for a user.
// (false, nil) is the not-found condition; any error is a lookup failure.
type ProfileChecker interface {
	ProfileExists(ctx context.Context, userID string) (bool, error)
}
