package gate

import (
	"net/url"
	"strings"
)

const (
	OnboardingCompletedCookie = "onboarding_completed"
	onboardingCompletedValue  = "true"
)

// OnboardingSignal is per-request evidence that the user has just finished
// onboarding. Either flag suppresses the onboarding redirect.
type OnboardingSignal struct {
	RefererIndicatesOnboarding bool
	CompletedCookie            bool
}

func (signal OnboardingSignal) Any() bool {
	return signal.RefererIndicatesOnboarding || signal.CompletedCookie
}

type RefererMode string

const (
	// RefererStrict requires a same-host referer whose path is the onboarding
	// route or one of its sub-paths.
	RefererStrict RefererMode = "strict"
	// RefererLoose accepts any referer whose path contains the onboarding route.
	RefererLoose RefererMode = "loose"
)

func ParseRefererMode(raw string) RefererMode {
	if strings.EqualFold(strings.TrimSpace(raw), string(RefererLoose)) {
		return RefererLoose
	}
	return RefererStrict
}

func BuildOnboardingSignal(cookies CookieJar, referer string, host string, onboardingPath string, mode RefererMode) OnboardingSignal {
	marker, _ := cookies.Get(OnboardingCompletedCookie)
	return OnboardingSignal{
		RefererIndicatesOnboarding: RefererIndicatesOnboarding(referer, host, onboardingPath, mode),
		CompletedCookie:            strings.TrimSpace(marker) == onboardingCompletedValue,
	}
}

func RefererIndicatesOnboarding(referer string, host string, onboardingPath string, mode RefererMode) bool {
	referer = strings.TrimSpace(referer)
	if referer == "" || onboardingPath == "" {
		return false
	}

	parsed, err := url.Parse(referer)
	if err != nil {
		return false
	}

	if mode == RefererLoose {
		return strings.Contains(parsed.Path, onboardingPath)
	}

	if parsed.Host != "" && !strings.EqualFold(parsed.Host, host) {
		return false
	}
	return parsed.Path == onboardingPath || strings.HasPrefix(parsed.Path, onboardingPath+"/")
}

// MarkerDeletion expires the client-set marker cookie once it has been honoured.
func MarkerDeletion(secure bool) CookieOp {
	op := DeleteCookie(OnboardingCompletedCookie, secure)
	op.HTTPOnly = false
	return op
}
