package gate

type Action int

const (
	PassThrough Action = iota
	RedirectToLogin
	RedirectToDashboard
	RedirectToOnboarding
)

func (action Action) String() string {
	switch action {
	case RedirectToLogin:
		return "redirect_login"
	case RedirectToDashboard:
		return "redirect_dashboard"
	case RedirectToOnboarding:
		return "redirect_onboarding"
	default:
		return "pass_through"
	}
}

type Input struct {
	Session Session
	Class   RouteClass
	Path    string
	Signal  OnboardingSignal
	Profile ProfileLookup
}

type Decision struct {
	Action        Action
	Location      string
	ConsumeMarker bool
}

func (decision Decision) IsRedirect() bool {
	return decision.Action != PassThrough
}

// RequiresProfileLookup is true only when Decide would branch on the profile:
// a signed-in user on the dashboard with no onboarding signal.
func (table RouteTable) RequiresProfileLookup(input Input) bool {
	return input.Class != RouteAPI &&
		input.Session.IsAuthenticated() &&
		CanonicalPath(input.Path) == table.Dashboard &&
		!input.Signal.Any()
}

// Decide is the pure gate decision. Every redirect target is a public path,
// so a redirected request cannot come back to a redirecting branch.
func (table RouteTable) Decide(input Input) Decision {
	if input.Class == RouteAPI {
		return Decision{Action: PassThrough}
	}

	if !input.Session.IsAuthenticated() {
		if input.Class == RouteProtected {
			return Decision{Action: RedirectToLogin, Location: table.Login}
		}
		return Decision{Action: PassThrough}
	}

	path := CanonicalPath(input.Path)
	if path == table.Login {
		return Decision{Action: RedirectToDashboard, Location: table.Dashboard}
	}

	if path != table.Dashboard {
		return Decision{Action: PassThrough}
	}

	if input.Signal.Any() {
		return Decision{Action: PassThrough, ConsumeMarker: input.Signal.CompletedCookie}
	}

	if input.Profile == ProfileNotFound {
		return Decision{Action: RedirectToOnboarding, Location: table.Onboarding}
	}
	return Decision{Action: PassThrough}
}
