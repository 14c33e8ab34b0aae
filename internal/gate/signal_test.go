package gate

import "testing"

func TestRefererIndicatesOnboarding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		referer string
		host    string
		mode    RefererMode
		want    bool
	}{
		{name: "empty", referer: "", host: "shop.test", mode: RefererStrict, want: false},
		{name: "same host exact", referer: "https://shop.test/onboarding", host: "shop.test", mode: RefererStrict, want: true},
		{name: "same host sub path", referer: "https://shop.test/onboarding/goals?step=2", host: "shop.test", mode: RefererStrict, want: true},
		{name: "relative path", referer: "/onboarding", host: "shop.test", mode: RefererStrict, want: true},
		{name: "foreign host", referer: "https://evil.test/onboarding", host: "shop.test", mode: RefererStrict, want: false},
		{name: "lookalike path", referer: "https://shop.test/blog/onboarding-tips", host: "shop.test", mode: RefererStrict, want: false},
		{name: "query only", referer: "https://shop.test/dashboard?from=/onboarding", host: "shop.test", mode: RefererStrict, want: false},
		{name: "loose foreign host", referer: "https://evil.test/onboarding", host: "shop.test", mode: RefererLoose, want: true},
		{name: "loose lookalike path", referer: "https://shop.test/blog/onboarding-tips", host: "shop.test", mode: RefererLoose, want: true},
		{name: "unparseable", referer: "http://[::1", host: "shop.test", mode: RefererLoose, want: false},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			got := RefererIndicatesOnboarding(test.referer, test.host, OnboardingPath, test.mode)
			if got != test.want {
				t.Fatalf("RefererIndicatesOnboarding(%q, %q, %s) = %v, want %v", test.referer, test.host, test.mode, got, test.want)
			}
		})
	}
}

func TestBuildOnboardingSignalReadsMarkerCookie(t *testing.T) {
	signal := BuildOnboardingSignal(CookieJar{OnboardingCompletedCookie: "true"}, "", "shop.test", OnboardingPath, RefererStrict)
	if !signal.CompletedCookie || signal.RefererIndicatesOnboarding {
		t.Fatalf("unexpected signal %+v", signal)
	}

	signal = BuildOnboardingSignal(CookieJar{OnboardingCompletedCookie: "false"}, "", "shop.test", OnboardingPath, RefererStrict)
	if signal.Any() {
		t.Fatalf("expected marker value false to be ignored, got %+v", signal)
	}
}

func TestParseRefererMode(t *testing.T) {
	if ParseRefererMode("LOOSE") != RefererLoose {
		t.Fatal("expected loose mode")
	}
	if ParseRefererMode("") != RefererStrict || ParseRefererMode("other") != RefererStrict {
		t.Fatal("expected strict mode by default")
	}
}
