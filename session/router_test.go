package session

import "testing"

func TestGoAllowsListedTransitions(t *testing.T) {
	a := newTestApp(t, nil, nil)

	if !a.Go(ViewChat) {
		t.Fatal("home -> chat refused")
	}
	if !a.Go(ViewHome) {
		t.Fatal("chat -> home refused")
	}
	if !a.Go(ViewCalculator) || !a.Go(ViewHome) {
		t.Fatal("calculator round trip refused")
	}
	if !a.Go(ViewProfile) || !a.Go(ViewChat) {
		t.Fatal("profile -> chat refused")
	}
}

func TestGoRefusesUnlistedTransitions(t *testing.T) {
	a := newTestApp(t, nil, nil)

	if a.Go(ViewResult) {
		t.Error("home -> result allowed")
	}
	a.Go(ViewCalculator)
	if a.Go(ViewChat) {
		t.Error("calculator -> chat allowed")
	}
	if a.View() != ViewCalculator {
		t.Errorf("refused transition moved view to %q", a.View())
	}
}

func TestGoToCurrentViewIsNoop(t *testing.T) {
	a := newTestApp(t, nil, nil)
	if !a.Go(ViewHome) {
		t.Error("self transition refused")
	}
}

func TestChromeVisible(t *testing.T) {
	a := newTestApp(t, nil, nil)
	if !a.ChromeVisible() {
		t.Error("chrome hidden on home")
	}
	a.Go(ViewProfile)
	if !a.ChromeVisible() {
		t.Error("chrome hidden on profile")
	}
	a.Go(ViewChat)
	if a.ChromeVisible() {
		t.Error("chrome shown in chat")
	}
}
