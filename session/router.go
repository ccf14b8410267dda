package session

// View names a top-level screen.
type View string

const (
	ViewOnboarding View = "onboarding"
	ViewHome       View = "home"
	ViewChat       View = "chat"
	ViewResult     View = "result"
	ViewProfile    View = "profile"
	ViewCalculator View = "calculator"
)

// transitions lists the screen changes a user can trigger directly.
// Result entry from a finished analysis and the post-onboarding jump home are
// driven by the pipeline, not by Go.
var transitions = map[View][]View{
	ViewOnboarding: {ViewHome},
	ViewHome:       {ViewChat, ViewCalculator, ViewProfile},
	ViewChat:       {ViewHome, ViewResult},
	ViewResult:     {ViewChat, ViewHome},
	ViewProfile:    {ViewHome, ViewChat, ViewCalculator},
	ViewCalculator: {ViewHome},
}

func (a *App) View() View { return a.view }

// Go moves to the target view when the transition is allowed and reports
// whether it happened. Asking for the current view is a no-op success.
func (a *App) Go(target View) bool {
	if target == a.view {
		return true
	}
	for _, v := range transitions[a.view] {
		if v == target {
			a.view = target
			return true
		}
	}
	return false
}

// ChromeVisible reports whether the surrounding navigation chrome shows.
// Chat, result, calculator and onboarding run full-screen.
func (a *App) ChromeVisible() bool {
	return a.view == ViewHome || a.view == ViewProfile
}
