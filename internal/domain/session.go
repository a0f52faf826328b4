package domain

// Session is the verified identity attached to a portal request.
type Session struct {
	UserID              string `json:"user_id"`
	Email               string `json:"email,omitempty"`
	Token               string `json:"-"`
	OnboardingCompleted bool   `json:"onboarding_completed"`
}

// Authenticated reports whether the session belongs to a signed-in user.
func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != ""
}
