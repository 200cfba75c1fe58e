package api

// User is a staff member.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// LoginURL is where the browser goes to sign in with the identity provider.
type LoginURL struct {
	URL string `json:"url"`
}

// OAuthCallbackQuery is what Google sends back to the callback.
type OAuthCallbackQuery struct {
	Code  string `query:"code" validate:"required;max:2048"`
	State string `query:"state" validate:"required;max:256"`
}
