package shared

type SignUpRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Username string  `json:"username"`
	FullName *string `json:"fullName"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponse struct {
	Token     string    `json:"token"`
	Identity  *Identity `json:"identity"`
	ExpiresAt string    `json:"expiresAt"`
}

type AuthActionResponse struct {
	ActionResult
	Session *SessionResponse `json:"session,omitempty"`
}

type SignInEntryResponse struct {
	SignIn string `json:"signIn"`
	SignUp string `json:"signUp"`
	Next   string `json:"next,omitempty"`
}

type CreatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type UpdatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}
