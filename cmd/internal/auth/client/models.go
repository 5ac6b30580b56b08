package client

// API paths consumed by the client. Only these four are authentication
// endpoints; everything else is ordinary catalog traffic.
const (
	PathLogin   = "/auth/login"
	PathLogout  = "/auth/logout"
	PathMe      = "/auth/me"
	PathRefresh = "/auth/refresh"
)

// LoginRequest is the POST /auth/login payload.
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
	DeviceID   string `json:"device_id,omitempty"`
	Platform   string `json:"platform,omitempty"`
}

// UserPayload is the wire shape of a user record.
type UserPayload struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	FullName    string   `json:"full_name"`
	Roles       []string `json:"roles"`
	Authorities []string `json:"authorities,omitempty"`
}

// LoginResponse is the POST /auth/login result.
type LoginResponse struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refresh_token,omitempty"`
	User         UserPayload `json:"user"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
	DeviceID     string `json:"device_id,omitempty"`
}

type refreshResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error apiError `json:"error"`
}
