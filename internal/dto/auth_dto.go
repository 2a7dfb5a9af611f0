package dto

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TelegramLoginRequest mirrors the payload posted by the Telegram login
// widget. Hash is the widget's HMAC over the remaining fields.
type TelegramLoginRequest struct {
	ID        int64  `json:"id" validate:"required"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	PhotoURL  string `json:"photo_url"`
	AuthDate  int64  `json:"auth_date" validate:"required"`
	Hash      string `json:"hash" validate:"required"`
}

// LoginResponse is returned by all three login paths. RefreshToken never
// appears in the body — the handler moves it into the httpOnly cookie.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	TokenType    string         `json:"token_type"`
	ExpiresIn    int            `json:"expires_in"`
	RefreshToken string         `json:"-"`
	Staff        *StaffResponse `json:"staff,omitempty"`
	User         *UserResponse  `json:"user,omitempty"`
}
