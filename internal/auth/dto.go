package auth

type registerRequest struct {
	Username        string  `json:"username" validate:"required,min=3,max=50"`
	Email           string  `json:"email" validate:"required,email"`
	Password        string  `json:"password" validate:"required,min=8"`
	PasswordConfirm string  `json:"password_confirm" validate:"required,eqfield=Password"`
	BirthDate       *string `json:"birth_date,omitempty"`
	Gender          *string `json:"gender,omitempty" validate:"omitempty,oneof=male female not_specified"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type updateProfileRequest struct {
	Email  *string `json:"email,omitempty" validate:"omitempty,email"`
	Gender *string `json:"gender,omitempty" validate:"omitempty,oneof=male female not_specified"`
}

type changePasswordRequest struct {
	CurrentPassword    string `json:"current_password" validate:"required"`
	NewPassword        string `json:"new_password" validate:"required,min=8"`
	NewPasswordConfirm string `json:"new_password_confirm" validate:"required,eqfield=NewPassword"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	UserID       string `json:"user_id"`
}

type profileResponse struct {
	Message  string  `json:"message"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Gender   *string `json:"gender"`
}

type messageResponse struct {
	Message string `json:"message"`
}
