package models

// UserResponse is the public view of a user. The password hash and token
// fields are never included.
type UserResponse struct {
	ID    string `json:"id"` // UUID
	Name  string `json:"name"`
	Email string `json:"email"`
}

// MessageResponse carries a human-readable outcome message.
type MessageResponse struct {
	Message string `json:"message"`
}

// RegisterResponse represents the response after user registration
type RegisterResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// LoginResponse represents the response after successful authentication
type LoginResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"` // JWT session token
	User    UserResponse `json:"user"`
}

// ProfileResponse represents the response for profile reads and updates
type ProfileResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}
