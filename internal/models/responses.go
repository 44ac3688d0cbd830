package models

// MessageResponse is the body of simple confirmations and of single-message errors
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorsResponse lists every violated rule of a rejected request
type ErrorsResponse struct {
	Errors []string `json:"errors"`
}

// RegisterResponse is returned by registration and profile update
type RegisterResponse struct {
	Message string     `json:"message"`
	Token   string     `json:"token"`
	User    PublicUser `json:"user"`
}

// LoginResponse is returned by a successful login
type LoginResponse struct {
	Token     string     `json:"token"`
	User      PublicUser `json:"user"`
	ExpiresIn int        `json:"expiresIn"`
}

// VerifyTokenResponse reports whether the presented token still identifies an existing user
type VerifyTokenResponse struct {
	Valid bool        `json:"valid"`
	User  *PublicUser `json:"user,omitempty"`
}

// CountResponse carries the number of items in a cart
type CountResponse struct {
	Count int `json:"count"`
}

// AddToCartResponse is returned after an item was added to a cart
type AddToCartResponse struct {
	Message string    `json:"message"`
	Item    *CartItem `json:"item"`
}

// StatusResponse is the service banner
type StatusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Docs    string `json:"docs"`
}
