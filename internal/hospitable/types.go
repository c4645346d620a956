package hospitable

type errorResponse struct {
	Message string `json:"message"`
}

// Listing is a property as the Connect API reports it. Address parts are
// nested; Picture may be empty for listings without photos.
type Listing struct {
	ID         string `json:"id"`
	PublicName string `json:"public_name"`
	Picture    string `json:"picture"`
	Platform   string `json:"platform"`
	PlatformID string `json:"platform_id"`
	Address    struct {
		Street  string `json:"street"`
		City    string `json:"city"`
		State   string `json:"state"`
		Country string `json:"country_code"`
	} `json:"address"`
}

type listingsPage struct {
	Data []Listing `json:"data"`
	Meta struct {
		CurrentPage int `json:"current_page"`
		LastPage    int `json:"last_page"`
	} `json:"meta"`
}

// TokenResponse is the /oauth/token payload, shared by the authorization
// code and refresh_token grants.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// Customer identifies the account an access token belongs to.
type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type customerEnvelope struct {
	Data Customer `json:"data"`
}
