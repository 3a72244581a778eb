package domain

// TokenPair is what login and refresh hand back: a short-lived access token
// and a long-lived refresh token, both signed claims bundles that differ only
// in their exp claim.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
