/*
Package authsdk provides a client SDK for the session gate service, plus the
wire types and error responses the service itself writes.

# SDKClient vs Session

The package is organized around two main types:

  - SDKClient: unauthenticated operations (login, refresh, register, health)
  - Session: authenticated operations with automatic token refresh

Create an SDKClient to talk to public endpoints and start a session:

	client := authsdk.NewSDKClient("https://auth.example.com")

	health, err := client.GetReadiness(ctx)

	user, err := client.Register(ctx, authsdk.RegisterRequest{
		Email:    "alice@example.com",
		Password: "correct horse battery staple",
	})

	session, err := client.AuthenticateWithPassword(ctx, authsdk.LoginRequest{
		Email:    "alice@example.com",
		Password: "correct horse battery staple",
	})

Use the Session for protected endpoints:

	me, err := session.Me(ctx)
	err = session.ChangePassword(ctx, "old", "new")

# Tokens

Login and refresh both return an access token valid for 30 minutes and a
refresh token valid for 130 days. The server treats the login body as the
claims bundle of the issued tokens, so LoginRequest.Extra lets callers carry
their own claims. The email claim is always the stored one and the password
never reaches the token.

Sessions read the access token's exp (without verifying the signature) and
refresh 30 seconds before it. Refreshing does not revoke the previous refresh
token.

# Error Handling

Failed calls return *APIError. Compare with errors.Is against the predefined
values:

	_, err := client.Login(ctx, req)
	if errors.Is(err, authsdk.ErrNotFound) {
		// unknown user or wrong password, the server does not say which
	}

A rejected bearer token comes back as ErrUnauthorized; the server answers
those with a plain-text "Authorization error" body rather than JSON.

# Thread Safety

Sessions are safe for concurrent use. Multiple goroutines can share a single
Session and make authenticated requests concurrently.
*/
package authsdk
