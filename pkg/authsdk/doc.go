/*
Package authsdk is the client side of the tokengate bearer-token service.

# Client vs Session

Client wraps the raw endpoints and keeps no state:

	client := authsdk.NewClient("https://localhost:8443", authsdk.WithTimeout(30*time.Second))
	tokens, err := client.Login(ctx, "j.jameson", "password")

Session holds the current access and refresh tokens and recovers from
failures on its own:

	session := client.NewSession()
	if err := session.Login(ctx, "j.jameson", "password"); err != nil {
		return err
	}
	res, err := session.AccessResource(ctx)

# Refresh and retry

When a protected call fails and the session holds a refresh token,
AccessResource refreshes once and retries once. A second failure is
returned to the caller.

Refreshes are single-flight: concurrent callers that fail at the same time
share one refresh request. Each failed refresh counts against
MaxRefreshAttempts. When the bound is reached the session drops both tokens,
resets the counter and is unauthenticated again.

# Server-side helpers

APIError doubles as the error body writer for the server's handlers, so both
ends agree on the {"error","error_description"} shape.
*/
package authsdk
