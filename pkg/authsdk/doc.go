/*
Package authsdk is a client for the authgate authentication gateway.

# Overview

authgate delegates the login to a SIAM (a-select) identity provider and hands
out two kinds of bearer tokens:

  - a refresh token, carrying the subject verified by the IdP
  - an access token, carrying the subject's authorization level

# SDKClient vs Session

SDKClient covers the unauthenticated half of the flow:

	client := authsdk.NewSDKClient("https://auth.example.com")

	// Send the user agent here; the IdP redirects back to callback.
	redirect := client.AuthnRedirectURL("https://app.example.com/cb", false)

	// On the callback, exchange the IdP credentials for a refresh token.
	refresh, err := client.ExchangeCredentials(ctx, creds, rid, aselectServer)

A Session holds a refresh token and fetches access tokens as it needs them:

	session := client.NewSession(refresh)
	grant, err := session.GetAuthzLevel(ctx, "evert")

# Automatic Token Refresh

Every Session method calls getValidToken, which reuses the current access
token until 30 seconds before its exp claim and then asks the gateway for a
new one with the refresh token. Renew extends the refresh token itself,
up to the gateway's maximum session age.

# Errors

Every non-2xx response is returned as an *APIError carrying the HTTP status
and the {"error", "error_description"} body of the gateway.
*/
package authsdk
