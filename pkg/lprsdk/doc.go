/*
Package lprsdk provides a client SDK for the LPR credential service.

# Overview

The service mints short-lived, narrowly-scoped delegation tokens. A
subject who has already authenticated with the login collaborator holds a
one-time session handle; the SDK exchanges that handle for a token that
delegates a fixed set of operations to a single target service for at
most one hour.

# Usage

Create a Client and exchange a session handle for a token:

	client := lprsdk.NewClient("https://lpr.example.com")

	issued, err := client.Issue(ctx, lprsdk.IssueRequest{
		SessionHandle: handle,
		Scopes: []jwtx.Scope{
			{Method: "GET", URLPattern: "/api/reports"},
		},
		TTLSeconds: 900,
		Purpose:    "weekly report export",
		Consent:    &jwtx.Consent{Granted: true},
	})

Verify a token in the context of a concrete request:

	result, err := client.Verify(ctx, lprsdk.VerifyRequest{
		Token:         issued.Token,
		RequestMethod: "GET",
		RequestURL:    "/api/reports/weekly",
	})
	if err != nil {
		return err // transport or server failure
	}
	if !result.Valid {
		return fmt.Errorf("denied: %s", result.Error)
	}

Kill a token before it expires, and look up its state:

	_, err = client.Revoke(ctx, issued.JTI, "user logged out")
	status, err := client.Status(ctx, issued.JTI)

# Error Handling

Failed requests come back as *APIError carrying the HTTP status, the wire
error code, and the Retry-After hint on rate-limit responses:

	_, err := client.Issue(ctx, req)
	var apiErr *lprsdk.APIError
	if errors.As(err, &apiErr) && apiErr.Code == lprsdk.ErrorCodeRateLimited {
		time.Sleep(time.Duration(apiErr.RetryAfter) * time.Second)
	}

Note that Verify reports a failed verification through the response body
(Valid=false), not through an error: only malformed requests and backend
trouble surface as errors.

# Thread Safety

Client is stateless apart from its http.Client and is safe for concurrent
use.
*/
package lprsdk
