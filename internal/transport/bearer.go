package transport

import "net/http"

// TokenSource reports the current bearer token, if any.
type TokenSource interface {
	Token() (string, bool)
}

// Bearer is a RoundTripper that adds JSON and bearer-auth headers to every
// outgoing request. It does not retry, refresh, or look at the response.
type Bearer struct {
	Base   http.RoundTripper
	Tokens TokenSource
}

func (b *Bearer) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the caller's request.
	r := req.Clone(req.Context())
	r.Header.Set("Content-Type", "application/json")
	if token, ok := b.Tokens.Token(); ok {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return b.base().RoundTrip(r)
}

func (b *Bearer) base() http.RoundTripper {
	if b.Base != nil {
		return b.Base
	}
	return http.DefaultTransport
}
