package nominatim

import (
	"net/http"

	"golang.org/x/time/rate"
)

// ThrottledTransport delays requests so that no more than the limiter's rate
// reaches the upstream. The public Nominatim instance allows one request per
// second per application.
type ThrottledTransport struct {
	Base    http.RoundTripper
	Limiter *rate.Limiter
}

// NewThrottledTransport wraps base (http.DefaultTransport when nil) with a
// limiter allowing perSecond requests per second and a burst of one.
func NewThrottledTransport(base http.RoundTripper, perSecond float64) *ThrottledTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &ThrottledTransport{
		Base:    base,
		Limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

// RoundTrip implements http.RoundTripper
func (t *ThrottledTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Limiter != nil {
		if err := t.Limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}
	return t.Base.RoundTrip(req)
}
