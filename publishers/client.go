package publishers

import (
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// timeNow is swapped in tests that exercise credential expiry.
var timeNow = time.Now

// apiClient wraps an *http.Client with a circuit breaker so a misbehaving
// vendor API stops consuming fan-out time once it trips. One breaker per
// platform: a Facebook outage must not open the Twitter circuit.
type apiClient struct {
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

func newAPIClient(name string, client *http.Client) *apiClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})
	return &apiClient{client: client, breaker: cb}
}

// Do executes the request through the circuit breaker. Vendor-side HTTP
// error statuses do not trip the breaker; only transport failures do.
func (c *apiClient) Do(req *http.Request) (*http.Response, error) {
	return c.breaker.Execute(func() (*http.Response, error) {
		return c.client.Do(req)
	})
}
