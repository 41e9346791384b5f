package geoip

import (
	"context"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockedResolver(t *testing.T) *HTTPResolver {
	t.Helper()
	client := &http.Client{}
	httpmock.ActivateNonDefault(client)
	t.Cleanup(httpmock.DeactivateAndReset)
	return NewHTTPResolver("https://ipinfo.test", client)
}

func TestCountryCode_TrimsBody(t *testing.T) {
	resolver := newMockedResolver(t)
	httpmock.RegisterResponder("GET", "https://ipinfo.test/8.8.8.8/country",
		httpmock.NewStringResponder(200, "US\n"))

	code, err := resolver.CountryCode(context.Background(), "8.8.8.8")
	require.NoError(t, err)
	assert.Equal(t, "US", code)
}

func TestCountryCode_UndefinedIsUnknown(t *testing.T) {
	resolver := newMockedResolver(t)
	httpmock.RegisterResponder("GET", "https://ipinfo.test/10.0.0.1/country",
		httpmock.NewStringResponder(200, "undefined\n"))

	code, err := resolver.CountryCode(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.Empty(t, code)
}

func TestCountryCode_ErrorStatus(t *testing.T) {
	resolver := newMockedResolver(t)
	httpmock.RegisterResponder("GET", "https://ipinfo.test/8.8.8.8/country",
		httpmock.NewStringResponder(429, "rate limited"))

	_, err := resolver.CountryCode(context.Background(), "8.8.8.8")
	require.Error(t, err)
}

func TestCountryCode_TransportFailure(t *testing.T) {
	resolver := newMockedResolver(t)
	// No responder registered: the mock transport refuses the call.

	_, err := resolver.CountryCode(context.Background(), "8.8.8.8")
	require.Error(t, err)
}

func TestNewHTTPResolver_TrimsTrailingSlash(t *testing.T) {
	resolver := newMockedResolver(t)
	assert.Equal(t, "https://ipinfo.test", resolver.baseURL)

	withSlash := NewHTTPResolver("https://ipinfo.test/", nil)
	assert.Equal(t, "https://ipinfo.test", withSlash.baseURL)
}
