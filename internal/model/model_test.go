package model_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankli0324/go-wsdial/internal/errors"
	"github.com/frankli0324/go-wsdial/internal/model"
)

func TestResolveMode(t *testing.T) {
	cases := map[string]model.Mode{
		"ws://example.com/chat":       model.ModePlain,
		"wss://example.com/chat":      model.ModeTLS,
		"WSS://example.com":           model.ModeTLS,
		"Ws://example.com:8080/?a=b":  model.ModePlain,
		"wss://[::1]:8443/socket":     model.ModeTLS,
		"ws://127.0.0.1:9000/socket":  model.ModePlain,
		"wss://user:pw@example.com/x": model.ModeTLS,
	}
	for raw, want := range cases {
		raw, want := raw, want
		t.Run(raw, func(t *testing.T) {
			pr, err := model.NewRequest(raw, nil).Prepare()
			require.NoError(t, err)
			assert.Equal(t, want, pr.Mode)
		})
	}
}

func TestResolveModeRejectsOtherSchemes(t *testing.T) {
	for _, raw := range []string{
		"http://example.com", "https://example.com", "ftp://example.com", "//example.com",
	} {
		_, err := model.NewRequest(raw, nil).Prepare()
		assert.ErrorIs(t, err, errors.ErrURL, raw)
	}
}

func TestMissingHostIsURLErrorWhateverTheScheme(t *testing.T) {
	for _, raw := range []string{
		"wss:///path", "ws:///path", "wss:example.com", "gopher:///", "ws://:80/",
	} {
		_, err := model.NewRequest(raw, nil).Prepare()
		require.Error(t, err, raw)
		assert.ErrorIs(t, err, errors.URL("no host name in the url"), raw)
	}
}

func TestUnparseableURL(t *testing.T) {
	_, err := model.NewRequest("wss://exa mple.com/%zz", nil).Prepare()
	require.Error(t, err)
	assert.Equal(t, errors.KindURL, errors.KindOf(err))

	var uerr *url.Error
	assert.ErrorAs(t, err, &uerr)
}

func TestDomain(t *testing.T) {
	cases := map[string]string{
		"wss://example.com/":       "example.com",
		"wss://example.com:443/":   "example.com",
		"wss://[2001:db8::1]:443/": "2001:db8::1",
		"ws://10.0.0.1/":           "10.0.0.1",
		"wss://bücher.example/":    "xn--bcher-kva.example",
	}
	for raw, want := range cases {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		got, err := model.Domain(u)
		require.NoError(t, err)
		assert.Equal(t, want, got, raw)
	}
}

func TestHostPort(t *testing.T) {
	cases := map[string]string{
		"ws://example.com/":       "example.com:80",
		"wss://example.com/":      "example.com:443",
		"wss://example.com:8443/": "example.com:8443",
		"ws://[::1]/":             "[::1]:80",
	}
	for raw, want := range cases {
		pr, err := model.NewRequest(raw, nil).Prepare()
		require.NoError(t, err)
		assert.Equal(t, want, pr.HostPort(), raw)
	}
}

func TestPrepareDoesNotShareHeaders(t *testing.T) {
	h := http.Header{"Origin": {"https://example.com"}}
	pr, err := model.NewRequest("wss://example.com/", h).Prepare()
	require.NoError(t, err)

	pr.Header.Set("Origin", "https://evil.example")
	assert.Equal(t, "https://example.com", h.Get("Origin"))
}

func TestRequestConversions(t *testing.T) {
	u, _ := url.Parse("wss://example.com/chat?room=1")
	assert.Equal(t, "wss://example.com/chat?room=1", model.FromURL(u, nil).URL)

	hr, err := http.NewRequest("GET", "ws://example.com/feed", nil)
	require.NoError(t, err)
	hr.Header.Set("Authorization", "Bearer t")
	r := model.FromHTTP(hr)
	assert.Equal(t, "ws://example.com/feed", r.URL)
	assert.Equal(t, "Bearer t", r.Header.Get("Authorization"))
}
