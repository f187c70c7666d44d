package oauth

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"

	"travel-booking-service/pkg/logger"
)

func TestGenerateAuthURL(t *testing.T) {
	o := NewGmailOAuth("client-id", "secret", "", "http://localhost:8090/oauth2callback", logger.NewNopLogger())

	raw := o.GenerateAuthURL("xyz")
	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "xyz", q.Get("state"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, gmail.GmailSendScope, q.Get("scope"))
	assert.Equal(t, "http://localhost:8090/oauth2callback", q.Get("redirect_uri"))
}
