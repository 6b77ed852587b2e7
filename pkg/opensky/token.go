package opensky

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// DefaultTokenURL is the OpenSky OAuth2 client-credentials endpoint
const DefaultTokenURL = "https://auth.opensky-network.org/auth/realms/opensky-network/protocol/openid-connect/token"

// newTokenSource returns a caching client-credentials token source. Tokens
// are reused until shortly before expiry. An empty tokenURL selects
// DefaultTokenURL.
func newTokenSource(clientID, clientSecret, tokenURL string, timeout time.Duration) oauth2.TokenSource {
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	cc := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		// OpenSky reads the credentials from the form body
		AuthStyle: oauth2.AuthStyleInParams,
	}

	// the token source outlives any single request, so it gets its own client
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: timeout})
	return cc.TokenSource(ctx)
}
