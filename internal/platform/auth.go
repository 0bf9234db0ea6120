package platform

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/rflorenc/tackle-migrator/internal/apperrors"
	"github.com/rflorenc/tackle-migrator/internal/models"
)

// Authenticate exchanges the target's username and password for a bearer
// token (OAuth2 password grant) and installs it on the client.
func (c *Client) Authenticate(ctx context.Context, target *models.Target) error {
	conf := &oauth2.Config{
		ClientID: target.ClientID,
		Endpoint: oauth2.Endpoint{
			TokenURL:  target.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	// Reuse our transport so TLS settings and the timeout apply to the token call.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	tok, err := conf.PasswordCredentialsToken(ctx, target.Username, target.Password)
	if err != nil {
		return fmt.Errorf("%w: %s (%s): %v", apperrors.ErrAuth, target.Name, target.TokenURL, err)
	}
	if tok.AccessToken == "" {
		return fmt.Errorf("%w: %s: empty access token", apperrors.ErrAuth, target.Name)
	}
	c.SetToken(tok.AccessToken)
	return nil
}
