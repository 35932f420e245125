// Package main (auth.go) :
// These methods are for the authorization with OAuth2 using the installed app flow.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

var errCredentialsMissing = errors.New("credentials file is not found")

const credentialsHelp = `Steps for retrieving the credentials file:
1. Open https://console.cloud.google.com/
2. Create a new project or select an existing one.
3. Enable Google Drive API.
4. Open "Credentials" > "Create credentials" > "OAuth client ID" and select "Desktop app".
5. Download the JSON file and save it as '%s'.
`

// authenticator : Structure for the authorization
type authenticator struct {
	credentialsFile string
	tokenFile       string
	listenAddr      string
	out             io.Writer
	log             logrus.FieldLogger
}

// oauthConfig : Create oauth2.Config from the credentials file.
func (a *authenticator) oauthConfig() (*oauth2.Config, error) {
	b, err := os.ReadFile(a.credentialsFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", errCredentialsMissing, a.credentialsFile)
		}
		return nil, err
	}
	conf, err := google.ConfigFromJSON(b, drive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parsing '%s': %w", a.credentialsFile, err)
	}
	return conf, nil
}

// tokenSource : Retrieve a token source. The saved token is used when it can be used. The token file is updated after a refresh or an authorization.
func (a *authenticator) tokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	saved, err := loadToken(a.tokenFile)
	if err != nil {
		a.log.Debugf("Saved token cannot be used: %v", err)
	}
	conf, confErr := a.oauthConfig()
	if saved != nil {
		tok := saved.token()
		ts, err := a.savedSource(ctx, saved, conf)
		switch {
		case err != nil && tok.Valid():
			a.log.Warnf("Token cannot be refreshed after it expires: %v", err)
			return oauth2.StaticTokenSource(tok), nil
		case err != nil:
			a.log.Debugf("Saved token cannot be refreshed: %v", err)
		case tok.Valid():
			return ts, nil
		default:
			if _, err = ts.Token(); err == nil {
				return ts, nil
			}
			a.log.Warnf("Token cannot be refreshed. The authorization is required again: %v", err)
		}
	}
	if confErr != nil {
		return nil, confErr
	}
	newTok, err := a.tokenFromWeb(ctx, conf)
	if err != nil {
		return nil, err
	}
	if err := newSavedToken(conf.ClientID, conf.ClientSecret, newTok).save(a.tokenFile); err != nil {
		return nil, err
	}
	return a.saving(conf.TokenSource(ctx, newTok), conf.ClientID, conf.ClientSecret, newTok), nil
}

// savedSource : Create a token source from the saved token. The client of the credentials file is used when it is given. Otherwise the client saved with the token is used.
func (a *authenticator) savedSource(ctx context.Context, saved *savedToken, conf *oauth2.Config) (oauth2.TokenSource, error) {
	tok := saved.token()
	if conf != nil {
		return a.saving(conf.TokenSource(ctx, tok), conf.ClientID, conf.ClientSecret, tok), nil
	}
	base, err := saved.refresher(ctx)
	if err != nil {
		return nil, err
	}
	return a.saving(oauth2.ReuseTokenSource(tok, base), saved.ClientID, saved.ClientSecret, tok), nil
}

// saving : Wrap ts so that a changed token is saved to the token file.
func (a *authenticator) saving(ts oauth2.TokenSource, clientID, clientSecret string, tok *oauth2.Token) oauth2.TokenSource {
	return &savingTokenSource{
		base:         ts,
		file:         a.tokenFile,
		clientID:     clientID,
		clientSecret: clientSecret,
		last:         tok.AccessToken,
		log:          a.log,
	}
}

// savingTokenSource : TokenSource saving the token when it was refreshed.
type savingTokenSource struct {
	mu           sync.Mutex
	base         oauth2.TokenSource
	file         string
	clientID     string
	clientSecret string
	last         string
	log          logrus.FieldLogger
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		if err := newSavedToken(s.clientID, s.clientSecret, tok).save(s.file); err != nil {
			s.log.Warnf("Refreshed token cannot be saved: %v", err)
		} else {
			s.last = tok.AccessToken
		}
	}
	return tok, nil
}

// authenticate : Authorize and create the service of Drive API.
func (a *authenticator) authenticate(ctx context.Context) (*drive.Service, error) {
	ts, err := a.tokenSource(ctx)
	if err != nil {
		return nil, err
	}
	srv, err := drive.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(a.out, "Authorization with Google Drive succeeded.")
	return srv, nil
}

// tokenFromWeb : Retrieve a token by the authorization at the browser. The code is received by a local server.
func (a *authenticator) tokenFromWeb(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	addr := a.listenAddr
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	c := *conf
	c.RedirectURL = "http://" + ln.Addr().String() + "/"
	state, err := randomState()
	if err != nil {
		ln.Close()
		return nil, err
	}
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	server := &http.Server{Handler: callbackHandler(state, codeCh, errCh)}
	go server.Serve(ln)
	defer server.Close()

	fmt.Fprintf(a.out, "\nPlease open the following URL with your browser and authorize the scope.\n\n%s\n\n", c.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce))
	select {
	case code := <-codeCh:
		tok, err := c.Exchange(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("retrieving token: %w", err)
		}
		return tok, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// callbackHandler : Receive the authorization code at the redirect URI.
func callbackHandler(state string, codeCh chan<- string, errCh chan<- error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if e := q.Get("error"); e != "" {
			select {
			case errCh <- fmt.Errorf("authorization was denied: %s", e):
			default:
			}
			http.Error(w, "Authorization failed. Please check the terminal.", http.StatusBadRequest)
			return
		}
		if q.Get("state") != state {
			http.Error(w, "State is wrong.", http.StatusBadRequest)
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "No code.", http.StatusBadRequest)
			return
		}
		select {
		case codeCh <- code:
		default:
		}
		fmt.Fprintln(w, "Authorization finished. You can close this window.")
	})
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// savedToken : Structure of the token file. The file can also be used as the credentials of "authorized_user".
type savedToken struct {
	Type         string    `json:"type,omitempty"`
	ClientID     string    `json:"client_id,omitempty"`
	ClientSecret string    `json:"client_secret,omitempty"`
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

const authorizedUser = "authorized_user"

func newSavedToken(clientID, clientSecret string, tok *oauth2.Token) *savedToken {
	s := &savedToken{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
	if clientID != "" {
		s.Type = authorizedUser
	}
	return s
}

func (s *savedToken) token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		TokenType:    s.TokenType,
		RefreshToken: s.RefreshToken,
		Expiry:       s.Expiry,
	}
}

// refresher : Token source refreshing the token with the client saved in the token file.
func (s *savedToken) refresher(ctx context.Context) (oauth2.TokenSource, error) {
	if s.ClientID == "" || s.RefreshToken == "" {
		return nil, errors.New("token file has no client_id or refresh_token")
	}
	u := *s
	u.Type = authorizedUser
	b, err := json.Marshal(u)
	if err != nil {
		return nil, err
	}
	creds, err := google.CredentialsFromJSON(ctx, b, drive.DriveReadonlyScope)
	if err != nil {
		return nil, err
	}
	return creds.TokenSource, nil
}

// loadToken : Load token from file.
func loadToken(file string) (*savedToken, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s := &savedToken{}
	if err := json.NewDecoder(f).Decode(s); err != nil {
		return nil, fmt.Errorf("decoding '%s': %w", file, err)
	}
	return s, nil
}

// save : Save token to file.
func (s *savedToken) save(file string) (err error) {
	f, err := os.OpenFile(file, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("saving token: %w", cerr)
		}
	}()
	return json.NewEncoder(f).Encode(s)
}
