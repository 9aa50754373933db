package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/desertthunder/spotx/internal/shared"
	"golang.org/x/oauth2"
)

// exchangeTimeout bounds the code-for-token exchange with the provider.
const exchangeTimeout = 30 * time.Second

// OAuthResult carries the outcome of one authorization flow.
type OAuthResult struct {
	Token *oauth2.Token
	err   error
}

func (o OAuthResult) Error() error {
	return o.err
}

// OAuthHandler processes the authorization-code callback: it checks the
// state parameter against the one issued at login, exchanges the code for a
// token, and delivers exactly one [OAuthResult]. Repeat callbacks are
// rejected.
type OAuthHandler struct {
	config *oauth2.Config
	state  string

	mu      sync.Mutex
	done    bool
	results chan OAuthResult
}

// NewOAuthHandler creates a handler bound to a single expected state token.
func NewOAuthHandler(config *oauth2.Config, state string) *OAuthHandler {
	return &OAuthHandler{
		config:  config,
		state:   state,
		results: make(chan OAuthResult, 1),
	}
}

// Routes returns the patterns this handler serves.
func (h *OAuthHandler) Routes() []string {
	return []string{"GET /callback"}
}

// Result yields exactly one [OAuthResult] and is then closed.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.results
}

func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.done {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.done = true
	h.mu.Unlock()

	query := r.URL.Query()

	if query.Get("state") != h.state {
		h.finish(w, OAuthResult{err: fmt.Errorf("%w: state mismatch", shared.ErrAuthFailed)},
			http.StatusBadRequest, "Invalid state parameter")
		return
	}

	code := query.Get("code")
	if code == "" {
		err := fmt.Errorf("%w: %s (%s)", shared.ErrAuthFailed, query.Get("error"), query.Get("error_description"))
		h.finish(w, OAuthResult{err: err}, http.StatusBadRequest, "Authorization failed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), exchangeTimeout)
	defer cancel()

	token, err := h.config.Exchange(ctx, code)
	if err != nil {
		h.finish(w, OAuthResult{err: fmt.Errorf("%w: token exchange: %v", shared.ErrAuthFailed, err)},
			http.StatusInternalServerError, "Token exchange failed")
		return
	}

	h.deliver(OAuthResult{Token: token})
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, successPage)
}

func (h *OAuthHandler) finish(w http.ResponseWriter, result OAuthResult, status int, message string) {
	h.deliver(result)
	http.Error(w, message, status)
}

func (h *OAuthHandler) deliver(result OAuthResult) {
	h.results <- result
	close(h.results)
}

const successPage = `<!DOCTYPE html>
<html>
<head>
    <title>spotx</title>
    <style>
        body { font-family: -apple-system, "Segoe UI", sans-serif; display: flex;
               align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #121212; color: #f5f5f5; }
        main { text-align: center; }
        h1 { color: #1DB954; }
    </style>
</head>
<body>
    <main>
        <h1>Connected to Spotify</h1>
        <p>You can close this window and return to the terminal.</p>
    </main>
</body>
</html>
`
