package server

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotx/internal/shared"
	"golang.org/x/oauth2"
)

func callbackRequest(t *testing.T, router *Router, query url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/callback?"+query.Encode(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func newCallbackRouter(handler *OAuthHandler) *Router {
	router := NewRouter()
	router.Use(RequestLogging(log.New(io.Discard)))
	router.Handler(handler)
	return router
}

func TestOAuthHandler(t *testing.T) {
	t.Run("rejects a mismatched state", func(t *testing.T) {
		handler := NewOAuthHandler(&oauth2.Config{}, "expected-state")
		rec := callbackRequest(t, newCallbackRouter(handler), url.Values{
			"state": {"forged"},
			"code":  {"abc"},
		})

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		result := <-handler.Result()
		if !errors.Is(result.Error(), shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", result.Error())
		}
	})

	t.Run("reports the provider's denial", func(t *testing.T) {
		handler := NewOAuthHandler(&oauth2.Config{}, "s")
		rec := callbackRequest(t, newCallbackRouter(handler), url.Values{
			"state":             {"s"},
			"error":             {"access_denied"},
			"error_description": {"user refused"},
		})

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		result := <-handler.Result()
		if result.Error() == nil || !strings.Contains(result.Error().Error(), "access_denied") {
			t.Errorf("expected denial details, got %v", result.Error())
		}
	})

	t.Run("exchanges the code and delivers a token", func(t *testing.T) {
		tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"tok-123","token_type":"Bearer","refresh_token":"ref-456","expires_in":3600}`))
		}))
		defer tokenServer.Close()

		config := &oauth2.Config{
			ClientID:     "id",
			ClientSecret: "secret",
			Endpoint:     oauth2.Endpoint{TokenURL: tokenServer.URL},
		}
		handler := NewOAuthHandler(config, "s")
		rec := callbackRequest(t, newCallbackRouter(handler), url.Values{
			"state": {"s"},
			"code":  {"auth-code"},
		})

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), "Connected to Spotify") {
			t.Errorf("expected success page, got %q", rec.Body.String())
		}

		result := <-handler.Result()
		if err := result.Error(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Token.AccessToken != "tok-123" || result.Token.RefreshToken != "ref-456" {
			t.Errorf("unexpected token: %+v", result.Token)
		}

		if _, open := <-handler.Result(); open {
			t.Error("expected result channel to be closed after delivery")
		}
	})

	t.Run("rejects a second callback", func(t *testing.T) {
		handler := NewOAuthHandler(&oauth2.Config{}, "s")
		router := newCallbackRouter(handler)

		callbackRequest(t, router, url.Values{"state": {"bad"}})
		rec := callbackRequest(t, router, url.Values{"state": {"s"}, "code": {"abc"}})

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for replayed callback, got %d", rec.Code)
		}
	})
}
