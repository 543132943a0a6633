// Package login contains the POST /auth/login handler.
package login

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/crud-api/internal/auth"
	"github.com/aanand-mishra/crud-api/internal/types"
	"github.com/aanand-mishra/crud-api/internal/utils/response"
)

// Authenticator is the part of auth.Gate the handler needs.
type Authenticator interface {
	Login(username, password string) (auth.Token, error)
}

// New returns the login handler.
//
// Request body:
//
//	{ "username": "admin", "password": "..." }
//
// Success (200): { "token": "<jwt>" }. Any credential mismatch is a bare
// 401 with no hint of which field was wrong.
func New(authn Authenticator) func(http.ResponseWriter, *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		var creds types.Credentials

		err := json.NewDecoder(r.Body).Decode(&creds)
		if errors.Is(err, io.EOF) {
			return response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
		}
		if err != nil {
			return response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		}

		token, err := authn.Login(creds.Username, creds.Password)
		if errors.Is(err, auth.ErrUnauthorized) {
			slog.WarnContext(r.Context(), "login rejected")
			w.WriteHeader(http.StatusUnauthorized)
			return nil
		}
		if err != nil {
			return fmt.Errorf("login: %w", err)
		}

		slog.InfoContext(r.Context(), "login succeeded", slog.String("subject", creds.Username))
		return response.WriteJSON(w, http.StatusOK, types.TokenResponse{Token: token.Value})
	}
}
