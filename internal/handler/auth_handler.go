package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"roomchat/internal/app/oauthstate"
	"roomchat/internal/app/user"
	"roomchat/internal/pkg/auth/jwt"
	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/logx"
	"roomchat/internal/pkg/randx"
	"roomchat/internal/pkg/req"
	"roomchat/internal/pkg/resp"
)

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginInput signs in with either Username or Email. Username wins when both are set.
type LoginInput struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// sessionResponse is returned by every successful sign-in.
type sessionResponse struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

// HandleRegister creates a local account and signs it in.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if payload := jwt.GetPayloadFromContext(r); payload != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrAlreadyLoggedIn))
			return
		}

		var input RegisterInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		u, err := deps.Users.Register(r.Context(), user.RegisterInput{
			Username: input.Username,
			Email:    input.Email,
			Password: input.Password,
		})
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		respondSession(w, r, deps, u, jwt.ProviderLocal)
	}
}

// HandleLogin verifies local credentials and issues a session token.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if payload := jwt.GetPayloadFromContext(r); payload != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrAlreadyLoggedIn))
			return
		}

		var input LoginInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var (
			u   *user.User
			err error
		)
		switch {
		case strings.TrimSpace(input.Username) != "":
			u, err = deps.Users.Authenticate(r.Context(), input.Username, input.Password)
		case strings.TrimSpace(input.Email) != "":
			u, err = deps.Users.AuthenticateByEmail(r.Context(), input.Email, input.Password)
		default:
			err = errs.NewError(errs.ErrInvalidParams)
		}
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		respondSession(w, r, deps, u, jwt.ProviderLocal)
	}
}

// HandleGoogleStart issues an OAuth state token and returns the consent-screen URL.
func HandleGoogleStart(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Google == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrOAuthDisabled))
			return
		}

		state, err := deps.OAuthStates.Issue(r.Context())
		if err != nil {
			logx.Ctx(r.Context()).Error().Err(err).Msg("google start: failed to issue state")
			resp.RespondError(w, r, errs.Wrap(errs.ErrUnknown, err))
			return
		}

		resp.RespondSuccess(w, r, map[string]string{
			"authUrl": deps.Google.AuthCodeURL(state),
		})
	}
}

// HandleGoogleCallback consumes the state token, exchanges the code, and signs
// the Google account in, creating it on first use.
func HandleGoogleCallback(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Google == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrOAuthDisabled))
			return
		}

		query := r.URL.Query()
		state, code := query.Get("state"), query.Get("code")

		if !randx.IsValidStateToken(state) {
			resp.RespondError(w, r, errs.NewError(errs.ErrOAuthStateInvalid))
			return
		}

		if err := deps.OAuthStates.Consume(r.Context(), state); err != nil {
			if errors.Is(err, oauthstate.ErrStateInvalid) {
				logx.Ctx(r.Context()).Warn().Msg("google callback: unknown or reused state")
				resp.RespondError(w, r, errs.NewError(errs.ErrOAuthStateInvalid))
				return
			}
			resp.RespondError(w, r, errs.Wrap(errs.ErrUnknown, err))
			return
		}

		if code == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrOAuthExchangeFailed))
			return
		}

		ident, err := deps.Google.Exchange(r.Context(), code)
		if err != nil {
			logx.Ctx(r.Context()).Warn().Err(err).Msg("google callback: exchange failed")
			resp.RespondError(w, r, errs.Wrap(errs.ErrOAuthExchangeFailed, err))
			return
		}

		u, err := deps.Users.SignInWithGoogle(r.Context(), ident.Subject, ident.Email)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		respondSession(w, r, deps, u, jwt.ProviderGoogle)
	}
}

// HandleGetUserProfile returns the signed-in account.
func HandleGetUserProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := jwt.GetPayloadFromContext(r)
		if payload == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		u, err := deps.Users.Profile(r.Context(), payload.ID)
		if err != nil {
			logx.Ctx(r.Context()).Warn().Str("user_id", payload.ID).Msg("profile: user not found")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user":     u,
			"provider": u.Provider(),
		})
	}
}

// publicUser is what one account may see of another.
type publicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// HandleGetUserByUsername resolves a username to the id room invitations take.
func HandleGetUserByUsername(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if payload := jwt.GetPayloadFromContext(r); payload == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		u, err := deps.Users.FindByUsername(r.Context(), chi.URLParam(r, "username"))
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, publicUser{ID: u.ID, Username: u.Username})
	}
}

func respondSession(w http.ResponseWriter, r *http.Request, deps *AppDeps, u *user.User, provider string) {
	payload := &jwt.Payload{
		ID:       u.ID,
		Username: u.Username,
		Provider: provider,
	}

	token, err := jwt.GenerateToken(payload, deps.Config.JWTSecret, jwt.SessionExpiration)
	if err != nil {
		logx.Ctx(r.Context()).Error().Err(err).Str("user_id", u.ID).Msg("jwt generation failed")
		resp.RespondError(w, r, errs.Wrap(errs.ErrUnknown, err))
		return
	}

	resp.RespondSuccess(w, r, sessionResponse{Token: token, User: u})
}
