package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"roomchat/internal/app/identity"
	"roomchat/internal/app/memstore"
	"roomchat/internal/app/oauthstate"
	"roomchat/internal/app/room"
	"roomchat/internal/app/user"
	"roomchat/internal/configs"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
	deps    *AppDeps
}

func newTestServer(t *testing.T, google identity.GoogleExchanger) *testServer {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg, err := configs.FromEnv(func(key string) string {
		if key == "STORE_DRIVER" {
			return configs.StoreDriverMemory
		}
		return ""
	})
	require.NoError(t, err)

	store := memstore.New()
	deps := &AppDeps{
		Config:      cfg,
		Rooms:       room.NewService(store, identity.SessionResolver{}),
		Users:       user.NewService(store),
		OAuthStates: oauthstate.NewMemoryStore(ctx, cfg.OAuthStateTTL),
		Google:      google,
	}
	return &testServer{t: t, handler: Router(ctx, deps), deps: deps}
}

type apiResponse struct {
	Status int             `json:"-"`
	Raw    []byte          `json:"-"`
	Code   int             `json:"code"`
	Data   json.RawMessage `json:"data"`
}

func (s *testServer) do(method, path, token string, body any) apiResponse {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	r := httptest.NewRequest(method, path, reader)
	r.RemoteAddr = "192.0.2.10:4000"
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, r)

	res := apiResponse{Status: rec.Code, Raw: rec.Body.Bytes()}
	require.NoError(s.t, json.Unmarshal(res.Raw, &res))
	return res
}

func (s *testServer) decode(res apiResponse, dst any) {
	s.t.Helper()
	require.NoError(s.t, json.Unmarshal(res.Data, dst))
}

// register signs up a local account and returns its token and id.
func (s *testServer) register(username string) (string, string) {
	s.t.Helper()

	res := s.do(http.MethodPost, "/api/auth/register", "", RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "password1",
	})
	require.Equal(s.t, http.StatusOK, res.Status, string(res.Raw))

	var session struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	s.decode(res, &session)
	return session.Token, session.User.ID
}

func (s *testServer) createRoom(token, name, kind, secret string) string {
	s.t.Helper()

	res := s.do(http.MethodPost, "/api/rooms", token, CreateRoomInput{Name: name, Kind: kind, Secret: secret})
	require.Equal(s.t, http.StatusOK, res.Status, string(res.Raw))

	var data struct {
		Room struct {
			ID string `json:"id"`
		} `json:"room"`
	}
	s.decode(res, &data)
	return data.Room.ID
}
