package handler

import (
	"roomchat/internal/app/identity"
	"roomchat/internal/app/oauthstate"
	"roomchat/internal/app/room"
	"roomchat/internal/app/user"
	"roomchat/internal/configs"
)

// AppDeps holds the collaborators the HTTP handlers call into.
type AppDeps struct {
	Config      *configs.AppConfig
	Rooms       *room.Service
	Users       *user.Service
	OAuthStates oauthstate.Store

	// Google is nil when Google sign-in is not configured.
	Google identity.GoogleExchanger
}
