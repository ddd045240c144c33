package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"roomchat/internal/app/room"
	"roomchat/internal/pkg/req"
	"roomchat/internal/pkg/resp"
)

type CreateRoomInput struct {
	Name string `json:"name"`
	// Kind is "public" or "private".
	Kind string `json:"kind"`
	// Secret optionally lets private rooms be joined with a password.
	Secret string `json:"secret,omitempty"`
}

type RenameInput struct {
	Name string `json:"name"`
}

type InviteInput struct {
	UserIDs []string `json:"userIds"`
}

type EnterInput struct {
	Secret string `json:"secret,omitempty"`
}

// roomView adds the derived hasSecret flag to a room.
type roomView struct {
	room.Room
	SecretSet bool `json:"hasSecret"`
}

func viewOf(r *room.Room) roomView {
	return roomView{Room: *r, SecretSet: r.HasSecret()}
}

func viewsOf(rooms []room.Room) []roomView {
	views := make([]roomView, 0, len(rooms))
	for i := range rooms {
		views = append(views, viewOf(&rooms[i]))
	}
	return views
}

func roomIDParam(r *http.Request) string {
	return chi.URLParam(r, "roomID")
}

// HandleCreateRoom creates a room owned by the caller.
func HandleCreateRoom(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input CreateRoomInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		created, err := deps.Rooms.CreateRoom(r.Context(), room.CreateRoomInput{
			Name:   input.Name,
			Kind:   room.Kind(input.Kind),
			Secret: input.Secret,
		})
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"room": viewOf(created)})
	}
}

// HandleListPublicRooms lists active public rooms.
func HandleListPublicRooms(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rooms, err := deps.Rooms.ListPublicRooms(r.Context())
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, map[string]any{"rooms": viewsOf(rooms)})
	}
}

// HandleListJoinedRooms lists the caller's rooms of ?kind= (default private).
func HandleListJoinedRooms(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := r.URL.Query().Get("kind")
		if kind == "" {
			kind = string(room.KindPrivate)
		}

		rooms, err := deps.Rooms.ListJoinedRooms(r.Context(), room.Kind(kind))
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, map[string]any{"rooms": viewsOf(rooms)})
	}
}

// HandleGetRoom returns a visible room and the caller's membership, if any.
func HandleGetRoom(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		found, m, err := deps.Rooms.GetRoom(r.Context(), roomIDParam(r))
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, map[string]any{
			"room":       viewOf(found),
			"membership": m,
		})
	}
}

// HandleListMembers lists a visible room's memberships.
func HandleListMembers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		members, err := deps.Rooms.ListMembers(r.Context(), roomIDParam(r))
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, map[string]any{"members": members})
	}
}

// HandleInvite adds Guest memberships to a private room.
func HandleInvite(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input InviteInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		created, err := deps.Rooms.Invite(r.Context(), roomIDParam(r), input.UserIDs)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, map[string]any{"ok": true, "created": created})
	}
}

// HandleRename changes a room's name.
func HandleRename(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input RenameInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		renamed, err := deps.Rooms.Rename(r.Context(), roomIDParam(r), input.Name)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, map[string]any{"room": viewOf(renamed)})
	}
}

// HandleDisable soft-deletes a room.
func HandleDisable(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Rooms.Disable(r.Context(), roomIDParam(r)); err != nil {
			resp.RespondError(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, map[string]any{"ok": true})
	}
}

// HandleEnter marks the caller present. The JSON body with a secret is optional.
func HandleEnter(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input EnterInput
		if r.ContentLength != 0 {
			if customErr := req.BindJSON(w, r, &input); customErr != nil {
				resp.RespondError(w, r, customErr)
				return
			}
		}

		m, err := deps.Rooms.Enter(r.Context(), roomIDParam(r), input.Secret)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, map[string]any{"membership": m})
	}
}

// HandleExit clears the caller's presence flag.
func HandleExit(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := deps.Rooms.Exit(r.Context(), roomIDParam(r))
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, map[string]any{"membership": m})
	}
}
