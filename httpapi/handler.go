// Package httpapi exposes the REST collaborator surface around the relay
// core: account signup/login, room CRUD and lifecycle, invitations and
// read marks. Handlers delegate to the services, which own the matching
// broadcasts.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"chat-relay/auth"
	"chat-relay/domain"
	"chat-relay/services"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"
)

type Handler struct {
	log         *slog.Logger
	tokens      *auth.TokenIssuer
	authService services.IAuthService
	rooms       services.IRoomService
	invitations services.IInvitationService
	chat        services.IChatService
	gateway     http.Handler
}

func NewHandler(
	log *slog.Logger,
	tokens *auth.TokenIssuer,
	authService services.IAuthService,
	rooms services.IRoomService,
	invitations services.IInvitationService,
	chat services.IChatService,
	gateway http.Handler,
) *Handler {
	return &Handler{
		log:         log,
		tokens:      tokens,
		authService: authService,
		rooms:       rooms,
		invitations: invitations,
		chat:        chat,
		gateway:     gateway,
	}
}

func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/signup", h.signup)
	mux.HandleFunc("POST /auth/login", h.login)
	mux.HandleFunc("GET /auth/me", h.requireAuth(h.me))

	mux.HandleFunc("GET /rooms", h.requireAuth(h.listRooms))
	mux.HandleFunc("POST /rooms", h.requireAuth(h.createRoom))
	mux.HandleFunc("GET /rooms/trash", h.requireAuth(h.listTrash))
	mux.HandleFunc("DELETE /rooms/{id}", h.requireAuth(h.deleteRoom))
	mux.HandleFunc("POST /rooms/{id}/restore", h.requireAuth(h.restoreRoom))
	mux.HandleFunc("DELETE /rooms/{id}/permanent", h.requireAuth(h.permanentDeleteRoom))
	mux.HandleFunc("POST /rooms/{id}/invite", h.requireAuth(h.inviteUser))
	mux.HandleFunc("POST /rooms/{id}/read", h.requireAuth(h.markRead))

	mux.HandleFunc("GET /invitations", h.requireAuth(h.listInvitations))
	mux.HandleFunc("POST /invitations/{id}/accept", h.requireAuth(h.acceptInvitation))
	mux.HandleFunc("POST /invitations/{id}/reject", h.requireAuth(h.rejectInvitation))

	mux.Handle("GET /ws", h.gateway)
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

type credentialsResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type userResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

type roomResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	OwnerID   string     `json:"ownerId"`
	Private   bool       `json:"private"`
	Unread    int        `json:"unread,omitempty"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, user, err := h.authService.Register(req.Email, req.Username, req.Password)
	if err != nil {
		respondServiceError(h.log, w, err)
		return
	}
	respondJSON(w, http.StatusCreated, credentialsResponse{
		Token: string(token),
		User:  userResponse{ID: string(user.ID), Email: user.Email, Username: user.Username},
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		respondServiceError(h.log, w, err)
		return
	}
	respondJSON(w, http.StatusOK, credentialsResponse{
		Token: string(token),
		User:  userResponse{ID: string(user.ID), Email: user.Email, Username: user.Username},
	})
}

// me lets clients re-validate a stored token on refresh.
func (h *Handler) me(w http.ResponseWriter, _ *http.Request, claims *auth.CustomClaims) {
	respondJSON(w, http.StatusOK, map[string]string{
		"id":       claims.UserID,
		"username": claims.Username,
	})
}

func (h *Handler) listRooms(w http.ResponseWriter, _ *http.Request, claims *auth.CustomClaims) {
	summaries, err := h.rooms.ListVisible(domain.UserID(claims.UserID))
	if err != nil {
		respondServiceError(h.log, w, err)
		return
	}
	respondJSON(w, http.StatusOK, lo.Map(summaries, func(s services.RoomSummary, _ int) roomResponse {
		return roomResponse{
			ID:      string(s.Room.ID),
			Name:    s.Room.Name,
			OwnerID: string(s.Room.OwnerID),
			Private: s.Room.Private,
			Unread:  s.Unread,
		}
	}))
}

func (h *Handler) createRoom(w http.ResponseWriter, r *http.Request, claims *auth.CustomClaims) {
	var req struct {
		Name    string `json:"name"`
		Private bool   `json:"private"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		respondError(w, http.StatusBadRequest, "room name is required")
		return
	}

	room, err := h.rooms.Create(r.Context(), req.Name, domain.UserID(claims.UserID), req.Private)
	if err != nil {
		respondServiceError(h.log, w, err)
		return
	}
	respondJSON(w, http.StatusCreated, roomResponse{
		ID:      string(room.ID),
		Name:    room.Name,
		OwnerID: string(room.OwnerID),
		Private: room.Private,
	})
}

func (h *Handler) listTrash(w http.ResponseWriter, _ *http.Request, claims *auth.CustomClaims) {
	rooms, err := h.rooms.ListTrash(domain.UserID(claims.UserID))
	if err != nil {
		respondServiceError(h.log, w, err)
		return
	}
	respondJSON(w, http.StatusOK, lo.Map(rooms, func(room domain.Room, _ int) roomResponse {
		return roomResponse{
			ID:        string(room.ID),
			Name:      room.Name,
			OwnerID:   string(room.OwnerID),
			Private:   room.Private,
			DeletedAt: room.DeletedAt,
		}
	}))
}

func (h *Handler) deleteRoom(w http.ResponseWriter, r *http.Request, claims *auth.CustomClaims) {
	err := h.rooms.SoftDelete(r.Context(), domain.RoomID(r.PathValue("id")), domain.UserID(claims.UserID))
	if err != nil {
		respondServiceError(h.log, w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "room moved to trash"})
}

func (h *Handler) restoreRoom(w http.ResponseWriter, r *http.Request, claims *auth.CustomClaims) {
	room, err := h.rooms.Restore(r.Context(), domain.RoomID(r.PathValue("id")), domain.UserID(claims.UserID))
	if err != nil {
		respondServiceError(h.log, w, err)
		return
	}
	respondJSON(w, http.StatusOK, roomResponse{
		ID:      string(room.ID),
		Name:    room.Name,
		OwnerID: string(room.OwnerID),
		Private: room.Private,
	})
}

func (h *Handler) permanentDeleteRoom(w http.ResponseWriter, r *http.Request, claims *auth.CustomClaims) {
	err := h.rooms.PermanentDelete(domain.RoomID(r.PathValue("id")), domain.UserID(claims.UserID))
	if err != nil {
		respondServiceError(h.log, w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "room deleted permanently"})
}

func (h *Handler) inviteUser(w http.ResponseWriter, r *http.Request, claims *auth.CustomClaims) {
	var req struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		respondError(w, http.StatusBadRequest, "username is required")
		return
	}

	err := h.invitations.Invite(r.Context(), domain.RoomID(r.PathValue("id")),
		domain.UserID(claims.UserID), claims.Username, req.Username)
	if err != nil {
		respondServiceError(h.log, w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "invitation sent"})
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request, claims *auth.CustomClaims) {
	err := h.chat.MarkRead(domain.UserID(claims.UserID), domain.RoomID(r.PathValue("id")))
	if err != nil {
		respondServiceError(h.log, w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "room marked read"})
}

func (h *Handler) listInvitations(w http.ResponseWriter, _ *http.Request, claims *auth.CustomClaims) {
	views, err := h.invitations.List(domain.UserID(claims.UserID))
	if err != nil {
		respondServiceError(h.log, w, err)
		return
	}
	respondJSON(w, http.StatusOK, lo.Map(views, func(v services.InvitationView, _ int) map[string]string {
		return map[string]string{
			"roomId":      string(v.RoomID),
			"roomName":    v.RoomName,
			"inviterId":   string(v.InviterID),
			"inviterName": v.InviterName,
		}
	}))
}

func (h *Handler) acceptInvitation(w http.ResponseWriter, r *http.Request, claims *auth.CustomClaims) {
	room, err := h.invitations.Accept(r.Context(), domain.RoomID(r.PathValue("id")),
		domain.UserID(claims.UserID), claims.Username)
	if err != nil {
		respondServiceError(h.log, w, err)
		return
	}
	respondJSON(w, http.StatusOK, roomResponse{
		ID:      string(room.ID),
		Name:    room.Name,
		OwnerID: string(room.OwnerID),
		Private: room.Private,
	})
}

func (h *Handler) rejectInvitation(w http.ResponseWriter, r *http.Request, claims *auth.CustomClaims) {
	err := h.invitations.Reject(r.Context(), domain.RoomID(r.PathValue("id")),
		domain.UserID(claims.UserID), claims.Username)
	if err != nil {
		respondServiceError(h.log, w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "invitation rejected"})
}
