package authapi

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"wayfare/cmd/identity"
	"wayfare/cmd/security/token"
)

// Handler wires the identity service and token manager to HTTP endpoints.
type Handler struct {
	log    *slog.Logger
	cfg    Config
	svc    *identity.Service
	tokens *token.Manager
}

// NewHandler constructs an auth Handler.
func NewHandler(log *slog.Logger, cfg Config, svc *identity.Service, tokens *token.Manager) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if svc == nil {
		return nil, identity.OpError{Op: "authapi.NewHandler", Kind: identity.ErrInvalidInput, Msg: "nil identity service"}
	}
	if tokens == nil {
		return nil, identity.OpError{Op: "authapi.NewHandler", Kind: identity.ErrInvalidInput, Msg: "nil token manager"}
	}
	return &Handler{log: log, cfg: cfg, svc: svc, tokens: tokens}, nil
}

// Register wires auth routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("/api/auth/register", h.handleRegister)
	mux.HandleFunc("/api/auth/login", h.handleLogin)
	mux.HandleFunc("/api/auth/users", h.handleListUsers)
	mux.HandleFunc("/api/auth/profile", h.handleProfile)
	mux.HandleFunc("/api/auth/change-password", h.authenticated(h.handleChangePassword))
	mux.HandleFunc("/api/auth/verify", h.authenticated(h.handleVerify))
	mux.HandleFunc("/api/auth/me", h.authenticated(h.handleMe))
	mux.HandleFunc("/api/auth/logout", h.authenticated(h.handleLogout))
}

// ---- handlers ----

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req registerRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	ctx := r.Context()
	u, err := h.svc.Register(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case identity.IsConflict(err):
			h.auditRegisterFailed(r, req.Email, "conflict")
			writeError(w, http.StatusBadRequest, "conflict", registerConflictMessage(err))
		case identity.IsInvalidInput(err):
			h.auditRegisterFailed(r, req.Email, "invalid_input")
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		default:
			h.serverError(w, r, "auth.register.fail", err)
		}
		return
	}

	tok, _, err := h.tokens.Issue(u.ID, time.Now().UTC())
	if err != nil {
		h.serverError(w, r, "auth.register.token.fail", err)
		return
	}

	h.auditRegisterSuccess(r, u.ID, u.Username)
	writeJSON(w, http.StatusCreated, authResponse{
		Message: "Registration successful",
		Token:   tok,
		User:    toUserResponse(u),
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	ctx := r.Context()
	u, err := h.svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		if identity.IsUnauthorized(err) {
			h.auditLoginFailed(r, req.Email)
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
			return
		}
		h.serverError(w, r, "auth.login.fail", err)
		return
	}

	tok, _, err := h.tokens.Issue(u.ID, time.Now().UTC())
	if err != nil {
		h.serverError(w, r, "auth.login.token.fail", err)
		return
	}

	h.auditLoginSuccess(r, u.ID)
	writeJSON(w, http.StatusOK, authResponse{
		Message: "Login successful",
		Token:   tok,
		User:    toUserResponse(u),
	})
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		h.serverError(w, r, "auth.users.fail", err)
		return
	}

	resp := usersResponse{Users: toUserResponses(users), Count: len(users)}
	writeJSON(w, http.StatusOK, resp)
}

// handleProfile dispatches GET (fetch) and PUT (patch) for /profile.
func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.authenticated(h.handleGetProfile)(w, r)
	case http.MethodPut:
		h.authenticated(h.handleUpdateProfile)(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authorization denied")
		return
	}

	u, err := h.svc.GetUser(r.Context(), userID)
	if err != nil {
		if identity.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		h.serverError(w, r, "auth.profile.get.fail", err)
		return
	}
	writeJSON(w, http.StatusOK, userEnvelope{User: toUserResponse(u)})
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authorization denied")
		return
	}

	var req profilePatchRequest
	if err := decodeJSONLenient(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	u, err := h.svc.UpdateProfile(r.Context(), userID, req.toPatch())
	if err != nil {
		switch {
		case identity.IsNotFound(err):
			writeError(w, http.StatusNotFound, "not_found", "user not found")
		case identity.IsInvalidInput(err):
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		default:
			h.serverError(w, r, "auth.profile.update.fail", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, updateProfileResponse{
		Message: "Profile updated successfully",
		User:    toUserResponse(u),
	})
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authorization denied")
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "currentPassword and newPassword are required")
		return
	}

	err := h.svc.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case identity.IsUnauthorized(err):
			h.auditPasswordChangeFailed(r, userID)
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "current password is incorrect")
		case identity.IsNotFound(err):
			writeError(w, http.StatusNotFound, "not_found", "user not found")
		case identity.IsInvalidInput(err):
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		default:
			h.serverError(w, r, "auth.change_password.fail", err)
		}
		return
	}

	h.auditPasswordChanged(r, userID)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Password updated successfully"})
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	// Reaching this point means the gate already verified the token.
	userID, _ := userIDFrom(r.Context())
	writeJSON(w, http.StatusOK, verifyResponse{Valid: true, UserID: userID})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	userID, _ := userIDFrom(r.Context())
	u, err := h.svc.GetUser(r.Context(), userID)
	if err != nil {
		if identity.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		h.serverError(w, r, "auth.me.fail", err)
		return
	}
	writeJSON(w, http.StatusOK, userEnvelope{User: toUserResponse(u)})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	// Tokens are stateless: nothing to revoke server-side. The client
	// discards its copy; expiry does the rest.
	userID, _ := userIDFrom(r.Context())
	h.auditLogout(r, userID)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

// registerConflictMessage names the colliding field. The email pre-check
// catches the common case; a username conflict here means the insert lost a
// race with a concurrent registration for the same derived handle.
func registerConflictMessage(err error) string {
	var ce identity.ConflictError
	if errors.As(err, &ce) && ce.Field == "username" {
		return "username already taken"
	}
	return "email already registered"
}

// serverError logs err with context and returns a generic 500.
// Details reach the client only in dev mode.
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, event string, err error) {
	h.log.Error(event, "err", err, "method", r.Method, "path", r.URL.Path)
	msg := "internal error"
	if h.cfg.DevMode {
		msg = err.Error()
	}
	writeError(w, http.StatusInternalServerError, "server_error", msg)
}
