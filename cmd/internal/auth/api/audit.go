package authapi

import (
	"net"
	"net/http"
	"strings"
)

// Audit events are structured log records: enough to reconstruct who did
// what from where, without persisting a separate audit table.

func (h *Handler) auditRegisterSuccess(r *http.Request, userID, username string) {
	h.log.Info("audit.register.success",
		"user_id", userID, "username", username, "ip", clientIP(r))
}

func (h *Handler) auditRegisterFailed(r *http.Request, email, reason string) {
	h.log.Warn("audit.register.failed",
		"email", email, "reason", reason, "ip", clientIP(r))
}

func (h *Handler) auditLoginSuccess(r *http.Request, userID string) {
	h.log.Info("audit.login.success", "user_id", userID, "ip", clientIP(r))
}

func (h *Handler) auditLoginFailed(r *http.Request, identifier string) {
	h.log.Warn("audit.login.failed", "identifier", identifier, "ip", clientIP(r))
}

func (h *Handler) auditPasswordChanged(r *http.Request, userID string) {
	h.log.Info("audit.password.changed", "user_id", userID, "ip", clientIP(r))
}

func (h *Handler) auditPasswordChangeFailed(r *http.Request, userID string) {
	h.log.Warn("audit.password.change_failed", "user_id", userID, "ip", clientIP(r))
}

func (h *Handler) auditLogout(r *http.Request, userID string) {
	h.log.Info("audit.logout", "user_id", userID, "ip", clientIP(r))
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}
