/*
Package handler provides the HTTP handler function for WebSocket connection upgrading
and initialization.

This file contains HandleWebSocket, which rate limits handshakes, validates the
requested username, upgrades the HTTP connection to WebSocket, and hands the new
client to the hub. Username uniqueness is decided by the hub itself so the check
and the registration cannot interleave with other events.
*/
package handler

import (
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"parlor/internal/app/arena"
	"parlor/internal/pkg/errs"
	"parlor/internal/pkg/limiter"
	"parlor/internal/pkg/logx"
	"parlor/internal/pkg/randx"
	"parlor/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if ip == "" {
			ip = "unknown_ip"
		}

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		username := r.URL.Query().Get("username")
		if username == "" {
			logx.Warn("WebSocket request rejected: Missing username")
			resp.RespondError(w, r, errs.NewError(errs.ErrUsernameMissing))
			return
		}
		if !randx.IsValidUsername(username) {
			logx.Warn("WebSocket request rejected: Invalid username")
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := arena.NewClient(deps.Hub, conn, username)

		go client.WritePump()

		deps.Hub.Attach(client)

		logx.Info("WebSocket connection established", "username", username)

		client.ReadPump()
	}
}
