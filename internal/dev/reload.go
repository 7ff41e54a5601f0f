package dev

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// ReloadPath is the WebSocket endpoint the dev client connects to.
const ReloadPath = "/_movieflair/reload"

// ReloadMessageType represents the type of reload message.
type ReloadMessageType string

const (
	ReloadTypeFull  ReloadMessageType = "reload"
	ReloadTypeCSS   ReloadMessageType = "css"
	ReloadTypeError ReloadMessageType = "error"
	ReloadTypeClear ReloadMessageType = "clear"
)

// ReloadMessage is sent to browsers via WebSocket.
type ReloadMessage struct {
	Type    ReloadMessageType `json:"type"`
	Error   string            `json:"error,omitempty"`
	File    string            `json:"file,omitempty"`
	Version uint64            `json:"version,omitempty"`
}

// ReloadServer manages WebSocket connections for live reload.
type ReloadServer struct {
	clients  map[*websocket.Conn]struct{}
	mu       sync.RWMutex
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewReloadServer creates a new reload server. A nil logger uses
// slog.Default().
func NewReloadServer(logger *slog.Logger) *ReloadServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReloadServer{
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Development only: pages may be opened through any host name.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// ServeHTTP upgrades the connection and holds it until the browser leaves.
func (r *ReloadServer) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Debug("reload socket upgrade failed", "error", err)
		return
	}

	r.mu.Lock()
	r.clients[conn] = struct{}{}
	r.mu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	r.remove(conn)
}

// NotifyReload sends a full page reload message to all clients.
func (r *ReloadServer) NotifyReload(version uint64) {
	r.broadcast(ReloadMessage{Type: ReloadTypeFull, Version: version})
}

// NotifyCSS sends a stylesheet-only reload message to all clients.
func (r *ReloadServer) NotifyCSS(file string) {
	r.broadcast(ReloadMessage{Type: ReloadTypeCSS, File: file})
}

// NotifyError shows an error overlay on all clients.
func (r *ReloadServer) NotifyError(errMsg string) {
	r.broadcast(ReloadMessage{Type: ReloadTypeError, Error: errMsg})
}

// ClearError clears the error overlay on all clients.
func (r *ReloadServer) ClearError() {
	r.broadcast(ReloadMessage{Type: ReloadTypeClear})
}

func (r *ReloadServer) broadcast(msg ReloadMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	r.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(r.clients))
	for client := range r.clients {
		clients = append(clients, client)
	}
	r.mu.RUnlock()

	for _, client := range clients {
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			r.remove(client)
		}
	}
}

func (r *ReloadServer) remove(conn *websocket.Conn) {
	r.mu.Lock()
	delete(r.clients, conn)
	r.mu.Unlock()
	conn.Close()
}

// ClientCount returns the number of connected clients.
func (r *ReloadServer) ClientCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Close closes all client connections.
func (r *ReloadServer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for client := range r.clients {
		client.Close()
		delete(r.clients, client)
	}
}

// DevClientScript is the live-reload client injected into the shell in
// development.
const DevClientScript = `<script data-movieflair-dev>
(function() {
    'use strict';

    var delay = 1000;
    var maxDelay = 30000;

    function connect() {
        var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
        var ws = new WebSocket(protocol + '//' + location.host + '` + ReloadPath + `');

        ws.onopen = function() {
            delay = 1000;
            clearOverlay();
        };

        ws.onmessage = function(e) {
            var msg;
            try { msg = JSON.parse(e.data); } catch (err) { return; }

            switch (msg.type) {
            case 'reload':
                location.reload();
                break;
            case 'css':
                document.querySelectorAll('link[rel="stylesheet"]').forEach(function(link) {
                    var url = new URL(link.href);
                    url.searchParams.set('_reload', Date.now());
                    link.href = url.toString();
                });
                break;
            case 'error':
                showOverlay(msg.error);
                break;
            case 'clear':
                clearOverlay();
                break;
            }
        };

        ws.onclose = function() {
            setTimeout(function() {
                delay = Math.min(delay * 2, maxDelay);
                connect();
            }, delay);
        };

        ws.onerror = function() { ws.close(); };
    }

    function showOverlay(error) {
        clearOverlay();
        var overlay = document.createElement('div');
        overlay.id = 'movieflair-error-overlay';
        overlay.style.cssText = 'position:fixed;inset:0;background:rgba(0,0,0,0.9);color:#fff;font:14px monospace;padding:20px;overflow:auto;z-index:999999;';
        var pre = document.createElement('pre');
        pre.style.cssText = 'white-space:pre-wrap;max-width:900px;margin:0 auto;';
        pre.textContent = error;
        overlay.appendChild(pre);
        document.body.appendChild(overlay);
    }

    function clearOverlay() {
        var overlay = document.getElementById('movieflair-error-overlay');
        if (overlay) { overlay.remove(); }
    }

    if (document.readyState === 'loading') {
        document.addEventListener('DOMContentLoaded', connect);
    } else {
        connect();
    }
})();
</script>`
