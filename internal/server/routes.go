// Package server wires HTTP handlers into a ServeMux for the Mini RPG
// application via routing helpers.
package server

import "net/http"

// SetupRoutes configures and returns an HTTP ServeMux with all application routes.
// /ws and /socket accept game connections, / and /healthz report status, and
// /play serves the browser client.
func SetupRoutes(gw *Gateway) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", HealthHandler(gw))
	mux.HandleFunc("/healthz", HealthHandler(gw))
	mux.HandleFunc("/ws", WebSocketHandler(gw))
	mux.HandleFunc("/socket", WebSocketHandler(gw))
	mux.HandleFunc("/play", PlayPageHandler)
	return mux
}
