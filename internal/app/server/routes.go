package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"gatehouse/internal/admission"
	"gatehouse/internal/jobs/detection"
)

// API bundles the components the route handlers act on.
type API struct {
	Gate      *admission.Gate
	Blocklist *admission.Blocklist
	Runner    *detection.Runner
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// OpenRoutes starts the HTTP server. Public routes pass through the admission
// gate; the /admin surface is the out-of-band administration boundary and is
// expected to be reachable only from a trusted network.
func OpenRoutes(port int, api *API) error {
	router := http.NewServeMux()
	router.HandleFunc("GET /", api.index)
	router.HandleFunc("GET /api/public", api.publicAPI)
	router.HandleFunc("GET /healthz", api.health)

	gated := admission.Middleware(api.Gate)(router)

	admin := http.NewServeMux()
	admin.HandleFunc("POST /admin/block", api.blockIP)
	admin.HandleFunc("DELETE /admin/block", api.unblockIP)
	admin.HandleFunc("GET /admin/blocked", api.listBlocked)
	admin.HandleFunc("POST /admin/detect", api.runDetection)
	admin.HandleFunc("GET /admin/report", api.trafficReport)
	admin.HandleFunc("GET /admin/suspicious", api.listSuspicious)
	admin.HandleFunc("DELETE /admin/suspicious", api.releaseSuspicious)

	root := http.NewServeMux()
	root.Handle("/admin/", admin)
	root.Handle("/", gated)

	addr := fmt.Sprintf(":%d", port)
	log.Infof("Starting server on %s", addr)
	return http.ListenAndServe(addr, root)
}
