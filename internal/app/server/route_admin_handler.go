package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"gatehouse/internal/admission"
	"gatehouse/internal/database"
)

type blockRequest struct {
	IP     string `json:"ip"`
	Reason string `json:"reason"`
}

func (api *API) blockIP(w http.ResponseWriter, r *http.Request) {
	var req blockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.IP == "" {
		writeError(w, "ip is required", http.StatusBadRequest)
		return
	}

	result, err := api.Blocklist.Block(r.Context(), strings.TrimSpace(req.IP), req.Reason)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch result.Outcome {
	case admission.BlockAlreadyExists:
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "already-blocked",
			"ip":     result.Entry.IP,
		})
	default:
		writeJSON(w, http.StatusCreated, map[string]any{
			"status": "blocked",
			"ip":     result.Entry.IP,
			"id":     result.Entry.ID,
		})
	}
}

func (api *API) unblockIP(w http.ResponseWriter, r *http.Request) {
	ip := strings.TrimSpace(r.URL.Query().Get("ip"))
	if ip == "" {
		writeError(w, "ip query parameter is required", http.StatusBadRequest)
		return
	}

	removed, err := api.Blocklist.Unblock(r.Context(), ip)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !removed {
		writeJSON(w, http.StatusOK, map[string]string{"status": "not-blocked", "ip": ip})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "unblocked", "ip": ip})
}

func (api *API) listBlocked(w http.ResponseWriter, r *http.Request) {
	entries, err := database.ListBlockedIPs(r.Context())
	if err != nil {
		writeError(w, "failed to list blocked IPs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (api *API) runDetection(w http.ResponseWriter, r *http.Request) {
	async := r.URL.Query().Get("async") == "true"

	flagged, err := api.Runner.Trigger(r.Context(), async)
	if err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if async {
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "completed",
		"newly_flagged": flagged,
	})
}

func (api *API) trafficReport(w http.ResponseWriter, r *http.Request) {
	since := time.Now().UTC().Add(-24 * time.Hour)

	report, err := database.GetTrafficReport(r.Context(), since)
	if err != nil {
		writeError(w, "failed to build report", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (api *API) listSuspicious(w http.ResponseWriter, r *http.Request) {
	entries, err := database.ListActiveSuspiciousIPs(r.Context())
	if err != nil {
		writeError(w, "failed to list suspicious IPs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (api *API) releaseSuspicious(w http.ResponseWriter, r *http.Request) {
	ip := strings.TrimSpace(r.URL.Query().Get("ip"))
	if ip == "" {
		writeError(w, "ip query parameter is required", http.StatusBadRequest)
		return
	}

	released, err := database.DeactivateSuspiciousIP(r.Context(), ip)
	if err != nil {
		writeError(w, "failed to release suspicious IP", http.StatusInternalServerError)
		return
	}
	if !released {
		writeJSON(w, http.StatusOK, map[string]string{"status": "not-flagged", "ip": ip})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "released", "ip": ip})
}
