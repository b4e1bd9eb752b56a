package api

import "net/http"

// StatusHandler answers the root status probe.
type StatusHandler struct{}

// NewStatusHandler creates a new status handler.
func NewStatusHandler() *StatusHandler {
	return &StatusHandler{}
}

// HandleStatus handles GET / requests. Body and headers are ignored.
func (h *StatusHandler) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	writeEnvelope(w, http.StatusOK, MessageStatus, nil)
}
