package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/okian/retina/internal/domain/catalog"
	"github.com/okian/retina/pkg/logger"
)

// GenerateHandler serves one catalog route.
type GenerateHandler struct {
	route        catalog.Route
	invoker      Invoker
	maxBodyBytes int64
	logger       logger.Logger
}

// NewGenerateHandler creates a handler for route.
func NewGenerateHandler(route catalog.Route, inv Invoker, maxBodyBytes int64, l logger.Logger) *GenerateHandler {
	if l == nil {
		l = logger.Nop()
	}
	return &GenerateHandler{route: route, invoker: inv, maxBodyBytes: maxBodyBytes, logger: l}
}

// HandleGenerate handles POST <route> requests.
func (h *GenerateHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	const op = "api.generate"

	req, err := decodeRequest(w, r, h.maxBodyBytes)
	switch {
	case errors.Is(err, ErrBodyTooLarge):
		h.logger.Warn(r.Context(), "request body too large", logger.String("route", h.route.Path))
		writeEnvelope(w, http.StatusRequestEntityTooLarge, MessageTooLarge, nil)
		return
	case err != nil:
		err = WrapKind(op, ErrBadRequest, err)
		h.logger.Warn(r.Context(), "invalid request body", logger.String("route", h.route.Path), logger.Error(err))
		writeEnvelope(w, http.StatusBadRequest, MessageBadJSON, err.Error())
		return
	}

	out := h.invoker.Invoke(r.Context(), h.route, h.route.Build(req))
	if !out.OK() {
		writeEnvelope(w, http.StatusInternalServerError, MessageFailure, out.Err.Error())
		return
	}
	writeEnvelope(w, http.StatusOK, MessageSuccess, out.Output)
}

// decodeRequest reads the JSON body of r. Bodies that are not JSON, empty, or
// not a JSON object decode to an empty request.
func decodeRequest(w http.ResponseWriter, r *http.Request, limit int64) (catalog.Request, error) {
	var req catalog.Request
	if r.Body == nil || !isJSON(r.Header.Get("Content-Type")) {
		return req, nil
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return req, ErrBodyTooLarge
		}
		return req, err
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return req, nil
	}
	if data[0] != '{' {
		if !json.Valid(data) {
			return req, json.Unmarshal(data, new(any))
		}
		return req, nil
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return catalog.Request{}, err
	}
	return req, nil
}

// isJSON reports whether contentType is application/json or a +json type.
func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}
