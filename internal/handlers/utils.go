package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/jason-s-yu/sevens/internal/game"
	"github.com/sirupsen/logrus"
)

// maxBodyBytes caps request bodies; all payloads are a few small fields.
const maxBodyBytes = 1 << 16

// decodeJSON reads the request body into v. An empty body leaves v at its zero value.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		return badRequest("invalid request payload")
	}
	return nil
}

// statusForError maps engine and validation errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrForbidden), errors.Is(err, game.ErrNotYourTurn):
		return http.StatusForbidden
	case errors.Is(err, game.ErrFull):
		return http.StatusConflict
	case errors.Is(err, game.ErrInvalidState),
		errors.Is(err, game.ErrInsufficientPlayers),
		errors.Is(err, game.ErrIllegalMove),
		errors.Is(err, game.ErrCannotPass):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError renders err as {"error": ...}.
func writeError(w http.ResponseWriter, logger *logrus.Logger, err error) {
	writeJSON(w, statusForError(err), errorResponse{Error: clientMessage(logger, err)})
}

// clientMessage is the text shown to clients for err. Unexpected errors are logged and hidden.
func clientMessage(logger *logrus.Logger, err error) string {
	if statusForError(err) == http.StatusInternalServerError {
		logger.Errorf("unexpected handler error: %v", err)
		return "internal server error"
	}
	return err.Error()
}
