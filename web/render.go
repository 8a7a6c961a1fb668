package web

import (
	"encoding/json"
	"net/http"

	"github.com/artpar/scaffold/domain/outcome"
)

// writeOutcome maps a dispatch Outcome to an HTTP response. This is the
// only place the normalized result vocabulary meets HTTP.
func writeOutcome(w http.ResponseWriter, o outcome.Outcome) {
	switch o.Kind() {
	case outcome.KindRedirect:
		w.Header().Set("Location", o.Target())
		writeJSON(w, http.StatusSeeOther, map[string]any{
			"redirect": o.Target(),
			"messages": messageTexts(o),
		})

	case outcome.KindPayload:
		if o.Payload() == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, o.Payload())

	case outcome.KindValidationFailed:
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"errors": o.Messages(),
		})

	case outcome.KindUnauthorized:
		writeError(w, http.StatusForbidden, "forbidden")

	case outcome.KindNotFound:
		writeError(w, http.StatusNotFound, "not found")

	case outcome.KindFailure:
		status := http.StatusInternalServerError
		if o.FailureKind() == outcome.FailureActionNotSupported {
			status = http.StatusBadRequest
		}
		writeError(w, status, o.FailureMessage())

	default:
		writeError(w, http.StatusInternalServerError, "unknown outcome")
	}
}

func messageTexts(o outcome.Outcome) []string {
	texts := make([]string, 0, len(o.Messages()))
	for _, m := range o.Messages() {
		texts = append(texts, m.Text)
	}
	return texts
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
