package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/nao1215/trendscan/internal/model"
)

// Response is the JSON body of /run-script and /get-latest-data.
type Response struct {
	Status  string              `json:"status"`
	Data    *model.ScrapeResult `json:"data,omitempty"`
	Message string              `json:"message,omitempty"`
}

// Response statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// WriteText writes a plain-text body.
func WriteText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// WriteData writes a success response carrying a record.
func WriteData(w http.ResponseWriter, data *model.ScrapeResult) {
	writeJSON(w, http.StatusOK, Response{Status: StatusSuccess, Data: data})
}

// WriteError writes an error response.
func WriteError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Status: StatusError, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
