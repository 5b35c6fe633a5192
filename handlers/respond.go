package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"postboard/notify"
	"postboard/shared"
	"postboard/types"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	bytes, err := json.Marshal(v)
	if err != nil {
		log.Printf("Error marshalling response: %v\n", err)
		http.Error(w, "Error marshalling response: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(bytes)
}

func writeApiError(w http.ResponseWriter, apiErr shared.ApiError) {
	writeJSON(w, apiErr.Status, apiErr)
}

// reportFailure logs err, forwards store failures to notify, and returns the api
// error for it.
func reportFailure(op string, err error) *shared.ApiError {
	apiErr := types.ToApiError(err)

	switch types.KindOf(err) {
	case types.KindStore, types.KindListingUnavailable, "":
		notify.NotifyErr(notify.SeverityError, op, err)
	default:
		log.Printf("%s: %v\n", op, err)
	}

	return apiErr
}

func writeActionError(w http.ResponseWriter, op string, err error) {
	apiErr := reportFailure(op, err)

	writeJSON(w, apiErr.Status, shared.ActionResult{
		Success:   false,
		Error:     apiErr.Msg,
		ErrorType: apiErr.Type,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("Error reading request body: %v\n", err)
		http.Error(w, "Error reading request body: "+err.Error(), http.StatusInternalServerError)
		return false
	}
	defer r.Body.Close()

	if err := json.Unmarshal(body, v); err != nil {
		log.Printf("Error parsing request body: %v\n", err)
		writeJSON(w, http.StatusBadRequest, shared.ActionResult{
			Success:   false,
			Error:     "Error parsing request body: " + err.Error(),
			ErrorType: shared.ApiErrorTypeValidation,
		})
		return false
	}

	return true
}
