package handlers

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"postboard/hooks"
)

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	apiErr := hooks.ExecHook(hooks.HealthCheck, hooks.HookParams{})
	if apiErr != nil {
		log.Printf("Error in health check hook: %v\n", apiErr)
		http.Error(w, apiErr.Msg, apiErr.Status)
		return
	}
	fmt.Fprint(w, "OK")
}

func VersionHandler(w http.ResponseWriter, r *http.Request) {
	path := deps.VersionFile
	if path == "" {
		path = "version.txt"
	}

	bytes, err := os.ReadFile(path)
	if err != nil {
		http.Error(w, "Error getting version", http.StatusInternalServerError)
		return
	}

	fmt.Fprint(w, string(bytes))
}
