package collection

import (
	"fmt"

	"pulse-cli/internal/api"
	"pulse-cli/internal/model"
)

const (
	msgCreated       = "Project created successfully."
	msgStatusUpdated = "Project status updated."
	msgUpdated       = "Project updated."
	msgDeleted       = "Project deleted."
	msgNotFound      = "Project not found."

	msgLoadFailed    = "Failed to load projects."
	msgCreateFailed  = "Failed to create project."
	msgUpdateFailed  = "Failed to update project."
	msgDeleteFailed  = "Failed to delete project."
	msgLoadNetwork   = "Network error. Please check your connection and try again."
	msgLoadServerErr = "Server error. Please try again later."
)

// ConfirmDeletePrompt is the question shown before a delete.
func ConfirmDeletePrompt(p model.Project) string {
	return fmt.Sprintf(`Are you sure you want to delete "%s"? This action cannot be undone.`, p.Name)
}

// loadFailureMessage mirrors what the board shows when the list cannot be fetched.
func loadFailureMessage(err error) string {
	switch {
	case api.IsNetwork(err):
		return msgLoadNetwork
	case api.IsServer(err):
		return msgLoadServerErr
	}
	if msg, ok := api.ServerMessage(err); ok {
		return msg
	}
	return msgLoadFailed
}

// failureMessage prefers the server-supplied detail over the per-operation fallback.
func failureMessage(err error, fallback string) string {
	if msg, ok := api.ServerMessage(err); ok {
		return msg
	}
	return fallback
}
