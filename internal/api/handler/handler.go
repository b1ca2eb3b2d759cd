package handler

import (
	"log/slog"
	"net/http"

	"learnhub/internal/common"
)

// respondError maps a service error onto the wire. Client errors carry
// their message; unexpected faults are logged with full context and
// the caller only sees a generic message.
func respondError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	status := common.HTTPStatusFromError(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
		common.RespondWithError(w, status, "Server error")
		return
	}
	common.RespondWithError(w, status, err.Error())
}
