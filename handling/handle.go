package handling

import (
	"haya_server/lib"
	"net/http"

	"github.com/MonkyMars/gecho"
)

// HandleError logs err and writes the matching HTTP response. The error code
// taxonomy maps one-to-one onto status codes, so handlers never pick a status
// themselves.
func HandleError(err error, msg string, logger *gecho.Logger, w http.ResponseWriter) {
	appErr := lib.AsAppError(err)

	payload := map[string]any{
		"code": appErr.Code,
	}
	if appErr.Line != "" {
		payload["line"] = appErr.Line
	}

	switch appErr.Code {
	case lib.CodeValidation:
		logger.Warn("Request rejected",
			gecho.Field("error", err), gecho.Field("msg", msg), gecho.Field("line", appErr.Line))
		gecho.BadRequest(w, gecho.WithMessage(appErr.Message), gecho.WithData(payload), gecho.Send())
	case lib.CodeNotFound:
		logger.Warn("Resource not found",
			gecho.Field("error", err), gecho.Field("msg", msg), gecho.Field("line", appErr.Line))
		gecho.NotFound(w, gecho.WithMessage(appErr.Message), gecho.WithData(payload), gecho.Send())
	case lib.CodeInsufficientStock, lib.CodeConflict:
		logger.Warn("Request conflicted with current state",
			gecho.Field("error", err), gecho.Field("msg", msg), gecho.Field("line", appErr.Line))
		gecho.Conflict(w, gecho.WithMessage(appErr.Message), gecho.WithData(payload), gecho.Send())
	default:
		logger.Error("An error occurred",
			gecho.Field("error", err), gecho.Field("msg", msg), gecho.WithCallerSkip(3))
		gecho.InternalServerError(w, gecho.Send())
	}
}
