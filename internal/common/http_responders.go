package common

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// HttpResponse is the envelope returned by every endpoint. Details
// carries a constant, human-readable message; error responses
// additionally set Data to a stable error code that SDKs can switch on.
type HttpResponse struct {
	Data    any    `json:"data"`
	Details string `json:"details"`
	Success bool   `json:"success"`
}

func GetNotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		SendHttpFailResponse(w, r, http.StatusNotFound, "not found", fmt.Errorf("endpoint[%s] not found", r.URL.Path))
	}
}

func SendHttpFailResponse(
	responseWriter http.ResponseWriter,
	request *http.Request,
	statusCode int,
	details string,
	errorCode ...error,
) {
	log := request.Context().Value(HttpContextLogger).(HttpRequestLogger)
	log(LogLevelError, details)
	responseData := HttpResponse{
		Details: details,
		Success: false,
	}
	if len(errorCode) > 0 {
		responseData.Data = errorCode[0].Error()
	} else {
		responseData.Data = "generic_error"
	}
	res, _ := json.Marshal(responseData)
	responseWriter.WriteHeader(statusCode)
	responseWriter.Write(res)
}

func SendHttpSuccessResponse(
	responseWriter http.ResponseWriter,
	request *http.Request,
	statusCode int,
	details string,
	data ...any,
) {
	if statusCode == http.StatusNoContent {
		responseWriter.WriteHeader(statusCode)
		return
	}
	responseData := HttpResponse{
		Details: details,
		Success: true,
	}
	if len(data) > 0 {
		responseData.Data = data[0]
	}
	res, _ := json.Marshal(responseData)
	responseWriter.WriteHeader(statusCode)
	responseWriter.Write(res)
}
