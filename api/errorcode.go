package api

import (
	"github.com/bitmark-inc/covid-monthly/geo"
	"github.com/bitmark-inc/covid-monthly/store"
)

var (
	errorMessageMap = map[int64]string{
		999: "internal server error",

		1010: "invalid parameters",

		1100: geo.ErrMalformedKey.Error(),

		1200: store.ErrNoMonthlyData.Error(),
	}

	errorInternalServer = errorJSON(999)

	errorInvalidParameters = errorJSON(1010)

	errorMalformedKey = errorJSON(1100)

	errorNoMonthlyData = errorJSON(1200)
)

type ErrorResponse struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

// errorJSON converts an error code to a standardized error object
func errorJSON(code int64) ErrorResponse {
	var message string
	if msg, ok := errorMessageMap[code]; ok {
		message = msg
	} else {
		message = "unknown"
	}

	return ErrorResponse{
		Code:    code,
		Message: message,
	}
}
