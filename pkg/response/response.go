package response

// Response is the standard JSON error envelope. Successful requests answer
// with their DTO directly.
type Response struct {
	Success bool       `json:"success"`
	Error   *ErrorData `json:"error,omitempty"`
	// ErrorMessage mirrors Error.Message for clients reading a flat field
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// ErrorData describes a failed request
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func Error(code, message string) Response {
	return Response{
		Success: false,
		Error: &ErrorData{
			Code:    code,
			Message: message,
		},
		ErrorMessage: message,
	}
}

func InternalError(message string) Response {
	return Error("INTERNAL_ERROR", message)
}

func BadRequest(message string) Response {
	return Error("BAD_REQUEST", message)
}

func NotFound(message string) Response {
	return Error("NOT_FOUND", message)
}
