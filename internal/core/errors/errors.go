package errors

// ErrorResponse is the JSON body returned on every failed request.
// Internal diagnostic detail stays in server-side logs; the client only
// sees the message and, for validation failures, the offending fields.
type ErrorResponse struct {
	Error         string   `json:"error"`
	MissingFields []string `json:"missing_fields,omitempty"`
}
