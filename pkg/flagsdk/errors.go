package flagsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/flagtree/pkg/httpx"
)

// Error codes carried in the "error" field of every failure response.
const (
	ErrorCodeInvalidRequest    = "invalid_request"
	ErrorCodeFlagNotFound      = "flag_not_found"
	ErrorCodeParentNotFound    = "parent_not_found"
	ErrorCodeDuplicateFlagName = "duplicate_flag_name"
	ErrorCodeCycleDetected     = "cycle_detected"
	ErrorCodeInvalidToken      = "invalid_token"
	ErrorCodeInsufficientScope = "insufficient_scope"
	ErrorCodeFeatureDisabled   = "feature_disabled"
	ErrorCodeRateLimitExceeded = "rate_limit_exceeded"
	ErrorCodeServerError       = "server_error"
)

// APIError is a decoded failure response. Two APIErrors match under
// errors.Is when their codes are equal, so callers can test against the
// predefined values below.
type APIError struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is matches on Code only.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Code == e.Code
}

// WriteError writes e as a JSON response. Handlers use it so the server and
// the SDK agree on the shape.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteError(w, e.StatusCode, e.Code, e.Description)
}

// WithDescription returns a copy of e with a specific description.
func (e *APIError) WithDescription(desc string) *APIError {
	c := *e
	c.Description = desc
	return &c
}

var (
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed",
	}

	ErrFlagNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeFlagNotFound,
		Description: "flag not found",
	}

	ErrParentNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeParentNotFound,
		Description: "parent flag not found",
	}

	ErrDuplicateFlagName = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeDuplicateFlagName,
		Description: "a flag with this name already exists",
	}

	// ErrCycleDetected rejects a placement that would loop the hierarchy or
	// exceed the depth bound.
	ErrCycleDetected = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeCycleDetected,
		Description: "the placement would create a cycle",
	}

	ErrInvalidToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidToken,
		Description: "the access token is missing, invalid or expired",
	}

	ErrInsufficientScope = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeInsufficientScope,
		Description: "the access token does not have the required scopes",
	}

	ErrRateLimitExceeded = &APIError{
		StatusCode:  http.StatusTooManyRequests,
		Code:        ErrorCodeRateLimitExceeded,
		Description: "too many requests",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)

// parseErrorResponse turns a non-2xx response into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp httpx.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
