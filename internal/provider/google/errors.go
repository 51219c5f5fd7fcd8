package google

import (
	"errors"
	"fmt"
	"net/http"

	ai "github.com/spetersoncode/tablebridge"
	"google.golang.org/genai"
)

// BlockedError indicates the prompt was blocked by content filtering.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("google: request blocked: %s", e.Reason)
}

// wrapError categorizes genai API errors. The API does not expose headers,
// so no Retry-After hint is available.
func wrapError(err error) error {
	var apiErr genai.APIError
	if err == nil || !errors.As(err, &apiErr) {
		return err
	}

	code := apiErr.Code
	msg := "google: " + apiErr.Status
	switch {
	case code == http.StatusTooManyRequests, code >= 500 && code < 600:
		return ai.NewTransientError(msg, code, err)
	case code == http.StatusBadRequest, code == http.StatusNotFound, code == http.StatusUnprocessableEntity:
		return ai.NewUserInputError(msg, code, err)
	default:
		return ai.NewPermanentError(msg, code, err)
	}
}
