package requesting

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// ErrTimeout reports a request that exceeded its deadline.
var ErrTimeout = errors.New("request timed out")

// StatusError is a completed request with a non-2xx status.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status code %d", e.Code)
	}
	return fmt.Sprintf("server returned status code %d: %s", e.Code, e.Message)
}

func isValidResponse(code int) bool {
	return code >= 200 && code <= 299
}

// CheckResponse classifies the result of client.Do. On a non-2xx status the
// body is read, closed and kept as the error message.
func CheckResponse(resp *http.Response, err error) (*http.Response, error) {
	if err != nil {
		if os.IsTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("connection error: %w", err)
	}

	if !isValidResponse(resp.StatusCode) {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Code: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	return resp, nil
}
