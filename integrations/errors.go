package integrations

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNoContent matches any RouteError carrying http.StatusNoContent, which
// is also used for 200 responses with an empty body.
var ErrNoContent = errors.New("no content")

// AuthError is returned when Wekan rejects the login request.
type AuthError struct {
	Route  string
	Status int
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("login failed on route '%s' with status %d: %s", e.Route, e.Status, e.Reason)
}

// RouteError is returned when a read route answers with anything but 200.
type RouteError struct {
	Route  string
	Status int
}

func (e *RouteError) Error() string {
	return fmt.Sprintf("error captured on route '%s' with status %d", e.Route, e.Status)
}

func (e *RouteError) Is(target error) bool {
	return target == ErrNoContent && e.Status == http.StatusNoContent
}
