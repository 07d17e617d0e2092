package handler

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

// newCtx builds an Echo context for invoking a handler directly,
// bypassing the router and middleware.
func newCtx(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var req = httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

// asSubject marks the context as authenticated, the way RequireAuth and
// OptionalAuth do after verifying a token.
func asSubject(c echo.Context, subjectID string) {
	c.Set("subject_id", subjectID)
}
