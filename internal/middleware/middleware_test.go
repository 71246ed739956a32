package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func setupAuthTest() (http.Handler, *string) {
	var subject string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, _ = r.Context().Value(SubjectKey).(string)
		w.WriteHeader(http.StatusNoContent)
	})
	protected := func(r *http.Request) bool { return r.Method == http.MethodPost }
	return RequireToken(testSecret, protected)(next), &subject
}

func TestRequireToken(t *testing.T) {
	valid := signToken(t, testSecret, jwt.MapClaims{"sub": "uploader-7", "exp": time.Now().Add(time.Hour).Unix()})
	expired := signToken(t, testSecret, jwt.MapClaims{"sub": "uploader-7", "exp": time.Now().Add(-time.Hour).Unix()})
	wrongKey := signToken(t, "other-secret", jwt.MapClaims{"sub": "uploader-7"})

	cases := []struct {
		name    string
		method  string
		header  string
		status  int
		subject string
		body    string
	}{
		{name: "unprotected passes", method: http.MethodGet, status: http.StatusNoContent},
		{name: "preflight passes", method: http.MethodOptions, status: http.StatusNoContent},
		{name: "valid token", method: http.MethodPost, header: "Bearer " + valid, status: http.StatusNoContent, subject: "uploader-7"},
		{name: "missing header", method: http.MethodPost, status: http.StatusUnauthorized, body: "authorization header required"},
		{name: "wrong scheme", method: http.MethodPost, header: "Basic " + valid, status: http.StatusUnauthorized, body: "invalid authorization header format"},
		{name: "expired", method: http.MethodPost, header: "Bearer " + expired, status: http.StatusUnauthorized, body: "invalid or expired token"},
		{name: "wrong key", method: http.MethodPost, header: "Bearer " + wrongKey, status: http.StatusUnauthorized, body: "invalid or expired token"},
		{name: "garbage", method: http.MethodPost, header: "Bearer abc.def", status: http.StatusUnauthorized, body: "invalid or expired token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, subject := setupAuthTest()
			r := httptest.NewRequest(tc.method, "/api?action=upload", nil)
			if tc.header != "" {
				r.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()

			h.ServeHTTP(w, r)

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.subject, *subject)
			if tc.body != "" {
				assert.JSONEq(t, `{"success":false,"error":"`+tc.body+`"}`, w.Body.String())
				assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestRequireToken_RejectsNonHMAC(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "x"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	h, _ := setupAuthTest()
	r := httptest.NewRequest(http.MethodPost, "/api?action=upload", nil)
	r.Header.Set("Authorization", "Bearer "+signed)
	w := httptest.NewRecorder()

	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogger_PassesStatusThrough(t *testing.T) {
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	w := httptest.NewRecorder()

	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api?action=health", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestDeadline_BoundsContextWithoutWriting(t *testing.T) {
	var deadline time.Time
	var ctxErr error
	h := Deadline(10 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, _ = r.Context().Deadline()
		<-r.Context().Done()
		ctxErr = r.Context().Err()
		w.WriteHeader(http.StatusInternalServerError)
	}))
	w := httptest.NewRecorder()

	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api?action=cc", nil))

	assert.False(t, deadline.IsZero())
	assert.ErrorIs(t, ctxErr, context.DeadlineExceeded)
	// only the handler's own status reaches the client
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
