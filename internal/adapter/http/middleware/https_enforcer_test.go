package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/gomega"
	"go.uber.org/zap"
)

func TestHTTPSEnforcer_Disabled(t *testing.T) {
	RegisterTestingT(t)

	router := newTestRouter(NewHTTPSEnforcer(false, zap.NewNop()).Middleware())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "http://todo.example.com/api/todos", nil)
	router.ServeHTTP(w, req)

	Expect(w.Code).To(Equal(http.StatusOK))
}

func TestHTTPSEnforcer_Redirects(t *testing.T) {
	RegisterTestingT(t)

	enforcer := NewHTTPSEnforcer(true, zap.NewNop())
	router := newTestRouter(enforcer.Middleware())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "http://todo.example.com/api/todos", nil)
	router.ServeHTTP(w, req)

	Expect(enforcer.IsEnabled()).To(BeTrue())
	Expect(w.Code).To(Equal(http.StatusMovedPermanently))
	Expect(w.Header().Get("Location")).To(Equal("https://todo.example.com/api/todos"))
}

func TestHTTPSEnforcer_ForwardedProtoAndLocalhost(t *testing.T) {
	RegisterTestingT(t)

	router := newTestRouter(NewHTTPSEnforcer(true, zap.NewNop()).Middleware())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "http://todo.example.com/api/todos", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	router.ServeHTTP(w, req)

	Expect(w.Code).To(Equal(http.StatusOK))

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "http://localhost:8080/api/todos", nil)
	router.ServeHTTP(w, req)

	Expect(w.Code).To(Equal(http.StatusOK))
}

func TestHTTPSEnforcer_RedirectKeepsQuery(t *testing.T) {
	RegisterTestingT(t)

	router := newTestRouter(NewHTTPSEnforcer(true, zap.NewNop()).Middleware())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "http://todo.example.com/api/todos?completed=true", nil)
	router.ServeHTTP(w, req)

	Expect(w.Code).To(Equal(http.StatusMovedPermanently))
	Expect(w.Header().Get("Location")).To(Equal("https://todo.example.com/api/todos?completed=true"))
}
