package handler

import (
	"fmt"
	"net/http"

	"go-crud-api/internal/middleware"
)

// DemoHandler serves the greeting endpoints used to exercise each access level.
type DemoHandler struct{}

func NewDemoHandler() *DemoHandler {
	return &DemoHandler{}
}

func (h *DemoHandler) Public(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "This is a public endpoint")
}

func (h *DemoHandler) Private(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, h.greeting(r, "private"))
}

func (h *DemoHandler) Secure(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, h.greeting(r, "secure"))
}

func (h *DemoHandler) Admin(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, h.greeting(r, "admin"))
}

func (h *DemoHandler) greeting(r *http.Request, area string) string {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		return fmt.Sprintf("This is a %s endpoint", area)
	}
	return fmt.Sprintf("Hello, %s! This is a %s endpoint", principal.Username, area)
}
