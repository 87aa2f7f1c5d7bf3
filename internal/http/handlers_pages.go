package httpx

import (
	"fmt"
	"net/http"
)

// Home is the signed-in landing page.
// GET /.
func Home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		// RequireUser guards this route; reaching here means the chain was misconfigured.
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	w.WriteHeader(http.StatusOK)
	if p.Role == "" {
		_, _ = fmt.Fprintf(w, "Signed in as %s (no role assigned)\n", p.Email)
		return
	}
	_, _ = fmt.Fprintf(w, "Signed in as %s (%s)\n", p.Email, p.Role)
}

// Restricted is where callers without a required role land.
func Restricted(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, "Access Denied: you don't have permission to access this area", http.StatusForbidden)
}
