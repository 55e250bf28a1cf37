package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/cristalhq/jwt/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	errs "github.com/JustinVillacorta/boardingHouse-repo-sub000/errors"
)

var (
	jwtKey      = []byte(os.Getenv("SECRET_KEY"))
	verifier, _ = jwt.NewVerifierHS(jwt.HS256, jwtKey)
)

func jsonResponse(payload interface{}, writer http.ResponseWriter) {
	writer.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(writer).Encode(payload); err != nil {
		http.Error(writer, err.Error(), http.StatusInternalServerError)
	}
}

// writeError maps the error taxonomy onto transport status codes.
func writeError(writer http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errs.KindOf(err) {
	case errs.KindNotFound:
		status = http.StatusNotFound
	case errs.KindValidation:
		status = http.StatusBadRequest
	case errs.KindCapacityExceeded, errs.KindDuplicateAssignment, errs.KindInvalidStateTransition, errs.KindConflict:
		status = http.StatusConflict
	}
	http.Error(writer, err.Error(), status)
}

func ExtractTraceInfoMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// usernameFromRequest pulls the authenticated username out of the bearer
// token, for createdBy/recordedBy audit fields. Unauthenticated requests
// yield an empty string; the casbin middleware already rejected those that
// needed a role.
func usernameFromRequest(r *http.Request) string {
	bearer := r.Header.Get("Authorization")
	parts := strings.Split(bearer, "Bearer ")
	if len(parts) != 2 {
		return ""
	}
	token, err := jwt.Parse([]byte(parts[1]), verifier)
	if err != nil {
		return ""
	}
	var claims map[string]string
	if err := jwt.ParseClaims(token.Bytes(), verifier, &claims); err != nil {
		return ""
	}
	return claims["username"]
}
