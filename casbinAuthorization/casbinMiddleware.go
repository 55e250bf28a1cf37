package casbinAuthorization

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/casbin/casbin"
	"github.com/cristalhq/jwt/v4"
	"github.com/sirupsen/logrus"
)

var jwtKey = []byte(os.Getenv("SECRET_KEY"))

var verifier, _ = jwt.NewVerifierHS(jwt.HS256, jwtKey)

func parseToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse([]byte(tokenString), verifier)
}

func extractRole(r *http.Request) (string, error) {
	bearer := r.Header.Get("Authorization")
	if bearer == "" {
		return "Unauthenticated", nil
	}

	bearerToken := strings.Split(bearer, "Bearer ")
	if len(bearerToken) != 2 {
		return "", errors.New("invalid token format")
	}

	token, err := parseToken(bearerToken[1])
	if err != nil {
		return "", err
	}

	var claims map[string]string
	if err := jwt.ParseClaims(token.Bytes(), verifier, &claims); err != nil {
		return "", err
	}
	return claims["role"], nil
}

func CasbinMiddleware(e *casbin.Enforcer, logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			role, err := extractRole(r)
			if err != nil {
				logger.Warn("unauthorized access attempt")
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			allowed, err := e.EnforceSafe(role, r.URL.Path, r.Method)
			if err != nil {
				logger.WithError(err).Error("authorization policy enforcement failed")
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if !allowed {
				logger.WithFields(logrus.Fields{
					"role": role,
					"path": r.URL.Path,
				}).Warn("forbidden access attempt")
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}
