package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/services/jwttoken"
)

type UserIDKey struct{}

const TokenCookieName = "token"

func Auth(tokens *jwttoken.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
			tokenCookie, err := req.Cookie(TokenCookieName)
			if err != nil {
				if errors.Is(err, http.ErrNoCookie) {
					resp.WriteHeader(http.StatusUnauthorized)
					return
				}

				resp.WriteHeader(http.StatusInternalServerError)
				return
			}

			userID, err := tokens.Parse(tokenCookie.Value)
			if err != nil {
				resp.WriteHeader(http.StatusUnauthorized)
				return
			}

			req = req.WithContext(context.WithValue(req.Context(), UserIDKey{}, userID))

			next.ServeHTTP(resp, req)
		})
	}
}

func UserID(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey{}).(string)
	return userID
}
