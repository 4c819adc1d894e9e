package handler

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/middleware"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/models"
	"go.uber.org/zap"
)

const maxLoginLength = 64

var (
	errMissingCredentials = errors.New("login and password are required")
	errLoginTooLong       = fmt.Errorf("login is longer than %d characters", maxLoginLength)
	errLoginWhitespace    = errors.New("login must not contain whitespace")
)

var credentialsValidator = newCredentialsValidator()

func newCredentialsValidator() *validator.Validate {
	v := validator.New()

	if err := v.RegisterValidation("nospace", func(fl validator.FieldLevel) bool {
		return strings.IndexFunc(fl.Field().String(), unicode.IsSpace) < 0
	}); err != nil {
		panic(err)
	}

	return v
}

// decodeCredentials reads a login request. Surrounding whitespace is dropped
// from the login so " alice" and "alice" are the same account.
func decodeCredentials(req *http.Request) (models.AuthorizationRequest, error) {
	var credentials models.AuthorizationRequest

	if err := json.NewDecoder(req.Body).Decode(&credentials); err != nil {
		return models.AuthorizationRequest{}, fmt.Errorf("cannot decode request to json: %w", err)
	}

	credentials.Login = strings.TrimSpace(credentials.Login)

	if err := credentialsValidator.Struct(credentials); err != nil {
		return models.AuthorizationRequest{}, credentialsError(err)
	}

	return credentials, nil
}

func credentialsError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	switch fieldErrs[0].Tag() {
	case "max":
		return errLoginTooLong
	case "nospace":
		return errLoginWhitespace
	default:
		return errMissingCredentials
	}
}

func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// startSession issues a token for userID and stores it in a cookie that
// expires with the token.
func (h *Handler) startSession(res http.ResponseWriter, userID string) {
	accessToken, err := h.tokens.Generate(userID)
	if err != nil {
		zap.L().Error("error generate token", zap.String("user_id", userID), zap.Error(err))

		res.WriteHeader(http.StatusInternalServerError)
		return
	}

	http.SetCookie(res, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   int(h.tokens.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	res.WriteHeader(http.StatusOK)
}
