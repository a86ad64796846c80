package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/golang-jwt/jwt/v4"
	"github.com/hourlyx/hourlyx-api/internal/authz"
	"github.com/hourlyx/hourlyx-api/internal/models"
	"github.com/hourlyx/hourlyx-api/internal/repository"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type AuthHandler struct {
	profiles    repository.ProfileRepository
	memberships repository.MembershipRepository
	jwtSecret   string
	logger      zerolog.Logger
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewAuthHandler(profiles repository.ProfileRepository, memberships repository.MembershipRepository, jwtSecret string, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		profiles:    profiles,
		memberships: memberships,
		jwtSecret:   jwtSecret,
		logger:      logger,
	}
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if req.Email == "" {
		http.Error(w, "Email is required", http.StatusBadRequest)
		return
	}
	if problems := validatePassword(req.Password); len(problems) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "password does not meet requirements", "details": problems})
		return
	}

	profile, err := h.profiles.CreateProfile(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			http.Error(w, "An account with this email already exists", http.StatusConflict)
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, profile)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	profile, err := h.profiles.AuthenticateProfile(r.Context(), req.Email, req.Password)
	if err != nil {
		http.Error(w, "Authentication failed", http.StatusUnauthorized)
		return
	}

	claims := jwt.MapClaims{
		"sub":      profile.ID,
		"email":    profile.Email,
		"verified": profile.EmailVerified,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
	}

	// Organization claims are present only once the identity is assigned.
	membership, err := h.memberships.GetMembershipByUserID(r.Context(), profile.ID)
	switch {
	case err == nil:
		claims["oid"] = membership.OrganizationID
		claims["role"] = string(membership.Role)
	case errors.Is(err, sql.ErrNoRows):
	default:
		writeError(w, err)
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": tokenString})
}

func (h *AuthHandler) JWTMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid authorization format", http.StatusUnauthorized)
			return
		}
		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(h.jwtSecret), nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !claims.VerifyExpiresAt(time.Now().Unix(), true) {
			http.Error(w, "Token expired", http.StatusUnauthorized)
			return
		}

		userID, _ := claims["sub"].(string)
		if userID == "" {
			http.Error(w, "Missing subject claim", http.StatusUnauthorized)
			return
		}
		email, _ := claims["email"].(string)
		verified, _ := claims["verified"].(bool)
		orgID, _ := claims["oid"].(string)
		roleStr, _ := claims["role"].(string)

		ctx := authz.WithIdentity(r.Context(), userID, email, verified, orgID, models.Role(roleStr))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// validatePassword applies the signup password policy: minimum eight
// characters with upper, lower, digit and special.
func validatePassword(password string) []string {
	var problems []string
	if len(password) < 8 {
		problems = append(problems, "password must be at least 8 characters")
	}
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			hasUpper = true
		case unicode.IsLower(c):
			hasLower = true
		case unicode.IsDigit(c):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}
	if !hasUpper {
		problems = append(problems, "password must contain an uppercase letter")
	}
	if !hasLower {
		problems = append(problems, "password must contain a lowercase letter")
	}
	if !hasDigit {
		problems = append(problems, "password must contain a digit")
	}
	if !hasSpecial {
		problems = append(problems, "password must contain a special character")
	}
	return problems
}
