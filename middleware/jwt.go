package middleware

import (
	"fmt"
	"strings"
	"time"

	"innerspark/config"
	"innerspark/logger"
	"innerspark/models"
	"innerspark/revocation"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// GenerateJWT generates a signed token for the user
func GenerateJWT(user *models.User) (string, error) {
	ttl := time.Duration(config.AppConfig.JWTTTLHours) * time.Hour
	now := time.Now()
	claims := jwt.MapClaims{
		"userId": user.ID,
		"name":   user.Name,
		"role":   user.Role,
		"email":  user.Email,
		"jti":    uuid.NewString(),
		"iat":    now.Unix(),
		"exp":    now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.JWTKey))
}

func parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.AppConfig.JWTKey), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["userId"] == nil {
		return nil, fmt.Errorf("invalid token payload")
	}
	return claims, nil
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	return authHeader[len("Bearer "):], true
}

// storeClaims puts the identity into the request context
func storeClaims(c *fiber.Ctx, claims jwt.MapClaims) {
	userID, _ := claims["userId"].(float64) // JSON numbers decode as float64
	c.Locals("userId", uint(userID))
	if role, ok := claims["role"].(string); ok {
		c.Locals("role", role)
	}
	if name, ok := claims["name"].(string); ok {
		c.Locals("name", name)
	}
	if email, ok := claims["email"].(string); ok {
		c.Locals("email", email)
	}
	if jti, ok := claims["jti"].(string); ok {
		c.Locals("jti", jti)
	}
	if exp, ok := claims["exp"].(float64); ok {
		c.Locals("tokenExp", time.Unix(int64(exp), 0))
	}
}

func isRevoked(c *fiber.Ctx, claims jwt.MapClaims) bool {
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return false
	}
	revoked, err := revocation.Default.IsRevoked(c.UserContext(), jti)
	if err != nil {
		// fail closed: an unreachable deny-list must not resurrect logged-out tokens
		logger.Log.Warn("revocation lookup failed", "error", err)
		return true
	}
	return revoked
}

// JWTMiddleware rejects requests without a valid, unrevoked bearer token
func JWTMiddleware(c *fiber.Ctx) error {
	if c.Get("Authorization") == "" {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Missing or invalid Authorization header", nil)
	}
	tokenString, ok := bearerToken(c)
	if !ok {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid Authorization header format", nil)
	}

	claims, err := parseToken(tokenString)
	if err != nil {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid or expired token", nil)
	}
	if isRevoked(c, claims) {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Session has ended, please log in again", nil)
	}

	storeClaims(c, claims)
	return c.Next()
}

// OptionalJWT attaches the identity when a valid token is present and never rejects.
func OptionalJWT(c *fiber.Ctx) error {
	if tokenString, ok := bearerToken(c); ok {
		if claims, err := parseToken(tokenString); err == nil && !isRevoked(c, claims) {
			storeClaims(c, claims)
		}
	}
	return c.Next()
}

// CurrentUserID returns the authenticated user id, if any
func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("userId").(uint)
	return id, ok && id > 0
}

// CurrentRole returns the role carried by the token
func CurrentRole(c *fiber.Ctx) string {
	role, _ := c.Locals("role").(string)
	return role
}
