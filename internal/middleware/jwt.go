package middleware // middleware holds the echo middleware shared by every route group

import (
    "net/http" // HTTP status codes for responses
    "strconv"  // parse a string subject claim
    "strings"  // prefix checking and trimming

    "github.com/golang-jwt/jwt/v5" // parse and verify HS256 tokens
    "github.com/labstack/echo/v4"  // middleware signature and context

    "github.com/iliyamo/waste-pickup-service/internal/model" // role names
)

// Context keys set by JWTAuth.
const (
    ContextUserID = "user_id" // uint64 id of the authenticated user
    ContextRole   = "role"    // canonical role name, e.g. "CUSTOMER"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and stores the subject and role claims in the request context.  Tokens
// are issued by the external session provider (or cmd/token in
// development) with the same shared secret.
//
// The subject may be encoded as a JSON number or a decimal string.  The
// role may be the numeric users.role value or its name; either way the
// canonical name is stored so RequireRole only deals with strings.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            // Reject anything not signed with HMAC so a token cannot pick
            // its own verification method.
            tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                    return nil, echo.ErrUnauthorized
                }
                return []byte(secret), nil
            })
            if err != nil || !tok.Valid {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }
            claims, ok := tok.Claims.(jwt.MapClaims)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }

            uid, ok := subjectID(claims["sub"])
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid subject"})
            }
            role, ok := roleName(claims["role"])
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid role"})
            }

            c.Set(ContextUserID, uid)
            c.Set(ContextRole, role)
            return next(c)
        }
    }
}

// subjectID converts the "sub" claim into a positive user id.
func subjectID(v interface{}) (uint64, bool) {
    switch t := v.(type) {
    case float64:
        if t >= 1 && t == float64(uint64(t)) {
            return uint64(t), true
        }
    case string:
        if n, err := strconv.ParseUint(strings.TrimSpace(t), 10, 64); err == nil && n > 0 {
            return n, true
        }
    }
    return 0, false
}

// roleName converts the "role" claim into a canonical role name.
func roleName(v interface{}) (string, bool) {
    var (
        r  model.Role
        ok bool
    )
    switch t := v.(type) {
    case float64:
        r, ok = model.ParseRole(strconv.FormatFloat(t, 'f', -1, 64))
    case string:
        r, ok = model.ParseRole(t)
    }
    if !ok {
        return "", false
    }
    return r.Name(), true
}
