package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/waste-pickup-service/internal/model"
)

const testSecret = "test-secret"

func signed(t *testing.T, claims jwt.MapClaims) string {
    t.Helper()
    s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
    if err != nil {
        t.Fatal(err)
    }
    return s
}

// serve runs a request through JWTAuth and RequireRole(allowed...) and
// returns the recorder plus whatever the final handler saw.
func serve(t *testing.T, token string, allowed ...model.Role) (*httptest.ResponseRecorder, uint64, string) {
    t.Helper()
    e := echo.New()
    var gotID uint64
    var gotRole string
    h := func(c echo.Context) error {
        gotID, _ = c.Get(ContextUserID).(uint64)
        gotRole, _ = c.Get(ContextRole).(string)
        return c.NoContent(http.StatusNoContent)
    }
    e.GET("/p", h, JWTAuth(testSecret), RequireRole(allowed...))

    req := httptest.NewRequest(http.MethodGet, "/p", nil)
    if token != "" {
        req.Header.Set("Authorization", "Bearer "+token)
    }
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec, gotID, gotRole
}

func TestJWTAuthAcceptsNumericAndNamedClaims(t *testing.T) {
    exp := time.Now().Add(time.Hour).Unix()
    cases := []struct {
        name   string
        claims jwt.MapClaims
        role   string
    }{
        {"name", jwt.MapClaims{"sub": 7, "role": "customer", "exp": exp}, model.RoleNameCustomer},
        {"numeric role", jwt.MapClaims{"sub": "7", "role": 0, "exp": exp}, model.RoleNameCustomer},
    }
    for _, c := range cases {
        rec, id, role := serve(t, signed(t, c.claims), model.RoleCustomer)
        if rec.Code != http.StatusNoContent {
            t.Fatalf("%s: status %d body %s", c.name, rec.Code, rec.Body.String())
        }
        if id != 7 || role != c.role {
            t.Fatalf("%s: got id=%d role=%q", c.name, id, role)
        }
    }
}

func TestJWTAuthRejects(t *testing.T) {
    exp := time.Now().Add(time.Hour).Unix()
    wrongKey, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": 7, "role": "CUSTOMER", "exp": exp}).SignedString([]byte("other"))
    cases := map[string]string{
        "missing":    "",
        "garbage":    "not-a-jwt",
        "wrong key":  wrongKey,
        "expired":    signed(t, jwt.MapClaims{"sub": 7, "role": "CUSTOMER", "exp": time.Now().Add(-time.Hour).Unix()}),
        "no subject": signed(t, jwt.MapClaims{"role": "CUSTOMER", "exp": exp}),
        "zero sub":   signed(t, jwt.MapClaims{"sub": 0, "role": "CUSTOMER", "exp": exp}),
        "bad role":   signed(t, jwt.MapClaims{"sub": 7, "role": "OWNER", "exp": exp}),
    }
    for name, tok := range cases {
        if rec, _, _ := serve(t, tok, model.RoleCustomer); rec.Code != http.StatusUnauthorized {
            t.Errorf("%s: status %d, want 401", name, rec.Code)
        }
    }
}

func TestRequireRoleForbidsOtherRoles(t *testing.T) {
    tok := signed(t, jwt.MapClaims{"sub": 9, "role": "COLLECTOR", "exp": time.Now().Add(time.Hour).Unix()})
    if rec, _, _ := serve(t, tok, model.RoleSuperAdmin); rec.Code != http.StatusForbidden {
        t.Fatalf("status %d, want 403", rec.Code)
    }
    if rec, _, _ := serve(t, tok, model.RoleSuperAdmin, model.RoleCollector); rec.Code != http.StatusNoContent {
        t.Fatalf("status %d, want 204", rec.Code)
    }
}
