package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/Comisiones-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Comisiones-api/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "comisiones-api-test"
	testExpMin    = 60
)

// tokenForRole genera un JWT con el rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, role, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// getRecords lanza GET /api/kpi/records contra el router real con el header indicado.
func getRecords(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/kpi/records?user_id=ana&period=2025-07", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireRole sobre el grupo /api/kpi
// ──────────────────────────────────────────────────────────────────────────────

func TestGrupoKpi_ControlDeAcceso(t *testing.T) {
	tokenSinRol, err := pkgjwt.Generate(testJWTSecret, testUserID, "", testIssuer, testExpMin)
	require.NoError(t, err)

	cases := map[string]struct {
		auth      func(t *testing.T) string
		status    int
		code      string
		llamaCaso bool
	}{
		"admin accede":       {auth: func(t *testing.T) string { return tokenForRole(t, "admin") }, status: http.StatusOK, llamaCaso: true},
		"gerente accede":     {auth: func(t *testing.T) string { return tokenForRole(t, "gerente") }, status: http.StatusOK, llamaCaso: true},
		"rol en mayúsculas":  {auth: func(t *testing.T) string { return tokenForRole(t, "ADMIN") }, status: http.StatusOK, llamaCaso: true},
		"vendedor bloqueado": {auth: func(t *testing.T) string { return tokenForRole(t, "vendedor") }, status: http.StatusForbidden, code: "FORBIDDEN"},
		"token sin rol":      {auth: func(*testing.T) string { return "Bearer " + tokenSinRol }, status: http.StatusUnauthorized, code: "MISSING_ROLE"},
		"sin header":         {auth: func(*testing.T) string { return "" }, status: http.StatusUnauthorized},
		"token malformado":   {auth: func(*testing.T) string { return "Bearer token.invalido.aqui" }, status: http.StatusUnauthorized},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			svc := &fakeKpiService{record: registroAna()}
			resp := getRecords(t, buildKpiApp(svc), tc.auth(t))
			defer resp.Body.Close()

			assert.Equal(t, tc.status, resp.StatusCode)
			if tc.code != "" {
				body, _ := io.ReadAll(resp.Body)
				assert.Contains(t, string(body), tc.code)
			}
			if tc.llamaCaso {
				assert.Equal(t, "ana", svc.gotUserID)
			} else {
				assert.Empty(t, svc.gotUserID, "el caso de uso no debe invocarse")
			}
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware: extracción de claims del token
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_ExtractaClaims(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": apphttp.GetUserID(c),
			"role":    apphttp.GetRole(c),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", tokenForRole(t, "admin"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, "admin", body["role"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests JWT pkg: integridad del generate/parse con role
// ──────────────────────────────────────────────────────────────────────────────

func TestJWT_GenerateAndParse_ConRole(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, "gerente", testIssuer, testExpMin)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	userID, role, err := pkgjwt.Parse(testJWTSecret, tok)
	require.NoError(t, err)

	assert.Equal(t, testUserID, userID)
	assert.Equal(t, "gerente", role)
}

func TestJWT_TokenExpirado_RetornaError(t *testing.T) {
	// Token con expiración -1 minuto (ya expirado)
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, "admin", testIssuer, -1)
	require.NoError(t, err)

	_, _, err = pkgjwt.Parse(testJWTSecret, tok)
	assert.Error(t, err, "token expirado debe retornar error")
}

func TestJWT_SecretIncorrecto_RetornaError(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, "admin", testIssuer, testExpMin)
	require.NoError(t, err)

	_, _, err = pkgjwt.Parse("otro-secret-completamente-distinto", tok)
	assert.Error(t, err, "secret incorrecto debe invalidar el token")
}
