package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/blogicum/config"
	"github.com/cppla/blogicum/models"
	"github.com/cppla/blogicum/utils"
)

type fakeUsers map[uint]*models.User

func (f fakeUsers) FindByID(id uint) (*models.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, assert.AnError
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func whoAmI(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusOK, gin.H{"user": ""})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user.Username})
}

func newAuthRouter(t *testing.T) (*gin.Engine, *utils.TokenService, *utils.TokenBlacklist) {
	t.Helper()
	tokens := utils.NewTokenService("test-secret-key", time.Hour)
	blacklist := utils.NewTokenBlacklist(nil)
	users := fakeUsers{1: {ID: 1, Username: "leo"}}

	router := setupTestRouter()
	router.Use(Authenticate(tokens, blacklist, users))
	router.GET("/me", whoAmI)
	router.POST("/write", CSRFProtect(), whoAmI)
	router.GET("/private", LoginRequired("/auth/login"), whoAmI)
	router.GET("/admin", AdminRequired(config.AppConfig{AdminUsernames: []string{"leo"}}), whoAmI)
	return router, tokens, blacklist
}

func TestAuthenticate_BearerToken(t *testing.T) {
	router, tokens, _ := newAuthRouter(t)
	token, err := tokens.Generate(1, "leo")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":"leo"}`, w.Body.String())
}

func TestAuthenticate_Cookie(t *testing.T) {
	router, tokens, _ := newAuthRouter(t)
	token, _ := tokens.Generate(1, "leo")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/me", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
	router.ServeHTTP(w, req)

	assert.JSONEq(t, `{"user":"leo"}`, w.Body.String())
}

func TestAuthenticate_IgnoresBadTokens(t *testing.T) {
	router, tokens, blacklist := newAuthRouter(t)
	revoked, _ := tokens.Generate(1, "leo")
	blacklist.Revoke(revoked, time.Now().Add(time.Hour))
	unknownUser, _ := tokens.Generate(42, "ghost")

	for name, header := range map[string]string{
		"garbage":      "Bearer not-a-jwt",
		"bad scheme":   "Token abc",
		"revoked":      "Bearer " + revoked,
		"unknown user": "Bearer " + unknownUser,
	} {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/me", nil)
			req.Header.Set("Authorization", header)
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, `{"user":""}`, w.Body.String())
		})
	}
}

func TestLoginRequired_RedirectsWithNext(t *testing.T) {
	router, _, _ := newAuthRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/private?x=1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/auth/login?next=%2Fprivate%3Fx%3D1", w.Header().Get("Location"))
}

func TestAdminRequired_HidesRoute(t *testing.T) {
	router, tokens, _ := newAuthRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/admin", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	token, _ := tokens.Generate(1, "leo")
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCSRFProtect(t *testing.T) {
	router, tokens, _ := newAuthRouter(t)
	token, _ := tokens.Generate(1, "leo")

	cases := []struct {
		name   string
		bearer bool
		cookie string
		header string
		want   int
	}{
		{"bearer is exempt", true, "", "", http.StatusOK},
		{"cookie without csrf", false, "", "", http.StatusForbidden},
		{"cookie with mismatched header", false, "abc", "xyz", http.StatusForbidden},
		{"cookie with matching header", false, "abc", "abc", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("POST", "/write", nil)
			if tc.bearer {
				req.Header.Set("Authorization", "Bearer "+token)
			} else {
				req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: CSRFCookie, Value: tc.cookie})
			}
			if tc.header != "" {
				req.Header.Set(CSRFHeader, tc.header)
			}
			router.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestClock_SameInstantPerRequest(t *testing.T) {
	fixed := time.Date(2025, 1, 4, 15, 0, 0, 0, time.FixedZone("MSK", 3*60*60))
	router := setupTestRouter()
	router.Use(Clock(func() time.Time { return fixed }))

	var first, second time.Time
	router.GET("/", func(c *gin.Context) {
		first = RequestTime(c)
		time.Sleep(time.Millisecond)
		second = RequestTime(c)
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, first, second)
	assert.True(t, first.Equal(fixed))
	assert.Equal(t, time.UTC, first.Location())
}

func TestRateLimit(t *testing.T) {
	router := setupTestRouter()
	router.Use(RateLimit(2))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/", nil)
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	// burst of one, refill every 30s
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}
