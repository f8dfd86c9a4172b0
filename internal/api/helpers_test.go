package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/mocks"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/router"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

const testSecret = "api-test-secret"

type testAPI struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	auth   *service.AuthService
	images *mocks.MemoryImageStore
}

// newTestAPI wires the real services over an in-memory database.
// creationLimit of zero disables the creation rate limit.
func newTestAPI(t *testing.T, creationLimit int) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.NewTestDB(t)
	log := zap.NewNop().Sugar()
	images := mocks.NewMemoryImageStore()
	auth := service.NewAuthService(db, testSecret, time.Hour, mocks.NewMemoryDenylist())

	var creation *middleware.RateLimiter
	if creationLimit > 0 {
		creation = middleware.NewRecipeCreationRateLimiter(mocks.NewMemoryCounter(), creationLimit, time.Hour, log)
	}

	cfg := &config.Config{
		Environment: config.Test,
		CORSOrigins: []string{"http://localhost:3000"},
		PageSize:    6,
		ImageStore:  "local",
		MediaRoot:   t.TempDir(),
		MediaURL:    "/media/",
	}
	engine := router.SetupRouter(router.Dependencies{
		Config:              cfg,
		DB:                  db,
		Log:                 log,
		AuthService:         auth,
		UserService:         service.NewUserService(db),
		CatalogService:      service.NewCatalogService(db),
		RecipeService:       service.NewRecipeService(db, service.NewImageService(images), log),
		MembershipService:   service.NewMembershipService(db, log),
		SubscriptionService: service.NewSubscriptionService(db, log),
		ShoppingListService: service.NewShoppingListService(db),
		CreationLimiter:     creation,
	})

	return &testAPI{t: t, db: db, router: engine, auth: auth, images: images}
}

func (a *testAPI) token(user *models.User) string {
	a.t.Helper()
	token, err := a.auth.GenerateToken(user)
	require.NoError(a.t, err)
	return token
}

// do performs a request; body is marshalled to JSON when not nil and token
// is sent as a bearer token when not empty.
func (a *testAPI) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	a.t.Helper()
	var req *http.Request
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

type errorBody struct {
	Error  string              `json:"error"`
	Errors map[string][]string `json:"errors"`
}
