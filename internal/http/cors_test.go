package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"

	"inventory-api/internal/repository/memory"
	"inventory-api/internal/repository/mocks"
	"inventory-api/internal/service"
)

func newRouterWithOrigins(t *testing.T, origins ...string) *gin.Engine {
	t.Helper()
	ctrl := gomock.NewController(t)
	sessions, err := service.NewSessionService(memory.NewSessionRepository(), service.SessionOptions{Secret: []byte("k")})
	if err != nil {
		t.Fatal(err)
	}
	handler := NewHandler(
		service.NewUserService(mocks.NewMockUserRepository(ctrl)),
		sessions,
		Config{Logger: quietLogger(), AllowedOrigins: origins},
	)
	router := gin.New()
	handler.RegisterRoutes(router)
	return router
}

func newRequest(method, path, origin string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Origin", origin)
	return req
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}
