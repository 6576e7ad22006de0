package http_init

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	http_metrics "github.com/humanbelnik/watchlist/internal/delivery/http/metrics"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
)

type ControllerPoolSuite struct {
	suite.Suite
}

type pingController struct{}

func (pingController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/ping", func(ctx *gin.Context) { ctx.String(http.StatusOK, "pong") })
}

func (s *ControllerPoolSuite) TestMountPoints(t provider.T) {
	gin.SetMode(gin.TestMode)
	pool := NewControllerPool()
	pool.Add(pingController{})
	pool.AddRoot(http_metrics.New())
	pool.Register()

	testCases := []struct {
		name string
		path string
		code int
	}{
		{"api controller under prefix", "/api/v1/ping", http.StatusOK},
		{"api controller not at root", "/ping", http.StatusNotFound},
		{"metrics at root", "/metrics", http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			w := httptest.NewRecorder()
			pool.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
			assert.Equal(t, tc.code, w.Code)
		})
	}
}

func TestControllerPoolSuite(t *testing.T) {
	suite.RunSuite(t, new(ControllerPoolSuite))
}
