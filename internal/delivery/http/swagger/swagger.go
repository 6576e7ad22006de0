package http_swagger

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Controller serves the swagger UI for the session API. Docs are generated
// with `swag init -g cmd/app/main.go`.
type Controller struct {
	docURL string
}

type ControllerOption func(*Controller)

func WithDocURL(url string) ControllerOption {
	return func(c *Controller) {
		c.docURL = url
	}
}

func New(opts ...ControllerOption) *Controller {
	c := &Controller{docURL: "doc.json"}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/swagger", func(ctx *gin.Context) {
		ctx.Redirect(http.StatusMovedPermanently, router.BasePath()+"/swagger/index.html")
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler,
		ginSwagger.URL(c.docURL),
		ginSwagger.DocExpansion("list"),
	))
}
