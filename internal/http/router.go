package http

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	AllowedOrigins []string
	// JWTSecret enables the bearer guard on the mint endpoint when set.
	JWTSecret string
}

func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), withRequestID(), withRequestLog())

	origins := normalizeOrigins(cfg.AllowedOrigins)
	if len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", HeaderAuthorization, HeaderRequestID},
			ExposeHeaders:    []string{HeaderRequestID},
			AllowCredentials: true,
			MaxAge:           CORSMaxAge,
		}))
	}

	api := r.Group("/api")
	{
		api.GET(PathHealth, h.Health)

		mint := api.Group("")
		if cfg.JWTSecret != "" {
			mint.Use(withBearerJWT([]byte(cfg.JWTSecret)))
		}
		mint.POST(PathMintNFT, h.MintNFT)
	}

	return r
}
