package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter は管理APIのルーティングを設定する
func NewRouter(collection *CollectionHandler, health *HealthHandler, metrics http.Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", health.GetHealth)
	r.GET("/metrics", gin.WrapH(metrics))

	admin := r.Group("/admin")
	{
		admin.POST("/collections", collection.PostCollection)
		admin.POST("/collections/sync", collection.PostCollectionSync)
		admin.GET("/collections/:id", collection.GetCollection)
	}
	return r
}
