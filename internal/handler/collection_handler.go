package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"POI-Collector/internal/domain/model"
	"POI-Collector/internal/usecase"
)

// CollectionHandler は収集管理APIのハンドラー
type CollectionHandler struct {
	collectionUseCase usecase.CollectionUseCase
}

// NewCollectionHandler は新しいCollectionHandlerインスタンスを作成
func NewCollectionHandler(collectionUseCase usecase.CollectionUseCase) *CollectionHandler {
	return &CollectionHandler{
		collectionUseCase: collectionUseCase,
	}
}

// PostCollection は収集をバックグラウンドで開始するエンドポイント
// POST /admin/collections
func (h *CollectionHandler) PostCollection(c *gin.Context) {
	var req model.CollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "リクエストの形式が正しくありません",
			"details": err.Error(),
		})
		return
	}

	run, err := h.collectionUseCase.Start(c.Request.Context(), &req)
	if err != nil {
		respondCollectionError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, run)
}

// PostCollectionSync は収集を同期的に実行するエンドポイント
// POST /admin/collections/sync
func (h *CollectionHandler) PostCollectionSync(c *gin.Context) {
	var req model.CollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "リクエストの形式が正しくありません",
			"details": err.Error(),
		})
		return
	}

	run, err := h.collectionUseCase.Run(c.Request.Context(), &req)
	if err != nil {
		respondCollectionError(c, err)
		return
	}

	c.JSON(http.StatusOK, run)
}

// GetCollection は収集実行の記録を取得するエンドポイント
// GET /admin/collections/:id
func (h *CollectionHandler) GetCollection(c *gin.Context) {
	run, err := h.collectionUseCase.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondCollectionError(c, err)
		return
	}

	c.JSON(http.StatusOK, run)
}

func respondCollectionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidCollectionRequest):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "バリデーションエラー",
			"details": err.Error(),
		})
	case errors.Is(err, model.ErrRegionNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "地域が見つかりません",
			"details": err.Error(),
		})
	case errors.Is(err, model.ErrCollectionRunNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "収集実行が見つかりません",
			"details": err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "収集処理に失敗しました",
			"details": err.Error(),
		})
	}
}
