package maps

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"POI-Collector/internal/domain/model"
	"POI-Collector/internal/infrastructure/logger"
)

const keywordResponse = `{
  "meta": {"total_count": 32, "pageable_count": 32, "is_end": false},
  "documents": [
    {"id": "26338954", "place_name": "카카오프렌즈 코엑스점", "category_name": "가정,생활 > 문구,사무용품",
     "category_group_code": "", "phone": "02-6002-1880", "address_name": "서울 강남구 삼성동 159",
     "road_address_name": "서울 강남구 영동대로 513", "x": "127.05902969025047", "y": "37.51207412593136",
     "place_url": "http://place.map.kakao.com/26338954"}
  ]
}`

func TestKakaoLocalSearchProvider_Search(t *testing.T) {
	t.Run("レスポンスをSearchPageに変換", func(t *testing.T) {
		var gotQuery map[string]string
		var gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v2/local/search/keyword.json", r.URL.Path)
			gotAuth = r.Header.Get("Authorization")
			q := r.URL.Query()
			gotQuery = map[string]string{
				"query": q.Get("query"), "x": q.Get("x"), "y": q.Get("y"),
				"radius": q.Get("radius"), "page": q.Get("page"), "size": q.Get("size"),
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(keywordResponse))
		}))
		defer srv.Close()

		provider := NewKakaoLocalSearchProvider("test-key", srv.URL, logger.NewNop())
		page, err := provider.Search(context.Background(), model.SearchRequest{
			Keyword: "카페", Lng: 127.05, Lat: 37.51, RadiusMeters: 512, Page: 2,
		})
		require.NoError(t, err)

		assert.Equal(t, "KakaoAK test-key", gotAuth)
		assert.Equal(t, map[string]string{
			"query": "카페", "x": "127.05", "y": "37.51", "radius": "512", "page": "2", "size": "15",
		}, gotQuery)

		assert.Equal(t, 32, page.TotalCount)
		assert.False(t, page.IsLastPage)
		require.Len(t, page.Items, 1)
		item := page.Items[0]
		assert.Equal(t, "26338954", item.PlaceID)
		assert.Equal(t, "카페", item.Keyword)
		assert.InDelta(t, 37.51207412593136, item.Latitude, 1e-12)
		assert.InDelta(t, 127.05902969025047, item.Longitude, 1e-12)
	})

	t.Run("429はErrRateLimited", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		_, err := NewKakaoLocalSearchProvider("k", srv.URL, logger.NewNop()).Search(context.Background(), model.SearchRequest{Keyword: "a", Page: 1})
		assert.ErrorIs(t, err, model.ErrRateLimited)
	})

	t.Run("その他のエラーステータスは一般エラー", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"errorType":"InvalidArgument"}`, http.StatusBadRequest)
		}))
		defer srv.Close()

		_, err := NewKakaoLocalSearchProvider("k", srv.URL, logger.NewNop()).Search(context.Background(), model.SearchRequest{Keyword: "a", Page: 1})
		require.Error(t, err)
		assert.NotErrorIs(t, err, model.ErrRateLimited)
	})
}

func TestKakaoLocalSearchProvider_buildURLClampsRadius(t *testing.T) {
	provider := NewKakaoLocalSearchProvider("k", "http://example.test", logger.NewNop())
	u := provider.buildURL(model.SearchRequest{Keyword: "a", RadiusMeters: 50000})
	assert.Contains(t, u, "radius=20000")
	assert.Contains(t, u, "page=1")
}

const brokenCoordinateResponse = `{
  "meta": {"total_count": 3, "pageable_count": 3, "is_end": true},
  "documents": [
    {"id": "1", "place_name": "A", "x": "127.01", "y": "37.51"},
    {"id": "2", "place_name": "B", "x": "", "y": "37.52"},
    {"id": "3", "place_name": "C", "x": "127.03", "y": "north"}
  ]
}`

func TestKakaoLocalSearchProvider_SkipsInvalidCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(brokenCoordinateResponse))
	}))
	defer srv.Close()

	core, logs := observer.New(zap.WarnLevel)
	provider := NewKakaoLocalSearchProvider("k", srv.URL, logger.FromZap(zap.New(core)))

	page, err := provider.Search(context.Background(), model.SearchRequest{Keyword: "cafe", Page: 1})
	require.NoError(t, err)

	require.Len(t, page.Items, 1)
	assert.Equal(t, "1", page.Items[0].PlaceID)
	assert.Equal(t, 3, page.TotalCount)
	assert.True(t, page.IsLastPage)
	assert.Equal(t, 2, logs.Len())
}
