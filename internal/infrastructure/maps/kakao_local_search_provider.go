package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"POI-Collector/internal/domain/model"
	"POI-Collector/internal/infrastructure/logger"
	"POI-Collector/internal/infrastructure/metrics"
)

const (
	// DefaultKakaoBaseURL Kakao Local APIのベースURL
	DefaultKakaoBaseURL = "https://dapi.kakao.com"
	keywordSearchPath   = "/v2/local/search/keyword.json"
	// kakaoPageSize 1ページあたりの件数（APIの上限）
	kakaoPageSize = 15
	// kakaoMaxRadiusMeters 検索半径の上限
	kakaoMaxRadiusMeters = 20000
)

// KakaoLocalSearchProvider はKakao Localのキーワード検索APIを使用したスポット検索の実装
type KakaoLocalSearchProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger
}

// NewKakaoLocalSearchProvider は新しいプロバイダを生成する
func NewKakaoLocalSearchProvider(apiKey, baseURL string, log logger.Logger) *KakaoLocalSearchProvider {
	if baseURL == "" {
		baseURL = DefaultKakaoBaseURL
	}
	return &KakaoLocalSearchProvider{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     log,
	}
}

// Search は中心座標と半径を指定してキーワード検索を1ページ分実行する
func (k *KakaoLocalSearchProvider) Search(ctx context.Context, req model.SearchRequest) (*model.SearchPage, error) {
	// 1. APIリクエストURLを構築
	reqURL := k.buildURL(req)

	// 2. HTTPリクエストを作成・実行
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗: %w", err)
	}
	httpReq.Header.Set("Authorization", "KakaoAK "+k.apiKey)

	start := time.Now()
	resp, err := k.httpClient.Do(httpReq)
	metrics.SearchDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("APIリクエストに失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		metrics.SearchRequestsTotal.WithLabelValues("rate_limited").Inc()
		return nil, fmt.Errorf("%w: %s", model.ErrRateLimited, resp.Status)
	}
	if resp.StatusCode != http.StatusOK {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("APIからエラーステータスが返されました: %s %s", resp.Status, string(body))
	}

	// 3. JSONレスポンスをパース
	var apiResp kakaoKeywordResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("JSONのパースに失敗: %w", err)
	}
	metrics.SearchRequestsTotal.WithLabelValues("ok").Inc()

	// 4. ドメインモデルに変換して返す。座標が不正なドキュメントだけ読み飛ばす
	items := make([]model.DiscoveredPlace, 0, len(apiResp.Documents))
	for _, doc := range apiResp.Documents {
		place, err := doc.toPlace()
		if err != nil {
			k.logger.Warn("⚠️ 座標が不正なスポットをスキップします",
				logger.String("place_id", doc.ID),
				logger.String("keyword", req.Keyword),
				logger.Int("page", req.Page),
				logger.Error(err))
			continue
		}
		place.Keyword = req.Keyword
		items = append(items, place)
	}

	return &model.SearchPage{
		Items:      items,
		TotalCount: apiResp.Meta.TotalCount,
		IsLastPage: apiResp.Meta.IsEnd,
	}, nil
}

func (k *KakaoLocalSearchProvider) buildURL(req model.SearchRequest) string {
	radius := req.RadiusMeters
	if radius > kakaoMaxRadiusMeters {
		radius = kakaoMaxRadiusMeters
	}
	page := req.Page
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("query", req.Keyword)
	params.Set("x", strconv.FormatFloat(req.Lng, 'f', -1, 64))
	params.Set("y", strconv.FormatFloat(req.Lat, 'f', -1, 64))
	params.Set("radius", strconv.Itoa(radius))
	params.Set("page", strconv.Itoa(page))
	params.Set("size", strconv.Itoa(kakaoPageSize))

	return fmt.Sprintf("%s%s?%s", k.baseURL, keywordSearchPath, params.Encode())
}

// --- Kakao Local APIのレスポンスをパースするための構造体 ---

type kakaoKeywordResponse struct {
	Meta      kakaoMeta       `json:"meta"`
	Documents []kakaoDocument `json:"documents"`
}
type kakaoMeta struct {
	TotalCount    int  `json:"total_count"`
	PageableCount int  `json:"pageable_count"`
	IsEnd         bool `json:"is_end"`
}
type kakaoDocument struct {
	ID                string `json:"id"`
	PlaceName         string `json:"place_name"`
	CategoryName      string `json:"category_name"`
	CategoryGroupCode string `json:"category_group_code"`
	Phone             string `json:"phone"`
	AddressName       string `json:"address_name"`
	RoadAddressName   string `json:"road_address_name"`
	X                 string `json:"x"` // 経度
	Y                 string `json:"y"` // 緯度
	PlaceURL          string `json:"place_url"`
}

func (d kakaoDocument) toPlace() (model.DiscoveredPlace, error) {
	lng, err := strconv.ParseFloat(d.X, 64)
	if err != nil {
		return model.DiscoveredPlace{}, fmt.Errorf("スポット%sの経度が不正: %w", d.ID, err)
	}
	lat, err := strconv.ParseFloat(d.Y, 64)
	if err != nil {
		return model.DiscoveredPlace{}, fmt.Errorf("スポット%sの緯度が不正: %w", d.ID, err)
	}
	return model.DiscoveredPlace{
		PlaceID:         d.ID,
		Name:            d.PlaceName,
		Category:        d.CategoryName,
		CategoryCode:    d.CategoryGroupCode,
		Phone:           d.Phone,
		AddressName:     d.AddressName,
		RoadAddressName: d.RoadAddressName,
		PlaceURL:        d.PlaceURL,
		Latitude:        lat,
		Longitude:       lng,
	}, nil
}
