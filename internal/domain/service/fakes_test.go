package service

import (
	"context"
	"fmt"
	"math"
	"sync"

	"POI-Collector/internal/domain/model"
)

// memoryLedger はテスト用のスキャン台帳
type memoryLedger struct {
	mu      sync.Mutex
	records map[model.ScanKey]model.ScanRecord
	creates []model.ScanRecord
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{records: map[model.ScanKey]model.ScanRecord{}}
}

func (l *memoryLedger) Find(_ context.Context, key model.ScanKey) (*model.ScanRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if r, ok := l.records[key]; ok {
		return &r, nil
	}
	return nil, nil
}

func (l *memoryLedger) Create(_ context.Context, record *model.ScanRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.records[record.ScanKey]; ok {
		return nil
	}
	l.records[record.ScanKey] = *record
	l.creates = append(l.creates, *record)
	return nil
}

// countByStatus 半径・ステータスごとの書き込み件数
func (l *memoryLedger) countByStatus(radius int, status model.ScanStatus) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, r := range l.creates {
		if r.RadiusMeters == radius && r.Status == status {
			n++
		}
	}
	return n
}

func (l *memoryLedger) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.creates)
}

// memoryPlaces はスポットIDの一意制約を持つテスト用の保存先
type memoryPlaces struct {
	mu     sync.Mutex
	places map[string]model.DiscoveredPlace
	err    error
}

func newMemoryPlaces() *memoryPlaces {
	return &memoryPlaces{places: map[string]model.DiscoveredPlace{}}
}

func (p *memoryPlaces) SaveAll(_ context.Context, places []model.DiscoveredPlace) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return 0, p.err
	}
	n := 0
	for _, place := range places {
		if _, ok := p.places[place.PlaceID]; ok {
			continue
		}
		p.places[place.PlaceID] = place
		n++
	}
	return n, nil
}

func (p *memoryPlaces) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.places)
}

// fakeSearcher はハンドラ関数で応答を決めるテスト用の検索API
type fakeSearcher struct {
	mu      sync.Mutex
	handler func(req model.SearchRequest) (*model.SearchPage, error)
	calls   []model.SearchRequest
}

func (s *fakeSearcher) Search(_ context.Context, req model.SearchRequest) (*model.SearchPage, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	s.mu.Unlock()
	return s.handler(req)
}

func (s *fakeSearcher) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *fakeSearcher) callsAtRadius(radius int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.RadiusMeters == radius {
			n++
		}
	}
	return n
}

// squarePolygon 南西端(lat,lng)から一辺sideMeters の正方形ポリゴン
func squarePolygon(lat, lng, sideMeters float64) model.Polygon {
	dLat := sideMeters / model.MetersPerDegree
	dLng := dLat / math.Cos(lat*math.Pi/180)
	return model.Polygon{
		{lng, lat},
		{lng + dLng, lat},
		{lng + dLng, lat + dLat},
		{lng, lat + dLat},
		{lng, lat},
	}
}

// placesAround 中心付近（検索半径内）にn件のスポットを生成する
// IDは中心座標・半径・ページから決まるので、同じセルの再検索では同じIDになる
func placesAround(req model.SearchRequest, n int) []model.DiscoveredPlace {
	places := make([]model.DiscoveredPlace, n)
	for i := range places {
		offset := float64(i) * 1e-5
		places[i] = model.DiscoveredPlace{
			PlaceID:   fmt.Sprintf("%.6f:%.6f:%d:%d:%d", req.Lat, req.Lng, req.RadiusMeters, req.Page, i),
			Name:      fmt.Sprintf("place-%d", i),
			Latitude:  req.Lat + offset,
			Longitude: req.Lng + offset,
		}
	}
	return places
}
