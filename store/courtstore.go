package store

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"playmateserver/models"
	"playmateserver/persist"

	"go.uber.org/zap"
)

// CourtStore keeps the tennis-court directory. Unlike the other stores
// it is read-mostly: records come from the snapshot or, on a fresh
// install, from the built-in seed set.
type CourtStore struct {
	mu      sync.RWMutex
	courts  map[int64]*models.TennisCourt
	flusher *Flusher
	logger  *zap.Logger
}

type courtSnapshot struct {
	Courts []*models.TennisCourt `json:"courts"`
}

// CourtFilter narrows a court listing. Nil facility fields mean
// "either"; zero price and rating bounds are ignored. Region and
// District accept the client's "전체" (all) as no filter.
type CourtFilter struct {
	Region      string
	District    string
	Search      string
	HasLighting *bool
	HasParking  *bool
	HasShower   *bool
	HasLocker   *bool
	MinPrice    int
	MaxPrice    int
	MinRating   float64
}

func NewCourtStore(sink persist.Sink, logger *zap.Logger) *CourtStore {
	s := &CourtStore{
		courts: make(map[int64]*models.TennisCourt),
		logger: logger,
	}
	s.flusher = NewFlusher("courts", sink, s.marshal, logger)
	return s
}

// Load restores the snapshot, falling back to the seed set on a fresh
// install so the directory is never empty.
func (s *CourtStore) Load(ctx context.Context) error {
	data, ok, err := s.flusher.sink.Load(ctx)
	if err != nil {
		return err
	}
	if !ok {
		s.seedDefaults()
		s.logger.Info("no court snapshot found, seeded defaults", zap.Int("count", len(s.courts)))
		s.flusher.Request()
		return nil
	}
	var snap courtSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.courts = make(map[int64]*models.TennisCourt, len(snap.Courts))
	for _, c := range snap.Courts {
		s.courts[c.ID] = c
	}
	s.logger.Info("courts loaded", zap.Int("count", len(s.courts)))
	return nil
}

func (s *CourtStore) Start() { s.flusher.Start() }
func (s *CourtStore) Stop()  { s.flusher.Stop() }

func (s *CourtStore) Flush(ctx context.Context) error { return s.flusher.Flush(ctx) }
func (s *CourtStore) Degraded() bool                  { return s.flusher.Degraded() }

// List returns the courts matching the filter, ordered by ID.
func (s *CourtStore) List(f CourtFilter) []*models.TennisCourt {
	s.mu.RLock()
	var out []*models.TennisCourt
	for _, c := range s.courts {
		if matchesCourtFilter(c, f) {
			out = append(out, c.Clone())
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func matchesCourtFilter(c *models.TennisCourt, f CourtFilter) bool {
	if f.Region != "" && f.Region != "전체" && c.Region != f.Region {
		return false
	}
	if f.District != "" && f.District != "전체" && c.District != f.District {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(c.Name), q) &&
			!strings.Contains(strings.ToLower(c.Address), q) {
			return false
		}
	}
	if f.HasLighting != nil && c.HasLighting != *f.HasLighting {
		return false
	}
	if f.HasParking != nil && c.HasParking != *f.HasParking {
		return false
	}
	if f.HasShower != nil && c.HasShower != *f.HasShower {
		return false
	}
	if f.HasLocker != nil && c.HasLocker != *f.HasLocker {
		return false
	}
	if f.MinPrice > 0 && c.PricePerHour < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && c.PricePerHour > f.MaxPrice {
		return false
	}
	if f.MinRating > 0 && c.Rating < f.MinRating {
		return false
	}
	return true
}

// Search matches name, address or description against the query.
// Queries shorter than two characters return nothing.
func (s *CourtStore) Search(query string) []*models.TennisCourt {
	q := strings.ToLower(strings.TrimSpace(query))
	if len([]rune(q)) < 2 {
		return nil
	}
	s.mu.RLock()
	var out []*models.TennisCourt
	for _, c := range s.courts {
		if strings.Contains(strings.ToLower(c.Name), q) ||
			strings.Contains(strings.ToLower(c.Address), q) ||
			strings.Contains(strings.ToLower(c.Description), q) {
			out = append(out, c.Clone())
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Popular returns the top courts by rating.
func (s *CourtStore) Popular(limit int) []*models.TennisCourt {
	if limit < 1 {
		limit = 10
	}
	s.mu.RLock()
	out := make([]*models.TennisCourt, 0, len(s.courts))
	for _, c := range s.courts {
		out = append(out, c.Clone())
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating == out[j].Rating {
			return out[i].ID < out[j].ID
		}
		return out[i].Rating > out[j].Rating
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *CourtStore) Get(id int64) (*models.TennisCourt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.courts[id]
	if !ok {
		return nil, models.ErrCourtNotFound
	}
	return c.Clone(), nil
}

func (s *CourtStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.courts)
}

func (s *CourtStore) marshal() ([]byte, error) {
	s.mu.RLock()
	snap := courtSnapshot{Courts: make([]*models.TennisCourt, 0, len(s.courts))}
	for _, c := range s.courts {
		snap.Courts = append(snap.Courts, c.Clone())
	}
	s.mu.RUnlock()
	sort.Slice(snap.Courts, func(i, j int) bool { return snap.Courts[i].ID < snap.Courts[j].ID })
	return json.MarshalIndent(snap, "", "  ")
}

func (s *CourtStore) seedDefaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for _, c := range defaultCourts() {
		c.CreatedAt = now
		c.UpdatedAt = now
		s.courts[c.ID] = c
	}
}

// defaultCourts is the seed directory for the Seoul metropolitan area.
func defaultCourts() []*models.TennisCourt {
	allFacilities := []string{"주차장", "샤워실", "락커룸", "조명시설"}
	return []*models.TennisCourt{
		{
			ID: 1, Name: "잠실종합운동장", Address: "서울특별시 송파구 올림픽로 25",
			Lat: 37.512, Lng: 127.102, Region: "서울", District: "송파구",
			CourtCount: 12, SurfaceType: "하드코트",
			HasLighting: true, HasParking: true, HasShower: true, HasLocker: true,
			PricePerHour: 30000, OperatingHours: "06:00-22:00", PhoneNumber: "02-2240-8800",
			Description: "올림픽공원 내 위치한 대형 테니스장",
			Facilities:  allFacilities, Images: []string{},
			Rating: 4.5, ReviewCount: 128,
		},
		{
			ID: 2, Name: "양재시민의숲", Address: "서울특별시 서초구 매헌로 99",
			Lat: 37.469, Lng: 127.038, Region: "서울", District: "서초구",
			CourtCount: 8, SurfaceType: "하드코트",
			HasLighting: true, HasParking: true, HasShower: true, HasLocker: true,
			PricePerHour: 25000, OperatingHours: "06:00-22:00", PhoneNumber: "02-2155-6200",
			Description: "시민의숲 내 위치한 테니스장",
			Facilities:  allFacilities, Images: []string{},
			Rating: 4.3, ReviewCount: 95,
		},
		{
			ID: 3, Name: "올림픽공원 테니스장", Address: "서울특별시 송파구 올림픽로 424",
			Lat: 37.516, Lng: 127.121, Region: "서울", District: "송파구",
			CourtCount: 6, SurfaceType: "하드코트",
			HasLighting: true, HasParking: true, HasShower: false, HasLocker: true,
			PricePerHour: 20000, OperatingHours: "06:00-21:00", PhoneNumber: "02-410-1114",
			Description: "올림픽공원 내 공원 테니스장",
			Facilities:  []string{"주차장", "락커룸", "조명시설"}, Images: []string{},
			Rating: 4.1, ReviewCount: 67,
		},
		{
			ID: 4, Name: "한강공원 테니스장", Address: "서울특별시 영등포구 여의도동",
			Lat: 37.526, Lng: 126.896, Region: "서울", District: "영등포구",
			CourtCount: 4, SurfaceType: "하드코트",
			HasLighting: true, HasParking: true, HasShower: false, HasLocker: false,
			PricePerHour: 15000, OperatingHours: "06:00-22:00", PhoneNumber: "02-2670-3114",
			Description: "한강공원 내 위치한 테니스장",
			Facilities:  []string{"주차장", "조명시설"}, Images: []string{},
			Rating: 3.9, ReviewCount: 43,
		},
		{
			ID: 5, Name: "분당테니스장", Address: "경기도 성남시 분당구 판교역로 166",
			Lat: 37.350, Lng: 127.108, Region: "경기", District: "성남시 분당구",
			CourtCount: 10, SurfaceType: "하드코트",
			HasLighting: true, HasParking: true, HasShower: true, HasLocker: true,
			PricePerHour: 28000, OperatingHours: "06:00-22:00", PhoneNumber: "031-729-8000",
			Description: "분당 지역 대형 테니스장",
			Facilities:  allFacilities, Images: []string{},
			Rating: 4.4, ReviewCount: 156,
		},
		{
			ID: 6, Name: "인천대공원 테니스장", Address: "인천광역시 남동구 구월동 1234",
			Lat: 37.448, Lng: 126.752, Region: "인천", District: "남동구",
			CourtCount: 6, SurfaceType: "하드코트",
			HasLighting: true, HasParking: true, HasShower: true, HasLocker: true,
			PricePerHour: 22000, OperatingHours: "06:00-22:00", PhoneNumber: "032-440-8000",
			Description: "인천대공원 내 위치한 테니스장",
			Facilities:  allFacilities, Images: []string{},
			Rating: 4.2, ReviewCount: 89,
		},
	}
}
