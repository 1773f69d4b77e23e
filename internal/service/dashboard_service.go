package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sritlabs/sat-backend/internal/config"
	"github.com/sritlabs/sat-backend/internal/model"
	"github.com/sritlabs/sat-backend/internal/repository"
)

// DashboardData consolidates all metrics for a branch admin dashboard.
type DashboardData struct {
	TotalStudents       int                             `json:"total_students"`
	TotalCertificates   int                             `json:"total_certificates"`
	PendingCertificates int                             `json:"pending_certificates"`
	ActiveForms         int                             `json:"active_forms"`
	StatusCounts        map[model.CertificateStatus]int `json:"status_counts"`
	EventTypeCounts     []repository.EventTypeCount     `json:"event_type_counts"`
	MonthlyUploads      []repository.MonthlyUploadCount `json:"monthly_uploads"`
	TopStudents         []repository.TopStudent         `json:"top_students"`
}

// DashboardService handles admin dashboard business logic. Snapshots are
// cached in Redis for a short window since analytics queries hit several
// tables.
type DashboardService struct {
	repo     *repository.DashboardRepository
	rdb      *redis.Client
	cacheTTL time.Duration
	log      zerolog.Logger
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(repo *repository.DashboardRepository, rdb *redis.Client, log zerolog.Logger) *DashboardService {
	return &DashboardService{
		repo:     repo,
		rdb:      rdb,
		cacheTTL: time.Minute,
		log:      log.With().Str("component", "dashboard_service").Logger(),
	}
}

// GetDashboardData fetches the branch's dashboard metrics, serving a cached
// snapshot when one is fresh.
func (s *DashboardService) GetDashboardData(ctx context.Context, branch string) (*DashboardData, error) {
	cacheKey := config.CacheKey.DashboardStatsKey(branch)
	if cached, err := s.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		var data DashboardData
		if err := json.Unmarshal(cached, &data); err == nil {
			return &data, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Msg("dashboard cache read failed")
	}

	students, certificates, pending, activeForms, err := s.repo.GetSummaryCounts(ctx, branch)
	if err != nil {
		return nil, err
	}

	statusCounts, err := s.repo.GetCertificateStatusCounts(ctx, branch)
	if err != nil {
		return nil, err
	}

	eventTypes, err := s.repo.GetEventTypeCounts(ctx, branch)
	if err != nil {
		return nil, err
	}

	monthly, err := s.repo.GetMonthlyUploads(ctx, branch, 12)
	if err != nil {
		return nil, err
	}

	top, err := s.repo.GetTopStudents(ctx, branch, 5)
	if err != nil {
		return nil, err
	}

	data := &DashboardData{
		TotalStudents:       students,
		TotalCertificates:   certificates,
		PendingCertificates: pending,
		ActiveForms:         activeForms,
		StatusCounts:        statusCounts,
		EventTypeCounts:     eventTypes,
		MonthlyUploads:      monthly,
		TopStudents:         top,
	}

	if payload, err := json.Marshal(data); err == nil {
		if err := s.rdb.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
			s.log.Warn().Err(err).Msg("dashboard cache write failed")
		}
	}

	return data, nil
}
