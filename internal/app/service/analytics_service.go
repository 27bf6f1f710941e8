package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"hackhub/internal/domain/model"
	"hackhub/internal/domain/repository"
	"hackhub/internal/platform/metrics"
)

// StatsCache is the small cache surface analytics needs. Cache failures are
// treated the same as cache misses.
type StatsCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type AnalyticsService struct {
	hackathonRepo   repository.HackathonRepository
	participantRepo repository.ParticipantRepository
	submissionRepo  repository.SubmissionRepository

	cache    StatsCache // optional
	cacheKey string
	cacheTTL time.Duration
}

func NewAnalyticsService(
	hackathonRepo repository.HackathonRepository,
	participantRepo repository.ParticipantRepository,
	submissionRepo repository.SubmissionRepository,
	cache StatsCache,
	cacheKey string,
	cacheTTL time.Duration,
) *AnalyticsService {
	return &AnalyticsService{
		hackathonRepo:   hackathonRepo,
		participantRepo: participantRepo,
		submissionRepo:  submissionRepo,
		cache:           cache,
		cacheKey:        cacheKey,
		cacheTTL:        cacheTTL,
	}
}

type PlatformStats struct {
	TotalHackathons   int `json:"total_hackathons"`
	ActiveHackathons  int `json:"active_hackathons"`
	TotalParticipants int `json:"total_participants"`
	TotalSubmissions  int `json:"total_submissions"`
}

// GetPlatformStats never fails: stats are advisory and must not break page
// loads, so any storage or cache error degrades to all-zero counts.
func (s *AnalyticsService) GetPlatformStats(ctx context.Context) PlatformStats {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, s.cacheKey); err == nil && cached != "" {
			var stats PlatformStats
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return stats
			}
		}
	}

	stats, err := s.computePlatformStats(ctx)
	if err != nil {
		log.Printf("ERROR: Failed to compute platform stats: %v", err)
		metrics.StatsFailuresTotal.Inc()
		return PlatformStats{}
	}

	if s.cache != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, s.cacheKey, string(payload), s.cacheTTL); err != nil {
				log.Printf("WARN: Failed to cache platform stats: %v", err)
			}
		}
	}
	return stats
}

func (s *AnalyticsService) computePlatformStats(ctx context.Context) (PlatformStats, error) {
	total, err := s.hackathonRepo.Count(ctx)
	if err != nil {
		return PlatformStats{}, err
	}
	active, err := s.hackathonRepo.CountByStatuses(ctx, model.ActiveStatuses)
	if err != nil {
		return PlatformStats{}, err
	}
	participants, err := s.participantRepo.CountDistinctUsers(ctx)
	if err != nil {
		return PlatformStats{}, err
	}
	submissions, err := s.submissionRepo.Count(ctx)
	if err != nil {
		return PlatformStats{}, err
	}
	return PlatformStats{
		TotalHackathons:   total,
		ActiveHackathons:  active,
		TotalParticipants: participants,
		TotalSubmissions:  submissions,
	}, nil
}

type HackathonStats struct {
	TotalParticipants   int            `json:"total_participants"`
	TotalTeams          int            `json:"total_teams"`
	TotalSubmissions    int            `json:"total_submissions"`
	SubmissionsByStatus map[string]int `json:"submissions_by_status"`
}

// GetHackathonStats follows the same fail-soft policy as platform stats.
func (s *AnalyticsService) GetHackathonStats(ctx context.Context, hackathonID string) HackathonStats {
	zero := HackathonStats{SubmissionsByStatus: map[string]int{}}

	counts, err := s.hackathonRepo.GetCounts(ctx, hackathonID)
	if err != nil {
		log.Printf("ERROR: Failed to compute hackathon stats for %s: %v", hackathonID, err)
		metrics.StatsFailuresTotal.Inc()
		return zero
	}
	byStatus, err := s.submissionRepo.CountByStatus(ctx, hackathonID)
	if err != nil {
		log.Printf("ERROR: Failed to count submissions by status for %s: %v", hackathonID, err)
		metrics.StatsFailuresTotal.Inc()
		return zero
	}

	stats := HackathonStats{
		TotalParticipants:   counts.Participants,
		TotalTeams:          counts.Teams,
		TotalSubmissions:    counts.Submissions,
		SubmissionsByStatus: map[string]int{},
	}
	for status, n := range byStatus {
		stats.SubmissionsByStatus[string(status)] = n
	}
	return stats
}
