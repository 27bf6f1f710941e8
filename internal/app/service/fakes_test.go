package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"hackhub/internal/common"
	"hackhub/internal/domain/model"
	"hackhub/internal/domain/repository"
)

var errStorage = errors.New("storage unavailable")

// In-memory repository fakes. Each mirrors the uniqueness and lookup
// semantics the pg implementations delegate to the schema.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return fmt.Errorf("user with given email already exists: %w", common.ErrConflict)
		}
	}
	u := *user
	r.users[user.ID] = &u
	return nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	c := *u
	return &c, nil
}

type fakeHackathonRepo struct {
	mu         sync.Mutex
	hackathons map[string]*model.Hackathon
	tracks     map[string][]model.ProblemStatement
	failAll    bool // every method errors, for fail-soft tests
}

func newFakeHackathonRepo() *fakeHackathonRepo {
	return &fakeHackathonRepo{
		hackathons: map[string]*model.Hackathon{},
		tracks:     map[string][]model.ProblemStatement{},
	}
}

func (r *fakeHackathonRepo) CreateWithTracks(ctx context.Context, h *model.Hackathon, tracks []model.ProblemStatement) error {
	if r.failAll {
		return errStorage
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *h
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	r.hackathons[h.ID] = &c
	r.tracks[h.ID] = append([]model.ProblemStatement(nil), tracks...)
	return nil
}

func (r *fakeHackathonRepo) FindByID(ctx context.Context, id string) (*model.Hackathon, error) {
	if r.failAll {
		return nil, errStorage
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.hackathons[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	c := *h
	return &c, nil
}

func (r *fakeHackathonRepo) List(ctx context.Context, filter repository.HackathonFilter) ([]model.Hackathon, error) {
	if r.failAll {
		return nil, errStorage
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []model.Hackathon{}
	for _, h := range r.hackathons {
		if filter.Status != "" && h.Status != filter.Status {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(h.Title), needle) &&
				!strings.Contains(strings.ToLower(h.Description), needle) {
				continue
			}
		}
		result = append(result, *h)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *fakeHackathonRepo) Update(ctx context.Context, h *model.Hackathon) error {
	if r.failAll {
		return errStorage
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.hackathons[h.ID]; !ok {
		return common.ErrNotFound
	}
	c := *h
	r.hackathons[h.ID] = &c
	return nil
}

func (r *fakeHackathonRepo) UpdateStatus(ctx context.Context, id string, status model.HackathonStatus) error {
	if r.failAll {
		return errStorage
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.hackathons[id]
	if !ok {
		return common.ErrNotFound
	}
	h.Status = status
	return nil
}

func (r *fakeHackathonRepo) Delete(ctx context.Context, id string) error {
	if r.failAll {
		return errStorage
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.hackathons[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.hackathons, id)
	return nil
}

func (r *fakeHackathonRepo) GetTracks(ctx context.Context, hackathonID string) ([]model.ProblemStatement, error) {
	if r.failAll {
		return nil, errStorage
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.ProblemStatement(nil), r.tracks[hackathonID]...), nil
}

func (r *fakeHackathonRepo) GetTracksByHackathonIDs(ctx context.Context, hackathonIDs []string) (map[string][]model.TrackView, error) {
	if r.failAll {
		return nil, errStorage
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	result := map[string][]model.TrackView{}
	for _, id := range hackathonIDs {
		for _, t := range r.tracks[id] {
			result[id] = append(result[id], model.TrackView{Title: t.TrackTitle, Number: t.TrackNumber})
		}
	}
	return result, nil
}

func (r *fakeHackathonRepo) GetCounts(ctx context.Context, hackathonID string) (*model.HackathonCounts, error) {
	if r.failAll {
		return nil, errStorage
	}
	return &model.HackathonCounts{}, nil
}

func (r *fakeHackathonRepo) ListIDsByOrganizer(ctx context.Context, organizerID string) ([]string, error) {
	if r.failAll {
		return nil, errStorage
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := []string{}
	for _, h := range r.hackathons {
		if h.OrganizerID == organizerID {
			ids = append(ids, h.ID)
		}
	}
	return ids, nil
}

func (r *fakeHackathonRepo) Count(ctx context.Context) (int, error) {
	if r.failAll {
		return 0, errStorage
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.hackathons), nil
}

func (r *fakeHackathonRepo) CountByStatuses(ctx context.Context, statuses []model.HackathonStatus) (int, error) {
	if r.failAll {
		return 0, errStorage
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, h := range r.hackathons {
		for _, s := range statuses {
			if h.Status == s {
				n++
				break
			}
		}
	}
	return n, nil
}

type fakeParticipantRepo struct {
	mu           sync.Mutex
	participants map[string]*model.Participant
	teams        map[string]*model.Team
	failAll      bool
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{
		participants: map[string]*model.Participant{},
		teams:        map[string]*model.Team{},
	}
}

func (r *fakeParticipantRepo) CreateRegistration(ctx context.Context, team *model.Team, p *model.Participant) error {
	if r.failAll {
		return errStorage
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.participants {
		if existing.UserID == p.UserID && existing.HackathonID == p.HackathonID {
			return fmt.Errorf("user is already registered for this hackathon: %w", common.ErrConflict)
		}
	}
	if team != nil {
		t := *team
		r.teams[team.ID] = &t
	}
	c := *p
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	r.participants[p.ID] = &c
	return nil
}

func (r *fakeParticipantRepo) FindByID(ctx context.Context, id string) (*model.Participant, error) {
	if r.failAll {
		return nil, errStorage
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (r *fakeParticipantRepo) FindByUserAndHackathon(ctx context.Context, userID, hackathonID string) (*model.Participant, error) {
	if r.failAll {
		return nil, errStorage
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.participants {
		if p.UserID == userID && p.HackathonID == hackathonID {
			c := *p
			return &c, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeParticipantRepo) ListByHackathon(ctx context.Context, hackathonID string) ([]model.Participant, error) {
	if r.failAll {
		return nil, errStorage
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []model.Participant{}
	for _, p := range r.participants {
		if p.HackathonID == hackathonID {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r *fakeParticipantRepo) ListByUser(ctx context.Context, userID string) ([]model.Participant, error) {
	if r.failAll {
		return nil, errStorage
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []model.Participant{}
	for _, p := range r.participants {
		if p.UserID == userID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (r *fakeParticipantRepo) FindTeamByID(ctx context.Context, teamID string) (*model.Team, error) {
	if r.failAll {
		return nil, errStorage
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[teamID]
	if !ok {
		return nil, common.ErrNotFound
	}
	c := *t
	return &c, nil
}

func (r *fakeParticipantRepo) CountDistinctUsers(ctx context.Context) (int, error) {
	if r.failAll {
		return 0, errStorage
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[string]struct{}{}
	for _, p := range r.participants {
		seen[p.UserID] = struct{}{}
	}
	return len(seen), nil
}

type fakeSubmissionRepo struct {
	mu          sync.Mutex
	submissions map[string]*model.Submission
	files       map[string][]model.SubmissionFile
	failAll     bool

	// When set, reads hydrate Submission.Participant the way the SQL
	// implementation's join does.
	participants *fakeParticipantRepo
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{
		submissions: map[string]*model.Submission{},
		files:       map[string][]model.SubmissionFile{},
	}
}

func (r *fakeSubmissionRepo) CreateWithFiles(ctx context.Context, sub *model.Submission, files []model.SubmissionFile) error {
	if r.failAll {
		return errStorage
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *sub
	r.submissions[sub.ID] = &c
	r.files[sub.ID] = append([]model.SubmissionFile(nil), files...)
	return nil
}

func (r *fakeSubmissionRepo) hydrate(ctx context.Context, s *model.Submission) {
	if s.Participant != nil || r.participants == nil {
		return
	}
	if p, err := r.participants.FindByID(ctx, s.ParticipantID); err == nil {
		s.Participant = p
	}
}

func (r *fakeSubmissionRepo) FindByID(ctx context.Context, id string) (*model.Submission, error) {
	if r.failAll {
		return nil, errStorage
	}
	r.mu.Lock()
	s, ok := r.submissions[id]
	if !ok {
		r.mu.Unlock()
		return nil, common.ErrNotFound
	}
	c := *s
	r.mu.Unlock()
	r.hydrate(ctx, &c)
	return &c, nil
}

func (r *fakeSubmissionRepo) List(ctx context.Context, filter repository.SubmissionFilter) ([]model.Submission, error) {
	if r.failAll {
		return nil, errStorage
	}
	r.mu.Lock()
	candidates := make([]model.Submission, 0, len(r.submissions))
	for _, s := range r.submissions {
		candidates = append(candidates, *s)
	}
	r.mu.Unlock()

	result := []model.Submission{}
	for i := range candidates {
		s := &candidates[i]
		r.hydrate(ctx, s)
		if filter.HackathonID != "" && s.HackathonID != filter.HackathonID {
			continue
		}
		if filter.UserID != "" && (s.Participant == nil || s.Participant.UserID != filter.UserID) {
			continue
		}
		if filter.TeamID != "" && (s.TeamID == nil || *s.TeamID != filter.TeamID) {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if len(filter.HackathonIDs) > 0 {
			found := false
			for _, id := range filter.HackathonIDs {
				if s.HackathonID == id {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *fakeSubmissionRepo) Update(ctx context.Context, sub *model.Submission) error {
	if r.failAll {
		return errStorage
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.submissions[sub.ID]; !ok {
		return common.ErrNotFound
	}
	c := *sub
	r.submissions[sub.ID] = &c
	return nil
}

func (r *fakeSubmissionRepo) Delete(ctx context.Context, id string) error {
	if r.failAll {
		return errStorage
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.submissions[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.submissions, id)
	return nil
}

func (r *fakeSubmissionRepo) GetFilesBySubmissionIDs(ctx context.Context, submissionIDs []string) (map[string][]model.SubmissionFile, error) {
	if r.failAll {
		return nil, errStorage
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	result := map[string][]model.SubmissionFile{}
	for _, id := range submissionIDs {
		if files, ok := r.files[id]; ok {
			result[id] = append([]model.SubmissionFile(nil), files...)
		}
	}
	return result, nil
}

func (r *fakeSubmissionRepo) FindFirstForParticipantOrTeam(ctx context.Context, hackathonID, participantID string, teamID *string) (*model.Submission, error) {
	if r.failAll {
		return nil, errStorage
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.submissions {
		if s.HackathonID != hackathonID {
			continue
		}
		if s.ParticipantID == participantID {
			c := *s
			return &c, nil
		}
		if teamID != nil && s.TeamID != nil && *s.TeamID == *teamID {
			c := *s
			return &c, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeSubmissionRepo) Count(ctx context.Context) (int, error) {
	if r.failAll {
		return 0, errStorage
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.submissions), nil
}

func (r *fakeSubmissionRepo) CountByStatus(ctx context.Context, hackathonID string) (map[model.SubmissionStatus]int, error) {
	if r.failAll {
		return nil, errStorage
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[model.SubmissionStatus]int{}
	for _, s := range r.submissions {
		if s.HackathonID == hackathonID {
			counts[s.Status]++
		}
	}
	return counts, nil
}

// fakeStatsCache is a map-backed StatsCache.
type fakeStatsCache struct {
	mu     sync.Mutex
	values map[string]string
	sets   int
}

func newFakeStatsCache() *fakeStatsCache {
	return &fakeStatsCache{values: map[string]string{}}
}

func (c *fakeStatsCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[key], nil
}

func (c *fakeStatsCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	c.sets++
	return nil
}
