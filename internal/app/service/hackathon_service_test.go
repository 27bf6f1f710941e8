package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"hackhub/internal/common"
	"hackhub/internal/domain/model"
)

func newHackathonServiceForTest() (*HackathonService, *fakeHackathonRepo, *fakeParticipantRepo, *fakeSubmissionRepo, *fakeUserRepo) {
	hackRepo := newFakeHackathonRepo()
	partRepo := newFakeParticipantRepo()
	subRepo := newFakeSubmissionRepo()
	userRepo := newFakeUserRepo()
	svc := NewHackathonService(hackRepo, partRepo, subRepo, userRepo)
	return svc, hackRepo, partRepo, subRepo, userRepo
}

func TestCreateHackathonDefaults(t *testing.T) {
	svc, hackRepo, _, _, _ := newHackathonServiceForTest()

	amount := 500.0
	h, err := svc.Create(context.Background(), "org-1", CreateHackathonRequest{
		Title:       "AI for Good 2026",
		Description: "Build something useful",
		StartDate:   time.Now().Add(24 * time.Hour),
		EndDate:     time.Now().Add(72 * time.Hour),
		PrizeAmount: &amount,
		Tracks: []TrackSpec{
			{TrackNumber: 1, TrackTitle: "Healthcare", FileName: "health.pdf", FileURL: "https://cdn/x", FileType: "application/pdf"},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if h.Status != model.StatusUpcoming {
		t.Errorf("new hackathon must start UPCOMING, got %s", h.Status)
	}
	if h.Slug != "ai-for-good-2026" {
		t.Errorf("unexpected slug %q", h.Slug)
	}
	if h.MinTeamSize != 1 || h.MaxTeamSize != 5 {
		t.Errorf("team size defaults not applied: min=%d max=%d", h.MinTeamSize, h.MaxTeamSize)
	}
	if h.Type != model.TypeTeam {
		t.Errorf("expected TEAM type by default, got %s", h.Type)
	}
	if h.PrizePool == nil || *h.PrizePool != "USD 500.00" {
		t.Errorf("unexpected prize pool: %v", h.PrizePool)
	}

	tracks, err := hackRepo.GetTracks(context.Background(), h.ID)
	if err != nil {
		t.Fatalf("GetTracks: %v", err)
	}
	if len(tracks) != 1 || tracks[0].TrackTitle != "Healthcare" {
		t.Errorf("tracks not persisted with hackathon: %+v", tracks)
	}
}

func TestCreateHackathonRequiredFields(t *testing.T) {
	svc, _, _, _, _ := newHackathonServiceForTest()

	_, err := svc.Create(context.Background(), "org-1", CreateHackathonRequest{Title: "No dates"})
	if !errors.Is(err, common.ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}
}

func TestUpdateHackathonPartialPatch(t *testing.T) {
	svc, hackRepo, _, _, _ := newHackathonServiceForTest()
	h := seedHackathon(t, hackRepo, "org-1", model.StatusUpcoming)

	newTitle := "Renamed Event"
	updated, err := svc.Update(context.Background(), "org-1", h.ID, UpdateHackathonRequest{Title: &newTitle})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "Renamed Event" {
		t.Errorf("title not updated: %q", updated.Title)
	}
	if updated.Slug != "renamed-event" {
		t.Errorf("slug must follow title: %q", updated.Slug)
	}
	if updated.Description != h.Description {
		t.Error("absent fields must be left untouched")
	}
	if updated.MinTeamSize != h.MinTeamSize || updated.MaxTeamSize != h.MaxTeamSize {
		t.Error("team sizes changed without being patched")
	}
}

func TestMutationsAreOrganizerOnly(t *testing.T) {
	svc, hackRepo, _, _, _ := newHackathonServiceForTest()
	h := seedHackathon(t, hackRepo, "org-1", model.StatusUpcoming)

	title := "x"
	cases := map[string]error{}
	_, err := svc.Update(context.Background(), "intruder", h.ID, UpdateHackathonRequest{Title: &title})
	cases["update"] = err
	_, err = svc.Publish(context.Background(), "intruder", h.ID)
	cases["publish"] = err
	_, err = svc.UpdateStatus(context.Background(), "intruder", h.ID, model.StatusPublished)
	cases["updateStatus"] = err
	cases["remove"] = svc.Remove(context.Background(), "intruder", h.ID)

	for op, err := range cases {
		if !errors.Is(err, common.ErrForbidden) {
			t.Errorf("%s by non-organizer: expected ErrForbidden, got %v", op, err)
		}
	}

	// Nothing must have changed.
	got, err := hackRepo.FindByID(context.Background(), h.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Status != model.StatusUpcoming || got.Title != h.Title {
		t.Errorf("hackathon mutated by rejected calls: %+v", got)
	}
}

func TestPublishSetsLive(t *testing.T) {
	svc, hackRepo, _, _, _ := newHackathonServiceForTest()
	h := seedHackathon(t, hackRepo, "org-1", model.StatusUpcoming)

	published, err := svc.Publish(context.Background(), "org-1", h.ID)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if published.Status != model.StatusLive {
		t.Errorf("expected LIVE after publish, got %s", published.Status)
	}
}

func TestUpdateStatusFollowsGraph(t *testing.T) {
	svc, hackRepo, _, _, _ := newHackathonServiceForTest()
	h := seedHackathon(t, hackRepo, "org-1", model.StatusUpcoming)

	updated, err := svc.UpdateStatus(context.Background(), "org-1", h.ID, model.StatusPublished)
	if err != nil {
		t.Fatalf("UPCOMING -> PUBLISHED should be allowed: %v", err)
	}
	if updated.Status != model.StatusPublished {
		t.Errorf("status not applied: %s", updated.Status)
	}

	// PUBLISHED -> COMPLETED is not an edge in the graph.
	_, err = svc.UpdateStatus(context.Background(), "org-1", h.ID, model.StatusCompleted)
	if !errors.Is(err, common.ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest for illegal transition, got %v", err)
	}

	_, err = svc.UpdateStatus(context.Background(), "org-1", h.ID, "SHIPPED")
	if !errors.Is(err, common.ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest for unknown status, got %v", err)
	}
}

func TestUpdateStatusTerminalStates(t *testing.T) {
	svc, hackRepo, _, _, _ := newHackathonServiceForTest()

	for _, terminal := range []model.HackathonStatus{model.StatusCompleted, model.StatusCancelled} {
		h := seedHackathon(t, hackRepo, "org-1", terminal)
		_, err := svc.UpdateStatus(context.Background(), "org-1", h.ID, model.StatusLive)
		if !errors.Is(err, common.ErrBadRequest) {
			t.Errorf("%s must be terminal, got %v", terminal, err)
		}
	}
}

func TestRemoveHackathon(t *testing.T) {
	svc, hackRepo, _, _, _ := newHackathonServiceForTest()
	h := seedHackathon(t, hackRepo, "org-1", model.StatusUpcoming)

	if err := svc.Remove(context.Background(), "org-1", h.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := hackRepo.FindByID(context.Background(), h.ID); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := svc.Get(context.Background(), h.ID); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("Get after delete: expected ErrNotFound, got %v", err)
	}
}

func TestGetMyHackathonsAttachesOwnSubmissions(t *testing.T) {
	svc, hackRepo, partRepo, subRepo, _ := newHackathonServiceForTest()
	h := seedHackathon(t, hackRepo, "org-1", model.StatusLive)

	p := &model.Participant{ID: "p-1", UserID: "user-1", HackathonID: h.ID, Role: model.ParticipantMember}
	if err := partRepo.CreateRegistration(context.Background(), nil, p); err != nil {
		t.Fatalf("seed participant: %v", err)
	}
	sub := &model.Submission{
		ID:            "sub-1",
		HackathonID:   h.ID,
		ParticipantID: p.ID,
		Title:         "My Project",
		Status:        model.SubmissionDraft,
		Participant:   p,
	}
	if err := subRepo.CreateWithFiles(context.Background(), sub, nil); err != nil {
		t.Fatalf("seed submission: %v", err)
	}

	mine, err := svc.GetMyHackathons(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetMyHackathons: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("expected 1 hackathon, got %d", len(mine))
	}
	if mine[0].ID != h.ID {
		t.Errorf("wrong hackathon: %s", mine[0].ID)
	}
	if len(mine[0].Submissions) != 1 || mine[0].Submissions[0].Title != "My Project" {
		t.Errorf("own submissions not attached: %+v", mine[0].Submissions)
	}

	// Users with no participations get an empty list, not nil.
	none, err := svc.GetMyHackathons(context.Background(), "stranger")
	if err != nil {
		t.Fatalf("GetMyHackathons (stranger): %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("expected empty slice, got %v", none)
	}
}

func TestGetParticipantsFlagsSubmissions(t *testing.T) {
	svc, hackRepo, partRepo, subRepo, _ := newHackathonServiceForTest()
	h := seedHackathon(t, hackRepo, "org-1", model.StatusLive)

	teamID := "team-1"
	team := &model.Team{ID: teamID, HackathonID: h.ID, Name: "Rocket", LeaderID: "user-1"}
	leader := &model.Participant{ID: "p-1", UserID: "user-1", HackathonID: h.ID, TeamID: &teamID, Role: model.ParticipantLeader}
	if err := partRepo.CreateRegistration(context.Background(), team, leader); err != nil {
		t.Fatalf("seed leader: %v", err)
	}
	solo := &model.Participant{ID: "p-2", UserID: "user-2", HackathonID: h.ID, Role: model.ParticipantMember}
	if err := partRepo.CreateRegistration(context.Background(), nil, solo); err != nil {
		t.Fatalf("seed solo: %v", err)
	}

	sub := &model.Submission{
		ID:            "sub-1",
		HackathonID:   h.ID,
		ParticipantID: leader.ID,
		TeamID:        &teamID,
		Title:         "Team Entry",
		Status:        model.SubmissionSubmitted,
		Participant:   leader,
	}
	if err := subRepo.CreateWithFiles(context.Background(), sub, nil); err != nil {
		t.Fatalf("seed submission: %v", err)
	}

	roster, err := svc.GetParticipants(context.Background(), h.ID)
	if err != nil {
		t.Fatalf("GetParticipants: %v", err)
	}
	if len(roster) != 2 {
		t.Fatalf("expected 2 roster entries, got %d", len(roster))
	}

	byID := map[string]RosterEntry{}
	for _, e := range roster {
		byID[e.Participant.ID] = e
	}
	if !byID["p-1"].HasSubmission || byID["p-1"].SubmissionID == nil {
		t.Error("leader with submission must be flagged")
	}
	if byID["p-1"].Team == nil || byID["p-1"].Team.Name != "Rocket" {
		t.Errorf("team not attached to leader row: %+v", byID["p-1"].Team)
	}
	if byID["p-2"].HasSubmission {
		t.Error("solo participant without submission must not be flagged")
	}
}

func TestGetParticipantsUnknownHackathon(t *testing.T) {
	svc, _, _, _, _ := newHackathonServiceForTest()

	_, err := svc.GetParticipants(context.Background(), "missing")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
