package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/portfolio-review-api/internal/mocks"
	"github.com/portfolio-review-api/internal/models"
	"github.com/portfolio-review-api/internal/repository"
	"github.com/portfolio-review-api/internal/service"
	"github.com/rs/zerolog"
)

func setupReviewService() (service.ReviewService, *mocks.MockCommentRepository, *mocks.MockWatermarkRepository, *mocks.MockAccountRepository) {
	commentRepo := mocks.NewMockCommentRepository()
	watermarkRepo := mocks.NewMockWatermarkRepository()
	accountRepo := mocks.NewMockAccountRepository()

	repos := &repository.Repositories{
		Account:   accountRepo,
		Comment:   commentRepo,
		Watermark: watermarkRepo,
	}
	svc := service.NewReviewService(repos, models.PortfolioSections, zerolog.Nop())
	return svc, commentRepo, watermarkRepo, accountRepo
}

func addComment(repo *mocks.MockCommentRepository, id, profile, section string, ts time.Time) *models.Comment {
	c := &models.Comment{
		ID:           id,
		AuthorEmail:  "author.person@colorado.edu",
		ProfileEmail: profile,
		SectionName:  section,
		Contents:     "comment " + id,
		Timestamp:    ts,
	}
	repo.Comments = append(repo.Comments, c)
	return c
}

func setWatermark(repo *mocks.MockWatermarkRepository, viewer, profile string, section *string, visited *time.Time) {
	repo.Watermarks = append(repo.Watermarks, &models.Watermark{
		ID:           "wm-" + viewer,
		ViewerEmail:  viewer,
		ProfileEmail: profile,
		SectionName:  section,
		LastVisited:  visited,
		CreatedAt:    time.Now(),
	})
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

const (
	viewerEmail  = "vera.viewer@colorado.edu"
	profileEmail = "paul.profile@colorado.edu"
)

func viewer() *models.Identity { return &models.Identity{Email: viewerEmail} }

func TestNewComments_NeverVisited_EverythingIsNew(t *testing.T) {
	svc, commentRepo, watermarkRepo, _ := setupReviewService()
	ctx := context.Background()

	addComment(commentRepo, "c1", profileEmail, "work", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	addComment(commentRepo, "c2", profileEmail, "work", time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))

	newComments, err := svc.NewComments(ctx, viewer(), profileEmail, strPtr("work"))
	if err != nil {
		t.Fatalf("NewComments failed: %v", err)
	}
	if len(newComments) != 2 {
		t.Fatalf("Expected 2 new comments, got %d", len(newComments))
	}

	oldComments, err := svc.OldComments(ctx, viewer(), profileEmail, strPtr("work"))
	if err != nil {
		t.Fatalf("OldComments failed: %v", err)
	}
	if len(oldComments) != 0 {
		t.Errorf("Expected 0 old comments for a never-visited section, got %d", len(oldComments))
	}

	// The first read lazily creates exactly one unvisited watermark
	if watermarkRepo.CreateCalls != 1 {
		t.Errorf("Expected 1 watermark created, got %d", watermarkRepo.CreateCalls)
	}
	wm, _ := watermarkRepo.Find(ctx, viewerEmail, profileEmail, strPtr("work"))
	if wm == nil {
		t.Fatal("Watermark should exist after first read")
	}
	if wm.LastVisited != nil {
		t.Error("Lazily created watermark should have nil last_visited")
	}
}

func TestPartition_StrictSplit(t *testing.T) {
	svc, commentRepo, watermarkRepo, _ := setupReviewService()
	ctx := context.Background()

	cutoff := time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)
	addComment(commentRepo, "before", profileEmail, "work", cutoff.Add(-time.Hour))
	addComment(commentRepo, "exact", profileEmail, "work", cutoff)
	addComment(commentRepo, "after", profileEmail, "work", cutoff.Add(time.Hour))
	setWatermark(watermarkRepo, viewerEmail, profileEmail, strPtr("work"), timePtr(cutoff))

	newComments, err := svc.NewComments(ctx, viewer(), profileEmail, strPtr("work"))
	if err != nil {
		t.Fatalf("NewComments failed: %v", err)
	}
	oldComments, err := svc.OldComments(ctx, viewer(), profileEmail, strPtr("work"))
	if err != nil {
		t.Fatalf("OldComments failed: %v", err)
	}

	// new ∪ old covers everything, new ∩ old is empty
	if len(newComments)+len(oldComments) != 3 {
		t.Fatalf("Partition lost comments: %d new + %d old != 3", len(newComments), len(oldComments))
	}
	seen := map[string]int{}
	for _, c := range newComments {
		seen[c.ID]++
	}
	for _, c := range oldComments {
		seen[c.ID]++
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("Comment %s appears %d times across the partition", id, n)
		}
	}

	// A comment stamped exactly at the watermark is old
	if len(newComments) != 1 || newComments[0].ID != "after" {
		t.Errorf("Expected only the later comment to be new, got %v", ids(newComments))
	}
	if len(oldComments) != 2 {
		t.Errorf("Expected boundary comment classified old, got %v", ids(oldComments))
	}

	// Both halves are newest-first
	if oldComments[0].ID != "exact" || oldComments[1].ID != "before" {
		t.Errorf("Old comments not in reverse chronological order: %v", ids(oldComments))
	}
}

func TestPartition_SectionScenario(t *testing.T) {
	// Comments at 2000-01-02 (section1=work) and 2003-04-05 (section2=experience),
	// watermark on work at 2001-04-05.
	svc, commentRepo, watermarkRepo, _ := setupReviewService()
	ctx := context.Background()

	early := addComment(commentRepo, "early", profileEmail, "work", time.Date(2000, 1, 2, 0, 0, 0, 0, time.UTC))
	late := addComment(commentRepo, "late", profileEmail, "experience", time.Date(2003, 4, 5, 0, 0, 0, 0, time.UTC))
	cutoff := time.Date(2001, 4, 5, 0, 0, 0, 0, time.UTC)
	setWatermark(watermarkRepo, viewerEmail, profileEmail, strPtr("work"), timePtr(cutoff))

	newComments, err := svc.NewComments(ctx, viewer(), profileEmail, strPtr("work"))
	if err != nil {
		t.Fatalf("NewComments failed: %v", err)
	}
	if len(newComments) != 0 {
		t.Errorf("Expected no new comments in work, got %v", ids(newComments))
	}

	oldComments, err := svc.OldComments(ctx, viewer(), profileEmail, strPtr("work"))
	if err != nil {
		t.Fatalf("OldComments failed: %v", err)
	}
	if len(oldComments) != 1 || oldComments[0].ID != early.ID {
		t.Errorf("Expected the 2000 comment to be old, got %v", ids(oldComments))
	}

	// Profile-wide query with a profile-wide watermark at the same cutoff
	setWatermark(watermarkRepo, viewerEmail, profileEmail, nil, timePtr(cutoff))
	newAll, err := svc.NewComments(ctx, viewer(), profileEmail, nil)
	if err != nil {
		t.Fatalf("NewComments failed: %v", err)
	}
	if len(newAll) != 1 || newAll[0].ID != late.ID {
		t.Errorf("Expected the 2003 comment to be new profile-wide, got %v", ids(newAll))
	}
	oldAll, err := svc.OldComments(ctx, viewer(), profileEmail, nil)
	if err != nil {
		t.Fatalf("OldComments failed: %v", err)
	}
	if len(oldAll) != 1 || oldAll[0].ID != early.ID {
		t.Errorf("Expected the 2000 comment to be old profile-wide, got %v", ids(oldAll))
	}
}

func TestUnreadSummary_OmitsZeroCountSections(t *testing.T) {
	// Watermark only on work at 2001-04-05; comment in experience at
	// 2003-04-05 with no watermark (everything there is new).
	svc, commentRepo, watermarkRepo, _ := setupReviewService()
	ctx := context.Background()

	addComment(commentRepo, "early", profileEmail, "work", time.Date(2000, 1, 2, 0, 0, 0, 0, time.UTC))
	addComment(commentRepo, "late", profileEmail, "experience", time.Date(2003, 4, 5, 0, 0, 0, 0, time.UTC))
	setWatermark(watermarkRepo, viewerEmail, profileEmail, strPtr("work"),
		timePtr(time.Date(2001, 4, 5, 0, 0, 0, 0, time.UTC)))

	summary, err := svc.UnreadSummary(ctx, viewer(), profileEmail)
	if err != nil {
		t.Fatalf("UnreadSummary failed: %v", err)
	}

	if len(summary) != 1 {
		t.Fatalf("Expected exactly 1 section in summary, got %v", summary)
	}
	if summary["experience"] != 1 {
		t.Errorf("Expected experience: 1, got %v", summary)
	}
	if _, present := summary["work"]; present {
		t.Error("Sections with zero unread comments must be omitted")
	}
}

func TestUnreadSummary_IsAPureRead(t *testing.T) {
	svc, commentRepo, watermarkRepo, _ := setupReviewService()
	ctx := context.Background()

	addComment(commentRepo, "c1", profileEmail, "work", time.Now())

	if _, err := svc.UnreadSummary(ctx, viewer(), profileEmail); err != nil {
		t.Fatalf("UnreadSummary failed: %v", err)
	}
	if watermarkRepo.CreateCalls != 0 {
		t.Errorf("UnreadSummary must not create watermark rows, created %d", watermarkRepo.CreateCalls)
	}
}

func TestMarkViewed_AdvancesWatermark(t *testing.T) {
	svc, commentRepo, watermarkRepo, _ := setupReviewService()
	ctx := context.Background()

	addComment(commentRepo, "c1", profileEmail, "work", time.Now().Add(-time.Hour))

	before, err := svc.NewComments(ctx, viewer(), profileEmail, strPtr("work"))
	if err != nil {
		t.Fatalf("NewComments failed: %v", err)
	}
	if len(before) != 1 {
		t.Fatalf("Expected 1 new comment before acknowledgment, got %d", len(before))
	}

	if err := svc.MarkViewed(ctx, viewer(), profileEmail, strPtr("work")); err != nil {
		t.Fatalf("MarkViewed failed: %v", err)
	}

	after, err := svc.NewComments(ctx, viewer(), profileEmail, strPtr("work"))
	if err != nil {
		t.Fatalf("NewComments failed: %v", err)
	}
	if len(after) != 0 {
		t.Errorf("Expected no new comments after acknowledgment, got %d", len(after))
	}

	wm, _ := watermarkRepo.Find(ctx, viewerEmail, profileEmail, strPtr("work"))
	if wm == nil || wm.LastVisited == nil {
		t.Fatal("Watermark should have a last_visited time after MarkViewed")
	}
}

func TestMarkViewed_ProfileWideIsDistinctFromSections(t *testing.T) {
	svc, _, watermarkRepo, _ := setupReviewService()
	ctx := context.Background()

	if err := svc.MarkViewed(ctx, viewer(), profileEmail, nil); err != nil {
		t.Fatalf("MarkViewed failed: %v", err)
	}

	// The profile-wide acknowledgment must not touch any section watermark
	sectionWm, _ := watermarkRepo.Find(ctx, viewerEmail, profileEmail, strPtr("work"))
	if sectionWm != nil {
		t.Error("Profile-wide mark-viewed must not create section watermarks")
	}
	profileWm, _ := watermarkRepo.Find(ctx, viewerEmail, profileEmail, nil)
	if profileWm == nil || profileWm.LastVisited == nil {
		t.Fatal("Profile-wide watermark should exist and be visited")
	}
}

func TestAddComment_SanitizesAndMarksOwnSectionViewed(t *testing.T) {
	svc, commentRepo, _, _ := setupReviewService()
	ctx := context.Background()
	author := &models.Identity{Email: "rita.reviewer@colorado.edu"}

	comment, err := svc.AddComment(ctx, author, profileEmail, "work", "<b>great</b>\nwork")
	if err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}

	if comment.Contents != "&lt;b&gt;great&lt;/b&gt;<br>work" {
		t.Errorf("Contents not sanitized as expected: %q", comment.Contents)
	}
	if comment.ID == "" {
		t.Error("Comment should get an ID")
	}
	if len(commentRepo.Comments) != 1 {
		t.Fatalf("Expected 1 stored comment, got %d", len(commentRepo.Comments))
	}

	// The author does not see their own comment as unread
	newComments, err := svc.NewComments(ctx, author, profileEmail, strPtr("work"))
	if err != nil {
		t.Fatalf("NewComments failed: %v", err)
	}
	if len(newComments) != 0 {
		t.Errorf("Author should not see own comment as new, got %d", len(newComments))
	}
}

func TestAddComment_UnknownSection(t *testing.T) {
	svc, _, _, _ := setupReviewService()

	_, err := svc.AddComment(context.Background(), viewer(), profileEmail, "hobbies", "hi")
	if err != service.ErrUnknownSection {
		t.Errorf("Expected ErrUnknownSection, got %v", err)
	}
}

func TestUpdatedPortfolios_KeepsOnlyProfilesWithUnread(t *testing.T) {
	svc, commentRepo, _, accountRepo := setupReviewService()
	ctx := context.Background()

	quiet := &models.Account{Email: "quinn.quiet@colorado.edu", LastName: "Quiet", FirstName: "Quinn", Role: models.RoleMember}
	busy := &models.Account{Email: profileEmail, LastName: "Profile", FirstName: "Paul", Role: models.RoleMember}
	accountRepo.Accounts[quiet.Email] = quiet
	accountRepo.Accounts[busy.Email] = busy

	addComment(commentRepo, "c1", profileEmail, "research", time.Now())

	statuses, err := svc.UpdatedPortfolios(ctx, viewer())
	if err != nil {
		t.Fatalf("UpdatedPortfolios failed: %v", err)
	}

	if len(statuses) != 1 {
		t.Fatalf("Expected 1 updated portfolio, got %d", len(statuses))
	}
	if statuses[0].Account.Email != profileEmail {
		t.Errorf("Expected %s, got %s", profileEmail, statuses[0].Account.Email)
	}
	if statuses[0].Unread["research"] != 1 {
		t.Errorf("Expected research: 1, got %v", statuses[0].Unread)
	}
}

func TestCounts(t *testing.T) {
	svc, commentRepo, _, accountRepo := setupReviewService()
	ctx := context.Background()

	accountRepo.Accounts["a@colorado.edu"] = &models.Account{Email: "a@colorado.edu"}
	addComment(commentRepo, "c1", profileEmail, "work", time.Now())
	addComment(commentRepo, "c2", profileEmail, "work", time.Now())

	counts, err := svc.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if counts["accounts"] != 1 || counts["comments"] != 2 || counts["watermarks"] != 0 {
		t.Errorf("Unexpected counts: %v", counts)
	}
}

func ids(comments []*models.Comment) []string {
	out := make([]string, 0, len(comments))
	for _, c := range comments {
		out = append(out, c.ID)
	}
	return out
}
