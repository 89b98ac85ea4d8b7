package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"tally/internal/modules/tracker/domain"
	apperrors "tally/internal/platform/errors"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type seqID struct {
	n int
}

func (g *seqID) New() string {
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

type fakeStore struct {
	sessions map[string]domain.Session
	tags     map[string]domain.Tag
	config   map[string]string
	putTags  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sessions: make(map[string]domain.Session),
		tags:     make(map[string]domain.Tag),
		config:   make(map[string]string),
	}
}

func (f *fakeStore) GetAllSessions(context.Context) ([]domain.Session, error) {
	out := make([]domain.Session, 0, len(f.sessions))
	for _, s := range f.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

func (f *fakeStore) GetSession(_ context.Context, id string) (domain.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return domain.Session{}, apperrors.ErrNotFound
	}
	return s, nil
}

func (f *fakeStore) PutSession(_ context.Context, s domain.Session) error {
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeStore) GetTag(_ context.Context, name string) (domain.Tag, error) {
	t, ok := f.tags[name]
	if !ok {
		return domain.Tag{}, apperrors.ErrNotFound
	}
	return t, nil
}

func (f *fakeStore) GetAllTags(context.Context) ([]domain.Tag, error) {
	out := make([]domain.Tag, 0, len(f.tags))
	for _, t := range f.tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeStore) PutTag(_ context.Context, t domain.Tag) error {
	f.putTags++
	f.tags[t.Name] = t
	return nil
}

func (f *fakeStore) DeleteTag(_ context.Context, name string) error {
	if _, ok := f.tags[name]; !ok {
		return apperrors.ErrNotFound
	}
	delete(f.tags, name)
	return nil
}

func (f *fakeStore) GetConfig(_ context.Context, key string) (string, error) {
	v, ok := f.config[key]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return v, nil
}

func (f *fakeStore) PutConfig(_ context.Context, key, value string) error {
	f.config[key] = value
	return nil
}

func newTestService() (*TrackerService, *fakeStore, *fakeClock) {
	store := newFakeStore()
	clk := &fakeClock{now: time.UnixMilli(1_700_000_000_000)}
	svc := NewTrackerService(clk, &seqID{}, store, store, store)
	return svc, store, clk
}

func TestStartRejectsSecondLiveSession(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Start(ctx, "first", ""); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := svc.Start(ctx, "second", ""); !errors.Is(err, apperrors.ErrActiveSessionExists) {
		t.Fatalf("expected ErrActiveSessionExists, got %v", err)
	}
}

func TestStartRequiresTitle(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()
	if _, err := svc.Start(context.Background(), "   ", ""); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestStartSnapshotsTag(t *testing.T) {
	t.Parallel()
	svc, store, _ := newTestService()
	ctx := context.Background()
	store.tags["Work"] = domain.Tag{Name: "Work", Color: "#767676", DateCreated: 1, DateLastUsed: 1, TotalInstances: 7}

	session, err := svc.Start(ctx, "tagged", "Work")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if session.Tag == nil || session.Tag.TotalInstances != 7 {
		t.Fatalf("tag snapshot missing: %+v", session.Tag)
	}

	// Mutating the live tag record must not reach the stored snapshot.
	store.tags["Work"] = domain.Tag{Name: "Work", Color: "#DC2626", DateCreated: 1, DateLastUsed: 1, TotalInstances: 99}
	stored := store.sessions[session.ID]
	if stored.Tag.Color != "#767676" {
		t.Errorf("snapshot changed with live tag: %+v", stored.Tag)
	}
}

func TestStartUnknownTagFails(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()
	if _, err := svc.Start(context.Background(), "tagged", "Nope"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPauseResumeAccumulatesDuration(t *testing.T) {
	t.Parallel()
	svc, _, clk := newTestService()
	ctx := context.Background()

	if _, err := svc.Start(ctx, "work", ""); err != nil {
		t.Fatalf("Start: %v", err)
	}
	clk.advance(10 * time.Minute)
	paused, err := svc.Pause(ctx)
	if err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if paused.DurationMS != 10*60*1000 {
		t.Fatalf("paused duration = %d, want %d", paused.DurationMS, 10*60*1000)
	}

	// Paused time does not count.
	clk.advance(30 * time.Minute)
	if _, err := svc.Resume(ctx); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	clk.advance(5 * time.Minute)
	stopped, err := svc.Stop(ctx, 4.5, "done")
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if want := int64(15 * 60 * 1000); stopped.DurationMS != want {
		t.Errorf("final duration = %d, want %d", stopped.DurationMS, want)
	}
	if stopped.State != domain.StateCompleted || stopped.Rating != 4.5 || stopped.Comment != "done" {
		t.Errorf("unexpected final session: %+v", stopped)
	}
}

func TestPauseTwiceFails(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.Start(ctx, "work", ""); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := svc.Pause(ctx); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if _, err := svc.Pause(ctx); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestResumeWithoutPauseFails(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.Start(ctx, "work", ""); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := svc.Resume(ctx); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestStopWithoutLiveSession(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()
	if _, err := svc.Stop(context.Background(), 3, ""); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
}

func TestStopRejectsOutOfRangeRating(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.Start(ctx, "work", ""); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := svc.Stop(ctx, 5.1, ""); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestStopBumpsTagUsage(t *testing.T) {
	t.Parallel()
	svc, store, clk := newTestService()
	ctx := context.Background()
	store.tags["Work"] = domain.Tag{Name: "Work", Color: "#767676", DateCreated: 1, DateLastUsed: 1, TotalInstances: 2}

	if _, err := svc.Start(ctx, "work", "Work"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	clk.advance(time.Minute)
	if _, err := svc.Stop(ctx, 3, ""); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	tag := store.tags["Work"]
	if tag.TotalInstances != 3 {
		t.Errorf("TotalInstances = %d, want 3", tag.TotalInstances)
	}
	if tag.DateLastUsed != clk.now.UnixMilli() {
		t.Errorf("DateLastUsed = %d, want %d", tag.DateLastUsed, clk.now.UnixMilli())
	}
}

func TestStopSurvivesDeletedTag(t *testing.T) {
	t.Parallel()
	svc, store, _ := newTestService()
	ctx := context.Background()
	store.tags["Work"] = domain.Tag{Name: "Work", Color: "#767676", DateCreated: 1, DateLastUsed: 1}

	if _, err := svc.Start(ctx, "work", "Work"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	delete(store.tags, "Work")
	session, err := svc.Stop(ctx, 3, "")
	if err != nil {
		t.Fatalf("Stop after tag delete: %v", err)
	}
	if session.Tag == nil || session.Tag.Name != "Work" {
		t.Errorf("snapshot should outlive the tag: %+v", session.Tag)
	}
}

func TestAbortKeepsAccumulatedDuration(t *testing.T) {
	t.Parallel()
	svc, _, clk := newTestService()
	ctx := context.Background()
	if _, err := svc.Start(ctx, "work", ""); err != nil {
		t.Fatalf("Start: %v", err)
	}
	clk.advance(2 * time.Minute)
	session, err := svc.Abort(ctx)
	if err != nil {
		t.Fatalf("Abort: %v", err)
	}
	if session.State != domain.StateAborted {
		t.Errorf("state = %s, want aborted", session.State)
	}
	if session.DurationMS != 2*60*1000 {
		t.Errorf("duration = %d, want %d", session.DurationMS, 2*60*1000)
	}
}

func TestGetSessionByID(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()
	ctx := context.Background()

	started, err := svc.Start(ctx, "work", "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	got, err := svc.GetSession(ctx, started.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.Title != "work" {
		t.Errorf("title = %q, want %q", got.Title, "work")
	}
	if _, err := svc.GetSession(ctx, "missing"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.GetSession(ctx, "  "); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreateTagAssignsNextFreeColor(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()
	ctx := context.Background()

	first, err := svc.CreateTag(ctx, "Alpha")
	if err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if first.Color != domain.Palette[0] {
		t.Errorf("first color = %s, want %s", first.Color, domain.Palette[0])
	}
	second, err := svc.CreateTag(ctx, "Beta")
	if err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if second.Color != domain.Palette[1] {
		t.Errorf("second color = %s, want %s", second.Color, domain.Palette[1])
	}
}

func TestCreateTagDuplicateName(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.CreateTag(ctx, "Alpha"); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if _, err := svc.CreateTag(ctx, "Alpha"); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreateTagCapacity(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()
	ctx := context.Background()
	for i := 0; i < domain.MaxTags; i++ {
		if _, err := svc.CreateTag(ctx, fmt.Sprintf("tag-%02d", i)); err != nil {
			t.Fatalf("CreateTag %d: %v", i, err)
		}
	}
	if _, err := svc.CreateTag(ctx, "overflow"); !errors.Is(err, apperrors.ErrTagLimitReached) {
		t.Fatalf("expected ErrTagLimitReached, got %v", err)
	}
}

func TestSeedDefaultsOnce(t *testing.T) {
	t.Parallel()
	svc, store, _ := newTestService()
	ctx := context.Background()

	if err := svc.SeedDefaults(ctx); err != nil {
		t.Fatalf("SeedDefaults: %v", err)
	}
	for i, name := range domain.DefaultTagNames {
		tag, ok := store.tags[name]
		if !ok {
			t.Fatalf("default tag %q missing", name)
		}
		if tag.Color != domain.Palette[i] {
			t.Errorf("tag %q color = %s, want %s", name, tag.Color, domain.Palette[i])
		}
	}

	puts := store.putTags
	if err := svc.SeedDefaults(ctx); err != nil {
		t.Fatalf("second SeedDefaults: %v", err)
	}
	if store.putTags != puts {
		t.Errorf("seeding ran twice")
	}
}
