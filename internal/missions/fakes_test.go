package missions

import (
	"context"
	stderrors "errors"
	"sort"
	"sync"
	"time"

	"mission-workers/internal/common/errors"
	"mission-workers/internal/models"
)

// memStore is an in-memory Store. InTx serialises transactions and restores
// the previous state when fn fails.
type memStore struct {
	mu          sync.Mutex
	apps        map[string]models.ApplicationRecord
	subs        map[string]models.MissionSubmission
	revisions   map[string][]models.RevisionRequest
	portfolio   map[string]models.PortfolioEntry
	campaigns   map[string]models.CampaignSnapshot
	commits     int
	failUpdates bool
	// locks records every row lock as "application:<id>" or "submission:<id>".
	locks []string
}

func newMemStore() *memStore {
	return &memStore{
		apps:      map[string]models.ApplicationRecord{},
		subs:      map[string]models.MissionSubmission{},
		revisions: map[string][]models.RevisionRequest{},
		portfolio: map[string]models.PortfolioEntry{},
		campaigns: map[string]models.CampaignSnapshot{},
	}
}

func (s *memStore) addCampaign(id, owner, title string) {
	s.campaigns[id] = models.CampaignSnapshot{ID: id, OwnerID: owner, Title: title, Category: "beauty"}
}

func (s *memStore) addApplication(id, campaignID, influencerID string, status models.ApplicationStatus) {
	s.apps[id] = models.ApplicationRecord{ID: id, CampaignID: campaignID, InfluencerID: influencerID, Status: status}
}

func (s *memStore) app(id string) models.ApplicationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apps[id]
}

func (s *memStore) submissionFor(applicationID string) (models.MissionSubmission, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		if sub.ApplicationID == applicationID {
			return sub, true
		}
	}
	return models.MissionSubmission{}, false
}

func (s *memStore) revisionsOf(submissionID string) []models.RevisionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.RevisionRequest(nil), s.revisions[submissionID]...)
}

func (s *memStore) portfolioEntries() []models.PortfolioEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.PortfolioEntry, 0, len(s.portfolio))
	for _, e := range s.portfolio {
		out = append(out, e)
	}
	return out
}

func (s *memStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.clone()
	if err := fn(&memTx{s: s}); err != nil {
		s.restore(snapshot)
		return err
	}
	s.commits++
	return nil
}

func (s *memStore) ResolveSubmission(_ context.Context, id string) (*models.SubmissionRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subs[id]
	if !ok {
		return nil, errors.NewNotFoundError("submission", id)
	}
	return &models.SubmissionRef{
		SubmissionID:  sub.ID,
		ApplicationID: sub.ApplicationID,
		CampaignID:    s.apps[sub.ApplicationID].CampaignID,
	}, nil
}

func (s *memStore) lockLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.locks...)
}

type memState struct {
	apps      map[string]models.ApplicationRecord
	subs      map[string]models.MissionSubmission
	revisions map[string][]models.RevisionRequest
	portfolio map[string]models.PortfolioEntry
}

func (s *memStore) clone() memState {
	st := memState{
		apps:      make(map[string]models.ApplicationRecord, len(s.apps)),
		subs:      make(map[string]models.MissionSubmission, len(s.subs)),
		revisions: make(map[string][]models.RevisionRequest, len(s.revisions)),
		portfolio: make(map[string]models.PortfolioEntry, len(s.portfolio)),
	}
	for k, v := range s.apps {
		st.apps[k] = v
	}
	for k, v := range s.subs {
		st.subs[k] = v
	}
	for k, v := range s.revisions {
		st.revisions[k] = append([]models.RevisionRequest(nil), v...)
	}
	for k, v := range s.portfolio {
		st.portfolio[k] = v
	}
	return st
}

func (s *memStore) restore(st memState) {
	s.apps, s.subs, s.revisions, s.portfolio = st.apps, st.subs, st.revisions, st.portfolio
}

type memTx struct {
	s *memStore
}

func (t *memTx) LockApplication(_ context.Context, id string) (*models.ApplicationRecord, error) {
	t.s.locks = append(t.s.locks, "application:"+id)
	app, ok := t.s.apps[id]
	if !ok {
		return nil, errors.NewNotFoundError("application", id)
	}
	return &app, nil
}

func (t *memTx) UpdateApplicationStatus(_ context.Context, app *models.ApplicationRecord) error {
	if t.s.failUpdates {
		return errors.NewQueryExecutionFailedError("update application", stderrors.New("connection reset"))
	}
	t.s.apps[app.ID] = *app
	return nil
}

func (t *memTx) LockSubmission(_ context.Context, id string) (*models.MissionSubmission, error) {
	t.s.locks = append(t.s.locks, "submission:"+id)
	sub, ok := t.s.subs[id]
	if !ok {
		return nil, errors.NewNotFoundError("submission", id)
	}
	return &sub, nil
}

func (t *memTx) LockSubmissionForApplication(_ context.Context, applicationID string) (*models.MissionSubmission, error) {
	for _, sub := range t.s.subs {
		if sub.ApplicationID == applicationID {
			sub := sub
			t.s.locks = append(t.s.locks, "submission:"+sub.ID)
			return &sub, nil
		}
	}
	return nil, nil
}

func (t *memTx) InsertSubmission(_ context.Context, sub *models.MissionSubmission) error {
	t.s.subs[sub.ID] = *sub
	return nil
}

func (t *memTx) UpdateSubmission(_ context.Context, sub *models.MissionSubmission) error {
	t.s.subs[sub.ID] = *sub
	return nil
}

func (t *memTx) ListRevisions(_ context.Context, submissionID string) ([]models.RevisionRequest, error) {
	return append([]models.RevisionRequest(nil), t.s.revisions[submissionID]...), nil
}

func (t *memTx) InsertRevision(_ context.Context, rev *models.RevisionRequest) error {
	for _, existing := range t.s.revisions[rev.SubmissionID] {
		if existing.RevisionNumber == rev.RevisionNumber {
			return errors.NewDatabaseInsertFailedError("insert revision", stderrors.New("duplicate revision number"))
		}
	}
	t.s.revisions[rev.SubmissionID] = append(t.s.revisions[rev.SubmissionID], *rev)
	return nil
}

func (t *memTx) UpdateRevision(_ context.Context, rev *models.RevisionRequest) error {
	list := t.s.revisions[rev.SubmissionID]
	for i := range list {
		if list[i].ID == rev.ID {
			list[i] = *rev
			return nil
		}
	}
	return errors.NewNotFoundError("revision request", rev.ID)
}

func (t *memTx) PortfolioExists(_ context.Context, applicationID string) (bool, error) {
	_, ok := t.s.portfolio[applicationID]
	return ok, nil
}

func (t *memTx) InsertPortfolioEntry(_ context.Context, entry *models.PortfolioEntry) (bool, error) {
	if _, ok := t.s.portfolio[entry.ApplicationID]; ok {
		return false, nil
	}
	t.s.portfolio[entry.ApplicationID] = *entry
	return true, nil
}

func (s *memStore) ListCampaignSubmissions(_ context.Context, campaignID string) ([]models.CampaignSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.CampaignSubmission{}
	for _, sub := range s.subs {
		app := s.apps[sub.ApplicationID]
		if app.CampaignID != campaignID {
			continue
		}
		out = append(out, models.CampaignSubmission{
			Submission:  sub,
			Application: app,
			Revisions:   append([]models.RevisionRequest{}, s.revisions[sub.ID]...),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Submission.ID < out[j].Submission.ID })
	return out, nil
}

func (s *memStore) ListMissionHistory(_ context.Context, influencerID string) ([]models.MissionHistoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.MissionHistoryItem{}
	for _, app := range s.apps {
		if app.InfluencerID != influencerID {
			continue
		}
		if app.Status != models.ApplicationSelected && app.Status != models.ApplicationCompleted {
			continue
		}
		item := models.MissionHistoryItem{
			ApplicationID: app.ID,
			CampaignID:    app.CampaignID,
			CampaignTitle: s.campaigns[app.CampaignID].Title,
			Status:        app.Status,
			UpdatedAt:     app.UpdatedAt,
		}
		for _, sub := range s.subs {
			if sub.ApplicationID == app.ID {
				sub := sub
				item.Submission = &sub
			}
		}
		if entry, ok := s.portfolio[app.ID]; ok {
			item.PortfolioEntryID = entry.ID
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (s *memStore) CampaignStatistics(_ context.Context, campaignID string) (*models.CampaignStatistics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &models.CampaignStatistics{
		Applications: map[models.ApplicationStatus]int{},
		Submissions:  map[models.ReviewStatus]int{},
	}
	for _, app := range s.apps {
		if app.CampaignID != campaignID {
			continue
		}
		stats.Applications[app.Status]++
		stats.TotalApplications++
	}
	for _, sub := range s.subs {
		if s.apps[sub.ApplicationID].CampaignID != campaignID {
			continue
		}
		stats.Submissions[sub.ReviewStatus]++
		stats.TotalSubmissions++
		for _, rev := range s.revisions[sub.ID] {
			stats.TotalRevisionRequests++
			if rev.IsOpen() {
				stats.OpenRevisionRequests++
			}
		}
	}
	return stats, nil
}

// memDirectory resolves campaigns from the store's campaign table.
type memDirectory struct {
	s      *memStore
	emails map[string]string
	// lookupsInTx counts campaign lookups made while a transaction held the store.
	lookupsInTx int
}

func (d *memDirectory) GetCampaign(_ context.Context, id string) (*models.CampaignSnapshot, error) {
	if d.s.mu.TryLock() {
		d.s.mu.Unlock()
	} else {
		d.lookupsInTx++
	}
	c, ok := d.s.campaigns[id]
	if !ok {
		return nil, errors.NewNotFoundError("campaign", id)
	}
	return &c, nil
}

func (d *memDirectory) ContactEmail(_ context.Context, influencerID string) (string, error) {
	return d.emails[influencerID], nil
}

type sentNotification struct {
	RecipientID string
	Kind        models.NotificationKind
	Payload     map[string]interface{}
}

type sentEmail struct {
	Address   string
	Template  models.EmailTemplate
	Variables map[string]string
}

// recordingGateway implements NotificationGateway and EmailGateway.
type recordingGateway struct {
	mu            sync.Mutex
	notifications []sentNotification
	emails        []sentEmail
	err           error
	onSend        func()
}

func (g *recordingGateway) Send(_ context.Context, recipientID string, kind models.NotificationKind, payload map[string]interface{}) error {
	if g.onSend != nil {
		g.onSend()
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.notifications = append(g.notifications, sentNotification{recipientID, kind, payload})
	return g.err
}

type recordingEmails struct {
	g *recordingGateway
}

func (e recordingEmails) Send(_ context.Context, address string, template models.EmailTemplate, vars map[string]string) error {
	e.g.mu.Lock()
	defer e.g.mu.Unlock()
	e.g.emails = append(e.g.emails, sentEmail{address, template, vars})
	return e.g.err
}

func (g *recordingGateway) kinds() []models.NotificationKind {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]models.NotificationKind, len(g.notifications))
	for i, n := range g.notifications {
		out[i] = n.Kind
	}
	return out
}

type memStatsCache struct {
	entries     map[string]models.CampaignStatistics
	generations map[string]int64
	invalidated []string
	hits        int
	dropped     int
	// afterMiss runs between a miss and the Set that follows it.
	afterMiss func(campaignID string)
}

func newMemStatsCache() *memStatsCache {
	return &memStatsCache{
		entries:     map[string]models.CampaignStatistics{},
		generations: map[string]int64{},
	}
}

func (c *memStatsCache) Get(_ context.Context, id string) (*models.CampaignStatistics, int64, bool) {
	gen := c.generations[id]
	s, ok := c.entries[id]
	if ok {
		c.hits++
		return &s, gen, true
	}
	if c.afterMiss != nil {
		c.afterMiss(id)
	}
	return nil, gen, false
}

func (c *memStatsCache) Set(_ context.Context, s *models.CampaignStatistics, gen int64) {
	if c.generations[s.CampaignID] != gen {
		c.dropped++
		return
	}
	c.entries[s.CampaignID] = *s
}

func (c *memStatsCache) Invalidate(_ context.Context, id string) {
	delete(c.entries, id)
	c.generations[id]++
	c.invalidated = append(c.invalidated, id)
}

type memPortfolioIndex struct {
	indexed []models.PortfolioEntry
	err     error
}

func (i *memPortfolioIndex) Index(_ context.Context, e *models.PortfolioEntry) error {
	if i.err != nil {
		return i.err
	}
	i.indexed = append(i.indexed, *e)
	return nil
}

func (i *memPortfolioIndex) Search(_ context.Context, q models.PortfolioQuery) ([]models.PortfolioEntry, error) {
	out := []models.PortfolioEntry{}
	for _, e := range i.indexed {
		if q.InfluencerID != "" && e.InfluencerID != q.InfluencerID {
			continue
		}
		if q.Platform != "" && e.Platform != q.Platform {
			continue
		}
		out = append(out, e)
		if len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

// fixture wires every coordinator against the in-memory fakes.
type fixture struct {
	store     *memStore
	gateway   *recordingGateway
	stats     *memStatsCache
	index     *memPortfolioIndex
	dir       *memDirectory
	c         *Coordinators
	clockTick time.Time
}

const (
	campaignID = "camp-1"
	ownerID    = "owner-1"
	influencer = "inf-1"
)

func newFixture() *fixture {
	store := newMemStore()
	store.addCampaign(campaignID, ownerID, "Spring Glow")
	store.addCampaign("camp-2", "owner-2", "Other Campaign")

	f := &fixture{
		store:     store,
		gateway:   &recordingGateway{},
		stats:     newMemStatsCache(),
		index:     &memPortfolioIndex{},
		clockTick: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	f.dir = &memDirectory{s: store, emails: map[string]string{influencer: "inf1@example.com"}}
	f.c = NewCoordinators(Dependencies{
		Store:         store,
		Campaigns:     f.dir,
		Influencers:   f.dir,
		Notifications: f.gateway,
		Emails:        recordingEmails{g: f.gateway},
		Stats:         f.stats,
		Portfolio:     f.index,
		Clock:         f.tick,
	})
	return f
}

// tick advances a minute per call so timestamps order deterministically.
func (f *fixture) tick() time.Time {
	f.clockTick = f.clockTick.Add(time.Minute)
	return f.clockTick
}
