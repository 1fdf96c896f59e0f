package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/clubarena/championship-system/models"
	"github.com/clubarena/championship-system/repositories"
)

// In-memory repository fakes. They imitate the postgres implementations
// closely enough for the service tests: version checks, COALESCE slot fills
// and not-found sentinels all behave like the real queries.

type fakeMatchRepo struct {
	mu     sync.Mutex
	nextID int
	items  map[int]models.Match

	// beforeUpdateNegotiation simulates a concurrent writer sneaking in
	// between a service's read and its version-guarded update.
	beforeUpdateNegotiation func()
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{nextID: 1, items: map[int]models.Match{}}
}

func (r *fakeMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	match.ID = r.nextID
	r.nextID++
	match.Version = 1
	match.CreatedAt = time.Now()
	r.items[match.ID] = *match
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.items[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return &m, nil
}

func (r *fakeMatchRepo) ListByStage(_ context.Context, stageID int) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matches := make([]*models.Match, 0)
	for _, m := range r.items {
		if m.StageID == stageID {
			mc := m
			matches = append(matches, &mc)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Round != matches[j].Round {
			return matches[i].Round < matches[j].Round
		}
		if matches[i].OrderInRound != matches[j].OrderInRound {
			return matches[i].OrderInRound < matches[j].OrderInRound
		}
		return matches[i].ID < matches[j].ID
	})
	return matches, nil
}

func (r *fakeMatchRepo) CountPendingResults(_ context.Context, stageID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, m := range r.items {
		if m.StageID == stageID && !m.IsBye && m.ResultStatus != models.ResultConfirmed {
			count++
		}
	}
	return count, nil
}

func (r *fakeMatchRepo) UpdateNegotiation(_ context.Context, _ repositories.SQLExecutor, id, version int, status models.NegotiationStatus, start, end *time.Time) error {
	if r.beforeUpdateNegotiation != nil {
		r.beforeUpdateNegotiation()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.items[id]
	if !ok || m.Version != version {
		return repositories.ErrMatchVersionConflict
	}
	m.NegotiationStatus = status
	m.ScheduledStart = start
	m.ScheduledEnd = end
	m.Version++
	r.items[id] = m
	return nil
}

func (r *fakeMatchRepo) UpdateResult(_ context.Context, _ repositories.SQLExecutor, id, version int, status models.ResultStatus, score *string, winnerEntryID *int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.items[id]
	if !ok || m.Version != version {
		return repositories.ErrMatchVersionConflict
	}
	m.ResultStatus = status
	m.Score = score
	m.WinnerEntryID = winnerEntryID
	m.Version++
	r.items[id] = m
	return nil
}

func (r *fakeMatchRepo) SetSourceLinks(_ context.Context, _ repositories.SQLExecutor, id int, source1, source2 *int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.items[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.SourceMatch1ID = source1
	m.SourceMatch2ID = source2
	r.items[id] = m
	return nil
}

func (r *fakeMatchRepo) FillSlotsFromSource(_ context.Context, _ repositories.SQLExecutor, sourceMatchID, winnerEntryID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, m := range r.items {
		if m.SourceMatch1ID != nil && *m.SourceMatch1ID == sourceMatchID && m.Entry1ID == nil {
			winner := winnerEntryID
			m.Entry1ID = &winner
		}
		if m.SourceMatch2ID != nil && *m.SourceMatch2ID == sourceMatchID && m.Entry2ID == nil {
			winner := winnerEntryID
			m.Entry2ID = &winner
		}
		r.items[id] = m
	}
	return nil
}

type fakeStageRepo struct {
	mu     sync.Mutex
	nextID int
	items  map[int]models.Stage
	seeds  map[int][]int
}

func newFakeStageRepo() *fakeStageRepo {
	return &fakeStageRepo{nextID: 1, items: map[int]models.Stage{}, seeds: map[int][]int{}}
}

func (r *fakeStageRepo) Create(_ context.Context, _ repositories.SQLExecutor, stage *models.Stage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stage.ID = r.nextID
	r.nextID++
	stage.CreatedAt = time.Now()
	r.items[stage.ID] = *stage
	return nil
}

func (r *fakeStageRepo) GetByID(_ context.Context, id int) (*models.Stage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok {
		return nil, repositories.ErrStageNotFound
	}
	return &s, nil
}

func (r *fakeStageRepo) ListByChampionship(_ context.Context, championshipID int) ([]*models.Stage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stages := make([]*models.Stage, 0)
	for _, s := range r.items {
		if s.ChampionshipID == championshipID {
			sc := s
			stages = append(stages, &sc)
		}
	}
	sort.Slice(stages, func(i, j int) bool { return stages[i].Index < stages[j].Index })
	return stages, nil
}

func (r *fakeStageRepo) GetActiveByChampionship(_ context.Context, championshipID int) (*models.Stage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found *models.Stage
	for _, s := range r.items {
		if s.ChampionshipID == championshipID && s.Status == models.StageActive {
			if found == nil || s.Index > found.Index {
				sc := s
				found = &sc
			}
		}
	}
	if found == nil {
		return nil, repositories.ErrStageNotFound
	}
	return found, nil
}

func (r *fakeStageRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.StageStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok {
		return repositories.ErrStageNotFound
	}
	s.Status = status
	r.items[id] = s
	return nil
}

func (r *fakeStageRepo) SetSeeds(_ context.Context, _ repositories.SQLExecutor, stageID int, orderedEntryIDs []int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seeds[stageID] = append([]int(nil), orderedEntryIDs...)
	return nil
}

func (r *fakeStageRepo) ListSeeds(_ context.Context, stageID int) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.seeds[stageID]...), nil
}

type fakeEntryRepo struct {
	mu     sync.Mutex
	nextID int
	items  map[int]models.Entry
}

func newFakeEntryRepo() *fakeEntryRepo {
	return &fakeEntryRepo{nextID: 1, items: map[int]models.Entry{}}
}

func (r *fakeEntryRepo) Create(_ context.Context, _ repositories.SQLExecutor, entry *models.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.items {
		if e.ChampionshipID == entry.ChampionshipID && (e.HasPlayer(entry.Player1ID) ||
			(entry.Player2ID != nil && e.HasPlayer(*entry.Player2ID))) {
			return repositories.ErrEntryAlreadyExists
		}
	}
	entry.ID = r.nextID
	r.nextID++
	entry.CreatedAt = time.Now()
	r.items[entry.ID] = *entry
	return nil
}

func (r *fakeEntryRepo) GetByID(_ context.Context, id int) (*models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[id]
	if !ok {
		return nil, repositories.ErrEntryNotFound
	}
	return &e, nil
}

func (r *fakeEntryRepo) ListByChampionship(_ context.Context, championshipID int, status *models.EntryStatus) ([]*models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := make([]*models.Entry, 0)
	for _, e := range r.items {
		if e.ChampionshipID != championshipID {
			continue
		}
		if status != nil && e.Status != *status {
			continue
		}
		ec := e
		entries = append(entries, &ec)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Seed != entries[j].Seed {
			return entries[i].Seed < entries[j].Seed
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}

func (r *fakeEntryRepo) FindByPlayer(_ context.Context, championshipID, playerID int) (*models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.items {
		if e.ChampionshipID == championshipID && e.HasPlayer(playerID) {
			ec := e
			return &ec, nil
		}
	}
	return nil, repositories.ErrEntryNotFound
}

func (r *fakeEntryRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.EntryStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[id]
	if !ok {
		return repositories.ErrEntryNotFound
	}
	e.Status = status
	r.items[id] = e
	return nil
}

type fakeAvailabilityRepo struct {
	mu         sync.Mutex
	nextID     int
	nextSlotID int
	byMatch    map[int]models.AvailabilityProposal
}

func newFakeAvailabilityRepo() *fakeAvailabilityRepo {
	return &fakeAvailabilityRepo{nextID: 1, nextSlotID: 1, byMatch: map[int]models.AvailabilityProposal{}}
}

func (r *fakeAvailabilityRepo) Create(_ context.Context, _ repositories.SQLExecutor, proposal *models.AvailabilityProposal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	proposal.ID = r.nextID
	r.nextID++
	proposal.CreatedAt = time.Now()
	for i := range proposal.Slots {
		proposal.Slots[i].ID = r.nextSlotID
		proposal.Slots[i].ProposalID = proposal.ID
		r.nextSlotID++
	}
	r.byMatch[proposal.MatchID] = *proposal
	return nil
}

func (r *fakeAvailabilityRepo) GetByMatch(_ context.Context, matchID int) (*models.AvailabilityProposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byMatch[matchID]
	if !ok {
		return nil, repositories.ErrAvailabilityProposalNotFound
	}
	pc := p
	pc.Slots = append([]models.ProposalSlot(nil), p.Slots...)
	return &pc, nil
}

func (r *fakeAvailabilityRepo) DeleteByMatch(_ context.Context, _ repositories.SQLExecutor, matchID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byMatch, matchID)
	return nil
}

func (r *fakeAvailabilityRepo) AcceptSlot(_ context.Context, _ repositories.SQLExecutor, proposalID, slotID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for matchID, p := range r.byMatch {
		if p.ID != proposalID {
			continue
		}
		kept := p.Slots[:0]
		found := false
		for _, s := range p.Slots {
			if s.ID == slotID {
				s.Accepted = true
				kept = append(kept, s)
				found = true
			}
		}
		if !found {
			return repositories.ErrProposalSlotNotFound
		}
		p.Slots = kept
		r.byMatch[matchID] = p
		return nil
	}
	return repositories.ErrProposalSlotNotFound
}

type fakeResultProposalRepo struct {
	mu     sync.Mutex
	nextID int
	items  map[int]models.ResultProposal
}

func newFakeResultProposalRepo() *fakeResultProposalRepo {
	return &fakeResultProposalRepo{nextID: 1, items: map[int]models.ResultProposal{}}
}

func (r *fakeResultProposalRepo) Create(_ context.Context, _ repositories.SQLExecutor, proposal *models.ResultProposal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	proposal.ID = r.nextID
	r.nextID++
	proposal.CreatedAt = time.Now()
	r.items[proposal.ID] = *proposal
	return nil
}

func (r *fakeResultProposalRepo) GetPendingByMatch(_ context.Context, matchID int) (*models.ResultProposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found *models.ResultProposal
	for _, p := range r.items {
		if p.MatchID != matchID {
			continue
		}
		if p.Status != models.ResultProposalPending && p.Status != models.ResultProposalDisputed {
			continue
		}
		if found == nil || p.ID > found.ID {
			pc := p
			found = &pc
		}
	}
	if found == nil {
		return nil, repositories.ErrResultProposalNotFound
	}
	return found, nil
}

func (r *fakeResultProposalRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.ResultProposalStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return repositories.ErrResultProposalNotFound
	}
	p.Status = status
	r.items[id] = p
	return nil
}

func (r *fakeResultProposalRepo) DeletePendingByMatch(_ context.Context, _ repositories.SQLExecutor, matchID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range r.items {
		if p.MatchID == matchID && p.Status == models.ResultProposalPending {
			delete(r.items, id)
		}
	}
	return nil
}

type fakeStandingRepo struct {
	mu      sync.Mutex
	byStage map[int][]*models.StandingsEntry
}

func newFakeStandingRepo() *fakeStandingRepo {
	return &fakeStandingRepo{byStage: map[int][]*models.StandingsEntry{}}
}

func (r *fakeStandingRepo) ReplaceForStage(_ context.Context, _ repositories.SQLExecutor, stageID int, entries []*models.StandingsEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := make([]*models.StandingsEntry, len(entries))
	for i, e := range entries {
		ec := *e
		ec.StageID = stageID
		stored[i] = &ec
	}
	r.byStage[stageID] = stored
	return nil
}

func (r *fakeStandingRepo) ListByStage(_ context.Context, stageID int) ([]*models.StandingsEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := append([]*models.StandingsEntry(nil), r.byStage[stageID]...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Rank < entries[j].Rank })
	return entries, nil
}

func (r *fakeStandingRepo) DeleteByStage(_ context.Context, _ repositories.SQLExecutor, stageID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byStage, stageID)
	return nil
}

type fakeChampionshipRepo struct {
	mu     sync.Mutex
	nextID int
	items  map[int]models.Championship
}

func newFakeChampionshipRepo() *fakeChampionshipRepo {
	return &fakeChampionshipRepo{nextID: 1, items: map[int]models.Championship{}}
}

func (r *fakeChampionshipRepo) Create(_ context.Context, _ repositories.SQLExecutor, c *models.Championship) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.Name == c.Name {
			return repositories.ErrChampionshipNameConflict
		}
	}
	c.ID = r.nextID
	r.nextID++
	c.CreatedAt = time.Now()
	r.items[c.ID] = *c
	return nil
}

func (r *fakeChampionshipRepo) GetByID(_ context.Context, id int) (*models.Championship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return nil, repositories.ErrChampionshipNotFound
	}
	return &c, nil
}

func (r *fakeChampionshipRepo) List(_ context.Context, status *models.ChampionshipStatus) ([]*models.Championship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]*models.Championship, 0)
	for _, c := range r.items {
		if status != nil && c.Status != *status {
			continue
		}
		cc := c
		list = append(list, &cc)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *fakeChampionshipRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.ChampionshipStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return repositories.ErrChampionshipNotFound
	}
	c.Status = status
	r.items[id] = c
	return nil
}

func (r *fakeChampionshipRepo) UpdateLogoKey(_ context.Context, id int, logoKey *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return repositories.ErrChampionshipNotFound
	}
	c.LogoKey = logoKey
	r.items[id] = c
	return nil
}

type fakePlayerRepo struct {
	mu     sync.Mutex
	nextID int
	items  map[int]models.Player
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{nextID: 1, items: map[int]models.Player{}}
}

func (r *fakePlayerRepo) Create(_ context.Context, player *models.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.items {
		if p.Email == player.Email {
			return repositories.ErrPlayerEmailConflict
		}
	}
	player.ID = r.nextID
	r.nextID++
	player.CreatedAt = time.Now()
	r.items[player.ID] = *player
	return nil
}

func (r *fakePlayerRepo) GetByID(_ context.Context, id int) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	return &p, nil
}

func (r *fakePlayerRepo) GetByEmail(_ context.Context, email string) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.items {
		if p.Email == email {
			pc := p
			return &pc, nil
		}
	}
	return nil, repositories.ErrPlayerNotFound
}

func (r *fakePlayerRepo) ListByIDs(_ context.Context, ids []int) ([]*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	players := make([]*models.Player, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.items[id]; ok {
			pc := p
			players = append(players, &pc)
		}
	}
	return players, nil
}

func (r *fakePlayerRepo) UpdateAvatarKey(_ context.Context, id int, avatarKey *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.AvatarKey = avatarKey
	r.items[id] = p
	return nil
}

type fakeReportRepo struct {
	mu     sync.Mutex
	nextID int
	items  map[int]models.Report
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{nextID: 1, items: map[int]models.Report{}}
}

func (r *fakeReportRepo) Create(_ context.Context, _ repositories.SQLExecutor, report *models.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	report.ID = r.nextID
	r.nextID++
	report.CreatedAt = time.Now()
	r.items[report.ID] = *report
	return nil
}

func (r *fakeReportRepo) GetByID(_ context.Context, id int) (*models.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep, ok := r.items[id]
	if !ok {
		return nil, repositories.ErrReportNotFound
	}
	return &rep, nil
}

func (r *fakeReportRepo) GetOpenByMatchAndKind(_ context.Context, matchID int, kind models.ReportKind) (*models.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found *models.Report
	for _, rep := range r.items {
		if rep.Status != models.ReportOpen || rep.Kind != kind {
			continue
		}
		if rep.MatchID == nil || *rep.MatchID != matchID {
			continue
		}
		if found == nil || rep.ID > found.ID {
			rc := rep
			found = &rc
		}
	}
	if found == nil {
		return nil, repositories.ErrReportNotFound
	}
	return found, nil
}

func (r *fakeReportRepo) ListOpen(_ context.Context, kind *models.ReportKind) ([]*models.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reports := make([]*models.Report, 0)
	for _, rep := range r.items {
		if rep.Status != models.ReportOpen {
			continue
		}
		if kind != nil && rep.Kind != *kind {
			continue
		}
		rc := rep
		reports = append(reports, &rc)
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].ID < reports[j].ID })
	return reports, nil
}

func (r *fakeReportRepo) Close(_ context.Context, _ repositories.SQLExecutor, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep, ok := r.items[id]
	if !ok || rep.Status != models.ReportOpen {
		return repositories.ErrReportNotFound
	}
	now := time.Now()
	rep.Status = models.ReportClosed
	rep.ClosedAt = &now
	r.items[id] = rep
	return nil
}

type fakeCategoryRepo struct {
	mu     sync.Mutex
	nextID int
	items  map[int]models.Category
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{nextID: 1, items: map[int]models.Category{}}
}

func (r *fakeCategoryRepo) Create(_ context.Context, category *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.items {
		if c.Name == category.Name {
			return repositories.ErrCategoryNameConflict
		}
	}
	category.ID = r.nextID
	r.nextID++
	r.items[category.ID] = *category
	return nil
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, id int) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return nil, repositories.ErrCategoryNotFound
	}
	return &c, nil
}

func (r *fakeCategoryRepo) ListAll(_ context.Context) ([]*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	categories := make([]*models.Category, 0)
	for _, c := range r.items {
		cc := c
		categories = append(categories, &cc)
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Priority != categories[j].Priority {
			return categories[i].Priority < categories[j].Priority
		}
		return categories[i].ID < categories[j].ID
	})
	return categories, nil
}

func (r *fakeCategoryRepo) Update(_ context.Context, category *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[category.ID]; !ok {
		return repositories.ErrCategoryNotFound
	}
	r.items[category.ID] = *category
	return nil
}

func (r *fakeCategoryRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return repositories.ErrCategoryNotFound
	}
	delete(r.items, id)
	return nil
}

// recordingNotifier captures dispatched events for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	ChampionshipID int
	Event          Event
	Payload        interface{}
}

func (n *recordingNotifier) Notify(championshipID int, event Event, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{
		ChampionshipID: championshipID,
		Event:          event,
		Payload:        payload,
	})
}

func (n *recordingNotifier) eventsOf(event Event) []recordedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []recordedEvent
	for _, e := range n.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}
