package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/league-system/cache"
	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/notify"
	"github.com/Dosada05/league-system/repositories"
)

// In-memory ports used by the service tests. They keep the rules the SQL
// enforces (compare-and-set, unique keys) so service behaviour can be checked
// without a database.

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

type fakeTx struct {
	calls int
	// before runs once at the start of the next transaction, to simulate a writer that committed first.
	before func()
}

func (f *fakeTx) InTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	f.calls++
	if hook := f.before; hook != nil {
		f.before = nil
		hook()
	}
	return fn(nil)
}

type fakeTournaments struct {
	mu        sync.Mutex
	items     map[int]*models.Tournament
	nextID    int
	listErr   error
	statusErr map[int]error
	// beforeStatus runs inside UpdateStatus before the compare, to simulate a concurrent writer.
	beforeStatus func(t *models.Tournament)
	locks        []int
}

func newFakeTournaments() *fakeTournaments {
	return &fakeTournaments{items: map[int]*models.Tournament{}, statusErr: map[int]error{}}
}

func (f *fakeTournaments) put(t *models.Tournament) *models.Tournament {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	if t.ID == 0 {
		t.ID = f.nextID
	}
	cp := *t
	f.items[t.ID] = &cp
	return t
}

func (f *fakeTournaments) Create(_ context.Context, t *models.Tournament) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.items {
		if existing.OrganizerID == t.OrganizerID && strings.EqualFold(existing.Name, t.Name) {
			return repositories.ErrTournamentNameConflict
		}
	}
	f.nextID++
	t.ID = f.nextID
	cp := *t
	f.items[t.ID] = &cp
	return nil
}

func (f *fakeTournaments) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.items[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTournaments) List(_ context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Tournament
	for _, t := range f.items {
		if filter.PublicOnly && !t.IsPublic {
			continue
		}
		if filter.OrganizerID != nil && t.OrganizerID != *filter.OrganizerID {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTournaments) ListForReconciliation(_ context.Context) ([]*models.Tournament, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*models.Tournament
	for _, t := range f.items {
		if t.Status.IsTerminal() {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTournaments) Update(_ context.Context, t *models.Tournament) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.items[t.ID]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	cp := *t
	cp.Status = existing.Status
	f.items[t.ID] = &cp
	return nil
}

func (f *fakeTournaments) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, from, to models.TournamentStatus, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.statusErr[id]; err != nil {
		return err
	}
	t, ok := f.items[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	if f.beforeStatus != nil {
		f.beforeStatus(t)
	}
	if t.Status != from {
		return repositories.ErrTournamentStatusConflict
	}
	t.Status = to
	t.UpdatedAt = at
	return nil
}

func (f *fakeTournaments) Delete(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeTournaments) LockForFixtures(_ context.Context, _ repositories.SQLExecutor, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locks = append(f.locks, id)
	return nil
}

func (f *fakeTournaments) status(id int) models.TournamentStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[id].Status
}

type fakeRegistrations struct {
	mu     sync.Mutex
	items  []*models.TournamentTeam
	nextID int
	teams  *fakeTeams
}

func (f *fakeRegistrations) add(tournamentID, teamID int, status models.RegistrationStatus) *models.TournamentTeam {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	reg := &models.TournamentTeam{ID: f.nextID, TournamentID: tournamentID, TeamID: teamID, Status: status}
	f.items = append(f.items, reg)
	return reg
}

func (f *fakeRegistrations) Create(_ context.Context, tt *models.TournamentTeam) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, reg := range f.items {
		if reg.TournamentID == tt.TournamentID && reg.TeamID == tt.TeamID {
			return repositories.ErrRegistrationConflict
		}
	}
	f.nextID++
	tt.ID = f.nextID
	cp := *tt
	f.items = append(f.items, &cp)
	return nil
}

func (f *fakeRegistrations) Get(_ context.Context, tournamentID, teamID int) (*models.TournamentTeam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, reg := range f.items {
		if reg.TournamentID == tournamentID && reg.TeamID == teamID {
			cp := *reg
			return &cp, nil
		}
	}
	return nil, repositories.ErrRegistrationNotFound
}

func (f *fakeRegistrations) ListByTournament(ctx context.Context, tournamentID int, statusFilter *models.RegistrationStatus, includeTeam bool) ([]*models.TournamentTeam, error) {
	f.mu.Lock()
	var out []*models.TournamentTeam
	for _, reg := range f.items {
		if reg.TournamentID != tournamentID || (statusFilter != nil && reg.Status != *statusFilter) {
			continue
		}
		cp := *reg
		out = append(out, &cp)
	}
	f.mu.Unlock()
	if includeTeam && f.teams != nil {
		for _, reg := range out {
			if team, err := f.teams.GetByID(ctx, reg.TeamID); err == nil {
				reg.Team = team
			}
		}
	}
	return out, nil
}

func (f *fakeRegistrations) CountByStatus(_ context.Context, tournamentID int, status models.RegistrationStatus) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, reg := range f.items {
		if reg.TournamentID == tournamentID && reg.Status == status {
			n++
		}
	}
	return n, nil
}

func (f *fakeRegistrations) CountByTournament(_ context.Context, tournamentID int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, reg := range f.items {
		if reg.TournamentID == tournamentID {
			n++
		}
	}
	return n, nil
}

func (f *fakeRegistrations) ListActiveByTeam(_ context.Context, teamID int) ([]*models.TournamentTeam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.TournamentTeam
	for _, reg := range f.items {
		if reg.TeamID == teamID && (reg.Status == models.RegistrationPending || reg.Status == models.RegistrationApproved) {
			cp := *reg
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRegistrations) UpdateStatus(_ context.Context, id int, status models.RegistrationStatus, acceptedAt *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, reg := range f.items {
		if reg.ID == id {
			reg.Status = status
			reg.AcceptedAt = acceptedAt
			return nil
		}
	}
	return repositories.ErrRegistrationNotFound
}

func (f *fakeRegistrations) statusOf(tournamentID, teamID int) models.RegistrationStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, reg := range f.items {
		if reg.TournamentID == tournamentID && reg.TeamID == teamID {
			return reg.Status
		}
	}
	return ""
}

type fakeTeams struct {
	mu     sync.Mutex
	items  map[int]*models.Team
	nextID int
}

func (f *fakeTeams) add(ownerID int, name string) *models.Team {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	team := &models.Team{ID: f.nextID, OwnerUserID: ownerID, Name: name}
	cp := *team
	f.items[team.ID] = &cp
	return team
}

func (f *fakeTeams) Create(_ context.Context, team *models.Team) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	team.ID = f.nextID
	cp := *team
	f.items[team.ID] = &cp
	return nil
}

func (f *fakeTeams) GetByID(_ context.Context, id int) (*models.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	team, ok := f.items[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	cp := *team
	return &cp, nil
}

func (f *fakeTeams) ListByOwner(_ context.Context, ownerUserID int) ([]models.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Team
	for _, team := range f.items {
		if team.OwnerUserID == ownerUserID {
			out = append(out, *team)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTeams) Update(_ context.Context, team *models.Team) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[team.ID]; !ok {
		return repositories.ErrTeamNotFound
	}
	cp := *team
	f.items[team.ID] = &cp
	return nil
}

func (f *fakeTeams) Delete(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	delete(f.items, id)
	return nil
}

type fakePlayers struct {
	mu     sync.Mutex
	items  map[int]*models.Player
	nextID int
}

func (f *fakePlayers) add(teamID int, name string, status models.PlayerStatus) *models.Player {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p := &models.Player{ID: f.nextID, TeamID: teamID, Name: name, Position: models.PositionForward, Status: status}
	cp := *p
	f.items[p.ID] = &cp
	return p
}

func (f *fakePlayers) Create(_ context.Context, p *models.Player) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.items {
		if existing.TeamID == p.TeamID && existing.ShirtNumber != nil && p.ShirtNumber != nil && *existing.ShirtNumber == *p.ShirtNumber {
			return repositories.ErrPlayerShirtConflict
		}
	}
	f.nextID++
	p.ID = f.nextID
	cp := *p
	f.items[p.ID] = &cp
	return nil
}

func (f *fakePlayers) GetByID(_ context.Context, id int) (*models.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePlayers) ListByTeam(_ context.Context, teamID int) ([]models.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Player
	for _, p := range f.items {
		if p.TeamID == teamID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakePlayers) UpdateStatus(_ context.Context, id int, status models.PlayerStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.Status = status
	return nil
}

type fakeMatches struct {
	mu        sync.Mutex
	items     map[int]*models.Match
	nextID    int
	createErr error
	scoreSets int
	locks     []int
}

func (f *fakeMatches) add(m models.Match) *models.Match {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	m.ID = f.nextID
	cp := m
	f.items[m.ID] = &cp
	return &m
}

func (f *fakeMatches) Create(_ context.Context, _ repositories.SQLExecutor, m *models.Match) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if m.HomeTeamID == m.AwayTeamID {
		return repositories.ErrMatchSameTeams
	}
	f.nextID++
	m.ID = f.nextID
	cp := *m
	f.items[m.ID] = &cp
	return nil
}

func (f *fakeMatches) GetByID(_ context.Context, id int) (*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.items[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMatches) GetForUpdate(ctx context.Context, _ repositories.SQLExecutor, id int) (*models.Match, error) {
	f.mu.Lock()
	f.locks = append(f.locks, id)
	f.mu.Unlock()
	return f.GetByID(ctx, id)
}

func (f *fakeMatches) ListByTournament(_ context.Context, tournamentID int, status *models.MatchStatus) ([]models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Match
	for _, m := range f.items {
		if m.TournamentID != tournamentID || (status != nil && m.Status != *status) {
			continue
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeMatches) CountByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.items {
		if m.TournamentID == tournamentID {
			n++
		}
	}
	return n, nil
}

func (f *fakeMatches) TeamsHaveMatchOnDate(_ context.Context, tournamentID, teamA, teamB int, date time.Time, excludeID *int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	y, mo, d := date.UTC().Date()
	for _, m := range f.items {
		if m.TournamentID != tournamentID || m.Status == models.MatchCancelled {
			continue
		}
		if excludeID != nil && m.ID == *excludeID {
			continue
		}
		my, mmo, md := m.MatchDate.UTC().Date()
		if my != y || mmo != mo || md != d {
			continue
		}
		if m.HasTeam(teamA) || m.HasTeam(teamB) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMatches) Update(_ context.Context, m *models.Match) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[m.ID]; !ok {
		return repositories.ErrMatchNotFound
	}
	cp := *m
	f.items[m.ID] = &cp
	return nil
}

func (f *fakeMatches) UpdateScore(_ context.Context, _ repositories.SQLExecutor, id int, home, away *int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.items[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	f.scoreSets++
	m.HomeScore, m.AwayScore = home, away
	return nil
}

func (f *fakeMatches) Delete(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return repositories.ErrMatchNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeMatches) score(id int) (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.items[id]
	if m.HomeScore == nil || m.AwayScore == nil {
		return -1, -1
	}
	return *m.HomeScore, *m.AwayScore
}

type fakeEvents struct {
	mu      sync.Mutex
	items   map[int]*models.MatchEvent
	nextID  int
	matches *fakeMatches
}

func (f *fakeEvents) Create(_ context.Context, _ repositories.SQLExecutor, ev *models.MatchEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	ev.ID = f.nextID
	cp := *ev
	f.items[ev.ID] = &cp
	return nil
}

func (f *fakeEvents) GetByID(_ context.Context, id int) (*models.MatchEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, ok := f.items[id]
	if !ok {
		return nil, repositories.ErrMatchEventNotFound
	}
	cp := *ev
	return &cp, nil
}

func (f *fakeEvents) list(keep func(ev *models.MatchEvent) bool) []models.MatchEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.MatchEvent
	for _, ev := range f.items {
		if keep(ev) {
			out = append(out, *ev)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Minute != out[j].Minute {
			return out[i].Minute < out[j].Minute
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (f *fakeEvents) ListByMatch(_ context.Context, _ repositories.SQLExecutor, matchID int) ([]models.MatchEvent, error) {
	return f.list(func(ev *models.MatchEvent) bool { return ev.MatchID == matchID }), nil
}

func (f *fakeEvents) ListByPlayerInMatch(_ context.Context, matchID, playerID int) ([]models.MatchEvent, error) {
	return f.list(func(ev *models.MatchEvent) bool { return ev.MatchID == matchID && ev.PlayerID == playerID }), nil
}

func (f *fakeEvents) ListByPlayer(ctx context.Context, playerID int, tournamentID *int) ([]models.MatchEvent, error) {
	events := f.list(func(ev *models.MatchEvent) bool { return ev.PlayerID == playerID })
	if tournamentID == nil {
		return events, nil
	}
	var out []models.MatchEvent
	for _, ev := range events {
		m, err := f.matches.GetByID(ctx, ev.MatchID)
		if err == nil && m.TournamentID == *tournamentID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeEvents) Update(_ context.Context, _ repositories.SQLExecutor, ev *models.MatchEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[ev.ID]; !ok {
		return repositories.ErrMatchEventNotFound
	}
	cp := *ev
	f.items[ev.ID] = &cp
	return nil
}

func (f *fakeEvents) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return repositories.ErrMatchEventNotFound
	}
	delete(f.items, id)
	return nil
}

// memStore is a cache.Store that records removals.
type memStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	removed []string
}

func (s *memStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	return v, nil
}

func (s *memStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *memStore) Remove(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data, k)
		s.removed = append(s.removed, k)
	}
	return nil
}

func (s *memStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

type recordingDispatcher struct {
	mu            sync.Mutex
	statusChanges []notify.StatusChange
	requested     []notify.Registration
	approved      []notify.Registration
	rejected      []notify.Registration
}

func (r *recordingDispatcher) TournamentStatusChanged(_ context.Context, msg notify.StatusChange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statusChanges = append(r.statusChanges, msg)
}

func (r *recordingDispatcher) TeamRegistrationRequested(_ context.Context, msg notify.Registration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requested = append(r.requested, msg)
}

func (r *recordingDispatcher) TeamApproved(_ context.Context, msg notify.Registration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.approved = append(r.approved, msg)
}

func (r *recordingDispatcher) TeamRejected(_ context.Context, msg notify.Registration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected = append(r.rejected, msg)
}

type recordingMetrics struct {
	mu          sync.Mutex
	transitions []string
	sweeps      int
	sweepFailed int
	events      []string
}

func (m *recordingMetrics) StatusTransition(from, to, trigger string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions = append(m.transitions, from+"->"+to+":"+trigger)
}

func (m *recordingMetrics) SweepFinished(_ time.Duration, failed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweeps++
	m.sweepFailed += failed
}

func (m *recordingMetrics) MatchEventRecorded(eventType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, eventType)
}

func (m *recordingMetrics) NotificationFailed(string) {}

var (
	organizer = models.Actor{UserID: 1, Email: "org@example.com", Role: models.RoleOrganizer}
	owner     = models.Actor{UserID: 2, Email: "owner@example.com", Role: models.RolePlayer}
	stranger  = models.Actor{UserID: 3, Email: "x@example.com", Role: models.RolePlayer}
	admin     = models.Actor{UserID: 9, Email: "admin@example.com", Role: models.RoleAdmin}
)

type testEnv struct {
	tournaments   *fakeTournaments
	registrations *fakeRegistrations
	teams         *fakeTeams
	players       *fakePlayers
	matches       *fakeMatches
	events        *fakeEvents
	tx            *fakeTx
	store         *memStore
	notifier      *recordingDispatcher
	metrics       *recordingMetrics
	clock         *fixedClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	teams := &fakeTeams{items: map[int]*models.Team{}}
	matches := &fakeMatches{items: map[int]*models.Match{}}
	return &testEnv{
		tournaments:   newFakeTournaments(),
		registrations: &fakeRegistrations{teams: teams},
		teams:         teams,
		players:       &fakePlayers{items: map[int]*models.Player{}},
		matches:       matches,
		events:        &fakeEvents{items: map[int]*models.MatchEvent{}, matches: matches},
		tx:            &fakeTx{},
		store:         &memStore{data: map[string][]byte{}},
		notifier:      &recordingDispatcher{},
		metrics:       &recordingMetrics{},
		clock:         &fixedClock{now: time.Date(2025, time.January, 5, 12, 0, 0, 0, time.UTC)},
	}
}

func (e *testEnv) deps() Deps {
	return Deps{
		Tournaments:   e.tournaments,
		Registrations: e.registrations,
		Teams:         e.teams,
		Players:       e.players,
		Matches:       e.matches,
		Events:        e.events,
		Tx:            e.tx,
		Cache:         cache.New(e.store, nil),
		Notifier:      e.notifier,
		Metrics:       e.metrics,
		Clock:         e.clock,
	}
}

// januaryTournament is open for registration on the env clock (Jan 5).
func (e *testEnv) januaryTournament(status models.TournamentStatus) *models.Tournament {
	end := time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC)
	return e.tournaments.put(&models.Tournament{
		OrganizerID:          organizer.UserID,
		Name:                 "Winter Cup",
		RegistrationStart:    time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		RegistrationDeadline: time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC),
		StartDate:            time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC),
		EndDate:              &end,
		MinTeams:             2,
		MaxTeams:             4,
		Status:               status,
		IsPublic:             true,
	})
}

// approvedTeams registers n approved teams owned by owner.
func (e *testEnv) approvedTeams(tournamentID, n int) []*models.Team {
	teams := make([]*models.Team, 0, n)
	for i := 0; i < n; i++ {
		team := e.teams.add(owner.UserID, "Team "+string(rune('A'+i)))
		e.registrations.add(tournamentID, team.ID, models.RegistrationApproved)
		teams = append(teams, team)
	}
	return teams
}

var errBoom = errors.New("boom")
