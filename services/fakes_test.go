package services

import (
	"context"
	"time"

	"github.com/mob-esports/esports-api/models"
	"github.com/mob-esports/esports-api/repositories"
)

// The fakes embed the repository interface so only the methods a test
// exercises need an implementation; calling anything else panics loudly.

type fakeUserRepo struct {
	repositories.UserRepository

	users  map[int]*models.User
	nextID int
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[int]*models.User), nextID: 1}
	for _, u := range users {
		r.users[u.ID] = u
		if u.ID >= r.nextID {
			r.nextID = u.ID + 1
		}
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
		if existing.Username == user.Username {
			return repositories.ErrUserUsernameConflict
		}
	}
	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) ListIDs(_ context.Context) ([]int, error) {
	ids := make([]int, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *fakeUserRepo) SetBanned(_ context.Context, id int, banned bool) error {
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.Banned = banned
	return nil
}

func (r *fakeUserRepo) SetApproved(_ context.Context, id int, approved bool) error {
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.Approved = approved
	return nil
}

func (r *fakeUserRepo) SetEmailVerified(_ context.Context, id int, verified bool) error {
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.EmailVerified = verified
	return nil
}

func (r *fakeUserRepo) GetProfile(_ context.Context, userID int) (*models.PlayerProfile, error) {
	u, ok := r.users[userID]
	if !ok || u.Profile == nil {
		return nil, nil
	}
	copied := *u.Profile
	return &copied, nil
}

func (r *fakeUserRepo) UpsertProfile(_ context.Context, profile *models.PlayerProfile) error {
	u, ok := r.users[profile.UserID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.Profile = profile
	return nil
}

type fakeTournamentRepo struct {
	repositories.TournamentRepository

	tournaments map[int]*models.Tournament
	statusLog   []models.TournamentStatus
}

func newFakeTournamentRepo(ts ...*models.Tournament) *fakeTournamentRepo {
	r := &fakeTournamentRepo{tournaments: make(map[int]*models.Tournament)}
	for _, t := range ts {
		r.tournaments[t.ID] = t
	}
	return r
}

func (r *fakeTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	t.ID = len(r.tournaments) + 1
	t.CreatedAt = time.Now()
	r.tournaments[t.ID] = t
	return nil
}

func (r *fakeTournamentRepo) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTournamentRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	r.statusLog = append(r.statusLog, status)
	return nil
}

func (r *fakeTournamentRepo) ListForAutoStatusUpdate(_ context.Context, _ time.Time) ([]*models.Tournament, error) {
	out := make([]*models.Tournament, 0, len(r.tournaments))
	for _, t := range r.tournaments {
		out = append(out, t)
	}
	return out, nil
}

type fakeRegistrationRepo struct {
	repositories.RegistrationRepository

	regs   []*models.Registration
	nextID int
}

func newFakeRegistrationRepo(regs ...*models.Registration) *fakeRegistrationRepo {
	return &fakeRegistrationRepo{regs: regs, nextID: 100}
}

func (r *fakeRegistrationRepo) Create(_ context.Context, reg *models.Registration, maxTeams int) error {
	count := 0
	for _, existing := range r.regs {
		if existing.TournamentID == reg.TournamentID {
			count++
		}
	}
	if count >= maxTeams {
		return repositories.ErrRegistrationCapacity
	}
	reg.ID = r.nextID
	r.nextID++
	reg.CreatedAt = time.Now()
	r.regs = append(r.regs, reg)
	return nil
}

func (r *fakeRegistrationRepo) FindByUserAndTournament(_ context.Context, userID, tournamentID int) (*models.Registration, error) {
	for _, reg := range r.regs {
		if reg.TournamentID == tournamentID && reg.UserID != nil && *reg.UserID == userID {
			return reg, nil
		}
	}
	return nil, repositories.ErrRegistrationNotFound
}

func (r *fakeRegistrationRepo) FindByTeamAndTournament(_ context.Context, teamID, tournamentID int) (*models.Registration, error) {
	for _, reg := range r.regs {
		if reg.TournamentID == tournamentID && reg.TeamID != nil && *reg.TeamID == teamID {
			return reg, nil
		}
	}
	return nil, repositories.ErrRegistrationNotFound
}

func (r *fakeRegistrationRepo) ListByTournament(_ context.Context, tournamentID int) ([]*models.Registration, error) {
	var out []*models.Registration
	for _, reg := range r.regs {
		if reg.TournamentID == tournamentID {
			out = append(out, reg)
		}
	}
	return out, nil
}

func (r *fakeRegistrationRepo) DeleteByUser(_ context.Context, userID, tournamentID int) error {
	for i, reg := range r.regs {
		if reg.TournamentID == tournamentID && reg.UserID != nil && *reg.UserID == userID {
			r.regs = append(r.regs[:i], r.regs[i+1:]...)
			return nil
		}
	}
	return repositories.ErrRegistrationNotFound
}

func (r *fakeRegistrationRepo) DeleteByTeam(_ context.Context, teamID, tournamentID int) error {
	for i, reg := range r.regs {
		if reg.TournamentID == tournamentID && reg.TeamID != nil && *reg.TeamID == teamID {
			r.regs = append(r.regs[:i], r.regs[i+1:]...)
			return nil
		}
	}
	return repositories.ErrRegistrationNotFound
}

type fakeTeamRepo struct {
	repositories.TeamRepository

	teams       map[int]*models.Team
	memberships map[int]*models.TeamMember // keyed by user ID
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{
		teams:       make(map[int]*models.Team),
		memberships: make(map[int]*models.TeamMember),
	}
}

func (r *fakeTeamRepo) addTeam(t *models.Team, members ...models.TeamMember) {
	r.teams[t.ID] = t
	for i := range members {
		m := members[i]
		r.memberships[m.UserID] = &m
	}
}

func (r *fakeTeamRepo) GetByID(_ context.Context, id int) (*models.Team, error) {
	t, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTeamRepo) Create(_ context.Context, t *models.Team) error {
	for _, existing := range r.teams {
		if existing.Name == t.Name {
			return repositories.ErrTeamNameConflict
		}
	}
	if _, ok := r.memberships[t.OwnerID]; ok {
		return repositories.ErrTeamMemberConflict
	}
	t.ID = len(r.teams) + 1
	t.CreatedAt = time.Now()
	r.teams[t.ID] = t
	r.memberships[t.OwnerID] = &models.TeamMember{TeamID: t.ID, UserID: t.OwnerID, Role: models.TeamRoleOwner}
	return nil
}

func (r *fakeTeamRepo) AddMember(_ context.Context, teamID, userID int, role models.TeamRole) error {
	if _, ok := r.teams[teamID]; !ok {
		return repositories.ErrTeamNotFound
	}
	if _, ok := r.memberships[userID]; ok {
		return repositories.ErrTeamMemberConflict
	}
	r.memberships[userID] = &models.TeamMember{TeamID: teamID, UserID: userID, Role: role}
	return nil
}

func (r *fakeTeamRepo) RemoveMember(_ context.Context, teamID, userID int) error {
	m, ok := r.memberships[userID]
	if !ok || m.TeamID != teamID {
		return repositories.ErrTeamMemberNotFound
	}
	delete(r.memberships, userID)
	return nil
}

func (r *fakeTeamRepo) GetMembership(_ context.Context, teamID, userID int) (*models.TeamMember, error) {
	m, ok := r.memberships[userID]
	if !ok || m.TeamID != teamID {
		return nil, repositories.ErrTeamMemberNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeTeamRepo) GetMembershipByUser(_ context.Context, userID int) (*models.TeamMember, error) {
	m, ok := r.memberships[userID]
	if !ok {
		return nil, repositories.ErrTeamMemberNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeTeamRepo) ListMembers(_ context.Context, teamID int) ([]models.TeamMember, error) {
	var out []models.TeamMember
	for _, m := range r.memberships {
		if m.TeamID == teamID {
			out = append(out, *m)
		}
	}
	return out, nil
}

type fakeInviteRepo struct {
	repositories.TeamInviteRepository

	invites map[int]*models.TeamInvite
	nextID  int
}

func newFakeInviteRepo() *fakeInviteRepo {
	return &fakeInviteRepo{invites: make(map[int]*models.TeamInvite), nextID: 1}
}

func (r *fakeInviteRepo) Create(_ context.Context, invite *models.TeamInvite) error {
	for _, existing := range r.invites {
		if existing.TeamID == invite.TeamID && existing.InviteeID == invite.InviteeID &&
			existing.Status == models.InviteStatusPending {
			return repositories.ErrInviteConflict
		}
	}
	invite.ID = r.nextID
	r.nextID++
	invite.CreatedAt = time.Now()
	r.invites[invite.ID] = invite
	return nil
}

func (r *fakeInviteRepo) FindPending(_ context.Context, teamID, inviteeID int) (*models.TeamInvite, error) {
	for _, inv := range r.invites {
		if inv.TeamID == teamID && inv.InviteeID == inviteeID && inv.Status == models.InviteStatusPending {
			copied := *inv
			return &copied, nil
		}
	}
	return nil, repositories.ErrInviteNotFound
}

func (r *fakeInviteRepo) UpdateStatus(_ context.Context, id int, status models.InviteStatus) error {
	inv, ok := r.invites[id]
	if !ok {
		return repositories.ErrInviteNotFound
	}
	inv.Status = status
	return nil
}

type fakeFriendRepo struct {
	repositories.FriendRepository

	reqs   map[int]*models.FriendRequest
	nextID int
}

func newFakeFriendRepo(reqs ...*models.FriendRequest) *fakeFriendRepo {
	r := &fakeFriendRepo{reqs: make(map[int]*models.FriendRequest), nextID: 1}
	for _, req := range reqs {
		r.reqs[req.ID] = req
		if req.ID >= r.nextID {
			r.nextID = req.ID + 1
		}
	}
	return r
}

func (r *fakeFriendRepo) Create(_ context.Context, req *models.FriendRequest) error {
	req.ID = r.nextID
	r.nextID++
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	r.reqs[req.ID] = req
	return nil
}

func (r *fakeFriendRepo) GetByID(_ context.Context, id int) (*models.FriendRequest, error) {
	req, ok := r.reqs[id]
	if !ok {
		return nil, repositories.ErrFriendRequestNotFound
	}
	copied := *req
	return &copied, nil
}

func (r *fakeFriendRepo) FindBetween(_ context.Context, userA, userB int) (*models.FriendRequest, error) {
	for _, req := range r.reqs {
		if (req.SenderID == userA && req.ReceiverID == userB) ||
			(req.SenderID == userB && req.ReceiverID == userA) {
			copied := *req
			return &copied, nil
		}
	}
	return nil, repositories.ErrFriendRequestNotFound
}

func (r *fakeFriendRepo) UpdateStatus(_ context.Context, id int, status models.FriendRequestStatus) error {
	req, ok := r.reqs[id]
	if !ok {
		return repositories.ErrFriendRequestNotFound
	}
	req.Status = status
	req.UpdatedAt = time.Now()
	return nil
}

func (r *fakeFriendRepo) ListAccepted(_ context.Context, userID int) ([]models.FriendRequest, error) {
	var out []models.FriendRequest
	for _, req := range r.reqs {
		if req.Status == models.FriendRequestAccepted && (req.SenderID == userID || req.ReceiverID == userID) {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (r *fakeFriendRepo) DeleteAccepted(_ context.Context, userID, friendID int) error {
	for id, req := range r.reqs {
		if req.Status != models.FriendRequestAccepted {
			continue
		}
		if (req.SenderID == userID && req.ReceiverID == friendID) ||
			(req.SenderID == friendID && req.ReceiverID == userID) {
			delete(r.reqs, id)
			return nil
		}
	}
	return repositories.ErrFriendshipNotFound
}

type fakeMatchRepo struct {
	repositories.MatchRepository

	matches map[int][]*models.Match // keyed by tournament ID
	created bool
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[int][]*models.Match)}
}

func (r *fakeMatchRepo) CreateBracket(_ context.Context, tournamentID int, matches []*models.Match) error {
	if len(r.matches[tournamentID]) > 0 {
		return repositories.ErrBracketExists
	}
	for i, m := range matches {
		if m.ID == 0 {
			m.ID = i + 1
		}
	}
	r.matches[tournamentID] = matches
	r.created = true
	return nil
}

func (r *fakeMatchRepo) ListByTournament(_ context.Context, tournamentID int) ([]*models.Match, error) {
	return r.matches[tournamentID], nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	for _, ms := range r.matches {
		for _, m := range ms {
			if m.ID == id {
				copied := *m
				return &copied, nil
			}
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) GetByIDForUpdate(ctx context.Context, _ repositories.SQLExecutor, id int) (*models.Match, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeMatchRepo) FindByRoundAndNumber(_ context.Context, _ repositories.SQLExecutor, tournamentID, round, matchNumber int) (*models.Match, error) {
	for _, m := range r.matches[tournamentID] {
		if m.Round == round && m.MatchNumber == matchNumber {
			copied := *m
			return &copied, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) SetSlot(_ context.Context, _ repositories.SQLExecutor, id, slot int, participantID *int) error {
	for _, ms := range r.matches {
		for _, m := range ms {
			if m.ID != id {
				continue
			}
			if slot == 2 {
				m.TeamBID = participantID
			} else {
				m.TeamAID = participantID
			}
			return nil
		}
	}
	return repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) UpdatePatch(_ context.Context, _ repositories.SQLExecutor, id int, patch repositories.MatchPatch) error {
	for _, ms := range r.matches {
		for _, m := range ms {
			if m.ID != id {
				continue
			}
			if patch.TeamAID != nil {
				m.TeamAID = patch.TeamAID
			}
			if patch.TeamBID != nil {
				m.TeamBID = patch.TeamBID
			}
			if patch.ScoreA != nil {
				m.ScoreA = patch.ScoreA
			}
			if patch.ScoreB != nil {
				m.ScoreB = patch.ScoreB
			}
			if patch.WinnerID != nil {
				m.WinnerID = patch.WinnerID
			}
			if patch.Status != nil {
				m.Status = *patch.Status
			}
			return nil
		}
	}
	return repositories.ErrMatchNotFound
}

type notifyCall struct {
	userID    int
	notifType string
	title     string
}

// fakeNotifier records Notify calls; the other methods are unused by the
// services under test.
type fakeNotifier struct {
	NotificationService

	calls []notifyCall
}

func (f *fakeNotifier) Notify(_ context.Context, userID int, notifType, title, _ string, _ *string) {
	f.calls = append(f.calls, notifyCall{userID: userID, notifType: notifType, title: title})
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
