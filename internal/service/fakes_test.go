package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"habitquest/internal/model"
	"habitquest/internal/payment"
)

// In-memory fakes for the store interfaces. They model just enough storage
// behavior (uniqueness, ownership, paid guards) to exercise the services.

type fakeTx struct{}

func (f *fakeTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeUserStore struct {
	users map[int64]model.User
}

func newFakeUserStore(users ...model.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[int64]model.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) Create(ctx context.Context, u *model.User) error {
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	u.ID = int64(len(s.users) + 1)
	u.Level = 1
	u.ExperienceToNext = 100
	s.users[u.ID] = *u
	return nil
}

func (s *fakeUserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *fakeUserStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := u
	return &cp, nil
}

func (s *fakeUserStore) GetByIDForUpdate(ctx context.Context, id int64) (*model.User, error) {
	return s.GetByID(ctx, id)
}

func (s *fakeUserStore) UpdateProgress(ctx context.Context, u *model.User) error {
	s.users[u.ID] = *u
	return nil
}

func (s *fakeUserStore) GrantAchievementReward(ctx context.Context, userID int64, currency int) error {
	u := s.users[userID]
	u.Currency += currency
	u.TotalAchievements++
	s.users[userID] = u
	return nil
}

func (s *fakeUserStore) DeductCurrency(ctx context.Context, userID int64, amount int) error {
	u := s.users[userID]
	u.Currency -= amount
	s.users[userID] = u
	return nil
}

type fakeHabitStore struct {
	habits map[int64]model.Habit
	missed []model.Habit
}

func newFakeHabitStore(habits ...model.Habit) *fakeHabitStore {
	s := &fakeHabitStore{habits: make(map[int64]model.Habit)}
	for _, h := range habits {
		s.habits[h.ID] = h
	}
	return s
}

func (s *fakeHabitStore) Insert(ctx context.Context, h *model.Habit) error {
	h.ID = int64(len(s.habits) + 1)
	h.IsActive = true
	s.habits[h.ID] = *h
	return nil
}

func (s *fakeHabitStore) GetByID(ctx context.Context, id int64) (*model.Habit, error) {
	h, ok := s.habits[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := h
	return &cp, nil
}

func (s *fakeHabitStore) ListActiveByUser(ctx context.Context, userID int64) ([]model.Habit, error) {
	var out []model.Habit
	for _, h := range s.habits {
		if h.UserID == userID && h.IsActive {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *fakeHabitStore) Update(ctx context.Context, h *model.Habit) error {
	s.habits[h.ID] = *h
	return nil
}

func (s *fakeHabitStore) SoftDelete(ctx context.Context, id int64) error {
	h := s.habits[id]
	h.IsActive = false
	s.habits[id] = h
	return nil
}

func (s *fakeHabitStore) UpdateCompletionStats(ctx context.Context, h *model.Habit) error {
	s.habits[h.ID] = *h
	return nil
}

func (s *fakeHabitStore) ListMissedOn(ctx context.Context, date string) ([]model.Habit, error) {
	return s.missed, nil
}

type fakeCompletionStore struct {
	completions []model.HabitCompletion
	nextID      int64
}

func (s *fakeCompletionStore) Insert(ctx context.Context, c *model.HabitCompletion) error {
	for _, existing := range s.completions {
		if existing.HabitID == c.HabitID && existing.Date == c.Date {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	s.nextID++
	c.ID = s.nextID
	c.CompletedAt = time.Now()
	s.completions = append(s.completions, *c)
	return nil
}

func (s *fakeCompletionStore) ListByUser(ctx context.Context, userID int64, date string) ([]model.HabitCompletion, error) {
	var out []model.HabitCompletion
	for _, c := range s.completions {
		if c.UserID == userID && (date == "" || c.Date == date) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeCompletionStore) HasCompletionOn(ctx context.Context, userID int64, date string) (bool, error) {
	for _, c := range s.completions {
		if c.UserID == userID && c.Date == date {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeCompletionStore) HabitCompletedOn(ctx context.Context, habitID int64, date string) (bool, error) {
	for _, c := range s.completions {
		if c.HabitID == habitID && c.Date == date {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeCompletionStore) CountByUser(ctx context.Context, userID int64) (int, error) {
	n := 0
	for _, c := range s.completions {
		if c.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (s *fakeCompletionStore) WeeklyProgress(ctx context.Context, userID int64) ([]model.DailyProgress, error) {
	return nil, nil
}

type stagedEvent struct {
	aggregateType string
	aggregateID   int64
	routingKey    string
	payload       any
}

type fakeEventStore struct {
	staged []stagedEvent
}

func (s *fakeEventStore) InsertPending(ctx context.Context, aggregateType string, aggregateID int64, routingKey string, payload any) error {
	s.staged = append(s.staged, stagedEvent{aggregateType, aggregateID, routingKey, payload})
	return nil
}

type fakeAchievementStore struct {
	catalog  []model.Achievement
	unlocked map[int64]map[int64]bool // user -> achievement set
}

func newFakeAchievementStore(catalog ...model.Achievement) *fakeAchievementStore {
	return &fakeAchievementStore{catalog: catalog, unlocked: make(map[int64]map[int64]bool)}
}

func (s *fakeAchievementStore) ListAll(ctx context.Context) ([]model.Achievement, error) {
	return s.catalog, nil
}

func (s *fakeAchievementStore) ListUserAchievements(ctx context.Context, userID int64) ([]model.UserAchievement, error) {
	var out []model.UserAchievement
	for id := range s.unlocked[userID] {
		out = append(out, model.UserAchievement{UserID: userID, AchievementID: id})
	}
	return out, nil
}

func (s *fakeAchievementStore) ListUnlockedIDs(ctx context.Context, userID int64) (map[int64]bool, error) {
	out := make(map[int64]bool)
	for id := range s.unlocked[userID] {
		out[id] = true
	}
	return out, nil
}

func (s *fakeAchievementStore) InsertUnlock(ctx context.Context, userID, achievementID int64, progress int) (bool, error) {
	if s.unlocked[userID] == nil {
		s.unlocked[userID] = make(map[int64]bool)
	}
	if s.unlocked[userID][achievementID] {
		return false, nil
	}
	s.unlocked[userID][achievementID] = true
	return true, nil
}

type fakeSkillStore struct {
	catalog  map[int64]model.Skill
	unlocked map[int64]map[int64]bool
}

func newFakeSkillStore(skills ...model.Skill) *fakeSkillStore {
	s := &fakeSkillStore{catalog: make(map[int64]model.Skill), unlocked: make(map[int64]map[int64]bool)}
	for _, sk := range skills {
		s.catalog[sk.ID] = sk
	}
	return s
}

func (s *fakeSkillStore) ListAll(ctx context.Context) ([]model.Skill, error) {
	var out []model.Skill
	for _, sk := range s.catalog {
		out = append(out, sk)
	}
	return out, nil
}

func (s *fakeSkillStore) GetByID(ctx context.Context, id int64) (*model.Skill, error) {
	sk, ok := s.catalog[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := sk
	return &cp, nil
}

func (s *fakeSkillStore) ListUserSkills(ctx context.Context, userID int64) ([]model.UserSkill, error) {
	var out []model.UserSkill
	for id := range s.unlocked[userID] {
		out = append(out, model.UserSkill{UserID: userID, SkillID: id})
	}
	return out, nil
}

func (s *fakeSkillStore) InsertUnlock(ctx context.Context, userID, skillID int64) (bool, error) {
	if s.unlocked[userID] == nil {
		s.unlocked[userID] = make(map[int64]bool)
	}
	if s.unlocked[userID][skillID] {
		return false, nil
	}
	s.unlocked[userID][skillID] = true
	return true, nil
}

type fakePenaltyStore struct {
	penalties map[int64]model.Penalty
	nextID    int64
}

func newFakePenaltyStore(penalties ...model.Penalty) *fakePenaltyStore {
	s := &fakePenaltyStore{penalties: make(map[int64]model.Penalty)}
	for _, p := range penalties {
		s.penalties[p.ID] = p
		if p.ID > s.nextID {
			s.nextID = p.ID
		}
	}
	return s
}

func (s *fakePenaltyStore) Insert(ctx context.Context, p *model.Penalty) (bool, error) {
	for _, existing := range s.penalties {
		if existing.HabitID == p.HabitID && existing.MissedDate == p.MissedDate {
			return false, nil
		}
	}
	s.nextID++
	p.ID = s.nextID
	p.CreatedAt = time.Now()
	s.penalties[p.ID] = *p
	return true, nil
}

func (s *fakePenaltyStore) GetByID(ctx context.Context, id int64) (*model.Penalty, error) {
	p, ok := s.penalties[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := p
	return &cp, nil
}

func (s *fakePenaltyStore) ListByUser(ctx context.Context, userID int64, unpaidOnly bool) ([]model.Penalty, error) {
	var out []model.Penalty
	for _, p := range s.penalties {
		if p.UserID == userID && (!unpaidOnly || !p.IsPaid) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakePenaltyStore) MarkPaid(ctx context.Context, id int64, userID int64, paymentRef string) (bool, error) {
	p, ok := s.penalties[id]
	if !ok || p.UserID != userID || p.IsPaid {
		return false, nil
	}
	now := time.Now()
	p.IsPaid = true
	p.PaymentRef = &paymentRef
	p.PaidAt = &now
	s.penalties[id] = p
	return true, nil
}

func (s *fakePenaltyStore) SumUnpaidByIDs(ctx context.Context, userID int64, ids []int64) (int64, int, error) {
	var total int64
	count := 0
	for _, id := range ids {
		p, ok := s.penalties[id]
		if !ok || p.UserID != userID || p.IsPaid {
			continue
		}
		var whole, cents int64
		fmt.Sscanf(p.Amount, "%d.%d", &whole, &cents)
		total += whole*100 + cents
		count++
	}
	return total, count, nil
}

func (s *fakePenaltyStore) MarkPaidByIDs(ctx context.Context, userID int64, ids []int64, paymentRef string) (int, error) {
	settled := 0
	for _, id := range ids {
		if ok, _ := s.MarkPaid(ctx, id, userID, paymentRef); ok {
			settled++
		}
	}
	return settled, nil
}

type fakeRewardStore struct {
	rewards map[int64]model.Reward
	nextID  int64
}

func newFakeRewardStore(rewards ...model.Reward) *fakeRewardStore {
	s := &fakeRewardStore{rewards: make(map[int64]model.Reward)}
	for _, rw := range rewards {
		s.rewards[rw.ID] = rw
		if rw.ID > s.nextID {
			s.nextID = rw.ID
		}
	}
	return s
}

func (s *fakeRewardStore) Insert(ctx context.Context, rw *model.Reward) error {
	s.nextID++
	rw.ID = s.nextID
	rw.CreatedAt = time.Now()
	s.rewards[rw.ID] = *rw
	return nil
}

func (s *fakeRewardStore) ListByUser(ctx context.Context, userID int64, unclaimedOnly bool) ([]model.Reward, error) {
	var out []model.Reward
	for _, rw := range s.rewards {
		if rw.UserID == userID && (!unclaimedOnly || !rw.IsClaimed) {
			out = append(out, rw)
		}
	}
	return out, nil
}

func (s *fakeRewardStore) MarkClaimed(ctx context.Context, id int64, userID int64, transferRef string) (bool, error) {
	rw, ok := s.rewards[id]
	if !ok || rw.UserID != userID || rw.IsClaimed {
		return false, nil
	}
	now := time.Now()
	rw.IsClaimed = true
	rw.TransferRef = &transferRef
	rw.ClaimedAt = &now
	s.rewards[id] = rw
	return true, nil
}

type fakeNotificationStore struct {
	notifications []model.Notification
}

func (s *fakeNotificationStore) Insert(ctx context.Context, n *model.Notification) error {
	n.ID = int64(len(s.notifications) + 1)
	s.notifications = append(s.notifications, *n)
	return nil
}

func (s *fakeNotificationStore) ListByUser(ctx context.Context, userID int64, limit int) ([]model.Notification, error) {
	var out []model.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *fakeNotificationStore) MarkRead(ctx context.Context, id int64, userID int64) error {
	return nil
}

type fakeGateway struct {
	enabled   bool
	err       error
	intents   []payment.Intent
	lastTotal int64
	lastIDs   []int64
}

func (g *fakeGateway) Enabled() bool { return g.enabled }

func (g *fakeGateway) CreateIntent(ctx context.Context, amountMinor int64, userID int64, penaltyIDs []int64) (*payment.Intent, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.lastTotal = amountMinor
	g.lastIDs = penaltyIDs
	intent := payment.Intent{
		ID:           fmt.Sprintf("pi_%d", len(g.intents)+1),
		ClientSecret: "secret",
		Status:       "requires_payment_method",
		Amount:       amountMinor,
	}
	g.intents = append(g.intents, intent)
	return &intent, nil
}

type fakeDedupe struct {
	seen map[string]bool
}

func (d *fakeDedupe) AcquireOnce(ctx context.Context, handler, key string) bool {
	if d.seen == nil {
		d.seen = make(map[string]bool)
	}
	k := handler + ":" + key
	if d.seen[k] {
		return false
	}
	d.seen[k] = true
	return true
}

func (d *fakeDedupe) Release(ctx context.Context, handler, key string) {
	delete(d.seen, handler+":"+key)
}
