package service

// In-memory stores backing the service tests. They mirror the error
// conventions of the real repositories: getters return (nil, nil) for
// missing rows, scoped mutations return sql.ErrNoRows when nothing
// matched, and the invitation Accept guards on PENDING the way the
// SQL transaction does.

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Teknovat/farm-tracker-sub001/internal/models"
)

type fakeUserStore struct {
	users  map[int64]*models.User
	nextID int64
	err    error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[int64]*models.User)}
}

func (f *fakeUserStore) CreateUser(email, passwordHash, name string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.nextID++
	u := &models.User{
		ID:           f.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUserStore) CreateOAuthUser(email, name, provider, subject string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.nextID++
	u := &models.User{
		ID:            f.nextID,
		Email:         email,
		Name:          name,
		OAuthProvider: provider,
		OAuthSubject:  subject,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUserStore) GetUserByEmail(email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) GetUserByID(id int64) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[id], nil
}

func (f *fakeUserStore) GetUserByOAuth(provider, subject string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.OAuthProvider == provider && u.OAuthSubject == subject {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) LinkOAuthProvider(userID int64, provider, subject string) error {
	if f.err != nil {
		return f.err
	}
	u, ok := f.users[userID]
	if !ok {
		return sql.ErrNoRows
	}
	u.OAuthProvider = provider
	u.OAuthSubject = subject
	return nil
}

type fakeFarmStore struct {
	farms        map[int64]*models.Farm
	members      map[int64][]*models.FarmMember
	nextFarmID   int64
	nextMemberID int64
	err          error
}

func newFakeFarmStore() *fakeFarmStore {
	return &fakeFarmStore{
		farms:   make(map[int64]*models.Farm),
		members: make(map[int64][]*models.FarmMember),
	}
}

func (f *fakeFarmStore) CreateFarm(name, currency, timezone string, creatorUserID int64) (*models.Farm, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.nextFarmID++
	farm := &models.Farm{
		ID:        f.nextFarmID,
		Name:      name,
		Currency:  currency,
		Timezone:  timezone,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.farms[farm.ID] = farm
	if err := f.AddMember(farm.ID, creatorUserID, models.RoleOwner, models.MemberActive); err != nil {
		return nil, err
	}
	return farm, nil
}

func (f *fakeFarmStore) GetFarmByID(farmID int64) (*models.Farm, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.farms[farmID], nil
}

func (f *fakeFarmStore) GetUserFarms(userID int64) ([]models.FarmWithRole, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.FarmWithRole
	for farmID, members := range f.members {
		for _, m := range members {
			if m.UserID == userID && m.IsActive() {
				out = append(out, models.FarmWithRole{Farm: *f.farms[farmID], Role: m.Role})
			}
		}
	}
	return out, nil
}

func (f *fakeFarmStore) UpdateFarm(farmID int64, name, currency, timezone string) error {
	if f.err != nil {
		return f.err
	}
	farm, ok := f.farms[farmID]
	if !ok {
		return sql.ErrNoRows
	}
	farm.Name = name
	farm.Currency = currency
	farm.Timezone = timezone
	return nil
}

func (f *fakeFarmStore) DeleteFarm(farmID int64) error {
	if f.err != nil {
		return f.err
	}
	delete(f.farms, farmID)
	delete(f.members, farmID)
	return nil
}

func (f *fakeFarmStore) GetMember(farmID, userID int64) (*models.FarmMember, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, m := range f.members[farmID] {
		if m.UserID == userID {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeFarmStore) GetMembers(farmID int64) ([]models.FarmMember, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.FarmMember
	for _, m := range f.members[farmID] {
		out = append(out, *m)
	}
	return out, nil
}

func (f *fakeFarmStore) AddMember(farmID, userID int64, role models.Role, status models.MemberStatus) error {
	if f.err != nil {
		return f.err
	}
	for _, m := range f.members[farmID] {
		if m.UserID == userID {
			return fmt.Errorf("duplicate membership for user %d", userID)
		}
	}
	f.nextMemberID++
	f.members[farmID] = append(f.members[farmID], &models.FarmMember{
		ID:       f.nextMemberID,
		FarmID:   farmID,
		UserID:   userID,
		Role:     role,
		Status:   status,
		JoinedAt: time.Now(),
	})
	return nil
}

func (f *fakeFarmStore) UpdateMember(farmID, userID int64, role models.Role, status models.MemberStatus) error {
	if f.err != nil {
		return f.err
	}
	for _, m := range f.members[farmID] {
		if m.UserID == userID {
			m.Role = role
			m.Status = status
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeFarmStore) RemoveMember(farmID, userID int64) error {
	if f.err != nil {
		return f.err
	}
	members := f.members[farmID]
	for i, m := range members {
		if m.UserID == userID {
			f.members[farmID] = append(members[:i], members[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeFarmStore) CountActiveOwners(farmID int64) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	count := 0
	for _, m := range f.members[farmID] {
		if m.Role == models.RoleOwner && m.IsActive() {
			count++
		}
	}
	return count, nil
}

func (f *fakeFarmStore) GetActiveOwnerEmails(farmID int64) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return nil, nil
}

type fakeInvitationStore struct {
	invitations map[int64]*models.FarmInvitation
	farms       *fakeFarmStore
	nextID      int64
	err         error
}

func newFakeInvitationStore(farms *fakeFarmStore) *fakeInvitationStore {
	return &fakeInvitationStore{
		invitations: make(map[int64]*models.FarmInvitation),
		farms:       farms,
	}
}

func (f *fakeInvitationStore) CreateInvitation(farmID int64, email string, role models.Role, invitedBy int64, expiresAt time.Time) (*models.FarmInvitation, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.nextID++
	inv := &models.FarmInvitation{
		ID:        f.nextID,
		FarmID:    farmID,
		Token:     fmt.Sprintf("token%08d", f.nextID),
		Email:     email,
		Role:      role,
		Status:    models.InvitationPending,
		InvitedBy: invitedBy,
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	}
	f.invitations[inv.ID] = inv
	return inv, nil
}

func (f *fakeInvitationStore) GetByToken(token string) (*models.FarmInvitation, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, inv := range f.invitations {
		if inv.Token == token {
			return inv, nil
		}
	}
	return nil, nil
}

func (f *fakeInvitationStore) GetByID(farmID, id int64) (*models.FarmInvitation, error) {
	if f.err != nil {
		return nil, f.err
	}
	inv, ok := f.invitations[id]
	if !ok || inv.FarmID != farmID {
		return nil, nil
	}
	return inv, nil
}

func (f *fakeInvitationStore) GetFarmInvitations(farmID int64) ([]models.FarmInvitation, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.FarmInvitation
	for _, inv := range f.invitations {
		if inv.FarmID == farmID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (f *fakeInvitationStore) HasPendingInvitation(farmID int64, email string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, inv := range f.invitations {
		if inv.FarmID == farmID && inv.Email == email && inv.IsPending() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeInvitationStore) MarkExpired(id int64) error {
	if f.err != nil {
		return f.err
	}
	inv, ok := f.invitations[id]
	if !ok {
		return sql.ErrNoRows
	}
	if inv.IsPending() {
		inv.Status = models.InvitationExpired
	}
	return nil
}

func (f *fakeInvitationStore) Accept(inv *models.FarmInvitation, userID int64) error {
	if f.err != nil {
		return f.err
	}
	stored, ok := f.invitations[inv.ID]
	if !ok || !stored.IsPending() {
		return sql.ErrNoRows
	}
	if err := f.farms.AddMember(inv.FarmID, userID, inv.Role, models.MemberActive); err != nil {
		return err
	}
	now := time.Now()
	stored.Status = models.InvitationAccepted
	stored.AcceptedAt = &now
	stored.AcceptedBy = &userID
	return nil
}

func (f *fakeInvitationStore) DeleteInvitation(farmID, id int64) error {
	if f.err != nil {
		return f.err
	}
	inv, ok := f.invitations[id]
	if !ok || inv.FarmID != farmID {
		return sql.ErrNoRows
	}
	delete(f.invitations, id)
	return nil
}

func (f *fakeInvitationStore) ExpirePending(now time.Time) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	var n int64
	for _, inv := range f.invitations {
		if inv.IsPending() && inv.ExpiresAt.Before(now) {
			inv.Status = models.InvitationExpired
			n++
		}
	}
	return n, nil
}

type fakeAnimalStore struct {
	animals map[int64]*models.Animal
	nextID  int64
	err     error
}

func newFakeAnimalStore() *fakeAnimalStore {
	return &fakeAnimalStore{animals: make(map[int64]*models.Animal)}
}

func (f *fakeAnimalStore) Create(a *models.Animal) error {
	if f.err != nil {
		return f.err
	}
	f.nextID++
	a.ID = f.nextID
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()
	f.animals[a.ID] = a
	return nil
}

func (f *fakeAnimalStore) GetByID(farmID, id int64) (*models.Animal, error) {
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.animals[id]
	if !ok || a.FarmID != farmID {
		return nil, nil
	}
	return a, nil
}

func (f *fakeAnimalStore) List(farmID int64, filter models.AnimalFilter) ([]models.Animal, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Animal
	for _, a := range f.animals {
		if a.FarmID != farmID {
			continue
		}
		if filter.Type != "" && a.Type != filter.Type {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.Species != "" && a.Species != filter.Species {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeAnimalStore) Update(a *models.Animal) error {
	if f.err != nil {
		return f.err
	}
	stored, ok := f.animals[a.ID]
	if !ok || stored.FarmID != a.FarmID {
		return sql.ErrNoRows
	}
	f.animals[a.ID] = a
	return nil
}

func (f *fakeAnimalStore) Delete(farmID, id int64) error {
	if f.err != nil {
		return f.err
	}
	a, ok := f.animals[id]
	if !ok || a.FarmID != farmID {
		return sql.ErrNoRows
	}
	delete(f.animals, id)
	return nil
}

type fakeEventStore struct {
	events     map[int64]*models.Event
	nextID     int64
	err        error
	lastFilter models.EventFilter
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{events: make(map[int64]*models.Event)}
}

func (f *fakeEventStore) Create(e *models.Event) error {
	if f.err != nil {
		return f.err
	}
	f.nextID++
	e.ID = f.nextID
	e.CreatedAt = time.Now()
	e.UpdatedAt = time.Now()
	f.events[e.ID] = e
	return nil
}

func (f *fakeEventStore) GetByID(farmID, id int64) (*models.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.events[id]
	if !ok || e.FarmID != farmID {
		return nil, nil
	}
	return e, nil
}

func (f *fakeEventStore) List(farmID int64, filter models.EventFilter) ([]models.Event, error) {
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Event
	for _, e := range f.events {
		if e.FarmID != farmID {
			continue
		}
		out = append(out, *e)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeEventStore) Update(e *models.Event) error {
	if f.err != nil {
		return f.err
	}
	stored, ok := f.events[e.ID]
	if !ok || stored.FarmID != e.FarmID {
		return sql.ErrNoRows
	}
	f.events[e.ID] = e
	return nil
}

func (f *fakeEventStore) Delete(farmID, id int64) error {
	if f.err != nil {
		return f.err
	}
	e, ok := f.events[id]
	if !ok || e.FarmID != farmID {
		return sql.ErrNoRows
	}
	delete(f.events, id)
	return nil
}

func (f *fakeEventStore) Upcoming(farmID int64, from, to time.Time) ([]models.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Event
	for _, e := range f.events {
		if e.FarmID != farmID || e.NextDue == nil {
			continue
		}
		if e.NextDue.Before(from) || e.NextDue.After(to) {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeEventStore) Statistics(farmID int64, from, to *time.Time) (*models.EventStatistics, error) {
	if f.err != nil {
		return nil, f.err
	}
	stats := &models.EventStatistics{
		CountByType: make(map[models.EventType]int64),
		CostByType:  make(map[models.EventType]float64),
	}
	for _, e := range f.events {
		if e.FarmID != farmID {
			continue
		}
		stats.Total++
		stats.CountByType[e.Type]++
		if e.Cost != nil {
			stats.TotalCost += *e.Cost
			stats.CostByType[e.Type] += *e.Cost
		}
	}
	return stats, nil
}

type fakeCashboxStore struct {
	entries   map[int64]*models.CashboxEntry
	nextID    int64
	err       error
	createErr error
}

func newFakeCashboxStore() *fakeCashboxStore {
	return &fakeCashboxStore{entries: make(map[int64]*models.CashboxEntry)}
}

func (f *fakeCashboxStore) Create(entry *models.CashboxEntry) error {
	if f.err != nil {
		return f.err
	}
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	entry.ID = f.nextID
	entry.CreatedAt = time.Now()
	f.entries[entry.ID] = entry
	return nil
}

func (f *fakeCashboxStore) GetByID(farmID, id int64) (*models.CashboxEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.entries[id]
	if !ok || e.FarmID != farmID {
		return nil, nil
	}
	return e, nil
}

func (f *fakeCashboxStore) List(farmID int64, filter models.CashboxFilter) ([]models.CashboxEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.CashboxEntry
	for _, e := range f.entries {
		if e.FarmID != farmID {
			continue
		}
		if filter.EntryType != "" && e.EntryType != filter.EntryType {
			continue
		}
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeCashboxStore) Delete(farmID, id int64) error {
	if f.err != nil {
		return f.err
	}
	e, ok := f.entries[id]
	if !ok || e.FarmID != farmID {
		return sql.ErrNoRows
	}
	delete(f.entries, id)
	return nil
}

func (f *fakeCashboxStore) Balance(farmID int64) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	var balance float64
	for _, e := range f.entries {
		if e.FarmID == farmID {
			balance += e.Signed()
		}
	}
	return balance, nil
}

func (f *fakeCashboxStore) Summary(farmID int64) (*models.CashboxSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	summary := &models.CashboxSummary{ByCategory: make(map[models.Category]float64)}
	for _, e := range f.entries {
		if e.FarmID != farmID {
			continue
		}
		switch e.EntryType {
		case models.EntryDeposit:
			summary.TotalDeposits += e.Amount
		case models.EntryExpense:
			summary.TotalExpenses += e.Amount
		}
		summary.ByCategory[e.Category] += e.Signed()
	}
	summary.Balance = summary.TotalDeposits - summary.TotalExpenses
	return summary, nil
}
