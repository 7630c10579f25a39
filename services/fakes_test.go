package services

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/Dosada05/matchsquad/models"
	"github.com/Dosada05/matchsquad/repositories"
	"github.com/Dosada05/matchsquad/storage"
)

// In-memory реализации репозиториев для тестов сервисов.
// Все методы возвращают копии, чтобы сервис не мог менять "базу" мимо репозитория.

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[int]*models.User
	nextID int
	// beforeLock вызывается в GetByIDForUpdate до чтения: имитирует параллельное изменение.
	beforeLock func(u *models.User)
	locked     []int
}

func newFakeUserRepo(users ...models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[int]*models.User), nextID: 1}
	for _, u := range users {
		u := u
		r.users[u.ID] = &u
		if u.ID >= r.nextID {
			r.nextID = u.ID + 1
		}
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.nextID++
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByIDForUpdate(_ context.Context, _ repositories.SQLExecutor, id int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	if r.beforeLock != nil {
		r.beforeLock(u)
	}
	r.locked = append(r.locked, id)
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, _ repositories.SQLExecutor, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[user.ID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.Name, u.Image, u.Role = user.Name, user.Image, user.Role
	return nil
}

func (r *fakeUserRepo) MarkEmailVerified(_ context.Context, id int, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.EmailVerifiedAt = &at
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, filter models.UserFilter) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.User, 0)
	for _, u := range r.users {
		if filter.Role != nil && u.EffectiveRole() != *filter.Role {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(u.Email), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) CountByRole(_ context.Context) (map[models.UserRole]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[models.UserRole]int)
	for _, u := range r.users {
		counts[u.EffectiveRole()]++
	}
	return counts, nil
}

func (r *fakeUserRepo) get(id int) models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.users[id]
}

type fakeMembershipRepo struct {
	mu     sync.Mutex
	rows   []models.Membership
	users  *fakeUserRepo
	orgs   *fakeOrganizationRepo
	nextID int
}

func (r *fakeMembershipRepo) add(userID, orgID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.rows = append(r.rows, models.Membership{ID: r.nextID, UserID: userID, OrganizationID: orgID, AddedAt: time.Now()})
}

func (r *fakeMembershipRepo) Create(_ context.Context, _ repositories.SQLExecutor, m *models.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.UserID == m.UserID && row.OrganizationID == m.OrganizationID {
			return nil
		}
	}
	r.nextID++
	cp := *m
	cp.ID = r.nextID
	cp.AddedAt = time.Now()
	r.rows = append(r.rows, cp)
	return nil
}

func (r *fakeMembershipRepo) Exists(_ context.Context, userID, orgID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.UserID == userID && row.OrganizationID == orgID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeMembershipRepo) Delete(_ context.Context, userID, orgID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, row := range r.rows {
		if row.UserID == userID && row.OrganizationID == orgID {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return repositories.ErrMembershipNotFound
}

func (r *fakeMembershipRepo) ListUsersByOrganization(ctx context.Context, orgID int) ([]repositories.MemberUser, error) {
	r.mu.Lock()
	rows := append([]models.Membership(nil), r.rows...)
	r.mu.Unlock()

	out := make([]repositories.MemberUser, 0)
	for _, row := range rows {
		if row.OrganizationID != orgID {
			continue
		}
		u, err := r.users.GetByID(ctx, row.UserID)
		if err != nil {
			return nil, err
		}
		out = append(out, repositories.MemberUser{User: *u, Membership: row})
	}
	return out, nil
}

func (r *fakeMembershipRepo) ListOrganizationsByUser(ctx context.Context, userID int) ([]models.UserOrganization, error) {
	r.mu.Lock()
	rows := append([]models.Membership(nil), r.rows...)
	r.mu.Unlock()

	out := make([]models.UserOrganization, 0)
	for _, row := range rows {
		if row.UserID != userID {
			continue
		}
		org, err := r.orgs.GetByID(ctx, row.OrganizationID)
		if err != nil {
			return nil, err
		}
		out = append(out, models.UserOrganization{Organization: *org, JoinedAt: row.AddedAt})
	}
	return out, nil
}

func (r *fakeMembershipRepo) CountByOrganization(_ context.Context, orgID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, row := range r.rows {
		if row.OrganizationID == orgID {
			n++
		}
	}
	return n, nil
}

type fakeOrganizationRepo struct {
	mu     sync.Mutex
	orgs   map[int]*models.Organization
	nextID int
	deps   map[int][2]int
}

func newFakeOrganizationRepo(orgs ...models.Organization) *fakeOrganizationRepo {
	r := &fakeOrganizationRepo{orgs: make(map[int]*models.Organization), nextID: 1, deps: make(map[int][2]int)}
	for _, o := range orgs {
		o := o
		r.orgs[o.ID] = &o
		if o.ID >= r.nextID {
			r.nextID = o.ID + 1
		}
	}
	return r
}

func (r *fakeOrganizationRepo) Create(_ context.Context, org *models.Organization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orgs {
		if o.Slug == org.Slug {
			return repositories.ErrOrganizationSlugConflict
		}
	}
	org.ID = r.nextID
	r.nextID++
	cp := *org
	r.orgs[org.ID] = &cp
	return nil
}

func (r *fakeOrganizationRepo) GetByID(_ context.Context, id int) (*models.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orgs[id]
	if !ok {
		return nil, repositories.ErrOrganizationNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrganizationRepo) GetBySlug(_ context.Context, slug string) (*models.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orgs {
		if o.Slug == slug {
			cp := *o
			return &cp, nil
		}
	}
	return nil, repositories.ErrOrganizationNotFound
}

func (r *fakeOrganizationRepo) Update(_ context.Context, org *models.Organization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orgs[org.ID]; !ok {
		return repositories.ErrOrganizationNotFound
	}
	cp := *org
	r.orgs[org.ID] = &cp
	return nil
}

func (r *fakeOrganizationRepo) SetActive(_ context.Context, id int, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orgs[id]
	if !ok {
		return repositories.ErrOrganizationNotFound
	}
	o.Active = active
	return nil
}

func (r *fakeOrganizationRepo) UpdateLogo(_ context.Context, id int, logoKey *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orgs[id]
	if !ok {
		return repositories.ErrOrganizationNotFound
	}
	o.LogoKey = logoKey
	return nil
}

func (r *fakeOrganizationRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orgs[id]; !ok {
		return repositories.ErrOrganizationNotFound
	}
	delete(r.orgs, id)
	return nil
}

func (r *fakeOrganizationRepo) List(_ context.Context, filter models.OrganizationFilter) ([]models.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Organization, 0)
	for _, o := range r.orgs {
		if filter.Active != nil && o.Active != *filter.Active {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(o.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, *o)
	}
	return out, nil
}

func (r *fakeOrganizationRepo) CountActive(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, o := range r.orgs {
		if o.Active {
			n++
		}
	}
	return n, nil
}

func (r *fakeOrganizationRepo) SlugExists(_ context.Context, slug string, excludeID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orgs {
		if o.Slug == slug && o.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeOrganizationRepo) EmailExists(_ context.Context, email string, excludeID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orgs {
		if o.Email == email && o.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeOrganizationRepo) CountDependencies(_ context.Context, id int) (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.deps[id]
	return d[0], d[1], nil
}

// fakeInvitationRepo повторяет ограничения БД: уникальный токен,
// один pending на (email, организация) и смену статуса только из pending.
type fakeInvitationRepo struct {
	mu          sync.Mutex
	invitations map[int]*models.Invitation
	nextID      int
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{invitations: make(map[int]*models.Invitation), nextID: 1}
}

func (r *fakeInvitationRepo) Create(_ context.Context, inv *models.Invitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.invitations {
		if existing.Token == inv.Token {
			return repositories.ErrInvitationTokenConflict
		}
		if existing.Status == models.InvitationPending && existing.Email == inv.Email && existing.OrganizationID == inv.OrganizationID {
			return repositories.ErrInvitationPendingDuplicate
		}
	}
	inv.ID = r.nextID
	r.nextID++
	inv.CreatedAt = time.Now()
	cp := *inv
	r.invitations[inv.ID] = &cp
	return nil
}

func (r *fakeInvitationRepo) GetByID(_ context.Context, id int) (*models.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invitations[id]
	if !ok {
		return nil, repositories.ErrInvitationNotFound
	}
	cp := *inv
	return &cp, nil
}

func (r *fakeInvitationRepo) GetByToken(_ context.Context, token string) (*models.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invitations {
		if inv.Token == token {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, repositories.ErrInvitationNotFound
}

func (r *fakeInvitationRepo) GetByTokenForUpdate(ctx context.Context, _ repositories.SQLExecutor, token string) (*models.Invitation, error) {
	return r.GetByToken(ctx, token)
}

func (r *fakeInvitationRepo) FindPending(_ context.Context, email string, orgID int) (*models.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invitations {
		if inv.Status == models.InvitationPending && inv.Email == email && inv.OrganizationID == orgID {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, repositories.ErrInvitationNotFound
}

func (r *fakeInvitationRepo) list(orgID int, onlyPending bool) []models.Invitation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Invitation, 0)
	for id := 1; id < r.nextID; id++ {
		inv, ok := r.invitations[id]
		if !ok || inv.OrganizationID != orgID {
			continue
		}
		if onlyPending && inv.Status != models.InvitationPending {
			continue
		}
		out = append(out, *inv)
	}
	return out
}

func (r *fakeInvitationRepo) ListByOrganization(_ context.Context, orgID int) ([]models.Invitation, error) {
	return r.list(orgID, false), nil
}

func (r *fakeInvitationRepo) ListPendingByOrganization(_ context.Context, orgID int) ([]models.Invitation, error) {
	return r.list(orgID, true), nil
}

func (r *fakeInvitationRepo) CountPendingByOrganization(_ context.Context, orgID int) (int, error) {
	return len(r.list(orgID, true)), nil
}

func (r *fakeInvitationRepo) transition(id int, next models.InvitationStatus, apply func(*models.Invitation)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invitations[id]
	if !ok {
		return repositories.ErrInvitationNotFound
	}
	if inv.Status != models.InvitationPending {
		return repositories.ErrInvitationStatusConflict
	}
	inv.Status = next
	if apply != nil {
		apply(inv)
	}
	return nil
}

func (r *fakeInvitationRepo) MarkAccepted(_ context.Context, _ repositories.SQLExecutor, id int, userID int, at time.Time) error {
	return r.transition(id, models.InvitationAccepted, func(inv *models.Invitation) {
		inv.UserID = &userID
		inv.AcceptedAt = &at
	})
}

func (r *fakeInvitationRepo) MarkExpired(_ context.Context, _ repositories.SQLExecutor, id int) error {
	return r.transition(id, models.InvitationExpired, nil)
}

func (r *fakeInvitationRepo) MarkCancelled(_ context.Context, _ repositories.SQLExecutor, id int) error {
	return r.transition(id, models.InvitationCancelled, nil)
}

func (r *fakeInvitationRepo) get(id int) models.Invitation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.invitations[id]
}

func (r *fakeInvitationRepo) setStatus(id int, status models.InvitationStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invitations[id].Status = status
}

type fakeCategoryRepo struct {
	mu         sync.Mutex
	categories map[int]*models.Category
	nextID     int
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: make(map[int]*models.Category), nextID: 1}
}

func (r *fakeCategoryRepo) Create(_ context.Context, c *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.categories {
		if existing.OrganizationID == c.OrganizationID && existing.Slug == c.Slug {
			return repositories.ErrCategorySlugConflict
		}
	}
	c.ID = r.nextID
	r.nextID++
	c.CreatedAt = time.Now()
	cp := *c
	r.categories[c.ID] = &cp
	return nil
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, id int) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, repositories.ErrCategoryNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCategoryRepo) GetBySlug(_ context.Context, orgID int, slug string) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if c.OrganizationID == orgID && c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repositories.ErrCategoryNotFound
}

func (r *fakeCategoryRepo) Update(_ context.Context, c *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[c.ID]; !ok {
		return repositories.ErrCategoryNotFound
	}
	for _, existing := range r.categories {
		if existing.ID != c.ID && existing.OrganizationID == c.OrganizationID && existing.Slug == c.Slug {
			return repositories.ErrCategorySlugConflict
		}
	}
	cp := *c
	r.categories[c.ID] = &cp
	return nil
}

func (r *fakeCategoryRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return repositories.ErrCategoryNotFound
	}
	delete(r.categories, id)
	return nil
}

func (r *fakeCategoryRepo) ListByOrganization(_ context.Context, orgID int, filter models.CategoryFilter) ([]models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Category, 0)
	for id := 1; id < r.nextID; id++ {
		c, ok := r.categories[id]
		if !ok || c.OrganizationID != orgID {
			continue
		}
		if filter.IsActive != nil && c.IsActive != *filter.IsActive {
			continue
		}
		if filter.Modality != nil && c.Modality != *filter.Modality {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeCategoryRepo) SlugExists(_ context.Context, orgID int, slug string, excludeID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if c.OrganizationID == orgID && c.Slug == slug && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// fakeTx выполняет fn без настоящей транзакции.
type fakeTx struct{}

func (fakeTx) WithinTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakeEmail struct {
	mu          sync.Mutex
	invitations []InvitationEmail
	codes       map[string]string
	err         error
}

func (f *fakeEmail) SendInvitation(_ context.Context, email InvitationEmail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.invitations = append(f.invitations, email)
	return nil
}

func (f *fakeEmail) SendOTP(_ context.Context, to, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.codes == nil {
		f.codes = make(map[string]string)
	}
	f.codes[to] = code
	return nil
}

type publishedEvent struct {
	OrganizationID int
	Type           string
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *fakePublisher) Publish(orgID int, eventType string, _ interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{OrganizationID: orgID, Type: eventType})
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeOTPStore struct {
	mu      sync.Mutex
	entries map[string]*storage.OTPEntry
	ttls    map[string]time.Duration
}

func newFakeOTPStore() *fakeOTPStore {
	return &fakeOTPStore{entries: make(map[string]*storage.OTPEntry), ttls: make(map[string]time.Duration)}
}

func (s *fakeOTPStore) Save(_ context.Context, email, hash string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[email] = &storage.OTPEntry{Hash: hash}
	s.ttls[email] = ttl
	return nil
}

func (s *fakeOTPStore) Get(_ context.Context, email string) (*storage.OTPEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[email]
	if !ok {
		return nil, storage.ErrOTPNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *fakeOTPStore) IncrementAttempts(_ context.Context, email string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[email]
	if !ok {
		return 0, storage.ErrOTPNotFound
	}
	e.Attempts++
	return e.Attempts, nil
}

func (s *fakeOTPStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, email)
	return nil
}

type fakeUploader struct {
	mu       sync.Mutex
	uploaded map[string]string
	deleted  []string
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{uploaded: make(map[string]string)}
}

func (u *fakeUploader) Upload(_ context.Context, key, _ string, reader io.Reader) (*storage.UploadResult, error) {
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.uploaded[key] = string(body)
	return &storage.UploadResult{Key: key, Location: u.PublicURL(key)}, nil
}

func (u *fakeUploader) Delete(_ context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.uploaded, key)
	u.deleted = append(u.deleted, key)
	return nil
}

func (u *fakeUploader) PublicURL(key string) string {
	return storage.JoinPublicURL("https://cdn.test", key)
}

// fixture - общий набор данных: superadmin, организатор организации 1, посторонний организатор, игрок.
type fixture struct {
	users       *fakeUserRepo
	orgs        *fakeOrganizationRepo
	memberships *fakeMembershipRepo
	invitations *fakeInvitationRepo
	categories  *fakeCategoryRepo
	guard       AccessGuard
	email       *fakeEmail
	events      *fakePublisher
}

const (
	superadminID    = 1
	organizadorID   = 2
	outsiderID      = 3
	jugadorID       = 4
	orgX            = 1
	orgY            = 2
	jugadorEmail    = "a@b.com"
	organizadorMail = "org@club.com"
)

func newFixture() *fixture {
	users := newFakeUserRepo(
		models.User{ID: superadminID, Email: "root@matchsquad.app", Role: models.RoleSuperadmin},
		models.User{ID: organizadorID, Email: organizadorMail, Name: strPtr("Ana"), Role: models.RoleOrganizador},
		models.User{ID: outsiderID, Email: "other@club.com", Role: models.RoleOrganizador},
		models.User{ID: jugadorID, Email: jugadorEmail, Role: models.RoleJugador},
	)
	orgs := newFakeOrganizationRepo(
		models.Organization{ID: orgX, Name: "Club X", Slug: "club-x", Email: "x@club.com", Active: true},
		models.Organization{ID: orgY, Name: "Club Y", Slug: "club-y", Email: "y@club.com", Active: true},
	)
	memberships := &fakeMembershipRepo{users: users, orgs: orgs}
	memberships.add(organizadorID, orgX)

	return &fixture{
		users:       users,
		orgs:        orgs,
		memberships: memberships,
		invitations: newFakeInvitationRepo(),
		categories:  newFakeCategoryRepo(),
		guard:       NewAccessGuard(users, memberships),
		email:       &fakeEmail{},
		events:      &fakePublisher{},
	}
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
