package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"caseguard/internal/model"
)

type memPrincipals struct {
	mu     sync.Mutex
	byID   map[int64]model.Principal
	nextID int64
}

func newMemPrincipals() *memPrincipals {
	return &memPrincipals{byID: map[int64]model.Principal{}, nextID: 1}
}

// seed stores a principal with a low-cost bcrypt hash of password.
func (m *memPrincipals) seed(email string, password string, role model.Role, active bool) model.Principal {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	p, _ := m.Create(context.Background(), model.Principal{
		Email:        email,
		FullName:     "Seeded " + email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     active,
	})
	return p
}

func (m *memPrincipals) FindByID(_ context.Context, id int64) (model.Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return model.Principal{}, model.ErrPrincipalNotFound
	}
	return p, nil
}

func (m *memPrincipals) FindByEmail(_ context.Context, email string) (model.Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.byID {
		if strings.EqualFold(p.Email, email) {
			return p, nil
		}
	}
	return model.Principal{}, model.ErrPrincipalNotFound
}

func (m *memPrincipals) Create(_ context.Context, p model.Principal) (model.Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if strings.EqualFold(existing.Email, p.Email) {
			return model.Principal{}, model.ErrEmailTaken
		}
	}
	p.ID = m.nextID
	m.nextID++
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	m.byID[p.ID] = p
	return p, nil
}

func (m *memPrincipals) Update(_ context.Context, id int64, patch model.PrincipalPatch) (model.Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return model.Principal{}, model.ErrPrincipalNotFound
	}
	p = patch.Apply(p)
	m.byID[id] = p
	return p, nil
}

func (m *memPrincipals) IncrementTokenVersion(_ context.Context, id int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return 0, model.ErrPrincipalNotFound
	}
	p.TokenVersion++
	m.byID[id] = p
	return p.TokenVersion, nil
}

func (m *memPrincipals) List(_ context.Context) ([]model.Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Principal, 0, len(m.byID))
	for _, p := range m.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memPrincipals) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID), nil
}

func (m *memPrincipals) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return model.ErrPrincipalNotFound
	}
	delete(m.byID, id)
	return nil
}

type pairKey struct{ user, target int64 }

type memGrants struct {
	collections map[pairKey]model.CollectionGrant
	items       map[pairKey]model.ItemGrant
}

func newMemGrants() *memGrants {
	return &memGrants{collections: map[pairKey]model.CollectionGrant{}, items: map[pairKey]model.ItemGrant{}}
}

func (m *memGrants) FindCollectionGrant(_ context.Context, userID int64, collectionID int64) (*model.CollectionGrant, error) {
	g, ok := m.collections[pairKey{userID, collectionID}]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (m *memGrants) FindItemGrant(_ context.Context, userID int64, itemID int64) (*model.ItemGrant, error) {
	g, ok := m.items[pairKey{userID, itemID}]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (m *memGrants) UpsertCollectionGrant(_ context.Context, grant model.CollectionGrant) (*model.CollectionGrant, model.CollectionGrant, error) {
	key := pairKey{grant.UserID, grant.CollectionID}
	var before *model.CollectionGrant
	if prev, ok := m.collections[key]; ok {
		before = &prev
	}
	grant.UpdatedAt = time.Now().UTC()
	m.collections[key] = grant
	return before, grant, nil
}

func (m *memGrants) UpsertItemGrant(_ context.Context, grant model.ItemGrant) (*model.ItemGrant, model.ItemGrant, error) {
	key := pairKey{grant.UserID, grant.ItemID}
	var before *model.ItemGrant
	if prev, ok := m.items[key]; ok {
		before = &prev
	}
	grant.UpdatedAt = time.Now().UTC()
	m.items[key] = grant
	return before, grant, nil
}

func (m *memGrants) DeleteCollectionGrant(_ context.Context, userID int64, collectionID int64) (model.CollectionGrant, error) {
	key := pairKey{userID, collectionID}
	g, ok := m.collections[key]
	if !ok {
		return model.CollectionGrant{}, model.ErrGrantNotFound
	}
	delete(m.collections, key)
	return g, nil
}

func (m *memGrants) DeleteItemGrant(_ context.Context, userID int64, itemID int64) (model.ItemGrant, error) {
	key := pairKey{userID, itemID}
	g, ok := m.items[key]
	if !ok {
		return model.ItemGrant{}, model.ErrGrantNotFound
	}
	delete(m.items, key)
	return g, nil
}

func (m *memGrants) ListForUser(_ context.Context, userID int64) (model.GrantSet, error) {
	set := model.GrantSet{Collections: []model.CollectionGrant{}, Items: []model.ItemGrant{}}
	for key, g := range m.collections {
		if key.user == userID {
			set.Collections = append(set.Collections, g)
		}
	}
	for key, g := range m.items {
		if key.user == userID {
			set.Items = append(set.Items, g)
		}
	}
	return set, nil
}

type memResources struct {
	collections map[int64]model.Collection
	items       map[int64]model.Item
	nextID      int64
}

func newMemResources() *memResources {
	return &memResources{collections: map[int64]model.Collection{}, items: map[int64]model.Item{}, nextID: 100}
}

func (m *memResources) CreateCollection(_ context.Context, name string, createdBy int64) (model.Collection, error) {
	m.nextID++
	c := model.Collection{ID: m.nextID, Name: name, CreatedBy: createdBy, CreatedAt: time.Now().UTC()}
	m.collections[c.ID] = c
	return c, nil
}

func (m *memResources) FindCollection(_ context.Context, id int64) (model.Collection, error) {
	c, ok := m.collections[id]
	if !ok {
		return model.Collection{}, model.ErrCollectionMissing
	}
	return c, nil
}

func (m *memResources) CreateItem(_ context.Context, item model.Item) (model.Item, error) {
	if _, ok := m.collections[item.CollectionID]; !ok {
		return model.Item{}, model.ErrCollectionMissing
	}
	m.nextID++
	item.ID = m.nextID
	item.CreatedAt = time.Now().UTC()
	item.UpdatedAt = item.CreatedAt
	m.items[item.ID] = item
	return item, nil
}

func (m *memResources) FindItem(_ context.Context, id int64) (model.Item, error) {
	it, ok := m.items[id]
	if !ok {
		return model.Item{}, model.ErrItemNotFound
	}
	return it, nil
}

func (m *memResources) UpdateItemTitle(_ context.Context, id int64, title string) (model.Item, error) {
	it, ok := m.items[id]
	if !ok {
		return model.Item{}, model.ErrItemNotFound
	}
	it.Title = title
	m.items[id] = it
	return it, nil
}

func (m *memResources) DeleteItem(_ context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return model.ErrItemNotFound
	}
	delete(m.items, id)
	return nil
}

type auditRecord struct {
	actorID int64
	action  string
	detail  model.AuditDetail
}

type recordingAudit struct {
	mu      sync.Mutex
	records []auditRecord
}

func (r *recordingAudit) Append(actorID int64, action string, detail model.AuditDetail) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, auditRecord{actorID: actorID, action: action, detail: detail})
}

func (r *recordingAudit) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec.action)
	}
	return out
}

func (r *recordingAudit) last() auditRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records[len(r.records)-1]
}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock() *fixedClock {
	return &fixedClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var testTokenConfig = TokenConfig{
	Secret:     "test-secret-with-enough-entropy-0123456789",
	AccessTTL:  12 * time.Hour,
	RenewTTL:   time.Hour,
	RefreshTTL: 7 * 24 * time.Hour,
}
