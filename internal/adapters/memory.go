package adapters

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"gitlab.com/contesa/contesa/internal/domain"
	"gitlab.com/contesa/contesa/internal/models"
	"gitlab.com/contesa/contesa/internal/utils"
)

// Memory implements every port against in-process maps. It backs the test
// suite and the DB-less development mode; state is lost on shutdown.
type Memory struct {
	mu sync.Mutex

	nextID        int
	content       map[models.ContentRef]*models.Content
	discussions   map[int]*models.Discussion
	comments      map[int]*models.Comment
	debates       map[int]*models.Debate
	restrictions  []models.ContentRestriction
	audit         []models.AuditEntry
	reports       map[int]*models.Report
	users         map[int]*models.User
	passwdHashes  map[int][]byte
	tokens        map[string]int
	notifications []models.Notification
}

func NewMemory() *Memory {
	return &Memory{
		content:      map[models.ContentRef]*models.Content{},
		discussions:  map[int]*models.Discussion{},
		comments:     map[int]*models.Comment{},
		debates:      map[int]*models.Debate{},
		reports:      map[int]*models.Report{},
		users:        map[int]*models.User{},
		passwdHashes: map[int][]byte{},
		tokens:       map[string]int{},
	}
}

func (m *Memory) id() int {
	m.nextID++
	return m.nextID
}

// --- ContentRepo

func (m *Memory) Content(ctx context.Context, ref models.ContentRef) (*models.Content, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.content[ref]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (m *Memory) UpdateModeration(ctx context.Context, ref models.ContentRef, status models.ModerationStatus, moderatedBy int, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.content[ref]
	if !ok {
		return domain.ErrNotFound
	}
	item.ModerationStatus = status
	item.ModeratedBy = &moderatedBy
	item.LastModerationAction = &at
	return nil
}

func (m *Memory) SetFeatured(ctx context.Context, ctype models.ContentType, ids []int, featured bool) ([]int, error) {
	return m.setFlag(ctype, ids,
		func(c *models.Content) bool { return c.IsFeatured != featured },
		func(c *models.Content) { c.IsFeatured = featured })
}

func (m *Memory) SetPinned(ctx context.Context, ctype models.ContentType, ids []int, pinned bool) ([]int, error) {
	return m.setFlag(ctype, ids,
		func(c *models.Content) bool { return c.IsPinned != pinned },
		func(c *models.Content) { c.IsPinned = pinned })
}

// setFlag mirrors a single multi-row UPDATE: missing ids and rows already at
// the target value are unmatched, everything else flips and is reported back.
func (m *Memory) setFlag(ctype models.ContentType, ids []int, changes func(*models.Content) bool, apply func(*models.Content)) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	changed := []int{}
	for _, id := range ids {
		if item, ok := m.content[models.ContentRef{Type: ctype, ID: id}]; ok && changes(item) {
			apply(item)
			changed = append(changed, id)
		}
	}
	return changed, nil
}

func (m *Memory) IncrementReportCount(ctx context.Context, ref models.ContentRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.content[ref]
	if !ok {
		return domain.ErrNotFound
	}
	item.ReportCount++
	return nil
}

func (m *Memory) CreateDiscussion(ctx context.Context, d *models.Discussion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.ID = m.id()
	d.CreatedAt = time.Now()
	m.discussions[d.ID] = d
	m.content[models.ContentRef{Type: models.ContentDiscussion, ID: d.ID}] = &models.Content{
		ID:               d.ID,
		AuthorID:         d.AuthorID,
		ModerationStatus: models.StatusApproved,
		CreatedAt:        d.CreatedAt,
	}
	return nil
}

func (m *Memory) CreateComment(ctx context.Context, c *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.id()
	c.CreatedAt = time.Now()
	m.comments[c.ID] = c
	m.content[models.ContentRef{Type: models.ContentComment, ID: c.ID}] = &models.Content{
		ID:               c.ID,
		AuthorID:         c.AuthorID,
		ModerationStatus: models.StatusApproved,
		CreatedAt:        c.CreatedAt,
	}
	return nil
}

func (m *Memory) CreateDebate(ctx context.Context, d *models.Debate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.ID = m.id()
	d.CreatedAt = time.Now()
	m.debates[d.ID] = d
	m.content[models.ContentRef{Type: models.ContentDebate, ID: d.ID}] = &models.Content{
		ID:               d.ID,
		AuthorID:         d.AuthorID,
		ModerationStatus: models.StatusApproved,
		CreatedAt:        d.CreatedAt,
	}
	return nil
}

// --- RestrictionRepo

func (m *Memory) InsertRestriction(ctx context.Context, r *models.ContentRestriction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = m.id()
	m.restrictions = append(m.restrictions, *r)
	return nil
}

func (m *Memory) RestrictionsFor(ctx context.Context, ref models.ContentRef, limit, offset int) ([]models.ContentRestriction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	matched := []models.ContentRestriction{}
	for _, r := range m.restrictions {
		if r.ContentType == ref.Type && r.ContentID == ref.ID {
			matched = append(matched, r)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	lo, hi := pageBounds(len(matched), limit, offset)
	return matched[lo:hi], nil
}

// --- AuditRepo

func (m *Memory) InsertAudit(ctx context.Context, e *models.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = m.id()
	m.audit = append(m.audit, *e)
	return nil
}

func (m *Memory) AuditBySubject(ctx context.Context, targetType string, subjectID, limit, offset int) ([]models.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	matched := []models.AuditEntry{}
	for _, e := range m.audit {
		if e.TargetType == targetType && e.SubjectID == subjectID {
			matched = append(matched, e)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	lo, hi := pageBounds(len(matched), limit, offset)
	return matched[lo:hi], nil
}

func (m *Memory) SearchAudit(ctx context.Context, f models.AuditFilter) ([]models.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	matched := []models.AuditEntry{}
	for _, e := range m.audit {
		if f.ActorID != nil && (e.ActorID == nil || *e.ActorID != *f.ActorID) {
			continue
		}
		if f.Action != "" && e.Action != f.Action {
			continue
		}
		if f.TargetType != "" && e.TargetType != f.TargetType {
			continue
		}
		if f.Since != nil && e.CreatedAt.Before(*f.Since) {
			continue
		}
		if f.Until != nil && !e.CreatedAt.Before(*f.Until) {
			continue
		}
		matched = append(matched, e)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	lo, hi := pageBounds(len(matched), f.Limit, f.Offset)
	return matched[lo:hi], nil
}

// --- ReportRepo

func (m *Memory) InsertReport(ctx context.Context, r *models.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = m.id()
	cp := *r
	m.reports[r.ID] = &cp
	return nil
}

func (m *Memory) Report(ctx context.Context, id int) (*models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *Memory) UpdateReport(ctx context.Context, r *models.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.reports[r.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Status = r.Status
	stored.ResolvedBy = r.ResolvedBy
	stored.ResolvedAt = r.ResolvedAt
	return nil
}

func (m *Memory) ListReports(ctx context.Context, status *models.ReportStatus, limit, offset int) ([]models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	matched := []models.Report{}
	for _, r := range m.reports {
		if status == nil || r.Status == *status {
			matched = append(matched, *r)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	lo, hi := pageBounds(len(matched), limit, offset)
	return matched[lo:hi], nil
}

func (m *Memory) UnresolvedByReason(ctx context.Context) ([]models.ReasonCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byReason := map[models.ReportReason]int{}
	for _, r := range m.reports {
		if r.Status == models.ReportUnresolved {
			byReason[r.Reason]++
		}
	}
	counts := []models.ReasonCount{}
	for reason, n := range byReason {
		counts = append(counts, models.ReasonCount{Reason: reason, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	return counts, nil
}

// --- UserRepo + auth

func (m *Memory) User(ctx context.Context, id int) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *Memory) UpdateUserRole(ctx context.Context, id int, role models.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Role = role
	return nil
}

func (m *Memory) CreateUser(ctx context.Context, user *models.User, passwd string) error {
	if !utils.ValidateEmail(user.Email) {
		return models.ErrInvalidFormat
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(passwd), bcrypt.MinCost)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return models.ErrEmailAlreadyUsed
		}
	}
	user.ID = m.id()
	user.Role = models.RoleUser
	if len(m.users) == 0 {
		user.Role = models.RoleOwner
	}
	user.CreatedAt = time.Now()
	cp := *user
	m.users[user.ID] = &cp
	m.passwdHashes[user.ID] = hash
	return nil
}

func (m *Memory) Login(ctx context.Context, email, passwd string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, u := range m.users {
		if u.Email != email {
			continue
		}
		if err := bcrypt.CompareHashAndPassword(m.passwdHashes[id], []byte(passwd)); err != nil {
			return "", err
		}
		token := utils.GenToken(tokenLen)
		m.tokens[token] = id
		return token, nil
	}
	return "", domain.ErrNotFound
}

func (m *Memory) Signout(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, token)
	return nil
}

func (m *Memory) UserByToken(ctx context.Context, token string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.tokens[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// --- Notifier

func (m *Memory) Notify(ctx context.Context, userID int, n models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n.UserID = userID
	m.notifications = append(m.notifications, n)
	return nil
}

// Notifications returns delivered notifications, oldest first.
func (m *Memory) Notifications() []models.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Notification, len(m.notifications))
	copy(out, m.notifications)
	return out
}

// SeedContent registers a content row directly, for tests and fixtures.
func (m *Memory) SeedContent(ref models.ContentRef, item models.Content) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item.ID = ref.ID
	if item.ModerationStatus == "" {
		item.ModerationStatus = models.StatusApproved
	}
	cp := item
	m.content[ref] = &cp
	if ref.ID > m.nextID {
		m.nextID = ref.ID
	}
}

// SeedUser registers a user with a fixed id and role.
func (m *Memory) SeedUser(u models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := u
	m.users[u.ID] = &cp
	if u.ID > m.nextID {
		m.nextID = u.ID
	}
}

// pageBounds clamps limit/offset against a slice length. limit <= 0 means
// no limit.
func pageBounds(n, limit, offset int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	end := n
	if limit > 0 && offset+limit < n {
		end = offset + limit
	}
	return offset, end
}
