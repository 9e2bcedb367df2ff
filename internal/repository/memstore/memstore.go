// Package memstore is an in-memory repository.Store used for local development
// and tests. A single mutex serializes transactions, and each transaction works on
// a copy of the state that replaces the live one only when fn succeeds.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/repository"
)

type voteKey struct {
	complaintID int64
	voter       domain.VoterKey
}

type memberKey struct {
	orgID  int64
	userID int64
}

type state struct {
	complaints    map[int64]domain.Complaint
	votes         map[voteKey]time.Time
	edits         []domain.ComplaintEdit
	organizations map[int64]domain.Organization
	members       map[memberKey]struct{}
	departments   map[int64]domain.Department
	notifications []domain.Notification
	seq           int64
}

func newState() *state {
	return &state{
		complaints:    make(map[int64]domain.Complaint),
		votes:         make(map[voteKey]time.Time),
		organizations: make(map[int64]domain.Organization),
		members:       make(map[memberKey]struct{}),
		departments:   make(map[int64]domain.Department),
	}
}

func (s *state) clone() *state {
	c := &state{
		complaints:    make(map[int64]domain.Complaint, len(s.complaints)),
		votes:         make(map[voteKey]time.Time, len(s.votes)),
		edits:         append([]domain.ComplaintEdit(nil), s.edits...),
		organizations: make(map[int64]domain.Organization, len(s.organizations)),
		members:       make(map[memberKey]struct{}, len(s.members)),
		departments:   make(map[int64]domain.Department, len(s.departments)),
		notifications: append([]domain.Notification(nil), s.notifications...),
		seq:           s.seq,
	}
	for k, v := range s.complaints {
		c.complaints[k] = v
	}
	for k, v := range s.votes {
		c.votes[k] = v
	}
	for k, v := range s.organizations {
		c.organizations[k] = v
	}
	for k := range s.members {
		c.members[k] = struct{}{}
	}
	for k, v := range s.departments {
		c.departments[k] = v
	}
	return c
}

func (s *state) nextID() int64 {
	s.seq++
	return s.seq
}

// Store implements repository.Store in memory.
type Store struct {
	mu    sync.Mutex
	state *state
}

// New creates an empty store.
func New() *Store {
	return &Store{state: newState()}
}

// Repos returns repositories that each run one operation under the store lock.
func (s *Store) Repos() repository.Repositories {
	return reposFor(func(fn func(*state) error) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		return fn(s.state)
	})
}

// WithinTx runs fn against a private copy of the state and publishes it on success.
func (s *Store) WithinTx(ctx context.Context, fn func(repos repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.state.clone()
	err := fn(reposFor(func(op func(*state) error) error {
		return op(working)
	}))
	if err != nil {
		return err
	}
	s.state = working
	return nil
}

// AddOrganization seeds an organization and returns its id.
func (s *Store) AddOrganization(org domain.Organization) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if org.ID == 0 {
		org.ID = s.state.nextID()
	}
	if org.Visibility == "" {
		org.Visibility = domain.VisibilityPublic
	}
	s.state.organizations[org.ID] = org
	return org.ID
}

// AddMember seeds an organization membership.
func (s *Store) AddMember(orgID, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.members[memberKey{orgID: orgID, userID: userID}] = struct{}{}
}

// AddDepartment seeds a department and returns its id.
func (s *Store) AddDepartment(dept domain.Department) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dept.ID == 0 {
		dept.ID = s.state.nextID()
	}
	s.state.departments[dept.ID] = dept
	return dept.ID
}

type runner func(func(*state) error) error

func reposFor(run runner) repository.Repositories {
	return repository.Repositories{
		Complaints:    &complaintRepo{run: run},
		Votes:         &voteRepo{run: run},
		Edits:         &editRepo{run: run},
		Organizations: &organizationRepo{run: run},
		Notifications: &notificationRepo{run: run},
	}
}

type complaintRepo struct{ run runner }

func (r *complaintRepo) Create(_ context.Context, c *domain.Complaint) error {
	return r.run(func(st *state) error {
		for _, existing := range st.complaints {
			if existing.TrackingCode == c.TrackingCode {
				return repository.ErrDuplicateTrackingCode
			}
		}
		c.ID = st.nextID()
		c.Votes = 0
		st.complaints[c.ID] = *c
		return nil
	})
}

func (r *complaintRepo) GetByID(_ context.Context, id int64) (*domain.Complaint, error) {
	var out *domain.Complaint
	err := r.run(func(st *state) error {
		c, ok := st.complaints[id]
		if !ok {
			return pgx.ErrNoRows
		}
		out = &c
		return nil
	})
	return out, err
}

func (r *complaintRepo) GetByTrackingCode(_ context.Context, code string) (*domain.Complaint, error) {
	var out *domain.Complaint
	err := r.run(func(st *state) error {
		for _, c := range st.complaints {
			if c.TrackingCode == code {
				c := c
				out = &c
				return nil
			}
		}
		return pgx.ErrNoRows
	})
	return out, err
}

func (r *complaintRepo) GetForUpdate(ctx context.Context, id int64) (*domain.Complaint, error) {
	return r.GetByID(ctx, id)
}

func (r *complaintRepo) update(id int64, fn func(c *domain.Complaint)) error {
	return r.run(func(st *state) error {
		c, ok := st.complaints[id]
		if !ok {
			return pgx.ErrNoRows
		}
		fn(&c)
		st.complaints[id] = c
		return nil
	})
}

func (r *complaintRepo) UpdateStatus(_ context.Context, id int64, status domain.ComplaintStatus, withdrawnAt *time.Time) error {
	return r.update(id, func(c *domain.Complaint) {
		c.Status = status
		c.WithdrawnAt = withdrawnAt
	})
}

func (r *complaintRepo) UpdateContent(_ context.Context, id int64, title, description string, editedAt time.Time) error {
	return r.update(id, func(c *domain.Complaint) {
		c.Title = title
		c.Description = description
		c.EditedAt = &editedAt
	})
}

func (r *complaintRepo) SetVotes(_ context.Context, id int64, votes int) error {
	return r.update(id, func(c *domain.Complaint) {
		c.Votes = votes
	})
}

func (r *complaintRepo) DeleteWithdrawnBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var purged int64
	err := r.run(func(st *state) error {
		for id, c := range st.complaints {
			if c.Status != domain.ComplaintStatusWithdrawn || c.WithdrawnAt == nil || !c.WithdrawnAt.Before(cutoff) {
				continue
			}
			delete(st.complaints, id)
			for k := range st.votes {
				if k.complaintID == id {
					delete(st.votes, k)
				}
			}
			kept := st.edits[:0]
			for _, e := range st.edits {
				if e.ComplaintID != id {
					kept = append(kept, e)
				}
			}
			st.edits = kept
			for i := range st.notifications {
				if n := st.notifications[i]; n.ComplaintID != nil && *n.ComplaintID == id {
					st.notifications[i].ComplaintID = nil
				}
			}
			purged++
		}
		return nil
	})
	return purged, err
}

type voteRepo struct{ run runner }

func (r *voteRepo) Insert(_ context.Context, complaintID int64, key domain.VoterKey) (bool, error) {
	var inserted bool
	err := r.run(func(st *state) error {
		if _, ok := st.complaints[complaintID]; !ok {
			return pgx.ErrNoRows
		}
		k := voteKey{complaintID: complaintID, voter: key}
		if _, ok := st.votes[k]; ok {
			return nil
		}
		st.votes[k] = time.Now()
		inserted = true
		return nil
	})
	return inserted, err
}

func (r *voteRepo) Delete(_ context.Context, complaintID int64, key domain.VoterKey) (bool, error) {
	var deleted bool
	err := r.run(func(st *state) error {
		k := voteKey{complaintID: complaintID, voter: key}
		if _, ok := st.votes[k]; ok {
			delete(st.votes, k)
			deleted = true
		}
		return nil
	})
	return deleted, err
}

func (r *voteRepo) Exists(_ context.Context, complaintID int64, key domain.VoterKey) (bool, error) {
	var exists bool
	err := r.run(func(st *state) error {
		_, exists = st.votes[voteKey{complaintID: complaintID, voter: key}]
		return nil
	})
	return exists, err
}

func (r *voteRepo) Count(_ context.Context, complaintID int64) (int, error) {
	var count int
	err := r.run(func(st *state) error {
		for k := range st.votes {
			if k.complaintID == complaintID {
				count++
			}
		}
		return nil
	})
	return count, err
}

type editRepo struct{ run runner }

func (r *editRepo) Create(_ context.Context, edit *domain.ComplaintEdit) error {
	return r.run(func(st *state) error {
		if _, ok := st.complaints[edit.ComplaintID]; !ok {
			return pgx.ErrNoRows
		}
		edit.ID = st.nextID()
		st.edits = append(st.edits, *edit)
		return nil
	})
}

func (r *editRepo) ListByComplaint(_ context.Context, complaintID int64) ([]domain.ComplaintEdit, error) {
	result := []domain.ComplaintEdit{}
	err := r.run(func(st *state) error {
		for _, e := range st.edits {
			if e.ComplaintID == complaintID {
				result = append(result, e)
			}
		}
		return nil
	})
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].EditedAt.Equal(result[j].EditedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].EditedAt.After(result[j].EditedAt)
	})
	return result, err
}

type organizationRepo struct{ run runner }

func (r *organizationRepo) GetByID(_ context.Context, id int64) (*domain.Organization, error) {
	var out *domain.Organization
	err := r.run(func(st *state) error {
		org, ok := st.organizations[id]
		if !ok {
			return pgx.ErrNoRows
		}
		out = &org
		return nil
	})
	return out, err
}

func (r *organizationRepo) IsMember(_ context.Context, orgID, userID int64) (bool, error) {
	var ok bool
	err := r.run(func(st *state) error {
		_, ok = st.members[memberKey{orgID: orgID, userID: userID}]
		return nil
	})
	return ok, err
}

func (r *organizationRepo) ListMemberIDs(_ context.Context, orgID int64) ([]int64, error) {
	var ids []int64
	err := r.run(func(st *state) error {
		for k := range st.members {
			if k.orgID == orgID {
				ids = append(ids, k.userID)
			}
		}
		return nil
	})
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, err
}

func (r *organizationRepo) HasDepartment(_ context.Context, orgID, departmentID int64) (bool, error) {
	var ok bool
	err := r.run(func(st *state) error {
		dept, found := st.departments[departmentID]
		ok = found && dept.OrganizationID == orgID
		return nil
	})
	return ok, err
}

type notificationRepo struct{ run runner }

func (r *notificationRepo) Create(_ context.Context, n *domain.Notification) error {
	return r.run(func(st *state) error {
		n.ID = st.nextID()
		st.notifications = append(st.notifications, *n)
		return nil
	})
}

func (r *notificationRepo) ListByRecipient(_ context.Context, kind domain.RecipientKind, recipientID int64, limit int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	result := []domain.Notification{}
	err := r.run(func(st *state) error {
		for i := len(st.notifications) - 1; i >= 0 && len(result) < limit; i-- {
			n := st.notifications[i]
			if n.RecipientKind == kind && n.RecipientID == recipientID {
				result = append(result, n)
			}
		}
		return nil
	})
	return result, err
}

func (r *notificationRepo) CountUnread(_ context.Context, kind domain.RecipientKind, recipientID int64) (int, error) {
	var count int
	err := r.run(func(st *state) error {
		for _, n := range st.notifications {
			if n.RecipientKind == kind && n.RecipientID == recipientID && n.ReadAt == nil {
				count++
			}
		}
		return nil
	})
	return count, err
}

func (r *notificationRepo) MarkRead(_ context.Context, id int64, kind domain.RecipientKind, recipientID int64, at time.Time) (bool, error) {
	var found bool
	err := r.run(func(st *state) error {
		for i := range st.notifications {
			n := &st.notifications[i]
			if n.ID != id || n.RecipientKind != kind || n.RecipientID != recipientID {
				continue
			}
			if n.ReadAt == nil {
				readAt := at
				n.ReadAt = &readAt
			}
			found = true
			return nil
		}
		return nil
	})
	return found, err
}
