package services

import (
	"context"
	"fmt"
	"time"

	"dobtasks/internal/authz"
	"dobtasks/internal/models"
	"dobtasks/internal/repositories"
)

// In-memory stand-ins for the SQL repositories. They emulate the join the
// real task queries perform, so the denormalized assignee/assigner fields
// behave the same way in tests.

type fakeUserRepo struct {
	users  map[int64]*models.User
	nextID int64

	passwords map[int64]string // id -> last stored hash
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:     map[int64]*models.User{},
		nextID:    1,
		passwords: map[int64]string{},
	}
}

func (r *fakeUserRepo) add(u models.User) *models.User {
	if u.ID == 0 {
		u.ID = r.nextID
	}
	if u.ID >= r.nextID {
		r.nextID = u.ID + 1
	}
	r.users[u.ID] = &u
	return &u
}

func (r *fakeUserRepo) Create(user *models.User) error {
	for _, u := range r.users {
		if u.Email == user.Email || u.DobID == user.DobID {
			return fmt.Errorf("%w: users_email_key", repositories.ErrDuplicate)
		}
	}
	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(id int64) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(user *models.User) error {
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Delete(id int64) error {
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) List(filter models.UserFilter, scope authz.Scope) ([]*models.User, error) {
	if scope.Kind == authz.ScopeNone {
		return nil, nil
	}
	var out []*models.User
	for _, u := range r.users {
		if scope.Kind == authz.ScopeDepartment {
			if u.DepartmentID == nil || *u.DepartmentID != scope.DepartmentID {
				continue
			}
		}
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.IsActive != nil && u.IsActive != *filter.IsActive {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeUserRepo) UpdatePassword(id int64, passwordHash string) error {
	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("no user %d", id)
	}
	u.PasswordHash = passwordHash
	r.passwords[id] = passwordHash
	return nil
}

func (r *fakeUserRepo) SetActive(id int64, active bool) error {
	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("no user %d", id)
	}
	u.IsActive = active
	return nil
}

func (r *fakeUserRepo) UpdateRefresh(userID int64, token string, expiresAt time.Time) error {
	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("no user %d", userID)
	}
	u.RefreshToken = &token
	u.RefreshExpiresAt = &expiresAt
	u.RefreshRevoked = false
	return nil
}

func (r *fakeUserRepo) RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error) {
	for _, u := range r.users {
		if u.RefreshToken != nil && *u.RefreshToken == oldToken && !u.RefreshRevoked {
			u.RefreshToken = &newToken
			u.RefreshExpiresAt = &newExpiresAt
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) ClearRefresh(userID int64) error {
	u, ok := r.users[userID]
	if !ok {
		return nil
	}
	u.RefreshToken = nil
	u.RefreshExpiresAt = nil
	u.RefreshRevoked = true
	return nil
}

func (r *fakeUserRepo) GetByRefreshToken(token string) (*models.User, error) {
	for _, u := range r.users {
		if u.RefreshToken != nil && *u.RefreshToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

type fakeTaskRepo struct {
	tasks  map[int64]*models.Task
	users  *fakeUserRepo
	nextID int64
}

func newFakeTaskRepo(users *fakeUserRepo) *fakeTaskRepo {
	return &fakeTaskRepo{tasks: map[int64]*models.Task{}, users: users, nextID: 1}
}

func (r *fakeTaskRepo) add(t models.Task) *models.Task {
	if t.ID == 0 {
		t.ID = r.nextID
	}
	if t.ID >= r.nextID {
		r.nextID = t.ID + 1
	}
	r.tasks[t.ID] = &t
	return &t
}

// join fills the fields the SQL joins would have produced.
func (r *fakeTaskRepo) join(t models.Task) *models.Task {
	t.AssignedByRole = ""
	t.AssigneeDepartmentID = nil
	t.AssigneeName = ""
	t.AssigneeEmail = ""
	if r.users != nil {
		if a, ok := r.users.users[t.AssignedToID]; ok {
			t.AssigneeDepartmentID = a.DepartmentID
			t.AssigneeName = a.FullName
			t.AssigneeEmail = a.Email
		}
		if t.AssignedByID != nil {
			if b, ok := r.users.users[*t.AssignedByID]; ok {
				t.AssignedByRole = b.Role
			}
		}
	}
	return &t
}

func (r *fakeTaskRepo) Store(_ context.Context, task *models.Task) error {
	task.ID = r.nextID
	r.nextID++
	task.CreatedAt = time.Now()
	task.StatusUpdatedAt = task.CreatedAt
	cp := *task
	r.tasks[task.ID] = &cp
	return nil
}

func (r *fakeTaskRepo) FindByID(_ context.Context, id int64) (*models.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, nil
	}
	return r.join(*t), nil
}

func (r *fakeTaskRepo) FindAll(_ context.Context, filter models.TaskFilter, scope authz.Scope) ([]models.Task, error) {
	if scope.Kind == authz.ScopeNone {
		return nil, nil
	}
	var out []models.Task
	for _, t := range r.tasks {
		j := r.join(*t)
		if scope.Kind == authz.ScopeDepartment {
			if j.AssigneeDepartmentID == nil || *j.AssigneeDepartmentID != scope.DepartmentID {
				continue
			}
		}
		if filter.AssignedToID != nil && j.AssignedToID != *filter.AssignedToID {
			continue
		}
		if filter.Status != nil && j.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && j.Priority != *filter.Priority {
			continue
		}
		if filter.DeadlineOn != nil && !j.Deadline.Equal(*filter.DeadlineOn) {
			continue
		}
		out = append(out, *j)
	}
	return out, nil
}

func (r *fakeTaskRepo) Update(_ context.Context, task *models.Task) error {
	if _, ok := r.tasks[task.ID]; !ok {
		return fmt.Errorf("no task %d", task.ID)
	}
	cp := *task
	cp.StatusUpdatedAt = time.Now()
	r.tasks[task.ID] = &cp
	return nil
}

func (r *fakeTaskRepo) UpdateStatus(_ context.Context, id int64, to models.TaskStatus) error {
	t, ok := r.tasks[id]
	if !ok {
		return fmt.Errorf("no task %d", id)
	}
	t.Status = to
	t.StatusUpdatedAt = time.Now()
	return nil
}

func (r *fakeTaskRepo) ListDueOn(_ context.Context, day time.Time, statuses []models.TaskStatus) ([]models.Task, error) {
	var out []models.Task
	for _, t := range r.tasks {
		if !t.Deadline.Equal(day) {
			continue
		}
		match := len(statuses) == 0
		for _, s := range statuses {
			if t.Status == s {
				match = true
				break
			}
		}
		if match {
			out = append(out, *r.join(*t))
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) CountByStatus(_ context.Context, scope authz.Scope) (map[models.TaskStatus]int, error) {
	out := map[models.TaskStatus]int{}
	if scope.Kind == authz.ScopeNone {
		return out, nil
	}
	for _, t := range r.tasks {
		j := r.join(*t)
		if scope.Kind == authz.ScopeDepartment {
			if j.AssigneeDepartmentID == nil || *j.AssigneeDepartmentID != scope.DepartmentID {
				continue
			}
		}
		out[j.Status]++
	}
	return out, nil
}

func (r *fakeTaskRepo) CountByPriority(_ context.Context, scope authz.Scope) (map[models.TaskPriority]int, error) {
	out := map[models.TaskPriority]int{}
	if scope.Kind == authz.ScopeNone {
		return out, nil
	}
	for _, t := range r.tasks {
		j := r.join(*t)
		if scope.Kind == authz.ScopeDepartment {
			if j.AssigneeDepartmentID == nil || *j.AssigneeDepartmentID != scope.DepartmentID {
				continue
			}
		}
		out[j.Priority]++
	}
	return out, nil
}

type sentMail struct {
	kind     string // "assigned", "reminder", "password"
	to       string
	taskID   int64
	password string
}

type fakeEmail struct {
	sent   []sentMail
	failTo map[string]bool
}

func newFakeEmail() *fakeEmail {
	return &fakeEmail{failTo: map[string]bool{}}
}

func (f *fakeEmail) SendTaskAssignedEmail(to string, task *models.Task) error {
	if f.failTo[to] {
		return fmt.Errorf("%w: smtp refused", ErrDelivery)
	}
	f.sent = append(f.sent, sentMail{kind: "assigned", to: to, taskID: task.ID})
	return nil
}

func (f *fakeEmail) SendDeadlineReminderEmail(to string, task *models.Task) error {
	if f.failTo[to] {
		return fmt.Errorf("%w: smtp refused", ErrDelivery)
	}
	f.sent = append(f.sent, sentMail{kind: "reminder", to: to, taskID: task.ID})
	return nil
}

func (f *fakeEmail) SendNewPasswordEmail(to, _, newPassword string) error {
	if f.failTo[to] {
		return fmt.Errorf("%w: smtp refused", ErrDelivery)
	}
	f.sent = append(f.sent, sentMail{kind: "password", to: to, password: newPassword})
	return nil
}
