package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"sci-task/backend/internal/model"
	"sci-task/backend/internal/repository"
)

// 内存版仓储实现，供服务层测试使用

type mockDepartmentRepo struct {
	mu    sync.Mutex
	depts map[string]*model.Department
	// 每个院系的教师数，供删除守卫测试
	teacherCount map[string]int64
}

func newMockDepartmentRepo() *mockDepartmentRepo {
	return &mockDepartmentRepo{
		depts:        make(map[string]*model.Department),
		teacherCount: make(map[string]int64),
	}
}

func (m *mockDepartmentRepo) Create(_ context.Context, dept *model.Department) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *dept
	m.depts[dept.DepID] = &cp
	return nil
}

func (m *mockDepartmentRepo) GetByID(_ context.Context, id string) (*model.Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dept, ok := m.depts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *dept
	return &cp, nil
}

func (m *mockDepartmentRepo) GetByName(_ context.Context, name string) (*model.Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, dept := range m.depts {
		if dept.DepName == name {
			cp := *dept
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDepartmentRepo) List(_ context.Context) ([]model.Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Department, 0, len(m.depts))
	for _, dept := range m.depts {
		out = append(out, *dept)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DepID < out[j].DepID })
	return out, nil
}

func (m *mockDepartmentRepo) Update(_ context.Context, dept *model.Department) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *dept
	m.depts[dept.DepID] = &cp
	return nil
}

func (m *mockDepartmentRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.depts, id)
	return nil
}

func (m *mockDepartmentRepo) CountTeachers(_ context.Context, depID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.teacherCount[depID], nil
}

func (m *mockDepartmentRepo) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.depts)), nil
}

type mockTeacherRepo struct {
	mu       sync.Mutex
	teachers map[string]*model.Teacher
}

func newMockTeacherRepo() *mockTeacherRepo {
	return &mockTeacherRepo{teachers: make(map[string]*model.Teacher)}
}

func (m *mockTeacherRepo) Create(_ context.Context, t *model.Teacher) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.teachers[t.TeacherID]; ok {
		return errors.New("duplicate key")
	}
	cp := *t
	m.teachers[t.TeacherID] = &cp
	return nil
}

func (m *mockTeacherRepo) BatchCreate(ctx context.Context, teachers []model.Teacher) error {
	for i := range teachers {
		if err := m.Create(ctx, &teachers[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockTeacherRepo) GetByID(_ context.Context, id string) (*model.Teacher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.teachers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *mockTeacherRepo) List(_ context.Context, filter repository.TeacherListFilter) ([]model.Teacher, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.Teacher
	for _, t := range m.teachers {
		if filter.DepID != "" && (t.DepID == nil || *t.DepID != filter.DepID) {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(t.Name, filter.Keyword) &&
			!strings.Contains(t.TeacherID, filter.Keyword) && !strings.Contains(t.Email, filter.Keyword) {
			continue
		}
		all = append(all, *t)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].TeacherID < all[j].TeacherID })
	total := int64(len(all))
	start := (filter.Page - 1) * filter.Size
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + filter.Size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (m *mockTeacherRepo) ListAll(_ context.Context) ([]model.Teacher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Teacher, 0, len(m.teachers))
	for _, t := range m.teachers {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeacherID < out[j].TeacherID })
	return out, nil
}

func (m *mockTeacherRepo) ListByDepartment(_ context.Context, depID string) ([]model.Teacher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Teacher
	for _, t := range m.teachers {
		if t.DepID != nil && *t.DepID == depID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeacherID < out[j].TeacherID })
	return out, nil
}

func (m *mockTeacherRepo) ListByIDs(_ context.Context, ids []string) ([]model.Teacher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Teacher
	for _, id := range ids {
		if t, ok := m.teachers[id]; ok {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *mockTeacherRepo) Update(_ context.Context, t *model.Teacher) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.teachers[t.TeacherID] = &cp
	return nil
}

func (m *mockTeacherRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.teachers, id)
	return nil
}

func (m *mockTeacherRepo) ExistsByID(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.teachers[id]
	return ok, nil
}

func (m *mockTeacherRepo) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.teachers)), nil
}

type mockTaskRepo struct {
	mu     sync.Mutex
	tasks  map[int]*model.Task
	nextID int
}

func newMockTaskRepo() *mockTaskRepo {
	return &mockTaskRepo{tasks: make(map[int]*model.Task), nextID: 1}
}

func (m *mockTaskRepo) Create(_ context.Context, task *model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	task.TaskID = m.nextID
	m.nextID++
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	cp := *task
	m.tasks[task.TaskID] = &cp
	return nil
}

func (m *mockTaskRepo) GetByID(_ context.Context, id int) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *task
	return &cp, nil
}

func (m *mockTaskRepo) List(_ context.Context, filter repository.TaskListFilter) ([]model.Task, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.Task
	for _, task := range m.tasks {
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(task.TaskName, filter.Keyword) {
			continue
		}
		all = append(all, *task)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].TaskID > all[j].TaskID })
	total := int64(len(all))
	start := (filter.Page - 1) * filter.Size
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + filter.Size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (m *mockTaskRepo) Update(_ context.Context, task *model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[task.TaskID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *task
	m.tasks[task.TaskID] = &cp
	return nil
}

func (m *mockTaskRepo) UpdateWithVersion(_ context.Context, task *model.Task, expectedVersion int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.tasks[task.TaskID]
	if !ok || stored.Version != expectedVersion {
		return 0, nil
	}
	task.Version = expectedVersion + 1
	cp := *task
	m.tasks[task.TaskID] = &cp
	return 1, nil
}

func (m *mockTaskRepo) UpdateStatus(_ context.Context, id int, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	task.Status = status
	return nil
}

func (m *mockTaskRepo) Delete(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tasks, id)
	return nil
}

func (m *mockTaskRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int64)
	for _, task := range m.tasks {
		counts[task.Status]++
	}
	return counts, nil
}

type mockRecipientRepo struct {
	mu         sync.Mutex
	recipients []model.TaskRecipient
	nextID     int
	teachers   *mockTeacherRepo
}

func newMockRecipientRepo(teachers *mockTeacherRepo) *mockRecipientRepo {
	return &mockRecipientRepo{nextID: 1, teachers: teachers}
}

func (m *mockRecipientRepo) BatchCreate(_ context.Context, recipients []model.TaskRecipient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range recipients {
		for _, existing := range m.recipients {
			if existing.TaskID == r.TaskID && existing.TeacherID == r.TeacherID {
				return errors.New("duplicate key")
			}
		}
		r.ID = m.nextID
		m.nextID++
		m.recipients = append(m.recipients, r)
	}
	return nil
}

func (m *mockRecipientRepo) ListByTask(ctx context.Context, taskID int) ([]model.TaskRecipient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.TaskRecipient
	for _, r := range m.recipients {
		if r.TaskID != taskID {
			continue
		}
		cp := r
		if m.teachers != nil {
			if t, err := m.teachers.GetByID(ctx, r.TeacherID); err == nil {
				cp.Teacher = t
			}
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeacherID < out[j].TeacherID })
	return out, nil
}

func (m *mockRecipientRepo) GetByTaskAndTeacher(_ context.Context, taskID int, teacherID string) (*model.TaskRecipient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.recipients {
		if r.TaskID == taskID && r.TeacherID == teacherID {
			cp := r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRecipientRepo) DeleteByTask(_ context.Context, taskID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.recipients[:0]
	for _, r := range m.recipients {
		if r.TaskID != taskID {
			kept = append(kept, r)
		}
	}
	m.recipients = kept
	return nil
}

func (m *mockRecipientRepo) DeleteByTeacher(_ context.Context, teacherID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.recipients[:0]
	for _, r := range m.recipients {
		if r.TeacherID != teacherID {
			kept = append(kept, r)
		}
	}
	m.recipients = kept
	return nil
}

func (m *mockRecipientRepo) MarkSent(_ context.Context, taskID int, teacherID string, sentAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.recipients {
		if m.recipients[i].TaskID == taskID && m.recipients[i].TeacherID == teacherID {
			t := sentAt
			m.recipients[i].SentTime = &t
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockRecipientRepo) MarkReplied(_ context.Context, taskID int, teacherID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.recipients {
		if m.recipients[i].TaskID == taskID && m.recipients[i].TeacherID == teacherID {
			m.recipients[i].IsReplied = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockRecipientRepo) Stats(_ context.Context, taskID int) (*repository.RecipientStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &repository.RecipientStats{}
	for _, r := range m.recipients {
		if r.TaskID == taskID {
			stats.Total++
			if r.IsReplied {
				stats.Replied++
			}
		}
	}
	return stats, nil
}

type mockRecycledRepo struct {
	mu      sync.Mutex
	records []model.RecycledExcel
	nextID  int
}

func newMockRecycledRepo() *mockRecycledRepo {
	return &mockRecycledRepo{nextID: 1}
}

func (m *mockRecycledRepo) Create(_ context.Context, record *model.RecycledExcel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record.RID = m.nextID
	m.nextID++
	m.records = append(m.records, *record)
	return nil
}

func (m *mockRecycledRepo) GetByID(_ context.Context, id int) (*model.RecycledExcel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.RID == id {
			cp := r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRecycledRepo) ListByTask(_ context.Context, taskID int) ([]model.RecycledExcel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.RecycledExcel
	for _, r := range m.records {
		if r.TaskID == taskID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRecycledRepo) ListByTaskAndTeacher(_ context.Context, taskID int, teacherID string) ([]model.RecycledExcel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.RecycledExcel
	for _, r := range m.records {
		if r.TaskID == taskID && r.TeacherID == teacherID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRecycledRepo) DeleteByTask(_ context.Context, taskID int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var paths []string
	kept := m.records[:0]
	for _, r := range m.records {
		if r.TaskID == taskID {
			paths = append(paths, r.FilePath)
		} else {
			kept = append(kept, r)
		}
	}
	m.records = kept
	return paths, nil
}

func (m *mockRecycledRepo) DeleteByTeacher(_ context.Context, teacherID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var paths []string
	kept := m.records[:0]
	for _, r := range m.records {
		if r.TeacherID == teacherID {
			paths = append(paths, r.FilePath)
		} else {
			kept = append(kept, r)
		}
	}
	m.records = kept
	return paths, nil
}

type mockAdminRepo struct {
	mu     sync.Mutex
	admins map[string]*model.AdminUser
}

func newMockAdminRepo() *mockAdminRepo {
	return &mockAdminRepo{admins: make(map[string]*model.AdminUser)}
}

func (m *mockAdminRepo) Create(_ context.Context, admin *model.AdminUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if admin.AdminID == "" {
		admin.AdminID = admin.Username + "-id"
	}
	cp := *admin
	m.admins[admin.AdminID] = &cp
	return nil
}

func (m *mockAdminRepo) GetByID(_ context.Context, id string) (*model.AdminUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	admin, ok := m.admins[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *admin
	return &cp, nil
}

func (m *mockAdminRepo) GetByUsername(_ context.Context, username string) (*model.AdminUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, admin := range m.admins {
		if admin.Username == username {
			cp := *admin
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// stubTransport 可编程的邮件传输桩
type stubTransport struct {
	mu sync.Mutex
	// failFor 中的收件地址发送时返回错误
	failFor map[string]error
	sent    []sentMail
}

type sentMail struct {
	to         string
	subject    string
	body       string
	attachment string
}

func newStubTransport() *stubTransport {
	return &stubTransport{failFor: make(map[string]error)}
}

func (s *stubTransport) Send(_ context.Context, to, subject, htmlBody, attachmentPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failFor[to]; ok {
		return err
	}
	s.sent = append(s.sent, sentMail{to: to, subject: subject, body: htmlBody, attachment: attachmentPath})
	return nil
}

// testRepos 组装测试用仓储聚合及各 mock 引用
type testRepos struct {
	repo     *repository.Repository
	depts    *mockDepartmentRepo
	teachers *mockTeacherRepo
	tasks    *mockTaskRepo
	recips   *mockRecipientRepo
	recycled *mockRecycledRepo
	admins   *mockAdminRepo
}

func newTestRepos() *testRepos {
	depts := newMockDepartmentRepo()
	teachers := newMockTeacherRepo()
	tasks := newMockTaskRepo()
	recips := newMockRecipientRepo(teachers)
	recycled := newMockRecycledRepo()
	admins := newMockAdminRepo()
	return &testRepos{
		repo: &repository.Repository{
			Department: depts,
			Teacher:    teachers,
			Task:       tasks,
			Recipient:  recips,
			Recycled:   recycled,
			Admin:      admins,
		},
		depts:    depts,
		teachers: teachers,
		tasks:    tasks,
		recips:   recips,
		recycled: recycled,
		admins:   admins,
	}
}
