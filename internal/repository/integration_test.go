//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sci-task/backend/internal/model"
	"sci-task/backend/internal/repository"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=sci_task password=sci_task_password dbname=sci_task_test sslmode=disable TimeZone=Asia/Shanghai"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	// 自动迁移测试表结构
	err = testDB.AutoMigrate(
		&model.Department{},
		&model.Teacher{},
		&model.Task{},
		&model.TaskRecipient{},
		&model.RecycledExcel{},
		&model.AdminUser{},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate 失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

// setupTestData 创建基础测试数据并返回清理函数
func setupTestData(t *testing.T) (dept *model.Department, teacher *model.Teacher, cleanup func()) {
	t.Helper()
	ctx := context.Background()

	dept = &model.Department{
		DepID:   fmt.Sprintf("D%d", time.Now().UnixNano()%1_000_000_000),
		DepName: fmt.Sprintf("测试院系-%d", time.Now().UnixNano()),
	}
	if err := testDB.WithContext(ctx).Create(dept).Error; err != nil {
		t.Fatalf("创建院系失败: %v", err)
	}

	teacher = &model.Teacher{
		TeacherID: fmt.Sprintf("T%d", time.Now().UnixNano()%1_000_000_000),
		Name:      "测试教师",
		Sex:       "男",
		Age:       30,
		Email:     fmt.Sprintf("t%d@example.edu.cn", time.Now().UnixNano()),
		DepID:     &dept.DepID,
	}
	if err := testDB.WithContext(ctx).Create(teacher).Error; err != nil {
		t.Fatalf("创建教师失败: %v", err)
	}

	cleanup = func() {
		testDB.Where("teacher_id = ?", teacher.TeacherID).Delete(&model.TaskRecipient{})
		testDB.Where("teacher_id = ?", teacher.TeacherID).Delete(&model.Teacher{})
		testDB.Where("dep_id = ?", dept.DepID).Delete(&model.Department{})
	}
	return dept, teacher, cleanup
}

// ═══════════════════════════════════════════════════════════
// Repository Tests
// ═══════════════════════════════════════════════════════════

func TestDepartmentRepo_CountTeachers(t *testing.T) {
	dept, _, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	count, err := repo.Department.CountTeachers(context.Background(), dept.DepID)
	if err != nil {
		t.Fatalf("统计教师数失败: %v", err)
	}
	if count != 1 {
		t.Errorf("期望教师数 1，实际=%d", count)
	}
}

func TestTaskRecipientRepo_UniqueConstraint(t *testing.T) {
	_, teacher, cleanup := setupTestData(t)
	defer cleanup()

	ctx := context.Background()
	repo := repository.NewRepository(testDB)

	task := &model.Task{TaskName: "唯一约束测试", StartTime: time.Now(), Status: model.TaskStatusDraft, Version: 1}
	if err := repo.Task.Create(ctx, task); err != nil {
		t.Fatalf("创建任务失败: %v", err)
	}
	defer testDB.Where("task_id = ?", task.TaskID).Delete(&model.Task{})
	defer testDB.Where("task_id = ?", task.TaskID).Delete(&model.TaskRecipient{})

	first := []model.TaskRecipient{{TaskID: task.TaskID, TeacherID: teacher.TeacherID}}
	if err := repo.Recipient.BatchCreate(ctx, first); err != nil {
		t.Fatalf("首次写入收件人失败: %v", err)
	}

	// 相同 (task_id, teacher_id) 再次写入应触发唯一约束
	dup := []model.TaskRecipient{{TaskID: task.TaskID, TeacherID: teacher.TeacherID}}
	if err := repo.Recipient.BatchCreate(ctx, dup); err == nil {
		t.Error("期望唯一约束冲突，实际写入成功")
	}
}

func TestTaskRepo_UpdateWithVersion(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewRepository(testDB)

	task := &model.Task{TaskName: "乐观锁测试", StartTime: time.Now(), Status: model.TaskStatusDraft, Version: 1}
	if err := repo.Task.Create(ctx, task); err != nil {
		t.Fatalf("创建任务失败: %v", err)
	}
	defer testDB.Where("task_id = ?", task.TaskID).Delete(&model.Task{})

	task.TaskName = "乐观锁测试-改"
	affected, err := repo.Task.UpdateWithVersion(ctx, task, 1)
	if err != nil {
		t.Fatalf("带版本更新失败: %v", err)
	}
	if affected != 1 {
		t.Errorf("期望影响 1 行，实际=%d", affected)
	}

	// 旧版本号再更新应不命中任何行
	task.TaskName = "乐观锁测试-再改"
	affected, err = repo.Task.UpdateWithVersion(ctx, task, 1)
	if err != nil {
		t.Fatalf("带版本更新失败: %v", err)
	}
	if affected != 0 {
		t.Errorf("过期版本号期望影响 0 行，实际=%d", affected)
	}

	got, err := repo.Task.GetByID(ctx, task.TaskID)
	if err != nil {
		t.Fatalf("查询任务失败: %v", err)
	}
	if got.TaskName != "乐观锁测试-改" || got.Version != 2 {
		t.Errorf("期望 名称=乐观锁测试-改 版本=2，实际=%s/%d", got.TaskName, got.Version)
	}
}

func TestTaskRecipientRepo_StatsAndMark(t *testing.T) {
	_, teacher, cleanup := setupTestData(t)
	defer cleanup()

	ctx := context.Background()
	repo := repository.NewRepository(testDB)

	task := &model.Task{TaskName: "统计测试", StartTime: time.Now(), Status: model.TaskStatusActive, Version: 1}
	if err := repo.Task.Create(ctx, task); err != nil {
		t.Fatalf("创建任务失败: %v", err)
	}
	defer testDB.Where("task_id = ?", task.TaskID).Delete(&model.Task{})
	defer testDB.Where("task_id = ?", task.TaskID).Delete(&model.TaskRecipient{})

	if err := repo.Recipient.BatchCreate(ctx, []model.TaskRecipient{
		{TaskID: task.TaskID, TeacherID: teacher.TeacherID},
	}); err != nil {
		t.Fatalf("写入收件人失败: %v", err)
	}

	if err := repo.Recipient.MarkSent(ctx, task.TaskID, teacher.TeacherID, time.Now()); err != nil {
		t.Fatalf("标记已发送失败: %v", err)
	}
	if err := repo.Recipient.MarkReplied(ctx, task.TaskID, teacher.TeacherID); err != nil {
		t.Fatalf("标记已回复失败: %v", err)
	}

	stats, err := repo.Recipient.Stats(ctx, task.TaskID)
	if err != nil {
		t.Fatalf("查询统计失败: %v", err)
	}
	if stats.Total != 1 || stats.Replied != 1 {
		t.Errorf("期望 1/1，实际=%d/%d", stats.Total, stats.Replied)
	}
}
