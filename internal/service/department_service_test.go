package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"sci-task/backend/internal/dto"
)

func TestDepartmentService_Create(t *testing.T) {
	repos := newTestRepos()
	svc := NewDepartmentService(repos.repo, zap.NewNop())
	ctx := context.Background()

	resp, err := svc.Create(ctx, &dto.CreateDepartmentRequest{
		DepID:   "D001",
		DepName: "计算机学院",
	})
	if err != nil {
		t.Fatalf("创建院系失败: %v", err)
	}
	if resp.DepID != "D001" || resp.DepName != "计算机学院" {
		t.Errorf("期望 D001/计算机学院，实际=%s/%s", resp.DepID, resp.DepName)
	}

	// 编号重复
	_, err = svc.Create(ctx, &dto.CreateDepartmentRequest{DepID: "D001", DepName: "数学学院"})
	if !errors.Is(err, ErrDepartmentIDExists) {
		t.Errorf("期望 ErrDepartmentIDExists，实际=%v", err)
	}

	// 名称重复
	_, err = svc.Create(ctx, &dto.CreateDepartmentRequest{DepID: "D002", DepName: "计算机学院"})
	if !errors.Is(err, ErrDepartmentNameExists) {
		t.Errorf("期望 ErrDepartmentNameExists，实际=%v", err)
	}
}

func TestDepartmentService_GetByID_NotFound(t *testing.T) {
	repos := newTestRepos()
	svc := NewDepartmentService(repos.repo, zap.NewNop())

	_, err := svc.GetByID(context.Background(), "NOPE")
	if !errors.Is(err, ErrDepartmentNotFound) {
		t.Errorf("期望 ErrDepartmentNotFound，实际=%v", err)
	}
}

func TestDepartmentService_Update(t *testing.T) {
	repos := newTestRepos()
	svc := NewDepartmentService(repos.repo, zap.NewNop())
	ctx := context.Background()

	if _, err := svc.Create(ctx, &dto.CreateDepartmentRequest{DepID: "D001", DepName: "计算机学院"}); err != nil {
		t.Fatalf("创建院系失败: %v", err)
	}
	if _, err := svc.Create(ctx, &dto.CreateDepartmentRequest{DepID: "D002", DepName: "数学学院"}); err != nil {
		t.Fatalf("创建院系失败: %v", err)
	}

	newName := "信息学院"
	resp, err := svc.Update(ctx, "D001", &dto.UpdateDepartmentRequest{DepName: &newName})
	if err != nil {
		t.Fatalf("更新院系失败: %v", err)
	}
	if resp.DepName != "信息学院" {
		t.Errorf("期望名称更新为 信息学院，实际=%s", resp.DepName)
	}

	// 改成其他院系已占用的名称
	taken := "数学学院"
	_, err = svc.Update(ctx, "D001", &dto.UpdateDepartmentRequest{DepName: &taken})
	if !errors.Is(err, ErrDepartmentNameExists) {
		t.Errorf("期望 ErrDepartmentNameExists，实际=%v", err)
	}
}

func TestDepartmentService_Delete_HasTeachers(t *testing.T) {
	repos := newTestRepos()
	svc := NewDepartmentService(repos.repo, zap.NewNop())
	ctx := context.Background()

	if _, err := svc.Create(ctx, &dto.CreateDepartmentRequest{DepID: "D001", DepName: "计算机学院"}); err != nil {
		t.Fatalf("创建院系失败: %v", err)
	}
	repos.depts.teacherCount["D001"] = 3

	err := svc.Delete(ctx, "D001")
	if !errors.Is(err, ErrDepartmentHasTeachers) {
		t.Errorf("期望 ErrDepartmentHasTeachers，实际=%v", err)
	}

	// 清空教师后可删除
	repos.depts.teacherCount["D001"] = 0
	if err := svc.Delete(ctx, "D001"); err != nil {
		t.Fatalf("删除院系失败: %v", err)
	}
	if _, err := svc.GetByID(ctx, "D001"); !errors.Is(err, ErrDepartmentNotFound) {
		t.Errorf("删除后期望 ErrDepartmentNotFound，实际=%v", err)
	}
}
