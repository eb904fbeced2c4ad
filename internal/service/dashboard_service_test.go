package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"sci-task/backend/internal/model"
)

func TestDashboardService_Summary(t *testing.T) {
	repos := newTestRepos()
	ctx := context.Background()

	repos.depts.depts["D001"] = &model.Department{DepID: "D001", DepName: "计算机学院"}
	repos.depts.depts["D002"] = &model.Department{DepID: "D002", DepName: "数学学院"}
	repos.teachers.teachers["T001"] = &model.Teacher{TeacherID: "T001", Name: "张三", Email: "a@b.cn"}
	repos.tasks.tasks[1] = &model.Task{TaskID: 1, TaskName: "草稿任务", Status: model.TaskStatusDraft}
	repos.tasks.tasks[2] = &model.Task{TaskID: 2, TaskName: "进行中任务", Status: model.TaskStatusActive}
	repos.tasks.tasks[3] = &model.Task{TaskID: 3, TaskName: "已完成任务", Status: model.TaskStatusCompleted}

	svc := NewDashboardService(repos.repo, zap.NewNop())
	summary, err := svc.Summary(ctx)
	if err != nil {
		t.Fatalf("统计概览失败: %v", err)
	}

	if summary.DepartmentCount != 2 {
		t.Errorf("期望院系数 2，实际=%d", summary.DepartmentCount)
	}
	if summary.TeacherCount != 1 {
		t.Errorf("期望教师数 1，实际=%d", summary.TeacherCount)
	}
	if summary.TaskCount != 3 {
		t.Errorf("期望任务总数 3，实际=%d", summary.TaskCount)
	}
	if summary.DraftTasks != 1 || summary.ActiveTasks != 1 || summary.CompletedTasks != 1 {
		t.Errorf("各状态任务数不符: draft=%d active=%d completed=%d",
			summary.DraftTasks, summary.ActiveTasks, summary.CompletedTasks)
	}
	if summary.CancelledTasks != 0 {
		t.Errorf("期望已取消任务数 0，实际=%d", summary.CancelledTasks)
	}
}

func TestDashboardService_Summary_Empty(t *testing.T) {
	repos := newTestRepos()
	svc := NewDashboardService(repos.repo, zap.NewNop())

	summary, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("统计概览失败: %v", err)
	}
	if summary.TaskCount != 0 || summary.TeacherCount != 0 || summary.DepartmentCount != 0 {
		t.Errorf("空库统计应全为 0: %+v", summary)
	}
}
