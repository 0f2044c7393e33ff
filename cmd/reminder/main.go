package main

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/carelink-tw/med-reminder/backend/internal/config"
	"github.com/carelink-tw/med-reminder/backend/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/robfig/cron/v3"
	"github.com/wneessen/go-mail"
)

// envelope 与 domain.ReminderMessage 同构，但 Data 保持原始字节，
// 等确定消息类型之后再解码
type envelope struct {
	Type string          `json:"type"`
	To   string          `json:"to"`
	Data json.RawMessage `json:"data"`
}

// triggerRegistry 维护所有在注册中的服药提醒
// 每个药品对应若干 cron 条目，时区通过 CRON_TZ 前缀附在表达式上
type triggerRegistry struct {
	mu      sync.Mutex
	crons   *cron.Cron
	entries map[int64][]cron.EntryID
}

func newTriggerRegistry() *triggerRegistry {
	c := cron.New()
	c.Start()
	return &triggerRegistry{
		crons:   c,
		entries: make(map[int64][]cron.EntryID),
	}
}

func (tr *triggerRegistry) register(data domain.RegisterTriggersData, fire func()) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	// 重新注册前先清掉旧条目，避免同一药品的提醒翻倍
	for _, id := range tr.entries[data.MedicationID] {
		tr.crons.Remove(id)
	}
	tr.entries[data.MedicationID] = nil

	for _, spec := range data.CronSpecs {
		id, err := tr.crons.AddFunc(fmt.Sprintf("CRON_TZ=%s %s", data.Timezone, spec), fire)
		if err != nil {
			return err
		}
		tr.entries[data.MedicationID] = append(tr.entries[data.MedicationID], id)
	}

	return nil
}

func (tr *triggerRegistry) remove(medicationID int64) {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	for _, id := range tr.entries[medicationID] {
		tr.crons.Remove(id)
	}
	delete(tr.entries, medicationID)
}

func (tr *triggerRegistry) stop() {
	tr.crons.Stop()
}

func sendTemplatedMail(client *mail.Client, from, to, subject, templatePath string, data any) error {
	tmpl, err := template.ParseFiles(templatePath)
	if err != nil {
		return err
	}

	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	if err := msg.SetBodyHTMLTemplate(tmpl, data); err != nil {
		return err
	}
	msg.Subject(subject)

	return client.DialAndSend(msg)
}

func main() {
	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	/**********************************************
	 * 读取配置文件
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * 创建邮件客户端
	 **********************************************/
	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		logger.Error("无法创建邮件客户端", slog.String("error", err.Error()))
		return
	}
	defer client.Close()

	// 验证邮件客户端是否连接成功
	clientDialCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancel()
	if err := client.DialWithContext(clientDialCtx); err != nil {
		logger.Error("无法连接到邮件服务器", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * 连接 RabbitMQ
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("无法连接到 RabbitMQ", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	// 创建通道
	ch, err := conn.Channel()
	if err != nil {
		logger.Error("无法创建通道", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	// 声明队列
	q, err := ch.QueueDeclare(
		"reminder_queue", // 队列名称
		true,             // 是否持久化
		false,            // 是否自动删除，设置为 false 可以避免没有消费者的时候自动删除队列
		false,            // 是否独占，即是否允许多个消费者访问这个队列
		false,            // 是否不等待，设置为 false，即等待 RabbitMQ 确认队列是否创建成功
		nil,              // 额外参数
	)
	if err != nil {
		logger.Error("无法声明队列", slog.String("error", err.Error()))
		return
	}

	// 监听 CTRL+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// 消费消息
	msgs, err := ch.Consume(
		q.Name, // 队列
		"",     // 消费者标识，设置为空字符串，表示由 RabbitMQ 自动分配
		false,  // 是否自动去仍消息
		false,  // 是否独占队列
		false,  // 是否禁止消费者接受自己发送的消息，必须设置为 false，因为 RabbitMQ 不支持这个参数
		false,  // 是否不等待，等待 RabbitMQ 响应
		nil,    // 额外参数
	)
	if err != nil {
		logger.Error("无法消费消息", slog.String("error", err.Error()))
		os.Exit(1)
	}

	/**********************************************
	 * 启动提醒注册表
	 **********************************************/
	registry := newTriggerRegistry()
	defer registry.stop()

	// 用于关闭 goroutine 的上下文
	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-msgs:
				logger.Info("收到消息", slog.String("message", string(msg.Body)))
				env := envelope{}
				if err := json.Unmarshal(msg.Body, &env); err != nil {
					logger.Error("消息反序列化失败", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				switch env.Type {
				case "create_user":
					data := domain.CreateUserMailData{}
					if err := json.Unmarshal(env.Data, &data); err != nil {
						logger.Error("消息数据反序列化失败", slog.String("error", err.Error()))
						_ = msg.Nack(false, false)
						continue
					}
					if err := sendTemplatedMail(client, cfg.Email.SMTP.Username, env.To, "用药提醒系统 - 账户信息", "./templates/new_account_email.html", data); err != nil {
						logger.Error("邮件发送失败", slog.String("error", err.Error()))
						_ = msg.Nack(false, true) // 将消息重新入队
						continue
					}
				case "reset_password":
					data := domain.ResetPasswordMailData{}
					if err := json.Unmarshal(env.Data, &data); err != nil {
						logger.Error("消息数据反序列化失败", slog.String("error", err.Error()))
						_ = msg.Nack(false, false)
						continue
					}
					if err := sendTemplatedMail(client, cfg.Email.SMTP.Username, env.To, "用药提醒系统 - 重置密码", "./templates/reset_password_otp_email.html", data); err != nil {
						logger.Error("邮件发送失败", slog.String("error", err.Error()))
						_ = msg.Nack(false, true)
						continue
					}
				case "change_email":
					data := domain.ChangeEmailMailData{}
					if err := json.Unmarshal(env.Data, &data); err != nil {
						logger.Error("消息数据反序列化失败", slog.String("error", err.Error()))
						_ = msg.Nack(false, false)
						continue
					}
					if err := sendTemplatedMail(client, cfg.Email.SMTP.Username, env.To, "用药提醒系统 - 修改邮箱", "./templates/change_email_email.html", data); err != nil {
						logger.Error("邮件发送失败", slog.String("error", err.Error()))
						_ = msg.Nack(false, true)
						continue
					}
				case "register_triggers":
					data := domain.RegisterTriggersData{}
					if err := json.Unmarshal(env.Data, &data); err != nil {
						logger.Error("消息数据反序列化失败", slog.String("error", err.Error()))
						_ = msg.Nack(false, false)
						continue
					}
					to := env.To
					err := registry.register(data, func() {
						reminder := struct {
							PatientName    string
							MedicationName string
							Dosage         string
						}{
							PatientName:    data.PatientName,
							MedicationName: data.MedicationName,
							Dosage:         data.Dosage,
						}
						if err := sendTemplatedMail(client, cfg.Email.SMTP.Username, to, "用药提醒系统 - 服药提醒", "./templates/dose_reminder_email.html", reminder); err != nil {
							logger.Error("服药提醒发送失败", slog.String("error", err.Error()), slog.Int64("medicationID", data.MedicationID))
						}
					})
					if err != nil {
						logger.Error("无法注册服药提醒", slog.String("error", err.Error()), slog.Int64("medicationID", data.MedicationID))
						_ = msg.Nack(false, false)
						continue
					}
					logger.Info("已注册服药提醒", slog.Int64("medicationID", data.MedicationID), slog.Int("triggers", len(data.CronSpecs)))
				case "remove_triggers":
					data := domain.RemoveTriggersData{}
					if err := json.Unmarshal(env.Data, &data); err != nil {
						logger.Error("消息数据反序列化失败", slog.String("error", err.Error()))
						_ = msg.Nack(false, false)
						continue
					}
					registry.remove(data.MedicationID)
					logger.Info("已撤销服药提醒", slog.Int64("medicationID", data.MedicationID))
				default:
					logger.Error("不支持的消息类型", slog.String("type", env.Type))
					_ = msg.Nack(false, false)
					continue
				}

				// 确认消息
				_ = msg.Ack(false)
			}
		}
	}()

	// 等待 CTRL+C 信号
	logger.Info("等待消息...（按 CTRL+C 退出）")
	<-sigChan

	// 优雅退出
	slog.Info("正在关闭 reminder worker...")
	cancel()
	wg.Wait() // 等待所有 goroutine 完成
	slog.Info("reminder worker 已成功关闭")
}
