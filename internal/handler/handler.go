package handler

import (
	"time"

	"github.com/carelink-tw/med-reminder/backend/internal/config"
	"github.com/carelink-tw/med-reminder/backend/internal/domain"
	"github.com/carelink-tw/med-reminder/backend/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

type Handler struct {
	validate        *validator.Validate
	config          *config.Config
	repository      *repository.Repository
	translator      ut.Translator
	reminderChannel *amqp.Channel
	redisClient     *redis.Client
	defaultLocation *time.Location

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, reminderCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	// 部署区域的默认时区在启动时就解析好，配置错了直接失败
	defaultLocation, err := time.LoadLocation(cfg.Schedule.DefaultTimezone)
	if err != nil {
		return nil, err
	}

	return &Handler{
		validate:        validate,
		config:          cfg,
		repository:      repo,
		translator:      trans,
		reminderChannel: reminderCh,
		redisClient:     rdb,
		defaultLocation: defaultLocation,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
			r.Route("/update-email", func(r chi.Router) {
				r.Post("/require", h.RequireUpdateEmail)
				r.Post("/confirm", h.ConfirmUpdateEmail)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateUser)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Get("/", h.GetAllUserInfo)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeleteUser)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/password", h.UpdateUserPassword)
			})
		})

		r.Route("/patients", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RoleCaregiver})).With(h.myInfo).Post("/", h.CreatePatient)
			r.Get("/", h.GetAllPatients)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.patientInfo)
				r.Get("/", h.GetPatient)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RoleCaregiver})).Patch("/", h.UpdatePatient)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeletePatient)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RoleCaregiver})).With(h.myInfo).Post("/medications", h.CreateMedication)
				r.Get("/medications", h.GetPatientMedications)
				r.Get("/schedule", h.GetPatientSchedule) // 该病患全部药品合并后的预览
			})
		})

		r.Route("/medications/{id}", func(r chi.Router) {
			r.Use(h.medicationInfo)
			r.Get("/", h.GetMedication)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RoleCaregiver})).Delete("/", h.DeleteMedication)
			r.Get("/schedule", h.GetMedicationSchedule)
		})

		// 无状态的排程计算入口，不落库
		r.Route("/schedule", func(r chi.Router) {
			r.Post("/preview", h.PreviewSchedule)
			r.Post("/extract-times", h.ExtractTimes)
		})
	})
}
