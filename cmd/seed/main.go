package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/carelink-tw/med-reminder/backend/internal/config"
	"github.com/carelink-tw/med-reminder/backend/internal/repository"
	"github.com/carelink-tw/med-reminder/backend/internal/seed"
	"github.com/carelink-tw/med-reminder/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var patientID int64

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机用户, 2: 插入随机病患, 3: 为指定病患插入随机医嘱, 4: 插入整套演示数据)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.Int64Var(&patientID, "patient-id", 0, "随机插入医嘱的病患 ID")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的用户数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
				if err != nil {
					slog.Error("无法生成随机用户", slog.String("error", err.Error()))
					continue
				}

				if err := repo.CreateUser(user); err != nil {
					slog.Error("无法插入用户", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入用户成功", slog.Int("count", n-cnt))
		}
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的病患数量")
		} else {
			// 病患需要一个创建人，这里用初始管理员
			admin, err := repo.GetUserByUsername(cfg.InitialAdmin.Username)
			if err != nil {
				slog.Error("无法获取初始管理员", slog.String("error", err.Error()))
				return
			}

			cnt := n
			for i := 0; i < n; i++ {
				patient := utils.GenerateRandomPatient(admin.ID)
				if err := repo.CreatePatient(patient); err != nil {
					slog.Error("无法插入病患", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入病患成功", slog.Int("count", n-cnt))
		}
	case 3:
		if patientID <= 0 {
			slog.Error("请输入合法的病患 ID")
			return
		}

		// 确认病患存在
		if _, err := repo.GetPatientByID(patientID); err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				slog.Error("指定的病患不存在", slog.Int64("patient_id", patientID))
			default:
				slog.Error("无法获取病患", slog.String("error", err.Error()))
			}
			return
		}

		loc, err := time.LoadLocation(cfg.Schedule.DefaultTimezone)
		if err != nil {
			slog.Error("无法加载默认时区", slog.String("error", err.Error()))
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			medication := utils.GenerateRandomMedication(patientID, cfg.Schedule.DefaultTimezone, loc)
			if err := seed.SeedMedication(repo, medication, loc); err != nil {
				slog.Error("无法插入医嘱", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入医嘱成功", slog.Int("count", cnt))
	case 4:
		seed.SeedDemoData(repo, cfg)
	default:
		slog.Error("指定的操作非法")
	}
}
