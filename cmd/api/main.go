package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	httpadp "stablelend-backend/internal/adapter/http"
	"stablelend-backend/internal/adapter/middleware"
	"stablelend-backend/internal/adapter/repository/mysql"
	"stablelend-backend/internal/config"
	"stablelend-backend/internal/domain/account"
	"stablelend-backend/internal/domain/loan"
	"stablelend-backend/internal/domain/pool"
	"stablelend-backend/internal/infrastructure/cache"
	"stablelend-backend/internal/infrastructure/custody"
	"stablelend-backend/internal/infrastructure/db"
	"stablelend-backend/internal/interest"
	"stablelend-backend/internal/usecase/lending"
	"stablelend-backend/pkg/id"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	if err := gdb.AutoMigrate(&account.Account{}, &loan.Loan{}, &loan.ScheduleItem{}, &pool.Pool{}); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	if err := seedPools(gdb, cfg); err != nil {
		log.Fatalf("seed pools: %v", err)
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}

	tx := mysql.NewGormUoW(gdb, time.Duration(cfg.LockTimeoutMS)*time.Millisecond)

	opts := []lending.Option{}
	if cfg.CustodyURL != "" {
		opts = append(opts, lending.WithSettlementNotifier(custody.NewClient(cfg.CustodyURL, cfg.CustodyAPIKey)))
	}
	uc := lending.NewUsecase(tx, policyFrom(cfg), opts...)

	h := httpadp.NewHandler()
	lh := httpadp.NewLendingHandler(uc)
	ph := httpadp.NewPoolHandler(uc)
	ah := httpadp.NewAdminHandler(uc)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	e.GET("/health", h.Health)

	idemp := middleware.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second)

	v1 := e.Group("/v1")
	v1.POST("/lending/:token/deposit", lh.Deposit, idemp)
	v1.POST("/lending/:token/withdraw", lh.Withdraw, idemp)
	v1.POST("/lending/:token/borrow", lh.Borrow, idemp)
	v1.POST("/lending/:token/repay", lh.Repay, idemp)
	v1.GET("/lending/:token/yields", lh.Yields)
	v1.GET("/lending/:token/withdrawable", lh.Withdrawable)
	v1.GET("/lending/:token/loan", lh.GetLoan)
	v1.GET("/lending/:token/payoff", lh.Payoff)

	v1.GET("/pools/status", ph.Status)

	v1.POST("/admin/pools/:token/pause", ah.PausePool)
	v1.POST("/admin/pools/:token/resume", ah.ResumePool)
	v1.POST("/admin/defaults/sweep", ah.SweepDefaults)

	if cfg.SweepIntervalSecs > 0 {
		go runSweeper(uc, time.Duration(cfg.SweepIntervalSecs)*time.Second)
	}

	addr := ":" + cfg.AppPort
	log.Printf("listening on %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

func policyFrom(cfg *config.Config) lending.Policy {
	return lending.Policy{
		LTVBps:          cfg.LTVBps,
		GraceDays:       cfg.GraceDays,
		DefaultTermDays: cfg.DefaultTermDays,
		ScheduleShape:   lending.ScheduleShape(cfg.ScheduleShape),
		Installments:    cfg.Installments,
		Compounding:     interest.Compounding(cfg.Compounding),
		MinorUnit:       cfg.MinorUnit,
	}
}

// seedPools makes sure a pool row exists for every configured token so the
// lending endpoints have somewhere to lend from on a fresh database.
func seedPools(gdb *gorm.DB, cfg *config.Config) error {
	for _, token := range cfg.PoolTokens {
		var p pool.Pool
		err := gdb.Where("token = ?", token).First(&p).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		p = pool.Pool{
			PoolID:         id.NewID32(),
			Token:          token,
			TotalFunds:     decimal.Zero,
			AvailableFunds: decimal.Zero,
			RateBps:        cfg.PoolRateBps,
			DepositRateBps: cfg.DepositRateBps,
			Status:         pool.StatusActive,
		}
		if err := gdb.Create(&p).Error; err != nil {
			return err
		}
		log.Printf("seeded pool %s (rate %d bps, deposit rate %d bps)", token, cfg.PoolRateBps, cfg.DepositRateBps)
	}
	return nil
}

func runSweeper(uc *lending.Usecase, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for range t.C {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		n, err := uc.SweepDefaults(ctx, time.Now().UTC())
		cancel()
		if err != nil {
			log.Printf("default sweep: %v", err)
			continue
		}
		if n > 0 {
			log.Printf("default sweep: marked %d loan(s)", n)
		}
	}
}
