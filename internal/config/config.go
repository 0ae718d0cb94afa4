package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	AppPort string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	// lending policy
	LTVBps          int64
	GraceDays       int
	DefaultTermDays int
	ScheduleShape   string
	Installments    int
	Compounding     string
	MinorUnit       int32
	LockTimeoutMS   int

	// pools seeded at startup
	PoolTokens     []string
	PoolRateBps    int64
	DepositRateBps int64

	// custody gateway; empty URL disables settlement references
	CustodyURL    string
	CustodyAPIKey string

	// default sweeper interval in seconds; 0 disables the sweeper
	SweepIntervalSecs int
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func Load() *Config {
	c := &Config{
		AppPort:   getenv("APP_PORT", "8080"),
		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "stablelend"),
		MySQLUser: getenv("MYSQL_USER", "stablelend"),
		MySQLPass: getenv("MYSQL_PASS", "stablelend"),

		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:      getint("REDIS_DB", 0),
		IdempTTLSecs: getint("IDEMPOTENCY_TTL_SECONDS", 300),

		LTVBps:          int64(getint("LTV_BPS", 5000)),
		GraceDays:       getint("GRACE_PERIOD_DAYS", 7),
		DefaultTermDays: getint("DEFAULT_TERM_DAYS", 30),
		ScheduleShape:   getenv("SCHEDULE_SHAPE", "balloon"),
		Installments:    getint("SCHEDULE_INSTALLMENTS", 1),
		Compounding:     getenv("ACCRUAL_COMPOUNDING", "simple"),
		MinorUnit:       int32(getint("TOKEN_MINOR_UNIT", 2)),
		LockTimeoutMS:   getint("LOCK_TIMEOUT_MS", 3000),

		PoolRateBps:    int64(getint("POOL_RATE_BPS", 1000)),
		DepositRateBps: int64(getint("DEPOSIT_RATE_BPS", 500)),

		CustodyURL:    getenv("CUSTODY_URL", ""),
		CustodyAPIKey: getenv("CUSTODY_API_KEY", ""),

		SweepIntervalSecs: getint("DEFAULT_SWEEP_INTERVAL_SECONDS", 3600),
	}
	for _, tok := range strings.Split(getenv("POOL_TOKENS", "USDT,USDC"), ",") {
		tok = strings.ToUpper(strings.TrimSpace(tok))
		if tok != "" {
			c.PoolTokens = append(c.PoolTokens, tok)
		}
	}
	return c
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.LTVBps <= 0 || c.LTVBps > 10000 {
		return fmt.Errorf("LTV_BPS %d out of range (0, 10000]", c.LTVBps)
	}
	switch c.ScheduleShape {
	case "balloon", "installments":
	default:
		return fmt.Errorf("SCHEDULE_SHAPE %q must be balloon or installments", c.ScheduleShape)
	}
	if c.ScheduleShape == "installments" && c.Installments < 2 {
		return errors.New("SCHEDULE_INSTALLMENTS must be >= 2 for installment schedules")
	}
	switch c.Compounding {
	case "simple", "daily":
	default:
		return fmt.Errorf("ACCRUAL_COMPOUNDING %q must be simple or daily", c.Compounding)
	}
	if len(c.PoolTokens) == 0 {
		return errors.New("POOL_TOKENS must name at least one token")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
