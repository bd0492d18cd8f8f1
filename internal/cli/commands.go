// Package cli - административная утилита absencectl: работает напрямую с базой бота.
package cli

import (
	"absence-bot/internal/repository"
	"absence-bot/internal/service"
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const layoutISO = "2006-01-02"

// Options - общие флаги для всех команд
type Options struct {
	DBPath string
}

func New() *cobra.Command {
	o := &Options{}

	cmd := &cobra.Command{
		Use:   "absencectl",
		Short: "Administration of the absence calendar database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().StringVar(&o.DBPath, "db", defaultDBPath(),
		"Path to the SQLite database, ~ is expanded.")

	AddCommands(cmd, o)
	return cmd
}

func AddCommands(topLevel *cobra.Command, o *Options) {
	addHolidays(topLevel, o)
	addDay(topLevel, o)
	addStats(topLevel, o)
	addUsers(topLevel, o)
	addEvents(topLevel)
}

func defaultDBPath() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}
	return "absences.db"
}

type services struct {
	db         *gorm.DB
	users      *service.UserService
	absences   *service.AbsenceService
	stats      *service.StatsService
	nonWorking *service.NonWorkingDayService
}

func (o *Options) open() (*services, error) {
	path, err := homedir.Expand(o.DBPath)
	if err != nil {
		return nil, fmt.Errorf("bad --db path: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	userRepo, err := repository.NewGormUserRepository(db)
	if err != nil {
		return nil, err
	}
	absenceRepo, err := repository.NewGormAbsenceRepository(db)
	if err != nil {
		return nil, err
	}
	nonWorkingRepo, err := repository.NewGormNonWorkingDayRepository(db)
	if err != nil {
		return nil, err
	}

	return &services{
		db:         db,
		users:      service.NewUserService(userRepo, absenceRepo, ""),
		absences:   service.NewAbsenceService(absenceRepo, service.NopPublisher{}),
		stats:      service.NewStatsService(absenceRepo),
		nonWorking: service.NewNonWorkingDayService(nonWorkingRepo),
	}, nil
}

func (s *services) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
