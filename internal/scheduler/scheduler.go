package scheduler

import (
	"absence-bot/internal/models"
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const jobTimeout = 2 * time.Minute

// DigestSource - источник текста утренней сводки
type DigestSource interface {
	TodayDigest(date time.Time) (text string, skip bool, err error)
}

// AdminLister возвращает получателей сводки
type AdminLister interface {
	GetAdmins() ([]*models.User, error)
}

// Sender отправляет сообщение в чат
type Sender interface {
	SendMessage(chatID int64, text string) error
}

type DigestScheduler struct {
	cronEngine *cron.Cron
	digest     DigestSource
	admins     AdminLister
	sender     Sender
	logger     *logrus.Logger
	spec       string
	location   *time.Location
	now        func() time.Time
}

func NewDigestScheduler(
	digest DigestSource,
	admins AdminLister,
	sender Sender,
	logger *logrus.Logger,
	spec string, // например "0 9 * * 1-5" - 9:00 по будням
	location *time.Location,
) *DigestScheduler {
	if location == nil {
		location = time.Local
	}
	return &DigestScheduler{
		cronEngine: cron.New(cron.WithLocation(location)),
		digest:     digest,
		admins:     admins,
		sender:     sender,
		logger:     logger,
		spec:       spec,
		location:   location,
		now:        time.Now,
	}
}

func (s *DigestScheduler) Start() error {
	s.logger.Info("Starting digest scheduler...")

	_, err := s.cronEngine.AddFunc(s.spec, func() {
		s.logger.Info("Cron job triggered for daily digest.")
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if err := s.RunOnce(ctx); err != nil {
			s.logger.Errorf("Error during daily digest: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("could not add digest cron job '%s': %w", s.spec, err)
	}

	s.cronEngine.Start()
	s.logger.Infof("Digest scheduler started with spec '%s'", s.spec)
	return nil
}

// RunOnce отправляет сводку за сегодня всем администраторам
func (s *DigestScheduler) RunOnce(ctx context.Context) error {
	today := s.now().In(s.location)

	text, skip, err := s.digest.TodayDigest(today)
	if err != nil {
		return fmt.Errorf("build digest: %w", err)
	}
	if skip {
		s.logger.Infof("%s is a non-working day, digest skipped", today.Format("2006-01-02"))
		return nil
	}

	admins, err := s.admins.GetAdmins()
	if err != nil {
		return fmt.Errorf("get admins: %w", err)
	}

	sent := 0
	for _, admin := range admins {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.sender.SendMessage(admin.ChatID, text); err != nil {
			s.logger.WithField("chat_id", admin.ChatID).Errorf("Failed to send digest: %v", err)
			continue
		}
		sent++
	}
	s.logger.Infof("Digest sent to %d of %d admins", sent, len(admins))
	return nil
}

func (s *DigestScheduler) Stop() {
	s.logger.Info("Stopping digest scheduler...")
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("Digest scheduler gracefully stopped.")
}
