package service

import (
	"absence-bot/internal/models"
	"context"
)

// Publisher отправляет событие о новой отправке формы во внешние системы
type Publisher interface {
	PublishAbsenceSubmitted(ctx context.Context, user *models.User, batchID string, rows []models.Absence) error
}

// NopPublisher используется, когда брокер не настроен
type NopPublisher struct{}

func (NopPublisher) PublishAbsenceSubmitted(context.Context, *models.User, string, []models.Absence) error {
	return nil
}
