package amqp

import (
	"absence-bot/internal/models"
	"encoding/json"
	"sort"
	"time"
)

// AbsenceSubmittedMessage - событие о новой отправке формы
type AbsenceSubmittedMessage struct {
	Event      string    `json:"event"`
	BatchID    string    `json:"batch_id"`
	UserID     uint      `json:"user_id"`
	ChatID     int64     `json:"chat_id"`
	UserName   string    `json:"user_name"`
	Dates      []string  `json:"dates"`
	Categories []string  `json:"categories"`
	Callable   bool      `json:"callable"`
	Timestamp  time.Time `json:"timestamp"`
}

const EventAbsenceSubmitted = "absence.submitted"

// NewAbsenceSubmittedMessage собирает сообщение из сохраненных записей
func NewAbsenceSubmittedMessage(user *models.User, batchID string, rows []models.Absence) *AbsenceSubmittedMessage {
	msg := &AbsenceSubmittedMessage{
		Event:     EventAbsenceSubmitted,
		BatchID:   batchID,
		UserID:    user.ID,
		ChatID:    user.ChatID,
		UserName:  user.FullName(),
		Dates:     make([]string, 0, len(rows)),
		Timestamp: time.Now(),
	}

	seen := make(map[string]bool)
	for _, r := range rows {
		msg.Dates = append(msg.Dates, r.ISODate())
		if r.Callable {
			msg.Callable = true
		}
		if !seen[r.Category] {
			seen[r.Category] = true
			msg.Categories = append(msg.Categories, r.Category)
		}
	}
	sort.Strings(msg.Dates)
	sort.Strings(msg.Categories)
	return msg
}

// ToJSON сериализует сообщение
func (m *AbsenceSubmittedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func AbsenceSubmittedMessageFromJSON(data []byte) (*AbsenceSubmittedMessage, error) {
	var msg AbsenceSubmittedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
