package api

import (
	"absence-bot/internal/calendar"
	"absence-bot/internal/logger"
	"absence-bot/internal/repository"
	"absence-bot/internal/service"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Server struct {
	users      *service.UserService
	absences   *service.AbsenceService
	stats      *service.StatsService
	nonWorking *service.NonWorkingDayService
	location   *time.Location
	logger     *logrus.Logger
}

func NewServer(
	users *service.UserService,
	absences *service.AbsenceService,
	stats *service.StatsService,
	nonWorking *service.NonWorkingDayService,
	location *time.Location,
) *Server {
	if location == nil {
		location = time.Local
	}
	return &Server{
		users:      users,
		absences:   absences,
		stats:      stats,
		nonWorking: nonWorking,
		location:   location,
		logger:     logger.Get(),
	}
}

type calendarCell struct {
	Index      int    `json:"index"`
	Key        string `json:"key"`
	Date       string `json:"date,omitempty"`
	Day        int    `json:"day,omitempty"`
	NonWorking bool   `json:"non_working"`
}

type calendarResponse struct {
	Year  int            `json:"year"`
	Month int            `json:"month"`
	Rows  int            `json:"rows"`
	Cells []calendarCell `json:"cells"`
}

type dayEntryResponse struct {
	UserID    uint   `json:"user_id"`
	Name      string `json:"name"`
	Position  string `json:"position,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Category  string `json:"category"`
	Label     string `json:"label"`
	Color     string `json:"color"`
	Reason    string `json:"reason,omitempty"`
	Comment   string `json:"comment,omitempty"`
	Callable  bool   `json:"callable"`
}

type rangeEntryResponse struct {
	Date string `json:"date"`
	dayEntryResponse
}

type userResponse struct {
	ID        uint   `json:"id"`
	ChatID    int64  `json:"chat_id"`
	Name      string `json:"name"`
	Position  string `json:"position,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// GetCategoriesHandler - справочник категорий
func (s *Server) GetCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, calendar.Categories())
}

// GetCalendarHandler - сетка месяца из 42 ячеек с отметками выходных
func (s *Server) GetCalendarHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	year, _ := strconv.Atoi(vars["year"])
	month, _ := strconv.Atoi(vars["month"])
	if month < 1 || month > 12 {
		http.Error(w, "invalid month", http.StatusBadRequest)
		return
	}

	grid := calendar.BuildMonthGrid(time.Date(year, time.Month(month), 1, 0, 0, 0, 0, s.location))
	holidays := s.nonWorking.MonthSet(year, time.Month(month))

	resp := calendarResponse{Year: year, Month: month, Rows: calendar.GridRows, Cells: make([]calendarCell, 0, len(grid.Cells))}
	for i, c := range grid.Cells {
		cell := calendarCell{Index: i, Key: c.Key}
		if !c.IsPadding() {
			cell.Date = c.ISO()
			cell.Day = c.Date.Day()
			cell.NonWorking = holidays[cell.Date]
		}
		resp.Cells = append(resp.Cells, cell)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetAbsencesHandler - кто отсутствует в день YYYY-MM-DD
func (s *Server) GetAbsencesHandler(w http.ResponseWriter, r *http.Request) {
	date, err := calendar.ParseISODate(mux.Vars(r)["date"], s.location)
	if err != nil {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	entries, err := s.absences.ByDate(date)
	if err != nil {
		s.logger.Errorf("day view failed: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := make([]dayEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, s.dayEntry(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetAbsencesRangeHandler - отсутствия за период ?from=YYYY-MM-DD&to=YYYY-MM-DD
func (s *Server) GetAbsencesRangeHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := calendar.ParseISODate(q.Get("from"), s.location)
	if err != nil {
		http.Error(w, "invalid from, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	to, err := calendar.ParseISODate(q.Get("to"), s.location)
	if err != nil {
		http.Error(w, "invalid to, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	entries, err := s.absences.ByRange(from, to)
	if errors.Is(err, service.ErrInvalidRange) {
		http.Error(w, "from is after to", http.StatusBadRequest)
		return
	}
	if err != nil {
		s.logger.Errorf("range view failed: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := make([]rangeEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, rangeEntryResponse{Date: calendar.ISODate(e.Date), dayEntryResponse: s.dayEntry(e)})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) dayEntry(e service.DayEntry) dayEntryResponse {
	return dayEntryResponse{
		UserID:    e.User.ID,
		Name:      e.User.FullName(),
		Position:  e.User.Position,
		AvatarURL: s.users.AvatarURL(e.User.Avatar),
		Category:  string(e.Category.Key),
		Label:     e.Category.Label,
		Color:     e.Category.Color,
		Reason:    e.Reason,
		Comment:   e.Comment,
		Callable:  e.Callable,
	}
}

// GetUsersHandler - коллеги со ссылками на аватары
func (s *Server) GetUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.GetAllUsers()
	if err != nil {
		s.logger.Errorf("list users failed: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, userResponse{
			ID:        u.ID,
			ChatID:    u.ChatID,
			Name:      u.FullName(),
			Position:  u.Position,
			Phone:     u.Phone,
			Email:     u.Email,
			AvatarURL: s.users.AvatarURL(u.Avatar),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetUserStatsHandler - статистика коллеги по категориям
func (s *Server) GetUserStatsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	user, err := s.users.GetUserByID(uint(id))
	if errors.Is(err, repository.ErrUserNotFound) {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Errorf("get user failed: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	stats, err := s.stats.CategoryStats(user.ID)
	if err != nil {
		s.logger.Errorf("stats failed: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start),
		}).Debug("http request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
