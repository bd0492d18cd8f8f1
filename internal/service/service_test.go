package service

import (
	"absence-bot/internal/calendar"
	"absence-bot/internal/entry"
	"absence-bot/internal/models"
	"absence-bot/internal/repository"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	users      *UserService
	absences   *AbsenceService
	stats      *StatsService
	nonWorking *NonWorkingDayService
	publisher  *recordingPublisher
}

type recordingPublisher struct {
	calls   int
	batchID string
	rows    int
	err     error
}

func (p *recordingPublisher) PublishAbsenceSubmitted(_ context.Context, _ *models.User, batchID string, rows []models.Absence) error {
	p.calls++
	p.batchID = batchID
	p.rows = len(rows)
	return p.err
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	userRepo, err := repository.NewGormUserRepository(db)
	if err != nil {
		t.Fatalf("user repo: %v", err)
	}
	absenceRepo, err := repository.NewGormAbsenceRepository(db)
	if err != nil {
		t.Fatalf("absence repo: %v", err)
	}
	nwdRepo, err := repository.NewGormNonWorkingDayRepository(db)
	if err != nil {
		t.Fatalf("non-working day repo: %v", err)
	}

	pub := &recordingPublisher{}
	return &testEnv{
		users:      NewUserService(userRepo, absenceRepo, "https://files.example.com/"),
		absences:   NewAbsenceService(absenceRepo, pub),
		stats:      NewStatsService(absenceRepo),
		nonWorking: NewNonWorkingDayService(nwdRepo),
		publisher:  pub,
	}
}

func aprilForm() *entry.Form {
	// апрель 2024: индекс ячейки = день - 1
	return entry.New(time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC))
}

func TestSubmitAndDayView(t *testing.T) {
	env := newTestEnv(t)
	anna, err := env.users.CreateUser(1, "anna", "Anna", "Petrova")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	form := aprilForm()
	form.PressCategory(calendar.CategoryBusinessTrip)
	form.Selector().Tap(1)
	form.Selector().Tap(2)
	form.SetComment("Казань")
	form.ToggleCallable()

	res, err := env.absences.Submit(context.Background(), anna, form)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(res.Rows) != 2 || res.BatchID == "" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if form.CanSubmit() {
		t.Fatalf("form must be cleared after submit")
	}
	if env.publisher.calls != 1 || env.publisher.batchID != res.BatchID || env.publisher.rows != 2 {
		t.Fatalf("unexpected publish: %+v", env.publisher)
	}

	entries, err := env.absences.ByDate(time.Date(2024, 4, 3, 15, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("by date: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.User.FirstName != "Anna" || e.Category.Key != calendar.CategoryBusinessTrip || e.Comment != "Казань" || !e.Callable {
		t.Fatalf("unexpected entry: %+v", e)
	}

	text := env.absences.FormatDay(time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC), entries)
	if !strings.Contains(text, "Anna Petrova") || !strings.Contains(text, "Казань") {
		t.Fatalf("unexpected day text: %s", text)
	}

	empty, _ := env.absences.ByDate(time.Date(2024, 4, 4, 0, 0, 0, 0, time.UTC))
	if !strings.Contains(env.absences.FormatDay(time.Date(2024, 4, 4, 0, 0, 0, 0, time.UTC), empty), "Все на месте") {
		t.Fatalf("empty day must say everyone is present")
	}
}

func TestSubmitRejectsTakenDates(t *testing.T) {
	env := newTestEnv(t)
	u, _ := env.users.CreateUser(1, "", "Ivan", "")

	first := aprilForm()
	first.PressCategory(calendar.CategoryVacation)
	first.Selector().Tap(5)
	if _, err := env.absences.Submit(context.Background(), u, first); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	second := aprilForm()
	second.PressCategory(calendar.CategoryIllness)
	second.Selector().Tap(4)
	second.Selector().Tap(5)
	_, err := env.absences.Submit(context.Background(), u, second)
	if !errors.Is(err, ErrDateTaken) {
		t.Fatalf("expected ErrDateTaken, got %v", err)
	}
	if !strings.Contains(err.Error(), "06.04.2024") {
		t.Fatalf("error must name the taken date: %v", err)
	}
	if !second.CanSubmit() {
		t.Fatalf("rejected form must keep its selection")
	}

	rows, _ := env.absences.ForUser(u.ID)
	if len(rows) != 1 {
		t.Fatalf("no rows of a rejected batch must be stored, got %d", len(rows))
	}
}

func TestSubmitValidation(t *testing.T) {
	env := newTestEnv(t)
	u, _ := env.users.CreateUser(1, "", "Ivan", "")

	form := aprilForm()
	if _, err := env.absences.Submit(context.Background(), u, form); !errors.Is(err, entry.ErrNoDates) {
		t.Fatalf("expected ErrNoDates, got %v", err)
	}

	form.PressCategory(calendar.CategoryOther)
	form.Selector().Tap(0)
	if _, err := env.absences.Submit(context.Background(), u, form); !errors.Is(err, entry.ErrReasonRequired) {
		t.Fatalf("expected ErrReasonRequired, got %v", err)
	}
	if env.publisher.calls != 0 {
		t.Fatalf("nothing must be published for invalid forms")
	}
}

func TestSubmitPublishFailureIsNotReturned(t *testing.T) {
	env := newTestEnv(t)
	env.publisher.err = errors.New("broker down")
	u, _ := env.users.CreateUser(1, "", "Ivan", "")

	form := aprilForm()
	form.PressCategory(calendar.CategoryTraining)
	form.Selector().Tap(8)
	if _, err := env.absences.Submit(context.Background(), u, form); err != nil {
		t.Fatalf("publish failure must not fail submit: %v", err)
	}
	rows, _ := env.absences.ForUser(u.ID)
	if len(rows) != 1 {
		t.Fatalf("expected stored row, got %d", len(rows))
	}
}

func TestBatchesAndDelete(t *testing.T) {
	env := newTestEnv(t)
	u, _ := env.users.CreateUser(1, "", "Ivan", "")

	first := aprilForm()
	first.PressCategory(calendar.CategoryIllness)
	first.Selector().Tap(0)
	first.Selector().Tap(1)
	first.PressCategory(calendar.CategoryShortAbsence)
	first.Selector().Tap(3)
	firstRes, err := env.absences.Submit(context.Background(), u, first)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	second := aprilForm()
	second.PressCategory(calendar.CategoryVacation)
	second.Selector().Tap(20)
	if _, err := env.absences.Submit(context.Background(), u, second); err != nil {
		t.Fatalf("submit: %v", err)
	}

	batches, err := env.absences.Batches(u.ID)
	if err != nil {
		t.Fatalf("batches: %v", err)
	}
	if len(batches) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(batches))
	}
	older := batches[1]
	if older.BatchID != firstRes.BatchID || older.Days != 3 || len(older.Categories) != 2 {
		t.Fatalf("unexpected batch: %+v", older)
	}
	if got := env.absences.FormatBatch(older); !strings.Contains(got, "01.04.2024 - 04.04.2024") {
		t.Fatalf("unexpected batch text: %s", got)
	}

	if err := env.absences.DeleteBatch(u.ID, firstRes.BatchID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := env.absences.DeleteBatch(u.ID, firstRes.BatchID); err == nil {
		t.Fatalf("second delete must fail")
	}
	rows, _ := env.absences.ForUser(u.ID)
	if len(rows) != 1 {
		t.Fatalf("expected 1 remaining row, got %d", len(rows))
	}
}

func TestCategoryStatsZeroInitialised(t *testing.T) {
	env := newTestEnv(t)
	u, _ := env.users.CreateUser(1, "", "Ivan", "")

	form := aprilForm()
	form.PressCategory(calendar.CategoryIllness)
	form.Selector().Tap(0)
	form.Selector().Tap(1)
	if _, err := env.absences.Submit(context.Background(), u, form); err != nil {
		t.Fatalf("submit: %v", err)
	}

	stats, err := env.stats.CategoryStats(u.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats) != len(calendar.Categories()) {
		t.Fatalf("expected every category, got %d", len(stats))
	}
	for _, st := range stats {
		want := int64(0)
		if st.Category.Key == calendar.CategoryIllness {
			want = 2
		}
		if st.Count != want {
			t.Fatalf("%s: expected %d, got %d", st.Category.Key, want, st.Count)
		}
	}
	if !strings.Contains(env.stats.FormatStats(stats), "Статистика") {
		t.Fatalf("unexpected stats text")
	}
}

func TestUserProfileFields(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.users.CreateUser(1, "ivan", "", ""); err == nil {
		t.Fatalf("empty first name must be rejected")
	}
	if _, err := env.users.CreateUser(1, "ivan", "Ivan", "Sidorov"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := env.users.SetPosition(1, "Инженер"); err != nil {
		t.Fatalf("position: %v", err)
	}
	if _, err := env.users.SetPhone(1, "+7 (900) 123-45-67"); err != nil {
		t.Fatalf("phone: %v", err)
	}
	if _, err := env.users.SetPhone(1, "call me"); err == nil {
		t.Fatalf("invalid phone must be rejected")
	}
	if _, err := env.users.SetEmail(1, "ivan@example.com"); err != nil {
		t.Fatalf("email: %v", err)
	}
	if _, err := env.users.SetEmail(1, "not an email"); err == nil {
		t.Fatalf("invalid email must be rejected")
	}
	if _, err := env.users.SetAvatar(2, "x.png"); !errors.Is(err, repository.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	u, err := env.users.GetUser(1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u.Position != "Инженер" || u.Phone != "+7 (900) 123-45-67" || u.Email != "ivan@example.com" {
		t.Fatalf("unexpected profile: %+v", u)
	}
	info := env.users.FormatUserInfo(u)
	if !strings.Contains(info, "Ivan Sidorov") || !strings.Contains(info, "Инженер") {
		t.Fatalf("unexpected profile text: %s", info)
	}
}

func TestAvatarURL(t *testing.T) {
	env := newTestEnv(t)
	cases := map[string]string{
		"":                          "",
		"https://cdn.example.com/a": "https://cdn.example.com/a",
		"avatars/u1.png":            "https://files.example.com/storage/v1/object/public/avatars/u1.png",
		"u1.png":                    "https://files.example.com/storage/v1/object/public/avatars/u1.png",
	}
	for in, want := range cases {
		if got := env.users.AvatarURL(in); got != want {
			t.Fatalf("AvatarURL(%q) = %q, want %q", in, got, want)
		}
	}

	unconfigured := &UserService{}
	if got := unconfigured.AvatarURL("u1.png"); got != "" {
		t.Fatalf("expected empty url without storage, got %q", got)
	}
}

func TestAdminFlow(t *testing.T) {
	env := newTestEnv(t)
	if err := env.users.InitializeAdmin(10); err != nil {
		t.Fatalf("init admin: %v", err)
	}
	env.users.CreateUser(20, "", "Petr", "")

	if err := env.users.UpdateRole(20, 10, models.RoleClient); err == nil {
		t.Fatalf("client must not change roles")
	}
	if err := env.users.UpdateRole(10, 20, models.RoleAdmin); err != nil {
		t.Fatalf("promote: %v", err)
	}
	if ok, _ := env.users.IsAdmin(20); !ok {
		t.Fatalf("expected 20 to be admin")
	}
	if err := env.users.UpdateRole(10, 30, models.RoleAdmin); !errors.Is(err, repository.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	admins, _ := env.users.GetAdmins()
	if len(admins) != 2 {
		t.Fatalf("expected 2 admins, got %d", len(admins))
	}
}

func TestDeleteUserRemovesAbsences(t *testing.T) {
	env := newTestEnv(t)
	u, _ := env.users.CreateUser(1, "", "Ivan", "")
	form := aprilForm()
	form.PressCategory(calendar.CategoryVacation)
	form.Selector().Tap(10)
	env.absences.Submit(context.Background(), u, form)

	if err := env.users.DeleteUser(1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	rows, _ := env.absences.ForUser(u.ID)
	if len(rows) != 0 {
		t.Fatalf("absences must be removed with the user")
	}
	if _, err := env.users.GetUser(1); !errors.Is(err, repository.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestNonWorkingDaysAndDigest(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "calendar.json")
	data := `{"year": 2024, "months": [{"month": 4, "days": "6,7,13,14,20,21,27+,28,29*"}]}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	n, err := env.nonWorking.LoadFromJSON(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if n != 8 {
		t.Fatalf("expected 8 days, got %d", n)
	}
	set := env.nonWorking.MonthSet(2024, time.April)
	if !set["2024-04-06"] || set["2024-04-29"] || set["2024-04-01"] {
		t.Fatalf("unexpected month set: %v", set)
	}

	digest := NewDigestService(env.absences, env.nonWorking)
	if _, skip, err := digest.TodayDigest(time.Date(2024, 4, 6, 9, 0, 0, 0, time.UTC)); err != nil || !skip {
		t.Fatalf("weekend digest must be skipped: skip=%v err=%v", skip, err)
	}

	u, _ := env.users.CreateUser(1, "", "Ivan", "")
	form := aprilForm()
	form.PressCategory(calendar.CategoryIllness)
	form.Selector().Tap(1)
	env.absences.Submit(context.Background(), u, form)

	text, skip, err := digest.TodayDigest(time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC))
	if err != nil || skip {
		t.Fatalf("unexpected digest result: skip=%v err=%v", skip, err)
	}
	if !strings.Contains(text, "Ivan") || !strings.Contains(text, "02.04.2024") {
		t.Fatalf("unexpected digest: %s", text)
	}
}
