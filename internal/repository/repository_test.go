package repository

import (
	"absence-bot/internal/models"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustUser(t *testing.T, repo UserRepository, chatID int64, name string) *models.User {
	t.Helper()
	u := &models.User{ChatID: chatID, FirstName: name, Role: models.RoleClient}
	if err := repo.Create(u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestUserRepositoryCRUD(t *testing.T) {
	repo, err := NewGormUserRepository(newTestDB(t))
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}

	u := mustUser(t, repo, 100, "Zane")
	mustUser(t, repo, 200, "Anna")

	if err := repo.Create(&models.User{ChatID: 100, FirstName: "dup"}); err == nil {
		t.Fatalf("expected duplicate error")
	}

	got, err := repo.GetByChatID(100)
	if err != nil || got == nil || got.FirstName != "Zane" {
		t.Fatalf("unexpected user: %+v, %v", got, err)
	}

	missing, err := repo.GetByChatID(999)
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing user, got %+v, %v", missing, err)
	}

	all, err := repo.GetAll()
	if err != nil || len(all) != 2 || all[0].FirstName != "Anna" {
		t.Fatalf("expected users ordered by name, got %v, %v", all, err)
	}

	if err := repo.UpdateRole(100, models.RoleAdmin); err != nil {
		t.Fatalf("update role: %v", err)
	}
	total, admins, err := repo.GetStats()
	if err != nil || total != 2 || admins != 1 {
		t.Fatalf("unexpected stats %d/%d, %v", total, admins, err)
	}

	byID, err := repo.GetByID(u.ID)
	if err != nil || byID == nil || !byID.IsAdmin() {
		t.Fatalf("expected admin by id, got %+v, %v", byID, err)
	}

	if err := repo.Delete(100); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(100); err != ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAbsenceRepository(t *testing.T) {
	db := newTestDB(t)
	users, err := NewGormUserRepository(db)
	if err != nil {
		t.Fatalf("user repo: %v", err)
	}
	repo, err := NewGormAbsenceRepository(db)
	if err != nil {
		t.Fatalf("absence repo: %v", err)
	}

	anna := mustUser(t, users, 1, "Anna")
	juris := mustUser(t, users, 2, "Juris")

	batch := []models.Absence{
		{UserID: anna.ID, Category: "vacation", Date: day(2024, 4, 1), BatchID: "b1"},
		{UserID: anna.ID, Category: "vacation", Date: day(2024, 4, 2), BatchID: "b1"},
		{UserID: anna.ID, Category: "illness", Date: day(2024, 4, 3), BatchID: "b1"},
	}
	if err := repo.CreateBatch(batch); err != nil {
		t.Fatalf("create batch: %v", err)
	}
	if err := repo.CreateBatch([]models.Absence{
		{UserID: juris.ID, Category: "training", Date: day(2024, 4, 2), BatchID: "b2"},
	}); err != nil {
		t.Fatalf("create batch: %v", err)
	}

	onDay, err := repo.GetByDate(day(2024, 4, 2))
	if err != nil || len(onDay) != 2 {
		t.Fatalf("expected 2 absences on 2024-04-02, got %d, %v", len(onDay), err)
	}
	for _, a := range onDay {
		if a.User.FirstName == "" {
			t.Fatalf("expected user to be preloaded")
		}
	}

	taken, err := repo.FindTakenDates(anna.ID, []time.Time{day(2024, 4, 2), day(2024, 4, 9)})
	if err != nil || len(taken) != 1 || !taken[0].Equal(day(2024, 4, 2)) {
		t.Fatalf("unexpected taken dates: %v, %v", taken, err)
	}

	counts, err := repo.CountByCategory(anna.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	byCat := map[string]int64{}
	for _, c := range counts {
		byCat[c.Category] = c.Count
	}
	if byCat["vacation"] != 2 || byCat["illness"] != 1 {
		t.Fatalf("unexpected counts: %v", byCat)
	}

	ranged, err := repo.GetByDateRange(day(2024, 4, 1), day(2024, 4, 2))
	if err != nil || len(ranged) != 3 {
		t.Fatalf("expected 3 absences in range, got %d, %v", len(ranged), err)
	}

	n, err := repo.DeleteBatch(juris.ID, "b1")
	if err != nil || n != 0 {
		t.Fatalf("foreign batch must not be deleted: %d, %v", n, err)
	}
	n, err = repo.DeleteBatch(anna.ID, "b1")
	if err != nil || n != 3 {
		t.Fatalf("expected 3 deleted, got %d, %v", n, err)
	}
}

func TestAbsenceRepositoryBatchIsAtomic(t *testing.T) {
	db := newTestDB(t)
	repo, err := NewGormAbsenceRepository(db)
	if err != nil {
		t.Fatalf("absence repo: %v", err)
	}

	if err := repo.CreateBatch([]models.Absence{
		{UserID: 1, Category: "vacation", Date: day(2024, 5, 1), BatchID: "a"},
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	// вторая запись нарушает уникальность (user_id, date)
	err = repo.CreateBatch([]models.Absence{
		{UserID: 1, Category: "vacation", Date: day(2024, 5, 2), BatchID: "b"},
		{UserID: 1, Category: "vacation", Date: day(2024, 5, 1), BatchID: "b"},
	})
	if err == nil {
		t.Fatalf("expected unique constraint error")
	}

	all, err := repo.GetByUserID(1)
	if err != nil || len(all) != 1 {
		t.Fatalf("expected rollback to keep 1 row, got %d, %v", len(all), err)
	}
}

func TestAbsenceRepositoryRejectsInvalidRows(t *testing.T) {
	db := newTestDB(t)
	repo, err := NewGormAbsenceRepository(db)
	if err != nil {
		t.Fatalf("absence repo: %v", err)
	}

	cases := []struct {
		name string
		row  models.Absence
	}{
		{"no user", models.Absence{Category: "vacation", Date: day(2024, 5, 3), BatchID: "c"}},
		{"no date", models.Absence{UserID: 1, Category: "vacation", BatchID: "c"}},
		{"no category", models.Absence{UserID: 1, Date: day(2024, 5, 3), BatchID: "c"}},
		{"no batch", models.Absence{UserID: 1, Category: "vacation", Date: day(2024, 5, 3)}},
	}
	for _, tc := range cases {
		valid := models.Absence{UserID: 1, Category: "vacation", Date: day(2024, 5, 6), BatchID: "c"}
		if err := repo.CreateBatch([]models.Absence{valid, tc.row}); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}

	all, err := repo.GetByUserID(1)
	if err != nil || len(all) != 0 {
		t.Fatalf("invalid batch must not store any row, got %d, %v", len(all), err)
	}
}

func TestNonWorkingDayRepository(t *testing.T) {
	repo, err := NewGormNonWorkingDayRepository(newTestDB(t))
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}

	days := []models.NonWorkingDay{
		{Date: day(2026, 1, 1), Year: 2026, Month: 1, Day: 1},
		{Date: day(2026, 1, 3), Year: 2026, Month: 1, Day: 3},
		{Date: day(2026, 2, 7), Year: 2026, Month: 2, Day: 7},
	}
	if err := repo.ReplaceAll(days); err != nil {
		t.Fatalf("replace: %v", err)
	}

	ok, err := repo.IsNonWorkingDay(day(2026, 1, 3))
	if err != nil || !ok {
		t.Fatalf("expected 2026-01-03 to be non-working, got %v, %v", ok, err)
	}
	ok, err = repo.IsNonWorkingDay(day(2026, 1, 5))
	if err != nil || ok {
		t.Fatalf("expected 2026-01-05 to be working, got %v, %v", ok, err)
	}

	jan, err := repo.GetByYearMonth(2026, 1)
	if err != nil || len(jan) != 2 {
		t.Fatalf("expected 2 days in January, got %d, %v", len(jan), err)
	}

	if err := repo.ReplaceAll(days[:1]); err != nil {
		t.Fatalf("replace: %v", err)
	}
	all, err := repo.GetAll()
	if err != nil || len(all) != 1 {
		t.Fatalf("expected replace to drop old rows, got %d, %v", len(all), err)
	}
}
