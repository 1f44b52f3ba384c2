package stats

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf/pkg/database"
	"bookshelf/pkg/models"
)

var testNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func at(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

func TestHistogram(t *testing.T) {
	lendings := []models.Lending{
		{LendDate: at(2024, time.January, 3)},
		{LendDate: at(2024, time.January, 28)},
		{LendDate: at(2024, time.March, 1)},
		{LendDate: at(2024, time.December, 31)},
		{LendDate: at(2023, time.March, 1)},
		// 23:30 on Jan 31 at UTC-5 is Feb 1 in UTC
		{LendDate: time.Date(2024, time.January, 31, 23, 30, 0, 0, time.FixedZone("EST", -5*3600))},
	}

	got := Histogram(lendings, 2024)
	assert.Equal(t, [12]int{2, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 1}, got)

	sum := 0
	for _, n := range got {
		sum += n
	}
	assert.Equal(t, 5, sum)

	assert.Equal(t, [12]int{}, Histogram(nil, 2024))
}

func TestSummarizeLendings(t *testing.T) {
	past := testNow.Add(-time.Hour)
	future := testNow.Add(time.Hour)

	got := SummarizeLendings([]models.Lending{
		{Status: models.LendingActive, ExpectedReturnDate: &past},
		{Status: models.LendingActive, ExpectedReturnDate: &future},
		{Status: models.LendingActive},
		{Status: models.LendingReturned, ExpectedReturnDate: &past},
	}, testNow)

	assert.Equal(t, models.LendingStats{Total: 4, Active: 3, Overdue: 1}, got)
}

func seed(t *testing.T) *database.Handle {
	t.Helper()
	store := database.NewHandle(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	t.Cleanup(func() { _ = store.Close() })

	db, err := store.Conn(context.Background())
	require.NoError(t, err)

	insertBook := func(status string) string {
		id := uuid.NewString()
		_, err := db.Exec(`INSERT INTO books (id, title, author, status, created_at, updated_at) VALUES (?, 'T', 'A', ?, ?, ?)`,
			id, status, testNow, testNow)
		require.NoError(t, err)
		return id
	}
	insertLending := func(bookID, status string, lend time.Time, expected *time.Time) {
		var exp sql.NullTime
		if expected != nil {
			exp = sql.NullTime{Time: *expected, Valid: true}
		}
		_, err := db.Exec(`
			INSERT INTO lendings (id, book_id, friend_id, lend_date, expected_return_date, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, uuid.NewString(), bookID, uuid.NewString(), lend, exp, status, lend, lend)
		require.NoError(t, err)
	}

	late := testNow.Add(-48 * time.Hour)
	lent1 := insertBook(models.BookLent)
	lent2 := insertBook(models.BookLent)
	free := insertBook(models.BookAvailable)
	insertBook(models.BookAvailable)

	insertLending(lent1, models.LendingActive, at(2024, time.May, 2), &late)
	insertLending(lent2, models.LendingActive, at(2024, time.June, 1), nil)
	insertLending(free, models.LendingReturned, at(2024, time.February, 20), &late)
	insertLending(free, models.LendingReturned, at(2023, time.November, 5), nil)
	return store
}

func TestAggregator_Dashboard(t *testing.T) {
	agg := NewAggregator(NewRepo(seed(t)))
	agg.Now = func() time.Time { return testNow }

	d, err := agg.Dashboard(context.Background(), 2024)
	require.NoError(t, err)

	assert.Equal(t, models.BookStats{Total: 4, Available: 2, Lent: 2, Overdue: 1}, d.Books)
	assert.Equal(t, models.LendingStats{Total: 4, Active: 2, Overdue: 1}, d.Lendings)
	assert.Equal(t, models.MonthLabels, d.ChartData.Labels)
	assert.Equal(t, [12]int{0, 1, 0, 0, 1, 1, 0, 0, 0, 0, 0, 0}, d.ChartData.Values)

	prev, err := agg.MonthlyHistogram(context.Background(), 2023)
	require.NoError(t, err)
	assert.Equal(t, 1, prev[time.November-1])
}

func TestAggregator_LendingStatsMatchesDashboard(t *testing.T) {
	agg := NewAggregator(NewRepo(seed(t)))
	agg.Now = func() time.Time { return testNow }

	ls, err := agg.LendingStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.LendingStats{Total: 4, Active: 2, Overdue: 1}, ls)

	d, err := agg.Dashboard(context.Background(), 2024)
	require.NoError(t, err)
	assert.Equal(t, ls, d.Lendings)
	assert.Equal(t, ls.Overdue, d.Books.Overdue)
}

func TestAggregator_EmptyStore(t *testing.T) {
	store := database.NewHandle(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	t.Cleanup(func() { _ = store.Close() })

	agg := NewAggregator(NewRepo(store))
	d, err := agg.Dashboard(context.Background(), 2024)
	require.NoError(t, err)
	assert.Equal(t, models.BookStats{}, d.Books)
	assert.Equal(t, models.LendingStats{}, d.Lendings)
	assert.Equal(t, [12]int{}, d.ChartData.Values)
}

func TestHandler_Year(t *testing.T) {
	gin.SetMode(gin.TestMode)
	agg := NewAggregator(NewRepo(seed(t)))
	agg.Now = func() time.Time { return testNow }

	r := gin.New()
	NewHandler(agg).RegisterRoutes(r.Group("/dashboard"))

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	w := get("/dashboard/stats")
	require.Equal(t, http.StatusOK, w.Code)
	var env struct {
		Success bool                  `json:"success"`
		Data    models.DashboardStats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, 1, env.Data.ChartData.Values[time.May-1])

	w = get("/dashboard/stats?year=2023")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, 1, env.Data.ChartData.Values[time.November-1])
	assert.Equal(t, 0, env.Data.ChartData.Values[time.May-1])

	w = get("/dashboard/stats?year=abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
