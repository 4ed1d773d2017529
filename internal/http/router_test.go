package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/librarydesk/internal/app"
	"github.com/mrlokans/librarydesk/internal/config"
	"github.com/mrlokans/librarydesk/internal/entities"
)

func setupRouter(t *testing.T) (*gin.Engine, *app.App) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Database = config.Database{
		Driver:       config.DriverSQLite,
		Path:         filepath.Join(dir, "library.db"),
		StoreTimeout: 5 * time.Second,
		LogLevel:     "silent",
	}
	cfg.SignIn.LogPath = filepath.Join(dir, "signin.txt")
	cfg.Reports.Dir = filepath.Join(dir, "reports")

	a, err := app.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	router := NewRouter(RouterConfig{
		Books:     a.Catalog,
		Members:   a.Memberships,
		Staff:     a.Staff,
		SignIns:   a.Ledger,
		Database:  a.DB,
		SignInLog: a.Ledger,
		Audit:     a.Audit,
		Version:   "test",
	})
	return router, a
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestRouter_Books(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, "POST", "/api/books", AddBookRequest{Title: "Dune", Author: "Frank Herbert", Copies: 2})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	added := decode[entities.BookListing](t, w)
	assert.Equal(t, entities.BookListing{ID: 1, Title: "Dune", Author: "Frank Herbert", TotalCopies: 2, AvailableCopies: 2}, added)

	t.Run("invalid input is 422", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/books", AddBookRequest{Title: "", Author: "A", Copies: 1})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "validation_error", decode[ErrorResponse](t, w).Code)
	})

	t.Run("malformed body is 400", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/books", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("borrow until empty", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/books/borrow", TitleRequest{Title: "Dune"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, decode[entities.BookListing](t, w).AvailableCopies)

		w = doJSON(t, router, "POST", "/api/books/1/borrow", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 0, decode[entities.BookListing](t, w).AvailableCopies)

		w = doJSON(t, router, "POST", "/api/books/borrow", TitleRequest{Title: "Dune"})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "not_available", decode[ErrorResponse](t, w).Code)
	})

	t.Run("status counts borrowed copies", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/api/books/status", nil)
		require.Equal(t, http.StatusOK, w.Code)
		status := decode[map[string]int](t, w)
		assert.Equal(t, map[string]int{"books": 1, "total_copies": 2, "available_copies": 0, "borrowed_copies": 2}, status)
	})

	t.Run("return until full", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/books/return", TitleRequest{Title: "Dune"})
		require.Equal(t, http.StatusOK, w.Code)
		w = doJSON(t, router, "POST", "/api/books/1/return", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 2, decode[entities.BookListing](t, w).AvailableCopies)

		w = doJSON(t, router, "POST", "/api/books/1/return", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "over_return", decode[ErrorResponse](t, w).Code)
	})

	t.Run("unknown book is 404", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, doJSON(t, router, "GET", "/api/books/99", nil).Code)
		assert.Equal(t, http.StatusNotFound, doJSON(t, router, "POST", "/api/books/return", TitleRequest{Title: "Emma"}).Code)
		assert.Equal(t, http.StatusNotFound, doJSON(t, router, "DELETE", "/api/books/99", nil).Code)
	})

	t.Run("list and delete", func(t *testing.T) {
		doJSON(t, router, "POST", "/api/books", AddBookRequest{Title: "Emma", Author: "Jane Austen", Copies: 1})

		w := doJSON(t, router, "GET", "/api/books", nil)
		require.Equal(t, http.StatusOK, w.Code)
		list := decode[ListResponse[entities.BookListing]](t, w)
		require.Equal(t, 2, list.Count)
		assert.Equal(t, "Dune", list.Items[0].Title)
		assert.Equal(t, "Emma", list.Items[1].Title)

		assert.Equal(t, http.StatusOK, doJSON(t, router, "DELETE", "/api/books?title=Dune", nil).Code)
		assert.Equal(t, http.StatusOK, doJSON(t, router, "DELETE", "/api/books/2", nil).Code)

		list = decode[ListResponse[entities.BookListing]](t, doJSON(t, router, "GET", "/api/books", nil))
		assert.Equal(t, 0, list.Count)
		assert.NotNil(t, list.Items)
	})
}

func TestRouter_Members(t *testing.T) {
	router, _ := setupRouter(t)

	req := AddMemberRequest{DurationMonths: 6}
	req.MemberID = 7
	req.Name = "Ada"
	req.Age = 36
	req.Email = "ada@example.com"

	w := doJSON(t, router, "POST", "/api/members", req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[MemberResponse](t, w)
	assert.Equal(t, "Ada", created.Member.Name)
	require.NotNil(t, created.Membership)
	assert.Equal(t, 100, created.Membership.Fee)
	assert.Equal(t, entities.MembershipActive, created.Membership.Status)

	t.Run("duplicate id is 409", func(t *testing.T) {
		assert.Equal(t, http.StatusConflict, doJSON(t, router, "POST", "/api/members", req).Code)
	})

	t.Run("ensure keeps existing member", func(t *testing.T) {
		w := doJSON(t, router, "PUT", "/api/members/7", map[string]any{"name": "Someone Else", "age": 50})
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[MemberResponse](t, w)
		assert.False(t, resp.Created)
		assert.Equal(t, "Ada", resp.Member.Name)

		w = doJSON(t, router, "PUT", "/api/members/8", map[string]any{"name": "Grace", "age": 45})
		require.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, decode[MemberResponse](t, w).Created)
	})

	t.Run("membership lifecycle", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/memberships", map[string]any{
			"member_id": 7, "duration_months": 3, "start_date": "2024-01-01", "type": "VIP",
		})
		assert.Equal(t, http.StatusConflict, w.Code)

		w = doJSON(t, router, "POST", "/api/memberships/7/cancel", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, entities.MembershipCancelled, decode[entities.Membership](t, w).Status)

		w = doJSON(t, router, "POST", "/api/memberships", map[string]any{
			"member_id": 7, "duration_months": 3, "start_date": "2024-01-01", "type": "VIP",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		ms := decode[entities.Membership](t, w)
		assert.Equal(t, 100, ms.Fee)
		assert.Equal(t, "2024-04-01", ms.EndDate.UTC().Format("2006-01-02"))

		w = doJSON(t, router, "GET", "/api/memberships/7", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, entities.MembershipVIP, decode[entities.Membership](t, w).Type)

		w = doJSON(t, router, "POST", "/api/memberships/7/renew", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 12, decode[entities.Membership](t, w).DurationMonths)
	})

	t.Run("bad membership input is 422", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/memberships", map[string]any{
			"member_id": 8, "duration_months": 5, "start_date": "2024-01-01", "type": "VIP",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("member without membership is 404", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, doJSON(t, router, "GET", "/api/memberships/8", nil).Code)
	})

	t.Run("list", func(t *testing.T) {
		list := decode[ListResponse[entities.Member]](t, doJSON(t, router, "GET", "/api/members", nil))
		require.Equal(t, 2, list.Count)
		assert.Equal(t, uint(7), list.Items[0].MemberID)
		assert.Equal(t, uint(8), list.Items[1].MemberID)
	})
}

func TestRouter_Staff(t *testing.T) {
	router, _ := setupRouter(t)

	body := map[string]any{"staff_id": 1, "name": "Rosa", "age": 40, "email": "rosa@library.org", "position": "Librarian"}
	require.Equal(t, http.StatusCreated, doJSON(t, router, "POST", "/api/staff", body).Code)
	assert.Equal(t, http.StatusConflict, doJSON(t, router, "POST", "/api/staff", body).Code)

	body["staff_id"] = 2
	body["position"] = "Janitor"
	assert.Equal(t, http.StatusUnprocessableEntity, doJSON(t, router, "POST", "/api/staff", body).Code)

	list := decode[ListResponse[entities.Staff]](t, doJSON(t, router, "GET", "/api/staff", nil))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, entities.PositionLibrarian, list.Items[0].Position)
}

func TestRouter_SignIns(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, "POST", "/api/signins", map[string]any{"id": "S1", "name": "Rosa", "role": "Staff"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Rosa", decode[entities.SignInRecord](t, w).Name)

	w = doJSON(t, router, "POST", "/api/signins", map[string]any{"id": "R,1", "name": "Bob", "role": "Reader"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	records := decode[ListResponse[entities.SignInRecord]](t, doJSON(t, router, "GET", "/api/signins", nil))
	require.Equal(t, 1, records.Count)
	assert.Equal(t, entities.RoleStaff, records.Items[0].Role)

	report := decode[ListResponse[string]](t, doJSON(t, router, "GET", "/api/signins/report", nil))
	require.Equal(t, 1, report.Count)
	assert.Contains(t, report.Items[0], "Name: Rosa")

	w = doJSON(t, router, "GET", "/api/signins/report?format=text", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, report.Items[0]+"\n", w.Body.String())

	assert.Equal(t, http.StatusOK, doJSON(t, router, "GET", "/api/signins/report?format=json", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, router, "GET", "/api/signins/report?format=xml", nil).Code)
}

func TestRouter_Audit(t *testing.T) {
	router, a := setupRouter(t)

	doJSON(t, router, "POST", "/api/books", AddBookRequest{Title: "Dune", Author: "Frank Herbert", Copies: 1})
	doJSON(t, router, "POST", "/api/books/borrow", TitleRequest{Title: "Missing"})
	a.Audit.Wait()

	w := doJSON(t, router, "GET", "/api/audit?type=catalog", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[struct {
		Data  []entities.AuditEvent `json:"data"`
		Total int64                 `json:"total"`
	}](t, w)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Data, 2)

	statuses := []entities.AuditStatus{page.Data[0].Status, page.Data[1].Status}
	assert.ElementsMatch(t, []entities.AuditStatus{entities.AuditStatusSuccess, entities.AuditStatusFailed}, statuses)

	w = doJSON(t, router, "GET", "/api/audit?entity_type=book&entity_id=1&status=success", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)

	assert.Equal(t, http.StatusBadRequest, doJSON(t, router, "GET", "/api/audit?entity_id=abc", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, router, "GET", "/api/audit?since=yesterday", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, router, "GET", "/api/audit?limit=abc", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, router, "GET", "/api/audit?page=-1", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, router, "GET", "/api/audit?limit=1000", nil).Code)
}

func TestRouter_Ping(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, "GET", "/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())

	// task routes are off without a queue
	assert.Equal(t, http.StatusNotFound, doJSON(t, router, "GET", "/api/tasks/types", nil).Code)
}
