package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/groupchat/internal/repo"
)

var messageCols = []string{"id", "content", "created_at", "updated_at", "id", "username", "email", "created_at"}

func newMessageHandler(t *testing.T) (*MessageHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &MessageHandler{Messages: repo.NewMessageRepo(db)}, mock
}

type pageBody struct {
	Count    int               `json:"count"`
	Next     *string           `json:"next"`
	Previous *string           `json:"previous"`
	Results  []json.RawMessage `json:"results"`
}

func TestMessageHandler_List_MiddlePage(t *testing.T) {
	h, mock := newMessageHandler(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM messages`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))
	rows := sqlmock.NewRows(messageCols)
	for i := 15; i > 5; i-- {
		rows.AddRow(i, "hello", testTime, testTime, 7, "alice", "alice@example.com", testTime)
	}
	mock.ExpectQuery(`ORDER BY m.created_at DESC, m.id DESC`).
		WithArgs(10, 10).
		WillReturnRows(rows)

	rr := httptest.NewRecorder()
	h.List(rr, asUser(httptest.NewRequest("GET", "/messages/?limit=10&offset=10", nil), testUser()))

	if rr.Code != http.StatusOK {
		t.Fatalf("List status: got %d, want 200", rr.Code)
	}
	var out pageBody
	decodeBody(t, rr, &out)
	if out.Count != 25 || len(out.Results) != 10 {
		t.Errorf("count=%d results=%d", out.Count, len(out.Results))
	}
	if out.Next == nil || *out.Next != "/messages/?limit=10&offset=20" {
		t.Errorf("next: %v", out.Next)
	}
	if out.Previous == nil || *out.Previous != "/messages/?limit=10&offset=0" {
		t.Errorf("previous: %v", out.Previous)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestMessageHandler_List_LastPage(t *testing.T) {
	h, mock := newMessageHandler(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM messages`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))
	rows := sqlmock.NewRows(messageCols)
	for i := 5; i > 0; i-- {
		rows.AddRow(i, "hello", testTime, testTime, 7, "alice", "alice@example.com", testTime)
	}
	mock.ExpectQuery(`FROM messages m`).WithArgs(10, 20).WillReturnRows(rows)

	rr := httptest.NewRecorder()
	h.List(rr, asUser(httptest.NewRequest("GET", "/messages/?limit=10&offset=20", nil), testUser()))

	var out pageBody
	decodeBody(t, rr, &out)
	if len(out.Results) != 5 || out.Next != nil {
		t.Errorf("results=%d next=%v", len(out.Results), out.Next)
	}
	if out.Previous == nil || *out.Previous != "/messages/?limit=10&offset=10" {
		t.Errorf("previous: %v", out.Previous)
	}
}

func TestMessageHandler_List_ClampsParams(t *testing.T) {
	h, mock := newMessageHandler(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM messages`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`FROM messages m`).
		WithArgs(50, 0).
		WillReturnRows(sqlmock.NewRows(messageCols))

	rr := httptest.NewRecorder()
	h.List(rr, asUser(httptest.NewRequest("GET", "/messages/?limit=500&offset=-5", nil), testUser()))

	if rr.Code != http.StatusOK {
		t.Fatalf("List status: got %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"results":[]`) {
		t.Errorf("empty results must be an array: %s", rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"next":null`) || !strings.Contains(rr.Body.String(), `"previous":null`) {
		t.Errorf("links must be null: %s", rr.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestMessageHandler_Create_AuthorIsCaller(t *testing.T) {
	h, mock := newMessageHandler(t)

	mock.ExpectQuery(`INSERT INTO messages`).
		WithArgs(7, "hi there").
		WillReturnRows(sqlmock.NewRows(messageCols).AddRow(1, "hi there", testTime, testTime, 7, "alice", "alice@example.com", testTime))

	body := `{"content":"  hi there  ","author":99,"author_id":99}`
	rr := httptest.NewRecorder()
	h.Create(rr, asUser(jsonRequest(t, "POST", "/messages/", body), testUser()))

	if rr.Code != http.StatusCreated {
		t.Fatalf("Create status: got %d, want 201 (%s)", rr.Code, rr.Body.String())
	}
	var out struct {
		ID      int    `json:"id"`
		Content string `json:"content"`
		Author  struct {
			ID       int    `json:"id"`
			Username string `json:"username"`
		} `json:"author"`
	}
	decodeBody(t, rr, &out)
	if out.ID != 1 || out.Content != "hi there" || out.Author.ID != 7 || out.Author.Username != "alice" {
		t.Errorf("unexpected message: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestMessageHandler_Create_Validation(t *testing.T) {
	cases := map[string]struct {
		content string
		want    string
	}{
		"blank":    {"   ", "this field is required"},
		"too long": {strings.Repeat("x", 5001), "ensure this field has no more than 5000 characters"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			h, mock := newMessageHandler(t)

			rr := httptest.NewRecorder()
			h.Create(rr, asUser(jsonRequest(t, "POST", "/messages/", map[string]string{"content": tc.content}), testUser()))

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("Create status: got %d, want 400", rr.Code)
			}
			var out errorBody
			decodeBody(t, rr, &out)
			if out.Fields["content"] != tc.want {
				t.Errorf("fields: %+v", out.Fields)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("expectations: %v", err)
			}
		})
	}
}
