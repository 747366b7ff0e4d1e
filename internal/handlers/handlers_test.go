package handlers

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"io.winapps.depttimeline/internal/admin"
	"io.winapps.depttimeline/internal/middleware"
	"io.winapps.depttimeline/internal/report"
	"io.winapps.depttimeline/internal/store"
	"io.winapps.depttimeline/internal/upload"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router   *gin.Engine
	sessions *admin.Sessions
	runner   *report.Runner
	store    store.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop().Sugar()

	s := store.NewLocalStore(store.NewMemoryKV())
	blobs := upload.NewMemoryUploader()
	sessions := admin.NewSessions("123456", 5)

	gen := report.NewGenerator(report.NewHTTPImageSource(blobs, logger), blobs, "", logger)
	runner := report.NewRunner(gen, report.NewMemoryJobStore(time.Hour), t.TempDir(), logger)

	router := gin.New()
	router.Use(middleware.RequestID())
	RegisterRoutes(router, Handlers{
		Entries:  NewEntryHandler(s, "http://localhost:5173", logger),
		Uploads:  NewUploadHandler(blobs, blobs, logger),
		Admin:    NewAdminHandler(sessions, logger),
		Reports:  NewReportHandler(s, runner, logger),
		Sessions: sessions,
		Backend:  "local",
	})
	return &testServer{router: router, sessions: sessions, runner: runner, store: s}
}

func (s *testServer) do(method, path string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) adminHeaders(t *testing.T) map[string]string {
	t.Helper()
	id, gate := s.sessions.Open()
	require.NoError(t, gate.Submit("123456"))
	return map[string]string{middleware.AdminSessionHeader: id}
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

type listResponse struct {
	Entries []struct {
		ID        string   `json:"id"`
		Year      int      `json:"year"`
		Category  string   `json:"category"`
		MediaURL  string   `json:"mediaUrl"`
		MediaURLs []string `json:"mediaUrls"`
		CreatedAt int64    `json:"createdAt"`
	} `json:"entries"`
	Groups []struct {
		Year int `json:"year"`
	} `json:"groups"`
	Years []int `json:"years"`
	Total int   `json:"total"`
}

func TestSearchEntries(t *testing.T) {
	s := newTestServer(t)

	t.Run("defaults list seeded entries", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/entries", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp listResponse
		decode(t, w, &resp)
		assert.Equal(t, 4, resp.Total)
		require.Len(t, resp.Groups, 2)
		assert.Equal(t, 2024, resp.Groups[0].Year)
		assert.Equal(t, []int{2024, 2023}, resp.Years)
		for _, e := range resp.Entries {
			assert.NotNil(t, e.MediaURLs)
		}
	})

	t.Run("year and category", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/entries?year=2024&category=EVENT", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp listResponse
		decode(t, w, &resp)
		require.Len(t, resp.Entries, 1)
		assert.Equal(t, "3", resp.Entries[0].ID)
		assert.Equal(t, []int{2024, 2023}, resp.Years)
	})

	t.Run("impossible pair", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/entries?year=2023&category=EVENT", nil, nil)
		var resp listResponse
		decode(t, w, &resp)
		assert.Zero(t, resp.Total)
		assert.Empty(t, resp.Groups)
	})

	t.Run("search", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/entries?search=hackathon", nil, nil)
		var resp listResponse
		decode(t, w, &resp)
		require.Len(t, resp.Entries, 1)
		assert.Equal(t, "1", resp.Entries[0].ID)
	})

	t.Run("bad year", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/entries?year=soon", nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetEntryAndShare(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/v1/entries/1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Entry struct {
			ID        string   `json:"id"`
			MediaURLs []string `json:"mediaUrls"`
		} `json:"entry"`
		ShareURL string `json:"shareUrl"`
	}
	decode(t, w, &resp)
	assert.Equal(t, "1", resp.Entry.ID)
	assert.Len(t, resp.Entry.MediaURLs, 1)
	assert.Equal(t, "http://localhost:5173?id=1", resp.ShareURL)

	w = s.do(http.MethodGet, "/api/v1/entries/4/share", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"shareUrl":"http://localhost:5173?id=4"`)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/v1/entries/nope", nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/v1/entries/nope/share", nil, nil).Code)
}

func TestResolveLink(t *testing.T) {
	s := newTestServer(t)

	var resp struct {
		Entry *struct {
			ID string `json:"id"`
		} `json:"entry"`
		ShareURL string `json:"shareUrl"`
		CleanURL string `json:"cleanUrl"`
	}

	target := url.QueryEscape("http://localhost:5173/?id=2&tab=x")
	w := s.do(http.MethodGet, "/api/v1/links/resolve?url="+target, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	require.NotNil(t, resp.Entry)
	assert.Equal(t, "2", resp.Entry.ID)
	assert.Equal(t, "http://localhost:5173/?tab=x", resp.CleanURL)
	assert.Equal(t, "http://localhost:5173?id=2", resp.ShareURL)

	resp.Entry = nil
	target = url.QueryEscape("http://localhost:5173/?id=missing")
	w = s.do(http.MethodGet, "/api/v1/links/resolve?url="+target, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Nil(t, resp.Entry)
	assert.Equal(t, "http://localhost:5173/", resp.CleanURL)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/links/resolve", nil, nil).Code)
}

func newEntryBody() map[string]interface{} {
	return map[string]interface{}{
		"title":       "Alumni talk",
		"description": "Guest lecture on cloud careers",
		"category":    "EVENT",
		"date":        "2025-02-14",
		"mediaUrls":   []string{"https://img.example.com/a.jpg", "https://img.example.com/b.jpg"},
	}
}

func TestCreateEntry(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/v1/entries", jsonBody(t, newEntryBody()), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	headers := s.adminHeaders(t)
	w = s.do(http.MethodPost, "/api/v1/entries", jsonBody(t, newEntryBody()), headers)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Entry struct {
			ID       string `json:"id"`
			Year     int    `json:"year"`
			MediaURL string `json:"mediaUrl"`
		} `json:"entry"`
		ShareURL string `json:"shareUrl"`
	}
	decode(t, w, &created)
	assert.NotEmpty(t, created.Entry.ID)
	assert.Equal(t, 2025, created.Entry.Year)
	assert.Equal(t, "https://img.example.com/a.jpg", created.Entry.MediaURL)
	assert.Equal(t, "http://localhost:5173?id="+created.Entry.ID, created.ShareURL)

	w = s.do(http.MethodGet, "/api/v1/entries?year=2025", nil, nil)
	var list listResponse
	decode(t, w, &list)
	require.Len(t, list.Entries, 1)
	assert.Equal(t, created.Entry.ID, list.Entries[0].ID)
}

func TestCreateEntry_Validation(t *testing.T) {
	s := newTestServer(t)
	headers := s.adminHeaders(t)

	body := newEntryBody()
	body["title"] = "  "
	w := s.do(http.MethodPost, "/api/v1/entries", jsonBody(t, body), headers)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"title"`)

	body = newEntryBody()
	body["category"] = "ALUMNI"
	w = s.do(http.MethodPost, "/api/v1/entries", jsonBody(t, body), headers)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/v1/entries", strings.NewReader("{"), headers)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateEntry(t *testing.T) {
	s := newTestServer(t)
	headers := s.adminHeaders(t)

	before, err := store.Find(t.Context(), s.store, "2")
	require.NoError(t, err)

	body := newEntryBody()
	body["date"] = "2022-08-01"
	w := s.do(http.MethodPut, "/api/v1/entries/2", jsonBody(t, body), headers)
	require.Equal(t, http.StatusOK, w.Code)

	after, err := store.Find(t.Context(), s.store, "2")
	require.NoError(t, err)
	assert.Equal(t, "Alumni talk", after.Title)
	assert.Equal(t, 2022, after.Year)
	assert.Equal(t, before.CreatedAt, after.CreatedAt)
	assert.Equal(t, after.MediaURLs[0], after.MediaURL)

	w = s.do(http.MethodPut, "/api/v1/entries/missing", jsonBody(t, newEntryBody()), headers)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteEntry_Idempotent(t *testing.T) {
	s := newTestServer(t)
	headers := s.adminHeaders(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodDelete, "/api/v1/entries/1", nil, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/api/v1/entries/1", nil, headers).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/api/v1/entries/1", nil, headers).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/v1/entries/1", nil, nil).Code)

	all, err := s.store.GetAll(t.Context())
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestAdminSessions(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/v1/admin/sessions", nil, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var opened struct {
		SessionID         string `json:"sessionId"`
		State             string `json:"state"`
		RemainingAttempts int    `json:"remainingAttempts"`
	}
	decode(t, w, &opened)
	assert.Equal(t, "locked", opened.State)
	assert.Equal(t, 5, opened.RemainingAttempts)

	unlock := "/api/v1/admin/sessions/" + opened.SessionID + "/unlock"
	pin := func(p string) *httptest.ResponseRecorder {
		return s.do(http.MethodPost, unlock, jsonBody(t, map[string]string{"pin": p}), nil)
	}

	assert.Equal(t, http.StatusBadRequest, pin("12").Code)

	w = pin("000000")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"remainingAttempts":4`)

	for i := 0; i < 4; i++ {
		assert.Equal(t, http.StatusUnauthorized, pin("000000").Code)
	}
	assert.Equal(t, http.StatusLocked, pin("123456").Code)

	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/api/v1/admin/sessions/"+opened.SessionID, nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, pin("123456").Code)

	w = s.do(http.MethodPost, "/api/v1/admin/sessions", nil, nil)
	decode(t, w, &opened)
	w = s.do(http.MethodPost, "/api/v1/admin/sessions/"+opened.SessionID+"/unlock", jsonBody(t, map[string]string{"pin": "123456"}), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"state":"unlocked"`)
}

func multipartFile(t *testing.T, name string, data []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func pngFixture(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func TestUploadFile(t *testing.T) {
	s := newTestServer(t)
	headers := s.adminHeaders(t)

	send := func(name string, data []byte) *httptest.ResponseRecorder {
		body, contentType := multipartFile(t, name, data)
		h := map[string]string{"Content-Type": contentType}
		for k, v := range headers {
			h[k] = v
		}
		return s.do(http.MethodPost, "/api/v1/uploads", body, h)
	}

	w := send("poster.png", pngFixture(t))
	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		URL         string `json:"url"`
		ContentType string `json:"contentType"`
		Ephemeral   bool   `json:"ephemeral"`
	}
	decode(t, w, &resp)
	assert.True(t, strings.HasPrefix(resp.URL, "/blobs/"))
	assert.Equal(t, "image/png", resp.ContentType)
	assert.True(t, resp.Ephemeral)

	blob := s.do(http.MethodGet, resp.URL, nil, nil)
	require.Equal(t, http.StatusOK, blob.Code)
	assert.Equal(t, "image/png", blob.Header().Get("Content-Type"))
	assert.Equal(t, pngFixture(t), blob.Body.Bytes())

	w = send("brochure.pdf", []byte("%PDF-1.4\n%%EOF\n"))
	require.Equal(t, http.StatusCreated, w.Code)
	decode(t, w, &resp)
	assert.True(t, strings.HasSuffix(resp.URL, "#type=pdf"))

	assert.Equal(t, http.StatusBadRequest, send("notes.txt", []byte("plain words")).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/blobs/unknown", nil, nil).Code)
}

func TestReports(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/v1/reports", jsonBody(t, map[string]interface{}{
		"startDate": "2030-01-01",
	}), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(http.MethodPost, "/api/v1/reports", jsonBody(t, map[string]interface{}{
		"startDate": "2024-03-01", "endDate": "2024-01-01",
	}), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/v1/reports", jsonBody(t, map[string]interface{}{
		"startDate": "2024-01-01", "endDate": "2024-12-31", "category": "ALL", "includeImages": false,
	}), nil)
	require.Equal(t, http.StatusAccepted, w.Code)
	var started struct {
		ReportJobID string `json:"reportJobId"`
		Entries     int    `json:"entries"`
	}
	decode(t, w, &started)
	assert.Equal(t, 2, started.Entries)
	s.runner.Wait()

	w = s.do(http.MethodGet, "/api/v1/reports/"+started.ReportJobID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var progress struct {
		Status   string `json:"status"`
		Progress int    `json:"progress"`
		FileName string `json:"fileName"`
	}
	decode(t, w, &progress)
	assert.Equal(t, report.JobCompleted, progress.Status)
	assert.Equal(t, 100, progress.Progress)
	assert.True(t, strings.HasPrefix(progress.FileName, "Dept_Timeline_Report_"))

	w = s.do(http.MethodGet, "/api/v1/reports/"+started.ReportJobID+"/download", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), progress.FileName)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/v1/reports/unknown", nil, nil).Code)
}

func TestCategoriesAndHealth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/v1/categories", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Categories []struct {
			Value string `json:"value"`
			Label string `json:"label"`
		} `json:"categories"`
	}
	decode(t, w, &resp)
	require.Len(t, resp.Categories, 4)
	assert.Equal(t, "STUDENT", resp.Categories[0].Value)
	assert.Equal(t, "Student Achievement", resp.Categories[0].Label)

	w = s.do(http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"backend":"local"`)
}
