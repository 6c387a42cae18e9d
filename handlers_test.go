package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/muhammadolammi/careernavigator/internal/content"
	"github.com/muhammadolammi/careernavigator/internal/database"
	"github.com/muhammadolammi/careernavigator/internal/navigator"
	"github.com/muhammadolammi/careernavigator/internal/sessionstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubCollaborator struct{}

func (stubCollaborator) GenerateCareerQuiz(context.Context, int) ([]navigator.QuizQuestion, error) {
	return []navigator.QuizQuestion{{Question: "Weekend plan?", Options: []string{"Build", "Paint"}}}, nil
}

func (stubCollaborator) EvaluateQuizResults(context.Context, int, []navigator.QuizAnswer) (navigator.Under18Result, error) {
	return navigator.Under18Result{
		RecommendedPaths: []navigator.RecommendedPath{{Title: "Robotics"}},
		GeneralAdvice:    "Keep building.",
	}, nil
}

func (stubCollaborator) AnalyzeProfile(context.Context, navigator.Sources) (navigator.Profile, error) {
	return navigator.Profile{Name: "Ada", CurrentTitle: "Analyst"}, nil
}

func (stubCollaborator) ArchitectCareerPlan(_ context.Context, _ navigator.Profile, role string) (navigator.CareerPlan, error) {
	return navigator.CareerPlan{
		DreamRole:      role,
		MarketAnalysis: "Strong demand.",
		Gaps:           []navigator.SkillGap{{Skill: "Python", Importance: 8}},
		Roadmap: []navigator.RoadmapTask{
			{Day: 1, Title: "Python basics"},
			{Day: 2, Title: "Pipelines"},
		},
		FutureOutlook: navigator.FutureOutlook{Summary: "Stable", RiskFactor: navigator.RiskLow, LongevityScore: 85},
	}, nil
}

type memoryObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func (m *memoryObjects) Upload(_ context.Context, key, _ string, data []byte) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memoryObjects) Download(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}

func (m *memoryObjects) URL(key string) string { return "https://files.example/" + key }

type memoryResumes struct {
	mu      sync.Mutex
	resumes []database.Resume
}

func (m *memoryResumes) RecordResume(_ context.Context, r sessionstore.ResumeUpload) (database.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := database.Resume{
		ID:               r.ID,
		SessionID:        uuid.MustParse(r.SessionID),
		OriginalFilename: r.Filename,
		Mime:             r.Mime,
		SizeBytes:        r.Size,
		StorageProvider:  r.Provider,
		ObjectKey:        r.ObjectKey,
		StorageUrl:       r.URL,
		UploadStatus:     "uploaded",
		CreatedAt:        time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	m.resumes = append(m.resumes, row)
	return row, nil
}

func (m *memoryResumes) Resume(_ context.Context, sessionID string, id uuid.UUID) (database.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.resumes {
		if r.ID == id && r.SessionID.String() == sessionID {
			return r, nil
		}
	}
	return database.Resume{}, sessionstore.ErrNotFound
}

func (m *memoryResumes) Resumes(_ context.Context, sessionID string) ([]database.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []database.Resume
	for _, r := range m.resumes {
		if r.SessionID.String() == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

type testServer struct {
	t       *testing.T
	e       *echo.Echo
	cfg     *ServerConfig
	session string
}

func newTestServer(t *testing.T, options ...RegistryOption) *testServer {
	t.Helper()
	cnt, err := content.Default()
	require.NoError(t, err)

	cfg := &ServerConfig{
		Content:   cnt,
		Cookies:   sessions.NewCookieStore([]byte("test-secret")),
		Logger:    zap.NewNop(),
		MaxUpload: 1 << 20,
	}
	cfg.Registry = NewRegistry(context.Background(), stubCollaborator{}, navigator.Options{Minor: cnt.MinorDefaults()}, nil, nil, nil, options...)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = cfg.Registry.Wait(ctx)
	})
	return &testServer{t: t, e: newRouter(cfg), cfg: cfg}
}

func (s *testServer) send(req *http.Request) *httptest.ResponseRecorder {
	if s.session != "" {
		req.Header.Set(sessionHeader, s.session)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	if id := rec.Header().Get(sessionHeader); id != "" {
		s.session = id
	}
	return rec
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return s.send(req)
}

func (s *testServer) upload(filename, mime string, data []byte) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", mime)
	part, err := w.CreatePart(h)
	require.NoError(s.t, err)
	_, err = part.Write(data)
	require.NoError(s.t, err)
	require.NoError(s.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/resume", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return s.send(req)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *testServer) view(wait bool) View {
	path := "/api/view"
	if wait {
		path += "?wait=true"
	}
	rec := s.do(http.MethodGet, path, nil)
	require.Equal(s.t, http.StatusOK, rec.Code)
	return decode[View](s.t, rec)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, s.session)
}

func TestSessionCookie(t *testing.T) {
	s := newTestServer(t)

	first := httptest.NewRecorder()
	s.e.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/view", nil))
	require.Equal(t, http.StatusOK, first.Code)
	id := first.Header().Get(sessionHeader)
	require.NotEmpty(t, id)
	cookies := first.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/api/view", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	second := httptest.NewRecorder()
	s.e.ServeHTTP(second, req)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, id, second.Header().Get(sessionHeader))

	v := decode[View](t, second)
	assert.Equal(t, navigator.StageNameInput, v.Stage)
	assert.NotEmpty(t, v.Quote)
}

func TestUnknownSessionHeader(t *testing.T) {
	s := newTestServer(t)
	s.session = uuid.NewString()
	rec := s.do(http.MethodGet, "/api/view", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdultFlow(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/name", nameRequest{Name: "Ada"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, navigator.StageAgeInput, decode[View](t, rec).Stage)

	age := 30
	rec = s.do(http.MethodPost, "/api/age", ageRequest{Age: &age})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, navigator.StageProfileInput, decode[View](t, rec).Stage)

	rec = s.do(http.MethodPost, "/api/profile", profileRequest{ResumeText: "SQL analyst"})
	require.Contains(t, []int{http.StatusOK, http.StatusAccepted}, rec.Code)

	v := s.view(true)
	require.Equal(t, navigator.StageDreamRole, v.Stage)
	require.NotNil(t, v.Profile)
	assert.Equal(t, "Analyst", v.Profile.CurrentTitle)

	s.do(http.MethodPost, "/api/role", roleRequest{Role: "Data Engineer"})
	v = s.view(true)
	require.Equal(t, navigator.StageDashboard, v.Stage)
	require.NotNil(t, v.Dashboard)
	assert.Equal(t, planAdult, v.Dashboard.Kind)
	assert.Equal(t, "Data Engineer", v.Dashboard.TargetRole)
	assert.Equal(t, "DAY 1", v.Dashboard.Roadmap[0].Label)
	assert.Equal(t, 85, v.Dashboard.Longevity)

	rec = s.do(http.MethodPost, "/api/dashboard/tasks/1/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	v = decode[View](t, rec)
	assert.Equal(t, 50, v.Dashboard.CompletionPercent)
	assert.True(t, v.Dashboard.Roadmap[0].Completed)

	rec = s.do(http.MethodPost, "/api/dashboard/pacing", pacingRequest{SelfPaced: true})
	require.Equal(t, http.StatusOK, rec.Code)
	v = decode[View](t, rec)
	assert.Equal(t, "SELF-PACED", v.Dashboard.PaceLabel)
	assert.Equal(t, "MODULE 2", v.Dashboard.Roadmap[1].Label)

	rec = s.do(http.MethodGet, "/api/logs?last=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	logs := decode[[]logItem](t, rec)
	require.Len(t, logs, 1)
	assert.Equal(t, "Gap Architect", logs[0].Agent)

	rec = s.do(http.MethodPost, "/api/restart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, navigator.StageNameInput, decode[View](t, rec).Stage)
}

func TestMinorFlow(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodPost, "/api/name", nameRequest{Name: "Sam"})
	age := 12
	s.do(http.MethodPost, "/api/age", ageRequest{Age: &age})

	v := s.view(true)
	require.Equal(t, navigator.StageQuiz, v.Stage)
	require.Len(t, v.Quiz, 1)

	s.do(http.MethodPost, "/api/quiz", quizRequest{Answers: []string{"Build"}})
	v = s.view(true)
	require.Equal(t, navigator.StageDashboard, v.Stage)
	assert.Equal(t, planMinor, v.Dashboard.Kind)
	assert.Equal(t, s.cfg.Content.MinorPlan.DreamRole, v.Dashboard.TargetRole)
	assert.Equal(t, "Keep building.", v.Dashboard.GeneralAdvice)
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/name", nameRequest{Name: "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decode[errorResponse](t, rec).Error)

	rec = s.do(http.MethodPost, "/api/quiz", quizRequest{Answers: []string{"x"}})
	assert.Equal(t, http.StatusConflict, rec.Code)

	s.do(http.MethodPost, "/api/name", nameRequest{Name: "Ada"})
	rec = s.do(http.MethodPost, "/api/age", ageRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/dashboard/tasks/abc/toggle", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/logs?last=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestArchitectureToggle(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/architecture/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	v := decode[View](t, rec)
	assert.True(t, v.ShowArchitecture)
	require.NotNil(t, v.Architecture)
	assert.Equal(t, s.cfg.Content.Architecture.Title, v.Architecture.Title)

	rec = s.do(http.MethodGet, "/api/architecture", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, s.cfg.Content.Architecture, decode[content.Architecture](t, rec))
}

func TestResumeUploadWithoutStorage(t *testing.T) {
	s := newTestServer(t)

	rec := s.upload("cv.txt", "text/plain", []byte("  Go developer  "))
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[resumeResponse](t, rec)
	assert.Equal(t, "Go developer", resp.Text)
	assert.False(t, resp.Stored)

	rec = s.upload("empty.txt", "text/plain", []byte("   "))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.upload("cv.png", "image/png", []byte{0x89, 'P', 'N', 'G'})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(http.MethodGet, "/api/resumes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]resumeItem](t, rec))
}

func TestResumeStorageRoundTrip(t *testing.T) {
	s := newTestServer(t)
	objects := &memoryObjects{objects: map[string][]byte{}}
	s.cfg.Objects = objects
	s.cfg.Resumes = &memoryResumes{}

	rec := s.upload("cv.md", "", []byte("Data engineer with SQL"))
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[resumeResponse](t, rec)
	require.True(t, resp.Stored)
	assert.Equal(t, "text/plain", resp.Mime)

	rec = s.do(http.MethodGet, "/api/resumes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[[]resumeItem](t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, resp.ID, items[0].ID)
	assert.Contains(t, items[0].URL, "resumes/"+s.session+"/")

	rec = s.do(http.MethodPost, "/api/resume/"+resp.ID+"/extract", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Data engineer with SQL", decode[resumeResponse](t, rec).Text)

	rec = s.do(http.MethodPost, "/api/resume/"+uuid.NewString()+"/extract", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	objects.err = errors.New("bucket unavailable")
	rec = s.upload("cv.txt", "text/plain", []byte("still extracted"))
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[resumeResponse](t, rec)
	assert.False(t, resp.Stored)
	assert.Equal(t, "still extracted", resp.Text)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusConflict, statusOf(navigator.ErrBusy))
	assert.Equal(t, http.StatusInternalServerError, statusOf(errors.New("boom")))
}

func TestCookielessViewsAreEvicted(t *testing.T) {
	clock := newFakeClock()
	s := newTestServer(t, WithClock(clock.Now))

	for range 100 {
		rec := httptest.NewRecorder()
		s.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/view", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, 100, s.cfg.Registry.Len())

	clock.Advance(DefaultIdleTTL + time.Second)
	assert.Equal(t, 100, s.cfg.Registry.Evict())
	assert.Equal(t, 0, s.cfg.Registry.Len())
}

func TestLongPollReturnsWhenDraining(t *testing.T) {
	s := newTestServer(t)
	collab := gatedCollaborator{gate: make(chan struct{})}
	s.cfg.Registry = NewRegistry(context.Background(), collab, navigator.Options{}, nil, nil, nil)
	t.Cleanup(func() { close(collab.gate) })

	draining, drain := context.WithCancel(context.Background())
	s.cfg.Draining = draining

	s.do(http.MethodPost, "/api/name", nameRequest{Name: "Ada"})
	age := 30
	s.do(http.MethodPost, "/api/age", ageRequest{Age: &age})
	rec := s.do(http.MethodPost, "/api/profile", profileRequest{ResumeText: "cv"})
	require.Equal(t, http.StatusAccepted, rec.Code)

	drain()
	started := time.Now()
	v := s.view(true)
	assert.True(t, v.Busy)
	assert.Equal(t, navigator.StageAnalyzing, v.Stage)
	assert.Less(t, time.Since(started), time.Second)
	assert.Less(t, longPollTimeout, shutdownTimeout)
}
