package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/Skufu/pcos-risk/internal/apperr"
	"github.com/Skufu/pcos-risk/internal/assessment"
	"github.com/Skufu/pcos-risk/internal/config"
	"github.com/Skufu/pcos-risk/internal/features"
	"github.com/Skufu/pcos-risk/internal/model"
	"github.com/Skufu/pcos-risk/internal/scoring"
	"github.com/Skufu/pcos-risk/internal/store"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

type fakeDB struct {
	err error
}

func (f fakeDB) Ping(ctx context.Context) error {
	return f.err
}

type fakeAssessor struct {
	res scoring.Result
	err error
	got []features.PartialInput
}

func (f *fakeAssessor) Assess(in features.PartialInput) (scoring.Result, error) {
	f.got = append(f.got, in)
	return f.res, f.err
}

type memRecorder struct {
	mu      sync.Mutex
	rows    map[uuid.UUID]store.Assessment
	saveErr error
	getErr  error
}

func newMemRecorder() *memRecorder {
	return &memRecorder{rows: map[uuid.UUID]store.Assessment{}}
}

func (m *memRecorder) Save(_ context.Context, a *store.Assessment) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = uuid.New()
	m.rows[a.ID] = *a
	return nil
}

func (m *memRecorder) Get(_ context.Context, id uuid.UUID) (store.Assessment, error) {
	if m.getErr != nil {
		return store.Assessment{}, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok {
		return store.Assessment{}, store.ErrNotFound
	}
	return a, nil
}

var moderate = scoring.Result{
	Success:     true,
	Score:       42,
	Probability: 0.4217,
	RiskLevel:   scoring.RiskModerate,
	Prediction:  0,
}

func newTestRouter(engine Assessor, recorder Recorder, db HealthChecker) *gin.Engine {
	a := &api{engine: engine, recorder: recorder, logger: zap.NewNop()}
	return setupRouter(a, db, ".")
}

func doRequest(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestRouterHealthz(t *testing.T) {
	router := newTestRouter(&fakeAssessor{}, nil, fakeDB{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/healthz", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestRouterReadyz(t *testing.T) {
	tests := []struct {
		name   string
		db     HealthChecker
		status int
		dbText string
	}{
		{"disabled", nil, http.StatusOK, "disabled"},
		{"healthy", fakeDB{}, http.StatusOK, "ok"},
		{"unhealthy", fakeDB{err: errors.New("connection refused")}, http.StatusServiceUnavailable, "unhealthy: connection refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, newTestRouter(&fakeAssessor{}, nil, tt.db), "GET", "/readyz", "")
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.dbText, decode(t, w)["db"])
		})
	}
}

func TestAPIHealth(t *testing.T) {
	w := doRequest(t, newTestRouter(&fakeAssessor{}, nil, nil), "GET", "/api/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"OK","message":"PCOS Prediction API is running"}`, w.Body.String())
}

func TestPredictSuccess(t *testing.T) {
	engine := &fakeAssessor{res: moderate}
	router := newTestRouter(engine, nil, nil)

	w := doRequest(t, router, "POST", "/api/predict", `{"age":"25","weight":70,"height":165,"symptoms":["Acne"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(42), body["score"])
	assert.Equal(t, 0.4217, body["probability"])
	assert.Equal(t, "Moderate", body["riskLevel"])
	assert.Equal(t, float64(0), body["prediction"])
	assert.Equal(t, scoring.GuidanceFor(scoring.RiskModerate).Summary, body["summary"])
	assert.Len(t, body["recommendations"], 4)
	assert.NotContains(t, body, "id")

	require.Len(t, engine.got, 1)
	assert.Equal(t, []string{"Acne"}, engine.got[0].Symptoms)
}

func TestPredictMissingRequired(t *testing.T) {
	bodies := []string{
		`{}`,
		`{"age":25,"weight":70}`,
		`{"age":25,"height":165,"weight":""}`,
		`{"age":null,"weight":70,"height":165}`,
	}
	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			engine := &fakeAssessor{res: moderate}
			w := doRequest(t, newTestRouter(engine, nil, nil), "POST", "/api/predict", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error":"Missing required fields: age, weight, height"}`, w.Body.String())
			assert.Empty(t, engine.got)
		})
	}
}

func TestPredictBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
		kind string
	}{
		{"malformed", `{"age":`, "InputParseError"},
		{"not an object", `[1,2]`, "InputParseError"},
		{"wrong type", `{"age":25,"weight":70,"height":165,"symptoms":"Acne"}`, "InputTypeError"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, newTestRouter(&fakeAssessor{res: moderate}, nil, nil), "POST", "/api/predict", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			body := decode(t, w)
			assert.Equal(t, tt.kind, body["type"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestPredictEngineErrors(t *testing.T) {
	t.Run("input error from completion", func(t *testing.T) {
		engine := &fakeAssessor{err: apperr.Errorf(apperr.KindInputType, "field height: must be non-zero")}
		w := doRequest(t, newTestRouter(engine, nil, nil), "POST", "/api/predict", `{"age":25,"weight":70,"height":0}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"field height: must be non-zero","type":"InputTypeError"}`, w.Body.String())
	})

	t.Run("inference error", func(t *testing.T) {
		engine := &fakeAssessor{err: apperr.Errorf(apperr.KindInference, "Prediction error: boom")}
		w := doRequest(t, newTestRouter(engine, nil, nil), "POST", "/api/predict", `{"age":25,"weight":70,"height":165}`)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"Failed to process prediction","message":"Prediction error: boom"}`, w.Body.String())
	})

	t.Run("artifacts unavailable", func(t *testing.T) {
		engine := unavailable{err: apperr.Errorf(apperr.KindArtifactNotFound, "Model file not found at models/pcos_model.json")}
		w := doRequest(t, newTestRouter(engine, nil, nil), "POST", "/api/predict", `{"age":25,"weight":70,"height":165}`)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Model file not found at models/pcos_model.json", decode(t, w)["message"])
	})
}

func TestPredictStoresAssessment(t *testing.T) {
	recorder := newMemRecorder()
	router := newTestRouter(&fakeAssessor{res: moderate}, recorder, nil)

	w := doRequest(t, router, "POST", "/api/predict", `{ "age": 25, "weight": 70, "height": 165 }`)
	require.Equal(t, http.StatusOK, w.Code)
	id, ok := decode(t, w)["id"].(string)
	require.True(t, ok)

	w = doRequest(t, router, "GET", "/api/assessments/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, id, body["id"])
	assert.Equal(t, float64(42), body["score"])
	assert.Equal(t, "Moderate", body["riskLevel"])
	assert.Equal(t, map[string]any{"age": float64(25), "weight": float64(70), "height": float64(165)}, body["input"])
}

func TestPredictStorageFailureStillScores(t *testing.T) {
	recorder := newMemRecorder()
	recorder.saveErr = errors.New("disk full")

	w := doRequest(t, newTestRouter(&fakeAssessor{res: moderate}, recorder, nil), "POST", "/api/predict", `{"age":25,"weight":70,"height":165}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, decode(t, w), "id")
}

func TestGetAssessment(t *testing.T) {
	t.Run("storage disabled", func(t *testing.T) {
		w := doRequest(t, newTestRouter(&fakeAssessor{}, nil, nil), "GET", "/api/assessments/"+uuid.NewString(), "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		w := doRequest(t, newTestRouter(&fakeAssessor{}, newMemRecorder(), nil), "GET", "/api/assessments/not-a-uuid", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		w := doRequest(t, newTestRouter(&fakeAssessor{}, newMemRecorder(), nil), "GET", "/api/assessments/"+uuid.NewString(), "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("lookup failure", func(t *testing.T) {
		recorder := newMemRecorder()
		recorder.getErr = errors.New("connection reset")
		w := doRequest(t, newTestRouter(&fakeAssessor{}, recorder, nil), "GET", "/api/assessments/"+uuid.NewString(), "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestRequestID(t *testing.T) {
	router := newTestRouter(&fakeAssessor{}, nil, nil)

	w := doRequest(t, router, "GET", "/healthz", "")
	_, err := uuid.Parse(w.Header().Get(requestIDHeader))
	assert.NoError(t, err)

	req := httptest.NewRequest("GET", "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}

func TestPredictBodyTooLarge(t *testing.T) {
	big := `{"age":25,"weight":70,"height":165,"dietType":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	w := doRequest(t, newTestRouter(&fakeAssessor{res: moderate}, nil, nil), "POST", "/api/predict", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

// Ensure limitBodySize middleware allows small payloads and blocks large ones.
func TestLimitBodySize(t *testing.T) {
	router := gin.New()
	router.Use(limitBodySize(10))
	router.POST("/echo", func(c *gin.Context) {
		_, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "too large"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	t.Run("within limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/echo", strings.NewReader("12345"))
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("over limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/echo", strings.NewReader("01234567890"))
		router.ServeHTTP(w, req)
		if w.Code != http.StatusRequestEntityTooLarge {
			t.Fatalf("expected 413, got %d", w.Code)
		}
	})
}

func TestDetectStaticRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "cmd", "server")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("<html></html>"), 0o600))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	got, err := filepath.EvalSymlinks(detectStaticRoot())
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

// TestPredictEndToEnd runs the real engine on artifacts written to disk.
func TestPredictEndToEnd(t *testing.T) {
	dir := t.TempDir()
	names := features.Names()
	art := config.Artifacts{
		ModelPath:  filepath.Join(dir, "pcos_model.json"),
		SchemaPath: filepath.Join(dir, "feature_order.json"),
	}
	writeJSON(t, art.ModelPath, model.Artifact{
		Kind:      model.KindLogistic,
		Classes:   []int{0, 1},
		NFeatures: len(names),
		Weights:   make([]float64, len(names)),
		Bias:      1,
	})
	writeJSON(t, art.SchemaPath, names)

	engine, err := assessment.Load(art, zap.NewNop())
	require.NoError(t, err)

	w := doRequest(t, newTestRouter(engine, nil, nil), "POST", "/api/predict",
		`{"age":28,"weight":70,"height":165,"cycle":"Irregular","cycleDuration":35,"symptoms":["Weight Gain","Acne"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, float64(73), body["score"])
	assert.Equal(t, 0.7311, body["probability"])
	assert.Equal(t, "High", body["riskLevel"])
	assert.Equal(t, float64(1), body["prediction"])
	assert.Len(t, body["recommendations"], 5)

	w = doRequest(t, newTestRouter(engine, nil, nil), "POST", "/api/predict", `{"age":28,"weight":70,"height":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "InputTypeError", decode(t, w)["type"])
}

func TestLoadEngineFallsBackWhenArtifactsMissing(t *testing.T) {
	dir := t.TempDir()
	engine := loadEngine(config.Artifacts{
		ModelPath:  filepath.Join(dir, "missing.json"),
		SchemaPath: filepath.Join(dir, "missing_order.json"),
	}, zap.NewNop())

	_, err := engine.Assess(features.PartialInput{})
	assert.Equal(t, apperr.KindArtifactNotFound, apperr.KindOf(err))
}

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	server := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}

	done := make(chan error, 1)
	go func() { done <- serve(ctx, server, zap.NewNop()) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestServeReportsListenError(t *testing.T) {
	server := &http.Server{Addr: "127.0.0.1:-1", Handler: http.NotFoundHandler()}
	err := serve(context.Background(), server, zap.NewNop())
	assert.Error(t, err)
}

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
}
