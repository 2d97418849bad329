package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	chigo "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/petsearch/internal/domain"
	"github.com/kailas-cloud/petsearch/internal/domain/catalog"
	"github.com/kailas-cloud/petsearch/internal/domain/intent"
	domprofile "github.com/kailas-cloud/petsearch/internal/domain/profile"
	"github.com/kailas-cloud/petsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/petsearch/internal/domain/search/result"
	chatuc "github.com/kailas-cloud/petsearch/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/petsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/petsearch/internal/usecase/search"
	sessionuc "github.com/kailas-cloud/petsearch/internal/usecase/session"
)

// --- Mocks ---

type mockProfiles struct {
	ensureErr error
	saveErr   error
}

func (m *mockProfiles) EnsureCustomer(_ context.Context, _, _ string) error { return m.ensureErr }

func (m *mockProfiles) SavePet(_ context.Context, _ string, _ domprofile.Pet) error {
	return m.saveErr
}

func (m *mockProfiles) Exclusions(_ context.Context, _ string) ([]string, error) {
	return nil, nil
}

type mockRetriever struct {
	candidates []result.Candidate
	err        error
}

func (m *mockRetriever) Retrieve(
	_ context.Context, _ string, _ []float32, _ filter.Expression, _ int,
) ([]result.Candidate, error) {
	return m.candidates, m.err
}

type mockComposer struct{}

func (m *mockComposer) Compose(_ context.Context, _ string, _, _ []string) ([]float32, error) {
	return []float32{1, 0}, nil
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

func newTestRouter(t *testing.T, retriever *mockRetriever, profiles *mockProfiles) (chigo.Router, *chatuc.Service) {
	t.Helper()

	searchSvc := searchuc.New(retriever, &mockComposer{}, zap.NewNop())
	resolver := sessionuc.NewResolver(sessionuc.NewKeywordClassifier(), zap.NewNop())
	chatSvc := chatuc.New(chatuc.NewRegistry(), resolver, searchSvc, profiles, 5, zap.NewNop())
	healthSvc := healthuc.New(&mockPinger{}, nil, nil)

	srv := NewServer(chatSvc, searchSvc, profiles, healthSvc, zap.NewNop())
	r := chigo.NewRouter()
	srv.Register(r)
	return r, chatSvc
}

func doJSON(t *testing.T, r chigo.Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

// --- Tests ---

func TestCreateSession(t *testing.T) {
	r, _ := newTestRouter(t, &mockRetriever{}, &mockProfiles{})

	rr := doJSON(t, r, "POST", "/v1/sessions", `{"customer_id":"cust-1","customer_name":"Dana"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var resp SessionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.SessionID == "" || resp.CustomerID != "cust-1" {
		t.Errorf("response = %+v", resp)
	}
}

func TestCreateSession_MissingCustomerID(t *testing.T) {
	r, _ := newTestRouter(t, &mockRetriever{}, &mockProfiles{})

	rr := doJSON(t, r, "POST", "/v1/sessions", `{}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestPostMessage_UnknownSession(t *testing.T) {
	r, _ := newTestRouter(t, &mockRetriever{}, &mockProfiles{})

	rr := doJSON(t, r, "POST", "/v1/sessions/missing/messages",
		`{"text":"dog food","intent":{"query":"dog food"}}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var resp ErrorResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp.Code != "session_not_found" {
		t.Errorf("error code = %q", resp.Code)
	}
}

func TestPostMessage_Turn(t *testing.T) {
	retriever := &mockRetriever{candidates: []result.Candidate{
		result.NewCandidate(catalog.Product{
			ID: "p1", Name: "Turkey Feast", Brand: "Acme", Price: 20,
			Ingredients: []string{"turkey"},
		}, 0.1),
	}}
	r, chatSvc := newTestRouter(t, retriever, &mockProfiles{})
	sess := chatSvc.Registry().Create("cust-1")

	rr := doJSON(t, r, "POST", "/v1/sessions/"+sess.ID+"/messages",
		`{"text":"salmon-free dog food","intent":{"query":"dog food","exclusions":["salmon"]}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var resp TurnResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Matches) != 1 || resp.Matches[0].Product.ID != "p1" {
		t.Fatalf("matches = %+v", resp.Matches)
	}
	if resp.ContextSummary == "" || resp.ContextSummary == "No active filters" {
		t.Errorf("summary = %q", resp.ContextSummary)
	}
}

func TestGetContext_AfterTurn(t *testing.T) {
	r, chatSvc := newTestRouter(t, &mockRetriever{}, &mockProfiles{})
	sess := chatSvc.Registry().Create("cust-1")

	_, err := chatSvc.Turn(context.Background(), sess.ID, "salmon-free dog food",
		intent.Intent{Query: "dog food", Exclusions: []string{"salmon"}})
	if err != nil {
		t.Fatalf("turn: %v", err)
	}

	rr := doJSON(t, r, "GET", "/v1/sessions/"+sess.ID+"/context", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	var resp ContextResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Exclusions) != 1 || resp.Exclusions[0] != "salmon" {
		t.Errorf("exclusions = %v", resp.Exclusions)
	}
	if len(resp.Turns) != 2 {
		t.Errorf("turns = %v, want the user message and the reply", resp.Turns)
	}
}

func TestDeleteSession(t *testing.T) {
	r, chatSvc := newTestRouter(t, &mockRetriever{}, &mockProfiles{})
	sess := chatSvc.Registry().Create("cust-1")

	rr := doJSON(t, r, "DELETE", "/v1/sessions/"+sess.ID, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rr.Code)
	}

	rr = doJSON(t, r, "GET", "/v1/sessions/"+sess.ID+"/context", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status after delete = %d", rr.Code)
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	r, _ := newTestRouter(t, &mockRetriever{}, &mockProfiles{})

	rr := doJSON(t, r, "POST", "/v1/search", `{"intent":{"query":""}}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var resp ErrorResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp.Code != "invalid_intent" {
		t.Errorf("error code = %q", resp.Code)
	}
}

func TestSearch_RetrievalDown(t *testing.T) {
	retriever := &mockRetriever{err: domain.ErrRetrievalUnavailable}
	r, _ := newTestRouter(t, retriever, &mockProfiles{})

	rr := doJSON(t, r, "POST", "/v1/search", `{"intent":{"query":"dog food"}}`)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestSavePet_UnknownCustomer(t *testing.T) {
	profiles := &mockProfiles{saveErr: domain.ErrCustomerNotFound}
	r, _ := newTestRouter(t, &mockRetriever{}, profiles)

	rr := doJSON(t, r, "POST", "/v1/customers/ghost/pets", `{"name":"Rex","species":"dog"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}

	var resp ErrorResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp.Code != "customer_not_found" {
		t.Errorf("error code = %q", resp.Code)
	}
}

func TestSavePet_MissingName(t *testing.T) {
	r, _ := newTestRouter(t, &mockRetriever{}, &mockProfiles{})

	rr := doJSON(t, r, "POST", "/v1/customers/cust-1/pets", `{"species":"dog"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestHealthCheck_Degraded(t *testing.T) {
	searchSvc := searchuc.New(&mockRetriever{}, &mockComposer{}, zap.NewNop())
	resolver := sessionuc.NewResolver(sessionuc.NewKeywordClassifier(), zap.NewNop())
	chatSvc := chatuc.New(chatuc.NewRegistry(), resolver, searchSvc, &mockProfiles{}, 5, zap.NewNop())
	healthSvc := healthuc.New(&mockPinger{err: context.DeadlineExceeded}, nil, nil)

	srv := NewServer(chatSvc, searchSvc, &mockProfiles{}, healthSvc, zap.NewNop())
	r := chigo.NewRouter()
	srv.Register(r)

	rr := doJSON(t, r, "GET", "/health", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rr.Code)
	}
}
