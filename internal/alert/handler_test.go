package alert

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func newTestRouter(e *Engine) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, NewAlertHandler(e, e.audit.(AuditReader)), "")
	return r
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestNotifyEndpointMissingFields(t *testing.T) {
	e := NewEngine(&fakeDispatcher{}, NewLedger(), NewMemoryAudit(), zap.NewNop().Sugar())
	r := newTestRouter(e)

	w := doJSON(r, http.MethodPost, "/api/v1/notify", map[string]string{"patientId": "p-1"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "Missing required fields" {
		t.Errorf("body = %v", body)
	}
}

func TestNotifyEndpointSuccess(t *testing.T) {
	e := NewEngine(&fakeDispatcher{}, NewLedger(), NewMemoryAudit(), zap.NewNop().Sugar())
	r := newTestRouter(e)

	w := doJSON(r, http.MethodPost, "/api/v1/notify", NotifyRequest{
		PatientID:     "p-1",
		PatientName:   "Sam",
		DistressLevel: "elevated",
		Contacts: []ContactRequest{
			{Name: "Alex", Phone: "+15550001", Relationship: "Sister"},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var res Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !res.Success || !res.SMSSent || res.NotifiedContacts != 1 {
		t.Errorf("result = %+v", res)
	}
}

func TestNotifyEndpointMissingFieldsBeforeContacts(t *testing.T) {
	d := &fakeDispatcher{}
	e := NewEngine(d, NewLedger(), NewMemoryAudit(), zap.NewNop().Sugar())
	r := newTestRouter(e)

	w := doJSON(r, http.MethodPost, "/api/v1/notify", NotifyRequest{
		PatientName:   "Sam",
		DistressLevel: "elevated",
		Contacts:      []ContactRequest{{Name: "Alex"}},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "Missing required fields" {
		t.Errorf("body = %v", body)
	}
	if d.Calls() != 0 {
		t.Errorf("dispatcher called")
	}
}

func TestNotifyEndpointRejectsBadContact(t *testing.T) {
	e := NewEngine(&fakeDispatcher{}, NewLedger(), NewMemoryAudit(), zap.NewNop().Sugar())
	r := newTestRouter(e)

	w := doJSON(r, http.MethodPost, "/api/v1/notify", NotifyRequest{
		PatientID:     "p-1",
		PatientName:   "Sam",
		DistressLevel: "elevated",
		Contacts:      []ContactRequest{{Name: "Alex"}},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d", w.Code)
	}
}

func TestAlertLedgerEndpoints(t *testing.T) {
	e := NewEngine(&fakeDispatcher{}, NewLedger(), NewMemoryAudit(), zap.NewNop().Sugar())
	e.Ledger().Append(Alert{ID: "a-1", PatientID: "p-1"})
	e.Ledger().Append(Alert{ID: "a-2", PatientID: "p-2"})
	r := newTestRouter(e)

	w := doJSON(r, http.MethodGet, "/api/v1/alerts?patient_id=p-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var listed struct {
		Data []Alert `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listed.Data) != 1 || listed.Data[0].ID != "a-1" {
		t.Errorf("listed = %+v", listed.Data)
	}

	if w := doJSON(r, http.MethodPost, "/api/v1/alerts/a-1/acknowledge", nil); w.Code != http.StatusOK {
		t.Errorf("acknowledge status = %d", w.Code)
	}
	if a, _ := e.Ledger().Get("a-1"); !a.Acknowledged {
		t.Errorf("alert not acknowledged")
	}
	w = doJSON(r, http.MethodPost, "/api/v1/alerts/missing/acknowledge", nil)
	if w.Code != http.StatusOK {
		t.Errorf("acknowledge unknown status = %d", w.Code)
	}
	var ack struct {
		Data map[string]bool `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &ack); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ack.Data["acknowledged"] || ack.Data["changed"] {
		t.Errorf("unknown acknowledge = %v", ack.Data)
	}

	if w := doJSON(r, http.MethodDelete, "/api/v1/alerts/a-2", nil); w.Code != http.StatusOK {
		t.Errorf("dismiss status = %d", w.Code)
	}
	if e.Ledger().Len() != 1 {
		t.Errorf("ledger len = %d", e.Ledger().Len())
	}
}

func TestAuditTrailEndpoint(t *testing.T) {
	e := NewEngine(&fakeDispatcher{}, NewLedger(), NewMemoryAudit(), zap.NewNop().Sugar())
	r := newTestRouter(e)

	doJSON(r, http.MethodPost, "/api/v1/notify", NotifyRequest{PatientID: "p-1", PatientName: "Sam", DistressLevel: "mild"})

	if w := doJSON(r, http.MethodGet, "/api/v1/audit", nil); w.Code != http.StatusBadRequest {
		t.Errorf("missing patient_id status = %d", w.Code)
	}

	w := doJSON(r, http.MethodGet, "/api/v1/audit?patient_id=p-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body struct {
		Data []AuditEntry `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data) != 2 || body.Data[0].Kind != AuditSkipped {
		t.Errorf("entries = %+v", body.Data)
	}
}
