package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/AliihsanMuhziroglu/phonebook-microservices/internal/domain"
	pkgerrors "github.com/AliihsanMuhziroglu/phonebook-microservices/internal/pkg/errors"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/services"
)

type fakeReports struct {
	report *types.Report
	list   []*types.Report
	err    error
}

func (f *fakeReports) RequestReport(context.Context) (*types.Report, error) { return f.report, f.err }
func (f *fakeReports) List(context.Context) ([]*types.Report, error)         { return f.list, f.err }
func (f *fakeReports) Get(_ context.Context, id uuid.UUID) (*types.Report, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.report == nil || f.report.ID != id {
		return nil, pkgerrors.ErrNotFound
	}
	return f.report, nil
}

type fakePeople struct {
	services.PersonService
	person   *types.Person
	created  services.CreatePersonInput
	contact  services.AddContactInput
	removed  [2]uuid.UUID
	err      error
	listFull *bool
}

func (f *fakePeople) Create(_ context.Context, in services.CreatePersonInput) (*types.Person, error) {
	f.created = in
	return f.person, f.err
}

func (f *fakePeople) List(_ context.Context, full bool) ([]*types.Person, error) {
	f.listFull = &full
	return []*types.Person{f.person}, f.err
}

func (f *fakePeople) Get(context.Context, uuid.UUID) (*types.Person, error) { return f.person, f.err }
func (f *fakePeople) Delete(context.Context, uuid.UUID) error               { return f.err }

func (f *fakePeople) AddContact(_ context.Context, personID uuid.UUID, in services.AddContactInput) (*types.ContactInfo, error) {
	f.contact = in
	if f.err != nil {
		return nil, f.err
	}
	return &types.ContactInfo{ID: uuid.New(), PersonID: personID, Type: in.Type, Value: in.Value}, nil
}

func (f *fakePeople) RemoveContact(_ context.Context, personID, contactID uuid.UUID) error {
	f.removed = [2]uuid.UUID{personID, contactID}
	return f.err
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	r := newEngine()
	r.GET("/health", NewHealthHandler().HealthCheck)
	rec := do(r, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"status":"ok"}` {
		t.Fatalf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}
}

func reportRoutes(svc services.ReportService) *gin.Engine {
	h := NewReportHandler(svc)
	r := newEngine()
	r.POST("/api/reports/request", h.RequestReport)
	r.GET("/api/reports", h.ListReports)
	r.GET("/api/reports/:id", h.GetReport)
	return r
}

func TestRequestReportAccepted(t *testing.T) {
	report := &types.Report{ID: uuid.New(), RequestDate: time.Now().UTC(), Status: types.ReportStatusPreparing}
	r := reportRoutes(&fakeReports{report: report})

	rec := do(r, http.MethodPost, "/api/reports/request", "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != "/api/reports/"+report.ID.String() {
		t.Fatalf("Location = %q", got)
	}
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["uuid"] != report.ID.String() || body["status"] != "Preparing" {
		t.Fatalf("unexpected body %v", body)
	}
	if _, ok := body["items"]; ok {
		t.Fatalf("request response should not carry items")
	}
}

func TestRequestReportBrokerDown(t *testing.T) {
	r := reportRoutes(&fakeReports{err: fmt.Errorf("publish: %w", pkgerrors.ErrUnavailable)})
	rec := do(r, http.MethodPost, "/api/reports/request", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestGetReport(t *testing.T) {
	report := &types.Report{
		ID:     uuid.New(),
		Status: types.ReportStatusCompleted,
		Items:  []types.ReportItem{{ID: uuid.New(), Location: "Izmir", PersonCount: 2, PhoneCount: 3}},
	}
	report.Items[0].ReportID = report.ID
	r := reportRoutes(&fakeReports{report: report, list: []*types.Report{report}})

	rec := do(r, http.MethodGet, "/api/reports/"+report.ID.String(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got struct {
		Status string `json:"status"`
		Items  []struct {
			ReportUUID  string `json:"reportUUID"`
			Location    string `json:"location"`
			PersonCount int    `json:"personCount"`
			PhoneCount  int    `json:"phoneCount"`
		} `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != "Completed" || len(got.Items) != 1 || got.Items[0].PhoneCount != 3 || got.Items[0].ReportUUID != report.ID.String() {
		t.Fatalf("unexpected report %+v", got)
	}

	if rec := do(r, http.MethodGet, "/api/reports/"+uuid.NewString(), ""); rec.Code != http.StatusNotFound {
		t.Fatalf("missing report status = %d", rec.Code)
	}
	if rec := do(r, http.MethodGet, "/api/reports/not-a-uuid", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed id status = %d", rec.Code)
	}

	rec = do(r, http.MethodGet, "/api/reports", "")
	var list []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil || len(list) != 1 {
		t.Fatalf("list: %v %s", err, rec.Body.String())
	}
	if _, ok := list[0]["items"]; ok {
		t.Fatalf("list entries should not carry items")
	}
}

func personRoutes(svc services.PersonService) *gin.Engine {
	h := NewPersonHandler(svc)
	r := newEngine()
	r.POST("/api/people", h.CreatePerson)
	r.GET("/api/people", h.ListPeople)
	r.GET("/api/people/full", h.ListPeopleFull)
	r.GET("/api/people/:id", h.GetPerson)
	r.DELETE("/api/people/:id", h.DeletePerson)
	r.POST("/api/people/:id/contacts", h.AddContact)
	r.DELETE("/api/people/:id/contacts/:contactId", h.RemoveContact)
	return r
}

func TestPersonEndpoints(t *testing.T) {
	p := &types.Person{ID: uuid.New(), FirstName: "Ada", LastName: "Lovelace", ContactInfos: []types.ContactInfo{}}
	svc := &fakePeople{person: p}
	r := personRoutes(svc)

	rec := do(r, http.MethodPost, "/api/people", `{"firstName":"Ada","lastName":"Lovelace","company":"AE"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	if svc.created.FirstName != "Ada" || svc.created.Company == nil || *svc.created.Company != "AE" {
		t.Fatalf("create input not bound: %+v", svc.created)
	}

	if rec := do(r, http.MethodGet, "/api/people/full", ""); rec.Code != http.StatusOK || svc.listFull == nil || !*svc.listFull {
		t.Fatalf("full listing should request contact infos")
	}
	if rec := do(r, http.MethodGet, "/api/people", ""); rec.Code != http.StatusOK || *svc.listFull {
		t.Fatalf("plain listing should not request contact infos")
	}

	rec = do(r, http.MethodPost, "/api/people/"+p.ID.String()+"/contacts", `{"type":"Location","value":"London"}`)
	if rec.Code != http.StatusCreated || svc.contact.Type != types.ContactTypeLocation {
		t.Fatalf("add contact: %d %+v", rec.Code, svc.contact)
	}
	rec = do(r, http.MethodPost, "/api/people/"+p.ID.String()+"/contacts", `{"type":0,"value":"555"}`)
	if rec.Code != http.StatusCreated || svc.contact.Type != types.ContactTypePhone {
		t.Fatalf("ordinal contact type: %d %+v", rec.Code, svc.contact)
	}

	contactID := uuid.New()
	if rec := do(r, http.MethodDelete, "/api/people/"+p.ID.String()+"/contacts/"+contactID.String(), ""); rec.Code != http.StatusNoContent {
		t.Fatalf("remove contact status = %d", rec.Code)
	}
	if svc.removed != [2]uuid.UUID{p.ID, contactID} {
		t.Fatalf("remove contact ids not passed through: %v", svc.removed)
	}
	if rec := do(r, http.MethodDelete, "/api/people/"+p.ID.String(), ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
}

func TestPersonEndpointErrors(t *testing.T) {
	r := personRoutes(&fakePeople{err: pkgerrors.ErrNotFound})
	cases := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodGet, "/api/people/nope", "", http.StatusBadRequest},
		{http.MethodGet, "/api/people/" + uuid.NewString(), "", http.StatusNotFound},
		{http.MethodDelete, "/api/people/" + uuid.NewString(), "", http.StatusNotFound},
		{http.MethodPost, "/api/people", `{"firstName":`, http.StatusBadRequest},
		{http.MethodPost, "/api/people/" + uuid.NewString() + "/contacts", `{"type":7,"value":"x"}`, http.StatusBadRequest},
		{http.MethodDelete, "/api/people/" + uuid.NewString() + "/contacts/bad", "", http.StatusBadRequest},
	}
	for _, tc := range cases {
		if rec := do(r, tc.method, tc.path, tc.body); rec.Code != tc.want {
			t.Fatalf("%s %s = %d, want %d", tc.method, tc.path, rec.Code, tc.want)
		}
	}

	invalid := personRoutes(&fakePeople{err: fmt.Errorf("%w: value is required", pkgerrors.ErrInvalidArgument)})
	rec := do(invalid, http.MethodPost, "/api/people/"+uuid.NewString()+"/contacts", `{"type":"Email","value":""}`)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "invalid_argument") {
		t.Fatalf("validation error: %d %s", rec.Code, rec.Body.String())
	}

	internal := personRoutes(&fakePeople{err: errors.New("db exploded")})
	rec = do(internal, http.MethodGet, "/api/people", "")
	if rec.Code != http.StatusInternalServerError || strings.Contains(rec.Body.String(), "exploded") {
		t.Fatalf("internal error should be masked: %d %s", rec.Code, rec.Body.String())
	}
}
