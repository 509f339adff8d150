package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/unitprice/pkg/logger"
	"github.com/ghuser/unitprice/pkg/session"
	"github.com/ghuser/unitprice/services/comparison/application/handlers"
	appsvcs "github.com/ghuser/unitprice/services/comparison/application/services"
)

// asOwner stands in for session.RequireSession.
func asOwner(owner uuid.UUID) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(session.WithOwnerID(r.Context(), owner)))
		})
	}
}

type client struct {
	t *testing.T
	h http.Handler
}

func newClient(t *testing.T, svcs *appsvcs.Services, owner uuid.UUID) *client {
	t.Helper()
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		if owner != uuid.Nil {
			r.Use(asOwner(owner))
		}
		ComparisonRoutes(r, svcs)
	})
	return &client{t: t, h: r}
}

func (c *client) do(method, path, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	var rdr io.Reader = http.NoBody
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	c.h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) handlers.ComparisonResponse {
	t.Helper()
	var resp handlers.ComparisonResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return resp
}

func newServices() *appsvcs.Services {
	return &appsvcs.Services{Comparison: appsvcs.NewComparisonService(appsvcs.Options{MaxItems: 10}, logger.Nop())}
}

func TestComparisonRoutes_Workflow(t *testing.T) {
	c := newClient(t, newServices(), uuid.New())

	rr := c.do(http.MethodPost, "/api/comparisons", "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	cmp := decode(t, rr)
	if len(cmp.Items) != 1 || cmp.BestDealID != nil {
		t.Fatalf("unexpected new comparison: %+v", cmp)
	}
	if cmp.Items[0].Position != 1 || cmp.Items[0].DisplayUnitPrice != "---" || cmp.Items[0].UnitPrice != nil {
		t.Fatalf("unexpected blank item: %+v", cmp.Items[0])
	}
	base := "/api/comparisons/" + cmp.ID.String()

	rr = c.do(http.MethodPost, base+"/items", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("add: expected 200, got %d", rr.Code)
	}
	cmp = decode(t, rr)
	first, second := cmp.Items[0].ID, cmp.Items[1].ID

	edits := []struct {
		item uuid.UUID
		body string
	}{
		{first, `{"field":"name","value":"Large"}`},
		{first, `{"field":"price","value":"1000"}`},
		{first, `{"field":"weight","value":"250"}`},
		{second, `{"field":"price","value":"300"}`},
		{second, `{"field":"weight","value":"100"}`},
	}
	for _, e := range edits {
		rr = c.do(http.MethodPatch, base+"/items/"+e.item.String(), e.body)
		if rr.Code != http.StatusOK {
			t.Fatalf("patch %s: expected 200, got %d: %s", e.body, rr.Code, rr.Body.String())
		}
	}
	cmp = decode(t, rr)

	if cmp.Items[0].Name != "Large" || cmp.Items[0].Price != "1000" {
		t.Fatalf("edits not applied: %+v", cmp.Items[0])
	}
	if cmp.Items[0].DisplayUnitPrice != "¥ 4.00 /g" || cmp.Items[1].DisplayUnitPrice != "¥ 3.00 /g" {
		t.Fatalf("unexpected display prices: %q, %q", cmp.Items[0].DisplayUnitPrice, cmp.Items[1].DisplayUnitPrice)
	}
	if cmp.BestDealID == nil || *cmp.BestDealID != second || !cmp.Items[1].IsBestDeal || cmp.Items[0].IsBestDeal {
		t.Fatalf("expected second item as best deal: %+v", cmp)
	}
	if cmp.Items[1].Position != 2 {
		t.Fatalf("expected position 2, got %d", cmp.Items[1].Position)
	}

	rr = c.do(http.MethodGet, base, "")
	if rr.Code != http.StatusOK || len(decode(t, rr).Items) != 2 {
		t.Fatalf("get: unexpected response %d %s", rr.Code, rr.Body.String())
	}

	rr = c.do(http.MethodDelete, base+"/items/"+second.String(), "")
	cmp = decode(t, rr)
	if len(cmp.Items) != 1 || cmp.BestDealID == nil || *cmp.BestDealID != first {
		t.Fatalf("remove: unexpected snapshot %+v", cmp)
	}

	rr = c.do(http.MethodPost, base+"/reset", "")
	cmp = decode(t, rr)
	if len(cmp.Items) != 1 || cmp.Items[0].ID == first || cmp.BestDealID != nil {
		t.Fatalf("reset: unexpected snapshot %+v", cmp)
	}

	if rr = c.do(http.MethodDelete, base, ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rr.Code)
	}
	if rr = c.do(http.MethodGet, base, ""); rr.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", rr.Code)
	}
}

func TestComparisonRoutes_Errors(t *testing.T) {
	svcs := newServices()
	c := newClient(t, svcs, uuid.New())
	cmp := decode(t, c.do(http.MethodPost, "/api/comparisons", ""))
	base := "/api/comparisons/" + cmp.ID.String()
	itemPath := base + "/items/" + cmp.Items[0].ID.String()

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"malformed comparison id", http.MethodGet, "/api/comparisons/not-a-uuid", "", http.StatusBadRequest},
		{"malformed item id", http.MethodPatch, base + "/items/42", `{"field":"price","value":"1"}`, http.StatusBadRequest},
		{"unknown comparison", http.MethodGet, "/api/comparisons/" + uuid.NewString(), "", http.StatusNotFound},
		{"unknown field", http.MethodPatch, itemPath, `{"field":"unit_price","value":"1"}`, http.StatusUnprocessableEntity},
		{"missing field", http.MethodPatch, itemPath, `{"value":"1"}`, http.StatusUnprocessableEntity},
		{"malformed json", http.MethodPatch, itemPath, `{`, http.StatusBadRequest},
		{"unknown item is ignored", http.MethodPatch, base + "/items/" + uuid.NewString(), `{"field":"price","value":"1"}`, http.StatusOK},
		{"remove unknown item is ignored", http.MethodDelete, base + "/items/" + uuid.NewString(), "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := c.do(tt.method, tt.path, tt.body)
			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
			if tt.wantStatus >= 400 && !strings.Contains(rr.Body.String(), `"error"`) {
				t.Fatalf("expected JSON error body, got %s", rr.Body.String())
			}
		})
	}

	got := decode(t, c.do(http.MethodGet, base, ""))
	if got.Items[0].Price != "" || got.Items[0].Name != "" {
		t.Fatalf("rejected edits must not change the list: %+v", got.Items[0])
	}
}

func TestComparisonRoutes_PatchStoresValuesAsTyped(t *testing.T) {
	svcs := newServices()
	c := newClient(t, svcs, uuid.New())
	cmp := decode(t, c.do(http.MethodPost, "/api/comparisons", ""))
	itemPath := "/api/comparisons/" + cmp.ID.String() + "/items/" + cmp.Items[0].ID.String()

	longPrice := strings.Repeat("9", 65)
	edits := []string{
		`{"field":"name","value":"a\u0007b"}`,
		`{"field":"weight","value":"3"}`,
		`{"field":"price","value":"` + longPrice + `"}`,
	}
	for _, body := range edits {
		if rr := c.do(http.MethodPatch, itemPath, body); rr.Code != http.StatusOK {
			t.Fatalf("PATCH %s: expected 200, got %d: %s", body, rr.Code, rr.Body.String())
		}
	}

	got := decode(t, c.do(http.MethodGet, "/api/comparisons/"+cmp.ID.String(), ""))
	it := got.Items[0]
	if it.Name != "a\u0007b" || it.Price != longPrice {
		t.Fatalf("values must be stored as sent: %+v", it)
	}
	if it.UnitPrice == nil || got.BestDealID == nil || *got.BestDealID != it.ID {
		t.Fatalf("a long numeric price still yields a unit price: %+v", got)
	}

	if rr := c.do(http.MethodPatch, itemPath, `{"field":"price","value":"`+strings.Repeat("9x", 40)+`"}`); rr.Code != http.StatusOK {
		t.Fatalf("garbage price: expected 200, got %d", rr.Code)
	}
	got = decode(t, c.do(http.MethodGet, "/api/comparisons/"+cmp.ID.String(), ""))
	if got.Items[0].UnitPrice != nil || got.Items[0].DisplayUnitPrice != "---" || got.BestDealID != nil {
		t.Fatalf("unparsable price must leave the unit price unavailable: %+v", got)
	}
}

func TestComparisonRoutes_OwnerScoping(t *testing.T) {
	svcs := newServices()
	alice := newClient(t, svcs, uuid.New())
	bob := newClient(t, svcs, uuid.New())

	cmp := decode(t, alice.do(http.MethodPost, "/api/comparisons", ""))
	base := "/api/comparisons/" + cmp.ID.String()

	for _, req := range []struct{ method, path string }{
		{http.MethodGet, base},
		{http.MethodPost, base + "/items"},
		{http.MethodPost, base + "/reset"},
		{http.MethodDelete, base},
	} {
		if rr := bob.do(req.method, req.path, ""); rr.Code != http.StatusNotFound {
			t.Errorf("%s %s by another owner: expected 404, got %d", req.method, req.path, rr.Code)
		}
	}
	if rr := alice.do(http.MethodGet, base, ""); rr.Code != http.StatusOK {
		t.Fatalf("owner lost access: %d", rr.Code)
	}
}

func TestComparisonRoutes_RequireSession(t *testing.T) {
	c := newClient(t, newServices(), uuid.Nil)
	if rr := c.do(http.MethodPost, "/api/comparisons", ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a session owner, got %d", rr.Code)
	}
}
