package httpapi

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/hperssn/buildcalc/internal/admin"
	"github.com/hperssn/buildcalc/internal/catalog"
	"github.com/hperssn/buildcalc/internal/domain"
	"github.com/hperssn/buildcalc/internal/estimate"
	"github.com/hperssn/buildcalc/internal/metrics"
	"github.com/hperssn/buildcalc/internal/runner"
	"github.com/hperssn/buildcalc/internal/storage"
)

func newServer(t *testing.T) (*httptest.Server, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	reg := prometheus.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)

	manager := runner.NewManager(
		estimate.New(store, nil, rec),
		admin.New(store, []string{"op"}, nil, rec),
		nil, rec,
	)
	srv := httptest.NewServer(NewRouter(manager, reg, nil))
	t.Cleanup(srv.Close)
	return srv, store
}

func do(t *testing.T, srv *httptest.Server, method, path, identity, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if identity != "" {
		req.Header.Set("X-Auth-User", identity)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func reply(t *testing.T, srv *httptest.Server, method, path, identity, body string) domain.Reply {
	t.Helper()
	resp := do(t, srv, method, path, identity, body)
	require.Equal(t, http.StatusOK, resp.StatusCode, path)

	var r domain.Reply
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&r))
	return r
}

func TestIdentityRequired(t *testing.T) {
	srv, _ := newServer(t)

	resp := do(t, srv, http.MethodPost, "/estimate/start", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestIdentityHeaders(t *testing.T) {
	srv, _ := newServer(t)

	for _, h := range identityHeaders {
		req, err := http.NewRequest(http.MethodGet, srv.URL+"/estimate", nil)
		require.NoError(t, err)
		req.Header.Set(h, "user-"+h)
		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, h)
	}
}

func TestEstimateOverHTTP(t *testing.T) {
	srv, _ := newServer(t)

	r := reply(t, srv, http.MethodGet, "/estimate", "u", "")
	assert.Equal(t, domain.StageIdle, r.Stage)

	r = reply(t, srv, http.MethodPost, "/estimate/start", "u", "")
	assert.Equal(t, domain.StageAwaitingArea, r.Stage)

	r = reply(t, srv, http.MethodPost, "/messages", "u", `{"text":"120"}`)
	assert.Equal(t, domain.StageChoosingFoundation, r.Stage)
	require.Len(t, r.Options, 3)
	assert.Equal(t, 216000.0, r.Options[1].PreviewCost)

	reply(t, srv, http.MethodPost, "/estimate/pick/foundation/strip", "u", "")
	reply(t, srv, http.MethodPost, "/estimate/pick/walls/brick", "u", "")
	reply(t, srv, http.MethodPost, "/estimate/pick/floors/rc", "u", "")
	r = reply(t, srv, http.MethodPost, "/estimate/pick/roof/metal", "u", "")
	assert.Equal(t, domain.StageChoosingExtras, r.Stage)

	r = reply(t, srv, http.MethodPost, "/estimate/extras/electric/toggle", "u", "")
	for _, o := range r.Options {
		assert.Equal(t, o.ID == "electric", o.Selected, o.ID)
	}

	r = reply(t, srv, http.MethodPost, "/estimate/done", "u", "")
	require.NotNil(t, r.Result)
	assert.InDelta(t, 1466400, r.Result.Total, 1e-6)
	assert.Contains(t, r.Text, "1 466 400 ₽")

	resp := do(t, srv, http.MethodGet, "/estimate/export.csv", "u", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	rows, err := csv.NewReader(resp.Body).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1+5+3)

	resp = do(t, srv, http.MethodGet, "/estimate/export.xlsx", "u", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, xlsxContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "estimate.xlsx")
	book, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	defer book.Close()
	header, err := book.GetCellValue("Смета", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Раздел", header)
	label, err := book.GetCellValue("Смета", "D8")
	require.NoError(t, err)
	assert.Equal(t, "Итого:", label)
	total, err := book.GetCellValue("Смета", "E8")
	require.NoError(t, err)
	assert.Equal(t, "1466400", total)

	r = reply(t, srv, http.MethodPost, "/estimate/contact", "u", "")
	assert.Equal(t, domain.StageShowingResult, r.Stage)
}

func TestRejectionIsAReply(t *testing.T) {
	srv, _ := newServer(t)

	reply(t, srv, http.MethodPost, "/estimate/start", "u", "")
	r := reply(t, srv, http.MethodPost, "/messages", "u", `{"text":"10000"}`)
	assert.Equal(t, domain.StageAwaitingArea, r.Stage)
	assert.Contains(t, r.Notice, "20")

	r = reply(t, srv, http.MethodPost, "/estimate/pick/walls/brick", "u", "")
	assert.Equal(t, domain.StageAwaitingArea, r.Stage)
	assert.NotEmpty(t, r.Notice)
}

func TestBadMessageBody(t *testing.T) {
	srv, _ := newServer(t)

	resp := do(t, srv, http.MethodPost, "/messages", "u", `text=120`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExportWithoutResult(t *testing.T) {
	for _, path := range []string{"/estimate/export.csv", "/estimate/export.xlsx"} {
		srv, _ := newServer(t)

		resp := do(t, srv, http.MethodGet, path, "u", "")
		assert.Equal(t, http.StatusConflict, resp.StatusCode, path)

		reply(t, srv, http.MethodPost, "/estimate/start", "u", "")
		resp = do(t, srv, http.MethodGet, path, "u", "")
		assert.Equal(t, http.StatusConflict, resp.StatusCode, path)
	}
}

func TestAdminHiddenFromUsers(t *testing.T) {
	srv, store := newServer(t)
	before := store.Raw()

	unknown := do(t, srv, http.MethodPost, "/no/such/route", "u", "")
	unknownBody, _ := io.ReadAll(unknown.Body)

	for _, path := range []string{"/admin", "/admin/sections/walls/items/brick/toggle", "/admin/import"} {
		resp := do(t, srv, http.MethodPost, path, "u", "")
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, unknown.StatusCode, resp.StatusCode, path)
		assert.Equal(t, unknownBody, body, path)
	}

	resp := do(t, srv, http.MethodGet, "/admin/export", "u", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, before, store.Raw())
}

func TestAdminOverHTTP(t *testing.T) {
	srv, store := newServer(t)

	r := reply(t, srv, http.MethodPost, "/admin", "op", "")
	assert.Equal(t, domain.StageAdminIdle, r.Stage)

	r = reply(t, srv, http.MethodPost, "/admin/sections/walls", "op", "")
	assert.Equal(t, domain.StageAdminChoosingItem, r.Stage)

	r = reply(t, srv, http.MethodPost, "/admin/sections/walls/items/frame/fields/price", "op", "")
	assert.Equal(t, domain.StageAdminWaitingValue, r.Stage)

	r = reply(t, srv, http.MethodPost, "/messages", "op", `{"text":"3300"}`)
	assert.Equal(t, domain.StageAdminChoosingItem, r.Stage)
	assert.Equal(t, "Saved", r.Notice)

	r = reply(t, srv, http.MethodPost, "/admin/coefficients/roofCoefficient", "op", "")
	assert.Equal(t, domain.StageAdminWaitingValue, r.Stage)
	reply(t, srv, http.MethodPost, "/messages", "op", `{"text":"1,3"}`)

	doc, err := store.Get(context.Background())
	require.NoError(t, err)
	frame, _ := doc.Lookup(catalog.SectionWalls, "frame")
	assert.Equal(t, 3300.0, frame.PricePerSquareMeter)
	assert.Equal(t, 1.3, doc.RoofCoefficient)

	resp := do(t, srv, http.MethodGet, "/admin/export", "op", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "config.json")
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var exported catalog.Document
	require.NoError(t, json.Unmarshal(raw, &exported))
	assert.Equal(t, 1.3, exported.RoofCoefficient)

	exported.RoofCoefficient = 1.1
	body, err := json.Marshal(exported)
	require.NoError(t, err)

	reply(t, srv, http.MethodPost, "/admin/import", "op", "")
	r = reply(t, srv, http.MethodPost, "/files", "op", string(body))
	assert.Equal(t, domain.StageAdminIdle, r.Stage)

	doc, err = store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1.1, doc.RoofCoefficient)
}

func TestImportRejectsInvalidFile(t *testing.T) {
	srv, store := newServer(t)
	before := store.Raw()

	reply(t, srv, http.MethodPost, "/admin", "op", "")
	reply(t, srv, http.MethodPost, "/admin/import", "op", "")
	r := reply(t, srv, http.MethodPost, "/files", "op", `[1, 2]`)
	assert.Equal(t, domain.StageAdminImporting, r.Stage)
	assert.NotEmpty(t, r.Notice)
	assert.Equal(t, before, store.Raw())
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newServer(t)
	reply(t, srv, http.MethodPost, "/estimate/start", "u", "")
	do(t, srv, http.MethodPost, "/admin", "u", "")

	resp := do(t, srv, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "buildcalc_estimates_started_total 1")
	assert.Contains(t, string(body), "buildcalc_admin_dropped_total 1")
}

func TestEventsStream(t *testing.T) {
	srv, _ := newServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)
	req.Header.Set("X-Auth-User", "u")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reply(t, srv, http.MethodPost, "/estimate/start", "u", "")

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var r domain.Reply
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &r))
		assert.Equal(t, domain.StageAwaitingArea, r.Stage)
		return
	}
	t.Fatalf("stream ended without a reply: %v", scanner.Err())
}
