package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"manifesthub/internal/middleware"
	"manifesthub/internal/schema"
)

type fakeManifestRepo struct {
	rows     []schema.ManifestRow
	batched  []schema.RowUpdate
	batchErr error
}

func (f *fakeManifestRepo) AllRows(ctx context.Context) ([]schema.ManifestRow, error) {
	out := make([]schema.ManifestRow, len(f.rows))
	copy(out, f.rows)
	return out, nil
}

func (f *fakeManifestRepo) Row(ctx context.Context, id string) (schema.ManifestRow, error) {
	for _, r := range f.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return schema.ManifestRow{}, errors.New("no rows returned")
}

func (f *fakeManifestRepo) InsertRows(ctx context.Context, rows []schema.ManifestRow) ([]schema.ManifestRow, error) {
	for i := range rows {
		if rows[i].ID == "" {
			rows[i].ID = "generated"
		}
	}
	f.rows = append(f.rows, rows...)
	return rows, nil
}

func (f *fakeManifestRepo) UpdateRow(ctx context.Context, row schema.ManifestRow) error {
	for i := range f.rows {
		if f.rows[i].ID == row.ID {
			f.rows[i] = row
			return nil
		}
	}
	return errors.New("row not found")
}

func (f *fakeManifestRepo) DeleteRows(ctx context.Context, ids []string) error {
	return nil
}

func (f *fakeManifestRepo) BatchUpdateETAs(ctx context.Context, updates []schema.RowUpdate) error {
	if f.batchErr != nil {
		return f.batchErr
	}
	f.batched = append(f.batched, updates...)
	return nil
}

type fakeScheduleRepo struct {
	records []schema.ScheduleRecord
	cleared []string
}

func (f *fakeScheduleRepo) AllSchedules(ctx context.Context) ([]schema.ScheduleRecord, error) {
	return f.records, nil
}

func (f *fakeScheduleRepo) InsertSchedules(ctx context.Context, records []schema.ScheduleRecord) error {
	f.records = append(f.records, records...)
	return nil
}

func (f *fakeScheduleRepo) ClearPort(ctx context.Context, port string) error {
	f.cleared = append(f.cleared, port)
	kept := f.records[:0]
	for _, rec := range f.records {
		if rec.Port != port {
			kept = append(kept, rec)
		}
	}
	f.records = kept
	return nil
}

type fakeCache struct {
	data        map[string][]byte
	invalidated []string
}

func (c *fakeCache) Get(namespace, key string) ([]byte, bool) {
	v, ok := c.data[namespace+"/"+key]
	return v, ok
}

func (c *fakeCache) AddToChannel(namespace, key string, value []byte, expiry time.Duration) {
	if c.data == nil {
		c.data = make(map[string][]byte)
	}
	c.data[namespace+"/"+key] = value
}

func (c *fakeCache) Set(watchKey string) error { return nil }

func (c *fakeCache) Invalidate(namespace, key string) {
	c.invalidated = append(c.invalidated, namespace+"/"+key)
	delete(c.data, namespace+"/"+key)
}

func decodeMapping(t *testing.T, rec *httptest.ResponseRecorder) MappingResponse {
	t.Helper()
	var resp MappingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestApplyMappingHandlerNoScheduleData(t *testing.T) {
	or := &fakeManifestRepo{rows: []schema.ManifestRow{{ID: "1", VesselName: "MSC BUSAN"}}}
	handler := ApplyMappingHandler(or, &fakeScheduleRepo{}, &fakeCache{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/manifest/apply-eta", nil))

	resp := decodeMapping(t, rec)
	assert.Equal(t, OutcomeNoScheduleData, resp.Outcome)
	assert.Zero(t, resp.UpdatedCount)
}

func TestApplyMappingHandlerNoMatches(t *testing.T) {
	or := &fakeManifestRepo{rows: []schema.ManifestRow{{ID: "1", VesselName: "HMM ALGECIRAS"}}}
	sr := &fakeScheduleRepo{records: []schema.ScheduleRecord{
		{Port: schema.PortBusan, Vessel: "EVER GIVEN", ETA: "2026-09-01"},
	}}
	handler := ApplyMappingHandler(or, sr, &fakeCache{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/manifest/apply-eta", nil))

	resp := decodeMapping(t, rec)
	assert.Equal(t, OutcomeNoMatches, resp.Outcome)
}

func TestApplyMappingHandlerMapsAndPersists(t *testing.T) {
	or := &fakeManifestRepo{rows: []schema.ManifestRow{
		{ID: "1", VesselName: "MSC Busan"},
		{VesselName: "MSC Busan"}, // transient row, changed but not persisted
	}}
	sr := &fakeScheduleRepo{records: []schema.ScheduleRecord{
		{Port: schema.PortBusan, Vessel: "MSC BUSAN", ETA: "2026-09-03"},
		{Port: schema.PortGwangyang, Vessel: "MSC BUSAN", ETA: "2026-09-01"},
	}}
	cache := &fakeCache{}
	handler := ApplyMappingHandler(or, sr, cache)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/manifest/apply-eta", nil))

	resp := decodeMapping(t, rec)
	assert.Equal(t, OutcomeMapped, resp.Outcome)
	assert.Equal(t, 2, resp.UpdatedCount)
	assert.Empty(t, resp.PersistWarning)

	require.Len(t, or.batched, 1)
	assert.Equal(t, "1", or.batched[0].ID)
	assert.Equal(t, "2026-09-01 B G", or.batched[0].ETA)
	assert.Contains(t, cache.invalidated, rowsNamespace+"/"+cacheKeyAll)
}

func TestApplyMappingHandlerReportsPersistFailure(t *testing.T) {
	or := &fakeManifestRepo{
		rows:     []schema.ManifestRow{{ID: "1", VesselName: "MSC BUSAN"}},
		batchErr: errors.New("ORA-12170: connect timeout"),
	}
	sr := &fakeScheduleRepo{records: []schema.ScheduleRecord{
		{Port: schema.PortBusan, Vessel: "MSC BUSAN", ETA: "2026-09-03"},
	}}
	handler := ApplyMappingHandler(or, sr, &fakeCache{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/manifest/apply-eta", nil))

	resp := decodeMapping(t, rec)
	assert.Equal(t, OutcomeMapped, resp.Outcome)
	assert.Equal(t, 1, resp.UpdatedCount)
	assert.Contains(t, resp.PersistWarning, "ORA-12170")
}

func TestListRowsHandlerServesCacheHit(t *testing.T) {
	cached := []byte(`{"rows":[{"vesselName":"CACHED"}]}`)
	cache := &fakeCache{data: map[string][]byte{rowsNamespace + "/" + cacheKeyAll: cached}}
	handler := ListRowsHandler(&fakeManifestRepo{}, cache)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/manifest/rows", nil))

	assert.Equal(t, string(cached), rec.Body.String())
}

func TestListRowsHandlerPopulatesCache(t *testing.T) {
	or := &fakeManifestRepo{rows: []schema.ManifestRow{{ID: "1", VesselName: "EVER GIVEN"}}}
	cache := &fakeCache{}
	handler := ListRowsHandler(or, cache)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/manifest/rows", nil))

	assert.Contains(t, rec.Body.String(), "EVER GIVEN")
	_, ok := cache.Get(rowsNamespace, cacheKeyAll)
	assert.True(t, ok)
}

func TestUpdateRowHandlerAppliesFieldsAndClearsMappedFlag(t *testing.T) {
	or := &fakeManifestRepo{rows: []schema.ManifestRow{
		{ID: "1", VesselName: "MSC BUSAN", ETA: "2026-09-01 B", IsMapped: true},
	}}
	handler := UpdateRowHandler(or, &fakeCache{})

	body := schema.UpdateRowRequest{Fields: map[string]string{
		schema.HeaderETA:    "2026-10-01",
		schema.HeaderStored: "Y",
		"Remark":            "urgent",
	}}
	req := httptest.NewRequest(http.MethodPut, "/manifest/rows/1", nil)
	req.SetPathValue("id", "1")
	req = req.WithContext(context.WithValue(req.Context(), middleware.UpdateRowBodyKey, body))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	updated := or.rows[0]
	assert.Equal(t, "2026-10-01", updated.ETA)
	assert.False(t, updated.IsMapped)
	assert.Equal(t, "Y", updated.Stored)
	assert.Equal(t, "urgent", updated.Extra["Remark"])
}

func TestPasteScheduleHandlerReplacesPort(t *testing.T) {
	sr := &fakeScheduleRepo{records: []schema.ScheduleRecord{
		{ID: "old", Port: schema.PortBusan, Vessel: "OLD VESSEL", ETA: "2026-01-01"},
	}}
	cache := &fakeCache{}
	handler := PasteScheduleHandler(sr, cache)

	paste := "Vessel\tVoyage\tBerth\tArrival\tDeparture\n" +
		"MSC BUSAN\t2609E\tB3\t03/09/2026\t05/09/2026\n"
	req := httptest.NewRequest(http.MethodPost, "/schedules/Busan", strings.NewReader(paste))
	req.SetPathValue("port", schema.PortBusan)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{schema.PortBusan}, sr.cleared)
	require.Len(t, sr.records, 1)
	assert.Equal(t, "MSC BUSAN", sr.records[0].Vessel)
	assert.Equal(t, "2026-09-03", sr.records[0].ETA)
	assert.Contains(t, cache.invalidated, schedulesNamespace+"/"+cacheKeyAll)
}

func TestPasteScheduleHandlerRejectsEmptyPaste(t *testing.T) {
	sr := &fakeScheduleRepo{}
	handler := PasteScheduleHandler(sr, &fakeCache{})

	req := httptest.NewRequest(http.MethodPost, "/schedules/Busan", strings.NewReader("Vessel\tVoyage\tBerth\tArrival\tDeparture\n"))
	req.SetPathValue("port", schema.PortBusan)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, sr.cleared)
}

func buildUpload(t *testing.T, fieldName string) (*bytes.Buffer, string) {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Client", "Vessel Name", "ETA"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"ACME", "MSC BUSAN", "2026-09-03"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"GLOBEX", "EVER GIVEN", ""}))
	workbook, err := f.WriteToBuffer()
	require.NoError(t, err)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(fieldName, "manifest.xlsx")
	require.NoError(t, err)
	_, err = part.Write(workbook.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestUploadManifestHandlerParsesRows(t *testing.T) {
	body, contentType := buildUpload(t, "file")
	req := httptest.NewRequest(http.MethodPost, "/manifest/upload", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	UploadManifestHandler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		FileName string               `json:"fileName"`
		Headers  []string             `json:"headers"`
		Rows     []schema.ManifestRow `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "manifest.xlsx", resp.FileName)
	assert.Equal(t, []string{"Client", "Vessel Name", "ETA"}, resp.Headers)
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, "MSC BUSAN", resp.Rows[0].VesselName)
	assert.Empty(t, resp.Rows[0].ID)
}

func TestUploadManifestHandlerEnforcesRowLimit(t *testing.T) {
	body, contentType := buildUpload(t, "file")
	req := httptest.NewRequest(http.MethodPost, "/manifest/upload", body)
	req.Header.Set("Content-Type", contentType)
	appConfig := map[string]interface{}{"maxUploadRows": 1}
	req = req.WithContext(context.WithValue(req.Context(), middleware.AppConfigKey, appConfig))

	rec := httptest.NewRecorder()
	UploadManifestHandler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadManifestHandlerRejectsMissingFile(t *testing.T) {
	body, contentType := buildUpload(t, "attachment")
	req := httptest.NewRequest(http.MethodPost, "/manifest/upload", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	UploadManifestHandler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecentLogsHandlerRejectsBadLimit(t *testing.T) {
	handler := RecentLogsHandler(&fakeLogRepo{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logs?limit=zero", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeLogRepo struct {
	pingErr error
	logs    []schema.VesselLog
}

func (f *fakeLogRepo) LogActivity(ctx context.Context, vesselName, status string) (string, error) {
	f.logs = append(f.logs, schema.VesselLog{ID: "log-1", VesselName: vesselName, Status: status})
	return "log-1", nil
}

func (f *fakeLogRepo) RecentLogs(ctx context.Context, limit int) ([]schema.VesselLog, error) {
	if limit < len(f.logs) {
		return f.logs[:limit], nil
	}
	return f.logs, nil
}

func (f *fakeLogRepo) Ping(ctx context.Context) error { return f.pingErr }

func TestHealthCheckHandlerReportsStorageFailure(t *testing.T) {
	handler := HealthCheckHandler(&fakeLogRepo{pingErr: errors.New("ORA-12541: no listener")})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealthCheckHandlerOK(t *testing.T) {
	handler := HealthCheckHandler(&fakeLogRepo{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Health check successful")
}
