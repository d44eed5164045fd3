package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	go_ora "github.com/sijms/go-ora/v2"
	log "github.com/sirupsen/logrus"

	"manifesthub/internal/schema"
)

// ManifestRepository is the master database row store.
type ManifestRepository interface {
	AllRows(ctx context.Context) ([]schema.ManifestRow, error)
	Row(ctx context.Context, id string) (schema.ManifestRow, error)
	InsertRows(ctx context.Context, rows []schema.ManifestRow) ([]schema.ManifestRow, error)
	UpdateRow(ctx context.Context, row schema.ManifestRow) error
	DeleteRows(ctx context.Context, ids []string) error
	BatchUpdateETAs(ctx context.Context, updates []schema.RowUpdate) error
}

// ScheduleRepository is the vessel schedule store.
type ScheduleRepository interface {
	AllSchedules(ctx context.Context) ([]schema.ScheduleRecord, error)
	InsertSchedules(ctx context.Context, records []schema.ScheduleRecord) error
	ClearPort(ctx context.Context, port string) error
}

// VesselLogRepository is the activity log store, also used as the storage
// liveness probe.
type VesselLogRepository interface {
	LogActivity(ctx context.Context, vesselName, status string) (string, error)
	RecentLogs(ctx context.Context, limit int) ([]schema.VesselLog, error)
	Ping(ctx context.Context) error
}

// Settings represents the Oracle connection configuration
type OracleSettings struct {
	DBUser      *string
	DBPassword  *string
	Host        *string
	Port        *int
	ServiceName *string
}

// OracleDBConnectionPool implements the three repository interfaces on one
// shared connection pool.
type OracleDBConnectionPool struct {
	db         *sql.DB
	maxRetries int
}

const (
	selectRowsSQL = `SELECT id, client, vessel_name, supplier, shipper, po_no, eta, stored, is_mapped, upload_date, extra
FROM master_rows ORDER BY upload_date ASC, id ASC`
	selectRowSQL = `SELECT id, client, vessel_name, supplier, shipper, po_no, eta, stored, is_mapped, upload_date, extra
FROM master_rows WHERE id = :id`
	insertRowSQL = `INSERT INTO master_rows (id, client, vessel_name, supplier, shipper, po_no, eta, stored, is_mapped, upload_date, extra)
VALUES (:id, :client, :vesselName, :supplier, :shipper, :poNo, :eta, :stored, :isMapped, :uploadDate, :extra)`
	updateRowSQL = `UPDATE master_rows SET client = :client, vessel_name = :vesselName, supplier = :supplier, shipper = :shipper,
po_no = :poNo, eta = :eta, stored = :stored, is_mapped = :isMapped, extra = :extra WHERE id = :id`
	deleteRowSQL = `DELETE FROM master_rows WHERE id = :id`
	updateETASQL = `UPDATE master_rows SET eta = :eta, is_mapped = :isMapped WHERE id = :id`

	selectSchedulesSQL = `SELECT id, port, vessel, eta, etd, service, TO_CHAR(created_at, 'YYYY-MM-DD HH24:MI:SS')
FROM vessel_schedules ORDER BY created_at DESC`
	insertScheduleSQL = `INSERT INTO vessel_schedules (id, port, vessel, eta, etd, service, created_at)
VALUES (:id, :port, :vessel, :eta, :etd, :service, SYSTIMESTAMP)`
	clearPortSQL = `DELETE FROM vessel_schedules WHERE port = :port`

	insertLogSQL = `INSERT INTO vessel_logs (id, vessel_name, status, logged_at) VALUES (:id, :vesselName, :status, SYSTIMESTAMP)`
	selectLogSQL = `SELECT id, vessel_name, status, TO_CHAR(logged_at, 'YYYY-MM-DD HH24:MI:SS')
FROM vessel_logs ORDER BY logged_at DESC FETCH FIRST :limitNum ROWS ONLY`
)

// NewOracleDBConnectionPool creates the shared pool with connect retries and
// a liveness ping, in the same shape as the upstream schedule services use.
func NewOracleDBConnectionPool(settings OracleSettings, concurrency, maxRetries int) (*OracleDBConnectionPool, error) {
	//instead of fetching rows one by one, we fetch multiple rows in one network operation
	urlOptions := map[string]string{
		"PREFETCH_ROWS": "500",
	}
	connStr := go_ora.BuildUrl(*settings.Host, *settings.Port, *settings.ServiceName, *settings.DBUser, *settings.DBPassword, urlOptions)
	var db *sql.DB
	var err error

	for retry := 0; retry <= maxRetries; retry++ {
		db, err = sql.Open("oracle", connStr)
		if err == nil {
			break
		}
		log.Errorf("attempt %d: error opening database connection: %v", retry+1, err)
		if retry < maxRetries {
			time.Sleep(time.Second * time.Duration(retry+1))
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection after %d retries: %w", maxRetries, err)
	}

	db.SetMaxOpenConns(concurrency)
	db.SetMaxIdleConns(100)
	db.SetConnMaxIdleTime(10 * time.Minute)
	db.SetConnMaxLifetime(20 * time.Minute)

	pool := &OracleDBConnectionPool{db: db, maxRetries: maxRetries}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for retry := 0; retry <= maxRetries; retry++ {
		err = pool.db.PingContext(ctx)
		if err == nil {
			log.Info("Connected To Oracle DB connection pool")
			break
		}
		log.Errorf("attempt %d: failed to connect to Oracle DB: %v", retry+1, err)
		if retry < maxRetries {
			time.Sleep(time.Second * time.Duration(retry+2))
		}
	}
	if err != nil {
		pool.db.Close()
		return nil, fmt.Errorf("failed to connect to Oracle DB after %d retries: %w", maxRetries, err)
	}
	return pool, nil
}

func (p *OracleDBConnectionPool) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// AllRows returns the whole master database ordered by upload date.
func (p *OracleDBConnectionPool) AllRows(ctx context.Context) ([]schema.ManifestRow, error) {
	rows, err := p.db.QueryContext(ctx, selectRowsSQL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Errorf("error closing rows: %v", closeErr)
		}
	}()

	var result []schema.ManifestRow
	for rows.Next() {
		var r schema.ManifestRow
		var isMapped int
		var client, vessel, supplier, shipper, poNo, eta, stored, uploadDate, extra sql.NullString
		err := rows.Scan(&r.ID, &client, &vessel, &supplier, &shipper,
			&poNo, &eta, &stored, &isMapped, &uploadDate, &extra)
		if err != nil {
			log.Errorf("row scan error: %v", err)
			continue
		}
		r.Client, r.VesselName, r.Supplier = client.String, vessel.String, supplier.String
		r.Shipper, r.PONo, r.ETA = shipper.String, poNo.String, eta.String
		r.Stored, r.UploadDate = stored.String, uploadDate.String
		r.IsMapped = isMapped == 1
		if extra.Valid && extra.String != "" {
			if err := json.Unmarshal([]byte(extra.String), &r.Extra); err != nil {
				log.Errorf("extra column decode error for row %s: %v", r.ID, err)
			}
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// Row returns one master row by its durable ID.
func (p *OracleDBConnectionPool) Row(ctx context.Context, id string) (schema.ManifestRow, error) {
	var r schema.ManifestRow
	var isMapped int
	var client, vessel, supplier, shipper, poNo, eta, stored, uploadDate, extra sql.NullString
	err := p.db.QueryRowContext(ctx, selectRowSQL, sql.Named("id", id)).Scan(
		&r.ID, &client, &vessel, &supplier, &shipper,
		&poNo, &eta, &stored, &isMapped, &uploadDate, &extra)
	if err != nil {
		return schema.ManifestRow{}, err
	}
	r.Client, r.VesselName, r.Supplier = client.String, vessel.String, supplier.String
	r.Shipper, r.PONo, r.ETA = shipper.String, poNo.String, eta.String
	r.Stored, r.UploadDate = stored.String, uploadDate.String
	r.IsMapped = isMapped == 1
	if extra.Valid && extra.String != "" {
		if err := json.Unmarshal([]byte(extra.String), &r.Extra); err != nil {
			log.Errorf("extra column decode error for row %s: %v", r.ID, err)
		}
	}
	return r, nil
}

// InsertRows saves uploaded rows, assigning each a durable ID. The returned
// slice carries the assigned IDs.
func (p *OracleDBConnectionPool) InsertRows(ctx context.Context, manifestRows []schema.ManifestRow) ([]schema.ManifestRow, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	stmt, err := tx.PrepareContext(ctx, insertRowSQL)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	defer stmt.Close()

	saved := make([]schema.ManifestRow, 0, len(manifestRows))
	for _, r := range manifestRows {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		extra, err := encodeExtra(r.Extra)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		_, err = stmt.ExecContext(ctx,
			sql.Named("id", r.ID), sql.Named("client", r.Client), sql.Named("vesselName", r.VesselName),
			sql.Named("supplier", r.Supplier), sql.Named("shipper", r.Shipper), sql.Named("poNo", r.PONo),
			sql.Named("eta", r.ETA), sql.Named("stored", r.Stored), sql.Named("isMapped", boolToInt(r.IsMapped)),
			sql.Named("uploadDate", r.UploadDate), sql.Named("extra", extra))
		if err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("insert row %s: %w", r.ID, err)
		}
		saved = append(saved, r)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return saved, nil
}

// UpdateRow overwrites every editable field of one persisted row.
func (p *OracleDBConnectionPool) UpdateRow(ctx context.Context, r schema.ManifestRow) error {
	extra, err := encodeExtra(r.Extra)
	if err != nil {
		return err
	}
	res, err := p.db.ExecContext(ctx, updateRowSQL,
		sql.Named("client", r.Client), sql.Named("vesselName", r.VesselName),
		sql.Named("supplier", r.Supplier), sql.Named("shipper", r.Shipper), sql.Named("poNo", r.PONo),
		sql.Named("eta", r.ETA), sql.Named("stored", r.Stored), sql.Named("isMapped", boolToInt(r.IsMapped)),
		sql.Named("extra", extra), sql.Named("id", r.ID))
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("row %s not found", r.ID)
	}
	return nil
}

// DeleteRows removes the given rows in one transaction.
func (p *OracleDBConnectionPool) DeleteRows(ctx context.Context, ids []string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, deleteRowSQL)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, sql.Named("id", id)); err != nil {
			tx.Rollback()
			return fmt.Errorf("delete row %s: %w", id, err)
		}
	}
	return tx.Commit()
}

// BatchUpdateETAs applies the mapping pass output as one transaction. The
// batch is all-or-nothing from the caller's perspective: any failure rolls
// the whole batch back and returns a single error.
func (p *OracleDBConnectionPool) BatchUpdateETAs(ctx context.Context, updates []schema.RowUpdate) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, updateETASQL)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, u := range updates {
		_, err := stmt.ExecContext(ctx, sql.Named("eta", u.ETA),
			sql.Named("isMapped", boolToInt(u.IsMapped)), sql.Named("id", u.ID))
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("update row %s: %w", u.ID, err)
		}
	}
	return tx.Commit()
}

// AllSchedules returns every schedule record, newest first.
func (p *OracleDBConnectionPool) AllSchedules(ctx context.Context) ([]schema.ScheduleRecord, error) {
	rows, err := p.db.QueryContext(ctx, selectSchedulesSQL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Errorf("error closing rows: %v", closeErr)
		}
	}()

	var records []schema.ScheduleRecord
	for rows.Next() {
		var rec schema.ScheduleRecord
		var eta, etd, service, createdAt sql.NullString
		err := rows.Scan(&rec.ID, &rec.Port, &rec.Vessel, &eta, &etd, &service, &createdAt)
		if err != nil {
			log.Errorf("schedule scan error: %v", err)
			continue
		}
		rec.ETA, rec.ETD, rec.Service, rec.CreatedAt = eta.String, etd.String, service.String, createdAt.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

// InsertSchedules bulk inserts one port's pasted schedule.
func (p *OracleDBConnectionPool) InsertSchedules(ctx context.Context, records []schema.ScheduleRecord) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, insertScheduleSQL)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, rec := range records {
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		_, err := stmt.ExecContext(ctx, sql.Named("id", rec.ID), sql.Named("port", rec.Port),
			sql.Named("vessel", rec.Vessel), sql.Named("eta", rec.ETA), sql.Named("etd", rec.ETD),
			sql.Named("service", rec.Service))
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("insert schedule for %s: %w", rec.Vessel, err)
		}
	}
	return tx.Commit()
}

// ClearPort deletes every schedule record of one port.
func (p *OracleDBConnectionPool) ClearPort(ctx context.Context, port string) error {
	_, err := p.db.ExecContext(ctx, clearPortSQL, sql.Named("port", port))
	return err
}

// LogActivity appends one vessel activity entry and returns its ID.
func (p *OracleDBConnectionPool) LogActivity(ctx context.Context, vesselName, status string) (string, error) {
	id := uuid.NewString()
	_, err := p.db.ExecContext(ctx, insertLogSQL, sql.Named("id", id),
		sql.Named("vesselName", vesselName), sql.Named("status", status))
	if err != nil {
		return "", err
	}
	return id, nil
}

// RecentLogs returns the newest activity entries, up to limit.
func (p *OracleDBConnectionPool) RecentLogs(ctx context.Context, limit int) ([]schema.VesselLog, error) {
	rows, err := p.db.QueryContext(ctx, selectLogSQL, sql.Named("limitNum", limit))
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Errorf("error closing rows: %v", closeErr)
		}
	}()

	var logs []schema.VesselLog
	for rows.Next() {
		var l schema.VesselLog
		if err := rows.Scan(&l.ID, &l.VesselName, &l.Status, &l.LoggedAt); err != nil {
			log.Errorf("log scan error: %v", err)
			continue
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func encodeExtra(extra map[string]string) (string, error) {
	if len(extra) == 0 {
		return "", nil
	}
	b, err := json.Marshal(extra)
	if err != nil {
		return "", fmt.Errorf("encode extra columns: %w", err)
	}
	return string(b), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
