package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/dosewatch/dosewatch/pkg/models"
)

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db  *sql.DB
	log *zap.Logger

	mu   sync.Mutex
	subs map[*subscription]struct{}
}

// Open opens or creates a SQLite database at the given path
func Open(dbPath string, log *zap.Logger) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:   db,
		log:  log,
		subs: make(map[*subscription]struct{}),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS medicines (
		id         TEXT PRIMARY KEY,
		user_id    TEXT,
		name       TEXT NOT NULL,
		dose       TEXT,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_medicines_name ON medicines(name);

	CREATE TABLE IF NOT EXISTS doses (
		id             TEXT PRIMARY KEY,
		medicine_id    TEXT NOT NULL REFERENCES medicines(id) ON DELETE CASCADE,
		user_id        TEXT,
		scheduled_date TEXT NOT NULL,
		scheduled_time TEXT NOT NULL,
		frequency      TEXT NOT NULL,
		repeat_until   TEXT,
		taken          INTEGER NOT NULL DEFAULT 0,
		quantity       TEXT,
		dose_amount    TEXT,
		created_at     TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_doses_medicine ON doses(medicine_id);
	CREATE INDEX IF NOT EXISTS idx_doses_created ON doses(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	for sub := range s.subs {
		sub.drop()
	}
	s.mu.Unlock()
	return s.db.Close()
}

func newID() string {
	return uuid.New().String()
}

// --- medicines ---

func (s *SQLiteStore) CreateMedicine(ctx context.Context, m *models.Medicine) error {
	if m.ID == "" {
		m.ID = newID()
	}
	if m.Created.IsZero() {
		m.Created = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO medicines (id, user_id, name, dose, created_at) VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.UserID, m.Name, m.Dose, m.Created.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert medicine: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListMedicines(ctx context.Context) ([]*models.Medicine, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, dose, created_at FROM medicines ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list medicines: %w", err)
	}
	defer rows.Close()

	var meds []*models.Medicine
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, err
		}
		meds = append(meds, m)
	}
	return meds, rows.Err()
}

func (s *SQLiteStore) GetMedicine(ctx context.Context, id string) (*models.Medicine, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, dose, created_at FROM medicines WHERE id = ?`, id)
	m, err := scanMedicine(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return m, err
}

func (s *SQLiteStore) DeleteMedicine(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM medicines WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete medicine: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMedicine(row rowScanner) (*models.Medicine, error) {
	var m models.Medicine
	var created string
	if err := row.Scan(&m.ID, &m.UserID, &m.Name, &m.Dose, &created); err != nil {
		return nil, err
	}
	m.Created, _ = time.Parse(time.RFC3339, created)
	return &m, nil
}

// --- doses ---

const doseColumns = `id, medicine_id, user_id, scheduled_date, scheduled_time,
	frequency, repeat_until, taken, quantity, dose_amount, created_at`

func (s *SQLiteStore) CreateDose(ctx context.Context, d *models.Dose) error {
	if d.ID == "" {
		d.ID = newID()
	}
	if d.Created.IsZero() {
		d.Created = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO doses (`+doseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.MedicineID, d.UserID, d.ScheduledDate, d.ScheduledTime,
		string(d.Frequency), d.RepeatUntil, boolToInt(d.Taken),
		d.Quantity, d.DoseAmount, d.Created.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert dose: %w", err)
	}
	s.notify(ctx)
	return nil
}

// ListDoses returns doses in stable creation order. The due scanner's
// first-match tie-break relies on this ordering.
func (s *SQLiteStore) ListDoses(ctx context.Context) ([]*models.Dose, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+doseColumns+` FROM doses ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list doses: %w", err)
	}
	defer rows.Close()

	var doses []*models.Dose
	for rows.Next() {
		d, err := scanDose(rows)
		if err != nil {
			return nil, err
		}
		doses = append(doses, d)
	}
	return doses, rows.Err()
}

func (s *SQLiteStore) GetDose(ctx context.Context, id string) (*models.Dose, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+doseColumns+` FROM doses WHERE id = ?`, id)
	d, err := scanDose(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return d, err
}

func (s *SQLiteStore) UpdateDose(ctx context.Context, d *models.Dose) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE doses SET medicine_id = ?, scheduled_date = ?, scheduled_time = ?,
			frequency = ?, repeat_until = ?, taken = ?, quantity = ?, dose_amount = ?
		 WHERE id = ?`,
		d.MedicineID, d.ScheduledDate, d.ScheduledTime, string(d.Frequency),
		d.RepeatUntil, boolToInt(d.Taken), d.Quantity, d.DoseAmount, d.ID)
	if err != nil {
		return fmt.Errorf("update dose: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	s.notify(ctx)
	return nil
}

func (s *SQLiteStore) DeleteDose(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM doses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete dose: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	s.notify(ctx)
	return nil
}

func (s *SQLiteStore) MarkTaken(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE doses SET taken = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark taken: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	s.notify(ctx)
	return nil
}

func scanDose(row rowScanner) (*models.Dose, error) {
	var d models.Dose
	var freq, created string
	var taken int
	var repeatUntil, quantity, doseAmount sql.NullString
	err := row.Scan(&d.ID, &d.MedicineID, &d.UserID, &d.ScheduledDate,
		&d.ScheduledTime, &freq, &repeatUntil, &taken, &quantity, &doseAmount, &created)
	if err != nil {
		return nil, err
	}
	d.Frequency = models.Frequency(freq)
	d.RepeatUntil = repeatUntil.String
	d.Taken = taken != 0
	d.Quantity = quantity.String
	d.DoseAmount = doseAmount.String
	d.Created, _ = time.Parse(time.RFC3339Nano, created)
	return &d, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
