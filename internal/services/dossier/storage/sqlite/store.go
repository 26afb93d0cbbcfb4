// Package sqlite archives dossier snapshots in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	_ "modernc.org/sqlite"

	apperrors "github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/platform/errors"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/platform/id"
	sqlitemigrate "github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/platform/storage/sqlitemigrate"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/platform/timeouts"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/domain/dossier"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/domain/hierarchy"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/domain/naming"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/storage/sqlite/migrations"
)

const tracerName = "github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/storage/sqlite"

var (
	// ErrDossierNotFound indicates an archive id with no stored dossier.
	ErrDossierNotFound = apperrors.New(apperrors.CodeArchiveDossierUnset, "archived dossier not found")
	// ErrInvalidArchiveID indicates an archive id that cannot be stored.
	ErrInvalidArchiveID = apperrors.New(apperrors.CodeNameInvalid, "archive id is invalid")
	// ErrPathRequired indicates an Open call without an archive path.
	ErrPathRequired = apperrors.New(apperrors.CodeReadFailed, "archive path is required")
	// ErrCorrupt indicates stored rows that do not form a valid dossier.
	ErrCorrupt = apperrors.New(apperrors.CodeDecodeInvalid, "archived dossier is corrupt")
)

// Entry summarises one archived dossier.
type Entry struct {
	ID        string
	Name      string
	SavedAt   time.Time
	Nodes     int
	Scenarios int
}

// Store persists dossiers in SQLite.
type Store struct {
	sqlDB  *sql.DB
	tracer trace.Tracer
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithTracerProvider traces through tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Store) {
		if tp != nil {
			s.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithClock overrides the clock used for saved-at timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite archive and applies embedded migrations.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrPathRequired
	}
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=%d&_synchronous=NORMAL",
		filepath.Clean(path), timeouts.ArchiveBusy.Milliseconds())
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, readFailed("open sqlite db", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, readFailed("ping sqlite db", err)
	}
	if err := sqlitemigrate.ApplyMigrations(ctx, sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, readFailed("run migrations", err)
	}
	s := &Store{sqlDB: sqlDB, tracer: otel.Tracer(tracerName), now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveDossier stores d under archiveID, replacing any dossier saved there
// before. The replacement happens in one transaction.
func (s *Store) SaveDossier(ctx context.Context, archiveID, name string, d *dossier.Dossier) (err error) {
	ctx, span := s.start(ctx, "archive.save", archiveID)
	defer func() { finish(span, err) }()
	if err := ctx.Err(); err != nil {
		return err
	}
	if !id.Valid(archiveID) {
		return apperrors.Detail(ErrInvalidArchiveID, map[string]string{"archive_id": archiveID})
	}
	if err := naming.Validate(name); err != nil {
		return err
	}

	snap := d.Snapshot()
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return writeFailed("begin save", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = clearDossier(ctx, tx, archiveID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO dossiers (id, name, root_id, saved_at) VALUES (?, ?, ?, ?)`,
		archiveID, name, string(snap.Root.ID), toMillis(s.now()),
	); err != nil {
		return writeFailed("insert dossier", err)
	}
	for i, scenario := range snap.Scenarios {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO scenarios (dossier_id, position, id, name, outcome) VALUES (?, ?, ?, ?, ?)`,
			archiveID, i, string(scenario.ID), scenario.Name, scenario.Outcome.String(),
		); err != nil {
			return writeFailed(fmt.Sprintf("insert scenario %s", scenario.ID), err)
		}
	}
	position := 0
	if err = insertNode(ctx, tx, archiveID, "", snap.Root, &position); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return writeFailed("commit save", err)
	}
	span.SetAttributes(attribute.Int("dossier.nodes", position))
	return nil
}

func insertNode(ctx context.Context, tx *sql.Tx, archiveID string, parent hierarchy.NodeID, n dossier.NodeSnapshot, position *int) error {
	var parentID, unitType, nationality sql.NullString
	if parent != "" {
		parentID = sql.NullString{String: string(parent), Valid: true}
	}
	if n.Kind == hierarchy.KindUnit {
		unitType = sql.NullString{String: n.UnitType.String(), Valid: true}
		nationality = sql.NullString{String: n.Nationality.String(), Valid: true}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO nodes (dossier_id, position, id, parent_id, kind, name, unit_type, nationality)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		archiveID, *position, string(n.ID), parentID, n.Kind.String(), n.Name, unitType, nationality,
	); err != nil {
		return writeFailed(fmt.Sprintf("insert node %s", n.ID), err)
	}
	*position++
	for i, rec := range n.Records {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO stat_records (dossier_id, node_id, scenario_id, position, kills, losses, experience)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			archiveID, string(n.ID), string(rec.Scenario), i, rec.Kills, rec.Losses, rec.Experience,
		); err != nil {
			return writeFailed(fmt.Sprintf("insert record %s/%s", n.ID, rec.Scenario), err)
		}
	}
	for _, child := range n.Subordinates {
		if err := insertNode(ctx, tx, archiveID, n.ID, child, position); err != nil {
			return err
		}
	}
	return nil
}

type nodeRow struct {
	id          string
	parentID    sql.NullString
	kind        string
	name        string
	unitType    sql.NullString
	nationality sql.NullString
}

// LoadDossier rebuilds the dossier stored under archiveID.
func (s *Store) LoadDossier(ctx context.Context, archiveID string) (_ *dossier.Dossier, err error) {
	ctx, span := s.start(ctx, "archive.load", archiveID)
	defer func() { finish(span, err) }()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rootID string
	err = s.sqlDB.QueryRowContext(ctx, `SELECT root_id FROM dossiers WHERE id = ?`, archiveID).Scan(&rootID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Detail(ErrDossierNotFound, map[string]string{"archive_id": archiveID})
	}
	if err != nil {
		return nil, readFailed("get dossier", err)
	}

	scenarios, err := s.loadScenarios(ctx, archiveID)
	if err != nil {
		return nil, err
	}
	records, err := s.loadRecords(ctx, archiveID)
	if err != nil {
		return nil, err
	}
	rows, children, err := s.loadNodes(ctx, archiveID)
	if err != nil {
		return nil, err
	}

	root, ok := rows[rootID]
	if !ok || root.parentID.Valid {
		return nil, corrupt(fmt.Errorf("root %s missing or attached", rootID))
	}
	var build func(nodeRow, int) (dossier.NodeSnapshot, error)
	build = func(row nodeRow, depth int) (dossier.NodeSnapshot, error) {
		if depth > len(rows) {
			return dossier.NodeSnapshot{}, fmt.Errorf("node %s nested in a loop", row.id)
		}
		snap, err := nodeSnapshot(row, records[row.id])
		if err != nil {
			return snap, err
		}
		for _, childID := range children[row.id] {
			child, err := build(rows[childID], depth+1)
			if err != nil {
				return snap, err
			}
			snap.Subordinates = append(snap.Subordinates, child)
		}
		return snap, nil
	}
	rootSnap, err := build(root, 0)
	if err != nil {
		return nil, corrupt(err)
	}
	d, err := dossier.FromSnapshot(dossier.Snapshot{Root: rootSnap, Scenarios: scenarios})
	if err != nil {
		return nil, corrupt(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Store) loadScenarios(ctx context.Context, archiveID string) ([]dossier.Scenario, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, name, outcome FROM scenarios WHERE dossier_id = ? ORDER BY position`, archiveID)
	if err != nil {
		return nil, readFailed("list scenarios", err)
	}
	defer rows.Close()
	var out []dossier.Scenario
	for rows.Next() {
		var scenarioID, name, outcomeLabel string
		if err := rows.Scan(&scenarioID, &name, &outcomeLabel); err != nil {
			return nil, readFailed("scan scenario", err)
		}
		outcome, err := dossier.OutcomeFromLabel(outcomeLabel)
		if err != nil {
			return nil, corrupt(err)
		}
		out = append(out, dossier.Scenario{ID: dossier.ScenarioID(scenarioID), Name: name, Outcome: outcome})
	}
	if err := rows.Err(); err != nil {
		return nil, readFailed("iterate scenarios", err)
	}
	return out, nil
}

func (s *Store) loadRecords(ctx context.Context, archiveID string) (map[string][]hierarchy.StatRecord, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT node_id, scenario_id, kills, losses, experience
		 FROM stat_records WHERE dossier_id = ? ORDER BY node_id, position`, archiveID)
	if err != nil {
		return nil, readFailed("list records", err)
	}
	defer rows.Close()
	out := make(map[string][]hierarchy.StatRecord)
	for rows.Next() {
		var nodeID, scenarioID string
		var stats hierarchy.Stats
		if err := rows.Scan(&nodeID, &scenarioID, &stats.Kills, &stats.Losses, &stats.Experience); err != nil {
			return nil, readFailed("scan record", err)
		}
		out[nodeID] = append(out[nodeID], hierarchy.StatRecord{Scenario: hierarchy.ScenarioID(scenarioID), Stats: stats})
	}
	if err := rows.Err(); err != nil {
		return nil, readFailed("iterate records", err)
	}
	return out, nil
}

func (s *Store) loadNodes(ctx context.Context, archiveID string) (map[string]nodeRow, map[string][]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, parent_id, kind, name, unit_type, nationality
		 FROM nodes WHERE dossier_id = ? ORDER BY position`, archiveID)
	if err != nil {
		return nil, nil, readFailed("list nodes", err)
	}
	defer rows.Close()
	byID := make(map[string]nodeRow)
	children := make(map[string][]string)
	for rows.Next() {
		var row nodeRow
		if err := rows.Scan(&row.id, &row.parentID, &row.kind, &row.name, &row.unitType, &row.nationality); err != nil {
			return nil, nil, readFailed("scan node", err)
		}
		byID[row.id] = row
		if row.parentID.Valid {
			children[row.parentID.String] = append(children[row.parentID.String], row.id)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, readFailed("iterate nodes", err)
	}
	return byID, children, nil
}

func nodeSnapshot(row nodeRow, records []hierarchy.StatRecord) (dossier.NodeSnapshot, error) {
	snap := dossier.NodeSnapshot{ID: hierarchy.NodeID(row.id), Name: row.name, Records: records}
	switch row.kind {
	case hierarchy.KindFormation.String():
		snap.Kind = hierarchy.KindFormation
	case hierarchy.KindUnit.String():
		snap.Kind = hierarchy.KindUnit
		unitType, err := hierarchy.UnitTypeFromLabel(row.unitType.String)
		if err != nil {
			return snap, err
		}
		nationality, err := hierarchy.NationalityFromLabel(row.nationality.String)
		if err != nil {
			return snap, err
		}
		snap.UnitType = unitType
		snap.Nationality = nationality
	default:
		return snap, fmt.Errorf("node %s has unknown kind %q", row.id, row.kind)
	}
	return snap, nil
}

// ListDossiers returns every archived dossier ordered by name, then id.
func (s *Store) ListDossiers(ctx context.Context) (_ []Entry, err error) {
	ctx, span := s.start(ctx, "archive.list", "")
	defer func() { finish(span, err) }()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT d.id, d.name, d.saved_at,
		        (SELECT COUNT(*) FROM nodes n WHERE n.dossier_id = d.id),
		        (SELECT COUNT(*) FROM scenarios c WHERE c.dossier_id = d.id)
		 FROM dossiers d ORDER BY d.name, d.id`)
	if err != nil {
		return nil, readFailed("list dossiers", err)
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var entry Entry
		var savedAt int64
		if err := rows.Scan(&entry.ID, &entry.Name, &savedAt, &entry.Nodes, &entry.Scenarios); err != nil {
			return nil, readFailed("scan dossier", err)
		}
		entry.SavedAt = fromMillis(savedAt)
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, readFailed("iterate dossiers", err)
	}
	return out, nil
}

// DeleteDossier removes the dossier stored under archiveID.
func (s *Store) DeleteDossier(ctx context.Context, archiveID string) (err error) {
	ctx, span := s.start(ctx, "archive.delete", archiveID)
	defer func() { finish(span, err) }()
	if err := ctx.Err(); err != nil {
		return err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return writeFailed("begin delete", err)
	}
	found, err := clearDossier(ctx, tx, archiveID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if !found {
		_ = tx.Rollback()
		return apperrors.Detail(ErrDossierNotFound, map[string]string{"archive_id": archiveID})
	}
	if err := tx.Commit(); err != nil {
		return writeFailed("commit delete", err)
	}
	return nil
}

// clearDossier deletes every row stored for archiveID and reports whether the
// dossier existed. Child tables are cleared explicitly; foreign key
// enforcement is a per-connection setting.
func clearDossier(ctx context.Context, tx *sql.Tx, archiveID string) (bool, error) {
	for _, table := range []string{"stat_records", "nodes", "scenarios"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE dossier_id = ?", archiveID); err != nil {
			return false, writeFailed(fmt.Sprintf("clear %s", table), err)
		}
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM dossiers WHERE id = ?`, archiveID)
	if err != nil {
		return false, writeFailed("clear dossier", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, writeFailed("clear dossier rows affected", err)
	}
	return affected > 0, nil
}

func (s *Store) start(ctx context.Context, name, archiveID string) (context.Context, trace.Span) {
	var attrs []attribute.KeyValue
	if archiveID != "" {
		attrs = append(attrs, attribute.String("archive.id", archiveID))
	}
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// readFailed marks a database failure while opening or reading the archive.
func readFailed(op string, err error) error {
	return apperrors.Wrap(apperrors.CodeReadFailed, op, err)
}

// writeFailed marks a database failure while changing the archive.
func writeFailed(op string, err error) error {
	return apperrors.Wrap(apperrors.CodeWriteFailed, op, err)
}

func corrupt(err error) error {
	return apperrors.Wrap(ErrCorrupt.Code, ErrCorrupt.Message, err)
}
