// Package storage хранит снимки статистики дашборда в PostgreSQL.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/church-dashboard/internal/models"
)

// ErrSnapshotNotFound возвращается, если в хранилище нет ни одного снимка.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его.
func New(ctx context.Context, storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет, что миграции применены.
func CheckDatabaseReady(ctx context.Context, storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRowContext(ctx, `SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'dashboard_snapshots'
    )`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("storage.CheckDatabaseReady: %w", err)
	}
	if !exists {
		return errors.New("storage.CheckDatabaseReady: required table dashboard_snapshots missing")
	}
	return nil
}

// Close закрывает соединение с базой.
func (s *Storage) Close() error {
	return s.DB.Close()
}

// SaveSnapshot сохраняет снимок статистики.
func (s *Storage) SaveSnapshot(ctx context.Context, snap models.Snapshot) error {
	const op = "storage.SaveSnapshot"

	statsJSON, err := json.Marshal(snap.Stats)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	failures := snap.Failures
	if failures == nil {
		failures = []string{}
	}
	failuresJSON, err := json.Marshal(failures)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO dashboard_snapshots (id, taken_at, stats, failures)
			  VALUES ($1, $2, $3, $4)`
	_, err = s.DB.ExecContext(ctx, query, snap.ID, snap.TakenAt, statsJSON, failuresJSON)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (*models.Snapshot, error) {
	var (
		snap         models.Snapshot
		statsJSON    []byte
		failuresJSON []byte
	)
	if err := row.Scan(&snap.ID, &snap.TakenAt, &statsJSON, &failuresJSON); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(statsJSON, &snap.Stats); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(failuresJSON, &snap.Failures); err != nil {
		return nil, err
	}
	if len(snap.Failures) == 0 {
		snap.Failures = nil
	}
	snap.TakenAt = snap.TakenAt.UTC()
	return &snap, nil
}

// ListSnapshots возвращает снимки от новых к старым с пагинацией.
func (s *Storage) ListSnapshots(ctx context.Context, limit, offset int) ([]*models.Snapshot, error) {
	const op = "storage.ListSnapshots"

	query := `SELECT id, taken_at, stats, failures
			  FROM dashboard_snapshots
			  ORDER BY taken_at DESC
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := make([]*models.Snapshot, 0, limit)
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// LatestSnapshot возвращает самый свежий снимок.
func (s *Storage) LatestSnapshot(ctx context.Context) (*models.Snapshot, error) {
	const op = "storage.LatestSnapshot"

	query := `SELECT id, taken_at, stats, failures
			  FROM dashboard_snapshots
			  ORDER BY taken_at DESC
			  LIMIT 1`
	snap, err := scanSnapshot(s.DB.QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrSnapshotNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return snap, nil
}
