// Package services implements package installation, install history and
// token authentication.
package services

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pandeptwidyaop/pixi-server/internal/database"
	"github.com/pandeptwidyaop/pixi-server/internal/models"
	"github.com/pandeptwidyaop/pixi-server/internal/pixi"
)

var (
	ErrMissingPackageOrFeature = errors.New("missing package or feature")
	ErrInstallNotFound         = errors.New("install not found")
	ErrHistoryDisabled         = errors.New("install history disabled")
)

const maxInstallsLimit = 500

// PackageService adds packages through the pixi CLI and records each run.
type PackageService struct {
	db        *database.DB
	runner    pixi.Runner
	serialize bool
	mu        sync.Mutex
}

// NewPackageService creates a PackageService. A nil db disables history.
// With serialize set, concurrent AddPackage calls run one at a time.
func NewPackageService(db *database.DB, runner pixi.Runner, serialize bool) *PackageService {
	return &PackageService{
		db:        db,
		runner:    runner,
		serialize: serialize,
	}
}

// HistoryEnabled reports whether installs are being recorded.
func (s *PackageService) HistoryEnabled() bool {
	return s.db != nil
}

// AddPackage runs `pixi add <pkg> --feature <feature>` and waits for it.
//
// The returned error is non-nil only when the process could not be run; a
// non-zero exit is reported as an unsuccessful result carrying stderr.
func (s *PackageService) AddPackage(ctx context.Context, pkg, feature string) (*models.AddPackageResult, error) {
	if pkg == "" || feature == "" {
		return nil, ErrMissingPackageOrFeature
	}

	if s.serialize {
		s.mu.Lock()
		defer s.mu.Unlock()
	}

	id := s.startInstall(pkg, feature)

	log.Printf("[Pixi] Adding %s to feature %s", pkg, feature)

	result, err := s.runner.Run(ctx, pixi.AddArgs(pkg, feature))
	if err != nil {
		log.Printf("[Pixi] Error adding %s to feature %s: %v", pkg, feature, err)
		s.finishInstall(id, models.InstallFailed, nil, "", err.Error())
		return nil, err
	}

	exitCode := result.ExitCode
	if exitCode != 0 {
		log.Printf("[Pixi] Adding %s to feature %s failed with exit_code=%d", pkg, feature, exitCode)
		s.finishInstall(id, models.InstallFailed, &exitCode, result.Stdout, result.Stderr)
		return &models.AddPackageResult{Success: false, Error: result.Stderr}, nil
	}

	log.Printf("[Pixi] Added %s to feature %s", pkg, feature)
	s.finishInstall(id, models.InstallSuccess, &exitCode, result.Stdout, "")
	return &models.AddPackageResult{Success: true, Output: result.Stdout}, nil
}

// startInstall records a running install. History errors are logged and
// never fail the install itself.
func (s *PackageService) startInstall(pkg, feature string) string {
	if s.db == nil {
		return ""
	}

	id := uuid.New().String()
	_, err := s.db.Exec(
		"INSERT INTO installs (id, package, feature, status, started_at) VALUES (?, ?, ?, ?, ?)",
		id, pkg, feature, models.InstallRunning, time.Now(),
	)
	if err != nil {
		log.Printf("[History] Error recording install of %s: %v", pkg, err)
		return ""
	}
	return id
}

func (s *PackageService) finishInstall(id string, status models.InstallStatus, exitCode *int, output, errText string) {
	if s.db == nil || id == "" {
		return
	}

	_, err := s.db.Exec(
		"UPDATE installs SET status = ?, exit_code = ?, output = ?, error = ?, finished_at = ? WHERE id = ?",
		status, exitCode, output, errText, time.Now(), id,
	)
	if err != nil {
		log.Printf("[History] Error finishing install %s: %v", id, err)
	}
}

const installColumns = "id, package, feature, status, exit_code, output, error, started_at, finished_at, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInstall(row rowScanner) (*models.Install, error) {
	var install models.Install
	var output, errText sql.NullString
	var exitCode sql.NullInt64
	var startedAt, finishedAt sql.NullTime

	err := row.Scan(
		&install.ID, &install.Package, &install.Feature, &install.Status,
		&exitCode, &output, &errText, &startedAt, &finishedAt, &install.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if output.Valid {
		install.Output = output.String
	}
	if errText.Valid {
		install.Error = errText.String
	}
	if exitCode.Valid {
		code := int(exitCode.Int64)
		install.ExitCode = &code
	}
	if startedAt.Valid {
		install.StartedAt = &startedAt.Time
	}
	if finishedAt.Valid {
		install.FinishedAt = &finishedAt.Time
	}
	return &install, nil
}

func (s *PackageService) GetInstallByID(id string) (*models.Install, error) {
	if s.db == nil {
		return nil, ErrHistoryDisabled
	}

	install, err := scanInstall(s.db.QueryRow("SELECT "+installColumns+" FROM installs WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInstallNotFound
	}
	if err != nil {
		return nil, err
	}
	return install, nil
}

// ListInstalls returns installs newest first. A non-positive limit means 50.
func (s *PackageService) ListInstalls(limit, offset int) ([]models.Install, error) {
	if s.db == nil {
		return nil, ErrHistoryDisabled
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > maxInstallsLimit {
		limit = maxInstallsLimit
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.Query(
		"SELECT "+installColumns+" FROM installs ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?",
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	installs := []models.Install{}
	for rows.Next() {
		install, err := scanInstall(rows)
		if err != nil {
			return nil, err
		}
		installs = append(installs, *install)
	}
	return installs, rows.Err()
}
