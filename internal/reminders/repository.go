// Package reminders loads reminder records and selects the ones due on a date.
package reminders

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/starford/dosebell/internal/apperr"
	"github.com/starford/dosebell/internal/models"
	"github.com/starford/dosebell/internal/storage"
)

// DefaultUpcomingLimit caps Upcoming when the caller passes no limit.
const DefaultUpcomingLimit = 10

// Repository reads reminder records from a data directory, or from a single
// file in legacy single-recipient mode.
type Repository struct {
	store  storage.Provider
	legacy string // file name under store root in legacy mode
	logger *slog.Logger
}

// Open builds a Repository for path. A regular file selects legacy mode;
// anything else (a directory, or nothing yet) selects multi-recipient mode.
func Open(path string, logger *slog.Logger) (*Repository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		store, err := storage.NewFS(filepath.Dir(path))
		if err != nil {
			return nil, err
		}
		return &Repository{store: store, legacy: filepath.Base(path), logger: logger}, nil
	}
	store, err := storage.NewFS(path)
	if err != nil {
		return nil, err
	}
	return New(store, logger), nil
}

// New builds a multi-recipient Repository over store.
func New(store storage.Provider, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{store: store, logger: logger}
}

// Legacy reports whether the repository runs in single-file mode.
func (r *Repository) Legacy() bool {
	return r.legacy != ""
}

// Path returns the directory, or the file in legacy mode.
func (r *Repository) Path() string {
	if r.Legacy() {
		return filepath.Join(r.store.Root(), r.legacy)
	}
	return r.store.Root()
}

// Records returns every record that parses. Unreadable or malformed files are
// logged and skipped; only an unreadable source as a whole is an error.
func (r *Repository) Records() ([]models.Record, error) {
	if r.Legacy() {
		rec, err := r.readRecord(r.legacy)
		if err != nil {
			return nil, err
		}
		return []models.Record{rec}, nil
	}

	files, err := r.store.List()
	if err != nil {
		return nil, &apperr.RepositoryError{Path: r.store.Root(), Err: err}
	}
	out := make([]models.Record, 0, len(files))
	for _, f := range files {
		rec, err := r.readRecord(f.Name)
		if err != nil {
			r.logger.Warn("skipping reminder file",
				slog.String("path", f.Name),
				slog.String("error", err.Error()))
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// Due returns, per record, the first entry dated today. It never fails: a
// missing source is logged and yields no matches.
func (r *Repository) Due(today string) []models.Match {
	records, err := r.Records()
	if err != nil {
		r.logger.Warn("reading reminders failed",
			slog.String("path", r.Path()),
			slog.String("error", err.Error()))
		return []models.Match{}
	}
	matches := make([]models.Match, 0, len(records))
	for _, rec := range records {
		entry, ok := rec.DueOn(today)
		if !ok {
			continue
		}
		matches = append(matches, models.Match{
			Name:     rec.Name,
			Phone:    rec.Phone,
			DOB:      rec.DOB,
			Reminder: entry,
			Source:   rec.Source,
		})
	}
	return matches
}

// Upcoming returns entries dated today or later, ordered by date. Entries
// sharing a date keep file order.
func (r *Repository) Upcoming(today string, limit int) ([]models.Upcoming, error) {
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}
	records, err := r.Records()
	if err != nil {
		return nil, err
	}
	var out []models.Upcoming
	for _, rec := range records {
		for _, e := range rec.Reminders {
			if e.Date >= today {
				out = append(out, models.Upcoming{Entry: e, Name: rec.Name, Source: rec.Source})
			}
		}
	}
	slices.SortStableFunc(out, func(a, b models.Upcoming) int {
		return strings.Compare(a.Date, b.Date)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *Repository) readRecord(name string) (models.Record, error) {
	data, err := r.store.Read(name)
	if err != nil {
		return models.Record{}, &apperr.RepositoryError{Path: name, Err: err}
	}
	rec, err := Parse(data)
	if err != nil {
		return models.Record{}, &apperr.RepositoryError{Path: name, Err: err}
	}
	rec.Source = name
	return rec, nil
}

// Parse decodes one reminder file. The reminders key must be present and hold
// an array; anything else is malformed.
func Parse(data []byte) (models.Record, error) {
	var raw struct {
		models.Record
		Reminders *[]models.Entry `json:"reminders"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.Record{}, fmt.Errorf("parse: %w", err)
	}
	if raw.Reminders == nil {
		return models.Record{}, fmt.Errorf("parse: missing reminders array")
	}
	rec := raw.Record
	rec.Reminders = *raw.Reminders
	return rec, nil
}
