package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ppiankov/civictriage/internal/model"
)

// csvHeader is the column layout of the complaint file
var csvHeader = []string{
	"complaint_id",
	"description",
	"category",
	"severity",
	"location",
	"urgency_score",
	"date",
	"resolution_status",
}

// CSVStore keeps complaints in a single CSV file. Writes are serialized
// in process; the file is not safe for concurrent writers across processes.
type CSVStore struct {
	path string
	mu   sync.Mutex
}

// OpenCSV opens the file at path, creating it with a header when missing
func OpenCSV(path string) (*CSVStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("csv store path is required")
	}

	s := &CSVStore{path: path}
	if err := s.ensureFile(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *CSVStore) ensureFile() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", s.path, err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil
		}
		return fmt.Errorf("create %s: %w", s.path, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	w.Flush()
	return w.Error()
}

func (s *CSVStore) LoadAll(ctx context.Context) ([]model.Complaint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *CSVStore) Append(ctx context.Context, c model.Complaint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(c)
}

func (s *CSVStore) Create(ctx context.Context, build func(id int64) model.Complaint) (model.Complaint, error) {
	if err := ctx.Err(); err != nil {
		return model.Complaint{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadLocked()
	if err != nil {
		return model.Complaint{}, err
	}

	c := build(NextID(records))
	if err := s.appendLocked(c); err != nil {
		return model.Complaint{}, err
	}
	return c, nil
}

func (s *CSVStore) Close() error {
	return nil
}

func (s *CSVStore) loadLocked() ([]model.Complaint, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var out []model.Complaint
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s line %d: %w", s.path, line, err)
		}
		c, err := parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", s.path, line, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *CSVStore) appendLocked(c model.Complaint) error {
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("open %s for append: %w", s.path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(formatRow(c)); err != nil {
		_ = f.Close()
		return fmt.Errorf("write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush row: %w", err)
	}
	return f.Close()
}

// columnIndex maps header names to positions so reordered files still load
func columnIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range csvHeader {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("csv header is missing column %q", name)
		}
	}
	return cols, nil
}

func parseRow(row []string, cols map[string]int) (model.Complaint, error) {
	get := func(name string) string {
		if i := cols[name]; i < len(row) {
			return row[i]
		}
		return ""
	}

	id, err := parseWhole("complaint_id", get("complaint_id"))
	if err != nil {
		return model.Complaint{}, err
	}

	score, err := parseWhole("urgency_score", get("urgency_score"))
	if err != nil {
		return model.Complaint{}, err
	}

	var created time.Time
	if raw := strings.TrimSpace(get("date")); raw != "" {
		created, err = time.ParseInLocation(model.DateLayout, raw, time.Local)
		if err != nil {
			return model.Complaint{}, fmt.Errorf("invalid date %q: %w", raw, err)
		}
	}

	return model.Complaint{
		ID:               id,
		Description:      get("description"),
		Category:         model.Category(get("category")),
		Severity:         model.Severity(get("severity")),
		Location:         get("location"),
		UrgencyScore:     int(score),
		CreatedAt:        created,
		ResolutionStatus: model.ResolutionStatus(get("resolution_status")),
	}, nil
}

// parseWhole accepts "7" and the float form "7.0" that spreadsheet tools write
func parseWhole(column, raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid %s %q", column, raw)
	}
	return int64(f), nil
}

func formatRow(c model.Complaint) []string {
	return []string{
		strconv.FormatInt(c.ID, 10),
		c.Description,
		string(c.Category),
		string(c.Severity),
		c.Location,
		strconv.Itoa(c.UrgencyScore),
		c.CreatedAt.Format(model.DateLayout),
		string(c.ResolutionStatus),
	}
}
