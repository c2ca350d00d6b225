package jobs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Package jobs loads the Overpass query jobs the cron driver refreshes.

const defaultRefreshIntervalSeconds = 3600

// Job is a single query whose result is kept fresh in the workdir.
type Job struct {
	ID                     string `json:"id" yaml:"id"`
	Name                   string `json:"name" yaml:"name"`
	QueryFile              string `json:"query_file" yaml:"query_file"`
	Output                 string `json:"output" yaml:"output"`
	Enabled                *bool  `json:"enabled" yaml:"enabled"`
	RefreshIntervalSeconds int    `json:"refresh_interval_seconds" yaml:"refresh_interval_seconds"`
}

type fileRegistry struct {
	Jobs []Job `json:"jobs" yaml:"jobs"`
}

// Registry holds the validated jobs loaded from a file.
type Registry struct {
	mu   sync.RWMutex
	jobs []Job
	idx  map[string]Job
}

// LoadRegistry loads jobs from a YAML/JSON file. Relative query files are
// resolved against the directory holding the registry file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("jobs file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open jobs file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read jobs file: %w", err)
	}

	parsed, err := parseRegistry(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(parsed.Jobs) == 0 {
		return nil, errors.New("jobs file contains no jobs entries")
	}

	baseDir := filepath.Dir(path)
	reg := &Registry{
		jobs: make([]Job, len(parsed.Jobs)),
		idx:  make(map[string]Job, len(parsed.Jobs)),
	}
	for i := range parsed.Jobs {
		job := sanitizeJob(parsed.Jobs[i], baseDir)
		if err := validateJob(job); err != nil {
			return nil, fmt.Errorf("jobs[%d]: %w", i, err)
		}
		if _, exists := reg.idx[job.ID]; exists {
			return nil, fmt.Errorf("duplicate job id %q", job.ID)
		}
		reg.jobs[i] = job
		reg.idx[job.ID] = job
	}

	return reg, nil
}

func parseRegistry(data []byte, ext string) (fileRegistry, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		if reg, err := unmarshalRegistry(d.name, data, d.fn); err == nil {
			return reg, nil
		}
	}

	return fileRegistry{}, errors.New("jobs file format not recognized (expected YAML or JSON)")
}

type unmarshalFn func([]byte, any) error

func unmarshalRegistry(name string, data []byte, fn unmarshalFn) (fileRegistry, error) {
	var reg fileRegistry
	if err := fn(data, &reg); err != nil {
		return fileRegistry{}, fmt.Errorf("decode %s jobs: %w", name, err)
	}
	return reg, nil
}

func sanitizeJob(j Job, baseDir string) Job {
	j.ID = strings.TrimSpace(j.ID)
	j.Name = strings.TrimSpace(j.Name)
	j.QueryFile = strings.TrimSpace(j.QueryFile)
	j.Output = strings.TrimSpace(j.Output)

	if j.Name == "" {
		j.Name = j.ID
	}
	if j.QueryFile != "" && !filepath.IsAbs(j.QueryFile) {
		j.QueryFile = filepath.Join(baseDir, j.QueryFile)
	}
	if j.Enabled == nil {
		def := true
		j.Enabled = &def
	}
	if j.RefreshIntervalSeconds <= 0 {
		j.RefreshIntervalSeconds = defaultRefreshIntervalSeconds
	}
	return j
}

func validateJob(j Job) error {
	if j.ID == "" {
		return errors.New("id is required")
	}
	if j.QueryFile == "" {
		return fmt.Errorf("query_file is required for job %q", j.ID)
	}
	if j.Output == "" {
		return fmt.Errorf("output is required for job %q", j.ID)
	}
	if filepath.IsAbs(j.Output) || strings.HasPrefix(filepath.Clean(j.Output), "..") {
		return fmt.Errorf("output must be relative to the workdir for job %q", j.ID)
	}
	return nil
}

// All returns all configured jobs.
func (r *Registry) All() []Job {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Job, len(r.jobs))
	copy(out, r.jobs)
	return out
}

// Enabled returns jobs that are enabled.
func (r *Registry) Enabled() []Job {
	all := r.All()
	if len(all) == 0 {
		return nil
	}

	out := make([]Job, 0, len(all))
	for _, j := range all {
		if j.EnabledValue() {
			out = append(out, j)
		}
	}
	return out
}

// ByID returns the job with the given id, if loaded.
func (r *Registry) ByID(id string) (Job, bool) {
	if r == nil {
		return Job{}, false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Job{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.idx[id]
	return j, ok
}

// EnabledValue returns enabled flag defaulting to true.
func (j Job) EnabledValue() bool {
	if j.Enabled == nil {
		return true
	}
	return *j.Enabled
}

// RefreshInterval returns how long a written result stays fresh.
func (j Job) RefreshInterval() time.Duration {
	if j.RefreshIntervalSeconds <= 0 {
		return time.Duration(defaultRefreshIntervalSeconds) * time.Second
	}
	return time.Duration(j.RefreshIntervalSeconds) * time.Second
}

// ReadQuery returns the query text stored in the job's query file.
func (j Job) ReadQuery() (string, error) {
	raw, err := os.ReadFile(j.QueryFile)
	if err != nil {
		return "", fmt.Errorf("read query for job %s: %w", j.ID, err)
	}
	return string(raw), nil
}
