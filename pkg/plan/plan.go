package plan

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

var (
	// ErrPersistence is returned when a plan cannot be read or written.
	ErrPersistence = errors.New("plan: persistence failure")

	// ErrExists is returned by Write when the target exists and overwriting
	// was not requested.
	ErrExists = errors.New("plan: file already exists")
)

// Task transfers one remote object to a local file.
type Task struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	Output string `json:"output"`
}

// Plan is an ordered list of tasks built from one selection. SelectionID
// picks the provider used to execute it.
type Plan struct {
	SelectionID string `json:"selection_id"`
	Tasks       []Task `json:"tasks"`
}

// Marshal encodes the plan as indented JSON.
func (p *Plan) Marshal() ([]byte, error) {
	tasks := p.Tasks
	if tasks == nil {
		tasks = []Task{}
	}
	data, err := json.MarshalIndent(Plan{SelectionID: p.SelectionID, Tasks: tasks}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: encode: %v", ErrPersistence, err)
	}
	return append(data, '\n'), nil
}

// document mirrors Plan with a pointer so a missing tasks member can be
// told apart from an empty one.
type document struct {
	SelectionID string  `json:"selection_id"`
	Tasks       *[]Task `json:"tasks"`
}

// Unmarshal decodes a plan. Unknown members are errors, as are a missing
// selection_id, a missing or null tasks member and incomplete tasks.
func Unmarshal(data []byte) (*Plan, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrPersistence, err)
	}
	if doc.SelectionID == "" {
		return nil, fmt.Errorf("%w: missing selection_id", ErrPersistence)
	}
	if doc.Tasks == nil {
		return nil, fmt.Errorf("%w: missing tasks", ErrPersistence)
	}

	p := Plan{SelectionID: doc.SelectionID, Tasks: *doc.Tasks}
	for i, t := range p.Tasks {
		if t.Bucket == "" || t.Key == "" || t.Output == "" {
			return nil, fmt.Errorf("%w: task %d is incomplete", ErrPersistence, i)
		}
	}
	return &p, nil
}

// Write stores the plan at path. The file is replaced atomically; parent
// directories are created as needed.
func (p *Plan) Write(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
	}

	data, err := p.Marshal()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	tmp, err := os.CreateTemp(dir, ".plan-*.json")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write %s: %v", ErrPersistence, path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrPersistence, path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// Read loads a plan written by Write.
func Read(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	p, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Store writes the plan to key in bucket. Without overwrite an existing key
// is an ErrExists error.
func (p *Plan) Store(ctx context.Context, bucket *blob.Bucket, key string, overwrite bool) error {
	if !overwrite {
		exists, err := bucket.Exists(ctx, key)
		if err != nil {
			return fmt.Errorf("%w: stat %s: %v", ErrPersistence, key, err)
		}
		if exists {
			return fmt.Errorf("%w: %s", ErrExists, key)
		}
	}

	data, err := p.Marshal()
	if err != nil {
		return err
	}
	err = bucket.WriteAll(ctx, key, data, &blob.WriterOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("%w: store %s: %v", ErrPersistence, key, err)
	}
	return nil
}

// Load reads a plan stored with Store.
func Load(ctx context.Context, bucket *blob.Bucket, key string) (*Plan, error) {
	data, err := bucket.ReadAll(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, fmt.Errorf("%w: %s not found", ErrPersistence, key)
		}
		return nil, fmt.Errorf("%w: load %s: %v", ErrPersistence, key, err)
	}
	p, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return p, nil
}
