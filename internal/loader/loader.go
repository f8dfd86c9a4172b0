// Package loader seeds the ingredient and tag catalog from CSV files listed
// in a YAML manifest. Loading is idempotent: rows whose natural key already
// exists are skipped.
package loader

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/models"
)

var validate = validator.New()

// Source maps one CSV file to a catalog target.
type Source struct {
	Target string `yaml:"target"`
	File   string `yaml:"file"`
	Header bool   `yaml:"header"`
}

// Manifest lists the files to load, in order.
type Manifest struct {
	Sources []Source `yaml:"sources"`
}

// Result reports what happened to one source.
type Result struct {
	Target   string
	File     string
	Read     int
	Inserted int64
}

// target knows how to turn a CSV record into a row.
type target struct {
	columns int
	build   func(record []string) (interface{}, error)
}

var targets = map[string]target{
	"ingredients": {
		columns: 2,
		build: func(record []string) (interface{}, error) {
			name, unit := strings.TrimSpace(record[0]), strings.TrimSpace(record[1])
			if name == "" || unit == "" {
				return nil, errors.New("ingredient name and unit must not be empty")
			}
			return &models.Ingredient{Name: name, MeasurementUnit: unit}, nil
		},
	},
	"tags": {
		columns: 2,
		build: func(record []string) (interface{}, error) {
			tag := &models.Tag{Name: strings.TrimSpace(record[0]), Color: strings.ToUpper(strings.TrimSpace(record[1]))}
			if len(record) > 2 {
				tag.Slug = strings.TrimSpace(record[2])
			}
			if tag.Name == "" {
				return nil, errors.New("tag name must not be empty")
			}
			if err := validate.Var(tag.Color, "len=7,hexcolor"); err != nil {
				return nil, errors.Errorf("tag color %q is not #RRGGBB", tag.Color)
			}
			return tag, nil
		},
	},
}

// ReadManifest parses a manifest file and checks every source names a
// known target.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read manifest %s", path)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, "failed to parse manifest %s", path)
	}
	for i, src := range m.Sources {
		if _, ok := targets[src.Target]; !ok {
			return nil, errors.Errorf("source %d: unknown target %q", i, src.Target)
		}
		if src.File == "" {
			return nil, errors.Errorf("source %d: file is required", i)
		}
	}
	return &m, nil
}

type Loader struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Loader {
	return &Loader{db: db, log: log}
}

// Run loads every source of m. Relative file paths are resolved against baseDir.
func (l *Loader) Run(ctx context.Context, m *Manifest, baseDir string) ([]Result, error) {
	results := make([]Result, 0, len(m.Sources))
	for _, src := range m.Sources {
		path := src.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		f, err := os.Open(path)
		if err != nil {
			return results, errors.Wrapf(err, "failed to open %s", path)
		}
		res, err := l.Load(ctx, src, f)
		f.Close()
		if err != nil {
			return results, errors.Wrapf(err, "failed to load %s", path)
		}
		res.File = path
		l.log.Infow("catalog source loaded", "target", res.Target, "file", path, "read", res.Read, "inserted", res.Inserted)
		results = append(results, res)
	}
	return results, nil
}

// Load reads one CSV stream into src's target inside a single transaction.
func (l *Loader) Load(ctx context.Context, src Source, r io.Reader) (Result, error) {
	res := Result{Target: src.Target, File: src.File}
	t, ok := targets[src.Target]
	if !ok {
		return res, errors.Errorf("unknown target %q", src.Target)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		line := 0
		for {
			record, err := reader.Read()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return errors.Wrap(err, "failed to read csv")
			}
			line++
			if line == 1 && src.Header {
				continue
			}
			if len(record) < t.columns {
				return errors.Errorf("line %d: expected at least %d columns, got %d", line, t.columns, len(record))
			}

			row, err := t.build(record)
			if err != nil {
				return errors.Wrapf(err, "line %d", line)
			}
			res.Read++

			created := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row)
			if created.Error != nil {
				return errors.Wrapf(created.Error, "line %d", line)
			}
			res.Inserted += created.RowsAffected
		}
	})
	return res, err
}
