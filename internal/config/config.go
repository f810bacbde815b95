package config

import (
	"errors"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/docker/go-units"
	"github.com/trim21/errgo"

	"xcp/internal/copier"
)

type Copy struct {
	Sparse      string `toml:"sparse"`
	ChunkSize   string `toml:"chunk_size"`
	Workers     int    `toml:"workers"`
	Preallocate bool   `toml:"preallocate"`
	Link        bool   `toml:"link"`
}

type Config struct {
	Copy Copy `toml:"copy"`
}

func Default() Config {
	return Config{
		Copy: Copy{
			Sparse:    copier.SparseAuto.String(),
			ChunkSize: units.BytesSize(copier.DefaultChunkSize),
		},
	}
}

// LoadFromFile reads a TOML config file on top of Default. A missing file is not an error.
func LoadFromFile(path string) (Config, error) {
	var cfg = Default()

	if path == "" {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return cfg, errgo.Wrap(err, "failed to parse config file")
	}

	return cfg, nil
}

// Options validates the copy section and converts it.
func (c Config) Options() (copier.Options, error) {
	mode, err := copier.ParseSparseMode(c.Copy.Sparse)
	if err != nil {
		return copier.Options{}, errgo.Wrap(err, "invalid `copy.sparse` config")
	}

	var chunk int64
	if c.Copy.ChunkSize != "" {
		chunk, err = units.RAMInBytes(c.Copy.ChunkSize)
		if err != nil {
			return copier.Options{}, errgo.Wrap(err, "invalid `copy.chunk_size` config")
		}

		if chunk <= 0 {
			return copier.Options{}, errgo.Wrap(errors.New("must be positive"), "invalid `copy.chunk_size` config")
		}
	}

	if c.Copy.Workers < 0 {
		return copier.Options{}, errgo.Wrap(errors.New("must not be negative"), "invalid `copy.workers` config")
	}

	return copier.Options{
		Workers:     c.Copy.Workers,
		ChunkSize:   chunk,
		Sparse:      mode,
		Preallocate: c.Copy.Preallocate,
		Link:        c.Copy.Link,
	}, nil
}
