package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/pkg/profile"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/trim21/errgo"
	_ "go.uber.org/automaxprocs"

	"xcp/internal/config"
	"xcp/internal/copier"
	"xcp/internal/pkg/global"
	"xcp/internal/pkg/kernel"
)

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}

	return filepath.Join(dir, "xcp", "config.toml")
}

func main() {
	var configFilePath = pflag.String("config", "", "path to config file (default {user config dir}/xcp/config.toml)")
	var sparse = pflag.String("sparse", "", "sparse handling: auto, always or never (default auto)")
	var workers = pflag.Int("workers", 0, "number of parallel copies (default number of CPUs)")
	var chunkSize = pflag.String("chunk-size", "", "bytes requested per copy_file_range call (default 128MiB)")
	var preallocate = pflag.Bool("preallocate", false, "reserve disk blocks for non-sparse files before copying")
	var link = pflag.Bool("link", false, "hard link files instead of copying when possible")
	var recursive = pflag.BoolP("recursive", "r", false, "copy directories recursively")
	var verbose = pflag.BoolP("verbose", "v", false, "enable debug logging")
	var version = pflag.Bool("version", false, "print version and exit")

	var profiling = pflag.Bool("profile", false, "enable profiling for CPU and Memory")
	var profileCpu = pflag.Bool("profile-cpu", false, "enable CPU profiling only")
	var profileMem = pflag.Bool("profile-memory", false, "enable Memory profiling only")

	// this avoids 'pflag: help requested' error when calling for help message.
	if slices.Contains(os.Args[1:], "--help") || slices.Contains(os.Args[1:], "-h") {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] SRC DST\n", filepath.Base(os.Args[0]))
		pflag.PrintDefaults()
		fmt.Fprintln(os.Stderr, "\nNote: extra options will override config file, but won't change config file.")
		return
	}

	pflag.Parse()

	if *version {
		fmt.Println("xcp", global.Version)
		return
	}

	if *profileCpu || *profileMem || *profiling {
		var opt = make([]func(*profile.Profile), 0, 2)
		if *profileCpu || *profiling {
			opt = append(opt, profile.CPUProfile)
		}
		if *profileMem || *profiling {
			opt = append(opt, profile.MemProfile)
		}
		defer profile.Start(opt...).Stop()
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if pflag.NArg() != 2 {
		pflag.Usage()
		log.Fatal().Msg("expecting exactly one source and one destination")
	}

	if *configFilePath == "" {
		*configFilePath = defaultConfigPath()
	}

	cfg, err := config.LoadFromFile(*configFilePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	if *sparse != "" {
		cfg.Copy.Sparse = *sparse
	}
	if *chunkSize != "" {
		cfg.Copy.ChunkSize = *chunkSize
	}
	if *workers != 0 {
		cfg.Copy.Workers = *workers
	}
	if *preallocate {
		cfg.Copy.Preallocate = true
	}
	if *link {
		cfg.Copy.Link = true
	}

	opts, err := cfg.Options()
	if err != nil {
		log.Fatal().Err(err).Msg("bad options")
	}

	if opts.Workers > 0 {
		global.Pool.Tune(opts.Workers)
	}

	if !kernel.ReliableCopyFileRange() {
		major, minor := kernel.Version()
		log.Warn().Msgf("kernel %d.%d is older than 5.3, copy_file_range may fail across filesystems", major, minor)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, copier.New(opts), pflag.Arg(0), pflag.Arg(1), *recursive); err != nil {
		stop()
		log.Fatal().Err(err).Msg("copy failed")
	}
}

func run(ctx context.Context, c *copier.Copier, src, dst string, recursive bool) error {
	fi, err := os.Stat(src)
	if err != nil {
		return err
	}

	// `xcp file dir/` copies into the directory
	if di, err := os.Stat(dst); err == nil && di.IsDir() {
		dst = filepath.Join(dst, filepath.Base(src))
	}

	var stats copier.Stats
	if fi.IsDir() {
		if !recursive {
			return errgo.Wrap(errors.New("is a directory"), fmt.Sprintf("%q needs --recursive", src))
		}

		stats, err = c.CopyTree(ctx, src, dst)
	} else {
		stats, err = c.CopyFile(ctx, src, dst)
	}

	if err != nil {
		return err
	}

	log.Info().Msgf("copied %d files (%d linked), %s moved, %s left as holes, avg %s/s",
		stats.Files,
		stats.Linked,
		humanize.IBytes(uint64(stats.Copied)),
		humanize.IBytes(uint64(stats.Skipped)),
		humanize.IBytes(uint64(stats.AvgRate)),
	)

	return nil
}
