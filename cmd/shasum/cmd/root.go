package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"massnet.org/shasum/config"
	"massnet.org/shasum/logging"
	"massnet.org/shasum/massutil/filehash"
	"massnet.org/shasum/version"
)

const appName = "shasum"

var (
	errNoFilename = errors.New("no filename has been provided")
	errPruneCache = errors.New("--prune needs a digest cache, set --cache_dir")
	// errReported means the failure was already written to stderr.
	errReported = errors.New("one or more files failed")
)

type options struct {
	cfgFile string
	check   bool
	prune   bool
}

// NewRootCmd builds the shasum command with its own flag set and viper
// instance.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   appName + " [flags] FILE...",
		Short: "Print SHA-256 digests of files",
		Long: "Print the SHA-256 digest of each FILE.\n" +
			"\nWith one FILE only the 64-character digest is printed, with several FILEs\n" +
			"every line reads '<digest>  <FILE>'. With --check every FILE is a list of\n" +
			"such lines and the listed files are verified.\n" +
			"\nWith --prune the digest cache drops entries of files that no longer exist;\n" +
			"FILEs are optional then.\n",
		Version:       version.GetVersion(),
		SilenceErrors: true,
		SilenceUsage:  true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !opts.prune {
				return errNoFilename
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, v, opts, args)
		},
	}

	def := config.DefaultConfig()
	flags := rootCmd.Flags()
	flags.StringVar(&opts.cfgFile, "config", "", "config file (default is ./.shasum.json)")
	flags.BoolVarP(&opts.check, "check", "c", false, "read digests from the FILEs and check them")
	flags.BoolVar(&opts.prune, "prune", false, "remove digest cache entries of deleted files")
	flags.String(config.KeyLogDir, def.LogDir, "directory for log files, empty for stderr only")
	flags.String(config.KeyLogLevel, def.LogLevel, "level of logs (trace, debug, info, warn, error, fatal, panic)")
	flags.Int(config.KeyWorkers, def.Workers, "number of files hashed at once")
	flags.String(config.KeyCacheDir, def.CacheDir, "directory of the persistent digest cache, empty to disable")

	for _, key := range []string{config.KeyLogDir, config.KeyLogLevel, config.KeyWorkers, config.KeyCacheDir} {
		v.BindPFlag(key, flags.Lookup(key))
	}

	return rootCmd
}

// Execute runs the command line and exits with status 1 on failure.
// This is called by main.main().
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if err != errReported {
			fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		}
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, v *viper.Viper, opts *options, args []string) error {
	cfg, usingConfigFile, err := config.Load(v, opts.cfgFile)
	if err != nil {
		return err
	}

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	err = logging.Init(logging.Options{
		Dir:      cfg.LogDir,
		Filename: config.DefaultLoggingFilename,
		Level:    cfg.LogLevel,
		Age:      1,
		Console:  stderr,
	})
	if err != nil {
		return err
	}
	logging.VPrint(logging.INFO, "start", logging.LogFormat{
		"version":     version.GetVersion(),
		"config_file": usingConfigFile,
		"workers":     cfg.Workers,
		"files":       len(args),
	})

	var cache *filehash.Cache
	if cfg.CacheDir != "" {
		cache, err = filehash.OpenCache(cfg.CacheDir)
		if err != nil {
			logging.CPrint(logging.WARN, "digest cache disabled", logging.LogFormat{"err": err})
		} else {
			defer cache.Close()
		}
	}

	if opts.prune {
		if cache == nil {
			return errPruneCache
		}
		if err := prune(cache, stderr); err != nil {
			return err
		}
		if len(args) == 0 {
			return nil
		}
	}

	hasher, err := filehash.NewHasher(cfg.Workers, cache)
	if err != nil {
		return err
	}
	defer hasher.Release()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if opts.check {
		return check(ctx, hasher, args, stdout, stderr)
	}
	return sum(ctx, hasher, args, stdout, stderr)
}

func sum(ctx context.Context, hasher *filehash.Hasher, paths []string, stdout, stderr io.Writer) error {
	failed := false
	for _, r := range hasher.HashFiles(ctx, paths) {
		if r.Err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", appName, r.Err)
			failed = true
			continue
		}
		if len(paths) == 1 {
			fmt.Fprintln(stdout, r.Digest)
		} else {
			fmt.Fprintf(stdout, "%s  %s\n", r.Digest, r.Path)
		}
	}
	if failed {
		return errReported
	}
	return nil
}

func prune(cache *filehash.Cache, stderr io.Writer) error {
	n, err := cache.Prune()
	if err != nil {
		logging.CPrint(logging.ERROR, "prune digest cache failed", logging.LogFormat{"err": err})
		return err
	}
	logging.CPrint(logging.INFO, "digest cache pruned", logging.LogFormat{"removed": n})
	fmt.Fprintf(stderr, "pruned %d digest cache entries\n", n)
	return nil
}
