package config

// This file implements CLI flag parsing and help text.
// Flags are grouped into batching, archiver, selection, execution, and utility.
// Negated/override flags (e.g. --force) are applied after Parse so Config
// defaults hold unless set. A --config YAML file fills in flags the user did
// not pass; CLI always wins.

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// ParseFlags parses os.Args into cfg. On --help or --version it prints and exits.
// On error it returns non-nil (e.g. unknown flag, missing positional args).
func ParseFlags(cfg *Config, version string) error {
	fs := flag.NewFlagSet("packmaster", flag.ContinueOnError)
	fs.Usage = func() { printUsage(fs, version) }

	var negated negatedFlags

	defineBatchingFlags(fs, cfg)
	defineArchiverFlags(fs, cfg)
	defineSelectionFlags(fs, cfg)
	defineExecutionFlags(fs, cfg, &negated)
	defineUtilityFlags(fs, cfg, &negated)

	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	if negated.showHelp {
		printUsage(fs, version)
		os.Exit(0)
	}
	if negated.showVersion {
		fmt.Fprintln(os.Stdout, "packmaster v"+version)
		os.Exit(0)
	}

	if cfg.ConfigFile != "" {
		if err := ApplyFileConfig(cfg, cfg.ConfigFile, visitedFlags(fs)); err != nil {
			return err
		}
	}

	applyNegatedFlags(cfg, &negated)

	return parsePositionalArgs(fs, cfg)
}

// negatedFlags holds boolean flags that are applied after Parse.
// These either invert a default (force -> SkipExisting=false) or trigger exit
// (showHelp, showVersion).
type negatedFlags struct {
	force       bool
	forceColor  bool
	noColor     bool
	showVersion bool
	showHelp    bool
}

// defineBatchingFlags registers -b/--batch and --prefix.
func defineBatchingFlags(fs *flag.FlagSet, cfg *Config) {
	fs.IntVar(&cfg.BatchSize, "batch", cfg.BatchSize, "Number of files per archive")
	fs.IntVar(&cfg.BatchSize, "b", cfg.BatchSize, "Same as --batch")
	fs.StringVar(&cfg.Prefix, "prefix", cfg.Prefix, "Prefix for archive file names")
}

// defineArchiverFlags registers --format, --level, --password, --split-size.
func defineArchiverFlags(fs *flag.FlagSet, cfg *Config) {
	fs.Var(&formatValue{&cfg.Format}, "format", "Archive format: 7z | zip")
	fs.IntVar(&cfg.CompressionLevel, "level", cfg.CompressionLevel, "Compression level 0-9")
	fs.StringVar(&cfg.Password, "password", "", "Password for encrypted archives")
	fs.StringVar(&cfg.SplitSize, "split-size", "", "Split archives into volumes (e.g. 100M, 1G)")
}

// defineSelectionFlags registers --exclude and -r/--recursive.
func defineSelectionFlags(fs *flag.FlagSet, cfg *Config) {
	fs.Var((*stringListValue)(&cfg.Exclude), "exclude", "Glob pattern to exclude (repeatable)")
	fs.BoolVar(&cfg.Recursive, "recursive", false, "Scan subdirectories recursively")
	fs.BoolVar(&cfg.Recursive, "r", false, "Same as --recursive")
}

// defineExecutionFlags registers threads, auto, dry-run, force, verify, metadata.
func defineExecutionFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.IntVar(&cfg.Threads, "threads", cfg.Threads, "Number of parallel compression workers")
	fs.IntVar(&cfg.Threads, "t", cfg.Threads, "Same as --threads")
	fs.BoolVar(&cfg.AutoConfirm, "auto", false, "Run without confirmation prompt")
	fs.BoolVar(&cfg.AutoConfirm, "a", false, "Same as --auto")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Preview batches; do not invoke the archiver")
	fs.BoolVar(&cfg.DryRun, "d", false, "Same as --dry-run")
	fs.BoolVar(&n.force, "force", false, "Overwrite existing archives")
	fs.BoolVar(&n.force, "f", false, "Same as --force")
	fs.BoolVar(&cfg.Verify, "verify", false, "Verify archives after creation (7z t)")
	fs.StringVar(&cfg.MetadataFile, "metadata", "", "Export run manifest to JSON file")
}

// defineUtilityFlags registers config, color, verbose, log, check, version, help.
func defineUtilityFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.StringVar(&cfg.ConfigFile, "config", "", "Load settings from YAML config file")
	fs.BoolVar(&n.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Verbose output (per-file batch listings)")
	fs.BoolVar(&cfg.Verbose, "v", false, "Same as --verbose")
	fs.StringVar(&cfg.LogFile, "log", "", "Append logs to file")
	fs.StringVar(&cfg.LogFile, "l", "", "Same as --log")
	fs.BoolVar(&cfg.CheckOnly, "check", false, "Check archiver availability and exit")
	fs.BoolVar(&cfg.CheckOnly, "c", false, "Same as --check")
	fs.BoolVar(&n.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&n.showVersion, "V", false, "Same as --version")
	fs.BoolVar(&n.showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&n.showHelp, "h", false, "Same as --help")
}

// applyNegatedFlags copies negated and override flag values into cfg.
func applyNegatedFlags(cfg *Config, n *negatedFlags) {
	if n.force {
		cfg.SkipExisting = false
	}
	if n.noColor {
		cfg.ColorMode = ColorNever
	} else if n.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// shortAliases maps short flag names to their canonical long form, so the
// config-file overlay treats "-b 50" and "--batch 50" identically.
var shortAliases = map[string]string{
	"b": "batch",
	"r": "recursive",
	"t": "threads",
	"a": "auto",
	"d": "dry-run",
	"f": "force",
	"v": "verbose",
	"l": "log",
	"c": "check",
	"V": "version",
	"h": "help",
}

// visitedFlags returns the set of canonical flag names the user passed.
func visitedFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		name := f.Name
		if canon, ok := shortAliases[name]; ok {
			name = canon
		}
		set[name] = true
	})
	return set
}

// parsePositionalArgs sets InputDir and OutputDir from the two positional args
// when not in CheckOnly mode. A config file may have supplied them already.
func parsePositionalArgs(fs *flag.FlagSet, cfg *Config) error {
	args := fs.Args()
	if cfg.CheckOnly {
		return nil
	}
	switch len(args) {
	case 0:
		if cfg.InputDir == "" || cfg.OutputDir == "" {
			return fmt.Errorf("need exactly input_dir and output_dir")
		}
		return nil
	case 2:
		cfg.InputDir = NormalizeDirArg(args[0])
		cfg.OutputDir = NormalizeDirArg(args[1])
		return nil
	default:
		return fmt.Errorf("need exactly input_dir and output_dir")
	}
}

// printUsage writes the help text to stderr. Column-aligned for readability.
func printUsage(fs *flag.FlagSet, version string) {
	const col1 = 28 // width of "  -x, --long-name <arg>  "
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "packmaster v" + version + " - batch archive compression via 7z"},
		{"", ""},
		{"  packmaster [OPTIONS] <input_dir> <output_dir>", ""},
		{"", ""},
		{"Batching", ""},
		{"  -b, --batch <n>", "Files per archive (default: 80)"},
		{"  --prefix <name>", "Archive name prefix (default: archive)"},
		{"", ""},
		{"Archiver", ""},
		{"  --format <7z|zip>", "Archive format (default: 7z)"},
		{"  --level <0-9>", "Compression level (default: 5)"},
		{"  --password <pw>", "Encrypt archives (headers included)"},
		{"  --split-size <size>", "Split into volumes (e.g. 100M, 1G)"},
		{"", ""},
		{"Selection", ""},
		{"  --exclude <glob>", "Exclude pattern (repeatable)"},
		{"  -r, --recursive", "Scan subdirectories recursively"},
		{"", ""},
		{"Execution", ""},
		{"  -t, --threads <n>", "Parallel compression workers (default: 1)"},
		{"  -a, --auto", "Skip confirmation prompt"},
		{"  -d, --dry-run", "Preview batches only"},
		{"  -f, --force", "Overwrite existing archives"},
		{"  --verify", "Test each archive after creation"},
		{"  --metadata <path>", "Export run manifest to JSON"},
		{"", ""},
		{"Utility", ""},
		{"  --config <path>", "Load settings from YAML config file"},
		{"  --color / --no-color", "Force / disable colored logs"},
		{"  -v, --verbose", "Verbose output"},
		{"  -l, --log <path>", "Append logs to file"},
		{"  -c, --check", "Check 7z/zip/rar availability and exit"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(os.Stderr)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(os.Stderr, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(os.Stderr, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(os.Stderr, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}

// flag.Value adapters so we can use the ArchiveFormat enum and a repeatable
// string list with flag.Var.

type formatValue struct{ p *ArchiveFormat }

func (f *formatValue) String() string {
	if f.p == nil {
		return ""
	}
	return string(*f.p)
}

func (f *formatValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "7z":
		*f.p = Format7z
	case "zip":
		*f.p = FormatZip
	default:
		return fmt.Errorf("invalid format %q (use '7z' or 'zip')", s)
	}
	return nil
}

type stringListValue []string

func (v *stringListValue) String() string { return strings.Join(*v, ",") }

func (v *stringListValue) Set(s string) error {
	*v = append(*v, s)
	return nil
}
