package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"arcinfo"
	"arcinfo/codec"
	"arcinfo/telemetry"
)

// CLI are the cli parameters for the arcinfo binary
type CLI struct {
	Archive    string           `arg:"" name:"archive" help:"Path to archive." type:"existingfile"`
	Fragment   bool             `short:"f" help:"Treat the archive as a partial download."`
	List       bool             `short:"l" help:"List the decoded file entries."`
	RangeStart int64            `optional:"" default:"-1" help:"Restrict analysis to an absolute byte range: first byte."`
	RangeEnd   int64            `optional:"" default:"-1" help:"Restrict analysis to an absolute byte range: last byte."`
	Save       string           `short:"s" optional:"" help:"Save the analyzed byte range to the given destination file."`
	Telemetry  bool             `short:"T" optional:"" default:"false" help:"Print telemetry data to log after analysis."`
	Verbose    bool             `short:"v" optional:"" help:"Verbose logging."`
	Version    kong.VersionFlag `short:"V" optional:"" help:"Print release version information."`
}

// Run is the entrypoint into arcinfo as a cli tool
func Run(version, commit, date string) {
	var cli CLI
	kong.Parse(&cli,
		kong.Description("An archive inspection utility"),
		kong.UsageOnError(),
		kong.Vars{
			"version": fmt.Sprintf("%s (%s), commit %s, built at %s", filepath.Base(os.Args[0]), version, commit, date),
		},
	)

	// Check for verbose output
	logLevel := slog.LevelError
	if cli.Verbose {
		logLevel = slog.LevelDebug
	}

	// setup logger
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	// setup telemetry hook
	telemetryToLog := func(ctx context.Context, td *telemetry.Data) {
		if cli.Telemetry {
			logger.Info("analysis finished", "telemetry", td)
		}
	}

	// process cli params
	config := arcinfo.NewConfig(
		arcinfo.WithLogger(logger),
		arcinfo.WithTelemetryHook(telemetryToLog),
	)
	var opts []arcinfo.SourceOption
	if cli.Fragment {
		opts = append(opts, arcinfo.AsFragment())
	}
	if cli.RangeStart >= 0 && cli.RangeEnd >= 0 {
		opts = append(opts, arcinfo.WithRange(cli.RangeStart, cli.RangeEnd))
	}

	// analyze archive
	analyzer, reader, err := arcinfo.Inspect(cli.Archive, config, opts...)
	if err != nil {
		logger.Error("analysis failed", "err", err)
		os.Exit(-1)
	}
	defer reader.Close()

	if cli.Save != "" {
		written, err := reader.SaveRange(reader.Start(), reader.End(), cli.Save)
		if err != nil {
			logger.Error("saving range failed", "err", err)
			os.Exit(-1)
		}
		fmt.Printf("saved %s to %s\n", codec.FormatSize(uint64(written), 1), cli.Save)
		return
	}

	if cli.List {
		printFileList(analyzer.FileList())
		return
	}
	printSummary(analyzer.Summary())
}

// printSummary writes a human readable summary record to stdout.
func printSummary(s arcinfo.Summary) {
	fmt.Printf("format:   %s %s\n", s.Format, s.Version)
	if s.Path != "" {
		fmt.Printf("path:     %s\n", s.Path)
	}
	fmt.Printf("size:     %s\n", codec.FormatSize(uint64(s.Size), 1))
	fmt.Printf("entries:  %d\n", s.EntryCount)
	fmt.Printf("packed:   %s\n", codec.FormatSize(uint64(s.PackedSize), 1))
	fmt.Printf("unpacked: %s\n", codec.FormatSize(uint64(s.UnpackedSize), 1))
	if s.Fragment {
		fmt.Println("fragment: yes")
	}
}

// printFileList writes the decoded entry table to stdout.
func printFileList(entries []arcinfo.Entry) {
	for _, e := range entries {
		kind := "-"
		if e.IsDir {
			kind = "d"
		}
		fmt.Printf("%s %10s  %8s  %s  %s\n",
			kind,
			codec.FormatSize(uint64(e.Size), 1),
			e.Method,
			e.ModTime.Format("2006-01-02 15:04:05"),
			e.Name)
	}
}
