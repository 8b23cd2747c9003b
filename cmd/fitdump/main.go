package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/edaniels/golog"

	fitdecode "github.com/lucasjlepore/fit-decoder"
	"github.com/lucasjlepore/fit-decoder/export"
	"github.com/lucasjlepore/fit-decoder/measurement"
	"github.com/lucasjlepore/fit-decoder/profile"
	"github.com/lucasjlepore/fit-decoder/stream"
)

func main() {
	var (
		units       = flag.String("units", "metric", "Display-unit system: metric or statute")
		jsonOut     = flag.Bool("json", false, "Emit one JSON object per decoded message")
		parquetPath = flag.String("parquet", "", "Write record-message samples to this parquet file")
		overrides   = flag.String("overrides", "", "YAML file naming fields unknown to the built-in profile")
		debug       = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <path-to-fit-file>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	sys := measurement.Metric
	switch *units {
	case "metric":
	case "statute":
		sys = measurement.Statute
	default:
		fmt.Fprintf(os.Stderr, "unknown unit system %q\n", *units)
		os.Exit(2)
	}

	logger := golog.NewLogger("fitdump")
	if *debug {
		logger = golog.NewDebugLogger("fitdump")
	}

	prof := profile.Default()
	if *overrides != "" {
		ov, err := profile.LoadOverrides(*overrides)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load overrides failed: %v\n", err)
			os.Exit(1)
		}
		prof.Apply(ov)
	}

	path := flag.Arg(0)
	file, err := stream.ReadFile(path, stream.Options{
		Units:   sys,
		Profile: prof,
		Logger:  logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode failed: %v\n", err)
		os.Exit(1)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		for _, rec := range file.Records {
			entry := map[string]any{
				"message": rec.Type(),
				"fields": rec.Snapshot(fitdecode.SnapshotOptions{
					OmitInvalid:   true,
					FoldTimestamp: true,
				}),
			}
			if err := enc.Encode(entry); err != nil {
				fmt.Fprintf(os.Stderr, "json encode failed: %v\n", err)
				os.Exit(1)
			}
		}
	} else {
		fmt.Printf("%s: protocol %d, profile %d, %d bytes of data\n",
			path, file.Header.ProtocolVersion, file.Header.ProfileVersion, file.Header.DataSize)
		fmt.Printf("header crc ok: %t, file crc ok: %t\n", file.HeaderCRCValid, file.FileCRCValid)
		fmt.Printf("%d definitions, %d data messages\n", file.DefinitionCount, len(file.Records))
		counts := make(map[string]int)
		for _, rec := range file.Records {
			counts[rec.Type()]++
		}
		for name, n := range counts {
			fmt.Printf("- %s: %d\n", name, n)
		}
	}

	if *parquetPath != "" {
		if err := export.WriteFile(*parquetPath, file.Records); err != nil {
			fmt.Fprintf(os.Stderr, "parquet export failed: %v\n", err)
			os.Exit(1)
		}
	}
}
