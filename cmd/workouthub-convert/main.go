package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/claude/workouthub/internal/ingest"
	"github.com/claude/workouthub/internal/ingest/builtin"
	"github.com/claude/workouthub/internal/models"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	inPath := flag.String("in", "", "input file (- for stdin)")
	outPath := flag.String("out", "", "output file (default stdout)")
	from := flag.String("from", "", "input format: fit, tcx, zwo, krd (default: inferred from -in)")
	to := flag.String("to", "", "output format (default: inferred from -out)")
	sport := flag.String("sport", "", "sport to assume when the input names none")
	verbose := flag.Bool("v", false, "log debug detail, including every dropped or preserved field")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("workouthub-convert", Version)
		return
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *inPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: workouthub-convert -in <file> [-out <file>] [-from fmt] [-to fmt] [-sport s]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	src, err := resolveFormat(*from, *inPath)
	if err != nil {
		log.Error("cannot determine input format", "error", err)
		os.Exit(1)
	}
	dst, err := resolveFormat(*to, *outPath)
	if err != nil {
		log.Error("cannot determine output format", "error", err)
		os.Exit(1)
	}

	opts := ingest.DefaultOptions()
	if *sport != "" {
		s, ok := models.ParseSport(*sport)
		if !ok {
			log.Error("unknown sport", "sport", *sport)
			os.Exit(1)
		}
		opts.DefaultSport = s
	}

	in, err := openInput(*inPath)
	if err != nil {
		log.Error("failed to open input", "error", err)
		os.Exit(1)
	}
	defer in.Close()

	// Buffer the output so a failed conversion never truncates an existing file.
	var out bytes.Buffer
	start := time.Now()
	result, err := builtin.Registry(opts, log).Convert(src, dst, in, &out)
	if err != nil {
		var verrs models.ValidationErrors
		if errors.As(err, &verrs) {
			for _, v := range verrs {
				log.Error("invalid document", "field", v.Field, "problem", v.Message)
			}
		}
		log.Error("conversion failed", "error", err)
		os.Exit(1)
	}

	if err := writeOutput(*outPath, out.Bytes()); err != nil {
		log.Error("failed to write output", "error", err)
		os.Exit(1)
	}

	log.Info("converted",
		"from", result.From,
		"to", result.To,
		"type", result.DocumentType,
		"steps", result.Steps,
		"records", result.Records,
		"bytes_in", result.BytesIn,
		"bytes_out", result.BytesOut,
		"duration", time.Since(start).String(),
	)
}

func resolveFormat(name, path string) (ingest.Format, error) {
	if name != "" {
		return ingest.ParseFormat(name)
	}
	if path == "" || path == "-" {
		return "", errors.New("format flag is required when reading stdin or writing stdout")
	}
	return ingest.FormatFromPath(path)
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
