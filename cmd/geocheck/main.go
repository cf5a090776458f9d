// Command geocheck validates a GeoJSON FeatureCollection offline and can
// write a repaired copy.
//
//	geocheck [--fix] [--out repaired.geojson] [--json] places.geojson
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/samirrijal/geoexport/internal/core/compliance"
	"github.com/samirrijal/geoexport/internal/core/domain"
	"github.com/samirrijal/geoexport/internal/core/export"
	"github.com/samirrijal/geoexport/internal/pkg/geojson"
)

// errInvalid is returned when the checked document still has errors.
var errInvalid = errors.New("document has validation errors")

type options struct {
	fix      bool
	out      string
	jsonOut  bool
	document string
}

func main() {
	var opts options
	flags := pflag.NewFlagSet("geocheck", pflag.ContinueOnError)
	flags.BoolVar(&opts.fix, "fix", false, "close rings and round coordinates before validating")
	flags.StringVarP(&opts.out, "out", "o", "", "write the (repaired) document to this file")
	flags.BoolVar(&opts.jsonOut, "json", false, "print the outcome as JSON")
	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}
	if flags.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: geocheck [--fix] [--out file] [--json] <places.geojson>")
		os.Exit(2)
	}
	opts.document = flags.Arg(0)

	data, err := os.ReadFile(opts.document)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	err = run(data, opts, os.Stdout)
	switch {
	case errors.Is(err, errInvalid):
		os.Exit(1)
	case err != nil:
		fmt.Fprintln(os.Stderr, "geocheck:", err)
		os.Exit(2)
	}
}

func run(data []byte, opts options, w io.Writer) error {
	fc, err := geojson.Decode(data)
	if err != nil {
		return err
	}

	var changes []string
	if opts.fix {
		before := compliance.Validate(fc)
		fc = compliance.Fix(fc)
		changes = append(changes, fmt.Sprintf("Repaired document (%d errors before repair)", len(before.Errors)))
	}
	outcome := compliance.Validate(fc)

	if opts.out != "" {
		doc, err := geojson.Encode(fc)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.out, doc, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", opts.out, err)
		}
	}

	if opts.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(struct {
			domain.ValidationOutcome
			FeatureCount int `json:"feature_count"`
		}{outcome, fc.Len()}); err != nil {
			return err
		}
	} else {
		if _, err := w.Write(export.RenderReport(fc, outcome, changes, time.Now().UTC())); err != nil {
			return err
		}
	}

	if !outcome.Valid {
		return errInvalid
	}
	return nil
}
