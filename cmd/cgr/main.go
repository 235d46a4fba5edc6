// Command cgr answers a single routing request against a local contact
// plan: load the plan, run the requested search variant, and print the
// result as JSON or text.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/signalsfoundry/contact-graph-router/core"
	"github.com/signalsfoundry/contact-graph-router/internal/ingest"
	"github.com/signalsfoundry/contact-graph-router/internal/render"
	"github.com/signalsfoundry/contact-graph-router/model"
)

type options struct {
	contactsPath string
	src          int
	dst          int
	t0           float64
	bundleBytes  float64
	expiry       float64
	kConsume     int
	kYen         int
	pretty       bool
	format       string
}

func main() {
	opts := options{}
	flag.StringVar(&opts.contactsPath, "contacts", "", "path to the contact plan (.csv, .yaml)")
	flag.IntVar(&opts.src, "src", -1, "source node id")
	flag.IntVar(&opts.dst, "dst", -1, "destination node id")
	flag.Float64Var(&opts.t0, "t0", 0, "bundle dispatch time in seconds")
	flag.Float64Var(&opts.bundleBytes, "bytes", 0, "bundle size in bytes")
	flag.Float64Var(&opts.expiry, "expiry", 0, "relative TTL in seconds (0 = none)")
	flag.IntVar(&opts.kConsume, "k", 1, "number of routes via capacity consumption")
	flag.IntVar(&opts.kYen, "k-yen", 0, "number of diversified routes (takes precedence over -k)")
	flag.BoolVar(&opts.pretty, "pretty", false, "indent JSON output")
	flag.StringVar(&opts.format, "format", "json", "output format: json or text")
	flag.Parse()

	if err := validate(&opts); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	if err := run(&opts); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func validate(opts *options) error {
	if opts.contactsPath == "" {
		return fmt.Errorf("missing -contacts <file>")
	}
	if opts.src < 0 {
		return fmt.Errorf("missing or invalid -src")
	}
	if opts.dst < 0 {
		return fmt.Errorf("missing or invalid -dst")
	}
	if opts.bundleBytes <= 0 {
		return fmt.Errorf("-bytes must be > 0")
	}
	if opts.t0 < 0 || opts.expiry < 0 {
		return fmt.Errorf("-t0 and -expiry must be >= 0")
	}
	if opts.format != "json" && opts.format != "text" {
		return fmt.Errorf("-format must be json or text")
	}
	if opts.kConsume < 1 {
		opts.kConsume = 1
	}
	if opts.kYen < 0 {
		opts.kYen = 0
	}
	return nil
}

func run(opts *options) error {
	plan, skipped, err := ingest.LoadPlanFile(opts.contactsPath)
	if err != nil {
		return err
	}
	if len(plan) == 0 {
		return fmt.Errorf("%s: %w", opts.contactsPath, ingest.ErrNoContacts)
	}
	if skipped > 0 {
		fmt.Fprintf(os.Stderr, "warning: skipped %d malformed row(s)\n", skipped)
	}

	ni := core.BuildNeighborIndex(plan)
	req := &model.RouteRequest{
		SrcNode:     opts.src,
		DstNode:     opts.dst,
		T0:          opts.t0,
		BundleBytes: opts.bundleBytes,
		ExpiryRel:   opts.expiry,
	}

	// Diversification wins when both K variants are requested.
	if opts.kYen > 0 {
		rs := core.KByDiversification(plan, req, ni, opts.kYen)
		return writeRouteSet(opts, &rs, "diversified routes (no consumption)")
	}

	if opts.kConsume == 1 {
		r := core.BestRoute(plan, req, ni)
		if opts.format == "text" {
			render.WriteRouteText(os.Stdout, &r, opts.t0)
			return nil
		}
		return render.WriteRouteJSON(os.Stdout, &r, opts.t0, opts.pretty)
	}

	rs := core.KByConsumption(plan, req, ni, opts.kConsume)
	return writeRouteSet(opts, &rs, "routes by capacity consumption")
}

func writeRouteSet(opts *options, rs *model.RouteSet, title string) error {
	if opts.format == "text" {
		render.WriteRouteSetText(os.Stdout, rs, opts.t0, title)
		return nil
	}
	return render.WriteRouteSetJSON(os.Stdout, rs, opts.t0, opts.pretty)
}
