// Copyright 2025 The Link2Trust Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command crypscan scans a directory tree for cryptographic libraries, key
// material, key-management commands, and hardcoded secrets, and reports the
// findings as JSON, SARIF, or a CBOM.
package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/Link2Trust/crypscan"
	"github.com/Link2Trust/crypscan/cbom"
	"github.com/Link2Trust/crypscan/detector"
	"github.com/Link2Trust/crypscan/detector/artifact"
	"github.com/Link2Trust/crypscan/detector/library"
	"github.com/Link2Trust/crypscan/detector/secrets"
	"github.com/Link2Trust/crypscan/log"
	"github.com/Link2Trust/crypscan/report"
	"github.com/Link2Trust/crypscan/server"
)

const version = "0.1.0"

const (
	defaultOutput     = "web/data/findings.json"
	defaultCBOMOutput = "web/data/cbom.json"
)

type options struct {
	configFile      string
	path            string
	output          string
	mimeFilter      bool
	skipSecrets     bool
	workers         int
	maxFileSizeMB   int
	includeGlob     string
	excludeGlob     string
	secretRuleset   string
	placeholderMode string
	verbose         bool
	debug           bool
	cbomRequested   bool
	cbomOutput      string
	cbomFormat      string
	appName         string
	sarifOutput     string
	serve           bool
	addr            string
	showVersion     bool
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, err := parseArgs(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}

		return 2
	}

	if opts.showVersion {
		fmt.Printf("crypscan %s\n", version)
		return 0
	}

	configureLogging(opts)

	if opts.serve {
		return runServer(opts)
	}

	return runScan(opts)
}

// parseArgs parses command line flags and overlays values from the optional
// config file and CRYPSCAN_* environment variables. Flags given on the command
// line always win. parseArgs reports its own errors on the flag set's output.
func parseArgs(args []string) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("crypscan", flag.ContinueOnError)
	fs.StringVar(&opts.configFile, "config", "", "Path to a YAML, TOML, or JSON config file")
	fs.StringVar(&opts.path, "path", ".", "Directory to scan")
	fs.StringVar(&opts.output, "output", defaultOutput, "Path of the findings report")
	fs.BoolVar(&opts.mimeFilter, "mime-filter", false, "Skip files whose sniffed MIME type marks them as prose")
	fs.BoolVar(&opts.skipSecrets, "skip-secrets", false, "Disable the secret detector")
	fs.IntVar(&opts.workers, "workers", 0, "Number of scan workers, 0 uses all CPUs")
	fs.IntVar(&opts.maxFileSizeMB, "max-file-size-mb", 10, "Maximum file size in megabytes for secret scanning, 0 disables the limit")
	fs.StringVar(&opts.includeGlob, "include", "", "Glob of relative paths to scan, empty scans everything")
	fs.StringVar(&opts.excludeGlob, "exclude", "", "Glob of relative paths to skip")
	fs.StringVar(&opts.secretRuleset, "secret-ruleset", "", "Path to a gitleaks TOML config replacing the builtin secret rules")
	fs.StringVar(&opts.placeholderMode, "placeholder-mode", secrets.PlaceholderModePrefix, "Placeholder matching mode for secret filtering, prefix or contains")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")
	fs.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&opts.cbomRequested, "cbom", false, "Generate a CBOM from the findings report")
	fs.StringVar(&opts.cbomOutput, "cbom-output", defaultCBOMOutput, "Path of the generated CBOM")
	fs.StringVar(&opts.cbomFormat, "cbom-format", cbom.FormatJSON, "CBOM format: json, xml, cyclonedx-json, or cyclonedx-xml")
	fs.StringVar(&opts.appName, "app-name", "", "Application name recorded in the CBOM metadata")
	fs.StringVar(&opts.sarifOutput, "sarif", "", "Write a SARIF report to the given path")
	fs.BoolVar(&opts.serve, "serve", false, "Run the scan web server instead of a one-shot scan")
	fs.StringVar(&opts.addr, "addr", ":8080", "Listen address for -serve")
	fs.BoolVar(&opts.showVersion, "version", false, "Print the version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := applyConfig(fs, opts.configFile); err != nil {
		fmt.Fprintf(fs.Output(), "crypscan: %v\n", err)
		return nil, err
	}

	if err := validateOptions(opts); err != nil {
		fmt.Fprintf(fs.Output(), "crypscan: %v\n", err)
		return nil, err
	}

	return opts, nil
}

// applyConfig overlays config file and environment values onto flags the user
// did not set on the command line. Config keys and environment suffixes use
// the flag names, so -max-file-size-mb maps to CRYPSCAN_MAX_FILE_SIZE_MB.
func applyConfig(fs *flag.FlagSet, configFile string) error {
	v := viper.New()
	v.SetEnvPrefix("CRYPSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	setOnCommandLine := map[string]bool{}
	fs.Visit(func(f *flag.Flag) {
		setOnCommandLine[f.Name] = true
	})

	var overlayErr error
	fs.VisitAll(func(f *flag.Flag) {
		if overlayErr != nil || setOnCommandLine[f.Name] || f.Name == "config" {
			return
		}

		if !v.IsSet(f.Name) {
			return
		}

		if err := f.Value.Set(v.GetString(f.Name)); err != nil {
			overlayErr = fmt.Errorf("invalid config value for %s: %w", f.Name, err)
		}
	})

	return overlayErr
}

func validateOptions(opts *options) error {
	switch opts.placeholderMode {
	case secrets.PlaceholderModePrefix, secrets.PlaceholderModeContains:
	default:
		return fmt.Errorf("invalid placeholder mode %q, want prefix or contains", opts.placeholderMode)
	}

	switch opts.cbomFormat {
	case "json", "xml", "cyclonedx-json", "cyclonedx-xml":
	default:
		return fmt.Errorf("invalid cbom format %q, want json, xml, cyclonedx-json, or cyclonedx-xml", opts.cbomFormat)
	}

	if opts.maxFileSizeMB < 0 {
		return fmt.Errorf("max-file-size-mb must not be negative")
	}

	if opts.workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}

	return nil
}

func configureLogging(opts *options) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{})
	if opts.verbose || opts.debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	log.SetLogger(logger)
}

func runScan(opts *options) int {
	result, err := scan(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Scan failed: %v\n", err)
		return 1
	}

	fmt.Println("✅ Scan complete")

	if err := report.WriteFindings(opts.output, result.Findings); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Error writing findings: %v\n", err)
		return 1
	}

	fmt.Printf("✅ Findings written to %s\n", opts.output)
	printSummary(result)

	if opts.cbomRequested {
		if err := writeCBOM(opts, result); err != nil {
			fmt.Fprintf(os.Stderr, "❌ Error generating CBOM: %v\n", err)
			return 1
		}

		fmt.Printf("✅ CBOM written to %s\n", opts.cbomOutput)
	}

	if opts.sarifOutput != "" {
		if err := writeSARIF(opts.sarifOutput, result.Findings); err != nil {
			fmt.Fprintf(os.Stderr, "❌ Error writing SARIF report: %v\n", err)
			return 1
		}

		fmt.Printf("✅ SARIF report written to %s\n", opts.sarifOutput)
	}

	return 0
}

func scan(opts *options) (*crypscan.Result, error) {
	secretOpts := []secrets.Option{
		secrets.WithMaxFileSize(opts.maxFileSizeMB),
		secrets.WithPlaceholderMode(opts.placeholderMode),
	}
	if opts.secretRuleset != "" {
		secretOpts = append(secretOpts, secrets.WithRuleset(opts.secretRuleset))
	}

	scanOpts := []crypscan.Option{
		crypscan.WithDetectors(
			library.New(),
			artifact.NewCommandDetector(),
			secrets.New(secretOpts...),
			artifact.NewKeystoreDetector(),
		),
		crypscan.WithMIMEFilter(opts.mimeFilter),
		crypscan.WithWorkers(opts.workers),
	}
	if opts.skipSecrets {
		scanOpts = append(scanOpts, crypscan.WithoutSecretScan())
	}
	if opts.includeGlob != "" {
		scanOpts = append(scanOpts, crypscan.WithIncludeGlob(opts.includeGlob))
	}
	if opts.excludeGlob != "" {
		scanOpts = append(scanOpts, crypscan.WithExcludeGlob(opts.excludeGlob))
	}
	if progress := progressPrinter(); progress != nil {
		scanOpts = append(scanOpts, crypscan.WithProgress(progress))
	}

	return crypscan.Scan(opts.path, scanOpts...)
}

// progressPrinter returns a progress callback when stderr is a terminal, nil
// otherwise so batch runs and redirected output stay quiet.
func progressPrinter() func(done, total int) {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil
	}

	return func(done, total int) {
		fmt.Fprintf(os.Stderr, "\r🔍 Scanning [%d/%d] files", done, total)
		if done == total {
			fmt.Fprintln(os.Stderr)
		}
	}
}

func printSummary(result *crypscan.Result) {
	fmt.Printf("Scanned %d files in %s (%d skipped)\n", result.FilesScanned, result.Duration.Round(time.Millisecond), result.FilesSkipped)
	fmt.Printf("Findings: %d\n", len(result.Findings))

	counts := map[detector.Category]int{}
	for _, finding := range result.Findings {
		counts[finding.Category]++
	}

	for _, category := range []detector.Category{
		detector.CategoryLibrary,
		detector.CategoryKeyCommand,
		detector.CategorySecret,
		detector.CategoryKeystore,
	} {
		if counts[category] > 0 {
			fmt.Printf("  %-12s %d\n", category, counts[category])
		}
	}

	if result.Git != nil {
		ref := result.Git.ShortHash()
		if result.Git.Branch != "" {
			ref = result.Git.Branch + "@" + ref
		}

		fmt.Printf("Repository: %s\n", ref)
	}
}

// writeCBOM reads the findings report back from disk and synthesizes the
// CBOM from it. A missing report is an error, never an empty document.
func writeCBOM(opts *options, result *crypscan.Result) error {
	findings, err := report.ReadFindings(opts.output)
	if err != nil {
		return err
	}

	generatorOpts := []cbom.Option{}
	if opts.appName != "" {
		generatorOpts = append(generatorOpts, cbom.WithTargetName(opts.appName))
	}
	if result.Git != nil {
		generatorOpts = append(generatorOpts, cbom.WithGit(result.Git))
	}

	doc, err := cbom.NewGenerator(generatorOpts...).Generate(findings)
	if err != nil {
		return err
	}

	f, err := createFile(opts.cbomOutput)
	if err != nil {
		return err
	}
	defer f.Close()

	switch opts.cbomFormat {
	case "cyclonedx-json":
		return cbom.ExportCycloneDX(f, doc, cbom.FormatJSON)
	case "cyclonedx-xml":
		return cbom.ExportCycloneDX(f, doc, cbom.FormatXML)
	case "xml":
		return cbom.ExportXML(f, doc)
	default:
		return cbom.ExportJSON(f, doc)
	}
}

func writeSARIF(path string, findings []detector.Finding) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return report.WriteSARIF(f, findings)
}

func createFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	return os.Create(path)
}

func runServer(opts *options) int {
	srv := server.NewServer(server.WithOutput(opts.output))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(opts.addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Infof("(crypscan) received %v, shutting down", sig)
		if err := srv.Stop(); err != nil {
			log.Errorf("(crypscan) error stopping server: %v", err)
		}
		<-errCh
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "❌ Server failed: %v\n", err)
			return 1
		}
	}

	return 0
}
