package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/muurk/argus/internal/config"
	"github.com/muurk/argus/internal/crawler"
	"github.com/muurk/argus/internal/directory"
	"github.com/muurk/argus/internal/logging"
	"github.com/muurk/argus/internal/picker"
	"github.com/muurk/argus/internal/probe"
	"github.com/muurk/argus/internal/report"
	"github.com/muurk/argus/internal/ui"
	"github.com/muurk/argus/internal/version"
)

// Scan command flags
var (
	scanCountry string
	scanOutput  string
	scanPages   int
	scanVerbose bool
	scanTest    bool
)

// Probe command flags
var probeVerbose bool

func init() {
	scanCmd.Flags().StringVarP(&scanCountry, "country", "c", "", "Country code to scan (prompted when omitted)")
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "", "Output file name (default: <CODE>_cameras.txt)")
	scanCmd.Flags().IntVarP(&scanPages, "pages", "p", 0, "Maximum page index to fetch (0 = all pages)")
	scanCmd.Flags().BoolVarP(&scanVerbose, "verbose", "v", false, "Echo every reachability result")
	scanCmd.Flags().BoolVarP(&scanTest, "test", "t", false, "Test which cameras are accessible")

	// Bare `argus` runs a scan with the same flags
	rootCmd.Flags().AddFlagSet(scanCmd.Flags())

	probeCmd.Flags().BoolVarP(&probeVerbose, "verbose", "v", false, "Echo every reachability result")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(countriesCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
}

// countriesCmd lists the directory catalog
var countriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "List regions known to the directory",
	Long: `Fetch the directory's region catalog and print every region code with
its name and the number of cameras the directory lists for it.`,
	RunE: runCountries,
}

func runCountries(cmd *cobra.Command, args []string) error {
	_, s, err := effectiveSettings(cmd)
	if err != nil {
		return err
	}
	out := ui.NewPrinter(cmd.OutOrStdout())

	catalog, err := newDirectoryClient(s).FetchCatalog(cmd.Context())
	if err != nil {
		out.PrintError(directory.ShortMessage(err), err, directory.Hint(err))
		return err
	}

	out.PrintHeader("Available Countries", commandLine(), []ui.Field{{Key: "Directory", Value: s.BaseURL}})
	out.Println(ui.RenderCatalog(catalog.Regions()))
	return nil
}

// scanCmd crawls one region
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Collect camera endpoints for a region",
	Long: `Collect every camera endpoint the directory lists for a region.

The catalog is fetched first. Without --country a region is chosen
interactively. Every listing page is then fetched in parallel, and the
endpoints are saved in page order to <CODE>_cameras.txt (or --output).

With --test each endpoint is checked, and those answering HTTP 200 are
saved to <CODE>_accessible.txt.`,
	Example: `  # Pick a region interactively
  argus scan

  # Scan the first four pages (0-3) of US and test accessibility
  argus scan -c US -p 3 -t

  # Echo each reachability result
  argus scan -c FR -t -v`,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	reg, s, err := effectiveSettings(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	out := ui.NewPrinter(cmd.OutOrStdout())
	out.PrintBanner(version.Version)

	client := newDirectoryClient(s)
	catalog, err := client.FetchCatalog(ctx)
	if err != nil {
		out.PrintError(directory.ShortMessage(err), err, directory.Hint(err))
		return err
	}

	code := scanCountry
	if code == "" {
		if code, err = chooseRegion(catalog, out); err != nil {
			return err
		}
	}
	region, err := catalog.Lookup(directory.NormalizeCode(code))
	if err != nil {
		out.PrintError("Invalid country code", err, directory.Hint(err))
		return err
	}

	output := scanOutput
	if output == "" {
		output = report.CamerasFile(region.Code)
	}
	sink := report.FileSink{Dir: s.OutputDir}

	steps := []string{"Resolve listing pages", "Fetch listing pages", "Save endpoint list"}
	if scanTest {
		steps = append(steps, "Test accessibility", "Save accessible list")
	}

	runner := ui.NewRunner(ui.RunnerConfig{
		Title:   "Region Scan",
		Command: commandLine(),
		Params: []ui.Field{
			{Key: "Region", Value: region.Code + " - " + region.Name},
			{Key: "Listed", Value: plural(region.Count, "camera")},
			{Key: "Max pages", Value: maxPagesLabel(s.MaxPages)},
			{Key: "Output", Value: sink.Path(output)},
		},
		StepNames: steps,
		Verbose:   s.Verbose,
		Live:      ui.IsTerminal(os.Stdout),
		Hints:     directory.Hint,
	})

	job := &scanJob{
		source:   client,
		prober:   newProber(s),
		settings: s,
		registry: reg,
		region:   region,
		output:   output,
		sink:     sink,
		test:     scanTest,
		runner:   runner,
	}
	if _, err := runner.Run(ctx, job.run); err != nil {
		return err
	}

	if err := reg.Save(); err != nil {
		logging.Warn("Could not save scan history", zap.Error(err))
	}
	return nil
}

// chooseRegion asks for a region code: the picker on a terminal, a line
// prompt under the printed catalog otherwise.
func chooseRegion(catalog directory.Catalog, out *ui.Printer) (string, error) {
	if ui.IsTerminal(os.Stdin) && ui.IsTerminal(os.Stdout) {
		return picker.Run(catalog.Regions())
	}

	out.Println(ui.RenderCatalog(catalog.Regions()))
	out.Newline()
	code, err := ui.PromptLine(os.Stdin, os.Stdout, "Enter country code (##): ")
	if errors.Is(err, ui.ErrNoInput) {
		return "", errors.New("no country code given (use --country)")
	}
	return code, err
}

// scanJob is one region scan as run under a ui.Runner
type scanJob struct {
	source   crawler.PageSource
	prober   *probe.Prober
	settings *config.Settings
	registry *config.Registry
	region   directory.Region
	output   string
	sink     report.Sink
	test     bool
	runner   *ui.Runner
}

// Step numbers of a scan
const (
	stepResolve = iota + 1
	stepFetch
	stepSave
	stepProbe
	stepSaveAccessible
)

func (j *scanJob) run(ctx context.Context, onStep ui.StepCallback) ([]ui.Field, error) {
	code := j.region.Code

	c := crawler.New(j.source)
	c.Workers = j.settings.FetchWorkers

	total, fetched := 0, 0
	c.OnResolve = func(lastPage int) {
		if lastPage < 0 {
			onStep(stepResolve, ui.StepComplete, "no listings")
			return
		}
		total = lastPage + 1
		onStep(stepResolve, ui.StepComplete, plural(total, "page"))
		onStep(stepFetch, ui.StepRunning, "")
	}
	c.OnPage = func(crawler.PageResult) {
		fetched++
		j.runner.Counter("pages", fetched, total)
	}

	onStep(stepResolve, ui.StepRunning, "")
	result, err := c.Crawl(ctx, code, j.settings.MaxPages)
	if err != nil {
		if total == 0 {
			onStep(stepResolve, ui.StepFailed, "")
		} else {
			onStep(stepFetch, ui.StepFailed, "")
		}
		return nil, err
	}
	if ctx.Err() != nil {
		onStep(stepFetch, ui.StepFailed, "interrupted")
		return nil, fmt.Errorf("scan interrupted: %w", ctx.Err())
	}

	details := []ui.Field{{Key: "Region", Value: code + " - " + j.region.Name}}

	if result.LastPage < 0 {
		for step := stepFetch; step <= j.lastStep(); step++ {
			onStep(step, ui.StepSkipped, "")
		}
		j.registry.RecordScan(code, j.region.Name, 0, 0, nil, "")
		return append(details, ui.Field{Key: "Cameras", Value: "none listed"}), nil
	}

	failed := result.Failed()
	note := plural(len(result.Endpoints), "camera")
	if len(failed) > 0 {
		note += fmt.Sprintf(", %s skipped", plural(len(failed), "page"))
		j.runner.AddWarning("Some listing pages could not be fetched", []ui.Field{
			{Key: "Skipped pages", Value: ui.JoinInts(failed)},
			{Key: "Kept", Value: plural(len(result.Endpoints), "camera") + " from the other pages"},
		})
		j.runner.AddList(ui.NewListBox("Skipped pages", pageErrors(result.Pages)).SetMaxLines(20))
	}
	onStep(stepFetch, ui.StepComplete, note)
	details = append(details,
		ui.Field{Key: "Pages", Value: strconv.Itoa(total)},
		ui.Field{Key: "Cameras", Value: strconv.Itoa(len(result.Endpoints))},
	)

	saved := j.save(stepSave, onStep, j.output, result.Endpoints)
	if saved != "" {
		details = append(details, ui.Field{Key: "Saved to", Value: saved})
	}
	j.registry.RecordScan(code, j.region.Name, total, len(result.Endpoints), failed, saved)

	if !j.test {
		return details, nil
	}
	if len(result.Endpoints) == 0 {
		onStep(stepProbe, ui.StepSkipped, "nothing to test")
		onStep(stepSaveAccessible, ui.StepSkipped, "")
		return details, nil
	}

	onStep(stepProbe, ui.StepRunning, "")
	reachable, err := probeEndpoints(ctx, j.prober, j.runner, result.Endpoints, j.settings.Verbose)
	if err != nil {
		onStep(stepProbe, ui.StepFailed, "")
		return details, err
	}
	onStep(stepProbe, ui.StepComplete, fmt.Sprintf("%d of %d accessible", len(reachable), len(result.Endpoints)))
	j.registry.RecordProbe(code, len(reachable))
	details = append(details, ui.Field{Key: "Accessible", Value: strconv.Itoa(len(reachable))})

	if len(reachable) == 0 {
		onStep(stepSaveAccessible, ui.StepSkipped, "no accessible cameras")
		return details, nil
	}
	if path := j.save(stepSaveAccessible, onStep, report.AccessibleFile(code), reachable); path != "" {
		details = append(details, ui.Field{Key: "Accessible list", Value: path})
	}
	j.runner.AddList(ui.NewListBox("Accessible cameras", reachable).SetMaxLines(50))
	return details, nil
}

func (j *scanJob) lastStep() int {
	if j.test {
		return stepSaveAccessible
	}
	return stepSave
}

// save writes lines through the sink. A failed write is reported as a
// warning and yields an empty path; the scan results are kept.
func (j *scanJob) save(step int, onStep ui.StepCallback, name string, lines []string) string {
	onStep(step, ui.StepRunning, "")
	n, err := j.sink.Write(name, lines)
	if err != nil {
		onStep(step, ui.StepFailed, "")
		j.runner.AddWarning("List not saved", []ui.Field{
			{Key: "File", Value: name},
			{Key: "Error", Value: err.Error()},
		})
		logging.Warn("Failed to save list", zap.String("file", name), zap.Error(err))
		return ""
	}

	path := name
	if fs, ok := j.sink.(report.FileSink); ok {
		path = fs.Path(name)
	}
	onStep(step, ui.StepComplete, fmt.Sprintf("%s, %s", path, plural(n, "line")))
	return path
}

// probeEndpoints checks every endpoint, updating the runner's counter, and
// returns the reachable ones in input order. In verbose mode one line per
// endpoint is echoed, also in input order.
func probeEndpoints(ctx context.Context, p *probe.Prober, runner *ui.Runner, endpoints []string, verbose bool) ([]string, error) {
	var done atomic.Int64
	p.OnResult = func(probe.Outcome) {
		runner.Counter("checked", int(done.Add(1)), len(endpoints))
	}

	outcomes, err := p.ProbeAll(ctx, endpoints)
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("accessibility test interrupted: %w", ctx.Err())
	}

	if verbose {
		for _, o := range outcomes {
			runner.Println(ui.ProbeLine(o.Endpoint, o.Reachable))
		}
	}
	return probe.Reachable(outcomes), nil
}

// probeCmd tests a saved endpoint list
var probeCmd = &cobra.Command{
	Use:   "probe FILE",
	Short: "Test which cameras of a saved list are accessible",
	Long: `Read a saved endpoint list, one URL per line, and check each endpoint.
Endpoints answering HTTP 200 are written next to FILE as
<name>_accessible<ext>.`,
	Example: `  argus probe US_cameras.txt
  argus probe US_cameras.txt -v --probe-timeout 3s`,
	Args: cobra.ExactArgs(1),
	RunE: runProbe,
}

func runProbe(cmd *cobra.Command, args []string) error {
	_, s, err := effectiveSettings(cmd)
	if err != nil {
		return err
	}
	path := args[0]

	endpoints, err := report.ReadLines(path)
	if err != nil {
		return err
	}
	output := report.AccessibleFileFor(path)

	runner := ui.NewRunner(ui.RunnerConfig{
		Title:   "Accessibility Test",
		Command: commandLine(),
		Params: []ui.Field{
			{Key: "Input", Value: path},
			{Key: "Endpoints", Value: strconv.Itoa(len(endpoints))},
			{Key: "Timeout", Value: s.ProbeTimeout.String()},
			{Key: "Output", Value: output},
		},
		StepNames: []string{"Test accessibility", "Save accessible list"},
		Verbose:   s.Verbose,
		Live:      ui.IsTerminal(os.Stdout),
	})

	prober := newProber(s)
	_, err = runner.Run(cmd.Context(), func(ctx context.Context, onStep ui.StepCallback) ([]ui.Field, error) {
		onStep(1, ui.StepRunning, "")
		reachable, err := probeEndpoints(ctx, prober, runner, endpoints, s.Verbose)
		if err != nil {
			onStep(1, ui.StepFailed, "")
			return nil, err
		}
		onStep(1, ui.StepComplete, fmt.Sprintf("%d of %d accessible", len(reachable), len(endpoints)))

		details := []ui.Field{
			{Key: "Tested", Value: strconv.Itoa(len(endpoints))},
			{Key: "Accessible", Value: strconv.Itoa(len(reachable))},
		}
		if len(reachable) == 0 {
			onStep(2, ui.StepSkipped, "no accessible cameras")
			return details, nil
		}

		onStep(2, ui.StepRunning, "")
		if _, err := (report.FileSink{}).Write(output, reachable); err != nil {
			onStep(2, ui.StepFailed, "")
			return details, err
		}
		onStep(2, ui.StepComplete, output)
		return append(details, ui.Field{Key: "Saved to", Value: output}), nil
	})
	return err
}

// historyCmd shows recorded scans
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show previously scanned regions",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}

		codes := make([]string, 0, len(reg.Regions))
		for code := range reg.Regions {
			codes = append(codes, code)
		}
		sort.Strings(codes)

		rows := make([]ui.HistoryRow, 0, len(codes))
		for _, code := range codes {
			rec := reg.Regions[code]
			rows = append(rows, ui.HistoryRow{
				Code:        code,
				Name:        rec.Name,
				LastScanned: rec.LastScanned,
				Pages:       rec.Pages,
				Endpoints:   rec.Endpoints,
				FailedPages: len(rec.FailedPages),
				Reachable:   rec.Reachable,
				Output:      rec.Output,
			})
		}

		out := ui.NewPrinter(cmd.OutOrStdout())
		path, _ := reg.Path()
		out.PrintHeader("Scan History", commandLine(), []ui.Field{{Key: "Config", Value: path}})
		out.Println(ui.RenderHistory(rows))
		return nil
	},
}

// configCmd groups config file commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the argus config file",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Config file written", []ui.Field{{Key: "Path", Value: path}})
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	Long: `Print the settings argus would run with: the config file merged with
any global flags given on this command line.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, s, err := effectiveSettings(cmd)
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(s)
		if err != nil {
			return fmt.Errorf("failed to encode settings: %w", err)
		}

		path, _ := reg.Path()
		fmt.Printf("# %s\n%s", path, data)
		return nil
	},
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.GetConfigPath()
}

// pageErrors formats failed pages for the verbose list box
func pageErrors(pages []crawler.PageResult) []string {
	var lines []string
	for _, p := range pages {
		if p.Err != nil {
			lines = append(lines, fmt.Sprintf("page %d: %s", p.Page, directory.ShortMessage(p.Err)))
		}
	}
	return lines
}

func commandLine() string {
	return strings.TrimSpace("argus " + strings.Join(os.Args[1:], " "))
}

func maxPagesLabel(maxPages int) string {
	if maxPages <= 0 {
		return "all"
	}
	return fmt.Sprintf("pages 0-%d", maxPages)
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
