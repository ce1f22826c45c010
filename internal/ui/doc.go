// Package ui provides the terminal output components of the argus CLI.
//
// Components are rendered with Lipgloss and printed once; nothing here
// waits for user input except PromptLine. The interactive region picker
// lives in package picker.
//
// # Components
//
//   - Banner: ascii banner with tagline
//   - Header: command box showing the operation and its parameters
//   - Progress: step list plus a bar for step or item counts
//   - Result: success, failure and warning boxes
//   - ListBox: titled list of lines for verbose mode
//   - Catalog and history tables (lipgloss/table)
//
// A Runner strings these together for multi-step commands:
//
//	runner := ui.NewRunner(ui.RunnerConfig{
//	    Title:     "Region Scan",
//	    Command:   "argus scan -c US",
//	    Params:    []ui.Field{{Key: "Region", Value: "US - United States"}},
//	    StepNames: []string{"Resolve pages", "Fetch pages", "Save results"},
//	    Live:      ui.IsTerminal(os.Stdout),
//	})
//
//	_, err := runner.Run(ctx, func(ctx context.Context, onStep ui.StepCallback) ([]ui.Field, error) {
//	    onStep(1, ui.StepRunning, "")
//	    // ... do work ...
//	    onStep(1, ui.StepComplete, "12 pages")
//	    return nil, nil
//	})
//
// # Logging
//
// zap output goes to stderr and is silent unless ARGUS_LOG_LEVEL or
// --log-level is set, so the curated output here stays readable.
package ui
