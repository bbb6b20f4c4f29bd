package cli

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"code-atlas/src/config"
	"code-atlas/src/controller"
	"code-atlas/src/model"
	"code-atlas/src/util"
)

type analyzeOptions struct {
	project   string
	output    string
	format    string
	threshold int
	intent    string
	workers   int
	timeout   time.Duration
}

func (h *Handler) analyzeCmd() *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze <path>...",
		Short: "Analyze source files, directories or zip archives",
		Long:  "Runs all enabled detectors over the given files and prints or writes the analysis report",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := h.applyOverrides(cmd, opts.overrides()); err != nil {
				return err
			}

			files, err := collectFiles(args)
			if err != nil {
				return err
			}

			project := opts.project
			if project == "" {
				project = filepath.Base(filepath.Clean(args[0]))
			}

			util.Info("Analyzing %s: %d inputs (timeout: %v)", project, len(files), opts.timeout)

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			analysisCtrl := controller.NewAnalysisController(h.cfg)
			report, err := analysisCtrl.Analyze(ctx, controller.AnalyzeRequest{
				ProjectName: project,
				Files:       files,
			})
			if err != nil {
				util.Error("Analysis failed: %v", err)
				return fmt.Errorf("analysis failed: %w", err)
			}

			reportCtrl := controller.NewReportController(h.cfg)
			if opts.output != "" {
				h.cfg.Output.OutputDir = opts.output
				if opts.format != "" {
					h.cfg.Output.Formats = []string{opts.format}
				}

				paths, err := reportCtrl.GenerateReports(report)
				if err != nil {
					return fmt.Errorf("generating reports: %w", err)
				}
				for _, path := range paths {
					fmt.Fprintf(os.Stderr, "Report written to %s\n", path)
				}
			} else {
				output, err := reportCtrl.GenerateToString(report, stdoutFormat(opts.format, term.IsTerminal(int(os.Stdout.Fd()))))
				if err != nil {
					return fmt.Errorf("generating report: %w", err)
				}
				fmt.Println(output)
			}

			fmt.Fprintf(os.Stderr, "\nAnalysis complete:\n")
			fmt.Fprintf(os.Stderr, "  Files analyzed: %d (%d skipped)\n", report.TotalFiles, len(report.Metadata.Skipped))
			fmt.Fprintf(os.Stderr, "  Smells: %d, hotspots: %d\n", len(report.Smells), len(report.Hotspots))
			fmt.Fprintf(os.Stderr, "  Health: %d/100 (%s)\n", report.HealthIndex, report.HealthLabel)

			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.project, "project", "p", "", "Project name (defaults to the first path's base name)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output directory; prints to stdout when empty")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Output format (json, markdown, sarif)")
	cmd.Flags().IntVar(&opts.threshold, "threshold", 0, "Cyclomatic complexity threshold")
	cmd.Flags().StringVar(&opts.intent, "intent", "", "Refactor intent (maintainability, performance, refactoring)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "Number of files analyzed in parallel")
	cmd.Flags().DurationVarP(&opts.timeout, "timeout", "t", 5*time.Minute, "Analysis timeout")

	return cmd
}

func (o *analyzeOptions) overrides() []override {
	return []override{
		{"threshold", func(cfg *config.Config) { cfg.Detectors.Complexity.Threshold = o.threshold }},
		{"intent", func(cfg *config.Config) { cfg.Refactor.Intent = o.intent }},
		{"workers", func(cfg *config.Config) { cfg.Concurrency.Workers = o.workers }},
	}
}

// stdoutFormat picks markdown for an interactive terminal and json otherwise
func stdoutFormat(requested string, interactive bool) string {
	if requested != "" {
		return requested
	}
	if interactive {
		return "markdown"
	}
	return "json"
}

// collectFiles reads each argument. Directories are walked and their files
// named relative to the directory; everything else is read as one file.
func collectFiles(args []string) ([]model.SubmittedFile, error) {
	var files []model.SubmittedFile

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", arg, err)
		}

		if !info.IsDir() {
			content, err := os.ReadFile(arg)
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", arg, err)
			}
			files = append(files, model.SubmittedFile{Name: filepath.ToSlash(filepath.Base(arg)), Content: content})
			continue
		}

		root := arg
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if d.Name() == ".git" {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}

			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			content, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			files = append(files, model.SubmittedFile{Name: filepath.ToSlash(rel), Content: content})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", root, err)
		}
	}

	util.Debug("Collected %d files from %d arguments", len(files), len(args))
	return files, nil
}
