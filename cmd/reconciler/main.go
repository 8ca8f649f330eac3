package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/customer-recon/internal/config"
	"github.com/customer-recon/internal/export"
	"github.com/customer-recon/internal/input"
	"github.com/customer-recon/internal/model"
	"github.com/customer-recon/internal/normalize"
	"github.com/customer-recon/internal/reconcile"
	"github.com/customer-recon/internal/rules"
	"github.com/customer-recon/internal/signature"
	"github.com/customer-recon/internal/store"
)

func main() {
	// Load environment configuration
	config.LoadEnv()

	rootCmd := &cobra.Command{
		Use:   "reconciler",
		Short: "Customer Name Reconciliation System",
		Long:  `Reconciles customer names from trial balance, FreshBooks and QuickBooks exports into groups of unique customers`,
	}

	rootCmd.AddCommand(createRunCmd())
	rootCmd.AddCommand(createExplainCmd())
	rootCmd.AddCommand(createSplitCmd())
	rootCmd.AddCommand(createSweepCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// loadConfig builds the run configuration from the environment. Flag
// registration binds directly onto the returned struct, so explicit
// flags override environment values which override the defaults.
func loadConfig() *config.Config {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	return cfg
}

// createRunCmd creates the run subcommand
func createRunCmd() *cobra.Command {
	cfg := loadConfig()

	var (
		tbPath     string
		fbPath     string
		qbPath     string
		pgDSN      string
		pgQuery    string
		pgTag      string
		output     string
		storePath  string
		runLabel   string
		noGeoStrip bool
		localDebug bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reconcile customer names across all sources",
		Long:  `Load customer names from the configured exports, group duplicates within and across sources, and write the reconciled groups to CSV`,
		Run: func(cmd *cobra.Command, args []string) {
			start := time.Now()
			cfg.StripGeoTerms = !noGeoStrip
			if runLabel == "" {
				runLabel = fmt.Sprintf("reconcile-%d", time.Now().Unix())
			}

			records := loadRecords(tbPath, fbPath, qbPath, pgDSN, pgQuery, pgTag)
			if len(records) == 0 {
				log.Fatalf("No input records loaded; provide at least one of --tb, --fb, --qb or --postgres-dsn")
			}

			engine, err := reconcile.NewEngine(cfg)
			if err != nil {
				log.Fatalf("Failed to create engine: %v", err)
			}

			result, err := engine.Reconcile(localDebug, records)
			if err != nil {
				log.Fatalf("Reconciliation failed: %v", err)
			}

			files, err := export.WriteGroups(result.Groups, output, cfg.MaxRowsPerFile)
			if err != nil {
				log.Fatalf("Failed to write output: %v", err)
			}

			var runID string
			if storePath != "" {
				st, err := store.Open(storePath)
				if err != nil {
					log.Fatalf("Failed to open run store: %v", err)
				}
				defer st.Close()

				runID, err = st.SaveRun(runLabel, cfg, result, start)
				if err != nil {
					log.Fatalf("Failed to save run: %v", err)
				}
			}

			stats := result.Stats
			fmt.Printf("\nReconciliation complete in %.1f seconds!\n", time.Since(start).Seconds())
			fmt.Printf("\n=== Reconciliation Results ===\n")
			if runID != "" {
				fmt.Printf("Run ID: %s\n", runID)
			}
			fmt.Printf("Run Label: %s\n", runLabel)
			fmt.Printf("Total records: %d\n", stats.TotalRecords)
			fmt.Printf("Total unique customers: %d\n", stats.TotalGroups)
			fmt.Printf("Customers in all 3 systems: %d\n", stats.InThreeSources)
			fmt.Printf("Customers in 2 systems: %d\n", stats.InTwoSources)
			fmt.Printf("Customers in 1 system only: %d\n", stats.InOneSource)
			fmt.Printf("Low-confidence groups: %d\n", stats.LowConfidence)
			fmt.Printf("Candidate pairs: %d\n", stats.CandidatePairs)
			fmt.Printf("Merges: %d within-source, %d cross-source\n", stats.WithinMerges, stats.CrossMerges)
			fmt.Printf("Output files: %s\n", strings.Join(files, ", "))
		},
	}

	cmd.Flags().StringVar(&tbPath, "tb", "tb_customer_names.csv", "Trial balance CSV export (empty to skip)")
	cmd.Flags().StringVar(&fbPath, "fb", "fb_customer_names.csv", "FreshBooks CSV export (empty to skip)")
	cmd.Flags().StringVar(&qbPath, "qb", "qb_customer_names.xlsx", "QuickBooks XLSX export (empty to skip)")
	cmd.Flags().StringVar(&pgDSN, "postgres-dsn", "", "Postgres connection string for an extra name source")
	cmd.Flags().StringVar(&pgQuery, "postgres-query", "", "Query returning one customer name per row")
	cmd.Flags().StringVar(&pgTag, "postgres-source", "TB", "Source tag for Postgres rows (TB, FB or QB)")
	cmd.Flags().StringVar(&output, "output", "customer_reconciliation", "Output base name, without extension")
	cmd.Flags().StringVar(&storePath, "store", "", "SQLite file to record the run in (empty to skip)")
	cmd.Flags().StringVar(&runLabel, "label", "", "Label for this reconciliation run")
	cmd.Flags().Float64Var(&cfg.MinTokenSimilarity, "min-token-similarity", cfg.MinTokenSimilarity, "Minimum per-token similarity (0.0-1.0)")
	cmd.Flags().Float64Var(&cfg.MinMatchRatio, "min-match-ratio", cfg.MinMatchRatio, "Minimum fraction of matched tokens (0.0-1.0)")
	cmd.Flags().BoolVar(&noGeoStrip, "no-geo-strip", !cfg.StripGeoTerms, "Keep geographic terms during normalization")
	cmd.Flags().IntVar(&cfg.Workers, "workers", cfg.Workers, "Number of parallel workers")
	cmd.Flags().IntVar(&cfg.MaxRowsPerFile, "max-rows", cfg.MaxRowsPerFile, "Maximum data rows per output file")
	cmd.Flags().BoolVar(&localDebug, "debug", false, "Print step-by-step engine diagnostics")

	return cmd
}

// loadRecords reads every configured source in TB, FB, QB order. Seq
// values are re-derived after loading so each source numbers its
// records 0..n-1 even when two readers feed the same source tag.
func loadRecords(tbPath, fbPath, qbPath, pgDSN, pgQuery, pgTag string) []model.RawRecord {
	fmt.Println("Loading data files...")

	var records []model.RawRecord
	if tbPath != "" {
		tb, err := input.ReadTB(tbPath)
		if err != nil {
			log.Fatalf("Failed to read TB records: %v", err)
		}
		records = append(records, tb...)
	}
	if fbPath != "" {
		fb, err := input.ReadFB(fbPath)
		if err != nil {
			log.Fatalf("Failed to read FB records: %v", err)
		}
		records = append(records, fb...)
	}
	if qbPath != "" {
		qb, err := input.ReadQB(qbPath)
		if err != nil {
			log.Fatalf("Failed to read QB records: %v", err)
		}
		records = append(records, qb...)
	}
	if pgDSN != "" {
		if pgQuery == "" {
			log.Fatalf("--postgres-dsn requires --postgres-query")
		}
		src, err := model.ParseSource(pgTag)
		if err != nil {
			log.Fatalf("Invalid Postgres source tag: %v", err)
		}
		pg, err := input.ReadPostgres(pgDSN, pgQuery, src)
		if err != nil {
			log.Fatalf("Failed to read Postgres records: %v", err)
		}
		records = append(records, pg...)
	}

	seq := make(map[model.Source]int)
	for i := range records {
		records[i].Seq = seq[records[i].Source]
		seq[records[i].Source]++
	}

	fmt.Printf("\nLoaded %d TB records, %d FB records, and %d QB records\n",
		seq[model.SourceTB], seq[model.SourceFB], seq[model.SourceQB])

	return records
}

// createExplainCmd creates the explain subcommand
func createExplainCmd() *cobra.Command {
	cfg := loadConfig()

	var noGeoStrip bool

	cmd := &cobra.Command{
		Use:   "explain [name-a] [name-b]",
		Short: "Explain how two names compare",
		Long:  `Show every normalization stage, signature bucket, token score and cascade rule evaluated for a pair of names`,
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			cfg.StripGeoTerms = !noGeoStrip
			if err := cfg.Validate(); err != nil {
				log.Fatalf("Invalid configuration: %v", err)
			}

			a := normalize.Derive(model.RawRecord{Source: model.SourceTB, Text: args[0]}, cfg)
			b := normalize.Derive(model.RawRecord{Source: model.SourceFB, Text: args[1]}, cfg)

			printNameForms("A", a)
			printNameForms("B", b)

			ix := signature.BuildIndex([]model.NormalizedName{a, b})
			fmt.Printf("\n=== Signatures ===\n")
			fmt.Printf("A: %s\n", strings.Join(ix.Signatures(0), " | "))
			fmt.Printf("B: %s\n", strings.Join(ix.Signatures(1), " | "))
			if shared := ix.Shared(0, 1); len(shared) == 0 {
				fmt.Println("Shared: none (the pair would never be scored)")
			} else {
				fmt.Printf("Shared: %s\n", strings.Join(shared, " | "))
			}

			pair := rules.NewPair(a, b, cfg)
			fmt.Printf("\n=== Token Scoring ===\n")
			if len(pair.Score.Pairs) == 0 {
				fmt.Println("No token pairs at or above the similarity floor")
			}
			for _, tp := range pair.Score.Pairs {
				fmt.Printf("  %-18s ~ %-18s %.2f\n", tp.A, tp.B, tp.Similarity)
			}
			fmt.Printf("Token similarity: %.3f\n", pair.Score.TokenSimilarity)
			fmt.Printf("Match ratio: %.3f (threshold %.2f)\n", pair.Score.MatchRatio, cfg.MinMatchRatio)

			steps := rules.NewCascade(cfg).Trace(pair)
			fmt.Printf("\n=== Rule Cascade ===\n")
			for _, step := range steps {
				fmt.Printf("  %-22s %s\n", step.Rule, step.Decision)
			}
			last := steps[len(steps)-1]
			fmt.Printf("\nVerdict: %s (decided by %s)\n", last.Decision, last.Rule)
		},
	}

	cmd.Flags().Float64Var(&cfg.MinTokenSimilarity, "min-token-similarity", cfg.MinTokenSimilarity, "Minimum per-token similarity (0.0-1.0)")
	cmd.Flags().Float64Var(&cfg.MinMatchRatio, "min-match-ratio", cfg.MinMatchRatio, "Minimum fraction of matched tokens (0.0-1.0)")
	cmd.Flags().BoolVar(&noGeoStrip, "no-geo-strip", !cfg.StripGeoTerms, "Keep geographic terms during normalization")

	return cmd
}

func printNameForms(label string, n model.NormalizedName) {
	fmt.Printf("\nName %s: %q\n", label, n.Record.Text)
	fmt.Printf("  Cleaned:    %s\n", n.Cleaned)
	fmt.Printf("  Canonical:  %s\n", n.Canonical)
	fmt.Printf("  Normalized: %s\n", n.Normalized)
	fmt.Printf("  Tokens:     %s\n", strings.Join(n.Tokens, ", "))
}

// createSplitCmd creates the split subcommand
func createSplitCmd() *cobra.Command {
	var inputFile string
	var base string
	var maxRows int

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a reconciliation CSV into smaller files",
		Long:  `Re-chunk an existing reconciliation CSV into files of at most the given number of data rows, repeating the header in every part`,
		Run: func(cmd *cobra.Command, args []string) {
			if base == "" {
				base = strings.TrimSuffix(inputFile, ".csv")
			}

			files, err := export.SplitCSV(inputFile, base, maxRows)
			if err != nil {
				log.Fatalf("Failed to split %s: %v", inputFile, err)
			}

			fmt.Printf("\nSplit complete: %d files\n", len(files))
			for _, f := range files {
				fmt.Printf("  %s\n", f)
			}
		},
	}

	cmd.Flags().StringVar(&inputFile, "input", "customer_reconciliation.csv", "CSV file to split")
	cmd.Flags().StringVar(&base, "base", "", "Output base name (defaults to the input name without extension)")
	cmd.Flags().IntVar(&maxRows, "max-rows", 10000, "Maximum data rows per output file")

	return cmd
}

// createSweepCmd creates the sweep subcommand
func createSweepCmd() *cobra.Command {
	cfg := loadConfig()

	var (
		tbPath string
		fbPath string
		qbPath string
		from   float64
		to     float64
		step   float64
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Sweep the match-ratio threshold over a grid",
		Long:  `Run the reconciliation at a range of match-ratio thresholds and report how the grouping responds, to help pick a production threshold`,
		Run: func(cmd *cobra.Command, args []string) {
			if step <= 0 {
				log.Fatalf("Step must be positive, got %.3f", step)
			}
			if from > to {
				log.Fatalf("Sweep range is empty: from %.2f to %.2f", from, to)
			}

			records := loadRecords(tbPath, fbPath, qbPath, "", "", "")
			if len(records) == 0 {
				log.Fatalf("No input records loaded; provide at least one of --tb, --fb or --qb")
			}

			fmt.Printf("\n=== Starting Threshold Sweep ===\n")
			fmt.Printf("Testing ratios %.2f to %.2f in steps of %.2f over %d records\n\n", from, to, step, len(records))

			type sweepRow struct {
				ratio float64
				stats reconcile.Stats
			}
			var rows []sweepRow

			for ratio := from; ratio <= to+1e-9; ratio += step {
				fmt.Printf("Testing ratio %.2f...\n", ratio)

				trial := *cfg
				trial.MinMatchRatio = ratio
				engine, err := reconcile.NewEngine(&trial)
				if err != nil {
					log.Fatalf("Failed to create engine: %v", err)
				}

				result, err := engine.Reconcile(false, records)
				if err != nil {
					log.Fatalf("Reconciliation failed at ratio %.2f: %v", ratio, err)
				}
				rows = append(rows, sweepRow{ratio: ratio, stats: result.Stats})
			}

			fmt.Printf("\n=== Threshold Sweep Results ===\n")
			fmt.Println("Ratio | Groups | 3-Sys | 2-Sys | 1-Sys | Merges | Time(s)")
			fmt.Println("------|--------|-------|-------|-------|--------|--------")
			for _, row := range rows {
				fmt.Printf(" %.2f | %6d | %5d | %5d | %5d | %6d | %.2f\n",
					row.ratio,
					row.stats.TotalGroups,
					row.stats.InThreeSources,
					row.stats.InTwoSources,
					row.stats.InOneSource,
					row.stats.WithinMerges+row.stats.CrossMerges,
					row.stats.Elapsed.Seconds())
			}
		},
	}

	cmd.Flags().StringVar(&tbPath, "tb", "tb_customer_names.csv", "Trial balance CSV export (empty to skip)")
	cmd.Flags().StringVar(&fbPath, "fb", "fb_customer_names.csv", "FreshBooks CSV export (empty to skip)")
	cmd.Flags().StringVar(&qbPath, "qb", "qb_customer_names.xlsx", "QuickBooks XLSX export (empty to skip)")
	cmd.Flags().Float64Var(&from, "from", 0.50, "Lowest match ratio to test")
	cmd.Flags().Float64Var(&to, "to", 0.90, "Highest match ratio to test")
	cmd.Flags().Float64Var(&step, "step", 0.05, "Ratio increment between tests")

	return cmd
}
