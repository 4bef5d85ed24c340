package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/dcl10/WfExS-backend/internal/app"
	"github.com/dcl10/WfExS-backend/internal/config"
	"github.com/dcl10/WfExS-backend/internal/domain"
	"github.com/dcl10/WfExS-backend/internal/manifest"
	"github.com/dcl10/WfExS-backend/pkg/version"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "wfexs",
	Short: "Resolve and materialize git-hosted workflow content",
	Long: `WfExS resolves loosely specified references to git-hosted content,
workflow files, repository subdirectories or whole repositories, into
pinned repository coordinates, and materializes them locally.

It understands explicit git URLs, GitHub and GitLab web URLs, owner/repo
shorthands and raw.githubusercontent.com links, and probes unknown hosts
with remote refs listings when asked to.`,
	Version: version.Short(),
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.wfexs/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("workspace", "", "Directory holding materialized checkouts")
	rootCmd.PersistentFlags().Duration("timeout", 90*time.Second, "HTTP request timeout")
	rootCmd.PersistentFlags().String("user-agent", "", "Custom User-Agent for HTTP requests")

	// Resolve flags
	resolveCmd.Flags().Bool("probe", true, "Probe ambiguous hosts with remote refs listings")
	resolveCmd.Flags().Bool("fail-ok", false, "Tolerate references that cannot be identified")
	resolveCmd.Flags().Bool("json", false, "Print the resolution as JSON instead of YAML")

	// Fetch flags
	fetchCmd.Flags().StringP("output", "o", "", "Destination path for the fetched content")
	fetchCmd.Flags().String("descriptor", "", "Write a provenance sidecar to this path")
	fetchCmd.Flags().Bool("update", false, "Refresh an existing checkout before delivery")
	_ = fetchCmd.MarkFlagRequired("output")

	// Batch flags
	batchCmd.Flags().StringP("output", "o", "", "Write the JSON report here instead of stdout")
	batchCmd.Flags().Bool("no-progress", false, "Disable the progress bar")

	// Bind flags to viper
	_ = viper.BindPFlag("workspace.directory", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("http.timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	_ = viper.BindPFlag("http.user_agent", rootCmd.PersistentFlags().Lookup("user-agent"))
	_ = viper.BindPFlag("workspace.update", fetchCmd.Flags().Lookup("update"))

	// Add subcommands
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// signalContext returns a context that is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "Shutting down gracefully...")
		cancel()
	}()

	return ctx, cancel
}

func newOrchestrator(progress bool) (*app.Orchestrator, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	orch, err := app.NewOrchestrator(app.OrchestratorOptions{
		Config:   cfg,
		Verbose:  verbose,
		Progress: progress,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create orchestrator: %w", err)
	}
	return orch, nil
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [reference]",
	Short: "Resolve a reference to pinned repository coordinates",
	Long: `Resolve maps a reference, a git URL, a repository web URL, an
owner/repo shorthand or a raw file link, to the repository it lives in,
the tag or branch it names and the path inside the checkout.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func runResolve(cmd *cobra.Command, args []string) error {
	orch, err := newOrchestrator(false)
	if err != nil {
		return err
	}
	defer orch.Close()

	ctx, cancel := signalContext()
	defer cancel()

	opts := orch.BaseResolveOptions()
	if cmd.Flags().Changed("probe") {
		opts.AllowProbe, _ = cmd.Flags().GetBool("probe")
	}
	if cmd.Flags().Changed("fail-ok") {
		opts.FailOK, _ = cmd.Flags().GetBool("fail-ok")
	}

	repo, err := orch.Resolve(ctx, args[0], opts)
	if err != nil {
		return err
	}
	if repo == nil {
		fmt.Fprintf(os.Stderr, "%s was not identified as a git repository\n", args[0])
		return nil
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	return printRepo(cmd.OutOrStdout(), repo, asJSON)
}

// printRepo writes a resolution result as YAML or JSON.
func printRepo(w io.Writer, repo *domain.RemoteRepo, asJSON bool) error {
	if asJSON {
		data, err := json.MarshalIndent(repo, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	data, err := yaml.Marshal(repo)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [reference]",
	Short: "Materialize a reference and deliver its content",
	Long: `Fetch resolves a reference, clones and checks out the repository it
names, and delivers the addressed content, a single file or a directory
tree, to the output path. Plain http:// and https:// downloads are
handled too.`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func runFetch(cmd *cobra.Command, args []string) error {
	orch, err := newOrchestrator(false)
	if err != nil {
		return err
	}
	defer orch.Close()

	ctx, cancel := signalContext()
	defer cancel()

	dest, _ := cmd.Flags().GetString("output")
	descriptorPath, _ := cmd.Flags().GetString("descriptor")

	result, err := orch.Fetch(ctx, args[0], dest, descriptorPath)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Delivered %s content to %s\n", result.Kind, dest)
	return nil
}

var batchCmd = &cobra.Command{
	Use:   "batch [manifest]",
	Short: "Resolve every reference in a manifest",
	Long: `Batch loads a YAML or JSON manifest of references, resolves them in
parallel and emits a JSON report with one entry per reference. Each
reference can override the run-wide probe and fail_ok settings.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func runBatch(cmd *cobra.Command, args []string) error {
	m, err := manifest.NewLoader().Load(args[0])
	if err != nil {
		return err
	}

	noProgress, _ := cmd.Flags().GetBool("no-progress")
	orch, err := newOrchestrator(!noProgress)
	if err != nil {
		return err
	}
	defer orch.Close()

	ctx, cancel := signalContext()
	defer cancel()

	results, batchErr := orch.ResolveBatch(ctx, m)

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = m.Options.Output
	}
	if len(results) > 0 {
		if err := app.WriteBatchReport(output, results); err != nil {
			return err
		}
	}
	return batchErr
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check system dependencies",
	Long:  "Verifies that the environment is ready for resolving and materializing repositories.",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Checking system dependencies...")
		allPassed := true

		// Check 1: Internet connection
		fmt.Print("  Internet connection: ")
		if checkInternet() {
			fmt.Println("OK")
		} else {
			fmt.Println("FAILED")
			allPassed = false
		}

		// Check 2: Config file
		fmt.Print("  Config file: ")
		_, err := config.Load()
		if err != nil {
			fmt.Printf("WARN (%v)\n", err)
		} else {
			fmt.Println("OK")
		}

		// Check 3: Workspace directory
		fmt.Print("  Workspace directory: ")
		workspace := config.WorkspaceDir()
		if checkWorkspaceDir(workspace) {
			fmt.Printf("OK (%s)\n", workspace)
		} else {
			fmt.Println("WARN (will be created on first use)")
		}

		// Check 4: Write permissions
		fmt.Print("  Write permissions: ")
		if checkWritePermissions() {
			fmt.Println("OK")
		} else {
			fmt.Println("FAILED")
			allPassed = false
		}

		fmt.Println()
		if allPassed {
			fmt.Println("All critical checks passed!")
		} else {
			fmt.Println("Some checks failed. Please resolve the issues above.")
		}
		return nil
	},
}

// checkInternet checks if there's an internet connection
func checkInternet() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, "https://github.com", nil)
	if err != nil {
		return false
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 400
}

// checkWorkspaceDir checks if the checkout workspace exists
func checkWorkspaceDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// checkWritePermissions checks if we can write to the current directory
func checkWritePermissions() bool {
	tmpFile := ".wfexs_test_write"
	f, err := os.Create(tmpFile)
	if err != nil {
		return false
	}
	f.Close()
	os.Remove(tmpFile)
	return true
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Full())
	},
}
