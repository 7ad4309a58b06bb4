package commands

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/sift/internal/scheduler"
	"github.com/wonny/sift/internal/scheduler/jobs"
	"github.com/wonny/sift/pkg/logger"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage the job scheduler",
	Long: `Starts the scheduler daemon or inspects its jobs.

Registered jobs:
- daily_screen:   screening pass on SCHEDULE_CRON (weekdays 15:40 by default)
- artifact_prune: weekly retention sweep over the results directory

Subcommands:
  start   - start the scheduler daemon
  list    - list registered jobs
  run     - run a specific job immediately
  status  - show job execution statistics

Example:
  go run ./cmd/sift scheduler start
  go run ./cmd/sift scheduler list
  go run ./cmd/sift scheduler run daily_screen`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler daemon",
		Long: `Starts the scheduler and schedules all registered jobs.

The daemon keeps running until interrupted with Ctrl+C.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run a specific job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runSchedulerJob,
	}

	schedulerStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show job execution statistics",
		RunE:  showSchedulerStatus,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
	schedulerCmd.AddCommand(schedulerStatusCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Sift Scheduler ===")

	sched, deps, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer deps.Close()

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, deps, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer deps.Close()

	fmt.Println("Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}

	return nil
}

func runSchedulerJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	fmt.Printf("Running job: %s\n", jobName)

	sched, deps, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer deps.Close()

	if err := sched.RunJob(jobName); err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	// RunJob is asynchronous. Wait for the result so the command exits
	// with a useful status.
	for {
		if stat, ok := sched.GetJobStats()[jobName]; ok && stat.TotalRuns > 0 {
			if stat.FailureCount > 0 {
				history, err := sched.GetJobHistory(jobName)
				if err != nil {
					return err
				}
				return fmt.Errorf("job failed: %s", history.Results[0].Error)
			}
			fmt.Println("✅ Job completed")
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}
}

func showSchedulerStatus(cmd *cobra.Command, args []string) error {
	sched, deps, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer deps.Close()

	stats := sched.GetJobStats()

	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("Job Statistics:")
	fmt.Println()

	for _, jobName := range names {
		stat := stats[jobName]

		fmt.Printf("📊 %s\n", jobName)
		fmt.Printf("   Schedule: %s\n", stat.Schedule)
		fmt.Printf("   Total Runs: %d\n", stat.TotalRuns)
		fmt.Printf("   Success: %d (%.1f%%)\n", stat.SuccessCount, stat.SuccessRate*100)
		fmt.Printf("   Failures: %d\n", stat.FailureCount)

		if stat.LastRun != nil {
			fmt.Printf("   Last Run: %s\n", stat.LastRun.Format("2006-01-02 15:04:05"))
		}

		if stat.LastSuccess != nil {
			fmt.Printf("   Last Success: %s\n", stat.LastSuccess.Format("2006-01-02 15:04:05"))
		}

		if stat.LastFailure != nil {
			fmt.Printf("   Last Failure: %s\n", stat.LastFailure.Format("2006-01-02 15:04:05"))
		}

		fmt.Println()
	}

	return nil
}

// initScheduler wires a scheduler with the production jobs. The caller
// owns the returned deps and must Close them.
func initScheduler() (*scheduler.Scheduler, *appDeps, error) {
	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Wire screening dependencies
	deps, err := initDeps(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	// 4. Register jobs
	sched, err := buildScheduler(deps)
	if err != nil {
		deps.Close()
		return nil, nil, err
	}

	return sched, deps, nil
}

// buildScheduler registers the production jobs on a fresh scheduler.
func buildScheduler(deps *appDeps) (*scheduler.Scheduler, error) {
	profile, err := deps.registry.Get(deps.cfg.Screen.Strategy)
	if err != nil {
		return nil, err
	}
	scr, err := deps.newScreener(profile)
	if err != nil {
		return nil, err
	}

	sched := scheduler.New(deps.log)
	if err := sched.AddJob(jobs.NewScreenJob(scr, deps.store, deps.cfg.Schedule.Spec, deps.log)); err != nil {
		return nil, fmt.Errorf("register screen job: %w", err)
	}
	if err := sched.AddJob(jobs.NewArtifactPruneJob(deps.cfg.Screen.ResultsDir, 90, deps.log)); err != nil {
		return nil, fmt.Errorf("register prune job: %w", err)
	}

	return sched, nil
}
