package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"media-job-service/internal/entity"
)

var (
	ownerID   string
	jobStatus string
	jobsLimit int
)

var agentJobsCmd = &cobra.Command{
	Use:     "agent-jobs",
	Aliases: []string{"aj"},
	Short:   "Inspect and cancel agent jobs",
}

var agentJobsGetCmd = &cobra.Command{
	Use:   "get <job-id>",
	Short: "Show an agent job",
	Args:  cobra.ExactArgs(1),
	RunE:  runAgentJobsGet,
}

var agentJobsCancelCmd = &cobra.Command{
	Use:   "cancel <job-id>",
	Short: "Cancel a queued agent job",
	Long:  `Deletes the job if it is still queued. Jobs that are processing or finished cannot be cancelled.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runAgentJobsCancel,
}

var agentJobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List an owner's agent jobs",
	Args:  cobra.NoArgs,
	RunE:  runAgentJobsList,
}

func init() {
	rootCmd.AddCommand(agentJobsCmd)
	agentJobsCmd.AddCommand(agentJobsGetCmd)
	agentJobsCmd.AddCommand(agentJobsCancelCmd)
	agentJobsCmd.AddCommand(agentJobsListCmd)

	agentJobsCmd.PersistentFlags().StringVar(&ownerID, "owner", "", "owning user id (required)")
	_ = agentJobsCmd.MarkPersistentFlagRequired("owner")

	agentJobsListCmd.Flags().StringVar(&jobStatus, "status", "", "filter: queued, processing, completed, failed")
	agentJobsListCmd.Flags().IntVar(&jobsLimit, "limit", 50, "max jobs")
}

func parseJobID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid job id %q: %w", s, err)
	}
	return id, nil
}

func runAgentJobsGet(cmd *cobra.Command, args []string) error {
	id, err := parseJobID(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	core, err := openCore(ctx, 0)
	if err != nil {
		return err
	}
	defer core.Close()

	j, err := core.AgentJobs.Get(ctx, id, ownerID)
	if err != nil {
		return describe(err, id)
	}
	if isJSONOutput() {
		return printJSON(cmd.OutOrStdout(), j)
	}
	printAgentJob(cmd.OutOrStdout(), j)
	return nil
}

func runAgentJobsCancel(cmd *cobra.Command, args []string) error {
	id, err := parseJobID(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	core, err := openCore(ctx, 0)
	if err != nil {
		return err
	}
	defer core.Close()

	if err := core.AgentJobs.Cancel(ctx, id, ownerID); err != nil {
		return describe(err, id)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Agent job %s cancelled.\n", id)
	return nil
}

func runAgentJobsList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	core, err := openCore(ctx, 0)
	if err != nil {
		return err
	}
	defer core.Close()

	jobs, err := core.AgentJobs.List(ctx, ownerID, entity.AgentJobStatus(jobStatus), jobsLimit)
	if err != nil {
		return err
	}
	if isJSONOutput() {
		return printJSON(cmd.OutOrStdout(), jobs)
	}
	printAgentJobs(cmd.OutOrStdout(), jobs)
	return nil
}

func describe(err error, id uuid.UUID) error {
	switch {
	case errors.Is(err, entity.ErrNotFound):
		return fmt.Errorf("agent job %s not found for owner %q", id, ownerID)
	case errors.Is(err, entity.ErrInvalidState):
		return fmt.Errorf("agent job %s is no longer queued and cannot be cancelled", id)
	default:
		return err
	}
}
