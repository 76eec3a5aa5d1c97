package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var approvalsCmd = &cobra.Command{
	Use:   "approvals",
	Short: "Manage pending reindex approvals",
	Long: `When confirmation gating is enabled, edits to indexed entries wait
for a human decision instead of reindexing immediately. These commands
list the pending approvals and resolve them.`,
	RunE: runApprovalsList,
}

var approvalsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending approvals",
	RunE:  runApprovalsList,
}

var approvalsAcceptCmd = &cobra.Command{
	Use:   "accept [approval-id]",
	Short: "Accept an approval and run the reindex",
	Args:  cobra.ExactArgs(1),
	RunE:  runApprovalsAccept,
}

var approvalsSkipCmd = &cobra.Command{
	Use:   "skip [approval-id]",
	Short: "Skip an approval, leaving the index stale",
	Args:  cobra.ExactArgs(1),
	RunE:  runApprovalsSkip,
}

func init() {
	approvalsCmd.AddCommand(approvalsListCmd)
	approvalsCmd.AddCommand(approvalsAcceptCmd)
	approvalsCmd.AddCommand(approvalsSkipCmd)
	rootCmd.AddCommand(approvalsCmd)
}

func runApprovalsList(cmd *cobra.Command, _ []string) error {
	if coordinator == nil {
		return errors.New("reindex coordinator not configured")
	}

	pending, err := coordinator.Pending(context.Background())
	if err != nil {
		return fmt.Errorf("list approvals: %w", err)
	}

	if len(pending) == 0 {
		cmd.Println("No pending approvals.")
		return nil
	}

	cmd.Printf("Pending approvals (%d):\n", len(pending))
	cmd.Println()
	for _, approval := range pending {
		est := approval.Estimate
		cmd.Printf("  %s\n", approval.ID)
		cmd.Printf("    Entry:     %s (%s)\n", est.Title, est.EntryID)
		cmd.Printf("    Languages: %s\n", strings.Join(est.Languages, ", "))
		cmd.Printf("    Size:      %d chars, estimated cost %.4f\n", est.CharCount, est.Cost)
		if est.Diff != "" {
			cmd.Printf("    Change:    %s\n", strings.TrimSpace(est.Diff))
		}
		cmd.Printf("    Raised:    %s\n", approval.CreatedAt.Format("2006-01-02 15:04"))
		cmd.Println()
	}
	return nil
}

func runApprovalsAccept(cmd *cobra.Command, args []string) error {
	if coordinator == nil {
		return errors.New("reindex coordinator not configured")
	}

	id := args[0]
	if err := coordinator.Accept(context.Background(), id); err != nil {
		return fmt.Errorf("accept approval: %w", err)
	}
	cmd.Printf("Approval %s accepted, reindex complete\n", id)
	return nil
}

func runApprovalsSkip(cmd *cobra.Command, args []string) error {
	if coordinator == nil {
		return errors.New("reindex coordinator not configured")
	}

	id := args[0]
	if err := coordinator.Skip(context.Background(), id); err != nil {
		return fmt.Errorf("skip approval: %w", err)
	}
	cmd.Printf("Approval %s skipped, index left as is\n", id)
	return nil
}
