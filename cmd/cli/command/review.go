package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Read and write reviews",
	Long:  `List the reviews of a title, post your own (one per title, score 1-10) or delete one.`,
}

var listReviewsCmd = &cobra.Command{
	Use:   "list [title-id]",
	Short: "List reviews of a title",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, err := parseID("title", args[0])
		if err != nil {
			return err
		}
		page, _ := cmd.Flags().GetInt("page")

		ctx, cancel := commandContext(cmd)
		defer cancel()

		result, err := newClient().ListReviews(ctx, titleID, page)
		if err != nil {
			return fmt.Errorf("failed to list reviews: %w", err)
		}
		if len(result.Data) == 0 {
			fmt.Println("No reviews yet.")
			return nil
		}

		for _, r := range result.Data {
			heading("#%d %s scored %d/10", r.ID, r.Author, r.Score)
			fmt.Println(r.Text)
			fmt.Printf("Posted at: %s\n", r.PubDate.Format("2006-01-02 15:04:05"))
			fmt.Println(strings.Repeat("-", 50))
		}
		return nil
	},
}

var postReviewCmd = &cobra.Command{
	Use:   "post [title-id] [score] [text]",
	Short: "Review a title",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, err := parseID("title", args[0])
		if err != nil {
			return err
		}
		score, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid score: %w", err)
		}
		if score < 1 || score > 10 {
			return fmt.Errorf("score must be between 1 and 10")
		}
		text := strings.Join(args[2:], " ")

		c, err := authenticatedClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		r, err := c.PostReview(ctx, titleID, text, score)
		if err != nil {
			return fmt.Errorf("failed to post review: %w", err)
		}

		success("Review #%d posted", r.ID)
		return nil
	},
}

var deleteReviewCmd = &cobra.Command{
	Use:   "delete [title-id] [review-id]",
	Short: "Delete a review you wrote (moderators may delete any)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, err := parseID("title", args[0])
		if err != nil {
			return err
		}
		reviewID, err := parseID("review", args[1])
		if err != nil {
			return err
		}

		c, err := authenticatedClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		if err := c.DeleteReview(ctx, titleID, reviewID); err != nil {
			return fmt.Errorf("failed to delete review: %w", err)
		}
		success("Review #%d deleted", reviewID)
		return nil
	},
}

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Read and write comments on reviews",
}

var listCommentsCmd = &cobra.Command{
	Use:   "list [title-id] [review-id]",
	Short: "List comments on a review",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, err := parseID("title", args[0])
		if err != nil {
			return err
		}
		reviewID, err := parseID("review", args[1])
		if err != nil {
			return err
		}
		page, _ := cmd.Flags().GetInt("page")

		ctx, cancel := commandContext(cmd)
		defer cancel()

		result, err := newClient().ListComments(ctx, titleID, reviewID, page)
		if err != nil {
			return fmt.Errorf("failed to list comments: %w", err)
		}
		if len(result.Data) == 0 {
			fmt.Println("No comments yet.")
			return nil
		}
		for _, cm := range result.Data {
			fmt.Printf("[%s] %s: %s\n", cm.PubDate.Format("2006-01-02 15:04"), cm.Author, cm.Text)
		}
		return nil
	},
}

var postCommentCmd = &cobra.Command{
	Use:   "post [title-id] [review-id] [text]",
	Short: "Comment on a review",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, err := parseID("title", args[0])
		if err != nil {
			return err
		}
		reviewID, err := parseID("review", args[1])
		if err != nil {
			return err
		}

		c, err := authenticatedClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		cm, err := c.PostComment(ctx, titleID, reviewID, strings.Join(args[2:], " "))
		if err != nil {
			return fmt.Errorf("failed to post comment: %w", err)
		}
		success("Comment #%d posted", cm.ID)
		return nil
	},
}

func parseID(kind, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID %q", kind, s)
	}
	return id, nil
}

func init() {
	reviewCmd.AddCommand(listReviewsCmd, postReviewCmd, deleteReviewCmd)
	commentCmd.AddCommand(listCommentsCmd, postCommentCmd)

	listReviewsCmd.Flags().Int("page", 1, "page number")
	listCommentsCmd.Flags().Int("page", 1, "page number")
}
