package main

import (
	"fmt"

	"parley/internal/models"

	"github.com/spf13/cobra"
)

var commentContent string

var commentsListCmd = &cobra.Command{
	Use:   "list <post-id>",
	Short: "List a post's top-level comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		postID, err := parseID(args[0], "post")
		if err != nil {
			return err
		}
		comments, err := svc.TopLevelComments(cmd.Context(), postID)
		if err != nil {
			return describeErr(err)
		}
		if len(comments) == 0 {
			fmt.Println("No comments yet")
			return nil
		}
		printComments(comments, 0)
		return nil
	},
}

var commentsShowCmd = &cobra.Command{
	Use:   "show <post-id> <comment-id>",
	Short: "Show one comment with its direct replies",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		postID, commentID, err := parseCommentArgs(args)
		if err != nil {
			return err
		}
		comment, err := svc.GetComment(cmd.Context(), postID, commentID)
		if err != nil {
			return describeErr(err)
		}
		printComments([]models.Comment{*comment}, 0)

		replies, err := svc.ChildrenOf(cmd.Context(), postID, commentID)
		if err != nil {
			return describeErr(err)
		}
		printComments(replies, 1)
		return nil
	},
}

var commentsAddCmd = &cobra.Command{
	Use:   "add <post-id>",
	Short: "Comment on a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		postID, err := parseID(args[0], "post")
		if err != nil {
			return err
		}
		if commentContent == "" {
			return fmt.Errorf("--content is required")
		}
		created, err := svc.AddComment(cmd.Context(), postID, commentContent)
		if err != nil {
			return describeErr(err)
		}
		fmt.Printf("Posted comment #%d\n", created.ID)
		return nil
	},
}

var commentsReplyCmd = &cobra.Command{
	Use:   "reply <post-id> <comment-id>",
	Short: "Reply to a comment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		postID, parentID, err := parseCommentArgs(args)
		if err != nil {
			return err
		}
		if commentContent == "" {
			return fmt.Errorf("--content is required")
		}
		created, err := svc.Reply(cmd.Context(), postID, parentID, commentContent)
		if err != nil {
			return describeErr(err)
		}
		fmt.Printf("Posted reply #%d\n", created.ID)
		return nil
	},
}

var commentsEditCmd = &cobra.Command{
	Use:   "edit <post-id> <comment-id>",
	Short: "Edit a comment you own",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		postID, commentID, err := parseCommentArgs(args)
		if err != nil {
			return err
		}
		if commentContent == "" {
			return fmt.Errorf("--content is required")
		}
		comment, err := svc.GetComment(cmd.Context(), postID, commentID)
		if err != nil {
			return describeErr(err)
		}
		if err := svc.EditComment(cmd.Context(), *comment, commentContent); err != nil {
			return describeErr(err)
		}
		fmt.Printf("Updated comment #%d\n", commentID)
		return nil
	},
}

var commentsRmCmd = &cobra.Command{
	Use:   "rm <post-id> <comment-id>",
	Short: "Delete a comment you own, and its replies",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		postID, commentID, err := parseCommentArgs(args)
		if err != nil {
			return err
		}
		comment, err := svc.GetComment(cmd.Context(), postID, commentID)
		if err != nil {
			return describeErr(err)
		}
		if err := svc.DeleteComment(cmd.Context(), *comment); err != nil {
			return describeErr(err)
		}
		fmt.Printf("Deleted comment #%d\n", commentID)
		return nil
	},
}

func parseCommentArgs(args []string) (postID, commentID uint, err error) {
	postID, err = parseID(args[0], "post")
	if err != nil {
		return 0, 0, err
	}
	commentID, err = parseID(args[1], "comment")
	if err != nil {
		return 0, 0, err
	}
	return postID, commentID, nil
}
