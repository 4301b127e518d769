package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	postsTopic  string
	postTitle   string
	postTopic   string
	postContent string
)

func runPostsList(cmd *cobra.Command, args []string) error {
	if _, err := svc.RefreshPosts(cmd.Context()); err != nil {
		return describeErr(err)
	}
	posts := svc.Posts(postsTopic)
	if len(posts) == 0 {
		fmt.Println("No posts yet")
		return nil
	}
	printPosts(posts)
	return nil
}

var postsShowCmd = &cobra.Command{
	Use:   "show <post-id>",
	Short: "Show one post with its top-level comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "post")
		if err != nil {
			return err
		}
		post, err := svc.GetPost(cmd.Context(), id)
		if err != nil {
			return describeErr(err)
		}
		printPost(*post)

		comments, err := svc.TopLevelComments(cmd.Context(), id)
		if err != nil {
			return describeErr(err)
		}
		fmt.Printf("\n%d comment(s)\n", len(comments))
		printComments(comments, 1)
		return nil
	},
}

var postsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a post",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if postTitle == "" || postContent == "" {
			return fmt.Errorf("--title and --content are required")
		}
		created, err := svc.CreatePost(cmd.Context(), postTitle, postTopic, postContent)
		if err != nil {
			return describeErr(err)
		}
		fmt.Printf("Created post #%d\n", created.ID)
		return nil
	},
}

var postsEditCmd = &cobra.Command{
	Use:   "edit <post-id>",
	Short: "Edit a post you own",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "post")
		if err != nil {
			return err
		}
		post, err := svc.GetPost(cmd.Context(), id)
		if err != nil {
			return describeErr(err)
		}
		title, topic, content := post.Title, post.Topic, post.Content
		if cmd.Flags().Changed("title") {
			title = postTitle
		}
		if cmd.Flags().Changed("topic") {
			topic = postTopic
		}
		if cmd.Flags().Changed("content") {
			content = postContent
		}
		if err := svc.UpdatePost(cmd.Context(), *post, title, topic, content); err != nil {
			return describeErr(err)
		}
		fmt.Printf("Updated post #%d\n", id)
		return nil
	},
}

var postsRmCmd = &cobra.Command{
	Use:   "rm <post-id>",
	Short: "Delete a post you own, and its comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "post")
		if err != nil {
			return err
		}
		post, err := svc.GetPost(cmd.Context(), id)
		if err != nil {
			return describeErr(err)
		}
		if err := svc.DeletePost(cmd.Context(), *post); err != nil {
			return describeErr(err)
		}
		fmt.Printf("Deleted post #%d\n", id)
		return nil
	},
}

func parseID(raw, kind string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%q is not a valid %s ID", raw, kind)
	}
	return uint(id), nil
}
