package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func runTopicsList(cmd *cobra.Command, args []string) error {
	topics, err := svc.RefreshTopics(cmd.Context())
	if err != nil {
		return describeErr(err)
	}
	if len(topics) == 0 {
		fmt.Println("No topics yet")
		return nil
	}
	for _, t := range topics {
		fmt.Println(t.TopicName)
	}
	return nil
}

var topicsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a topic (admin only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := svc.RefreshTopics(cmd.Context()); err != nil {
			return describeErr(err)
		}
		created, err := svc.AddTopic(cmd.Context(), args[0])
		if err != nil {
			return describeErr(err)
		}
		fmt.Printf("Created topic %q\n", created.TopicName)
		return nil
	},
}

var topicsRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Delete a topic and everything filed under it (admin only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := svc.RemoveTopic(cmd.Context(), args[0]); err != nil {
			return describeErr(err)
		}
		fmt.Printf("Deleted topic %q\n", args[0])
		return nil
	},
}
