package main

import (
	"parley/internal/api"
	"parley/internal/config"
	"parley/internal/forum"
	"parley/internal/observability"
	"parley/internal/session"

	"github.com/spf13/cobra"
)

var (
	cfg      *config.Config
	client   *api.Client
	sessions *session.Store
	svc      *forum.Service

	rootCmd = &cobra.Command{
		Use:           "parley",
		Short:         "Browse and take part in threaded forum discussions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.LoadConfig()
			if err != nil {
				return err
			}
			observability.Init(cfg.LogLevel)

			client, err = api.New(cfg)
			if err != nil {
				return err
			}
			sessions = session.NewStore(client, cfg.SessionFile)
			// Any 401 anywhere clears the local session; the next command
			// starts logged out.
			client.OnAuthExpired(sessions.ForceLogout)
			sessions.Restore()

			svc = forum.NewService(client, sessions)
			return nil
		},
	}

	topicsCmd = &cobra.Command{
		Use:   "topics",
		Short: "List topics, or manage them as an admin",
		RunE:  runTopicsList,
	}

	postsCmd = &cobra.Command{
		Use:   "posts",
		Short: "Browse and manage posts",
		RunE:  runPostsList,
	}

	commentsCmd = &cobra.Command{
		Use:   "comments",
		Short: "Read and write threaded comments",
	}
)

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, registerCmd, whoamiCmd)

	topicsCmd.AddCommand(topicsAddCmd, topicsRmCmd)
	rootCmd.AddCommand(topicsCmd)

	postsCmd.Flags().StringVar(&postsTopic, "topic", "", "only posts filed under this topic")
	postsCreateCmd.Flags().StringVar(&postTitle, "title", "", "post title")
	postsCreateCmd.Flags().StringVar(&postTopic, "topic", "", "topic to file the post under")
	postsCreateCmd.Flags().StringVar(&postContent, "content", "", "post body")
	postsEditCmd.Flags().StringVar(&postTitle, "title", "", "new title (unchanged when omitted)")
	postsEditCmd.Flags().StringVar(&postTopic, "topic", "", "new topic (unchanged when omitted)")
	postsEditCmd.Flags().StringVar(&postContent, "content", "", "new body (unchanged when omitted)")
	postsCmd.AddCommand(postsShowCmd, postsCreateCmd, postsEditCmd, postsRmCmd)
	rootCmd.AddCommand(postsCmd)

	commentsAddCmd.Flags().StringVar(&commentContent, "content", "", "comment text")
	commentsReplyCmd.Flags().StringVar(&commentContent, "content", "", "reply text")
	commentsEditCmd.Flags().StringVar(&commentContent, "content", "", "replacement text")
	commentsCmd.AddCommand(
		commentsListCmd,
		commentsShowCmd,
		commentsAddCmd,
		commentsReplyCmd,
		commentsEditCmd,
		commentsRmCmd,
	)
	rootCmd.AddCommand(commentsCmd)

	loginCmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	registerCmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
}
