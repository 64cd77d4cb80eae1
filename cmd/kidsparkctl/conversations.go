package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	convCmd := &cobra.Command{Use: "conversations", Short: "Conversation operations"}

	// start
	var userId string
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start a conversation and print the greeting",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userId == "" {
				return fmt.Errorf("--user required")
			}
			resp, err := client().R().
				SetBody(map[string]interface{}{}).
				Post(fmt.Sprintf("/api/users/%s/conversations", userId))
			if err != nil {
				return err
			}
			if resp.IsError() {
				return fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
			}
			_, _ = fmt.Fprintln(os.Stdout, resp.String())
			return nil
		},
	}
	startCmd.Flags().StringVarP(&userId, "user", "u", "", "User ID (required)")
	_ = startCmd.MarkFlagRequired("user")
	convCmd.AddCommand(startCmd)

	// list
	var listUserId string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's conversations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if listUserId == "" {
				return fmt.Errorf("--user required")
			}
			resp, err := client().R().Get(fmt.Sprintf("/api/users/%s/conversations", listUserId))
			if err != nil {
				return err
			}
			if resp.IsError() {
				return fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
			}
			_, _ = fmt.Fprintln(os.Stdout, resp.String())
			return nil
		},
	}
	listCmd.Flags().StringVarP(&listUserId, "user", "u", "", "User ID (required)")
	_ = listCmd.MarkFlagRequired("user")
	convCmd.AddCommand(listCmd)

	// get
	getCmd := &cobra.Command{
		Use:   "get CONVERSATION_ID",
		Short: "Get a conversation by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client().R().Get("/api/conversations/" + args[0])
			if err != nil {
				return err
			}
			if resp.IsError() {
				return fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
			}
			_, _ = fmt.Fprintln(os.Stdout, resp.String())
			return nil
		},
	}
	convCmd.AddCommand(getCmd)

	// complete / archive
	for _, action := range []string{"complete", "archive"} {
		action := action
		cmd := &cobra.Command{
			Use:   action + " CONVERSATION_ID",
			Short: "Mark a conversation " + action + "d",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				resp, err := client().R().Post(fmt.Sprintf("/api/conversations/%s/%s", args[0], action))
				if err != nil {
					return err
				}
				if resp.IsError() {
					return fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
				}
				return nil
			},
		}
		convCmd.AddCommand(cmd)
	}

	rootCmd.AddCommand(convCmd)
}
