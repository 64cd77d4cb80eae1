package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// buildTurnPayload assembles the request body for a chat turn. Location is
// only attached when both coordinates were provided on the command line.
func buildTurnPayload(content string, lat, lng float64, hasLocation bool) map[string]interface{} {
	payload := map[string]interface{}{"content": content}
	if hasLocation {
		payload["location"] = map[string]float64{"lat": lat, "lng": lng}
	}
	return payload
}

func init() {
	var (
		convId string
		lat    float64
		lng    float64
	)

	sendCmd := &cobra.Command{
		Use:   "send MESSAGE",
		Short: "Send a chat turn and print the assistant reply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if convId == "" {
				return fmt.Errorf("--conversation required")
			}
			hasLocation := cmd.Flags().Changed("lat") && cmd.Flags().Changed("lng")
			resp, err := client().R().
				SetBody(buildTurnPayload(args[0], lat, lng, hasLocation)).
				Post(fmt.Sprintf("/api/conversations/%s/messages", convId))
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
	sendCmd.Flags().StringVarP(&convId, "conversation", "c", "", "Conversation ID (required)")
	sendCmd.Flags().Float64Var(&lat, "lat", 0, "Device latitude")
	sendCmd.Flags().Float64Var(&lng, "lng", 0, "Device longitude")
	_ = sendCmd.MarkFlagRequired("conversation")
	rootCmd.AddCommand(sendCmd)

	messagesCmd := &cobra.Command{
		Use:   "messages CONVERSATION_ID",
		Short: "Print a conversation transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client().R().Get(fmt.Sprintf("/api/conversations/%s/messages", args[0]))
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
	rootCmd.AddCommand(messagesCmd)

	recsCmd := &cobra.Command{
		Use:   "recommendations CONVERSATION_ID",
		Short: "Print the recommendations produced for a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client().R().Get(fmt.Sprintf("/api/conversations/%s/recommendations", args[0]))
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
	rootCmd.AddCommand(recsCmd)
}
