package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func prekeysCmd() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "prekeys",
		Short: "Generate and upload fresh prekeys",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, fs, err := loadDevice(nil)
			if err != nil {
				return err
			}
			if err := d.UploadPrekeys(cmd.Context(), count); err != nil {
				return err
			}
			if err := saveDevice(d, fs); err != nil {
				return err
			}
			fmt.Printf("uploaded %d prekeys (%d unconsumed)\n", count, d.PrekeyCount())
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 50, "number of prekeys to upload")
	return cmd
}

func topicKeysCmd() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "topic-keys",
		Short: "Generate topic keys and distribute them to your other devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, fs, err := loadDevice(nil)
			if err != nil {
				return err
			}
			if err := d.UploadTopicKeys(cmd.Context(), count); err != nil {
				return err
			}
			if err := saveDevice(d, fs); err != nil {
				return err
			}
			fmt.Printf("topic key pool now holds %d keys\n", d.TopicKeyCount())
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 10, "number of topic keys to generate")
	return cmd
}
