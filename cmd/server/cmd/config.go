package cmd

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/Tyrowin/roomchat/internal/server"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		renderConfig(cmd.OutOrStdout(), cfg)
		return nil
	},
}

func renderConfig(w io.Writer, cfg server.Config) {
	wordList := cfg.ProfanityWordsFile
	if wordList == "" {
		wordList = "(built-in)"
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Setting", "Value"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.Append([]string{"Listen address", cfg.Addr()})
	table.Append([]string{"Allowed origins", cfg.AllowedOrigins})
	table.Append([]string{"Max message size", strconv.Itoa(cfg.MaxMessageSize)})
	table.Append([]string{"Send buffer size", strconv.Itoa(cfg.SendBufferSize)})
	table.Append([]string{"Profanity word list", wordList})
	table.Append([]string{"Log format", cfg.LogFormat})
	table.Append([]string{"Log level", cfg.LogLevel})
	table.Append([]string{"Shutdown timeout", cfg.ShutdownTimeout.String()})
	table.Render()
}

func init() {
	rootCmd.AddCommand(configCmd)
}
