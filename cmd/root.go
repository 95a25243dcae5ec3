package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tokencharge",
	Short: "Token charge microservice",
	Long:  "A back-office service for charging posted invoices against saved payment tokens and opening hosted tokenization pages.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
