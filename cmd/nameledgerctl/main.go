// Command nameledgerctl is the operator CLI for a running nameledger server.
// It drives the HTTP API; the admin token and caller address come from flags
// or the environment.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	serverURL  string
	adminToken string
	callerAddr string
	jsonOutput bool
)

func defaultServer() string {
	if s := os.Getenv("NAMELEDGER_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

var rootCmd = &cobra.Command{
	Use:           "nameledgerctl",
	Short:         "Operate a nameledger server",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer(), "server base URL")
	rootCmd.PersistentFlags().StringVar(&adminToken, "admin-token", os.Getenv("NAMELEDGER_ADMIN_TOKEN"), "admin token for /admin routes")
	rootCmd.PersistentFlags().StringVar(&callerAddr, "caller", os.Getenv("NAMELEDGER_CALLER"), "caller address (0x-hex)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print raw JSON responses")

	rootCmd.AddCommand(roleCmd)
	rootCmd.AddCommand(domainCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(rootPricerCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
