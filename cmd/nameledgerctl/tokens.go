package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Payment token operations",
}

var tokenMintCmd = &cobra.Command{
	Use:   "mint <token> <to> <amount>",
	Short: "Mint token balance to an address (admin)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]string{"to": args[1], "amount": args[2]}
		if err := call(http.MethodPost, "/admin/tokens/"+args[0]+"/mint", body, nil); err != nil {
			return err
		}
		fmt.Printf("minted %s to %s\n", args[2], args[1])
		return nil
	},
}

var tokenBalanceCmd = &cobra.Command{
	Use:   "balance <token> <address>",
	Short: "Show an address's token balance",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp struct {
			Balance string `json:"balance"`
		}
		if err := call(http.MethodGet, "/v1/tokens/"+args[0]+"/balances/"+args[1], nil, &resp); err != nil {
			return err
		}
		if !jsonOutput {
			fmt.Println(resp.Balance)
		}
		return nil
	},
}

var tokenApproveCmd = &cobra.Command{
	Use:   "approve <token> <spender> <amount>",
	Short: "Approve a spender for the caller's balance",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]string{"to": args[1], "amount": args[2]}
		if err := call(http.MethodPost, "/v1/tokens/"+args[0]+"/approve", body, nil); err != nil {
			return err
		}
		fmt.Printf("approved %s for %s\n", args[2], args[1])
		return nil
	},
}

func init() {
	tokenCmd.AddCommand(tokenMintCmd)
	tokenCmd.AddCommand(tokenBalanceCmd)
	tokenCmd.AddCommand(tokenApproveCmd)
}
