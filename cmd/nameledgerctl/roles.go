package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
)

var roleCmd = &cobra.Command{
	Use:   "role",
	Short: "Manage role membership",
}

var roleGrantCmd = &cobra.Command{
	Use:   "grant <role> <address>",
	Short: "Grant a role to an address",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		role := strings.ToUpper(args[0])
		body := map[string]string{"address": args[1]}
		if err := call(http.MethodPost, "/admin/roles/"+role, body, nil); err != nil {
			return err
		}
		fmt.Printf("granted %s to %s\n", role, args[1])
		return nil
	},
}

var roleRevokeCmd = &cobra.Command{
	Use:   "revoke <role> <address>",
	Short: "Revoke a role from an address",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		role := strings.ToUpper(args[0])
		if err := call(http.MethodDelete, "/admin/roles/"+role+"/"+args[1], nil, nil); err != nil {
			return err
		}
		fmt.Printf("revoked %s from %s\n", role, args[1])
		return nil
	},
}

var roleListCmd = &cobra.Command{
	Use:   "list <role>",
	Short: "List a role's members",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		role := strings.ToUpper(args[0])
		var resp struct {
			Role    string   `json:"role"`
			Members []string `json:"members"`
		}
		if err := call(http.MethodGet, "/admin/roles/"+role, nil, &resp); err != nil {
			return err
		}
		if jsonOutput {
			return nil
		}
		fmt.Printf("%s (%d members)\n", resp.Role, len(resp.Members))
		for _, m := range resp.Members {
			fmt.Printf("  %s\n", m)
		}
		return nil
	},
}

func init() {
	roleCmd.AddCommand(roleGrantCmd)
	roleCmd.AddCommand(roleRevokeCmd)
	roleCmd.AddCommand(roleListCmd)
}
