package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var domainCmd = &cobra.Command{
	Use:   "domain",
	Short: "Register, inspect and revoke domains",
}

var (
	registerTokenURI string
	registerResolver string
	registerParent   string
)

var domainRegisterCmd = &cobra.Command{
	Use:   "register <label>",
	Short: "Register a domain (root, or under --parent)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]string{"label": args[0]}
		if registerTokenURI != "" {
			body["token_uri"] = registerTokenURI
		}
		if registerResolver != "" {
			body["resolver"] = registerResolver
		}
		path := "/v1/domains"
		if registerParent != "" {
			path = "/v1/domains/" + registerParent + "/subdomains"
		}
		var resp struct {
			DomainID string `json:"domain_id"`
		}
		if err := call(http.MethodPost, path, body, &resp); err != nil {
			return err
		}
		if !jsonOutput {
			fmt.Println(resp.DomainID)
		}
		return nil
	},
}

var domainGetCmd = &cobra.Command{
	Use:   "get <domain-id>",
	Short: "Show a domain's record, certificate and stake",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp struct {
			DomainID         string `json:"domain_id"`
			Owner            string `json:"owner"`
			Resolver         string `json:"resolver"`
			CertificateOwner string `json:"certificate_owner"`
			TokenURI         string `json:"token_uri"`
			Staked           string `json:"staked"`
		}
		if err := call(http.MethodGet, "/v1/domains/"+args[0], nil, &resp); err != nil {
			return err
		}
		if jsonOutput {
			return nil
		}
		fmt.Printf("Domain:      %s\n", resp.DomainID)
		fmt.Printf("Owner:       %s\n", resp.Owner)
		fmt.Printf("Resolver:    %s\n", resp.Resolver)
		if resp.CertificateOwner != "" {
			fmt.Printf("Certificate: %s\n", resp.CertificateOwner)
		}
		if resp.Staked != "" {
			fmt.Printf("Staked:      %s\n", resp.Staked)
		}
		return nil
	},
}

var domainRevokeCmd = &cobra.Command{
	Use:   "revoke <domain-id>",
	Short: "Revoke a domain and refund its stake",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp struct {
			Refunded string `json:"refunded"`
		}
		if err := call(http.MethodDelete, "/v1/domains/"+args[0], nil, &resp); err != nil {
			return err
		}
		if !jsonOutput {
			fmt.Printf("revoked, refunded %s\n", resp.Refunded)
		}
		return nil
	},
}

var domainReclaimCmd = &cobra.Command{
	Use:   "reclaim <domain-id>",
	Short: "Reclaim record ownership as the certificate holder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := call(http.MethodPost, "/v1/domains/"+args[0]+"/reclaim", nil, nil); err != nil {
			return err
		}
		fmt.Println("reclaimed")
		return nil
	},
}

var rootPricerCmd = &cobra.Command{
	Use:   "root-pricer [name]",
	Short: "Show or set the root pricing engine",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			var resp struct {
				Pricer string `json:"pricer"`
			}
			if err := call(http.MethodGet, "/admin/root-pricer", nil, &resp); err != nil {
				return err
			}
			if !jsonOutput {
				fmt.Println(resp.Pricer)
			}
			return nil
		}
		body := map[string]string{"pricer": args[0]}
		if err := call(http.MethodPut, "/admin/root-pricer", body, nil); err != nil {
			return err
		}
		fmt.Printf("root pricer set to %s\n", args[0])
		return nil
	},
}

func init() {
	domainRegisterCmd.Flags().StringVar(&registerTokenURI, "token-uri", "", "certificate metadata URI")
	domainRegisterCmd.Flags().StringVar(&registerResolver, "resolver", "", "resolver address")
	domainRegisterCmd.Flags().StringVar(&registerParent, "parent", "", "parent domain id (omit for root)")

	domainCmd.AddCommand(domainRegisterCmd)
	domainCmd.AddCommand(domainGetCmd)
	domainCmd.AddCommand(domainRevokeCmd)
	domainCmd.AddCommand(domainReclaimCmd)
}
