package main

import (
	"fmt"

	"github.com/amankumarsingh77/video-containers/pkg/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// tokenCmd signs a bearer token for an account, or for an external task poller with --worker.
func tokenCmd(configFile *string) *cobra.Command {
	var asWorker bool
	cmd := &cobra.Command{
		Use:   "token [account-id]",
		Short: "print a signed api token",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configFile)
			if err != nil {
				return err
			}
			role := utils.AccountRole
			accountID := ""
			switch {
			case asWorker:
				role = utils.WorkerRole
			case len(args) == 1:
				accountID = args[0]
			default:
				return errors.New("an account id is required unless --worker is set")
			}
			token, err := utils.GenerateJWTToken(accountID, role, cfg.Server.JwtSecretKey)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asWorker, "worker", false, "sign a token for the task endpoints")
	return cmd
}
