package main

import (
	"fmt"

	"condo-booking/internal/domain/user"
	"condo-booking/internal/pkg/config"
	"condo-booking/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var (
		userID string
		role   string
		unitID string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			id := uuid.New()
			if userID != "" {
				if id, err = uuid.Parse(userID); err != nil {
					return fmt.Errorf("invalid --user: %w", err)
				}
			}
			r, err := user.NewRole(role)
			if err != nil {
				return err
			}
			var unit *uuid.UUID
			if unitID != "" {
				u, err := uuid.Parse(unitID)
				if err != nil {
					return fmt.Errorf("invalid --unit: %w", err)
				}
				unit = &u
			}

			token, err := jwt.NewService(cfg.JWT.Secret, cfg.JWT.Duration).GenerateToken(id, r, unit)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id (random when empty)")
	cmd.Flags().StringVar(&role, "role", "morador", "morador, funcionario or sindico")
	cmd.Flags().StringVar(&unitID, "unit", "", "unit id, required for residents")
	return cmd
}
