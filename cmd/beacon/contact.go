package main

import (
	"fmt"
	"strconv"

	"github.com/beaconsafe/beacon/internal/config"
	"github.com/beaconsafe/beacon/internal/contacts"
	"github.com/beaconsafe/beacon/internal/models"
	"github.com/spf13/cobra"
)

func newContactCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Manage emergency contacts",
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "beacon.yaml", "path to Beacon config file")

	cmd.AddCommand(newContactListCmd(&configPath))
	cmd.AddCommand(newContactAddCmd(&configPath))
	cmd.AddCommand(newContactRemoveCmd(&configPath))
	cmd.AddCommand(newContactPrimaryCmd(&configPath))
	return cmd
}

func newContactListCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List contacts in registry order",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo(*configPath)
			if err != nil {
				return err
			}
			reg, err := repo.Snapshot()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(reg.Contacts) == 0 {
				fmt.Fprintln(out, "No contacts")
				return nil
			}
			for _, c := range reg.Contacts {
				marker := " "
				if c.ID == reg.PrimaryID {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %3d  %-20s %-16s %s\n", marker, c.ID, c.Name, c.Phone, c.Type)
			}
			return nil
		},
	}
}

func newContactAddCmd(configPath *string) *cobra.Command {
	var phone, ctype, relationship, email string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo(*configPath)
			if err != nil {
				return err
			}
			c, err := repo.Add(models.EmergencyContact{
				Name:         args[0],
				Phone:        phone,
				Type:         models.ContactType(ctype),
				Relationship: relationship,
				Email:        email,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added contact %d: %s\n", c.ID, c.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&phone, "phone", "p", "", "phone number")
	cmd.Flags().StringVarP(&ctype, "type", "t", "family", "contact type: family, emergency, friend")
	cmd.Flags().StringVar(&relationship, "relationship", "", "relationship label")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	return cmd
}

func newContactRemoveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid contact id %q", args[0])
			}
			repo, err := openRepo(*configPath)
			if err != nil {
				return err
			}
			if err := repo.Remove(uint(id)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed contact %d\n", id)
			return nil
		},
	}
}

func newContactPrimaryCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "primary <id>",
		Short: "Designate the primary contact (0 clears the designation)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid contact id %q", args[0])
			}
			repo, err := openRepo(*configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if id == 0 {
				if err := repo.ClearPrimary(); err != nil {
					return err
				}
				fmt.Fprintln(out, "Primary designation cleared")
				return nil
			}
			if err := repo.SetPrimary(uint(id)); err != nil {
				return err
			}
			fmt.Fprintf(out, "Contact %d designated primary\n", id)
			return nil
		},
	}
}

// openRepo opens the store and returns the contact repository.
func openRepo(configPath string) (*contacts.Repo, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	gormDB, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	return contacts.NewRepo(gormDB)
}
