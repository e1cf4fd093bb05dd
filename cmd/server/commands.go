package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/kalagasite/internal/db"
	"github.com/kalagasite/internal/service"
	"github.com/spf13/cobra"
)

var seedForce bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write default documents for content sections",
	Long: `Writes the built-in default document of every content section.

Sections that already have a stored document are skipped unless --force is given.`,
	RunE: runSeed,
}

var (
	adminUsername string
	adminPassword string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin account if it does not exist",
	RunE:  runAdminCreate,
}

func init() {
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "overwrite documents that already exist")

	adminCreateCmd.Flags().StringVar(&adminUsername, "username", "", "admin username")
	adminCreateCmd.Flags().StringVar(&adminPassword, "password", "", "admin password")
	_ = adminCreateCmd.MarkFlagRequired("username")
	_ = adminCreateCmd.MarkFlagRequired("password")
	adminCmd.AddCommand(adminCreateCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, loadConfig())
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	written, err := service.NewContentService(a.store, a.log).Seed(ctx, seedForce)
	for _, id := range written {
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %s\n", id)
	}
	if err != nil {
		return err
	}
	if len(written) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "all sections already have content")
	}
	return nil
}

func runAdminCreate(cmd *cobra.Command, _ []string) error {
	if strings.TrimSpace(adminUsername) == "" || strings.TrimSpace(adminPassword) == "" {
		return fmt.Errorf("username and password must not be blank")
	}
	a, err := newApp(cmd.Context(), loadConfig())
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	created, err := db.EnsureUser(a.users, adminUsername, adminPassword)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(cmd.OutOrStdout(), "created admin %s\n", strings.TrimSpace(adminUsername))
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "admin %s already exists\n", strings.TrimSpace(adminUsername))
	}
	return nil
}
