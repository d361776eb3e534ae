package command

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"reviewhub/database"
	"reviewhub/internal/catalog"
)

var importCmd = &cobra.Command{
	Use:   "import [catalog.json]",
	Short: "Seed categories, genres and titles from a JSON catalog",
	Long: `Import a JSON catalog straight into the database. Running the same file twice
updates names and descriptions in place instead of duplicating rows.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := catalog.ReadFile(args[0])
		if err != nil {
			return err
		}

		cfg, l, err := loadServerConfig()
		if err != nil {
			return err
		}
		db, err := database.ConnectDB(cfg, l)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		sum, err := catalog.NewImporter(db, l).Import(cmd.Context(), f)
		if err != nil {
			return err
		}

		success("Catalog imported")
		fmt.Printf("Categories: %d\n", sum.Categories)
		fmt.Printf("Genres:     %d\n", sum.Genres)
		fmt.Printf("Titles:     %d created, %d updated\n", sum.Created, sum.Updated)
		fmt.Printf("Links:      %d\n", sum.Links)
		for _, s := range sum.Skipped {
			color.Yellow("⚠ skipped %s", s)
		}
		return nil
	},
}
