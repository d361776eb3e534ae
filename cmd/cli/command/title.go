package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"reviewhub/cmd/cli/command/client"
	"reviewhub/internal/microservices/http-api/dto"
)

var titleCmd = &cobra.Command{
	Use:   "title",
	Short: "Browse titles",
}

var listTitlesCmd = &cobra.Command{
	Use:   "list",
	Short: "List titles, optionally filtered",
	RunE: func(cmd *cobra.Command, args []string) error {
		var f client.TitleFilter
		f.Name, _ = cmd.Flags().GetString("name")
		f.Genre, _ = cmd.Flags().GetString("genre")
		f.Category, _ = cmd.Flags().GetString("category")
		f.Year, _ = cmd.Flags().GetInt("year")
		page, _ := cmd.Flags().GetInt("page")

		ctx, cancel := commandContext(cmd)
		defer cancel()

		result, err := newClient().ListTitles(ctx, f, page)
		if err != nil {
			return fmt.Errorf("failed to list titles: %w", err)
		}

		if len(result.Data) == 0 {
			fmt.Println("No titles found.")
			return nil
		}

		p := result.Pagination
		fmt.Printf("Page %d of %d (%d titles)\n\n", p.Page, p.TotalPages, p.Total)
		for _, t := range result.Data {
			printTitle(t)
			fmt.Println(strings.Repeat("-", 50))
		}
		return nil
	},
}

var getTitleCmd = &cobra.Command{
	Use:   "get [title-id]",
	Short: "Show one title",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid title ID: %w", err)
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		t, err := newClient().GetTitle(ctx, id)
		if err != nil {
			return err
		}
		printTitle(*t)
		if t.Description != nil && *t.Description != "" {
			fmt.Printf("\n%s\n", *t.Description)
		}
		return nil
	},
}

func printTitle(t dto.TitleResponse) {
	heading("[%d] %s (%d)", t.ID, t.Name, t.Year)
	if t.Rating != nil {
		fmt.Printf("Rating:   %.1f/10\n", *t.Rating)
	} else {
		fmt.Println("Rating:   no reviews yet")
	}
	if t.Category != nil {
		fmt.Printf("Category: %s\n", t.Category.Name)
	}
	if len(t.Genre) > 0 {
		names := make([]string, len(t.Genre))
		for i, g := range t.Genre {
			names[i] = g.Name
		}
		fmt.Printf("Genres:   %s\n", strings.Join(names, ", "))
	}
}

func init() {
	titleCmd.AddCommand(listTitlesCmd, getTitleCmd)

	listTitlesCmd.Flags().String("name", "", "substring of the title name")
	listTitlesCmd.Flags().String("genre", "", "genre slug")
	listTitlesCmd.Flags().String("category", "", "category slug")
	listTitlesCmd.Flags().Int("year", 0, "release year")
	listTitlesCmd.Flags().Int("page", 1, "page number")
}
