package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/avforge/estq/internal/catalog"
	"github.com/avforge/estq/internal/cli/appctx"
	"github.com/avforge/estq/internal/domain"
	"github.com/avforge/estq/internal/source"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
)

var conflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "Review catalog items changed on both sides",
}

var conflictsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show per-field diffs for conflicting items",
	Args:  cobra.NoArgs,
	RunE:  appctx.WithApp(appctx.DefaultOptions(), runConflictsShow),
}

var conflictsResolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Choose winners and write the merged catalog",
	Long: `Choose winners and write the merged catalog.

--use picks one side for every conflict; --item overrides single items
(ID=local or ID=remote). Every conflict must have a choice before the
merged catalog is written.`,
	Args: cobra.NoArgs,
	RunE: appctx.WithApp(appctx.DefaultOptions(), runConflictsResolve),
}

var (
	conflictsLocalFile  string
	conflictsRemoteFile string
	conflictsUse        string
	conflictsItems      []string
	conflictsOut        string
)

func init() {
	rootCmd.AddCommand(conflictsCmd)
	conflictsCmd.AddCommand(conflictsShowCmd)
	conflictsCmd.AddCommand(conflictsResolveCmd)

	conflictsCmd.PersistentFlags().StringVar(&conflictsLocalFile, "local", "", "JSON file with the local catalog items")
	conflictsCmd.PersistentFlags().StringVar(&conflictsRemoteFile, "remote", "", "JSON file with the remote catalog items")
	conflictsResolveCmd.Flags().StringVar(&conflictsUse, "use", "", "Side for every conflict: local or remote")
	conflictsResolveCmd.Flags().StringArrayVar(&conflictsItems, "item", nil, "Per-item choice, ID=local or ID=remote")
	conflictsResolveCmd.Flags().StringVar(&conflictsOut, "out", "", "Write the merged catalog here (default stdout)")
}

func loadConflictSet() (*catalog.ConflictSet, []domain.CatalogItem, error) {
	if conflictsLocalFile == "" || conflictsRemoteFile == "" {
		return nil, nil, fmt.Errorf("both --local and --remote are required")
	}

	local, err := readCatalogFile(conflictsLocalFile)
	if err != nil {
		return nil, nil, err
	}
	remote, err := readCatalogFile(conflictsRemoteFile)
	if err != nil {
		return nil, nil, err
	}

	remoteByID := make(map[string]domain.CatalogItem, len(remote))
	for _, item := range remote {
		remoteByID[item.ID] = item
	}

	var pairs []struct{ Local, Remote domain.CatalogItem }
	for _, item := range local {
		if r, ok := remoteByID[item.ID]; ok {
			pairs = append(pairs, struct{ Local, Remote domain.CatalogItem }{item, r})
		}
	}
	return catalog.NewConflictSet(pairs), local, nil
}

func readCatalogFile(path string) ([]domain.CatalogItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var items []domain.CatalogItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return items, nil
}

func runConflictsShow(app *appctx.App, cmd *cobra.Command, args []string) error {
	set, _, err := loadConflictSet()
	if err != nil {
		return err
	}
	if len(set.Conflicts) == 0 {
		fmt.Println("No conflicts")
		return nil
	}

	for _, c := range set.Conflicts {
		diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        catalog.FieldLines(c.Local),
			B:        catalog.FieldLines(c.Remote),
			FromFile: "local/" + c.ItemID,
			ToFile:   "remote/" + c.ItemID,
			Context:  2,
		})
		if err != nil {
			return fmt.Errorf("failed to diff %s: %w", c.ItemID, err)
		}
		fmt.Printf("%s %s (%d field(s))\n", c.Local.Manufacturer, c.Local.Model, len(c.Diffs))
		fmt.Println(diff)
	}
	fmt.Printf("%d conflict(s)\n", len(set.Conflicts))
	return nil
}

func runConflictsResolve(app *appctx.App, cmd *cobra.Command, args []string) error {
	set, local, err := loadConflictSet()
	if err != nil {
		return err
	}

	if conflictsUse != "" {
		if err := set.ResolveAll(catalog.Side(conflictsUse)); err != nil {
			return err
		}
	}
	for _, choice := range conflictsItems {
		itemID, side, ok := strings.Cut(choice, "=")
		if !ok {
			return fmt.Errorf("invalid --item %q: want ID=local or ID=remote", choice)
		}
		if err := set.Resolve(itemID, catalog.Side(side)); err != nil {
			return err
		}
	}

	if !set.AllResolved() {
		unresolved := 0
		for _, c := range set.Conflicts {
			if c.Choice == "" {
				unresolved++
			}
		}
		return fmt.Errorf("%d conflict(s) still unresolved: pass --use or --item choices", unresolved)
	}

	merged := set.Apply(local)
	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal merged catalog: %w", err)
	}

	if conflictsOut == "" {
		fmt.Println(string(data))
	} else {
		if err := os.WriteFile(conflictsOut, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", conflictsOut, err)
		}
		fmt.Printf("Wrote %s (%d conflict(s) resolved)\n", conflictsOut, len(set.Conflicts))
	}

	_ = source.CacheCatalog(app.Store.Cache, merged)
	return nil
}
