package cli

import (
	"fmt"

	"github.com/avforge/estq/internal/cli/appctx"
	"github.com/avforge/estq/internal/domain"
	"github.com/avforge/estq/internal/locations"
	"github.com/spf13/cobra"
)

var locCmd = &cobra.Command{
	Use:   "loc",
	Short: "Manage project locations",
}

var locAddCmd = &cobra.Command{
	Use:   "add PROJECT NAME",
	Short: "Add a location, at the root or under a parent",
	Args:  cobra.ExactArgs(2),
	RunE:  appctx.WithApp(appctx.WithSync(), runLocAdd),
}

var locRenameCmd = &cobra.Command{
	Use:   "rename PROJECT LOCATION NAME",
	Short: "Rename a location",
	Args:  cobra.ExactArgs(3),
	RunE:  appctx.WithApp(appctx.WithSync(), runLocRename),
}

var locRmCmd = &cobra.Command{
	Use:   "rm PROJECT LOCATION",
	Short: "Remove a location and its entire subtree",
	Args:  cobra.ExactArgs(2),
	RunE:  appctx.WithApp(appctx.WithSync(), runLocRm),
}

var locDupCmd = &cobra.Command{
	Use:   "dup PROJECT LOCATION",
	Short: "Duplicate a location subtree as a new sibling",
	Long: `Duplicate a location subtree as a new sibling.

The copy shares nothing with the original: every node, item, and
accessory in it gets a fresh id.`,
	Args: cobra.ExactArgs(2),
	RunE: appctx.WithApp(appctx.WithSync(), runLocDup),
}

var (
	locAddUnder string
	locSnapshot bool
)

func init() {
	rootCmd.AddCommand(locCmd)
	locCmd.AddCommand(locAddCmd)
	locCmd.AddCommand(locRenameCmd)
	locCmd.AddCommand(locRmCmd)
	locCmd.AddCommand(locDupCmd)

	locAddCmd.Flags().StringVar(&locAddUnder, "under", "", "Parent location (id or name path)")
	locCmd.PersistentFlags().BoolVar(&locSnapshot, "snapshot", false, "Create a revision first when one is required")
}

func runLocAdd(app *appctx.App, cmd *cobra.Command, args []string) error {
	project, err := loadProject(app, args[0])
	if err != nil {
		return err
	}

	parentID := ""
	if locAddUnder != "" {
		parentID, err = resolveNodeRef(project, locAddUnder)
		if err != nil {
			return err
		}
	}

	var created *domain.LocationNode
	_, err = mutateProject(app, project, locSnapshot, func(p *domain.Project) *domain.Project {
		next := *p
		next.Locations, created = locations.AddChild(p.Locations, parentID, args[1])
		return &next
	})
	if err != nil {
		return err
	}
	if created == nil {
		return fmt.Errorf("location %q not found", locAddUnder)
	}

	fmt.Printf("Added %s (%s)\n", created.Name, created.ID)
	return nil
}

func runLocRename(app *appctx.App, cmd *cobra.Command, args []string) error {
	project, err := loadProject(app, args[0])
	if err != nil {
		return err
	}
	nodeID, err := resolveNodeRef(project, args[1])
	if err != nil {
		return err
	}

	_, err = mutateProject(app, project, locSnapshot, func(p *domain.Project) *domain.Project {
		next := *p
		next.Locations, _ = locations.RenameNode(p.Locations, nodeID, args[2])
		return &next
	})
	if err != nil {
		return err
	}

	fmt.Printf("Renamed to %s\n", args[2])
	return nil
}

func runLocRm(app *appctx.App, cmd *cobra.Command, args []string) error {
	project, err := loadProject(app, args[0])
	if err != nil {
		return err
	}
	nodeID, err := resolveNodeRef(project, args[1])
	if err != nil {
		return err
	}

	_, err = mutateProject(app, project, locSnapshot, func(p *domain.Project) *domain.Project {
		next := *p
		next.Locations, _ = locations.RemoveNode(p.Locations, nodeID)
		return &next
	})
	if err != nil {
		return err
	}

	fmt.Println("Removed")
	return nil
}

func runLocDup(app *appctx.App, cmd *cobra.Command, args []string) error {
	project, err := loadProject(app, args[0])
	if err != nil {
		return err
	}
	nodeID, err := resolveNodeRef(project, args[1])
	if err != nil {
		return err
	}

	var dup *domain.LocationNode
	_, err = mutateProject(app, project, locSnapshot, func(p *domain.Project) *domain.Project {
		next := *p
		next.Locations, dup = locations.DuplicateNode(p.Locations, nodeID)
		return &next
	})
	if err != nil {
		return err
	}
	if dup == nil {
		return fmt.Errorf("location %q not found", args[1])
	}

	fmt.Printf("Duplicated as %s (%s)\n", dup.Name, dup.ID)
	return nil
}
