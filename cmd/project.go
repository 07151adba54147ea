package cmd

import (
	"fmt"

	"github.com/isobytes/cnreduce/internal/project"
	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage project analysis logs",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new project with its own analysis log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireConfig(); err != nil {
			return err
		}
		p, err := resolveProject(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("✓ Project %s ready (log file %s)\n", p.Name, p.LogFile)
		return nil
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		names, err := project.List(c.ProjectsDir)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("(no projects)")
			return nil
		}
		for _, n := range names {
			fmt.Printf("- %s\n", n)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectListCmd)
}
