package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bradylowe/paranoid-coder/internal/config"
	pcerrors "github.com/bradylowe/paranoid-coder/internal/errors"
	"github.com/bradylowe/paranoid-coder/internal/project"
	"github.com/bradylowe/paranoid-coder/internal/store"

	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a paranoid-coder project",
	Long:  "Creates a .paranoid-coder/ directory in the current directory with a default config and an empty sqlite store.",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Remove and recreate an existing .paranoid-coder directory")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return pcerrors.Wrap(pcerrors.IoError, "get current directory", err)
	}
	root, err := project.Root(cwd)
	if err != nil {
		return err
	}

	dir := filepath.Join(root, project.DirName)
	if project.IsInitialized(root) {
		if !initForce {
			// Idempotent: re-running init on an already-initialized root is
			// success, not an error (pcerrors.AlreadyInitialized's empty
			// Remedies entry documents the same decision).
			fmt.Println("paranoid-coder already initialized.")
			fmt.Printf("Config: %s\n", filepath.Join(dir, project.ConfigFilename))
			fmt.Println("\nRun 'paranoid init --force' to reinitialize.")
			return nil
		}
		if err := os.RemoveAll(dir); err != nil {
			return pcerrors.Wrap(pcerrors.IoError, "remove existing project directory", err)
		}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return pcerrors.Wrap(pcerrors.IoError, "create project directory", err)
	}

	cfg := config.Default()
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return pcerrors.Wrap(pcerrors.IoError, "marshal default config", err)
	}
	if err := os.WriteFile(filepath.Join(dir, project.ConfigFilename), data, 0644); err != nil {
		return pcerrors.Wrap(pcerrors.IoError, "write config file", err)
	}

	db, err := store.Open(filepath.Join(dir, project.SummariesDB), nil)
	if err != nil {
		return err
	}
	db.Close()

	fmt.Println("paranoid-coder initialized.")
	fmt.Printf("Project root: %s\n", root)
	fmt.Printf("Config:       %s\n", filepath.Join(dir, project.ConfigFilename))
	fmt.Println("\nNext steps:")
	fmt.Println("  paranoid summarize .")
	fmt.Println("  paranoid analyze")
	fmt.Println("  paranoid index")
	return nil
}
