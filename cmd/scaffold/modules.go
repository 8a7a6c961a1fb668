package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/artpar/scaffold/bootstrap"
	"github.com/artpar/scaffold/config"
)

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "List registered modules and their actions",
	RunE:  runModules,
}

func init() {
	rootCmd.AddCommand(modulesCmd)
}

func runModules(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := bootstrap.New(cfg, bootstrap.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	for _, name := range a.Modules.Names() {
		mod, _ := a.Modules.Get(name)
		actions := mod.Actions().Actions()
		sort.Strings(actions)

		fmt.Printf("%s\n", name)
		for _, action := range actions {
			fmt.Printf("  %s\n", action)
		}
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(cfgFile); err == nil {
		return config.Load(cfgFile)
	}
	return config.FromEnv()
}
