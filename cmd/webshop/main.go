package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/webshop/internal/config"
)

func main() {
	var envFile string

	root := &cobra.Command{
		Use:           "webshop",
		Short:         "Web shop API: accounts, catalog, carts and orders",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	loadConfig := func() (*config.Config, error) {
		return config.Load(envFile)
	}

	root.AddCommand(serveCmd(loadConfig), migrateCmd(loadConfig), seedCmd(loadConfig))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "webshop:", err)
		os.Exit(1)
	}
}
