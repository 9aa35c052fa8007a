// Command pantry runs the supply-ordering API and its maintenance tasks.
//
//	pantry serve
//	pantry seed --demo
//	pantry restaurant:create --name "Harbour Grill"
//	pantry route:list
//	pantry db:indexes
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "pantry",
	Short:         "Multi-restaurant supply ordering API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(indexesCmd)
	rootCmd.AddCommand(restaurantCreateCmd)
}
