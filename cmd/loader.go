package cmd

import (
	"github.com/aleph-zero/linkstack/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var loaderCmd = &cobra.Command{
	Use:   "loader",
	Short: "Run a bulk loader client",
	Long:  "Run a bulk loader client that pushes each line of a file onto a stack",
	Run: func(cmd *cobra.Command, args []string) {
		config := client.NewLoaderConfig(
			client.WithClientConfig(clientConfig()),
			client.WithStack(viper.GetString("client.loader.stack")),
			client.WithFilename(viper.GetString("client.loader.file")))
		client.BootstrapLoader(config)
	},
}

func init() {
	clientCmd.AddCommand(loaderCmd)
	loaderCmd.Flags().String("client.loader.stack", "", "Stack to push onto")
	loaderCmd.Flags().String("client.loader.file", "", "File of values to push, one per line")

	viper.BindPFlag("client.loader.stack", loaderCmd.Flags().Lookup("client.loader.stack"))
	viper.BindPFlag("client.loader.file", loaderCmd.Flags().Lookup("client.loader.file"))
}
