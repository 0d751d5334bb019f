package cmd

import (
	"github.com/aleph-zero/linkstack/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Run a linkstack client",
	Long:  "Run an interactive linkstack client; type help for the list of commands",
	Run: func(cmd *cobra.Command, args []string) {
		client.Bootstrap(clientConfig())
	},
}

const (
	remoteAddr = "127.0.0.1"
	remotePort = 1234
)

func clientConfig() *client.Config {
	return client.NewConfig(
		client.WithRemoteAddr(viper.GetString("client.remote-addr")),
		client.WithRemotePort(viper.GetUint16("client.remote-port")))
}

func init() {
	rootCmd.AddCommand(clientCmd)
	clientCmd.PersistentFlags().String("client.remote-addr", remoteAddr, "Address to connect to")
	clientCmd.PersistentFlags().Uint16("client.remote-port", remotePort, "Port to connect to")

	viper.BindPFlag("client.remote-addr", clientCmd.PersistentFlags().Lookup("client.remote-addr"))
	viper.BindPFlag("client.remote-port", clientCmd.PersistentFlags().Lookup("client.remote-port"))
}
