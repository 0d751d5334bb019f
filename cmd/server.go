package cmd

import (
    "fmt"
    "github.com/aleph-zero/linkstack/server"
    "github.com/aleph-zero/linkstack/service/store"
    "github.com/spf13/cobra"
    "github.com/spf13/viper"
    "os"
)

var serverCmd = &cobra.Command{
    Use:   "server",
    Short: "Run a linkstack server",
    Long:  "Run a linkstack server",
    Run: func(cmd *cobra.Command, args []string) {
        config := server.NewConfig(
            server.WithAddress(viper.GetString("server.addr")),
            server.WithPort(viper.GetUint16("server.port")),
            server.WithNodeName(viper.GetString("server.node-name")),
            server.WithPersistInterval(viper.GetDuration("store.persist-interval")),
            server.WithStoreConfig(store.NewConfig(
                store.WithDirectory(viper.GetString("store.data-dir")))))
        server.Bootstrap(config)
    },
}

const (
    apiListenAddr = "0.0.0.0"
    apiListenPort = 1234
    storeDataDir  = ".linkstack"
)

func init() {
    rootCmd.AddCommand(serverCmd)

    hostname, err := os.Hostname()
    if err != nil {
        fmt.Fprintln(os.Stderr, err)
        os.Exit(1)
    }

    serverCmd.PersistentFlags().String("server.addr", apiListenAddr, "Address to bind to")
    serverCmd.PersistentFlags().Uint16("server.port", apiListenPort, "Port to listen on")
    serverCmd.PersistentFlags().String("server.node-name", hostname, "Unique identifier for the server")
    serverCmd.PersistentFlags().String("store.data-dir", storeDataDir, "Data directory for persisted stacks")
    serverCmd.PersistentFlags().Duration("store.persist-interval", 0, "Persist stacks this often (0 persists on shutdown only)")

    viper.BindPFlag("server.addr", serverCmd.PersistentFlags().Lookup("server.addr"))
    viper.BindPFlag("server.port", serverCmd.PersistentFlags().Lookup("server.port"))
    viper.BindPFlag("server.node-name", serverCmd.PersistentFlags().Lookup("server.node-name"))
    viper.BindPFlag("store.data-dir", serverCmd.PersistentFlags().Lookup("store.data-dir"))
    viper.BindPFlag("store.persist-interval", serverCmd.PersistentFlags().Lookup("store.persist-interval"))
}
