package cmd

import (
    "fmt"
    "os"
    "path/filepath"

    "github.com/spf13/cobra"
    "github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
    Use:   "linkstack",
    Short: "Named linked stacks over HTTP",
    Long:  `linkstack: a server holding named singly-linked stacks, plus a client and a bulk loader`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
    err := rootCmd.Execute()
    if err != nil {
        os.Exit(1)
    }
}

func init() {
    cobra.OnInitialize(initConfig)

    rootCmd.PersistentFlags().StringVar(
        &cfgFile, "config", "", "config file (default is $HOME/.config/linkstack/linkstack.yaml)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
    if cfgFile != "" {
        viper.SetConfigFile(cfgFile)
    } else {
        home, err := os.UserHomeDir()
        cobra.CheckErr(err)

        viper.AddConfigPath(filepath.Join(home, ".config/linkstack"))
        viper.SetConfigType("yaml")
        viper.SetConfigName("linkstack")
    }

    viper.AutomaticEnv()

    if err := viper.ReadInConfig(); err != nil {
        // it's ok if we don't have a config file, we can fall back to defaults
        if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
            fmt.Fprintln(os.Stderr, err)
            os.Exit(1)
        }
    }
}
