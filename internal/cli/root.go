package cli

import (
	"fmt"
	"os"

	"github.com/metricops/anomalyd/pkg/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile      string
	outputFormat string
	noColor      bool
	serverURL    string
	relayURL     string
	apiClient    *client.Client
)

var rootCmd = &cobra.Command{
	Use:   "anomalyctl",
	Short: "anomalyctl - anomaly detection for univariate time series",
	Long: `anomalyctl provides command-line access to the anomalyd service
for scoring time series, browsing recorded detection runs, and reading
alerts buffered by the webhook relay. Detection can also run entirely
in-process with --local, without a server.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Config commands only touch the local config file
		if cmd.Parent() != nil && cmd.Parent().Name() == "config" {
			return nil
		}
		return initClient()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.anomalyd/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format: table, json, yaml")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "detection API URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&relayURL, "relay", "", "webhook relay URL (overrides config)")

	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("server_url", rootCmd.PersistentFlags().Lookup("server"))
	_ = viper.BindPFlag("relay_url", rootCmd.PersistentFlags().Lookup("relay"))

	// Register all subcommands
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newDetectCmd())
	rootCmd.AddCommand(newRunsCmd())
	rootCmd.AddCommand(newAlertsCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return
		}
		configDir := home + "/.anomalyd"
		_ = os.MkdirAll(configDir, 0700)
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("ANOMALYD")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("server_url", "http://localhost:8080")
	viper.SetDefault("relay_url", "http://localhost:8081")
	viper.SetDefault("output", "table")

	_ = viper.ReadInConfig()
}

func initClient() error {
	url := viper.GetString("server_url")
	if serverURL != "" {
		url = serverURL
	}
	relay := viper.GetString("relay_url")
	if relayURL != "" {
		relay = relayURL
	}

	apiClient = client.NewClient(client.Config{
		BaseURL:  url,
		RelayURL: relay,
	})
	return nil
}

func getOutputFormat() string {
	if outputFormat != "" && outputFormat != "table" {
		return outputFormat
	}
	return viper.GetString("output")
}
