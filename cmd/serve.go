package cmd

import (
	"net/http"

	"github.com/jsphweid/statecomposer/flat"
	"github.com/jsphweid/statecomposer/predictor"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var addr string

func init() {
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the trained network",
	Long:  `Serves the saved network as POST /predict so generate --predictor-url can use it.`,
	Run: func(cmd *cobra.Command, args []string) {
		serve()
	},
}

func serve() {
	cfg := loadConfig()
	n, err := predictor.LoadNetwork(cfg.WeightsPath)
	cobra.CheckErr(err)
	if n.Width() != flat.WidthFor(cfg.KeepActivated) {
		log.Warnf("Serving a %d wide network, config expects %d", n.Width(), flat.WidthFor(cfg.KeepActivated))
	}

	log.Infof("Serving %s on %s", cfg.WeightsPath, addr)
	log.Fatal(http.ListenAndServe(addr, predictor.NewHandler(n, n.NTimesteps)))
}
