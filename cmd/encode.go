package cmd

import (
	"fmt"

	"github.com/jsphweid/statecomposer/flat"
	"github.com/jsphweid/statecomposer/statematrix"
	"github.com/spf13/cobra"
)

var showVectors bool

func init() {
	encodeCmd.Flags().BoolVar(&showVectors, "vectors", false, "Print every flat vector")
	rootCmd.AddCommand(encodeCmd)
}

var encodeCmd = &cobra.Command{
	Use:   "encode <file.mid>",
	Short: "Encodes one midi file",
	Long:  `Encodes one midi file into a state matrix and prints its shape and flat vectors.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		encode(args[0])
	},
}

func encode(path string) {
	cfg := loadConfig()
	m, err := statematrix.NewEncoder(cfg).EncodeFile(path)
	cobra.CheckErr(err)

	w := flat.WidthFor(cfg.KeepActivated)
	vectors := flat.Flatten(m, w)
	fmt.Printf("matrix: %v\n", m)
	fmt.Printf("flat: %v x %v\n", len(vectors), w)
	if showVectors {
		for i, v := range vectors {
			fmt.Printf("%4d %v\n", i, v)
		}
	}
}
