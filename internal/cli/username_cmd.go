package cli

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/quillhaven/safeguard/internal/detect"
	"github.com/quillhaven/safeguard/internal/taxonomy"
	"github.com/quillhaven/safeguard/internal/username"
)

var usernameTaxonomy string

func init() {
	rootCmd.AddCommand(usernameCmd)
	usernameCmd.PersistentFlags().StringVar(&usernameTaxonomy, "taxonomy", "", "Path to taxonomy overlay YAML")
	usernameCmd.AddCommand(usernameCheckCmd)
	usernameCmd.AddCommand(usernameSuggestCmd)
}

var usernameCmd = &cobra.Command{
	Use:   "username",
	Short: "Screen display names",
}

var usernameCheckCmd = &cobra.Command{
	Use:   "check <name>",
	Short: "Validate a proposed display name",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsernameCheck,
}

var usernameSuggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest three safe display names",
	RunE:  runUsernameSuggest,
}

func newScreener() (*username.Screener, error) {
	tx, err := taxonomy.Load(usernameTaxonomy)
	if err != nil {
		return nil, fmt.Errorf("load taxonomy: %w", err)
	}
	return username.NewScreener(detect.New(tx)), nil
}

func runUsernameCheck(cmd *cobra.Command, args []string) error {
	s, err := newScreener()
	if err != nil {
		return err
	}
	if err := s.Validate(args[0]); err != nil {
		return err
	}
	fmt.Printf("%s: ok\n", args[0])
	return nil
}

func runUsernameSuggest(cmd *cobra.Command, args []string) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for _, name := range username.SuggestNicknames(rng, 3) {
		fmt.Println(name)
	}
	return nil
}
