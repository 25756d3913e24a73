// Command votecore exercises the threshold-ElGamal core end to end: safe-
// prime parameter generation, trustee key generation, a distributed
// key-generation ceremony, ballot encryption, mixnet shuffling, and
// threshold decryption, each as its own subcommand operating on the
// library's on-disk wire formats.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	app := &cli.App{
		Name:  "votecore",
		Usage: "threshold-ElGamal voting core: parameters, keys, ceremonies, ballots, shuffles",
		Commands: []*cli.Command{
			paramsCommand(),
			keygenCommand(),
			ceremonyCommand(),
			encryptCommand(),
			partialDecryptCommand(),
			combineCommand(),
			shuffleCommand(),
			verifyShuffleCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("votecore failed")
	}
}
