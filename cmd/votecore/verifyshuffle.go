package main

import (
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/ursaminor/threshold-vote/mixnet"
)

func verifyShuffleCommand() *cli.Command {
	return &cli.Command{
		Name:  "verify-shuffle",
		Usage: "verify a shuffle proof linking an input collection to an output collection",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "params", Required: true},
			&cli.StringFlag{Name: "pub", Required: true, Usage: "threshold public key file (threshold.pub)"},
			&cli.StringFlag{Name: "in", Required: true, Usage: "input collection file"},
			&cli.StringFlag{Name: "out", Required: true, Usage: "output collection file"},
			&cli.StringFlag{Name: "proof", Required: true, Usage: "shuffle proof file"},
			&cli.IntFlag{Name: "workers", Usage: "bound the number of goroutines used to verify the proof; 0 verifies sequentially"},
		},
		Action: func(c *cli.Context) error {
			cs, err := loadCryptosystem(c.String("params"))
			if err != nil {
				return err
			}

			tpk, err := loadThresholdPublicKey(cs, c.String("pub"))
			if err != nil {
				return err
			}

			inData, err := loadFile(c.String("in"))
			if err != nil {
				return err
			}
			in, err := mixnet.UnmarshalCollection(tpk, inData)
			if err != nil {
				return err
			}

			outData, err := loadFile(c.String("out"))
			if err != nil {
				return err
			}
			out, err := mixnet.UnmarshalCollection(tpk, outData)
			if err != nil {
				return err
			}

			proofData, err := loadFile(c.String("proof"))
			if err != nil {
				return err
			}
			proof, err := mixnet.UnmarshalShufflingProof(tpk, proofData)
			if err != nil {
				return err
			}

			if workers := c.Int("workers"); workers > 0 {
				err = mixnet.VerifyShuffleWithWorkers(in, out, proof, workers)
			} else {
				err = mixnet.VerifyShuffle(in, out, proof)
			}
			if err != nil {
				log.Error().Err(err).Msg("shuffle proof rejected")
				return err
			}

			log.Info().Msg("shuffle proof accepted")
			return nil
		},
	}
}
