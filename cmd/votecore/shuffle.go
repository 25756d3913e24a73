package main

import (
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/ursaminor/threshold-vote/mixnet"
	"github.com/ursaminor/threshold-vote/randsrc"
)

func shuffleCommand() *cli.Command {
	return &cli.Command{
		Name:  "shuffle",
		Usage: "re-encrypt and permute a collection of ciphertexts, producing a shuffle proof",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "params", Required: true},
			&cli.StringFlag{Name: "pub", Required: true, Usage: "threshold public key file (threshold.pub)"},
			&cli.StringFlag{Name: "in", Required: true, Usage: "input collection file"},
			&cli.StringFlag{Name: "out", Required: true, Usage: "output collection file"},
			&cli.StringFlag{Name: "proof", Required: true, Usage: "output shuffle proof file"},
			&cli.IntFlag{Name: "workers", Usage: "bound the number of goroutines used to build the proof; 0 runs sequentially"},
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

			var out *mixnet.Collection
			var proof *mixnet.ShufflingProof
			if workers := c.Int("workers"); workers > 0 {
				out, proof, err = in.ShuffleWithProofWithWorkers(randsrc.Default(), workers)
			} else {
				out, proof, err = in.ShuffleWithProof(randsrc.Default())
			}
			if err != nil {
				return err
			}

			if err := writeMarshaled(c.String("out"), out); err != nil {
				return err
			}
			if err := writeMarshaled(c.String("proof"), proof); err != nil {
				return err
			}

			outFP := out.Fingerprint()
			log.Info().Hex("output_fingerprint", outFP[:]).Int("size", out.Len()).Msg("shuffled collection")
			return nil
		},
	}
}
