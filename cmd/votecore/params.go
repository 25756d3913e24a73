package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/ursaminor/threshold-vote/cryptosystem"
	"github.com/ursaminor/threshold-vote/randsrc"
)

func paramsCommand() *cli.Command {
	return &cli.Command{
		Name:  "params",
		Usage: "generate a fresh cryptosystem parameter file",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "bits", Value: cryptosystem.DefaultMinBits, Usage: "bit-length of the safe prime p"},
			&cli.StringFlag{Name: "out", Required: true, Usage: "output .pvcryptosys path"},
		},
		Action: func(c *cli.Context) error {
			bits := c.Int("bits")
			log.Info().Int("bits", bits).Msg("searching for safe-prime cryptosystem parameters")

			cs, err := cryptosystem.Generate(bits, cryptosystem.DefaultMinBits, randsrc.Default())
			if err != nil {
				return err
			}

			f, err := os.Create(c.String("out"))
			if err != nil {
				return err
			}
			defer f.Close()

			if err := cs.Save(f); err != nil {
				return err
			}

			fp := cs.Fingerprint()
			log.Info().Str("path", c.String("out")).Hex("fingerprint", fp[:]).Msg("wrote cryptosystem parameters")
			return nil
		},
	}
}

func loadCryptosystem(path string) (*cryptosystem.Cryptosystem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return cryptosystem.Load(f)
}
