package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/ursaminor/threshold-vote/elgamal"
	"github.com/ursaminor/threshold-vote/randsrc"
)

func keygenCommand() *cli.Command {
	return &cli.Command{
		Name:  "keygen",
		Usage: "generate an ElGamal key pair bound to a cryptosystem parameter file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "params", Required: true, Usage: "input .pvcryptosys path"},
			&cli.StringFlag{Name: "out-pub", Required: true},
			&cli.StringFlag{Name: "out-priv", Required: true},
		},
		Action: func(c *cli.Context) error {
			cs, err := loadCryptosystem(c.String("params"))
			if err != nil {
				return err
			}

			kp, err := elgamal.NewKeyPair(cs, randsrc.Default())
			if err != nil {
				return err
			}

			if err := writeMarshaled(c.String("out-pub"), kp.Public); err != nil {
				return err
			}
			if err := writeMarshaled(c.String("out-priv"), kp.Private); err != nil {
				return err
			}

			log.Info().Str("pub", c.String("out-pub")).Str("priv", c.String("out-priv")).Msg("generated key pair")
			return nil
		},
	}
}

type binaryMarshaler interface {
	MarshalBinary() ([]byte, error)
}

func writeMarshaled(path string, v binaryMarshaler) error {
	data, err := v.MarshalBinary()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
