package main

import (
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/ursaminor/threshold-vote/cryptosystem"
	"github.com/ursaminor/threshold-vote/randsrc"
	"github.com/ursaminor/threshold-vote/threshold"
)

func encryptCommand() *cli.Command {
	return &cli.Command{
		Name:  "encrypt",
		Usage: "ElGamal-encrypt a ballot under a threshold public key",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "params", Required: true},
			&cli.StringFlag{Name: "pub", Required: true, Usage: "threshold public key file (threshold.pub)"},
			&cli.StringFlag{Name: "message", Required: true},
			&cli.StringFlag{Name: "out", Required: true},
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

			pub, err := tpk.Combined()
			if err != nil {
				return err
			}

			ct, err := pub.EncryptText(c.String("message"), randsrc.Default())
			if err != nil {
				return err
			}

			if err := writeMarshaled(c.String("out"), ct); err != nil {
				return err
			}

			fp := ct.Fingerprint()
			log.Info().Hex("ciphertext_fingerprint", fp[:]).Msg("encrypted ballot")
			return nil
		},
	}
}

func loadThresholdPublicKey(cs *cryptosystem.Cryptosystem, path string) (*threshold.ThresholdPublicKey, error) {
	data, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	return threshold.UnmarshalThresholdPublicKey(cs, data)
}
