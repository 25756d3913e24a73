package main

import (
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/ursaminor/threshold-vote/elgamal"
	"github.com/ursaminor/threshold-vote/randsrc"
	"github.com/ursaminor/threshold-vote/threshold"
)

func partialDecryptCommand() *cli.Command {
	return &cli.Command{
		Name:  "partial-decrypt",
		Usage: "compute one trustee's partial decryption of a ciphertext",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "params", Required: true},
			&cli.StringFlag{Name: "share", Required: true, Usage: "this trustee's share file (trustee-N.share)"},
			&cli.StringFlag{Name: "ciphertext", Required: true},
			&cli.StringFlag{Name: "out", Required: true},
		},
		Action: func(c *cli.Context) error {
			cs, err := loadCryptosystem(c.String("params"))
			if err != nil {
				return err
			}

			shareData, err := loadFile(c.String("share"))
			if err != nil {
				return err
			}
			kp, err := threshold.LoadShare(cs, bytesReader(shareData))
			if err != nil {
				return err
			}

			ctData, err := loadFile(c.String("ciphertext"))
			if err != nil {
				return err
			}
			ct, err := elgamal.UnmarshalCiphertext(cs, ctData)
			if err != nil {
				return err
			}

			set, err := threshold.MakePartialDecryptionSet(kp, ct, randsrc.Default())
			if err != nil {
				return err
			}

			data, err := set.MarshalBinary(cs, kp.Public)
			if err != nil {
				return err
			}
			if err := writeBytes(c.String("out"), data); err != nil {
				return err
			}

			log.Info().Int("trustee", kp.Index).Msg("computed partial decryption")
			return nil
		},
	}
}
